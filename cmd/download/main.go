// Command download fetches the raw German Credit data file.
package main

import (
	"context"
	"fmt"
	"log/slog"

	"creditrisk/internal/app"
	"creditrisk/internal/config"
	"creditrisk/internal/operations"
)

func main() {
	var url, output string

	cmd := app.NewCommand("download", "download the raw German Credit dataset", func(ctx context.Context, a *app.Application) error {
		url = app.StringDefault(url, a.Config.Download.URL)
		output = app.StringDefault(output, a.Paths.RawDataFile)
		if err := config.EnsureParentDir(output); err != nil {
			return err
		}

		steps := operations.DownloadSteps(url, output, a.Config.Download.Timeout, a.Telemetry, a.Logger)
		state, err := a.Execute(ctx, operations.OperationDownload, steps)
		if err != nil {
			return err
		}

		n, _ := state.GetContext(operations.ContextKeyBytesFetched)
		a.Logger.InfoContext(ctx, "download_completed",
			slog.String("output", output), slog.Any("bytes", n))
		fmt.Printf("Downloaded %v bytes to %s\n", n, output)
		return nil
	})
	cmd.Flags().StringVar(&url, "url", "", "dataset URL (default from config)")
	cmd.Flags().StringVar(&output, "output", "", "raw data file to write (default from config)")

	app.Main(cmd)
}
