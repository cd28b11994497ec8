// Command eda writes charts and summary tables for the processed dataset.
package main

import (
	"context"
	"fmt"

	"creditrisk/internal/app"
	"creditrisk/internal/config"
	"creditrisk/internal/eda"
	"creditrisk/internal/operations"
)

func main() {
	var input, outputDir string

	cmd := app.NewCommand("eda", "exploratory analysis of the processed dataset", func(ctx context.Context, a *app.Application) error {
		input = app.StringDefault(input, a.Paths.ProcessedFile)
		outputDir = app.StringDefault(outputDir, a.Paths.EDADir)
		if err := config.EnsureDir(outputDir); err != nil {
			return err
		}

		state, err := a.Execute(ctx, operations.OperationEDA, operations.EDASteps(input, outputDir, a.Logger))
		if err != nil {
			return err
		}

		v, _ := state.GetContext(operations.ContextKeyEDAResult)
		if result, ok := v.(*eda.Result); ok {
			for _, f := range result.Files {
				fmt.Println(f)
			}
		}
		return nil
	})
	cmd.Flags().StringVar(&input, "input", "", "processed CSV (default from config)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for charts and tables (default from config)")

	app.Main(cmd)
}
