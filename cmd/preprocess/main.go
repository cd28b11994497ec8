// Command preprocess validates, maps and encodes the raw German Credit data.
package main

import (
	"context"
	"fmt"

	"creditrisk/internal/app"
	"creditrisk/internal/config"
	"creditrisk/internal/operations"
)

func main() {
	var input, output, report, mappings string

	cmd := app.NewCommand("preprocess", "validate and encode the raw German Credit dataset", func(ctx context.Context, a *app.Application) error {
		input = app.StringDefault(input, a.Paths.RawDataFile)
		output = app.StringDefault(output, a.Paths.ProcessedFile)
		if err := config.EnsureParentDir(output); err != nil {
			return err
		}
		if report != "" {
			if err := config.EnsureParentDir(report); err != nil {
				return err
			}
		}

		m, err := config.LoadMappings(app.StringDefault(mappings, a.Paths.MappingsFile))
		if err != nil {
			return err
		}

		pipeline := operations.NewPreprocessPipeline(operations.PreprocessOptions{
			InputPath:  input,
			OutputPath: output,
			ReportPath: report,
			Mappings:   m,
			Validation: a.Config.Validation,
		}, a.Telemetry, a.Logger)

		result, err := pipeline.Run(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Processed %d rows into %s\n", result.Table.NumRows(), result.OutputPath)
		for _, g := range result.MappingGaps {
			fmt.Printf("  unmapped code %s in %s (%d rows)\n", g.Code, g.Column, g.Rows)
		}
		return nil
	})
	cmd.Flags().StringVar(&input, "input", "", "raw data file (default from config)")
	cmd.Flags().StringVar(&output, "output", "", "processed CSV to write (default from config)")
	cmd.Flags().StringVar(&report, "report", "", "optional XLSX validation report")
	cmd.Flags().StringVar(&mappings, "mappings", "", "YAML mapping table (default built-in)")

	app.Main(cmd)
}
