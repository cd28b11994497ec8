// Command train fits and compares classifiers on the processed dataset.
package main

import (
	"context"
	"fmt"

	"creditrisk/internal/app"
	"creditrisk/internal/config"
	"creditrisk/internal/operations"
	"creditrisk/internal/training"
)

func main() {
	var input, outputDir string

	cmd := app.NewCommand("train", "train and evaluate models on the processed dataset", func(ctx context.Context, a *app.Application) error {
		input = app.StringDefault(input, a.Paths.ProcessedFile)
		outputDir = app.StringDefault(outputDir, a.Paths.ModelsDir)
		if err := config.EnsureDir(outputDir); err != nil {
			return err
		}

		steps := operations.TrainingSteps(input, outputDir, a.Config.Training, a.Logger)
		state, err := a.Execute(ctx, operations.OperationTrain, steps)
		if err != nil {
			return err
		}

		v, _ := state.GetContext(operations.ContextKeyTrainingReport)
		report, ok := v.(*training.Report)
		if !ok {
			return nil
		}
		fmt.Printf("%-14s %8s %9s %6s %6s\n", "model", "accuracy", "precision", "recall", "f1")
		for _, m := range report.Results {
			fmt.Printf("%-14s %8.3f %9.3f %6.3f %6.3f\n", m.Model, m.Accuracy, m.Precision, m.Recall, m.F1)
		}
		if n := min(5, len(report.Importances)); n > 0 {
			fmt.Println("\ntop features (random forest):")
			for _, fi := range report.Importances[:n] {
				fmt.Printf("  %-40s %.4f\n", fi.Feature, fi.Importance)
			}
		}
		return nil
	})
	cmd.Flags().StringVar(&input, "input", "", "processed CSV (default from config)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for results (default from config)")

	app.Main(cmd)
}
