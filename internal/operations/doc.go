// Package operations runs a pipeline as an ordered list of steps.
//
// Manager executes steps sequentially, stopping at the first failure. Each
// step gets its own span and its duration and outcome are recorded as
// metrics. Steps exchange data through the OperationState context.
//
// The preprocess operation is built from the steps in preprocess.go:
//
//	load -> validate_raw -> map_values -> encode -> validate_encoded -> persist
//
// Example usage:
//
//	pipeline := operations.NewPreprocessPipeline(opts, telemetry, logger)
//	result, err := pipeline.Run(ctx)
//	if err != nil {
//	    // err is an *OperationError naming the failed step
//	}
package operations
