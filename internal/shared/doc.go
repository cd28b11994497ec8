// Package shared holds helpers used across packages that belong to no
// single stage.
//
// The testutil subpackage provides a recording slog handler and German
// Credit fixture records for tests.
package shared
