package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current version of the pipeline tools
	Version = "0.3.0"

	// DataFormatVersion is the version of the processed dataset layout
	DataFormatVersion = "v1"
)

var (
	// BuildTime is set during build using ldflags
	BuildTime = "unknown"

	// GitCommit is set during build using ldflags
	GitCommit = "unknown"
)

// VersionInfo contains detailed version information
type VersionInfo struct {
	Version    string `json:"version"`
	BuildTime  string `json:"build_time"`
	GitCommit  string `json:"git_commit"`
	GoVersion  string `json:"go_version"`
	DataFormat string `json:"data_format"`
}

// GetVersionInfo returns detailed version information
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:    Version,
		BuildTime:  BuildTime,
		GitCommit:  GitCommit,
		GoVersion:  runtime.Version(),
		DataFormat: DataFormatVersion,
	}
}

// GetFullVersionString returns the version line printed by --version
func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf("creditrisk v%s (built: %s, commit: %s, go: %s, data: %s)",
		info.Version, info.BuildTime, info.GitCommit, info.GoVersion, info.DataFormat)
}
