package handler

import (
	"net/http"
	"os"
	"runtime"
	"sort"
)

// VersionInfo contains version and build information
type VersionInfo struct {
	Version   string   `json:"version"`
	GoVersion string   `json:"go_version"`
	BuildTime string   `json:"build_time,omitempty"`
	GitCommit string   `json:"git_commit,omitempty"`
	Sources   []string `json:"sources"`
}

// Build-time variables (injected via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unset"
)

// HandleVersion returns build information and the event sources this
// deployment accepts on /webhook/{source}
func HandleVersion(sources []string) http.HandlerFunc {
	sorted := append([]string(nil), sources...)
	sort.Strings(sorted)

	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, VersionInfo{
			Version:   getVersionInfo(),
			GoVersion: runtime.Version(),
			BuildTime: BuildTime,
			GitCommit: GitCommit,
			Sources:   sorted,
		})
	}
}

// getVersionInfo returns version from build-time variable or environment
func getVersionInfo() string {
	// Priority: build-time > environment > default
	if Version != "dev" && Version != "" {
		return Version
	}
	if envVersion := os.Getenv("VERSION"); envVersion != "" {
		return envVersion
	}
	return "dev"
}
