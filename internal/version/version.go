// Package version holds the Aegis build information. Version, GitCommit and BuildDate
// are injected at build time via -ldflags.
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info is the build information with Version parsed.
type Info struct {
	Version, GitCommit, BuildDate string
	GoVersion, Platform           string
	SemVer                        *semver.Version
}

// GetInfo returns the parsed build information.
func GetInfo() (*Info, error) {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}

	return &Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		SemVer:    sv,
	}, nil
}

// String is the one-line banner used by `aegis version` and the startup log.
func String() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("Aegis v%s (invalid version)", Version)
	}

	parts := []string{"Aegis v" + info.SemVer.String()}
	if info.GitCommit != "unknown" && info.GitCommit != "" {
		commit := info.GitCommit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		parts = append(parts, "commit "+commit)
	}
	if info.BuildDate != "unknown" && info.BuildDate != "" {
		parts = append(parts, "built "+info.BuildDate)
	}
	return strings.Join(parts, ", ")
}

// Detailed returns multi-line build information for `aegis version --detailed`.
func Detailed() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("Aegis v%s (error: %v)", Version, err)
	}

	lines := []string{
		"Aegis v" + info.Version,
		"Git Commit: " + info.GitCommit,
		"Build Date: " + info.BuildDate,
	}
	if pre := info.SemVer.Prerelease(); pre != "" {
		lines = append(lines, "Prerelease: "+pre)
	}
	if meta := info.SemVer.Metadata(); meta != "" {
		lines = append(lines, "Build Metadata: "+meta)
	}
	lines = append(lines,
		"Go Version: "+info.GoVersion,
		"Platform: "+info.Platform,
	)
	return strings.Join(lines, "\n")
}

// IsDevelopment reports whether build information was not injected.
func IsDevelopment() bool {
	return GitCommit == "unknown" || BuildDate == "unknown"
}

// SetBuildInfo overrides build information; tests use it.
func SetBuildInfo(version, gitCommit, buildDate string) {
	Version = version
	GitCommit = gitCommit
	BuildDate = buildDate
}
