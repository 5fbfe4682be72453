package common

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Build metadata, injected via -ldflags at release time. Defaults identify
// a local development build.
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// GetVersion returns the semantic version string.
func GetVersion() string {
	return Version
}

// GetBuild returns the build timestamp.
func GetBuild() string {
	return Build
}

// GetGitCommit returns the short git commit hash.
func GetGitCommit() string {
	return GitCommit
}

// LoadVersionFromFile fills in build metadata from a .version file next to
// the binary. File values only apply to fields still at their defaults, so
// ldflags always win.
func LoadVersionFromFile() {
	exe, err := os.Executable()
	if err != nil {
		return
	}

	f, err := os.Open(filepath.Join(filepath.Dir(exe), ".version"))
	if err != nil {
		return
	}
	defer f.Close()

	applyVersionFile(f)
}

// applyVersionFile parses "key: value" lines (version, build, commit).
// Blank lines, comments and unknown keys are ignored.
func applyVersionFile(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		switch key {
		case "version":
			if Version == "dev" {
				Version = value
			}
		case "build":
			if Build == "unknown" {
				Build = value
			}
		case "commit":
			if GitCommit == "unknown" {
				GitCommit = value
			}
		}
	}
}
