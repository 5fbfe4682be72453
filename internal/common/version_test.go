package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetVersionVars(t *testing.T) {
	t.Helper()
	origVersion, origBuild, origCommit := Version, Build, GitCommit
	t.Cleanup(func() {
		Version, Build, GitCommit = origVersion, origBuild, origCommit
	})
	Version, Build, GitCommit = "dev", "unknown", "unknown"
}

func TestApplyVersionFile(t *testing.T) {
	resetVersionVars(t)

	applyVersionFile(strings.NewReader(`
# release metadata
version: 1.4.2
build: 2026-08-21T10:00:00Z
commit: ab12cd3
unknown-key: ignored
not a key value line
`))

	assert.Equal(t, "1.4.2", GetVersion())
	assert.Equal(t, "2026-08-21T10:00:00Z", GetBuild())
	assert.Equal(t, "ab12cd3", GetGitCommit())
}

func TestApplyVersionFile_LdflagsWin(t *testing.T) {
	resetVersionVars(t)
	Version = "2.0.0"

	applyVersionFile(strings.NewReader("version: 1.0.0\nbuild: b1\n"))

	assert.Equal(t, "2.0.0", GetVersion(), "file must not override an ldflags value")
	assert.Equal(t, "b1", GetBuild())
}

func TestApplyVersionFile_EmptyValuesIgnored(t *testing.T) {
	resetVersionVars(t)

	applyVersionFile(strings.NewReader("version:\nbuild:   \n"))

	assert.Equal(t, "dev", GetVersion())
	assert.Equal(t, "unknown", GetBuild())
}
