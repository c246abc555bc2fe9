package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData_Unset(t *testing.T) {
	var buf bytes.Buffer
	PrintBuildData(&buf)
	assert.Equal(t, "Build version: N/A\nBuild date: N/A\nBuild commit: N/A\n", buf.String())
	assert.Equal(t, "N/A", Version())
}

func TestPrintBuildData_Stamped(t *testing.T) {
	prevV, prevD, prevC := buildVersion, buildDate, buildCommit
	t.Cleanup(func() { buildVersion, buildDate, buildCommit = prevV, prevD, prevC })

	buildVersion, buildDate, buildCommit = "v1.2.0", "2025-03-01", "abc123"

	var buf bytes.Buffer
	PrintBuildData(&buf)
	assert.Equal(t, "Build version: v1.2.0\nBuild date: 2025-03-01\nBuild commit: abc123\n", buf.String())
	assert.Equal(t, "v1.2.0", Version())
}
