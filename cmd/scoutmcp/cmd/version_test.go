package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutmcp/scoutmcp/pkg/version"
)

// runVersion executes the version command with the given flags.
func runVersion(t *testing.T, args ...string) string {
	t.Helper()

	cmd := newVersionCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return buf.String()
}

func TestVersionCmd_Default_PrintsBanner(t *testing.T) {
	out := runVersion(t)

	assert.Contains(t, out, "scoutmcp")
	assert.Contains(t, out, version.Version)
	assert.Contains(t, out, "commit")
}

func TestVersionCmd_Short_PrintsBareVersion(t *testing.T) {
	out := runVersion(t, "--short")

	assert.Equal(t, version.Version, strings.TrimSpace(out))
}

func TestVersionCmd_JSON_PrintsBuildInfo(t *testing.T) {
	out := runVersion(t, "--json")

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))

	assert.Equal(t, version.Version, info["version"])
	for _, key := range []string{"commit", "date", "go_version", "os", "arch"} {
		assert.Contains(t, info, key)
	}
}

func TestVersionCmd_RegisteredOnRoot(t *testing.T) {
	found, _, err := NewRootCmd().Find([]string{"version"})
	require.NoError(t, err)
	assert.Equal(t, "version", found.Name())
}
