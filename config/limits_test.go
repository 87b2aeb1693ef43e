package config

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseOverridesDefaults(t *testing.T) {
	l, err := Parse(strings.NewReader("max_call_depth: 4\nmax_operand_stack: 8\n"))
	require.NoError(t, err)
	require.Equal(t, 4, l.MaxCallDepth)
	require.Equal(t, 8, l.MaxOperandStack)
}

func TestParsePartialOverrideKeepsOtherDefault(t *testing.T) {
	l, err := Parse(strings.NewReader("max_call_depth: 4\n"))
	require.NoError(t, err)
	require.Equal(t, 4, l.MaxCallDepth)
	require.Equal(t, Defaults().MaxOperandStack, l.MaxOperandStack)
}

func TestParseEmptyYieldsDefaults(t *testing.T) {
	l, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, Defaults(), l)
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/limits.yaml"
	require.NoError(t, writeFile(path, "max_call_depth: 2\nmax_operand_stack: 16\n"))

	l, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, l.MaxCallDepth)
	require.Equal(t, 16, l.MaxOperandStack)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/limits.yaml")
	require.Error(t, err)
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
