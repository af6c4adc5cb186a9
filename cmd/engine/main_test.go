package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigInitAndValidate(t *testing.T) {
	dir := t.TempDir()
	defaults := filepath.Join(dir, "missing.yml")

	out, err := run(t, "--data-dir", dir, "--defaults", defaults, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "config.yml"))
	_, err = os.Stat(filepath.Join(dir, "config.yml"))
	require.NoError(t, err)

	out, err = run(t, "--data-dir", dir, "--defaults", defaults, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, ": ok")
}

func TestConfigValidate_Rejects(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("app:\n  port: -1\n"), 0o644))

	_, err := run(t, "--data-dir", dir, "config", "validate")
	assert.Error(t, err)
}

func TestShippedConfigLoads(t *testing.T) {
	dir := t.TempDir()
	shipped := filepath.Join("..", "..", "config", "config.yml")

	_, err := run(t, "--data-dir", dir, "--defaults", shipped, "config", "validate")
	require.NoError(t, err)
}

func TestConfigDefault(t *testing.T) {
	out, err := run(t, "config", "default")
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &m))
	assert.Contains(t, m, "source")
	assert.Contains(t, out, "America/Lima")
}

func TestCrawl_RejectsBadRange(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "--data-dir", dir, "--defaults", filepath.Join(dir, "none.yml"),
		"crawl", "--from", "31/01/2025", "--to", "01/01/2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date range")
}

func TestCrawl_RequiresDates(t *testing.T) {
	_, err := run(t, "--data-dir", t.TempDir(), "crawl")
	assert.Error(t, err)
}
