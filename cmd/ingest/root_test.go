package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir string) string {
	path := filepath.Join(dir, "config.yaml")
	body := "model:\n  default_model:\n    model_id: gpt-4o-mini\n    api_key: sk-test\n" +
		"setting:\n  log_file: " + filepath.Join(dir, "ingest.log") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestStatusNotLoaded(t *testing.T) {
	dir := t.TempDir()
	out := &bytes.Buffer{}

	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"status", "--config", writeConfig(t, dir), "--persist-dir", filepath.Join(dir, "db")})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "not loaded\n", out.String())
}

func TestBuildEmptyPolicyDir(t *testing.T) {
	dir := t.TempDir()
	out := &bytes.Buffer{}

	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{
		"build",
		"--config", writeConfig(t, dir),
		"--policy-dir", filepath.Join(dir, "policy"),
		"--persist-dir", filepath.Join(dir, "db"),
	})
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "policy"), 0o755))
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "built gen-")

	out.Reset()
	cmd = newRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"status", "--config", writeConfig(t, dir), "--persist-dir", filepath.Join(dir, "db")})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "generation", out.String()[:len("generation")])
	assert.Contains(t, out.String(), ", 0 chunks\n")
}

func TestMissingConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"status", "--config", filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, cmd.Execute())
}
