package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupDataDir writes a small knowledge base and an empty config file
func setupDataDir(t *testing.T) (dataDir, configPath string) {
	t.Helper()
	dataDir = t.TempDir()

	files := map[string]string{
		"controls.json":        `{"controls": [{"name": "Button", "category": "Input", "description": "A clickable button."}]}`,
		"xaml-patterns.json":   `{"patterns": [{"name": "Grid Layout", "description": "Rows and columns."}]}`,
		"migration-guide.json": `{"title": "Moving from WPF"}`,
		"guides/intro.md":      "---\ndescription: Where to start.\n---\nHello.\n",
	}
	for name, content := range files {
		path := filepath.Join(dataDir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	configPath = filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("watch_data: false\n"), 0644))
	return dataDir, configPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRenderRaw(t *testing.T) {
	dataDir, configPath := setupDataDir(t)

	out, err := execute(t, "render", "avalonia://controls/button", "--raw",
		"--config", configPath, "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "# Button")
	assert.Contains(t, out, "A clickable button.")
}

func TestRenderMarkdown(t *testing.T) {
	dataDir, configPath := setupDataDir(t)

	out, err := execute(t, "render", "avalonia://xaml-patterns", "--style", "notty",
		"--config", configPath, "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Grid Layout")
	assert.Contains(t, out, "Rows and columns.")
}

func TestRenderUnknownResource(t *testing.T) {
	dataDir, configPath := setupDataDir(t)

	_, err := execute(t, "render", "avalonia://nope", "--config", configPath, "--data-dir", dataDir)
	assert.ErrorContains(t, err, "unknown resource")

	_, err = execute(t, "render", "--config", configPath)
	assert.Error(t, err, "render needs a URI")
}

func TestResources(t *testing.T) {
	dataDir, configPath := setupDataDir(t)

	out, err := execute(t, "resources", "--config", configPath, "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "avalonia://controls")
	assert.Contains(t, out, "avalonia://controls/{name}")
	assert.Contains(t, out, "avalonia://guides/intro")
	assert.Contains(t, out, "Where to start.")
}

func TestPreload(t *testing.T) {
	dataDir, configPath := setupDataDir(t)

	out, err := execute(t, "preload", "--config", configPath, "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "controls.json")
	assert.Contains(t, out, "Entries: 3/50")

	require.NoError(t, os.Remove(filepath.Join(dataDir, "controls.json")))
	out, err = execute(t, "preload", "--config", configPath, "--data-dir", dataDir)
	assert.ErrorContains(t, err, "1 of 3 files failed")
	assert.Contains(t, out, "fail")
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  max_entries: 0\n"), 0644))

	_, err := execute(t, "resources", "--config", path)
	assert.ErrorContains(t, err, "error loading config")
}

func TestGlamourStyle(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, "light", glamourStyle(&buf, "light"))
	assert.Equal(t, "notty", glamourStyle(&buf, "auto"), "non-terminal output")
	assert.Equal(t, "notty", glamourStyle(&buf, ""))
}

func TestVerboseLogsToStderr(t *testing.T) {
	dataDir, configPath := setupDataDir(t)

	run := func(args ...string) (stdout, stderr string) {
		var out, errOut bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)
		cmd.SetArgs(append(args, "--config", configPath, "--data-dir", dataDir))
		require.NoError(t, cmd.ExecuteContext(context.Background()))
		return out.String(), errOut.String()
	}

	stdout, stderr := run("resources", "--verbose")
	assert.Contains(t, stdout, "avalonia://controls")
	assert.Contains(t, stderr, "Configuration loaded")
	assert.Contains(t, stderr, "MCP server initialized")
	assert.NotContains(t, stdout, "MCP server initialized", "logs never reach stdout")

	_, stderr = run("resources")
	assert.NotContains(t, stderr, "Configuration loaded")
}
