package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimslaev/spaider/pkg/utils"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func noEnv(string) string { return "" }

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(LoadOptions{HomeDir: t.TempDir(), WorkDir: t.TempDir(), Getenv: noEnv})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadLayering(t *testing.T) {
	home, work := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(home, DirName, "config.json"), `{"model":"home-model","max_retries":5,"preview_lines":7}`)
	writeFile(t, filepath.Join(work, DirName, "config.json"), `{"model":"project-model"}`)
	writeFile(t, filepath.Join(work, DirName, "config.yaml"), "max_term_matches: 3\nbackups: false\n")

	env := map[string]string{"SPAIDER_BASE_URL": "http://localhost:8080/v1", "OPENAI_API_KEY": "sk-test"}
	cfg, err := Load(LoadOptions{HomeDir: home, WorkDir: work, Getenv: func(k string) string { return env[k] }})
	require.NoError(t, err)

	assert.Equal(t, "project-model", cfg.Model)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 7, cfg.PreviewLines)
	assert.Equal(t, 3, cfg.MaxTermMatches)
	assert.False(t, cfg.Backups)
	assert.True(t, cfg.StructuredOutputs)
	assert.Equal(t, "http://localhost:8080/v1", cfg.BaseURL)
	assert.Equal(t, "sk-test", cfg.APIKey)
}

func TestLoadEnvOverridesFiles(t *testing.T) {
	work := t.TempDir()
	writeFile(t, filepath.Join(work, DirName, "config.json"), `{"provider":"openai","model":"a","api_key":"from-file"}`)

	env := map[string]string{"SPAIDER_PROVIDER": "ollama", "SPAIDER_MODEL": "qwen2.5-coder:7b", "OPENAI_API_KEY": "ignored"}
	cfg, err := Load(LoadOptions{HomeDir: t.TempDir(), WorkDir: work, Getenv: func(k string) string { return env[k] }})
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, "qwen2.5-coder:7b", cfg.Model)
	assert.Equal(t, "from-file", cfg.APIKey)
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(LoadOptions{Path: filepath.Join(dir, "missing.json"), Getenv: noEnv})
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `{"model":`)
	_, err = Load(LoadOptions{Path: bad, Getenv: noEnv})
	var structured *utils.StructuredError
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, utils.CategoryConfiguration, structured.Category)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown provider", func(c *Config) { c.Provider = "gemini" }, "provider"},
		{"empty model", func(c *Config) { c.Model = "" }, "model"},
		{"temperature too high", func(c *Config) { c.Temperature = 2.5 }, "temperature"},
		{"zero timeout", func(c *Config) { c.TimeoutSeconds = 0 }, "timeout_seconds"},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, "max_retries"},
		{"zero parallelism", func(c *Config) { c.ApplyParallelism = 0 }, "apply_parallelism"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			category, ok := utils.CategoryOf(err)
			assert.True(t, ok)
			assert.Equal(t, utils.CategoryValidation, category)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
