package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dimslaev/spaider/pkg/utils"
)

// DirName is the per-project and per-user workspace directory.
const DirName = ".spaider"

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config holds every tunable of a run. It is read-only once loaded.
type Config struct {
	Provider          string  `json:"provider" yaml:"provider"`
	Model             string  `json:"model" yaml:"model"`
	BaseURL           string  `json:"base_url" yaml:"base_url"`
	APIKey            string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Temperature       float64 `json:"temperature" yaml:"temperature"`
	MaxTokens         int     `json:"max_tokens" yaml:"max_tokens"`
	TimeoutSeconds    int     `json:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries        int     `json:"max_retries" yaml:"max_retries"`
	StructuredOutputs bool    `json:"structured_outputs" yaml:"structured_outputs"`

	// Prompt budgets
	PreviewLines     int `json:"preview_lines" yaml:"preview_lines"`
	PlanPreviewLines int `json:"plan_preview_lines" yaml:"plan_preview_lines"`
	MaxTermMatches   int `json:"max_term_matches" yaml:"max_term_matches"`

	ApplyParallelism int  `json:"apply_parallelism" yaml:"apply_parallelism"`
	BatchGeneration  bool `json:"batch_generation" yaml:"batch_generation"`
	Backups          bool `json:"backups" yaml:"backups"`

	SkipPrompt bool `json:"-" yaml:"-"` // Command-scoped, never read from files
	DryRun     bool `json:"-" yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Provider:          ProviderOpenAI,
		Model:             "gpt-4o-mini",
		Temperature:       0.1,
		MaxTokens:         4096,
		TimeoutSeconds:    120,
		MaxRetries:        2,
		StructuredOutputs: true,
		PreviewLines:      20,
		PlanPreviewLines:  200,
		MaxTermMatches:    20,
		ApplyParallelism:  1,
		Backups:           true,
	}
}

// Timeout is the per-attempt backend timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadOptions tells Load where to look. Empty fields use the process defaults.
type LoadOptions struct {
	// Path, when set, replaces the home and project files.
	Path    string
	HomeDir string
	WorkDir string
	Getenv  func(string) string
}

// Load layers defaults, the user file, the project file and the environment.
// Missing files are skipped; malformed ones are errors.
func Load(opts LoadOptions) (*Config, error) {
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	cfg := Default()

	var paths []string
	if opts.Path != "" {
		paths = []string{opts.Path}
	} else {
		if opts.HomeDir == "" {
			if home, err := os.UserHomeDir(); err == nil {
				opts.HomeDir = home
			}
		}
		if opts.WorkDir == "" {
			if cwd, err := os.Getwd(); err == nil {
				opts.WorkDir = cwd
			}
		}
		if opts.HomeDir != "" {
			paths = append(paths, filepath.Join(opts.HomeDir, DirName, "config.json"))
		}
		if opts.WorkDir != "" {
			dir := filepath.Join(opts.WorkDir, DirName)
			paths = append(paths,
				filepath.Join(dir, "config.json"),
				filepath.Join(dir, "config.yaml"),
				filepath.Join(dir, "config.yml"),
			)
		}
	}

	for _, p := range paths {
		err := mergeFile(cfg, p)
		if err == nil {
			continue
		}
		if errors.Is(err, fs.ErrNotExist) && opts.Path == "" {
			continue
		}
		return nil, utils.NewConfigError(p, err)
	}

	cfg.applyEnv(opts.Getenv)
	return cfg, nil
}

// mergeFile overlays the fields present in the file at path onto cfg.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse json: %w", err)
		}
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("SPAIDER_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := getenv("SPAIDER_MODEL"); v != "" {
		c.Model = v
	}
	if v := getenv("SPAIDER_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := getenv("SPAIDER_API_KEY"); v != "" {
		c.APIKey = v
	} else if c.APIKey == "" {
		c.APIKey = getenv("OPENAI_API_KEY")
	}
}
