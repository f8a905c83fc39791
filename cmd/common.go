package cmd

import (
	"errors"
	"path/filepath"

	"github.com/dimslaev/spaider/pkg/config"
	"github.com/dimslaev/spaider/pkg/filesystem"
	"github.com/dimslaev/spaider/pkg/llm"
	"github.com/dimslaev/spaider/pkg/orchestration"
	"github.com/dimslaev/spaider/pkg/prompts"
	"github.com/dimslaev/spaider/pkg/utils"
)

// session bundles what every pipeline command needs.
type session struct {
	cfg    *config.Config
	logger *utils.Logger
	fs     *filesystem.Local
	client *llm.Client
}

// newSession loads the configuration for the project root and connects the
// backend. model overrides the configured model when set.
func newSession(model string, skipPrompt bool) (*session, error) {
	fs, err := filesystem.NewLocal(projectRoot)
	if err != nil {
		return nil, utils.NewFileSystemError("open", projectRoot, err)
	}

	cfg, err := config.Load(config.LoadOptions{Path: configPath, WorkDir: fs.Root})
	if err != nil {
		return nil, utils.NewUserError(prompts.ConfigLoadFailed(err), err)
	}
	if model != "" {
		cfg.Model = model
	}
	cfg.SkipPrompt = skipPrompt
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := utils.GetLogger(skipPrompt)
	client, err := llm.NewClientFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, fs: fs, client: client}, nil
}

// relPaths makes user supplied paths relative to the project root.
func relPaths(root string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if filepath.IsAbs(p) {
			if rel, err := filepath.Rel(root, p); err == nil {
				p = rel
			}
		}
		out = append(out, filepath.ToSlash(p))
	}
	return out
}

// runError classifies a pipeline error for FormatError. Backend failures
// become network errors, other stage failures execution errors. Errors
// that already carry a category are returned unchanged.
func runError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := utils.CategoryOf(err); ok {
		return err
	}
	var stage string
	var stageErr *orchestration.StageError
	if errors.As(err, &stageErr) {
		stage = string(stageErr.Stage)
	}
	var transportErr *llm.TransportError
	if errors.As(err, &transportErr) {
		op := "backend request"
		if stage != "" {
			op = stage + " " + op
		}
		return utils.NewNetworkError(op, err)
	}
	if stage != "" {
		return utils.NewExecutionError("pipeline", stage, stageErr.Err)
	}
	return err
}
