package cmd

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimslaev/spaider/pkg/llm"
	"github.com/dimslaev/spaider/pkg/orchestration"
	"github.com/dimslaev/spaider/pkg/utils"
)

func TestRelPaths(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj")
	got := relPaths(root, []string{
		filepath.Join(root, "src", "a.ts"),
		"src/b.ts",
	})
	assert.Equal(t, []string{"src/a.ts", "src/b.ts"}, got)
	assert.Empty(t, relPaths(root, nil))
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"code", "discover", "symbols", "version"})

	for _, flag := range []string{"file", "yes", "dry-run", "batch", "parallel", "model", "no-backups"} {
		assert.NotNil(t, codeCmd.Flags().Lookup(flag), flag)
	}
}

func TestRunError(t *testing.T) {
	assert.NoError(t, runError(nil))

	transport := &orchestration.StageError{
		Stage: orchestration.StagePlan,
		Err:   &llm.TransportError{Attempts: 3, Err: errors.New("connection refused")},
	}
	err := runError(transport)
	category, ok := utils.CategoryOf(err)
	require.True(t, ok)
	assert.Equal(t, utils.CategoryNetwork, category)
	assert.Contains(t, utils.FormatError(err), "Operation: plan backend request")
	var te *llm.TransportError
	assert.True(t, errors.As(err, &te))

	cancelled := &orchestration.StageError{Stage: orchestration.StageApply, Err: context.Canceled}
	err = runError(cancelled)
	category, ok = utils.CategoryOf(err)
	require.True(t, ok)
	assert.Equal(t, utils.CategoryExecution, category)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "Error [EXEC_ERROR]: pipeline failed during apply | Component: pipeline | Operation: apply | Root Cause: context canceled", utils.FormatError(err))

	fsErr := &orchestration.StageError{Stage: orchestration.StageLoad, Err: utils.NewFileSystemError("read", "a.go", errors.New("denied"))}
	assert.Same(t, error(fsErr), runError(fsErr))

	plain := errors.New("plain")
	assert.Equal(t, plain, runError(plain))
}
