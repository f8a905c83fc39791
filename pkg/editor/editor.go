// Package editor applies generated changes to project files.
package editor

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dimslaev/spaider/pkg/filesystem"
	"github.com/dimslaev/spaider/pkg/llm"
	"github.com/dimslaev/spaider/pkg/parser"
	"github.com/dimslaev/spaider/pkg/prompts"
	"github.com/dimslaev/spaider/pkg/types"
	"github.com/dimslaev/spaider/pkg/utils"
)

// State is the terminal state of a file after application.
type State string

const (
	StateApplied  State = "applied"
	StateRejected State = "rejected"
)

// Result records what happened to one file.
type Result struct {
	Path      string
	Operation types.Operation
	State     State
	// Existed reports whether the file was present before application.
	Existed bool
	Before  string
	After   string
	// Warning is set when the rewritten content looks truncated. The
	// content is written regardless.
	Warning string
	Err     error
}

// UnsupportedOperationError is returned when a deletion reaches the
// modification path.
type UnsupportedOperationError struct {
	Path      string
	Operation types.Operation
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("cannot apply %s to %s as a modification", e.Operation, e.Path)
}

// Batch is the change set of one file.
type Batch struct {
	Path    string
	Changes []types.Change
}

// Applicator writes changes through a FileSystem. Only modifications reach
// the completion backend.
type Applicator struct {
	fs     filesystem.FileSystem
	client llm.Completer
	logger *utils.Logger
}

func New(fs filesystem.FileSystem, client llm.Completer, logger *utils.Logger) *Applicator {
	if logger == nil {
		logger = utils.Discard()
	}
	return &Applicator{fs: fs, client: client, logger: logger}
}

// Apply applies the changes of one file. The operation of the first change
// selects the path taken. Failures leave the result Rejected with Err set.
func (a *Applicator) Apply(ctx context.Context, path string, changes []types.Change) *Result {
	path = types.CleanPath(path)
	res := &Result{Path: path}
	if len(changes) == 0 {
		return a.reject(res, fmt.Errorf("no changes for %s", path))
	}
	res.Operation = changes[0].Operation

	before, err := a.fs.ReadFile(path)
	switch {
	case err == nil:
		res.Existed = true
		res.Before = before
	case !filesystem.IsNotExist(err):
		return a.reject(res, fmt.Errorf("failed to read %s: %w", path, err))
	}

	switch res.Operation {
	case types.OperationNewFile:
		res.After = changes[0].NewCodeBlock
		if len(changes) > 1 {
			a.logger.Logf("editor: %s has %d new_file changes, using the first", path, len(changes))
		}

	case types.OperationDeleteFile:
		if err := a.fs.DeleteFile(path); err != nil {
			return a.reject(res, fmt.Errorf("failed to delete %s: %w", path, err))
		}
		res.State = StateApplied
		a.logger.Logf("editor: deleted %s", path)
		return res

	case types.OperationModifyFile:
		if !res.Existed {
			return a.reject(res, fmt.Errorf("cannot modify %s: file does not exist", path))
		}
		after, err := a.ApplyModifications(ctx, path, before, changes)
		if err != nil {
			return a.reject(res, err)
		}
		res.After = after
		if looksTruncated(after, path) {
			res.Warning = "rewritten content looks truncated"
			a.logger.Logf("editor: WARNING %s: %s", path, res.Warning)
		}

	default:
		return a.reject(res, fmt.Errorf("unknown operation %q for %s", res.Operation, path))
	}

	if err := a.fs.WriteFile(path, res.After); err != nil {
		return a.reject(res, fmt.Errorf("failed to write %s: %w", path, err))
	}
	res.State = StateApplied
	a.logger.Logf("editor: applied %s to %s", res.Operation, path)
	return res
}

// ApplyModifications asks the backend for the complete rewritten content of
// path. A change list led by a deletion fails before any backend call.
// The reply is cleaned of code fences and trimmed; when content ended with a
// newline, one newline is appended to the result.
func (a *Applicator) ApplyModifications(ctx context.Context, path, content string, changes []types.Change) (string, error) {
	if len(changes) == 0 {
		return "", fmt.Errorf("no modifications for %s", path)
	}
	if changes[0].Operation == types.OperationDeleteFile {
		return "", &UnsupportedOperationError{Path: path, Operation: changes[0].Operation}
	}

	prompt := prompts.BuildApplyPrompt(path, content, changes)
	reply, err := a.client.Complete(ctx, prompts.ApplyRole(), prompt)
	if err != nil {
		return "", fmt.Errorf("failed to apply modifications to %s: %w", path, err)
	}

	updated := strings.TrimSpace(parser.CleanCodeResponse(reply, path))
	if strings.HasSuffix(content, "\n") && updated != "" {
		updated += "\n"
	}
	return updated, nil
}

// ApplyAll applies every batch and returns results in batch order. With
// parallelism above one, batches run concurrently; each batch must target a
// different file. When ctx is cancelled the results are returned together
// with ctx.Err(); batches that were never started have a nil entry.
func (a *Applicator) ApplyAll(ctx context.Context, batches []Batch, parallelism int) ([]*Result, error) {
	results := make([]*Result, len(batches))

	if parallelism <= 1 {
		for i, b := range batches {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			results[i] = a.Apply(ctx, b.Path, b.Changes)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, b := range batches {
		g.Go(func() error {
			results[i] = a.Apply(gctx, b.Path, b.Changes)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func (a *Applicator) reject(res *Result, err error) *Result {
	res.State = StateRejected
	res.Err = err
	a.logger.LogError(err)
	return res
}
