// Package orchestration sequences the pipeline stages over a per-run
// PipelineContext.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dimslaev/spaider/pkg/changetracker"
	"github.com/dimslaev/spaider/pkg/config"
	"github.com/dimslaev/spaider/pkg/editor"
	"github.com/dimslaev/spaider/pkg/filediscovery"
	"github.com/dimslaev/spaider/pkg/filesystem"
	"github.com/dimslaev/spaider/pkg/generator"
	"github.com/dimslaev/spaider/pkg/index"
	"github.com/dimslaev/spaider/pkg/intent"
	"github.com/dimslaev/spaider/pkg/llm"
	"github.com/dimslaev/spaider/pkg/planner"
	"github.com/dimslaev/spaider/pkg/prompts"
	"github.com/dimslaev/spaider/pkg/types"
	"github.com/dimslaev/spaider/pkg/utils"
)

// Status is the outcome of a run.
type Status string

const (
	StatusCompleted Status = "completed"
	// StatusPartial means at least one file was rejected.
	StatusPartial Status = "partial"
	// StatusNoOp means no file needed to change.
	StatusNoOp      Status = "no_op"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Request is one user request.
type Request struct {
	Prompt      string
	ProjectRoot string
	// Files are paths the user named up front.
	Files []string
}

// Report describes a finished run.
type Report struct {
	RunID      string
	Status     Status
	Intent     types.Intent
	Answer     string
	Discovered []string
	Overviews  []types.ChangeOverview
	Changes    map[string][]types.Change
	Results    []*editor.Result
	Diffs      []*changetracker.Diff
	BackupDir  string
	DryRun     bool
	// RawResponse holds the backend reply that failed schema validation.
	RawResponse string
	Duration    time.Duration
}

// Counts returns how many results were applied and rejected.
func (r *Report) Counts() (applied, rejected int) {
	for _, res := range r.Results {
		if res.State == editor.StateApplied {
			applied++
		} else {
			rejected++
		}
	}
	return applied, rejected
}

// Options tune a run.
type Options struct {
	PreviewLines     int
	PlanPreviewLines int
	MaxTermMatches   int
	ApplyParallelism int
	BatchGeneration  bool
	DryRun           bool
	Backups          bool
	// Answer runs the answer stage for informational requests.
	Answer bool
	// Confirm is asked once the plan is known. Nil approves.
	Confirm func(overviews []types.ChangeOverview) bool

	Extractor index.Extractor
	Matcher   index.Matcher
	// BackupStore replaces .spaider/backups/<run-id>/ under the project root.
	BackupStore filesystem.FileSystem
}

// OptionsFromConfig maps the loaded configuration onto run options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		PreviewLines:     cfg.PreviewLines,
		PlanPreviewLines: cfg.PlanPreviewLines,
		MaxTermMatches:   cfg.MaxTermMatches,
		ApplyParallelism: cfg.ApplyParallelism,
		BatchGeneration:  cfg.BatchGeneration,
		DryRun:           cfg.DryRun,
		Backups:          cfg.Backups && !cfg.DryRun,
		Answer:           true,
	}
}

// Orchestrator runs the pipeline. It holds no per-run state and may serve
// several runs one after another.
type Orchestrator struct {
	client llm.Completer
	fs     filesystem.FileSystem
	opts   Options
	logger *utils.Logger

	analyzer  *intent.Analyzer
	discovery *filediscovery.FileDiscovery
	planner   *planner.Planner
	generator *generator.Generator
}

func New(client llm.Completer, fs filesystem.FileSystem, opts Options, logger *utils.Logger) *Orchestrator {
	if logger == nil {
		logger = utils.Discard()
	}
	if opts.Extractor == nil {
		opts.Extractor = index.NewTreeSitterExtractor()
	}
	if opts.Matcher == nil {
		opts.Matcher = index.NewTermMatcher()
	}
	if opts.PlanPreviewLines <= 0 {
		opts.PlanPreviewLines = planner.DefaultPreviewLines
	}
	discovery := filediscovery.NewFileDiscovery(fs, filediscovery.Options{
		Extractor:      opts.Extractor,
		Matcher:        opts.Matcher,
		Logger:         logger,
		MaxTermMatches: opts.MaxTermMatches,
	})
	return &Orchestrator{
		client:    client,
		fs:        fs,
		opts:      opts,
		logger:    logger,
		analyzer:  intent.NewAnalyzer(client, opts.Extractor, opts.PreviewLines, logger),
		discovery: discovery,
		planner:   planner.New(client, opts.PlanPreviewLines, logger),
		generator: generator.New(client, logger),
	}
}

// Run executes the full pipeline for req. A stage failure returns the
// partial report together with a *StageError.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	pc, report := o.begin(req)
	defer func() { report.Duration = time.Since(start) }()

	if err := o.loadInitial(pc, req.Files); err != nil {
		return o.fail(report, StageLoad, err)
	}

	in, err := o.analyze(ctx, pc, report)
	if err != nil {
		return o.fail(report, StageIntent, err)
	}

	if !in.EditMode {
		report.Status = StatusNoOp
		if !o.opts.Answer {
			return report, nil
		}
		if err := o.discover(ctx, pc, report); err != nil {
			return o.fail(report, StageDiscovery, err)
		}
		if err := o.answer(ctx, pc, report); err != nil {
			return o.fail(report, StageAnswer, err)
		}
		return report, nil
	}

	if err := o.discover(ctx, pc, report); err != nil {
		return o.fail(report, StageDiscovery, err)
	}

	o.logger.LogProcessStep(prompts.PlanningChanges())
	overviews, err := o.planner.Plan(ctx, in.Description, pc.Files())
	if err != nil {
		return o.fail(report, StagePlan, err)
	}
	pc.SetOverviews(overviews)
	report.Overviews = pc.Overviews()
	if len(overviews) == 0 {
		o.logger.LogProcessStep(prompts.NoChangesPlanned())
		report.Status = StatusNoOp
		return report, nil
	}

	if o.opts.Confirm != nil && !o.opts.Confirm(report.Overviews) {
		o.logger.LogProcessStep(prompts.ChangesCancelled())
		report.Status = StatusCancelled
		return report, nil
	}

	if err := o.generate(ctx, pc, report); err != nil {
		return o.fail(report, StageGenerate, err)
	}

	if err := o.apply(ctx, pc, report); err != nil {
		return o.fail(report, StageApply, err)
	}

	applied, rejected := report.Counts()
	switch {
	case applied+rejected == 0:
		report.Status = StatusNoOp
	case rejected > 0:
		report.Status = StatusPartial
	default:
		report.Status = StatusCompleted
	}
	o.logger.Logf("run %s finished: %d applied, %d rejected", pc.RunID, applied, rejected)
	return report, nil
}

// Discover runs loading, intent analysis and discovery only, whatever the
// edit mode.
func (o *Orchestrator) Discover(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	pc, report := o.begin(req)
	defer func() { report.Duration = time.Since(start) }()

	if err := o.loadInitial(pc, req.Files); err != nil {
		return o.fail(report, StageLoad, err)
	}
	if _, err := o.analyze(ctx, pc, report); err != nil {
		return o.fail(report, StageIntent, err)
	}
	if err := o.runDiscovery(ctx, pc, report); err != nil {
		return o.fail(report, StageDiscovery, err)
	}
	report.Status = StatusNoOp
	return report, nil
}

func (o *Orchestrator) begin(req Request) (*PipelineContext, *Report) {
	root := req.ProjectRoot
	if root == "" {
		root = "."
	}
	pc := NewPipelineContext(req.Prompt, root)
	o.logger.SetCorrelationID(pc.RunID)
	o.logger.Logf("run %s started: %q", pc.RunID, req.Prompt)
	return pc, &Report{RunID: pc.RunID, DryRun: o.opts.DryRun}
}

func (o *Orchestrator) loadInitial(pc *PipelineContext, paths []string) error {
	delta := make([]types.FileContext, 0, len(paths))
	for _, p := range paths {
		delta = append(delta, types.FileContext{Path: p})
	}
	pc.AddFiles(delta)
	return o.loadContent(pc)
}

// loadContent reads every file not loaded yet. Missing files stay unloaded.
func (o *Orchestrator) loadContent(pc *PipelineContext) error {
	for _, f := range pc.Files() {
		if f.Loaded {
			continue
		}
		content, err := o.fs.ReadFile(f.Path)
		if err != nil {
			if filesystem.IsNotExist(err) {
				o.logger.Logf("file %s does not exist yet", f.Path)
				continue
			}
			return utils.NewFileSystemError("read", f.Path, err)
		}
		pc.registry.SetContent(f.Path, content)
	}
	return nil
}

func (o *Orchestrator) analyze(ctx context.Context, pc *PipelineContext, report *Report) (types.Intent, error) {
	o.logger.LogProcessStep(prompts.AnalyzingRequest())
	in, err := o.analyzer.Analyze(ctx, pc.UserPrompt, pc.Files())
	if err != nil {
		return types.Intent{}, err
	}
	if err := pc.SetIntent(in); err != nil {
		return types.Intent{}, err
	}
	report.Intent = in
	return in, nil
}

// discover runs discovery when the intent asks for more context or carries hints.
func (o *Orchestrator) discover(ctx context.Context, pc *PipelineContext, report *Report) error {
	in, _ := pc.Intent()
	if !in.NeedsMoreContext && len(in.FilePaths) == 0 && len(in.SearchTerms) == 0 {
		return nil
	}
	return o.runDiscovery(ctx, pc, report)
}

func (o *Orchestrator) runDiscovery(ctx context.Context, pc *PipelineContext, report *Report) error {
	in, _ := pc.Intent()
	o.logger.LogProcessStep(prompts.DiscoveringFiles())
	res, err := o.discovery.Discover(ctx, in, pc.KnownPaths(), pc.ProjectRoot)
	if err != nil {
		return err
	}
	report.Discovered = append(report.Discovered, pc.AddFiles(res.Files)...)
	o.logger.LogProcessStep(prompts.DiscoveredFiles(res.FromPaths, res.FromTerms))
	return o.loadContent(pc)
}

func (o *Orchestrator) answer(ctx context.Context, pc *PipelineContext, report *Report) error {
	prompt := prompts.BuildAnswerPrompt(pc.UserPrompt, pc.Files(), o.opts.PlanPreviewLines)
	text, err := o.client.Complete(ctx, prompts.AnswerRole(), prompt)
	if err != nil {
		return err
	}
	report.Answer = text
	return nil
}

func (o *Orchestrator) generate(ctx context.Context, pc *PipelineContext, report *Report) error {
	in, _ := pc.Intent()
	overviews := pc.Overviews()

	if o.opts.BatchGeneration {
		o.logger.LogProcessStep(prompts.GeneratingBatch(len(overviews)))
		files := make(map[string]types.FileContext, len(overviews))
		for _, ov := range overviews {
			if f, ok := pc.File(ov.FilePath); ok {
				files[ov.FilePath] = f
			}
		}
		byPath, err := o.generator.GenerateBatch(ctx, in.Description, overviews, files)
		if err != nil {
			return err
		}
		for _, ov := range overviews {
			pc.AttachChanges(ov.FilePath, byPath[ov.FilePath])
		}
	} else {
		for _, ov := range overviews {
			o.logger.LogProcessStep(prompts.GeneratingChanges(ov.FilePath))
			f, ok := pc.File(ov.FilePath)
			if !ok {
				f = types.FileContext{Path: ov.FilePath}
			}
			changes, err := o.generator.Generate(ctx, in.Description, ov, f)
			if err != nil {
				return err
			}
			pc.AttachChanges(ov.FilePath, changes)
		}
	}

	report.Changes = make(map[string][]types.Change, len(overviews))
	for _, ov := range overviews {
		report.Changes[ov.FilePath] = pc.Changes(ov.FilePath)
	}
	return nil
}

func (o *Orchestrator) apply(ctx context.Context, pc *PipelineContext, report *Report) error {
	var batches []editor.Batch
	for _, ov := range pc.Overviews() {
		changes := pc.Changes(ov.FilePath)
		if len(changes) == 0 {
			o.logger.Logf("no changes generated for %s, skipping", ov.FilePath)
			continue
		}
		batches = append(batches, editor.Batch{Path: ov.FilePath, Changes: changes})
	}
	if len(batches) == 0 {
		return nil
	}

	target := o.fs
	if o.opts.DryRun {
		target = filesystem.NewOverlay(o.fs)
	}
	applicator := editor.New(target, o.client, o.logger)

	o.logger.LogProcessStep(prompts.ApplyingChanges(len(batches)))
	results, applyErr := applicator.ApplyAll(ctx, batches, o.opts.ApplyParallelism)
	for _, res := range results {
		if res != nil {
			report.Results = append(report.Results, res)
		}
	}

	// files written before a cancellation are still diffed and backed up
	if err := o.record(pc, report); err != nil {
		return errors.Join(applyErr, err)
	}
	return applyErr
}

// record computes diffs for applied results and backs up what they replaced.
func (o *Orchestrator) record(pc *PipelineContext, report *Report) error {
	backup, err := o.newBackup(pc)
	if err != nil {
		return err
	}
	var errs []error
	for _, res := range report.Results {
		if res.State != editor.StateApplied {
			continue
		}
		diff := changetracker.GetDiff(res.Path, res.Before, res.After)
		report.Diffs = append(report.Diffs, diff)
		if backup != nil {
			if err := backup.Record(res.Path, res.Operation, res.Existed, res.Before, diff); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if backup != nil {
		if err := backup.WriteManifest(pc.UserPrompt); err != nil {
			errs = append(errs, err)
		}
		report.BackupDir = backup.Dir
	}
	// a failed backup does not fail the run
	if err := errors.Join(errs...); err != nil {
		o.logger.LogError(fmt.Errorf("backup incomplete: %w", err))
	}
	return nil
}

func (o *Orchestrator) newBackup(pc *PipelineContext) (*changetracker.Backup, error) {
	switch {
	case o.opts.DryRun || !o.opts.Backups:
		return nil, nil
	case o.opts.BackupStore != nil:
		return changetracker.NewBackupIn(o.opts.BackupStore, pc.RunID), nil
	default:
		b, err := changetracker.NewBackup(pc.ProjectRoot, pc.RunID)
		if err != nil {
			return nil, utils.NewFileSystemError("backup", pc.ProjectRoot, err)
		}
		return b, nil
	}
}

func (o *Orchestrator) fail(report *Report, stage Stage, err error) (*Report, error) {
	report.Status = StatusFailed
	stageErr := &StageError{Stage: stage, Err: err}
	if raw, ok := stageErr.RawResponse(); ok {
		report.RawResponse = raw
	}
	o.logger.LogError(stageErr)
	return report, stageErr
}
