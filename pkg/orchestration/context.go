package orchestration

import (
	"errors"

	"github.com/google/uuid"

	"github.com/dimslaev/spaider/pkg/types"
)

// ErrIntentAlreadySet is returned when a run's intent is set twice.
var ErrIntentAlreadySet = errors.New("intent is already set for this run")

// Registry is the insertion-ordered set of files known to a run, keyed by
// cleaned path.
type Registry struct {
	order []string
	files map[string]types.FileContext
}

func NewRegistry() *Registry {
	return &Registry{files: make(map[string]types.FileContext)}
}

// Add inserts f unless its path is already known and reports whether it did.
func (r *Registry) Add(f types.FileContext) bool {
	f.Path = types.CleanPath(f.Path)
	if f.Path == "" {
		return false
	}
	if _, ok := r.files[f.Path]; ok {
		return false
	}
	f.Symbols = append([]string(nil), f.Symbols...)
	r.files[f.Path] = f
	r.order = append(r.order, f.Path)
	return true
}

// Get returns a copy of the entry for path.
func (r *Registry) Get(path string) (types.FileContext, bool) {
	f, ok := r.files[types.CleanPath(path)]
	if ok {
		f.Symbols = append([]string(nil), f.Symbols...)
	}
	return f, ok
}

// SetContent marks a known file as loaded with content.
func (r *Registry) SetContent(path, content string) bool {
	path = types.CleanPath(path)
	f, ok := r.files[path]
	if !ok {
		return false
	}
	f.Content = content
	f.Loaded = true
	r.files[path] = f
	return true
}

// Paths returns the known paths in insertion order.
func (r *Registry) Paths() []string {
	return append([]string(nil), r.order...)
}

// Files returns copies of the entries in insertion order. Changing them
// does not affect the registry.
func (r *Registry) Files() []types.FileContext {
	out := make([]types.FileContext, 0, len(r.order))
	for _, p := range r.order {
		f := r.files[p]
		f.Symbols = append([]string(nil), f.Symbols...)
		out = append(out, f)
	}
	return out
}

func (r *Registry) Len() int { return len(r.order) }

// PipelineContext is the state of one run. Only the Orchestrator mutates
// it; stages get read views and return deltas.
type PipelineContext struct {
	RunID       string
	UserPrompt  string
	ProjectRoot string

	registry  *Registry
	intent    *types.Intent
	overviews []types.ChangeOverview
	changes   map[string][]types.Change
}

func NewPipelineContext(prompt, projectRoot string) *PipelineContext {
	return &PipelineContext{
		RunID:       uuid.NewString(),
		UserPrompt:  prompt,
		ProjectRoot: projectRoot,
		registry:    NewRegistry(),
		changes:     make(map[string][]types.Change),
	}
}

// Files is the read view handed to stages.
func (pc *PipelineContext) Files() []types.FileContext { return pc.registry.Files() }

// KnownPaths lists the paths already in the run.
func (pc *PipelineContext) KnownPaths() []string { return pc.registry.Paths() }

// AddFiles merges a delta and returns the paths that were new.
func (pc *PipelineContext) AddFiles(delta []types.FileContext) []string {
	var added []string
	for _, f := range delta {
		if pc.registry.Add(f) {
			added = append(added, types.CleanPath(f.Path))
		}
	}
	return added
}

// File returns the entry for path.
func (pc *PipelineContext) File(path string) (types.FileContext, bool) {
	return pc.registry.Get(path)
}

// Intent returns the intent once it has been set.
func (pc *PipelineContext) Intent() (types.Intent, bool) {
	if pc.intent == nil {
		return types.Intent{}, false
	}
	return *pc.intent, true
}

// SetIntent stores the intent. It can only be called once.
func (pc *PipelineContext) SetIntent(intent types.Intent) error {
	if pc.intent != nil {
		return ErrIntentAlreadySet
	}
	pc.intent = &intent
	return nil
}

func (pc *PipelineContext) Overviews() []types.ChangeOverview {
	return append([]types.ChangeOverview(nil), pc.overviews...)
}

func (pc *PipelineContext) SetOverviews(overviews []types.ChangeOverview) {
	pc.overviews = append([]types.ChangeOverview(nil), overviews...)
}

// AttachChanges appends generated changes for path.
func (pc *PipelineContext) AttachChanges(path string, changes []types.Change) {
	path = types.CleanPath(path)
	pc.changes[path] = append(pc.changes[path], changes...)
}

func (pc *PipelineContext) Changes(path string) []types.Change {
	return append([]types.Change(nil), pc.changes[types.CleanPath(path)]...)
}
