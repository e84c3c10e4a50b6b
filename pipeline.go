package mdpipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-mdpipe/internal/logfields"
	"github.com/alnah/go-mdpipe/internal/tags"
)

// family is the state shared by a root pipeline and every pipeline spawned
// from it.
type family struct {
	store    FileStore
	renderer Renderer
	parser   FrontMatterParser
	logger   *slog.Logger
	now      func() time.Time
	runID    string

	mu       sync.Mutex
	items    map[string]*Item
	assetOut map[string]string // output -> input
	loose    []Asset           // assets declared on pipelines

	importSeq atomic.Int64

	gate     chan struct{}
	gateOnce sync.Once
	ctx      context.Context // set when the gate opens
	started  time.Time
}

// open opens the start gate once. ctx becomes the context of every stage.
func (f *family) open(ctx context.Context) {
	f.gateOnce.Do(func() {
		f.ctx = ctx
		f.started = f.now()
		f.logger.Debug("start gate open")
		close(f.gate)
	})
}

// runContext is valid once the gate is open.
func (f *family) runContext() context.Context {
	<-f.gate
	return f.ctx
}

// register adds it under its path, failing on duplicates.
func (f *family) register(it *Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[it.path]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateItemPath, it.path)
	}
	f.items[it.path] = it
	return nil
}

// declareAsset records an asset pair. fresh is false for a repeated pair.
func (f *family) declareAsset(a Asset) (fresh bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if prev, ok := f.assetOut[a.Output]; ok {
		if prev == a.Input {
			return false, nil
		}
		return false, fmt.Errorf("%w: %s and %s both copy to %s", ErrConflictingAssetOutput, prev, a.Input, a.Output)
	}
	f.assetOut[a.Output] = a.Input
	return true, nil
}

// InitFunc populates a spawned pipeline after the start gate opens and
// before its items run.
type InitFunc func(ctx context.Context, p *Pipeline) error

// Pipeline declares items and runs them through its transform chain.
type Pipeline struct {
	fam    *family
	parent *Pipeline
	input  string
	output string
	logger *slog.Logger

	mu    sync.Mutex
	chain *chain

	pending *tracker
	ready   chan struct{}
}

// New creates the root pipeline of a new family. Its input and output
// directories are the source and destination roots.
func New(opts ...Option) *Pipeline {
	f := &family{
		items:    make(map[string]*Item),
		assetOut: make(map[string]string),
		gate:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.applyDefaults()
	f.runID = uuid.NewString()
	f.logger = f.logger.With(logfields.RunID(f.runID))

	p := &Pipeline{
		fam:     f,
		input:   ".",
		output:  ".",
		chain:   builtinChain(),
		pending: newTracker(nil),
		ready:   f.gate,
	}
	p.logger = f.logger.With(logfields.Pipeline(p.input))
	return p
}

// InputDir returns the pipeline's input directory relative to the source root.
func (p *Pipeline) InputDir() string { return p.input }

// OutputDir returns the pipeline's output directory relative to the
// destination root.
func (p *Pipeline) OutputDir() string { return p.output }

// Parent returns the pipeline p was spawned from, or nil for the root.
func (p *Pipeline) Parent() *Pipeline { return p.parent }

// Use appends transforms to a stage. Items and pipelines created earlier
// keep the chain they captured.
func (p *Pipeline) Use(stage Stage, fns ...Transform) error {
	if stage < 0 || stage >= numStages {
		return fmt.Errorf("%w: %d", ErrInvalidStage, int(stage))
	}
	p.mu.Lock()
	p.chain = p.chain.with(stage, fns...)
	p.mu.Unlock()
	return nil
}

// Tags registers a transform substituting handlers. Source and resolve
// stages rewrite the source lines; output stages rewrite the output text.
func (p *Pipeline) Tags(stage Stage, handlers tags.Handlers) error {
	handlers = maps.Clone(handlers)
	fn := func(ctx context.Context, it *Item) error {
		return it.ReplaceTags(ctx, handlers)
	}
	if stage == StageOutput || stage == StageOutputResolve {
		fn = func(ctx context.Context, it *Item) error {
			return it.ReplaceOutputTags(ctx, handlers)
		}
	}
	return p.Use(stage, fn)
}

func (p *Pipeline) snapshot() *chain {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chain
}

// Add declares an item. rel is relative to the pipeline's input directory.
// Without WithText the item's text is read from the FileStore.
func (p *Pipeline) Add(rel string, opts ...ItemOption) (*Item, error) {
	if path.IsAbs(rel) {
		return nil, fmt.Errorf("%w: %q is absolute", ErrInvalidPath, rel)
	}
	key, err := cleanRel(path.Join(p.input, rel))
	if err != nil {
		return nil, err
	}

	cfg := itemConfig{file: key}
	for _, opt := range opts {
		opt(&cfg)
	}
	return p.addItem(key, cfg, p.snapshot())
}

// require adds a file-backed item unless the path is already registered.
func (p *Pipeline) require(key string) error {
	_, err := p.addItem(key, itemConfig{file: key}, p.snapshot())
	if errors.Is(err, ErrDuplicateItemPath) {
		return nil
	}
	return err
}

func (p *Pipeline) addItem(key string, cfg itemConfig, ch *chain) (*Item, error) {
	it := &Item{
		path:       key,
		file:       cfg.file,
		text:       cfg.text,
		override:   cfg.data,
		importedBy: cfg.importedBy,
		pipeline:   p,
		chain:      ch,
		logger:     p.logger.With(logfields.Item(key)),
		done:       make(chan struct{}),
	}
	if err := p.fam.register(it); err != nil {
		return nil, err
	}

	p.pending.add()
	it.logger.Debug("item added")
	go it.run()
	return it, nil
}

// Spawn creates a child pipeline with directories relative to p's. The
// child shares the family registry and copies p's current chain. init, if
// not nil, runs after the start gate opens and before the child's items.
// p is not quiescent until the child is.
func (p *Pipeline) Spawn(input, output string, init InitFunc) (*Pipeline, error) {
	in, err := cleanRel(path.Join(p.input, input))
	if err != nil {
		return nil, err
	}
	out, err := cleanRel(path.Join(p.output, output))
	if err != nil {
		return nil, err
	}

	child := &Pipeline{
		fam:     p.fam,
		parent:  p,
		input:   in,
		output:  out,
		chain:   p.snapshot(),
		pending: newTracker(p.pending),
		ready:   make(chan struct{}),
	}
	child.logger = p.fam.logger.With(logfields.Pipeline(in))

	// The init task holds the child open until its items may start.
	child.pending.add()
	go func() {
		ctx := p.fam.runContext()
		var err error
		if init != nil {
			if err = init(ctx, child); err != nil {
				err = fmt.Errorf("pipeline %s: init: %w", in, err)
			}
		}
		close(child.ready)
		child.pending.done(err)
	}()

	child.logger.Debug("pipeline spawned", "output", out)
	return child, nil
}

// Lookup returns the item registered under a source-root-relative path
// anywhere in the family.
func (p *Pipeline) Lookup(key string) (*Item, bool) {
	p.fam.mu.Lock()
	defer p.fam.mu.Unlock()
	it, ok := p.fam.items[path.Clean(key)]
	return it, ok
}

// Items returns every item of the family sorted by path.
func (p *Pipeline) Items() []*Item {
	p.fam.mu.Lock()
	items := slices.Collect(maps.Values(p.fam.items))
	p.fam.mu.Unlock()

	slices.SortFunc(items, func(a, b *Item) int {
		switch {
		case a.path < b.path:
			return -1
		case a.path > b.path:
			return 1
		}
		return 0
	})
	return items
}

// Join opens the family start gate if needed and waits until p and all of
// its descendants are quiescent. The first error raised anywhere in the
// subtree is returned as soon as it happens; work in flight is not
// cancelled. Join may be called from a transform to wait for another
// pipeline.
func (p *Pipeline) Join(ctx context.Context) error {
	p.fam.open(ctx)

	start := time.Now()
	err := p.pending.wait(ctx)
	if p.parent == nil {
		attrs := []any{
			logfields.Count(len(p.Items())),
			logfields.DurationMS(float64(time.Since(start).Microseconds()) / 1000),
		}
		if err != nil {
			p.logger.Debug("join failed", append(attrs, logfields.Error(err))...)
		} else {
			p.logger.Info("join complete", attrs...)
		}
	}
	return err
}
