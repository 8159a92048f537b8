package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zbiljic/blueprint/pkg/llm"
)

// ProviderResolver returns the provider used for kind.
type ProviderResolver func(kind Kind) (llm.AIPrompt, error)

// StaticResolver uses aip for every kind.
func StaticResolver(aip llm.AIPrompt) ProviderResolver {
	return func(Kind) (llm.AIPrompt, error) {
		return aip, nil
	}
}

// Observer is notified about every finished artifact.
type Observer interface {
	ObserveArtifact(kind Kind, provider string, d time.Duration, err error)
}

// Outcome is the result of one artifact within a batch. Exactly one of Text
// and Err is set.
type Outcome struct {
	Kind     Kind
	Text     string
	Err      error
	Provider string
	Duration time.Duration
}

// OK reports whether the artifact was generated.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Batch holds the outcomes of one generate-all action.
type Batch struct {
	ID          string
	Description string
	Outcomes    []Outcome
	StartedAt   time.Time
	Duration    time.Duration
}

// Outcome returns the outcome for kind.
func (b *Batch) Outcome(kind Kind) (Outcome, bool) {
	for _, o := range b.Outcomes {
		if o.Kind == kind {
			return o, true
		}
	}
	return Outcome{}, false
}

// Succeeded returns the number of generated artifacts.
func (b *Batch) Succeeded() int {
	n := 0
	for _, o := range b.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// Failed reports whether no artifact was generated.
func (b *Batch) Failed() bool {
	return b.Succeeded() == 0
}

// Generator generates artifacts for a description, each with its own
// provider call.
type Generator struct {
	resolve        ProviderResolver
	kinds          []Kind
	timeout        time.Duration
	maxConcurrency int
	observer       Observer
	logger         *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithTimeout sets the timeout of every single provider call. Zero disables it.
func WithTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) { g.timeout = d }
}

// WithSequential runs the artifacts one after another, in display order.
func WithSequential() GeneratorOption {
	return func(g *Generator) { g.maxConcurrency = 1 }
}

// WithMaxConcurrency limits the number of concurrent provider calls.
func WithMaxConcurrency(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.maxConcurrency = n
		}
	}
}

// WithKinds restricts batches to the given kinds.
func WithKinds(kinds ...Kind) GeneratorOption {
	return func(g *Generator) {
		if len(kinds) > 0 {
			g.kinds = kinds
		}
	}
}

// WithObserver registers o to be notified about every artifact.
func WithObserver(o Observer) GeneratorOption {
	return func(g *Generator) { g.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGenerator creates a Generator using resolve to pick the provider of
// each artifact.
func NewGenerator(resolve ProviderResolver, opts ...GeneratorOption) *Generator {
	g := &Generator{
		resolve:        resolve,
		kinds:          Kinds(),
		timeout:        llm.DefaultTimeout,
		maxConcurrency: len(Kinds()),
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Kinds returns the kinds generated by GenerateAll.
func (g *Generator) Kinds() []Kind {
	return g.kinds
}

// Generate runs the task of a single kind.
func (g *Generator) Generate(ctx context.Context, kind Kind, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	o := g.run(ctx, uuid.NewString(), kind, req)
	if o.Err != nil {
		return Result{}, o.Err
	}
	return Result{Kind: o.Kind, Text: o.Text}, nil
}

// GenerateAll runs all tasks and waits for them. The returned error is only
// set when the request is invalid, in which case no provider is called.
// Failures of single artifacts are reported in their Outcome.
func (g *Generator) GenerateAll(ctx context.Context, req Request) (*Batch, error) {
	return g.GenerateEach(ctx, req, nil)
}

// GenerateEach is GenerateAll, additionally calling fn with every outcome as
// soon as it is available. Calls to fn are serialized.
func (g *Generator) GenerateEach(ctx context.Context, req Request, fn func(Outcome)) (*Batch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	batch := &Batch{
		ID:          uuid.NewString(),
		Description: req.ApplicationDescription,
		Outcomes:    make([]Outcome, len(g.kinds)),
		StartedAt:   time.Now().UTC(),
	}

	var (
		mu  sync.Mutex
		grp errgroup.Group
	)
	grp.SetLimit(g.maxConcurrency)

	for i, kind := range g.kinds {
		grp.Go(func() error {
			o := g.run(ctx, batch.ID, kind, req)

			mu.Lock()
			defer mu.Unlock()
			batch.Outcomes[i] = o
			if fn != nil {
				fn(o)
			}
			return nil
		})
	}

	_ = grp.Wait()
	batch.Duration = time.Since(batch.StartedAt)

	g.logger.Info("batch finished",
		"batch_id", batch.ID,
		"succeeded", batch.Succeeded(),
		"total", len(batch.Outcomes),
		"duration", batch.Duration)

	return batch, nil
}

func (g *Generator) run(ctx context.Context, batchID string, kind Kind, req Request) Outcome {
	start := time.Now()

	o := g.runTask(ctx, kind, req)
	o.Duration = time.Since(start)

	if g.observer != nil {
		g.observer.ObserveArtifact(kind, o.Provider, o.Duration, o.Err)
	}

	log := g.logger.With(
		"batch_id", batchID,
		"kind", kind.String(),
		"provider", o.Provider,
		"duration", o.Duration)
	if o.Err != nil {
		log.Warn("artifact generation failed", "error_kind", llm.Classify(o.Err), "err", o.Err)
	} else {
		log.Debug("artifact generated", "length", len(o.Text))
	}

	return o
}

func (g *Generator) runTask(ctx context.Context, kind Kind, req Request) Outcome {
	o := Outcome{Kind: kind}

	task, err := TaskFor(kind)
	if err != nil {
		o.Err = err
		return o
	}

	aip, err := g.resolve(kind)
	if err != nil {
		o.Err = llm.Remote("", fmt.Errorf("no provider for %s: %w", kind, err))
		return o
	}
	o.Provider = aip.String()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	res, err := task.Run(ctx, aip, req)
	if err != nil {
		o.Err = err
		return o
	}

	o.Text = res.Text
	return o
}
