// Package pipeline provides the batch orchestration for candidate
// screening: one sequential state machine per candidate, fanned out across
// candidates with bounded concurrency and per-candidate failure isolation.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-screener/internal/extraction"
	"github.com/jonathan/candidate-screener/internal/feedback"
	"github.com/jonathan/candidate-screener/internal/naming"
	"github.com/jonathan/candidate-screener/internal/rendering"
	"github.com/jonathan/candidate-screener/internal/workspace"
)

// DefaultConcurrency bounds the worker pool; sized to the external
// service's safe concurrent-request limit.
const DefaultConcurrency = 4

// DefaultCallTimeout applies at each external-call boundary. A timeout is
// treated identically to a collaborator failure at that stage.
const DefaultCallTimeout = 2 * time.Minute

// ArtifactStore persists run records and per-stage artifacts. A nil store
// disables persistence; store failures are logged warnings, never pipeline
// failures.
type ArtifactStore interface {
	CreateRun(ctx context.Context, runID uuid.UUID, requisitionTitle, mode string) error
	SaveArtifact(ctx context.Context, runID uuid.UUID, candidateSlug, stage string, content any) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string) error
}

// Deps are the collaborators the orchestrator drives. Extractor, Feedback,
// and Renderer are external services behind narrow interfaces; Workspace is
// the only component that touches storage.
type Deps struct {
	Extractor extraction.Extractor
	Feedback  feedback.Generator
	Renderer  rendering.Renderer
	Workspace workspace.Workspace
	Store     ArtifactStore
	Logger    *zap.Logger
}

// Options configures a batch run.
type Options struct {
	// Mode selects the output layout. Empty means infer: one candidate
	// source runs single, more run batch.
	Mode naming.Mode
	// Concurrency bounds the candidate worker pool.
	Concurrency int
	// CallTimeout applies to each external collaborator call.
	CallTimeout time.Duration
	// Clock supplies the batch timestamp; captured exactly once per run.
	// Defaults to time.Now.
	Clock func() time.Time
}

// CandidateSource is one submitted candidate document. Name is the
// caller-supplied handle (typically the file name) the candidate slug is
// derived from.
type CandidateSource struct {
	Name string
	Raw  []byte
}

// Orchestrator fans out candidate pipelines against one shared requisition.
type Orchestrator struct {
	deps Deps
	opts Options
}

// New creates an orchestrator. Defaults are applied for zero-valued
// options; a nil logger becomes a no-op logger.
func New(deps Deps, opts Options) *Orchestrator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Orchestrator{deps: deps, opts: opts}
}

// callCtx derives the per-call context applied at every external
// collaborator boundary.
func (o *Orchestrator) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.opts.CallTimeout)
}
