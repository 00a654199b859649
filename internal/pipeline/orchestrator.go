package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/candidate-screener/internal/extraction"
	"github.com/jonathan/candidate-screener/internal/naming"
	"github.com/jonathan/candidate-screener/internal/types"
)

// Run executes one batch: extract the shared requisition, persist its
// snapshot, fan out one candidate pipeline per source, and aggregate the
// results in submission order.
//
// Per-candidate failures never cross into siblings or abort the batch. The
// batch itself fails only when the shared requisition cannot be extracted
// or its artifacts cannot be named/persisted, in which case no candidate results
// are returned at all.
func (o *Orchestrator) Run(ctx context.Context, requisitionRaw []byte, sources []CandidateSource) (*types.BatchResult, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("at least one candidate source is required")
	}

	mode := o.opts.Mode
	if mode == "" {
		if len(sources) == 1 {
			mode = naming.ModeSingle
		} else {
			mode = naming.ModeBatch
		}
	}
	if mode == naming.ModeSingle && len(sources) > 1 {
		return nil, fmt.Errorf("single mode accepts exactly one candidate source, got %d", len(sources))
	}

	// The batch timestamp is captured exactly once and threaded through
	// every RunIdentity; nothing downstream reads the clock again.
	timestamp := o.opts.Clock()
	runID := uuid.New()
	log := o.deps.Logger.With(zap.String("run_id", runID.String()))

	callCtx, cancel := o.callCtx(ctx)
	req, err := extraction.ExtractRequisition(callCtx, o.deps.Extractor, requisitionRaw)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("requisition extraction failed: %w", err)
	}

	reqSlug, err := naming.Slugify(req.Title, naming.MaxSlugLen)
	if err != nil {
		return nil, fmt.Errorf("requisition naming failed: %w", err)
	}

	slugs, slugErrs := o.candidateSlugs(sources)

	baseIdentity := naming.RunIdentity{
		Mode:            mode,
		RequisitionSlug: reqSlug,
		Timestamp:       timestamp,
	}
	if mode == naming.ModeSingle {
		if slugErrs[0] != nil {
			return nil, fmt.Errorf("candidate naming failed: %w", slugErrs[0])
		}
		baseIdentity.CandidateSlug = slugs[0]
	}

	root, err := naming.RunRoot(baseIdentity)
	if err != nil {
		return nil, fmt.Errorf("run naming failed: %w", err)
	}
	if err := o.writeRequisitionSnapshot(baseIdentity, req); err != nil {
		return nil, err
	}

	if o.deps.Store != nil {
		if err := o.deps.Store.CreateRun(ctx, runID, req.Title, string(mode)); err != nil {
			log.Warn("failed to create run record; continuing without persistence", zap.Error(err))
		}
	}

	log.Info("starting batch",
		zap.String("requisition", req.Title),
		zap.String("mode", string(mode)),
		zap.Int("candidates", len(sources)),
		zap.Int("concurrency", o.opts.Concurrency))

	results := make([]*types.CandidatePipelineResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Concurrency)
	for i := range sources {
		if slugErrs[i] != nil {
			results[i] = namingFailureResult(i, sources[i], slugErrs[i])
			continue
		}
		identity := baseIdentity
		identity.CandidateSlug = slugs[i]
		job := candidateJob{index: i, source: sources[i], identity: identity, runID: runID}
		g.Go(func() error {
			results[job.index] = o.runCandidate(gctx, req, job)
			return nil
		})
	}
	_ = g.Wait()

	batch := &types.BatchResult{
		RunID:            runID,
		RunRoot:          root,
		Requisition:      req,
		CandidateResults: results,
	}
	for _, res := range results {
		if res.Status == types.StatusFailed {
			batch.FailedCount++
		} else {
			batch.SucceededCount++
		}
	}

	if mode == naming.ModeBatch {
		o.writeDashboard(ctx, baseIdentity, req, results, log)
	}

	if o.deps.Store != nil {
		status := "completed"
		if batch.SucceededCount == 0 {
			status = "failed"
		} else if batch.FailedCount > 0 {
			status = "completed_with_failures"
		}
		if err := o.deps.Store.CompleteRun(ctx, runID, status); err != nil {
			log.Warn("failed to finalize run record", zap.Error(err))
		}
	}

	log.Info("batch finished",
		zap.Int("succeeded", batch.SucceededCount),
		zap.Int("failed", batch.FailedCount))
	return batch, nil
}

// candidateSlugs derives a collision-free slug per source from the
// caller-supplied source names. Sources whose names normalize to an empty
// slug fail individually; disambiguation runs over the remaining slugs in
// submission order, so the result is independent of completion order.
func (o *Orchestrator) candidateSlugs(sources []CandidateSource) ([]string, []error) {
	slugs := make([]string, len(sources))
	errs := make([]error, len(sources))
	valid := make([]string, 0, len(sources))
	validIdx := make([]int, 0, len(sources))

	for i, src := range sources {
		slug, err := naming.Slugify(src.Name, naming.MaxSlugLen)
		if err != nil {
			errs[i] = err
			continue
		}
		valid = append(valid, slug)
		validIdx = append(validIdx, i)
	}

	for i, slug := range naming.DisambiguateSlugs(valid) {
		slugs[validIdx[i]] = slug
	}
	return slugs, errs
}

// writeRequisitionSnapshot persists the shared requisition artifact at the
// run root before any candidate work starts.
func (o *Orchestrator) writeRequisitionSnapshot(id naming.RunIdentity, req *types.Requisition) error {
	path, err := naming.Resolve(id, naming.KindRequisitionSnapshot)
	if err != nil {
		return fmt.Errorf("requisition naming failed: %w", err)
	}
	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode requisition snapshot: %w", err)
	}
	if err := o.deps.Workspace.Write(path, data); err != nil {
		return fmt.Errorf("failed to persist requisition snapshot: %w", err)
	}
	return nil
}

// writeDashboard renders and persists the batch comparison dashboard. The
// candidates' artifacts are already on disk, so a dashboard failure is a
// logged warning, not a batch failure.
func (o *Orchestrator) writeDashboard(ctx context.Context, id naming.RunIdentity, req *types.Requisition, results []*types.CandidatePipelineResult, log *zap.Logger) {
	path, err := naming.Resolve(id, naming.KindDashboard)
	if err != nil {
		log.Warn("failed to resolve dashboard path", zap.Error(err))
		return
	}

	callCtx, cancel := o.callCtx(ctx)
	defer cancel()
	rendered, err := o.deps.Renderer.RenderDashboard(callCtx, req, results)
	if err != nil {
		log.Warn("failed to render comparison dashboard", zap.Error(err))
		return
	}
	if err := o.deps.Workspace.Write(path, rendered); err != nil {
		log.Warn("failed to persist comparison dashboard", zap.Error(err))
	}
}

// namingFailureResult is the terminal result for a candidate whose source
// name could not be normalized into a slug. The candidate never starts; no
// placeholder name is ever substituted.
func namingFailureResult(index int, source CandidateSource, err error) *types.CandidatePipelineResult {
	result := &types.CandidatePipelineResult{
		Index:       index,
		SourceName:  source.Name,
		Status:      types.StatusFailed,
		FailedStage: types.StageExtract,
		Outcomes: []types.StageOutcome{{
			Stage:   types.StageExtract,
			Status:  types.OutcomeFailure,
			Kind:    types.KindNaming,
			Message: err.Error(),
		}},
	}
	for _, s := range types.Stages[1:] {
		result.Outcomes = append(result.Outcomes, types.StageOutcome{Stage: s, Status: types.OutcomeSkipped})
	}
	return result
}
