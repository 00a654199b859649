package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-screener/internal/extraction"
	"github.com/jonathan/candidate-screener/internal/feedback"
	"github.com/jonathan/candidate-screener/internal/naming"
	"github.com/jonathan/candidate-screener/internal/rendering"
	"github.com/jonathan/candidate-screener/internal/scoring"
	"github.com/jonathan/candidate-screener/internal/types"
	"github.com/jonathan/candidate-screener/internal/validation"
	"github.com/jonathan/candidate-screener/internal/workspace"
)

// candidateJob is the unit of work handed to one pipeline worker.
type candidateJob struct {
	index    int
	source   CandidateSource
	identity naming.RunIdentity
	runID    uuid.UUID
}

// candidateRun tracks one candidate's progress through the stage machine.
// Stages transition only forward; a failure is terminal except for the
// feedback stage, which degrades the run instead.
type candidateRun struct {
	result   *types.CandidatePipelineResult
	record   *types.CandidateRecord
	match    *types.MatchResult
	doc      *feedback.Document
	rendered []byte
	warnings []string
	degraded bool
}

// runCandidate drives one candidate through Extract → Validate → Match →
// Feedback → Render → Bundle. It never returns an error: every failure is
// captured as a terminal result so siblings are unaffected.
func (o *Orchestrator) runCandidate(ctx context.Context, req *types.Requisition, job candidateJob) *types.CandidatePipelineResult {
	run := &candidateRun{
		result: &types.CandidatePipelineResult{
			Index:         job.index,
			CandidateSlug: job.identity.CandidateSlug,
			SourceName:    job.source.Name,
			Status:        types.StatusFailed,
		},
	}
	log := o.deps.Logger.With(
		zap.String("run_id", job.runID.String()),
		zap.String("candidate", job.identity.CandidateSlug),
	)

	if ctx.Err() != nil {
		o.fail(run, types.StageExtract, fmt.Errorf("batch cancelled before candidate started: %w", context.Canceled))
		return run.result
	}

	stages := []struct {
		stage types.Stage
		fn    func(ctx context.Context, req *types.Requisition, job candidateJob, run *candidateRun) error
	}{
		{types.StageExtract, o.stageExtract},
		{types.StageValidate, o.stageValidate},
		{types.StageMatch, o.stageMatch},
		{types.StageFeedback, o.stageFeedback},
		{types.StageRender, o.stageRender},
		{types.StageBundle, o.stageBundle},
	}

	for _, s := range stages {
		err := s.fn(ctx, req, job, run)
		if err == nil {
			continue
		}
		if s.stage == types.StageFeedback {
			// Feedback is supplementary: omit it and degrade instead of
			// terminating.
			run.degraded = true
			run.result.Outcomes = append(run.result.Outcomes, types.StageOutcome{
				Stage:   types.StageFeedback,
				Status:  types.OutcomeFailure,
				Kind:    kindOf(err, types.KindFeedback),
				Message: err.Error(),
			})
			log.Warn("feedback generation failed; continuing without it", zap.Error(err))
			continue
		}
		o.fail(run, s.stage, err)
		log.Warn("candidate pipeline failed",
			zap.String("stage", string(s.stage)),
			zap.Error(err))
		return run.result
	}

	if run.degraded {
		run.result.Status = types.StatusPartiallyCompleted
	} else {
		run.result.Status = types.StatusCompleted
	}
	log.Info("candidate pipeline finished",
		zap.String("status", string(run.result.Status)),
		zap.Float64("overall_score", run.match.OverallScore))
	return run.result
}

func (o *Orchestrator) stageExtract(ctx context.Context, _ *types.Requisition, job candidateJob, run *candidateRun) error {
	callCtx, cancel := o.callCtx(ctx)
	defer cancel()

	record, err := extraction.ExtractCandidate(callCtx, o.deps.Extractor, job.source.Raw)
	if err != nil {
		return err
	}
	run.record = record
	run.result.Record = record

	ref, err := naming.Resolve(job.identity, naming.KindSourceRecord)
	if err != nil {
		return err
	}
	run.result.Outcomes = append(run.result.Outcomes, types.StageOutcome{
		Stage: types.StageExtract, Status: types.OutcomeSuccess, PayloadRef: ref,
	})
	o.saveArtifact(ctx, job, types.StageExtract, record)
	return nil
}

func (o *Orchestrator) stageValidate(ctx context.Context, _ *types.Requisition, job candidateJob, run *candidateRun) error {
	warnings, err := validation.Check(run.record)
	if err != nil {
		return err
	}
	run.warnings = warnings
	run.result.Outcomes = append(run.result.Outcomes, types.StageOutcome{
		Stage: types.StageValidate, Status: types.OutcomeSuccess, Warnings: warnings,
	})
	return nil
}

func (o *Orchestrator) stageMatch(ctx context.Context, req *types.Requisition, job candidateJob, run *candidateRun) error {
	// Pure function over validated data; cannot fail.
	run.match = scoring.Score(req, run.record)
	run.result.Match = run.match

	ref, err := naming.Resolve(job.identity, naming.KindMatch)
	if err != nil {
		return err
	}
	run.result.Outcomes = append(run.result.Outcomes, types.StageOutcome{
		Stage: types.StageMatch, Status: types.OutcomeSuccess, PayloadRef: ref,
	})
	o.saveArtifact(ctx, job, types.StageMatch, run.match)
	return nil
}

func (o *Orchestrator) stageFeedback(ctx context.Context, req *types.Requisition, job candidateJob, run *candidateRun) error {
	callCtx, cancel := o.callCtx(ctx)
	defer cancel()

	doc, err := o.deps.Feedback.Generate(callCtx, req, run.record, run.match)
	if err != nil {
		return err
	}
	run.doc = doc

	ref, err := naming.Resolve(job.identity, naming.KindFeedback)
	if err != nil {
		return err
	}
	run.result.Outcomes = append(run.result.Outcomes, types.StageOutcome{
		Stage: types.StageFeedback, Status: types.OutcomeSuccess, PayloadRef: ref,
	})
	o.saveArtifact(ctx, job, types.StageFeedback, doc)
	return nil
}

func (o *Orchestrator) stageRender(ctx context.Context, req *types.Requisition, job candidateJob, run *candidateRun) error {
	callCtx, cancel := o.callCtx(ctx)
	defer cancel()

	rendered, err := o.deps.Renderer.RenderCandidate(callCtx, req, run.record, run.match, run.warnings)
	if err != nil {
		return err
	}
	run.rendered = rendered

	ref, err := naming.Resolve(job.identity, naming.KindRenderedDocument)
	if err != nil {
		return err
	}
	run.result.Outcomes = append(run.result.Outcomes, types.StageOutcome{
		Stage: types.StageRender, Status: types.OutcomeSuccess, PayloadRef: ref,
	})
	return nil
}

// stageBundle writes every produced payload through the workspace at paths
// resolved from the run identity. The collision policy upstream guarantees
// no two candidates target the same path.
func (o *Orchestrator) stageBundle(ctx context.Context, _ *types.Requisition, job candidateJob, run *candidateRun) error {
	dir, err := naming.CandidateDir(job.identity)
	if err != nil {
		return err
	}
	if err := o.deps.Workspace.EnsureDir(dir); err != nil {
		return err
	}

	writeJSON := func(kind naming.ArtifactKind, v any) error {
		path, err := naming.Resolve(job.identity, kind)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return &workspace.Error{Path: path, Message: "failed to encode artifact", Cause: err}
		}
		return o.deps.Workspace.Write(path, data)
	}

	if err := writeJSON(naming.KindSourceRecord, run.record); err != nil {
		return err
	}
	if err := writeJSON(naming.KindMatch, run.match); err != nil {
		return err
	}
	if run.doc != nil {
		path, err := naming.Resolve(job.identity, naming.KindFeedback)
		if err != nil {
			return err
		}
		if err := o.deps.Workspace.Write(path, []byte(run.doc.Markdown)); err != nil {
			return err
		}
	}
	renderedPath, err := naming.Resolve(job.identity, naming.KindRenderedDocument)
	if err != nil {
		return err
	}
	if err := o.deps.Workspace.Write(renderedPath, run.rendered); err != nil {
		return err
	}

	run.result.Outcomes = append(run.result.Outcomes, types.StageOutcome{
		Stage: types.StageBundle, Status: types.OutcomeSuccess, PayloadRef: dir,
	})
	return nil
}

// fail records a terminal failure at the given stage and marks every later
// stage skipped.
func (o *Orchestrator) fail(run *candidateRun, stage types.Stage, err error) {
	run.result.Status = types.StatusFailed
	run.result.FailedStage = stage
	run.result.Outcomes = append(run.result.Outcomes, types.StageOutcome{
		Stage:   stage,
		Status:  types.OutcomeFailure,
		Kind:    kindOf(err, fallbackKind(stage)),
		Message: err.Error(),
	})

	skipping := false
	for _, s := range types.Stages {
		if s == stage {
			skipping = true
			continue
		}
		if skipping && run.result.Outcome(s) == nil {
			run.result.Outcomes = append(run.result.Outcomes, types.StageOutcome{
				Stage: s, Status: types.OutcomeSkipped,
			})
		}
	}
}

// kindOf classifies an error into a structured failure kind. Cancellation
// and timeouts surface as their own kinds; everything else maps from the
// typed collaborator errors.
func kindOf(err error, fallback string) string {
	var (
		namingErr     *naming.Error
		extractErr    *extraction.Error
		schemaErr     *extraction.SchemaViolationError
		validationErr *validation.Error
		feedbackErr   *feedback.Error
		renderErr     *rendering.Error
		templateErr   *rendering.TemplateError
		storageErr    *workspace.Error
	)
	switch {
	case errors.Is(err, context.Canceled):
		return types.KindCancelled
	case errors.As(err, &namingErr):
		return types.KindNaming
	case errors.As(err, &extractErr), errors.As(err, &schemaErr):
		return types.KindExtraction
	case errors.As(err, &validationErr):
		return types.KindValidation
	case errors.As(err, &feedbackErr):
		return types.KindFeedback
	case errors.As(err, &renderErr), errors.As(err, &templateErr):
		return types.KindRender
	case errors.As(err, &storageErr):
		return types.KindStorage
	default:
		return fallback
	}
}

// fallbackKind maps a stage to its default failure kind for errors that
// carry no recognized type.
func fallbackKind(stage types.Stage) string {
	switch stage {
	case types.StageExtract:
		return types.KindExtraction
	case types.StageValidate:
		return types.KindValidation
	case types.StageFeedback:
		return types.KindFeedback
	case types.StageRender:
		return types.KindRender
	case types.StageBundle:
		return types.KindStorage
	default:
		return fmt.Sprintf("%s_error", stage)
	}
}

// saveArtifact persists a stage artifact when a store is configured.
// Persistence failures are warnings, never pipeline failures.
func (o *Orchestrator) saveArtifact(ctx context.Context, job candidateJob, stage types.Stage, content any) {
	if o.deps.Store == nil {
		return
	}
	if err := o.deps.Store.SaveArtifact(ctx, job.runID, job.identity.CandidateSlug, string(stage), content); err != nil {
		o.deps.Logger.Warn("failed to persist artifact",
			zap.String("candidate", job.identity.CandidateSlug),
			zap.String("stage", string(stage)),
			zap.Error(err))
	}
}
