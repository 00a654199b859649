package types

import "github.com/google/uuid"

// Stage identifies one step of the fixed per-candidate pipeline.
type Stage string

// Pipeline stages in fixed forward order.
const (
	StageExtract  Stage = "extract"
	StageValidate Stage = "validate"
	StageMatch    Stage = "match"
	StageFeedback Stage = "feedback"
	StageRender   Stage = "render"
	StageBundle   Stage = "bundle"
)

// Stages lists the pipeline stages in execution order.
var Stages = []Stage{StageExtract, StageValidate, StageMatch, StageFeedback, StageRender, StageBundle}

// OutcomeStatus is the terminal status of a single stage.
type OutcomeStatus string

// Stage outcome statuses.
const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "failure"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// Failure kinds carried on failed stage outcomes.
const (
	KindNaming     = "naming_error"
	KindExtraction = "extraction_error"
	KindValidation = "validation_error"
	KindFeedback   = "feedback_error"
	KindRender     = "render_error"
	KindStorage    = "storage_error"
	KindCancelled  = "cancelled"
)

// StageOutcome records how one stage ended. A failure always carries a
// structured reason (Kind + Message), never a bare boolean.
type StageOutcome struct {
	Stage      Stage         `json:"stage"`
	Status     OutcomeStatus `json:"status"`
	PayloadRef string        `json:"payload_ref,omitempty"`
	Kind       string        `json:"kind,omitempty"`
	Message    string        `json:"message,omitempty"`
	Warnings   []string      `json:"warnings,omitempty"`
}

// RunStatus is the overall terminal status of one candidate pipeline.
type RunStatus string

// Candidate pipeline statuses.
const (
	StatusCompleted          RunStatus = "completed"
	StatusPartiallyCompleted RunStatus = "partially_completed"
	StatusFailed             RunStatus = "failed"
)

// CandidatePipelineResult is the terminal state of one candidate's run:
// one outcome per stage plus the overall status.
type CandidatePipelineResult struct {
	Index         int             `json:"index"`
	CandidateSlug string          `json:"candidate_slug"`
	SourceName    string          `json:"source_name"`
	Status        RunStatus       `json:"status"`
	FailedStage   Stage           `json:"failed_stage,omitempty"`
	Outcomes      []StageOutcome  `json:"outcomes"`
	Record        *CandidateRecord `json:"record,omitempty"`
	Match         *MatchResult    `json:"match,omitempty"`
}

// Outcome returns the recorded outcome for a stage, or nil if the stage was
// never reached.
func (r *CandidatePipelineResult) Outcome(stage Stage) *StageOutcome {
	for i := range r.Outcomes {
		if r.Outcomes[i].Stage == stage {
			return &r.Outcomes[i]
		}
	}
	return nil
}

// BatchResult aggregates every candidate's terminal state for one run.
// CandidateResults follows submission order regardless of completion order.
type BatchResult struct {
	RunID            uuid.UUID                  `json:"run_id"`
	RunRoot          string                     `json:"run_root"`
	Requisition      *Requisition               `json:"requisition"`
	CandidateResults []*CandidatePipelineResult `json:"candidate_results"`
	SucceededCount   int                        `json:"succeeded_count"`
	FailedCount      int                        `json:"failed_count"`
}
