// Package extraction defines the structured-data extraction collaborator:
// raw document bytes in, schema-validated structured record out. The
// pipeline treats the extractor as opaque; retries and rate limiting are the
// collaborator's concern.
package extraction

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/api/googleapi"

	"github.com/jonathan/candidate-screener/internal/ingestion"
	"github.com/jonathan/candidate-screener/internal/llm"
	"github.com/jonathan/candidate-screener/internal/types"
)

// Extractor turns raw source bytes into schema-conformant JSON. The
// returned bytes are guaranteed to validate against the schema for ref.
type Extractor interface {
	Extract(ctx context.Context, raw []byte, ref SchemaRef) (json.RawMessage, error)
}

// GeminiExtractor implements Extractor on top of the shared LLM client.
type GeminiExtractor struct {
	client llm.Client
}

// NewGeminiExtractor creates an extractor backed by the given LLM client.
func NewGeminiExtractor(client llm.Client) *GeminiExtractor {
	return &GeminiExtractor{client: client}
}

// Extract normalizes the raw payload to text, prompts the model for
// structured JSON, and validates the output against the target schema.
func (e *GeminiExtractor) Extract(ctx context.Context, raw []byte, ref SchemaRef) (json.RawMessage, error) {
	var promptSchema PromptSchema
	switch ref {
	case SchemaCandidate:
		promptSchema = CandidateSchema()
	case SchemaRequisition:
		promptSchema = RequisitionSchema()
	default:
		return nil, &Error{Schema: ref, Message: "unknown schema"}
	}

	text, err := ingestion.NormalizeSource(raw)
	if err != nil {
		return nil, &Error{Schema: ref, Message: "failed to normalize source", Cause: err}
	}
	if text == "" {
		return nil, &Error{Schema: ref, Message: "source document is empty"}
	}

	prompt := BuildExtractionPrompt(promptSchema, text)
	response, err := e.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &Error{
			Schema:    ref,
			Message:   "LLM call failed",
			Retryable: isRetryable(err),
			Cause:     err,
		}
	}

	if err := ValidateAgainstSchema(ref, response); err != nil {
		var violation *SchemaViolationError
		if errors.As(err, &violation) {
			return nil, violation
		}
		return nil, err
	}

	return json.RawMessage(response), nil
}

// isRetryable reports whether the underlying API error is a throttling or
// transient server condition the caller may retry later.
func isRetryable(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	return false
}

// ExtractCandidate runs candidate extraction and decodes the validated
// output into a CandidateRecord. The raw source bytes are attached to the
// record for bundling.
func ExtractCandidate(ctx context.Context, ex Extractor, raw []byte) (*types.CandidateRecord, error) {
	payload, err := ex.Extract(ctx, raw, SchemaCandidate)
	if err != nil {
		return nil, err
	}

	var record types.CandidateRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, &Error{Schema: SchemaCandidate, Message: "failed to decode extraction output", Cause: err}
	}
	record.RawSource = raw
	return &record, nil
}

// ExtractRequisition runs requisition extraction and decodes the validated
// output into a Requisition.
func ExtractRequisition(ctx context.Context, ex Extractor, raw []byte) (*types.Requisition, error) {
	payload, err := ex.Extract(ctx, raw, SchemaRequisition)
	if err != nil {
		return nil, err
	}

	var req types.Requisition
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, &Error{Schema: SchemaRequisition, Message: "failed to decode extraction output", Cause: err}
	}
	if req.Title == "" {
		return nil, &Error{Schema: SchemaRequisition, Message: "extracted requisition has no title"}
	}
	return &req, nil
}
