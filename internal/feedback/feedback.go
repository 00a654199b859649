// Package feedback implements the quality-feedback collaborator: given an
// extracted record and its match result, it produces a short improvement
// note for the candidate. Feedback is supplementary; a failure here
// degrades the candidate's status but never terminates the pipeline.
package feedback

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/candidate-screener/internal/llm"
	"github.com/jonathan/candidate-screener/internal/types"
)

// Document is a generated feedback artifact.
type Document struct {
	Markdown string
}

// Generator produces feedback for one candidate.
type Generator interface {
	Generate(ctx context.Context, req *types.Requisition, record *types.CandidateRecord, match *types.MatchResult) (*Document, error)
}

// Error represents a failed feedback generation.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("feedback generation failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("feedback generation failed: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// GeminiGenerator implements Generator on top of the shared LLM client.
type GeminiGenerator struct {
	client llm.Client
}

// NewGeminiGenerator creates a feedback generator backed by the given LLM
// client.
func NewGeminiGenerator(client llm.Client) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

// Generate asks the model for concise, actionable feedback grounded in the
// match breakdown.
func (g *GeminiGenerator) Generate(ctx context.Context, req *types.Requisition, record *types.CandidateRecord, match *types.MatchResult) (*Document, error) {
	if record == nil || match == nil {
		return nil, &Error{Message: "record and match result are required"}
	}

	prompt := buildFeedbackPrompt(req, record, match)
	text, err := g.client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &Error{Message: "LLM call failed", Cause: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &Error{Message: "model returned empty feedback"}
	}
	return &Document{Markdown: text}, nil
}

// buildFeedbackPrompt renders the feedback request. The match breakdown is
// inlined so the model reasons over the same numbers the caller reports.
func buildFeedbackPrompt(req *types.Requisition, record *types.CandidateRecord, match *types.MatchResult) string {
	var sb strings.Builder

	sb.WriteString("You are a hiring coach. Write concise, specific feedback in Markdown for the candidate below,\n")
	sb.WriteString("explaining how well they fit the role and what would improve their fit. Do not invent facts.\n")
	sb.WriteString("Keep it under 250 words with sections: Fit Summary, Strengths, Gaps.\n\n")

	sb.WriteString(fmt.Sprintf("Role: %s (desired level: %s, location: %s)\n", req.Title, req.DesiredLevel, req.Location))
	sb.WriteString(fmt.Sprintf("Required skills: %s\n\n", strings.Join(req.RequiredSkills, ", ")))

	sb.WriteString(fmt.Sprintf("Candidate: %s (level: %s, location: %s)\n", record.FullName(), record.Level, record.Location))
	sb.WriteString(fmt.Sprintf("Candidate skills: %s\n\n", strings.Join(record.Skills, ", ")))

	sb.WriteString(fmt.Sprintf("Match breakdown: overall %.0f, skill coverage %.0f, experience fit %.0f, location fit %.0f\n",
		match.OverallScore, match.SkillCoverage, match.ExperienceFit, match.LocationFit))
	if len(match.MissingSkills) > 0 {
		sb.WriteString(fmt.Sprintf("Missing required skills: %s\n", strings.Join(match.MissingSkills, ", ")))
	}

	return sb.String()
}
