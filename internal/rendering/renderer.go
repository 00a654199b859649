// Package rendering produces the primary output documents: one profile
// document per candidate and one comparison dashboard per batch, rendered
// from embedded HTML templates.
package rendering

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"sort"

	"github.com/jonathan/candidate-screener/internal/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer is the document-rendering collaborator. A candidate-document
// failure is fatal to that candidate; the dashboard is batch-level.
type Renderer interface {
	RenderCandidate(ctx context.Context, req *types.Requisition, record *types.CandidateRecord, match *types.MatchResult, warnings []string) ([]byte, error)
	RenderDashboard(ctx context.Context, req *types.Requisition, results []*types.CandidatePipelineResult) ([]byte, error)
}

// HTMLRenderer renders documents from the embedded templates.
type HTMLRenderer struct {
	templates *template.Template
}

// NewHTMLRenderer parses the embedded templates.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("rendering").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse embedded templates", Cause: err}
	}
	return &HTMLRenderer{templates: tmpl}, nil
}

// candidateData is the payload for the candidate profile template.
type candidateData struct {
	Requisition *types.Requisition
	Record      *types.CandidateRecord
	Match       *types.MatchResult
	Warnings    []string
}

// RenderCandidate renders the per-candidate profile document.
func (r *HTMLRenderer) RenderCandidate(_ context.Context, req *types.Requisition, record *types.CandidateRecord, match *types.MatchResult, warnings []string) ([]byte, error) {
	if record == nil || match == nil {
		return nil, &Error{Message: "record and match result are required"}
	}

	var buf bytes.Buffer
	data := candidateData{Requisition: req, Record: record, Match: match, Warnings: warnings}
	if err := r.templates.ExecuteTemplate(&buf, "candidate.html.tmpl", data); err != nil {
		return nil, &Error{Message: "failed to execute candidate template", Cause: err}
	}
	return buf.Bytes(), nil
}

// dashboardRow is one candidate line in the comparison dashboard.
type dashboardRow struct {
	Slug    string
	Name    string
	Status  types.RunStatus
	Reason  string
	Match   *types.MatchResult
}

// dashboardData is the payload for the dashboard template.
type dashboardData struct {
	Requisition *types.Requisition
	Rows        []dashboardRow
}

// RenderDashboard renders the batch comparison dashboard. Rows are ordered
// by overall score descending, failed candidates last, ties broken by slug
// so the output is reproducible.
func (r *HTMLRenderer) RenderDashboard(_ context.Context, req *types.Requisition, results []*types.CandidatePipelineResult) ([]byte, error) {
	rows := make([]dashboardRow, 0, len(results))
	for _, res := range results {
		row := dashboardRow{Slug: res.CandidateSlug, Status: res.Status, Match: res.Match}
		if res.Record != nil {
			row.Name = res.Record.FullName()
		}
		if res.Status == types.StatusFailed {
			if outcome := res.Outcome(res.FailedStage); outcome != nil {
				row.Reason = outcome.Message
			}
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		si, sj := rows[i].Match, rows[j].Match
		switch {
		case si == nil && sj == nil:
			return rows[i].Slug < rows[j].Slug
		case si == nil:
			return false
		case sj == nil:
			return true
		case si.OverallScore != sj.OverallScore:
			return si.OverallScore > sj.OverallScore
		default:
			return rows[i].Slug < rows[j].Slug
		}
	})

	var buf bytes.Buffer
	data := dashboardData{Requisition: req, Rows: rows}
	if err := r.templates.ExecuteTemplate(&buf, "dashboard.html.tmpl", data); err != nil {
		return nil, &Error{Message: "failed to execute dashboard template", Cause: err}
	}
	return buf.Bytes(), nil
}
