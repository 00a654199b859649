package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-screener/internal/pipeline"
	"github.com/jonathan/candidate-screener/internal/types"
)

// fakeRunner returns a canned batch result or error.
type fakeRunner struct {
	result  *types.BatchResult
	err     error
	sources []pipeline.CandidateSource
}

func (f *fakeRunner) Run(_ context.Context, _ []byte, sources []pipeline.CandidateSource) (*types.BatchResult, error) {
	f.sources = sources
	return f.result, f.err
}

// fakeArchiver records the archived root.
type fakeArchiver struct {
	root string
	err  error
}

func (f *fakeArchiver) ArchiveToFile(root string) (string, error) {
	f.root = root
	if f.err != nil {
		return "", f.err
	}
	return root + ".zip", nil
}

func testBatchResult() *types.BatchResult {
	return &types.BatchResult{
		RunID:   uuid.New(),
		RunRoot: "batch_backend_engineer_20260314_092653",
		Requisition: &types.Requisition{
			Title: "Backend Engineer",
		},
		CandidateResults: []*types.CandidatePipelineResult{
			{SourceName: "jane_resume", Status: types.StatusCompleted},
		},
		SucceededCount: 1,
	}
}

func newTestServer(t *testing.T, runner Runner, archiver Archiver, jwtSecret string) *Server {
	t.Helper()
	srv, err := New(Config{Addr: ":0", JWTSecret: jwtSecret}, runner, archiver, nil)
	require.NoError(t, err)
	return srv
}

func postRun(t *testing.T, srv *Server, body RunRequest) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/runs", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleCreateRun(t *testing.T) {
	runner := &fakeRunner{result: testBatchResult()}
	srv := newTestServer(t, runner, &fakeArchiver{}, "")

	rec := postRun(t, srv, RunRequest{
		Requisition: "We need a backend engineer.",
		Candidates: []CandidatePayload{
			{Name: "jane_resume", Content: "Jane Doe, Go, Postgres"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Result.SucceededCount)
	assert.Empty(t, resp.ArchivePath)

	require.Len(t, runner.sources, 1)
	assert.Equal(t, "jane_resume", runner.sources[0].Name)
}

func TestHandleCreateRun_WithArchive(t *testing.T) {
	archiver := &fakeArchiver{}
	srv := newTestServer(t, &fakeRunner{result: testBatchResult()}, archiver, "")

	rec := postRun(t, srv, RunRequest{
		Requisition: "req",
		Candidates:  []CandidatePayload{{Name: "a", Content: "b"}},
		Archive:     true,
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "batch_backend_engineer_20260314_092653.zip", resp.ArchivePath)
	assert.Equal(t, "batch_backend_engineer_20260314_092653", archiver.root)
}

func TestHandleCreateRun_ArchiveFailureIsNonFatal(t *testing.T) {
	archiver := &fakeArchiver{err: fmt.Errorf("disk full")}
	srv := newTestServer(t, &fakeRunner{result: testBatchResult()}, archiver, "")

	rec := postRun(t, srv, RunRequest{
		Requisition: "req",
		Candidates:  []CandidatePayload{{Name: "a", Content: "b"}},
		Archive:     true,
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.ArchivePath)
	assert.Equal(t, 1, resp.Result.SucceededCount)
}

func TestHandleCreateRun_Validation(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{result: testBatchResult()}, nil, "")

	tests := []struct {
		name string
		body RunRequest
	}{
		{"missing requisition", RunRequest{Candidates: []CandidatePayload{{Name: "a", Content: "b"}}}},
		{"no candidates", RunRequest{Requisition: "req"}},
		{"candidate without name", RunRequest{Requisition: "req", Candidates: []CandidatePayload{{Content: "b"}}}},
		{"candidate without content", RunRequest{Requisition: "req", Candidates: []CandidatePayload{{Name: "a"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postRun(t, srv, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandleCreateRun_RunnerFailure(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("requisition extraction failed")}
	srv := newTestServer(t, runner, nil, "")

	rec := postRun(t, srv, RunRequest{
		Requisition: "req",
		Candidates:  []CandidatePayload{{Name: "a", Content: "b"}},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleCreateRun_InvalidBody(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{}, nil, "")

	req := httptest.NewRequest(http.MethodPost, "/api/runs", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListRuns_NoDatabase(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{}, nil, "")

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{}, nil, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth_ProtectedEndpoints(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{result: testBatchResult()}, nil, "test-secret")

	// No token: rejected.
	rec := postRun(t, srv, RunRequest{
		Requisition: "req",
		Candidates:  []CandidatePayload{{Name: "a", Content: "b"}},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Health stays open.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	healthRec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(healthRec, req)
	assert.Equal(t, http.StatusOK, healthRec.Code)

	// A valid token passes.
	token, err := srv.jwtService.GenerateToken("reviewer")
	require.NoError(t, err)

	payload, err := json.Marshal(RunRequest{
		Requisition: "req",
		Candidates:  []CandidatePayload{{Name: "a", Content: "b"}},
	})
	require.NoError(t, err)

	authedReq := httptest.NewRequest(http.MethodPost, "/api/runs", bytes.NewReader(payload))
	authedReq.Header.Set("Authorization", "Bearer "+token)
	authedRec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(authedRec, authedReq)
	assert.Equal(t, http.StatusOK, authedRec.Code)
}
