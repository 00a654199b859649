package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL(t *testing.T) {
	var gotUserAgent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>Backend Engineer</body></html>"))
	}))
	defer ts.Close()

	result, err := URL(context.Background(), ts.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.HTML, "Backend Engineer")
	assert.Contains(t, result.ContentType, "text/html")
	assert.Equal(t, DefaultUserAgent, gotUserAgent)
}

func TestURL_NonOKStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := URL(context.Background(), ts.URL, nil)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_InvalidURL(t *testing.T) {
	for _, bad := range []string{"", "not-a-url", "://missing-scheme"} {
		_, err := URL(context.Background(), bad, nil)
		var fetchErr *Error
		require.ErrorAs(t, err, &fetchErr, "url %q", bad)
	}
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser(""))
	assert.True(t, ShouldUseBrowser("short page"))
	assert.False(t, ShouldUseBrowser(strings.Repeat("long enough content ", 50)))
}
