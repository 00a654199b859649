package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"crlf normalized", "a\r\nb\rc", "a\nb\nc"},
		{"trailing whitespace stripped", "a  \t\nb", "a\nb"},
		{"blank runs collapsed", "a\n\n\n\nb", "a\n\nb"},
		{"surrounding whitespace trimmed", "\n\n  hello  \n\n", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, LooksLikeHTML("<!DOCTYPE html><html><body>x</body></html>"))
	assert.True(t, LooksLikeHTML("<HTML><head></head></HTML>"))
	assert.False(t, LooksLikeHTML("Jane Doe\nSenior Engineer\nSkills: Go"))
	assert.False(t, LooksLikeHTML("a < b and b > c"))
}

func TestExtractMainText_PrefersMainElement(t *testing.T) {
	html := `<html><body>
		<nav>Home | About</nav>
		<main><h1>Backend Engineer</h1><p>Go, PostgreSQL</p></main>
		<footer>Copyright</footer>
	</body></html>`

	text, err := ExtractMainText(html)
	require.NoError(t, err)
	assert.Contains(t, text, "Backend Engineer")
	assert.Contains(t, text, "Go, PostgreSQL")
	assert.NotContains(t, text, "Home | About")
	assert.NotContains(t, text, "Copyright")
}

func TestExtractMainText_RemovesNoise(t *testing.T) {
	html := `<html><body>
		<script>var tracking = true;</script>
		<style>.x { color: red }</style>
		<p>Senior Go Engineer</p>
	</body></html>`

	text, err := ExtractMainText(html)
	require.NoError(t, err)
	assert.Contains(t, text, "Senior Go Engineer")
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "color: red")
}

func TestNormalizeSource(t *testing.T) {
	plain, err := NormalizeSource([]byte("Jane Doe\r\n\r\n\r\nEngineer"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n\nEngineer", plain)

	fromHTML, err := NormalizeSource([]byte("<html><body><main><p>Jane   Doe</p></main></body></html>"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", fromHTML)
}
