package ingestion

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors are elements removed before extracting main text.
var noiseSelectors = []string{
	"script", "style", "noscript", "nav", "header", "footer", "aside",
	"form", "iframe", "svg",
}

// contentSelectors are tried in order to locate the main content block.
// If none match, the body element is used.
var contentSelectors = []string{"main", "article", "[role=main]", "#content", ".content"}

// LooksLikeHTML reports whether a payload should be parsed as HTML.
func LooksLikeHTML(content string) bool {
	head := strings.ToLower(content)
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html") || strings.Contains(head, "<body")
}

// ExtractMainText parses HTML and returns the main body text with noise
// elements removed.
func ExtractMainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	for _, selector := range noiseSelectors {
		doc.Find(selector).Remove()
	}

	for _, selector := range contentSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			return collapseText(sel.Text()), nil
		}
	}

	return collapseText(doc.Find("body").Text()), nil
}

// collapseText normalizes intra-line whitespace left behind by HTML layout.
func collapseText(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
