// Package ingestion turns raw source payloads (plain text or HTML) into the
// cleaned text fed to the extraction collaborator.
package ingestion

import "strings"

// CleanText normalizes text content while preserving structure: line
// endings unified, trailing whitespace stripped, blank runs collapsed to at
// most one empty line.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			blanks++
			if blanks > 1 {
				continue
			}
			cleaned = append(cleaned, "")
			continue
		}
		blanks = 0
		cleaned = append(cleaned, line)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// NormalizeSource converts a raw candidate or requisition payload to
// cleaned text, routing HTML payloads through main-text extraction.
func NormalizeSource(raw []byte) (string, error) {
	content := string(raw)
	if LooksLikeHTML(content) {
		text, err := ExtractMainText(content)
		if err != nil {
			return "", err
		}
		return CleanText(text), nil
	}
	return CleanText(content), nil
}
