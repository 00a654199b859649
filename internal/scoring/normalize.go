package scoring

import "strings"

// skillAliases maps common skill name variants to a canonical form so that
// requisition and candidate skill sets intersect on meaning, not spelling.
var skillAliases = map[string]string{
	"golang":              "go",
	"go lang":             "go",
	"js":                  "javascript",
	"ts":                  "typescript",
	"k8s":                 "kubernetes",
	"postgres":            "postgresql",
	"psql":                "postgresql",
	"reactjs":             "react",
	"react.js":            "react",
	"nodejs":              "node.js",
	"node":                "node.js",
	"tf":                  "terraform",
	"gcloud":              "gcp",
	"amazon web services": "aws",
	"google cloud":        "gcp",
}

// NormalizeSkill lowercases, trims, and canonicalizes a skill name.
// Returns the empty string for blank input.
func NormalizeSkill(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return ""
	}
	if canonical, ok := skillAliases[normalized]; ok {
		return canonical
	}
	return normalized
}
