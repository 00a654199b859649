// Package naming derives deterministic, collision-free paths for every
// artifact a run produces. All functions are pure: for identical inputs they
// return identical path strings, with no clock reads and no fallback to
// placeholder names. Paths use forward slashes; the storage adapter maps
// them to its backend.
package naming

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"
)

// Mode selects between the single-candidate and batch folder layouts.
type Mode string

// Run modes.
const (
	ModeSingle Mode = "single"
	ModeBatch  Mode = "batch"
)

// ArtifactKind identifies one artifact type within a run.
type ArtifactKind string

// Artifact kinds.
const (
	KindSourceRecord        ArtifactKind = "source_record"
	KindMatch               ArtifactKind = "match"
	KindFeedback            ArtifactKind = "feedback"
	KindRenderedDocument    ArtifactKind = "rendered_document"
	KindDashboard           ArtifactKind = "dashboard"
	KindRequisitionSnapshot ArtifactKind = "requisition_snapshot"
)

// artifactExts maps each artifact kind to its file extension.
var artifactExts = map[ArtifactKind]string{
	KindSourceRecord:        "json",
	KindMatch:               "json",
	KindFeedback:            "md",
	KindRenderedDocument:    "html",
	KindDashboard:           "html",
	KindRequisitionSnapshot: "json",
}

// MaxSlugLen is the default length cap applied to slugs.
const MaxSlugLen = 48

// timestampLayout renders the run timestamp into file names.
const timestampLayout = "20060102_150405"

// RunIdentity is the sole input to path resolution. The timestamp is
// captured once per batch and threaded through, never re-derived.
type RunIdentity struct {
	Mode            Mode
	RequisitionSlug string
	CandidateSlug   string
	Timestamp       time.Time
}

func (id RunIdentity) stamp() string {
	return id.Timestamp.UTC().Format(timestampLayout)
}

// Error reports malformed or empty slug input. It is always fatal to the
// operation that triggered it; there is no silent fallback to a generic
// literal.
type Error struct {
	Input   string
	Message string
}

func (e *Error) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("naming error: %s", e.Message)
	}
	return fmt.Sprintf("naming error for %q: %s", e.Input, e.Message)
}

// Slugify normalizes raw free text into a filesystem-safe identifier:
// lowercase ASCII letters and digits, word separators collapsed to single
// underscores, everything else dropped, length capped at maxLen. An input
// that normalizes to the empty string is an *Error, not a placeholder.
func Slugify(raw string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = MaxSlugLen
	}

	var sb strings.Builder
	lastUnderscore := true // suppress a leading separator
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastUnderscore = false
		case unicode.IsSpace(r), r == '-', r == '_', r == '.', r == '/':
			if !lastUnderscore {
				sb.WriteRune('_')
				lastUnderscore = true
			}
		}
		if sb.Len() >= maxLen {
			break
		}
	}

	slug := strings.Trim(sb.String(), "_")
	if slug == "" {
		return "", &Error{Input: raw, Message: "input normalizes to an empty slug"}
	}
	return slug, nil
}

// Resolve maps (identity, kind) to the canonical path for that artifact.
// Layouts:
//
//	single: {req}_{cand}_{ts}/{req}_{cand}_{kind}_{ts}.{ext}
//	batch:  batch_{req}_{ts}/{cand}_{ts}/{req}_{cand}_{kind}_{ts}.{ext}
//
// The requisition snapshot lives at the run root as {req}_{ts}.json, and the
// dashboard at the run root as {req}_dashboard_{ts}.html; neither takes a
// candidate slug.
func Resolve(id RunIdentity, kind ArtifactKind) (string, error) {
	if err := checkSlug(id.RequisitionSlug); err != nil {
		return "", err
	}
	ext, ok := artifactExts[kind]
	if !ok {
		return "", &Error{Input: string(kind), Message: "unknown artifact kind"}
	}

	root, err := RunRoot(id)
	if err != nil {
		return "", err
	}

	switch kind {
	case KindRequisitionSnapshot:
		return path.Join(root, fmt.Sprintf("%s_%s.%s", id.RequisitionSlug, id.stamp(), ext)), nil
	case KindDashboard:
		return path.Join(root, fmt.Sprintf("%s_dashboard_%s.%s", id.RequisitionSlug, id.stamp(), ext)), nil
	}

	if err := checkSlug(id.CandidateSlug); err != nil {
		return "", err
	}
	file := fmt.Sprintf("%s_%s_%s_%s.%s", id.RequisitionSlug, id.CandidateSlug, kind, id.stamp(), ext)
	if id.Mode == ModeBatch {
		return path.Join(root, fmt.Sprintf("%s_%s", id.CandidateSlug, id.stamp()), file), nil
	}
	return path.Join(root, file), nil
}

// RunRoot returns the run's root folder: one folder per single run, one
// shared root per batch.
func RunRoot(id RunIdentity) (string, error) {
	if err := checkSlug(id.RequisitionSlug); err != nil {
		return "", err
	}
	if id.Mode == ModeBatch {
		return fmt.Sprintf("batch_%s_%s", id.RequisitionSlug, id.stamp()), nil
	}
	if err := checkSlug(id.CandidateSlug); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s_%s", id.RequisitionSlug, id.CandidateSlug, id.stamp()), nil
}

// CandidateDir returns the folder that holds one candidate's artifacts. In
// batch mode this is a subfolder of the run root; in single mode it is the
// run root itself.
func CandidateDir(id RunIdentity) (string, error) {
	root, err := RunRoot(id)
	if err != nil {
		return "", err
	}
	if id.Mode != ModeBatch {
		return root, nil
	}
	if err := checkSlug(id.CandidateSlug); err != nil {
		return "", err
	}
	return path.Join(root, fmt.Sprintf("%s_%s", id.CandidateSlug, id.stamp())), nil
}

// ordinalSuffixLen is the length of one "_NN" disambiguation suffix.
const ordinalSuffixLen = 3

// DisambiguateSlugs makes a slug list collision-free while preserving input
// order. Slugs that appear more than once get a zero-padded ordinal suffix
// assigned by position (john_smith_01, john_smith_02); unique slugs pass
// through unchanged. A suffixed result is checked against every other slug
// in the batch, so an ordinal can never land on a name another candidate
// already holds; the ordinal keeps advancing until the result is free.
// Length-capped slugs are trimmed before suffixing so the final name stays
// within MaxSlugLen. Deterministic: the same input always yields the same
// output, never a silent overwrite.
func DisambiguateSlugs(slugs []string) []string {
	counts := make(map[string]int, len(slugs))
	for _, s := range slugs {
		counts[s]++
	}

	used := make(map[string]bool, len(slugs))
	for s, n := range counts {
		if n == 1 {
			used[s] = true
		}
	}

	next := make(map[string]int, len(slugs))
	out := make([]string, len(slugs))
	for i, s := range slugs {
		if counts[s] <= 1 {
			out[i] = s
			continue
		}
		base := s
		if len(base) > MaxSlugLen-ordinalSuffixLen {
			base = strings.TrimRight(base[:MaxSlugLen-ordinalSuffixLen], "_")
		}
		for {
			next[s]++
			candidate := fmt.Sprintf("%s_%02d", base, next[s])
			if !used[candidate] {
				used[candidate] = true
				out[i] = candidate
				break
			}
		}
	}
	return out
}

func checkSlug(slug string) error {
	if slug == "" {
		return &Error{Message: "empty slug"}
	}
	if slug != strings.ToLower(slug) || strings.ContainsAny(slug, " /\\.") {
		return &Error{Input: slug, Message: "slug is not normalized; call Slugify first"}
	}
	return nil
}
