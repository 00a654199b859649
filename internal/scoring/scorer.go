// Package scoring computes the explainable match score between a
// requisition and an extracted candidate record. Scoring is a pure weighted
// formula: no I/O, deterministic, and it never returns an error: malformed
// inputs map to the nearest defined default and are noted in the result's
// Reasoning for the caller to log.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/candidate-screener/internal/types"
)

// Component weights for the overall score. Tunable constants; the exact
// split is not load-bearing for any other invariant.
const (
	skillWeight      = 0.60
	experienceWeight = 0.30
	locationWeight   = 0.10
)

// Location fit values.
const (
	locationMatch   = 100.0
	locationUnknown = 50.0
	locationMiss    = 40.0
)

// Score computes the MatchResult for one candidate against the requisition.
func Score(req *types.Requisition, cand *types.CandidateRecord) *types.MatchResult {
	result := &types.MatchResult{}

	result.SkillCoverage = scoreSkills(req.RequiredSkills, cand.Skills, result)
	result.ExperienceFit = scoreExperience(req.DesiredLevel, cand.Level, result)
	result.LocationFit = scoreLocation(req.Location, cand.Location)

	overall := skillWeight*result.SkillCoverage +
		experienceWeight*result.ExperienceFit +
		locationWeight*result.LocationFit
	result.OverallScore = clamp(overall, 0, 100)

	return result
}

// scoreSkills returns 100 * |required ∩ candidate| / |required|, defined as
// 100 when no skills are required. Matching is on normalized skill names.
func scoreSkills(required, candidate []string, result *types.MatchResult) float64 {
	if len(required) == 0 {
		return 100
	}

	have := make(map[string]bool, len(candidate))
	for _, s := range candidate {
		if n := NormalizeSkill(s); n != "" {
			have[n] = true
		}
	}

	requiredSet := make(map[string]bool, len(required))
	for _, s := range required {
		if n := NormalizeSkill(s); n != "" {
			requiredSet[n] = true
		}
	}
	if len(requiredSet) == 0 {
		return 100
	}

	matched := 0
	for skill := range requiredSet {
		if have[skill] {
			matched++
			result.MatchedSkills = append(result.MatchedSkills, skill)
		} else {
			result.MissingSkills = append(result.MissingSkills, skill)
		}
	}
	sort.Strings(result.MatchedSkills)
	sort.Strings(result.MissingSkills)

	return 100 * float64(matched) / float64(len(requiredSet))
}

// scoreExperience maps the ordinal distance between desired and actual
// level (junior=1..lead=4) to a fit score. "Over" means the candidate is at
// or above the desired level.
func scoreExperience(desired, actual types.ExperienceLevel, result *types.MatchResult) float64 {
	want := ordinalOrDefault(desired, "requisition", result)
	got := ordinalOrDefault(actual, "candidate", result)

	distance := got - want
	switch {
	case distance == 0:
		return 100
	case distance == 1:
		return 80
	case distance == -1:
		return 70
	case distance > 1:
		return 50
	default:
		return 40
	}
}

// ordinalOrDefault resolves a level to its ordinal, substituting
// intermediate for undefined values and recording the substitution.
func ordinalOrDefault(level types.ExperienceLevel, side string, result *types.MatchResult) int {
	if ord, ok := level.Ordinal(); ok {
		return ord
	}
	fallback, _ := types.LevelIntermediate.Ordinal()
	result.Reasoning = append(result.Reasoning,
		fmt.Sprintf("%s experience level %q is not recognized; treated as %s", side, level, types.LevelIntermediate))
	return fallback
}

// remoteLocations are requisition locations that match any candidate.
var remoteLocations = map[string]bool{
	"remote":   true,
	"any":      true,
	"anywhere": true,
}

func scoreLocation(reqLocation, candLocation string) float64 {
	reqNorm := strings.ToLower(strings.TrimSpace(reqLocation))
	candNorm := strings.ToLower(strings.TrimSpace(candLocation))

	if remoteLocations[reqNorm] {
		return locationMatch
	}
	if reqNorm == "" || candNorm == "" {
		return locationUnknown
	}
	if reqNorm == candNorm {
		return locationMatch
	}
	return locationMiss
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
