package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-screener/internal/types"
)

func TestScore_PerfectMatch(t *testing.T) {
	req := &types.Requisition{
		Title:          "Backend Engineer",
		RequiredSkills: []string{"Go", "PostgreSQL", "Kubernetes"},
		DesiredLevel:   types.LevelSenior,
		Location:       "Berlin",
	}
	cand := &types.CandidateRecord{
		GivenName:  "Jane",
		FamilyName: "Doe",
		Skills:     []string{"go", "postgres", "k8s", "docker"},
		Level:      types.LevelSenior,
		Location:   "berlin",
	}

	result := Score(req, cand)
	assert.Equal(t, 100.0, result.SkillCoverage)
	assert.Equal(t, 100.0, result.ExperienceFit)
	assert.Equal(t, 100.0, result.LocationFit)
	assert.Equal(t, 100.0, result.OverallScore)
	assert.Empty(t, result.MissingSkills)
	assert.Empty(t, result.Reasoning)
}

func TestScore_WeightedBlend(t *testing.T) {
	// Half the skills, exact level, location miss:
	// 0.60*50 + 0.30*100 + 0.10*40 = 64.
	req := &types.Requisition{
		RequiredSkills: []string{"go", "rust"},
		DesiredLevel:   types.LevelIntermediate,
		Location:       "london",
	}
	cand := &types.CandidateRecord{
		Skills:   []string{"go"},
		Level:    types.LevelIntermediate,
		Location: "paris",
	}

	result := Score(req, cand)
	assert.Equal(t, 50.0, result.SkillCoverage)
	assert.Equal(t, 100.0, result.ExperienceFit)
	assert.Equal(t, 40.0, result.LocationFit)
	assert.InDelta(t, 64.0, result.OverallScore, 0.0001)
}

func TestScoreSkills(t *testing.T) {
	tests := []struct {
		name      string
		required  []string
		candidate []string
		want      float64
		missing   []string
	}{
		{"no required skills", nil, []string{"go"}, 100, nil},
		{"nothing matched", []string{"go", "rust"}, []string{"python"}, 0, []string{"go", "rust"}},
		{"aliases intersect", []string{"Golang", "K8s"}, []string{"go", "kubernetes"}, 100, nil},
		{"case insensitive", []string{"GO"}, []string{"Go"}, 100, nil},
		{"duplicate required counted once", []string{"go", "golang"}, []string{"go"}, 100, nil},
		{"one of three", []string{"go", "rust", "zig"}, []string{"rust"}, 100.0 / 3.0, []string{"go", "zig"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &types.MatchResult{}
			got := scoreSkills(tt.required, tt.candidate, result)
			assert.InDelta(t, tt.want, got, 0.0001)
			assert.Equal(t, tt.missing, result.MissingSkills)
		})
	}
}

func TestScoreExperience_DistanceTable(t *testing.T) {
	tests := []struct {
		name    string
		desired types.ExperienceLevel
		actual  types.ExperienceLevel
		want    float64
	}{
		{"exact", types.LevelSenior, types.LevelSenior, 100},
		{"one over", types.LevelIntermediate, types.LevelSenior, 80},
		{"senior requisition, lead candidate", types.LevelSenior, types.LevelLead, 80},
		{"one under", types.LevelSenior, types.LevelIntermediate, 70},
		{"two over", types.LevelJunior, types.LevelSenior, 50},
		{"three over", types.LevelJunior, types.LevelLead, 50},
		{"two under", types.LevelLead, types.LevelIntermediate, 40},
		{"three under", types.LevelLead, types.LevelJunior, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &types.MatchResult{}
			got := scoreExperience(tt.desired, tt.actual, result)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, result.Reasoning)
		})
	}
}

func TestScoreExperience_UnknownLevelDefaultsToIntermediate(t *testing.T) {
	result := &types.MatchResult{}
	got := scoreExperience(types.LevelSenior, types.ExperienceLevel("ninja"), result)

	// ninja -> intermediate, one under senior.
	assert.Equal(t, 70.0, got)
	require.Len(t, result.Reasoning, 1)
	assert.Contains(t, result.Reasoning[0], `"ninja"`)
	assert.Contains(t, result.Reasoning[0], "intermediate")
}

func TestScoreExperience_BothUnknown(t *testing.T) {
	result := &types.MatchResult{}
	got := scoreExperience("", "", result)

	// Both default to intermediate: exact match, two notes.
	assert.Equal(t, 100.0, got)
	assert.Len(t, result.Reasoning, 2)
}

func TestScoreLocation(t *testing.T) {
	tests := []struct {
		name string
		req  string
		cand string
		want float64
	}{
		{"remote matches anyone", "Remote", "tokyo", 100},
		{"any matches anyone", "any", "", 100},
		{"anywhere matches anyone", "Anywhere", "oslo", 100},
		{"requisition silent", "", "berlin", 50},
		{"candidate unknown", "berlin", "", 50},
		{"same city", "Berlin", "berlin ", 100},
		{"different city", "berlin", "munich", 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoreLocation(tt.req, tt.cand))
		})
	}
}

func TestScore_AlwaysInRange(t *testing.T) {
	candidates := []*types.CandidateRecord{
		{},
		{Skills: []string{"go"}, Level: "wizard"},
		{Skills: []string{"", "  "}, Location: "x"},
	}
	req := &types.Requisition{
		RequiredSkills: []string{"go", "rust", "zig"},
		DesiredLevel:   "unheard-of",
		Location:       "mars",
	}

	for _, cand := range candidates {
		result := Score(req, cand)
		assert.GreaterOrEqual(t, result.OverallScore, 0.0)
		assert.LessOrEqual(t, result.OverallScore, 100.0)
	}
}

func TestNormalizeSkill(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Golang", "go"},
		{"  K8s  ", "kubernetes"},
		{"Postgres", "postgresql"},
		{"TypeScript", "typescript"},
		{"Amazon Web Services", "aws"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSkill(tt.input), "input %q", tt.input)
	}
}
