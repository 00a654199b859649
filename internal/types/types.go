// Package types defines the shared data model for the screening pipeline.
package types

// ExperienceLevel is a seniority level on a four-point ordinal scale.
type ExperienceLevel string

// Experience levels, ordered junior (1) through lead (4).
const (
	LevelJunior       ExperienceLevel = "junior"
	LevelIntermediate ExperienceLevel = "intermediate"
	LevelSenior       ExperienceLevel = "senior"
	LevelLead         ExperienceLevel = "lead"
)

var levelOrdinals = map[ExperienceLevel]int{
	LevelJunior:       1,
	LevelIntermediate: 2,
	LevelSenior:       3,
	LevelLead:         4,
}

// Ordinal returns the 1-4 rank of the level and whether the level is defined.
func (l ExperienceLevel) Ordinal() (int, bool) {
	ord, ok := levelOrdinals[l]
	return ord, ok
}

// Requisition describes the hiring need a batch of candidates is matched
// against. It is immutable once a batch starts and shared read-only across
// all candidate pipelines in that batch.
type Requisition struct {
	ID             string          `json:"id,omitempty"`
	Title          string          `json:"title"`
	RequiredSkills []string        `json:"required_skills"`
	DesiredLevel   ExperienceLevel `json:"desired_experience_level"`
	Location       string          `json:"location,omitempty"`
}

// CandidateRecord is the structured record produced by the Extract stage.
// It is immutable after extraction succeeds. GivenName and FamilyName are
// the mandatory identity fields checked by the Validate stage.
type CandidateRecord struct {
	GivenName  string          `json:"given_name" validate:"required"`
	FamilyName string          `json:"family_name" validate:"required"`
	Skills     []string        `json:"skills"`
	Level      ExperienceLevel `json:"experience_level"`
	Location   string          `json:"location,omitempty"`
	RawSource  []byte          `json:"-"`
}

// FullName returns the candidate's display name.
func (c *CandidateRecord) FullName() string {
	if c.GivenName == "" {
		return c.FamilyName
	}
	if c.FamilyName == "" {
		return c.GivenName
	}
	return c.GivenName + " " + c.FamilyName
}

// MatchResult holds the explainable match score for one candidate against
// the requisition. All component scores are in [0,100]. Reasoning records
// scoring notes such as malformed enum values mapped to defaults; it is
// informational and never an error.
type MatchResult struct {
	OverallScore  float64  `json:"overall_score"`
	SkillCoverage float64  `json:"skill_coverage"`
	ExperienceFit float64  `json:"experience_fit"`
	LocationFit   float64  `json:"location_fit"`
	MatchedSkills []string `json:"matched_skills,omitempty"`
	MissingSkills []string `json:"missing_skills,omitempty"`
	Reasoning     []string `json:"reasoning,omitempty"`
}
