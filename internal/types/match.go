package types

import (
	"github.com/go-playground/validator/v10"
)

// MatchQuery is the job-side input to scoring: the required skills plus the
// location, remote, and experience constraints of one posting.
type MatchQuery struct {
	ID                 string   `json:"id"`
	RequiredSkills     SkillMap `json:"required_skills" validate:"required,min=1"`
	Location           Location `json:"location"`
	IsRemote           bool     `json:"is_remote"`
	MinExperienceYears float64  `json:"min_experience_years" validate:"gte=0"`
	Province           string   `json:"province,omitempty"`
	District           string   `json:"district,omitempty"`
	City               string   `json:"city,omitempty"`
}

// Validate checks the query using the validator plus skill-level range checks.
// A query without at least one required skill is rejected, mirroring the
// upstream rule that a posting must declare skills.
func (q *MatchQuery) Validate() error {
	validate := validator.New()
	if err := validate.Struct(q); err != nil {
		return err
	}
	return q.RequiredSkills.Validate()
}

// ExperienceRecord is a single work-history entry on a candidate profile.
// Only the duration feeds scoring; the title is kept for payloads.
type ExperienceRecord struct {
	Title string  `json:"title,omitempty"`
	Years float64 `json:"years" validate:"gte=0"`
}

// CandidateProfile is the user-side input to scoring.
type CandidateProfile struct {
	ID         string             `json:"id"`
	Skills     SkillMap           `json:"skills"`
	Location   Location           `json:"location"`
	Experience []ExperienceRecord `json:"experience,omitempty"`
	Province   string             `json:"province,omitempty"`
	District   string             `json:"district,omitempty"`
	City       string             `json:"city,omitempty"`
}

// TotalExperienceYears sums the durations of all experience records.
func (p *CandidateProfile) TotalExperienceYears() float64 {
	total := 0.0
	for _, rec := range p.Experience {
		total += rec.Years
	}
	return total
}

// MatchBreakdown explains how a MatchResult was reached.
type MatchBreakdown struct {
	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
	LocationMatch   bool     `json:"location_match"`
	ExperienceMatch bool     `json:"experience_match"`
}

// MatchResult is the outcome of scoring one (query, candidate) pair.
// Results are request-scoped: they are recomputed on every dispatch round and
// never persisted, since skills and locations change too often for a cached
// score to stay trustworthy.
type MatchResult struct {
	SubjectID  string         `json:"subject_id"`
	MatchScore float64        `json:"match_score"`
	Breakdown  MatchBreakdown `json:"breakdown"`
}
