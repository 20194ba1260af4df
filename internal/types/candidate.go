package types

import (
	"github.com/google/uuid"
)

// Candidate is a job seeker as read from the profile/job repository: the
// scoring profile plus account flags and notification preferences.
type Candidate struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Active   bool      `json:"active"`
	Verified bool      `json:"verified"`

	Skills     SkillMap           `json:"skills"`
	Location   Location           `json:"location"`
	Experience []ExperienceRecord `json:"experience,omitempty"`
	Province   string             `json:"province,omitempty"`
	District   string             `json:"district,omitempty"`
	City       string             `json:"city,omitempty"`

	Preference NotificationPreference `json:"preference"`
}

// Profile projects the candidate into the scorer's input shape.
func (c *Candidate) Profile() CandidateProfile {
	return CandidateProfile{
		ID:         c.ID.String(),
		Skills:     c.Skills,
		Location:   c.Location,
		Experience: c.Experience,
		Province:   c.Province,
		District:   c.District,
		City:       c.City,
	}
}
