package types

import (
	"time"

	"github.com/google/uuid"
)

// Posting is a job posting as read from the profile/job repository. It embeds
// everything the scorer needs plus the lifecycle flags the dispatcher gates on.
type Posting struct {
	ID            uuid.UUID  `json:"id"`
	PosterID      uuid.UUID  `json:"poster_id"`
	Title         string     `json:"title"`
	JobType       string     `json:"job_type"`
	Category      string     `json:"category"`
	PaymentAmount float64    `json:"payment_amount"`
	Urgent        bool       `json:"urgent"`
	Active        bool       `json:"active"`
	Verified      bool       `json:"verified"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`

	RequiredSkills     SkillMap `json:"required_skills"`
	Location           Location `json:"location"`
	IsRemote           bool     `json:"is_remote"`
	MinExperienceYears float64  `json:"min_experience_years"`
	Province           string   `json:"province,omitempty"`
	District           string   `json:"district,omitempty"`
	City               string   `json:"city,omitempty"`
}

// MatchQuery projects the posting into the scorer's input shape.
func (p *Posting) MatchQuery() MatchQuery {
	return MatchQuery{
		ID:                 p.ID.String(),
		RequiredSkills:     p.RequiredSkills,
		Location:           p.Location,
		IsRemote:           p.IsRemote,
		MinExperienceYears: p.MinExperienceYears,
		Province:           p.Province,
		District:           p.District,
		City:               p.City,
	}
}

// Expired reports whether the posting's expiry has passed.
func (p *Posting) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && !p.ExpiresAt.After(now)
}

// OpenForMatching reports whether the posting may trigger recommendations:
// active, verified, and not expired.
func (p *Posting) OpenForMatching(now time.Time) bool {
	return p.Active && p.Verified && !p.Expired(now)
}
