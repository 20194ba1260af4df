// Package notify holds the delivery side of the matching core: transport
// interfaces, the bounded fan-out worker pool, and the digest queue for
// batched-frequency recipients.
package notify

import "context"

// Push notification types emitted by the dispatch flows.
const (
	TypeJobRecommendation = "job_recommendation"
	TypeSimilarJobs       = "similar_jobs"
	TypeSkillGap          = "skill_gap"
	TypeUrgentJob         = "urgent_job"
)

// Message is one push notification payload.
type Message struct {
	Type  string         `json:"type"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
}

// Email is one email payload, rendered by whichever provider the transport
// wraps; the core only supplies template data.
type Email struct {
	Subject string         `json:"subject"`
	Data    map[string]any `json:"data,omitempty"`
}

// PushTransport delivers a push notification to one recipient. Calls are
// fire-and-forget from the core's perspective and fail independently.
type PushTransport interface {
	Send(ctx context.Context, recipientID string, msg Message) error
}

// EmailTransport delivers an email to one address, same contract.
type EmailTransport interface {
	Send(ctx context.Context, recipientEmail string, email Email) error
}

// NoopPush stands in when no push transport is configured, so dispatch logic
// never needs nil checks.
type NoopPush struct{}

// Send implements PushTransport.
func (NoopPush) Send(context.Context, string, Message) error { return nil }

// NoopEmail stands in when no email transport is configured.
type NoopEmail struct{}

// Send implements EmailTransport.
func (NoopEmail) Send(context.Context, string, Email) error { return nil }
