// Package proximity pushes urgent-job alerts to nearby candidates: bounding
// box pre-filter at the configured maximum radius, exact distance re-check,
// then the recipient's own preference gates.
package proximity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kajiplatform/matching-service/internal/geo"
	"github.com/kajiplatform/matching-service/internal/notify"
	"github.com/kajiplatform/matching-service/internal/store"
	"github.com/kajiplatform/matching-service/internal/types"
)

const (
	defaultMaxRadiusKm  = 50.0
	defaultRecipientCap = 500
)

// Options bound an alert round.
type Options struct {
	// MaxRadiusKm is the widest alert radius any recipient can opt into.
	// It sizes the bounding box, so the pre-filter can never exclude an
	// eligible recipient.
	MaxRadiusKm float64
	// RecipientCap caps the candidate pull per round.
	RecipientCap int
}

func (o Options) withDefaults() Options {
	if o.MaxRadiusKm <= 0 {
		o.MaxRadiusKm = defaultMaxRadiusKm
	}
	if o.RecipientCap <= 0 {
		o.RecipientCap = defaultRecipientCap
	}
	return o
}

// Report accounts for one urgent alert round.
type Report struct {
	InBox    int           `json:"in_box"`
	Notified int           `json:"notified"`
	Delivery notify.Report `json:"delivery"`
}

// Notifier owns the urgent proximity flow.
type Notifier struct {
	repo   store.Repository
	fanout *notify.Fanout
	log    *zap.Logger
	opts   Options
	now    func() time.Time
}

// NewNotifier constructs a Notifier. A nil logger falls back to zap.NewNop.
func NewNotifier(repo store.Repository, fanout *notify.Fanout, log *zap.Logger, opts Options) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		repo:   repo,
		fanout: fanout,
		log:    log,
		opts:   opts.withDefaults(),
		now:    time.Now,
	}
}

// DispatchUrgentAlert pushes an urgent-job alert to every candidate inside
// their own alert radius who passes the preference gates. A posting that is
// not urgent or not open yields a no-op report; a posting without valid
// coordinates is a validation error, since proximity is meaningless without
// them.
func (n *Notifier) DispatchUrgentAlert(ctx context.Context, postingID uuid.UUID) (Report, error) {
	posting, err := n.repo.GetPosting(ctx, postingID)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load posting %s: %w", postingID, err)
	}
	now := n.now()
	if !posting.Urgent || !posting.OpenForMatching(now) {
		n.log.Info("posting not eligible for urgent alerts, skipping round",
			zap.String("posting_id", postingID.String()))
		return Report{}, nil
	}
	if !geo.IsValid(posting.Location) {
		return Report{}, fmt.Errorf("posting %s: %w", postingID, geo.ErrInvalidCoordinates)
	}

	box, err := geo.BoundingBox(posting.Location, n.opts.MaxRadiusKm)
	if err != nil {
		return Report{}, fmt.Errorf("failed to compute alert box: %w", err)
	}
	candidates, err := n.repo.ListCandidatesInBox(ctx, box, n.opts.RecipientCap)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list candidates in box: %w", err)
	}

	report := Report{InBox: len(candidates)}
	deliveries := make([]notify.Delivery, 0, len(candidates))
	for i := range candidates {
		candidate := &candidates[i]
		if candidate.ID == posting.PosterID {
			continue
		}
		distance, ok := n.withinRecipientRadius(posting, candidate)
		if !ok {
			continue
		}
		if candidate.Preference.Frequency == types.FrequencyInstant &&
			candidate.Preference.QuietHours.Contains(now) {
			continue
		}
		if !candidate.Preference.MeetsPayment(posting.PaymentAmount) {
			continue
		}
		if !candidate.Preference.AllowsCategory(posting.Category) {
			continue
		}

		deliveries = append(deliveries, notify.Delivery{
			RecipientID: candidate.ID.String(),
			Address:     candidate.Email,
			Push: &notify.Message{
				Type:  notify.TypeUrgentJob,
				Title: fmt.Sprintf("Urgent job %.1f km away", distance),
				Body:  posting.Title,
				Data: map[string]any{
					"posting_id":     posting.ID.String(),
					"distance_km":    distance,
					"payment_amount": posting.PaymentAmount,
				},
			},
		})
	}
	report.Notified = len(deliveries)

	report.Delivery = n.fanout.Deliver(ctx, deliveries)
	n.log.Info("urgent alert round complete",
		zap.String("posting_id", postingID.String()),
		zap.Int("in_box", report.InBox),
		zap.Int("notified", report.Notified),
		zap.Int("push_failed", report.Delivery.PushFailed))
	return report, nil
}

// withinRecipientRadius applies the exact distance check against the
// recipient's own cap, which defaults to 10 km and can never exceed the
// configured maximum radius.
func (n *Notifier) withinRecipientRadius(posting *types.Posting, candidate *types.Candidate) (float64, bool) {
	if !geo.IsValid(candidate.Location) {
		return 0, false
	}
	distance, err := geo.DistanceKm(posting.Location, candidate.Location)
	if err != nil {
		return 0, false
	}

	radius := candidate.Preference.MaxDistanceKm
	if radius <= 0 {
		radius = types.DefaultMaxDistanceKm
	}
	if radius > n.opts.MaxRadiusKm {
		radius = n.opts.MaxRadiusKm
	}
	return distance, distance <= radius
}
