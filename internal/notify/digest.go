package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Flusher drains the digest queue and sends one summary email per recipient.
// It runs on a cron schedule from the serve command.
type Flusher struct {
	queue  Queue
	fanout *Fanout
	log    *zap.Logger
}

// NewFlusher constructs a Flusher.
func NewFlusher(queue Queue, fanout *Fanout, log *zap.Logger) *Flusher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Flusher{queue: queue, fanout: fanout, log: log}
}

// Flush drains the queue, groups items per recipient, and fans out one
// digest email each. A queue failure is fatal (the items stay queued); send
// failures are absorbed into the report as usual.
func (f *Flusher) Flush(ctx context.Context) (Report, error) {
	items, err := f.queue.Drain(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to drain digest queue: %w", err)
	}
	if len(items) == 0 {
		return Report{}, nil
	}

	grouped := make(map[string][]DigestItem)
	for _, item := range items {
		grouped[item.RecipientID] = append(grouped[item.RecipientID], item)
	}

	deliveries := make([]Delivery, 0, len(grouped))
	for recipientID, batch := range grouped {
		deliveries = append(deliveries, Delivery{
			RecipientID: recipientID,
			Address:     batch[0].Email,
			Email:       digestEmail(batch),
		})
	}
	// Map order is random; keep rounds reproducible in logs and tests.
	sort.Slice(deliveries, func(i, j int) bool {
		return deliveries[i].RecipientID < deliveries[j].RecipientID
	})

	report := f.fanout.Deliver(ctx, deliveries)
	f.log.Info("digest flush complete",
		zap.Int("items", len(items)),
		zap.Int("recipients", report.Recipients),
		zap.Int("emails_succeeded", report.EmailSucceeded),
		zap.Int("emails_failed", report.EmailFailed))
	return report, nil
}

// digestEmail folds a recipient's queued items into one summary email.
func digestEmail(batch []DigestItem) *Email {
	titles := make([]string, 0, len(batch))
	postingIDs := make([]string, 0, len(batch))
	for _, item := range batch {
		titles = append(titles, item.Title)
		if item.PostingID != "" {
			postingIDs = append(postingIDs, item.PostingID)
		}
	}
	return &Email{
		Subject: fmt.Sprintf("%d new job matches for you", len(batch)),
		Data: map[string]any{
			"count":       len(batch),
			"titles":      strings.Join(titles, "; "),
			"posting_ids": postingIDs,
		},
	}
}
