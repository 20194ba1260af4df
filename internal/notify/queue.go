package notify

import (
	"context"
	"sync"
	"time"
)

// DigestItem is one queued notification for a batched-frequency recipient.
type DigestItem struct {
	RecipientID string    `json:"recipient_id"`
	Email       string    `json:"email"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	PostingID   string    `json:"posting_id,omitempty"`
	QueuedAt    time.Time `json:"queued_at"`
}

// Queue buffers notifications for recipients who chose batched delivery.
// Enqueue happens during dispatch rounds; Drain is called by the periodic
// digest flusher and empties the queue.
type Queue interface {
	Enqueue(ctx context.Context, item DigestItem) error
	Drain(ctx context.Context) ([]DigestItem, error)
}

// MemoryQueue is an in-process Queue for tests and single-node deployments
// without Redis.
type MemoryQueue struct {
	mu    sync.Mutex
	items []DigestItem
}

// NewMemoryQueue constructs an empty MemoryQueue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

// Enqueue implements Queue.
func (q *MemoryQueue) Enqueue(_ context.Context, item DigestItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, item)
	return nil
}

// Drain implements Queue.
func (q *MemoryQueue) Drain(context.Context) ([]DigestItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items, nil
}
