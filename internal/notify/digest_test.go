package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueueDrainEmptiesQueue(t *testing.T) {
	ctx := context.Background()
	queue := NewMemoryQueue()

	require.NoError(t, queue.Enqueue(ctx, DigestItem{RecipientID: "u1", Title: "Plumber needed"}))
	require.NoError(t, queue.Enqueue(ctx, DigestItem{RecipientID: "u2", Title: "Electrician"}))

	items, err := queue.Drain(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = queue.Drain(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFlusherGroupsItemsPerRecipient(t *testing.T) {
	ctx := context.Background()
	queue := NewMemoryQueue()
	queuedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for _, item := range []DigestItem{
		{RecipientID: "u1", Email: "u1@example.com", Title: "Plumber needed", PostingID: "p1", QueuedAt: queuedAt},
		{RecipientID: "u2", Email: "u2@example.com", Title: "Electrician", PostingID: "p2", QueuedAt: queuedAt},
		{RecipientID: "u1", Email: "u1@example.com", Title: "Carpenter", PostingID: "p3", QueuedAt: queuedAt},
	} {
		require.NoError(t, queue.Enqueue(ctx, item))
	}

	email := &recordingEmail{}
	flusher := NewFlusher(queue, NewFanout(nil, email, nil, FanoutOptions{}), nil)

	report, err := flusher.Flush(ctx)
	require.NoError(t, err)

	// Three queued items, but one email per recipient.
	assert.Equal(t, 2, report.Recipients)
	assert.Equal(t, 2, report.EmailAttempted)
	assert.Equal(t, 2, report.EmailSucceeded)
	assert.ElementsMatch(t, []string{"u1@example.com", "u2@example.com"}, email.sent)

	// The queue is empty after a flush.
	items, err := queue.Drain(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFlusherEmptyQueueIsNoop(t *testing.T) {
	email := &recordingEmail{}
	flusher := NewFlusher(NewMemoryQueue(), NewFanout(nil, email, nil, FanoutOptions{}), nil)

	report, err := flusher.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{}, report)
	assert.Empty(t, email.sent)
}

func TestDigestEmailSummarizesBatch(t *testing.T) {
	email := digestEmail([]DigestItem{
		{Title: "Plumber needed", PostingID: "p1"},
		{Title: "Carpenter", PostingID: "p3"},
	})

	assert.Equal(t, "2 new job matches for you", email.Subject)
	assert.Equal(t, 2, email.Data["count"])
	assert.Equal(t, "Plumber needed; Carpenter", email.Data["titles"])
	assert.Equal(t, []string{"p1", "p3"}, email.Data["posting_ids"])
}
