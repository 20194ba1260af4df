package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkers     = 8
	defaultSendTimeout = 10 * time.Second
)

// Delivery is one recipient's unit of work in a fan-out round. A nil Push or
// Email means that channel is skipped for this recipient.
type Delivery struct {
	RecipientID string
	Address     string // email address; required when Email is set
	Push        *Message
	Email       *Email
}

// Report accounts for one fan-out round. Transport failures are counted, not
// raised: the round's outcome is these numbers, never an all-or-nothing error.
type Report struct {
	Recipients     int `json:"recipients"`
	PushAttempted  int `json:"push_attempted"`
	PushSucceeded  int `json:"push_succeeded"`
	PushFailed     int `json:"push_failed"`
	EmailAttempted int `json:"email_attempted"`
	EmailSucceeded int `json:"email_succeeded"`
	EmailFailed    int `json:"email_failed"`
}

// FanoutOptions configure the worker pool.
type FanoutOptions struct {
	Workers     int
	SendTimeout time.Duration
}

// Fanout delivers to each recipient independently over a bounded worker
// pool. The push and email attempt for one recipient run concurrently; a
// slow or failing transport for one recipient never stalls the others.
type Fanout struct {
	push        PushTransport
	email       EmailTransport
	log         *zap.Logger
	workers     int
	sendTimeout time.Duration
}

// NewFanout constructs a Fanout. Nil transports are replaced by no-ops and a
// nil logger by zap.NewNop, so callers carry no nil checks.
func NewFanout(push PushTransport, email EmailTransport, log *zap.Logger, opts FanoutOptions) *Fanout {
	if push == nil {
		push = NoopPush{}
	}
	if email == nil {
		email = NoopEmail{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	timeout := opts.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Fanout{push: push, email: email, log: log, workers: workers, sendTimeout: timeout}
}

// recipientResult is the per-recipient outcome collected from the pool.
type recipientResult struct {
	pushAttempted  bool
	pushErr        error
	emailAttempted bool
	emailErr       error
}

// Deliver fans the deliveries out and returns the round's counts. Each
// failure is logged at recipient granularity and absorbed into the report.
func (f *Fanout) Deliver(ctx context.Context, deliveries []Delivery) Report {
	if len(deliveries) == 0 {
		return Report{}
	}

	results := make(chan recipientResult, len(deliveries))

	var g errgroup.Group
	g.SetLimit(f.workers)
	for _, d := range deliveries {
		g.Go(func() error {
			results <- f.deliverOne(ctx, d)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures travel in results
	close(results)

	report := Report{Recipients: len(deliveries)}
	for res := range results {
		if res.pushAttempted {
			report.PushAttempted++
			if res.pushErr != nil {
				report.PushFailed++
			} else {
				report.PushSucceeded++
			}
		}
		if res.emailAttempted {
			report.EmailAttempted++
			if res.emailErr != nil {
				report.EmailFailed++
			} else {
				report.EmailSucceeded++
			}
		}
	}
	return report
}

// deliverOne runs the push and email attempts for a single recipient
// concurrently, each bounded by the send timeout.
func (f *Fanout) deliverOne(ctx context.Context, d Delivery) recipientResult {
	res := recipientResult{}

	done := make(chan struct{})
	if d.Push != nil {
		res.pushAttempted = true
		go func() {
			defer close(done)
			sendCtx, cancel := context.WithTimeout(ctx, f.sendTimeout)
			defer cancel()
			res.pushErr = f.push.Send(sendCtx, d.RecipientID, *d.Push)
		}()
	} else {
		close(done)
	}

	if d.Email != nil {
		res.emailAttempted = true
		sendCtx, cancel := context.WithTimeout(ctx, f.sendTimeout)
		res.emailErr = f.email.Send(sendCtx, d.Address, *d.Email)
		cancel()
	}
	<-done

	if res.pushErr != nil {
		f.log.Warn("push delivery failed",
			zap.String("recipient", d.RecipientID),
			zap.String("type", d.Push.Type),
			zap.Error(res.pushErr))
	}
	if res.emailErr != nil {
		f.log.Warn("email delivery failed",
			zap.String("recipient", d.RecipientID),
			zap.Error(res.emailErr))
	}
	return res
}
