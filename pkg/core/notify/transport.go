package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/event-rota/pkg/core/dispatch"
)

const (
	DefaultMaxRetries  = 3
	DefaultBaseDelay   = time.Second
	DefaultConcurrency = 5
)

// Sender delivers a single email
type Sender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// RetryingTransport sends each job of a batch concurrently, retrying rate limited
// sends with exponential backoff. A failed job never affects its siblings.
type RetryingTransport struct {
	sender   Sender
	renderer Renderer
	logger   *zap.Logger

	MaxRetries  int
	BaseDelay   time.Duration
	Concurrency int
}

// NewRetryingTransport creates a transport with the default retry policy
func NewRetryingTransport(sender Sender, renderer Renderer, logger *zap.Logger) *RetryingTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingTransport{
		sender:      sender,
		renderer:    renderer,
		logger:      logger,
		MaxRetries:  DefaultMaxRetries,
		BaseDelay:   DefaultBaseDelay,
		Concurrency: DefaultConcurrency,
	}
}

// SendBatch implements dispatch.Transport
func (t *RetryingTransport) SendBatch(ctx context.Context, jobs []dispatch.Job) ([]dispatch.Outcome, error) {
	outcomes := make([]dispatch.Outcome, len(jobs))

	var g errgroup.Group
	g.SetLimit(max(t.Concurrency, 1))

	for i, job := range jobs {
		g.Go(func() error {
			outcomes[i] = t.send(ctx, job)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to send batch: %w", err)
	}
	return outcomes, nil
}

func (t *RetryingTransport) send(ctx context.Context, job dispatch.Job) dispatch.Outcome {
	msg, err := t.renderer.Render(job)
	if err != nil {
		return dispatch.Outcome{Kind: dispatch.PermanentFailure, Err: fmt.Errorf("failed to render message: %w", err)}
	}

	attempts := 0
	var lastErr error

	err = retry.Do(
		func() error {
			attempts++
			lastErr = t.sender.SendEmail(ctx, job.RecipientAddress, msg.Subject, msg.Body)
			return lastErr
		},
		retry.Attempts(uint(max(t.MaxRetries, 1))),
		retry.Delay(t.BaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(IsRateLimited),
		retry.OnRetry(func(n uint, err error) {
			t.logger.Debug("Rate limited, retrying",
				zap.String("recipient", job.RecipientAddress),
				zap.Uint("attempt", n+1),
				zap.Error(err))
		}),
	)
	if err == nil {
		return dispatch.Outcome{Kind: dispatch.Delivered, Attempts: attempts}
	}

	if lastErr == nil {
		lastErr = err
	}
	kind := dispatch.PermanentFailure
	if IsRateLimited(lastErr) {
		kind = dispatch.RateLimited
	}
	return dispatch.Outcome{Kind: kind, Err: lastErr, Attempts: attempts}
}
