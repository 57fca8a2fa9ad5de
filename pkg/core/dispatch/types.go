package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

const (
	DefaultBatchSize           = 5
	DefaultDelayBetweenBatches = 2 * time.Second
	// NoDelay disables the pause between batches
	NoDelay time.Duration = -1
)

// ErrMissingOutcome marks a job the transport returned no outcome for
var ErrMissingOutcome = errors.New("transport returned no outcome for job")

// AssignmentSummary is one line of a notification: what, where and when
type AssignmentSummary struct {
	AssignmentID string
	Task         string
	Location     string
	Schedule     string
	Description  string
}

// Job is a single notification for one volunteer covering all their assignments
type Job struct {
	RecipientAddress string
	RecipientName    string
	PortalReference  string
	Payload          []AssignmentSummary
}

// OutcomeKind classifies the result of sending one job
type OutcomeKind int

const (
	Delivered OutcomeKind = iota
	// RateLimited means the job was still rate limited after every retry
	RateLimited
	PermanentFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case Delivered:
		return "delivered"
	case RateLimited:
		return "rate limited"
	case PermanentFailure:
		return "permanent failure"
	}
	return fmt.Sprintf("outcome(%d)", int(k))
}

// Outcome is the transport's report for one job
type Outcome struct {
	Kind     OutcomeKind
	Err      error
	Attempts int
}

// OK reports whether the job was delivered
func (o Outcome) OK() bool {
	return o.Kind == Delivered && o.Err == nil
}

// Transport sends a batch of jobs. Each job is attempted independently and the
// returned outcomes are in job order. A non-nil error means the batch could not be
// handed to the transport at all.
type Transport interface {
	SendBatch(ctx context.Context, jobs []Job) ([]Outcome, error)
}

// Options configures a dispatcher. Zero values fall back to the defaults. A negative
// DelayBetweenBatches (NoDelay) sends batches back to back.
type Options struct {
	BatchSize           int
	DelayBetweenBatches time.Duration
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.DelayBetweenBatches == 0 {
		o.DelayBetweenBatches = DefaultDelayBetweenBatches
	}
	return o
}

// Progress is an immutable snapshot emitted after each batch. Batch is 1-based.
type Progress struct {
	Sent         int
	Failed       int
	Batch        int
	TotalBatches int
	BatchSent    int
	BatchFailed  int
}

// Failure records a job that was not delivered
type Failure struct {
	Job   Job
	Batch int
	Kind  OutcomeKind
	Err   error
}

// Result is the final report of a run
type Result struct {
	Total        int
	Sent         int
	Failed       int
	TotalBatches int
	BatchesRun   int
	Cancelled    bool
	Failures     []Failure
}

// Unsent is the number of jobs never attempted because the run was cancelled
func (r Result) Unsent() int {
	return r.Total - r.Sent - r.Failed
}

// Summary renders the result for an operator
func (r Result) Summary() string {
	var msg string
	switch {
	case r.Total == 0:
		msg = "no notifications to send"
	case r.Failed == 0:
		msg = fmt.Sprintf("%d of %d notifications sent", r.Sent, r.Total)
	case r.Failed == r.Total:
		msg = fmt.Sprintf("all %d notifications failed", r.Total)
	default:
		msg = fmt.Sprintf("%d of %d notifications failed", r.Failed, r.Total)
	}

	if r.Cancelled {
		msg += fmt.Sprintf(" (cancelled after %d of %d batches, %d not attempted)", r.BatchesRun, r.TotalBatches, r.Unsent())
	}
	return msg
}

// Err combines the error of every failed job, or returns nil if none failed
func (r Result) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, fmt.Errorf("%s <%s>: %w", f.Job.RecipientName, f.Job.RecipientAddress, f.Err))
	}
	return err
}

// State is the lifecycle of a run
type State int32

const (
	Idle State = iota
	Running
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}
