package dispatch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Dispatcher delivers jobs in fixed-size batches, one batch at a time, pausing
// between batches to stay under the transport's rate limit
type Dispatcher struct {
	transport Transport
	opts      Options
	logger    *zap.Logger
}

// New creates a dispatcher
func New(transport Transport, opts Options, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		transport: transport,
		opts:      opts.withDefaults(),
		logger:    logger,
	}
}

// Run is one in-progress dispatch. Progress snapshots arrive on Progress() in batch
// order and the channel is closed before the result becomes available from Wait.
type Run struct {
	progress chan Progress
	done     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	state    atomic.Int32
	result   Result
}

// Progress returns the stream of per-batch snapshots
func (r *Run) Progress() <-chan Progress {
	return r.progress
}

// Cancel stops the run before its next batch. A batch already being sent finishes.
func (r *Run) Cancel() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Done is closed once the result is available
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run completes and returns its result
func (r *Run) Wait() Result {
	<-r.done
	return r.result
}

// State returns the current lifecycle state
func (r *Run) State() State {
	return State(r.state.Load())
}

func (r *Run) stopped(ctx context.Context) bool {
	select {
	case <-r.stop:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// Start begins delivering jobs in the background. Cancelling ctx has the same
// effect as Run.Cancel.
func (d *Dispatcher) Start(ctx context.Context, jobs []Job) *Run {
	batches := partition(jobs, d.opts.BatchSize)

	r := &Run{
		progress: make(chan Progress, len(batches)),
		done:     make(chan struct{}),
		stop:     make(chan struct{}),
	}
	r.state.Store(int32(Idle))

	go d.run(ctx, r, batches, len(jobs))

	return r
}

func (d *Dispatcher) run(ctx context.Context, r *Run, batches [][]Job, total int) {
	r.state.Store(int32(Running))

	result := Result{Total: total, TotalBatches: len(batches)}

	d.logger.Info("Starting notification dispatch",
		zap.Int("jobs", total),
		zap.Int("batches", len(batches)),
		zap.Int("batch_size", d.opts.BatchSize))

	for i, batch := range batches {
		if r.stopped(ctx) {
			result.Cancelled = true
			break
		}

		batchNum := i + 1
		sent, failures := d.sendBatch(ctx, batch, batchNum)

		result.Sent += sent
		result.Failed += len(failures)
		result.Failures = append(result.Failures, failures...)
		result.BatchesRun = batchNum

		r.progress <- Progress{
			Sent:         result.Sent,
			Failed:       result.Failed,
			Batch:        batchNum,
			TotalBatches: len(batches),
			BatchSent:    sent,
			BatchFailed:  len(failures),
		}

		if batchNum == len(batches) {
			break
		}
		if !d.pause(ctx, r) {
			result.Cancelled = true
			break
		}
	}

	if result.Cancelled {
		d.logger.Warn("Notification dispatch cancelled",
			zap.Int("batches_run", result.BatchesRun),
			zap.Int("total_batches", result.TotalBatches))
	}
	d.logger.Info("Notification dispatch complete",
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Int("total", result.Total))

	close(r.progress)
	r.result = result
	r.state.Store(int32(Complete))
	close(r.done)
}

// sendBatch hands one batch to the transport. The batch is sent against a context
// that ignores cancellation so an in-flight batch always finishes.
func (d *Dispatcher) sendBatch(ctx context.Context, batch []Job, batchNum int) (int, []Failure) {
	outcomes, err := d.transport.SendBatch(context.WithoutCancel(ctx), batch)
	if err != nil {
		d.logger.Error("Transport failed for batch",
			zap.Int("batch", batchNum),
			zap.Int("jobs", len(batch)),
			zap.Error(err))

		failures := make([]Failure, len(batch))
		for i, job := range batch {
			failures[i] = Failure{
				Job:   job,
				Batch: batchNum,
				Kind:  PermanentFailure,
				Err:   fmt.Errorf("failed to send batch %d: %w", batchNum, err),
			}
		}
		return 0, failures
	}

	sent := 0
	var failures []Failure
	for i, job := range batch {
		if i >= len(outcomes) {
			failures = append(failures, Failure{Job: job, Batch: batchNum, Kind: PermanentFailure, Err: ErrMissingOutcome})
			continue
		}

		outcome := outcomes[i]
		if outcome.OK() {
			sent++
			continue
		}

		kind := outcome.Kind
		if kind == Delivered {
			kind = PermanentFailure
		}
		d.logger.Warn("Notification failed",
			zap.Int("batch", batchNum),
			zap.String("recipient", job.RecipientAddress),
			zap.Stringer("kind", kind),
			zap.Int("attempts", outcome.Attempts),
			zap.Error(outcome.Err))
		failures = append(failures, Failure{Job: job, Batch: batchNum, Kind: kind, Err: outcome.Err})
	}

	d.logger.Debug("Batch sent",
		zap.Int("batch", batchNum),
		zap.Int("sent", sent),
		zap.Int("failed", len(failures)))

	return sent, failures
}

// pause waits between batches. It returns false if the run was cancelled meanwhile.
func (d *Dispatcher) pause(ctx context.Context, r *Run) bool {
	if d.opts.DelayBetweenBatches < 0 {
		select {
		case <-r.stop:
			return false
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}

	timer := time.NewTimer(d.opts.DelayBetweenBatches)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-r.stop:
		return false
	case <-ctx.Done():
		return false
	}
}

func partition(jobs []Job, size int) [][]Job {
	batches := make([][]Job, 0, (len(jobs)+size-1)/size)
	for start := 0; start < len(jobs); start += size {
		end := min(start+size, len(jobs))
		batches = append(batches, jobs[start:end])
	}
	return batches
}
