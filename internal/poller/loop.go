package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sample holds the outcome of one check cycle against the target.
//
// A successful cycle carries the extracted metric and, when a prior
// successful cycle exists, the previous value and the delta between
// them. A failed cycle carries only the error and timing information;
// the previous value survives untouched for the next success to diff
// against.
type Sample struct {
	// TargetName is the display name of the watched target.
	TargetName string

	// URL is the target URL that was polled.
	URL string

	// Metric is the extracted scalar value. Zero if the cycle failed.
	Metric int64

	// Previous is the metric of the last successful cycle, nil on the
	// first success.
	Previous *int64

	// Delta is Metric minus *Previous; meaningful only when Previous
	// is non-nil.
	Delta int64

	// Latency is the time taken by the HTTP request.
	Latency time.Duration

	// CheckedAt is the timestamp captured at the start of the cycle.
	CheckedAt time.Time

	// Err is the transport, parse, or evaluation error that aborted
	// the cycle. nil means success.
	Err error

	// StatusCode is the HTTP status code, zero if none was received.
	StatusCode int
}

// MetricExtractor derives the scalar metric from a response body.
//
// This is the poller-internal version of the extractor type, decoupled
// from the seatwatch package to avoid circular dependencies.
type MetricExtractor func(body []byte) (int64, error)

// TargetInfo contains the configuration needed to poll the target.
//
// This is the poller-internal representation of a target, decoupled
// from the main seatwatch.Target type.
type TargetInfo struct {
	// Name is the display name of the target.
	Name string

	// URL is the fully qualified URL to poll.
	URL string

	// Headers contains custom HTTP headers to send with requests.
	Headers map[string]string

	// Timeout is the per-request timeout duration.
	Timeout time.Duration

	// Extractor derives the metric from the response body.
	Extractor MetricExtractor
}

// Loop performs the recurring fetch-extract-diff cycle for a single
// target.
//
// The loop runs in one goroutine: it checks immediately on start,
// then after each completed cycle arms a one-shot timer for the
// configured interval and waits for it before checking again. This
// chain-of-timers design guarantees that at most one request is in
// flight and at most one timer is pending at any time; a slow check
// delays the next one rather than overlapping with it.
//
// Errors inside a cycle (transport, timeout, JSON parse, metric
// evaluation) are captured in the emitted [Sample] and never stop the
// loop. Only [Loop.Stop] or context cancellation ends it.
//
// The previous-metric state is confined to the loop goroutine, so it
// needs no locking; it is updated only when a cycle fully succeeds.
// Lifecycle methods (Start, Stop) are safe for concurrent use.
type Loop struct {
	target   TargetInfo
	interval time.Duration
	client   *Client
	samples  chan Sample
	logger   *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once

	// previous is the metric of the last successful cycle. Touched
	// only by the loop goroutine.
	previous *int64
}

// NewLoop creates a new check [Loop].
//
// Parameters:
//   - target: the endpoint to poll and the extractor to apply
//   - interval: wait between the end of one cycle and the next
//   - logger: logger for loop events (panic recovery, etc.)
//
// The loop must be started with [Loop.Start] and stopped with
// [Loop.Stop]. Results are available via [Loop.Samples].
func NewLoop(target TargetInfo, interval time.Duration, logger *slog.Logger) *Loop {
	return &Loop{
		target:   target,
		interval: interval,
		client:   NewClient(),
		samples:  make(chan Sample, 1),
		logger:   logger,
	}
}

// Samples returns a receive-only channel emitting one [Sample] per
// completed check cycle.
//
// The channel is closed when the loop stops. Consumers should read
// until it is closed to receive every result.
func (l *Loop) Samples() <-chan Sample {
	return l.samples
}

// Start launches the check loop in a background goroutine.
//
// Start is non-blocking: the first check begins immediately in the
// loop goroutine and the timer chain follows. Start is idempotent;
// calls after the first are no-ops, so a running loop is never
// double-scheduled. If Stop was called before Start, Start is a
// no-op. A nil ctx is replaced with context.Background().
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	if l.started || l.stopped {
		l.mu.Unlock()
		return
	}
	l.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	l.ctx, l.cancel = context.WithCancel(ctx)
	runCtx := l.ctx // capture under lock to avoid race
	l.wg.Add(1)
	l.mu.Unlock()

	go l.run(runCtx)
}

// run is the loop goroutine: immediate check, then the timer chain.
func (l *Loop) run(ctx context.Context) {
	defer l.wg.Done()
	defer l.closeOnce.Do(func() { close(l.samples) })

	l.emit(ctx, l.checkOnce(ctx))

	for {
		if ctx.Err() != nil {
			return
		}

		// one-shot timer armed only after the previous cycle resolved
		timer := time.NewTimer(l.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			l.emit(ctx, l.checkOnce(ctx))
		}
	}
}

// Stop halts the loop and waits for it to wind down.
//
// Stop cancels the loop context, which stops the pending timer and
// aborts any in-flight request, then blocks until the goroutine exits
// and the samples channel is closed. Stop is idempotent and safe to
// call before Start.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.stopped {
		l.stopped = true
		if l.cancel != nil {
			l.cancel()
		}
	}
	l.mu.Unlock()

	l.wg.Wait()

	// release idle connections after the goroutine is done with them
	l.client.Close()

	// ensure channel is closed even if Start() was never called
	l.closeOnce.Do(func() { close(l.samples) })
}

// checkOnce performs a single fetch-extract-diff cycle and returns
// its sample. Any error is captured in the sample; checkOnce itself
// never fails.
func (l *Loop) checkOnce(ctx context.Context) Sample {
	checkedAt := time.Now()

	resp := l.client.Fetch(ctx, l.target.URL, l.target.Headers, l.target.Timeout)

	sample := Sample{
		TargetName: l.target.Name,
		URL:        l.target.URL,
		Latency:    resp.Latency,
		CheckedAt:  checkedAt,
		StatusCode: resp.StatusCode,
	}

	if resp.Error != nil {
		sample.Err = resp.Error
		return sample
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		sample.Err = fmt.Errorf("unexpected status %d", resp.StatusCode)
		return sample
	}

	metric, err := l.safeExtract(resp.Body)
	if err != nil {
		sample.Err = err
		return sample
	}

	sample.Metric = metric
	if l.previous != nil {
		prev := *l.previous
		sample.Previous = &prev
		sample.Delta = metric - prev
	}

	// success path only: failed cycles leave the previous value intact
	l.previous = &metric

	return sample
}

// emit delivers a sample unless the loop is shutting down.
func (l *Loop) emit(ctx context.Context, s Sample) {
	select {
	case l.samples <- s:
	case <-ctx.Done():
	}
}

// safeExtract calls the extractor with panic recovery.
// If the extractor panics, the full stack trace is logged with a
// correlation ID and the cycle fails with an error carrying that ID.
func (l *Loop) safeExtract(body []byte) (metric int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			stack := debug.Stack()

			l.logger.Error("extractor panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(stack),
			)

			metric = 0
			err = fmt.Errorf("extractor panic (correlation_id: %s)", correlationID)
		}
	}()
	return l.target.Extractor(body)
}
