package seatwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jpalmerr/seatwatch/dashboard"
	"github.com/jpalmerr/seatwatch/internal/poller"
	"github.com/jpalmerr/seatwatch/internal/server"
	"github.com/jpalmerr/seatwatch/internal/store"
)

const (
	defaultInterval = 5 * time.Minute
	defaultLabel    = "Sold seats"
)

// Watcher is the main orchestrator: it owns the polling schedule for a
// single [Target], the previous-metric state carried between checks,
// and the console report stream.
//
// A Watcher is created with [New] and functional options. The typical
// lifecycle is:
//
//	w, err := seatwatch.New(seatwatch.WithTarget(target))
//	if err != nil {
//	    slog.Error("failed to create watcher", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	if err := w.Start(ctx); err != nil { ... }
//	<-ctx.Done()
//	w.Stop()
//
// Start is non-blocking: it performs setup, kicks off the immediate
// first check, and returns while one-shot timers drive the recurring
// schedule. Checks never overlap because the next timer is armed only
// after the previous check fully resolves.
//
// Start and Stop are idempotent and safe for concurrent use.
type Watcher struct {
	target          Target
	interval        time.Duration
	label           string
	statusPort      int
	logger          *slog.Logger
	reporter        *Reporter
	sampleCallbacks []func(Sample)

	mu        sync.Mutex
	running   bool
	loop      *poller.Loop
	cancel    context.CancelFunc
	consumers sync.WaitGroup
}

// New creates a new [Watcher] with the given options.
//
// A target with an attached query must be configured via [WithTarget].
// Other options have sensible defaults:
//   - Interval: 5 minutes
//   - Label: "Sold seats"
//   - Output: stdout / stderr
//   - Status server: disabled
//
// Returns an error if no target is configured or any option is
// invalid.
//
// Example:
//
//	w, err := seatwatch.New(
//	    seatwatch.WithTarget(target),
//	    seatwatch.WithInterval(time.Minute),
//	    seatwatch.WithStatusPort(8080),
//	)
func New(opts ...Option) (*Watcher, error) {
	cfg := &watcherConfig{
		interval: defaultInterval,
		label:    defaultLabel,
		out:      os.Stdout,
		errOut:   os.Stderr,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.target == nil {
		return nil, errors.New("a target is required")
	}
	if cfg.target.extractor == nil {
		return nil, errors.New("target has no query: use WithQuery or WithExtractor when building it")
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		target:          *cfg.target,
		interval:        cfg.interval,
		label:           cfg.label,
		statusPort:      cfg.statusPort,
		logger:          logger,
		reporter:        NewReporter(cfg.out, cfg.errOut, cfg.label),
		sampleCallbacks: cfg.sampleCallbacks,
	}, nil
}

// Start begins monitoring the target.
//
// If the watcher is already running, Start logs an informational
// notice and returns nil without scheduling anything further. This
// makes repeated Start calls a safe no-op: no extra immediate check,
// no second timer chain.
//
// Otherwise Start logs the startup banner (target URL, interval,
// query expression), launches the poll loop with an immediate first
// check, starts the status server if one is configured, and returns.
// The recurring schedule is driven by one-shot timers, not by a
// blocking wait inside Start.
//
// The context bounds the watcher's lifetime: cancelling it has the
// same effect as calling [Watcher.Stop], except that the shutdown
// notice is only printed by Stop. If ctx is nil, context.Background()
// is used.
//
// Returns an error only for startup failures (status server unable to
// bind its port). In-cycle errors never surface here; they are logged
// per cycle and the loop keeps running.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		w.reporter.Notice("already running")
		w.logger.Info("start ignored: watcher already running")
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)

	loop := poller.NewLoop(w.toLoopTarget(), w.interval, w.logger)
	w.running = true
	w.cancel = cancel
	w.loop = loop
	w.mu.Unlock()

	w.reporter.Notice(fmt.Sprintf("watching %s every %s (query: %s)", w.target.URL(), w.interval, w.target.Query()))
	w.logger.Info("watch starting",
		"target", w.target.Name(),
		"url", w.target.URL(),
		"interval", w.interval.String(),
		"query", w.target.Query(),
	)

	sampleStore := store.NewMemoryStore(store.DefaultHistoryCap)

	// bind the status server before the first check so a port clash is
	// a fatal startup error, not a mid-flight one
	if w.statusPort > 0 {
		srv := server.NewServer(sampleStore, w.statusPort, dashboard.Assets, w.label, w.logger)
		if err := srv.Start(runCtx); err != nil {
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			cancel()
			return fmt.Errorf("failed to start status server: %w", err)
		}
		w.logger.Info("status server listening", "url", fmt.Sprintf("http://localhost:%d", w.statusPort))
	}

	loop.Start(runCtx)

	// single consumer goroutine: report, store, then callbacks
	w.consumers.Add(1)
	go func() {
		defer w.consumers.Done()
		for ls := range loop.Samples() {
			s := loopSampleToPublic(ls)
			w.reporter.Report(s)
			sampleStore.Update(publicSampleToStore(s, w.label))

			for _, cb := range w.sampleCallbacks {
				invokeCallbackSafe(cb, s, w.logger)
			}
		}
	}()

	return nil
}

// Stop halts monitoring.
//
// Stop cancels the pending timer, waits for any in-flight check to
// resolve and for its result to be processed, shuts down the status
// server, and prints a single shutdown notice. If the watcher is not
// running, Stop is a no-op; calling it twice produces only one
// notice.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	cancel := w.cancel
	loop := w.loop
	w.mu.Unlock()

	cancel()
	loop.Stop()
	w.consumers.Wait()

	w.reporter.Notice("monitoring stopped")
	w.logger.Info("watch stopped")
}

// Running reports whether the watcher is currently between Start and
// Stop.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Target returns the watched [Target].
func (w *Watcher) Target() Target {
	return w.target
}

// Interval returns the configured wait between check cycles.
func (w *Watcher) Interval() time.Duration {
	return w.interval
}

// Label returns the metric label used in report lines.
func (w *Watcher) Label() string {
	return w.label
}

// toLoopTarget converts the public target to the poller's
// representation.
func (w *Watcher) toLoopTarget() poller.TargetInfo {
	extractor := w.target.extractor
	return poller.TargetInfo{
		Name:    w.target.name,
		URL:     w.target.url,
		Headers: copyMap(w.target.headers),
		Timeout: w.target.timeout,
		Extractor: func(body []byte) (int64, error) {
			return extractor(body)
		},
	}
}

// loopSampleToPublic converts an internal poller sample to the public
// API type.
func loopSampleToPublic(ls poller.Sample) Sample {
	return Sample{
		TargetName: ls.TargetName,
		URL:        ls.URL,
		Metric:     ls.Metric,
		Previous:   copyInt64(ls.Previous),
		Delta:      ls.Delta,
		Latency:    ls.Latency,
		CheckedAt:  ls.CheckedAt,
		Err:        ls.Err,
		StatusCode: ls.StatusCode,
	}
}

// publicSampleToStore converts a public sample to the storage
// representation.
func publicSampleToStore(s Sample, label string) store.Sample {
	var errStr *string
	if s.Err != nil {
		msg := s.Err.Error()
		errStr = &msg
	}

	var delta *int64
	if s.Previous != nil {
		d := s.Delta
		delta = &d
	}

	return store.Sample{
		Label:     label,
		Target:    s.TargetName,
		URL:       s.URL,
		Metric:    s.Metric,
		Delta:     delta,
		LatencyMs: s.Latency.Milliseconds(),
		CheckedAt: s.CheckedAt,
		Error:     errStr,
	}
}

// copyInt64 returns a copy of the pointed-to value, or nil.
func copyInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// invokeCallbackSafe calls a sample callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Sample), s Sample, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("sample callback panicked",
				"panic", r,
				"target", s.TargetName,
			)
		}
	}()
	cb(s)
}
