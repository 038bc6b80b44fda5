package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"paper-analytics/internal/types"
	"paper-analytics/log"

	"go.uber.org/zap"
)

var errEmptyStatus = errors.New("empty run status")

// StatusFetcher reads one status snapshot of a run.
type StatusFetcher interface {
	RunStatus(ctx context.Context, runID string) (*types.RunStatus, error)
}

// Intervals is the tick period per phase.
type Intervals struct {
	Discovery  time.Duration
	Extraction time.Duration
}

// For returns the tick period for phase; extraction has its own, anything
// else polls at the discovery rate.
func (i Intervals) For(phase types.Phase) time.Duration {
	if phase == types.PhaseExtraction {
		return i.Extraction
	}
	return i.Discovery
}

// Handlers receive poll results on the poller's goroutine, one at a time.
// OnTick must not call Stop or Start; OnTerminal may, since the run has
// already been released when it fires.
type Handlers struct {
	OnTick     func(types.RunStatus)
	OnTerminal func(types.RunStatus)
	OnError    func(err error, consecutive int)
}

// Poller owns at most one repeating status poll.
type Poller struct {
	fetcher   StatusFetcher
	intervals Intervals

	lifecycle sync.Mutex // serializes Start and Stop

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	runID  string
}

// NewPoller returns an idle Poller. Nothing is fetched until Start.
func NewPoller(fetcher StatusFetcher, intervals Intervals) *Poller {
	return &Poller{
		fetcher:   fetcher,
		intervals: intervals,
	}
}

// Start stops any active run and begins polling handle.
func (p *Poller) Start(handle types.RunHandle, h Handlers) {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	p.stopLocked()

	interval := p.intervals.For(handle.Phase)
	if interval <= 0 {
		interval = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.runID = handle.RunID
	p.mu.Unlock()

	log.GetLogger().Info("[Poller] polling started",
		zap.String("run_id", handle.RunID),
		zap.String("phase", handle.Phase.String()),
		zap.Duration("interval", interval))

	go p.loop(ctx, done, handle, interval, h)
}

// Stop cancels the active run, if any, and returns once its goroutine has
// exited. A response already in flight is discarded. Stop is idempotent.
func (p *Poller) Stop() {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	p.stopLocked()
}

func (p *Poller) stopLocked() {
	p.mu.Lock()
	cancel, done, runID := p.cancel, p.done, p.runID
	p.cancel, p.done, p.runID = nil, nil, ""
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.GetLogger().Info("[Poller] polling stopped", zap.String("run_id", runID))
}

// Active reports the run id currently being polled.
func (p *Poller) Active() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runID, p.cancel != nil
}

// release clears the slot if it still belongs to done. It reports whether
// the caller owned the slot.
func (p *Poller) release(done chan struct{}) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != done {
		return false
	}
	p.cancel()
	p.cancel, p.done, p.runID = nil, nil, ""
	return true
}

func (p *Poller) loop(ctx context.Context, done chan struct{}, handle types.RunHandle, interval time.Duration, h Handlers) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status, err := p.fetcher.RunStatus(ctx, handle.RunID)
		if ctx.Err() != nil {
			return
		}
		if err == nil && status == nil {
			err = errEmptyStatus
		}
		if err != nil {
			failures++
			log.GetLogger().Warn("[Poller] status poll failed, will retry",
				zap.String("run_id", handle.RunID),
				zap.Int("consecutive_failures", failures),
				zap.Error(err))
			if h.OnError != nil {
				h.OnError(err, failures)
			}
			continue
		}
		failures = 0

		if status.State.IsTerminal() {
			if !p.release(done) {
				return
			}
			log.GetLogger().Info("[Poller] run reached terminal state",
				zap.String("run_id", handle.RunID),
				zap.String("state", string(status.State)))
			if h.OnTerminal != nil {
				h.OnTerminal(*status)
			}
			return
		}

		if h.OnTick != nil {
			h.OnTick(*status)
		}
	}
}
