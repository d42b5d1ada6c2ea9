// Package pacing synchronizes repaint cycles to the display refresh timer.
// It owns the vsync-driven timer, the per-tick state machine, and the
// frame-rate target computation.
package pacing

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mastermindon/cadence/common"
)

// Timer drives the scheduler at the display refresh cadence. The scheduler
// pauses the timer for the duration of each repaint cycle and resumes it on
// exit; ticks arriving while paused are dropped, not queued.
type Timer interface {
	// Start begins firing the callback at the configured rate.
	Start(fire func())

	// Pause suppresses tick delivery. Ticks while paused are dropped.
	Pause()

	// Resume re-enables tick delivery after Pause.
	Resume()

	// SetRate reconfigures the firing rate. Safe to call while running.
	SetRate(r common.RateRange)

	// Stop detaches the timer permanently. The timer must not fire after
	// Stop returns and cannot be restarted.
	Stop()
}

// tickerTimer is the default Timer, built on a time.Ticker goroutine. The
// fire callback runs on the ticker goroutine, which acts as the pacing
// thread for the whole repaint+present sequence.
type tickerTimer struct {
	interval time.Duration

	paused atomic.Bool

	rateCh   chan time.Duration
	quitCh   chan struct{}
	doneCh   chan struct{}
	quitOnce sync.Once

	started bool
}

// NewTickerTimer creates a Timer firing at the given rate.
//
// Parameters:
//   - fps: initial frames per second (defaults to 60 if <= 0)
func NewTickerTimer(fps int) Timer {
	if fps <= 0 {
		fps = 60
	}
	return &tickerTimer{
		interval: time.Second / time.Duration(fps),
		rateCh:   make(chan time.Duration, 1),
		quitCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (t *tickerTimer) Start(fire func()) {
	if t.started {
		return
	}
	t.started = true

	go func() {
		defer close(t.doneCh)

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-t.quitCh:
				return
			case <-ticker.C:
				if !t.paused.Load() {
					fire()
				}
			case newInterval := <-t.rateCh:
				ticker.Reset(newInterval)
				t.interval = newInterval
			}
		}
	}()
}

func (t *tickerTimer) Pause() {
	t.paused.Store(true)
}

func (t *tickerTimer) Resume() {
	t.paused.Store(false)
}

func (t *tickerTimer) SetRate(r common.RateRange) {
	fps := r.Preferred
	if fps <= 0 {
		fps = 60
	}
	newInterval := time.Second / time.Duration(fps)

	if !t.started {
		t.interval = newInterval
		return
	}

	// Non-blocking send; if a rate update is already pending, replace it.
	select {
	case t.rateCh <- newInterval:
	default:
		select {
		case <-t.rateCh:
		default:
		}
		t.rateCh <- newInterval
	}
}

// Stop detaches the timer and waits for the ticker goroutine to exit, so an
// in-flight fire has completed by the time Stop returns.
func (t *tickerTimer) Stop() {
	t.quitOnce.Do(func() {
		close(t.quitCh)
	})
	if t.started {
		<-t.doneCh
	}
}
