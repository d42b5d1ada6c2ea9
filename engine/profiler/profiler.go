// Package profiler records frame-completion statistics and periodically
// reports a rolling summary through the shared logger.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/mastermindon/cadence/common"
)

// Profiler accumulates per-frame statistics on the pacing thread and hands
// report formatting to a worker pool so the pacing thread never blocks on
// logging or memory-stat collection.
type Profiler struct {
	frameCount     int
	latencySum     time.Duration
	latencyMax     time.Duration
	cpuSum         time.Duration
	lastReport     time.Time
	updateInterval time.Duration

	clock func() time.Time

	pool   worker.DynamicWorkerPool
	taskID int

	// prevGCCount and prevTotalAlloc carry memory counters between report
	// windows. They are touched only inside pooled report tasks; the single
	// ordered worker serializes access.
	prevGCCount    uint32
	prevTotalAlloc uint64
}

// report is the immutable snapshot handed to the worker pool.
type report struct {
	frames     int
	elapsed    time.Duration
	latencyAvg time.Duration
	latencyMax time.Duration
	cpuAvg     time.Duration
}

// ProfilerOption is a functional option for configuring a Profiler.
// Use the With* functions to create options.
type ProfilerOption func(*Profiler)

// WithUpdateInterval sets how often the rolling summary is reported.
// Defaults to 1 second.
func WithUpdateInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock sets the time source. Defaults to time.Now.
func WithClock(clock func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.clock = clock
	}
}

// NewProfiler creates a Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		clock:          time.Now,
		// A single worker is enough: reports are rare and ordered.
		pool: worker.NewDynamicWorkerPool(1, 16, 1*time.Second),
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastReport = p.clock()
	return p
}

// Record accumulates one frame's completion statistics. When the update
// interval has elapsed, a snapshot is queued for off-thread reporting and
// the rolling window resets.
//
// Returns:
//   - bool: true if a report was queued this call, false otherwise
func (p *Profiler) Record(stats common.FrameStats) bool {
	p.frameCount++
	p.latencySum += stats.Latency
	p.cpuSum += stats.CPUTime
	if stats.Latency > p.latencyMax {
		p.latencyMax = stats.Latency
	}

	now := p.clock()
	elapsed := now.Sub(p.lastReport)
	if elapsed < p.updateInterval {
		return false
	}

	r := report{
		frames:     p.frameCount,
		elapsed:    elapsed,
		latencyMax: p.latencyMax,
	}
	if p.frameCount > 0 {
		r.latencyAvg = p.latencySum / time.Duration(p.frameCount)
		r.cpuAvg = p.cpuSum / time.Duration(p.frameCount)
	}

	p.taskID++
	p.pool.SubmitTask(worker.Task{
		ID: p.taskID,
		Do: func() (any, error) {
			p.emit(r)
			return nil, nil
		},
	})

	p.frameCount = 0
	p.latencySum = 0
	p.latencyMax = 0
	p.cpuSum = 0
	p.lastReport = now

	return true
}

// emit formats and logs one report window. Runs on the worker pool, which is
// also where the memory counters are read and carried forward; Record never
// touches runtime.ReadMemStats.
func (p *Profiler) emit(r report) {
	fps := 0.0
	if r.elapsed > 0 {
		fps = float64(r.frames) / r.elapsed.Seconds()
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	allocMB := float64(ms.Alloc) / 1024 / 1024
	sysMB := float64(ms.Sys) / 1024 / 1024
	allocRateMB := 0.0
	if r.elapsed > 0 {
		allocRateMB = float64(ms.TotalAlloc-p.prevTotalAlloc) / 1024 / 1024 / r.elapsed.Seconds()
	}
	gcDelta := ms.NumGC - p.prevGCCount
	p.prevGCCount = ms.NumGC
	p.prevTotalAlloc = ms.TotalAlloc

	common.Logger().Info("frame report",
		"fps", fps,
		"frames", r.frames,
		"latency_avg", r.latencyAvg,
		"latency_max", r.latencyMax,
		"cpu_avg", r.cpuAvg,
		"heap_mb", allocMB,
		"alloc_rate_mb_s", allocRateMB,
		"gc_delta", gcDelta,
		"sys_mb", sysMB,
	)
}
