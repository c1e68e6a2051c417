// Package engine provides the war-zone simulation core and the paced tick loop.
package engine

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Engine drives a simulation forward in real time.
type Engine struct {
	Speed    float64       // Multiplier: 1.0 = one tick per Interval, 0 = paused. Use SetSpeed once running.
	Interval time.Duration // Base tick interval (default 200ms)

	// OnTick runs one tick. Returning false stops the loop.
	OnTick func() bool

	speedMu sync.Mutex
	running atomic.Bool
	ticks   atomic.Uint64
}

// NewEngine creates an engine with default pacing.
func NewEngine(onTick func() bool) *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: 200 * time.Millisecond,
		OnTick:   onTick,
	}
}

// Run starts the loop. Blocks until Stop is called or OnTick returns false.
func (e *Engine) Run() {
	e.running.Store(true)
	slog.Info("simulation engine started", "interval", e.Interval, "speed", e.CurrentSpeed())

	for e.running.Load() {
		speed := e.CurrentSpeed()
		if speed <= 0 {
			// Paused; sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.ticks.Add(1)
		if e.OnTick == nil || !e.OnTick() {
			e.running.Store(false)
			break
		}

		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "ticks", e.ticks.Load())
}

// SetSpeed changes the pace while the loop runs.
func (e *Engine) SetSpeed(speed float64) {
	e.speedMu.Lock()
	e.Speed = speed
	e.speedMu.Unlock()
}

// CurrentSpeed returns the pace multiplier.
func (e *Engine) CurrentSpeed() float64 {
	e.speedMu.Lock()
	defer e.speedMu.Unlock()
	return e.Speed
}

// Stop halts the loop after the current tick.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// Running reports whether the loop is active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Ticks returns how many times OnTick has been called.
func (e *Engine) Ticks() uint64 {
	return e.ticks.Load()
}

// RunFor advances sim until it terminates or maxTicks ticks have elapsed
// (0 means no limit), calling after (if non-nil) following every tick.
// It is the headless counterpart of Engine.Run.
func RunFor(sim *Simulation, maxTicks uint64, after func(*Simulation)) {
	for sim.Running() && (maxTicks == 0 || sim.Tick() < maxTicks) {
		sim.Advance()
		if after != nil {
			after(sim)
		}
	}
}
