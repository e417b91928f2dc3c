// Package sourcechain implements C3: the fixed stack of stream
// transformations wrapped around every decoded track before it reaches the
// SinkQueue, per SPEC_FULL.md §4.3.
//
// Grounded on original_source/playback/src/rusty_backend/sink.rs's
// Sink.append, which wraps each source as:
//
//	source.speed(1.0).pausable(false).amplify(1.0).skippable().stoppable().
//	    periodic_access(500ms, progress).periodic_access(5ms, apply-controls).
//	    convert_samples()
//
// and on source/mod.rs's per-wrapper Source trait methods. beep already
// normalizes every decoded stream to stereo float64 frames, so
// convert_samples has no work to do here. Speed is a nested beep.Streamer
// (speedStreamer); stop, skip, pause, volume and the position clock are
// applied inside Chain.Stream.
package sourcechain

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
)

// Controls is the shared, mutex-guarded control surface every layer of the
// chain reads from or writes to, mirroring sink.rs's Controls struct (which
// used one atomic/mutex field per knob; a single mutex is used here since
// Go doesn't need lock-free atomics for this access pattern).
type Controls struct {
	mu       sync.Mutex
	volume   float64
	speed    float64
	paused   bool
	stopped  bool
	toClear  int
	seekTo   *time.Duration
	position time.Duration
}

// NewControls returns Controls at unity volume and speed, unpaused.
func NewControls() *Controls {
	return &Controls{volume: 1, speed: 1}
}

func (c *Controls) SetVolume(v float64) { c.mu.Lock(); c.volume = v; c.mu.Unlock() }
func (c *Controls) Volume() float64     { c.mu.Lock(); defer c.mu.Unlock(); return c.volume }
func (c *Controls) SetSpeed(v float64)  { c.mu.Lock(); c.speed = v; c.mu.Unlock() }
func (c *Controls) Speed() float64      { c.mu.Lock(); defer c.mu.Unlock(); return c.speed }
func (c *Controls) SetPaused(p bool)    { c.mu.Lock(); c.paused = p; c.mu.Unlock() }
func (c *Controls) Paused() bool        { c.mu.Lock(); defer c.mu.Unlock(); return c.paused }
func (c *Controls) Stop()               { c.mu.Lock(); c.stopped = true; c.mu.Unlock() }
func (c *Controls) Stopped() bool       { c.mu.Lock(); defer c.mu.Unlock(); return c.stopped }

// SkipOne marks one queued packet's worth of audio to be dropped the next
// time the chain advances, mirroring Sink.skip_one's to_clear counter.
func (c *Controls) SkipOne() { c.mu.Lock(); c.toClear++; c.mu.Unlock() }

func (c *Controls) takeToClear() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.toClear > 0 {
		c.toClear--
		return true
	}
	return false
}

// SeekTo schedules a seek to be applied by the chain's owner (the Decoder
// doesn't live inside this package; PlayerCore observes PendingSeek and
// performs the actual decoder.Seek, then clears it via ClearSeek).
func (c *Controls) SeekTo(d time.Duration) { c.mu.Lock(); c.seekTo = &d; c.mu.Unlock() }

func (c *Controls) PendingSeek() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seekTo == nil {
		return 0, false
	}
	return *c.seekTo, true
}

func (c *Controls) ClearSeek() { c.mu.Lock(); c.seekTo = nil; c.mu.Unlock() }

func (c *Controls) setPosition(d time.Duration) { c.mu.Lock(); c.position = d; c.mu.Unlock() }

// Position returns the playback position Chain last recorded; Chain updates
// it on every Stream call that emits decoded or skipped frames.
func (c *Controls) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// Chain is the fully wrapped beep.Streamer for one queued track.
type Chain struct {
	inner       beep.Streamer
	controls    *Controls
	sampleRate  beep.SampleRate
	framesTotal int64

	sinceProgress time.Duration
	onProgress    func(time.Duration)
	stopped       bool
}

const (
	progressTickPeriod = 500 * time.Millisecond
	applyTickPeriod    = 5 * time.Millisecond
)

// Wrap builds the fixed C3 stack around src. onProgress is invoked at
// roughly progressTickPeriod intervals with the elapsed playback position,
// matching sink.rs's PlayerInternalCmd::Progress tick.
func Wrap(src beep.Streamer, sampleRate beep.SampleRate, controls *Controls, onProgress func(time.Duration)) *Chain {
	return &Chain{
		inner:      newSpeedStreamer(src, controls),
		controls:   controls,
		sampleRate: sampleRate,
		onProgress: onProgress,
	}
}

// Stream implements beep.Streamer. It applies, per sample batch: stop
// (silences and marks the chain done), skip-one (discards this batch),
// pause (emits silence without advancing the underlying decoder), and
// amplify (volume). Speed is applied by the innermost speedStreamer built in
// Wrap, since changing playback rate changes how many underlying frames a
// batch consumes. The two periodic_access ticks from the original are
// collapsed into per-call bookkeeping since Go's call granularity (one
// Stream call per output buffer) already occurs more often than either the
// 500ms or 5ms tick at typical buffer sizes.
func (c *Chain) Stream(samples [][2]float64) (n int, ok bool) {
	if c.stopped || c.controls.Stopped() {
		c.stopped = true
		return 0, false
	}

	if c.controls.takeToClear() {
		for i := range samples {
			samples[i] = [2]float64{}
		}
		c.advanceClocks(len(samples))
		return len(samples), true
	}

	if c.controls.Paused() {
		for i := range samples {
			samples[i] = [2]float64{}
		}
		return len(samples), true
	}

	n, ok = c.inner.Stream(samples)
	if n == 0 {
		return n, ok
	}

	volume := c.controls.Volume()
	if volume != 1 {
		for i := 0; i < n; i++ {
			samples[i][0] *= volume
			samples[i][1] *= volume
		}
	}

	c.advanceClocks(n)
	return n, ok
}

func (c *Chain) advanceClocks(n int) {
	c.framesTotal += int64(n)
	delta := c.sampleRate.D(n)
	total := c.sampleRate.D(int(c.framesTotal))
	c.sinceProgress += delta
	c.controls.setPosition(total)
	if c.onProgress != nil && c.sinceProgress >= progressTickPeriod {
		c.sinceProgress = 0
		c.onProgress(total)
	}
}

// Err forwards the underlying streamer's error, if it reports one.
func (c *Chain) Err() error {
	if e, ok := c.inner.(interface{ Err() error }); ok {
		return e.Err()
	}
	return nil
}
