// Package sinkqueue implements C4: a FIFO of beep.Streamers played one
// after another, with per-entry completion signalling and an optional
// keep-alive silence fallback when the queue runs dry, per SPEC_FULL.md §4.4.
//
// Grounded on original_source/src/player/rusty_backend/queue.rs's
// SourcesQueueInput/SourcesQueueOutput: Append mirrors append_with_signal
// (pushing a (streamer, doneChan) pair behind a mutex), and Stream's
// end-of-current-entry handling mirrors go_next — the completion signal for
// the just-finished entry fires before the next one is picked up, and an
// empty queue with keep-alive enabled falls back to a short burst of
// silence rather than reporting end-of-stream, to avoid spinning the output
// callback on a perpetually-empty queue.
package sinkqueue

import (
	"sync"

	"github.com/gopxl/beep"
)

// silenceBurstFrames mirrors queue.rs's 10ms silence take_duration at a
// nominal 44100Hz (441 frames), used whenever the queue is empty and
// keep-alive is enabled.
const silenceBurstFrames = 441

type entry struct {
	streamer beep.Streamer
	done     chan struct{}
}

// Queue is a FIFO of beep.Streamers exposed as a single beep.Streamer.
type Queue struct {
	mu        sync.Mutex
	pending   []entry
	keepAlive bool

	current    beep.Streamer
	currentDone chan struct{}
}

// New builds an empty Queue. keepAlive controls what Stream returns once the
// queue is empty: true emits silence indefinitely, false reports
// end-of-stream (ok=false).
func New(keepAlive bool) *Queue {
	return &Queue{keepAlive: keepAlive}
}

// Append adds streamer to the end of the queue and returns a channel that is
// closed once streamer has finished playing (or been skipped past).
func (q *Queue) Append(streamer beep.Streamer) <-chan struct{} {
	done := make(chan struct{})
	q.mu.Lock()
	q.pending = append(q.pending, entry{streamer: streamer, done: done})
	q.mu.Unlock()
	return done
}

// SetKeepAliveIfEmpty toggles the empty-queue fallback behavior.
func (q *Queue) SetKeepAliveIfEmpty(v bool) {
	q.mu.Lock()
	q.keepAlive = v
	q.mu.Unlock()
}

// Len reports how many entries (including the currently playing one) remain.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.pending)
	if q.current != nil {
		n++
	}
	return n
}

// Stream implements beep.Streamer, draining entries in FIFO order.
func (q *Queue) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) {
		if q.current == nil {
			if !q.advance() {
				if n > 0 {
					return n, true
				}
				return q.emptyBehavior(samples)
			}
		}

		want := len(samples) - n
		got, streamOk := q.current.Stream(samples[n : n+want])
		n += got
		if !streamOk {
			q.finishCurrent()
		}
	}
	return n, true
}

// advance pops the next pending entry into current. Returns false if the
// queue is empty.
func (q *Queue) advance() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return false
	}
	next := q.pending[0]
	q.pending = q.pending[1:]
	q.current = next.streamer
	q.currentDone = next.done
	return true
}

// finishCurrent signals the just-finished entry's done channel, mirroring
// go_next's "signal before picking the next sound" ordering, then clears
// current so the next Stream call advances.
func (q *Queue) finishCurrent() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.currentDone != nil {
		close(q.currentDone)
		q.currentDone = nil
	}
	q.current = nil
}

func (q *Queue) emptyBehavior(samples [][2]float64) (int, bool) {
	q.mu.Lock()
	keepAlive := q.keepAlive
	q.mu.Unlock()
	if !keepAlive {
		return 0, false
	}
	n := len(samples)
	if n > silenceBurstFrames {
		n = silenceBurstFrames
	}
	for i := 0; i < n; i++ {
		samples[i] = [2]float64{}
	}
	return n, true
}
