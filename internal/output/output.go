// Package output implements C5: the single physical audio device binding,
// resampling whatever SinkQueue (C4) produces to the device's fixed rate and
// driving it through beep/speaker, per SPEC_FULL.md §4.5.
//
// Grounded on the teacher's internal/audio/player.go: calculateOptimalBufferSize
// (a per-OS buffer size multiplier) and initializeSpeaker (speaker.Init
// guarded so it only ever runs once per process) are adapted directly;
// beep.Resample(4, ...) wrapping the queue is the same technique
// player.go's loadAndPlay/reload path uses when a track's native sample rate
// differs from the device rate.
package output

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// resampleQuality matches the teacher's beep.Resample(4, ...) call: quality
// 4 out of beep's 1-6 scale, a reasonable default balancing CPU cost and
// resample artifact audibility for a terminal music player.
const resampleQuality = 4

var speakerOnce sync.Once
var speakerInitErr error

// Stream is C5's contract: a single beep.Streamer bound to the live device,
// able to rebind the same SinkQueue if the device's native sample rate is
// discovered to have changed mid-playback (see Rebind).
type Stream struct {
	mu         sync.Mutex
	deviceRate beep.SampleRate
	bufferSize int
	debug      bool

	queue beep.Streamer
	ctrl  *beep.Ctrl
}

// Options configures device initialization.
type Options struct {
	DeviceSampleRate int
	BufferMillis     time.Duration
	Debug            bool
}

// Init initializes the physical output device exactly once per process
// (speaker.Init may not be called twice), matching initializeSpeaker's
// sync.Once guard.
func Init(opts Options) (*Stream, error) {
	deviceRate := beep.SampleRate(opts.DeviceSampleRate)
	if deviceRate <= 0 {
		deviceRate = beep.SampleRate(44100)
	}
	bufferMillis := opts.BufferMillis
	if bufferMillis <= 0 {
		bufferMillis = 200 * time.Millisecond
	}
	bufferSize := deviceRate.N(bufferMillis) * optimalBufferMultiplier()

	speakerOnce.Do(func() {
		speakerInitErr = speaker.Init(deviceRate, bufferSize)
		if opts.Debug {
			log.Printf("[output] speaker.Init(%d, %d)", deviceRate, bufferSize)
		}
	})
	if speakerInitErr != nil {
		return nil, fmt.Errorf("initialize output device: %w", speakerInitErr)
	}

	return &Stream{deviceRate: deviceRate, bufferSize: bufferSize, debug: opts.Debug}, nil
}

// optimalBufferMultiplier mirrors calculateOptimalBufferSize's per-OS
// tuning: Linux's default audio stack tends to need a deeper buffer to
// avoid underruns than Windows/macOS do.
func optimalBufferMultiplier() int {
	switch runtime.GOOS {
	case "linux":
		return 2
	case "windows", "darwin":
		return 1
	default:
		return 2
	}
}

// Bind wraps queue with a resampler from queueRate to the device rate (no
// resampler is added when they already match) and starts driving it through
// speaker.Play. Bind does not remove a streamer bound earlier from the
// speaker; Rebind clears the speaker before binding again.
func (s *Stream) Bind(queue beep.Streamer, queueRate beep.SampleRate) {
	resampled := beep.Streamer(queue)
	if queueRate != s.deviceRate {
		resampled = beep.Resample(resampleQuality, queueRate, s.deviceRate, queue)
	}
	ctrl := &beep.Ctrl{Streamer: resampled, Paused: false}

	s.mu.Lock()
	s.queue = queue
	s.ctrl = ctrl
	s.mu.Unlock()

	speaker.Play(ctrl)
}

// Rebind tears down the current device binding and rebuilds it bound to the
// same SinkQueue, for use when the device's native format changes mid
// playback. Per SPEC_FULL.md §9's resolution, no sample-accurate handover is
// attempted: in-flight callback state is discarded and playback resumes from
// wherever the queue's own position tracking says it is.
func (s *Stream) Rebind(newDeviceRate beep.SampleRate) {
	s.mu.Lock()
	queue := s.queue
	s.deviceRate = newDeviceRate
	s.mu.Unlock()

	speaker.Clear()
	if queue != nil {
		s.Bind(queue, newDeviceRate)
	}
}

// Lock/Unlock expose speaker.Lock/Unlock for callers that need to mutate
// shared state the device callback also touches (matching beep's own
// convention for safely reaching into a live streamer from another
// goroutine).
func (s *Stream) Lock()   { speaker.Lock() }
func (s *Stream) Unlock() { speaker.Unlock() }

// Close stops playback and clears the device's streamer.
func (s *Stream) Close() {
	speaker.Clear()
}

// DeviceSampleRate reports the rate the physical device was opened at.
func (s *Stream) DeviceSampleRate() beep.SampleRate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deviceRate
}
