package sourcechain

import (
	"testing"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/require"
)

// constStreamer emits a fixed number of identical frames, then ends.
type constStreamer struct {
	frame     [2]float64
	remaining int
}

func (s *constStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.remaining <= 0 {
		return 0, false
	}
	n := len(samples)
	if n > s.remaining {
		n = s.remaining
	}
	for i := 0; i < n; i++ {
		samples[i] = s.frame
	}
	s.remaining -= n
	return n, true
}

func (s *constStreamer) Err() error { return nil }

func TestChainAppliesVolume(t *testing.T) {
	controls := NewControls()
	controls.SetVolume(0.5)
	src := &constStreamer{frame: [2]float64{1, 1}, remaining: 1000}
	chain := Wrap(src, beep.SampleRate(44100), controls, nil)

	buf := make([][2]float64, 10)
	n, ok := chain.Stream(buf)
	require.True(t, ok)
	require.Equal(t, 10, n)
	for _, s := range buf {
		require.InDelta(t, 0.5, s[0], 1e-9)
	}
}

func TestChainPauseEmitsSilenceWithoutAdvancing(t *testing.T) {
	controls := NewControls()
	controls.SetPaused(true)
	src := &constStreamer{frame: [2]float64{1, 1}, remaining: 1000}
	chain := Wrap(src, beep.SampleRate(44100), controls, nil)

	buf := make([][2]float64, 10)
	n, ok := chain.Stream(buf)
	require.True(t, ok)
	require.Equal(t, 10, n)
	for _, s := range buf {
		require.Equal(t, [2]float64{0, 0}, s)
	}
	require.Equal(t, 1000, src.remaining)
}

func TestChainStopEndsStream(t *testing.T) {
	controls := NewControls()
	controls.Stop()
	src := &constStreamer{frame: [2]float64{1, 1}, remaining: 1000}
	chain := Wrap(src, beep.SampleRate(44100), controls, nil)

	buf := make([][2]float64, 10)
	_, ok := chain.Stream(buf)
	require.False(t, ok)
}

func TestChainSkipOneDiscardsOneBatch(t *testing.T) {
	controls := NewControls()
	controls.SkipOne()
	src := &constStreamer{frame: [2]float64{1, 1}, remaining: 1000}
	chain := Wrap(src, beep.SampleRate(44100), controls, nil)

	buf := make([][2]float64, 10)
	n, ok := chain.Stream(buf)
	require.True(t, ok)
	require.Equal(t, 10, n)
	for _, s := range buf {
		require.Equal(t, [2]float64{0, 0}, s)
	}
	require.Equal(t, 1000, src.remaining)

	// Second call: skip already consumed, normal passthrough resumes.
	n, ok = chain.Stream(buf)
	require.True(t, ok)
	require.Equal(t, 10, n)
	for _, s := range buf {
		require.InDelta(t, 1.0, s[0], 1e-9)
	}
}

func TestSpeedStreamerDoublesConsumptionRate(t *testing.T) {
	controls := NewControls()
	controls.SetSpeed(2.0)
	src := &constStreamer{frame: [2]float64{1, 1}, remaining: 1000}
	s := newSpeedStreamer(src, controls)

	buf := make([][2]float64, 100)
	n, ok := s.Stream(buf)
	require.True(t, ok)
	require.Equal(t, 100, n)
	// At 2x speed, producing 100 output frames must have consumed roughly
	// 200 input frames from the underlying constant stream. The source is
	// pulled in 512-frame blocks, so the read position inside the speed
	// buffer is the exact measure: 200 at 2x (it would be 100 at 1x).
	require.Less(t, src.remaining, 1000-150)
	require.InDelta(t, 200.0, s.pos, 1e-9)
}
