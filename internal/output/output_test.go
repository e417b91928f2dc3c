package output

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/require"
)

// optimalBufferMultiplier and the buffer-size arithmetic around it are the
// only parts of this package that don't require a live audio device to
// exercise; Init/Bind/Rebind call into speaker.Init and speaker.Play, which
// open a real (or null) sound device and aren't suitable for a unit test.

func TestOptimalBufferMultiplierKnownOS(t *testing.T) {
	mult := optimalBufferMultiplier()
	require.Contains(t, []int{1, 2}, mult)
}

func TestBufferSizeScalesWithMillis(t *testing.T) {
	rate := beep.SampleRate(44100)
	small := rate.N(100 * time.Millisecond)
	large := rate.N(200 * time.Millisecond)
	require.Less(t, small, large)
}

func TestDeviceSampleRateReportsStreamRate(t *testing.T) {
	s := &Stream{deviceRate: beep.SampleRate(44100)}
	require.Equal(t, beep.SampleRate(44100), s.DeviceSampleRate())
}
