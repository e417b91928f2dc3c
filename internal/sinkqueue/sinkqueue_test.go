package sinkqueue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type finiteStreamer struct {
	frame     [2]float64
	remaining int
}

func (s *finiteStreamer) Stream(samples [][2]float64) (int, bool) {
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

func TestQueuePlaysEntriesInOrderAndSignalsCompletion(t *testing.T) {
	q := New(false)
	done1 := q.Append(&finiteStreamer{frame: [2]float64{1, 1}, remaining: 5})
	done2 := q.Append(&finiteStreamer{frame: [2]float64{2, 2}, remaining: 5})

	buf := make([][2]float64, 5)
	n, ok := q.Stream(buf)
	require.True(t, ok)
	require.Equal(t, 5, n)
	for _, s := range buf {
		require.Equal(t, [2]float64{1, 1}, s)
	}

	// The first entry only reports its end on the next pull, so done1 fires
	// inside the second Stream call, before the second entry's first sample.
	n, ok = q.Stream(buf)
	require.True(t, ok)
	require.Equal(t, 5, n)
	for _, s := range buf {
		require.Equal(t, [2]float64{2, 2}, s)
	}

	select {
	case <-done1:
	default:
		t.Fatal("expected done1 to be signalled before the second entry started")
	}

	n, ok = q.Stream(buf)
	require.False(t, ok)
	require.Equal(t, 0, n)

	select {
	case <-done2:
	default:
		t.Fatal("expected done2 to be signalled once its entry finished")
	}
}

func TestQueueKeepAliveEmitsSilenceWhenEmpty(t *testing.T) {
	q := New(true)
	buf := make([][2]float64, 10)
	n, ok := q.Stream(buf)
	require.True(t, ok)
	require.Greater(t, n, 0)
	for _, s := range buf[:n] {
		require.Equal(t, [2]float64{0, 0}, s)
	}
}

func TestQueueWithoutKeepAliveReportsEndOfStreamWhenEmpty(t *testing.T) {
	q := New(false)
	buf := make([][2]float64, 10)
	_, ok := q.Stream(buf)
	require.False(t, ok)
}
