package playlist

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tramhao/termusic-sub005/pkg/track"
)

func mkTracks(n int) []track.Track {
	ts := make([]track.Track, n)
	for i := range ts {
		ts[i] = track.Track{ID: string(rune('a' + i))}
	}
	return ts
}

func TestAdvancePlaylistModeWraps(t *testing.T) {
	p := New(mkTracks(3), track.LoopPlaylist)
	idx, _ := p.CurrentIndex()
	require.Equal(t, 0, idx)

	require.True(t, p.Advance())
	idx, _ = p.CurrentIndex()
	require.Equal(t, 1, idx)

	require.True(t, p.Advance())
	require.True(t, p.Advance())
	idx, _ = p.CurrentIndex()
	require.Equal(t, 0, idx)
}

func TestAdvanceSingleModeRepeats(t *testing.T) {
	p := New(mkTracks(3), track.LoopSingle)
	p.SetCurrent(1)
	require.True(t, p.Advance())
	idx, _ := p.CurrentIndex()
	require.Equal(t, 1, idx)
}

func TestAdvanceRandomModeStaysInBounds(t *testing.T) {
	p := New(mkTracks(5), track.LoopRandom)
	for i := 0; i < 50; i++ {
		require.True(t, p.Advance())
		idx, ok := p.CurrentIndex()
		require.True(t, ok)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 5)
	}
}

func TestAdvanceOnEmptyPlaylistReturnsFalse(t *testing.T) {
	p := New(nil, track.LoopPlaylist)
	require.False(t, p.Advance())
	_, ok := p.CurrentIndex()
	require.False(t, ok)
}

func TestCycleLoopRotatesInOrder(t *testing.T) {
	p := New(mkTracks(1), track.LoopRandom)
	require.Equal(t, track.LoopPlaylist, p.CycleLoop())
	require.Equal(t, track.LoopSingle, p.CycleLoop())
	require.Equal(t, track.LoopRandom, p.CycleLoop())
}

func TestRemoveClearsCurrent(t *testing.T) {
	p := New(mkTracks(3), track.LoopPlaylist)
	require.NoError(t, p.Remove(0))
	_, ok := p.CurrentIndex()
	require.False(t, ok)
}

func TestAppendDoesNotClearCurrent(t *testing.T) {
	p := New(mkTracks(2), track.LoopPlaylist)
	p.Append(track.Track{ID: "z"})
	idx, ok := p.CurrentIndex()
	require.True(t, ok)
	require.Equal(t, 0, idx)
	require.Equal(t, 3, p.Len())
}

func TestSwapOutOfBounds(t *testing.T) {
	p := New(mkTracks(2), track.LoopPlaylist)
	require.Error(t, p.Swap(0, 5))
}
