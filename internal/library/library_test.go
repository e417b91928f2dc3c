package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tramhao/termusic-sub005/pkg/track"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSaveAndLoadPlaylistRoundTrips(t *testing.T) {
	db := openTestDB(t)
	tracks := []track.Track{
		{ID: "a", Locator: track.MediaLocator{Kind: track.LocalFile, Path: "/music/a.mp3"}, Meta: track.Meta{Title: "A", Duration: 3 * time.Minute}},
		{ID: "b", Locator: track.MediaLocator{Kind: track.HTTPStream, URL: "http://example.com/b.mp3"}, Meta: track.Meta{Title: "B"}},
	}
	require.NoError(t, db.SavePlaylist(tracks))

	loaded, err := db.LoadPlaylist()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, "a", loaded[0].ID)
	require.Equal(t, track.LocalFile, loaded[0].Locator.Kind)
	require.Equal(t, "b", loaded[1].ID)
	require.Equal(t, track.HTTPStream, loaded[1].Locator.Kind)
}

func TestLoopModeDefaultsToPlaylist(t *testing.T) {
	db := openTestDB(t)
	mode, err := db.LoadLoopMode()
	require.NoError(t, err)
	require.Equal(t, track.LoopPlaylist, mode)

	require.NoError(t, db.SaveLoopMode(track.LoopRandom))
	mode, err = db.LoadLoopMode()
	require.NoError(t, err)
	require.Equal(t, track.LoopRandom, mode)
}

func TestVolumeDefaultsToOne(t *testing.T) {
	db := openTestDB(t)
	v, err := db.LoadVolume()
	require.NoError(t, err)
	require.Equal(t, 1.0, v)

	require.NoError(t, db.SaveVolume(0.42))
	v, err = db.LoadVolume()
	require.NoError(t, err)
	require.InDelta(t, 0.42, v, 1e-9)
}

func TestCommitAndReadLastPosition(t *testing.T) {
	db := openTestDB(t)
	_, ok, err := db.LastPosition("missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, db.CommitLastPosition("a", 12345))
	pos, ok, err := db.LastPosition("a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(12345), pos)

	require.NoError(t, db.CommitLastPosition("a", 54321))
	pos, ok, err = db.LastPosition("a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(54321), pos)
}
