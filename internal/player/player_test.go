package player

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tramhao/termusic-sub005/pkg/track"
)

// writeSilentWAV writes a minimal valid 16-bit mono PCM WAV file containing
// numSamples of silence, for Core tests that need a real decodable track
// without shipping a binary fixture.
func writeSilentWAV(t *testing.T, path string, numSamples int) {
	t.Helper()
	const sampleRate = 44100
	const bitsPerSample = 16
	const numChannels = 1
	dataSize := numSamples * numChannels * (bitsPerSample / 8)

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	write := func(v interface{}) { require.NoError(t, binary.Write(f, binary.LittleEndian, v)) }

	f.WriteString("RIFF")
	write(uint32(36 + dataSize))
	f.WriteString("WAVE")
	f.WriteString("fmt ")
	write(uint32(16))
	write(uint16(1)) // PCM
	write(uint16(numChannels))
	write(uint32(sampleRate))
	write(uint32(sampleRate * numChannels * bitsPerSample / 8))
	write(uint16(numChannels * bitsPerSample / 8))
	write(uint16(bitsPerSample))
	f.WriteString("data")
	write(uint32(dataSize))
	f.Write(make([]byte, dataSize))
}

type fakeLibrary struct {
	tracks   []track.Track
	loop     track.LoopMode
	volume   float64
	savedVol []float64
}

func (f *fakeLibrary) LoadPlaylist() ([]track.Track, error)      { return f.tracks, nil }
func (f *fakeLibrary) SavePlaylist(tracks []track.Track) error   { f.tracks = tracks; return nil }
func (f *fakeLibrary) LoadLoopMode() (track.LoopMode, error)     { return f.loop, nil }
func (f *fakeLibrary) SaveLoopMode(mode track.LoopMode) error    { f.loop = mode; return nil }
func (f *fakeLibrary) LoadVolume() (float64, error)              { return f.volume, nil }
func (f *fakeLibrary) SaveVolume(v float64) error                { f.savedVol = append(f.savedVol, v); return nil }
func (f *fakeLibrary) CommitLastPosition(string, uint32) error   { return nil }
func (f *fakeLibrary) LastPosition(string) (uint32, bool, error) { return 0, false, nil }

func newTestCore(t *testing.T, numTracks int) *Core {
	t.Helper()
	dir := t.TempDir()
	tracks := make([]track.Track, numTracks)
	for i := range tracks {
		path := filepath.Join(dir, string(rune('a'+i))+".wav")
		writeSilentWAV(t, path, 4096)
		tracks[i] = track.Track{
			ID:      string(rune('a' + i)),
			Locator: track.MediaLocator{Kind: track.LocalFile, Path: path},
			Meta:    track.Meta{Title: "track " + string(rune('a'+i)), Duration: time.Second},
		}
	}

	lib := &fakeLibrary{tracks: tracks, loop: track.LoopPlaylist, volume: 1}
	c, err := New(Options{Library: lib, Volume: 1, Speed: 1})
	require.NoError(t, err)
	return c
}

func drainCommand(c *Core, kind string, arg interface{}) {
	c.handle(command{kind: kind, arg: arg})
}

func TestCorePlaySpecificLoadsActiveTrack(t *testing.T) {
	c := newTestCore(t, 2)
	drainCommand(c, cmdPlaySpecific, 0)
	require.NotNil(t, c.active)
	require.Equal(t, "a", c.active.tr.ID)
}

func TestCoreSkipNextAdvancesPlaylist(t *testing.T) {
	c := newTestCore(t, 2)
	drainCommand(c, cmdPlaySpecific, 0)
	drainCommand(c, cmdSkipNext, nil)
	require.NotNil(t, c.active)
	require.Equal(t, "b", c.active.tr.ID)
}

func TestCoreApplyVolumePersistsAndAppliesToActive(t *testing.T) {
	c := newTestCore(t, 1)
	drainCommand(c, cmdPlaySpecific, 0)
	drainCommand(c, cmdSetVolume, 0.5)
	require.InDelta(t, 0.5, c.volume, 1e-9)
	require.InDelta(t, 0.5, c.active.controls.Volume(), 1e-9)

	lib := c.library.(*fakeLibrary)
	require.Contains(t, lib.savedVol, 0.5)
}

func TestCoreAdjustVolumeClampsToUnitRange(t *testing.T) {
	c := newTestCore(t, 1)
	c.volume = 0.9
	drainCommand(c, cmdAdjustVolume, 0.5)
	require.Equal(t, 1.0, c.volume)
}

func TestCoreAdjustSpeedFloorsAtMinimum(t *testing.T) {
	c := newTestCore(t, 1)
	c.speed = 0.15
	drainCommand(c, cmdAdjustSpeed, -10.0)
	require.InDelta(t, 0.1, c.speed, 1e-9)
}

func TestCoreTogglePauseFlipsActiveControls(t *testing.T) {
	c := newTestCore(t, 1)
	drainCommand(c, cmdPlaySpecific, 0)
	require.False(t, c.active.controls.Paused())
	drainCommand(c, cmdTogglePause, nil)
	require.True(t, c.active.controls.Paused())
}

func TestCoreCycleLoopPersistsMode(t *testing.T) {
	c := newTestCore(t, 1)
	before := c.playlist.LoopMode()
	drainCommand(c, cmdCycleLoop, nil)
	after := c.playlist.LoopMode()
	require.NotEqual(t, before, after)
	lib := c.library.(*fakeLibrary)
	require.Equal(t, after, lib.loop)
}

func TestCoreToggleGaplessFlips(t *testing.T) {
	c := newTestCore(t, 1)
	before := c.gapless
	drainCommand(c, cmdToggleGapless, nil)
	require.Equal(t, !before, c.gapless)
}
