package decoder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tramhao/termusic-sub005/internal/mediasource"
)

func TestProbeClassifiesWAV(t *testing.T) {
	header := []byte("RIFF")
	header = append(header, 0, 0, 0, 0)
	header = append(header, []byte("WAVE")...)
	media := mediasource.FromBytes(header)

	container, err := Probe(media)
	require.NoError(t, err)
	require.Equal(t, WAV, container)
}

func TestProbeClassifiesFLAC(t *testing.T) {
	media := mediasource.FromBytes([]byte("fLaC" + "rest-of-header-does-not-matter-for-magic"))
	container, err := Probe(media)
	require.NoError(t, err)
	require.Equal(t, FLAC, container)
}

func TestProbeClassifiesAPE(t *testing.T) {
	media := mediasource.FromBytes([]byte("MAC \x96\x0f\x00\x00"))
	container, err := Probe(media)
	require.NoError(t, err)
	require.Equal(t, APE, container)
}

func TestProbeRejectsUnrecognized(t *testing.T) {
	media := mediasource.FromBytes([]byte("not a media file at all"))
	_, err := Probe(media)
	require.Error(t, err)
}

func TestProbeRejectsEmpty(t *testing.T) {
	media := mediasource.FromBytes(nil)
	_, err := Probe(media)
	require.Error(t, err)
}

func TestNewRejectsUnsupportedButRecognizedContainer(t *testing.T) {
	header := append([]byte("MAC "), 0, 0, 0, 0)
	media := mediasource.FromBytes(header)

	_, err := New(media)
	require.Error(t, err)
}

// The payload below isn't a real decodable vorbis stream; it exists only to
// exercise the OggS-prefix branch of classify without requiring a real
// encoded asset on disk.
func TestProbeClassifiesOggAsVorbisWithoutOpusHead(t *testing.T) {
	media := mediasource.FromBytes([]byte("OggS" + "\x00\x02" + "vorbis-ish-but-not-really"))
	container, err := Probe(media)
	require.NoError(t, err)
	require.Equal(t, Vorbis, container)
}

func TestProbeClassifiesOpus(t *testing.T) {
	media := mediasource.FromBytes([]byte("OggS" + "\x00\x02" + "OpusHead...."))
	container, err := Probe(media)
	require.NoError(t, err)
	require.Equal(t, Opus, container)
}
