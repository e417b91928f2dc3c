package decoder

import (
	"bytes"
	"io"

	"github.com/tramhao/termusic-sub005/internal/mediasource"
	"github.com/tramhao/termusic-sub005/internal/playerr"
)

// Container identifies the probed file format, per SPEC_FULL.md §6's
// magic-byte quick-guess table.
type Container int

const (
	Unknown Container = iota
	MP3
	WAV
	AIFF
	FLAC
	Vorbis
	Opus
	MP4
	APE
)

func (c Container) String() string {
	switch c {
	case MP3:
		return "mp3"
	case WAV:
		return "wav"
	case AIFF:
		return "aiff"
	case FLAC:
		return "flac"
	case Vorbis:
		return "vorbis"
	case Opus:
		return "opus"
	case MP4:
		return "mp4"
	case APE:
		return "ape"
	default:
		return "unknown"
	}
}

const probeWindow = 4096

// Probe reads a small header window from media and classifies the
// container by magic bytes, tolerating a leading ID3v2 tag by skipping its
// declared size and retrying the inner probe, per §6.
func Probe(media mediasource.Source) (Container, error) {
	buf := make([]byte, probeWindow)
	n, err := io.ReadFull(media, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Unknown, &playerr.ProbeFailure{Reason: "read header", Err: err}
	}
	buf = buf[:n]
	if _, serr := media.Seek(0, io.SeekStart); serr != nil {
		return Unknown, &playerr.ProbeFailure{Reason: "rewind after probe", Err: serr}
	}

	if n == 0 {
		return Unknown, &playerr.ProbeFailure{Reason: "empty file"}
	}

	if bytes.HasPrefix(buf, []byte("ID3")) && len(buf) >= 10 {
		size := id3v2Size(buf[6:10])
		if 10+size < len(buf) {
			return classify(buf[10+size:]), nil
		}
		// Header too small to contain both the tag and the audio magic;
		// fall through and classify from offset 0, which still works for
		// most MP3s since a frame-sync heuristic tolerates leading bytes.
	}

	c := classify(buf)
	if c == Unknown {
		return Unknown, &playerr.ProbeFailure{Reason: "unrecognized magic bytes"}
	}
	return c, nil
}

// id3v2Size decodes the ID3v2 synchsafe size field (four 7-bit bytes).
func id3v2Size(b []byte) int {
	if len(b) < 4 {
		return 0
	}
	return int(b[0])<<21 | int(b[1])<<14 | int(b[2])<<7 | int(b[3])
}

func classify(b []byte) Container {
	switch {
	case len(b) >= 4 && bytes.Equal(b[:4], []byte("MAC ")):
		return APE
	case len(b) >= 12 && bytes.Equal(b[:4], []byte("FORM")) &&
		(bytes.Equal(b[8:12], []byte("AIFF")) || bytes.Equal(b[8:12], []byte("AIFC"))):
		return AIFF
	case len(b) >= 4 && bytes.Equal(b[:4], []byte("OggS")):
		if bytes.Contains(b, []byte("OpusHead")) {
			return Opus
		}
		if bytes.Contains(b, []byte("vorbis")) {
			return Vorbis
		}
		return Vorbis
	case len(b) >= 4 && bytes.Equal(b[:4], []byte("fLaC")):
		return FLAC
	case len(b) >= 12 && bytes.Equal(b[:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WAVE")):
		return WAV
	case len(b) >= 8 && bytes.Contains(b[4:8], []byte("ftyp")):
		return MP4
	case looksLikeMP3Frame(b):
		return MP3
	default:
		return Unknown
	}
}

// looksLikeMP3Frame checks for an MPEG frame sync: eleven set bits at the
// start of a frame header (0xFFE0 mask).
func looksLikeMP3Frame(b []byte) bool {
	for i := 0; i+1 < len(b) && i < 4096; i++ {
		if b[i] == 0xFF && b[i+1]&0xE0 == 0xE0 {
			return true
		}
	}
	return false
}
