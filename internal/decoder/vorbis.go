package decoder

import (
	"io"

	"github.com/gopxl/beep"
	"github.com/jfreymuth/oggvorbis"

	"github.com/tramhao/termusic-sub005/internal/mediasource"
	"github.com/tramhao/termusic-sub005/internal/playerr"
)

// vorbisStreamer adapts jfreymuth/oggvorbis's float32 reader (which already
// decodes a full Ogg/Vorbis stream page-by-page internally) to
// beep.StreamSeekCloser.
type vorbisStreamer struct {
	media   mediasource.Source
	reader  *oggvorbis.Reader
	format  beep.Format
	scratch []float32
	err     error
}

func decodeVorbis(media mediasource.Source) (beep.StreamSeekCloser, beep.Format, error) {
	r, err := oggvorbis.NewReader(media)
	if err != nil {
		return nil, beep.Format{}, err
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(r.SampleRate()),
		NumChannels: 2,
		Precision:   3,
	}
	return &vorbisStreamer{media: media, reader: r, format: format}, format, nil
}

func (s *vorbisStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}
	channels := s.reader.Channels()
	need := len(samples) * channels
	if cap(s.scratch) < need {
		s.scratch = make([]float32, need)
	}
	buf := s.scratch[:need]

	read, err := s.reader.Read(buf)
	if read == 0 {
		if err != nil && err != io.EOF {
			s.err = &playerr.DecoderError{Codec: "vorbis", Err: err}
		}
		return 0, false
	}

	frames := read / channels
	for i := 0; i < frames; i++ {
		left := float64(buf[i*channels])
		right := left
		if channels > 1 {
			right = float64(buf[i*channels+1])
		}
		samples[i] = [2]float64{left, right}
	}
	return frames, true
}

func (s *vorbisStreamer) Err() error { return s.err }

// Seek seeks by PCM sample offset; oggvorbis.Reader supports this directly
// when its underlying reader is an io.Seeker, which mediasource.Source is.
func (s *vorbisStreamer) Seek(sample int) error {
	if err := s.reader.SetPosition(int64(sample)); err != nil {
		return &playerr.IoError{Op: "vorbis seek", Err: err}
	}
	s.err = nil
	return nil
}

func (s *vorbisStreamer) Len() int { return int(s.reader.Length()) }

func (s *vorbisStreamer) Position() int { return int(s.reader.Position()) }

func (s *vorbisStreamer) Close() error { return s.media.Close() }
