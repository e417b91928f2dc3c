package decoder

import (
	"io"

	"github.com/gopxl/beep"
	"github.com/mewkiz/flac"

	"github.com/tramhao/termusic-sub005/internal/mediasource"
	"github.com/tramhao/termusic-sub005/internal/playerr"
)

// flacStreamer adapts mewkiz/flac's frame-at-a-time decoder to
// beep.StreamSeekCloser, decoding one frame at a time into a small PCM
// queue and draining it per Stream() call the way beep's own decoders do.
// mediasource.Source is always an io.ReadSeeker, so flac.NewSeek is used
// unconditionally to keep Seek available.
type flacStreamer struct {
	media  mediasource.Source
	stream *flac.Stream
	format beep.Format

	pcm [][2]float64
	pos int
	err error
}

func decodeFLAC(media mediasource.Source) (beep.StreamSeekCloser, beep.Format, error) {
	stream, err := flac.NewSeek(media)
	if err != nil {
		return nil, beep.Format{}, err
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(stream.Info.SampleRate),
		NumChannels: 2,
		Precision:   3,
	}
	return &flacStreamer{media: media, stream: stream, format: format}, format, nil
}

func (s *flacStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}
	for n < len(samples) {
		if s.pos >= len(s.pcm) {
			if !s.decodeNextFrame() {
				if n > 0 {
					return n, true
				}
				return 0, false
			}
		}
		samples[n] = s.pcm[s.pos]
		s.pos++
		n++
	}
	return n, true
}

func (s *flacStreamer) decodeNextFrame() bool {
	fr, err := s.stream.ParseNext()
	if err != nil {
		if err != io.EOF {
			s.err = &playerr.DecoderError{Codec: "flac", Err: err}
		}
		return false
	}

	maxVal := float64(int64(1) << uint(fr.BitsPerSample-1))
	nsamples := len(fr.Subframes[0].Samples)
	pcm := make([][2]float64, nsamples)
	for i := 0; i < nsamples; i++ {
		left := float64(fr.Subframes[0].Samples[i]) / maxVal
		right := left
		if len(fr.Subframes) > 1 {
			right = float64(fr.Subframes[1].Samples[i]) / maxVal
		}
		pcm[i] = [2]float64{left, right}
	}
	s.pcm = pcm
	s.pos = 0
	return true
}

func (s *flacStreamer) Err() error { return s.err }

// Seek discards any queued PCM and re-positions the frame reader to the
// frame containing sample, per mewkiz/flac's Stream.Seek contract (it lands
// on the containing frame's first sample, not necessarily the exact one).
func (s *flacStreamer) Seek(sample int) error {
	if _, err := s.stream.Seek(uint64(sample)); err != nil {
		return &playerr.IoError{Op: "flac seek", Err: err}
	}
	s.pcm = nil
	s.pos = 0
	s.err = nil
	return nil
}

func (s *flacStreamer) Len() int { return int(s.stream.Info.NSamples) }

func (s *flacStreamer) Position() int { return 0 }

func (s *flacStreamer) Close() error { return s.media.Close() }
