// Package decoder implements C2: probes a container, selects an audio
// track, and yields a lazy sequence of PCM frames with a SignalSpec and
// per-packet timestamp, per SPEC_FULL.md §4.2.
//
// Grounded algorithmically on original_source/audio/src/decoder/symphonia_decoder.go's
// SymphoniaDecoder: probe-then-dispatch construction, EOF-detection on the
// underlying I/O error, skip-and-continue on a recoverable decode error
// with skipped=true reported on the next good packet, and one reused sample
// buffer of packetFrames stereo frames; every adapter emits two channels and
// at most that many frames per call, so the buffer never needs to grow. Each
// per-container adapter is expressed as a beep.Streamer, composing directly
// with the teacher's beep-based pipeline in internal/sourcechain.
package decoder

import (
	"errors"
	"io"
	"time"

	"github.com/gopxl/beep"

	"github.com/tramhao/termusic-sub005/internal/mediasource"
	"github.com/tramhao/termusic-sub005/internal/playerr"
	"github.com/tramhao/termusic-sub005/pkg/track"
)

// packetFrames is the number of frames decoded per next_packet call. This
// is an implementation choice (symphonia reports one packet per container
// frame; beep streamers don't expose that granularity), sized small enough
// to keep the PeriodicAccess progress hook (§4.3, ~5ms worth of samples)
// responsive at typical sample rates.
const packetFrames = 512

// Errorer is satisfied by beep decoders that can report a decode error
// distinct from clean end-of-stream (go-mp3 and beep/wav both do). When a
// Streamer doesn't implement it, end-of-stream is assumed on Stream()
// returning ok=false.
type Errorer interface {
	Err() error
}

// Decoder is C2's contract over one already-probed media source.
type Decoder struct {
	streamer  beep.StreamSeekCloser
	format    beep.Format
	container Container

	buf          [][2]float64
	skippedSince bool
	framesRead   int64
}

// New probes media and constructs the matching per-container adapter. It
// returns playerr.UnsupportedFormat for containers the probe recognizes but
// this module has no decoder for (see DESIGN.md).
func New(media mediasource.Source) (*Decoder, error) {
	container, err := Probe(media)
	if err != nil {
		return nil, err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch container {
	case MP3:
		streamer, format, err = decodeMP3(media)
	case WAV:
		streamer, format, err = decodeWAV(media)
	case FLAC:
		streamer, format, err = decodeFLAC(media)
	case Vorbis:
		streamer, format, err = decodeVorbis(media)
	case AIFF, Opus, MP4, APE:
		return nil, &playerr.UnsupportedFormat{Container: container.String()}
	default:
		return nil, &playerr.UnsupportedFormat{Container: "unknown"}
	}
	if err != nil {
		return nil, &playerr.DecoderError{Codec: container.String(), Err: err}
	}

	return &Decoder{
		streamer:  streamer,
		format:    format,
		container: container,
		buf:       make([][2]float64, packetFrames),
	}, nil
}

// Spec reports the decoder's sample rate and channel count. beep normalizes
// every decoded source to 2 interleaved channels.
func (d *Decoder) Spec() track.SignalSpec {
	return track.SignalSpec{SampleRate: uint32(d.format.SampleRate), Channels: 2}
}

// Streamer exposes the underlying beep.StreamSeekCloser for direct
// composition into a SourceChain (C3), which wraps beep streamers.
func (d *Decoder) Streamer() beep.StreamSeekCloser { return d.streamer }

// Format exposes the beep.Format OutputStream (C5) needs to negotiate
// resampling.
func (d *Decoder) Format() beep.Format { return d.format }

// Seek performs a coarse seek by time and returns the actual position
// landed on, converted back to milliseconds. Per §4.2, the underlying
// decoder must discard any buffered state left over from the previous
// position; beep's Seek implementations already do this internally for
// every container this module wires in.
func (d *Decoder) Seek(positionMs uint32) (uint32, error) {
	targetSample := d.format.SampleRate.N(msToDuration(positionMs))
	if err := d.streamer.Seek(targetSample); err != nil {
		return 0, &playerr.IoError{Op: "seek", Err: err}
	}
	d.framesRead = int64(targetSample)
	actual := d.format.SampleRate.D(targetSample)
	return uint32(actual.Milliseconds()), nil
}

// NextPacket returns the next packet of decoded samples, or a zero position,
// nil samples and io.EOF at clean end of stream. On a decode error it skips
// the bad packet and sets Skipped=true on the following successful packet,
// per §4.2's contract; an error that persists past that one retry is
// returned as fatal.
func (d *Decoder) NextPacket() (track.AudioPacketPosition, [][2]float64, error) {
	for {
		n, ok := d.streamer.Stream(d.buf)
		if ok && n > 0 {
			pos := track.AudioPacketPosition{
				PositionMs: uint32(d.format.SampleRate.D(d.framesRead).Milliseconds()),
				Skipped:    d.skippedSince,
			}
			d.skippedSince = false
			d.framesRead += int64(n)
			return pos, d.buf[:n], nil
		}

		if errSrc, is := d.streamer.(Errorer); is {
			if err := errSrc.Err(); err != nil {
				if errors.Is(err, io.EOF) {
					return track.AudioPacketPosition{}, nil, io.EOF
				}
				// Recoverable: mark the gap and retry. beep's own decoders
				// do not support resuming after Stream() returns ok=false
				// following a mid-stream error (the underlying reader is
				// left past the bad frame), so a single retry is made; if
				// it still reports ok=false the error is returned as fatal.
				d.skippedSince = true
				n2, ok2 := d.streamer.Stream(d.buf)
				if ok2 && n2 > 0 {
					pos := track.AudioPacketPosition{
						PositionMs: uint32(d.format.SampleRate.D(d.framesRead).Milliseconds()),
						Skipped:    true,
					}
					d.skippedSince = false
					d.framesRead += int64(n2)
					return pos, d.buf[:n2], nil
				}
				return track.AudioPacketPosition{}, nil, err
			}
		}
		return track.AudioPacketPosition{}, nil, io.EOF
	}
}

// Close releases the underlying decoder and its media source.
func (d *Decoder) Close() error { return d.streamer.Close() }

// PacketStreamer adapts NextPacket's skip-and-retry recovery to a
// beep.Streamer, so the corrupt-packet handling in NextPacket runs on the
// real playback path instead of only being reachable from a direct test
// call.
type PacketStreamer struct {
	dec    *Decoder
	onSkip func()

	leftover [][2]float64
	err      error
}

// NewPacketStreamer wraps dec so Stream pulls samples through NextPacket.
// onSkip, if non-nil, fires once for every packet NextPacket reports as
// following a decode-error skip (§4.2's skipped=true contract).
func NewPacketStreamer(dec *Decoder, onSkip func()) *PacketStreamer {
	return &PacketStreamer{dec: dec, onSkip: onSkip}
}

func (p *PacketStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) {
		if len(p.leftover) == 0 {
			pos, frames, err := p.dec.NextPacket()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					p.err = err
				}
				if n > 0 {
					return n, true
				}
				return 0, false
			}
			if pos.Skipped && p.onSkip != nil {
				p.onSkip()
			}
			p.leftover = frames
		}
		copied := copy(samples[n:], p.leftover)
		n += copied
		p.leftover = p.leftover[copied:]
	}
	return n, true
}

// Err reports the fatal error (if any) that ended the stream.
func (p *PacketStreamer) Err() error { return p.err }

func msToDuration(ms uint32) (d time.Duration) {
	return time.Duration(ms) * time.Millisecond
}
