package sourcechain

import "github.com/gopxl/beep"

// speedStreamer changes playback rate without resampling to a device rate;
// it is the innermost wrapper in the chain, matching source.speed(1.0) being
// the first call in sink.rs's Sink.append chain. Unlike beep.Resample (which
// resamples between two fixed sample rates), the ratio here is read fresh
// from Controls on every Stream call, so set_speed takes effect immediately
// on already-queued audio the way the original's Controls.speed mutex does.
type speedStreamer struct {
	inner    beep.Streamer
	controls *Controls

	buf    [][2]float64
	bufLen int
	pos    float64
}

func newSpeedStreamer(inner beep.Streamer, controls *Controls) *speedStreamer {
	return &speedStreamer{inner: inner, controls: controls, buf: make([][2]float64, 512)}
}

func (s *speedStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	ratio := s.controls.Speed()
	if ratio <= 0 {
		ratio = 1
	}

	for n < len(samples) {
		needIdx := int(s.pos)
		if needIdx+1 >= s.bufLen {
			if !s.refill() {
				if n > 0 {
					return n, true
				}
				return 0, false
			}
			needIdx = int(s.pos)
		}

		frac := s.pos - float64(needIdx)
		a, b := s.buf[needIdx], s.buf[needIdx+1]
		samples[n] = [2]float64{
			a[0] + (b[0]-a[0])*frac,
			a[1] + (b[1]-a[1])*frac,
		}
		n++
		s.pos += ratio
	}
	return n, true
}

// refill slides any unconsumed tail to the front and decodes more frames,
// keeping s.pos relative to the (possibly shifted) buffer start.
func (s *speedStreamer) refill() bool {
	consumed := int(s.pos)
	if consumed > 0 && consumed < s.bufLen {
		copy(s.buf, s.buf[consumed:s.bufLen])
		s.bufLen -= consumed
		s.pos -= float64(consumed)
	} else if consumed >= s.bufLen {
		s.bufLen = 0
		s.pos = 0
	}

	fresh := make([][2]float64, len(s.buf)-s.bufLen)
	n, ok := s.inner.Stream(fresh)
	if n == 0 {
		return ok && s.bufLen > 1
	}
	copy(s.buf[s.bufLen:], fresh[:n])
	s.bufLen += n
	return s.bufLen > 1
}

func (s *speedStreamer) Err() error {
	if e, ok := s.inner.(interface{ Err() error }); ok {
		return e.Err()
	}
	return nil
}
