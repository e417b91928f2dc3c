package decoder

import (
	"github.com/gopxl/beep"
	beepwav "github.com/gopxl/beep/wav"

	"github.com/tramhao/termusic-sub005/internal/mediasource"
)

// decodeWAV handles RIFF/WAVE only. beep has no AIFF decoder in the pack and
// beep/wav cannot read AIFF's different header layout, so New reports AIFF
// as UnsupportedFormat, the same path as Opus/MP4/APE (see DESIGN.md).
func decodeWAV(media mediasource.Source) (beep.StreamSeekCloser, beep.Format, error) {
	streamer, format, err := beepwav.Decode(media)
	if err != nil {
		return nil, beep.Format{}, err
	}
	return streamer, format, nil
}
