package decoder

import (
	"github.com/gopxl/beep"
	beepmp3 "github.com/gopxl/beep/mp3"

	"github.com/tramhao/termusic-sub005/internal/mediasource"
)

func decodeMP3(media mediasource.Source) (beep.StreamSeekCloser, beep.Format, error) {
	// mediasource.Source already satisfies io.ReadCloser.
	streamer, format, err := beepmp3.Decode(media)
	if err != nil {
		return nil, beep.Format{}, err
	}
	return streamer, format, nil
}
