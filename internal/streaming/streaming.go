// Package streaming implements C8: a StreamedFile MediaSource backed by a
// local temp file filled concurrently by a background HTTP downloader, with
// a SourceHandle that blocks reads until the requested byte offset is on
// disk and supports server-driven range seeks, per SPEC_FULL.md §4.8.
//
// Grounded on the teacher's internal/audio/streaming.go StreamReader
// (condvar-gated blocking Read, minBufferSize prefetch gate), generalized
// from its linear downloaded-counter to a rangeset.Set so that seeking
// backward into a not-yet-downloaded region re-requests exactly the missing
// span instead of assuming everything before the high-water mark is present.
package streaming

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/tramhao/termusic-sub005/internal/logging"
	"github.com/tramhao/termusic-sub005/internal/playerr"
	"github.com/tramhao/termusic-sub005/internal/rangeset"
)

const (
	// prefetchThreshold is the minimum number of bytes Open waits for
	// before returning, per §4.8's "at least 256 KiB (or EOF)".
	prefetchThreshold = 256 * 1024
	readChunkSize      = 64 * 1024
	// seekGapRerequestThreshold: a Seek within this many bytes of an
	// already-downloading span is left to catch up naturally rather than
	// firing a new range request, avoiding request storms on small seeks.
	seekGapRerequestThreshold = 512 * 1024
)

// Handle is a mediasource.Source backed by a StreamedFile download. It also
// satisfies io.Closer.
type Handle struct {
	url      string
	live     bool // MediaType::LiveRadio: no content length, no seeking, ICY metadata present
	tempFile *os.File

	mu         sync.Mutex
	cond       *sync.Cond
	downloaded *rangeset.Set
	position   int64

	contentLength      int64
	contentLengthKnown bool
	done               bool
	err                error

	requestedPosition int64
	icyMetaInt        int

	client  *retryablehttp.Client
	limiter *rate.Limiter
	ctx     context.Context
	cancel  context.CancelFunc
	debug   bool
}

// Options configures a streamed source.
type Options struct {
	Live  bool // MediaType::LiveRadio
	Debug bool
}

// Open starts the background downloader and blocks until prefetch completes
// (256 KiB downloaded, or the download ended by EOF or error), matching
// §4.8's prefetch-phase contract.
func Open(ctx context.Context, url string, opts Options) (*Handle, error) {
	tmp, err := os.CreateTemp("", "termusic-stream-"+uuid.NewString()+"-*.bin")
	if err != nil {
		return nil, &playerr.IoError{Op: "create temp file", Err: err}
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 4
	client.Logger = nil

	dlCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		url:        url,
		live:       opts.Live,
		tempFile:   tmp,
		downloaded: rangeset.New(),
		client:     client,
		limiter:    rate.NewLimiter(rate.Limit(8<<20), 1<<20), // 8 MiB/s burst-friendly cap
		ctx:        dlCtx,
		cancel:     cancel,
		debug:      opts.Debug,
	}
	h.cond = sync.NewCond(&h.mu)

	go h.run(dlCtx, 0)

	h.mu.Lock()
	for h.downloaded.Max() < prefetchThreshold && h.err == nil && !h.done {
		h.cond.Wait()
	}
	err = h.err
	h.mu.Unlock()
	if err != nil {
		_ = h.Close()
		return nil, &playerr.IoError{Op: "stream prefetch", Err: &playerr.NetworkError{URL: url, Err: err}}
	}
	return h, nil
}

// run performs one GET request for bytes [from, ...) and streams the
// response into the temp file, updating the downloaded range set as bytes
// land on disk. When the response ends cleanly it fills any remaining gaps
// against [0, contentLength) so backward seeks issued earlier are resolved.
func (h *Handle) run(ctx context.Context, from int64) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		h.fail(err)
		return
	}
	req.Header.Set("User-Agent", "termusic-playback-engine/1.0")
	if h.live {
		req.Header.Set("Icy-MetaData", "1")
	} else if from > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", from))
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.fail(err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		h.fail(fmt.Errorf("http %d: %s", resp.StatusCode, resp.Status))
		return
	}

	if cl := resp.Header.Get("Content-Length"); cl != "" && !h.live {
		if v, perr := strconv.ParseInt(cl, 10, 64); perr == nil {
			h.mu.Lock()
			h.contentLength = from + v
			h.contentLengthKnown = true
			h.mu.Unlock()
		}
	}

	metaInt := 0
	if v := resp.Header.Get("icy-metaint"); v != "" {
		if n, perr := strconv.Atoi(v); perr == nil {
			metaInt = n
		}
	}
	h.mu.Lock()
	h.icyMetaInt = metaInt
	h.mu.Unlock()

	var body io.Reader = resp.Body
	if metaInt > 0 {
		body = newICYStripper(resp.Body, metaInt, func(title string) {
			logging.Infof("streaming", "now playing: %s", title)
		})
	}

	h.copyInto(ctx, bufio.NewReaderSize(body, readChunkSize), from)
}

// copyInto reads from r and writes sequentially into the temp file starting
// at byte offset `at`, recording each written span in the downloaded set and
// waking blocked readers as data lands.
func (h *Handle) copyInto(ctx context.Context, r io.Reader, at int64) {
	buf := make([]byte, readChunkSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, rerr := r.Read(buf)
		if n > 0 {
			_ = h.limiter.WaitN(ctx, n)
			if _, werr := h.tempFile.WriteAt(buf[:n], at); werr != nil {
				h.fail(werr)
				return
			}
			h.mu.Lock()
			h.downloaded.Insert(at, at+int64(n))
			at += int64(n)
			h.mu.Unlock()
			h.cond.Broadcast()
		}

		if rerr != nil {
			if rerr == io.EOF {
				h.finishAndFillGaps(ctx)
				return
			}
			h.fail(rerr)
			return
		}
	}
}

// finishAndFillGaps implements §4.8's last bullet: after EOF, request any
// byte ranges within [0, content_length) that remain missing, so a seek
// issued before that region downloaded is still satisfied.
func (h *Handle) finishAndFillGaps(ctx context.Context) {
	h.mu.Lock()
	total := h.contentLength
	known := h.contentLengthKnown
	h.mu.Unlock()

	if known {
		for {
			h.mu.Lock()
			gaps := h.downloaded.Gaps(0, total)
			h.mu.Unlock()
			if len(gaps) == 0 {
				break
			}
			gap := gaps[0]
			if !h.fetchRange(ctx, gap.Start, gap.End) {
				break
			}
		}
	}

	h.mu.Lock()
	h.done = true
	h.mu.Unlock()
	h.cond.Broadcast()
}

// fetchRange issues one bounded GET for [start, end) and writes it in,
// returning false on unrecoverable failure.
func (h *Handle) fetchRange(ctx context.Context, start, end int64) bool {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		h.fail(err)
		return false
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end-1))
	resp, err := h.client.Do(req)
	if err != nil {
		h.fail(err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		h.fail(fmt.Errorf("http %d filling gap [%d,%d)", resp.StatusCode, start, end))
		return false
	}
	h.copyIntoBounded(ctx, resp.Body, start, end)
	return true
}

func (h *Handle) copyIntoBounded(ctx context.Context, r io.Reader, at, end int64) {
	buf := make([]byte, readChunkSize)
	for at < end {
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := h.tempFile.WriteAt(buf[:n], at); werr != nil {
				h.fail(werr)
				return
			}
			h.mu.Lock()
			h.downloaded.Insert(at, at+int64(n))
			at += int64(n)
			h.mu.Unlock()
			h.cond.Broadcast()
		}
		if rerr != nil {
			return
		}
	}
}

func (h *Handle) fail(err error) {
	h.mu.Lock()
	h.err = err
	h.done = true
	h.mu.Unlock()
	h.cond.Broadcast()
	logging.Errorf("streaming", "%s: %v", h.url, err)
}

// Read implements mediasource.Source: blocks until at least one byte at the
// current position is on disk, or the stream is done.
func (h *Handle) Read(p []byte) (int, error) {
	h.mu.Lock()
	pos := h.position
	for !h.downloaded.Contains(pos) {
		if h.err != nil {
			err := h.err
			h.mu.Unlock()
			return 0, err
		}
		if h.done {
			h.mu.Unlock()
			return 0, io.EOF
		}
		h.requestedPosition = pos
		h.cond.Wait()
	}
	h.mu.Unlock()

	n, err := h.tempFile.ReadAt(p, pos)
	if n > 0 {
		h.mu.Lock()
		h.position += int64(n)
		h.mu.Unlock()
	}
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

// Seek implements mediasource.Source. For a live-radio handle seeking is
// unsupported (IsSeekable reports false and callers should not call it).
func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	h.mu.Lock()
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = h.position + offset
	case io.SeekEnd:
		target = h.contentLength + offset
	}
	h.position = target
	head := h.downloaded.Max()
	missing := !h.downloaded.Contains(target)
	h.requestedPosition = target
	h.mu.Unlock()

	if missing {
		// Small forward gaps are left to the sequential downloader to
		// catch up naturally; a large jump (or any backward seek past the
		// download head) gets its own range request so the handle doesn't
		// block until the whole stream finishes, per §4.8's "optionally
		// send a seek(pos) to the downloader (if the gap is large)".
		if target < head || target-head > seekGapRerequestThreshold {
			go h.fetchRange(h.ctx, target, target+prefetchThreshold)
		}
		h.cond.Broadcast()
	}
	return target, nil
}

// ByteLen reports content_length once the prefetch phase has resolved it.
func (h *Handle) ByteLen() (int64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.contentLength, h.contentLengthKnown
}

func (h *Handle) IsSeekable() bool { return !h.live }

// Close aborts the downloader and releases the temp file, per §5's shutdown
// contract ("StreamedFile aborts its downloader on drop").
func (h *Handle) Close() error {
	h.cancel()
	h.mu.Lock()
	h.done = true
	h.mu.Unlock()
	h.cond.Broadcast()
	name := h.tempFile.Name()
	_ = h.tempFile.Close()
	return os.Remove(name)
}

// icyStripper removes periodic ICY metadata blocks from a live-radio
// response body before audio bytes reach the temp file, so the decoder
// never sees a StreamTitle='...' block spliced into the PCM byte stream.
// Grounded on glebovdev-somafm-cli's readNetworkStream metadata parsing.
type icyStripper struct {
	r          io.Reader
	metaInt    int
	sinceMeta  int
	onTitle    func(string)
}

func newICYStripper(r io.Reader, metaInt int, onTitle func(string)) io.Reader {
	return &icyStripper{r: r, metaInt: metaInt, onTitle: onTitle}
}

func (s *icyStripper) Read(p []byte) (int, error) {
	remaining := s.metaInt - s.sinceMeta
	if remaining <= 0 {
		if err := s.consumeMetaBlock(); err != nil {
			return 0, err
		}
		remaining = s.metaInt
	}
	if len(p) > remaining {
		p = p[:remaining]
	}
	n, err := s.r.Read(p)
	s.sinceMeta += n
	return n, err
}

func (s *icyStripper) consumeMetaBlock() error {
	var lenByte [1]byte
	if _, err := io.ReadFull(s.r, lenByte[:]); err != nil {
		return err
	}
	blockLen := int(lenByte[0]) * 16
	s.sinceMeta = 0
	if blockLen == 0 {
		return nil
	}
	buf := make([]byte, blockLen)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return err
	}
	if s.onTitle != nil {
		if title, ok := parseStreamTitle(string(buf)); ok {
			s.onTitle(title)
		}
	}
	return nil
}

func parseStreamTitle(meta string) (string, bool) {
	const key = "StreamTitle='"
	idx := strings.Index(meta, key)
	if idx < 0 {
		return "", false
	}
	rest := meta[idx+len(key):]
	end := strings.Index(rest, "';")
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}
