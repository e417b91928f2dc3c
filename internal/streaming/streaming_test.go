package streaming

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpenPrefetchesAndReads(t *testing.T) {
	payload := strings.Repeat("a", 400*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h, err := Open(ctx, srv.URL, Options{})
	require.NoError(t, err)
	defer h.Close()

	length, ok := h.ByteLen()
	require.True(t, ok)
	require.Equal(t, int64(len(payload)), length)

	buf := make([]byte, 1024)
	n, err := h.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 1024, n)
}

// TestSeekIntoUndownloadedRegion models S5: seeking ahead of the download
// head must unblock once the gap-filling request lands, not block forever.
func TestSeekIntoUndownloadedRegion(t *testing.T) {
	payload := strings.Repeat("b", 2*1024*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rangeHeader := r.Header.Get("Range")
		if rangeHeader == "" {
			w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(payload))
			return
		}
		start, end := parseRangeHeader(rangeHeader, len(payload))
		w.Header().Set("Content-Range", "bytes */"+strconv.Itoa(len(payload)))
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte(payload[start : end+1]))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h, err := Open(ctx, srv.URL, Options{})
	require.NoError(t, err)
	defer h.Close()

	_, err = h.Seek(1_500_000, 0)
	require.NoError(t, err)

	buf := make([]byte, 16)
	deadline := time.Now().Add(4 * time.Second)
	for {
		n, rerr := h.Read(buf)
		if n > 0 {
			break
		}
		if rerr != nil || time.Now().After(deadline) {
			t.Fatalf("seeked read did not unblock: n=%d err=%v", n, rerr)
		}
	}
}

// parseRangeHeader parses "bytes=START-END" with END optional, clamping to
// the payload length, just enough to serve this test's fake server.
func parseRangeHeader(header string, total int) (start, end int) {
	s := strings.TrimPrefix(header, "bytes=")
	parts := strings.SplitN(s, "-", 2)
	if len(parts) > 0 && parts[0] != "" {
		start, _ = strconv.Atoi(parts[0])
	}
	end = total - 1
	if len(parts) > 1 && parts[1] != "" {
		if v, err := strconv.Atoi(parts[1]); err == nil && v < end {
			end = v
		}
	}
	return start, end
}
