// Package playerr defines the typed error taxonomy SPEC_FULL.md §7
// requires: each kind is a distinct exported type so callers can branch
// with errors.As instead of matching strings, following the teacher's
// fmt.Errorf("...: %w", err) wrapping convention used throughout
// internal/storage and internal/api.
package playerr

import (
	"errors"
	"fmt"
)

// ErrUnknownLocatorKind is returned when a Track's MediaLocator carries a
// Kind value the media-source resolver doesn't recognize.
var ErrUnknownLocatorKind = errors.New("unknown media locator kind")

// ProbeFailure: empty buffer, unknown magic, or truncated header during
// container probing (C2).
type ProbeFailure struct {
	Reason string
	Err    error
}

func (e *ProbeFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("probe failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("probe failed: %s", e.Reason)
}

func (e *ProbeFailure) Unwrap() error { return e.Err }

// DecoderError: unsupported codec or a bitstream error that survived
// packet-skip recovery.
type DecoderError struct {
	Codec string
	Err   error
}

func (e *DecoderError) Error() string {
	return fmt.Sprintf("decoder error (%s): %v", e.Codec, e.Err)
}

func (e *DecoderError) Unwrap() error { return e.Err }

// UnsupportedFormat: the probe recognized the container but no decoder
// adapter exists for it (see DESIGN.md "Declined format support").
type UnsupportedFormat struct {
	Container string
}

func (e *UnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported container format: %s", e.Container)
}

// IoError: underlying MediaSource read/seek failure.
type IoError struct {
	Op  string
	Err error
}

func (e *IoError) Error() string { return fmt.Sprintf("io error during %s: %v", e.Op, e.Err) }
func (e *IoError) Unwrap() error { return e.Err }

// DeviceError: output device open/callback failure. Fatal to the engine.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string { return fmt.Sprintf("audio device error during %s: %v", e.Op, e.Err) }
func (e *DeviceError) Unwrap() error { return e.Err }

// OutOfBounds: a control command referenced a non-existent playlist index.
// Locally recovered by the caller; never fatal.
type OutOfBounds struct {
	Index, Len int
}

func (e *OutOfBounds) Error() string {
	return fmt.Sprintf("index %d out of bounds for playlist of length %d", e.Index, e.Len)
}

// NetworkError: a StreamedFile downloader request failed. Retried with
// backoff internally; escalated to IoError only after retries are exhausted.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }
