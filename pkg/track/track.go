// Package track defines the data model the playback core operates on: a
// Track handed in from a library collaborator, its locator, and the small
// value types the engine reports back to observers.
package track

import "time"

// MediaType distinguishes playback sources that need different treatment
// from the engine (a live stream has no known length or seek support).
type MediaType int

const (
	Music MediaType = iota
	LiveRadio
	Podcast
)

func (t MediaType) String() string {
	switch t {
	case Music:
		return "music"
	case LiveRadio:
		return "live_radio"
	case Podcast:
		return "podcast"
	default:
		return "unknown"
	}
}

// LocatorKind tells the engine which MediaSource variant to construct.
type LocatorKind int

const (
	LocalFile LocatorKind = iota
	HTTPStream
	PodcastStream
)

// MediaLocator points the engine at bytes: a path on disk or a URL to
// stream from. Exactly one of Path/URL is meaningful, selected by Kind.
type MediaLocator struct {
	Kind LocatorKind
	Path string
	URL  string
}

// Meta is metadata the core treats as opaque and read-only; it never
// fetches or mutates it, only carries it through to UpdateEvent observers.
type Meta struct {
	Title    string
	Artist   string
	Duration time.Duration
}

// Track is an immutable unit of playback handed to the core by a library
// collaborator. ID is opaque to the engine; it is only used as a key when
// calling back into the collaborator (CommitLastPosition).
type Track struct {
	ID      string
	Locator MediaLocator
	Meta    Meta
	Type    MediaType
}

// SignalSpec describes a PCM stream at a point in time.
type SignalSpec struct {
	SampleRate uint32
	Channels   uint16
}

// AudioPacketPosition is the per-packet timestamp the decoder reports.
type AudioPacketPosition struct {
	PositionMs uint32
	Skipped    bool
}

// LoopMode controls Playlist.Advance/Retreat selection.
type LoopMode int

const (
	LoopPlaylist LoopMode = iota
	LoopSingle
	LoopRandom
)

func (m LoopMode) String() string {
	switch m {
	case LoopPlaylist:
		return "playlist"
	case LoopSingle:
		return "single"
	case LoopRandom:
		return "random"
	default:
		return "unknown"
	}
}

// Cycle rotates the loop mode in the order Random -> Playlist -> Single -> Random,
// per SPEC_FULL.md §4.7.
func (m LoopMode) Cycle() LoopMode {
	switch m {
	case LoopRandom:
		return LoopPlaylist
	case LoopPlaylist:
		return LoopSingle
	case LoopSingle:
		return LoopRandom
	default:
		return LoopPlaylist
	}
}

// RunningStatus is the player's coarse lifecycle state.
type RunningStatus int

const (
	Stopped RunningStatus = iota
	Playing
	Paused
)

func (s RunningStatus) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Progress is a snapshot of playback position for an active track.
// Position is nil before the first decoded packet; Total is nil for
// live/unknown-length streams.
type Progress struct {
	Position *time.Duration
	Total    *time.Duration
}
