// Package playlist implements C6: an ordered sequence of tracks, a current
// cursor, and a loop mode, per SPEC_FULL.md §4.6.
//
// Grounded on original_source/src/player/playlist.rs's Playlist struct:
// handle_current_track (advance's pop-front/requeue logic per loop mode) and
// cycle_loop_mode (the rotation order, adapted to the spec's
// {Random, Playlist, Single} set rather than the original's
// {Single, Playlist, Queue} — see DESIGN.md) are both ported directly.
// swap_up/swap_down become the single Swap(i, j) operation the spec names.
// Persistence is deliberately NOT included here: per §4.6.1 the Playlist is
// loaded/saved exclusively through the library collaborator interface
// (internal/library), never by opening a file itself, unlike playlist.rs's
// load/save against playlist.log.
package playlist

import (
	"math/rand"

	"github.com/tramhao/termusic-sub005/internal/playerr"
	"github.com/tramhao/termusic-sub005/pkg/track"
)

// Playlist is the ordered sequence of tracks plus a current-index cursor
// and loop mode. It is not safe for concurrent use; PlayerCore (C7) is the
// sole owner and serializes access on its engine goroutine.
type Playlist struct {
	tracks  []track.Track
	current int
	hasCur  bool
	loop    track.LoopMode
}

// New builds a Playlist from an already-loaded track list (typically
// produced by the library collaborator's LoadPlaylist).
func New(tracks []track.Track, loop track.LoopMode) *Playlist {
	p := &Playlist{tracks: tracks, loop: loop}
	if len(tracks) > 0 {
		p.current = 0
		p.hasCur = true
	}
	return p
}

// Tracks returns the playlist's tracks in order. The returned slice must
// not be mutated by the caller; use the Playlist's own mutation methods.
func (p *Playlist) Tracks() []track.Track { return p.tracks }

// Len reports the number of tracks.
func (p *Playlist) Len() int { return len(p.tracks) }

// CurrentIndex returns the current cursor, or (0, false) if unset.
func (p *Playlist) CurrentIndex() (int, bool) { return p.current, p.hasCur }

// Current returns the track at the current cursor, or (Track{}, false) if
// unset.
func (p *Playlist) Current() (track.Track, bool) {
	if !p.hasCur || p.current < 0 || p.current >= len(p.tracks) {
		return track.Track{}, false
	}
	return p.tracks[p.current], true
}

// LoopMode returns the active loop mode.
func (p *Playlist) LoopMode() track.LoopMode { return p.loop }

// Append adds t to the end of the playlist. A pure append never clears the
// current cursor, per §4.6.
func (p *Playlist) Append(t track.Track) {
	p.tracks = append(p.tracks, t)
	if !p.hasCur {
		p.current = len(p.tracks) - 1
		p.hasCur = true
	}
}

// InsertAt inserts t at index, shifting subsequent entries right. Any
// mutation that reorders the element at the current cursor clears it.
func (p *Playlist) InsertAt(index int, t track.Track) error {
	if index < 0 || index > len(p.tracks) {
		return &playerr.OutOfBounds{Index: index, Len: len(p.tracks)}
	}
	p.tracks = append(p.tracks, track.Track{})
	copy(p.tracks[index+1:], p.tracks[index:])
	p.tracks[index] = t
	if p.hasCur && index <= p.current {
		p.clearCurrent()
	}
	return nil
}

// Remove deletes the track at index.
func (p *Playlist) Remove(index int) error {
	if index < 0 || index >= len(p.tracks) {
		return &playerr.OutOfBounds{Index: index, Len: len(p.tracks)}
	}
	p.tracks = append(p.tracks[:index], p.tracks[index+1:]...)
	p.clearCurrent()
	return nil
}

// Swap exchanges the tracks at i and j, matching playlist.rs's
// swap_up/swap_down collapsed into one bidirectional operation.
func (p *Playlist) Swap(i, j int) error {
	if i < 0 || i >= len(p.tracks) || j < 0 || j >= len(p.tracks) {
		return &playerr.OutOfBounds{Index: i, Len: len(p.tracks)}
	}
	p.tracks[i], p.tracks[j] = p.tracks[j], p.tracks[i]
	if p.hasCur && (p.current == i || p.current == j) {
		p.clearCurrent()
	}
	return nil
}

// Clear empties the playlist and its cursor.
func (p *Playlist) Clear() {
	p.tracks = nil
	p.clearCurrent()
}

// Shuffle randomizes track order in place and clears the cursor.
func (p *Playlist) Shuffle() {
	rand.Shuffle(len(p.tracks), func(i, j int) {
		p.tracks[i], p.tracks[j] = p.tracks[j], p.tracks[i]
	})
	p.clearCurrent()
}

// SetCurrent moves the cursor to index directly (PlaySpecific).
func (p *Playlist) SetCurrent(index int) error {
	if index < 0 || index >= len(p.tracks) {
		return &playerr.OutOfBounds{Index: index, Len: len(p.tracks)}
	}
	p.current = index
	p.hasCur = true
	return nil
}

// SetLoopMode overwrites the loop mode directly (used when restoring
// persisted config rather than cycling).
func (p *Playlist) SetLoopMode(m track.LoopMode) { p.loop = m }

// CycleLoop rotates the loop mode Random -> Playlist -> Single -> Random,
// mirroring cycle_loop_mode's rotation shape (adapted to the spec's loop
// set; see track.LoopMode.Cycle).
func (p *Playlist) CycleLoop() track.LoopMode {
	p.loop = p.loop.Cycle()
	return p.loop
}

// Advance moves the cursor forward per the active loop mode, mirroring
// handle_current_track: Playlist wraps to 0, Single repeats, Random picks a
// fresh index (excluding current when len > 1). Returns false when the
// playlist is empty, matching the spec's len==0 -> Stopped rule.
func (p *Playlist) Advance() bool {
	if len(p.tracks) == 0 {
		p.clearCurrent()
		return false
	}
	if !p.hasCur {
		p.current = 0
		p.hasCur = true
		return true
	}
	switch p.loop {
	case track.LoopSingle:
		// current stays put
	case track.LoopRandom:
		p.current = randomIndexExcluding(len(p.tracks), p.current)
	default: // LoopPlaylist
		p.current = (p.current + 1) % len(p.tracks)
	}
	return true
}

// Retreat moves the cursor backward per the active loop mode. Single still
// repeats; Random draws a fresh index (not necessarily the same draw
// Advance would make).
func (p *Playlist) Retreat() bool {
	if len(p.tracks) == 0 {
		p.clearCurrent()
		return false
	}
	if !p.hasCur {
		p.current = 0
		p.hasCur = true
		return true
	}
	switch p.loop {
	case track.LoopSingle:
		// current stays put
	case track.LoopRandom:
		p.current = randomIndexExcluding(len(p.tracks), p.current)
	default: // LoopPlaylist
		p.current = (p.current - 1 + len(p.tracks)) % len(p.tracks)
	}
	return true
}

func (p *Playlist) clearCurrent() {
	p.current = 0
	p.hasCur = false
}

func randomIndexExcluding(n, exclude int) int {
	if n <= 1 {
		return 0
	}
	for {
		i := rand.Intn(n)
		if i != exclude {
			return i
		}
	}
}
