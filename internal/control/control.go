// Package control implements the command-facade process boundary from
// SPEC_FULL.md §6.1: a pub/sub Bus of player.UpdateEvent fanned out to
// observers, sitting in front of player.Core's command methods.
//
// Grounded on the teacher's internal/handlers/event_bus.go (Subscribe /
// Publish / Unsubscribe, goroutine-per-handler dispatch) generalized from
// its ad hoc Publish(topic string, data interface{}) shape to the closed
// player.UpdateEvent sum type, and on pkg/types/interfaces.go's
// PlayerControl interface, whose method shape (Play/Pause/Next/Previous/
// SetVolume/Seek) informed this package's broader command set from §6.1.
package control

import (
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/tramhao/termusic-sub005/internal/player"
	"github.com/tramhao/termusic-sub005/internal/playerr"
	"github.com/tramhao/termusic-sub005/pkg/track"
)

// Handler receives UpdateEvents published on the Bus.
type Handler func(player.UpdateEvent)

// Bus fans out player.Core's UpdateEvents to subscribed observers,
// mirroring event_bus.go's topic-keyed subscriber map but keyed by
// UpdateEvent.Kind instead of an arbitrary string, and "" subscribes to
// every kind.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
}

// NewBus constructs an empty Bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers handler for events of the given kind, or every kind
// when kind is "".
func (b *Bus) Subscribe(kind string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[kind] = append(b.subscribers[kind], handler)
}

// Unsubscribe removes all handlers registered for kind.
func (b *Bus) Unsubscribe(kind string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, kind)
}

// publish dispatches ev to handlers subscribed to ev.Kind and to the
// wildcard ("") subscribers, each on its own goroutine, matching
// event_bus.go's Publish.
func (b *Bus) publish(ev player.UpdateEvent) {
	b.mu.RLock()
	handlers := append(append([]Handler{}, b.subscribers[ev.Kind]...), b.subscribers[""]...)
	b.mu.RUnlock()
	for _, h := range handlers {
		go h(ev)
	}
}

// Pump drains core.Events() and republishes each on the Bus until the
// events channel closes. Run this on its own goroutine.
func (b *Bus) Pump(core *player.Core) {
	for ev := range core.Events() {
		b.publish(ev)
	}
}

// Facade exposes the §6.1 command vocabulary over a player.Core plus a
// fuzzy-matching helper for name-based track lookup (PlayByName), the one
// teacher dependency (fuzzysearch) this package was built to exercise.
type Facade struct {
	core     *player.Core
	playlist func() []track.Track
}

// NewFacade wraps core. playlistFn supplies the current track list for
// fuzzy name-based lookups (PlayerCore itself doesn't expose its playlist
// contents directly; the caller's own snapshot is used).
func NewFacade(core *player.Core, playlistFn func() []track.Track) *Facade {
	return &Facade{core: core, playlist: playlistFn}
}

func (f *Facade) TogglePause()   { f.core.TogglePause() }
func (f *Facade) SkipNext()      { f.core.SkipNext() }
func (f *Facade) SkipPrevious()  { f.core.SkipPrevious() }
func (f *Facade) CycleLoop()     { f.core.CycleLoop() }
func (f *Facade) ToggleGapless() { f.core.ToggleGapless() }

func (f *Facade) PlaySpecific(index int) { f.core.PlaySpecific(index) }

func (f *Facade) SeekForward(delta time.Duration)  { f.core.SeekRelative(delta) }
func (f *Facade) SeekBackward(delta time.Duration) { f.core.SeekRelative(-delta) }

func (f *Facade) VolumeUp(step float64)   { f.core.AdjustVolume(step) }
func (f *Facade) VolumeDown(step float64) { f.core.AdjustVolume(-step) }
func (f *Facade) SetVolume(v float64)     { f.core.SetVolume(v) }

func (f *Facade) SpeedUp(step float64)   { f.core.AdjustSpeed(step) }
func (f *Facade) SpeedDown(step float64) { f.core.AdjustSpeed(-step) }

func (f *Facade) AddTrack(t track.Track) { f.core.AddTrack(t) }
func (f *Facade) RemoveTrack(index int)  { f.core.RemoveTrack(index) }
func (f *Facade) SwapTracks(i, j int)    { f.core.SwapTracks(i, j) }
func (f *Facade) Shuffle()               { f.core.Shuffle() }
func (f *Facade) RemoveDeleted()         { f.core.RemoveDeleted() }
func (f *Facade) ReloadConfig()          { f.core.ReloadConfig() }
func (f *Facade) ReloadPlaylist()        { f.core.ReloadPlaylist() }

func (f *Facade) GetProgress() player.Progress { return f.core.GetProgress() }

// PlayByName fuzzy-matches name against the current playlist's track
// titles and plays the closest match, using lithammer/fuzzysearch the way
// a terminal client would implement a "play <partial title>" command.
func (f *Facade) PlayByName(name string) error {
	tracks := f.playlist()
	best := -1
	bestRank := -1
	for i, tr := range tracks {
		if !fuzzy.MatchFold(name, tr.Meta.Title) {
			continue
		}
		rank := fuzzy.RankMatchFold(name, tr.Meta.Title)
		if rank >= 0 && (best == -1 || rank < bestRank) {
			best = i
			bestRank = rank
		}
	}
	if best == -1 {
		return &playerr.OutOfBounds{Index: -1, Len: len(tracks)}
	}
	f.core.PlaySpecific(best)
	return nil
}
