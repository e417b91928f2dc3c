// Package player implements C7: the single-owner playback engine that
// orchestrates C1-C6, running on its own goroutine and consuming commands
// from a buffered channel, per SPEC_FULL.md §4.7 and §5.
//
// Grounded on original_source/playback/src/rusty_backend/sink.rs's Sink:
// Controls (now internal/sourcechain.Controls), append's two periodic-access
// closures (progress reporting and control-sync) become Chain's advanceClocks
// plus this package's seek-request polling, and message_on_end's completion
// watcher becomes the goroutine draining SinkQueue.Append's done channel.
// The engine-thread/command-channel split (§5) follows the teacher's
// single-owner Player struct (internal/audio/player.go), whose every mutation
// goes through its own methods rather than being reached into from outside.
package player

import (
	"context"
	"os"
	"time"

	"github.com/gopxl/beep"

	"github.com/tramhao/termusic-sub005/internal/decoder"
	"github.com/tramhao/termusic-sub005/internal/library"
	"github.com/tramhao/termusic-sub005/internal/logging"
	"github.com/tramhao/termusic-sub005/internal/mediasource"
	"github.com/tramhao/termusic-sub005/internal/output"
	"github.com/tramhao/termusic-sub005/internal/playerr"
	"github.com/tramhao/termusic-sub005/internal/playlist"
	"github.com/tramhao/termusic-sub005/internal/sinkqueue"
	"github.com/tramhao/termusic-sub005/internal/sourcechain"
	"github.com/tramhao/termusic-sub005/internal/streaming"
	"github.com/tramhao/termusic-sub005/pkg/track"
)

// gaplessPrefetchWindow is the spec's named constant for how far from the
// end of a track the engine starts loading its successor, resolved in
// SPEC_FULL.md §9 from the original's "close to the end" wording.
const gaplessPrefetchWindow = 500 * time.Millisecond

// queueSampleRate is the one rate every chain fed into the SinkQueue is
// normalized to before it is appended, regardless of the decoded track's
// native rate. The SinkQueue has no per-segment resampler the way rodio's
// UniformSourceIterator does (it just concatenates beep.Streamers), so
// mixed-rate tracks back to back would otherwise play at the wrong pitch
// once OutputStream resamples the queue's output assuming a single fixed
// input rate. Normalizing here keeps OutputStream's device-rate resample
// the only resample step that crosses a device-format boundary, per
// SPEC_FULL.md §9(a) and DESIGN.md.
const queueSampleRate = beep.SampleRate(44100)

// queueResampleQuality matches output.resampleQuality: beep.Resample's
// quality knob, 4 of 6.
const queueResampleQuality = 4

// Progress is a point-in-time snapshot of playback position.
type Progress struct {
	PositionMs   uint32
	TotalMs      uint32
	CurrentIndex int
	HasCurrent   bool
	Status       track.RunningStatus
}

// UpdateEvent is published on every state transition the engine makes, for
// the control façade (internal/control) to fan out to observers.
type UpdateEvent struct {
	Kind      string
	Track     *track.Track
	Index     int
	Progress  *Progress
	Status    track.RunningStatus
	Volume    float64
	Speed     float64
	LoopMode  track.LoopMode
	GaplessOn bool
}

const (
	EventTrackChanged    = "track_changed"
	EventProgressTick    = "progress_tick"
	EventStatusChanged   = "status_changed"
	EventVolumeChanged   = "volume_changed"
	EventSpeedChanged    = "speed_changed"
	EventLoopModeChanged = "loop_mode_changed"
	EventGaplessChanged  = "gapless_changed"
	EventPlaylistChanged = "playlist_changed"
)

type command struct {
	kind   string
	arg    interface{}
	done   chan struct{}
	result chan Progress
}

const (
	cmdPlaySpecific   = "play_specific"
	cmdTogglePause    = "toggle_pause"
	cmdSkipNext       = "skip_next"
	cmdSkipPrev       = "skip_previous"
	cmdSeek           = "seek"
	cmdSeekRelative   = "seek_relative"
	cmdSetVolume      = "set_volume"
	cmdAdjustVolume   = "adjust_volume"
	cmdSetSpeed       = "set_speed"
	cmdAdjustSpeed    = "adjust_speed"
	cmdCycleLoop      = "cycle_loop"
	cmdToggleGapless  = "toggle_gapless"
	cmdAddTrack       = "add_track"
	cmdRemoveTrack    = "remove_track"
	cmdSwapTracks     = "swap_tracks"
	cmdShuffle        = "shuffle"
	cmdRemoveDeleted  = "remove_deleted"
	cmdReloadConfig   = "reload_config"
	cmdReloadPlaylist = "reload_playlist"
	cmdGetProgress    = "get_progress"
	cmdShutdown       = "shutdown"
)

// swapArgs carries the pair of indices SwapTracks dispatches.
type swapArgs struct{ i, j int }

// Core is C7: the engine goroutine, its command channel, and the owned
// playlist/output/sinkqueue state. All fields below this point are touched
// only from the run() goroutine; every external interaction happens through
// the command channel or the published event channel.
type Core struct {
	cmds   chan command
	events chan UpdateEvent

	playlist *playlist.Playlist
	library  library.Collaborator
	stream   *output.Stream
	queue    *sinkqueue.Queue

	gapless bool
	volume  float64
	speed   float64

	active   *trackPlayback
	prefetch *trackPlayback

	debug bool
}

// trackPlayback tracks one queued track's decoder, chain, and the done
// channel SinkQueue signals on completion.
type trackPlayback struct {
	tr       track.Track
	dec      *decoder.Decoder
	controls *sourcechain.Controls
	done     <-chan struct{}
	totalMs  uint32

	// prefetchIndex is the playlist index maybePrefetch previewed when it
	// built this trackPlayback as a successor. onActiveFinished commits to
	// exactly this index instead of calling Playlist.Advance a second,
	// independently-randomized time.
	prefetchIndex int
}

// Options configures a new Core.
type Options struct {
	Library library.Collaborator
	Stream  *output.Stream
	Gapless bool
	Volume  float64
	Speed   float64
	Debug   bool
}

// New constructs a Core with an empty command queue; call Run in its own
// goroutine to start the engine.
func New(opts Options) (*Core, error) {
	tracks, err := opts.Library.LoadPlaylist()
	if err != nil {
		return nil, err
	}
	loopMode, err := opts.Library.LoadLoopMode()
	if err != nil {
		loopMode = track.LoopPlaylist
	}

	volume := opts.Volume
	if volume <= 0 {
		volume = 1
	}
	speed := opts.Speed
	if speed <= 0 {
		speed = 1
	}

	c := &Core{
		cmds:     make(chan command, 32),
		events:   make(chan UpdateEvent, 64),
		playlist: playlist.New(tracks, loopMode),
		library:  opts.Library,
		stream:   opts.Stream,
		queue:    sinkqueue.New(true),
		gapless:  opts.Gapless,
		volume:   volume,
		speed:    speed,
		debug:    opts.Debug,
	}
	return c, nil
}

// Events returns the channel of UpdateEvents for observers to range over.
func (c *Core) Events() <-chan UpdateEvent { return c.events }

func (c *Core) publish(ev UpdateEvent) {
	select {
	case c.events <- ev:
	default:
		logging.Debugf(c.debug, "player", "dropping event %s: observer channel full", ev.Kind)
	}
}

// Run is the engine goroutine's entry point. It binds the SinkQueue to the
// output device and processes commands until ctx is cancelled or Shutdown
// is called.
func (c *Core) Run(ctx context.Context) {
	c.stream.Bind(c.queue, queueSampleRate)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-c.cmds:
			c.handle(cmd)
			if cmd.done != nil {
				close(cmd.done)
			}
			if cmd.kind == cmdShutdown {
				return
			}
		case <-ticker.C:
			c.tick()
		}
	}
}

func (c *Core) send(kind string, arg interface{}) {
	done := make(chan struct{})
	c.cmds <- command{kind: kind, arg: arg, done: done}
	<-done
}

// PlaySpecific sets the cursor to index and begins playback of that track.
func (c *Core) PlaySpecific(index int) { c.send(cmdPlaySpecific, index) }

// TogglePause flips paused state without affecting the decode position.
func (c *Core) TogglePause() { c.send(cmdTogglePause, nil) }

// SkipNext advances the playlist per loop mode and plays the result.
func (c *Core) SkipNext() { c.send(cmdSkipNext, nil) }

// SkipPrevious retreats the playlist per loop mode and plays the result.
func (c *Core) SkipPrevious() { c.send(cmdSkipPrev, nil) }

// Seek requests a seek to the given absolute offset within the active track.
func (c *Core) Seek(to time.Duration) { c.send(cmdSeek, to) }

// SeekRelative requests a seek delta seconds forward (or backward, if
// negative) from the active track's current position.
func (c *Core) SeekRelative(delta time.Duration) { c.send(cmdSeekRelative, delta) }

// SetVolume clamps v to [0, 1] and applies it to the active Controls.
func (c *Core) SetVolume(v float64) { c.send(cmdSetVolume, v) }

// AdjustVolume clamps (currentVolume + delta) to [0, 1] and applies it,
// for VolumeUp/VolumeDown's step-based adjustment (§6.1).
func (c *Core) AdjustVolume(delta float64) { c.send(cmdAdjustVolume, delta) }

// SetSpeed applies a new playback speed multiplier to the active Controls.
func (c *Core) SetSpeed(v float64) { c.send(cmdSetSpeed, v) }

// AdjustSpeed applies (currentSpeed + delta), floored at a small positive
// value so speed never reaches zero or goes negative.
func (c *Core) AdjustSpeed(delta float64) { c.send(cmdAdjustSpeed, delta) }

// CycleLoop rotates the loop mode per track.LoopMode.Cycle.
func (c *Core) CycleLoop() { c.send(cmdCycleLoop, nil) }

// ToggleGapless flips the gapless-prefetch rule.
func (c *Core) ToggleGapless() { c.send(cmdToggleGapless, nil) }

// Shutdown stops the engine goroutine.
func (c *Core) Shutdown() { c.send(cmdShutdown, nil) }

// AddTrack appends t to the playlist and persists the new playlist via the
// library collaborator.
func (c *Core) AddTrack(t track.Track) { c.send(cmdAddTrack, t) }

// RemoveTrack deletes the track at index from the playlist.
func (c *Core) RemoveTrack(index int) { c.send(cmdRemoveTrack, index) }

// SwapTracks exchanges the tracks at i and j.
func (c *Core) SwapTracks(i, j int) { c.send(cmdSwapTracks, swapArgs{i: i, j: j}) }

// Shuffle randomizes playlist order in place.
func (c *Core) Shuffle() { c.send(cmdShuffle, nil) }

// RemoveDeleted drops every local-file track whose underlying file no
// longer exists on disk.
func (c *Core) RemoveDeleted() { c.send(cmdRemoveDeleted, nil) }

// ReloadConfig re-reads the collaborator-persisted volume and loop mode,
// applying whatever changed underneath the running engine.
func (c *Core) ReloadConfig() { c.send(cmdReloadConfig, nil) }

// ReloadPlaylist re-reads the playlist from the library collaborator,
// discarding any in-memory-only state.
func (c *Core) ReloadPlaylist() { c.send(cmdReloadPlaylist, nil) }

// GetProgress returns a synchronous snapshot of the active track's
// position, matching §4.7's get_progress operation.
func (c *Core) GetProgress() Progress {
	result := make(chan Progress, 1)
	done := make(chan struct{})
	c.cmds <- command{kind: cmdGetProgress, done: done, result: result}
	<-done
	return <-result
}

func (c *Core) handle(cmd command) {
	switch cmd.kind {
	case cmdPlaySpecific:
		index := cmd.arg.(int)
		if err := c.playlist.SetCurrent(index); err != nil {
			logging.Errorf("player", "play_specific(%d): %v", index, err)
			return
		}
		c.stopActive()
		c.loadCurrent()
	case cmdTogglePause:
		if c.active != nil {
			c.active.controls.SetPaused(!c.active.controls.Paused())
			c.publishStatus()
		}
	case cmdSkipNext:
		c.stopActive()
		if c.playlist.Advance() {
			c.loadCurrent()
		} else {
			c.publishStatus()
		}
	case cmdSkipPrev:
		c.stopActive()
		if c.playlist.Retreat() {
			c.loadCurrent()
		} else {
			c.publishStatus()
		}
	case cmdSeek:
		if c.active != nil {
			c.active.controls.SeekTo(cmd.arg.(time.Duration))
		}
	case cmdSeekRelative:
		if c.active != nil {
			target := c.active.controls.Position() + cmd.arg.(time.Duration)
			if target < 0 {
				target = 0
			}
			c.active.controls.SeekTo(target)
		}
	case cmdSetVolume:
		c.applyVolume(clamp01(cmd.arg.(float64)))
	case cmdAdjustVolume:
		c.applyVolume(clamp01(c.volume + cmd.arg.(float64)))
	case cmdSetSpeed:
		c.applySpeed(cmd.arg.(float64))
	case cmdAdjustSpeed:
		next := c.speed + cmd.arg.(float64)
		if next < 0.1 {
			next = 0.1
		}
		c.applySpeed(next)
	case cmdCycleLoop:
		mode := c.playlist.CycleLoop()
		_ = c.library.SaveLoopMode(mode)
		c.publish(UpdateEvent{Kind: EventLoopModeChanged, LoopMode: mode})
	case cmdToggleGapless:
		c.gapless = !c.gapless
		c.publish(UpdateEvent{Kind: EventGaplessChanged, GaplessOn: c.gapless})
	case cmdAddTrack:
		c.playlist.Append(cmd.arg.(track.Track))
		c.persistPlaylist()
		c.publish(UpdateEvent{Kind: EventPlaylistChanged})
	case cmdRemoveTrack:
		index := cmd.arg.(int)
		if err := c.playlist.Remove(index); err != nil {
			logging.Errorf("player", "remove_track(%d): %v", index, err)
			return
		}
		c.persistPlaylist()
		c.publish(UpdateEvent{Kind: EventPlaylistChanged})
	case cmdSwapTracks:
		args := cmd.arg.(swapArgs)
		if err := c.playlist.Swap(args.i, args.j); err != nil {
			logging.Errorf("player", "swap_tracks(%d, %d): %v", args.i, args.j, err)
			return
		}
		c.persistPlaylist()
		c.publish(UpdateEvent{Kind: EventPlaylistChanged})
	case cmdShuffle:
		c.playlist.Shuffle()
		c.persistPlaylist()
		c.publish(UpdateEvent{Kind: EventPlaylistChanged})
	case cmdRemoveDeleted:
		c.removeDeleted()
	case cmdReloadConfig:
		c.reloadConfig()
	case cmdReloadPlaylist:
		c.reloadPlaylist()
	case cmdGetProgress:
		if cmd.result != nil {
			cmd.result <- c.currentProgress()
		}
	}
}

// persistPlaylist writes the playlist's current track order back through
// the library collaborator, matching §4.6.1: the Playlist never opens a
// file or DB connection itself.
func (c *Core) persistPlaylist() {
	if err := c.library.SavePlaylist(c.playlist.Tracks()); err != nil {
		logging.Errorf("player", "save_playlist: %v", err)
	}
}

// removeDeleted drops every local-file track whose path no longer resolves
// on disk. HTTP(S)/podcast locators aren't checked: their absence can't be
// determined synchronously without a network round trip.
func (c *Core) removeDeleted() {
	tracks := c.playlist.Tracks()
	removedAny := false
	for i := len(tracks) - 1; i >= 0; i-- {
		tr := tracks[i]
		if tr.Locator.Kind != track.LocalFile {
			continue
		}
		if _, err := os.Stat(tr.Locator.Path); !os.IsNotExist(err) {
			continue
		}
		if err := c.playlist.Remove(i); err != nil {
			logging.Errorf("player", "remove_deleted(%d): %v", i, err)
			continue
		}
		removedAny = true
	}
	if removedAny {
		c.persistPlaylist()
		c.publish(UpdateEvent{Kind: EventPlaylistChanged})
	}
}

// reloadConfig re-reads the two config-provider fields the library
// collaborator actually persists (volume, loop mode) and applies whatever
// changed. Speed and gapless aren't collaborator-persisted fields in this
// module, so ReloadConfig has nothing to re-read for them.
func (c *Core) reloadConfig() {
	if v, err := c.library.LoadVolume(); err != nil {
		logging.Errorf("player", "reload_config: load volume: %v", err)
	} else {
		c.applyVolume(clamp01(v))
	}
	if mode, err := c.library.LoadLoopMode(); err != nil {
		logging.Errorf("player", "reload_config: load loop mode: %v", err)
	} else {
		c.playlist.SetLoopMode(mode)
		c.publish(UpdateEvent{Kind: EventLoopModeChanged, LoopMode: mode})
	}
}

// reloadPlaylist discards the in-memory playlist and rebuilds it from the
// library collaborator, preserving the current loop mode.
func (c *Core) reloadPlaylist() {
	tracks, err := c.library.LoadPlaylist()
	if err != nil {
		logging.Errorf("player", "reload_playlist: %v", err)
		return
	}
	c.playlist = playlist.New(tracks, c.playlist.LoopMode())
	c.publish(UpdateEvent{Kind: EventPlaylistChanged})
}

// currentProgress snapshots the active track's position without publishing
// an event, for GetProgress's synchronous round trip.
func (c *Core) currentProgress() Progress {
	if c.active == nil {
		return Progress{Status: track.Stopped}
	}
	idx, _ := c.playlist.CurrentIndex()
	status := track.Playing
	if c.active.controls.Paused() {
		status = track.Paused
	}
	return Progress{
		PositionMs:   uint32(c.active.controls.Position().Milliseconds()),
		TotalMs:      c.active.totalMs,
		CurrentIndex: idx,
		HasCurrent:   true,
		Status:       status,
	}
}

// tick runs on the 100ms engine timer: applies any pending seek on the
// active track, checks the gapless prefetch window, and emits a progress
// event. This plays the role sink.rs's 5ms control-sync periodic_access
// closure played, at a coarser interval appropriate to a Go timer rather
// than a per-sample-batch callback.
func (c *Core) tick() {
	if c.active == nil {
		return
	}

	if to, pending := c.active.controls.PendingSeek(); pending {
		if _, err := c.active.dec.Seek(uint32(to.Milliseconds())); err != nil {
			logging.Errorf("player", "seek: %v", err)
		}
		c.active.controls.ClearSeek()
	}

	c.maybePrefetch()
	c.publishProgress()

	select {
	case <-c.active.done:
		c.onActiveFinished()
	default:
	}
}

// maybePrefetch implements the gapless prefetch rule from §4.7: once the
// active chain's elapsed position crosses (total - gaplessPrefetchWindow)
// and no successor has been queued yet, load the next track now so the
// SinkQueue's boundary rule can hand off without a gap.
func (c *Core) maybePrefetch() {
	if !c.gapless || c.prefetch != nil || c.active == nil || c.active.totalMs == 0 {
		return
	}
	elapsed := c.active.controls.Position()
	remaining := time.Duration(c.active.totalMs)*time.Millisecond - elapsed
	if remaining > gaplessPrefetchWindow {
		return
	}

	saved := *c.playlist
	if !c.playlist.Advance() {
		return
	}
	nextIndex, _ := c.playlist.CurrentIndex()
	next, ok := c.playlist.Current()
	*c.playlist = saved
	if !ok {
		return
	}

	pb, err := c.buildPlayback(next)
	if err != nil {
		logging.Errorf("player", "prefetch %s: %v", next.ID, err)
		return
	}
	pb.prefetchIndex = nextIndex
	c.prefetch = pb
}

func (c *Core) onActiveFinished() {
	if c.active != nil {
		c.commitPosition(c.active)
	}
	if c.prefetch != nil {
		if err := c.playlist.SetCurrent(c.prefetch.prefetchIndex); err != nil {
			logging.Errorf("player", "onActiveFinished: commit prefetch index %d: %v", c.prefetch.prefetchIndex, err)
		}
		c.active = c.prefetch
		c.prefetch = nil
		c.publishTrackChanged()
		c.publishStatus()
		return
	}
	if c.playlist.Advance() {
		c.loadCurrent()
		return
	}
	c.active = nil
	c.publishStatus()
}

// commitPosition records the finishing track's last-played position with
// the library collaborator, per §4.7's end-of-stream step (a): this must
// happen before the playlist advances past it.
func (c *Core) commitPosition(pb *trackPlayback) {
	posMs := uint32(pb.controls.Position().Milliseconds())
	if err := c.library.CommitLastPosition(pb.tr.ID, posMs); err != nil {
		logging.Errorf("player", "commit_last_position(%s): %v", pb.tr.ID, err)
	}
}

func (c *Core) stopActive() {
	if c.active != nil {
		c.active.controls.Stop()
		c.active = nil
	}
	if c.prefetch != nil {
		c.prefetch.controls.Stop()
		c.prefetch = nil
	}
}

// loadCurrent builds playback for the playlist's current track and always
// reports a status transition, so every call site (play_specific, the
// skip_next/skip_previous success paths, and onActiveFinished's fallback)
// gets a StatusChanged event without publishing it separately.
func (c *Core) loadCurrent() {
	tr, ok := c.playlist.Current()
	if !ok {
		c.active = nil
		c.publishStatus()
		return
	}
	pb, err := c.buildPlayback(tr)
	if err != nil {
		logging.Errorf("player", "load %s: %v", tr.ID, err)
		c.active = nil
		c.publishStatus()
		return
	}
	c.active = pb
	c.publishTrackChanged()
	c.publishStatus()
}

func (c *Core) buildPlayback(tr track.Track) (*trackPlayback, error) {
	media, err := openMediaSource(tr)
	if err != nil {
		return nil, err
	}
	dec, err := decoder.New(media)
	if err != nil {
		return nil, err
	}

	controls := sourcechain.NewControls()
	controls.SetVolume(c.volume)
	controls.SetSpeed(c.speed)

	// Route decoding through NextPacket rather than the raw
	// beep.StreamSeekCloser, so the skip-and-retry recovery it implements
	// (§4.2) actually participates in playback instead of being dead code
	// only a direct unit test could reach.
	var src beep.Streamer = decoder.NewPacketStreamer(dec, func() {
		logging.Errorf("player", "skipped corrupt packet in %s", tr.ID)
	})

	// Every chain entering the SinkQueue is normalized to queueSampleRate
	// before it's wrapped, so OutputStream's single device-rate resample
	// is valid even when tracks have differing native rates (see
	// queueSampleRate's doc comment and DESIGN.md §9(a)).
	if nativeRate := dec.Format().SampleRate; nativeRate != queueSampleRate {
		src = beep.Resample(queueResampleQuality, nativeRate, queueSampleRate, src)
	}

	chain := sourcechain.Wrap(src, queueSampleRate, controls, nil)
	done := c.queue.Append(chain)

	totalMs := uint32(0)
	if tr.Meta.Duration > 0 {
		totalMs = uint32(tr.Meta.Duration.Milliseconds())
	}

	return &trackPlayback{tr: tr, dec: dec, controls: controls, done: done, totalMs: totalMs}, nil
}

// openMediaSource resolves a Track's locator to a C1 MediaSource, handling
// local files and HTTP(S) streams via internal/streaming.
func openMediaSource(tr track.Track) (mediasource.Source, error) {
	switch tr.Locator.Kind {
	case track.LocalFile:
		return mediasource.OpenFile(tr.Locator.Path)
	case track.HTTPStream, track.PodcastStream:
		ctx, cancel := context.WithCancel(context.Background())
		h, err := streaming.Open(ctx, tr.Locator.URL, streaming.Options{Live: tr.Type == track.LiveRadio})
		if err != nil {
			cancel()
			return nil, err
		}
		return h, nil
	default:
		return nil, &playerr.IoError{Op: "open", Err: playerr.ErrUnknownLocatorKind}
	}
}

func (c *Core) publishTrackChanged() {
	idx, _ := c.playlist.CurrentIndex()
	tr := c.active.tr
	c.publish(UpdateEvent{Kind: EventTrackChanged, Track: &tr, Index: idx})
}

func (c *Core) publishStatus() {
	status := track.Stopped
	if c.active != nil {
		status = track.Playing
		if c.active.controls.Paused() {
			status = track.Paused
		}
	}
	c.publish(UpdateEvent{Kind: EventStatusChanged, Status: status})
}

func (c *Core) publishProgress() {
	if c.active == nil {
		return
	}
	progress := c.currentProgress()
	c.publish(UpdateEvent{Kind: EventProgressTick, Progress: &progress})
}

func (c *Core) applyVolume(v float64) {
	c.volume = v
	if c.active != nil {
		c.active.controls.SetVolume(v)
	}
	_ = c.library.SaveVolume(v)
	c.publish(UpdateEvent{Kind: EventVolumeChanged, Volume: v})
}

func (c *Core) applySpeed(v float64) {
	c.speed = v
	if c.active != nil {
		c.active.controls.SetSpeed(v)
	}
	c.publish(UpdateEvent{Kind: EventSpeedChanged, Speed: v})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
