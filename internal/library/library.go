// Package library implements the SQLite-backed collaborator PlayerCore (C7)
// is constructed with, per SPEC_FULL.md §4.6.1 and §6: playlist
// load/save, loop-mode and volume persistence, and last-played-position
// bookkeeping, narrowed from the teacher's music-catalog schema to what a
// playback engine actually needs.
//
// Grounded on the teacher's internal/storage/db.go (connection setup,
// checkClosed guard, debugLog timing wrapper, transaction-with-deferred-
// rollback pattern, and the Scan(dest ...interface{}) error parameter trick
// letting one scan function serve both *sql.Row and *sql.Rows) and
// migrations.go (schema shipped as plain `CREATE TABLE IF NOT EXISTS`
// strings run once at startup, no migration-version table).
package library

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tramhao/termusic-sub005/pkg/track"
)

// Collaborator is the persistence boundary PlayerCore depends on. It never
// touches a file or DB connection itself; this is its sole implementation.
type Collaborator interface {
	LoadPlaylist() ([]track.Track, error)
	SavePlaylist(tracks []track.Track) error
	LoadLoopMode() (track.LoopMode, error)
	SaveLoopMode(mode track.LoopMode) error
	LoadVolume() (float64, error)
	SaveVolume(v float64) error
	CommitLastPosition(trackID string, positionMs uint32) error
	LastPosition(trackID string) (uint32, bool, error)
}

// Database is the sqlite-backed Collaborator implementation.
type Database struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	debug  bool
}

// Open creates (if needed) and migrates the sqlite database at path.
func Open(path string, debug bool) (*Database, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create library directory: %w", err)
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("[library] creating new database at %s", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	for _, pragma := range []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=30000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	d := &Database{db: db, debug: debug}
	if err := d.migrate(); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return d, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS playlist_entries (
	position INTEGER PRIMARY KEY,
	track_id TEXT NOT NULL,
	locator_kind INTEGER NOT NULL,
	locator_path TEXT,
	locator_url TEXT,
	title TEXT,
	artist TEXT,
	duration_ms INTEGER,
	media_type INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS player_state (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS play_history (
	track_id TEXT PRIMARY KEY,
	last_position_ms INTEGER NOT NULL,
	played_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

func (d *Database) migrate() error {
	_, err := d.db.Exec(schema)
	return err
}

func (d *Database) checkClosed() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return fmt.Errorf("library database is closed")
	}
	return nil
}

func (d *Database) debugLog(op string, err error, dur time.Duration) {
	if !d.debug {
		return
	}
	if err != nil {
		log.Printf("[library] %s failed in %v: %v", op, dur, err)
		return
	}
	log.Printf("[library] %s in %v", op, dur)
}

// LoadPlaylist returns the persisted playlist in position order.
func (d *Database) LoadPlaylist() ([]track.Track, error) {
	start := time.Now()
	var err error
	defer func() { d.debugLog("LoadPlaylist", err, time.Since(start)) }()

	if err = d.checkClosed(); err != nil {
		return nil, err
	}

	rows, queryErr := d.db.QueryContext(context.Background(), `
		SELECT track_id, locator_kind, locator_path, locator_url, title, artist, duration_ms, media_type
		FROM playlist_entries ORDER BY position ASC
	`)
	if queryErr != nil {
		err = queryErr
		return nil, fmt.Errorf("query playlist: %w", err)
	}
	defer rows.Close()

	var tracks []track.Track
	for rows.Next() {
		tr, scanErr := scanTrack(rows)
		if scanErr != nil {
			err = scanErr
			return nil, fmt.Errorf("scan playlist entry: %w", err)
		}
		tracks = append(tracks, tr)
	}
	if rerr := rows.Err(); rerr != nil {
		err = rerr
		return nil, err
	}
	return tracks, nil
}

// SavePlaylist replaces the persisted playlist with tracks, in order.
func (d *Database) SavePlaylist(tracks []track.Track) error {
	start := time.Now()
	var err error
	defer func() { d.debugLog("SavePlaylist", err, time.Since(start)) }()

	if err = d.checkClosed(); err != nil {
		return err
	}

	tx, txErr := d.db.BeginTx(context.Background(), &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if txErr != nil {
		err = txErr
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			log.Printf("[library] rollback failed: %v", rbErr)
		}
	}()

	if _, delErr := tx.Exec("DELETE FROM playlist_entries"); delErr != nil {
		err = delErr
		return fmt.Errorf("clear playlist: %w", err)
	}

	for i, tr := range tracks {
		_, insErr := tx.Exec(`
			INSERT INTO playlist_entries
				(position, track_id, locator_kind, locator_path, locator_url, title, artist, duration_ms, media_type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, tr.ID, int(tr.Locator.Kind), tr.Locator.Path, tr.Locator.URL,
			tr.Meta.Title, tr.Meta.Artist, tr.Meta.Duration.Milliseconds(), int(tr.Type),
		)
		if insErr != nil {
			err = insErr
			return fmt.Errorf("insert playlist entry %d: %w", i, err)
		}
	}

	if cerr := tx.Commit(); cerr != nil {
		err = cerr
		return err
	}
	return nil
}

func scanTrack(scanner interface{ Scan(dest ...interface{}) error }) (track.Track, error) {
	var (
		tr         track.Track
		kind       int
		path, url  sql.NullString
		title, art sql.NullString
		durationMs int64
		mediaType  int
	)
	if err := scanner.Scan(&tr.ID, &kind, &path, &url, &title, &art, &durationMs, &mediaType); err != nil {
		return track.Track{}, err
	}
	tr.Locator = track.MediaLocator{
		Kind: track.LocatorKind(kind),
		Path: path.String,
		URL:  url.String,
	}
	tr.Meta = track.Meta{
		Title:    title.String,
		Artist:   art.String,
		Duration: time.Duration(durationMs) * time.Millisecond,
	}
	tr.Type = track.MediaType(mediaType)
	return tr, nil
}

// LoadLoopMode returns the persisted loop mode, defaulting to LoopPlaylist
// when unset.
func (d *Database) LoadLoopMode() (track.LoopMode, error) {
	v, ok, err := d.getState("loop_mode")
	if err != nil {
		return track.LoopPlaylist, err
	}
	if !ok {
		return track.LoopPlaylist, nil
	}
	var mode int
	if _, err := fmt.Sscanf(v, "%d", &mode); err != nil {
		return track.LoopPlaylist, nil
	}
	return track.LoopMode(mode), nil
}

// SaveLoopMode persists the loop mode.
func (d *Database) SaveLoopMode(mode track.LoopMode) error {
	return d.setState("loop_mode", fmt.Sprintf("%d", int(mode)))
}

// LoadVolume returns the persisted volume, defaulting to 1.0 when unset.
func (d *Database) LoadVolume() (float64, error) {
	v, ok, err := d.getState("volume")
	if err != nil {
		return 1, err
	}
	if !ok {
		return 1, nil
	}
	var vol float64
	if _, err := fmt.Sscanf(v, "%f", &vol); err != nil {
		return 1, nil
	}
	return vol, nil
}

// SaveVolume persists the volume.
func (d *Database) SaveVolume(v float64) error {
	return d.setState("volume", fmt.Sprintf("%f", v))
}

func (d *Database) getState(key string) (string, bool, error) {
	if err := d.checkClosed(); err != nil {
		return "", false, err
	}
	var value string
	err := d.db.QueryRowContext(context.Background(),
		"SELECT value FROM player_state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (d *Database) setState(key, value string) error {
	if err := d.checkClosed(); err != nil {
		return err
	}
	_, err := d.db.Exec(`
		INSERT INTO player_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// CommitLastPosition records the most recent playback position for a
// track, overwriting any prior entry.
func (d *Database) CommitLastPosition(trackID string, positionMs uint32) error {
	if err := d.checkClosed(); err != nil {
		return err
	}
	_, err := d.db.Exec(`
		INSERT INTO play_history (track_id, last_position_ms, played_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(track_id) DO UPDATE SET
			last_position_ms = excluded.last_position_ms,
			played_at = CURRENT_TIMESTAMP`, trackID, positionMs)
	return err
}

// LastPosition returns the last committed position for trackID, if any.
func (d *Database) LastPosition(trackID string) (uint32, bool, error) {
	if err := d.checkClosed(); err != nil {
		return 0, false, err
	}
	var ms int64
	err := d.db.QueryRowContext(context.Background(),
		"SELECT last_position_ms FROM play_history WHERE track_id = ?", trackID).Scan(&ms)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return uint32(ms), true, nil
}

// Close releases the underlying database connection.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.db.Close()
}
