// Package history persists finished games and their per-turn strategy
// metrics in a sqlite database, and exports them as YAML.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/domino14/wordlebot/game"
)

var ErrNotFound = errors.New("game not found")

// Mode says how a game was played.
type Mode string

const (
	ModePlay     Mode = "play"
	ModeAssist   Mode = "assist"
	ModeSimulate Mode = "simulate"
)

// Entry is one StrategyHistoryEntry as stored.
type Entry struct {
	Turn              int     `yaml:"turn" json:"turn"`
	Guess             string  `yaml:"guess,omitempty" json:"guess,omitempty"`
	Outcome           string  `yaml:"outcome,omitempty" json:"outcome,omitempty"`
	FromStrategy      bool    `yaml:"from_strategy,omitempty" json:"from_strategy,omitempty"`
	Remaining         int     `yaml:"remaining" json:"remaining"`
	UnweightedEntropy float64 `yaml:"unweighted_entropy" json:"unweighted_entropy"`
	// WeightedEntropy is nil when it was undefined.
	WeightedEntropy *float64 `yaml:"weighted_entropy,omitempty" json:"weighted_entropy,omitempty"`
}

// GameRecord is a finished game.
type GameRecord struct {
	ID       string    `yaml:"id"`
	Mode     Mode      `yaml:"mode"`
	Answer   string    `yaml:"answer,omitempty"`
	State    string    `yaml:"state"`
	MaxTurns int       `yaml:"max_turns"`
	Started  time.Time `yaml:"started"`
	Entries  []Entry   `yaml:"entries"`
}

// Turns is the number of guesses made.
func (r GameRecord) Turns() int {
	return max(0, len(r.Entries)-1)
}

// FromHistory converts a game's history into a storable record.
func FromHistory(h *game.History, mode Mode) GameRecord {
	rec := GameRecord{
		ID:       h.GameID,
		Mode:     mode,
		Answer:   h.Answer,
		State:    h.State.String(),
		MaxTurns: h.MaxTurns,
		Started:  h.Started.UTC().Truncate(time.Second),
		Entries:  make([]Entry, len(h.Entries)),
	}
	for i, e := range h.Entries {
		rec.Entries[i] = Entry{
			Turn:              e.Turn,
			Guess:             e.Guess,
			Outcome:           e.OutcomeString(),
			FromStrategy:      e.FromStrategy,
			Remaining:         e.Remaining,
			UnweightedEntropy: e.UnweightedEntropy,
		}
		if !math.IsNaN(e.WeightedEntropy) {
			we := e.WeightedEntropy
			rec.Entries[i].WeightedEntropy = &we
		}
	}
	return rec
}

var migrations = []struct {
	name string
	sql  string
}{
	{"0001_games", `
CREATE TABLE games (
	id         TEXT PRIMARY KEY,
	mode       TEXT NOT NULL,
	answer     TEXT NOT NULL DEFAULT '',
	state      TEXT NOT NULL,
	max_turns  INTEGER NOT NULL,
	turns      INTEGER NOT NULL,
	started_at INTEGER NOT NULL
);
CREATE TABLE entries (
	game_id            TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	turn               INTEGER NOT NULL,
	guess              TEXT NOT NULL DEFAULT '',
	outcome            TEXT NOT NULL DEFAULT '',
	from_strategy      INTEGER NOT NULL DEFAULT 0,
	remaining          INTEGER NOT NULL,
	unweighted_entropy REAL,
	weighted_entropy   REAL,
	PRIMARY KEY (game_id, turn)
);
CREATE INDEX games_started ON games(started_at);`},
}

// Store is a sqlite-backed game history. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. The special path ":memory:"
// gives a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		dsn = path
	}
	db, err := sql.Open("sqlite", dsn+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Every connection to :memory: is a different database.
		db.SetMaxOpenConns(1)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	for _, m := range migrations {
		var done int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name = ?`, m.name).Scan(&done)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations (name) VALUES (?)`, m.name); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		log.Debug().Str("migration", m.name).Msg("applied")
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes a game record, replacing any earlier record with the same ID.
func (s *Store) Save(ctx context.Context, rec GameRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, rec.ID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO games (id, mode, answer, state, max_turns, turns, started_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Mode), rec.Answer, rec.State, rec.MaxTurns, rec.Turns(), rec.Started.Unix())
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (game_id, turn, guess, outcome, from_strategy, remaining, unweighted_entropy, weighted_entropy)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range rec.Entries {
		var we sql.NullFloat64
		if e.WeightedEntropy != nil {
			we = sql.NullFloat64{Float64: *e.WeightedEntropy, Valid: true}
		}
		var ue sql.NullFloat64
		if !math.IsNaN(e.UnweightedEntropy) {
			ue = sql.NullFloat64{Float64: e.UnweightedEntropy, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, e.Turn, e.Guess, e.Outcome, e.FromStrategy,
			e.Remaining, ue, we); err != nil {
			return fmt.Errorf("insert entry %d: %w", e.Turn, err)
		}
	}
	return tx.Commit()
}

// SaveHistory is Save(FromHistory(h, mode)).
func (s *Store) SaveHistory(ctx context.Context, h *game.History, mode Mode) error {
	return s.Save(ctx, FromHistory(h, mode))
}

// Game loads one record with its entries.
func (s *Store) Game(ctx context.Context, id string) (GameRecord, error) {
	var rec GameRecord
	var mode string
	var started int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, mode, answer, state, max_turns, started_at FROM games WHERE id = ?`, id).
		Scan(&rec.ID, &mode, &rec.Answer, &rec.State, &rec.MaxTurns, &started)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return rec, err
	}
	rec.Mode = Mode(mode)
	rec.Started = time.Unix(started, 0).UTC()
	rec.Entries, err = s.entries(ctx, id)
	return rec, err
}

func (s *Store) entries(ctx context.Context, id string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT turn, guess, outcome, from_strategy, remaining, unweighted_entropy, weighted_entropy
		 FROM entries WHERE game_id = ? ORDER BY turn`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var ue, we sql.NullFloat64
		if err := rows.Scan(&e.Turn, &e.Guess, &e.Outcome, &e.FromStrategy, &e.Remaining, &ue, &we); err != nil {
			return nil, err
		}
		e.UnweightedEntropy = math.NaN()
		if ue.Valid {
			e.UnweightedEntropy = ue.Float64
		}
		if we.Valid {
			v := we.Float64
			e.WeightedEntropy = &v
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Recent returns up to limit games, newest first, with their entries.
func (s *Store) Recent(ctx context.Context, limit int) ([]GameRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM games ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	recs := make([]GameRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Game(ctx, id)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Summary aggregates every stored game.
type Summary struct {
	Games  int
	Solved int
	// AverageTurns is over solved games only, NaN when none was solved.
	AverageTurns float64
}

func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN state = ? THEN 1 ELSE 0 END), 0),
       AVG(CASE WHEN state = ? THEN turns END)
FROM games`, game.Solved.String(), game.Solved.String()).Scan(&sum.Games, &sum.Solved, &avg)
	if err != nil {
		return sum, err
	}
	sum.AverageTurns = math.NaN()
	if avg.Valid {
		sum.AverageTurns = avg.Float64
	}
	return sum, nil
}
