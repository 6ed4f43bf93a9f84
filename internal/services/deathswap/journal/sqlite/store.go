// Package sqlite provides a SQLite-backed round journal.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/louisbranch/deathswap/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/deathswap/internal/services/deathswap/journal"
	"github.com/louisbranch/deathswap/internal/services/deathswap/journal/sqlite/migrations"
)

// MemoryDSN keeps the journal for the lifetime of the process only.
const MemoryDSN = ":memory:"

// Store persists the round journal in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

// Open opens a journal and applies embedded migrations. MemoryDSN opens a
// private in-memory database on a single connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("journal dsn is required")
	}
	memory := dsn == MemoryDSN
	if !memory {
		dsn = filepath.Clean(dsn) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if memory {
		// Every new connection to :memory: is a fresh database.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RecordRoundStarted inserts a running round.
func (s *Store) RecordRoundStarted(ctx context.Context, r journal.RoundStarted) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if r.Number <= 0 {
		return fmt.Errorf("round number must be positive")
	}
	startedAt := r.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO rounds (number, started_at, participants, outcome) VALUES (?, ?, ?, ?)`,
		r.Number, toMillis(startedAt), r.Participants, string(journal.OutcomeRunning),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return journal.ErrAlreadyExists
		}
		return fmt.Errorf("record round started: %w", err)
	}
	return nil
}

// RecordElimination appends an elimination to its round.
func (s *Store) RecordElimination(ctx context.Context, e journal.Elimination) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(e.VictimID) == "" {
		return fmt.Errorf("victim id is required")
	}
	if err := s.requireRound(ctx, e.Round); err != nil {
		return err
	}
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO eliminations (round_number, victim_id, victim_name, owner_id, owner_name, remaining, eliminated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Round, e.VictimID, e.VictimName, e.OwnerID, e.OwnerName, e.Remaining, toMillis(at),
	)
	if err != nil {
		return fmt.Errorf("record elimination: %w", err)
	}
	return nil
}

// RecordRoundEnded closes a running round.
func (s *Store) RecordRoundEnded(ctx context.Context, r journal.RoundEnded) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	switch r.Outcome {
	case journal.OutcomeWinner, journal.OutcomeTie:
	default:
		return fmt.Errorf("unsupported outcome %q", r.Outcome)
	}
	endedAt := r.EndedAt
	if endedAt.IsZero() {
		endedAt = time.Now()
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE rounds SET ended_at = ?, outcome = ?, winner_id = ?, winner_name = ? WHERE number = ?`,
		toMillis(endedAt), string(r.Outcome), r.WinnerID, r.WinnerName, r.Number,
	)
	if err != nil {
		return fmt.Errorf("record round ended: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record round ended: %w", err)
	}
	if n == 0 {
		return journal.ErrNotFound
	}
	return nil
}

// ListRounds returns up to limit rounds, newest first, each with its
// eliminations in the order they happened.
func (s *Store) ListRounds(ctx context.Context, limit int) ([]journal.Round, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT number, started_at, ended_at, participants, outcome, winner_id, winner_name
		 FROM rounds ORDER BY number DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	var rounds []journal.Round
	index := map[int64]int{}
	for rows.Next() {
		var (
			r                  journal.Round
			startedAt, endedAt int64
			outcome            string
		)
		if err := rows.Scan(&r.Number, &startedAt, &endedAt, &r.Participants, &outcome, &r.WinnerID, &r.WinnerName); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan round: %w", err)
		}
		r.StartedAt = fromMillis(startedAt)
		r.EndedAt = fromMillis(endedAt)
		r.Outcome = journal.Outcome(outcome)
		index[r.Number] = len(rounds)
		rounds = append(rounds, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}
	_ = rows.Close()
	if len(rounds) == 0 {
		return rounds, nil
	}

	oldest := rounds[len(rounds)-1].Number
	elims, err := s.sqlDB.QueryContext(ctx,
		`SELECT round_number, victim_id, victim_name, owner_id, owner_name, remaining, eliminated_at
		 FROM eliminations WHERE round_number >= ? ORDER BY round_number, id`, oldest)
	if err != nil {
		return nil, fmt.Errorf("list eliminations: %w", err)
	}
	defer elims.Close()
	for elims.Next() {
		var (
			e  journal.Elimination
			at int64
		)
		if err := elims.Scan(&e.Round, &e.VictimID, &e.VictimName, &e.OwnerID, &e.OwnerName, &e.Remaining, &at); err != nil {
			return nil, fmt.Errorf("scan elimination: %w", err)
		}
		e.At = fromMillis(at)
		if i, ok := index[e.Round]; ok {
			rounds[i].Eliminations = append(rounds[i].Eliminations, e)
		}
	}
	if err := elims.Err(); err != nil {
		return nil, fmt.Errorf("iterate eliminations: %w", err)
	}
	return rounds, nil
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("journal is not configured")
	}
	return nil
}

func (s *Store) requireRound(ctx context.Context, number int64) error {
	var found int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT number FROM rounds WHERE number = ?`, number).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return journal.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup round %d: %w", number, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ journal.Store = (*Store)(nil)
