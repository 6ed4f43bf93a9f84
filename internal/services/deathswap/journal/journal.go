// Package journal defines the history a process keeps about its rounds.
package journal

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the referenced round was never recorded.
	ErrNotFound = errors.New("round not found")
	// ErrAlreadyExists indicates a round number was recorded twice.
	ErrAlreadyExists = errors.New("round already exists")
)

// Outcome is how a round ended.
type Outcome string

const (
	OutcomeRunning Outcome = "running"
	OutcomeWinner  Outcome = "winner"
	OutcomeTie     Outcome = "tie"
)

// RoundStarted is recorded when a round becomes active.
type RoundStarted struct {
	Number       int64
	StartedAt    time.Time
	Participants int
}

// RoundEnded is recorded when a round returns to idle.
type RoundEnded struct {
	Number     int64
	EndedAt    time.Time
	Outcome    Outcome
	WinnerID   string
	WinnerName string
}

// Elimination records one contestant death.
type Elimination struct {
	Round      int64
	VictimID   string
	VictimName string
	// OwnerID and OwnerName are empty when the victim died before any swap
	// placed them on another contestant's position.
	OwnerID   string
	OwnerName string
	Remaining int
	At        time.Time
}

// Round is one journal entry with its eliminations in order.
type Round struct {
	Number       int64
	StartedAt    time.Time
	EndedAt      time.Time
	Participants int
	Outcome      Outcome
	WinnerID     string
	WinnerName   string
	Eliminations []Elimination
}

// Recorder receives round lifecycle facts.
type Recorder interface {
	RecordRoundStarted(ctx context.Context, r RoundStarted) error
	RecordElimination(ctx context.Context, e Elimination) error
	RecordRoundEnded(ctx context.Context, r RoundEnded) error
}

// Store records and lists rounds.
type Store interface {
	Recorder
	// ListRounds returns up to limit rounds, newest first.
	ListRounds(ctx context.Context, limit int) ([]Round, error)
}
