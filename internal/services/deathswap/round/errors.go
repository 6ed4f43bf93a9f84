package round

import (
	"errors"

	apperrors "github.com/louisbranch/deathswap/internal/platform/errors"
)

var (
	// ErrInsufficientParticipants rejects a start with fewer than two online
	// players.
	ErrInsufficientParticipants = apperrors.New(apperrors.CodeInsufficientParticipants, "round: at least 2 online participants are required")
	// ErrRoundActive rejects a start while a round is running.
	ErrRoundActive = apperrors.New(apperrors.CodeRoundAlreadyActive, "round: a round is already active")
	// ErrRoundNotActive rejects an end while idle.
	ErrRoundNotActive = apperrors.New(apperrors.CodeRoundNotActive, "round: no round is active")
	// ErrStopped reports a call made after the controller stopped.
	ErrStopped = apperrors.New(apperrors.CodeControllerStopped, "round: controller stopped")

	errMoveRejected = errors.New("move rejected by host")
)
