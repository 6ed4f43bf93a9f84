// Package errors provides coded domain errors and their gRPC mapping.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Round errors
	CodeInsufficientParticipants Code = "INSUFFICIENT_PARTICIPANTS"
	CodeRoundNotActive           Code = "ROUND_NOT_ACTIVE"
	CodeRoundAlreadyActive       Code = "ROUND_ALREADY_ACTIVE"
	CodeControllerStopped        Code = "CONTROLLER_STOPPED"

	// Location errors
	CodeLocationSearchExhausted Code = "LOCATION_SEARCH_EXHAUSTED"

	// Player errors
	CodePlayerUnknown Code = "PLAYER_UNKNOWN"

	// Request errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeInvalidArgument:
		return codes.InvalidArgument
	case CodeInsufficientParticipants, CodeRoundNotActive, CodeRoundAlreadyActive:
		return codes.FailedPrecondition
	case CodeControllerStopped, CodeLocationSearchExhausted:
		return codes.Unavailable
	case CodePlayerUnknown:
		return codes.NotFound
	default:
		return codes.Unknown
	}
}
