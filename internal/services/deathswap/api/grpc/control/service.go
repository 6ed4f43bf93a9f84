// Package control implements the deathswap.v1.RoundService gRPC API: round
// control for operators and the join, quit and death hooks of the simulated
// host.
package control

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	apperrors "github.com/louisbranch/deathswap/internal/platform/errors"
	"github.com/louisbranch/deathswap/internal/platform/grpc/pagination"
	"github.com/louisbranch/deathswap/internal/platform/timeouts"
	"github.com/louisbranch/deathswap/internal/services/deathswap/hostsim"
	"github.com/louisbranch/deathswap/internal/services/deathswap/i18n"
	"github.com/louisbranch/deathswap/internal/services/deathswap/journal"
	"github.com/louisbranch/deathswap/internal/services/deathswap/round"
)

const (
	defaultListRoundsLimit = 10
	maxListRoundsLimit     = 100
)

// Controller is the round API the service drives.
type Controller interface {
	Start(ctx context.Context) error
	End(ctx context.Context) error
	Snapshot(ctx context.Context) (round.Snapshot, error)
	OnJoin(id round.Identity)
	OnQuit(id round.Identity)
	OnDeath(id round.Identity)
}

// Players is the host registry behind the bridge hooks.
type Players interface {
	Join(name string) (round.Identity, error)
	Leave(id round.Identity) error
	Kill(id round.Identity) error
	Name(id round.Identity) string
}

// Service exposes deathswap.v1.RoundService.
type Service struct {
	UnimplementedRoundServiceServer
	ctrl     Controller
	players  Players
	journal  journal.Store
	messages *i18n.Messages
}

// NewService creates the control service.
func NewService(ctrl Controller, players Players, store journal.Store, messages *i18n.Messages) *Service {
	return &Service{ctrl: ctrl, players: players, journal: store, messages: messages}
}

// StartRound begins a round with every online player.
func (s *Service) StartRound(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.ControlCall)
	defer cancel()
	if err := s.ctrl.Start(ctx); err != nil {
		return nil, s.statusFor("start round", err)
	}
	return &emptypb.Empty{}, nil
}

// EndRound ends the active round.
func (s *Service) EndRound(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.ControlCall)
	defer cancel()
	if err := s.ctrl.End(ctx); err != nil {
		return nil, s.statusFor("end round", err)
	}
	return &emptypb.Empty{}, nil
}

// GetRound returns the current round snapshot.
func (s *Service) GetRound(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.ControlCall)
	defer cancel()
	snap, err := s.ctrl.Snapshot(ctx)
	if err != nil {
		return nil, s.statusFor("get round", err)
	}
	out, err := structpb.NewStruct(snapshotFields(snap, s.players.Name))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode round: %v", err)
	}
	return out, nil
}

// ListRounds returns journal entries, newest first.
func (s *Service) ListRounds(ctx context.Context, in *wrapperspb.Int32Value) (*structpb.Struct, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	limit := pagination.ClampLimit(in.GetValue(), pagination.LimitConfig{
		Default: defaultListRoundsLimit,
		Max:     maxListRoundsLimit,
	})
	rounds, err := s.journal.ListRounds(ctx, limit)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list rounds: %v", err)
	}
	out, err := structpb.NewStruct(map[string]any{"rounds": roundsFields(rounds)})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode rounds: %v", err)
	}
	return out, nil
}

// PlayerJoin connects a named player to the host and returns its identity.
func (s *Service) PlayerJoin(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.GetValue())
	if name == "" {
		return nil, s.statusFor("player join", apperrors.New(apperrors.CodeInvalidArgument, "player name is required"))
	}
	id, err := s.players.Join(name)
	if err != nil {
		return nil, s.statusFor("player join", apperrors.Wrap(apperrors.CodeInvalidArgument, err.Error(), err))
	}
	s.ctrl.OnJoin(id)
	return wrapperspb.String(id.String()), nil
}

// PlayerQuit disconnects a player.
func (s *Service) PlayerQuit(_ context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	id, err := s.identity(in)
	if err != nil {
		return nil, err
	}
	if err := s.players.Leave(id); err != nil {
		return nil, s.statusFor("player quit", playerError(id, err))
	}
	s.ctrl.OnQuit(id)
	return &emptypb.Empty{}, nil
}

// PlayerDeath reports that a player died.
func (s *Service) PlayerDeath(_ context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	id, err := s.identity(in)
	if err != nil {
		return nil, err
	}
	if err := s.players.Kill(id); err != nil {
		return nil, s.statusFor("player death", playerError(id, err))
	}
	s.ctrl.OnDeath(id)
	return &emptypb.Empty{}, nil
}

func (s *Service) ready() error {
	if s == nil || s.ctrl == nil || s.players == nil || s.journal == nil {
		return status.Error(codes.Internal, "round service is not configured")
	}
	return nil
}

func (s *Service) identity(in *wrapperspb.StringValue) (round.Identity, error) {
	raw := strings.TrimSpace(in.GetValue())
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, s.statusFor("parse player id", apperrors.WithMetadata(
			apperrors.CodeInvalidArgument, "player id must be a UUID", map[string]string{"player_id": raw}))
	}
	return id, nil
}

func playerError(id round.Identity, err error) error {
	if errors.Is(err, hostsim.ErrUnknownPlayer) {
		return apperrors.WithMetadata(apperrors.CodePlayerUnknown, "player is not online", map[string]string{"player_id": id.String()})
	}
	return err
}

// statusFor converts err into a gRPC status. Coded errors carry a localized
// line for the operator.
func (s *Service) statusFor(op string, err error) error {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.ToGRPCStatus(s.locale(), s.userMessage(domainErr))
	}
	if st := status.FromContextError(err); st.Code() != codes.Unknown {
		return st.Err()
	}
	return status.Errorf(codes.Internal, "%s: %v", op, err)
}

func (s *Service) locale() string {
	if s.messages == nil {
		return ""
	}
	return s.messages.Locale()
}

func (s *Service) userMessage(err *apperrors.Error) string {
	if s.messages != nil {
		switch err.Code {
		case apperrors.CodeInsufficientParticipants:
			return s.messages.NotEnoughPlayers()
		case apperrors.CodeRoundNotActive:
			return s.messages.NotActive()
		}
	}
	return err.Message
}
