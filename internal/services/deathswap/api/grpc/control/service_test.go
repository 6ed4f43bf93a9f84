package control

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	apperrors "github.com/louisbranch/deathswap/internal/platform/errors"
	"github.com/louisbranch/deathswap/internal/services/deathswap/hostsim"
	"github.com/louisbranch/deathswap/internal/services/deathswap/i18n"
	"github.com/louisbranch/deathswap/internal/services/deathswap/journal"
	journalsqlite "github.com/louisbranch/deathswap/internal/services/deathswap/journal/sqlite"
	"github.com/louisbranch/deathswap/internal/services/deathswap/round"
	"github.com/louisbranch/deathswap/internal/services/deathswap/world"
)

type fakeController struct {
	mu       sync.Mutex
	startErr error
	endErr   error
	snap     round.Snapshot
	starts   int
	joined   []round.Identity
	quit     []round.Identity
	died     []round.Identity
}

func (f *fakeController) Start(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	return f.startErr
}

func (f *fakeController) End(context.Context) error { return f.endErr }

func (f *fakeController) Snapshot(context.Context) (round.Snapshot, error) { return f.snap, nil }

func (f *fakeController) OnJoin(id round.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joined = append(f.joined, id)
}

func (f *fakeController) OnQuit(id round.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quit = append(f.quit, id)
}

func (f *fakeController) OnDeath(id round.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.died = append(f.died, id)
}

type fixture struct {
	svc     *Service
	ctrl    *fakeController
	players *hostsim.Players
	store   *journalsqlite.Store
	msgs    *i18n.Messages
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bundle, err := i18n.Load()
	if err != nil {
		t.Fatalf("load messages: %v", err)
	}
	msgs, err := i18n.New(bundle, "en-US")
	if err != nil {
		t.Fatalf("new messages: %v", err)
	}
	store, err := journalsqlite.Open(context.Background(), journalsqlite.MemoryDSN)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{
		ctrl:    &fakeController{},
		players: hostsim.NewPlayers(world.Coord{}),
		store:   store,
		msgs:    msgs,
	}
	f.svc = NewService(f.ctrl, f.players, store, msgs)
	return f
}

func assertStatus(t *testing.T, err error, code codes.Code, reason apperrors.Code) *status.Status {
	t.Helper()
	st, ok := status.FromError(err)
	if !ok {
		t.Fatalf("error %v is not a status", err)
	}
	if st.Code() != code {
		t.Fatalf("code = %s, want %s", st.Code(), code)
	}
	if reason == "" {
		return st
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			if info.GetReason() != string(reason) {
				t.Fatalf("reason = %s, want %s", info.GetReason(), reason)
			}
			return st
		}
	}
	t.Fatalf("status %v has no ErrorInfo", st)
	return st
}

func TestStartRoundMapsInsufficientParticipants(t *testing.T) {
	f := newFixture(t)
	f.ctrl.startErr = round.ErrInsufficientParticipants

	_, err := f.svc.StartRound(context.Background(), &emptypb.Empty{})
	assertStatus(t, err, codes.FailedPrecondition, apperrors.CodeInsufficientParticipants)
	if got, want := apperrors.LocalizedMessage(err), f.msgs.NotEnoughPlayers(); got != want {
		t.Fatalf("localized = %q, want %q", got, want)
	}
}

func TestEndRoundMapsNotActive(t *testing.T) {
	f := newFixture(t)
	f.ctrl.endErr = round.ErrRoundNotActive

	_, err := f.svc.EndRound(context.Background(), &emptypb.Empty{})
	assertStatus(t, err, codes.FailedPrecondition, apperrors.CodeRoundNotActive)
	if got, want := apperrors.LocalizedMessage(err), f.msgs.NotActive(); got != want {
		t.Fatalf("localized = %q, want %q", got, want)
	}
}

func TestStartRoundAfterStopIsUnavailable(t *testing.T) {
	f := newFixture(t)
	f.ctrl.startErr = round.ErrStopped

	_, err := f.svc.StartRound(context.Background(), &emptypb.Empty{})
	assertStatus(t, err, codes.Unavailable, apperrors.CodeControllerStopped)
}

func TestPlayerHooks(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.PlayerJoin(context.Background(), wrapperspb.String(" ")); err == nil {
		t.Fatal("expected error for blank name")
	} else {
		assertStatus(t, err, codes.InvalidArgument, apperrors.CodeInvalidArgument)
	}

	resp, err := f.svc.PlayerJoin(context.Background(), wrapperspb.String("Alex"))
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	id, err := uuid.Parse(resp.GetValue())
	if err != nil {
		t.Fatalf("join returned %q: %v", resp.GetValue(), err)
	}
	if got := f.players.Name(id); got != "Alex" {
		t.Fatalf("name = %q, want Alex", got)
	}
	if len(f.ctrl.joined) != 1 || f.ctrl.joined[0] != id {
		t.Fatalf("joined = %v, want [%s]", f.ctrl.joined, id)
	}

	if _, err := f.svc.PlayerDeath(context.Background(), wrapperspb.String(id.String())); err != nil {
		t.Fatalf("death: %v", err)
	}
	if p, _ := f.players.Lookup(id); p.Alive {
		t.Fatal("player still alive after death hook")
	}
	if len(f.ctrl.died) != 1 {
		t.Fatalf("deaths = %v, want 1", f.ctrl.died)
	}

	if _, err := f.svc.PlayerQuit(context.Background(), wrapperspb.String(id.String())); err != nil {
		t.Fatalf("quit: %v", err)
	}
	if len(f.ctrl.quit) != 1 {
		t.Fatalf("quits = %v, want 1", f.ctrl.quit)
	}

	_, err = f.svc.PlayerQuit(context.Background(), wrapperspb.String(id.String()))
	assertStatus(t, err, codes.NotFound, apperrors.CodePlayerUnknown)
	_, err = f.svc.PlayerDeath(context.Background(), wrapperspb.String("not-a-uuid"))
	assertStatus(t, err, codes.InvalidArgument, apperrors.CodeInvalidArgument)
}

func TestGetRoundRendersSnapshot(t *testing.T) {
	f := newFixture(t)
	a, _ := f.players.Join("Alex")
	b, _ := f.players.Join("Bea")
	f.ctrl.snap = round.Snapshot{
		State:       round.StateActive,
		Round:       4,
		Contestants: []round.Identity{a, b},
		Assignments: map[round.Identity]round.Identity{a: b, b: a},
		StartedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		NextDelay:   90 * time.Second,
	}

	out, err := f.svc.GetRound(context.Background(), &emptypb.Empty{})
	if err != nil {
		t.Fatalf("get round: %v", err)
	}
	fields := out.AsMap()
	if fields["state"] != "active" || fields["round"] != float64(4) {
		t.Fatalf("state/round = %v/%v", fields["state"], fields["round"])
	}
	if fields["started_at"] != "2026-01-02T03:04:05Z" {
		t.Fatalf("started_at = %v", fields["started_at"])
	}
	if fields["next_delay_seconds"] != float64(90) {
		t.Fatalf("next_delay_seconds = %v", fields["next_delay_seconds"])
	}
	contestants := fields["contestants"].([]any)
	if len(contestants) != 2 || contestants[0].(map[string]any)["name"] != "Alex" {
		t.Fatalf("contestants = %v", contestants)
	}
	assignments := fields["assignments"].([]any)
	if len(assignments) != 2 || assignments[0].(map[string]any)["owner_name"] != "Bea" {
		t.Fatalf("assignments = %v", assignments)
	}
}

func TestListRoundsReadsJournal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	for n := int64(1); n <= 3; n++ {
		if err := f.store.RecordRoundStarted(ctx, journal.RoundStarted{Number: n, StartedAt: now, Participants: 2}); err != nil {
			t.Fatalf("record start: %v", err)
		}
	}
	if err := f.store.RecordRoundEnded(ctx, journal.RoundEnded{Number: 3, EndedAt: now, Outcome: journal.OutcomeWinner, WinnerName: "Bea"}); err != nil {
		t.Fatalf("record end: %v", err)
	}

	out, err := f.svc.ListRounds(ctx, wrapperspb.Int32(2))
	if err != nil {
		t.Fatalf("list rounds: %v", err)
	}
	rounds := out.AsMap()["rounds"].([]any)
	if len(rounds) != 2 {
		t.Fatalf("rounds = %d, want 2", len(rounds))
	}
	newest := rounds[0].(map[string]any)
	if newest["number"] != float64(3) || newest["outcome"] != "winner" || newest["winner_name"] != "Bea" {
		t.Fatalf("newest round = %v", newest)
	}
}

func TestRoundServiceOverGRPC(t *testing.T) {
	f := newFixture(t)
	f.ctrl.snap = round.Snapshot{State: round.StateIdle}

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterRoundServiceServer(srv, f.svc)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	client := NewRoundServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	id, err := client.PlayerJoin(ctx, "Alex")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := client.StartRound(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if f.ctrl.starts != 1 {
		t.Fatalf("starts = %d, want 1", f.ctrl.starts)
	}
	snap, err := client.GetRound(ctx)
	if err != nil {
		t.Fatalf("get round: %v", err)
	}
	if got := snap.AsMap()["state"]; got != "idle" {
		t.Fatalf("state = %v, want idle", got)
	}
	if err := client.PlayerDeath(ctx, id); err != nil {
		t.Fatalf("death: %v", err)
	}
	if err := client.PlayerQuit(ctx, uuid.NewString()); status.Code(err) != codes.NotFound {
		t.Fatalf("quit unknown = %v, want NotFound", err)
	}

	f.ctrl.endErr = round.ErrRoundNotActive
	err = client.EndRound(ctx)
	if got, want := apperrors.LocalizedMessage(err), f.msgs.NotActive(); got != want {
		t.Fatalf("localized = %q, want %q", got, want)
	}
	if _, err := client.ListRounds(ctx, 0); err != nil {
		t.Fatalf("list rounds: %v", err)
	}
}
