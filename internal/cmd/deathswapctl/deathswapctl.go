// Package deathswapctl implements the operator CLI for a running deathswap
// server.
package deathswapctl

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	entrypoint "github.com/louisbranch/deathswap/internal/platform/cmd"
	"github.com/louisbranch/deathswap/internal/platform/discovery"
	apperrors "github.com/louisbranch/deathswap/internal/platform/errors"
	platformgrpc "github.com/louisbranch/deathswap/internal/platform/grpc"
	"github.com/louisbranch/deathswap/internal/platform/timeouts"
	"github.com/louisbranch/deathswap/internal/services/deathswap/api/grpc/control"
)

// Usage lists the subcommands.
const Usage = `usage: deathswapctl [flags] <command> [args]

commands:
  start           start a round with every online player
  end             end the active round
  status          print the current round
  rounds          print the round journal (-limit N)
  join NAME       connect a simulated player and print its id
  quit ID         disconnect a player
  death ID        report a player death`

// ErrUsage reports a missing or malformed command.
var ErrUsage = errors.New("invalid usage")

// Config holds deathswapctl configuration.
type Config struct {
	Addr        string        `env:"DEATHSWAP_CTL_ADDR"`
	DialTimeout time.Duration `env:"DEATHSWAP_CTL_DIAL_TIMEOUT" envDefault:"2s"`
	Limit       int           `env:"DEATHSWAP_CTL_LIMIT" envDefault:"10"`

	Command string
	Args    []string
}

// ParseConfig parses environment, flags and the subcommand.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Addr = discovery.OrLocalGRPCAddr(cfg.Addr, discovery.ServiceDeathSwap)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The deathswap gRPC server address")
	fs.DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "How long to wait for the server to report healthy")
	fs.IntVar(&cfg.Limit, "limit", cfg.Limit, "Rounds listed by the rounds command")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return Config{}, fmt.Errorf("%w: command is required", ErrUsage)
	}
	cfg.Command, cfg.Args = rest[0], rest[1:]
	want := map[string]int{"start": 0, "end": 0, "status": 0, "rounds": 0, "join": 1, "quit": 1, "death": 1}
	n, ok := want[cfg.Command]
	if !ok {
		return Config{}, fmt.Errorf("%w: unknown command %q", ErrUsage, cfg.Command)
	}
	if len(cfg.Args) != n {
		return Config{}, fmt.Errorf("%w: %s takes %d argument(s)", ErrUsage, cfg.Command, n)
	}
	return cfg, nil
}

// Run dials the server and executes the configured command, writing results
// to out.
func Run(ctx context.Context, cfg Config, out io.Writer, opts ...grpc.DialOption) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCtl, func(ctx context.Context) error {
		timeout := cfg.DialTimeout
		if timeout <= 0 {
			timeout = timeouts.GRPCDial
		}
		conn, err := platformgrpc.DialWithHealth(ctx, cfg.Addr, control.ServiceName, timeout, nil, opts...)
		if err != nil {
			return err
		}
		defer conn.Close()

		callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
		defer cancel()
		if err := execute(callCtx, control.NewRoundServiceClient(conn), cfg, out); err != nil {
			return errors.New(apperrors.LocalizedMessage(err))
		}
		return nil
	})
}

func execute(ctx context.Context, client *control.RoundServiceClient, cfg Config, out io.Writer) error {
	switch cfg.Command {
	case "start":
		if err := client.StartRound(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "round started")
	case "end":
		if err := client.EndRound(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "round ended")
	case "status":
		snap, err := client.GetRound(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, snap)
	case "rounds":
		rounds, err := client.ListRounds(ctx, int32(cfg.Limit))
		if err != nil {
			return err
		}
		return printJSON(out, rounds)
	case "join":
		id, err := client.PlayerJoin(ctx, cfg.Args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, id)
	case "quit":
		return client.PlayerQuit(ctx, strings.TrimSpace(cfg.Args[0]))
	case "death":
		return client.PlayerDeath(ctx, strings.TrimSpace(cfg.Args[0]))
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cfg.Command)
	}
	return nil
}

func printJSON(out io.Writer, msg proto.Message) error {
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
