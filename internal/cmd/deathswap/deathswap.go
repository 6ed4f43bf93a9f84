// Package deathswap parses server flags and launches the deathswap service.
package deathswap

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/deathswap/internal/platform/cmd"
	server "github.com/louisbranch/deathswap/internal/services/deathswap/app"
	"github.com/louisbranch/deathswap/internal/services/deathswap/locationcache"
	"github.com/louisbranch/deathswap/internal/services/deathswap/round"
)

// Config holds deathswap command configuration.
type Config struct {
	Port             int           `env:"DEATHSWAP_PORT" envDefault:"8095"`
	Addr             string        `env:"DEATHSWAP_ADDR"`
	FeedAddr         string        `env:"DEATHSWAP_FEED_ADDR"`
	CacheTarget      int           `env:"DEATHSWAP_CACHE_TARGET" envDefault:"10"`
	CacheInterval    time.Duration `env:"DEATHSWAP_CACHE_INTERVAL" envDefault:"5s"`
	MaxDistance      int           `env:"DEATHSWAP_MAX_DISTANCE" envDefault:"8000"`
	SearchAttempts   int           `env:"DEATHSWAP_SEARCH_ATTEMPTS" envDefault:"500"`
	FallbackAttempts int           `env:"DEATHSWAP_FALLBACK_ATTEMPTS" envDefault:"1000"`
	MaxSwapSeconds   int           `env:"DEATHSWAP_MAX_SWAP_SECONDS" envDefault:"120"`
	SwapWeight       float64       `env:"DEATHSWAP_SWAP_WEIGHT" envDefault:"2"`
	GraceDelay       time.Duration `env:"DEATHSWAP_GRACE_DELAY" envDefault:"3s"`
	SettleDelay      time.Duration `env:"DEATHSWAP_SETTLE_DELAY" envDefault:"250ms"`
	JoinRetryDelay   time.Duration `env:"DEATHSWAP_JOIN_RETRY_DELAY" envDefault:"5s"`
	Locale           string        `env:"DEATHSWAP_LOCALE" envDefault:"en-US"`
	JournalDSN       string        `env:"DEATHSWAP_JOURNAL_DSN" envDefault:":memory:"`
	WorldSeed        int64         `env:"DEATHSWAP_WORLD_SEED"`
	LoadLatency      time.Duration `env:"DEATHSWAP_LOAD_LATENCY"`
}

// Validate rejects values no component can fall back from.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.LoadLatency < 0 {
		return fmt.Errorf("load latency must not be negative")
	}
	return nil
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The deathswap gRPC server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Full gRPC listen address; overrides -port")
	fs.StringVar(&cfg.FeedAddr, "feed-addr", cfg.FeedAddr, "Websocket broadcast feed listen address (empty disables)")
	fs.IntVar(&cfg.CacheTarget, "cache-target", cfg.CacheTarget, "Locations kept ready in the cache")
	fs.DurationVar(&cfg.CacheInterval, "cache-interval", cfg.CacheInterval, "Location cache population interval")
	fs.IntVar(&cfg.MaxDistance, "max-distance", cfg.MaxDistance, "Half-width of the square searched for locations")
	fs.IntVar(&cfg.MaxSwapSeconds, "max-swap-seconds", cfg.MaxSwapSeconds, "Upper bound of the swap delay in seconds")
	fs.Float64Var(&cfg.SwapWeight, "swap-weight", cfg.SwapWeight, "Exponent biasing swap delays toward the upper bound")
	fs.DurationVar(&cfg.GraceDelay, "grace-delay", cfg.GraceDelay, "Delay between round start and the first swap timer")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Broadcast message locale")
	fs.StringVar(&cfg.JournalDSN, "journal", cfg.JournalDSN, "Round journal: :memory: (default) or a SQLite file kept across restarts")
	fs.Int64Var(&cfg.WorldSeed, "seed", cfg.WorldSeed, "Simulated world seed (0 picks one)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ListenAddr returns Addr when set, otherwise all interfaces on Port.
func (c Config) ListenAddr() string {
	if addr := strings.TrimSpace(c.Addr); addr != "" {
		return addr
	}
	return fmt.Sprintf(":%d", c.Port)
}

// ServerConfig maps the command configuration onto the runtime.
func (c Config) ServerConfig() server.Config {
	return server.Config{
		Addr:        c.ListenAddr(),
		FeedAddr:    strings.TrimSpace(c.FeedAddr),
		Locale:      c.Locale,
		JournalDSN:  c.JournalDSN,
		WorldSeed:   c.WorldSeed,
		LoadLatency: c.LoadLatency,
		Cache: locationcache.Config{
			Target:           c.CacheTarget,
			Interval:         c.CacheInterval,
			MaxDistance:      c.MaxDistance,
			SearchAttempts:   c.SearchAttempts,
			FallbackAttempts: c.FallbackAttempts,
		},
		Round: round.Config{
			MaxSwapSeconds: c.MaxSwapSeconds,
			SwapWeight:     c.SwapWeight,
			GraceDelay:     c.GraceDelay,
			SettleDelay:    c.SettleDelay,
			JoinRetryDelay: c.JoinRetryDelay,
		},
	}
}

// Run starts the deathswap service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceDeathSwap, func(ctx context.Context) error {
		return server.Run(ctx, cfg.ServerConfig())
	})
}
