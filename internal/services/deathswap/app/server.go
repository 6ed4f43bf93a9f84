// Package server wires the deathswap runtime and its gRPC lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/louisbranch/deathswap/internal/platform/random"
	"github.com/louisbranch/deathswap/internal/platform/timeouts"
	"github.com/louisbranch/deathswap/internal/services/deathswap/api/grpc/control"
	"github.com/louisbranch/deathswap/internal/services/deathswap/hostsim"
	"github.com/louisbranch/deathswap/internal/services/deathswap/i18n"
	"github.com/louisbranch/deathswap/internal/services/deathswap/journal/sqlite"
	"github.com/louisbranch/deathswap/internal/services/deathswap/locationcache"
	"github.com/louisbranch/deathswap/internal/services/deathswap/round"
)

// LocationCacheService is the health entry that turns SERVING once the
// location cache first fills up.
const LocationCacheService = "deathswap.v1.LocationCache"

// FeedPath is where the broadcast feed accepts websocket subscribers.
const FeedPath = "/feed"

// Config assembles one deathswap process.
type Config struct {
	// Addr is the gRPC listen address.
	Addr string
	// FeedAddr is the websocket feed listen address. Empty disables the feed.
	FeedAddr    string
	Locale      string
	JournalDSN  string
	WorldSeed   int64
	LoadLatency time.Duration
	Cache       locationcache.Config
	Round       round.Config
}

// Server hosts the round controller, its simulated host and the control API.
type Server struct {
	listener     net.Listener
	feedListener net.Listener
	grpcServer   *grpc.Server
	feedServer   *http.Server
	health       *health.Server

	store *sqlite.Store
	host  *hostsim.Host
	cache *locationcache.Cache
	ctrl  *round.Controller
	// ctrlRunning is set once Serve has launched the controller loop.
	ctrlRunning bool
}

// New creates a configured server. Nothing runs until Serve.
func New(ctx context.Context, cfg Config) (_ *Server, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s := &Server{}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	if s.listener, err = net.Listen("tcp", cfg.Addr); err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}
	if strings.TrimSpace(cfg.FeedAddr) != "" {
		if s.feedListener, err = net.Listen("tcp", cfg.FeedAddr); err != nil {
			return nil, fmt.Errorf("listen feed on %s: %w", cfg.FeedAddr, err)
		}
	}

	dsn := cfg.JournalDSN
	if strings.TrimSpace(dsn) == "" {
		dsn = sqlite.MemoryDSN
	}
	if s.store, err = sqlite.Open(ctx, dsn); err != nil {
		return nil, fmt.Errorf("open round journal: %w", err)
	}
	if dsn != sqlite.MemoryDSN {
		log.Printf("round journal kept at %s", dsn)
	}

	bundle, err := i18n.Load()
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	messages, err := i18n.New(bundle, cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("messages: %w", err)
	}

	if s.host, err = hostsim.New(hostsim.Config{Seed: cfg.WorldSeed, LoadLatency: cfg.LoadLatency}); err != nil {
		return nil, err
	}
	rng, err := random.NewLocked(nil)
	if err != nil {
		return nil, err
	}

	s.health = health.NewServer()
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(control.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(LocationCacheService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	healthServer := s.health
	broadcaster := s.host.Broadcaster
	s.cache, err = locationcache.New(cfg.Cache, s.host.Terrain, s.host.Reservations, rng, func() {
		healthServer.SetServingStatus(LocationCacheService, grpc_health_v1.HealthCheckResponse_SERVING)
		broadcaster.SendOperators(messages.CacheReady())
	})
	if err != nil {
		return nil, err
	}

	s.ctrl, err = round.New(cfg.Round, round.Deps{
		Directory:   s.host.Players,
		Teleporter:  s.host.Players,
		Broadcaster: s.host.Broadcaster,
		Roles:       s.host.Players,
		Locations:   s.cache,
		World:       s.host.Terrain,
		Messages:    messages,
		Journal:     s.store,
		Rand:        rng,
	})
	if err != nil {
		return nil, err
	}

	s.grpcServer = grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	control.RegisterRoundServiceServer(s.grpcServer, control.NewService(s.ctrl, s.host.Players, s.store, messages))
	grpc_health_v1.RegisterHealthServer(s.grpcServer, s.health)

	if s.feedListener != nil {
		mux := http.NewServeMux()
		mux.Handle(FeedPath, s.host.Feed)
		s.feedServer = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}
	log.Printf("world seed %d", s.host.Seed)
	return s, nil
}

// Addr returns the gRPC listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// FeedAddr returns the feed listener address, or "" when the feed is off.
func (s *Server) FeedAddr() string {
	if s == nil || s.feedListener == nil {
		return ""
	}
	return s.feedListener.Addr().String()
}

// Run creates and serves a server until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	srv, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

// Serve starts the location cache, the round controller and every listener,
// and blocks until ctx ends or a listener fails.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	if err := s.cache.Start(ctx); err != nil {
		return fmt.Errorf("start location cache: %w", err)
	}
	s.ctrlRunning = true
	go func() {
		if err := s.ctrl.Run(ctx); err != nil {
			log.Printf("round controller: %v", err)
		}
	}()

	serveErr := make(chan error, 2)
	if s.feedServer != nil {
		log.Printf("broadcast feed listening at ws://%v%s", s.feedListener.Addr(), FeedPath)
		go func() {
			if err := s.feedServer.Serve(s.feedListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- fmt.Errorf("serve feed: %w", err)
			}
		}()
	}
	log.Printf("deathswap server listening at %v", s.listener.Addr())
	go func() {
		if err := s.grpcServer.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErr <- fmt.Errorf("serve gRPC: %w", err)
			return
		}
		serveErr <- nil
	}()

	select {
	case <-ctx.Done():
		s.shutdown()
		return nil
	case err := <-serveErr:
		return err
	}
}

func (s *Server) shutdown() {
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		stopped := make(chan struct{})
		go func() {
			s.grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(timeouts.Shutdown):
			s.grpcServer.Stop()
		}
	}
	if s.feedServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.feedServer.Shutdown(ctx); err != nil {
			log.Printf("feed shutdown: %v", err)
		}
	}
}

// Close stops every component and releases held resources. It is safe to
// call on a partially built server.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.ctrl != nil && s.ctrlRunning {
		s.ctrl.Stop()
		select {
		case <-s.ctrl.Done():
		case <-time.After(timeouts.Shutdown):
			log.Printf("round controller did not stop in %s", timeouts.Shutdown)
		}
	}
	if s.cache != nil {
		s.cache.Shutdown()
	}
	if s.host != nil {
		s.host.Feed.Close()
	}
	if s.feedServer != nil {
		_ = s.feedServer.Close()
	} else if s.feedListener != nil {
		_ = s.feedListener.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close round journal: %v", err)
		}
	}
}
