// Package app wires the organizations runtime and gRPC lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/louisbranch/orgspace/internal/platform/config"
	"github.com/louisbranch/orgspace/internal/services/organizations/domain"
	"github.com/louisbranch/orgspace/internal/services/organizations/notify"
	"github.com/louisbranch/orgspace/internal/services/organizations/notify/render"
	orgsqlite "github.com/louisbranch/orgspace/internal/services/organizations/storage/sqlite"
)

type serverEnv struct {
	DBPath        string `env:"ORGSPACE_ORGANIZATIONS_DB_PATH"`
	AuthDBPath    string `env:"ORGSPACE_AUTH_DB_PATH"`
	PublicBaseURL string `env:"ORGSPACE_PUBLIC_BASE_URL"`
	Locale        string `env:"ORGSPACE_LOCALE"`
	NotifyQueue   int    `env:"ORGSPACE_NOTIFY_QUEUE_SIZE"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "organizations.db")
	}
	if strings.TrimSpace(cfg.AuthDBPath) == "" {
		cfg.AuthDBPath = filepath.Join("data", "auth.db")
	}
	if strings.TrimSpace(cfg.PublicBaseURL) == "" {
		cfg.PublicBaseURL = "http://localhost:8080"
	}
	if strings.TrimSpace(cfg.Locale) == "" {
		cfg.Locale = "en-US"
	}
	return cfg
}

// Server hosts the organizations service and its storage lifecycle.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	store      *orgsqlite.Store
	users      *orgsqlite.UserDirectory
	dispatcher *notify.Dispatcher
	service    *domain.Service
}

// New creates a configured organizations server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured organizations server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	srvEnv := loadServerEnv()

	store, err := openOrganizationsStore(srvEnv.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	// The auth database is owned by the auth service; run without identity
	// lookups when it is not present yet.
	var users *orgsqlite.UserDirectory
	if _, statErr := os.Stat(srvEnv.AuthDBPath); statErr == nil {
		users, err = orgsqlite.OpenUserDirectory(srvEnv.AuthDBPath)
		if err != nil {
			_ = listener.Close()
			_ = store.Close()
			return nil, fmt.Errorf("open user directory: %w", err)
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		_ = listener.Close()
		_ = store.Close()
		return nil, fmt.Errorf("stat auth db: %w", statErr)
	}

	dispatcher := notify.NewDispatcher(
		notify.LogMailer{},
		render.NewRenderer(srvEnv.PublicBaseURL),
		srvEnv.Locale,
		srvEnv.NotifyQueue,
	)

	var directory domain.UserDirectory
	if users != nil {
		directory = users
	}
	service := domain.NewService(store, directory, dispatcher, nil, nil, nil)

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("organizations", grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		store:      store,
		users:      users,
		dispatcher: dispatcher,
		service:    service,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Service exposes the wired domain service.
func (s *Server) Service() *domain.Service {
	if s == nil {
		return nil
	}
	return s.service
}

// Run creates and serves an organizations server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the gRPC server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("organizations server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

// Close releases organizations server resources.
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
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.dispatcher != nil {
		s.dispatcher.Close()
	}
	if s.users != nil {
		if err := s.users.Close(); err != nil {
			log.Printf("close user directory: %v", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close organizations store: %v", err)
		}
	}
}

func openOrganizationsStore(path string) (*orgsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := orgsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open organizations sqlite store: %w", err)
	}
	return store, nil
}
