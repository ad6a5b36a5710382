// Package service runs the long lived components of the DAO prover node.
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.vocdoni.io/dvote/db"

	"github.com/vocdoni/dao-z-sandbox/api"
	"github.com/vocdoni/dao-z-sandbox/log"
	"github.com/vocdoni/dao-z-sandbox/prover"
	"github.com/vocdoni/dao-z-sandbox/storage"
)

const shutdownTimeout = 10 * time.Second

// APIService represents a service that manages the HTTP API server.
type APIService struct {
	database db.Database
	storage  *storage.Storage
	prover   *prover.Prover
	host     string
	port     int

	mu     sync.Mutex
	srv    *http.Server
	addr   net.Addr
	cancel context.CancelFunc
}

// NewAPI creates a new APIService instance. The prover may be nil, in which
// case proposal submissions are refused. Port 0 lets the OS choose one.
func NewAPI(database db.Database, stg *storage.Storage, pr *prover.Prover, host string, port int) *APIService {
	return &APIService{
		database: database,
		storage:  stg,
		prover:   pr,
		host:     host,
		port:     port,
	}
}

// Start begins the API server. It returns an error if the service
// is already running or if it fails to start.
func (as *APIService) Start(ctx context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.srv != nil {
		return fmt.Errorf("service already running")
	}
	a, err := api.New(&api.APIConfig{
		Database: as.database,
		Storage:  as.storage,
		Prover:   as.prover,
	})
	if err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	ln, err := net.Listen("tcp", net.JoinHostPort(as.host, fmt.Sprint(as.port)))
	if err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	srvCtx, cancel := context.WithCancel(ctx)
	as.srv = &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return srvCtx },
	}
	as.addr = ln.Addr()
	as.cancel = cancel
	go func(srv *http.Server) {
		log.Infow("API server listening", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw(err, "API server stopped")
		}
	}(as.srv)
	return nil
}

// Stop halts the API server. The storage is left open so the service can
// be started again.
func (as *APIService) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := as.srv.Shutdown(ctx); err != nil {
		log.Warnw("API server shutdown", "error", err)
	}
	as.cancel()
	as.srv, as.addr, as.cancel = nil, nil, nil
}

// Address returns the address the API server listens on, or nil if it is
// not running.
func (as *APIService) Address() net.Addr {
	as.mu.Lock()
	defer as.mu.Unlock()
	return as.addr
}

// HostPort returns the configured host and port of the API server.
func (as *APIService) HostPort() (string, int) {
	return as.host, as.port
}
