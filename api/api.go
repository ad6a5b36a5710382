// Package api serves the DAO prover node over HTTP: the coin and nullifier
// trees each DAO proves against, and the proven proposal inputs submitted
// to it.
package api

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.vocdoni.io/dvote/db"

	"github.com/vocdoni/dao-z-sandbox/log"
	"github.com/vocdoni/dao-z-sandbox/proposal"
	"github.com/vocdoni/dao-z-sandbox/prover"
	"github.com/vocdoni/dao-z-sandbox/state"
	stg "github.com/vocdoni/dao-z-sandbox/storage"
)

// APIConfig type represents the configuration for the API HTTP server.
// Database holds the DAO trees and Storage the submitted proposals. Without
// a Prover the proposal submission endpoint is disabled. If Port is 0 the
// server is not started and the router can be served by the caller.
type APIConfig struct {
	Host     string
	Port     int
	Database db.Database
	Storage  *stg.Storage
	Prover   *prover.Prover
	Params   *proposal.Params
}

// API type represents the API HTTP server.
type API struct {
	router  *chi.Mux
	db      db.Database
	storage *stg.Storage
	prover  *prover.Prover
	params  *proposal.Params

	statesLock sync.Mutex
	states     map[string]*state.State
}

// New creates a new API instance with the given configuration and starts
// the HTTP server.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Database == nil {
		return nil, fmt.Errorf("missing database")
	}
	if conf.Storage == nil {
		return nil, fmt.Errorf("missing storage instance")
	}
	params := conf.Params
	switch {
	case params == nil && conf.Prover != nil:
		params = conf.Prover.Params()
	case params == nil:
		params = proposal.DefaultParams()
	case conf.Prover != nil && conf.Prover.Params() != params:
		return nil, fmt.Errorf("prover and API params differ")
	}
	a := &API{
		db:      conf.Database,
		storage: conf.Storage,
		prover:  conf.Prover,
		params:  params,
		states:  make(map[string]*state.State),
	}

	a.initRouter()
	if conf.Port == 0 {
		return a, nil
	}
	go func() {
		log.Infow("starting API server", "host", conf.Host, "port", conf.Port)
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", conf.Host, conf.Port), a.router); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
	return a, nil
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// state returns the state of the DAO, opening it on first use. The same
// instance is returned for every request so its trees serialize writes.
func (a *API) state(daoID []byte) (*state.State, error) {
	a.statesLock.Lock()
	defer a.statesLock.Unlock()
	key := hex.EncodeToString(daoID)
	if s, ok := a.states[key]; ok {
		return s, nil
	}
	s, err := state.New(a.db, daoID, a.params)
	if err != nil {
		return nil, err
	}
	a.states[key] = s
	return s, nil
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	handlers := []struct {
		method   string
		endpoint string
		fn       http.HandlerFunc
	}{
		{http.MethodGet, PingEndpoint, func(w http.ResponseWriter, r *http.Request) { httpWriteOK(w) }},
		{http.MethodGet, RootsEndpoint, a.roots},
		{http.MethodPost, CoinsEndpoint, a.addCoin},
		{http.MethodGet, CoinPathEndpoint, a.coinPath},
		{http.MethodPost, NullifiersEndpoint, a.spend},
		{http.MethodGet, NullifierPathEndpoint, a.nullifierPath},
		{http.MethodPost, DAOProposalsEndpoint, a.submitProposal},
		{http.MethodGet, ProposalsEndpoint, a.listProposals},
		{http.MethodGet, ProposalEndpoint, a.proposal},
	}
	for _, h := range handlers {
		log.Infow("register handler", "endpoint", h.endpoint, "method", h.method)
		a.router.Method(h.method, h.endpoint, h.fn)
	}
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))

	a.registerHandlers()
}
