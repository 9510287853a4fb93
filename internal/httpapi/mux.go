// Package httpapi serves the blackjack table over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	gmux "github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/fadedpez/blackjacktable/internal/logging"
	"github.com/fadedpez/blackjacktable/pkg/services/statistics"
	"github.com/fadedpez/blackjacktable/pkg/services/table"
	"github.com/fadedpez/blackjacktable/pkg/services/wallet"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10
const shutdownTimeout = time.Second * 10

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version string
	tables  *table.Manager
	wallets wallet.WalletService
	stats   *statistics.Service
	logger  *logging.Logger
}

// NewMux returns the blackjack API router
func NewMux(version string, tables *table.Manager, wallets wallet.WalletService, stats *statistics.Service, logger *logging.Logger) *Mux {
	if logger == nil {
		logger = logging.Default
	}

	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		tables:  tables,
		wallets: wallets,
		stats:   stats,
		logger:  logger,
	}

	r := this.Router
	r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())

	api := r.PathPrefix("/api/blackjack").Subrouter()
	api.Methods(http.MethodGet).Path("/state").Handler(this.getState())
	api.Methods(http.MethodGet).Path("/stats").Handler(this.getStats())
	api.Methods(http.MethodGet).Path("/wallet").Handler(this.getWallet())
	api.Methods(http.MethodPost).Path("/{action}").Handler(this.postAction())

	return this
}

// Handler wraps the router with CORS, access logging and panic recovery
func (m *Mux) Handler(accessLogs bool) http.Handler {
	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", PlayerHeader},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})

	var h http.Handler = c.Handler(m)
	if accessLogs {
		h = handlers.CombinedLoggingHandler(m.logger.Writer(), h)
	}

	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(m.logger.WithField("component", "http")),
	)(h)
}

// NewServer returns an HTTP server for the handler
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
}

// ListenAndServe runs srv until ctx is done, then shuts it down gracefully
func ListenAndServe(ctx context.Context, srv *http.Server, logger *logging.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}
