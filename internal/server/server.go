// Package server ties the store and the HTTP listener together. Start opens
// the store before binding the port; Stop closes the store before shutting
// the listener down.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/BorisDmv/blog-posts-api/internal/config"
	"github.com/BorisDmv/blog-posts-api/internal/db"
)

var ErrStopped = errors.New("server already stopped")

// openStore is replaced in tests.
var openStore = db.Open

// Server is the handle for one running instance.
type Server struct {
	http       *http.Server
	listener   net.Listener
	store      db.Store
	logger     *zerolog.Logger
	stopRouter func()
	done       chan error
	stopOnce   sync.Once
}

// Start connects to cfg.DatabaseURL, then listens on cfg.Addr() and serves
// in the background. If listening fails the store is closed before the
// error is returned.
func Start(ctx context.Context, cfg config.Config, logger *zerolog.Logger) (*Server, error) {
	store, err := openStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	logger.Debug().Msg("database connected")

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		if closeErr := store.Close(ctx); closeErr != nil {
			logger.Error().Err(closeErr).Msg("close database after listen failure")
		}
		return nil, fmt.Errorf("listen on %s: %w", cfg.Addr(), err)
	}

	handler, stopRouter := NewRouter(store, cfg, logger)
	s := &Server{
		http: &http.Server{
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		listener:   ln,
		store:      store,
		logger:     logger,
		stopRouter: stopRouter,
		done:       make(chan error, 1),
	}

	go func() {
		err := s.http.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
		close(s.done)
	}()

	logger.Info().Str("addr", s.Addr()).Msg("server started")
	return s, nil
}

// Addr is the address the listener is bound to.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// URL is the base URL for reaching the server over loopback.
func (s *Server) URL() string {
	addr := s.listener.Addr().(*net.TCPAddr)
	host := addr.IP.String()
	if addr.IP.IsUnspecified() {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, fmt.Sprint(addr.Port))
}

// Done yields the serve loop's result once it exits: nil after Stop, or the
// error that ended it.
func (s *Server) Done() <-chan error {
	return s.done
}

// Stop closes the store and then shuts the HTTP server down. Both steps run
// even if the first fails; their errors are joined.
func (s *Server) Stop(ctx context.Context) error {
	err := ErrStopped
	s.stopOnce.Do(func() {
		s.logger.Info().Msg("closing server")

		var storeErr, httpErr error
		if cerr := s.store.Close(ctx); cerr != nil {
			storeErr = fmt.Errorf("close database: %w", cerr)
		}
		if serr := s.http.Shutdown(ctx); serr != nil {
			httpErr = fmt.Errorf("shutdown http: %w", serr)
		}
		s.stopRouter()
		err = errors.Join(storeErr, httpErr)
	})
	return err
}
