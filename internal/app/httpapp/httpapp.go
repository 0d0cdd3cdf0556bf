package httpapp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/ozzus/fulbito/internal/config"
	"go.uber.org/zap"
)

type HTTPApp struct {
	log    *zap.Logger
	server *http.Server
	addr   string
}

func New(log *zap.Logger, cfg config.HTTPConfig, handler http.Handler) *HTTPApp {
	addr := cfg.Addr()

	return &HTTPApp{
		log: log,
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			ErrorLog:          zap.NewStdLog(log.Named("http")),
		},
		addr: addr,
	}
}

// Run blocks until the server stops. A graceful Stop is not an error.
func (a *HTTPApp) Run() error {
	const op = "httpapp.Run"

	l, err := net.Listen("tcp", a.addr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return a.Serve(l)
}

func (a *HTTPApp) Serve(l net.Listener) error {
	const op = "httpapp.Serve"

	a.log.Info("http server started", zap.String("addr", l.Addr().String()))

	if err := a.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *HTTPApp) Stop(ctx context.Context) error {
	const op = "httpapp.Stop"

	a.log.Info("stopping http server", zap.String("addr", a.addr))
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
