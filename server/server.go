// Package server wires the HTTP surface of convo.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/usememos/convo/internal/profile"
	apiv1 "github.com/usememos/convo/server/router/api/v1"
	"github.com/usememos/convo/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	httpServer *http.Server
}

func NewServer(_ context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	s := &Server{
		Profile: profile,
		Store:   store,
	}

	echoServer := echo.New()
	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return shortuuid.New() },
	}))
	if profile.IsDev() {
		echoServer.Use(middleware.RequestLogger())
	}
	s.echoServer = echoServer

	echoServer.GET("/healthz", func(c *echo.Context) error {
		if err := store.GetDriver().GetDB().PingContext(c.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.String(http.StatusOK, "Service ready.")
	})

	apiv1.NewAPIV1Service(profile.Secret, profile, store).RegisterRoutes(echoServer)

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(profile.Addr, fmt.Sprint(profile.Port)),
		Handler:           echoServer,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(_ context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}
	slog.Info("convo server started", "addr", listener.Addr().String(), "mode", s.Profile.Mode, "driver", s.Profile.Driver)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to serve", "err", err)
		}
	}()
	return nil
}

// Shutdown drains in-flight requests and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "err", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", "err", err)
	}
	slog.Info("convo stopped properly")
}
