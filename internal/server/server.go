// Package server exposes the lifelog client over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/lifelog-io/lifelog-go/pkg/core"
)

// Server wraps the echo instance and the lifelog client behind it.
type Server struct {
	echo   *echo.Echo
	client *core.Client
	logger *slog.Logger
	addr   string
}

// New builds the HTTP server around an initialized lifelog client.
//
// When apiKey is non-empty every /summaries route requires a matching
// X-API-Key request header. Health checks stay open.
func New(client *core.Client, addr, apiKey string, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		} else if errors.Is(err, core.ErrInvalidInput) {
			code = http.StatusBadRequest
		}
		req := c.Request()
		logger.Warn("request failed",
			"status", code, "method", req.Method, "path", req.URL.Path, "remote", c.RealIP(), "err", err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-API-Key"},
	}))

	s := &Server{
		echo:   e,
		client: client,
		logger: logger,
		addr:   addr,
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	summaries := e.Group("/summaries")
	if apiKey != "" {
		summaries.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key",
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == apiKey, nil
			},
		}))
	}
	summaries.POST("/create", s.handleCreate)
	summaries.POST("/bulk-create", s.handleBulkCreate)
	summaries.GET("/query", s.handleQuery)
	summaries.GET("/recent", s.handleRecent)

	return s
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	if err := s.client.EnsureReady(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.addr)
		errCh <- s.echo.Start(s.addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleCreate(c echo.Context) error {
	date := c.QueryParam("target_date")
	if date != "" {
		if err := core.ValidateDate(date); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date format, use YYYY-MM-DD")
		}
	}

	result, err := s.client.CreateDailySummary(c.Request().Context(), date)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Daily summary created successfully",
		"date":     result.Date,
		"summary":  result.Summary,
		"metadata": result.Metadata,
	})
}

func (s *Server) handleBulkCreate(c echo.Context) error {
	startDate := c.QueryParam("start_date")
	endDate := c.QueryParam("end_date")
	if startDate == "" || endDate == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "start_date and end_date are required")
	}

	result, err := s.client.BulkCreateDailySummaries(c.Request().Context(), startDate, endDate)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleQuery(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	limit := intQueryParam(c, "limit", 5)

	result, err := s.client.QuerySummaries(c.Request().Context(), query, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"query":              result.Query,
		"answer":             result.Answer,
		"relevant_summaries": result.Matches,
		"total_found":        result.TotalFound,
	})
}

func (s *Server) handleRecent(c echo.Context) error {
	limit := intQueryParam(c, "limit", 7)

	summaries, err := s.client.GetRecentSummaries(c.Request().Context(), limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"summaries":   summaries,
		"total_found": len(summaries),
	})
}

func intQueryParam(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	var v int
	if _, err := fmt.Sscanf(raw, "%d", &v); err != nil || v <= 0 {
		return def
	}
	return v
}
