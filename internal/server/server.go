// Package server exposes a compiled route table read-only over HTTP. It serves
// inspection endpoints only and never dispatches to resource handlers.
package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/toyz/restmeta/pkg/restmeta"
)

// DefaultAddr is used when no address is configured
const DefaultAddr = ":8089"

// Server serves a compiled table
type Server struct {
	echo   *echo.Echo
	table  *restmeta.Table
	addr   string
	logger *zap.Logger
}

// New creates a server for the table listening on addr
func New(compiled *restmeta.Table, addr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if addr == "" {
		addr = DefaultAddr
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))

	s := &Server{
		echo:   e,
		table:  compiled,
		addr:   addr,
		logger: logger,
	}

	e.GET("/healthz", s.healthCheck)
	e.GET("/resources", s.listResources)
	e.GET("/resources/*", s.getResource)
	e.GET("/routes", s.listRoutes)

	return s
}

// Echo returns the underlying Echo instance
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.addr
}

// Start blocks serving requests until the server is shut down
func (s *Server) Start() error {
	s.logger.Info("starting inspection server",
		zap.String("address", s.addr),
		zap.Int("resources", s.table.Len()))

	err := s.echo.StartServer(&http.Server{Addr: s.addr})
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"resources": s.table.Len(),
	})
}

func (s *Server) listResources(c echo.Context) error {
	return c.JSON(http.StatusOK, s.table.Classes())
}

func (s *Server) getResource(c echo.Context) error {
	typeID, err := url.PathUnescape(c.Param("*"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed resource identifier")
	}

	class, ok := s.table.Class(typeID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown resource '"+typeID+"'")
	}
	return c.JSON(http.StatusOK, class)
}

// listRoutes returns the flattened routes, optionally filtered by ?verb= and ?class=
func (s *Server) listRoutes(c echo.Context) error {
	routes := s.table.Routes()

	if name := c.QueryParam("verb"); name != "" {
		verb, err := restmeta.ParseVerb(name)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		routes = s.table.RoutesByVerb(verb)
	}

	if class := strings.TrimSpace(c.QueryParam("class")); class != "" {
		filtered := make([]restmeta.RouteInfo, 0, len(routes))
		for _, route := range routes {
			if route.ClassName == class {
				filtered = append(filtered, route)
			}
		}
		routes = filtered
	}

	return c.JSON(http.StatusOK, routes)
}
