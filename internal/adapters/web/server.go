package web

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/example/tablegen/internal/ports/primary"
)

// Options configures the HTTP server.
type Options struct {
	Addr         string
	AllowOrigins []string // empty or "*" allows every origin
}

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(opts Options, tableService primary.GenTableService, codegenService primary.CodegenService, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(logger), cors.New(corsConfig(opts.AllowOrigins)))

	RegisterRoutes(router, NewGenTableHandler(tableService), NewCodegenHandler(codegenService))
	return router
}

// NewServer wraps the router in an http.Server.
func NewServer(opts Options, tableService primary.GenTableService, codegenService primary.CodegenService, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:         opts.Addr,
		Handler:      NewRouter(opts, tableService, codegenService, logger),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}
	cfg.AllowHeaders = append(cfg.AllowHeaders, RequestIDHeader)
	cfg.ExposeHeaders = []string{"Content-Disposition", RequestIDHeader}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
