// Package ioweb provides the REST service of the catalogue. Routes
// are thin wrappers around catalog operations, errors of the catalog
// are reported with statuses of their codes.
package ioweb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/eufgis/fgrdb/pkg/catalog"
	"github.com/eufgis/fgrdb/pkg/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// shutdownTimeout limits the time given to open requests when the
// server stops.
const shutdownTimeout = 10 * time.Second

// Server is the REST service.
type Server struct {
	cfg     *config.Config
	cat     *catalog.Catalog
	metrics *metrics
	router  *gin.Engine
}

// New creates a Server with all routes registered under the base path
// of the configuration.
func New(cfg *config.Config, cat *catalog.Catalog) *Server {
	gin.SetMode(gin.ReleaseMode)

	res := &Server{
		cfg:     cfg,
		cat:     cat,
		metrics: newMetrics(),
		router:  gin.New(),
	}
	res.routes()
	return res
}

// Handler returns the HTTP handler of the service.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves requests until the context is cancelled, then shuts the
// server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting REST service",
			"port", s.cfg.Server.Port,
			"base_path", s.basePath(),
		)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return StartError(s.cfg.Server.Port, err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Stopping REST service")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

func (s *Server) routes() {
	r := s.router
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(s.metrics.middleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AddAllowHeaders("If-Match")
	r.Use(cors.New(corsCfg))

	r.GET("/metrics", s.metrics.handler())

	api := r.Group(s.basePath())
	api.GET("/version", s.version)
	api.GET("/healthcheck", s.healthCheck)

	ds := api.Group("/dataset")
	ds.GET("", s.listDatasets)
	ds.POST("", s.createDataset)
	ds.GET("/:key", s.getDataset)
	ds.PUT("/:key", s.replaceDataset)
	ds.PATCH("/:key", s.patchDataset)
	ds.DELETE("/:key", s.deleteDataset)
	ds.POST("/query", s.queryDatasets)
	ds.POST("/query/keys", s.queryDatasetKeys)
	ds.GET("/qualify/:key", s.qualify)
	ds.GET("/stats/:key", s.statistics)
	ds.POST("/refresh", s.refresh)

	data := api.Group("/data")
	data.GET("", s.listData)
	data.POST("", s.createData)
	data.GET("/:key", s.getData)
	data.PUT("/:key", s.replaceData)
	data.PATCH("/:key", s.patchData)
	data.DELETE("/:key", s.deleteData)
	data.POST("/query", s.queryData)
	data.POST("/query/keys", s.queryDataKeys)
	data.GET("/dataset/:key", s.dataByDataset)
	data.POST("/dataset/:key/query", s.queryDatasetData)
	data.POST("/dataset/:key/query/keys", s.queryDatasetDataKeys)
}

func (s *Server) basePath() string {
	res := "/" + strings.Trim(s.cfg.Server.BasePath, "/")
	if res == "/" {
		return ""
	}
	return res
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
