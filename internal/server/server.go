package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paper-analytics/config"
	"paper-analytics/internal/router"
	"paper-analytics/internal/service"
	"paper-analytics/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// StartBackend serves config.Conf until SIGINT or SIGTERM.
func StartBackend() error {
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	log.GetLogger().Info("backend listening", zap.String("addr", ln.Addr().String()))

	return Serve(ctx, ln, service.NewService(config.Conf))
}

func NewEngine(svc *service.Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	router.SetupRouter(r, svc)
	return r
}

// Serve runs the HTTP server on ln until ctx is done, then resets every
// session and shuts the server down.
func Serve(ctx context.Context, ln net.Listener, svc *service.Service) error {
	srv := &http.Server{
		Handler:           NewEngine(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.GetLogger().Info("shutting down backend")
		svc.Sessions.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.GetLogger().Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
