package statushttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"sigbridge/internal/config/loader"
	"sigbridge/internal/logger"

	"github.com/gin-gonic/gin"
)

// Server 提供最小化的状态 HTTP 服务（健康检查 + 执行概览）。
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig 描述状态服务依赖。
type ServerConfig struct {
	Addr     string
	Exchange string
	Tracker  *Tracker
	Params   loader.ParamSource
}

// NewServer 构建状态 HTTP server。
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Tracker == nil {
		return nil, errors.New("status http server requires a tracker")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9992"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/api/status", func(c *gin.Context) {
		counters, recent, startedAt := cfg.Tracker.Snapshot()
		resp := gin.H{
			"exchange": cfg.Exchange,
			"uptime":   time.Since(startedAt).Round(time.Second).String(),
			"counters": counters,
			"recent":   recent,
		}
		if cfg.Params != nil {
			p := cfg.Params.Params()
			resp["params"] = gin.H{
				"margin_usdt":     p.MarginUSDT,
				"leverage":        p.Leverage,
				"take_profit_pct": p.TakeProfitPct,
				"stop_loss_pct":   p.StopLossPct,
				"margin_mode":     p.MarginMode,
				"dry_run":         p.DryRun,
				"version":         p.Version,
			}
		}
		c.JSON(http.StatusOK, resp)
	})

	return &Server{addr: cfg.Addr, router: router}, nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		client := c.ClientIP()
		c.Next()
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s",
			method, path, c.Writer.Status(), client, time.Since(start))
	}
}

// Addr 返回监听地址。
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start 启动 HTTP 服务，直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
