package app

import (
	"context"
	"errors"
	"fmt"

	"sigbridge/internal/config"
	"sigbridge/internal/listener"
	"sigbridge/internal/logger"
	statushttp "sigbridge/internal/transport/http/status"

	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：加载配置→初始化依赖→启动监听与状态服务。
type App struct {
	cfg      *config.Config
	listener *listener.Telegram
	status   *statushttp.Server
}

// NewApp 根据配置构建应用对象（不启动）
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run 启动信号监听与状态服务，任一致命错误则整体退出。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.listener == nil {
		return fmt.Errorf("telegram listener not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)

	if a.status != nil {
		group.Go(func() error {
			if err := a.status.Start(ctx); err != nil {
				return fmt.Errorf("status http server error: %w", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		err := a.listener.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	return group.Wait()
}
