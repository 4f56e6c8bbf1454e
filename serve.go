package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TeraLink/internal/controllers"
	"TeraLink/internal/helpers"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := helpers.GlobalConfig
	if err := helpers.InitLogger(cfg.Log); err != nil {
		return err
	}
	defer helpers.CloseLogger()

	if !cfg.TeraBox.HasCredentials() {
		helpers.AppLogger.Warn("未配置TERABOX_EMAIL/TERABOX_PASSWORD，所有解析请求都会返回登录失败")
	}

	a := newApp(cfg)
	defer a.Close()

	gin.SetMode(gin.ReleaseMode)
	router := controllers.SetupRouter(controllers.NewShareController(a.resolver, a.cred, cfg.Mode))
	srv := &http.Server{
		Addr:    cfg.HttpHost,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		helpers.AppLogger.Infof("TeraLink %s 启动，监听 %s，默认模式 %s", helpers.Version, cfg.HttpHost, cfg.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			helpers.AppLogger.Errorf("HTTP服务启动失败: %v", err)
		}
		return err
	case <-ctx.Done():
	}

	helpers.AppLogger.Info("收到退出信号，正在关闭HTTP服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
