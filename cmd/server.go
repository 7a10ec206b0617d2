/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kmmy-shannel/ecotrackai-sub001/internal/api"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/config"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/container"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the EcoTrack API server.
The server will listen on the configured host and port,
and provide REST API interfaces for products, risk alerts,
manager approvals, delivery routes and carbon records.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 加载配置
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// 2. 初始化日志
		logger, err := api.NewLoggerFromConfig(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		// 3. 初始化容器
		ctr, err := container.NewContainer(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		// 4. 配置热更新,仅日志级别实时生效
		if configPath != "" {
			watcher := config.NewConfigWatcher(cfg, configPath)
			watcher.OnConfigChange(func(newCfg *config.Config) {
				level, err := logrus.ParseLevel(newCfg.Log.Level)
				if err != nil {
					return
				}
				logger.SetLevel(level)
				logger.WithField("level", newCfg.Log.Level).Info("Log level updated")
			})
			if err := watcher.Start(); err != nil {
				logger.WithError(err).Warn("Config watcher disabled")
			} else {
				defer watcher.Stop()
			}
		}

		// 5. 初始化控制器并设置路由
		ctrl := api.Controllers{
			Health:    api.NewHealthController(ctr.DB(), ctr.AdvisoryClient()),
			Product:   api.NewProductController(ctr.ProductService()),
			Alert:     api.NewAlertController(ctr.AlertService()),
			Approval:  api.NewApprovalController(ctr.ApprovalService()),
			Dashboard: api.NewDashboardController(ctr.DashboardService()),
			Route:     api.NewRouteController(ctr.RouteService(), ctr.CarbonService()),
		}
		router := api.SetupRoutes(cfg, logger, ctrl, ctr.Hub(), ctr.TokenValidator())

		// 6. 启动服务器
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:    addr,
			Handler: router,
		}

		// 启动服务器（在 goroutine 中）
		go func() {
			logger.WithField("addr", addr).Info("Server starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.WithError(err).Fatal("Failed to start server")
			}
		}()

		// 等待中断信号
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("Shutting down server...")

		// 优雅关闭
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.WithError(err).Fatal("Server forced to shutdown")
		}

		logger.Info("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// 服务器配置标志
	serverCmd.Flags().String("config", "", "Config file path (default: config.yaml)")
	serverCmd.Flags().String("host", "0.0.0.0", "Server host")
	serverCmd.Flags().Int("port", 8080, "Server port")
}
