package main

import (
	"time"

	"TeraLink/internal/helpers"
	"TeraLink/internal/manifest"
	"TeraLink/internal/terabox"

	"github.com/spf13/cobra"
)

var flagConfigPath string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "teralink",
		Short:         "TeraBox share link resolver",
		Long:          "Resolves TeraBox share links into file manifests with direct download links.",
		Version:       helpers.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.InitConfig(flagConfigPath)
		},
	}
	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "config.yaml", "配置文件路径，不存在时只使用默认值和环境变量")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newResolveCmd())
	return cmd
}

// app 一次运行中共享的上游客户端、会话和解析器
type app struct {
	client   *terabox.Client
	sessions *terabox.SessionProvider
	resolver *manifest.Resolver
	cred     terabox.Credentials
}

func newApp(cfg helpers.Config) *app {
	client := terabox.NewClient(cfg.TeraBox)
	cache := terabox.NewSessionCache(cfg.TeraBox.CacheSize, cfg.TeraBox.SessionTimeout(), time.Now)
	sessions := terabox.NewSessionProvider(client, cache)
	resolver := manifest.NewResolver(client, sessions, manifest.Options{MaxDirectories: cfg.TeraBox.MaxDirectories})
	return &app{
		client:   client,
		sessions: sessions,
		resolver: resolver,
		cred:     terabox.Credentials{Email: cfg.TeraBox.Email, Password: cfg.TeraBox.Password},
	}
}

func (a *app) Close() {
	if err := a.client.Close(); err != nil {
		helpers.AppLogger.Warnf("关闭上游客户端失败: %v", err)
	}
}
