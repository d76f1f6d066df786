package main

import (
	"log/slog"
	"os"

	"vanta-agent-backend/cache"
	"vanta-agent-backend/config"
	"vanta-agent-backend/controller"
	"vanta-agent-backend/dao"
	"vanta-agent-backend/router"
	"vanta-agent-backend/security"
	"vanta-agent-backend/service/mq"
	"vanta-agent-backend/service/usage"
)

func main() {
	if err := config.Load(); err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	if err := dao.Init(config.Cfg.MySQL.DSN); err != nil {
		slog.Error("Failed to init database", "err", err)
		os.Exit(1)
	}

	// 缓存未配置时降级直连数据库
	cache.Init(config.Cfg.Redis.Addr, config.Cfg.Redis.Password, config.Cfg.Redis.DB)

	if err := security.Init(config.Cfg.Encryption.MasterKey); err != nil {
		slog.Error("Failed to init encryption service", "err", err)
		os.Exit(1)
	}

	if err := mq.Init(); err != nil {
		slog.Error("Failed to init MQ producer", "err", err)
		os.Exit(1)
	}
	defer mq.Shutdown()

	usage.RecorderInstance.Run()
	controller.Init()

	r := router.Register()
	if err := r.Run(":" + config.Cfg.Server.Port); err != nil {
		slog.Error("Server exited", "err", err)
		os.Exit(1)
	}
}
