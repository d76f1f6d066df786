package main

import (
	"log/slog"
	"os"

	"vanta-agent-backend/config"
	"vanta-agent-backend/dao"
	"vanta-agent-backend/model"
)

// 按模型定义建表/加列。只做增量变更，不删除已有列
func main() {
	if err := config.Load(); err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}
	if err := dao.Init(config.Cfg.MySQL.DSN); err != nil {
		slog.Error("Failed to init database", "err", err)
		os.Exit(1)
	}

	err := dao.DB.AutoMigrate(
		&model.Workspace{},
		&model.ProviderKey{},
		&model.ApiKey{},
		&model.Agent{},
		&model.Tool{},
		&model.ChatSession{},
		&model.Message{},
		&model.ToolExecution{},
		&model.UsageLog{},
	)
	if err != nil {
		slog.Error("Migration failed", "err", err)
		os.Exit(1)
	}

	slog.Info("Migration completed")
}
