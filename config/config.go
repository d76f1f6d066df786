package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config.yaml"

// Cfg 全局配置实例
var Cfg *Config

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	MySQL      MySQLConfig      `yaml:"mysql"`
	Redis      RedisConfig      `yaml:"redis"`
	JWT        JWTConfig        `yaml:"jwt"`
	Encryption EncryptionConfig `yaml:"encryption"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Chat       ChatConfig       `yaml:"chat"`
	MQ         MQConfig         `yaml:"mq"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type MySQLConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	// Addr 为空时禁用缓存，所有依赖缓存的路径降级直连数据库
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	SecretKey string `yaml:"secret_key"`
}

type EncryptionConfig struct {
	// MasterKey 64位十六进制字符（32字节）
	MasterKey string `yaml:"master_key"`
}

type RateLimitConfig struct {
	Requests int `yaml:"requests"`
	WindowMs int `yaml:"window_ms"`
}

type ChatConfig struct {
	// MaxToolRounds 单轮对话允许的最大工具调用轮数
	MaxToolRounds int `yaml:"max_tool_rounds"`

	// ProviderTimeoutSeconds LLM 流式输出超时时间
	ProviderTimeoutSeconds int `yaml:"provider_timeout_seconds"`
}

type MQConfig struct {
	Enabled    bool     `yaml:"enabled"`
	NameServer []string `yaml:"name_server"`
}

func Load() error {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %v", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %v", path, err)
	}

	cfg.applyDefaults()
	Cfg = cfg
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = 100
	}
	if c.RateLimit.WindowMs <= 0 {
		c.RateLimit.WindowMs = 60000
	}
	if c.Chat.MaxToolRounds <= 0 {
		c.Chat.MaxToolRounds = 5
	}
	if c.Chat.ProviderTimeoutSeconds <= 0 {
		c.Chat.ProviderTimeoutSeconds = 300
	}
}
