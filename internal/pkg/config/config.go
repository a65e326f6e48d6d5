package config

import (
	"fmt"
	"time"
)

// Config 分类法管理服务配置
// 读取顺序：环境变量 > mqant 模块配置 > 默认值
type Config struct {
	Environment string
	LogLevel    string
	HTTPPort    string

	DatabaseURL     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int
	TermCacheTTL  time.Duration

	KetoReadAddress string

	TermCountCron string
}

// Load 从环境变量和模块配置加载配置
func Load(settings map[string]interface{}) (*Config, error) {
	cfg := &Config{
		Environment:     GetEnvOrDefault("ENVIRONMENT", "development"),
		LogLevel:        GetEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort:        GetEnvOrDefault("ADMIN_HTTP_PORT", settingString(settings, "http_port", "8071")),
		DatabaseURL:     GetDatabaseURL("TAXONOMY_DATABASE_URL", settingString(settings, "database_url", "")),
		MaxOpenConns:    GetIntOrDefault("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    GetIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: GetDurationOrDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		RedisHost:       GetEnvOrDefault("REDIS_HOST", settingString(settings, "redis_host", "localhost")),
		RedisPort:       GetIntOrDefault("REDIS_PORT", 6379),
		RedisPassword:   GetEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:         GetIntOrDefault("REDIS_DB", 0),
		TermCacheTTL:    GetDurationOrDefault("TERM_CACHE_TTL", 10*time.Minute),
		KetoReadAddress: GetEnvOrDefault("KETO_READ_ADDRESS", settingString(settings, "keto_read_address", "localhost:4466")),
		TermCountCron:   GetEnvOrDefault("TERM_COUNT_CRON", "0 30 3 * * *"),
	}

	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("数据库连接未配置: 请设置 TAXONOMY_DATABASE_URL")
	}
	return cfg, nil
}

// LogFields 返回可安全输出到日志的配置
func (c *Config) LogFields() map[string]any {
	return SanitizeConfigForLog(map[string]any{
		"environment":       c.Environment,
		"log_level":         c.LogLevel,
		"http_port":         c.HTTPPort,
		"database_url":      c.DatabaseURL,
		"redis_host":        c.RedisHost,
		"redis_port":        c.RedisPort,
		"redis_password":    c.RedisPassword,
		"term_cache_ttl":    c.TermCacheTTL.String(),
		"keto_read_address": c.KetoReadAddress,
		"term_count_cron":   c.TermCountCron,
	})
}

func settingString(settings map[string]interface{}, key, defaultValue string) string {
	if settings == nil {
		return defaultValue
	}
	if v, ok := settings[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}
