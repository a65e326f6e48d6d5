package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taxonomy-editor/internal/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// Nil 键不存在
var Nil = redis.Nil

// Config Redis 配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Client Redis 客户端封装，所有操作都会记录指标
type Client struct {
	*redis.Client
	service string
}

// NewClient 创建 Redis 客户端并检查连接
func NewClient(cfg Config, service string) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	return Wrap(rdb, service), nil
}

// Wrap 包装已有的 go-redis 客户端
func Wrap(rdb *redis.Client, service string) *Client {
	if service == "" {
		service = metrics.GetServiceName()
	}
	return &Client{
		Client:  rdb,
		service: service,
	}
}

func (c *Client) record(op string, start time.Time, err error) {
	m := metrics.DefaultResourceMetrics
	m.RecordRedisOperation(op, err == nil || errors.Is(err, redis.Nil), time.Since(start), c.service)
	switch {
	case err == nil:
	case errors.Is(err, redis.Nil):
		m.RecordRedisError("nil", c.service)
	default:
		m.RecordRedisError("operation_error", c.service)
	}
}

// SetWithTTL 设置键值对，带过期时间
func (c *Client) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	err := c.Set(ctx, key, value, ttl).Err()
	c.record("SET", start, err)
	return err
}

// GetString 获取字符串值，键不存在时返回 Nil
func (c *Client) GetString(ctx context.Context, key string) (string, error) {
	start := time.Now()
	result, err := c.Get(ctx, key).Result()
	c.record("GET", start, err)
	return result, err
}

// Exists 检查键是否存在
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	n, err := c.Client.Exists(ctx, key).Result()
	c.record("EXISTS", start, err)
	return n > 0, err
}

// DeleteKey 删除键，返回实际删除的数量
func (c *Client) DeleteKey(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	start := time.Now()
	n, err := c.Del(ctx, keys...).Result()
	c.record("DEL", start, err)
	return n, err
}

// RecordPoolStats 上报连接池状态
func (c *Client) RecordPoolStats() {
	stats := c.PoolStats()
	metrics.DefaultResourceMetrics.RecordRedisPoolStats(int(stats.TotalConns), int(stats.IdleConns), int(stats.StaleConns), c.service)
}
