// Package termcache 缓存每个内容在某分类法下的词条列表
package termcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taxonomy-editor/internal/pkg/log"
	"taxonomy-editor/internal/pkg/metrics"
	"taxonomy-editor/internal/pkg/redis"
)

const keyPrefix = "taxonomy:object_terms"

// DefaultTTL 默认缓存时间
const DefaultTTL = 10 * time.Minute

// Entry 缓存中的词条
type Entry struct {
	TermID         int64  `json:"term_id"`
	TermTaxonomyID int64  `json:"term_taxonomy_id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
}

// Cache Redis 实现
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.CacheMetrics
	logger  log.Logger
}

// New 创建缓存，ttl 为 0 时使用默认值
func New(client *redis.Client, ttl time.Duration, logger log.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		client:  client,
		ttl:     ttl,
		metrics: metrics.DefaultCacheMetrics,
		logger:  logger,
	}
}

// Key 缓存键
func Key(taxonomy string, objectID int64) string {
	return fmt.Sprintf("%s:%s:%d", keyPrefix, taxonomy, objectID)
}

// Get 读取缓存，第二个返回值表示是否命中；读取失败按未命中处理
func (c *Cache) Get(ctx context.Context, taxonomy string, objectID int64) ([]Entry, bool) {
	raw, err := c.client.GetString(ctx, Key(taxonomy, objectID))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "读取词条缓存失败", log.Err(err), log.Int64("object_id", objectID))
		}
		c.metrics.IncMiss(taxonomy)
		return nil, false
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		c.logger.WarnContext(ctx, "词条缓存格式错误", log.Err(err), log.String("key", Key(taxonomy, objectID)))
		c.metrics.IncMiss(taxonomy)
		return nil, false
	}
	c.metrics.IncHit(taxonomy)
	return entries, true
}

// Set 写入缓存，失败只记录日志
func (c *Cache) Set(ctx context.Context, taxonomy string, objectID int64, entries []Entry) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		c.logger.WarnContext(ctx, "序列化词条缓存失败", log.Err(err))
		return
	}
	if err := c.client.SetWithTTL(ctx, Key(taxonomy, objectID), data, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "写入词条缓存失败", log.Err(err), log.Int64("object_id", objectID))
	}
}

// Invalidate 删除一组内容的缓存
func (c *Cache) Invalidate(ctx context.Context, taxonomy, reason string, objectIDs []int64) error {
	if len(objectIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(objectIDs))
	for _, id := range objectIDs {
		keys = append(keys, Key(taxonomy, id))
	}
	n, err := c.client.DeleteKey(ctx, keys...)
	if err != nil {
		return fmt.Errorf("删除词条缓存失败: %w", err)
	}
	c.metrics.AddEvicted(taxonomy, reason, int(n))
	return nil
}
