package service

import (
	"context"

	"taxonomy-editor/internal/pkg/log"
)

// CacheInvalidator 失效内容的词条缓存
type CacheInvalidator interface {
	Invalidate(ctx context.Context, taxonomy, reason string, objectIDs []int64) error
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context, string, string, []int64) error { return nil }

// pendingInvalidations 事务内收集受影响的内容，提交后统一失效
type pendingInvalidations struct {
	order []string
	ids   map[string][]int64
	seen  map[string]map[int64]struct{}
}

func newPendingInvalidations() *pendingInvalidations {
	return &pendingInvalidations{
		ids:  make(map[string][]int64),
		seen: make(map[string]map[int64]struct{}),
	}
}

func (p *pendingInvalidations) add(taxonomy string, objectIDs []int64) {
	if len(objectIDs) == 0 {
		return
	}
	seen, ok := p.seen[taxonomy]
	if !ok {
		seen = make(map[int64]struct{})
		p.seen[taxonomy] = seen
		p.order = append(p.order, taxonomy)
	}
	for _, id := range objectIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		p.ids[taxonomy] = append(p.ids[taxonomy], id)
	}
}

// objectIDs 全部受影响的内容，按首次出现顺序
func (p *pendingInvalidations) objectIDs() []int64 {
	var all []int64
	seen := make(map[int64]struct{})
	for _, tax := range p.order {
		for _, id := range p.ids[tax] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			all = append(all, id)
		}
	}
	return all
}

// flush 缓存失效失败只记录日志，数据库已经提交
func (p *pendingInvalidations) flush(ctx context.Context, cache CacheInvalidator, reason string, logger log.Logger) {
	for _, tax := range p.order {
		ids := p.ids[tax]
		if err := cache.Invalidate(ctx, tax, reason, ids); err != nil {
			logger.WarnContext(ctx, "词条缓存失效失败",
				log.Err(err),
				log.String("taxonomy", tax),
				log.Int("objects", len(ids)),
			)
		}
	}
}
