package interfaces

import (
	"context"

	"github.com/aarondl/sqlboiler/v4/boil"

	"taxonomy-editor/internal/repository/entity"
	"taxonomy-editor/internal/repository/query"
)

// TermRepository 词条仓储接口
type TermRepository interface {
	// GetByID 获取分类法中的词条，不存在时返回 ErrNotFound
	GetByID(ctx context.Context, exec boil.ContextExecutor, termID int64, taxonomy string) (*entity.Term, error)

	// GetByIDs 批量获取分类法中的词条，不存在的 ID 被忽略
	GetByIDs(ctx context.Context, exec boil.ContextExecutor, taxonomy string, termIDs []int64) ([]*entity.Term, error)

	// GetBySlugs 按别名批量获取词条
	GetBySlugs(ctx context.Context, exec boil.ContextExecutor, taxonomy string, slugs []string) ([]*entity.Term, error)

	// List 分页获取分类法下的词条，PageSize 为 0 时返回全部
	List(ctx context.Context, exec boil.ContextExecutor, params query.TermListParams) ([]*entity.Term, int64, error)

	// Delete 删除分类法中的词条：分组键、元数据、残留关联，以及不再被引用的词条本身
	Delete(ctx context.Context, exec boil.ContextExecutor, termID int64, taxonomy string) error

	// RecountUsage 按实际关联数重新计算并保存使用次数
	RecountUsage(ctx context.Context, exec boil.ContextExecutor, termTaxonomyIDs ...int64) error

	// ListCountDrift 查找使用次数与实际关联数不一致的分组键
	ListCountDrift(ctx context.Context, exec boil.ContextExecutor, limit int) ([]*entity.CountDrift, error)
}
