package interfaces

import (
	"context"

	"github.com/aarondl/sqlboiler/v4/boil"

	"taxonomy-editor/internal/repository/entity"
)

// TaxonomyRepository 分类法仓储接口
type TaxonomyRepository interface {
	// Exists 检查分类法是否已注册
	Exists(ctx context.Context, exec boil.ContextExecutor, name string) (bool, error)

	// GetByName 获取分类法，不存在时返回 ErrNotFound
	GetByName(ctx context.Context, exec boil.ContextExecutor, name string) (*entity.Taxonomy, error)

	// List 获取所有分类法
	List(ctx context.Context, exec boil.ContextExecutor) ([]*entity.Taxonomy, error)
}
