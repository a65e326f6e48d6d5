package interfaces

import (
	"context"

	"github.com/aarondl/sqlboiler/v4/boil"

	"taxonomy-editor/internal/repository/entity"
	"taxonomy-editor/internal/repository/query"
)

// ContentRepository 内容仓储接口
type ContentRepository interface {
	// ExistingIDs 过滤出存在的内容 ID，保持输入顺序
	ExistingIDs(ctx context.Context, exec boil.ContextExecutor, ids []int64) ([]int64, error)

	// FilterByTerms 获取同时带有全部指定别名的内容
	FilterByTerms(ctx context.Context, exec boil.ContextExecutor, params query.ContentFilterParams) ([]*entity.Content, int64, error)
}
