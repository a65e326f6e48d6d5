package interfaces

import (
	"context"

	"github.com/aarondl/null/v8"
	"github.com/aarondl/sqlboiler/v4/boil"

	"taxonomy-editor/internal/repository/entity"
)

// TermMetaRepository 词条元数据仓储接口
type TermMetaRepository interface {
	// ListByTerm 获取词条的全部元数据，按写入顺序
	ListByTerm(ctx context.Context, exec boil.ContextExecutor, termID int64) ([]*entity.TermMeta, error)

	// KeyExists 检查词条是否已有该键
	KeyExists(ctx context.Context, exec boil.ContextExecutor, termID int64, key string) (bool, error)

	// Add 追加一条元数据
	Add(ctx context.Context, exec boil.ContextExecutor, termID int64, key string, value null.String) error
}
