package interfaces

import (
	"context"

	"github.com/aarondl/sqlboiler/v4/boil"

	"taxonomy-editor/internal/repository/entity"
	"taxonomy-editor/internal/repository/query"
)

// TermRelationshipRepository 内容-词条关联仓储接口
type TermRelationshipRepository interface {
	// ListObjectIDs 获取关联到分组键的内容 ID，按 ID 升序
	ListObjectIDs(ctx context.Context, exec boil.ContextExecutor, termTaxonomyID int64) ([]int64, error)

	// Exists 检查内容与分组键的关联是否存在
	Exists(ctx context.Context, exec boil.ContextExecutor, objectID, termTaxonomyID int64) (bool, error)

	// Insert 新增关联
	Insert(ctx context.Context, exec boil.ContextExecutor, rel *entity.TermRelationship) error

	// DeleteByTermTaxonomyID 删除分组键的全部关联，返回删除行数
	DeleteByTermTaxonomyID(ctx context.Context, exec boil.ContextExecutor, termTaxonomyID int64) (int64, error)

	// DeleteForObject 删除内容上指定分组键的关联
	DeleteForObject(ctx context.Context, exec boil.ContextExecutor, objectID int64, termTaxonomyIDs []int64) (int64, error)

	// ResolveTaxonomy 获取分组键所属的分类法，不存在时返回 ErrNotFound
	ResolveTaxonomy(ctx context.Context, exec boil.ContextExecutor, termTaxonomyID int64) (string, error)

	// ListTermsForObjects 获取内容在分类法下的全部词条
	ListTermsForObjects(ctx context.Context, exec boil.ContextExecutor, taxonomy string, objectIDs []int64) ([]*query.ObjectTerm, error)
}
