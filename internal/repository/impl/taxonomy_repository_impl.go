package impl

import (
	"context"
	"database/sql"

	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/friendsofgo/errors"

	"taxonomy-editor/internal/repository/entity"
	"taxonomy-editor/internal/repository/interfaces"
)

type taxonomyRepositoryImpl struct {
	db *sql.DB
}

// NewTaxonomyRepository 创建分类法仓储实例
func NewTaxonomyRepository(db *sql.DB) interfaces.TaxonomyRepository {
	return &taxonomyRepositoryImpl{db: db}
}

// Exists 检查分类法是否已注册
func (r *taxonomyRepositoryImpl) Exists(ctx context.Context, exec boil.ContextExecutor, name string) (bool, error) {
	exists, err := queryExists(ctx, pick(r.db, exec),
		`SELECT EXISTS(SELECT 1 FROM taxonomies WHERE name = $1)`, name)
	if err != nil {
		return false, errors.Wrap(err, "检查分类法失败")
	}
	return exists, nil
}

// GetByName 获取分类法
func (r *taxonomyRepositoryImpl) GetByName(ctx context.Context, exec boil.ContextExecutor, name string) (*entity.Taxonomy, error) {
	var taxonomy entity.Taxonomy
	err := queries.Raw(
		`SELECT name, label, object_type, hierarchical FROM taxonomies WHERE name = $1`, name,
	).Bind(ctx, pick(r.db, exec), &taxonomy)
	if isNoRows(err) {
		return nil, errors.Wrapf(interfaces.ErrNotFound, "分类法不存在: %s", name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "查询分类法失败")
	}
	return &taxonomy, nil
}

// List 获取所有分类法
func (r *taxonomyRepositoryImpl) List(ctx context.Context, exec boil.ContextExecutor) ([]*entity.Taxonomy, error) {
	var taxonomies []*entity.Taxonomy
	err := queries.Raw(
		`SELECT name, label, object_type, hierarchical FROM taxonomies ORDER BY name`,
	).Bind(ctx, pick(r.db, exec), &taxonomies)
	if err != nil {
		return nil, errors.Wrap(err, "查询分类法列表失败")
	}
	return taxonomies, nil
}
