package impl

import (
	"context"
	"database/sql"

	"github.com/aarondl/null/v8"
	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/friendsofgo/errors"

	"taxonomy-editor/internal/repository/entity"
	"taxonomy-editor/internal/repository/interfaces"
)

type termMetaRepositoryImpl struct {
	db *sql.DB
}

// NewTermMetaRepository 创建词条元数据仓储实例
func NewTermMetaRepository(db *sql.DB) interfaces.TermMetaRepository {
	return &termMetaRepositoryImpl{db: db}
}

// ListByTerm 获取词条的全部元数据
func (r *termMetaRepositoryImpl) ListByTerm(ctx context.Context, exec boil.ContextExecutor, termID int64) ([]*entity.TermMeta, error) {
	var metas []*entity.TermMeta
	err := queries.Raw(
		`SELECT meta_id, term_id, meta_key, meta_value FROM termmeta WHERE term_id = $1 ORDER BY meta_id`,
		termID,
	).Bind(ctx, pick(r.db, exec), &metas)
	if err != nil {
		return nil, errors.Wrapf(err, "查询词条元数据失败: term_id=%d", termID)
	}
	return metas, nil
}

// KeyExists 检查词条是否已有该键
func (r *termMetaRepositoryImpl) KeyExists(ctx context.Context, exec boil.ContextExecutor, termID int64, key string) (bool, error) {
	exists, err := queryExists(ctx, pick(r.db, exec),
		`SELECT EXISTS(SELECT 1 FROM termmeta WHERE term_id = $1 AND meta_key = $2)`,
		termID, key,
	)
	if err != nil {
		return false, errors.Wrap(err, "检查元数据键失败")
	}
	return exists, nil
}

// Add 追加一条元数据
func (r *termMetaRepositoryImpl) Add(ctx context.Context, exec boil.ContextExecutor, termID int64, key string, value null.String) error {
	_, err := pick(r.db, exec).ExecContext(ctx,
		`INSERT INTO termmeta (term_id, meta_key, meta_value) VALUES ($1, $2, $3)`,
		termID, key, value,
	)
	if err != nil {
		return errors.Wrapf(err, "写入词条元数据失败: term_id=%d key=%s", termID, key)
	}
	return nil
}
