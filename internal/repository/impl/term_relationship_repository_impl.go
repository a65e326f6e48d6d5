package impl

import (
	"context"
	"database/sql"

	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/aarondl/strmangle"
	"github.com/friendsofgo/errors"
	"github.com/lib/pq"

	"taxonomy-editor/internal/repository/entity"
	"taxonomy-editor/internal/repository/interfaces"
	"taxonomy-editor/internal/repository/query"
)

type termRelationshipRepositoryImpl struct {
	db *sql.DB
}

// NewTermRelationshipRepository 创建关联仓储实例
func NewTermRelationshipRepository(db *sql.DB) interfaces.TermRelationshipRepository {
	return &termRelationshipRepositoryImpl{db: db}
}

// ListObjectIDs 获取关联到分组键的内容 ID
func (r *termRelationshipRepositoryImpl) ListObjectIDs(ctx context.Context, exec boil.ContextExecutor, termTaxonomyID int64) ([]int64, error) {
	ids, err := queryInt64s(ctx, pick(r.db, exec),
		`SELECT object_id FROM term_relationships WHERE term_taxonomy_id = $1 ORDER BY object_id`,
		termTaxonomyID,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "查询关联内容失败: term_taxonomy_id=%d", termTaxonomyID)
	}
	return ids, nil
}

// Exists 检查关联是否存在
func (r *termRelationshipRepositoryImpl) Exists(ctx context.Context, exec boil.ContextExecutor, objectID, termTaxonomyID int64) (bool, error) {
	exists, err := queryExists(ctx, pick(r.db, exec),
		`SELECT EXISTS(SELECT 1 FROM term_relationships WHERE object_id = $1 AND term_taxonomy_id = $2)`,
		objectID, termTaxonomyID,
	)
	if err != nil {
		return false, errors.Wrap(err, "检查关联是否存在失败")
	}
	return exists, nil
}

// Insert 新增关联
func (r *termRelationshipRepositoryImpl) Insert(ctx context.Context, exec boil.ContextExecutor, rel *entity.TermRelationship) error {
	_, err := pick(r.db, exec).ExecContext(ctx,
		`INSERT INTO term_relationships (object_id, term_taxonomy_id, term_order) VALUES ($1, $2, $3)`,
		rel.ObjectID, rel.TermTaxonomyID, rel.TermOrder,
	)
	if err != nil {
		return errors.Wrapf(err, "写入关联失败: object_id=%d term_taxonomy_id=%d", rel.ObjectID, rel.TermTaxonomyID)
	}
	return nil
}

// DeleteByTermTaxonomyID 删除分组键的全部关联
func (r *termRelationshipRepositoryImpl) DeleteByTermTaxonomyID(ctx context.Context, exec boil.ContextExecutor, termTaxonomyID int64) (int64, error) {
	result, err := pick(r.db, exec).ExecContext(ctx,
		`DELETE FROM term_relationships WHERE term_taxonomy_id = $1`,
		termTaxonomyID,
	)
	if err != nil {
		return 0, errors.Wrapf(err, "删除关联失败: term_taxonomy_id=%d", termTaxonomyID)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "获取删除行数失败")
	}
	return n, nil
}

// DeleteForObject 删除内容上指定分组键的关联
func (r *termRelationshipRepositoryImpl) DeleteForObject(ctx context.Context, exec boil.ContextExecutor, objectID int64, termTaxonomyIDs []int64) (int64, error) {
	if len(termTaxonomyIDs) == 0 {
		return 0, nil
	}
	q := `DELETE FROM term_relationships
	WHERE object_id = $1 AND term_taxonomy_id IN (` + strmangle.Placeholders(true, len(termTaxonomyIDs), 2, 1) + `)`

	result, err := pick(r.db, exec).ExecContext(ctx, q, int64sToArgs([]interface{}{objectID}, termTaxonomyIDs)...)
	if err != nil {
		return 0, errors.Wrapf(err, "删除内容关联失败: object_id=%d", objectID)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "获取删除行数失败")
	}
	return n, nil
}

// ResolveTaxonomy 获取分组键所属的分类法
func (r *termRelationshipRepositoryImpl) ResolveTaxonomy(ctx context.Context, exec boil.ContextExecutor, termTaxonomyID int64) (string, error) {
	var taxonomy string
	err := pick(r.db, exec).QueryRowContext(ctx,
		`SELECT taxonomy FROM term_taxonomy WHERE term_taxonomy_id = $1`,
		termTaxonomyID,
	).Scan(&taxonomy)
	if isNoRows(err) {
		return "", errors.Wrapf(interfaces.ErrNotFound, "分组键不存在: %d", termTaxonomyID)
	}
	if err != nil {
		return "", errors.Wrap(err, "查询分组键所属分类法失败")
	}
	return taxonomy, nil
}

// ListTermsForObjects 获取内容在分类法下的词条
func (r *termRelationshipRepositoryImpl) ListTermsForObjects(ctx context.Context, exec boil.ContextExecutor, taxonomy string, objectIDs []int64) ([]*query.ObjectTerm, error) {
	if len(objectIDs) == 0 {
		return nil, nil
	}
	q := `SELECT
		tr.object_id,
		t.term_id,
		tt.term_taxonomy_id,
		t.name,
		t.slug
	FROM term_relationships tr
	INNER JOIN term_taxonomy tt ON tt.term_taxonomy_id = tr.term_taxonomy_id
	INNER JOIN terms t ON t.term_id = tt.term_id
	WHERE tt.taxonomy = $1 AND tr.object_id = ANY($2)
	ORDER BY tr.object_id, tr.term_order, t.name`

	var terms []*query.ObjectTerm
	if err := queries.Raw(q, taxonomy, pq.Array(objectIDs)).Bind(ctx, pick(r.db, exec), &terms); err != nil {
		return nil, errors.Wrap(err, "查询内容词条失败")
	}
	return terms, nil
}
