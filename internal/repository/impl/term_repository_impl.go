package impl

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/aarondl/strmangle"
	"github.com/friendsofgo/errors"
	"github.com/lib/pq"

	"taxonomy-editor/internal/repository/entity"
	"taxonomy-editor/internal/repository/interfaces"
	"taxonomy-editor/internal/repository/query"
)

const termColumns = `
	t.term_id,
	tt.term_taxonomy_id,
	tt.taxonomy,
	t.name,
	t.slug,
	tt.description,
	tt.parent,
	tt.count`

const termFrom = `
	FROM term_taxonomy tt
	INNER JOIN terms t ON t.term_id = tt.term_id`

type termRepositoryImpl struct {
	db *sql.DB
}

// NewTermRepository 创建词条仓储实例
func NewTermRepository(db *sql.DB) interfaces.TermRepository {
	return &termRepositoryImpl{db: db}
}

// GetByID 获取分类法中的词条
func (r *termRepositoryImpl) GetByID(ctx context.Context, exec boil.ContextExecutor, termID int64, taxonomy string) (*entity.Term, error) {
	q := `SELECT` + termColumns + termFrom + `
	WHERE tt.term_id = $1 AND tt.taxonomy = $2`

	var term entity.Term
	err := queries.Raw(q, termID, taxonomy).Bind(ctx, pick(r.db, exec), &term)
	if isNoRows(err) {
		return nil, errors.Wrapf(interfaces.ErrNotFound, "词条不存在: %d (%s)", termID, taxonomy)
	}
	if err != nil {
		return nil, errors.Wrap(err, "查询词条失败")
	}
	return &term, nil
}

// GetByIDs 批量获取词条
func (r *termRepositoryImpl) GetByIDs(ctx context.Context, exec boil.ContextExecutor, taxonomy string, termIDs []int64) ([]*entity.Term, error) {
	if len(termIDs) == 0 {
		return nil, nil
	}
	q := `SELECT` + termColumns + termFrom + `
	WHERE tt.taxonomy = $1 AND tt.term_id IN (` + strmangle.Placeholders(true, len(termIDs), 2, 1) + `)
	ORDER BY t.term_id`

	var terms []*entity.Term
	if err := queries.Raw(q, int64sToArgs([]interface{}{taxonomy}, termIDs)...).Bind(ctx, pick(r.db, exec), &terms); err != nil {
		return nil, errors.Wrap(err, "批量查询词条失败")
	}
	return terms, nil
}

// GetBySlugs 按别名批量获取词条
func (r *termRepositoryImpl) GetBySlugs(ctx context.Context, exec boil.ContextExecutor, taxonomy string, slugs []string) ([]*entity.Term, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	q := `SELECT` + termColumns + termFrom + `
	WHERE tt.taxonomy = $1 AND t.slug = ANY($2)
	ORDER BY t.name`

	var terms []*entity.Term
	if err := queries.Raw(q, taxonomy, pq.Array(slugs)).Bind(ctx, pick(r.db, exec), &terms); err != nil {
		return nil, errors.Wrap(err, "按别名查询词条失败")
	}
	return terms, nil
}

// List 获取分类法下的词条
func (r *termRepositoryImpl) List(ctx context.Context, exec boil.ContextExecutor, params query.TermListParams) ([]*entity.Term, int64, error) {
	ex := pick(r.db, exec)

	where := []string{"tt.taxonomy = $1"}
	args := []interface{}{params.Taxonomy}
	if params.HideEmpty {
		where = append(where, "tt.count > 0")
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("(t.name ILIKE $%d OR t.slug ILIKE $%d)", len(args), len(args)))
	}
	whereSQL := " WHERE " + strings.Join(where, " AND ")

	var total totalRow
	if err := queries.Raw(`SELECT COUNT(*) AS total`+termFrom+whereSQL, args...).Bind(ctx, ex, &total); err != nil {
		return nil, 0, errors.Wrap(err, "查询词条总数失败")
	}

	q := `SELECT` + termColumns + termFrom + whereSQL + `
	ORDER BY t.name ASC, t.term_id ASC`
	if params.PageSize > 0 {
		args = append(args, params.GetLimit(), params.GetOffset())
		q += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	var terms []*entity.Term
	if err := queries.Raw(q, args...).Bind(ctx, ex, &terms); err != nil {
		return nil, 0, errors.Wrap(err, "查询词条列表失败")
	}
	return terms, total.Total, nil
}

// Delete 删除分类法中的词条
func (r *termRepositoryImpl) Delete(ctx context.Context, exec boil.ContextExecutor, termID int64, taxonomy string) error {
	ex := pick(r.db, exec)

	var termTaxonomyID int64
	err := ex.QueryRowContext(ctx,
		`SELECT term_taxonomy_id FROM term_taxonomy WHERE term_id = $1 AND taxonomy = $2`,
		termID, taxonomy,
	).Scan(&termTaxonomyID)
	if isNoRows(err) {
		return errors.Wrapf(interfaces.ErrNotFound, "词条不存在: %d (%s)", termID, taxonomy)
	}
	if err != nil {
		return errors.Wrap(err, "查询词条分组键失败")
	}

	steps := []struct {
		desc  string
		query string
		args  []interface{}
	}{
		{"删除残留关联", `DELETE FROM term_relationships WHERE term_taxonomy_id = $1`, []interface{}{termTaxonomyID}},
		{"删除分组键", `DELETE FROM term_taxonomy WHERE term_taxonomy_id = $1`, []interface{}{termTaxonomyID}},
		{"删除词条元数据", `DELETE FROM termmeta WHERE term_id = $1`, []interface{}{termID}},
		{"删除词条", `DELETE FROM terms WHERE term_id = $1 AND NOT EXISTS (SELECT 1 FROM term_taxonomy WHERE term_id = $1)`, []interface{}{termID}},
	}
	for _, step := range steps {
		if _, err := ex.ExecContext(ctx, step.query, step.args...); err != nil {
			return errors.Wrapf(err, "%s失败: term_id=%d", step.desc, termID)
		}
	}
	return nil
}

// RecountUsage 按实际关联数重新计算使用次数
func (r *termRepositoryImpl) RecountUsage(ctx context.Context, exec boil.ContextExecutor, termTaxonomyIDs ...int64) error {
	if len(termTaxonomyIDs) == 0 {
		return nil
	}
	ids := dedupeInt64s(termTaxonomyIDs)
	q := `UPDATE term_taxonomy tt
	SET count = (
		SELECT COUNT(DISTINCT tr.object_id)
		FROM term_relationships tr
		WHERE tr.term_taxonomy_id = tt.term_taxonomy_id
	)
	WHERE tt.term_taxonomy_id IN (` + strmangle.Placeholders(true, len(ids), 1, 1) + `)`

	if _, err := pick(r.db, exec).ExecContext(ctx, q, int64sToArgs(nil, ids)...); err != nil {
		return errors.Wrap(err, "重新计算词条使用次数失败")
	}
	return nil
}

// ListCountDrift 查找使用次数不一致的分组键
func (r *termRepositoryImpl) ListCountDrift(ctx context.Context, exec boil.ContextExecutor, limit int) ([]*entity.CountDrift, error) {
	q := `SELECT
		tt.term_taxonomy_id,
		tt.taxonomy,
		tt.count AS stored_count,
		COALESCE(r.actual, 0) AS actual_count
	FROM term_taxonomy tt
	LEFT JOIN (
		SELECT term_taxonomy_id, COUNT(DISTINCT object_id) AS actual
		FROM term_relationships
		GROUP BY term_taxonomy_id
	) r ON r.term_taxonomy_id = tt.term_taxonomy_id
	WHERE tt.count <> COALESCE(r.actual, 0)
	ORDER BY tt.term_taxonomy_id
	LIMIT $1`

	var drifts []*entity.CountDrift
	if err := queries.Raw(q, limit).Bind(ctx, pick(r.db, exec), &drifts); err != nil {
		return nil, errors.Wrap(err, "查询使用次数偏差失败")
	}
	return drifts, nil
}
