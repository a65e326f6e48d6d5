package impl

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/friendsofgo/errors"
	"github.com/lib/pq"

	"taxonomy-editor/internal/repository/entity"
	"taxonomy-editor/internal/repository/interfaces"
	"taxonomy-editor/internal/repository/query"
)

type contentRepositoryImpl struct {
	db *sql.DB
}

// NewContentRepository 创建内容仓储实例
func NewContentRepository(db *sql.DB) interfaces.ContentRepository {
	return &contentRepositoryImpl{db: db}
}

// ExistingIDs 过滤出存在的内容 ID
func (r *contentRepositoryImpl) ExistingIDs(ctx context.Context, exec boil.ContextExecutor, ids []int64) ([]int64, error) {
	ids = dedupeInt64s(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := queryInt64s(ctx, pick(r.db, exec),
		`SELECT id FROM contents WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "查询内容失败")
	}

	exists := make(map[int64]struct{}, len(found))
	for _, id := range found {
		exists[id] = struct{}{}
	}
	result := make([]int64, 0, len(found))
	for _, id := range ids {
		if _, ok := exists[id]; ok {
			result = append(result, id)
		}
	}
	return result, nil
}

// FilterByTerms 获取同时带有全部指定别名的内容
func (r *contentRepositoryImpl) FilterByTerms(ctx context.Context, exec boil.ContextExecutor, params query.ContentFilterParams) ([]*entity.Content, int64, error) {
	slugs := dedupeStrings(params.Slugs)
	if len(slugs) == 0 {
		return nil, 0, nil
	}
	ex := pick(r.db, exec)

	const matched = `
	FROM contents c
	WHERE c.id IN (
		SELECT tr.object_id
		FROM term_relationships tr
		INNER JOIN term_taxonomy tt ON tt.term_taxonomy_id = tr.term_taxonomy_id
		INNER JOIN terms t ON t.term_id = tt.term_id
		WHERE tt.taxonomy = $1 AND t.slug = ANY($2)
		GROUP BY tr.object_id
		HAVING COUNT(DISTINCT t.slug) = $3
	)`
	args := []interface{}{params.Taxonomy, pq.Array(slugs), len(slugs)}

	var total totalRow
	if err := queries.Raw(`SELECT COUNT(*) AS total`+matched, args...).Bind(ctx, ex, &total); err != nil {
		return nil, 0, errors.Wrap(err, "查询内容总数失败")
	}

	q := `SELECT c.id, c.title, c.content_type, c.status, c.created_at` + matched + `
	ORDER BY c.created_at DESC, c.id DESC`
	if params.PageSize > 0 {
		args = append(args, params.GetLimit(), params.GetOffset())
		q += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	var contents []*entity.Content
	if err := queries.Raw(q, args...).Bind(ctx, ex, &contents); err != nil {
		return nil, 0, errors.Wrap(err, "按标签过滤内容失败")
	}
	return contents, total.Total, nil
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
