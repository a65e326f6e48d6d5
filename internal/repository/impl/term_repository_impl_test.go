package impl

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxonomy-editor/internal/repository/interfaces"
	"taxonomy-editor/internal/repository/query"
)

var termRowColumns = []string{
	"term_id", "term_taxonomy_id", "taxonomy", "name", "slug", "description", "parent", "count",
}

func TestTermRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTermRepository(db)
	ctx := context.Background()

	t.Run("成功获取词条", func(t *testing.T) {
		mock.ExpectQuery("FROM term_taxonomy tt").
			WithArgs(int64(1), "post_tag").
			WillReturnRows(sqlmock.NewRows(termRowColumns).
				AddRow(1, 11, "post_tag", "Apple", "apple", nil, nil, 3))

		term, err := repo.GetByID(ctx, nil, 1, "post_tag")
		require.NoError(t, err)
		assert.Equal(t, int64(11), term.TermTaxonomyID)
		assert.Equal(t, "Apple", term.Name)
		assert.False(t, term.Description.Valid)
		assert.Equal(t, int64(3), term.Count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("词条不存在", func(t *testing.T) {
		mock.ExpectQuery("FROM term_taxonomy tt").
			WithArgs(int64(99), "post_tag").
			WillReturnRows(sqlmock.NewRows(termRowColumns))

		term, err := repo.GetByID(ctx, nil, 99, "post_tag")
		assert.Nil(t, term)
		assert.True(t, errors.Is(err, interfaces.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTermRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTermRepository(db)
	ctx := context.Background()

	t.Run("按顺序删除关联、分组键、元数据和词条", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT term_taxonomy_id FROM term_taxonomy WHERE term_id = $1 AND taxonomy = $2")).
			WithArgs(int64(2), "post_tag").
			WillReturnRows(sqlmock.NewRows([]string{"term_taxonomy_id"}).AddRow(22))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM term_relationships WHERE term_taxonomy_id = $1")).
			WithArgs(int64(22)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM term_taxonomy WHERE term_taxonomy_id = $1")).
			WithArgs(int64(22)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM termmeta WHERE term_id = $1")).
			WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM terms WHERE term_id = $1")).
			WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(ctx, nil, 2, "post_tag"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("词条不存在", func(t *testing.T) {
		mock.ExpectQuery("SELECT term_taxonomy_id FROM term_taxonomy").
			WithArgs(int64(3), "post_tag").
			WillReturnRows(sqlmock.NewRows([]string{"term_taxonomy_id"}))

		err := repo.Delete(ctx, nil, 3, "post_tag")
		assert.True(t, errors.Is(err, interfaces.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("删除分组键失败", func(t *testing.T) {
		mock.ExpectQuery("SELECT term_taxonomy_id FROM term_taxonomy").
			WithArgs(int64(4), "post_tag").
			WillReturnRows(sqlmock.NewRows([]string{"term_taxonomy_id"}).AddRow(44))
		mock.ExpectExec("DELETE FROM term_relationships").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM term_taxonomy").WillReturnError(errors.New("lock timeout"))

		err := repo.Delete(ctx, nil, 4, "post_tag")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "删除分组键失败")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTermRepository_RecountUsage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTermRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("WHERE tt.term_taxonomy_id IN ($1,$2)")).
		WithArgs(int64(11), int64(22)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	// 重复的分组键只计算一次
	require.NoError(t, repo.RecountUsage(context.Background(), nil, 11, 22, 11))
	require.NoError(t, repo.RecountUsage(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTermRepository(db)

	params := query.TermListParams{Taxonomy: "category", Search: "app"}
	params.Page, params.PageSize = 2, 10
	params.Validate()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) AS total")).
		WithArgs("category", "%app%").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $3 OFFSET $4")).
		WithArgs("category", "%app%", 10, 10).
		WillReturnRows(sqlmock.NewRows(termRowColumns).
			AddRow(5, 55, "category", "Apple pie", "apple-pie", "desc", 1, 0).
			AddRow(6, 66, "category", "Apples", "apples", nil, nil, 4))

	terms, total, err := repo.List(context.Background(), nil, params)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, terms, 2)
	assert.Equal(t, "desc", terms[0].Description.String)
	assert.Equal(t, int64(1), terms[0].Parent.Int64)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepository_ListCountDrift(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTermRepository(db)

	mock.ExpectQuery("WHERE tt.count <> COALESCE").
		WithArgs(500).
		WillReturnRows(sqlmock.NewRows([]string{"term_taxonomy_id", "taxonomy", "stored_count", "actual_count"}).
			AddRow(11, "post_tag", 7, 5))

	drifts, err := repo.ListCountDrift(context.Background(), nil, 500)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, int64(7), drifts[0].StoredCount)
	assert.Equal(t, int64(5), drifts[0].ActualCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
