package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxonomy-editor/internal/pkg/log"
	"taxonomy-editor/internal/pkg/metrics"
	"taxonomy-editor/internal/pkg/notify"
	"taxonomy-editor/internal/pkg/xerrors"
)

type mergeFixture struct {
	store   *memStore
	svc     *TermMergeService
	cache   *recordingInvalidator
	pub     *recordingPublisher
	metrics *metrics.TermMetrics
	logs    *bytes.Buffer
}

func newMergeFixture(t *testing.T) *mergeFixture {
	t.Helper()
	store := newMemStore()
	f := &mergeFixture{
		store:   store,
		cache:   &recordingInvalidator{},
		pub:     &recordingPublisher{},
		metrics: metrics.NewTermMetricsWithRegistry("merge_test", prometheus.NewRegistry()),
		logs:    &bytes.Buffer{},
	}
	f.svc = NewTermMergeServiceWithDeps(TermMergeServiceDeps{
		Transactor:       store,
		TaxonomyRepo:     memTaxonomyRepo{store},
		TermRepo:         memTermRepo{store},
		RelationshipRepo: memRelRepo{store},
		MetaRepo:         memMetaRepo{store},
		Cache:            f.cache,
		Publisher:        f.pub,
		Metrics:          f.metrics,
		Logger:           log.NewLogger(slog.NewJSONHandler(f.logs, nil)),
	})
	return f
}

// seedScenario tags 分类法：A(1) B(2) C(3)，内容 1-5；
// 1、2 只有 A，3、4 只有 B，5 同时有 A 和 B
func (f *mergeFixture) seedScenario() {
	f.store.addTaxonomy("tags")
	f.store.addTerm("tags", 1, "A")
	f.store.addTerm("tags", 2, "B")
	f.store.addTerm("tags", 3, "C")
	f.store.addContent(1, 2, 3, 4, 5)
	f.store.tag(1, 1, 2, 5)
	f.store.tag(2, 3, 4, 5)
}

func (f *mergeFixture) mergeCount(taxonomy, result string) float64 {
	return testutil.ToFloat64(f.metrics.MergesTotal.WithLabelValues(taxonomy, result, metrics.GetServiceName()))
}

func assertCountInvariant(t *testing.T, st *memState) {
	t.Helper()
	for ttID, tt := range st.termTax {
		assert.Equal(t, st.actualCount(ttID), tt.count, "term_taxonomy_id=%d 使用次数与实际关联数不一致", ttID)
	}
}

func TestTermMergeService_Scenario(t *testing.T) {
	f := newMergeFixture(t)
	f.seedScenario()

	result, err := f.svc.MergeTerms(context.Background(), 1, []int64{2}, "tags")
	require.NoError(t, err)

	st := f.store.snapshot()
	for _, objectID := range []int64{1, 2, 3, 4, 5} {
		assert.Equal(t, []int64{1}, st.objectTermTaxonomies(objectID), "object %d", objectID)
	}
	_, exists := st.termTax[2]
	assert.False(t, exists, "B 应已删除")
	_, exists = st.terms[2]
	assert.False(t, exists)

	assert.Equal(t, int64(5), st.termTax[1].count)
	assert.Equal(t, int64(0), st.termTax[3].count, "C 不受影响")
	assert.Equal(t, "C", st.terms[3].name)
	assertCountInvariant(t, st)

	assert.Equal(t, []int64{2}, result.MergedTermIDs)
	assert.Empty(t, result.SkippedTermIDs)
	assert.Equal(t, 2, result.RepointedAssociations)
	assert.Equal(t, []int64{3, 4, 5}, result.AffectedObjectIDs)
	require.NotNil(t, result.PrimaryTerm)
	assert.Equal(t, int64(5), result.PrimaryTerm.Count)
	assert.Equal(t, 1, result.MergedCount())

	assert.Equal(t, 1, f.store.commits)
	assert.Equal(t, float64(1), f.mergeCount("tags", metrics.MergeResultSuccess))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.TermsAbsorbedTotal.WithLabelValues("tags", metrics.GetServiceName())))
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.AssociationsRepoints.WithLabelValues("tags", metrics.GetServiceName())))
}

func TestTermMergeService_InvalidatesAndPublishesAfterCommit(t *testing.T) {
	f := newMergeFixture(t)
	f.seedScenario()

	_, err := f.svc.MergeTerms(context.Background(), 1, []int64{2}, "tags")
	require.NoError(t, err)

	require.Len(t, f.cache.calls, 1)
	assert.Equal(t, "tags", f.cache.calls[0].taxonomy)
	assert.Equal(t, "merge", f.cache.calls[0].reason)
	assert.Equal(t, []int64{3, 4, 5}, f.cache.calls[0].objectIDs)

	require.Len(t, f.pub.subjects, 1)
	assert.Equal(t, notify.SubjectTermsMerged, f.pub.subjects[0])
	event, ok := f.pub.payloads[0].(notify.TermsMergedEvent)
	require.True(t, ok)
	assert.Equal(t, "tags", event.Taxonomy)
	assert.Equal(t, int64(1), event.PrimaryTermID)
	assert.Equal(t, []int64{2}, event.MergedTermIDs)
	assert.Equal(t, []int64{}, event.SkippedTermIDs)
	assert.Equal(t, 3, event.AffectedObjectCount)
	assert.NotEmpty(t, event.EventID)
}

func TestTermMergeService_SideEffectFailuresDoNotFailMerge(t *testing.T) {
	f := newMergeFixture(t)
	f.seedScenario()
	f.cache.err = errors.New("redis down")
	f.pub.err = errors.New("nats down")

	result, err := f.svc.MergeTerms(context.Background(), 1, []int64{2}, "tags")
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, result.MergedTermIDs)
	assert.Equal(t, 1, f.store.commits)
}

func TestTermMergeService_IdempotentReMerge(t *testing.T) {
	f := newMergeFixture(t)
	f.seedScenario()
	ctx := context.Background()

	_, err := f.svc.MergeTerms(ctx, 1, []int64{2}, "tags")
	require.NoError(t, err)
	before := f.store.snapshot()

	result, err := f.svc.MergeTerms(ctx, 1, []int64{2}, "tags")
	require.NoError(t, err)
	assert.Empty(t, result.MergedTermIDs)
	assert.Equal(t, []int64{2}, result.SkippedTermIDs)
	assert.Equal(t, 0, result.RepointedAssociations)
	assert.Equal(t, before, f.store.snapshot())

	// 第二次没有实际合并，不再发布事件
	assert.Len(t, f.pub.subjects, 1)
}

func TestTermMergeService_NoDuplicateAssociations(t *testing.T) {
	f := newMergeFixture(t)
	f.store.addTaxonomy("post_tag")
	f.store.addTerm("post_tag", 10, "go")
	f.store.addTerm("post_tag", 11, "golang")
	f.store.addTerm("post_tag", 12, "Go-Lang")
	f.store.addContent(1, 2, 3)
	f.store.tag(10, 1, 2, 3)
	f.store.tag(11, 1, 2)
	f.store.tag(12, 2, 3)

	result, err := f.svc.MergeTerms(context.Background(), 10, []int64{11, 12}, "post_tag")
	require.NoError(t, err)
	assert.Equal(t, 0, result.RepointedAssociations)

	st := f.store.snapshot()
	for _, objectID := range []int64{1, 2, 3} {
		assert.Equal(t, []int64{10}, st.objectTermTaxonomies(objectID))
	}
	assert.Equal(t, int64(3), st.termTax[10].count)
	assertCountInvariant(t, st)
}

func TestTermMergeService_AtomicityOnSecondFailure(t *testing.T) {
	f := newMergeFixture(t)
	f.store.addTaxonomy("tags")
	for id, name := range map[int64]string{1: "primary", 2: "dup-a", 3: "dup-b", 4: "dup-c"} {
		f.store.addTerm("tags", id, name)
	}
	f.store.addContent(1, 2, 3, 4)
	f.store.tag(1, 1)
	f.store.tag(2, 2)
	f.store.tag(3, 3)
	f.store.tag(4, 4)
	f.store.addMeta(2, "color", "blue")
	before := f.store.snapshot()

	boom := errors.New("connection reset")
	f.store.failOn("rel.ListObjectIDs", 2, boom)

	result, err := f.svc.MergeTerms(context.Background(), 1, []int64{2, 3, 4}, "tags")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, xerrors.HasCode(err, xerrors.CodeReconciliationFailed))
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, before, f.store.snapshot(), "失败的合并不能留下任何修改")
	assert.Equal(t, 0, f.store.commits)
	assert.Equal(t, 1, f.store.rollbacks)
	assert.Empty(t, f.cache.calls)
	assert.Empty(t, f.pub.subjects)
	assert.Equal(t, float64(1), f.mergeCount("tags", metrics.MergeResultRollback))
}

func TestTermMergeService_InsertAndDeleteFailures(t *testing.T) {
	tests := []struct {
		name  string
		op    string
		inner xerrors.ErrorCode
	}{
		{name: "写入关联失败", op: "rel.Insert", inner: xerrors.CodeAssociationInsertFailed},
		{name: "删除旧关联失败", op: "rel.DeleteByTermTaxonomyID", inner: xerrors.CodeAssociationDeleteFailed},
		{name: "无法解析分类法", op: "rel.ResolveTaxonomy", inner: xerrors.CodeTaxonomyUnresolvable},
		{name: "重新计数失败", op: "term.RecountUsage", inner: xerrors.CodeTermCountRecomputeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMergeFixture(t)
			f.seedScenario()
			before := f.store.snapshot()
			f.store.failOn(tt.op, 1, errors.New("db error"))

			_, err := f.svc.MergeTerms(context.Background(), 1, []int64{2}, "tags")
			require.Error(t, err)
			assert.True(t, xerrors.HasCode(err, xerrors.CodeReconciliationFailed))
			assert.True(t, xerrors.HasCode(err, tt.inner))
			assert.Equal(t, before, f.store.snapshot())
		})
	}
}

func TestTermMergeService_DeletionFailed(t *testing.T) {
	f := newMergeFixture(t)
	f.seedScenario()
	before := f.store.snapshot()
	f.store.failOn("term.Delete", 1, errors.New("foreign key violation"))

	_, err := f.svc.MergeTerms(context.Background(), 1, []int64{2}, "tags")
	require.Error(t, err)
	assert.True(t, xerrors.HasCode(err, xerrors.CodeTermDeletionFailed))
	assert.Equal(t, before, f.store.snapshot())
}

func TestTermMergeService_CommitFailed(t *testing.T) {
	f := newMergeFixture(t)
	f.seedScenario()
	before := f.store.snapshot()
	f.store.commitErr = errors.New("serialization failure")

	_, err := f.svc.MergeTerms(context.Background(), 1, []int64{2}, "tags")
	require.Error(t, err)
	assert.True(t, xerrors.HasCode(err, xerrors.CodeMergeCommitFailed))
	assert.Equal(t, before, f.store.snapshot())
	assert.Empty(t, f.cache.calls)
}

func TestTermMergeService_MetadataPrecedence(t *testing.T) {
	f := newMergeFixture(t)
	f.seedScenario()
	f.store.addMeta(1, "color", "red")
	f.store.addMeta(2, "color", "blue")
	f.store.addMeta(2, "size", "L")
	f.store.addMeta(2, "size", "XL")

	_, err := f.svc.MergeTerms(context.Background(), 1, []int64{2}, "tags")
	require.NoError(t, err)

	st := f.store.snapshot()
	assert.Equal(t, []string{"red"}, st.metaValues(1, "color"))
	// 同一键只复制第一个值
	assert.Equal(t, []string{"L"}, st.metaValues(1, "size"))
	assert.Empty(t, st.metaValues(2, "color"), "重复词条的元数据随词条删除")
}

func TestTermMergeService_MetadataFailureIsSwallowed(t *testing.T) {
	f := newMergeFixture(t)
	f.seedScenario()
	f.store.addMeta(2, "color", "blue")
	f.store.addMeta(2, "icon", "star")
	f.store.addMeta(2, "icon", "moon")
	f.store.addMeta(2, "weight", "3")
	// 第二次写入（icon=star）失败
	f.store.failOn("meta.Add", 2, errors.New("disk full"))

	result, err := f.svc.MergeTerms(context.Background(), 1, []int64{2}, "tags")
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, result.MergedTermIDs)

	st := f.store.snapshot()
	// 只有失败的那一条被回滚，之前和之后的键照常复制
	assert.Equal(t, []string{"blue"}, st.metaValues(1, "color"))
	assert.Equal(t, []string{"moon"}, st.metaValues(1, "icon"))
	assert.Equal(t, []string{"3"}, st.metaValues(1, "weight"))
	assert.Equal(t, []int64{1}, st.objectTermTaxonomies(3))
	assertCountInvariant(t, st)
}

func TestTermMergeService_MetadataListFailure(t *testing.T) {
	f := newMergeFixture(t)
	f.seedScenario()
	f.store.addMeta(2, "color", "blue")
	f.store.failOn("meta.ListByTerm", 1, errors.New("timeout"))

	result, err := f.svc.MergeTerms(context.Background(), 1, []int64{2}, "tags")
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, result.MergedTermIDs)

	st := f.store.snapshot()
	assert.Empty(t, st.metaValues(1, "color"))
	assert.Equal(t, int64(5), st.termTax[1].count)
}

func TestTermMergeService_BusinessEventUsesServiceLogger(t *testing.T) {
	f := newMergeFixture(t)
	f.seedScenario()

	_, err := f.svc.MergeTerms(context.Background(), 1, []int64{2}, "tags")
	require.NoError(t, err)
	assert.Contains(t, f.logs.String(), `"event":"terms_merged"`)
}

func TestTermMergeService_Validation(t *testing.T) {
	tests := []struct {
		name      string
		primary   int64
		termIDs   []int64
		taxonomy  string
		wantCode  xerrors.ErrorCode
		setupFunc func(f *mergeFixture)
	}{
		{name: "分类法不存在", primary: 999, termIDs: []int64{2}, taxonomy: "missing", wantCode: xerrors.CodeInvalidTaxonomy},
		{name: "主词条不存在", primary: 999, termIDs: []int64{2}, taxonomy: "tags", wantCode: xerrors.CodeInvalidPrimaryTerm},
		{name: "主词条属于其他分类法", primary: 7, termIDs: []int64{2}, taxonomy: "tags", wantCode: xerrors.CodeInvalidPrimaryTerm,
			setupFunc: func(f *mergeFixture) {
				f.store.addTaxonomy("category")
				f.store.addTerm("category", 7, "News")
			}},
		{name: "只包含主词条", primary: 1, termIDs: []int64{1, 1}, taxonomy: "tags", wantCode: xerrors.CodeNothingToMerge},
		{name: "空列表", primary: 1, termIDs: nil, taxonomy: "tags", wantCode: xerrors.CodeNothingToMerge},
		{name: "空列表先于主词条校验", primary: 999, termIDs: nil, taxonomy: "tags", wantCode: xerrors.CodeNothingToMerge},
		{name: "空列表先于分类法校验", primary: 1, termIDs: []int64{1}, taxonomy: "missing", wantCode: xerrors.CodeNothingToMerge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMergeFixture(t)
			f.seedScenario()
			if tt.setupFunc != nil {
				tt.setupFunc(f)
			}
			before := f.store.snapshot()

			_, err := f.svc.MergeTerms(context.Background(), tt.primary, tt.termIDs, tt.taxonomy)
			require.Error(t, err)
			assert.True(t, xerrors.HasCode(err, tt.wantCode), "got %v", err)
			assert.Equal(t, before, f.store.snapshot())
			assert.Equal(t, 0, f.store.commits+f.store.rollbacks, "校验失败前不开启事务")
			assert.Equal(t, float64(1), f.mergeCount(tt.taxonomy, metrics.MergeResultRejected))
		})
	}
}

func TestTermMergeService_CallerOrderAndDedupe(t *testing.T) {
	f := newMergeFixture(t)
	f.seedScenario()
	f.store.addTerm("tags", 4, "D")

	result, err := f.svc.MergeTerms(context.Background(), 1, []int64{4, 2, 4, 1, 99, 3}, "tags")
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 2, 3}, result.MergedTermIDs)
	assert.Equal(t, []int64{99}, result.SkippedTermIDs)

	st := f.store.snapshot()
	assert.Len(t, st.termTax, 1)
	assertCountInvariant(t, st)
}

func TestTermMergeService_DuplicateVanishesBeforeDelete(t *testing.T) {
	f := newMergeFixture(t)
	f.seedScenario()
	// GetByID 调用顺序：主词条校验、重复词条读取、删除前复查、合并后重读主词条
	f.store.onCall("term.GetByID", 3, func(st *memState) {
		delete(st.termTax, 2)
		delete(st.terms, 2)
	})
	f.store.failOn("term.Delete", 1, errors.New("must not be called"))

	result, err := f.svc.MergeTerms(context.Background(), 1, []int64{2}, "tags")
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, result.MergedTermIDs)
	assert.Equal(t, int64(5), result.PrimaryTerm.Count)
}

func TestTermMergeService_BulkMerge(t *testing.T) {
	t.Run("少于两个词条", func(t *testing.T) {
		f := newMergeFixture(t)
		f.seedScenario()

		_, err := f.svc.BulkMerge(context.Background(), "tags", []int64{1})
		require.Error(t, err)
		assert.True(t, xerrors.HasCode(err, xerrors.CodeTooFewTermsSelected))
	})

	t.Run("第一个词条为主词条", func(t *testing.T) {
		f := newMergeFixture(t)
		f.seedScenario()

		result, err := f.svc.BulkMerge(context.Background(), "tags", []int64{2, 1, 3})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Merged)
		assert.Equal(t, int64(2), result.PrimaryTerm.TermID)
		assert.Equal(t, int64(5), result.PrimaryTerm.Count)

		st := f.store.snapshot()
		assert.Len(t, st.termTax, 1)
		assertCountInvariant(t, st)
	})
}

func TestFilterDuplicates(t *testing.T) {
	assert.Equal(t, []int64{3, 2}, filterDuplicates(1, []int64{3, 1, 2, 3, 1}))
	assert.Empty(t, filterDuplicates(1, []int64{1}))
	assert.Empty(t, filterDuplicates(1, nil))
}
