package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aarondl/sqlboiler/v4/boil"

	"taxonomy-editor/internal/pkg/log"
	"taxonomy-editor/internal/pkg/metrics"
	"taxonomy-editor/internal/pkg/notify"
	"taxonomy-editor/internal/pkg/xerrors"
	"taxonomy-editor/internal/repository/entity"
	"taxonomy-editor/internal/repository/impl"
	"taxonomy-editor/internal/repository/interfaces"
)

const (
	metaSavepoint     = "merge_term_meta"
	invalidateOnMerge = "merge"
)

// MergeResult 合并结果
type MergeResult struct {
	Taxonomy              string       `json:"taxonomy"`
	PrimaryTerm           *entity.Term `json:"primary_term"`
	MergedTermIDs         []int64      `json:"merged_term_ids"`
	SkippedTermIDs        []int64      `json:"skipped_term_ids"`
	RepointedAssociations int          `json:"repointed_associations"`
	AffectedObjectIDs     []int64      `json:"affected_object_ids"`
}

// MergedCount 实际并入主词条的重复词条数
func (r *MergeResult) MergedCount() int {
	return len(r.MergedTermIDs)
}

// BulkMergeResult 批量合并结果，Merged 为所选词条数减一
type BulkMergeResult struct {
	*MergeResult
	Merged int `json:"merged"`
}

// TermMergeService 词条合并服务
type TermMergeService struct {
	tx           interfaces.Transactor
	taxonomyRepo interfaces.TaxonomyRepository
	termRepo     interfaces.TermRepository
	reconciler   *AssociationReconciler
	metaMerger   *MetaMerger
	cache        CacheInvalidator
	publisher    notify.Publisher
	metrics      *metrics.TermMetrics
	logger       log.Logger
}

// TermMergeServiceDeps allows custom dependency injection (for tests).
type TermMergeServiceDeps struct {
	DB               *sql.DB
	Transactor       interfaces.Transactor
	TaxonomyRepo     interfaces.TaxonomyRepository
	TermRepo         interfaces.TermRepository
	RelationshipRepo interfaces.TermRelationshipRepository
	MetaRepo         interfaces.TermMetaRepository
	Cache            CacheInvalidator
	Publisher        notify.Publisher
	Metrics          *metrics.TermMetrics
	Logger           log.Logger
}

// NewTermMergeService 创建词条合并服务
func NewTermMergeService(db *sql.DB, cache CacheInvalidator) *TermMergeService {
	return NewTermMergeServiceWithDeps(TermMergeServiceDeps{
		DB:    db,
		Cache: cache,
	})
}

// NewTermMergeServiceWithDeps allows tests to supply custom repositories.
func NewTermMergeServiceWithDeps(deps TermMergeServiceDeps) *TermMergeService {
	if deps.Transactor == nil {
		deps.Transactor = impl.NewTransactor(deps.DB)
	}
	if deps.TaxonomyRepo == nil {
		deps.TaxonomyRepo = impl.NewTaxonomyRepository(deps.DB)
	}
	if deps.TermRepo == nil {
		deps.TermRepo = impl.NewTermRepository(deps.DB)
	}
	if deps.RelationshipRepo == nil {
		deps.RelationshipRepo = impl.NewTermRelationshipRepository(deps.DB)
	}
	if deps.MetaRepo == nil {
		deps.MetaRepo = impl.NewTermMetaRepository(deps.DB)
	}
	if deps.Cache == nil {
		deps.Cache = noopInvalidator{}
	}
	if deps.Publisher == nil {
		deps.Publisher = notify.NatsPublisher{}
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.DefaultTermMetrics
	}
	if deps.Logger == nil {
		deps.Logger = log.GetLogger()
	}

	return &TermMergeService{
		tx:           deps.Transactor,
		taxonomyRepo: deps.TaxonomyRepo,
		termRepo:     deps.TermRepo,
		reconciler:   NewAssociationReconciler(deps.RelationshipRepo, deps.Logger),
		metaMerger:   NewMetaMerger(deps.Transactor, deps.MetaRepo, deps.Logger),
		cache:        deps.Cache,
		publisher:    deps.Publisher,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
	}
}

// MergeTerms 把 termIDs 中的词条并入主词条。
// 重复词条按调用方给出的顺序处理；已不存在的词条被跳过。
// 整个合并在一个事务中完成，任一步失败都会回滚全部修改。
func (s *TermMergeService) MergeTerms(ctx context.Context, primaryTermID int64, termIDs []int64, taxonomy string) (*MergeResult, error) {
	start := time.Now()

	primary, duplicates, err := s.validate(ctx, primaryTermID, termIDs, taxonomy)
	if err != nil {
		s.metrics.RecordMerge(taxonomy, metrics.MergeResultRejected, 0, 0, time.Since(start))
		return nil, err
	}

	s.logger.InfoContext(ctx, "开始合并词条",
		log.String("taxonomy", taxonomy),
		log.Int64("primary_term_id", primary.TermID),
		log.Any("term_ids", duplicates),
	)

	result := &MergeResult{Taxonomy: taxonomy}
	pending := newPendingInvalidations()

	err = s.tx.WithTx(ctx, func(ctx context.Context, exec boil.ContextExecutor) error {
		for _, termID := range duplicates {
			if err := s.mergeOne(ctx, exec, primary, termID, taxonomy, result, pending); err != nil {
				return err
			}
		}

		if err := s.termRepo.RecountUsage(ctx, exec, primary.TermTaxonomyID); err != nil {
			return xerrors.NewReconciliationError(primary.TermID, recountError(primary.TermTaxonomyID, err))
		}

		refreshed, err := s.termRepo.GetByID(ctx, exec, primary.TermID, taxonomy)
		if err != nil {
			return xerrors.NewReconciliationError(primary.TermID, err)
		}
		result.PrimaryTerm = refreshed
		return nil
	})
	if err != nil {
		s.metrics.RecordMerge(taxonomy, metrics.MergeResultRollback, 0, 0, time.Since(start))
		if errors.Is(err, interfaces.ErrCommitFailed) {
			err = xerrors.NewWithError(xerrors.CodeMergeCommitFailed, "提交合并事务失败", err).
				WithMetadata("primary_term_id", primary.TermID)
		}
		s.logger.ErrorContext(ctx, "合并词条失败，事务已回滚",
			log.Err(err),
			log.String("taxonomy", taxonomy),
			log.Int64("primary_term_id", primary.TermID),
		)
		return nil, err
	}

	result.AffectedObjectIDs = pending.objectIDs()
	pending.flush(ctx, s.cache, invalidateOnMerge, s.logger)
	s.publishMerged(ctx, result)
	s.metrics.RecordMerge(taxonomy, metrics.MergeResultSuccess, len(result.MergedTermIDs), result.RepointedAssociations, time.Since(start))

	log.LogBusinessEvent(ctx, s.logger, "terms_merged", "term", strconv.FormatInt(primary.TermID, 10), map[string]interface{}{
		"taxonomy":         taxonomy,
		"merged_term_ids":  result.MergedTermIDs,
		"skipped_term_ids": result.SkippedTermIDs,
		"affected_objects": len(result.AffectedObjectIDs),
	})
	return result, nil
}

// BulkMerge 批量操作入口：第一个词条为主词条，其余为重复词条
func (s *TermMergeService) BulkMerge(ctx context.Context, taxonomy string, termIDs []int64) (*BulkMergeResult, error) {
	if len(termIDs) < 2 {
		return nil, xerrors.FromCode(xerrors.CodeTooFewTermsSelected).
			WithMetadata("selected", len(termIDs))
	}

	result, err := s.MergeTerms(ctx, termIDs[0], termIDs[1:], taxonomy)
	if err != nil {
		return nil, err
	}
	return &BulkMergeResult{MergeResult: result, Merged: len(termIDs) - 1}, nil
}

// validate 只读校验，通过前不开启事务。
// 顺序：重复词条集合、分类法、主词条
func (s *TermMergeService) validate(ctx context.Context, primaryTermID int64, termIDs []int64, taxonomy string) (*entity.Term, []int64, error) {
	duplicates := filterDuplicates(primaryTermID, termIDs)
	if len(duplicates) == 0 {
		return nil, nil, xerrors.NewNothingToMergeError(primaryTermID)
	}

	exec := s.tx.Executor()

	exists, err := s.taxonomyRepo.Exists(ctx, exec, taxonomy)
	if err != nil {
		return nil, nil, xerrors.NewDatabaseError("taxonomy_exists", "taxonomies", err)
	}
	if !exists {
		return nil, nil, xerrors.NewInvalidTaxonomyError(taxonomy)
	}

	primary, err := s.termRepo.GetByID(ctx, exec, primaryTermID, taxonomy)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil, xerrors.NewInvalidPrimaryTermError(primaryTermID, taxonomy, err)
		}
		return nil, nil, xerrors.NewDatabaseError("get_primary_term", "terms", err)
	}
	return primary, duplicates, nil
}

// mergeOne 处理一个重复词条
func (s *TermMergeService) mergeOne(ctx context.Context, exec boil.ContextExecutor, primary *entity.Term, termID int64, taxonomy string, result *MergeResult, pending *pendingInvalidations) error {
	duplicate, err := s.termRepo.GetByID(ctx, exec, termID, taxonomy)
	if errors.Is(err, interfaces.ErrNotFound) {
		s.logger.InfoContext(ctx, "词条不存在，跳过", log.Int64("term_id", termID))
		result.SkippedTermIDs = append(result.SkippedTermIDs, termID)
		return nil
	}
	if err != nil {
		return xerrors.NewReconciliationError(termID, err)
	}

	rec, err := s.reconciler.Reconcile(ctx, exec, duplicate.TermTaxonomyID, primary.TermTaxonomyID)
	if err != nil {
		return xerrors.NewReconciliationError(termID, err)
	}
	pending.add(rec.Taxonomy, rec.ObjectIDs)
	result.RepointedAssociations += rec.Inserted

	if err := s.termRepo.RecountUsage(ctx, exec, primary.TermTaxonomyID); err != nil {
		return xerrors.NewReconciliationError(termID, recountError(primary.TermTaxonomyID, err))
	}

	// 元数据合并失败不影响合并结果
	metaResult, metaErr := s.metaMerger.Merge(ctx, exec, termID, primary.TermID)
	switch {
	case metaErr != nil:
		s.logger.WarnContext(ctx, "合并词条元数据失败，已忽略",
			log.Err(metaErr),
			log.Int64("term_id", termID),
			log.Int64("primary_term_id", primary.TermID),
		)
	case metaResult.Copied > 0 || len(metaResult.FailedKeys) > 0:
		s.logger.DebugContext(ctx, "已复制元数据",
			log.Int64("term_id", termID),
			log.Int("copied", metaResult.Copied),
			log.Any("failed_keys", metaResult.FailedKeys),
		)
	}

	// 外部可能已删除该词条
	if _, err := s.termRepo.GetByID(ctx, exec, termID, taxonomy); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			s.logger.InfoContext(ctx, "词条已被删除，跳过删除步骤", log.Int64("term_id", termID))
			result.MergedTermIDs = append(result.MergedTermIDs, termID)
			return nil
		}
		return xerrors.NewTermDeletionError(termID, err)
	}

	if err := s.termRepo.Delete(ctx, exec, termID, taxonomy); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return xerrors.NewTermDeletionError(termID, err)
	}
	result.MergedTermIDs = append(result.MergedTermIDs, termID)
	return nil
}

func (s *TermMergeService) publishMerged(ctx context.Context, result *MergeResult) {
	if len(result.MergedTermIDs) == 0 {
		return
	}
	event := notify.NewTermsMergedEvent(
		result.Taxonomy,
		result.PrimaryTerm.TermID,
		result.MergedTermIDs,
		result.SkippedTermIDs,
		len(result.AffectedObjectIDs),
	)
	if err := s.publisher.Publish(ctx, notify.SubjectTermsMerged, event); err != nil {
		s.logger.WarnContext(ctx, "发布合并事件失败", log.Err(err), log.String("event_id", event.EventID))
	}
}

// filterDuplicates 去掉主词条和重复 ID，保持原有顺序
func filterDuplicates(primaryTermID int64, termIDs []int64) []int64 {
	seen := make(map[int64]struct{}, len(termIDs))
	out := make([]int64, 0, len(termIDs))
	for _, id := range termIDs {
		if id == primaryTermID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func recountError(termTaxonomyID int64, err error) error {
	return xerrors.NewWithError(xerrors.CodeTermCountRecomputeFailed,
		fmt.Sprintf("重新计算使用次数失败: term_taxonomy_id=%d", termTaxonomyID), err)
}
