package service

import (
	"context"
	"database/sql"

	"github.com/aarondl/sqlboiler/v4/boil"

	"taxonomy-editor/internal/pkg/log"
	"taxonomy-editor/internal/pkg/metrics"
	"taxonomy-editor/internal/pkg/xerrors"
	"taxonomy-editor/internal/repository/impl"
	"taxonomy-editor/internal/repository/interfaces"
)

// DefaultRepairBatch 每次最多修正的分组键数量
const DefaultRepairBatch = 500

// TermCountService 使用次数一致性维护
type TermCountService struct {
	tx       interfaces.Transactor
	termRepo interfaces.TermRepository
	metrics  *metrics.TermMetrics
	logger   log.Logger
}

// TermCountServiceDeps allows custom dependency injection (for tests).
type TermCountServiceDeps struct {
	DB         *sql.DB
	Transactor interfaces.Transactor
	TermRepo   interfaces.TermRepository
	Metrics    *metrics.TermMetrics
	Logger     log.Logger
}

// NewTermCountService 创建使用次数维护服务
func NewTermCountService(db *sql.DB) *TermCountService {
	return NewTermCountServiceWithDeps(TermCountServiceDeps{DB: db})
}

// NewTermCountServiceWithDeps allows tests to supply custom repositories.
func NewTermCountServiceWithDeps(deps TermCountServiceDeps) *TermCountService {
	if deps.Transactor == nil {
		deps.Transactor = impl.NewTransactor(deps.DB)
	}
	if deps.TermRepo == nil {
		deps.TermRepo = impl.NewTermRepository(deps.DB)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.DefaultTermMetrics
	}
	if deps.Logger == nil {
		deps.Logger = log.GetLogger()
	}
	return &TermCountService{
		tx:       deps.Transactor,
		termRepo: deps.TermRepo,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
}

// RepairDrift 找出使用次数与实际关联数不一致的分组键并重新计算，返回修正数量
func (s *TermCountService) RepairDrift(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultRepairBatch
	}

	drifts, err := s.termRepo.ListCountDrift(ctx, s.tx.Executor(), batchSize)
	if err != nil {
		return 0, xerrors.NewDatabaseError("list_count_drift", "term_taxonomy", err)
	}
	if len(drifts) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(drifts))
	for _, d := range drifts {
		ids = append(ids, d.TermTaxonomyID)
		s.logger.DebugContext(ctx, "使用次数不一致",
			log.Int64("term_taxonomy_id", d.TermTaxonomyID),
			log.String("taxonomy", d.Taxonomy),
			log.Int64("stored", d.StoredCount),
			log.Int64("actual", d.ActualCount),
		)
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context, exec boil.ContextExecutor) error {
		return s.termRepo.RecountUsage(ctx, exec, ids...)
	})
	if err != nil {
		return 0, xerrors.NewWithError(xerrors.CodeTermCountRecomputeFailed, "重新计算词条使用次数失败", err).
			WithMetadata("term_taxonomy_ids", len(ids))
	}

	s.metrics.RecordCountRepairs(len(ids))
	s.logger.InfoContext(ctx, "已修正词条使用次数", log.Int("repaired", len(ids)))
	return len(ids), nil
}
