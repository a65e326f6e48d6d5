package service

import (
	"context"
	"fmt"

	"github.com/aarondl/sqlboiler/v4/boil"

	"taxonomy-editor/internal/pkg/log"
	"taxonomy-editor/internal/repository/entity"
	"taxonomy-editor/internal/repository/interfaces"
)

// MetaMerger 把重复词条的元数据并入主词条
type MetaMerger struct {
	tx       interfaces.Transactor
	metaRepo interfaces.TermMetaRepository
	logger   log.Logger
}

// NewMetaMerger 创建元数据合并器
func NewMetaMerger(tx interfaces.Transactor, metaRepo interfaces.TermMetaRepository, logger log.Logger) *MetaMerger {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &MetaMerger{tx: tx, metaRepo: metaRepo, logger: logger}
}

// MetaMergeResult 元数据合并结果
type MetaMergeResult struct {
	Copied     int
	FailedKeys []string
}

// Merge 主词条已有的键保持不变；主词条没有的键只复制旧词条上的第一个值，
// 同一键的后续值被丢弃。
// 每条元数据在独立的保存点中写入，单个键失败只回滚该键并继续处理后面的键。
// 只有读取旧词条元数据失败时返回错误。
func (m *MetaMerger) Merge(ctx context.Context, exec boil.ContextExecutor, oldTermID, newTermID int64) (*MetaMergeResult, error) {
	var metas []*entity.TermMeta
	err := m.tx.WithSavepoint(ctx, exec, metaSavepoint, func(ctx context.Context, exec boil.ContextExecutor) error {
		var err error
		metas, err = m.metaRepo.ListByTerm(ctx, exec, oldTermID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("读取词条 %d 元数据失败: %w", oldTermID, err)
	}

	result := &MetaMergeResult{}
	for _, meta := range metas {
		copied := false
		err := m.tx.WithSavepoint(ctx, exec, metaSavepoint, func(ctx context.Context, exec boil.ContextExecutor) error {
			exists, err := m.metaRepo.KeyExists(ctx, exec, newTermID, meta.MetaKey)
			if err != nil {
				return fmt.Errorf("检查元数据键 %s 失败: %w", meta.MetaKey, err)
			}
			if exists {
				return nil
			}
			if err := m.metaRepo.Add(ctx, exec, newTermID, meta.MetaKey, meta.MetaValue); err != nil {
				return fmt.Errorf("写入元数据键 %s 失败: %w", meta.MetaKey, err)
			}
			copied = true
			return nil
		})
		if err != nil {
			m.logger.WarnContext(ctx, "合并元数据键失败，已跳过",
				log.Err(err),
				log.Int64("term_id", oldTermID),
				log.Int64("primary_term_id", newTermID),
				log.String("meta_key", meta.MetaKey),
			)
			result.FailedKeys = append(result.FailedKeys, meta.MetaKey)
			continue
		}
		if copied {
			result.Copied++
		}
	}
	return result, nil
}
