package service

import (
	"context"

	"github.com/aarondl/sqlboiler/v4/boil"

	"taxonomy-editor/internal/pkg/log"
	"taxonomy-editor/internal/pkg/xerrors"
	"taxonomy-editor/internal/repository/entity"
	"taxonomy-editor/internal/repository/interfaces"
)

// ReconcileResult 一次关联迁移的结果
type ReconcileResult struct {
	Taxonomy  string
	ObjectIDs []int64
	Inserted  int
	Removed   int64
}

// AssociationReconciler 把旧分组键上的关联迁移到新分组键
type AssociationReconciler struct {
	relRepo interfaces.TermRelationshipRepository
	logger  log.Logger
}

// NewAssociationReconciler 创建关联迁移器
func NewAssociationReconciler(relRepo interfaces.TermRelationshipRepository, logger log.Logger) *AssociationReconciler {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &AssociationReconciler{relRepo: relRepo, logger: logger}
}

// Reconcile 先写入新关联再删除旧关联，任何时刻内容都不会失去分类。
// 受影响的内容通过 ObjectIDs 返回，由调用方在提交后失效缓存。
func (r *AssociationReconciler) Reconcile(ctx context.Context, exec boil.ContextExecutor, oldTermTaxonomyID, newTermTaxonomyID int64) (*ReconcileResult, error) {
	result := &ReconcileResult{}
	if oldTermTaxonomyID == newTermTaxonomyID {
		return result, nil
	}

	objectIDs, err := r.relRepo.ListObjectIDs(ctx, exec, oldTermTaxonomyID)
	if err != nil {
		return nil, xerrors.NewDatabaseError("list_object_ids", "term_relationships", err)
	}
	if len(objectIDs) == 0 {
		r.logger.DebugContext(ctx, "旧分组键没有关联",
			log.Int64("term_taxonomy_id", oldTermTaxonomyID))
		return result, nil
	}

	taxonomy, err := r.relRepo.ResolveTaxonomy(ctx, exec, oldTermTaxonomyID)
	if err != nil || taxonomy == "" {
		if err == nil {
			err = interfaces.ErrNotFound
		}
		return nil, xerrors.NewTaxonomyUnresolvableError(oldTermTaxonomyID, err)
	}
	result.Taxonomy = taxonomy
	result.ObjectIDs = objectIDs

	for _, objectID := range objectIDs {
		exists, err := r.relRepo.Exists(ctx, exec, objectID, newTermTaxonomyID)
		if err != nil {
			return nil, xerrors.NewAssociationInsertError(objectID, newTermTaxonomyID, err)
		}
		if exists {
			continue
		}
		rel := &entity.TermRelationship{
			ObjectID:       objectID,
			TermTaxonomyID: newTermTaxonomyID,
			TermOrder:      0,
		}
		if err := r.relRepo.Insert(ctx, exec, rel); err != nil {
			return nil, xerrors.NewAssociationInsertError(objectID, newTermTaxonomyID, err)
		}
		result.Inserted++
	}

	removed, err := r.relRepo.DeleteByTermTaxonomyID(ctx, exec, oldTermTaxonomyID)
	// 影响 0 行说明已经清理过，不算错误
	if err != nil {
		return nil, xerrors.NewAssociationDeleteError(oldTermTaxonomyID, err)
	}
	result.Removed = removed

	r.logger.DebugContext(ctx, "关联迁移完成",
		log.String("taxonomy", taxonomy),
		log.Int64("from_term_taxonomy_id", oldTermTaxonomyID),
		log.Int64("to_term_taxonomy_id", newTermTaxonomyID),
		log.Int("objects", len(objectIDs)),
		log.Int("inserted", result.Inserted),
		log.Int64("removed", removed),
	)
	return result, nil
}
