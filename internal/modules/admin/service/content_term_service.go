package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aarondl/sqlboiler/v4/boil"

	"taxonomy-editor/internal/pkg/log"
	"taxonomy-editor/internal/pkg/metrics"
	"taxonomy-editor/internal/pkg/notify"
	"taxonomy-editor/internal/pkg/termcache"
	"taxonomy-editor/internal/pkg/xerrors"
	"taxonomy-editor/internal/repository/entity"
	"taxonomy-editor/internal/repository/impl"
	"taxonomy-editor/internal/repository/interfaces"
	"taxonomy-editor/internal/repository/query"
)

// DefaultTaxonomy 批量编辑默认操作的分类法
const DefaultTaxonomy = "post_tag"

// BulkAction 批量编辑动作
type BulkAction string

const (
	BulkActionGetTags      BulkAction = "get_tags"
	BulkActionGetPostTags  BulkAction = "get_post_tags"
	BulkActionAssignTags   BulkAction = "assign_tags"
	BulkActionUnassignTags BulkAction = "unassign_tags"
)

const invalidateOnBulkEdit = "bulk_edit"

// Valid 是否为支持的动作
func (a BulkAction) Valid() bool {
	switch a {
	case BulkActionGetTags, BulkActionGetPostTags, BulkActionAssignTags, BulkActionUnassignTags:
		return true
	}
	return false
}

// TermViewCache 内容词条缓存
type TermViewCache interface {
	CacheInvalidator
	Get(ctx context.Context, taxonomy string, objectID int64) ([]termcache.Entry, bool)
	Set(ctx context.Context, taxonomy string, objectID int64, entries []termcache.Entry)
}

// BulkEditResult 批量分配/移除结果
type BulkEditResult struct {
	Action    BulkAction `json:"action"`
	Taxonomy  string     `json:"taxonomy"`
	ObjectIDs []int64    `json:"object_ids"`
	TermIDs   []int64    `json:"term_ids"`
	Added     int        `json:"added"`
	Removed   int64      `json:"removed"`
}

// ContentTermService 内容标签批量编辑与查询
type ContentTermService struct {
	tx           interfaces.Transactor
	taxonomyRepo interfaces.TaxonomyRepository
	termRepo     interfaces.TermRepository
	relRepo      interfaces.TermRelationshipRepository
	contentRepo  interfaces.ContentRepository
	cache        TermViewCache
	publisher    notify.Publisher
	metrics      *metrics.TermMetrics
	logger       log.Logger
}

// ContentTermServiceDeps allows custom dependency injection (for tests).
type ContentTermServiceDeps struct {
	DB               *sql.DB
	Transactor       interfaces.Transactor
	TaxonomyRepo     interfaces.TaxonomyRepository
	TermRepo         interfaces.TermRepository
	RelationshipRepo interfaces.TermRelationshipRepository
	ContentRepo      interfaces.ContentRepository
	Cache            TermViewCache
	Publisher        notify.Publisher
	Metrics          *metrics.TermMetrics
	Logger           log.Logger
}

// NewContentTermService 创建内容标签服务，cache 可为 nil
func NewContentTermService(db *sql.DB, cache TermViewCache) *ContentTermService {
	return NewContentTermServiceWithDeps(ContentTermServiceDeps{DB: db, Cache: cache})
}

// NewContentTermServiceWithDeps allows tests to supply custom repositories.
func NewContentTermServiceWithDeps(deps ContentTermServiceDeps) *ContentTermService {
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
	if deps.ContentRepo == nil {
		deps.ContentRepo = impl.NewContentRepository(deps.DB)
	}
	if deps.Cache == nil {
		deps.Cache = uncachedView{}
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
	return &ContentTermService{
		tx:           deps.Transactor,
		taxonomyRepo: deps.TaxonomyRepo,
		termRepo:     deps.TermRepo,
		relRepo:      deps.RelationshipRepo,
		contentRepo:  deps.ContentRepo,
		cache:        deps.Cache,
		publisher:    deps.Publisher,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
	}
}

// ListTaxonomies 获取已注册的分类法
func (s *ContentTermService) ListTaxonomies(ctx context.Context) ([]*entity.Taxonomy, error) {
	taxonomies, err := s.taxonomyRepo.List(ctx, s.tx.Executor())
	if err != nil {
		return nil, xerrors.NewDatabaseError("list_taxonomies", "taxonomies", err)
	}
	return taxonomies, nil
}

// GetAllTerms 获取分类法下的全部词条，包括未使用的
func (s *ContentTermService) GetAllTerms(ctx context.Context, taxonomy string) ([]*entity.Term, error) {
	terms, _, err := s.ListTerms(ctx, query.TermListParams{Taxonomy: taxonomy})
	return terms, err
}

// ListTerms 分页获取词条，PageSize 为 0 时返回全部
func (s *ContentTermService) ListTerms(ctx context.Context, params query.TermListParams) ([]*entity.Term, int64, error) {
	if err := s.ensureTaxonomy(ctx, params.Taxonomy); err != nil {
		return nil, 0, err
	}
	terms, total, err := s.termRepo.List(ctx, s.tx.Executor(), params)
	if err != nil {
		return nil, 0, xerrors.NewDatabaseError("list_terms", "terms", err)
	}
	return terms, total, nil
}

// FilterContent 获取同时带有全部标签的内容
func (s *ContentTermService) FilterContent(ctx context.Context, params query.ContentFilterParams) ([]*entity.Content, int64, error) {
	if len(params.Slugs) == 0 {
		return nil, 0, xerrors.NewValidationError("tag", "至少需要一个标签")
	}
	if err := s.ensureTaxonomy(ctx, params.Taxonomy); err != nil {
		return nil, 0, err
	}
	contents, total, err := s.contentRepo.FilterByTerms(ctx, s.tx.Executor(), params)
	if err != nil {
		return nil, 0, xerrors.NewDatabaseError("filter_content", "contents", err)
	}
	return contents, total, nil
}

// GetObjectTerms 返回这些内容上词条的并集，按词条去重，优先读缓存
func (s *ContentTermService) GetObjectTerms(ctx context.Context, taxonomy string, objectIDs []int64) ([]termcache.Entry, error) {
	objectIDs = dedupeIDs(objectIDs)
	if len(objectIDs) == 0 {
		return nil, noPostsSelected()
	}
	if err := s.ensureTaxonomy(ctx, taxonomy); err != nil {
		return nil, err
	}

	perObject := make(map[int64][]termcache.Entry, len(objectIDs))
	var misses []int64
	for _, id := range objectIDs {
		if entries, ok := s.cache.Get(ctx, taxonomy, id); ok {
			perObject[id] = entries
			continue
		}
		misses = append(misses, id)
	}

	if len(misses) > 0 {
		rows, err := s.relRepo.ListTermsForObjects(ctx, s.tx.Executor(), taxonomy, misses)
		if err != nil {
			return nil, xerrors.NewDatabaseError("list_object_terms", "term_relationships", err)
		}
		loaded := make(map[int64][]termcache.Entry, len(misses))
		for _, row := range rows {
			loaded[row.ObjectID] = append(loaded[row.ObjectID], termcache.Entry{
				TermID:         row.TermID,
				TermTaxonomyID: row.TermTaxonomyID,
				Name:           row.Name,
				Slug:           row.Slug,
			})
		}
		for _, id := range misses {
			perObject[id] = loaded[id]
			s.cache.Set(ctx, taxonomy, id, loaded[id])
		}
	}

	seen := make(map[int64]struct{})
	union := make([]termcache.Entry, 0)
	for _, id := range objectIDs {
		for _, e := range perObject[id] {
			if _, ok := seen[e.TermID]; ok {
				continue
			}
			seen[e.TermID] = struct{}{}
			union = append(union, e)
		}
	}
	return union, nil
}

// AssignTerms 把词条追加到每个内容上，已有的关联保持不变
func (s *ContentTermService) AssignTerms(ctx context.Context, taxonomy string, objectIDs, termIDs []int64) (*BulkEditResult, error) {
	result, err := s.bulkEdit(ctx, BulkActionAssignTags, taxonomy, objectIDs, termIDs,
		func(ctx context.Context, exec boil.ContextExecutor, objectID int64, terms []*entity.Term, result *BulkEditResult) error {
			for _, term := range terms {
				exists, err := s.relRepo.Exists(ctx, exec, objectID, term.TermTaxonomyID)
				if err != nil {
					return err
				}
				if exists {
					continue
				}
				rel := &entity.TermRelationship{ObjectID: objectID, TermTaxonomyID: term.TermTaxonomyID}
				if err := s.relRepo.Insert(ctx, exec, rel); err != nil {
					return err
				}
				result.Added++
			}
			return nil
		})
	return result, err
}

// UnassignTerms 从每个内容上移除词条
func (s *ContentTermService) UnassignTerms(ctx context.Context, taxonomy string, objectIDs, termIDs []int64) (*BulkEditResult, error) {
	result, err := s.bulkEdit(ctx, BulkActionUnassignTags, taxonomy, objectIDs, termIDs,
		func(ctx context.Context, exec boil.ContextExecutor, objectID int64, terms []*entity.Term, result *BulkEditResult) error {
			n, err := s.relRepo.DeleteForObject(ctx, exec, objectID, termTaxonomyIDs(terms))
			if err != nil {
				return err
			}
			result.Removed += n
			return nil
		})
	return result, err
}

type perObjectEdit func(ctx context.Context, exec boil.ContextExecutor, objectID int64, terms []*entity.Term, result *BulkEditResult) error

func (s *ContentTermService) bulkEdit(ctx context.Context, action BulkAction, taxonomy string, objectIDs, termIDs []int64, edit perObjectEdit) (*BulkEditResult, error) {
	objectIDs = dedupeIDs(objectIDs)
	termIDs = dedupeIDs(termIDs)
	if len(objectIDs) == 0 || len(termIDs) == 0 {
		return nil, xerrors.New(xerrors.CodeInvalidParams, "参数无效").
			WithMetadata("bulk_action", string(action))
	}
	if err := s.ensureTaxonomy(ctx, taxonomy); err != nil {
		return nil, err
	}

	exec := s.tx.Executor()
	terms, err := s.termRepo.GetByIDs(ctx, exec, taxonomy, termIDs)
	if err != nil {
		return nil, xerrors.NewDatabaseError("get_terms", "terms", err)
	}
	if len(terms) == 0 {
		return nil, xerrors.NewTermNotFoundError(termIDs[0], taxonomy)
	}
	existing, err := s.contentRepo.ExistingIDs(ctx, exec, objectIDs)
	if err != nil {
		return nil, xerrors.NewDatabaseError("existing_ids", "contents", err)
	}
	if len(existing) == 0 {
		return nil, noPostsSelected()
	}

	result := &BulkEditResult{
		Action:    action,
		Taxonomy:  taxonomy,
		ObjectIDs: existing,
		TermIDs:   termIDsOf(terms),
	}
	err = s.tx.WithTx(ctx, func(ctx context.Context, exec boil.ContextExecutor) error {
		for _, objectID := range existing {
			if err := edit(ctx, exec, objectID, terms, result); err != nil {
				return xerrors.NewWithError(xerrors.CodeTermAssignmentFailed, "批量更新内容词条失败", err).
					WithMetadata("object_id", objectID)
			}
		}
		if err := s.termRepo.RecountUsage(ctx, exec, termTaxonomyIDs(terms)...); err != nil {
			return recountError(terms[0].TermTaxonomyID, err)
		}
		return nil
	})
	if err != nil {
		s.metrics.RecordBulkEdit(string(action), false)
		if errors.Is(err, interfaces.ErrCommitFailed) {
			err = xerrors.NewWithError(xerrors.CodeTermAssignmentFailed, "提交批量编辑事务失败", err)
		}
		s.logger.ErrorContext(ctx, "批量编辑标签失败",
			log.Err(err),
			log.String("action", string(action)),
			log.String("taxonomy", taxonomy),
		)
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, taxonomy, invalidateOnBulkEdit, existing); err != nil {
		s.logger.WarnContext(ctx, "词条缓存失效失败", log.Err(err), log.String("taxonomy", taxonomy))
	}
	event := notify.NewContentRetaggedEvent(taxonomy, string(action), existing, result.TermIDs)
	if err := s.publisher.Publish(ctx, notify.SubjectContentRetagged, event); err != nil {
		s.logger.WarnContext(ctx, "发布批量编辑事件失败", log.Err(err))
	}
	s.metrics.RecordBulkEdit(string(action), true)
	s.logger.InfoContext(ctx, "批量编辑标签完成",
		log.String("action", string(action)),
		log.String("taxonomy", taxonomy),
		log.Int("objects", len(existing)),
		log.Int("added", result.Added),
		log.Int64("removed", result.Removed),
	)
	return result, nil
}

func (s *ContentTermService) ensureTaxonomy(ctx context.Context, taxonomy string) error {
	exists, err := s.taxonomyRepo.Exists(ctx, s.tx.Executor(), taxonomy)
	if err != nil {
		return xerrors.NewDatabaseError("taxonomy_exists", "taxonomies", err)
	}
	if !exists {
		return xerrors.NewInvalidTaxonomyError(taxonomy)
	}
	return nil
}

// uncachedView 未配置 Redis 时直接读库
type uncachedView struct{ noopInvalidator }

func (uncachedView) Get(context.Context, string, int64) ([]termcache.Entry, bool) { return nil, false }

func (uncachedView) Set(context.Context, string, int64, []termcache.Entry) {}

func noPostsSelected() *xerrors.AppError {
	return xerrors.New(xerrors.CodeInvalidParams, "未选择任何内容").
		WithMetadata("field", "post_ids")
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
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

func termTaxonomyIDs(terms []*entity.Term) []int64 {
	ids := make([]int64, 0, len(terms))
	for _, t := range terms {
		ids = append(ids, t.TermTaxonomyID)
	}
	return ids
}

func termIDsOf(terms []*entity.Term) []int64 {
	ids := make([]int64, 0, len(terms))
	for _, t := range terms {
		ids = append(ids, t.TermID)
	}
	return ids
}
