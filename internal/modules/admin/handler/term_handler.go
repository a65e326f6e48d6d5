package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"taxonomy-editor/internal/modules/admin/dto"
	"taxonomy-editor/internal/modules/admin/service"
	"taxonomy-editor/internal/pkg/i18n"
	"taxonomy-editor/internal/pkg/response"
	"taxonomy-editor/internal/pkg/termcache"
	"taxonomy-editor/internal/pkg/xerrors"
	"taxonomy-editor/internal/repository/entity"
	"taxonomy-editor/internal/repository/query"
)

// TermMerger 词条合并
type TermMerger interface {
	MergeTerms(ctx context.Context, primaryTermID int64, termIDs []int64, taxonomy string) (*service.MergeResult, error)
	BulkMerge(ctx context.Context, taxonomy string, termIDs []int64) (*service.BulkMergeResult, error)
}

// ContentTerms 词条查询与内容标签批量编辑
type ContentTerms interface {
	ListTaxonomies(ctx context.Context) ([]*entity.Taxonomy, error)
	GetAllTerms(ctx context.Context, taxonomy string) ([]*entity.Term, error)
	ListTerms(ctx context.Context, params query.TermListParams) ([]*entity.Term, int64, error)
	FilterContent(ctx context.Context, params query.ContentFilterParams) ([]*entity.Content, int64, error)
	GetObjectTerms(ctx context.Context, taxonomy string, objectIDs []int64) ([]termcache.Entry, error)
	AssignTerms(ctx context.Context, taxonomy string, objectIDs, termIDs []int64) (*service.BulkEditResult, error)
	UnassignTerms(ctx context.Context, taxonomy string, objectIDs, termIDs []int64) (*service.BulkEditResult, error)
}

// TermHandler 词条合并与内容标签 HTTP 处理器
type TermHandler struct {
	merger     TermMerger
	content    ContentTerms
	respWriter response.Writer
}

// NewTermHandler 创建词条处理器
func NewTermHandler(merger TermMerger, content ContentTerms, respWriter response.Writer) *TermHandler {
	return &TermHandler{
		merger:     merger,
		content:    content,
		respWriter: respWriter,
	}
}

// ==================== 合并 ====================

// MergeTerms 合并词条
// @Summary 合并词条
// @Description 把重复词条的关联和元数据并入主词条，然后删除重复词条，整个过程在一个事务中完成
// @Tags 分类法-词条
// @Accept json
// @Produce json
// @Param taxonomy path string true "分类法" example(post_tag)
// @Param request body dto.MergeTermsRequest true "合并请求"
// @Success 200 {object} response.ResponseResult[dto.MergeTermsResponse] "合并成功"
// @Failure 400 {object} response.ResponseResult[response.EmptyData] "请求参数错误或分类法不存在"
// @Failure 403 {object} response.ResponseResult[response.EmptyData] "缺少 manage_categories 权限"
// @Failure 404 {object} response.ResponseResult[response.EmptyData] "主词条不存在"
// @Failure 422 {object} response.ResponseResult[response.EmptyData] "没有可合并的词条"
// @Failure 500 {object} response.ResponseResult[response.EmptyData] "合并失败，已回滚"
// @Security BearerAuth
// @Router /admin/taxonomies/{taxonomy}/terms/merge [post]
func (h *TermHandler) MergeTerms(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.MergeTermsRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "无效的请求参数")
	}
	if err := c.Validate(&req); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	result, err := h.merger.MergeTerms(ctx, req.PrimaryTermID, req.TermIDs, req.Taxonomy)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, toMergeResponse(
		i18n.MergeSummary(ctx, result.MergedCount(), primaryName(result)),
		result.MergedCount(),
		result,
	))
}

// BulkMergeTerms 批量合并
// @Summary 批量合并词条
// @Description 第一个词条作为主词条，其余词条并入其中，至少选择两个词条
// @Tags 分类法-词条
// @Accept json
// @Produce json
// @Param taxonomy path string true "分类法" example(post_tag)
// @Param request body dto.BulkMergeRequest true "批量合并请求"
// @Success 200 {object} response.ResponseResult[dto.MergeTermsResponse] "合并成功"
// @Failure 400 {object} response.ResponseResult[response.EmptyData] "选择的词条少于两个"
// @Failure 403 {object} response.ResponseResult[response.EmptyData] "缺少 manage_categories 权限"
// @Failure 500 {object} response.ResponseResult[response.EmptyData] "合并失败，已回滚"
// @Security BearerAuth
// @Router /admin/taxonomies/{taxonomy}/terms/bulk-merge [post]
func (h *TermHandler) BulkMergeTerms(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.BulkMergeRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "无效的请求参数")
	}
	if err := c.Validate(&req); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	result, err := h.merger.BulkMerge(ctx, req.Taxonomy, req.TermIDs)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, toMergeResponse(
		i18n.T(ctx, i18n.MsgBulkMergeResult, result.Merged),
		result.Merged,
		result.MergeResult,
	))
}

// ==================== 查询 ====================

// ListTaxonomies 获取分类法列表
// @Summary 获取分类法列表
// @Tags 分类法-词条
// @Produce json
// @Success 200 {object} response.ResponseResult[[]dto.TaxonomyResponse] "成功"
// @Failure 500 {object} response.ResponseResult[response.EmptyData] "服务器内部错误"
// @Security BearerAuth
// @Router /admin/taxonomies [get]
func (h *TermHandler) ListTaxonomies(c echo.Context) error {
	taxonomies, err := h.content.ListTaxonomies(c.Request().Context())
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	result := make([]dto.TaxonomyResponse, len(taxonomies))
	for i, t := range taxonomies {
		result[i] = dto.TaxonomyResponse{
			Name:         t.Name,
			Label:        t.Label,
			ObjectType:   t.ObjectType,
			Hierarchical: t.Hierarchical,
		}
	}
	return response.EchoOK(c, h.respWriter, result)
}

// ListTerms 获取词条列表
// @Summary 获取词条列表
// @Description 包含未被使用的词条，支持按名称搜索和分页
// @Tags 分类法-词条
// @Produce json
// @Param taxonomy path string true "分类法" example(post_tag)
// @Param search query string false "名称或 slug 关键字"
// @Param hide_empty query bool false "隐藏未使用的词条(默认 false)"
// @Param page query int false "页码(默认1)"
// @Param page_size query int false "每页数量(默认20)"
// @Success 200 {object} response.ResponseResult[dto.TermListResponse] "成功"
// @Failure 400 {object} response.ResponseResult[response.EmptyData] "分类法不存在"
// @Security BearerAuth
// @Router /admin/taxonomies/{taxonomy}/terms [get]
func (h *TermHandler) ListTerms(c echo.Context) error {
	params := query.TermListParams{
		Taxonomy: c.Param("taxonomy"),
		Search:   strings.TrimSpace(c.QueryParam("search")),
	}
	if v := c.QueryParam("hide_empty"); v != "" {
		params.HideEmpty, _ = strconv.ParseBool(v)
	}
	params.Pagination = parsePagination(c)

	terms, total, err := h.content.ListTerms(c.Request().Context(), params)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	list := make([]dto.TermResponse, len(terms))
	for i, t := range terms {
		list[i] = toTermResponse(t)
	}
	return response.EchoOK(c, h.respWriter, dto.TermListResponse{
		List:     list,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	})
}

// FilterContent 按标签过滤内容
// @Summary 按标签过滤内容
// @Description 返回同时带有全部给定标签的内容
// @Tags 内容-标签
// @Produce json
// @Param tag query []string true "标签 slug，可重复" collectionFormat(multi)
// @Param taxonomy query string false "分类法(默认 post_tag)"
// @Param page query int false "页码(默认1)"
// @Param page_size query int false "每页数量(默认20)"
// @Success 200 {object} response.ResponseResult[dto.ContentListResponse] "成功"
// @Failure 400 {object} response.ResponseResult[response.EmptyData] "缺少标签或分类法不存在"
// @Security BearerAuth
// @Router /admin/content [get]
func (h *TermHandler) FilterContent(c echo.Context) error {
	params := query.ContentFilterParams{
		Taxonomy: c.QueryParam("taxonomy"),
	}
	if params.Taxonomy == "" {
		params.Taxonomy = service.DefaultTaxonomy
	}
	for _, raw := range c.QueryParams()["tag"] {
		for _, slug := range strings.Split(raw, ",") {
			if slug = strings.TrimSpace(slug); slug != "" {
				params.Slugs = append(params.Slugs, slug)
			}
		}
	}
	params.Pagination = parsePagination(c)

	contents, total, err := h.content.FilterContent(c.Request().Context(), params)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	list := make([]dto.ContentResponse, len(contents))
	for i, item := range contents {
		list[i] = dto.ContentResponse{
			ID:          item.ID,
			Title:       item.Title,
			ContentType: item.ContentType,
			Status:      item.Status,
			CreatedAt:   item.CreatedAt,
		}
	}
	return response.EchoOK(c, h.respWriter, dto.ContentListResponse{
		List:     list,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	})
}

// ==================== 批量编辑 ====================

// BulkEdit 内容标签批量编辑
// @Summary 内容标签批量编辑
// @Description bulk_action: get_tags 返回分类法下全部词条；get_post_tags 返回所选内容上词条的并集；assign_tags 追加标签；unassign_tags 移除标签
// @Tags 内容-标签
// @Accept json
// @Produce json
// @Param request body dto.BulkEditRequest true "批量编辑请求"
// @Success 200 {object} response.ResponseResult[dto.BulkEditResponse] "assign_tags / unassign_tags 成功"
// @Success 200 {object} response.ResponseResult[dto.TagsResponse] "get_tags / get_post_tags 成功"
// @Failure 400 {object} response.ResponseResult[response.EmptyData] "不支持的操作或参数无效"
// @Failure 403 {object} response.ResponseResult[response.EmptyData] "缺少 edit_posts 权限"
// @Security BearerAuth
// @Router /admin/content/bulk-edit [post]
func (h *TermHandler) BulkEdit(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.BulkEditRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "无效的请求参数")
	}
	action := service.BulkAction(req.BulkAction)
	if !action.Valid() {
		return response.EchoError(c, h.respWriter, xerrors.FromCode(xerrors.CodeInvalidBulkAction).
			WithMetadata("bulk_action", req.BulkAction))
	}
	if err := c.Validate(&req); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	taxonomy := req.Taxonomy
	if taxonomy == "" {
		taxonomy = service.DefaultTaxonomy
	}

	switch action {
	case service.BulkActionGetTags:
		terms, err := h.content.GetAllTerms(ctx, taxonomy)
		if err != nil {
			return response.EchoError(c, h.respWriter, err)
		}
		tags := make([]dto.TermRefResponse, len(terms))
		for i, t := range terms {
			tags[i] = dto.TermRefResponse{ID: t.TermID, TermTaxonomyID: t.TermTaxonomyID, Name: t.Name, Slug: t.Slug}
		}
		return response.EchoOK(c, h.respWriter, dto.TagsResponse{Tags: tags})

	case service.BulkActionGetPostTags:
		entries, err := h.content.GetObjectTerms(ctx, taxonomy, req.PostIDs)
		if err != nil {
			return response.EchoError(c, h.respWriter, err)
		}
		tags := make([]dto.TermRefResponse, len(entries))
		for i, e := range entries {
			tags[i] = dto.TermRefResponse{ID: e.TermID, TermTaxonomyID: e.TermTaxonomyID, Name: e.Name, Slug: e.Slug}
		}
		return response.EchoOK(c, h.respWriter, dto.TagsResponse{Tags: tags})

	case service.BulkActionAssignTags:
		result, err := h.content.AssignTerms(ctx, taxonomy, req.PostIDs, req.TagIDs)
		if err != nil {
			return response.EchoError(c, h.respWriter, err)
		}
		return response.EchoOK(c, h.respWriter, toBulkEditResponse(i18n.T(ctx, i18n.MsgTagsAssigned, len(result.ObjectIDs)), result))

	default:
		result, err := h.content.UnassignTerms(ctx, taxonomy, req.PostIDs, req.TagIDs)
		if err != nil {
			return response.EchoError(c, h.respWriter, err)
		}
		return response.EchoOK(c, h.respWriter, toBulkEditResponse(i18n.T(ctx, i18n.MsgTagsUnassigned, len(result.ObjectIDs)), result))
	}
}

// ==================== 转换 ====================

func parsePagination(c echo.Context) query.Pagination {
	var p query.Pagination
	if v := c.QueryParam("page"); v != "" {
		p.Page, _ = strconv.Atoi(v)
	}
	if v := c.QueryParam("page_size"); v != "" {
		p.PageSize, _ = strconv.Atoi(v)
	}
	p.Validate()
	return p
}

func toTermResponse(t *entity.Term) dto.TermResponse {
	resp := dto.TermResponse{
		ID:             t.TermID,
		TermTaxonomyID: t.TermTaxonomyID,
		Taxonomy:       t.Taxonomy,
		Name:           t.Name,
		Slug:           t.Slug,
		Description:    t.Description.String,
		Count:          t.Count,
	}
	if t.Parent.Valid && t.Parent.Int64 > 0 {
		parent := t.Parent.Int64
		resp.Parent = &parent
	}
	return resp
}

func toMergeResponse(message string, merged int, result *service.MergeResult) dto.MergeTermsResponse {
	resp := dto.MergeTermsResponse{
		Message:         message,
		Merged:          merged,
		MergedTermIDs:   nonNil(result.MergedTermIDs),
		SkippedTermIDs:  nonNil(result.SkippedTermIDs),
		AffectedObjects: len(result.AffectedObjectIDs),
	}
	if result.PrimaryTerm != nil {
		resp.PrimaryTerm = toTermResponse(result.PrimaryTerm)
	}
	return resp
}

func toBulkEditResponse(message string, result *service.BulkEditResult) dto.BulkEditResponse {
	return dto.BulkEditResponse{
		Message: message,
		Action:  string(result.Action),
		PostIDs: nonNil(result.ObjectIDs),
		TagIDs:  nonNil(result.TermIDs),
		Added:   result.Added,
		Removed: result.Removed,
	}
}

func primaryName(result *service.MergeResult) string {
	if result.PrimaryTerm == nil {
		return ""
	}
	return result.PrimaryTerm.Name
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
