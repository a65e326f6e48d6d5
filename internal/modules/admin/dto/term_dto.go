package dto

import "time"

// MergeTermsRequest 合并词条请求，校验顺序：主词条、词条列表、分类法
type MergeTermsRequest struct {
	PrimaryTermID int64   `json:"primary_term_id" validate:"required,gt=0"`
	TermIDs       []int64 `json:"term_ids" validate:"required,min=1,dive,gt=0"`
	Taxonomy      string  `param:"taxonomy" json:"-" validate:"required,taxonomy_name"`
}

// BulkMergeRequest 批量合并请求，第一个词条为主词条
type BulkMergeRequest struct {
	TermIDs  []int64 `json:"term_ids" validate:"dive,gt=0"`
	Taxonomy string  `param:"taxonomy" json:"-" validate:"required,taxonomy_name"`
}

// TermResponse 词条响应
type TermResponse struct {
	ID             int64  `json:"id"`
	TermTaxonomyID int64  `json:"term_taxonomy_id"`
	Taxonomy       string `json:"taxonomy"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Description    string `json:"description,omitempty"`
	Parent         *int64 `json:"parent,omitempty"`
	Count          int64  `json:"count"`
}

// TermRefResponse 内容上的词条
type TermRefResponse struct {
	ID             int64  `json:"id"`
	TermTaxonomyID int64  `json:"term_taxonomy_id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
}

// MergeTermsResponse 合并结果
type MergeTermsResponse struct {
	Message         string       `json:"message"`
	Merged          int          `json:"merged"`
	PrimaryTerm     TermResponse `json:"primary_term"`
	MergedTermIDs   []int64      `json:"merged_term_ids"`
	SkippedTermIDs  []int64      `json:"skipped_term_ids"`
	AffectedObjects int          `json:"affected_objects"`
}

// TermListResponse 词条列表响应
type TermListResponse struct {
	List     []TermResponse `json:"list"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// TaxonomyResponse 分类法响应
type TaxonomyResponse struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	ObjectType   string `json:"object_type"`
	Hierarchical bool   `json:"hierarchical"`
}

// BulkEditRequest 内容标签批量编辑请求
type BulkEditRequest struct {
	BulkAction string  `json:"bulk_action" validate:"required"`
	Taxonomy   string  `json:"taxonomy,omitempty" validate:"omitempty,taxonomy_name"`
	PostIDs    []int64 `json:"post_ids" validate:"dive,gt=0"`
	TagIDs     []int64 `json:"tag_ids" validate:"dive,gt=0"`
}

// TagsResponse get_tags / get_post_tags 响应
type TagsResponse struct {
	Tags []TermRefResponse `json:"tags"`
}

// BulkEditResponse assign_tags / unassign_tags 响应
type BulkEditResponse struct {
	Message string  `json:"message"`
	Action  string  `json:"action"`
	PostIDs []int64 `json:"post_ids"`
	TagIDs  []int64 `json:"tag_ids"`
	Added   int     `json:"added"`
	Removed int64   `json:"removed"`
}

// ContentResponse 内容响应
type ContentResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	ContentType string    `json:"content_type"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContentListResponse 内容列表响应
type ContentListResponse struct {
	List     []ContentResponse `json:"list"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}
