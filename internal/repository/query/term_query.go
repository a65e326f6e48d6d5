package query

// TermListParams 词条列表查询参数
type TermListParams struct {
	Taxonomy  string `json:"taxonomy"`
	HideEmpty bool   `json:"hide_empty"`
	Search    string `json:"search,omitempty"`

	Pagination
}

// ContentFilterParams 按标签过滤内容，所有 Slugs 都必须命中
type ContentFilterParams struct {
	Taxonomy string   `json:"taxonomy"`
	Slugs    []string `json:"slugs"`

	Pagination
}

// ObjectTerm 内容上的词条
type ObjectTerm struct {
	ObjectID       int64  `boil:"object_id" json:"object_id"`
	TermID         int64  `boil:"term_id" json:"term_id"`
	TermTaxonomyID int64  `boil:"term_taxonomy_id" json:"term_taxonomy_id"`
	Name           string `boil:"name" json:"name"`
	Slug           string `boil:"slug" json:"slug"`
}
