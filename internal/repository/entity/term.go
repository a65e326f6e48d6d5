package entity

import (
	"github.com/aarondl/null/v8"
)

// Term 分类法中的词条，TermTaxonomyID 是关联表使用的分组键
type Term struct {
	TermID         int64       `boil:"term_id" db:"term_id" json:"term_id"`
	TermTaxonomyID int64       `boil:"term_taxonomy_id" db:"term_taxonomy_id" json:"term_taxonomy_id"`
	Taxonomy       string      `boil:"taxonomy" db:"taxonomy" json:"taxonomy"`
	Name           string      `boil:"name" db:"name" json:"name"`
	Slug           string      `boil:"slug" db:"slug" json:"slug"`
	Description    null.String `boil:"description" db:"description" json:"description,omitempty"`
	Parent         null.Int64  `boil:"parent" db:"parent" json:"parent,omitempty"`
	Count          int64       `boil:"count" db:"count" json:"count"`
}

// TableName 返回表名
func (Term) TableName() string {
	return "term_taxonomy"
}

// TermRelationship 内容与词条分组键的关联
type TermRelationship struct {
	ObjectID       int64 `boil:"object_id" db:"object_id" json:"object_id"`
	TermTaxonomyID int64 `boil:"term_taxonomy_id" db:"term_taxonomy_id" json:"term_taxonomy_id"`
	TermOrder      int   `boil:"term_order" db:"term_order" json:"term_order"`
}

// TableName 返回表名
func (TermRelationship) TableName() string {
	return "term_relationships"
}

// TermMeta 词条元数据，同一键允许多行，按 MetaID 顺序读取
type TermMeta struct {
	MetaID    int64       `boil:"meta_id" db:"meta_id" json:"meta_id"`
	TermID    int64       `boil:"term_id" db:"term_id" json:"term_id"`
	MetaKey   string      `boil:"meta_key" db:"meta_key" json:"meta_key"`
	MetaValue null.String `boil:"meta_value" db:"meta_value" json:"meta_value"`
}

// TableName 返回表名
func (TermMeta) TableName() string {
	return "termmeta"
}

// CountDrift 存储的使用次数与实际关联数不一致的分组键
type CountDrift struct {
	TermTaxonomyID int64  `boil:"term_taxonomy_id" db:"term_taxonomy_id"`
	Taxonomy       string `boil:"taxonomy" db:"taxonomy"`
	StoredCount    int64  `boil:"stored_count" db:"stored_count"`
	ActualCount    int64  `boil:"actual_count" db:"actual_count"`
}
