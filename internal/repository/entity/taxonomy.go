package entity

import "time"

// Taxonomy 已注册的分类法
type Taxonomy struct {
	Name         string `boil:"name" db:"name" json:"name"`
	Label        string `boil:"label" db:"label" json:"label"`
	ObjectType   string `boil:"object_type" db:"object_type" json:"object_type"`
	Hierarchical bool   `boil:"hierarchical" db:"hierarchical" json:"hierarchical"`
}

// TableName 返回表名
func (Taxonomy) TableName() string {
	return "taxonomies"
}

// Content 可被打标签的内容
type Content struct {
	ID          int64     `boil:"id" db:"id" json:"id"`
	Title       string    `boil:"title" db:"title" json:"title"`
	ContentType string    `boil:"content_type" db:"content_type" json:"content_type"`
	Status      string    `boil:"status" db:"status" json:"status"`
	CreatedAt   time.Time `boil:"created_at" db:"created_at" json:"created_at"`
}

// TableName 返回表名
func (Content) TableName() string {
	return "contents"
}
