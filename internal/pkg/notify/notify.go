package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Subjects
const (
	SubjectTermsMerged     = "taxonomy.terms.merged"
	SubjectContentRetagged = "taxonomy.content.retagged"
)

var (
	ncMu sync.RWMutex
	nc   *nats.Conn
)

// SetNatsConn 设置全局 NATS 连接（由 main 提供）
func SetNatsConn(conn *nats.Conn) {
	ncMu.Lock()
	defer ncMu.Unlock()
	nc = conn
}

// Connected 当前连接是否可用，没有连接时返回 false
func Connected() bool {
	ncMu.RLock()
	conn := nc
	ncMu.RUnlock()
	return conn != nil && conn.IsConnected() && !conn.IsClosed()
}

// Publisher 领域事件发布
type Publisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}

// NatsPublisher 使用全局 NATS 连接发布 JSON 事件
type NatsPublisher struct{}

// Publish 没有连接时静默降级
func (NatsPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	ncMu.RLock()
	conn := nc
	ncMu.RUnlock()
	if conn == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event failed: %w", subject, err)
	}
	return conn.Publish(subject, data)
}

// TermsMergedEvent 词条合并完成事件
type TermsMergedEvent struct {
	EventID             string    `json:"event_id"`
	Taxonomy            string    `json:"taxonomy"`
	PrimaryTermID       int64     `json:"primary_term_id"`
	MergedTermIDs       []int64   `json:"merged_term_ids"`
	SkippedTermIDs      []int64   `json:"skipped_term_ids"`
	AffectedObjectCount int       `json:"affected_object_count"`
	MergedAt            time.Time `json:"merged_at"`
}

// NewTermsMergedEvent 构造合并事件，nil 切片序列化为空数组
func NewTermsMergedEvent(taxonomy string, primaryTermID int64, merged, skipped []int64, affectedObjects int) TermsMergedEvent {
	if merged == nil {
		merged = []int64{}
	}
	if skipped == nil {
		skipped = []int64{}
	}
	return TermsMergedEvent{
		EventID:             uuid.NewString(),
		Taxonomy:            taxonomy,
		PrimaryTermID:       primaryTermID,
		MergedTermIDs:       merged,
		SkippedTermIDs:      skipped,
		AffectedObjectCount: affectedObjects,
		MergedAt:            time.Now().UTC(),
	}
}

// ContentRetaggedEvent 批量编辑标签事件
type ContentRetaggedEvent struct {
	EventID   string    `json:"event_id"`
	Taxonomy  string    `json:"taxonomy"`
	Action    string    `json:"action"`
	ObjectIDs []int64   `json:"object_ids"`
	TermIDs   []int64   `json:"term_ids"`
	At        time.Time `json:"at"`
}

// NewContentRetaggedEvent 构造批量编辑事件
func NewContentRetaggedEvent(taxonomy, action string, objectIDs, termIDs []int64) ContentRetaggedEvent {
	if objectIDs == nil {
		objectIDs = []int64{}
	}
	if termIDs == nil {
		termIDs = []int64{}
	}
	return ContentRetaggedEvent{
		EventID:   uuid.NewString(),
		Taxonomy:  taxonomy,
		Action:    action,
		ObjectIDs: objectIDs,
		TermIDs:   termIDs,
		At:        time.Now().UTC(),
	}
}
