package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTermsMergedEvent_EmptySlices(t *testing.T) {
	evt := NewTermsMergedEvent("post_tag", 1, nil, nil, 0)

	data, err := json.Marshal(evt)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []any{}, decoded["merged_term_ids"])
	assert.Equal(t, []any{}, decoded["skipped_term_ids"])
	assert.Len(t, evt.EventID, 36)
}

func TestNatsPublisher_NoConnection(t *testing.T) {
	SetNatsConn(nil)
	err := NatsPublisher{}.Publish(context.Background(), SubjectTermsMerged, map[string]int{"a": 1})
	assert.NoError(t, err)
}

func TestConnected_NoConnection(t *testing.T) {
	SetNatsConn(nil)
	assert.False(t, Connected())
}
