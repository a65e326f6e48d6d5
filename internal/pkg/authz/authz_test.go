package authz

import (
	"context"
	"errors"
	"testing"

	rts "github.com/ory/keto/proto/ory/keto/relation_tuples/v1alpha2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

type fakeCheckClient struct {
	allowed bool
	err     error
	last    *rts.CheckRequest
}

func (f *fakeCheckClient) Check(_ context.Context, in *rts.CheckRequest, _ ...grpc.CallOption) (*rts.CheckResponse, error) {
	f.last = in
	if f.err != nil {
		return nil, f.err
	}
	return &rts.CheckResponse{Allowed: f.allowed}, nil
}

func TestKetoChecker_Can(t *testing.T) {
	t.Run("允许", func(t *testing.T) {
		client := &fakeCheckClient{allowed: true}
		checker := NewKetoCheckerWithClient(nil, client)

		ok, err := checker.Can(context.Background(), "42", CapabilityManageCategories)
		require.NoError(t, err)
		assert.True(t, ok)

		require.NotNil(t, client.last)
		assert.Equal(t, "permissions", client.last.Namespace)
		assert.Equal(t, "manage_categories", client.last.Object)
		assert.Equal(t, "granted", client.last.Relation)
		assert.Equal(t, "users:42", client.last.Subject.GetId())
	})

	t.Run("拒绝", func(t *testing.T) {
		checker := NewKetoCheckerWithClient(nil, &fakeCheckClient{})
		ok, err := checker.Can(context.Background(), "42", CapabilityEditPosts)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Keto 不可用", func(t *testing.T) {
		boom := errors.New("unavailable")
		checker := NewKetoCheckerWithClient(nil, &fakeCheckClient{err: boom})
		ok, err := checker.Can(context.Background(), "42", CapabilityEditPosts)
		assert.False(t, ok)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("关闭空连接", func(t *testing.T) {
		assert.NoError(t, NewKetoCheckerWithClient(nil, &fakeCheckClient{}).Close())
	})
}

func TestNewKetoChecker_EmptyAddress(t *testing.T) {
	_, err := NewKetoChecker("")
	assert.Error(t, err)
}

func TestStaticChecker(t *testing.T) {
	checker := StaticChecker{
		"1": {CapabilityManageCategories},
		"*": {CapabilityEditPosts},
	}

	tests := []struct {
		user, capability string
		want             bool
	}{
		{"1", CapabilityManageCategories, true},
		{"1", CapabilityEditPosts, true},
		{"2", CapabilityEditPosts, true},
		{"2", CapabilityManageCategories, false},
	}
	for _, tt := range tests {
		got, err := checker.Can(context.Background(), tt.user, tt.capability)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s/%s", tt.user, tt.capability)
	}
}
