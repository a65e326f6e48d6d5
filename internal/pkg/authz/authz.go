// Package authz 基于 Keto 关系元组的能力检查
package authz

import (
	"context"
	"fmt"

	rts "github.com/ory/keto/proto/ory/keto/relation_tuples/v1alpha2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// 管理后台使用的能力
const (
	CapabilityManageCategories = "manage_categories" // 合并词条
	CapabilityEditPosts        = "edit_posts"        // 批量编辑内容标签
)

const (
	permissionNamespace = "permissions"
	grantedRelation     = "granted"
)

// Checker 判断用户是否拥有某项能力
type Checker interface {
	Can(ctx context.Context, userID, capability string) (bool, error)
}

// KetoChecker 通过 Keto Check API 判断能力 (会展开角色继承)
type KetoChecker struct {
	conn   *grpc.ClientConn
	client rts.CheckServiceClient
}

// NewKetoChecker 创建 Keto 能力检查器
// readAddr: Keto Read gRPC 地址 (例如: "localhost:4466")
func NewKetoChecker(readAddr string) (*KetoChecker, error) {
	if readAddr == "" {
		return nil, fmt.Errorf("keto read address cannot be empty")
	}

	conn, err := grpc.Dial(readAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to keto read service: %w", err)
	}

	return NewKetoCheckerWithClient(conn, rts.NewCheckServiceClient(conn)), nil
}

// NewKetoCheckerWithClient 使用已有的 gRPC 客户端
func NewKetoCheckerWithClient(conn *grpc.ClientConn, client rts.CheckServiceClient) *KetoChecker {
	return &KetoChecker{conn: conn, client: client}
}

// Can 检查 users:<userID> 是否被授予 capability
func (k *KetoChecker) Can(ctx context.Context, userID, capability string) (bool, error) {
	resp, err := k.client.Check(ctx, CheckRequest(userID, capability))
	if err != nil {
		return false, fmt.Errorf("failed to check capability %s: %w", capability, err)
	}
	return resp.Allowed, nil
}

// Close 关闭连接
func (k *KetoChecker) Close() error {
	if k.conn == nil {
		return nil
	}
	return k.conn.Close()
}

// CheckRequest 构建能力检查请求
func CheckRequest(userID, capability string) *rts.CheckRequest {
	return &rts.CheckRequest{
		Namespace: permissionNamespace,
		Object:    capability,
		Relation:  grantedRelation,
		Subject: &rts.Subject{
			Ref: &rts.Subject_Id{
				Id: fmt.Sprintf("users:%s", userID),
			},
		},
	}
}

// StaticChecker 固定授权表，用于开发环境和测试
// key 为用户 ID，"*" 表示任意用户
type StaticChecker map[string][]string

// Can 查询授权表
func (s StaticChecker) Can(_ context.Context, userID, capability string) (bool, error) {
	for _, key := range []string{userID, "*"} {
		for _, c := range s[key] {
			if c == capability {
				return true, nil
			}
		}
	}
	return false, nil
}
