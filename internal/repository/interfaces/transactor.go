package interfaces

import (
	"context"

	"github.com/aarondl/sqlboiler/v4/boil"
)

// TxFunc 在事务中执行的函数，exec 为当前事务
type TxFunc func(ctx context.Context, exec boil.ContextExecutor) error

// Transactor 事务边界
type Transactor interface {
	// Executor 返回事务外使用的执行器（只读查询）
	Executor() boil.ContextExecutor

	// WithTx 开启事务执行 fn，fn 返回错误或 panic 时回滚，否则提交
	WithTx(ctx context.Context, fn TxFunc) error

	// WithSavepoint 在事务 exec 内设置保存点执行 fn，fn 出错时仅回滚到保存点，事务仍可继续使用
	WithSavepoint(ctx context.Context, exec boil.ContextExecutor, name string, fn TxFunc) error
}
