package impl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/aarondl/sqlboiler/v4/boil"

	"taxonomy-editor/internal/repository/interfaces"
)

var savepointName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type sqlTransactor struct {
	db *sql.DB
}

// NewTransactor 基于 *sql.DB 的事务边界
func NewTransactor(db *sql.DB) interfaces.Transactor {
	return &sqlTransactor{db: db}
}

func (t *sqlTransactor) Executor() boil.ContextExecutor {
	return t.db
}

// WithTx 开启事务执行 fn；fn 出错或 panic 时回滚
func (t *sqlTransactor) WithTx(ctx context.Context, fn interfaces.TxFunc) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	// Commit 成功后 Rollback 返回 sql.ErrTxDone，忽略
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrCommitFailed, err)
	}
	return nil
}

// WithSavepoint 保存点名称只允许字母、数字和下划线
func (t *sqlTransactor) WithSavepoint(ctx context.Context, exec boil.ContextExecutor, name string, fn interfaces.TxFunc) error {
	if !savepointName.MatchString(name) {
		return fmt.Errorf("非法的保存点名称: %q", name)
	}
	if _, err := exec.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("创建保存点 %s 失败: %w", name, err)
	}

	if err := fn(ctx, exec); err != nil {
		if _, rbErr := exec.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("回滚到保存点 %s 失败: %w", name, errors.Join(err, rbErr))
		}
		return err
	}

	if _, err := exec.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("释放保存点 %s 失败: %w", name, err)
	}
	return nil
}
