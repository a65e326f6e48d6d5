package impl

import (
	"context"
	"database/sql"

	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/friendsofgo/errors"
)

// pick 未传入执行器时回退到连接池
func pick(db *sql.DB, exec boil.ContextExecutor) boil.ContextExecutor {
	if exec != nil {
		return exec
	}
	return db
}

// queryInt64s 执行单列整数查询
func queryInt64s(ctx context.Context, exec boil.ContextExecutor, q string, args ...interface{}) ([]int64, error) {
	rows, err := exec.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// queryExists 执行 SELECT EXISTS(...) 查询
func queryExists(ctx context.Context, exec boil.ContextExecutor, q string, args ...interface{}) (bool, error) {
	var exists bool
	if err := exec.QueryRowContext(ctx, q, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func int64sToArgs(start []interface{}, ids []int64) []interface{} {
	args := make([]interface{}, 0, len(start)+len(ids))
	args = append(args, start...)
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}

// dedupeInt64s 去重并保持首次出现的顺序
func dedupeInt64s(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

type totalRow struct {
	Total int64 `boil:"total"`
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
