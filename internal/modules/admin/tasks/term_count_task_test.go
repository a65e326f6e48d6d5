package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxonomy-editor/internal/pkg/log"
)

type fakeRepairer struct {
	mu       sync.Mutex
	calls    int
	batch    int
	repaired int
	err      error
	ran      chan struct{}
}

func (f *fakeRepairer) RepairDrift(ctx context.Context, batchSize int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.batch = batchSize
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("missing deadline")
	}
	if f.ran != nil {
		select {
		case f.ran <- struct{}{}:
		default:
		}
	}
	return f.repaired, f.err
}

func TestTermCountTask_RunOnce(t *testing.T) {
	t.Run("成功", func(t *testing.T) {
		repairer := &fakeRepairer{repaired: 3}
		task := NewTermCountTask(repairer, "", 50, log.Discard())

		assert.Equal(t, 3, task.RunOnce(context.Background()))
		assert.Equal(t, 1, repairer.calls)
		assert.Equal(t, 50, repairer.batch)
		assert.Equal(t, DefaultTermCountSpec, task.spec)
	})

	t.Run("失败时返回 0", func(t *testing.T) {
		repairer := &fakeRepairer{repaired: 3, err: errors.New("db down")}
		task := NewTermCountTask(repairer, "", 50, log.Discard())
		assert.Equal(t, 0, task.RunOnce(context.Background()))
	})
}

func TestTermCountTask_InvalidSpec(t *testing.T) {
	task := NewTermCountTask(&fakeRepairer{}, "not a cron", 10, log.Discard())
	assert.Error(t, task.Start())
	task.Stop()
}

func TestTermCountTask_Schedule(t *testing.T) {
	repairer := &fakeRepairer{ran: make(chan struct{}, 1)}
	task := NewTermCountTask(repairer, "* * * * * *", 10, log.Discard())
	require.NoError(t, task.Start())
	defer task.Stop()

	select {
	case <-repairer.ran:
	case <-time.After(3 * time.Second):
		t.Fatal("定时任务未在预期时间内执行")
	}
}
