package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"taxonomy-editor/internal/pkg/log"
)

// DefaultTermCountSpec 每天凌晨3点30分执行
// Cron 表达式: 秒 分 时 日 月 周
const DefaultTermCountSpec = "0 30 3 * * *"

const repairTimeout = 10 * time.Minute

// CountRepairer 修正使用次数漂移
type CountRepairer interface {
	RepairDrift(ctx context.Context, batchSize int) (int, error)
}

// TermCountTask 使用次数一致性定时任务
// 找出存储的 count 与实际关联数不一致的分组键并重新计算
type TermCountTask struct {
	repairer  CountRepairer
	spec      string
	batchSize int
	logger    log.Logger
	cron      *cron.Cron
}

// NewTermCountTask 创建任务实例，spec 为空时使用 DefaultTermCountSpec
func NewTermCountTask(repairer CountRepairer, spec string, batchSize int, logger log.Logger) *TermCountTask {
	if spec == "" {
		spec = DefaultTermCountSpec
	}
	return &TermCountTask{
		repairer:  repairer,
		spec:      spec,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Start 启动定时任务
func (t *TermCountTask) Start() error {
	t.cron = cron.New(cron.WithSeconds())

	_, err := t.cron.AddFunc(t.spec, func() {
		t.logger.Info("【定时任务】开始检查词条使用次数")
		t.RunOnce(context.Background())
	})
	if err != nil {
		t.logger.Error("【定时任务】添加使用次数检查任务失败", err, "spec", t.spec)
		return fmt.Errorf("invalid term count cron spec %q: %w", t.spec, err)
	}

	t.cron.Start()
	t.logger.Info("【定时任务】使用次数检查任务已启动", "spec", t.spec)
	return nil
}

// RunOnce 执行一次修正，返回修正的分组键数量
func (t *TermCountTask) RunOnce(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, repairTimeout)
	defer cancel()

	start := time.Now()
	repaired, err := t.repairer.RepairDrift(ctx, t.batchSize)
	if err != nil {
		t.logger.Error("【定时任务】修正词条使用次数失败", err)
		return 0
	}

	t.logger.Info("【定时任务】词条使用次数检查完成",
		"repaired", repaired,
		"duration", time.Since(start).String())
	return repaired
}

// Stop 停止定时任务（优雅关闭）
func (t *TermCountTask) Stop() {
	if t.cron != nil {
		t.logger.Info("【定时任务】正在停止定时任务...")
		ctx := t.cron.Stop()
		<-ctx.Done()
		t.logger.Info("【定时任务】定时任务已停止")
	}
}
