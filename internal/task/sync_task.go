package task

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"ebay_sync_v1_202608/internal/service"
)

// ==================== SyncWatchTask 轮询同步任务 ====================

// ErrSyncInProgress 已有一轮同步在执行
var ErrSyncInProgress = errors.New("a sync run is already in progress")

// SyncWatchTask 按固定分钟间隔无限重复完整同步（watch 模式）
// 单飞保护：上一轮还没跑完时，新到的触发直接跳过，不排队不并跑
// 超长的一轮不会被打断，重叠的触发被跳过即可
type SyncWatchTask struct {
	syncService *service.SyncService
	cron        *cron.Cron
	interval    time.Duration
	opts        service.SyncOptions

	running bool
	mutex   sync.Mutex
}

// NewSyncWatchTask 创建轮询任务，intervalMinutes 必须大于 0
func NewSyncWatchTask(syncService *service.SyncService, intervalMinutes int, opts service.SyncOptions) (*SyncWatchTask, error) {
	if intervalMinutes <= 0 {
		return nil, fmt.Errorf("轮询间隔必须大于 0 分钟，收到 %d", intervalMinutes)
	}
	return &SyncWatchTask{
		syncService: syncService,
		cron:        cron.New(cron.WithSeconds()),
		interval:    time.Duration(intervalMinutes) * time.Minute,
		opts:        opts,
	}, nil
}

// Start 启动轮询。先立即跑一轮，之后按间隔由 cron 触发，两轮之间进程空闲
func (t *SyncWatchTask) Start() error {
	// 首次执行
	go t.runOnce()

	_, err := t.cron.AddFunc(fmt.Sprintf("@every %s", t.interval), t.runOnce)
	if err != nil {
		return fmt.Errorf("轮询任务注册失败: %w", err)
	}

	t.cron.Start()
	log.Printf("[SyncWatch] 已启动 (每 %s 一轮)", t.interval)
	return nil
}

// Stop 停止轮询，等待在跑的 cron 回调退出
func (t *SyncWatchTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[SyncWatch] 已停止")
}

// TriggerNow 立即异步触发一轮（复用同一个单飞保护）
// 返回 false 表示有一轮正在进行，本次被跳过
func (t *SyncWatchTask) TriggerNow() bool {
	return t.tryRun()
}

// RunNow 占住单飞槽位同步执行一轮，带调用方自己的选项
// HTTP 手动触发走这里，避免和 watch 轮并跑；已有一轮在执行时返回 ErrSyncInProgress
func (t *SyncWatchTask) RunNow(ctx context.Context, opts service.SyncOptions) (*service.SyncReport, error) {
	t.mutex.Lock()
	if t.running {
		t.mutex.Unlock()
		return nil, ErrSyncInProgress
	}
	t.running = true
	t.mutex.Unlock()

	defer func() {
		t.mutex.Lock()
		t.running = false
		t.mutex.Unlock()
	}()

	return t.syncService.RunFullSync(ctx, opts)
}

// runOnce cron 回调入口
func (t *SyncWatchTask) runOnce() {
	if !t.tryRun() {
		log.Println("[SyncWatch] 上一轮同步仍在进行，本次触发跳过")
	}
}

// tryRun 拿到单飞标记才真正执行；单轮内部的错误只记日志，不终止轮询
func (t *SyncWatchTask) tryRun() bool {
	t.mutex.Lock()
	if t.running {
		t.mutex.Unlock()
		return false
	}
	t.running = true
	t.mutex.Unlock()

	go func() {
		defer func() {
			t.mutex.Lock()
			t.running = false
			t.mutex.Unlock()
		}()

		// 不设超时：超过间隔的一轮继续跑完，期间的 cron 触发被单飞保护跳过
		if _, err := t.syncService.RunFullSync(context.Background(), t.opts); err != nil {
			log.Printf("[SyncWatch] 本轮同步失败: %v", err)
		}
	}()
	return true
}

// IsRunning 当前是否有一轮在执行
func (t *SyncWatchTask) IsRunning() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.running
}
