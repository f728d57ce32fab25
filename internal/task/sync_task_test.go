package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"ebay_sync_v1_202608/internal/model"
	"ebay_sync_v1_202608/internal/service"
)

type stubTokens struct{}

func (stubTokens) GetValidToken(_ context.Context, _ model.Platform) string {
	return "token"
}

// blockingSyncService 所有环节都卡在 release 上，用于验证单飞保护
func blockingSyncService(release <-chan struct{}) *service.SyncService {
	step := func(ctx context.Context, _, _ string, _ service.StepOptions) (*service.StepResult, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return &service.StepResult{}, nil
	}
	return service.NewSyncService(stubTokens{}, service.SyncSteps{
		Orders: step, Prices: step, Inventory: step, Fulfillments: step,
	}, nil)
}

func waitIdle(t *testing.T, task *SyncWatchTask) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for task.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("等待同步轮结束超时")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewSyncWatchTask_InvalidInterval(t *testing.T) {
	for _, minutes := range []int{0, -5} {
		if _, err := NewSyncWatchTask(nil, minutes, service.SyncOptions{}); err == nil {
			t.Errorf("间隔 %d 分钟应报错", minutes)
		}
	}
}

func TestTriggerNow_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	task, err := NewSyncWatchTask(blockingSyncService(release), 1, service.SyncOptions{})
	if err != nil {
		t.Fatalf("创建任务失败: %v", err)
	}

	if !task.TriggerNow() {
		t.Fatal("空闲时触发应被接受")
	}

	// 等到这一轮真正进入执行
	deadline := time.After(2 * time.Second)
	for !task.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("等待同步轮启动超时")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if task.TriggerNow() {
		t.Error("上一轮未结束时触发应被跳过")
	}

	close(release)
	waitIdle(t, task)

	if !task.TriggerNow() {
		t.Error("上一轮结束后触发应再次被接受")
	}
	waitIdle(t, task)
}

func TestWatchRun_NoDeadline(t *testing.T) {
	got := make(chan context.Context, 1)
	step := func(ctx context.Context, _, _ string, _ service.StepOptions) (*service.StepResult, error) {
		select {
		case got <- ctx:
		default:
		}
		return &service.StepResult{}, nil
	}
	svc := service.NewSyncService(stubTokens{}, service.SyncSteps{
		Orders: step, Prices: step, Inventory: step, Fulfillments: step,
	}, nil)
	task, _ := NewSyncWatchTask(svc, 1, service.SyncOptions{})

	if !task.TriggerNow() {
		t.Fatal("空闲时触发应被接受")
	}

	select {
	case ctx := <-got:
		// 超过间隔的一轮要跑完，不能被中途取消
		if _, ok := ctx.Deadline(); ok {
			t.Error("轮询执行不应带截止时间")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("等待环节执行超时")
	}
	waitIdle(t, task)
}

func TestRunNow_SharesSingleFlight(t *testing.T) {
	release := make(chan struct{})
	task, _ := NewSyncWatchTask(blockingSyncService(release), 1, service.SyncOptions{})

	if !task.TriggerNow() {
		t.Fatal("空闲时触发应被接受")
	}

	// 轮询占着槽位时，手动同步执行应被拒绝
	if _, err := task.RunNow(context.Background(), service.SyncOptions{}); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("err = %v, want ErrSyncInProgress", err)
	}

	close(release)
	waitIdle(t, task)

	report, err := task.RunNow(context.Background(), service.SyncOptions{DryRun: true})
	if err != nil {
		t.Fatalf("空闲时手动执行失败: %v", err)
	}
	if !report.DryRun {
		t.Error("手动执行应透传自己的选项")
	}
	if task.IsRunning() {
		t.Error("手动执行结束后应释放槽位")
	}
}

func TestIsRunning_ReflectsLifecycle(t *testing.T) {
	release := make(chan struct{})
	task, _ := NewSyncWatchTask(blockingSyncService(release), 1, service.SyncOptions{})

	if task.IsRunning() {
		t.Error("未触发时不应处于运行态")
	}

	task.TriggerNow()
	deadline := time.After(2 * time.Second)
	for !task.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("等待同步轮启动超时")
		case <-time.After(5 * time.Millisecond):
		}
	}

	close(release)
	waitIdle(t, task)
}
