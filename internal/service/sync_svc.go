package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"ebay_sync_v1_202608/internal/model"
	"ebay_sync_v1_202608/internal/repository"
)

// ==================== SyncService 同步编排 ====================

// ErrNotConnected 任一平台缺少可用凭证，整次同步在执行前被拒绝
var ErrNotConnected = errors.New("both platforms must be connected before syncing")

// StepOptions 传给每个同步环节的选项
type StepOptions struct {
	DryRun bool
	Since  *time.Time
}

// StepResult 单个同步环节的产出计数
type StepResult struct {
	UpdatedOrImported int `json:"updated_or_imported"`
	Skipped           int `json:"skipped"`
	Failed            int `json:"failed"`
}

// SyncStepFunc 外部同步环节函数的契约
// dryRun=true 时不得发起平台变更调用，但仍返回尽力而为的预估计数
type SyncStepFunc func(ctx context.Context, targetToken, sourceToken string, opts StepOptions) (*StepResult, error)

// SyncSteps 四个固定环节
type SyncSteps struct {
	Orders       SyncStepFunc
	Prices       SyncStepFunc
	Inventory    SyncStepFunc
	Fulfillments SyncStepFunc
}

// SyncOptions 一次完整同步的选项
type SyncOptions struct {
	DryRun bool       `json:"dry_run"`
	Since  *time.Time `json:"since"`
}

// StepReport 单环节报告
type StepReport struct {
	Name   string     `json:"name"`
	Result StepResult `json:"result"`
	Error  string     `json:"error,omitempty"`
}

// SyncReport 整次同步的报告
type SyncReport struct {
	DryRun     bool         `json:"dry_run"`
	Since      *time.Time   `json:"since,omitempty"`
	Steps      []StepReport `json:"steps"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// SyncService 同步编排器
// 纯粹的顺序执行器：固定顺序跑四个环节，单环节失败不影响后续环节
// 自身不持有状态，审计记录落到 sync_runs 表只是旁路
type SyncService struct {
	tokens  TokenProvider
	steps   SyncSteps
	runRepo repository.SyncRunRepository // 可为 nil（如测试场景）
}

// NewSyncService 创建同步编排器
func NewSyncService(tokens TokenProvider, steps SyncSteps, runRepo repository.SyncRunRepository) *SyncService {
	return &SyncService{
		tokens:  tokens,
		steps:   steps,
		runRepo: runRepo,
	}
}

// RunFullSync 执行一次完整同步
// 顺序固定: 订单 -> 价格 -> 库存 -> 履约。订单先行，后面的推送可能引用新导入的订单
// 环节之间严格串行，迁就目标平台限流，也保证数据依赖顺序确定
func (s *SyncService) RunFullSync(ctx context.Context, opts SyncOptions) (*SyncReport, error) {
	// 连通性前置检查：任一平台没有可用凭证就整体拒绝，不算环节失败
	ebayToken := s.tokens.GetValidToken(ctx, model.PlatformEbay)
	shopifyToken := s.tokens.GetValidToken(ctx, model.PlatformShopify)
	if ebayToken == "" || shopifyToken == "" {
		return nil, ErrNotConnected
	}

	report := &SyncReport{
		DryRun:    opts.DryRun,
		Since:     opts.Since,
		StartedAt: time.Now(),
	}

	mode := ""
	if opts.DryRun {
		mode = " (dry-run)"
	}
	log.Printf("[Sync] 开始完整同步%s", mode)

	stepOpts := StepOptions{DryRun: opts.DryRun, Since: opts.Since}
	named := []struct {
		name string
		fn   SyncStepFunc
	}{
		{"orders", s.steps.Orders},
		{"prices", s.steps.Prices},
		{"inventory", s.steps.Inventory},
		{"fulfillments", s.steps.Fulfillments},
	}

	for _, step := range named {
		result, err := runStep(ctx, step.fn, ebayToken, shopifyToken, stepOpts)
		sr := StepReport{Name: step.name}
		if err != nil {
			// 失败隔离：记下诊断信息，继续跑后面的环节
			sr.Error = err.Error()
			log.Printf("[Sync] %s 环节失败: %v", step.name, err)
		} else {
			sr.Result = *result
			log.Printf("[Sync] %s: 更新/导入 %d, 跳过 %d, 失败 %d",
				step.name, result.UpdatedOrImported, result.Skipped, result.Failed)
		}
		report.Steps = append(report.Steps, sr)
	}

	report.FinishedAt = time.Now()
	log.Printf("[Sync] 完整同步结束，耗时 %s", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))

	s.persistRun(ctx, report)
	return report, nil
}

// runStep 包住单个环节：未配置、返回错误、panic 都转成可报告的错误
func runStep(ctx context.Context, fn SyncStepFunc, targetToken, sourceToken string, opts StepOptions) (result *StepResult, err error) {
	if fn == nil {
		return nil, errors.New("同步环节未配置")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("同步环节 panic: %v", r)
		}
	}()

	result, err = fn(ctx, targetToken, sourceToken, opts)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &StepResult{}
	}
	return result, nil
}

// persistRun 旁路写审计记录，失败只记日志
func (s *SyncService) persistRun(ctx context.Context, report *SyncReport) {
	if s.runRepo == nil {
		return
	}

	results := make(map[string]StepResult, len(report.Steps))
	var errs pq.StringArray
	for _, sr := range report.Steps {
		results[sr.Name] = sr.Result
		if sr.Error != "" {
			errs = append(errs, fmt.Sprintf("%s: %s", sr.Name, sr.Error))
		}
	}
	raw, err := json.Marshal(results)
	if err != nil {
		log.Printf("[Sync] 审计记录序列化失败: %v", err)
		return
	}

	run := &model.SyncRun{
		DryRun:     report.DryRun,
		Since:      report.Since,
		Results:    raw,
		Errors:     errs,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		log.Printf("[Sync] 审计记录写入失败: %v", err)
	}
}
