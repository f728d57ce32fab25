package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ==================== PipelineTracker 刊登流水线状态跟踪 ====================

// MaxPipelineJobs 内存中保留的任务上限，超出后按插入顺序淘汰最旧的
const MaxPipelineJobs = 200

// ErrJobNotFound 任务不存在
var ErrJobNotFound = errors.New("pipeline job not found")

// JobStatus 任务状态
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobError      JobStatus = "error"
)

// StepStatus 步骤状态
type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepRunning StepStatus = "running"
	StepDone    StepStatus = "done"
	StepError   StepStatus = "error"
)

// pipelineStepNames 四个固定步骤，顺序固定
var pipelineStepNames = []string{
	"fetch_product",
	"generate_description",
	"process_images",
	"create_ebay_listing",
}

// PipelineStep 流水线中的一个步骤
type PipelineStep struct {
	Name        string      `json:"name"`
	Status      StepStatus  `json:"status"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Result      interface{} `json:"result,omitempty"`
}

// PipelineJob 一次商品自动刊登的完整生命周期
type PipelineJob struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Status    JobStatus       `json:"status"`
	Steps     []*PipelineStep `json:"steps"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PipelineTracker 有界的内存任务存储
// 外部自动化流程在推进时上报步骤状态，这里只负责记账
// 淘汰队列是显式的插入顺序列表，不依赖 map 的遍历顺序
type PipelineTracker struct {
	mu    sync.Mutex
	jobs  map[string]*PipelineJob
	order []string // 插入顺序，队头最旧
}

// NewPipelineTracker 创建跟踪器
func NewPipelineTracker() *PipelineTracker {
	return &PipelineTracker{
		jobs: make(map[string]*PipelineJob),
	}
}

// newJobID 时间有序的不透明 ID，前缀是纳秒时间戳，可按字典序排
func newJobID() string {
	return fmt.Sprintf("%016x-%s", time.Now().UnixNano(), uuid.NewString()[:8])
}

// CreateJob 新建任务：四个步骤全部 pending，任务状态 queued
// 容量满时先淘汰最旧的一条（严格 FIFO），检查和插入在同一把锁内完成
func (t *PipelineTracker) CreateJob(productID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.jobs) >= MaxPipelineJobs {
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.jobs, oldest)
	}

	now := time.Now()
	steps := make([]*PipelineStep, 0, len(pipelineStepNames))
	for _, name := range pipelineStepNames {
		steps = append(steps, &PipelineStep{Name: name, Status: StepPending})
	}

	job := &PipelineJob{
		ID:        newJobID(),
		ProductID: productID,
		Status:    JobQueued,
		Steps:     steps,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.jobs[job.ID] = job
	t.order = append(t.order, job.ID)
	return job.ID
}

// StartJob 标记任务进入执行，任务不存在时静默忽略
func (t *PipelineTracker) StartJob(jobID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[jobID]
	if !ok {
		return
	}
	job.Status = JobProcessing
	job.UpdatedAt = time.Now()
}

// UpdateStep 更新指定步骤的状态并重算任务状态
// running 时打开始时间戳，done/error 时打完成时间戳
// 任务或步骤不存在时静默忽略
func (t *PipelineTracker) UpdateStep(jobID, stepName string, status StepStatus, result interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[jobID]
	if !ok {
		return
	}

	var step *PipelineStep
	for _, s := range job.Steps {
		if s.Name == stepName {
			step = s
			break
		}
	}
	if step == nil {
		return
	}

	now := time.Now()
	step.Status = status
	switch status {
	case StepRunning:
		step.StartedAt = &now
	case StepDone, StepError:
		step.CompletedAt = &now
	}
	if result != nil {
		step.Result = result
	}

	job.Status = recomputeStatus(job.Steps)
	job.UpdatedAt = now
}

// recomputeStatus 全部 done -> done；任一 error -> error（优先于剩余 pending）；否则 processing
func recomputeStatus(steps []*PipelineStep) JobStatus {
	allDone := true
	for _, s := range steps {
		if s.Status == StepError {
			return JobError
		}
		if s.Status != StepDone {
			allDone = false
		}
	}
	if allDone {
		return JobDone
	}
	return JobProcessing
}

// ListJobs 返回全部任务，最新创建的在前
func (t *PipelineTracker) ListJobs() []*PipelineJob {
	t.mu.Lock()
	defer t.mu.Unlock()

	jobs := make([]*PipelineJob, 0, len(t.order))
	for i := len(t.order) - 1; i >= 0; i-- {
		if job, ok := t.jobs[t.order[i]]; ok {
			jobs = append(jobs, copyJob(job))
		}
	}
	return jobs
}

// GetJob 按 ID 查询
func (t *PipelineTracker) GetJob(jobID string) (*PipelineJob, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return copyJob(job), nil
}

// copyJob 返回快照，避免调用方拿到内部指针后绕过锁改状态
func copyJob(job *PipelineJob) *PipelineJob {
	steps := make([]*PipelineStep, 0, len(job.Steps))
	for _, s := range job.Steps {
		sc := *s
		steps = append(steps, &sc)
	}
	jc := *job
	jc.Steps = steps
	return &jc
}
