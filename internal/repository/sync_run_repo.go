package repository

import (
	"context"

	"gorm.io/gorm"

	"ebay_sync_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// SyncRunRepository 同步运行审计记录仓储接口
type SyncRunRepository interface {
	Create(ctx context.Context, run *model.SyncRun) error
	ListRecent(ctx context.Context, limit int) ([]model.SyncRun, error)
}

// ==================== 仓储实现 ====================

type syncRunRepo struct {
	db *gorm.DB
}

// NewSyncRunRepository 创建同步记录仓储
func NewSyncRunRepository(db *gorm.DB) SyncRunRepository {
	return &syncRunRepo{db: db}
}

func (r *syncRunRepo) Create(ctx context.Context, run *model.SyncRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *syncRunRepo) ListRecent(ctx context.Context, limit int) ([]model.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []model.SyncRun
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
