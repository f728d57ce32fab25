package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ==================== 同步运行记录 ====================

// SyncRun 一次完整同步（四个环节）的审计记录
// Results 是 {"orders": {"updated_or_imported": n, ...}, ...} 形式的 JSONB
type SyncRun struct {
	BaseModel
	DryRun     bool           `gorm:"default:false" json:"dry_run"`
	Since      *time.Time     `json:"since"`
	Results    datatypes.JSON `gorm:"type:jsonb" json:"results"`
	Errors     pq.StringArray `gorm:"type:text[]" json:"errors"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}
