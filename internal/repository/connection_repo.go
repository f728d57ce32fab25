package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ebay_sync_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// ConnectionRepository 平台连接凭证仓储接口
type ConnectionRepository interface {
	GetByPlatform(ctx context.Context, platform model.Platform) (*model.PlatformConnection, error)
	Save(ctx context.Context, conn *model.PlatformConnection) error
	UpdateStatus(ctx context.Context, platform model.Platform, status int) error
}

// ==================== 仓储实现 ====================

type connectionRepo struct {
	db *gorm.DB
}

// NewConnectionRepository 创建平台连接仓储
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepo{db: db}
}

func (r *connectionRepo) GetByPlatform(ctx context.Context, platform model.Platform) (*model.PlatformConnection, error) {
	var conn model.PlatformConnection
	err := r.db.WithContext(ctx).
		Where("platform = ?", platform).
		First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// Save 每个平台只保留一行，冲突时整体更新凭证
func (r *connectionRepo) Save(ctx context.Context, conn *model.PlatformConnection) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token", "refresh_token", "token_expires_at",
			"shop_domain", "status", "updated_at",
		}),
	}).Create(conn).Error
}

func (r *connectionRepo) UpdateStatus(ctx context.Context, platform model.Platform, status int) error {
	return r.db.WithContext(ctx).
		Model(&model.PlatformConnection{}).
		Where("platform = ?", platform).
		Update("status", status).Error
}
