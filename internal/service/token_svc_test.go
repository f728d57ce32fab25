package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ebay_sync_v1_202608/internal/model"
	"ebay_sync_v1_202608/internal/repository"
)

func newTokenService(t *testing.T) (*TokenService, repository.ConnectionRepository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.PlatformConnection{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	connRepo := repository.NewConnectionRepository(db)
	return NewTokenService(connRepo), connRepo
}

func TestGetValidToken(t *testing.T) {
	svc, connRepo := newTokenService(t)
	ctx := context.Background()

	err := connRepo.Save(ctx, &model.PlatformConnection{
		Platform:       model.PlatformEbay,
		AccessToken:    "ebay-token",
		TokenExpiresAt: time.Now().Add(time.Hour),
		Status:         1,
	})
	if err != nil {
		t.Fatalf("写入连接失败: %v", err)
	}

	if got := svc.GetValidToken(ctx, model.PlatformEbay); got != "ebay-token" {
		t.Errorf("GetValidToken = %q, want ebay-token", got)
	}
}

func TestGetValidToken_NoConnection(t *testing.T) {
	svc, _ := newTokenService(t)

	if got := svc.GetValidToken(context.Background(), model.PlatformShopify); got != "" {
		t.Errorf("未授权平台应返回空串，得到 %q", got)
	}
}

func TestGetValidToken_ExpiredMarksStatus(t *testing.T) {
	svc, connRepo := newTokenService(t)
	ctx := context.Background()

	_ = connRepo.Save(ctx, &model.PlatformConnection{
		Platform:       model.PlatformEbay,
		AccessToken:    "stale",
		TokenExpiresAt: time.Now().Add(-time.Minute),
		Status:         1,
	})

	if got := svc.GetValidToken(ctx, model.PlatformEbay); got != "" {
		t.Errorf("过期凭证应返回空串，得到 %q", got)
	}

	conn, err := connRepo.GetByPlatform(ctx, model.PlatformEbay)
	if err != nil {
		t.Fatalf("查询连接失败: %v", err)
	}
	if conn.Status != 2 {
		t.Errorf("过期后状态 = %d, want 2", conn.Status)
	}
}

func TestGetValidToken_ZeroExpiryNeverExpires(t *testing.T) {
	svc, connRepo := newTokenService(t)
	ctx := context.Background()

	// Shopify 离线 token 没有过期时间
	_ = connRepo.Save(ctx, &model.PlatformConnection{
		Platform:    model.PlatformShopify,
		AccessToken: "offline-token",
		Status:      1,
	})

	if got := svc.GetValidToken(ctx, model.PlatformShopify); got != "offline-token" {
		t.Errorf("GetValidToken = %q, want offline-token", got)
	}
}

// ==================== 连通性检查 ====================

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context, _ string) error { return f.err }

func TestCheckConnectivity(t *testing.T) {
	svc, connRepo := newTokenService(t)
	ctx := context.Background()

	_ = connRepo.Save(ctx, &model.PlatformConnection{
		Platform: model.PlatformShopify, AccessToken: "ok", Status: 1,
	})
	_ = connRepo.Save(ctx, &model.PlatformConnection{
		Platform: model.PlatformEbay, AccessToken: "ok", Status: 1,
	})
	svc.RegisterPinger(model.PlatformShopify, &fakePinger{})
	svc.RegisterPinger(model.PlatformEbay, &fakePinger{err: errors.New("401 unauthorized")})

	status := svc.CheckConnectivity(ctx)

	if !status[model.PlatformShopify].Connected {
		t.Error("Shopify 应为已连接")
	}
	if status[model.PlatformEbay].Connected {
		t.Error("Ping 失败的 eBay 应为未连接")
	}
	if status[model.PlatformEbay].Message == "" {
		t.Error("未连接时应带上原因")
	}
}

func TestCheckConnectivity_MissingToken(t *testing.T) {
	svc, _ := newTokenService(t)

	status := svc.CheckConnectivity(context.Background())
	for _, platform := range []model.Platform{model.PlatformShopify, model.PlatformEbay} {
		if status[platform].Connected {
			t.Errorf("%s 未授权时应为未连接", platform)
		}
	}
}
