package service

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"ebay_sync_v1_202608/internal/model"
	"ebay_sync_v1_202608/internal/repository"
)

// ==================== TokenService 平台凭证提供 ====================

// TokenProvider 同步编排器需要的凭证提供能力
type TokenProvider interface {
	// GetValidToken 返回平台当前可用的 access token，没有可用凭证时返回空串
	GetValidToken(ctx context.Context, platform model.Platform) string
}

// Pinger 平台连通性检查（pkg/shopify、pkg/ebay 客户端都满足）
type Pinger interface {
	Ping(ctx context.Context, token string) error
}

// TokenService 从持久化连接记录里读取凭证
// Token 的获取/刷新是外部授权流程的事，这里只做存取和过期判定
type TokenService struct {
	connRepo repository.ConnectionRepository
	pingers  map[model.Platform]Pinger
}

// NewTokenService 创建凭证服务
func NewTokenService(connRepo repository.ConnectionRepository) *TokenService {
	return &TokenService{
		connRepo: connRepo,
		pingers:  make(map[model.Platform]Pinger),
	}
}

// RegisterPinger 注册平台连通性检查器
func (s *TokenService) RegisterPinger(platform model.Platform, pinger Pinger) {
	s.pingers[platform] = pinger
}

// GetValidToken 实现 TokenProvider
// 凭证过期时顺手把连接状态标成 Token 异常，方便前端引导重新授权
func (s *TokenService) GetValidToken(ctx context.Context, platform model.Platform) string {
	conn, err := s.connRepo.GetByPlatform(ctx, platform)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ""
	}
	if err != nil {
		log.Printf("[Token] 查询 %s 连接失败: %v", platform, err)
		return ""
	}

	if !conn.TokenValid() {
		if conn.Status == 1 {
			if err := s.connRepo.UpdateStatus(ctx, platform, 2); err != nil {
				log.Printf("[Token] 更新 %s 连接状态失败: %v", platform, err)
			}
		}
		return ""
	}
	return conn.AccessToken
}

// ConnectivityStatus 单个平台的连通状态
type ConnectivityStatus struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message,omitempty"`
}

// CheckConnectivity 逐平台检查凭证有效性并发起连通性探测
func (s *TokenService) CheckConnectivity(ctx context.Context) map[model.Platform]ConnectivityStatus {
	result := make(map[model.Platform]ConnectivityStatus)

	for _, platform := range []model.Platform{model.PlatformShopify, model.PlatformEbay} {
		token := s.GetValidToken(ctx, platform)
		if token == "" {
			result[platform] = ConnectivityStatus{Connected: false, Message: "未授权或 Token 已过期"}
			continue
		}

		pinger, ok := s.pingers[platform]
		if !ok {
			result[platform] = ConnectivityStatus{Connected: true}
			continue
		}
		if err := pinger.Ping(ctx, token); err != nil {
			result[platform] = ConnectivityStatus{Connected: false, Message: err.Error()}
			continue
		}
		result[platform] = ConnectivityStatus{Connected: true}
	}
	return result
}

// SaveConnection 写入平台凭证（由外部授权回调调用）
func (s *TokenService) SaveConnection(ctx context.Context, conn *model.PlatformConnection) error {
	return s.connRepo.Save(ctx, conn)
}
