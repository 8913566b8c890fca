package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"allegro_dev_v1_202608/internal/model"
	"allegro_dev_v1_202608/internal/repository"
	"allegro_dev_v1_202608/pkg/allegro"
	"allegro_dev_v1_202608/pkg/utils"
)

// 授权流程错误
var (
	ErrMissingCode       = errors.New("回调缺少授权码")
	ErrSessionExpired    = errors.New("授权会话不存在或已过期，请重新发起授权")
	ErrExchangeRejected  = errors.New("授权码换取 Token 被拒绝")
	ErrNoRefreshToken    = errors.New("该账号没有 refresh token，需要重新授权")
	ErrCredentialMissing = errors.New("该账号尚未绑定 Allegro 凭证")
)

// AuthService 授权服务：PKCE 授权流程 + Token 生命周期
type AuthService struct {
	credRepo repository.CredentialRepository
	client   *allegro.Client

	// 按 owner 互斥，避免刷新与回调并发写同一条凭证时互相覆盖
	ownerLocks sync.Map
}

// NewAuthService 工厂方法
func NewAuthService(credRepo repository.CredentialRepository, client *allegro.Client) *AuthService {
	return &AuthService{
		credRepo: credRepo,
		client:   client,
	}
}

// lockOwner 获取指定 owner 的互斥锁 (惰性创建)
func (s *AuthService) lockOwner(ownerID int64) *sync.Mutex {
	v, _ := s.ownerLocks.LoadOrStore(ownerID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// ==================== PKCE 授权 ====================

// GenerateLoginURL 生成授权链接
// verifier 留在服务端 (以 state 为键的短时会话)，回调时取出换 Token
func (s *AuthService) GenerateLoginURL(ctx context.Context, ownerID int64) (string, error) {
	// 1. 生成 PKCE 安全参数
	verifier, err := utils.GenerateRandomString(64)
	if err != nil {
		return "", fmt.Errorf("生成 verifier 失败: %w", err)
	}
	challenge := utils.GenerateCodeChallenge(verifier)
	state, err := utils.GenerateRandomString(32)
	if err != nil {
		return "", fmt.Errorf("生成 state 失败: %w", err)
	}

	// 2. 缓存 Verifier (格式为 key=state, value="verifier:owner_id")
	cacheValue := fmt.Sprintf("%s:%d", verifier, ownerID)
	utils.SetCache(state, cacheValue)

	// 3. 拼接 Allegro 官方授权 URL
	cfg := s.client.Config()
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", cfg.ClientID)
	params.Set("redirect_uri", cfg.RedirectURI)
	params.Set("code_challenge_method", "S256")
	params.Set("code_challenge", challenge)
	params.Set("state", state)

	return cfg.AuthURL + "?" + params.Encode(), nil
}

// HandleCallback 处理 Allegro 回调 -> 换 Token
// 会话是一次性的：重放的回调会因为会话已被消费而失败
func (s *AuthService) HandleCallback(ctx context.Context, code, state string) (*model.Credential, error) {
	if code == "" {
		return nil, ErrMissingCode
	}

	// 1. 取出并销毁授权会话
	cachedVal, exists := utils.PopCache(state)
	if !exists {
		return nil, ErrSessionExpired
	}

	// 2. 解析缓存 "verifier:owner_id"
	parts := strings.SplitN(cachedVal, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("缓存数据格式错误，预期 'verifier:ownerID'，实际: %s", cachedVal)
	}
	verifier := parts[0]
	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("缓存中的 OwnerID 无效: %v", err)
	}

	mu := s.lockOwner(ownerID)
	mu.Lock()
	defer mu.Unlock()

	// 3. 换取 Token
	tokenResp, err := s.client.ExchangeCode(ctx, code, verifier)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeRejected, err)
	}

	// 4. 创建或更新凭证
	now := time.Now()
	cred := &model.Credential{
		OwnerID:        ownerID,
		AccessToken:    tokenResp.AccessToken,
		RefreshToken:   tokenResp.RefreshToken,
		TokenExpiresAt: now.Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
		TokenStatus:    model.TokenStatusValid,
	}
	if err := s.credRepo.SaveOrUpdate(ctx, cred); err != nil {
		return nil, fmt.Errorf("凭证入库失败: %w", err)
	}

	return cred, nil
}

// ==================== Token 刷新 ====================

// RefreshExpiringCredentials 刷新所有临期凭证
// now 显式传入，定时任务与测试共用同一套逻辑；本方法不做任何调度
// 每条凭证独立提交，单条失败只记日志，不影响其他凭证，也不向上抛错
func (s *AuthService) RefreshExpiringCredentials(ctx context.Context, now time.Time, horizon time.Duration) (refreshed, failed int) {
	creds, err := s.credRepo.FindExpiring(ctx, now, horizon)
	if err != nil {
		log.Printf("[Token] 临期凭证查询失败: %v", err)
		return 0, 0
	}

	log.Printf("[Token] 找到 %d 条待刷新凭证", len(creds))

	for i := range creds {
		cred := creds[i]
		if err := s.refreshCredential(ctx, now, &cred); err != nil {
			failed++
			log.Printf("[Token] Owner [%d] 刷新失败: %v", cred.OwnerID, err)
			continue
		}
		refreshed++
	}
	return refreshed, failed
}

// RefreshOwnerToken 按需刷新单个账号的 Token
func (s *AuthService) RefreshOwnerToken(ctx context.Context, ownerID int64) error {
	cred, err := s.credRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return ErrCredentialMissing
	}
	return s.refreshCredential(ctx, time.Now(), cred)
}

// refreshCredential 刷新单条凭证并立即落库
func (s *AuthService) refreshCredential(ctx context.Context, now time.Time, cred *model.Credential) error {
	if cred.RefreshToken == "" {
		return ErrNoRefreshToken
	}

	mu := s.lockOwner(cred.OwnerID)
	mu.Lock()
	defer mu.Unlock()

	tokenResp, err := s.client.RefreshToken(ctx, cred.RefreshToken)
	if err != nil {
		// 只有平台明确拒绝 (4xx) 才标记失效，网络抖动下次再试
		var apiErr *allegro.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			if markErr := s.credRepo.UpdateTokenStatus(ctx, cred.OwnerID, model.TokenStatusInvalid); markErr != nil {
				log.Printf("[Token] Owner [%d] 标记失效状态失败: %v", cred.OwnerID, markErr)
			}
		}
		return fmt.Errorf("刷新被拒绝: %w", err)
	}

	cred.AccessToken = tokenResp.AccessToken
	cred.RefreshToken = tokenResp.RefreshToken
	cred.TokenExpiresAt = now.Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	cred.TokenStatus = model.TokenStatusValid

	return s.credRepo.SaveOrUpdate(ctx, cred)
}
