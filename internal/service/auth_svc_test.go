package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"allegro_dev_v1_202608/internal/model"
	"allegro_dev_v1_202608/internal/repository"
	"allegro_dev_v1_202608/pkg/allegro"
	"allegro_dev_v1_202608/pkg/utils"
)

// ==================== 测试辅助 ====================

func setupAuthTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&model.SysUser{}, &model.Credential{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

// newTokenServer 伪造 Allegro 的 token 签发端点
func newTokenServer(t *testing.T, status int, accessToken, refreshToken string, expiresIn int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			t.Error("token 请求必须携带 Basic Auth")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			fmt.Fprintf(w, `{"access_token":"%s","refresh_token":"%s","expires_in":%d,"token_type":"bearer"}`,
				accessToken, refreshToken, expiresIn)
		} else {
			fmt.Fprint(w, `{"error":"invalid_grant"}`)
		}
	}))
}

func newAuthService(db *gorm.DB, tokenURL string) (*AuthService, repository.CredentialRepository) {
	credRepo := repository.NewCredentialRepository(db)
	client := allegro.NewClient(allegro.Config{
		TokenURL:     tokenURL,
		AuthURL:      "https://allegro.example/auth/oauth/authorize",
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		RedirectURI:  "http://localhost:8080/api/oauth/callback",
	})
	return NewAuthService(credRepo, client), credRepo
}

// ==================== 授权链接 ====================

func TestGenerateLoginURL(t *testing.T) {
	db := setupAuthTestDB(t)
	svc, _ := newAuthService(db, "")

	rawURL, err := svc.GenerateLoginURL(context.Background(), 42)
	if err != nil {
		t.Fatalf("生成授权链接失败: %v", err)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("授权链接不是合法 URL: %v", err)
	}

	q := u.Query()
	if q.Get("response_type") != "code" {
		t.Errorf("response_type 应为 code, 实际 %s", q.Get("response_type"))
	}
	if q.Get("client_id") != "test-client" {
		t.Errorf("client_id 不符: %s", q.Get("client_id"))
	}
	if q.Get("code_challenge_method") != "S256" {
		t.Errorf("challenge 方法应为 S256, 实际 %s", q.Get("code_challenge_method"))
	}

	state := q.Get("state")
	if len(state) != 32 {
		t.Errorf("state 长度应为 32, 实际 %d", len(state))
	}

	// 服务端会话里的 verifier 必须和链接里的 challenge 对得上
	cached, ok := utils.GetCache(state)
	if !ok {
		t.Fatal("state 对应的授权会话不存在")
	}
	verifier := cached[:64]
	if got := utils.GenerateCodeChallenge(verifier); got != q.Get("code_challenge") {
		t.Errorf("challenge 与缓存的 verifier 不匹配: %s != %s", got, q.Get("code_challenge"))
	}
}

// ==================== 授权回调 ====================

func TestHandleCallback_MissingCode(t *testing.T) {
	db := setupAuthTestDB(t)
	svc, _ := newAuthService(db, "")

	_, err := svc.HandleCallback(context.Background(), "", "some-state")
	if !errors.Is(err, ErrMissingCode) {
		t.Errorf("缺少 code 应返回 ErrMissingCode, 实际 %v", err)
	}
}

func TestHandleCallback_UnknownState(t *testing.T) {
	db := setupAuthTestDB(t)
	svc, _ := newAuthService(db, "")

	_, err := svc.HandleCallback(context.Background(), "auth-code", "state-never-issued")
	if !errors.Is(err, ErrSessionExpired) {
		t.Errorf("未知 state 应返回 ErrSessionExpired, 实际 %v", err)
	}
}

func TestHandleCallback_SuccessAndReplay(t *testing.T) {
	db := setupAuthTestDB(t)
	srv := newTokenServer(t, http.StatusOK, "new-access", "new-refresh", 43200)
	defer srv.Close()

	svc, credRepo := newAuthService(db, srv.URL)

	// 模拟 GenerateLoginURL 留下的会话
	utils.SetCache("state-abc", "test-verifier-0123456789:42")

	cred, err := svc.HandleCallback(context.Background(), "auth-code", "state-abc")
	if err != nil {
		t.Fatalf("回调处理失败: %v", err)
	}
	if cred.OwnerID != 42 {
		t.Errorf("OwnerID 应为 42, 实际 %d", cred.OwnerID)
	}
	if cred.AccessToken != "new-access" || cred.RefreshToken != "new-refresh" {
		t.Errorf("Token 未正确入库: %+v", cred)
	}
	if cred.TokenStatus != model.TokenStatusValid {
		t.Errorf("状态应为 valid, 实际 %s", cred.TokenStatus)
	}

	// 确认真的落库了
	saved, err := credRepo.GetByOwnerID(context.Background(), 42)
	if err != nil {
		t.Fatalf("查询凭证失败: %v", err)
	}
	if saved.AccessToken != "new-access" {
		t.Errorf("落库的 access token 不符: %s", saved.AccessToken)
	}

	// 重放同一个回调：会话已被消费，必须失败
	_, err = svc.HandleCallback(context.Background(), "auth-code", "state-abc")
	if !errors.Is(err, ErrSessionExpired) {
		t.Errorf("重放的回调应返回 ErrSessionExpired, 实际 %v", err)
	}
}

// ==================== Token 刷新 ====================

func TestRefreshExpiringCredentials_HorizonSelection(t *testing.T) {
	db := setupAuthTestDB(t)
	srv := newTokenServer(t, http.StatusOK, "refreshed-access", "refreshed-refresh", 43200)
	defer srv.Close()

	svc, credRepo := newAuthService(db, srv.URL)
	ctx := context.Background()
	now := time.Now()

	// 30 分钟后过期：在一小时窗口内，应被刷新
	db.Create(&model.Credential{
		OwnerID: 1, AccessToken: "old-1", RefreshToken: "rt-1",
		TokenExpiresAt: now.Add(30 * time.Minute), TokenStatus: model.TokenStatusValid,
	})
	// 5 小时后过期：窗口外，不动
	db.Create(&model.Credential{
		OwnerID: 2, AccessToken: "old-2", RefreshToken: "rt-2",
		TokenExpiresAt: now.Add(5 * time.Hour), TokenStatus: model.TokenStatusValid,
	})
	// 已过期但没有 refresh token：刷不了，直接跳过
	db.Create(&model.Credential{
		OwnerID: 3, AccessToken: "old-3", RefreshToken: "",
		TokenExpiresAt: now.Add(-time.Hour), TokenStatus: model.TokenStatusExpired,
	})

	refreshed, failed := svc.RefreshExpiringCredentials(ctx, now, time.Hour)
	if refreshed != 1 || failed != 0 {
		t.Fatalf("期望刷新 1 条失败 0 条, 实际 refreshed=%d failed=%d", refreshed, failed)
	}

	// Owner 1 拿到了新 token，过期时间基于传入的 now 计算
	cred1, _ := credRepo.GetByOwnerID(ctx, 1)
	if cred1.AccessToken != "refreshed-access" {
		t.Errorf("Owner 1 应拿到新 token, 实际 %s", cred1.AccessToken)
	}
	wantExpiry := now.Add(43200 * time.Second)
	if diff := cred1.TokenExpiresAt.Sub(wantExpiry); diff < -time.Second || diff > time.Second {
		t.Errorf("过期时间应为 now+43200s, 偏差 %v", diff)
	}

	// Owner 2 原样未动
	cred2, _ := credRepo.GetByOwnerID(ctx, 2)
	if cred2.AccessToken != "old-2" {
		t.Errorf("Owner 2 不在窗口内不应被刷新, 实际 %s", cred2.AccessToken)
	}
}

func TestRefreshCredential_MarkInvalidOnRejection(t *testing.T) {
	db := setupAuthTestDB(t)
	srv := newTokenServer(t, http.StatusUnauthorized, "", "", 0)
	defer srv.Close()

	svc, credRepo := newAuthService(db, srv.URL)
	ctx := context.Background()
	now := time.Now()

	db.Create(&model.Credential{
		OwnerID: 7, AccessToken: "old", RefreshToken: "revoked-rt",
		TokenExpiresAt: now.Add(10 * time.Minute), TokenStatus: model.TokenStatusValid,
	})

	refreshed, failed := svc.RefreshExpiringCredentials(ctx, now, time.Hour)
	if refreshed != 0 || failed != 1 {
		t.Fatalf("期望刷新 0 条失败 1 条, 实际 refreshed=%d failed=%d", refreshed, failed)
	}

	// 平台明确拒绝后凭证被标记失效，引导用户重新授权
	cred, _ := credRepo.GetByOwnerID(ctx, 7)
	if cred.TokenStatus != model.TokenStatusInvalid {
		t.Errorf("状态应为 auth_invalid, 实际 %s", cred.TokenStatus)
	}
}

func TestRefreshOwnerToken_NoCredential(t *testing.T) {
	db := setupAuthTestDB(t)
	svc, _ := newAuthService(db, "")

	err := svc.RefreshOwnerToken(context.Background(), 999)
	if !errors.Is(err, ErrCredentialMissing) {
		t.Errorf("无凭证账号应返回 ErrCredentialMissing, 实际 %v", err)
	}
}
