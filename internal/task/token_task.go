package task

import (
	"context"
	"log"
	"time"

	"allegro_dev_v1_202608/internal/service"

	"github.com/robfig/cron/v3"
)

// TokenTask Token 保活任务
// Allegro 的 access token 有效期约 12 小时，这里每 40 分钟扫一次
// 一小时内过期的凭证，留足重试窗口
type TokenTask struct {
	authService *service.AuthService
	cron        *cron.Cron

	horizon time.Duration // 提前刷新窗口
}

// NewTokenTask 创建 Token 保活任务
func NewTokenTask(authService *service.AuthService) *TokenTask {
	return &TokenTask{
		authService: authService,
		cron:        cron.New(cron.WithSeconds()), // 支持秒级控制
		horizon:     time.Hour,
	}
}

// Start 启动定时任务
func (t *TokenTask) Start() {
	// 首次执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		log.Println("[Task] 服务启动，正在执行首次 Token 检查...")
		t.refreshJob(ctx)
	}()

	// 定时策略
	_, err := t.cron.AddFunc("0 0/40 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		t.refreshJob(ctx)
	})

	if err != nil {
		log.Fatalf("无法启动 Token 定时任务: %v", err)
	}

	t.cron.Start()
	log.Println("Token 保活任务已启动 (每40分钟检查一次)")
}

// Stop 停止定时任务
func (t *TokenTask) Stop() {
	t.cron.Stop()
	log.Println("[Task] Token 保活任务已停止")
}

// refreshJob 单轮刷新
func (t *TokenTask) refreshJob(ctx context.Context) {
	refreshed, failed := t.authService.RefreshExpiringCredentials(ctx, time.Now(), t.horizon)
	log.Printf("[Cron] 本轮 Token 刷新完成：成功 %d，失败 %d", refreshed, failed)
}
