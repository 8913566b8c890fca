package task

import (
	"context"
	"log"
	"time"

	"allegro_dev_v1_202608/internal/repository"
	"allegro_dev_v1_202608/internal/service"

	"github.com/robfig/cron/v3"
)

// OrderSyncTask 订单定时摄取任务
// 逐账号串行拉取，单账号失败只记日志不影响其他账号
type OrderSyncTask struct {
	credRepo     repository.CredentialRepository
	orderService *service.OrderService
	cron         *cron.Cron
}

// NewOrderSyncTask 创建订单摄取任务
func NewOrderSyncTask(credRepo repository.CredentialRepository, orderService *service.OrderService) *OrderSyncTask {
	return &OrderSyncTask{
		credRepo:     credRepo,
		orderService: orderService,
		cron:         cron.New(cron.WithSeconds()),
	}
}

// Start 启动定时任务 (每 15 分钟一轮)
func (t *OrderSyncTask) Start() {
	_, err := t.cron.AddFunc("0 0/15 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		t.syncJob(ctx)
	})

	if err != nil {
		log.Fatalf("无法启动订单同步任务: %v", err)
	}

	t.cron.Start()
	log.Println("订单同步任务已启动 (每15分钟拉取一次)")
}

// Stop 停止定时任务
func (t *OrderSyncTask) Stop() {
	t.cron.Stop()
	log.Println("[Task] 订单同步任务已停止")
}

// syncJob 单轮同步：扫出所有有效凭证，逐个账号拉单
func (t *OrderSyncTask) syncJob(ctx context.Context) {
	creds, err := t.credRepo.FindActive(ctx)
	if err != nil {
		log.Printf("[Cron] 有效凭证查询失败: %v", err)
		return
	}

	log.Printf("[Cron] 开始处理 %d 个账号的订单同步", len(creds))

	for _, cred := range creds {
		select {
		case <-ctx.Done():
			log.Println("[Cron] 订单同步任务超时停止")
			return
		default:
		}

		result, err := t.orderService.SyncOrders(ctx, cred.OwnerID)
		if err != nil {
			log.Printf("[Cron] 账号 [%d] 订单同步失败: %v", cred.OwnerID, err)
			continue
		}
		if len(result.FailedCheckoutFormIDs) > 0 {
			log.Printf("[Cron] 账号 [%d] 本轮有 %d 个订单落库失败", cred.OwnerID, len(result.FailedCheckoutFormIDs))
		}
	}

	log.Println("[Cron] 本轮订单同步任务完成")
}
