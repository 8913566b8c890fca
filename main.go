package main

import (
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// 1. 定义与数据库表对应的结构体
type Credential struct {
	ID          uint
	OwnerID     int64
	AccessToken string
	TokenStatus string
}

func main() {
	fmt.Println(">>> 开始执行全链路测试...")

	// ------------------------------------------------
	// 2. 连接数据库
	// ------------------------------------------------
	dsn := "host=localhost user=postgres password=postgres dbname=allegro_erp port=5432 sslmode=disable"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ 数据库连接失败: %v", err)
	}
	fmt.Println("✅ 数据库连接成功！")

	// ------------------------------------------------
	// 3. 从数据库读取一条可用凭证
	// ------------------------------------------------
	var cred Credential
	result := db.Where("token_status = ?", "valid").First(&cred)
	if result.Error != nil {
		log.Fatalf("❌ 未找到可用凭证，请先完成一次授权流程: %v", result.Error)
	}
	fmt.Printf("✅ 读取凭证成功: [OwnerID: %d] [Token长度: %d]\n",
		cred.OwnerID, len(cred.AccessToken))

	// ------------------------------------------------
	// 4. 发起 Allegro API 请求 (/me)
	// ------------------------------------------------
	client := resty.New()

	// 设置超时和重试，防止网络波动
	client.SetTimeout(10 * time.Second)
	client.SetRetryCount(3)

	// 关键：Allegro 要求 Accept 带厂商媒体类型
	client.SetHeader("Accept", "application/vnd.allegro.public.v1+json")
	client.SetAuthToken(cred.AccessToken)

	fmt.Println(">>> 正在向 Allegro 沙箱发起 /me 请求...")

	resp, err := client.R().Get("https://api.allegro.pl.allegrosandbox.pl/me")

	// ------------------------------------------------
	// 5. 结果验证
	// ------------------------------------------------
	if err != nil {
		log.Fatalf("❌ 请求失败 (可能是网络不通): %v", err)
	}

	if resp.StatusCode() == 200 {
		fmt.Println("🎉🎉🎉 测试成功！全链路已打通！")
		fmt.Printf("Allegro 响应: %s\n", resp.String())
	} else {
		fmt.Printf("⚠️ 连接通了，但 Allegro 拒绝了请求 (状态码 %d)\n", resp.StatusCode())
		fmt.Printf("错误信息: %s\n", resp.String())
		fmt.Println("提示: 如果是 401，通常是 token 过期了，跑一次刷新再试。")
	}
}
