package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"allegro_dev_v1_202608/internal/config"
	"allegro_dev_v1_202608/internal/controller"
	"allegro_dev_v1_202608/internal/middleware"
	"allegro_dev_v1_202608/internal/model"
	"allegro_dev_v1_202608/internal/repository"
	"allegro_dev_v1_202608/internal/router"
	"allegro_dev_v1_202608/internal/service"
	"allegro_dev_v1_202608/internal/task"
	"allegro_dev_v1_202608/pkg/allegro"
	"allegro_dev_v1_202608/pkg/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	if cfg.JWT.SecretKey != "" {
		jwtCfg := middleware.DefaultJWTConfig()
		jwtCfg.SecretKey = cfg.JWT.SecretKey
		middleware.SetJWTConfig(jwtCfg)
	}

	// 2. 初始化数据库
	db := initDatabase(cfg)

	// 3. 初始化依赖
	deps := initDependencies(cfg, db)

	// 4. 启动定时任务
	stopTasks := initTasks(cfg, deps)
	defer stopTasks()

	// 5. 初始化路由并启动服务
	gin.SetMode(ginMode(cfg))
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers.Auth, deps.Controllers.Order,
		deps.Controllers.Offer, deps.Controllers.Sale, deps.Controllers.User)

	startServer(cfg, r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Credential repository.CredentialRepository
	Client     repository.ClientRepository
	Order      repository.OrderRepository
	LineItem   repository.LineItemRepository
	User       repository.UserRepository
}

// Services 服务集合
type Services struct {
	Auth  *service.AuthService
	Order *service.OrderService
	Offer *service.OfferService
	Sale  *service.SaleService
	User  *service.UserService
}

// Controllers 控制器集合
type Controllers struct {
	Auth  *controller.AuthController
	Order *controller.OrderController
	Offer *controller.OfferController
	Sale  *controller.SaleController
	User  *controller.UserController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(
		cfg.Database.DSN(),
		// Manager
		&model.SysUser{},
		// Auth
		&model.Credential{},
		// Order
		&model.Client{}, &model.Order{}, &model.LineItem{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Credential: repository.NewCredentialRepository(db),
		Client:     repository.NewClientRepository(db),
		Order:      repository.NewOrderRepository(db),
		LineItem:   repository.NewLineItemRepository(db),
		User:       repository.NewUserRepository(db),
	}

	// -------- Allegro 网络出口 --------
	client := allegro.NewClient(allegro.Config{
		BaseURL:      cfg.Allegro.BaseURL,
		AuthURL:      cfg.Allegro.AuthURL,
		TokenURL:     cfg.Allegro.TokenURL,
		ClientID:     cfg.Allegro.ClientID,
		ClientSecret: cfg.Allegro.ClientSecret,
		RedirectURI:  cfg.Allegro.RedirectURI,
	})

	// -------- 业务服务 --------
	services := &Services{
		Auth:  service.NewAuthService(repos.Credential, client),
		Order: service.NewOrderService(repos.Credential, repos.Client, repos.Order, repos.LineItem, client),
		Offer: service.NewOfferService(repos.Credential, client),
		Sale:  service.NewSaleService(repos.Credential, client),
		User:  service.NewUserService(repos.User),
	}

	// -------- Controller 层 --------
	controllers := &Controllers{
		Auth:  controller.NewAuthController(services.Auth),
		Order: controller.NewOrderController(services.Order),
		Offer: controller.NewOfferController(services.Offer),
		Sale:  controller.NewSaleController(services.Sale),
		User:  controller.NewUserController(services.User),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务，返回统一的停止函数
func initTasks(cfg *config.Config, deps *Dependencies) func() {
	var stops []func()

	if cfg.Task.TokenEnabled {
		tokenTask := task.NewTokenTask(deps.Services.Auth)
		tokenTask.Start()
		stops = append(stops, tokenTask.Stop)
	}

	if cfg.Task.OrderEnabled {
		orderTask := task.NewOrderSyncTask(deps.Repos.Credential, deps.Services.Order)
		orderTask.Start()
		stops = append(stops, orderTask.Stop)
	}

	log.Println("定时任务已启动")
	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(cfg *config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

func ginMode(cfg *config.Config) string {
	if cfg.Server.Mode == "release" {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}
