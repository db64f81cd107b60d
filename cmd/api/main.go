package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appbooking "github.com/linhai/battswap/internal/application/booking"
	appswap "github.com/linhai/battswap/internal/application/swap"
	"github.com/linhai/battswap/internal/infrastructure/config"
	"github.com/linhai/battswap/internal/infrastructure/persistence/mysql"
	"github.com/linhai/battswap/internal/infrastructure/persistence/redis"
	"github.com/linhai/battswap/internal/interface/http/handler"
	"github.com/linhai/battswap/internal/interface/http/middleware"
	"github.com/linhai/battswap/pkg/jwt"
	"github.com/linhai/battswap/pkg/metrics"
	"github.com/linhai/battswap/pkg/mq"
	"github.com/linhai/battswap/pkg/response"
)

// main 主程序入口
// 手动依赖注入:Repository → UseCase → Handler,wire.go有等价的生成版本
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 3. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 4. 初始化指标
	metrics.InitMetrics()

	// 5. 初始化消息队列(可关闭,关闭时事件不外发)
	var publisher *mq.Publisher
	if cfg.MQ.Enabled {
		publisher, err = mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Fatalf("初始化消息队列失败: %v", err)
		}
		defer publisher.Close()
	}

	// 6. 依赖注入(手动组装)

	// 基础设施层
	batteryRepo := mysql.NewBatteryRepository(db)
	stationRepo := mysql.NewStationRepository(db)
	vehicleRepo := mysql.NewVehicleRepository(db)
	swapRepo := mysql.NewSwapRecordRepository(db)
	subscriptionRepo := mysql.NewSubscriptionRepository(db)
	bookingRepo := mysql.NewBookingRepository(db)
	txManager := mysql.NewTxManager(db, cfg.Database.TxTimeout)
	tokenStore := redis.NewTokenStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 应用层
	selector := appswap.NewEligibilitySelector(batteryRepo)
	accountant := appswap.NewUsageAccountant(swapRepo, subscriptionRepo)
	previewUseCase := appswap.NewPreviewEligibilityUseCase(stationRepo, vehicleRepo, selector)
	validateUseCase := appswap.NewValidateExchangeUseCase(batteryRepo, stationRepo, vehicleRepo)
	exchangeUseCase := appswap.NewExecuteExchangeUseCase(
		vehicleRepo, batteryRepo, stationRepo, swapRepo, selector, accountant, txManager, publisher)
	bookingExchangeUseCase := appswap.NewExecuteBookingExchangeUseCase(
		vehicleRepo, bookingRepo, batteryRepo, stationRepo, swapRepo, accountant, txManager, publisher)
	firstPickupUseCase := appswap.NewExecuteFirstPickupUseCase(
		vehicleRepo, batteryRepo, stationRepo, swapRepo, txManager, publisher)
	listRecordsUseCase := appswap.NewListRecordsUseCase(swapRepo, vehicleRepo)
	cancelBookingUseCase := appbooking.NewCancelBookingUseCase(bookingRepo, stationRepo, txManager)

	// 接口层
	swapHandler := handler.NewSwapHandler(
		previewUseCase, validateUseCase, exchangeUseCase,
		bookingExchangeUseCase, firstPickupUseCase, listRecordsUseCase)
	bookingHandler := handler.NewBookingHandler(cancelBookingUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, tokenStore)

	// 7. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())

	// 8. 注册路由
	registerRoutes(r, swapHandler, bookingHandler, authMiddleware)

	// 9. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   指标采集: http://localhost%s/metrics\n", addr)
	fmt.Printf("   API文档: http://localhost%s/swagger/index.html\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}

// registerRoutes 注册路由
func registerRoutes(r *gin.Engine, swapHandler *handler.SwapHandler, bookingHandler *handler.BookingHandler, authMiddleware *middleware.AuthMiddleware) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API路由组,换电与预约接口全部需要登录
	v1 := r.Group("/api/v1")
	v1.Use(authMiddleware.RequireAuth())
	{
		// 站点模块
		stations := v1.Group("/stations")
		{
			stations.GET("/:id/eligibility", swapHandler.PreviewEligibility)
		}

		// 换电模块
		swaps := v1.Group("/swaps")
		{
			swaps.POST("/validate", swapHandler.ValidateExchange)
			swaps.POST("/exchange", swapHandler.ExecuteExchange)
			swaps.POST("/first-pickup", swapHandler.ExecuteFirstPickup)
			swaps.GET("/records", swapHandler.ListRecords)
		}

		// 预约模块
		bookings := v1.Group("/bookings")
		{
			bookings.POST("/:id/exchange", swapHandler.ExecuteBookingExchange)
			bookings.POST("/:id/cancel", bookingHandler.CancelBooking)
		}
	}
}
