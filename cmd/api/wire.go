//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 运行 `wire gen ./cmd/api` 生成wire_gen.go,与main.go的手动组装等价
package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"gorm.io/gorm"

	appbooking "github.com/linhai/battswap/internal/application/booking"
	appswap "github.com/linhai/battswap/internal/application/swap"
	"github.com/linhai/battswap/internal/infrastructure/config"
	"github.com/linhai/battswap/internal/infrastructure/persistence/mysql"
	"github.com/linhai/battswap/internal/infrastructure/persistence/redis"
	"github.com/linhai/battswap/internal/interface/http/handler"
	"github.com/linhai/battswap/internal/interface/http/middleware"
	"github.com/linhai/battswap/pkg/jwt"
	"github.com/linhai/battswap/pkg/mq"
)

// infrastructureSet 基础设施层:配置、数据库、Redis
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redis.NewClient,
)

// repositorySet 仓储层与事务管理器
// 用例依赖的是应用层里的TxManager接口,这里把*mysql.TxManager绑定上去
var repositorySet = wire.NewSet(
	mysql.NewBatteryRepository,
	mysql.NewStationRepository,
	mysql.NewVehicleRepository,
	mysql.NewSwapRecordRepository,
	mysql.NewSubscriptionRepository,
	mysql.NewBookingRepository,
	provideTxManager,
	wire.Bind(new(appswap.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(appbooking.TxManager), new(*mysql.TxManager)),
)

// applicationSet 应用层用例
var applicationSet = wire.NewSet(
	appswap.NewEligibilitySelector,
	appswap.NewUsageAccountant,
	appswap.NewPreviewEligibilityUseCase,
	appswap.NewValidateExchangeUseCase,
	appswap.NewExecuteExchangeUseCase,
	appswap.NewExecuteBookingExchangeUseCase,
	appswap.NewExecuteFirstPickupUseCase,
	appswap.NewListRecordsUseCase,
	appbooking.NewCancelBookingUseCase,
)

// middlewareSet 认证中间件及其依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	redis.NewTokenStore,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器
var handlerSet = wire.NewSet(
	handler.NewSwapHandler,
	handler.NewBookingHandler,
)

// provideTxManager 事务管理器需要从配置提取行锁等待上限
func provideTxManager(db *gorm.DB, cfg *config.Config) *mysql.TxManager {
	return mysql.NewTxManager(db, cfg.Database.TxTimeout)
}

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// providePublisher 事件发布器,MQ关闭时返回nil(用例侧对nil发布器空操作)
func providePublisher(cfg *config.Config) (*mq.Publisher, error) {
	if !cfg.MQ.Enabled {
		return nil, nil
	}
	return mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
}

// provideGinEngine 创建Gin引擎并注册路由
func provideGinEngine(
	cfg *config.Config,
	swapHandler *handler.SwapHandler,
	bookingHandler *handler.BookingHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.Metrics())

	// 含健康检查、/metrics与Swagger,与main.go共用同一份注册逻辑
	registerRoutes(r, swapHandler, bookingHandler, authMiddleware)
	return r
}

// InitializeApp 构建完整的应用
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		applicationSet,
		middlewareSet,
		handlerSet,
		providePublisher,
		provideGinEngine,
	)
	return nil, nil
}
