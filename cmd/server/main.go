package main

import (
	"github.com/blues/des/internal/config"
	"github.com/blues/des/internal/escrow"
	"github.com/blues/des/internal/handler"
	"github.com/blues/des/internal/ledger"
	"github.com/blues/des/internal/logger"
	"github.com/blues/des/internal/logic"
	"github.com/blues/des/internal/repository"
	"github.com/blues/des/internal/router"
	"github.com/blues/des/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	setupLogger(cfg)
	defer logger.Sync()

	// 初始化数据库
	db, err := repository.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	requests := repository.NewRequestRepository(db)
	wallets := repository.NewWalletRepository(db)

	// 账本网关：每个逻辑操作独立建连
	dialer := ledger.NewWsDialer(cfg.Ledger.WsURL, cfg.Ledger.RequestTimeout())
	faucet := ledger.NewFaucetClient(cfg.Ledger.FaucetURL, cfg.Ledger.RequestTimeout())

	// 托管对账引擎
	creator := escrow.NewCreator(requests, dialer, cfg.Task)
	finisher := escrow.NewFinisher(requests, wallets, dialer, cfg.Task)

	// 业务逻辑
	donationLogic := logic.NewDonationLogic(requests, wallets, dialer, creator)
	walletLogic := logic.NewWalletLogic(wallets, dialer, faucet)
	requestLogic := logic.NewRequestLogic(requests, faucet)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(router.Handlers{
		Donation: handler.NewDonationHandler(donationLogic),
		Sweep:    handler.NewSweepHandler(creator, finisher),
		Wallet:   handler.NewWalletHandler(walletLogic),
		Request:  handler.NewRequestHandler(requestLogic),
	})

	// 启动定时任务
	manager := task.Start(creator, finisher, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

// setupLogger 按配置初始化默认日志器
func setupLogger(cfg *config.Config) {
	level := logger.ParseLogLevel(cfg.Log.Level)

	if cfg.Log.Output == "file" && cfg.Log.File != "" {
		l, err := logger.NewWithFileRotation(level, cfg.Log.File)
		if err != nil {
			logger.Fatal("Failed to initialize file logger: %v", err)
		}
		logger.SetDefaultLogger(l)
		return
	}

	l, err := logger.New(level)
	if err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	logger.SetDefaultLogger(l)
}
