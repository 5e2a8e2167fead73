package router

import (
	"github.com/blues/des/internal/handler"
	"github.com/gin-gonic/gin"
)

// Handlers 路由依赖的处理器集合
type Handlers struct {
	Donation *handler.DonationHandler
	Sweep    *handler.SweepHandler
	Wallet   *handler.WalletHandler
	Request  *handler.RequestHandler
}

func Setup(h Handlers) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "donation-escrow-service",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 捐款
		v1.POST("/intake", h.Donation.Donate)

		// 手动触发扫描
		v1.GET("/sweep/create", h.Sweep.SweepCreate)
		v1.GET("/sweep/finish", h.Sweep.SweepFinish)

		// 钱包
		v1.POST("/wallet-create", h.Wallet.CreateWallet)
		v1.GET("/wallet-balance/:id", h.Wallet.GetBalance)

		// 捐助请求
		requests := v1.Group("/requests")
		{
			requests.POST("", h.Request.CreateRequest)
			requests.GET("/:id", h.Request.GetRequest)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
