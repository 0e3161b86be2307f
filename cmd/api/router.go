package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"qrlink-backend/internal/shared/middleware"
	"qrlink-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.ClientIPMiddleware(),
		middleware.Logger(),
		middleware.CORS(c.Config.App.CORSOrigins),
	)

	// Public redirect, đây là URL được encode vào QR
	router.GET("/r/:slug", c.RedirectHandler.Redirect)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		auth := middleware.AuthMiddleware(c.JWTManager)
		setupLinkRoutes(v1, c, auth)
		setupQRRoutes(v1, c, auth)
		setupLogoRoutes(v1, c, auth)
	}

	return router
}

// ========================================
// LINK ROUTES
// ========================================
func setupLinkRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	links := v1.Group("/links")
	links.Use(auth)
	{
		links.POST("", c.LinkHandler.Create)
		links.GET("", c.LinkHandler.List)
		// export phải đăng ký trước :id
		links.GET("/export", c.LinkHandler.Export)
		links.GET("/:id", c.LinkHandler.Get)
		links.PATCH("/:id", c.LinkHandler.UpdateDestination)
		links.DELETE("/:id", c.LinkHandler.Delete)
		links.PUT("/:id/style", c.LinkHandler.SaveStyle)
		links.GET("/:id/qr", c.LinkHandler.RenderQR)
	}
}

// ========================================
// QR ROUTES
// ========================================
func setupQRRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	qr := v1.Group("/qr")
	qr.Use(auth)
	{
		qr.POST("/preview", c.QRHandler.Preview)
	}
}

// ========================================
// LOGO ROUTES
// ========================================
func setupLogoRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	logos := v1.Group("/logos")
	logos.Use(auth)
	{
		logos.POST("", c.LogoHandler.Upload)
		logos.DELETE("", c.LogoHandler.Delete)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		storeStatus := "ok"
		if err := appCtx.PingStore(ctx); err != nil {
			storeStatus = fmt.Sprintf("error: %v", err)
			health["status"] = "degraded"
		}

		// Redis chỉ là cache, lỗi không làm service unavailable
		redisStatus := "disabled"
		if appCtx.Cache != nil {
			redisStatus = "ok"
			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"store": storeStatus,
			"redis": redisStatus,
		}

		statusCode := http.StatusOK
		if storeStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
