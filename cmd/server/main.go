package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Makra-ca/frum-toronto-sub001/internal/admin"
	"github.com/Makra-ca/frum-toronto-sub001/internal/business"
	"github.com/Makra-ca/frum-toronto-sub001/internal/config"
	"github.com/Makra-ca/frum-toronto-sub001/internal/database"
	"github.com/Makra-ca/frum-toronto-sub001/internal/middleware"
	"github.com/Makra-ca/frum-toronto-sub001/internal/paypal"
	"github.com/Makra-ca/frum-toronto-sub001/internal/plan"
	"github.com/Makra-ca/frum-toronto-sub001/internal/subscription"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadConfig()
	if cfg.DBUrl == "" {
		panic("DATABASE_URL manquant")
	}

	database.Connect(cfg.DBUrl)

	paypalHandler := paypal.NewHandler(cfg)

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Routes publiques
	api.GET("/plans", plan.GetPlans)
	api.POST("/paypal/webhook", paypalHandler.HandleWebhook)

	api.Use(middleware.AuthMiddleware())
	api.POST("/businesses", business.CreateBusiness)
	api.GET("/businesses/:business_id/subscription", subscription.GetBusinessSubscription)
	api.POST("/paypal/unsubscribe/:business_id", paypalHandler.Unsubscribe)

	// Routes d'administration
	adminRoutes := api.Group("/admin")
	adminRoutes.Use(middleware.AdminOnlyMiddleware())
	adminRoutes.GET("/stats", admin.GetDashboardStats)
	adminRoutes.GET("/businesses", admin.GetBusinesses)
	adminRoutes.PUT("/businesses/:business_id/approve", admin.ApproveBusiness)
	adminRoutes.PUT("/businesses/:business_id/reject", admin.RejectBusiness)
	adminRoutes.GET("/subscriptions", admin.GetSubscriptions)
	adminRoutes.POST("/plans", plan.CreatePlan)
	adminRoutes.PUT("/plans/:plan_id", plan.UpdatePlan)

	err := r.Run(":8080")
	if err != nil {
		return
	}
}
