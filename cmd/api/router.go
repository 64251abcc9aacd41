package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studentdeals-backend/internal/shared/middleware"
	"studentdeals-backend/internal/shared/response"
	"studentdeals-backend/pkg/container"
)

func setupRouter(engine *gin.Engine, c *container.Container) {
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger())
	engine.Use(middleware.CORS())

	v1 := engine.Group("/api/v1")

	v1.GET("/health", func(ctx *gin.Context) {
		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			response.ErrorResponse(ctx, http.StatusServiceUnavailable, "SYS_002", "Database unavailable")
			return
		}
		response.Success(ctx, http.StatusOK, gin.H{
			"status":  "ok",
			"version": c.Config.App.Version,
		})
	})

	// Public offer browsing.
	offers := v1.Group("/offers")
	{
		offers.GET("", c.OfferHandler.ListOffers)
		offers.GET("/:id", c.OfferHandler.GetOffer)
	}

	// Claim routes need a signed-in student.
	auth := v1.Group("")
	auth.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		auth.GET("/offers/:id/usage-stats", c.ClaimHandler.GetUsageStats)
		auth.GET("/offers/:id/claim-availability", c.ClaimHandler.GetClaimAvailability)
		auth.POST("/offers/:id/claim", c.ClaimHandler.ClaimCoupon)
		auth.GET("/coupons", c.ClaimHandler.MyCoupons)
	}

	// Merchant back office.
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminMiddleware())
	{
		admin.POST("/offers", c.AdminOfferHandler.CreateOffer)
		admin.PUT("/offers/:id", c.AdminOfferHandler.UpdateOffer)
		admin.PATCH("/offers/:id/status", c.AdminOfferHandler.UpdateOfferStatus)
		admin.GET("/offers", c.AdminOfferHandler.ListAllOffers)
		admin.GET("/offers/:id/usage", c.ClaimHandler.GetOfferUsage)
	}
}
