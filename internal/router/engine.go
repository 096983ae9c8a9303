package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

type EngineConfig struct {
	Production  bool
	CORSOrigins []string
}

// NewEngine builds the gin engine with middleware and every route mounted
func NewEngine(cfg EngineConfig, h *Handler, auth *Authenticator, store sessions.Store, logger *zap.Logger) *gin.Engine {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", SessionHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Total-Count", "X-Cache", SessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(SessionMiddleware(store, logger))
	router.Use(RequestLogger(logger))
	router.Use(AuthMiddleware(auth))

	InitializeRoutes(router, h)
	return router
}

func InitializeRoutes(router *gin.Engine, h *Handler) {
	api := router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		products := api.Group("/products")
		{
			products.GET("", h.ListProducts)
			products.GET("/:code", h.GetProduct)
		}

		cart := api.Group("/cart")
		{
			cart.GET("", h.GetCart)
			cart.DELETE("", h.ClearCart)
			cart.POST("/add", h.AddToCart)
			cart.POST("/update", h.UpdateCart)
			cart.POST("/remove", h.RemoveFromCart)
			cart.POST("/customer", h.SetCustomerInfo)
			cart.POST("/checkout", h.Checkout)
			cart.GET("/last-order", h.LastOrder)
		}

		reservations := api.Group("/reservations")
		reservations.Use(RequireAuth())
		{
			reservations.POST("", h.CreateReservation)
			reservations.GET("/me", h.MyReservations)
			reservations.GET("/me/active", h.MyActiveReservations)
			reservations.DELETE("/clear", h.ClearCompletedReservations)
			reservations.DELETE("/:id", h.WithdrawReservation)
		}

		admin := api.Group("/admin")
		admin.Use(RequireAdmin())
		{
			admin.GET("/reservations", h.ListReservations)
			admin.GET("/reservations/summary", h.ReservationSummary)
			admin.GET("/reservations/:id", h.GetReservation)
			admin.PUT("/reservations/:id/status", h.UpdateReservationStatus)
			admin.PUT("/products/:code", h.UpsertProduct)
			admin.DELETE("/products/:code", h.DeleteProduct)
			admin.GET("/orders/:orderNum", h.GetOrder)
		}
	}
}
