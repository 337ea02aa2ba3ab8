package web

import (
	"fmt"
	"net/http"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/service"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	router   *gin.Engine
	catalog  *service.CatalogService
	cart     *service.CartService
	orders   *service.OrderService
	reviews  *service.ReviewService
	accounts *service.AccountService
}

func NewServer(cfg *config.Config, logger *zap.Logger, catalog *service.CatalogService, cart *service.CartService, orders *service.OrderService, reviews *service.ReviewService, accounts *service.AccountService) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	return &Server{
		config:   cfg,
		logger:   logger,
		router:   router,
		catalog:  catalog,
		cart:     cart,
		orders:   orders,
		reviews:  reviews,
		accounts: accounts,
	}
}

func (s *Server) SetupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Account endpoints
	s.router.POST("/signup", s.signup)
	s.router.POST("/login", s.login)
	s.router.POST("/logout", s.logout)

	// Public catalog
	v1 := s.router.Group("/api/v1")
	{
		items := v1.Group("/items")
		{
			items.GET("", s.listItems)
			items.GET("/:id", s.getItem)
			items.GET("/:id/reviews", s.itemReviews)
		}
	}

	// Everything below needs a logged-in user
	authed := s.router.Group("/api/v1")
	authed.Use(s.requireUser())
	{
		cart := authed.Group("/cart")
		{
			cart.GET("", s.viewCart)
			cart.POST("/items/:id", s.addCartItem)
			cart.DELETE("/items/:id", s.removeCartItem)
		}

		authed.POST("/checkout", s.checkout)
		authed.GET("/orders", s.listOrders)
		authed.GET("/profile", s.getProfile)
		authed.GET("/profile/activity", s.profileActivity)
		authed.POST("/items/:id/reviews", s.submitReview)
	}

	// Swagger
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.Info("Storefront starting", zap.String("address", addr))
	return s.router.Run(addr)
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
