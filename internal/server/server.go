package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"golang.org/x/time/rate"

	"furnit-storefront/internal/config"
	"furnit-storefront/internal/handler"
	authmw "furnit-storefront/internal/middleware"
	"furnit-storefront/internal/service"
)

const bodyLimit = "1M"

type Services struct {
	Mailer   service.MailerService
	Catalog  service.CatalogService
	Cart     service.CartService
	Checkout service.CheckoutService
	Order    service.OrderService
}

type Server struct {
	echo            *echo.Echo
	cfg             *config.Config
	mailerHandler   *handler.MailerHandler
	catalogHandler  *handler.CatalogHandler
	cartHandler     *handler.CartHandler
	checkoutHandler *handler.CheckoutHandler
	orderHandler    *handler.OrderHandler
}

func NewServer(cfg *config.Config, services Services, logger *log.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger = logger
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(logger)

	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, authmw.UserIDHeader},
	}))
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: cfg.HTTP.RequestTimeout,
	}))

	s := &Server{
		echo:            e,
		cfg:             cfg,
		mailerHandler:   handler.NewMailerHandler(services.Mailer),
		catalogHandler:  handler.NewCatalogHandler(services.Catalog),
		cartHandler:     handler.NewCartHandler(services.Cart),
		checkoutHandler: handler.NewCheckoutHandler(services.Checkout),
		orderHandler:    handler.NewOrderHandler(services.Order),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	health := func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "message": "Email server is running"})
	}
	s.echo.GET("/health", health)

	api := s.echo.Group("/api")
	api.GET("/health", health)

	// password reset endpoints are throttled per client ip
	throttle := middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(s.cfg.Reset.RateLimit),
			Burst:     int(s.cfg.Reset.RateLimit) + 1,
			ExpiresIn: 3 * time.Minute,
		},
	))

	// -------- mailer --------
	email := api.Group("/email")
	email.POST("/order-confirmation", s.mailerHandler.SendOrderConfirmation)
	email.POST("/password-reset", s.mailerHandler.RequestPasswordReset, throttle)
	email.POST("/welcome", s.mailerHandler.SendWelcome)
	email.POST("/password-changed", s.mailerHandler.SendPasswordChanged)

	auth := api.Group("/auth", throttle)
	auth.POST("/verify-reset-token", s.mailerHandler.VerifyResetToken)
	auth.POST("/reset-password", s.mailerHandler.ResetPassword)
	auth.POST("/consume-assertion", s.mailerHandler.ConsumeAssertion)

	// -------- storefront --------
	api.GET("/products", s.catalogHandler.ListProducts)
	api.GET("/products/:productID", s.catalogHandler.GetProduct)
	api.GET("/checkout/districts", s.checkoutHandler.Districts)

	requireUser := authmw.RequireUser()

	cart := api.Group("/cart", requireUser)
	cart.GET("", s.cartHandler.GetCart)
	cart.DELETE("", s.cartHandler.ClearCart)
	cart.POST("/items", s.cartHandler.AddItem)
	cart.PATCH("/items/:productID", s.cartHandler.UpdateQuantity)
	cart.DELETE("/items/:productID", s.cartHandler.RemoveItem)

	sessions := api.Group("/checkout/sessions", requireUser)
	sessions.POST("", s.checkoutHandler.StartSession)
	sessions.GET("/:sessionID", s.checkoutHandler.GetSession)
	sessions.PATCH("/:sessionID", s.checkoutHandler.UpdateSession)
	sessions.POST("/:sessionID/check", s.checkoutHandler.CheckField)
	sessions.POST("/:sessionID/advance", s.checkoutHandler.Advance)
	sessions.POST("/:sessionID/retreat", s.checkoutHandler.Retreat)
	sessions.POST("/:sessionID/submit", s.checkoutHandler.Submit)

	orders := api.Group("/orders", requireUser)
	orders.GET("", s.orderHandler.ListOrders)
	orders.GET("/:orderID", s.orderHandler.GetOrder)
}

func (s *Server) Start() error {
	return s.echo.Start(s.cfg.Addr())
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
