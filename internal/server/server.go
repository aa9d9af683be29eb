package server

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"storefront-gateway/internal/handler"
)

type Server struct {
	echo            *echo.Echo
	authHandler     *handler.AuthHandler
	cartHandler     *handler.CartHandler
	couponHandler   *handler.CouponHandler
	checkoutHandler *handler.CheckoutHandler
	catalogHandler  *handler.CatalogHandler
}

func NewServer(
	authHandler *handler.AuthHandler,
	cartHandler *handler.CartHandler,
	couponHandler *handler.CouponHandler,
	checkoutHandler *handler.CheckoutHandler,
	catalogHandler *handler.CatalogHandler,
) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:            e,
		authHandler:     authHandler,
		cartHandler:     cartHandler,
		couponHandler:   couponHandler,
		checkoutHandler: checkoutHandler,
		catalogHandler:  catalogHandler,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- auth --------
	auth := api.Group("/auth")
	auth.POST("/login", s.authHandler.Login)
	auth.POST("/register", s.authHandler.Register)
	auth.POST("/refresh", s.authHandler.Refresh)
	auth.POST("/logout", s.authHandler.Logout)
	auth.GET("/me", s.authHandler.Me)

	// -------- catalog --------
	api.GET("/products", s.catalogHandler.List)
	api.GET("/products/:productId", s.catalogHandler.Get)

	// -------- cart --------
	api.GET("/cart", s.cartHandler.Get)
	api.POST("/cart/items", s.cartHandler.AddItem)
	api.PUT("/cart/items/:productId", s.cartHandler.UpdateItem)
	api.DELETE("/cart/items/:productId", s.cartHandler.RemoveItem)

	// -------- coupons --------
	api.POST("/coupons/verify", s.couponHandler.Verify)

	// -------- checkout --------
	api.GET("/checkout/address", s.checkoutHandler.GetAddress)
	api.PUT("/checkout/address", s.checkoutHandler.PutAddress)
	api.GET("/checkout/summary", s.checkoutHandler.Summary)
	api.POST("/checkout", s.checkoutHandler.Submit)
	api.GET("/orders", s.checkoutHandler.Orders)

	// -------- payment gateway return callback --------
	s.echo.GET("/checkout", s.checkoutHandler.PaymentReturn)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
