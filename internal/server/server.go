package server

import (
	"context"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"ecomart/internal/handler"
	"ecomart/internal/middleware"
)

// ルーティングに必要なhandler一式
type Handlers struct {
	Auth     *handler.AuthHandler
	Product  *handler.ProductHandler
	Store    *handler.StoreHandler
	Cart     *handler.CartHandler
	Order    *handler.OrderHandler
	Delivery *handler.DeliveryHandler
	Voucher  *handler.VoucherHandler
	Catalog  *handler.CatalogHandler
}

type Server struct {
	echo *echo.Echo
}

// New はミドルウェアと全ルートを組み立てる。
func New(logger zerolog.Logger, authMW echo.MiddlewareFunc, h Handlers) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))

	adminMW := middleware.AdminRoleGuard()

	h.Auth.RegisterRoutes(e, authMW)
	h.Product.RegisterRoutes(e, authMW, adminMW)
	h.Store.RegisterRoutes(e, authMW)
	h.Cart.RegisterRoutes(e, authMW)
	h.Order.RegisterRoutes(e, authMW)
	h.Delivery.RegisterRoutes(e, authMW)
	h.Voucher.RegisterRoutes(e, authMW, adminMW)
	h.Catalog.RegisterRoutes(e, authMW, adminMW)

	return &Server{echo: e}
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
