package echoServer

import (
	"github.com/labstack/echo/v4"

	"librental/app/echoServer/controller/auth"
	"librental/app/echoServer/controller/book"
	"librental/app/echoServer/controller/borrowing"
	"librental/app/echoServer/controller/payment"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Borrowing *borrowing.Controller
	Payment   *payment.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.GET("/books", c.Book.List)
	pub.GET("/books/:id", c.Book.Detail)
	pub.POST("/users/register", c.Auth.Register, RateLimit(5, 10))
	pub.POST("/token", c.Auth.Token, RateLimit(5, 10))
	pub.POST("/token/refresh", c.Auth.Refresh)

	// Authenticated
	authed := e.Group("/v1", JWTAuth(c.JWTSecret))

	// Catalog mutations (staff checked in the controller)
	authed.POST("/books", c.Book.Create)
	authed.PATCH("/books/:id", c.Book.Update)
	authed.DELETE("/books/:id", c.Book.Delete)

	// Borrowings
	authed.GET("/borrowings", c.Borrowing.List)
	authed.GET("/borrowings/:id", c.Borrowing.Detail)
	authed.POST("/borrowings", c.Borrowing.Create)
	authed.POST("/borrowings/:id/return", c.Borrowing.Return)

	// Payments
	authed.GET("/payments", c.Payment.List)
	authed.GET("/payments/:id", c.Payment.Detail)

	// Self profile
	authed.GET("/users/me", c.Auth.Me)
	authed.PATCH("/users/me", c.Auth.UpdateMe)
}
