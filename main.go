// Package main library rental API.
//
// @title           Library Rental API
// @version         1.0
// @description     library rental service (books, borrowings, payments, users).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pressly/goose/v3"
	echoSwagger "github.com/swaggo/echo-swagger"

	"librental/app/echoServer"
	authctrl "librental/app/echoServer/controller/auth"
	bookctrl "librental/app/echoServer/controller/book"
	borrowctrl "librental/app/echoServer/controller/borrowing"
	paymentctrl "librental/app/echoServer/controller/payment"
	"librental/app/echoServer/validation"
	"librental/config"
	"librental/migrations"
	bookrepo "librental/repository/book"
	borrowrepo "librental/repository/borrowing"
	paymentrepo "librental/repository/payment"
	tokenrepo "librental/repository/token"
	userrepo "librental/repository/user"
	authsvc "librental/service/auth"
	booksvc "librental/service/book"
	borrowsvc "librental/service/borrowing"
	paymentsvc "librental/service/payment"
	"librental/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// migrations
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		log.Error("goose dialect", "err", err)
		os.Exit(1)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	// repos
	ur := userrepo.New(db)
	tr := tokenrepo.New(db)
	br := bookrepo.New(db)
	rr := borrowrepo.New(db)
	pr := paymentrepo.New(db)

	// services
	as := authsvc.New(ur, tr, cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	bs := booksvc.New(br)
	rs := borrowsvc.New(db, rr)
	ps := paymentsvc.New(pr)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	borrowC := &borrowctrl.Controller{Svc: rs, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: ps, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{"status": "ok"})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:      authC,
		Book:      bookC,
		Borrowing: borrowC,
		Payment:   paymentC,
		JWTSecret: cfg.JWTSecret,
	})

	go func() {
		log.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info("server stopped", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
}
