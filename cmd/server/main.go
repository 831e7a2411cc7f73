package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/identikit/scim-bridge/internal/config"
	"github.com/identikit/scim-bridge/internal/database"
	"github.com/identikit/scim-bridge/internal/handler"
	"github.com/identikit/scim-bridge/internal/middleware"
	"github.com/identikit/scim-bridge/internal/repository"
	"github.com/identikit/scim-bridge/internal/router"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	groups := repository.NewGroupRepo(db)
	memberships := repository.NewMembershipRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.RegisterRoutes(e)
	router.RegisterSCIM(e,
		handler.NewUserHandler(users, memberships),
		handler.NewGroupHandler(groups, memberships),
		middleware.AuthConfig{Secret: cfg.SCIMSecret, SecretHash: cfg.SCIMSecretHash},
		config.LoadRateLimitConfig(),
		rdb,
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Block until SIGINT/SIGTERM, then drain in-flight requests before the
	// deferred db.Close runs.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
