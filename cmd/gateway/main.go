package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"storefront-gateway/internal/apiclient"
	"storefront-gateway/internal/cart"
	"storefront-gateway/internal/catalog"
	"storefront-gateway/internal/checkout"
	"storefront-gateway/internal/config"
	"storefront-gateway/internal/coupon"
	"storefront-gateway/internal/handler"
	"storefront-gateway/internal/localstore"
	"storefront-gateway/internal/server"
	"storefront-gateway/internal/session"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	local, err := localstore.Open(cfg.LocalStorePath)
	if err != nil {
		log.Fatal("open local store:", err)
	}

	api := apiclient.New(&cfg.Backend)
	sessions := session.NewStore(api, local)
	api.SetTokenSource(sessions)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sessions.Hydrate(ctx); err != nil {
		log.Printf("session hydration: %v", err)
	}
	go sessions.RunRefreshLoop(ctx)

	carts := cart.NewStore(api, sessions)
	coupons := coupon.NewResolver(api)
	products := catalog.NewService(api)
	orchestrator := checkout.NewOrchestrator(api, local, cfg.Checkout.CallbackURL)

	srv := server.NewServer(
		handler.NewAuthHandler(sessions),
		handler.NewCartHandler(carts, sessions),
		handler.NewCouponHandler(coupons),
		handler.NewCheckoutHandler(orchestrator, carts, coupons, sessions),
		handler.NewCatalogHandler(products),
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
