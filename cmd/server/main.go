package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/tucarrito/marketplace/internal/config"
	"github.com/tucarrito/marketplace/internal/database"
	"github.com/tucarrito/marketplace/internal/handler"
	"github.com/tucarrito/marketplace/internal/middleware"
	"github.com/tucarrito/marketplace/internal/queue"
	"github.com/tucarrito/marketplace/internal/repository"
	"github.com/tucarrito/marketplace/internal/router"
	"github.com/tucarrito/marketplace/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	// Persistent store: Redis, or the in-memory fallback so the
	// service still boots without it (state then lives per-process).
	rdb := config.NewRedisClient()
	var kv repository.KV
	if rdb != nil {
		kv = repository.NewRedisKV(rdb)
	} else {
		log.Println("redis unavailable, using in-memory store")
		kv = repository.NewMemoryKV()
	}
	store := repository.NewStore(kv)

	users := repository.NewUserRepo(store)
	vehicles := repository.NewVehicleRepo(store)
	temps := repository.NewTemporaryVehicleRepo(store)
	txs := repository.NewTransactionRepo(store)

	// Remote relational store for messaging only.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("messaging database: %v", err)
	}
	defer db.Close()
	convs := repository.NewConversationRepo(db)
	msgs := repository.NewMessageRepo(db)

	identity := service.NewIdentity(users, store, cfg.BcryptCost)
	listings := service.NewListings(vehicles)
	anon := service.NewAnonymous(temps, vehicles, store)
	payments := service.NewPayments(txs, vehicles, users, queue.NewPublisher(), cfg.CommissionRate, cfg.GatewayDelay)
	checker := service.NewBackgroundChecker(vehicles, 500*time.Millisecond)
	messaging := service.NewMessaging(convs, msgs, users, vehicles)

	if cfg.SeedDemo {
		if err := service.SeedDemo(context.Background(), users, vehicles, identity); err != nil {
			log.Fatalf("seed demo data: %v", err)
		}
	}

	go func() {
		if err := queue.StartSaleConsumer(); err != nil {
			log.Printf("sale consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	loginLimit := middleware.LoginRateLimit(rdb, 10, time.Minute)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, identity), cfg.JWTSecret, loginLimit)
	router.RegisterPublic(e,
		handler.NewPublicHandler(listings),
		handler.NewBackgroundHandler(checker),
		handler.NewTemporaryHandler(anon, identity))
	router.RegisterProtected(e, cfg.JWTSecret,
		handler.NewVehicleHandler(listings, identity),
		handler.NewTemporaryHandler(anon, identity),
		handler.NewPaymentHandler(payments),
		handler.NewBackgroundHandler(checker),
		handler.NewMessagingHandler(messaging, cfg.MessagePoll, cfg.ListPoll))
	router.RegisterAdmin(e, cfg.JWTSecret, handler.NewAdminHandler(identity, listings, anon, cfg.TempMaxAgeDays))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
