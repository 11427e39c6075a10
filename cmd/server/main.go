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

	"cartease/config"
	"cartease/internal/api"
	"cartease/internal/broker"
	"cartease/internal/cache"
	"cartease/internal/redisclient"
	"cartease/internal/service"
	"cartease/internal/store"
	"cartease/internal/util"
	"cartease/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting CartEase")

	tp, err := util.InitTracer("cartease", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	var kv store.KV = cache.NewMemory()
	var redisClient *redisclient.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		kv = redisClient
		log.Println("Redis connected")
	} else {
		log.Println("REDIS_ADDR not set, cart is kept in memory")
	}

	repo := store.NewSeededStore()
	cartStore := store.NewCartStore(context.Background(), kv, cfg.Cart.CacheKey)

	var eventPublisher service.EventPublisher = broker.NopPublisher{}
	if cfg.Kafka.Enabled() {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
		defer producer.Close()
		eventPublisher = broker.NewEventPublisher(producer)
		log.Println("Kafka producer initialized")
	} else {
		log.Println("KAFKA_BROKERS not set, domain events are dropped")
	}

	var gateway service.PaymentGateway
	var hosted *service.HostedGateway
	switch cfg.Payment.Provider {
	case "mock":
		gateway = service.NewMockGateway(cfg.Payment.SuccessRate, time.Duration(cfg.Payment.LatencyMillis)*time.Millisecond)
	case "hosted":
		hosted = service.NewHostedGateway()
		gateway = hosted
	default:
		log.Fatalf("Unknown PAYMENT_PROVIDER %q (want mock or hosted)", cfg.Payment.Provider)
	}

	catalogService := service.NewCatalogService(repo, eventPublisher)
	cartService := service.NewCartService(cartStore, repo)
	orderService := service.NewOrderService(repo, eventPublisher)
	checkoutService := service.NewCheckoutService(cartStore, repo, gateway, eventPublisher, service.CheckoutOptions{
		Key:          cfg.Payment.KeyID,
		Currency:     cfg.Payment.Currency,
		MerchantName: cfg.Payment.MerchantName,
		Description:  cfg.Payment.Description,
		Image:        cfg.Payment.Image,
		ThemeColor:   cfg.Payment.ThemeColor,

		SessionRetention: cfg.Payment.SessionRetention,
	})

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var paymentWorker *worker.PaymentWorker
	if hosted != nil && cfg.Kafka.Enabled() {
		paymentConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicPayment, cfg.Kafka.ConsumerGroup)
		paymentWorker = worker.NewPaymentWorker(paymentConsumer, hosted)
		go func() {
			if err := paymentWorker.Start(workerCtx); err != nil && workerCtx.Err() == nil {
				logger.Error("Payment worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(catalogService, cartService, orderService, checkoutService)
	if hosted != nil {
		handler.WithPaymentCallbacks(hosted)
	}
	if redisClient != nil {
		handler.WithReadinessCheck("redis", redisClient.Ping)
	}
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	if paymentWorker != nil {
		if err := paymentWorker.Stop(); err != nil {
			log.Printf("Error stopping payment worker: %v", err)
		}
	}

	log.Println("Server exited")
}
