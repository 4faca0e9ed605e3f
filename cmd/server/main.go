package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	checkoutapp "paygate-server/internal/application/checkout"
	vaultingapp "paygate-server/internal/application/vaulting"
	webhookapp "paygate-server/internal/application/webhook"
	"paygate-server/internal/domain/service"
	"paygate-server/internal/infrastructure/config"
	otelinfra "paygate-server/internal/infrastructure/observability/otel"
	"paygate-server/internal/infrastructure/persistence/mysql"
	"paygate-server/internal/infrastructure/processor/paypal"
	"paygate-server/internal/presentation/rest"
	restmiddleware "paygate-server/internal/presentation/rest/middleware"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize meter: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown meter: %v", err)
		}
	}()

	// ロガーとメトリクスの初期化
	tracer := otelinfra.Tracer("paygate-server")
	logger := otelinfra.NewLogger(tracer)
	metrics, err := otelinfra.NewMetrics("paygate-server")
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	// データベース接続の初期化
	db, err := mysql.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// リポジトリの初期化
	merchantConfigRepo := mysql.NewMerchantConfigRepository(db)
	vaultCustomerRepo := mysql.NewVaultCustomerRepository(db)
	webhookEventRepo := mysql.NewWebhookEventRepository(db)

	// プロセッサクライアントの初期化
	paypalClient := paypal.NewClient(cfg.PayPal)

	// アプリケーションサービスの初期化
	checkoutAppService := checkoutapp.NewCheckoutApplicationService(
		merchantConfigRepo,
		paypalClient,
		service.NewPaymentSourceBuilder(),
		cfg.PayPal,
		logger,
		metrics,
	)

	vaultAppService := vaultingapp.NewVaultApplicationService(
		merchantConfigRepo,
		vaultCustomerRepo,
		paypalClient,
		logger,
		metrics,
	)

	webhookAppService := webhookapp.NewWebhookApplicationService(
		merchantConfigRepo,
		paypalClient,
		webhookEventRepo,
		logger,
		metrics,
	)

	// Webhookイベントハンドラーの登録
	webhookAppService.RegisterHandler(
		webhookapp.EventTypeOrderApproved,
		webhookapp.NewOrderApprovedHandler(checkoutAppService, logger),
	)
	webhookAppService.RegisterHandler(
		webhookapp.EventTypeCaptureCompleted,
		webhookapp.NewCaptureCompletedHandler(logger),
	)
	webhookAppService.RegisterHandler(
		webhookapp.EventTypeCaptureDenied,
		webhookapp.NewCaptureDeniedHandler(logger),
	)
	webhookAppService.RegisterHandler(
		webhookapp.EventTypePaymentTokenDeleted,
		webhookapp.NewPaymentTokenDeletedHandler(logger),
	)

	// レートリミットストアの初期化
	rateLimitStore := restmiddleware.NewMemoryRateLimitStore()
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	rateLimitStore.StartSweeping(sweepCtx, cfg.RateLimit.SweepInterval, cfg.RateLimit.Window)

	// REST APIルーターの初期化
	router, err := rest.NewRouter(
		cfg,
		logger,
		metrics,
		db,
		rateLimitStore,
		checkoutAppService,
		vaultAppService,
		webhookAppService,
	)
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	// サーバーアドレスの設定
	address := fmt.Sprintf(":%d", cfg.Server.Port)

	// グレースフルシャットダウンの設定
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// REST APIサーバーを別ゴルーチンで起動
	go func() {
		log.Printf("REST API server starting on %s", address)
		if err := router.Start(address); err != nil {
			log.Printf("REST API server error: %v", err)
		}
	}()

	// シグナルを待機
	<-quit
	log.Println("Shutting down server...")

	// グレースフルシャットダウン
	if err := router.Shutdown(); err != nil {
		log.Printf("Error shutting down REST API server: %v", err)
	}

	log.Println("Server stopped")
}
