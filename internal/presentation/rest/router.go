package rest

import (
	checkoutapp "paygate-server/internal/application/checkout"
	vaultingapp "paygate-server/internal/application/vaulting"
	webhookapp "paygate-server/internal/application/webhook"
	"paygate-server/internal/infrastructure/config"
	otelinfra "paygate-server/internal/infrastructure/observability/otel"
	"paygate-server/internal/infrastructure/persistence/mysql"
	"paygate-server/internal/presentation/rest/handler"
	restmiddleware "paygate-server/internal/presentation/rest/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Router REST APIルーター
type Router struct {
	echo            *echo.Echo
	checkoutHandler *handler.CheckoutHandler
	vaultHandler    *handler.VaultHandler
	webhookHandler  *handler.WebhookHandler
}

// NewRouter 新しいRouterを作成
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	db *mysql.DB,
	rateLimitStore restmiddleware.RateLimitStore,
	checkoutService *checkoutapp.CheckoutApplicationService,
	vaultService *vaultingapp.VaultApplicationService,
	webhookService *webhookapp.WebhookApplicationService,
) (*Router, error) {
	e := echo.New()

	// Echoのデフォルトエラーハンドラーを無効化（カスタムエラーハンドラーを使用）
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		// エラーハンドリングミドルウェアで処理される
	}

	// ミドルウェアの設定
	setupMiddleware(e, cfg, rateLimitStore, metrics, logger)

	// ハンドラーの作成
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, vaultService)
	vaultHandler := handler.NewVaultHandler(vaultService)
	webhookHandler := handler.NewWebhookHandler(webhookService)

	// ルーティングの設定
	setupRoutes(e, cfg, db, logger, checkoutHandler, vaultHandler, webhookHandler)

	// Swagger UI / ReDoc統合
	SetupSwagger(e)

	return &Router{
		echo:            e,
		checkoutHandler: checkoutHandler,
		vaultHandler:    vaultHandler,
		webhookHandler:  webhookHandler,
	}, nil
}

// setupMiddleware ミドルウェアを設定
func setupMiddleware(e *echo.Echo, cfg *config.Config, rateLimitStore restmiddleware.RateLimitStore, metrics *otelinfra.Metrics, logger *otelinfra.Logger) {
	// リカバリーミドルウェア
	e.Use(middleware.Recover())

	// CORS設定
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"}, // 本番環境では適切に設定
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// リクエストIDの設定
	e.Use(middleware.RequestID())

	// セキュリティヘッダー
	e.Use(restmiddleware.SecurityHeadersMiddleware())

	// トレーシングミドルウェア
	e.Use(restmiddleware.TracingMiddleware())

	// レートリミットミドルウェア
	e.Use(restmiddleware.RateLimitMiddleware(&cfg.RateLimit, rateLimitStore, metrics, logger))

	// ログミドルウェア
	e.Use(restmiddleware.LoggingMiddleware(logger))

	// メトリクスミドルウェア
	e.Use(restmiddleware.MetricsMiddleware(metrics))

	// エラーハンドリングミドルウェア
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes ルーティングを設定
func setupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	db *mysql.DB,
	logger *otelinfra.Logger,
	checkoutHandler *handler.CheckoutHandler,
	vaultHandler *handler.VaultHandler,
	webhookHandler *handler.WebhookHandler,
) {
	// API v1グループ
	api := e.Group("/api/v1")

	// チェックアウト関連エンドポイント（ゲスト購入を許可、トークンがあれば買い手を特定）
	checkoutGroup := api.Group("/tenants/:tenant_id/checkout", restmiddleware.OptionalAuthMiddleware(&cfg.JWT, logger))
	checkoutGroup.POST("/orders", checkoutHandler.CreateOrder)
	checkoutGroup.POST("/orders/:order_id/capture", checkoutHandler.CaptureOrder)
	checkoutGroup.POST("/orders/:order_id/authorize", checkoutHandler.AuthorizeOrder)
	checkoutGroup.PATCH("/orders/:order_id/amount", checkoutHandler.UpdateOrderAmount)

	// 決済手段保管エンドポイント（買い手のログインが必要）
	vaultGroup := api.Group("/vault", restmiddleware.AuthMiddleware(&cfg.JWT, logger))
	vaultGroup.POST("/setup-tokens", vaultHandler.CreateSetupToken)
	vaultGroup.GET("/setup-tokens/:setup_token_id", vaultHandler.GetSetupToken)
	vaultGroup.POST("/payment-tokens", vaultHandler.MintPaymentToken)
	vaultGroup.GET("/payment-tokens", vaultHandler.ListPaymentTokens)
	vaultGroup.DELETE("/payment-tokens/:payment_token_id", vaultHandler.DeletePaymentToken)

	// サーバー間エンドポイント（APIキー認証、買い手不在のマーチャント起点課金）
	internalGroup := e.Group("/internal/v1", restmiddleware.APIKeyMiddleware(&cfg.InternalAPI, logger))
	internalGroup.POST("/tenants/:tenant_id/charges", checkoutHandler.ChargeStoredMethod)

	// Webhook受信エンドポイント（署名検証で保護されるため認証なし）
	e.POST("/webhooks/paypal/:tenant_id", webhookHandler.Receive)

	// ヘルスチェックエンドポイント（認証不要）
	e.GET("/health", func(c echo.Context) error {
		if err := db.HealthCheck(); err != nil {
			return c.JSON(503, map[string]string{"status": "unhealthy"})
		}
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}

// Start サーバーを起動
func (r *Router) Start(address string) error {
	return r.echo.Start(address)
}

// Shutdown サーバーをシャットダウン
func (r *Router) Shutdown() error {
	return r.echo.Close()
}
