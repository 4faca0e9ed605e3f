package handler

import (
	"io"
	"net/http"

	webhookapp "paygate-server/internal/application/webhook"
	"paygate-server/internal/domain/webhook"

	"github.com/labstack/echo/v4"
)

// WebhookHandler プロセッサからのWebhook受信ハンドラー
type WebhookHandler struct {
	webhookService *webhookapp.WebhookApplicationService
}

// NewWebhookHandler 新しいWebhookHandlerを作成
func NewWebhookHandler(webhookService *webhookapp.WebhookApplicationService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// Receive Webhook受信ハンドラー
// @Summary プロセッサからのWebhookを受信
// @Description 署名を検証し、イベントを一度だけ処理します
// @Tags webhook
// @Accept json
// @Produce json
// @Param tenant_id path string true "テナントID"
// @Success 200 "受理"
// @Failure 400 {object} middleware.ErrorResponse "解析不能なイベント"
// @Failure 401 {object} middleware.ErrorResponse "署名検証失敗"
// @Failure 500 {object} middleware.ErrorResponse "署名検証サービス利用不可"
// @Router /webhooks/paypal/{tenant_id} [post]
func (h *WebhookHandler) Receive(c echo.Context) error {
	tenantID := c.Param("tenant_id")
	if tenantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant_id is required")
	}

	// 署名検証には受信したボディをそのまま使う必要がある
	rawBody, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}

	headers := webhook.SignatureHeaders{
		TransmissionID:   c.Request().Header.Get("Paypal-Transmission-Id"),
		TransmissionTime: c.Request().Header.Get("Paypal-Transmission-Time"),
		TransmissionSig:  c.Request().Header.Get("Paypal-Transmission-Sig"),
		CertURL:          c.Request().Header.Get("Paypal-Cert-Url"),
		AuthAlgo:         c.Request().Header.Get("Paypal-Auth-Algo"),
	}

	if err := h.webhookService.Process(c.Request().Context(), tenantID, headers, rawBody); err != nil {
		return err
	}

	return c.NoContent(http.StatusOK)
}
