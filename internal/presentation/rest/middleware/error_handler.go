package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"paygate-server/internal/domain/merchant"
	"paygate-server/internal/domain/money"
	"paygate-server/internal/domain/paymentmethod"
	"paygate-server/internal/domain/processor"
	"paygate-server/internal/domain/vault"
	"paygate-server/internal/domain/webhook"
	otelinfra "paygate-server/internal/infrastructure/observability/otel"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			return handleError(c, err, logger)
		}
	}
}

// domainErrorMapping ドメインエラーとHTTPレスポンスの対応
type domainErrorMapping struct {
	target error
	status int
	code   string
}

// ドメインの番兵エラーの対応表
var domainErrorMappings = []domainErrorMapping{
	{merchant.ErrConfigNotFound, http.StatusNotFound, "merchant_config_not_found"},
	{vault.ErrBuyerNotIdentified, http.StatusUnauthorized, "buyer_not_identified"},
	{vault.ErrSetupTokenNotApproved, http.StatusPreconditionFailed, "setup_token_not_approved"},
	{vault.ErrMappingNotFound, http.StatusNotFound, "vault_customer_not_found"},
	{vault.ErrInvalidSetupTokenID, http.StatusBadRequest, "invalid_setup_token_id"},
	{vault.ErrInvalidPaymentTokenID, http.StatusBadRequest, "invalid_payment_token_id"},
	{vault.ErrInvalidPlatformUserID, http.StatusBadRequest, "invalid_platform_user_id"},
	{paymentmethod.ErrInvalidKind, http.StatusBadRequest, "invalid_payment_method"},
	{money.ErrInvalidCurrency, http.StatusBadRequest, "invalid_currency"},
	{money.ErrNegativeAmount, http.StatusBadRequest, "invalid_amount"},
	{money.ErrAmountTooLarge, http.StatusBadRequest, "invalid_amount"},
	{webhook.ErrMissingSignatureHeaders, http.StatusUnauthorized, "missing_signature_headers"},
	{webhook.ErrSignatureVerificationFailed, http.StatusUnauthorized, "signature_verification_failed"},
	{webhook.ErrUnparseableBody, http.StatusBadRequest, "unparseable_event_body"},
	{webhook.ErrVerificationUnavailable, http.StatusInternalServerError, "verification_unavailable"},
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	for _, m := range domainErrorMappings {
		if errors.Is(err, m.target) {
			logger.Warn(ctx, "Domain error", map[string]interface{}{
				"error": err.Error(),
				"code":  m.code,
			})
			return c.JSON(m.status, ErrorResponse{
				Error:   m.code,
				Message: m.target.Error(),
			})
		}
	}

	// プロセッサ起因のエラー（生のレスポンスは含まれない）
	if pe := processor.AsError(err); pe != nil {
		return handleProcessorError(c, pe, logger)
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message := ""
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_server_error",
		Message: "An unexpected error occurred",
	})
}

// handleProcessorError プロセッサ起因のエラーを分類に応じて返す
func handleProcessorError(c echo.Context, pe *processor.Error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	fields := map[string]interface{}{
		"category":    string(pe.Category),
		"code":        pe.Code,
		"status_code": pe.StatusCode,
	}

	switch pe.Category {
	case processor.CategoryValidation, processor.CategoryRejected:
		logger.Warn(ctx, "Processor rejected request", fields)
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "processor_rejected",
			Message: "The processor rejected the request",
			Code:    pe.Code,
		})
	case processor.CategoryAuthentication:
		// テナントの認証情報不良は運用者が直すもので、呼び出し元の入力の問題ではない
		logger.Error(ctx, "Processor credentials rejected", pe, fields)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "processor_authentication_failed",
			Message: "Processor credentials are invalid",
		})
	case processor.CategoryTransient:
		logger.Error(ctx, "Processor unavailable", pe, fields)
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "processor_unavailable",
			Message: "The processor is temporarily unavailable",
		})
	default:
		logger.Error(ctx, "Unclassified processor error", pe, fields)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "processor_error",
			Message: "An unexpected processor error occurred",
		})
	}
}
