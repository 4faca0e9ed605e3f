package webhook

import (
	"context"
	"encoding/json"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"paygate-server/internal/domain/merchant"
	"paygate-server/internal/domain/webhook"
	otelinfra "paygate-server/internal/infrastructure/observability/otel"
)

// EventHandler イベント種別ごとの処理
type EventHandler func(ctx context.Context, tenantID string, event *webhook.Event) error

// WebhookApplicationService Webhookアプリケーションサービス
// 検証→重複排除→ルーティングの順で処理し、検証を通らないイベントは決して処理しない
type WebhookApplicationService struct {
	merchantRepo  merchant.ConfigRepository
	verifier      webhook.SignatureVerifier
	processedRepo webhook.ProcessedEventRepository
	handlers      map[string]EventHandler
	logger        *otelinfra.Logger
	metrics       *otelinfra.Metrics
	tracer        trace.Tracer
}

// NewWebhookApplicationService 新しいWebhookApplicationServiceを作成
func NewWebhookApplicationService(
	merchantRepo merchant.ConfigRepository,
	verifier webhook.SignatureVerifier,
	processedRepo webhook.ProcessedEventRepository,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *WebhookApplicationService {
	return &WebhookApplicationService{
		merchantRepo:  merchantRepo,
		verifier:      verifier,
		processedRepo: processedRepo,
		handlers:      make(map[string]EventHandler),
		logger:        logger,
		metrics:       metrics,
		tracer:        otel.Tracer("webhook-service"),
	}
}

// RegisterHandler イベント種別に対する処理を登録する
func (s *WebhookApplicationService) RegisterHandler(eventType string, handler EventHandler) {
	s.handlers[eventType] = handler
}

// Process 受信したWebhookイベントを検証して処理する
// 戻り値のエラー分類:
//   - ErrMissingSignatureHeaders / ErrSignatureVerificationFailed: 拒否（401相当）
//   - ErrUnparseableBody: 拒否（400相当）
//   - ErrVerificationUnavailable: 再配送待ち（500相当）
//   - nil: 受理（ハンドラ失敗や重複・未知の種別も受理として扱い、再配送を止める）
func (s *WebhookApplicationService) Process(ctx context.Context, tenantID string, headers webhook.SignatureHeaders, rawBody []byte) error {
	ctx, span := s.tracer.Start(ctx, "WebhookApplicationService.Process")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("transmission_id", headers.TransmissionID),
	)

	// ヘッダーが1つでも欠けていれば検証APIを呼ばずに拒否する
	if !headers.Complete() {
		s.metrics.RecordWebhookRejection(ctx, "missing_headers")
		s.logger.Warn(ctx, "Webhook rejected: missing signature headers", map[string]interface{}{
			"tenant_id":       tenantID,
			"transmission_id": headers.TransmissionID,
		})
		span.SetStatus(otelcodes.Error, "missing signature headers")
		return webhook.ErrMissingSignatureHeaders
	}

	cfg, err := s.merchantRepo.FindByTenantID(ctx, tenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	if err := s.verifier.VerifySignature(ctx, cfg, headers, rawBody); err != nil {
		if errors.Is(err, webhook.ErrVerificationUnavailable) {
			// 検証APIの障害は受理も拒否もせず、プロセッサの再配送に委ねる
			s.logger.Error(ctx, "Webhook verification unavailable", err, map[string]interface{}{
				"tenant_id":       tenantID,
				"transmission_id": headers.TransmissionID,
			})
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return err
		}
		if errors.Is(err, webhook.ErrUnparseableBody) {
			s.metrics.RecordWebhookRejection(ctx, "unparseable_body")
			span.SetStatus(otelcodes.Error, "unparseable body")
			return err
		}
		s.metrics.RecordWebhookRejection(ctx, "signature_verification_failed")
		s.logger.Warn(ctx, "Webhook rejected: signature verification failed", map[string]interface{}{
			"tenant_id":       tenantID,
			"transmission_id": headers.TransmissionID,
		})
		span.SetStatus(otelcodes.Error, "signature verification failed")
		return webhook.ErrSignatureVerificationFailed
	}

	var event webhook.Event
	if err := json.Unmarshal(rawBody, &event); err != nil {
		s.metrics.RecordWebhookRejection(ctx, "unparseable_body")
		span.SetStatus(otelcodes.Error, "unparseable body")
		return webhook.ErrUnparseableBody
	}

	span.SetAttributes(
		attribute.String("event_id", event.ID),
		attribute.String("event_type", event.EventType),
	)

	// at-least-once配送の重複排除: 記録済みのtransmission idは処理せず受理する
	if err := s.processedRepo.MarkProcessed(ctx, headers.TransmissionID, event.ID, event.EventType); err != nil {
		if errors.Is(err, webhook.ErrEventAlreadyProcessed) {
			s.logger.Info(ctx, "Webhook already processed, skipping", map[string]interface{}{
				"tenant_id":       tenantID,
				"transmission_id": headers.TransmissionID,
				"event_type":      event.EventType,
			})
			span.SetStatus(otelcodes.Ok, "duplicate delivery")
			return nil
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	s.metrics.RecordWebhookEvent(ctx, event.EventType)

	// 相関IDがない場合も処理は続ける（本システム外で発生したイベントなど）
	if event.CorrelationID() == "" {
		s.logger.Warn(ctx, "Webhook event has no correlation id", map[string]interface{}{
			"tenant_id":  tenantID,
			"event_id":   event.ID,
			"event_type": event.EventType,
		})
	}

	handler, ok := s.handlers[event.EventType]
	if !ok {
		s.logger.Info(ctx, "No handler for webhook event type, acknowledging", map[string]interface{}{
			"tenant_id":  tenantID,
			"event_type": event.EventType,
		})
		span.SetStatus(otelcodes.Ok, "unhandled event type")
		return nil
	}

	// ハンドラの失敗で再配送を誘発しない（台帳に記録済みのため再配送されても処理されない）
	if err := handler(ctx, tenantID, &event); err != nil {
		s.logger.Error(ctx, "Webhook handler failed", err, map[string]interface{}{
			"tenant_id":  tenantID,
			"event_id":   event.ID,
			"event_type": event.EventType,
		})
		span.RecordError(err)
		span.SetStatus(otelcodes.Ok, "handler failed, acknowledged")
		return nil
	}

	span.SetStatus(otelcodes.Ok, "event processed")
	return nil
}
