package paypal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"

	"paygate-server/internal/domain/merchant"
	"paygate-server/internal/domain/webhook"
)

const verificationStatusSuccess = "SUCCESS"

// VerifySignature Webhookイベントの署名をプロセッサに問い合わせて検証する
// フェイルクローズ: 検証APIに到達できない場合も検証失敗と区別してエラーを返し、
// イベントを受理することは決してない
func (c *Client) VerifySignature(ctx context.Context, cfg *merchant.Config, headers webhook.SignatureHeaders, rawBody []byte) error {
	ctx, span := c.tracer.Start(ctx, "PayPalClient.VerifySignature")
	defer span.End()

	span.SetAttributes(
		attribute.String("processor.tenant_id", cfg.TenantID()),
		attribute.String("processor.transmission_id", headers.TransmissionID),
	)

	// JSONとして不正なボディは検証APIに渡せないため即時拒否する
	if !json.Valid(rawBody) {
		span.SetStatus(otelcodes.Error, "body is not valid json")
		return webhook.ErrUnparseableBody
	}

	req := verifySignatureRequest{
		TransmissionID:   headers.TransmissionID,
		TransmissionTime: headers.TransmissionTime,
		TransmissionSig:  headers.TransmissionSig,
		CertURL:          headers.CertURL,
		AuthAlgo:         headers.AuthAlgo,
		WebhookID:        cfg.WebhookID(),
		WebhookEvent:     json.RawMessage(rawBody),
	}

	body, _, err := c.doRequest(ctx, cfg, http.MethodPost, "/v1/notifications/verify-webhook-signature", req, "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("%w: %w", webhook.ErrVerificationUnavailable, err)
	}

	var resp verifySignatureResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("%w: failed to parse verification response", webhook.ErrVerificationUnavailable)
	}

	if resp.VerificationStatus != verificationStatusSuccess {
		span.SetAttributes(attribute.String("processor.verification_status", resp.VerificationStatus))
		span.SetStatus(otelcodes.Error, "signature verification failed")
		return webhook.ErrSignatureVerificationFailed
	}

	span.SetStatus(otelcodes.Ok, "signature verified")
	return nil
}
