package paypal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"

	"paygate-server/internal/domain/merchant"
	"paygate-server/internal/domain/order"
	"paygate-server/internal/domain/paymentmethod"
	"paygate-server/internal/domain/processor"
	"paygate-server/internal/domain/vault"
)

// kindFromTokenSource レスポンスのペイメントソースから決済手段種別を判定する
func kindFromTokenSource(src tokenSourceResult) (paymentmethod.Kind, *vault.CardDisplayDetails) {
	switch {
	case src.Card != nil:
		return paymentmethod.KindCard, &vault.CardDisplayDetails{
			Brand:      src.Card.Brand,
			LastDigits: src.Card.LastDigits,
			ExpiryDate: src.Card.Expiry,
		}
	case src.PayPal != nil:
		return paymentmethod.KindPayPal, nil
	case src.Venmo != nil:
		return paymentmethod.KindVenmo, nil
	case src.ApplePay != nil:
		return paymentmethod.KindApplePay, nil
	default:
		return "", nil
	}
}

// buildSetupTokenRequest セットアップトークン作成入力をワイヤ表現に組み立てる
func buildSetupTokenRequest(input vault.CreateSetupTokenInput) setupTokenRequest {
	req := setupTokenRequest{
		Customer: &customerRef{ID: input.CustomerID},
	}

	switch input.Kind {
	case paymentmethod.KindCard:
		req.PaymentSource.Card = &setupTokenBranch{
			VerificationMethod: input.VerificationMethod,
			ExperienceContext: &experienceContext{
				ReturnURL: input.ReturnURL,
				CancelURL: input.CancelURL,
			},
		}
	case paymentmethod.KindPayPal:
		req.PaymentSource.PayPal = &setupTokenBranch{
			UsageType: input.UsageType,
			ExperienceContext: &experienceContext{
				ShippingPreference: order.ShippingPreferenceNoShipping,
				ReturnURL:          input.ReturnURL,
				CancelURL:          input.CancelURL,
			},
		}
	case paymentmethod.KindVenmo:
		req.PaymentSource.Venmo = &setupTokenBranch{
			UsageType: input.UsageType,
			ExperienceContext: &experienceContext{
				ShippingPreference: order.ShippingPreferenceNoShipping,
				ReturnURL:          input.ReturnURL,
				CancelURL:          input.CancelURL,
			},
		}
	case paymentmethod.KindApplePay:
		req.PaymentSource.ApplePay = &setupTokenBranch{}
	}

	return req
}

// parseSetupToken レスポンスボディをSetupTokenに変換する
func parseSetupToken(body []byte) (*vault.SetupToken, error) {
	var resp setupTokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse setup token response: %w", err)
	}

	status, err := vault.NewSetupTokenStatus(resp.Status)
	if err != nil {
		return nil, err
	}

	kind, _ := kindFromTokenSource(resp.PaymentSource)

	customerID := ""
	if resp.Customer != nil {
		customerID = resp.Customer.ID
	}

	approvalURL := ""
	for _, l := range resp.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			approvalURL = l.Href
			break
		}
	}

	return vault.NewSetupToken(resp.ID, status, kind, customerID, approvalURL)
}

// parsePaymentToken レスポンスのワイヤ表現をPaymentTokenに変換する
func parsePaymentToken(resp paymentTokenResponse) (*vault.PaymentToken, error) {
	kind, display := kindFromTokenSource(resp.PaymentSource)

	customerID := ""
	if resp.Customer != nil {
		customerID = resp.Customer.ID
	}

	return vault.NewPaymentToken(resp.ID, customerID, kind, display)
}

// CreateSetupToken セットアップトークンを作成する
func (c *Client) CreateSetupToken(ctx context.Context, cfg *merchant.Config, input vault.CreateSetupTokenInput) (*vault.SetupToken, error) {
	ctx, span := c.tracer.Start(ctx, "PayPalClient.CreateSetupToken")
	defer span.End()

	span.SetAttributes(
		attribute.String("processor.tenant_id", cfg.TenantID()),
		attribute.String("processor.payment_method", input.Kind.String()),
	)

	body, _, err := c.doRequest(ctx, cfg, http.MethodPost, "/v3/vault/setup-tokens", buildSetupTokenRequest(input), "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	token, err := parseSetupToken(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("processor.setup_token_id", token.ID()))
	span.SetStatus(otelcodes.Ok, "setup token created")
	return token, nil
}

// GetSetupToken セットアップトークンを取得する
func (c *Client) GetSetupToken(ctx context.Context, cfg *merchant.Config, setupTokenID string) (*vault.SetupToken, error) {
	ctx, span := c.tracer.Start(ctx, "PayPalClient.GetSetupToken")
	defer span.End()

	span.SetAttributes(
		attribute.String("processor.tenant_id", cfg.TenantID()),
		attribute.String("processor.setup_token_id", setupTokenID),
	)

	body, _, err := c.doRequest(ctx, cfg, http.MethodGet, "/v3/vault/setup-tokens/"+setupTokenID, nil, "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	token, err := parseSetupToken(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(otelcodes.Ok, "setup token fetched")
	return token, nil
}

// CreatePaymentToken 承認済みセットアップトークンから決済トークンを発行する
// 未承認のセットアップトークンはプロセッサに拒否されるためErrSetupTokenNotApprovedを返す
func (c *Client) CreatePaymentToken(ctx context.Context, cfg *merchant.Config, setupTokenID string) (*vault.PaymentToken, error) {
	ctx, span := c.tracer.Start(ctx, "PayPalClient.CreatePaymentToken")
	defer span.End()

	span.SetAttributes(
		attribute.String("processor.tenant_id", cfg.TenantID()),
		attribute.String("processor.setup_token_id", setupTokenID),
	)

	var req paymentTokenRequest
	req.PaymentSource.Token = tokenRef{ID: setupTokenID, Type: "SETUP_TOKEN"}

	body, status, err := c.doRequest(ctx, cfg, http.MethodPost, "/v3/vault/payment-tokens", req, "")
	if err != nil {
		if status == http.StatusUnprocessableEntity && processor.IsCategory(err, processor.CategoryValidation) {
			span.SetStatus(otelcodes.Ok, "setup token not approved")
			return nil, vault.ErrSetupTokenNotApproved
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	var resp paymentTokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to parse payment token response: %w", err)
	}

	token, err := parsePaymentToken(resp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("processor.payment_token_id", token.ID()))
	span.SetStatus(otelcodes.Ok, "payment token created")
	return token, nil
}

// ListPaymentTokens Vault顧客IDに紐づく決済トークンを一覧取得する
func (c *Client) ListPaymentTokens(ctx context.Context, cfg *merchant.Config, customerID string) ([]*vault.PaymentToken, error) {
	ctx, span := c.tracer.Start(ctx, "PayPalClient.ListPaymentTokens")
	defer span.End()

	span.SetAttributes(
		attribute.String("processor.tenant_id", cfg.TenantID()),
	)

	path := "/v3/vault/payment-tokens?customer_id=" + url.QueryEscape(customerID)
	body, _, err := c.doRequest(ctx, cfg, http.MethodGet, path, nil, "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	var list paymentTokenList
	if err := json.Unmarshal(body, &list); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to parse payment token list: %w", err)
	}

	tokens := make([]*vault.PaymentToken, 0, len(list.PaymentTokens))
	for _, item := range list.PaymentTokens {
		token, err := parsePaymentToken(item)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, err
		}
		tokens = append(tokens, token)
	}

	span.SetAttributes(attribute.Int("processor.token_count", len(tokens)))
	span.SetStatus(otelcodes.Ok, "payment tokens listed")
	return tokens, nil
}

// DeletePaymentToken 決済トークンを削除する
func (c *Client) DeletePaymentToken(ctx context.Context, cfg *merchant.Config, tokenID string) error {
	ctx, span := c.tracer.Start(ctx, "PayPalClient.DeletePaymentToken")
	defer span.End()

	span.SetAttributes(
		attribute.String("processor.tenant_id", cfg.TenantID()),
		attribute.String("processor.payment_token_id", tokenID),
	)

	_, _, err := c.doRequest(ctx, cfg, http.MethodDelete, "/v3/vault/payment-tokens/"+tokenID, nil, "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	span.SetStatus(otelcodes.Ok, "payment token deleted")
	return nil
}
