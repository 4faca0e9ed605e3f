package paypal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"

	"paygate-server/internal/domain/merchant"
	"paygate-server/internal/domain/money"
	"paygate-server/internal/domain/order"
)

// toMoneyValue 金額をワイヤ表現に変換する
func toMoneyValue(a money.Amount) moneyValue {
	return moneyValue{
		CurrencyCode: a.Currency(),
		Value:        a.Value(),
	}
}

// toWireBranch ドメインのソースブランチをワイヤ表現に変換する
func toWireBranch(b *order.SourceBranch) *sourceBranch {
	if b == nil {
		return nil
	}
	wire := &sourceBranch{VaultID: b.VaultID}
	if b.StoredCredential != nil {
		wire.StoredCredential = &storedCredential{
			PaymentInitiator: b.StoredCredential.PaymentInitiator,
			PaymentType:      b.StoredCredential.PaymentType,
			Usage:            b.StoredCredential.Usage,
		}
	}
	if b.StoreInVault != "" || b.CustomerID != "" {
		attrs := &sourceAttributes{}
		if b.StoreInVault != "" {
			attrs.Vault = &vaultInstruction{StoreInVault: b.StoreInVault}
		}
		if b.CustomerID != "" {
			attrs.Customer = &customerRef{ID: b.CustomerID}
		}
		wire.Attributes = attrs
	}
	return wire
}

// buildOrderRequest 注文作成入力をワイヤ表現に組み立てる
func (c *Client) buildOrderRequest(input order.CreateOrderInput) orderRequest {
	unit := purchaseUnit{
		Amount: amountWithBreakdown{
			CurrencyCode: input.Amount.Currency(),
			Value:        input.Amount.Value(),
		},
		SoftDescriptor: input.SoftDescriptor,
		CustomID:       input.CustomID,
	}

	// 内訳と明細行は常に揃って送る（内訳照合は呼び出し元が済ませている）
	if input.Breakdown != nil {
		unit.Amount.Breakdown = &amountBreakdown{
			ItemTotal: ptr(toMoneyValue(input.Breakdown.ItemTotal)),
			Shipping:  ptr(toMoneyValue(input.Breakdown.Shipping)),
			TaxTotal:  ptr(toMoneyValue(input.Breakdown.TaxTotal)),
		}
		for _, item := range input.LineItems {
			unit.Items = append(unit.Items, orderItem{
				Name:       item.Name,
				Quantity:   strconv.Itoa(item.Quantity),
				UnitAmount: toMoneyValue(item.UnitAmount),
			})
		}
	}

	if input.Shipping != nil {
		detail := &shippingDetail{}
		if input.Shipping.RecipientName != "" {
			detail.Name = &shippingName{FullName: input.Shipping.RecipientName}
		}
		if addr := input.Shipping.Address; addr != nil {
			detail.Address = &postalAddress{
				AddressLine1: addr.Line1,
				AddressLine2: addr.Line2,
				AdminArea2:   addr.City,
				AdminArea1:   addr.State,
				PostalCode:   addr.PostalCode,
				CountryCode:  addr.CountryCode,
			}
		}
		unit.Shipping = detail
	}

	if input.PlatformFee != nil && c.partnerMerchantID != "" {
		unit.PaymentInstruction = &paymentInstruction{
			PlatformFees: []platformFee{
				{
					Amount: toMoneyValue(*input.PlatformFee),
					Payee:  payee{MerchantID: c.partnerMerchantID},
				},
			},
		}
	}

	req := orderRequest{
		Intent:        input.Intent.String(),
		PurchaseUnits: []purchaseUnit{unit},
	}

	if input.Payer != nil {
		p := &orderPayer{EmailAddress: input.Payer.Email}
		if input.Payer.GivenName != "" || input.Payer.Surname != "" {
			p.Name = &payerName{GivenName: input.Payer.GivenName, Surname: input.Payer.Surname}
		}
		req.Payer = p
	}

	if input.PaymentSource != nil && !input.PaymentSource.IsEmpty() {
		src := &paymentSource{
			Card:     toWireBranch(input.PaymentSource.Card),
			PayPal:   toWireBranch(input.PaymentSource.PayPal),
			Venmo:    toWireBranch(input.PaymentSource.Venmo),
			ApplePay: toWireBranch(input.PaymentSource.ApplePay),
		}

		// 承認リダイレクトを伴う種別にだけ買い手体験設定を付ける
		ec := c.buildExperienceContext(input)
		if src.PayPal != nil {
			src.PayPal.ExperienceContext = ec
		} else if src.Venmo != nil {
			src.Venmo.ExperienceContext = ec
		} else if input.ShippingPreference != "" {
			req.ApplicationContext = &applicationContext{ShippingPreference: input.ShippingPreference}
		}
		req.PaymentSource = src
	} else if input.ShippingPreference != "" {
		req.ApplicationContext = &applicationContext{ShippingPreference: input.ShippingPreference}
	}

	return req
}

// buildExperienceContext paypal/venmoブランチ用の買い手体験設定を組み立てる
func (c *Client) buildExperienceContext(input order.CreateOrderInput) *experienceContext {
	ec := &experienceContext{
		ShippingPreference: input.ShippingPreference,
	}
	if input.AppSwitchPreference {
		ec.AppSwitchPreference = &appSwitchPreference{LaunchPayPalApp: true}
	}
	if input.CallbackURL != "" {
		ec.OrderUpdateCallbackConfig = &callbackConfig{
			CallbackEvents: []string{"SHIPPING_ADDRESS", "SHIPPING_OPTIONS"},
			CallbackURL:    input.CallbackURL,
		}
	}
	return ec
}

// parseOrderResponse レスポンスボディをProcessorOrderに変換する
func parseOrderResponse(body []byte) (*order.ProcessorOrder, error) {
	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse order response: %w", err)
	}

	result := &order.ProcessorOrder{
		ID:     resp.ID,
		Status: resp.Status,
	}
	for _, l := range resp.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			result.ApprovalURL = l.Href
			break
		}
	}
	for _, pu := range resp.PurchaseUnits {
		if pu.Payments != nil && len(pu.Payments.Captures) > 0 {
			result.CaptureID = pu.Payments.Captures[0].ID
			break
		}
	}
	return result, nil
}

// CreateOrder 注文を作成する
func (c *Client) CreateOrder(ctx context.Context, cfg *merchant.Config, input order.CreateOrderInput) (*order.ProcessorOrder, error) {
	ctx, span := c.tracer.Start(ctx, "PayPalClient.CreateOrder")
	defer span.End()

	span.SetAttributes(
		attribute.String("processor.tenant_id", cfg.TenantID()),
		attribute.String("processor.intent", input.Intent.String()),
		attribute.String("processor.currency", input.Amount.Currency()),
	)

	body, _, err := c.doRequest(ctx, cfg, http.MethodPost, "/v2/checkout/orders", c.buildOrderRequest(input), input.IdempotencyKey)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	result, err := parseOrderResponse(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("processor.order_id", result.ID))
	span.SetStatus(otelcodes.Ok, "order created")
	return result, nil
}

// CaptureOrder 承認済み注文の売上を確定する
func (c *Client) CaptureOrder(ctx context.Context, cfg *merchant.Config, orderID string) (*order.ProcessorOrder, error) {
	ctx, span := c.tracer.Start(ctx, "PayPalClient.CaptureOrder")
	defer span.End()

	span.SetAttributes(
		attribute.String("processor.tenant_id", cfg.TenantID()),
		attribute.String("processor.order_id", orderID),
	)

	body, _, err := c.doRequest(ctx, cfg, http.MethodPost, "/v2/checkout/orders/"+orderID+"/capture", struct{}{}, "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	result, err := parseOrderResponse(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(otelcodes.Ok, "order captured")
	return result, nil
}

// AuthorizeOrder 承認済み注文のオーソリを確定する
func (c *Client) AuthorizeOrder(ctx context.Context, cfg *merchant.Config, orderID string) (*order.ProcessorOrder, error) {
	ctx, span := c.tracer.Start(ctx, "PayPalClient.AuthorizeOrder")
	defer span.End()

	span.SetAttributes(
		attribute.String("processor.tenant_id", cfg.TenantID()),
		attribute.String("processor.order_id", orderID),
	)

	body, _, err := c.doRequest(ctx, cfg, http.MethodPost, "/v2/checkout/orders/"+orderID+"/authorize", struct{}{}, "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	result, err := parseOrderResponse(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(otelcodes.Ok, "order authorized")
	return result, nil
}

// UpdateOrderAmount 承認前の注文金額を更新する（配送先変更コールバックなどで使用）
func (c *Client) UpdateOrderAmount(ctx context.Context, cfg *merchant.Config, orderID string, amount money.Amount, breakdown *order.Breakdown) error {
	ctx, span := c.tracer.Start(ctx, "PayPalClient.UpdateOrderAmount")
	defer span.End()

	span.SetAttributes(
		attribute.String("processor.tenant_id", cfg.TenantID()),
		attribute.String("processor.order_id", orderID),
		attribute.String("processor.currency", amount.Currency()),
	)

	value := amountWithBreakdown{
		CurrencyCode: amount.Currency(),
		Value:        amount.Value(),
	}
	if breakdown != nil {
		value.Breakdown = &amountBreakdown{
			ItemTotal: ptr(toMoneyValue(breakdown.ItemTotal)),
			Shipping:  ptr(toMoneyValue(breakdown.Shipping)),
			TaxTotal:  ptr(toMoneyValue(breakdown.TaxTotal)),
		}
	}

	ops := []patchOperation{
		{
			Op:    "replace",
			Path:  "/purchase_units/@reference_id=='default'/amount",
			Value: value,
		},
	}

	_, _, err := c.doRequest(ctx, cfg, http.MethodPatch, "/v2/checkout/orders/"+orderID, ops, "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	span.SetStatus(otelcodes.Ok, "order amount updated")
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
