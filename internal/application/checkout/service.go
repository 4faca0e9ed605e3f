package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"paygate-server/internal/domain/merchant"
	"paygate-server/internal/domain/money"
	"paygate-server/internal/domain/order"
	"paygate-server/internal/domain/paymentmethod"
	"paygate-server/internal/domain/processor"
	"paygate-server/internal/domain/service"
	"paygate-server/internal/infrastructure/config"
	otelinfra "paygate-server/internal/infrastructure/observability/otel"
)

// CheckoutApplicationService 注文アプリケーションサービス
type CheckoutApplicationService struct {
	merchantRepo  merchant.ConfigRepository
	orderClient   order.Processor
	sourceBuilder *service.PaymentSourceBuilder
	callbackURL   string
	partnerFees   bool
	logger        *otelinfra.Logger
	metrics       *otelinfra.Metrics
	tracer        trace.Tracer
}

// NewCheckoutApplicationService 新しいCheckoutApplicationServiceを作成
func NewCheckoutApplicationService(
	merchantRepo merchant.ConfigRepository,
	orderClient order.Processor,
	sourceBuilder *service.PaymentSourceBuilder,
	paypalCfg config.PayPalConfig,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *CheckoutApplicationService {
	return &CheckoutApplicationService{
		merchantRepo:  merchantRepo,
		orderClient:   orderClient,
		sourceBuilder: sourceBuilder,
		callbackURL:   paypalCfg.CallbackURL,
		partnerFees:   paypalCfg.PartnerMerchantID != "",
		logger:        logger,
		metrics:       metrics,
		tracer:        otel.Tracer("checkout-service"),
	}
}

// CreateOrder 注文を作成
func (s *CheckoutApplicationService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutApplicationService.CreateOrder")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", req.TenantID),
		attribute.String("action", req.Action),
		attribute.String("payment_method", req.PaymentMethod),
		attribute.String("currency", req.Currency),
	)

	s.logger.Info(ctx, "Creating order", map[string]interface{}{
		"tenant_id":       req.TenantID,
		"order_reference": req.OrderReference,
		"action":          req.Action,
		"payment_method":  req.PaymentMethod,
	})

	cfg, err := s.merchantRepo.FindByTenantID(ctx, req.TenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	kind, err := paymentmethod.NewKind(req.PaymentMethod)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	total, err := money.NewAmount(req.Currency, req.TotalMinorUnits)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	input, err := s.buildCreateInput(ctx, req, cfg, kind, total)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	created, err := s.orderClient.CreateOrder(ctx, cfg, *input)
	if err != nil {
		// プロセッサによる拒否は結果として返す（呼び出し元は買い手に失敗を提示する）
		if pe := processor.AsError(err); pe != nil && (pe.Category == processor.CategoryValidation || pe.Category == processor.CategoryRejected) {
			s.logger.Warn(ctx, "Order rejected by processor", map[string]interface{}{
				"tenant_id":       req.TenantID,
				"order_reference": req.OrderReference,
				"failure_code":    pe.Code,
			})
			s.metrics.RecordOrder(ctx, input.Intent.String(), order.ResultStatusFailed.String())
			span.SetStatus(otelcodes.Ok, "order rejected")
			return &CreateOrderResponse{
				Status:      order.ResultStatusFailed.String(),
				FailureCode: pe.Code,
			}, nil
		}
		s.logger.Error(ctx, "Failed to create order", err, map[string]interface{}{
			"tenant_id":       req.TenantID,
			"order_reference": req.OrderReference,
		})
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	status := order.InterpretProcessorStatus(created.Status)
	s.metrics.RecordOrder(ctx, input.Intent.String(), status.String())

	span.SetAttributes(
		attribute.String("order_id", created.ID),
		attribute.String("order_status", status.String()),
	)
	span.SetStatus(otelcodes.Ok, "order created")

	return &CreateOrderResponse{
		OrderID:     created.ID,
		Status:      status.String(),
		ApprovalURL: created.ApprovalURL,
	}, nil
}

// buildCreateInput リクエストからプロセッサ向けの注文作成入力を組み立てる
func (s *CheckoutApplicationService) buildCreateInput(ctx context.Context, req *CreateOrderRequest, cfg *merchant.Config, kind paymentmethod.Kind, total money.Amount) (*order.CreateOrderInput, error) {
	source, err := s.sourceBuilder.Build(service.BuildSourceInput{
		Kind:                kind,
		VaultIntent:         req.VaultIntent,
		ReturnBuyerTokenID:  req.ReturnBuyerTokenID,
		VaultCustomerID:     req.VaultCustomerID,
		IsMerchantInitiated: req.IsMerchantInitiated,
		HostedCardFields:    req.HostedCardFields,
	})
	if err != nil {
		return nil, err
	}

	shippingCost, err := money.NewAmount(req.Currency, req.ShippingMinorUnits)
	if err != nil {
		return nil, err
	}

	input := &order.CreateOrderInput{
		Intent:         order.IntentFromAction(req.Action),
		Amount:         total,
		PaymentSource:  source,
		SoftDescriptor: order.NormalizeSoftDescriptor(req.SoftDescriptor),
		IdempotencyKey: req.IdempotencyKey,
		CustomID:       req.OrderReference,
	}
	if input.IdempotencyKey == "" {
		input.IdempotencyKey = uuid.New().String()
	}

	// 内訳は合計と照合できた場合にのみ明細行とあわせて送る
	// （不一致のまま送ると注文自体が拒否されるため、両方とも落とす）
	breakdown, items, err := s.buildBreakdown(ctx, req, total)
	if err != nil {
		return nil, err
	}
	input.Breakdown = breakdown
	input.LineItems = items

	if req.Payer != nil {
		input.Payer = &order.Payer{
			Email:     req.Payer.Email,
			GivenName: req.Payer.GivenName,
			Surname:   req.Payer.Surname,
		}
	}

	var shipping *order.Shipping
	if req.Shipping != nil {
		shipping = &order.Shipping{RecipientName: req.Shipping.RecipientName}
		if addr := req.Shipping.Address; addr != nil {
			shipping.Address = &order.Address{
				Line1:       addr.Line1,
				Line2:       addr.Line2,
				City:        addr.City,
				State:       addr.State,
				PostalCode:  addr.PostalCode,
				CountryCode: addr.CountryCode,
			}
		}
	}
	input.Shipping = shipping
	input.ShippingPreference = order.DetermineShippingPreference(req.RequiresShipping, shipping, shippingCost)

	// プラットフォーム手数料はマーチャントと受け取り先の両方が設定済みの場合のみ
	if s.partnerFees && cfg.MerchantID() != "" && cfg.PartnerFeePercent() > 0 {
		fee, err := total.PercentOf(cfg.PartnerFeePercent())
		if err != nil {
			return nil, err
		}
		if !fee.IsZero() {
			input.PlatformFee = &fee
		}
	}

	// コールバックURLが設定済みならPayPalウォレットはアプリ切替と配送コールバックを常に有効化する
	if kind == paymentmethod.KindPayPal && s.callbackURL != "" {
		input.AppSwitchPreference = true
		input.CallbackURL = s.callbackURL
	}

	return input, nil
}

// buildBreakdown 内訳と明細行を組み立てる（照合不一致の場合は両方ともnil）
func (s *CheckoutApplicationService) buildBreakdown(ctx context.Context, req *CreateOrderRequest, total money.Amount) (*order.Breakdown, []order.LineItem, error) {
	if req.ItemTotalMinorUnits == 0 && req.ShippingMinorUnits == 0 && req.TaxMinorUnits == 0 {
		return nil, nil, nil
	}

	itemTotal, err := money.NewAmount(req.Currency, req.ItemTotalMinorUnits)
	if err != nil {
		return nil, nil, err
	}
	shippingCost, err := money.NewAmount(req.Currency, req.ShippingMinorUnits)
	if err != nil {
		return nil, nil, err
	}
	taxTotal, err := money.NewAmount(req.Currency, req.TaxMinorUnits)
	if err != nil {
		return nil, nil, err
	}

	breakdown := &order.Breakdown{
		ItemTotal: itemTotal,
		Shipping:  shippingCost,
		TaxTotal:  taxTotal,
	}

	if !breakdown.Matches(total) {
		s.logger.Warn(ctx, "Breakdown does not match order total, omitting breakdown", map[string]interface{}{
			"order_reference": req.OrderReference,
			"total":           total.MinorUnits(),
			"item_total":      req.ItemTotalMinorUnits,
			"shipping":        req.ShippingMinorUnits,
			"tax_total":       req.TaxMinorUnits,
		})
		return nil, nil, nil
	}

	items := make([]order.LineItem, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		unitAmount, err := money.NewAmount(req.Currency, li.UnitAmountMinorUnit)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, order.LineItem{
			Name:       li.Name,
			Quantity:   li.Quantity,
			UnitAmount: unitAmount,
		})
	}

	return breakdown, items, nil
}

// ChargeStoredMethod 保存済み決済手段でマーチャント起点の課金を行う
func (s *CheckoutApplicationService) ChargeStoredMethod(ctx context.Context, req *ChargeStoredMethodRequest) (*CreateOrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutApplicationService.ChargeStoredMethod")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", req.TenantID),
		attribute.String("payment_method", req.PaymentMethod),
	)

	if req.PaymentTokenID == "" {
		err := fmt.Errorf("payment token id is required for merchant-initiated charge")
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	return s.CreateOrder(ctx, &CreateOrderRequest{
		TenantID:            req.TenantID,
		OrderReference:      req.OrderReference,
		Action:              "charge",
		Currency:            req.Currency,
		TotalMinorUnits:     req.TotalMinorUnits,
		PaymentMethod:       req.PaymentMethod,
		ReturnBuyerTokenID:  req.PaymentTokenID,
		IsMerchantInitiated: true,
		SoftDescriptor:      req.SoftDescriptor,
		IdempotencyKey:      req.IdempotencyKey,
	})
}

// UpdateOrderAmount 配送先変更コールバックなどによる注文金額の変更をプロセッサへ反映する
func (s *CheckoutApplicationService) UpdateOrderAmount(ctx context.Context, req *UpdateOrderAmountRequest) error {
	ctx, span := s.tracer.Start(ctx, "CheckoutApplicationService.UpdateOrderAmount")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", req.TenantID),
		attribute.String("order_id", req.OrderID),
	)

	cfg, err := s.merchantRepo.FindByTenantID(ctx, req.TenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	total, err := money.NewAmount(req.Currency, req.TotalMinorUnits)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	breakdown, _, err := s.buildBreakdown(ctx, &CreateOrderRequest{
		OrderReference:      req.OrderID,
		Currency:            req.Currency,
		ItemTotalMinorUnits: req.ItemTotalMinorUnits,
		ShippingMinorUnits:  req.ShippingMinorUnits,
		TaxMinorUnits:       req.TaxMinorUnits,
	}, total)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	if err := s.orderClient.UpdateOrderAmount(ctx, cfg, req.OrderID, total, breakdown); err != nil {
		s.logger.Error(ctx, "Failed to update order amount", err, map[string]interface{}{
			"tenant_id": req.TenantID,
			"order_id":  req.OrderID,
		})
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	span.SetStatus(otelcodes.Ok, "order amount updated")
	return nil
}

// CaptureOrder 買い手承認済みの注文の売上を確定する
func (s *CheckoutApplicationService) CaptureOrder(ctx context.Context, tenantID, orderID string) (*OrderActionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutApplicationService.CaptureOrder")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("order_id", orderID),
	)

	cfg, err := s.merchantRepo.FindByTenantID(ctx, tenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	captured, err := s.orderClient.CaptureOrder(ctx, cfg, orderID)
	if err != nil {
		s.logger.Error(ctx, "Failed to capture order", err, map[string]interface{}{
			"tenant_id": tenantID,
			"order_id":  orderID,
		})
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	status := order.InterpretProcessorStatus(captured.Status)
	s.metrics.RecordOrder(ctx, order.IntentCapture.String(), status.String())
	span.SetStatus(otelcodes.Ok, "order captured")

	return &OrderActionResponse{
		OrderID:   captured.ID,
		Status:    status.String(),
		CaptureID: captured.CaptureID,
	}, nil
}

// AuthorizeOrder 買い手承認済みの注文のオーソリを確定する
func (s *CheckoutApplicationService) AuthorizeOrder(ctx context.Context, tenantID, orderID string) (*OrderActionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutApplicationService.AuthorizeOrder")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("order_id", orderID),
	)

	cfg, err := s.merchantRepo.FindByTenantID(ctx, tenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	authorized, err := s.orderClient.AuthorizeOrder(ctx, cfg, orderID)
	if err != nil {
		s.logger.Error(ctx, "Failed to authorize order", err, map[string]interface{}{
			"tenant_id": tenantID,
			"order_id":  orderID,
		})
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	status := order.InterpretProcessorStatus(authorized.Status)
	s.metrics.RecordOrder(ctx, order.IntentAuthorize.String(), status.String())
	span.SetStatus(otelcodes.Ok, "order authorized")

	return &OrderActionResponse{
		OrderID:   authorized.ID,
		Status:    status.String(),
		CaptureID: authorized.CaptureID,
	}, nil
}
