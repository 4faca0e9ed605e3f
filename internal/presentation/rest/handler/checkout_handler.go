package handler

import (
	"net/http"
	"strconv"

	checkoutapp "paygate-server/internal/application/checkout"
	vaultingapp "paygate-server/internal/application/vaulting"
	"paygate-server/internal/domain/vault"

	"github.com/labstack/echo/v4"
)

// CheckoutHandler 注文関連ハンドラー
type CheckoutHandler struct {
	checkoutService *checkoutapp.CheckoutApplicationService
	vaultService    *vaultingapp.VaultApplicationService
}

// NewCheckoutHandler 新しいCheckoutHandlerを作成
func NewCheckoutHandler(checkoutService *checkoutapp.CheckoutApplicationService, vaultService *vaultingapp.VaultApplicationService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		vaultService:    vaultService,
	}
}

// CreateOrder 注文作成ハンドラー
// @Summary 注文を作成
// @Description 決済プロセッサに注文を作成し、買い手の承認URLを返します
// @Tags checkout
// @Accept json
// @Produce json
// @Param tenant_id path string true "テナントID"
// @Param Idempotency-Key header string false "冪等キー"
// @Param request body CreateOrderRequest true "注文作成リクエスト"
// @Success 200 {object} CreateOrderResponse "注文作成成功"
// @Failure 400 {object} middleware.ErrorResponse "不正なリクエスト"
// @Failure 422 {object} middleware.ErrorResponse "プロセッサによる拒否"
// @Router /tenants/{tenant_id}/checkout/orders [post]
func (h *CheckoutHandler) CreateOrder(c echo.Context) error {
	tenantID := c.Param("tenant_id")
	if tenantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant_id is required")
	}

	var reqBody CreateOrderRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	total, err := parseAmount(reqBody.Total)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid total format")
	}
	itemTotal, err := parseAmount(reqBody.ItemTotal)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item_total format")
	}
	shippingTotal, err := parseAmount(reqBody.ShippingTotal)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid shipping_total format")
	}
	taxTotal, err := parseAmount(reqBody.TaxTotal)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tax_total format")
	}

	req := &checkoutapp.CreateOrderRequest{
		TenantID:            tenantID,
		OrderReference:      reqBody.OrderReference,
		Action:              reqBody.Action,
		Currency:            reqBody.Currency,
		TotalMinorUnits:     total,
		ItemTotalMinorUnits: itemTotal,
		ShippingMinorUnits:  shippingTotal,
		TaxMinorUnits:       taxTotal,
		PaymentMethod:       reqBody.PaymentMethod,
		VaultIntent:         reqBody.Vault,
		ReturnBuyerTokenID:  reqBody.PaymentTokenID,
		IsMerchantInitiated: reqBody.MerchantInitiated,
		HostedCardFields:    reqBody.HostedFields,
		RequiresShipping:    reqBody.RequiresShipping,
		SoftDescriptor:      reqBody.SoftDescriptor,
		IdempotencyKey:      c.Request().Header.Get("Idempotency-Key"),
	}

	for _, item := range reqBody.LineItems {
		unitAmount, err := parseAmount(item.UnitAmount)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid unit_amount format")
		}
		req.LineItems = append(req.LineItems, checkoutapp.LineItemInput{
			Name:                item.Name,
			Quantity:            item.Quantity,
			UnitAmountMinorUnit: unitAmount,
		})
	}

	if reqBody.Payer != nil {
		req.Payer = &checkoutapp.PayerInput{
			Email:     reqBody.Payer.Email,
			GivenName: reqBody.Payer.GivenName,
			Surname:   reqBody.Payer.Surname,
		}
	}
	if reqBody.Shipping != nil {
		req.Shipping = toShippingInput(reqBody.Shipping)
	}

	// 保管を希望する場合はログイン中の買い手をプロセッサ側の顧客に解決する
	if reqBody.Vault || reqBody.PaymentTokenID != "" {
		userID, ok := c.Get("user_id").(string)
		if !ok || userID == "" {
			return vault.ErrBuyerNotIdentified
		}
		mapping, err := h.vaultService.GetOrCreateCustomer(c.Request().Context(), tenantID, userID)
		if err != nil {
			return err
		}
		req.VaultCustomerID = mapping.ProcessorCustomerID()
	}

	resp, err := h.checkoutService.CreateOrder(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, CreateOrderResponse{
		OrderID:     resp.OrderID,
		Status:      resp.Status,
		ApprovalURL: resp.ApprovalURL,
		FailureCode: resp.FailureCode,
	})
}

// CaptureOrder 注文キャプチャハンドラー
// @Summary 承認済み注文を売上確定
// @Description 買い手が承認した注文をキャプチャします
// @Tags checkout
// @Produce json
// @Param tenant_id path string true "テナントID"
// @Param order_id path string true "注文ID"
// @Success 200 {object} OrderActionResponse "キャプチャ成功"
// @Failure 422 {object} middleware.ErrorResponse "プロセッサによる拒否"
// @Router /tenants/{tenant_id}/checkout/orders/{order_id}/capture [post]
func (h *CheckoutHandler) CaptureOrder(c echo.Context) error {
	tenantID := c.Param("tenant_id")
	orderID := c.Param("order_id")
	if tenantID == "" || orderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant_id and order_id are required")
	}

	resp, err := h.checkoutService.CaptureOrder(c.Request().Context(), tenantID, orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, OrderActionResponse{
		OrderID:   resp.OrderID,
		Status:    resp.Status,
		CaptureID: resp.CaptureID,
	})
}

// AuthorizeOrder 注文オーソリ確定ハンドラー
// @Summary 承認済み注文をオーソリ
// @Description 買い手が承認した注文の与信枠を確保します
// @Tags checkout
// @Produce json
// @Param tenant_id path string true "テナントID"
// @Param order_id path string true "注文ID"
// @Success 200 {object} OrderActionResponse "オーソリ成功"
// @Failure 422 {object} middleware.ErrorResponse "プロセッサによる拒否"
// @Router /tenants/{tenant_id}/checkout/orders/{order_id}/authorize [post]
func (h *CheckoutHandler) AuthorizeOrder(c echo.Context) error {
	tenantID := c.Param("tenant_id")
	orderID := c.Param("order_id")
	if tenantID == "" || orderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant_id and order_id are required")
	}

	resp, err := h.checkoutService.AuthorizeOrder(c.Request().Context(), tenantID, orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, OrderActionResponse{
		OrderID:   resp.OrderID,
		Status:    resp.Status,
		CaptureID: resp.CaptureID,
	})
}

// UpdateOrderAmount 注文金額更新ハンドラー
// @Summary 注文金額を更新
// @Description 配送先変更などで変わった注文金額をプロセッサへ反映します
// @Tags checkout
// @Accept json
// @Produce json
// @Param tenant_id path string true "テナントID"
// @Param order_id path string true "注文ID"
// @Param request body UpdateOrderAmountRequest true "注文金額更新リクエスト"
// @Success 204 "更新成功"
// @Failure 400 {object} middleware.ErrorResponse "不正なリクエスト"
// @Failure 422 {object} middleware.ErrorResponse "プロセッサによる拒否"
// @Router /tenants/{tenant_id}/checkout/orders/{order_id}/amount [patch]
func (h *CheckoutHandler) UpdateOrderAmount(c echo.Context) error {
	tenantID := c.Param("tenant_id")
	orderID := c.Param("order_id")
	if tenantID == "" || orderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant_id and order_id are required")
	}

	var reqBody UpdateOrderAmountRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	total, err := parseAmount(reqBody.Total)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid total format")
	}
	itemTotal, err := parseAmount(reqBody.ItemTotal)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item_total format")
	}
	shippingTotal, err := parseAmount(reqBody.ShippingTotal)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid shipping_total format")
	}
	taxTotal, err := parseAmount(reqBody.TaxTotal)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tax_total format")
	}

	if err := h.checkoutService.UpdateOrderAmount(c.Request().Context(), &checkoutapp.UpdateOrderAmountRequest{
		TenantID:            tenantID,
		OrderID:             orderID,
		Currency:            reqBody.Currency,
		TotalMinorUnits:     total,
		ItemTotalMinorUnits: itemTotal,
		ShippingMinorUnits:  shippingTotal,
		TaxMinorUnits:       taxTotal,
	}); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// ChargeStoredMethod 保存済み決済手段による課金ハンドラー
// @Summary 保存済み決済手段でマーチャント起点課金
// @Description サブスクリプション更新など、買い手不在で保存済み決済手段に課金します
// @Tags internal
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param tenant_id path string true "テナントID"
// @Param request body ChargeStoredMethodRequest true "課金リクエスト"
// @Success 200 {object} CreateOrderResponse "課金成功"
// @Failure 422 {object} middleware.ErrorResponse "プロセッサによる拒否"
// @Router /internal/tenants/{tenant_id}/charges [post]
func (h *CheckoutHandler) ChargeStoredMethod(c echo.Context) error {
	tenantID := c.Param("tenant_id")
	if tenantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant_id is required")
	}

	var reqBody ChargeStoredMethodRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	total, err := parseAmount(reqBody.Total)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid total format")
	}

	resp, err := h.checkoutService.ChargeStoredMethod(c.Request().Context(), &checkoutapp.ChargeStoredMethodRequest{
		TenantID:        tenantID,
		OrderReference:  reqBody.OrderReference,
		Currency:        reqBody.Currency,
		TotalMinorUnits: total,
		PaymentMethod:   reqBody.PaymentMethod,
		PaymentTokenID:  reqBody.PaymentTokenID,
		SoftDescriptor:  reqBody.SoftDescriptor,
		IdempotencyKey:  c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, CreateOrderResponse{
		OrderID:     resp.OrderID,
		Status:      resp.Status,
		ApprovalURL: resp.ApprovalURL,
		FailureCode: resp.FailureCode,
	})
}

// parseAmount 最小通貨単位の金額文字列をint64に変換する（空文字は0）
func parseAmount(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

// toShippingInput 配送先のリクエストボディをアプリケーション層の入力に変換する
func toShippingInput(s *Shipping) *checkoutapp.ShippingInput {
	input := &checkoutapp.ShippingInput{
		RecipientName: s.RecipientName,
	}
	if s.Address != nil {
		input.Address = &checkoutapp.AddressInput{
			Line1:       s.Address.Line1,
			Line2:       s.Address.Line2,
			City:        s.Address.City,
			State:       s.Address.State,
			PostalCode:  s.Address.PostalCode,
			CountryCode: s.Address.CountryCode,
		}
	}
	return input
}
