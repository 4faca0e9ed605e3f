package handler

import (
	"net/http"

	vaultingapp "paygate-server/internal/application/vaulting"

	"github.com/labstack/echo/v4"
)

// VaultHandler 決済手段保管関連ハンドラー
type VaultHandler struct {
	vaultService *vaultingapp.VaultApplicationService
}

// NewVaultHandler 新しいVaultHandlerを作成
func NewVaultHandler(vaultService *vaultingapp.VaultApplicationService) *VaultHandler {
	return &VaultHandler{
		vaultService: vaultService,
	}
}

// buyerIdentity トークンからtenant_idとuser_idを取り出す
func buyerIdentity(c echo.Context) (string, string, error) {
	tenantID, ok := c.Get("tenant_id").(string)
	if !ok || tenantID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "tenant_id not found in token")
	}
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}
	return tenantID, userID, nil
}

// CreateSetupToken セットアップトークン作成ハンドラー
// @Summary セットアップトークンを作成
// @Description 決済手段を保存するためのセットアップトークンを作成します
// @Tags vault
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CreateSetupTokenRequest true "セットアップトークン作成リクエスト"
// @Success 200 {object} SetupTokenResponse "作成成功"
// @Failure 400 {object} middleware.ErrorResponse "不正なリクエスト"
// @Failure 401 {object} middleware.ErrorResponse "認証エラー"
// @Router /vault/setup-tokens [post]
func (h *VaultHandler) CreateSetupToken(c echo.Context) error {
	tenantID, userID, err := buyerIdentity(c)
	if err != nil {
		return err
	}

	var reqBody CreateSetupTokenRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.vaultService.CreateSetupToken(c.Request().Context(), &vaultingapp.CreateSetupTokenRequest{
		TenantID:       tenantID,
		PlatformUserID: userID,
		PaymentMethod:  reqBody.PaymentMethod,
		ReturnURL:      reqBody.ReturnURL,
		CancelURL:      reqBody.CancelURL,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toSetupTokenResponse(resp))
}

// GetSetupToken セットアップトークン取得ハンドラー
// @Summary セットアップトークンを取得
// @Description セットアップトークンの現在の状態を取得します
// @Tags vault
// @Produce json
// @Security Bearer
// @Param setup_token_id path string true "セットアップトークンID"
// @Success 200 {object} SetupTokenResponse "取得成功"
// @Failure 401 {object} middleware.ErrorResponse "認証エラー"
// @Router /vault/setup-tokens/{setup_token_id} [get]
func (h *VaultHandler) GetSetupToken(c echo.Context) error {
	tenantID, _, err := buyerIdentity(c)
	if err != nil {
		return err
	}

	resp, err := h.vaultService.GetSetupToken(c.Request().Context(), tenantID, c.Param("setup_token_id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toSetupTokenResponse(resp))
}

// MintPaymentToken 決済トークン発行ハンドラー
// @Summary 決済トークンを発行
// @Description 買い手が承認したセットアップトークンから永続的な決済トークンを発行します
// @Tags vault
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body MintPaymentTokenRequest true "決済トークン発行リクエスト"
// @Success 200 {object} PaymentTokenResponse "発行成功"
// @Failure 401 {object} middleware.ErrorResponse "認証エラー"
// @Failure 412 {object} middleware.ErrorResponse "セットアップトークンが未承認"
// @Router /vault/payment-tokens [post]
func (h *VaultHandler) MintPaymentToken(c echo.Context) error {
	tenantID, _, err := buyerIdentity(c)
	if err != nil {
		return err
	}

	var reqBody MintPaymentTokenRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if reqBody.SetupTokenID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "setup_token_id is required")
	}

	resp, err := h.vaultService.MintPaymentToken(c.Request().Context(), tenantID, reqBody.SetupTokenID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toPaymentTokenResponse(resp))
}

// ListPaymentTokens 決済トークン一覧ハンドラー
// @Summary 保存済み決済トークンの一覧を取得
// @Description ログイン中の買い手の保存済み決済トークンを一覧します
// @Tags vault
// @Produce json
// @Security Bearer
// @Success 200 {object} PaymentTokenListResponse "取得成功"
// @Failure 401 {object} middleware.ErrorResponse "認証エラー"
// @Router /vault/payment-tokens [get]
func (h *VaultHandler) ListPaymentTokens(c echo.Context) error {
	tenantID, userID, err := buyerIdentity(c)
	if err != nil {
		return err
	}

	tokens, err := h.vaultService.ListTokens(c.Request().Context(), tenantID, userID)
	if err != nil {
		return err
	}

	resp := PaymentTokenListResponse{
		Tokens: make([]PaymentTokenResponse, len(tokens)),
	}
	for i, token := range tokens {
		resp.Tokens[i] = *toPaymentTokenResponse(token)
	}

	return c.JSON(http.StatusOK, resp)
}

// DeletePaymentToken 決済トークン削除ハンドラー
// @Summary 決済トークンを削除
// @Description 保存済み決済トークンを失効させます
// @Tags vault
// @Security Bearer
// @Param payment_token_id path string true "決済トークンID"
// @Success 204 "削除成功"
// @Failure 401 {object} middleware.ErrorResponse "認証エラー"
// @Router /vault/payment-tokens/{payment_token_id} [delete]
func (h *VaultHandler) DeletePaymentToken(c echo.Context) error {
	tenantID, _, err := buyerIdentity(c)
	if err != nil {
		return err
	}

	if err := h.vaultService.DeleteToken(c.Request().Context(), tenantID, c.Param("payment_token_id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// toSetupTokenResponse アプリケーション層のレスポンスをAPIレスポンスに変換する
func toSetupTokenResponse(resp *vaultingapp.SetupTokenResponse) SetupTokenResponse {
	return SetupTokenResponse{
		ID:            resp.ID,
		Status:        resp.Status,
		PaymentMethod: resp.PaymentMethod,
		ApprovalURL:   resp.ApprovalURL,
	}
}

// toPaymentTokenResponse アプリケーション層のレスポンスをAPIレスポンスに変換する
func toPaymentTokenResponse(resp *vaultingapp.PaymentTokenResponse) *PaymentTokenResponse {
	out := &PaymentTokenResponse{
		ID:            resp.ID,
		PaymentMethod: resp.PaymentMethod,
	}
	if resp.Card != nil {
		out.Card = &CardDetails{
			Brand:      resp.Card.Brand,
			LastDigits: resp.Card.LastDigits,
			ExpiryDate: resp.Card.ExpiryDate,
		}
	}
	return out
}
