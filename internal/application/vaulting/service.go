package vaulting

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"paygate-server/internal/domain/merchant"
	"paygate-server/internal/domain/paymentmethod"
	"paygate-server/internal/domain/vault"
	otelinfra "paygate-server/internal/infrastructure/observability/otel"
)

const (
	// cardVerificationMethod カード登録時のSCA検証方式
	cardVerificationMethod = "SCA_WHEN_REQUIRED"
	// walletUsageType paypal/venmo登録時の利用種別
	walletUsageType = "MERCHANT"
)

// VaultApplicationService Vaultアプリケーションサービス
type VaultApplicationService struct {
	merchantRepo merchant.ConfigRepository
	customerRepo vault.CustomerMappingRepository
	tokenVault   vault.TokenVault
	logger       *otelinfra.Logger
	metrics      *otelinfra.Metrics
	tracer       trace.Tracer
}

// NewVaultApplicationService 新しいVaultApplicationServiceを作成
func NewVaultApplicationService(
	merchantRepo merchant.ConfigRepository,
	customerRepo vault.CustomerMappingRepository,
	tokenVault vault.TokenVault,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *VaultApplicationService {
	return &VaultApplicationService{
		merchantRepo: merchantRepo,
		customerRepo: customerRepo,
		tokenVault:   tokenVault,
		logger:       logger,
		metrics:      metrics,
		tracer:       otel.Tracer("vault-service"),
	}
}

// GetOrCreateCustomer テナント内ユーザーのVault顧客マッピングを取得または作成する
// 並行作成で片方が一意制約に当たった場合は既存のマッピングを読み直して成功として扱う
func (s *VaultApplicationService) GetOrCreateCustomer(ctx context.Context, tenantID, platformUserID string) (*vault.CustomerMapping, error) {
	ctx, span := s.tracer.Start(ctx, "VaultApplicationService.GetOrCreateCustomer")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("platform_user_id", platformUserID),
	)

	existing, err := s.customerRepo.FindByTenantAndUser(ctx, tenantID, platformUserID)
	if err == nil {
		span.SetStatus(otelcodes.Ok, "mapping found")
		return existing, nil
	}
	if !errors.Is(err, vault.ErrMappingNotFound) {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	mapping, err := vault.NewCustomerMapping(tenantID, platformUserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	if err := s.customerRepo.Create(ctx, mapping); err != nil {
		if errors.Is(err, vault.ErrMappingAlreadyExists) {
			// 並行作成に負けた: 勝った側のマッピングを読み直す
			return s.customerRepo.FindByTenantAndUser(ctx, tenantID, platformUserID)
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	s.logger.Info(ctx, "Created vault customer mapping", map[string]interface{}{
		"tenant_id":        tenantID,
		"platform_user_id": platformUserID,
	})
	span.SetStatus(otelcodes.Ok, "mapping created")
	return mapping, nil
}

// CreateSetupToken 決済手段保存のためのセットアップトークンを作成する
// 買い手が特定できないリクエストはプロセッサを呼ぶ前に拒否する
func (s *VaultApplicationService) CreateSetupToken(ctx context.Context, req *CreateSetupTokenRequest) (*SetupTokenResponse, error) {
	ctx, span := s.tracer.Start(ctx, "VaultApplicationService.CreateSetupToken")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", req.TenantID),
		attribute.String("payment_method", req.PaymentMethod),
	)

	if req.PlatformUserID == "" {
		err := vault.ErrBuyerNotIdentified
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

	cfg, err := s.merchantRepo.FindByTenantID(ctx, req.TenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	mapping, err := s.GetOrCreateCustomer(ctx, req.TenantID, req.PlatformUserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	input := vault.CreateSetupTokenInput{
		CustomerID: mapping.ProcessorCustomerID(),
		Kind:       kind,
		ReturnURL:  req.ReturnURL,
		CancelURL:  req.CancelURL,
	}
	switch {
	case kind == paymentmethod.KindCard:
		input.VerificationMethod = cardVerificationMethod
	case kind.RequiresExperienceContext():
		input.UsageType = walletUsageType
	}

	token, err := s.tokenVault.CreateSetupToken(ctx, cfg, input)
	if err != nil {
		s.logger.Error(ctx, "Failed to create setup token", err, map[string]interface{}{
			"tenant_id":      req.TenantID,
			"payment_method": req.PaymentMethod,
		})
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	s.metrics.RecordVaultOperation(ctx, "create_setup_token", kind.String())
	span.SetAttributes(attribute.String("setup_token_id", token.ID()))
	span.SetStatus(otelcodes.Ok, "setup token created")

	return &SetupTokenResponse{
		ID:            token.ID(),
		Status:        token.Status().String(),
		PaymentMethod: token.Kind().String(),
		ApprovalURL:   token.ApprovalURL(),
	}, nil
}

// GetSetupToken セットアップトークンの現在の状態を取得する
func (s *VaultApplicationService) GetSetupToken(ctx context.Context, tenantID, setupTokenID string) (*SetupTokenResponse, error) {
	ctx, span := s.tracer.Start(ctx, "VaultApplicationService.GetSetupToken")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("setup_token_id", setupTokenID),
	)

	cfg, err := s.merchantRepo.FindByTenantID(ctx, tenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	token, err := s.tokenVault.GetSetupToken(ctx, cfg, setupTokenID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(otelcodes.Ok, "setup token fetched")
	return &SetupTokenResponse{
		ID:            token.ID(),
		Status:        token.Status().String(),
		PaymentMethod: token.Kind().String(),
		ApprovalURL:   token.ApprovalURL(),
	}, nil
}

// MintPaymentToken 承認済みセットアップトークンから永続的な決済トークンを発行する
// 未承認によるErrSetupTokenNotApprovedはそのまま返し、自動リトライはしない
// （承認はプロセッサ側の買い手操作でのみ進むため、待っても状態は変わらない）
func (s *VaultApplicationService) MintPaymentToken(ctx context.Context, tenantID, setupTokenID string) (*PaymentTokenResponse, error) {
	ctx, span := s.tracer.Start(ctx, "VaultApplicationService.MintPaymentToken")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("setup_token_id", setupTokenID),
	)

	cfg, err := s.merchantRepo.FindByTenantID(ctx, tenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	token, err := s.tokenVault.CreatePaymentToken(ctx, cfg, setupTokenID)
	if err != nil {
		if errors.Is(err, vault.ErrSetupTokenNotApproved) {
			span.SetStatus(otelcodes.Ok, "setup token not approved")
			return nil, err
		}
		s.logger.Error(ctx, "Failed to mint payment token", err, map[string]interface{}{
			"tenant_id":      tenantID,
			"setup_token_id": setupTokenID,
		})
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	s.metrics.RecordVaultOperation(ctx, "mint_payment_token", token.Kind().String())
	span.SetAttributes(attribute.String("payment_token_id", token.ID()))
	span.SetStatus(otelcodes.Ok, "payment token minted")

	return toPaymentTokenResponse(token), nil
}

// ListTokens テナント内ユーザーの保存済み決済トークンを一覧取得する
// マッピングが存在しないユーザーは保存済みの決済手段を持たないため空を返す
func (s *VaultApplicationService) ListTokens(ctx context.Context, tenantID, platformUserID string) ([]*PaymentTokenResponse, error) {
	ctx, span := s.tracer.Start(ctx, "VaultApplicationService.ListTokens")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("platform_user_id", platformUserID),
	)

	mapping, err := s.customerRepo.FindByTenantAndUser(ctx, tenantID, platformUserID)
	if err != nil {
		if errors.Is(err, vault.ErrMappingNotFound) {
			span.SetStatus(otelcodes.Ok, "no mapping, empty list")
			return []*PaymentTokenResponse{}, nil
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	cfg, err := s.merchantRepo.FindByTenantID(ctx, tenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	tokens, err := s.tokenVault.ListPaymentTokens(ctx, cfg, mapping.ProcessorCustomerID())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	responses := make([]*PaymentTokenResponse, 0, len(tokens))
	for _, token := range tokens {
		responses = append(responses, toPaymentTokenResponse(token))
	}

	span.SetAttributes(attribute.Int("token_count", len(responses)))
	span.SetStatus(otelcodes.Ok, "tokens listed")
	return responses, nil
}

// DeleteToken 保存済み決済トークンを削除する
func (s *VaultApplicationService) DeleteToken(ctx context.Context, tenantID, tokenID string) error {
	ctx, span := s.tracer.Start(ctx, "VaultApplicationService.DeleteToken")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("payment_token_id", tokenID),
	)

	cfg, err := s.merchantRepo.FindByTenantID(ctx, tenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	if err := s.tokenVault.DeletePaymentToken(ctx, cfg, tokenID); err != nil {
		s.logger.Error(ctx, "Failed to delete payment token", err, map[string]interface{}{
			"tenant_id":        tenantID,
			"payment_token_id": tokenID,
		})
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	s.metrics.RecordVaultOperation(ctx, "delete_payment_token", "")
	span.SetStatus(otelcodes.Ok, "payment token deleted")
	return nil
}

// toPaymentTokenResponse ドメインのPaymentTokenをレスポンスに変換する
func toPaymentTokenResponse(token *vault.PaymentToken) *PaymentTokenResponse {
	resp := &PaymentTokenResponse{
		ID:            token.ID(),
		PaymentMethod: token.Kind().String(),
	}
	if d := token.DisplayDetails(); d != nil {
		resp.Card = &CardDetails{
			Brand:      d.Brand,
			LastDigits: d.LastDigits,
			ExpiryDate: d.ExpiryDate,
		}
	}
	return resp
}
