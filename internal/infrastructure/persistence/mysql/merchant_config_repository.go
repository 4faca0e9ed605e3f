package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"paygate-server/internal/domain/merchant"
)

// MerchantConfigRepository MySQL実装のConfigRepository
type MerchantConfigRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewMerchantConfigRepository 新しいMerchantConfigRepositoryを作成
func NewMerchantConfigRepository(db *DB) *MerchantConfigRepository {
	return &MerchantConfigRepository{
		db:     db,
		tracer: otel.Tracer("merchant-config-repository"),
	}
}

// FindByTenantID テナントIDで設定を取得
func (r *MerchantConfigRepository) FindByTenantID(ctx context.Context, tenantID string) (*merchant.Config, error) {
	ctx, span := r.tracer.Start(ctx, "MerchantConfigRepository.FindByTenantID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.tenant_id", tenantID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "merchant_configs"),
	)

	query := `
		SELECT tenant_id, client_id, client_secret, environment, merchant_id, webhook_id, partner_fee_percent, updated_at
		FROM merchant_configs
		WHERE tenant_id = ?
	`

	var dbTenantID string
	var clientID string
	var clientSecret string
	var environment string
	var merchantID sql.NullString
	var webhookID sql.NullString
	var partnerFeePercent float64
	var updatedAt time.Time

	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(
		&dbTenantID,
		&clientID,
		&clientSecret,
		&environment,
		&merchantID,
		&webhookID,
		&partnerFeePercent,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "config not found")
		return nil, merchant.ErrConfigNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find merchant config: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "config found")

	return merchant.ReconstructConfig(
		dbTenantID,
		clientID,
		clientSecret,
		merchant.Environment(environment),
		merchantID.String,
		webhookID.String,
		partnerFeePercent,
		updatedAt,
	), nil
}
