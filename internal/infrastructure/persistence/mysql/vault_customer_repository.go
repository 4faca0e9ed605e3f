package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"paygate-server/internal/domain/vault"
)

// 一意制約違反のMySQLエラー番号
const mysqlErrDuplicateEntry = 1062

// VaultCustomerRepository MySQL実装のCustomerMappingRepository
type VaultCustomerRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewVaultCustomerRepository 新しいVaultCustomerRepositoryを作成
func NewVaultCustomerRepository(db *DB) *VaultCustomerRepository {
	return &VaultCustomerRepository{
		db:     db,
		tracer: otel.Tracer("vault-customer-repository"),
	}
}

// FindByTenantAndUser テナントIDとユーザーIDで顧客マッピングを取得
func (r *VaultCustomerRepository) FindByTenantAndUser(ctx context.Context, tenantID, platformUserID string) (*vault.CustomerMapping, error) {
	ctx, span := r.tracer.Start(ctx, "VaultCustomerRepository.FindByTenantAndUser")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.tenant_id", tenantID),
		attribute.String("db.platform_user_id", platformUserID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "vault_customers"),
	)

	query := `
		SELECT tenant_id, platform_user_id, processor_customer_id, created_at
		FROM vault_customers
		WHERE tenant_id = ? AND platform_user_id = ?
	`

	var dbTenantID string
	var dbPlatformUserID string
	var processorCustomerID string
	var createdAt time.Time

	err := r.db.QueryRowContext(ctx, query, tenantID, platformUserID).Scan(
		&dbTenantID,
		&dbPlatformUserID,
		&processorCustomerID,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "mapping not found")
		return nil, vault.ErrMappingNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find vault customer mapping: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "mapping found")

	return vault.ReconstructCustomerMapping(dbTenantID, dbPlatformUserID, processorCustomerID, createdAt), nil
}

// Create 新しい顧客マッピングを作成
// (tenant_id, platform_user_id)の一意制約により、並行作成は片方だけが成功し
// もう一方にはErrMappingAlreadyExistsが返る
func (r *VaultCustomerRepository) Create(ctx context.Context, mapping *vault.CustomerMapping) error {
	ctx, span := r.tracer.Start(ctx, "VaultCustomerRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.tenant_id", mapping.TenantID()),
		attribute.String("db.platform_user_id", mapping.PlatformUserID()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "vault_customers"),
	)

	query := `
		INSERT INTO vault_customers (tenant_id, platform_user_id, processor_customer_id)
		VALUES (?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		mapping.TenantID(),
		mapping.PlatformUserID(),
		mapping.ProcessorCustomerID(),
	)

	if err != nil {
		var mysqlErr *mysqldriver.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
			span.SetStatus(otelcodes.Ok, "mapping already exists")
			return vault.ErrMappingAlreadyExists
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to create vault customer mapping: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "mapping created")
	return nil
}
