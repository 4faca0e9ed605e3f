package mysql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"paygate-server/internal/domain/webhook"
)

func TestWebhookEventRepository_MarkProcessed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &WebhookEventRepository{
		db:     &DB{DB: db},
		tracer: otel.Tracer("test"),
	}

	tests := []struct {
		name      string
		setupMock func()
		wantError bool
		errorType error
	}{
		{
			name: "正常系: 初回配送を記録できる",
			setupMock: func() {
				mock.ExpectExec(`INSERT INTO processed_webhook_events`).
					WithArgs("tx-1", "WH-EVT-1", "PAYMENT.CAPTURE.COMPLETED").
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "異常系: 再配送はErrEventAlreadyProcessed",
			setupMock: func() {
				mock.ExpectExec(`INSERT INTO processed_webhook_events`).
					WithArgs("tx-1", "WH-EVT-1", "PAYMENT.CAPTURE.COMPLETED").
					WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})
			},
			wantError: true,
			errorType: webhook.ErrEventAlreadyProcessed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			err := repo.MarkProcessed(context.Background(), "tx-1", "WH-EVT-1", "PAYMENT.CAPTURE.COMPLETED")
			if tt.wantError {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.errorType)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
