package order

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygate-server/internal/domain/money"
)

func TestBreakdown_Matches(t *testing.T) {
	tests := []struct {
		name      string
		itemTotal int64
		shipping  int64
		taxTotal  int64
		total     int64
		want      bool
	}{
		{
			name:      "正常系: 合計が一致する場合",
			itemTotal: 4000,
			shipping:  200,
			taxTotal:  0,
			total:     4200,
			want:      true,
		},
		{
			name:      "正常系: 2セント以内の誤差は許容",
			itemTotal: 4000,
			shipping:  199,
			taxTotal:  0,
			total:     4200,
			want:      true,
		},
		{
			name:      "正常系: 3ドルの不一致は不許容",
			itemTotal: 4000,
			shipping:  500,
			taxTotal:  0,
			total:     4200,
			want:      false,
		},
		{
			name:      "正常系: 税込みで一致",
			itemTotal: 3800,
			shipping:  200,
			taxTotal:  200,
			total:     4200,
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Breakdown{
				ItemTotal: money.MustNewAmount("USD", tt.itemTotal),
				Shipping:  money.MustNewAmount("USD", tt.shipping),
				TaxTotal:  money.MustNewAmount("USD", tt.taxTotal),
			}
			assert.Equal(t, tt.want, b.Matches(money.MustNewAmount("USD", tt.total)))
		})
	}
}

func TestBreakdown_Total(t *testing.T) {
	t.Run("正常系: 内訳の合計を計算できる", func(t *testing.T) {
		b := Breakdown{
			ItemTotal: money.MustNewAmount("USD", 4000),
			Shipping:  money.MustNewAmount("USD", 200),
			TaxTotal:  money.MustNewAmount("USD", 100),
		}
		total, err := b.Total()
		require.NoError(t, err)
		assert.Equal(t, int64(4300), total.MinorUnits())
	})

	t.Run("異常系: 通貨が混在している場合はエラー", func(t *testing.T) {
		b := Breakdown{
			ItemTotal: money.MustNewAmount("USD", 4000),
			Shipping:  money.MustNewAmount("JPY", 200),
			TaxTotal:  money.MustNewAmount("USD", 100),
		}
		_, err := b.Total()
		assert.Error(t, err)
	})
}

func TestNormalizeSoftDescriptor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "正常系: そのまま使える長さ",
			input: "MYSHOP ORDER",
			want:  "MYSHOP ORDER",
		},
		{
			name:  "正常系: 前後の空白はトリムされる",
			input: "  MYSHOP  ",
			want:  "MYSHOP",
		},
		{
			name:  "正常系: 22文字に切り詰められる",
			input: strings.Repeat("A", 30),
			want:  strings.Repeat("A", 22),
		},
		{
			name:  "正常系: マルチバイト文字も文字単位で切り詰める",
			input: strings.Repeat("店", 30),
			want:  strings.Repeat("店", 22),
		},
		{
			name:  "正常系: 空文字は空のまま",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSoftDescriptor(tt.input))
		})
	}
}

func TestDetermineShippingPreference(t *testing.T) {
	addr := &Address{Line1: "1 Main St", City: "SF", CountryCode: "US"}

	tests := []struct {
		name             string
		requiresShipping bool
		shipping         *Shipping
		shippingCost     money.Amount
		want             string
	}{
		{
			name:             "正常系: デジタル商品はNO_SHIPPING",
			requiresShipping: false,
			shipping:         nil,
			shippingCost:     money.MustNewAmount("USD", 0),
			want:             ShippingPreferenceNoShipping,
		},
		{
			name:             "正常系: 住所が分かる場合はSET_PROVIDED_ADDRESS",
			requiresShipping: true,
			shipping:         &Shipping{RecipientName: "Taro", Address: addr},
			shippingCost:     money.MustNewAmount("USD", 200),
			want:             ShippingPreferenceProvided,
		},
		{
			name:             "正常系: 配送が必要で住所不明の場合はGET_FROM_FILE",
			requiresShipping: true,
			shipping:         nil,
			shippingCost:     money.MustNewAmount("USD", 0),
			want:             ShippingPreferenceFromFile,
		},
		{
			name:             "正常系: 送料があるだけでもNO_SHIPPINGにはしない",
			requiresShipping: false,
			shipping:         nil,
			shippingCost:     money.MustNewAmount("USD", 200),
			want:             ShippingPreferenceFromFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineShippingPreference(tt.requiresShipping, tt.shipping, tt.shippingCost))
		})
	}
}

func TestIntentFromAction(t *testing.T) {
	assert.Equal(t, IntentCapture, IntentFromAction("charge"))
	assert.Equal(t, IntentAuthorize, IntentFromAction("authorize"))
	assert.Equal(t, IntentAuthorize, IntentFromAction(""))
}

func TestInterpretProcessorStatus(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   ResultStatus
	}{
		{
			name:   "正常系: PAYER_ACTION_REQUIREDは追加操作待ち",
			status: "PAYER_ACTION_REQUIRED",
			want:   ResultStatusActionRequired,
		},
		{
			name:   "正常系: CREATEDは追加操作待ち",
			status: "CREATED",
			want:   ResultStatusActionRequired,
		},
		{
			name:   "正常系: COMPLETEDは完了",
			status: "COMPLETED",
			want:   ResultStatusCaptured,
		},
		{
			name:   "正常系: APPROVEDも完了扱い",
			status: "APPROVED",
			want:   ResultStatusCaptured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterpretProcessorStatus(tt.status))
		})
	}
}
