package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/snacks-api/internal/application/dto"
)

func TestGenerateReceipt(t *testing.T) {
	o := &dto.OrderResponse{
		ID:          "7d3c9a8e-0000-4000-8000-000000000001",
		OrderNumber: 1042,
		Status:      "ACCEPTED",
		PhoneNumber: "03001234567",
		OrderInfo:   "Masala Chips x3",
		Address:     "House 12, Street 4",
		OrderPerson: "Ayesha",
		Vendor:      &dto.VendorResponse{Name: "Corner Shop"},
		Products: []dto.OrderProductResponse{
			{ProductID: "p1", Quantity: 3, UnitPrice: decimal.NewFromInt(1000), Total: decimal.NewFromInt(3000),
				Product: &dto.ProductResponse{Name: "Masala Chips"}},
			{ProductID: "p2", Quantity: 1, UnitPrice: decimal.Zero, Total: decimal.Zero},
		},
		Summary:   dto.OrderSummary{Tier: "consumer", Subtotal: decimal.NewFromInt(3000), TotalQuantity: 4},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	b, err := NewMarotoReceiptGenerator("Snacks").GenerateReceipt(context.Background(), o)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestGenerateReceipt_SinPedido(t *testing.T) {
	_, err := NewMarotoReceiptGenerator("Snacks").GenerateReceipt(context.Background(), nil)
	assert.Error(t, err)
}
