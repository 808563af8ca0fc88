package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de snacks.
//
// Los cinco campos de precio son opcionales; la cadena de respaldo (consumer → retail → bulk)
// se resuelve únicamente en pricing.ResolvePrices. El orden BulkPrice <= ConsumerPrice <= RetailPrice
// es orientativo y no se valida.
type Product struct {
	ID            string
	Name          string
	CompanyID     string
	CompanyName   string // desnormalizado para listados
	CategoryID    string
	CategoryName  string // desnormalizado para listados
	Price         decimal.NullDecimal // precio de lista (alias histórico de ConsumerPrice)
	ConsumerPrice decimal.NullDecimal
	OriginalPrice decimal.NullDecimal // precio de referencia antes de descuento (alias histórico de RetailPrice)
	RetailPrice   decimal.NullDecimal
	BulkPrice     decimal.NullDecimal // precio aplicado al alcanzar el tier bulk
	BulkLimit     *int                // sugerencia de cantidad mínima; no se aplica como restricción
	ImageURL      string
	Description   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
