package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
)

// Snapshot forma persistida del Store: {vendorCarts, activeVendorId}.
type Snapshot struct {
	VendorCarts    map[string][]SnapshotItem `json:"vendorCarts"`
	ActiveVendorID *string                   `json:"activeVendorId"`
}

// SnapshotItem línea persistida.
type SnapshotItem struct {
	Product  SnapshotProduct `json:"product"`
	Quantity int             `json:"quantity"`
}

// SnapshotProduct producto tal como lo guarda el cliente.
type SnapshotProduct struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	CompanyID     string              `json:"companyId,omitempty"`
	CompanyName   string              `json:"companyName,omitempty"`
	CategoryID    string              `json:"categoryId,omitempty"`
	CategoryName  string              `json:"categoryName,omitempty"`
	Price         decimal.NullDecimal `json:"price"`
	ConsumerPrice decimal.NullDecimal `json:"consumerPrice"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice"`
	RetailPrice   decimal.NullDecimal `json:"retailPrice"`
	BulkPrice     decimal.NullDecimal `json:"bulkPrice"`
	BulkLimit     *int                `json:"bulkLimit,omitempty"`
	Image         string              `json:"image,omitempty"`
	Description   string              `json:"description,omitempty"`
	UpdatedAt     *time.Time          `json:"updatedAt,omitempty"`
}

// NewSnapshotProduct convierte la entidad a su forma persistida.
func NewSnapshotProduct(p entity.Product) SnapshotProduct {
	sp := SnapshotProduct{
		ID:            p.ID,
		Name:          p.Name,
		CompanyID:     p.CompanyID,
		CompanyName:   p.CompanyName,
		CategoryID:    p.CategoryID,
		CategoryName:  p.CategoryName,
		Price:         p.Price,
		ConsumerPrice: p.ConsumerPrice,
		OriginalPrice: p.OriginalPrice,
		RetailPrice:   p.RetailPrice,
		BulkPrice:     p.BulkPrice,
		BulkLimit:     p.BulkLimit,
		Image:         p.ImageURL,
		Description:   p.Description,
	}
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		sp.UpdatedAt = &t
	}
	return sp
}

func (sp SnapshotProduct) toEntity() entity.Product {
	p := entity.Product{
		ID:            sp.ID,
		Name:          sp.Name,
		CompanyID:     sp.CompanyID,
		CompanyName:   sp.CompanyName,
		CategoryID:    sp.CategoryID,
		CategoryName:  sp.CategoryName,
		Price:         sp.Price,
		ConsumerPrice: sp.ConsumerPrice,
		OriginalPrice: sp.OriginalPrice,
		RetailPrice:   sp.RetailPrice,
		BulkPrice:     sp.BulkPrice,
		BulkLimit:     sp.BulkLimit,
		ImageURL:      sp.Image,
		Description:   sp.Description,
	}
	if sp.UpdatedAt != nil {
		p.UpdatedAt = *sp.UpdatedAt
	}
	return p
}

// Snapshot serializa el Store completo (todos los buckets + vendor activo) como una unidad.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		VendorCarts:    make(map[string][]SnapshotItem, len(s.buckets)),
		ActiveVendorID: s.ActiveVendorID(),
	}
	for key, items := range s.buckets {
		out := make([]SnapshotItem, 0, len(items))
		for _, it := range items {
			out = append(out, SnapshotItem{Product: NewSnapshotProduct(it.Product), Quantity: it.Quantity})
		}
		snap.VendorCarts[key] = out
	}
	return snap
}

// ParseSnapshot decodifica un snapshot persistido. Acepta, en este orden:
//  1. la forma actual {vendorCarts, activeVendorId};
//  2. un arreglo de {product, quantity} (se migra al bucket por defecto);
//  3. un arreglo de productos sueltos (cantidad 1, bucket por defecto).
//
// Un documento vacío o null produce un snapshot vacío.
func ParseSnapshot(raw []byte) (Snapshot, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return emptySnapshot(), nil
	}

	switch trimmed[0] {
	case '{':
		return parseCurrent(trimmed)
	case '[':
		return parseLegacy(trimmed)
	}
	return Snapshot{}, fmt.Errorf("cart snapshot: formato no reconocido: %w", domain.ErrInvalidInput)
}

func emptySnapshot() Snapshot {
	return Snapshot{VendorCarts: map[string][]SnapshotItem{DefaultBucket: {}}}
}

func parseCurrent(raw []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("cart snapshot: %v: %w", err, domain.ErrInvalidInput)
	}
	if snap.VendorCarts == nil {
		snap.VendorCarts = map[string][]SnapshotItem{}
	}
	for key, items := range snap.VendorCarts {
		snap.VendorCarts[key] = normalize(items)
	}
	if _, ok := snap.VendorCarts[DefaultBucket]; !ok {
		snap.VendorCarts[DefaultBucket] = []SnapshotItem{}
	}
	return snap, nil
}

func parseLegacy(raw []byte) (Snapshot, error) {
	var elems []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return Snapshot{}, fmt.Errorf("cart snapshot legacy: %v: %w", err, domain.ErrInvalidInput)
	}

	wrapped := len(elems) > 0
	for _, e := range elems {
		if _, ok := e["product"]; !ok {
			wrapped = false
			break
		}
	}

	var items []SnapshotItem
	if wrapped {
		if err := json.Unmarshal(raw, &items); err != nil {
			return Snapshot{}, fmt.Errorf("cart snapshot legacy items: %v: %w", err, domain.ErrInvalidInput)
		}
	} else {
		var products []SnapshotProduct
		if err := json.Unmarshal(raw, &products); err != nil {
			return Snapshot{}, fmt.Errorf("cart snapshot legacy products: %v: %w", err, domain.ErrInvalidInput)
		}
		items = make([]SnapshotItem, 0, len(products))
		for _, p := range products {
			items = append(items, SnapshotItem{Product: p, Quantity: 1})
		}
	}

	snap := emptySnapshot()
	snap.VendorCarts[DefaultBucket] = normalize(items)
	return snap, nil
}

// normalize descarta líneas sin producto, fusiona duplicados y acota cantidades.
func normalize(items []SnapshotItem) []SnapshotItem {
	out := make([]SnapshotItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, it := range items {
		if it.Product.ID == "" {
			continue
		}
		q := it.Quantity
		if q < MinQuantity {
			q = MinQuantity
		}
		if i, ok := index[it.Product.ID]; ok {
			out[i].Quantity = clamp(out[i].Quantity + q)
			continue
		}
		index[it.Product.ID] = len(out)
		out = append(out, SnapshotItem{Product: it.Product, Quantity: clamp(q)})
	}
	return out
}
