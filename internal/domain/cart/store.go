// Package cart implementa el almacén de carritos multi-vendor.
//
// Un Store agrupa uno o más carritos ("buckets") identificados por el contexto de vendor:
// DefaultBucket para compras propias o el ID del vendor P2P. Solo un bucket está activo.
// Toda mutación pasa por los métodos del Store; ningún otro componente escribe los buckets.
package cart

import (
	"time"

	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/domain/pricing"
)

// DefaultBucket clave del carrito sin vendor.
const DefaultBucket = "default"

// Límites de cantidad por línea.
const (
	MinQuantity = 1
	MaxQuantity = 5000
)

// NoticeBulkUnlocked se emite una vez por cada transición a elegibilidad bulk.
const NoticeBulkUnlocked = "BULK_UNLOCKED"

// noticeTTL tiempo tras el cual el cliente descarta la notificación.
const noticeTTL = 6 * time.Second

// Item línea del carrito.
type Item struct {
	Product  entity.Product
	Quantity int
}

// Notice notificación efímera producida por una mutación.
type Notice struct {
	Kind         string
	Message      string
	DismissAfter time.Duration
}

// Store estado de todos los carritos de un usuario.
type Store struct {
	buckets        map[string][]Item
	activeVendorID *string
	role           string

	// elegibilidad bulk observada del carrito activo tras la última mutación
	bulkEligible bool
	notices      []Notice
}

// New crea un Store vacío con el bucket por defecto.
func New(role string) *Store {
	s := &Store{
		buckets: map[string][]Item{DefaultBucket: {}},
		role:    role,
	}
	s.bulkEligible = s.eligible()
	return s
}

// FromSnapshot reconstruye el Store a partir de un snapshot persistido.
// La elegibilidad inicial se toma como ya observada: cargar no emite notificaciones.
func FromSnapshot(snap Snapshot, role string) *Store {
	s := &Store{
		buckets: make(map[string][]Item, len(snap.VendorCarts)+1),
		role:    role,
	}
	for key, items := range snap.VendorCarts {
		bucket := make([]Item, 0, len(items))
		for _, it := range items {
			bucket = mergeInto(bucket, it.Product.toEntity(), it.Quantity)
		}
		s.buckets[key] = bucket
	}
	if _, ok := s.buckets[DefaultBucket]; !ok {
		s.buckets[DefaultBucket] = []Item{}
	}
	if snap.ActiveVendorID != nil && *snap.ActiveVendorID != "" && *snap.ActiveVendorID != DefaultBucket {
		id := *snap.ActiveVendorID
		s.activeVendorID = &id
		s.EnsureVendorCart(id)
	}
	s.bulkEligible = s.eligible()
	return s
}

// Role rol con el que se cotiza el carrito.
func (s *Store) Role() string { return s.role }

// ActiveVendorID vendor seleccionado o nil para el bucket por defecto.
func (s *Store) ActiveVendorID() *string {
	if s.activeVendorID == nil {
		return nil
	}
	id := *s.activeVendorID
	return &id
}

// ActiveKey clave del bucket activo.
func (s *Store) ActiveKey() string {
	if s.activeVendorID == nil {
		return DefaultBucket
	}
	return *s.activeVendorID
}

// ActiveItems copia de las líneas del carrito activo, en orden de inserción.
func (s *Store) ActiveItems() []Item {
	return s.Items(s.ActiveKey())
}

// Items copia de las líneas del bucket indicado.
func (s *Store) Items(key string) []Item {
	src := s.buckets[key]
	out := make([]Item, len(src))
	copy(out, src)
	return out
}

// BucketKeys claves de todos los buckets.
func (s *Store) BucketKeys() []string {
	keys := make([]string, 0, len(s.buckets))
	for k := range s.buckets {
		keys = append(keys, k)
	}
	return keys
}

// AddItem agrega el producto al carrito activo. Si ya existe suma la cantidad (máx. 5000).
// Una cantidad menor a 1 se trata como 1.
func (s *Store) AddItem(p entity.Product, quantity int) {
	if quantity < MinQuantity {
		quantity = MinQuantity
	}
	key := s.ActiveKey()
	s.buckets[key] = mergeInto(s.buckets[key], p, quantity)
	s.settle()
}

// UpdateQuantity fija la cantidad de una línea, acotada a [1, 5000].
// Un valor menor a 1 elimina la línea. Si el producto no está en el carrito no hace nada.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	if quantity < MinQuantity {
		s.RemoveItem(productID)
		return
	}
	key := s.ActiveKey()
	items := s.buckets[key]
	for i := range items {
		if items[i].Product.ID == productID {
			items[i].Quantity = clamp(quantity)
			break
		}
	}
	s.settle()
}

// RemoveItem elimina la línea del carrito activo.
func (s *Store) RemoveItem(productID string) {
	key := s.ActiveKey()
	items := s.buckets[key]
	out := items[:0]
	for _, it := range items {
		if it.Product.ID != productID {
			out = append(out, it)
		}
	}
	s.buckets[key] = out
	s.settle()
}

// EnsureVendorCart crea el bucket vacío del vendor si no existe. Idempotente.
func (s *Store) EnsureVendorCart(vendorID string) {
	if vendorID == "" {
		return
	}
	if _, ok := s.buckets[vendorID]; !ok {
		s.buckets[vendorID] = []Item{}
	}
}

// SetActiveVendorID cambia el bucket activo; nil selecciona el bucket por defecto.
// Nunca mezcla ni borra el contenido de otros buckets.
func (s *Store) SetActiveVendorID(id *string) {
	if id == nil || *id == "" || *id == DefaultBucket {
		s.activeVendorID = nil
	} else {
		v := *id
		s.EnsureVendorCart(v)
		s.activeVendorID = &v
	}
	s.settle()
}

// ClearCart deja un único bucket por defecto vacío y sin vendor activo.
func (s *Store) ClearCart() {
	s.buckets = map[string][]Item{DefaultBucket: {}}
	s.activeVendorID = nil
	s.settle()
}

// ReplaceProduct actualiza los datos del producto en todas las líneas que lo contienen
// (cantidades intactas). Devuelve true si hubo cambios.
func (s *Store) ReplaceProduct(p entity.Product) bool {
	changed := false
	for key, items := range s.buckets {
		for i := range items {
			if items[i].Product.ID == p.ID {
				items[i].Product = p
				changed = true
			}
		}
		s.buckets[key] = items
	}
	if changed {
		s.settle()
	}
	return changed
}

// Quote cotiza el carrito activo con el rol del Store.
func (s *Store) Quote() pricing.Quote {
	return pricing.Calculate(s.lines(), s.role)
}

// DrainNotices devuelve y limpia las notificaciones pendientes.
func (s *Store) DrainNotices() []Notice {
	out := s.notices
	s.notices = nil
	return out
}

func (s *Store) lines() []pricing.Line {
	items := s.buckets[s.ActiveKey()]
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{Product: it.Product, Quantity: it.Quantity})
	}
	return lines
}

func (s *Store) eligible() bool {
	return s.Quote().Tier == pricing.TierBulk
}

// settle recalcula la elegibilidad del carrito activo; dispara el aviso solo en el flanco false → true.
func (s *Store) settle() {
	now := s.eligible()
	if now && !s.bulkEligible {
		s.notices = append(s.notices, Notice{
			Kind:         NoticeBulkUnlocked,
			Message:      "Bulk pricing unlocked! Bulk prices now apply to your whole cart.",
			DismissAfter: noticeTTL,
		})
	}
	s.bulkEligible = now
}

func mergeInto(items []Item, p entity.Product, quantity int) []Item {
	for i := range items {
		if items[i].Product.ID == p.ID {
			items[i].Quantity = clamp(items[i].Quantity + clamp(quantity))
			return items
		}
	}
	return append(items, Item{Product: p, Quantity: clamp(quantity)})
}

func clamp(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}
