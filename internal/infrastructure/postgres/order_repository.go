package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderEventsChannel canal LISTEN/NOTIFY de los cambios de pedidos.
const OrderEventsChannel = "order_events"

// OrderNotification payload de pg_notify en OrderEventsChannel.
type OrderNotification struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

const orderColumns = `id, order_number, status, phone_number, order_info, address, order_person,
	user_id, p2p_vendor_id, tier, created_at, updated_at`

// OrderRepo pedidos y sus líneas sobre PostgreSQL. Pasar pool o tx (Querier).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.Status, &o.PhoneNumber, &o.OrderInfo, &o.Address,
		&o.OrderPerson, &o.UserID, &o.P2PVendorID, &o.Tier, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// NextOrderNumber toma el siguiente valor de order_number_seq.
func (r *OrderRepo) NextOrderNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&n); err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return n, nil
}

// Create inserta el pedido y sus líneas (una sola sentencia para todas las líneas).
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO orders (id, order_number, status, phone_number, order_info, address, order_person,
		                    user_id, p2p_vendor_id, tier, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		o.ID, o.OrderNumber, o.Status, o.PhoneNumber, o.OrderInfo, o.Address, o.OrderPerson,
		o.UserID, o.P2PVendorID, o.Tier, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicate
		case isForeignKeyViolation(err):
			return fmt.Errorf("usuario o vendor inexistente: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	ids := make([]string, len(o.Products))
	products := make([]string, len(o.Products))
	quantities := make([]int32, len(o.Products))
	for i := range o.Products {
		if o.Products[i].ID == "" {
			o.Products[i].ID = uuid.New().String()
		}
		o.Products[i].OrderID = o.ID
		ids[i] = o.Products[i].ID
		products[i] = o.Products[i].ProductID
		quantities[i] = int32(o.Products[i].Quantity)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO order_products (id, order_id, product_id, quantity)
		SELECT line.id, $2, line.product_id, line.quantity
		FROM unnest($1::text[], $3::text[], $4::int[]) AS line (id, product_id, quantity)`,
		ids, o.ID, products, quantities,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("producto inexistente: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert order products: %w", err)
	}
	return nil
}

// GetByID pedido con líneas, productos vivos y vendor.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.hydrate(ctx, []*entity.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// Update persiste estado y datos de entrega.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order, fromStatus string) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE orders SET status = $2, phone_number = $3, order_info = $4, address = $5,
		       order_person = $6, updated_at = $7
		WHERE id = $1 AND status = $8`,
		o.ID, o.Status, o.PhoneNumber, o.OrderInfo, o.Address, o.OrderPerson, o.UpdatedAt, fromStatus,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, o.ID).Scan(&exists); err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if exists {
		return domain.ErrStaleOrder
	}
	return domain.ErrNotFound
}

// List más recientes primero; el número de pedido desempata.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, order_number DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	list := []*entity.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if err := r.hydrate(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Delete borra las líneas y luego el pedido. Usar dentro de una transacción.
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM order_products WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("delete order products: %w", err)
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Notify pg_notify en OrderEventsChannel; dentro de una transacción se entrega al hacer commit.
func (r *OrderRepo) Notify(ctx context.Context, eventType, orderID string) error {
	payload, err := json.Marshal(OrderNotification{Type: eventType, ID: orderID})
	if err != nil {
		return fmt.Errorf("notify payload: %w", err)
	}
	if _, err := r.q.Exec(ctx, `SELECT pg_notify($1, $2)`, OrderEventsChannel, string(payload)); err != nil {
		return fmt.Errorf("pg_notify: %w", err)
	}
	return nil
}

// hydrate carga líneas, productos vivos y vendors de los pedidos con tres consultas.
func (r *OrderRepo) hydrate(ctx context.Context, orders []*entity.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Order, len(orders))
	orderIDs := make([]string, 0, len(orders))
	vendorIDs := []string{}
	for _, o := range orders {
		o.Products = []entity.OrderProduct{}
		byID[o.ID] = o
		orderIDs = append(orderIDs, o.ID)
		if o.P2PVendorID != nil {
			vendorIDs = append(vendorIDs, *o.P2PVendorID)
		}
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, quantity FROM order_products
		WHERE order_id = ANY($1) ORDER BY order_id, id`, orderIDs)
	if err != nil {
		return fmt.Errorf("list order products: %w", err)
	}
	productIDs := []string{}
	for rows.Next() {
		var l entity.OrderProduct
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity); err != nil {
			rows.Close()
			return fmt.Errorf("scan order product: %w", err)
		}
		o := byID[l.OrderID]
		o.Products = append(o.Products, l)
		productIDs = append(productIDs, l.ProductID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list order products: %w", err)
	}

	products, err := NewProductRepository(r.q).GetByIDs(ctx, productIDs)
	if err != nil {
		return err
	}
	for _, o := range orders {
		for i := range o.Products {
			o.Products[i].Product = products[o.Products[i].ProductID]
		}
	}

	if len(vendorIDs) == 0 {
		return nil
	}
	vrows, err := r.q.Query(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = ANY($1)`, vendorIDs)
	if err != nil {
		return fmt.Errorf("list order vendors: %w", err)
	}
	defer vrows.Close()
	vendors := map[string]*entity.Vendor{}
	for vrows.Next() {
		v, err := scanVendor(vrows)
		if err != nil {
			return fmt.Errorf("scan vendor: %w", err)
		}
		vendors[v.ID] = v
	}
	if err := vrows.Err(); err != nil {
		return fmt.Errorf("list order vendors: %w", err)
	}
	for _, o := range orders {
		if o.P2PVendorID != nil {
			o.Vendor = vendors[*o.P2PVendorID]
		}
	}
	return nil
}
