// Package testutil repositorios en memoria para los tests de casos de uso y de HTTP.
// Respetan los contratos de los puertos: (nil, nil) si no existe, ErrConflict si hay
// referencias, ErrEmailAlreadyExists en emails repetidos.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/domain/repository"
)

// Notification evento registrado por OrderRepository.Notify al confirmar la transacción.
type Notification struct {
	Type    string
	OrderID string
}

// Store base de datos en memoria compartida por todos los repositorios fake.
type Store struct {
	mu         sync.Mutex
	Products   map[string]*entity.Product
	Categories map[string]*entity.Category
	Companies  map[string]*entity.Company
	Vendors    map[string]*entity.Vendor
	Users      map[string]*entity.User
	Employees  map[string]*entity.Employee
	Admins     map[string]*entity.Admin
	Orders     map[string]*entity.Order
	Carts      map[string][]byte

	orderSeq int64
	// notificaciones confirmadas, en orden
	Notified []Notification
	pending  []Notification
	inTx     bool

	// FailNextOrderCreate hace fallar el próximo OrderRepository.Create (rollback).
	FailNextOrderCreate error
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{
		Products:   map[string]*entity.Product{},
		Categories: map[string]*entity.Category{},
		Companies:  map[string]*entity.Company{},
		Vendors:    map[string]*entity.Vendor{},
		Users:      map[string]*entity.User{},
		Employees:  map[string]*entity.Employee{},
		Admins:     map[string]*entity.Admin{},
		Orders:     map[string]*entity.Order{},
		Carts:      map[string][]byte{},
	}
}

// ProductRepo, CategoryRepo, ... vistas tipadas sobre el Store.
func (s *Store) ProductRepo() repository.ProductRepository     { return productRepo{s} }
func (s *Store) CategoryRepo() repository.CategoryRepository   { return categoryRepo{s} }
func (s *Store) CompanyRepo() repository.CompanyRepository     { return companyRepo{s} }
func (s *Store) VendorRepo() repository.VendorRepository       { return vendorRepo{s} }
func (s *Store) UserRepo() repository.UserRepository           { return userRepo{s} }
func (s *Store) EmployeeRepo() repository.EmployeeRepository   { return employeeRepo{s} }
func (s *Store) AdminRepo() repository.AdminRepository         { return adminRepo{s} }
func (s *Store) OrderRepo() repository.OrderRepository         { return orderRepo{s} }
func (s *Store) CartRepo() repository.CartStateRepository      { return cartRepo{s} }
func (s *Store) AnalyticsRepo() repository.AnalyticsRepository { return analyticsRepo{s} }

// RunOrder ejecuta fn como una transacción: si fn falla se restauran pedidos y vendors
// y se descartan las notificaciones pendientes.
func (s *Store) RunOrder(ctx context.Context, fn func(orders repository.OrderRepository, vendors repository.VendorRepository) error) error {
	s.mu.Lock()
	orders := make(map[string]*entity.Order, len(s.Orders))
	for k, v := range s.Orders {
		orders[k] = v
	}
	vendors := make(map[string]*entity.Vendor, len(s.Vendors))
	for k, v := range s.Vendors {
		vendors[k] = v
	}
	seq := s.orderSeq
	s.inTx = true
	s.pending = nil
	s.mu.Unlock()

	err := fn(orderRepo{s}, vendorRepo{s})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inTx = false
	if err != nil {
		s.Orders = orders
		s.Vendors = vendors
		s.orderSeq = seq
		s.pending = nil
		return err
	}
	s.Notified = append(s.Notified, s.pending...)
	s.pending = nil
	return nil
}

// AddProduct siembra un producto.
func (s *Store) AddProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Products[p.ID] = p
}

// AddUser siembra un usuario.
func (s *Store) AddUser(u *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Users[u.ID] = u
}

// AddOrder siembra un pedido.
func (s *Store) AddOrder(o *entity.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Orders[o.ID] = o
}

// NotifiedTypes tipos de las notificaciones confirmadas.
func (s *Store) NotifiedTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.Notified))
	for _, n := range s.Notified {
		out = append(out, n.Type)
	}
	return out
}

// ── products ─────────────────────────────────────────────────────────────────

type productRepo struct{ s *Store }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *p
	r.s.Products[p.ID] = &cp
	return nil
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r productRepo) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.Products[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (r productRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.s.Products[p.ID] = &cp
	return nil
}

func (r productRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Product, 0, len(r.s.Products))
	for _, p := range r.s.Products {
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if f.CompanyID != "" && p.CompanyID != f.CompanyID {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*entity.Product{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r productRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Products[id]; !ok {
		return domain.ErrNotFound
	}
	for _, o := range r.s.Orders {
		for _, l := range o.Products {
			if l.ProductID == id {
				return domain.ErrConflict
			}
		}
	}
	delete(r.s.Products, id)
	return nil
}

// ── categories / companies ───────────────────────────────────────────────────

type categoryRepo struct{ s *Store }

func (r categoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.Categories[c.ID] = &cp
	return nil
}

func (r categoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.Categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r categoryRepo) Update(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Categories[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	r.s.Categories[c.ID] = &cp
	return nil
}

func (r categoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Category, 0, len(r.s.Categories))
	for _, c := range r.s.Categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r categoryRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Categories[id]; !ok {
		return domain.ErrNotFound
	}
	for _, p := range r.s.Products {
		if p.CategoryID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.Categories, id)
	return nil
}

type companyRepo struct{ s *Store }

func (r companyRepo) Create(_ context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.Companies[c.ID] = &cp
	return nil
}

func (r companyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.Companies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r companyRepo) Update(_ context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Companies[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	r.s.Companies[c.ID] = &cp
	return nil
}

func (r companyRepo) List(_ context.Context) ([]*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Company, 0, len(r.s.Companies))
	for _, c := range r.s.Companies {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r companyRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Companies[id]; !ok {
		return domain.ErrNotFound
	}
	for _, p := range r.s.Products {
		if p.CompanyID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.Companies, id)
	return nil
}

// ── vendors ──────────────────────────────────────────────────────────────────

type vendorRepo struct{ s *Store }

func (r vendorRepo) Create(_ context.Context, v *entity.Vendor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *v
	r.s.Vendors[v.ID] = &cp
	return nil
}

func (r vendorRepo) GetByID(_ context.Context, id string) (*entity.Vendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.Vendors[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (r vendorRepo) Update(_ context.Context, v *entity.Vendor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Vendors[v.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *v
	r.s.Vendors[v.ID] = &cp
	return nil
}

func (r vendorRepo) List(_ context.Context) ([]*entity.Vendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Vendor, 0, len(r.s.Vendors))
	for _, v := range r.s.Vendors {
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r vendorRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Vendors[id]; !ok {
		return domain.ErrNotFound
	}
	for _, o := range r.s.Orders {
		if o.P2PVendorID != nil && *o.P2PVendorID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.Vendors, id)
	return nil
}

// ── users / employees / admins ───────────────────────────────────────────────

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.Users {
		if strings.EqualFold(other.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *u
	r.s.Users[u.ID] = &cp
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.Users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.Users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r userRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for _, other := range r.s.Users {
		if other.ID != u.ID && strings.EqualFold(other.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *u
	r.s.Users[u.ID] = &cp
	return nil
}

func (r userRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.Users, id)
	return nil
}

type employeeRepo struct{ s *Store }

func (r employeeRepo) Create(_ context.Context, e *entity.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Employees[e.UserID]; ok {
		return domain.ErrDuplicate
	}
	cp := *e
	cp.User = nil
	r.s.Employees[e.UserID] = &cp
	return nil
}

func (r employeeRepo) GetByUserID(_ context.Context, userID string) (*entity.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.Employees[userID]
	if !ok {
		return nil, nil
	}
	cp := *e
	if u, ok := r.s.Users[userID]; ok {
		uc := *u
		cp.User = &uc
	}
	return &cp, nil
}

func (r employeeRepo) Update(_ context.Context, e *entity.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Employees[e.UserID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	cp.User = nil
	r.s.Employees[e.UserID] = &cp
	return nil
}

func (r employeeRepo) List(_ context.Context) ([]*entity.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Employee, 0, len(r.s.Employees))
	for id, e := range r.s.Employees {
		cp := *e
		if u, ok := r.s.Users[id]; ok {
			uc := *u
			cp.User = &uc
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r employeeRepo) Delete(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Employees[userID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.Employees, userID)
	return nil
}

type adminRepo struct{ s *Store }

func (r adminRepo) Create(_ context.Context, a *entity.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Admins[a.UserID]; ok {
		return domain.ErrDuplicate
	}
	cp := *a
	cp.User = nil
	r.s.Admins[a.UserID] = &cp
	return nil
}

func (r adminRepo) GetByUserID(_ context.Context, userID string) (*entity.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.Admins[userID]
	if !ok {
		return nil, nil
	}
	cp := *a
	if u, ok := r.s.Users[userID]; ok {
		uc := *u
		cp.User = &uc
	}
	return &cp, nil
}

func (r adminRepo) Update(_ context.Context, a *entity.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Admins[a.UserID]; !ok {
		return domain.ErrNotFound
	}
	cp := *a
	cp.User = nil
	r.s.Admins[a.UserID] = &cp
	return nil
}

func (r adminRepo) List(_ context.Context) ([]*entity.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Admin, 0, len(r.s.Admins))
	for id, a := range r.s.Admins {
		cp := *a
		if u, ok := r.s.Users[id]; ok {
			uc := *u
			cp.User = &uc
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r adminRepo) Delete(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Admins[userID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.Admins, userID)
	return nil
}

// ── orders ───────────────────────────────────────────────────────────────────

type orderRepo struct{ s *Store }

func (r orderRepo) NextOrderNumber(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orderSeq++
	return 1000 + r.s.orderSeq, nil
}

func (r orderRepo) Create(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.FailNextOrderCreate; err != nil {
		r.s.FailNextOrderCreate = nil
		return err
	}
	cp := *o
	cp.Products = make([]entity.OrderProduct, len(o.Products))
	for i, l := range o.Products {
		l.Product = nil
		cp.Products[i] = l
	}
	cp.Vendor = nil
	r.s.Orders[o.ID] = &cp
	return nil
}

// hydrate copia el pedido y adjunta productos vivos y vendor. Requiere el lock tomado.
func (r orderRepo) hydrate(o *entity.Order) *entity.Order {
	cp := *o
	cp.Products = make([]entity.OrderProduct, len(o.Products))
	for i, l := range o.Products {
		if p, ok := r.s.Products[l.ProductID]; ok {
			pc := *p
			l.Product = &pc
		}
		cp.Products[i] = l
	}
	if o.P2PVendorID != nil {
		if v, ok := r.s.Vendors[*o.P2PVendorID]; ok {
			vc := *v
			cp.Vendor = &vc
		}
	}
	return &cp
}

func (r orderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.Orders[id]
	if !ok {
		return nil, nil
	}
	return r.hydrate(o), nil
}

func (r orderRepo) Update(_ context.Context, o *entity.Order, fromStatus string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.Orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Status != fromStatus {
		return domain.ErrStaleOrder
	}
	cp := *cur
	cp.Status = o.Status
	cp.PhoneNumber = o.PhoneNumber
	cp.Address = o.Address
	cp.OrderPerson = o.OrderPerson
	cp.OrderInfo = o.OrderInfo
	cp.UpdatedAt = o.UpdatedAt
	r.s.Orders[o.ID] = &cp
	return nil
}

func (r orderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Order, 0, len(r.s.Orders))
	for _, o := range r.s.Orders {
		if !matches(o, f.UserID, f.Status, f.From, f.To) {
			continue
		}
		out = append(out, r.hydrate(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].OrderNumber > out[j].OrderNumber
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r orderRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Orders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.Orders, id)
	return nil
}

func (r orderRepo) Notify(_ context.Context, eventType, orderID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := Notification{Type: eventType, OrderID: orderID}
	if r.s.inTx {
		r.s.pending = append(r.s.pending, n)
		return nil
	}
	r.s.Notified = append(r.s.Notified, n)
	return nil
}

func matches(o *entity.Order, userID, status string, from, to *time.Time) bool {
	if userID != "" && o.UserID != userID {
		return false
	}
	if status != "" && o.Status != status {
		return false
	}
	if from != nil && o.CreatedAt.Before(*from) {
		return false
	}
	if to != nil && o.CreatedAt.After(*to) {
		return false
	}
	return true
}

// ── carts / analytics ────────────────────────────────────────────────────────

type cartRepo struct{ s *Store }

func (r cartRepo) Load(_ context.Context, userID string) ([]byte, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.Carts[userID]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), b...), nil
}

func (r cartRepo) Save(_ context.Context, userID string, snapshot []byte) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Carts[userID] = append([]byte(nil), snapshot...)
	return nil
}

func (r cartRepo) Delete(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.Carts, userID)
	return nil
}

type analyticsRepo struct{ s *Store }

func (r analyticsRepo) OrdersInRange(ctx context.Context, from, to *time.Time) ([]*entity.Order, error) {
	return orderRepo{r.s}.List(ctx, repository.OrderFilter{From: from, To: to})
}
