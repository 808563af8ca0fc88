package usecase_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/application/usecase"
	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/authz"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/testutil"
)

var (
	admin    = authz.Context{UserID: "a-1", Role: entity.RoleAdmin}
	employee = authz.Context{UserID: "e-1", Role: entity.RoleEmployee}
	customer = authz.Context{UserID: "u-1", Role: entity.RoleUser}
)

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

type catalog struct {
	store      *testutil.Store
	categories *usecase.CategoryUseCase
	companies  *usecase.CompanyUseCase
	products   *usecase.ProductUseCase
}

func newCatalog() *catalog {
	s := testutil.NewStore()
	return &catalog{
		store:      s,
		categories: usecase.NewCategoryUseCase(s.CategoryRepo()),
		companies:  usecase.NewCompanyUseCase(s.CompanyRepo()),
		products:   usecase.NewProductUseCase(s.ProductRepo(), s.CompanyRepo(), s.CategoryRepo()),
	}
}

func (c *catalog) seed(t *testing.T) (*dto.CategoryResponse, *dto.CompanyResponse, *dto.ProductResponse) {
	t.Helper()
	ctx := context.Background()
	cat, err := c.categories.Create(ctx, admin, dto.CategoryRequest{Name: "Chips"})
	require.NoError(t, err)
	co, err := c.companies.Create(ctx, admin, dto.CompanyRequest{Name: "Lays"})
	require.NoError(t, err)
	p, err := c.products.Create(ctx, admin, dto.CreateProductRequest{
		Name: "Masala", CompanyID: co.ID, CategoryID: cat.ID,
		ConsumerPrice: dec(1000), RetailPrice: dec(1200), BulkPrice: dec(800),
	})
	require.NoError(t, err)
	return cat, co, p
}

func TestProduct_CreateYPrecioSegunRol(t *testing.T) {
	c := newCatalog()
	_, _, p := c.seed(t)
	assert.Equal(t, "Lays", p.CompanyName)
	assert.Equal(t, "Chips", p.CategoryName)

	ctx := context.Background()
	asUser, err := c.products.GetByID(ctx, customer, p.ID)
	require.NoError(t, err)
	assert.True(t, asUser.DisplayPrice.Equal(decimal.NewFromInt(1000)))
	require.NotNil(t, asUser.Discount)
	assert.True(t, asUser.Discount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, int64(17), *asUser.DiscountPercent)

	asEmployee, err := c.products.GetByID(ctx, employee, p.ID)
	require.NoError(t, err)
	assert.True(t, asEmployee.DisplayPrice.Equal(decimal.NewFromInt(800)))
	assert.Nil(t, asEmployee.Discount)

	anonymous, err := c.products.GetByID(ctx, authz.Context{}, p.ID)
	require.NoError(t, err)
	assert.True(t, anonymous.DisplayPrice.Equal(decimal.NewFromInt(1000)))
}

func TestProduct_EscrituraSoloAdmin(t *testing.T) {
	c := newCatalog()
	_, err := c.products.Create(context.Background(), employee, dto.CreateProductRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = c.products.Create(context.Background(), authz.Context{}, dto.CreateProductRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestProduct_Validaciones(t *testing.T) {
	c := newCatalog()
	cat, co, _ := c.seed(t)
	tests := []struct {
		name  string
		in    dto.CreateProductRequest
		field string
	}{
		{"sin nombre", dto.CreateProductRequest{CompanyID: co.ID, CategoryID: cat.ID}, "name"},
		{"precio negativo", dto.CreateProductRequest{Name: "x", CompanyID: co.ID, CategoryID: cat.ID, BulkPrice: dec(-1)}, "bulkPrice"},
		{"marca inexistente", dto.CreateProductRequest{Name: "x", CompanyID: "ghost", CategoryID: cat.ID}, "companyId"},
		{"categoría inexistente", dto.CreateProductRequest{Name: "x", CompanyID: co.ID, CategoryID: "ghost"}, "categoryId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.products.Create(context.Background(), admin, tt.in)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestProduct_UpdateParcial(t *testing.T) {
	c := newCatalog()
	_, _, p := c.seed(t)
	name := "Masala Max"
	out, err := c.products.Update(context.Background(), admin, p.ID, dto.UpdateProductRequest{Name: &name, BulkPrice: dec(750)})
	require.NoError(t, err)
	assert.Equal(t, "Masala Max", out.Name)
	assert.True(t, out.BulkPrice.Decimal.Equal(decimal.NewFromInt(750)))
	assert.True(t, out.ConsumerPrice.Decimal.Equal(decimal.NewFromInt(1000)))
}

func TestProduct_ListFiltra(t *testing.T) {
	c := newCatalog()
	cat, co, _ := c.seed(t)
	_, err := c.products.Create(context.Background(), admin, dto.CreateProductRequest{Name: "Salted", CompanyID: co.ID, CategoryID: cat.ID})
	require.NoError(t, err)

	out, err := c.products.List(context.Background(), customer, dto.ProductQuery{Search: "sal"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Salted", out.Items[0].Name)
	assert.Equal(t, 50, out.Page.Limit)
}

func TestDelete_ConReferenciasEsConflicto(t *testing.T) {
	c := newCatalog()
	cat, co, p := c.seed(t)
	ctx := context.Background()

	err := c.categories.Delete(ctx, admin, cat.ID)
	var rule *domain.RuleError
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, domain.CodeReferenced, rule.Code)
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.ErrorIs(t, c.companies.Delete(ctx, admin, co.ID), domain.ErrConflict)

	c.store.AddOrder(&entity.Order{ID: "o-1", Products: []entity.OrderProduct{{ProductID: p.ID, Quantity: 1}}})
	assert.ErrorIs(t, c.products.Delete(ctx, admin, p.ID), domain.ErrConflict)
	assert.Len(t, c.store.Products, 1)
	assert.Len(t, c.store.Categories, 1)
}

func TestDelete_SinReferencias(t *testing.T) {
	c := newCatalog()
	cat, co, p := c.seed(t)
	ctx := context.Background()
	require.NoError(t, c.products.Delete(ctx, admin, p.ID))
	require.NoError(t, c.categories.Delete(ctx, admin, cat.ID))
	require.NoError(t, c.companies.Delete(ctx, admin, co.ID))
	assert.ErrorIs(t, c.categories.Delete(ctx, admin, cat.ID), domain.ErrNotFound)
}

func TestVendor_CRUD(t *testing.T) {
	s := testutil.NewStore()
	uc := usecase.NewVendorUseCase(s.VendorRepo())
	ctx := context.Background()

	_, err := uc.Create(ctx, customer, dto.VendorRequest{Name: "Corner", PhoneNumber: "0300"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Create(ctx, employee, dto.VendorRequest{Name: "Corner"})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "phoneNumber", ve.Field)

	v, err := uc.Create(ctx, employee, dto.VendorRequest{Name: "Corner", PhoneNumber: "0300"})
	require.NoError(t, err)
	assert.Equal(t, employee.UserID, v.CreatedBy)

	list, err := uc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, uc.Delete(ctx, employee, v.ID), domain.ErrForbidden)
	vid := v.ID
	s.AddOrder(&entity.Order{ID: "o-1", P2PVendorID: &vid})
	assert.ErrorIs(t, uc.Delete(ctx, admin, v.ID), domain.ErrConflict)
}

func TestPeople_EmpleadosYAdmins(t *testing.T) {
	s := testutil.NewStore()
	uc := usecase.NewPeopleUseCase(s.UserRepo(), s.EmployeeRepo(), s.AdminRepo(), zerolog.Nop())
	ctx := context.Background()

	e, err := uc.CreateEmployee(ctx, admin, dto.CreateEmployeeRequest{
		Email: "rider@example.com", Password: "12345678", Name: "Bilal", Department: "Sales", Salary: decimal.NewFromInt(50000),
	})
	require.NoError(t, err)
	assert.Equal(t, "Bilal", e.Name)
	assert.Equal(t, entity.RoleEmployee, s.Users[e.UserID].Role)

	_, err = uc.CreateEmployee(ctx, admin, dto.CreateEmployeeRequest{Email: "rider@example.com", Password: "12345678", Name: "Other"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	pos := "Lead"
	upd, err := uc.UpdateEmployee(ctx, admin, e.UserID, dto.UpdateEmployeeRequest{Position: &pos})
	require.NoError(t, err)
	assert.Equal(t, "Lead", upd.Position)

	require.NoError(t, uc.DeleteEmployee(ctx, admin, e.UserID))
	assert.Equal(t, entity.RoleUser, s.Users[e.UserID].Role)

	adm, err := uc.CreateAdmin(ctx, admin, dto.CreateAdminRequest{Email: "boss@example.com", Password: "12345678", Name: "Sana", Level: 2})
	require.NoError(t, err)
	list, err := uc.ListAdmins(ctx, admin)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Level)

	self := authz.Context{UserID: adm.UserID, Role: entity.RoleAdmin}
	assert.ErrorIs(t, uc.DeleteAdmin(ctx, self, adm.UserID), domain.ErrConflict)

	_, err = uc.ListEmployees(ctx, employee)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

type memStorage struct {
	saved map[string][]byte
}

func (m *memStorage) Save(_ context.Context, name, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.saved[name] = b
	return "/uploads/" + name, nil
}

func TestUpload_Imagen(t *testing.T) {
	st := &memStorage{saved: map[string][]byte{}}
	uc := usecase.NewUploadUseCase(st)
	ctx := context.Background()

	out, err := uc.UploadImage(ctx, admin, "Chips.PNG", 3, bytes.NewReader([]byte("png")))
	require.NoError(t, err)
	assert.Contains(t, out.URL, "/uploads/")
	assert.True(t, len(out.URL) > len("/uploads/.png"))
	assert.Len(t, st.saved, 1)

	_, err = uc.UploadImage(ctx, admin, "script.exe", 3, bytes.NewReader([]byte("exe")))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.UploadImage(ctx, admin, "big.png", usecase.MaxUploadSize+1, bytes.NewReader(nil))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.UploadImage(ctx, customer, "a.png", 3, bytes.NewReader([]byte("png")))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
