package order_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/application/order"
	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/authz"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/domain/pricing"
	"github.com/jhoicas/snacks-api/internal/testutil"
	"github.com/jhoicas/snacks-api/pkg/clock"
)

type checkoutContext struct {
	store *testutil.Store
	clock *clock.Fixed
	uc    *order.UseCase

	auth   authz.Context
	lines  []dto.OrderLineRequest
	quote  pricing.Quote
	placed *dto.OrderResponse
	err    error
}

func (c *checkoutContext) reset() {
	c.store = testutil.NewStore()
	c.clock = clock.NewFixed(t0)
	c.uc = order.NewUseCase(c.store, c.store.OrderRepo(), c.store.ProductRepo(), c.store.VendorRepo(),
		&testutil.Notifier{}, c.clock, nil, zerolog.Nop())
	c.auth = authz.Context{}
	c.lines = nil
	c.quote = pricing.Quote{}
	c.placed = nil
	c.err = nil
}

func (c *checkoutContext) aProduct(id string, consumer, retail, bulk int) error {
	c.store.AddProduct(&entity.Product{
		ID:            id,
		Name:          id,
		ConsumerPrice: decimal.NewNullDecimal(decimal.NewFromInt(int64(consumer))),
		RetailPrice:   decimal.NewNullDecimal(decimal.NewFromInt(int64(retail))),
		BulkPrice:     decimal.NewNullDecimal(decimal.NewFromInt(int64(bulk))),
	})
	return nil
}

func (c *checkoutContext) signedInAs(role string) error {
	if !entity.IsValidRole(role) {
		return fmt.Errorf("rol desconocido %q", role)
	}
	c.auth = authz.Context{UserID: "user-" + role, Role: role}
	return nil
}

func (c *checkoutContext) putInCart(qty int, productID string) error {
	p, err := c.store.ProductRepo().GetByID(context.Background(), productID)
	if err != nil || p == nil {
		return fmt.Errorf("producto %q no sembrado", productID)
	}
	c.lines = append(c.lines, dto.OrderLineRequest{ProductID: productID, Quantity: qty})
	lines := make([]pricing.Line, 0, len(c.lines))
	for _, l := range c.lines {
		lp, _ := c.store.ProductRepo().GetByID(context.Background(), l.ProductID)
		lines = append(lines, pricing.Line{Product: *lp, Quantity: l.Quantity})
	}
	c.quote = pricing.Calculate(lines, c.auth.Role)
	return nil
}

func (c *checkoutContext) cartTierIs(tier string) error {
	if string(c.quote.Tier) != tier {
		return fmt.Errorf("tier esperado %s, obtenido %s", tier, c.quote.Tier)
	}
	return nil
}

func (c *checkoutContext) appliedUnitPriceIs(price int) error {
	if len(c.quote.Lines) == 0 {
		return errors.New("carrito vacío")
	}
	if got := c.quote.Lines[0].UnitPrice; !got.Equal(decimal.NewFromInt(int64(price))) {
		return fmt.Errorf("precio unitario esperado %d, obtenido %s", price, got)
	}
	return nil
}

func (c *checkoutContext) lineTotalIs(total int) error {
	if len(c.quote.Lines) == 0 {
		return errors.New("carrito vacío")
	}
	if got := c.quote.Lines[0].Total; !got.Equal(decimal.NewFromInt(int64(total))) {
		return fmt.Errorf("total de línea esperado %d, obtenido %s", total, got)
	}
	return nil
}

func (c *checkoutContext) iCheckOut() error {
	c.placed, c.err = c.uc.Create(context.Background(), c.auth, dto.CreateOrderRequest{
		PhoneNumber: "0300-1234567",
		OrderInfo:   "snacks",
		Address:     "12 Mall Road",
		OrderPerson: "Asha",
		Products:    c.lines,
	})
	return nil
}

func (c *checkoutContext) iPlacedAnOrder(qty int, productID string) error {
	if err := c.putInCart(qty, productID); err != nil {
		return err
	}
	_ = c.iCheckOut()
	return c.err
}

func (c *checkoutContext) checkoutRejectedWith(msg string) error {
	return expectRule(c.err, msg)
}

func (c *checkoutContext) orderPlacedWithStatus(status string) error {
	if c.err != nil {
		return fmt.Errorf("checkout falló: %w", c.err)
	}
	if c.placed.Status != status {
		return fmt.Errorf("estado esperado %s, obtenido %s", status, c.placed.Status)
	}
	return nil
}

func (c *checkoutContext) minutesPass(n int) error {
	c.clock.Advance(time.Duration(n) * time.Minute)
	return nil
}

func (c *checkoutContext) iCancelTheOrder() error {
	_, c.err = c.uc.Cancel(context.Background(), c.auth, c.placed.ID)
	return nil
}

func (c *checkoutContext) orderStatusIs(status string) error {
	got, err := c.uc.Get(context.Background(), c.auth, c.placed.ID)
	if err != nil {
		return err
	}
	if got.Status != status {
		return fmt.Errorf("estado esperado %s, obtenido %s", status, got.Status)
	}
	return nil
}

func (c *checkoutContext) cancellationRejectedWith(msg string) error {
	return expectRule(c.err, msg)
}

func expectRule(err error, msg string) error {
	var rule *domain.RuleError
	if !errors.As(err, &rule) {
		return fmt.Errorf("se esperaba un rechazo de regla, obtenido %v", err)
	}
	if rule.Message != msg {
		return fmt.Errorf("mensaje esperado %q, obtenido %q", msg, rule.Message)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^a product "([^"]*)" with consumer price (\d+), retail price (\d+) and bulk price (\d+)$`, tc.aProduct)
	ctx.Step(`^I am signed in as a "([^"]*)"$`, tc.signedInAs)
	ctx.Step(`^I placed an order for (\d+) of "([^"]*)"$`, tc.iPlacedAnOrder)

	ctx.Step(`^I put (\d+) of "([^"]*)" in the cart$`, tc.putInCart)
	ctx.Step(`^I check out$`, tc.iCheckOut)
	ctx.Step(`^(\d+) minutes pass$`, tc.minutesPass)
	ctx.Step(`^I cancel the order$`, tc.iCancelTheOrder)

	ctx.Step(`^the cart tier is "([^"]*)"$`, tc.cartTierIs)
	ctx.Step(`^the applied unit price is (\d+)$`, tc.appliedUnitPriceIs)
	ctx.Step(`^the line total is (\d+)$`, tc.lineTotalIs)
	ctx.Step(`^checkout is rejected with "([^"]*)"$`, tc.checkoutRejectedWith)
	ctx.Step(`^the order is placed with status "([^"]*)"$`, tc.orderPlacedWithStatus)
	ctx.Step(`^the order status is "([^"]*)"$`, tc.orderStatusIs)
	ctx.Step(`^the cancellation is rejected with "([^"]*)"$`, tc.cancellationRejectedWith)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
