package entity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
)

func TestCanTransition(t *testing.T) {
	allowed := map[[2]string]bool{
		{entity.OrderStatusAccepted, entity.OrderStatusInTransit}:  true,
		{entity.OrderStatusAccepted, entity.OrderStatusCancelled}:  true,
		{entity.OrderStatusInTransit, entity.OrderStatusDelivered}: true,
		{entity.OrderStatusInTransit, entity.OrderStatusCancelled}: true,
	}
	all := []string{
		entity.OrderStatusAccepted, entity.OrderStatusInTransit,
		entity.OrderStatusDelivered, entity.OrderStatusCancelled,
	}
	for _, from := range all {
		for _, to := range all {
			want := from == to || allowed[[2]string{from, to}]
			assert.Equal(t, want, entity.CanTransition(from, to), "%s → %s", from, to)
		}
	}
}

func TestIsValidOrderStatus(t *testing.T) {
	assert.True(t, entity.IsValidOrderStatus("IN_TRANSIT"))
	assert.False(t, entity.IsValidOrderStatus("in_transit"))
	assert.False(t, entity.IsValidOrderStatus("SHIPPED"))
	assert.False(t, entity.IsValidOrderStatus(""))
}

func TestCheckCustomerCancel(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ruleCode := func(t *testing.T, err error) string {
		t.Helper()
		var re *domain.RuleError
		require.True(t, errors.As(err, &re), "se esperaba RuleError, llegó %v", err)
		return re.Code
	}

	t.Run("dentro de la ventana", func(t *testing.T) {
		o := &entity.Order{Status: entity.OrderStatusAccepted, CreatedAt: created}
		assert.NoError(t, o.CheckCustomerCancel(created.Add(9*time.Minute)))
	})

	t.Run("límite exacto de 10 minutos es inclusivo", func(t *testing.T) {
		o := &entity.Order{Status: entity.OrderStatusInTransit, CreatedAt: created}
		assert.NoError(t, o.CheckCustomerCancel(created.Add(entity.CustomerCancelWindow)))
	})

	t.Run("fuera de la ventana", func(t *testing.T) {
		o := &entity.Order{Status: entity.OrderStatusAccepted, CreatedAt: created}
		err := o.CheckCustomerCancel(created.Add(11 * time.Minute))
		assert.Equal(t, domain.CodeCancelWindow, ruleCode(t, err))
		assert.Equal(t, "Order cannot be cancelled as rider is on the way", err.Error())
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("ya cancelado", func(t *testing.T) {
		o := &entity.Order{Status: entity.OrderStatusCancelled, CreatedAt: created}
		err := o.CheckCustomerCancel(created.Add(time.Minute))
		assert.Equal(t, domain.CodeAlreadyCancelled, ruleCode(t, err))
	})

	t.Run("ya entregado gana sobre la ventana", func(t *testing.T) {
		o := &entity.Order{Status: entity.OrderStatusDelivered, CreatedAt: created}
		err := o.CheckCustomerCancel(created.Add(time.Hour))
		assert.Equal(t, domain.CodeAlreadyDelivered, ruleCode(t, err))
		assert.Contains(t, err.Error(), "already been delivered")
	})
}
