package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartTotals(t *testing.T) {
	c := &Cart{Items: []CartItem{
		{ProductID: 7, ProductName: "Widget", Price: 2.50, Quantity: 3, Subtotal: 7.50},
		{ProductID: 9, ProductName: "Gadget", Price: 0.10, Quantity: 3, Subtotal: 0.30},
	}}

	assert.InDelta(t, 7.80, c.Total(), 1e-9)
	assert.Equal(t, 6, c.TotalItems())
	assert.False(t, c.IsEmpty())
}

func TestCartDisplayTotalRounding(t *testing.T) {
	tests := []struct {
		name      string
		subtotals []float64
		want      string
	}{
		{"Exact", []float64{7.50}, "7.50"},
		{"BinaryFloatDrift", []float64{0.1, 0.2}, "0.30"},
		{"RoundsHalfUp", []float64{7.505}, "7.51"},
		{"Empty", nil, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Cart{}
			for _, s := range tt.subtotals {
				c.Items = append(c.Items, CartItem{Subtotal: s})
			}
			assert.Equal(t, tt.want, c.DisplayTotal())
		})
	}
}

func TestCartIsEmpty(t *testing.T) {
	var nilCart *Cart
	assert.True(t, nilCart.IsEmpty())
	assert.True(t, (&Cart{}).IsEmpty())
	assert.True(t, (&Cart{Items: []CartItem{}}).IsEmpty())
	assert.False(t, (&Cart{Items: []CartItem{{ProductID: 1}}}).IsEmpty())
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.False(t, OrderStatusCreated.IsTerminal())
	assert.True(t, OrderStatusConfirmed.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
}

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", User{FirstName: "Ada", LastName: "Lovelace"}.FullName())
	assert.Equal(t, "Ada", User{FirstName: "Ada"}.FullName())
	assert.Equal(t, "Lovelace", User{LastName: "Lovelace"}.FullName())
}
