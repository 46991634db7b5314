package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusValid(t *testing.T) {
	tests := []struct {
		name   string
		status OrderStatus
		want   bool
	}{
		{name: "pending is valid", status: OrderStatusPending, want: true},
		{name: "shipped is valid", status: OrderStatusShipped, want: true},
		{name: "delivered is valid", status: OrderStatusDelivered, want: true},
		{name: "cancelled is valid", status: OrderStatusCancelled, want: true},
		{name: "empty is invalid", status: OrderStatus(""), want: false},
		{name: "unknown is invalid", status: OrderStatus("returned"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Valid())
		})
	}
}

func TestOrderStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{name: "pending to shipped", from: OrderStatusPending, to: OrderStatusShipped, want: true},
		{name: "pending to cancelled", from: OrderStatusPending, to: OrderStatusCancelled, want: true},
		{name: "pending to delivered skips shipping", from: OrderStatusPending, to: OrderStatusDelivered, want: false},
		{name: "shipped to delivered", from: OrderStatusShipped, to: OrderStatusDelivered, want: true},
		{name: "shipped to cancelled", from: OrderStatusShipped, to: OrderStatusCancelled, want: false},
		{name: "shipped back to pending", from: OrderStatusShipped, to: OrderStatusPending, want: false},
		{name: "delivered is terminal", from: OrderStatusDelivered, to: OrderStatusPending, want: false},
		{name: "delivered cannot cancel", from: OrderStatusDelivered, to: OrderStatusCancelled, want: false},
		{name: "cancelled is terminal", from: OrderStatusCancelled, to: OrderStatusShipped, want: false},
		{name: "no self transition", from: OrderStatusPending, to: OrderStatusPending, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatusAllowedTransitions(t *testing.T) {
	assert.ElementsMatch(t, []OrderStatus{OrderStatusShipped, OrderStatusCancelled}, OrderStatusPending.AllowedTransitions())
	assert.ElementsMatch(t, []OrderStatus{OrderStatusDelivered}, OrderStatusShipped.AllowedTransitions())
	assert.Empty(t, OrderStatusDelivered.AllowedTransitions())
	assert.Empty(t, OrderStatusCancelled.AllowedTransitions())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleLibrarian.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("superadmin").Valid())
	assert.False(t, Role("").Valid())
}

func TestBookStatusValid(t *testing.T) {
	assert.True(t, BookStatusPublished.Valid())
	assert.True(t, BookStatusUnpublished.Valid())
	assert.False(t, BookStatus("available").Valid())
	assert.False(t, BookStatus("out-of-stock").Valid())
}
