package models_test

import (
	"testing"

	"tokofon/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	// Forward path
	assert.True(t, models.CanTransition(models.OrderStatusPending, models.OrderStatusProcessing))
	assert.True(t, models.CanTransition(models.OrderStatusProcessing, models.OrderStatusShipped))
	assert.True(t, models.CanTransition(models.OrderStatusShipped, models.OrderStatusDelivered))

	// Cancellation only from pending or processing
	assert.True(t, models.CanTransition(models.OrderStatusPending, models.OrderStatusCancelled))
	assert.True(t, models.CanTransition(models.OrderStatusProcessing, models.OrderStatusCancelled))
	assert.False(t, models.CanTransition(models.OrderStatusShipped, models.OrderStatusCancelled))
	assert.False(t, models.CanTransition(models.OrderStatusDelivered, models.OrderStatusCancelled))

	// Failure from any pre-terminal state
	assert.True(t, models.CanTransition(models.OrderStatusPending, models.OrderStatusFailed))
	assert.True(t, models.CanTransition(models.OrderStatusProcessing, models.OrderStatusFailed))
	assert.True(t, models.CanTransition(models.OrderStatusShipped, models.OrderStatusFailed))

	// No skipping forward
	assert.False(t, models.CanTransition(models.OrderStatusPending, models.OrderStatusShipped))
	assert.False(t, models.CanTransition(models.OrderStatusPending, models.OrderStatusDelivered))

	// No going backwards, no self-loops
	assert.False(t, models.CanTransition(models.OrderStatusProcessing, models.OrderStatusPending))
	assert.False(t, models.CanTransition(models.OrderStatusPending, models.OrderStatusPending))
}

func TestAbsorbingStatesHaveNoExits(t *testing.T) {
	terminal := []models.OrderStatus{
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
		models.OrderStatusFailed,
	}
	for _, from := range terminal {
		assert.True(t, from.IsTerminal(), "%s should be terminal", from)
		for _, to := range models.AllowedOrderStatuses {
			assert.False(t, models.CanTransition(from, to),
				"no transition out of %s should be allowed (tried %s)", from, to)
		}
	}
	assert.False(t, models.OrderStatusPending.IsTerminal())
	assert.False(t, models.OrderStatusProcessing.IsTerminal())
	assert.False(t, models.OrderStatusShipped.IsTerminal())
}

func TestOrderStatusIsValid(t *testing.T) {
	for _, status := range models.AllowedOrderStatuses {
		assert.True(t, status.IsValid())
	}
	assert.False(t, models.OrderStatus("paid").IsValid())
	assert.False(t, models.OrderStatus("").IsValid())
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.57, models.Round2(10.567))
	assert.Equal(t, 10.56, models.Round2(10.562))
	assert.Equal(t, 0.0, models.Round2(0))
	assert.Equal(t, 99.95, models.Round2(5*19.99))
}
