package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusRefunded, false},

		{StatusProcessing, StatusAuthorized, true},
		{StatusProcessing, StatusCaptured, true},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusFailed, true},
		{StatusProcessing, StatusPending, false},

		{StatusAuthorized, StatusCaptured, true},
		{StatusAuthorized, StatusCompleted, true},
		{StatusCaptured, StatusCompleted, true},
		{StatusCaptured, StatusAuthorized, false},

		{StatusCompleted, StatusRefunded, true},
		{StatusCompleted, StatusPartiallyRefunded, true},
		{StatusCompleted, StatusFailed, false},
		{StatusPartiallyRefunded, StatusRefunded, true},
		{StatusPartiallyRefunded, StatusPartiallyRefunded, true},

		{StatusFailed, StatusProcessing, false},
		{StatusFailed, StatusCompleted, false},
		{StatusCancelled, StatusProcessing, false},
		{StatusRefunded, StatusPartiallyRefunded, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusRefunded.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.False(t, StatusCompleted.IsTerminal())
}

func TestStatusIsSettled(t *testing.T) {
	assert.True(t, StatusCompleted.IsSettled())
	assert.True(t, StatusFailed.IsSettled())
	assert.True(t, StatusRefunded.IsSettled())
	assert.False(t, StatusPending.IsSettled())
	assert.False(t, StatusProcessing.IsSettled())
	assert.False(t, StatusAuthorized.IsSettled())
}
