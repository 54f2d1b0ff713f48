package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPaymentStatus(t *testing.T) {
	for _, status := range []string{
		PaymentStatusPending,
		PaymentStatusCompleted,
		PaymentStatusFailed,
		PaymentStatusRefunded,
		PaymentStatusExpired,
	} {
		assert.True(t, IsValidPaymentStatus(status), status)
	}

	assert.False(t, IsValidPaymentStatus(""))
	assert.False(t, IsValidPaymentStatus("COMPLETED"))
	assert.False(t, IsValidPaymentStatus("cancelled"))
}
