package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

func TestExtendedPrice(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice float64
		quantity  float64
		expected  float64
	}{
		{"whole numbers", 25.00, 4, 100.00},
		{"fractional quantity", 89.99, 1.5, 134.99},
		{"half cent rounds up", 10.005, 3, 30.02},
		{"sub-cent price", 0.004, 2, 0.01},
		{"single unit", 19.99, 1, 19.99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, err := ExtendedPrice(tt.unitPrice, tt.quantity)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, total)
		})
	}
}

func TestExtendedPrice_Invalid(t *testing.T) {
	t.Run("negative unit price", func(t *testing.T) {
		_, err := ExtendedPrice(-1.00, 2)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrValidation))
	})

	t.Run("zero quantity", func(t *testing.T) {
		_, err := ExtendedPrice(10.00, 0)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrValidation))
	})

	t.Run("negative quantity", func(t *testing.T) {
		_, err := ExtendedPrice(10.00, -3)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrValidation))
	})

	t.Run("zero price is allowed", func(t *testing.T) {
		total, err := ExtendedPrice(0, 5)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, total)
	})
}

func TestFloorMiles(t *testing.T) {
	// Mileage is floored, never rounded, even at .9.
	assert.Equal(t, 12000, FloorMiles(12000.9))
	assert.Equal(t, 12000, FloorMiles(12000.0))
	assert.Equal(t, 0, FloorMiles(0))
	assert.Equal(t, 0, FloorMiles(-500))
}

func TestRound2Float(t *testing.T) {
	assert.Equal(t, 30.02, Round2Float(30.015))
	assert.Equal(t, 10.00, Round2Float(10.004))
	assert.Equal(t, 0.0, Round2Float(0))
}
