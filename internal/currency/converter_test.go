package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertINRToUSD(t *testing.T) {
	got, err := Convert(1000, "INR", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 12.00, got, 0.001)
}

func TestConvertSameCurrency(t *testing.T) {
	got, err := Convert(42.508, "USD", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 42.51, got, 0.001)
}

func TestConvertCrossRate(t *testing.T) {
	// USD -> EUR routes through INR: 12 USD -> 1000 INR -> 11 EUR.
	got, err := Convert(12, "USD", "EUR")
	require.NoError(t, err)
	assert.InDelta(t, 11.00, got, 0.001)
}

func TestConvertUnsupported(t *testing.T) {
	_, err := Convert(100, "INR", "JPY")
	assert.Error(t, err)

	_, err = Convert(100, "JPY", "INR")
	assert.Error(t, err)
}

func TestRate(t *testing.T) {
	r, err := Rate("USD")
	require.NoError(t, err)
	assert.Equal(t, 0.012, r)

	_, err = Rate("XYZ")
	assert.Error(t, err)
}
