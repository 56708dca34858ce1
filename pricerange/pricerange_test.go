package pricerange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const austin = "https://www.zillow.com/homes/austin-tx_rb/"

func TestSplit(t *testing.T) {
	bands, err := Split(austin, 100000, 350000, 100000)
	require.NoError(t, err)

	require.Len(t, bands, 3)
	assert.Equal(t, Band{
		URL:   "https://www.zillow.com/homes/austin-tx_rb/100000-200000_price/",
		Label: "$100000-$200000",
		Min:   100000,
		Max:   200000,
	}, bands[0])
	assert.Equal(t, "https://www.zillow.com/homes/austin-tx_rb/300000-350000_price/", bands[2].URL)
	assert.Equal(t, 350000, bands[2].Max)
}

func TestSplit_ReplacesExistingBand(t *testing.T) {
	bands, err := Split(austin+"0-50000_price/", 0, 100000, 0)
	require.NoError(t, err)

	require.Len(t, bands, 1)
	assert.Equal(t, "https://www.zillow.com/homes/austin-tx_rb/0-100000_price/", bands[0].URL)
}

func TestSplit_NoMaximum(t *testing.T) {
	bands, err := Split(austin, 0, 0, 50000)
	require.NoError(t, err)
	assert.Equal(t, []Band{{URL: austin, Label: "all prices"}}, bands)
}

func TestSplit_NoMaximumKeepsExistingBand(t *testing.T) {
	bands, err := Split(austin+"200000-300000_price/", 0, 0, 0)
	require.NoError(t, err)
	require.Len(t, bands, 1)
	assert.Equal(t, "$200000-$300000", bands[0].Label)
}

func TestSplit_Errors(t *testing.T) {
	_, err := Split("not a url", 0, 100, 10)
	assert.Error(t, err)

	_, err = Split(austin, 500, 100, 10)
	assert.Error(t, err)
}

func TestExtractLabel(t *testing.T) {
	assert.Equal(t, "all prices", ExtractLabel(austin))
	assert.Equal(t, "$100000-$200000", ExtractLabel(austin+"100000-200000_price/"))
}

func TestCountBands(t *testing.T) {
	tests := []struct {
		min, max, step int
		want           int
	}{
		{0, 300000, 100000, 3},
		{0, 350000, 100000, 4},
		{100, 100, 10, 1},
		{0, 100, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CountBands(tt.min, tt.max, tt.step))
	}
}
