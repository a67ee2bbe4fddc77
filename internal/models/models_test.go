package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUrgencyPriority(t *testing.T) {
	cases := map[Urgency]uint8{
		UrgencyLow:       1,
		UrgencyMedium:    5,
		UrgencyHigh:      8,
		UrgencyCritical:  10,
		Urgency("bogus"): 5,
	}
	for urgency, want := range cases {
		assert.Equal(t, want, urgency.Priority(), "urgency %q", urgency)
	}
}

func TestParseUrgency(t *testing.T) {
	u, err := ParseUrgency(" HIGH ")
	require.NoError(t, err)
	assert.Equal(t, UrgencyHigh, u)

	_, err = ParseUrgency("urgent")
	assert.Error(t, err)
}

func TestProductTypeValid(t *testing.T) {
	assert.True(t, ProductTypeHW.Valid())
	assert.True(t, ProductTypeSW.Valid())
	assert.False(t, ProductType("hw").Valid())
	assert.False(t, ProductType("").Valid())
}

func TestProductPriceJSONIsNumber(t *testing.T) {
	p := Product{ID: 7, Name: "Cisco Catalyst 9300", Price: decimal.RequireFromString("8500.00"), ProductType: ProductTypeHW}

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":8500`)

	var decoded Product
	require.NoError(t, json.Unmarshal([]byte(`{"name":"x","price":5999.99,"product_type":"HW"}`), &decoded))
	assert.True(t, decoded.Price.Equal(decimal.RequireFromString("5999.99")))
	assert.Equal(t, "products/7", p.Resource())
}

func TestPriceStorable(t *testing.T) {
	for price, want := range map[string]bool{
		"0.01":          true,
		"5999.90":       true,
		"9999999999.99": true,
		"0.004":         false,
		"1.999":         false,
		"10000000000":   false,
	} {
		assert.Equal(t, want, PriceStorable(decimal.RequireFromString(price)), price)
	}
}
