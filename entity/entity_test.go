package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencyMenuOrder(t *testing.T) {
	require.Len(t, CurrencyMenu, 8)
	assert.Equal(t, SGD, CurrencyMenu[0].Currency)
	assert.Equal(t, "en-SG", CurrencyMenu[0].Locale)
	assert.Equal(t, MMK, CurrencyMenu[7].Currency)
	assert.Equal(t, "my-MM", CurrencyMenu[7].Locale)
}

func TestLocaleFor(t *testing.T) {
	assert.Equal(t, "fil-PH", LocaleFor(PHP))
	assert.Equal(t, "en-SG", LocaleFor("USD"))
	assert.True(t, KHR.Supported())
	assert.False(t, Currency("USD").Supported())
}

func TestMerchantRequestBind(t *testing.T) {
	req := MerchantRequest{
		Phone:           "+6511112222",
		StoreName:       "Sarah's Bakery",
		BusinessDetails: "Fresh baked goods and cakes",
		Currency:        THB,
	}
	require.NoError(t, req.Bind(nil))
	assert.Equal(t, "th-TH", req.Locale)

	req.BusinessDetails = "short"
	err := req.Bind(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BusinessDetails")
}

func TestProductRequestBind(t *testing.T) {
	req := ProductRequest{MerchantID: "m1", Name: "Case", Price: 20, Stock: 5}
	require.NoError(t, req.Bind(nil))

	req.Price = 0
	assert.Error(t, req.Bind(nil))
}

func TestCheckoutRequestDefaultsQuantity(t *testing.T) {
	req := CheckoutRequest{MerchantID: "m1", ProductID: "p1", CustomerPhone: "+6599990000"}
	require.NoError(t, req.Bind(nil))
	assert.Equal(t, 1, req.Quantity)
}
