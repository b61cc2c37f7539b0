package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/moadian/internal/model"
)

func TestNewLineItem_Defaults(t *testing.T) {
	item, err := model.NewLineItem("2330004219206", "test product", 10000)
	require.NoError(t, err)

	assert.Equal(t, "2330004219206", item.ProductCode)
	assert.Equal(t, "test product", item.Description)
	assert.Equal(t, int64(10000), item.UnitFee)
	assert.Equal(t, int64(1), item.Quantity)
	assert.Equal(t, "164", item.Unit)
	assert.Equal(t, int64(0), item.DiscountPerUnit)
	assert.Equal(t, int64(10), item.VATRate)
}

func TestNewLineItem_Options(t *testing.T) {
	item, err := model.NewLineItem("2330004219206", "bulk product", 5000,
		model.WithQuantity(12),
		model.WithUnit("163"),
		model.WithDiscount(250),
		model.WithVATRate(9),
		model.WithExtra("nw", 3500),
	)
	require.NoError(t, err)

	assert.Equal(t, int64(12), item.Quantity)
	assert.Equal(t, "163", item.Unit)
	assert.Equal(t, int64(250), item.DiscountPerUnit)
	assert.Equal(t, int64(9), item.VATRate)
	assert.Equal(t, 3500, item.Extra["nw"])
}

func TestNewLineItem_ProductCodeValidation(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"12 digits", "233000421920"},
		{"14 digits", "23300042192061"},
		{"letters", "233000421920A"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.NewLineItem(tt.code, "bad product", 10000)
			require.Error(t, err)

			var formatErr *model.FormatError
			assert.ErrorAs(t, err, &formatErr)
		})
	}
}

func TestLineItem_Totals(t *testing.T) {
	item, err := model.NewLineItem("2330004219206", "test product", 10000,
		model.WithVATRate(10))
	require.NoError(t, err)

	totals := item.Totals()

	assert.Equal(t, int64(10000), totals.PreDiscount)
	assert.Equal(t, int64(0), totals.Discount)
	assert.Equal(t, int64(10000), totals.PostDiscount)
	assert.Equal(t, int64(1000), totals.VAT)
	assert.Equal(t, int64(11000), totals.Total)
}

func TestLineItem_TotalsWithDiscount(t *testing.T) {
	item, err := model.NewLineItem("2330004219206", "discounted product", 20000,
		model.WithQuantity(5),
		model.WithDiscount(1000),
		model.WithVATRate(10))
	require.NoError(t, err)

	totals := item.Totals()

	// preDiscount = 20000*5, discount = 1000*5
	assert.Equal(t, int64(100000), totals.PreDiscount)
	assert.Equal(t, int64(5000), totals.Discount)
	assert.Equal(t, int64(95000), totals.PostDiscount)
	assert.Equal(t, int64(9500), totals.VAT)
	assert.Equal(t, int64(104500), totals.Total)
}

func TestLineItem_TotalsVATFloors(t *testing.T) {
	// 9999 * 10% = 999.9, floored to 999
	item, err := model.NewLineItem("2330004219206", "odd amount", 9999,
		model.WithVATRate(10))
	require.NoError(t, err)

	totals := item.Totals()
	assert.Equal(t, int64(999), totals.VAT)
	assert.Equal(t, int64(10998), totals.Total)
}

func TestLineItem_TotalsZeroRate(t *testing.T) {
	item, err := model.NewLineItem("2330004219206", "exempt product", 10000,
		model.WithVATRate(0))
	require.NoError(t, err)

	totals := item.Totals()
	assert.Equal(t, int64(0), totals.VAT)
	assert.Equal(t, int64(10000), totals.Total)
}
