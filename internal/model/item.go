package model

import (
	"github.com/rezonia/moadian/internal/money"
)

// LineItem is a single product or service line on an invoice. Amounts
// are whole rials; the derived totals are computed on demand and never
// stored on the item.
type LineItem struct {
	ProductCode     string // 13-digit product/service code
	Description     string
	UnitFee         int64
	Quantity        int64
	Unit            string // unit-of-measure code
	DiscountPerUnit int64
	VATRate         int64 // percent
	Extra           map[string]interface{}
}

// LineItemOption configures a LineItem
type LineItemOption func(*LineItem)

// WithQuantity sets the item quantity (default 1)
func WithQuantity(quantity int64) LineItemOption {
	return func(li *LineItem) {
		li.Quantity = quantity
	}
}

// WithUnit sets the unit-of-measure code (default "164", piece)
func WithUnit(unit string) LineItemOption {
	return func(li *LineItem) {
		li.Unit = unit
	}
}

// WithDiscount sets the per-unit discount in rials
func WithDiscount(perUnit int64) LineItemOption {
	return func(li *LineItem) {
		li.DiscountPerUnit = perUnit
	}
}

// WithVATRate sets the VAT rate percentage (default 10)
func WithVATRate(percent int64) LineItemOption {
	return func(li *LineItem) {
		li.VATRate = percent
	}
}

// WithExtra adds an authority-specific optional field carried through
// to the item's JSON object.
func WithExtra(key string, value interface{}) LineItemOption {
	return func(li *LineItem) {
		if li.Extra == nil {
			li.Extra = make(map[string]interface{})
		}
		li.Extra[key] = value
	}
}

// NewLineItem creates a line item, validating the product code format.
func NewLineItem(productCode, description string, unitFee int64, opts ...LineItemOption) (*LineItem, error) {
	if !isDigits(productCode) || len(productCode) != 13 {
		return nil, NewFormatError("product code", productCode, "must be exactly 13 decimal digits")
	}

	item := &LineItem{
		ProductCode: productCode,
		Description: description,
		UnitFee:     unitFee,
		Quantity:    1,
		Unit:        "164",
		VATRate:     10,
	}

	for _, opt := range opts {
		opt(item)
	}

	return item, nil
}

// LineItemTotals holds the derived monetary fields for one line item.
type LineItemTotals struct {
	PreDiscount  int64
	Discount     int64
	PostDiscount int64
	VAT          int64
	Total        int64
}

// Totals computes the item's monetary aggregates under the regulator's
// integer arithmetic rules.
func (li *LineItem) Totals() LineItemTotals {
	preDiscount := money.Amount(li.UnitFee, li.Quantity)
	discount := money.Amount(li.DiscountPerUnit, li.Quantity)
	postDiscount := preDiscount - discount
	vat := money.VAT(postDiscount, li.VATRate)

	return LineItemTotals{
		PreDiscount:  preDiscount,
		Discount:     discount,
		PostDiscount: postDiscount,
		VAT:          vat,
		Total:        money.LineTotal(postDiscount, vat),
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
