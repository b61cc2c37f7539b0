// Package moadianlib provides a public API for assembling Moadian
// sales invoices and minting their tax identifiers.
//
// This package exposes the core types for invoice assembly, the
// checksum-protected 22-character tax identifier, and the serial
// ledger that guarantees identifier uniqueness per fiscal memory ID.
//
// Example usage:
//
//	issuer, err := moadianlib.NewIssuer(moadianlib.Options{
//	    FiscalID:   "A3NFZT",
//	    SellerTIN:  "14011234567",
//	    StorageDir: "/var/lib/moadian",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	item, _ := moadianlib.NewLineItem("2330004219206", "test product", 10000)
//	doc, err := issuer.NewBuilder().
//	    SetBuyer("14011576540", moadianlib.BuyerIndividual).
//	    AddItem(item).
//	    Build()
package moadianlib

import "github.com/rezonia/moadian/internal/model"

// Re-export core types for public API
type (
	InvoiceDocument = model.InvoiceDocument
	Header          = model.Header
	BodyItem        = model.BodyItem
	LineItem        = model.LineItem
	LineItemTotals  = model.LineItemTotals
	LineItemOption  = model.LineItemOption
	InvoiceType     = model.InvoiceType
	InvoicePattern  = model.InvoicePattern
	PaymentMethod   = model.PaymentMethod
	BuyerType       = model.BuyerType
)

// Re-export invoice types
const (
	InvoiceTypeSale     = model.InvoiceTypeSale
	InvoiceTypeCashSale = model.InvoiceTypeCashSale
	InvoiceTypeExport   = model.InvoiceTypeExport
	InvoiceTypeContract = model.InvoiceTypeContract
)

// Re-export invoice patterns
const (
	PatternSale   = model.PatternSale
	PatternReturn = model.PatternReturn
	PatternCancel = model.PatternCancel
)

// Re-export payment methods
const (
	PaymentCash   = model.PaymentCash
	PaymentCredit = model.PaymentCredit
	PaymentBoth   = model.PaymentBoth
)

// Re-export buyer types
const (
	BuyerLegal      = model.BuyerLegal
	BuyerIndividual = model.BuyerIndividual
	BuyerForeign    = model.BuyerForeign
	BuyerPassport   = model.BuyerPassport
)

// Re-export error types
type (
	FormatError     = model.FormatError
	ValidationError = model.ValidationError
	LedgerError     = model.LedgerError
	OverflowError   = model.OverflowError
)

// NewLineItem creates a validated invoice line item.
var NewLineItem = model.NewLineItem

// Re-export line item options
var (
	WithQuantity = model.WithQuantity
	WithUnit     = model.WithUnit
	WithDiscount = model.WithDiscount
	WithVATRate  = model.WithVATRate
	WithExtra    = model.WithExtra
)
