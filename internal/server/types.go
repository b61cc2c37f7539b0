package server

import (
	"github.com/rezonia/moadian/internal/model"
)

// BuildItemRequest is one line item in an assemble request
type BuildItemRequest struct {
	ProductCode     string                 `json:"product_code" binding:"required"`
	Description     string                 `json:"description"`
	UnitFee         int64                  `json:"unit_fee" binding:"required"`
	Quantity        int64                  `json:"quantity"`
	Unit            string                 `json:"unit"`
	DiscountPerUnit int64                  `json:"discount_per_unit"`
	VATRate         *int64                 `json:"vat_rate"`
	Extra           map[string]interface{} `json:"extra"`
}

// BuildInvoiceRequest is the request for the invoice assembly endpoint
type BuildInvoiceRequest struct {
	BuyerTIN      string                 `json:"buyer_tin" binding:"required"`
	BuyerType     int                    `json:"buyer_type"`
	InvoiceType   int                    `json:"invoice_type"`
	Pattern       int                    `json:"pattern"`
	PaymentMethod int                    `json:"payment_method"`
	IssuedAtMs    *int64                 `json:"issued_at_ms"`
	RefTaxID      string                 `json:"ref_taxid"`
	ExtraHeader   map[string]interface{} `json:"extra_header"`
	Items         []BuildItemRequest     `json:"items" binding:"required,min=1,dive"`
}

// BuildInvoiceResponse is the response for the invoice assembly endpoint
type BuildInvoiceResponse struct {
	TaxID         string                 `json:"taxid"`
	InvoiceNumber string                 `json:"invoice_number"`
	Document      *model.InvoiceDocument `json:"document"`
}

// MintRequest is the request for the tax identifier mint endpoint.
// Without a serial, one is allocated from the ledger; without a
// timestamp, the current time is used.
type MintRequest struct {
	TimestampMs *int64 `json:"timestamp_ms"`
	Serial      *int64 `json:"serial"`
}

// MintResponse is the response for the mint endpoint
type MintResponse struct {
	TaxID         string `json:"taxid"`
	Serial        int64  `json:"serial"`
	InvoiceNumber string `json:"invoice_number"`
}

// VerifyRequest is the request for the tax identifier verify endpoint
type VerifyRequest struct {
	TaxID string `json:"taxid" binding:"required"`
}

// VerifyResponse is the response for the verify endpoint
type VerifyResponse struct {
	TaxID string `json:"taxid"`
	Valid bool   `json:"valid"`
}

// SerialResponse is the response for the serial allocation endpoint
type SerialResponse struct {
	Serial        int64  `json:"serial"`
	InvoiceNumber string `json:"invoice_number"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
