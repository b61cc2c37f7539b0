// Package invoice assembles regulator-compliant invoice documents:
// line accumulation, fixed-point aggregate arithmetic, and stamping
// with a freshly minted tax identifier.
package invoice

import (
	"time"

	"github.com/rezonia/moadian/internal/clock"
	"github.com/rezonia/moadian/internal/model"
	"github.com/rezonia/moadian/internal/money"
	"github.com/rezonia/moadian/internal/serial"
	"github.com/rezonia/moadian/internal/taxid"
)

// backdate is applied when no explicit issuance time is set. The
// protocol requires invoices to be marked as issued in the past.
const backdate = time.Hour

type builderState int

const (
	stateAccumulating builderState = iota
	stateBuilt
)

// Builder accumulates invoice parts and assembles the final document.
// Build hands back a fresh immutable document and re-arms the builder
// with clean state for the next invoice. Not safe for concurrent use.
type Builder struct {
	gen       *taxid.Generator
	ledger    *serial.Ledger
	sellerTIN string
	clock     clock.Clock

	state         builderState
	items         []*model.LineItem
	buyerTIN      string
	buyerType     model.BuyerType
	invoiceType   model.InvoiceType
	pattern       model.InvoicePattern
	paymentMethod model.PaymentMethod
	issuedAt      time.Time
	refTaxID      string
	extraHeader   map[string]interface{}
}

// BuilderOption configures a Builder
type BuilderOption func(*Builder)

// WithClock sets the time source used for default issuance timestamps.
func WithClock(c clock.Clock) BuilderOption {
	return func(b *Builder) {
		b.clock = c
	}
}

// NewBuilder creates a Builder stamping documents for one seller. The
// seller TIN must be 11 or 14 digits.
func NewBuilder(gen *taxid.Generator, ledger *serial.Ledger, sellerTIN string, opts ...BuilderOption) (*Builder, error) {
	if len(sellerTIN) != 11 && len(sellerTIN) != 14 {
		return nil, model.NewValidationError("seller TIN", sellerTIN, "length", "must be 11 or 14 digits")
	}

	b := &Builder{
		gen:       gen,
		ledger:    ledger,
		sellerTIN: sellerTIN,
		clock:     clock.NewReal(),
	}

	for _, opt := range opts {
		opt(b)
	}

	b.reset()
	return b, nil
}

// Reset discards any accumulated state and starts a fresh document.
func (b *Builder) Reset() {
	b.reset()
}

func (b *Builder) reset() {
	b.state = stateAccumulating
	b.items = nil
	b.resetFields()
}

// arm re-initializes the builder on first mutation after a build, so a
// finished document is never shared with the next accumulation.
func (b *Builder) arm() {
	if b.state == stateBuilt {
		b.reset()
	}
}

func (b *Builder) resetFields() {
	b.buyerTIN = ""
	b.buyerType = model.BuyerIndividual
	b.invoiceType = model.InvoiceTypeSale
	b.pattern = model.PatternSale
	b.paymentMethod = model.PaymentCash
	b.issuedAt = time.Time{}
	b.refTaxID = ""
	b.extraHeader = make(map[string]interface{})
}

// SetBuyer sets the buyer's TIN and category.
func (b *Builder) SetBuyer(tin string, buyerType model.BuyerType) *Builder {
	b.arm()
	b.buyerTIN = tin
	b.buyerType = buyerType
	return b
}

// SetType sets the invoice type and pattern.
func (b *Builder) SetType(t model.InvoiceType, p model.InvoicePattern) *Builder {
	b.arm()
	b.invoiceType = t
	b.pattern = p
	return b
}

// SetPaymentMethod sets the settlement method.
func (b *Builder) SetPaymentMethod(m model.PaymentMethod) *Builder {
	b.arm()
	b.paymentMethod = m
	return b
}

// SetIssuedAt sets an explicit issuance time. Without one, the document
// is stamped one hour in the past.
func (b *Builder) SetIssuedAt(t time.Time) *Builder {
	b.arm()
	b.issuedAt = t
	return b
}

// SetCorrection marks this invoice as a correction or cancellation of a
// previously issued invoice.
func (b *Builder) SetCorrection(originalTaxID string) *Builder {
	b.arm()
	b.refTaxID = originalTaxID
	return b
}

// AddItem appends a line item.
func (b *Builder) AddItem(item *model.LineItem) *Builder {
	b.arm()
	b.items = append(b.items, item)
	return b
}

// AddItems appends multiple line items.
func (b *Builder) AddItems(items []*model.LineItem) *Builder {
	b.arm()
	b.items = append(b.items, items...)
	return b
}

// SetHeaderField sets an authority-specific header override.
func (b *Builder) SetHeaderField(key string, value interface{}) *Builder {
	b.arm()
	b.extraHeader[key] = value
	return b
}

// Build validates the accumulated state, allocates a serial, mints the
// tax identifier, computes the aggregates, and returns the finished
// document. It either fully succeeds or returns an error; no partially
// aggregated document is ever produced. On success the builder starts
// over with fresh state.
func (b *Builder) Build() (*model.InvoiceDocument, error) {
	b.arm()
	if len(b.items) == 0 {
		return nil, model.NewValidationError("items", nil, "required", "invoice must have at least one line item")
	}
	if b.buyerTIN == "" {
		return nil, model.NewValidationError("buyer TIN", nil, "required", "buyer must be set before build")
	}
	if len(b.buyerTIN) != 11 && len(b.buyerTIN) != 14 {
		return nil, model.NewValidationError("buyer TIN", b.buyerTIN, "length", "must be 11 or 14 digits")
	}

	issuedAt := b.issuedAt
	if issuedAt.IsZero() {
		issuedAt = b.clock.Now().Add(-backdate)
	}
	timestamp := issuedAt.UnixMilli()

	serialNo, err := b.ledger.Next()
	if err != nil {
		return nil, err
	}

	id, err := b.gen.Mint(timestamp, serialNo)
	if err != nil {
		return nil, err
	}
	invoiceNumber, err := taxid.InvoiceNumber(serialNo)
	if err != nil {
		return nil, err
	}

	body := make([]*model.BodyItem, 0, len(b.items))
	var tprdis, tdis, tadis, tvam int64
	for _, item := range b.items {
		totals := item.Totals()
		tprdis += totals.PreDiscount
		tdis += totals.Discount
		tadis += totals.PostDiscount
		tvam += totals.VAT
		body = append(body, toBodyItem(item, totals))
	}
	tbill := money.LineTotal(tadis, tvam)

	header := &model.Header{
		TaxID:      id,
		IssuedAt:   timestamp,
		CreatedAt:  timestamp,
		Type:       b.invoiceType,
		Number:     invoiceNumber,
		Pattern:    b.pattern,
		Subject:    1,
		SellerTIN:  b.sellerTIN,
		BuyerTIN:   b.buyerTIN,
		BuyerType:  b.buyerType,
		TotalPre:   tprdis,
		TotalDisc:  tdis,
		TotalPost:  tadis,
		TotalVAT:   tvam,
		TotalBill:  tbill,
		Settlement: b.paymentMethod,
		InsPayment: tadis,
		TotalVOP:   tvam,
	}
	if b.refTaxID != "" {
		ref := b.refTaxID
		header.RefTaxID = &ref
	}
	if b.paymentMethod == model.PaymentCash {
		cash := tbill
		header.CashPayment = &cash
	}
	if len(b.extraHeader) > 0 {
		header.Extra = b.extraHeader
	}

	doc := &model.InvoiceDocument{
		Header:   header,
		Body:     body,
		Payments: []interface{}{},
	}

	b.state = stateBuilt

	return doc, nil
}

func toBodyItem(item *model.LineItem, totals model.LineItemTotals) *model.BodyItem {
	return &model.BodyItem{
		ProductCode: item.ProductCode,
		Description: item.Description,
		Quantity:    item.Quantity,
		Unit:        item.Unit,
		UnitFee:     item.UnitFee,
		PreDisc:     totals.PreDiscount,
		Discount:    totals.Discount,
		PostDisc:    totals.PostDiscount,
		VATRate:     item.VATRate,
		VATAmount:   totals.VAT,
		VATPortion:  totals.VAT,
		LineTotal:   totals.Total,
		Extra:       item.Extra,
	}
}
