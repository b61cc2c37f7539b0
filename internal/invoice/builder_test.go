package invoice_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/moadian/internal/clock"
	"github.com/rezonia/moadian/internal/invoice"
	"github.com/rezonia/moadian/internal/model"
	"github.com/rezonia/moadian/internal/serial"
	"github.com/rezonia/moadian/internal/taxid"
)

const (
	testFiscalID  = "A3NFZT"
	testSellerTIN = "12345678901"
	testBuyerTIN  = "10987654321"
)

func newTestBuilder(t *testing.T) (*invoice.Builder, *clock.FakeClock) {
	t.Helper()

	gen, err := taxid.NewGenerator(testFiscalID)
	require.NoError(t, err)

	fc := clock.NewFakeClock(time.Unix(1_700_000_000, 0).UTC())
	ledger := serial.NewLedger(testFiscalID, serial.NewMemoryStore(),
		serial.WithClock(fc),
		serial.WithRandSource(rand.NewSource(1)),
		serial.WithRetryDelay(0))

	b, err := invoice.NewBuilder(gen, ledger, testSellerTIN, invoice.WithClock(fc))
	require.NoError(t, err)

	return b, fc
}

func testItem(t *testing.T) *model.LineItem {
	t.Helper()
	item, err := model.NewLineItem("1234567890123", "Widget", 10000)
	require.NoError(t, err)
	return item
}

func TestNewBuilder_SellerTINLength(t *testing.T) {
	gen, err := taxid.NewGenerator(testFiscalID)
	require.NoError(t, err)
	ledger := serial.NewLedger(testFiscalID, serial.NewMemoryStore())

	_, err = invoice.NewBuilder(gen, ledger, "12345678901")
	assert.NoError(t, err)

	_, err = invoice.NewBuilder(gen, ledger, "12345678901234")
	assert.NoError(t, err)

	_, err = invoice.NewBuilder(gen, ledger, "123")
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestBuild_CashInvoiceAggregates(t *testing.T) {
	b, _ := newTestBuilder(t)

	doc, err := b.
		SetBuyer(testBuyerTIN, model.BuyerIndividual).
		AddItem(testItem(t)).
		AddItem(testItem(t)).
		SetPaymentMethod(model.PaymentCash).
		Build()
	require.NoError(t, err)

	h := doc.Header
	assert.Equal(t, int64(20000), h.TotalPre)
	assert.Equal(t, int64(0), h.TotalDisc)
	assert.Equal(t, int64(20000), h.TotalPost)
	assert.Equal(t, int64(2000), h.TotalVAT)
	assert.Equal(t, int64(22000), h.TotalBill)
	require.NotNil(t, h.CashPayment)
	assert.Equal(t, int64(22000), *h.CashPayment)
	assert.Equal(t, int64(20000), h.InsPayment)
	assert.Equal(t, int64(2000), h.TotalVOP)

	assert.Len(t, doc.Body, 2)
	assert.NotNil(t, doc.Payments)
	assert.Empty(t, doc.Payments)
}

func TestBuild_CreditInvoiceOmitsCashPayment(t *testing.T) {
	b, _ := newTestBuilder(t)

	doc, err := b.
		SetBuyer(testBuyerTIN, model.BuyerLegal).
		AddItem(testItem(t)).
		SetPaymentMethod(model.PaymentCredit).
		Build()
	require.NoError(t, err)

	assert.Nil(t, doc.Header.CashPayment)
	assert.Equal(t, model.PaymentCredit, doc.Header.Settlement)
}

func TestBuild_NoItems(t *testing.T) {
	b, _ := newTestBuilder(t)

	_, err := b.SetBuyer(testBuyerTIN, model.BuyerIndividual).Build()

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "items", verr.Field)
}

func TestBuild_BuyerRequired(t *testing.T) {
	b, _ := newTestBuilder(t)

	_, err := b.AddItem(testItem(t)).Build()
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = b.SetBuyer("42", model.BuyerIndividual).AddItem(testItem(t)).Build()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "length", verr.Rule)
}

func TestBuild_InvoiceNumberMatchesTaxID(t *testing.T) {
	b, _ := newTestBuilder(t)

	doc, err := b.
		SetBuyer(testBuyerTIN, model.BuyerIndividual).
		AddItem(testItem(t)).
		Build()
	require.NoError(t, err)

	id := doc.Header.TaxID
	require.Len(t, id, taxid.Length)
	assert.True(t, taxid.Verify(id))
	assert.Equal(t, id[11:21], doc.Header.Number)
}

func TestBuild_DefaultIssuanceBackdated(t *testing.T) {
	b, fc := newTestBuilder(t)

	doc, err := b.
		SetBuyer(testBuyerTIN, model.BuyerIndividual).
		AddItem(testItem(t)).
		Build()
	require.NoError(t, err)

	want := fc.Now().Add(-time.Hour).UnixMilli()
	assert.Equal(t, want, doc.Header.IssuedAt)
	assert.Equal(t, want, doc.Header.CreatedAt)
}

func TestBuild_ExplicitIssuedAt(t *testing.T) {
	b, _ := newTestBuilder(t)

	issuedAt := time.Unix(1_650_000_000, 0).UTC()
	doc, err := b.
		SetBuyer(testBuyerTIN, model.BuyerIndividual).
		AddItem(testItem(t)).
		SetIssuedAt(issuedAt).
		Build()
	require.NoError(t, err)

	assert.Equal(t, issuedAt.UnixMilli(), doc.Header.IssuedAt)
}

func TestBuild_Correction(t *testing.T) {
	b, _ := newTestBuilder(t)

	original, err := b.
		SetBuyer(testBuyerTIN, model.BuyerIndividual).
		AddItem(testItem(t)).
		Build()
	require.NoError(t, err)

	correction, err := b.
		SetBuyer(testBuyerTIN, model.BuyerIndividual).
		AddItem(testItem(t)).
		SetType(model.InvoiceTypeSale, model.PatternCancel).
		SetCorrection(original.Header.TaxID).
		Build()
	require.NoError(t, err)

	require.NotNil(t, correction.Header.RefTaxID)
	assert.Equal(t, original.Header.TaxID, *correction.Header.RefTaxID)
	assert.Equal(t, model.PatternCancel, correction.Header.Pattern)
}

func TestBuild_RearmsAfterBuild(t *testing.T) {
	b, fc := newTestBuilder(t)

	first, err := b.
		SetBuyer(testBuyerTIN, model.BuyerIndividual).
		AddItem(testItem(t)).
		AddItem(testItem(t)).
		SetHeaderField("cdcn", "override").
		Build()
	require.NoError(t, err)

	// state from the first build must not leak into the second
	fc.Advance(time.Second)
	second, err := b.
		SetBuyer(testBuyerTIN, model.BuyerIndividual).
		AddItem(testItem(t)).
		Build()
	require.NoError(t, err)

	assert.NotEqual(t, first.Header.TaxID, second.Header.TaxID)
	assert.Len(t, second.Body, 1)
	assert.Equal(t, int64(11000), second.Header.TotalBill)
	assert.Nil(t, second.Header.Extra)
}

func TestBuild_ExtraHeaderFields(t *testing.T) {
	b, _ := newTestBuilder(t)

	doc, err := b.
		SetBuyer(testBuyerTIN, model.BuyerIndividual).
		AddItem(testItem(t)).
		SetHeaderField("billid", "B-001").
		Build()
	require.NoError(t, err)

	require.NotNil(t, doc.Header.Extra)
	assert.Equal(t, "B-001", doc.Header.Extra["billid"])
}

func TestBuild_DiscountedMixedItems(t *testing.T) {
	b, _ := newTestBuilder(t)

	discounted, err := model.NewLineItem("9876543210987", "Gadget", 20000,
		model.WithQuantity(5),
		model.WithDiscount(1000))
	require.NoError(t, err)

	doc, err := b.
		SetBuyer(testBuyerTIN, model.BuyerIndividual).
		AddItem(testItem(t)).
		AddItem(discounted).
		Build()
	require.NoError(t, err)

	h := doc.Header
	assert.Equal(t, int64(110000), h.TotalPre)
	assert.Equal(t, int64(5000), h.TotalDisc)
	assert.Equal(t, int64(105000), h.TotalPost)
	assert.Equal(t, int64(10500), h.TotalVAT)
	assert.Equal(t, int64(115500), h.TotalBill)
}
