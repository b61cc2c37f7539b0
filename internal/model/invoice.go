package model

import "encoding/json"

// InvoiceType classifies the invoice subject
type InvoiceType int

// Invoice types
const (
	InvoiceTypeSale     InvoiceType = 1
	InvoiceTypeCashSale InvoiceType = 2
	InvoiceTypeExport   InvoiceType = 3
	InvoiceTypeContract InvoiceType = 4
)

// InvoicePattern classifies the invoice purpose
type InvoicePattern int

// Invoice patterns
const (
	PatternSale   InvoicePattern = 1
	PatternReturn InvoicePattern = 2
	PatternCancel InvoicePattern = 3
)

// PaymentMethod is the settlement method
type PaymentMethod int

// Payment methods
const (
	PaymentCash   PaymentMethod = 1
	PaymentCredit PaymentMethod = 2
	PaymentBoth   PaymentMethod = 3
)

// BuyerType classifies the buyer party
type BuyerType int

// Buyer types
const (
	BuyerLegal      BuyerType = 1
	BuyerIndividual BuyerType = 2
	BuyerForeign    BuyerType = 3
	BuyerPassport   BuyerType = 4
)

// Header is the invoice header in the tax authority's wire shape. The
// field names and their null-vs-populated presence rules come from the
// authority's schema and must survive serialization byte-for-byte;
// optional fields are pointers without omitempty so they marshal as
// explicit nulls.
type Header struct {
	TaxID        string         `json:"taxid"`
	IssuedAt     int64          `json:"indatim"`
	CreatedAt    int64          `json:"indati2m"`
	Type         InvoiceType    `json:"inty"`
	Number       string         `json:"inno"`
	RefTaxID     *string        `json:"irtaxid"`
	Pattern      InvoicePattern `json:"inp"`
	Subject      int            `json:"ins"`
	SellerTIN    string         `json:"tins"`
	BuyerTIN     string         `json:"tinb"`
	BuyerType    BuyerType      `json:"tob"`
	BuyerID      *string        `json:"bid"`
	SellerBranch *string        `json:"sbc"`
	BuyerPostal  *string        `json:"bpc"`
	BuyerBranch  *string        `json:"bbc"`
	FlightType   *int64         `json:"ft"`
	BuyerPass    *string        `json:"bpn"`
	SellCardLine *string        `json:"scln"`
	SellCardCode *string        `json:"scc"`
	CottageNo    *string        `json:"crn"`
	BillID       *string        `json:"billid"`
	TotalPre     int64          `json:"tprdis"`
	TotalDisc    int64          `json:"tdis"`
	TotalPost    int64          `json:"tadis"`
	TotalVAT     int64          `json:"tvam"`
	TotalOther   int64          `json:"todam"`
	TotalBill    int64          `json:"tbill"`
	Settlement   PaymentMethod  `json:"setm"`
	CashPayment  *int64         `json:"cap"`
	InsPayment   int64          `json:"insp"`
	TotalVOP     int64          `json:"tvop"`
	Tax17        int64          `json:"tax17"`

	// Extra carries authority-specific header overrides merged into the
	// JSON object at serialization time.
	Extra map[string]interface{} `json:"-"`
}

// MarshalJSON merges Extra fields into the header object.
func (h Header) MarshalJSON() ([]byte, error) {
	type alias Header
	return marshalWithExtra(alias(h), h.Extra)
}

// BodyItem is one invoice line in the authority's wire shape, with the
// derived totals embedded. Presence rules mirror Header.
type BodyItem struct {
	ProductCode string  `json:"sstid"`
	Description string  `json:"sstt"`
	Quantity    int64   `json:"am"`
	Unit        string  `json:"mu"`
	UnitFee     int64   `json:"fee"`
	CurrFee     *int64  `json:"cfee"`
	CurrType    *string `json:"cut"`
	ExchRate    *int64  `json:"exr"`
	PreDisc     int64   `json:"prdis"`
	Discount    int64   `json:"dis"`
	PostDisc    int64   `json:"adis"`
	VATRate     int64   `json:"vra"`
	VATAmount   int64   `json:"vam"`
	OtherTaxT   *string `json:"odt"`
	OtherTaxR   *int64  `json:"odr"`
	OtherTaxAmt *int64  `json:"odam"`
	OtherLevyT  *string `json:"olt"`
	OtherLevyR  *int64  `json:"olr"`
	OtherLevyA  *int64  `json:"olam"`
	ConsFee     *int64  `json:"consfee"`
	SellerProf  *int64  `json:"spro"`
	Brokerage   *int64  `json:"bros"`
	TotalCPBS   *int64  `json:"tcpbs"`
	CashPortion *int64  `json:"cop"`
	VATPortion  int64   `json:"vop"`
	SellerRefNo *string `json:"bsrn"`
	LineTotal   int64   `json:"tsstam"`

	Extra map[string]interface{} `json:"-"`
}

// MarshalJSON merges Extra fields into the item object.
func (b BodyItem) MarshalJSON() ([]byte, error) {
	type alias BodyItem
	return marshalWithExtra(alias(b), b.Extra)
}

// InvoiceDocument is the complete structured invoice handed to the
// transport and signing collaborator. Immutable once assembled.
type InvoiceDocument struct {
	Header   *Header       `json:"header"`
	Body     []*BodyItem   `json:"body"`
	Payments []interface{} `json:"payments"`
}

// Encode serializes the document to the JSON form expected by the
// transport collaborator.
func (d *InvoiceDocument) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// marshalWithExtra marshals v, then overlays the extra fields onto the
// resulting object. Raw messages keep large rial amounts from being
// round-tripped through float64.
func marshalWithExtra(v interface{}, extra map[string]interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return data, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	for k, val := range extra {
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		obj[k] = raw
	}
	return json.Marshal(obj)
}
