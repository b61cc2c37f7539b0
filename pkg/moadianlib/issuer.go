package moadianlib

import (
	"go.uber.org/zap"

	"github.com/rezonia/moadian/internal/invoice"
	"github.com/rezonia/moadian/internal/serial"
	"github.com/rezonia/moadian/internal/taxid"
)

// Options configures an Issuer.
type Options struct {
	// FiscalID is the 6-character fiscal memory ID assigned by the tax
	// authority. Required.
	FiscalID string

	// SellerTIN is the seller's 11 or 14 digit tax identification
	// number. Required.
	SellerTIN string

	// StorageDir is where serial allocation history is persisted. Used
	// only when Store is nil.
	StorageDir string

	// Store overrides the persisted serial store, e.g. with an
	// in-memory one for tests.
	Store serial.Store

	// Logger receives ledger degradation warnings. Defaults to a no-op
	// logger.
	Logger *zap.Logger
}

// Issuer bundles the identifier generator, the serial ledger, and the
// invoice builder factory for one fiscal memory ID.
type Issuer struct {
	gen    *taxid.Generator
	ledger *serial.Ledger
	opts   Options
}

// NewIssuer creates an Issuer from options.
func NewIssuer(opts Options) (*Issuer, error) {
	gen, err := taxid.NewGenerator(opts.FiscalID)
	if err != nil {
		return nil, err
	}

	store := opts.Store
	if store == nil {
		dir := opts.StorageDir
		if dir == "" {
			dir = "."
		}
		store, err = serial.NewFileStore(dir)
		if err != nil {
			return nil, err
		}
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	ledger := serial.NewLedger(gen.FiscalID(), store, serial.WithLogger(log))

	issuer := &Issuer{
		gen:    gen,
		ledger: ledger,
		opts:   opts,
	}

	// Validate the seller TIN up front so NewBuilder cannot fail later.
	if _, err := invoice.NewBuilder(gen, ledger, opts.SellerTIN); err != nil {
		return nil, err
	}

	return issuer, nil
}

// FiscalID returns the normalized fiscal memory ID.
func (i *Issuer) FiscalID() string {
	return i.gen.FiscalID()
}

// NewBuilder returns a fresh invoice builder stamping documents with
// this issuer's fiscal memory ID and seller TIN.
func (i *Issuer) NewBuilder() *invoice.Builder {
	b, _ := invoice.NewBuilder(i.gen, i.ledger, i.opts.SellerTIN)
	return b
}

// MintTaxID mints a tax identifier for an issuance timestamp (unix
// milliseconds) and serial number.
func (i *Issuer) MintTaxID(timestampMillis, serialNo int64) (string, error) {
	return i.gen.Mint(timestampMillis, serialNo)
}

// VerifyTaxID reports whether id is well-formed with a valid check digit.
func (i *Issuer) VerifyTaxID(id string) bool {
	return i.gen.Verify(id)
}

// NextSerial allocates the next unique serial number.
func (i *Issuer) NextSerial() (int64, error) {
	return i.ledger.Next()
}

// InvoiceNumber renders a serial as the 10-character uppercase hex
// invoice number embedded in the tax identifier.
func (i *Issuer) InvoiceNumber(serialNo int64) (string, error) {
	return taxid.InvoiceNumber(serialNo)
}

// ResetSerials clears the serial allocation history. Meant for test
// environments; resetting a production ledger discards its collision
// memory.
func (i *Issuer) ResetSerials() error {
	return i.ledger.Reset()
}
