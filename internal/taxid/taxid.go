// Package taxid mints and verifies the 22-character tax identifier that
// stamps every invoice: a 6-character fiscal memory ID, 5 hex digits of
// days since the unix epoch, 10 hex digits of serial number, and a
// Verhoeff check digit.
package taxid

import (
	"fmt"
	"strings"

	"github.com/rezonia/moadian/internal/model"
	"github.com/rezonia/moadian/internal/verhoeff"
)

const (
	// Length is the full identifier length including the check digit.
	Length = 22

	baseLength = 21

	millisPerDay = 86_400_000

	maxDays   = 1<<20 - 1 // 5 hex digits
	maxSerial = 1<<40 - 1 // 10 hex digits
)

// Generator mints tax identifiers for one fiscal memory ID.
type Generator struct {
	fiscalID string
}

// NewGenerator creates a Generator for a 6-character fiscal memory ID.
// The ID is normalized to uppercase; characters outside [0-9A-Z] are
// rejected.
func NewGenerator(fiscalID string) (*Generator, error) {
	id := strings.ToUpper(fiscalID)
	if len(id) != 6 {
		return nil, model.NewFormatError("fiscal ID", fiscalID, "must be exactly 6 characters")
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return nil, model.NewFormatError("fiscal ID", fiscalID, "must contain only characters 0-9 and A-Z")
		}
	}
	return &Generator{fiscalID: id}, nil
}

// FiscalID returns the normalized fiscal memory ID.
func (g *Generator) FiscalID() string {
	return g.fiscalID
}

// Mint builds the tax identifier for an issuance timestamp (unix
// milliseconds) and a serial number. Values that would not fit their
// fixed hex-digit width are rejected rather than truncated.
func (g *Generator) Mint(timestampMillis, serial int64) (string, error) {
	if timestampMillis < 0 {
		return "", model.NewFormatError("timestamp", timestampMillis, "must not be negative")
	}
	days := timestampMillis / millisPerDay
	if days > maxDays {
		return "", model.NewOverflowError("day counter", days, maxDays)
	}

	serialHex, err := InvoiceNumber(serial)
	if err != nil {
		return "", err
	}

	base := fmt.Sprintf("%s%05X%s", g.fiscalID, days, serialHex)

	check, err := verhoeff.Compute(transliterate(base))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%d", base, check), nil
}

// InvoiceNumber renders a serial as the 10-character zero-padded
// uppercase hex string used for the header invoice-number field. It is
// byte-identical to the serial segment of the minted identifier.
func InvoiceNumber(serial int64) (string, error) {
	if serial < 0 {
		return "", model.NewFormatError("serial", serial, "must not be negative")
	}
	if serial > maxSerial {
		return "", model.NewOverflowError("serial", serial, maxSerial)
	}
	return fmt.Sprintf("%010X", serial), nil
}

// Verify reports whether id is a well-formed tax identifier with a
// correct check digit. It is a predicate: malformed input yields false,
// never an error.
func (g *Generator) Verify(id string) bool {
	return Verify(id)
}

// Verify reports whether id is a well-formed tax identifier with a
// correct check digit. Verification does not depend on the fiscal
// memory ID the identifier was minted for.
func Verify(id string) bool {
	if len(id) != Length {
		return false
	}
	base := id[:baseLength]

	check, err := verhoeff.Compute(transliterate(base))
	if err != nil {
		return false
	}
	return id[baseLength] == byte('0'+check)
}

// transliterate maps the 21-character base to the decimal value string
// fed to the checksum. Digits map to themselves; letters map to their
// Base-36 ordinal rendered as decimal text (A→"10" … Z→"35"),
// case-insensitively, so a lowercase rendition of an identifier
// verifies the same as its canonical form. The authority's validator
// uses this mapping, not character codes.
func transliterate(base string) string {
	var sb strings.Builder
	for i := 0; i < len(base); i++ {
		c := base[i]
		switch {
		case c >= '0' && c <= '9':
			sb.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			fmt.Fprintf(&sb, "%d", int(c-'A')+10)
		case c >= 'a' && c <= 'z':
			fmt.Fprintf(&sb, "%d", int(c-'a')+10)
		default:
			// Passed through unchanged; the checksum rejects it.
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
