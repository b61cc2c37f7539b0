package taxid_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/moadian/internal/model"
	"github.com/rezonia/moadian/internal/taxid"
)

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name     string
		fiscalID string
		wantErr  bool
	}{
		{"valid", "A3NFZT", false},
		{"valid digits", "123456", false},
		{"lowercase normalized", "a3nfzt", false},
		{"too short", "A3NFZ", true},
		{"too long", "A3NFZT1", true},
		{"empty", "", true},
		{"punctuation", "A3-FZT", true},
		{"non-ascii", "A3NFZé", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := taxid.NewGenerator(tt.fiscalID)
			if tt.wantErr {
				require.Error(t, err)

				var formatErr *model.FormatError
				assert.ErrorAs(t, err, &formatErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, gen.FiscalID(), 6)
			assert.Equal(t, strings.ToUpper(tt.fiscalID), gen.FiscalID())
		})
	}
}

func TestMint_KnownVectors(t *testing.T) {
	tests := []struct {
		name     string
		fiscalID string
		tsMillis int64
		serial   int64
		want     string
	}{
		{"typical", "A3NFZT", 1_700_000_000_000, 123_456_789_012, "A3NFZT04CDB1CBE991A149"},
		{"all zero", "ABC123", 0, 0, "ABC1230000000000000000"},
		{"letters only fiscal", "ZZZZZZ", 1_640_995_200_000, 170_000_000_099, "ZZZZZZ04A312794CA24636"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := taxid.NewGenerator(tt.fiscalID)
			require.NoError(t, err)

			id, err := gen.Mint(tt.tsMillis, tt.serial)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
			assert.Len(t, id, taxid.Length)
			assert.True(t, gen.Verify(id))
		})
	}
}

func TestInvoiceNumber_MatchesSerialSegment(t *testing.T) {
	gen, err := taxid.NewGenerator("A3NFZT")
	require.NoError(t, err)

	serials := []int64{0, 1, 99, 123_456_789_012, 1<<40 - 1}
	for _, serial := range serials {
		id, err := gen.Mint(1_700_000_000_000, serial)
		require.NoError(t, err)

		number, err := taxid.InvoiceNumber(serial)
		require.NoError(t, err)
		assert.Len(t, number, 10)
		assert.Equal(t, id[11:21], number, "serial=%d", serial)
	}
}

func TestMint_Bounds(t *testing.T) {
	gen, err := taxid.NewGenerator("A3NFZT")
	require.NoError(t, err)

	var overflowErr *model.OverflowError
	var formatErr *model.FormatError

	// Serial beyond 10 hex digits
	_, err = gen.Mint(0, 1<<40)
	require.Error(t, err)
	assert.ErrorAs(t, err, &overflowErr)

	// Day counter beyond 5 hex digits: 16^5 days after the epoch
	_, err = gen.Mint((1<<20)*int64(86_400_000), 1)
	require.Error(t, err)
	assert.ErrorAs(t, err, &overflowErr)

	// Negatives
	_, err = gen.Mint(-1, 1)
	require.Error(t, err)
	assert.ErrorAs(t, err, &formatErr)

	_, err = gen.Mint(0, -1)
	require.Error(t, err)
	assert.ErrorAs(t, err, &formatErr)

	// Largest encodable values still mint
	id, err := gen.Mint((1<<20)*int64(86_400_000)-1, 1<<40-1)
	require.NoError(t, err)
	assert.True(t, gen.Verify(id))
}

func TestVerify_RejectsWrongLength(t *testing.T) {
	gen, err := taxid.NewGenerator("A3NFZT")
	require.NoError(t, err)

	inputs := []string{
		"",
		"A3NFZT",
		"A3NFZT04CDB1CBE991A14",    // 21 chars, check digit missing
		"A3NFZT04CDB1CBE991A1499",  // 23 chars
		"A3NFZT04CDB1CBE991A14900", // 24 chars
	}
	for _, id := range inputs {
		assert.False(t, gen.Verify(id), "id=%q", id)
	}
}

func TestVerify_RejectsTamperedIdentifier(t *testing.T) {
	gen, err := taxid.NewGenerator("A3NFZT")
	require.NoError(t, err)

	id, err := gen.Mint(1_700_000_000_000, 123_456_789_012)
	require.NoError(t, err)
	require.True(t, gen.Verify(id))

	// Flip the check digit
	wrong := byte('0' + (id[21]-'0'+1)%10)
	assert.False(t, gen.Verify(id[:21]+string(wrong)))

	// Corrupt a digit in the serial segment
	replacement := byte('0')
	if id[15] == '0' {
		replacement = '1'
	}
	assert.False(t, gen.Verify(id[:15]+string(replacement)+id[16:]))

	// Character outside the base-36 alphabet
	assert.False(t, gen.Verify("-"+id[1:]))
}

func TestVerify_AcceptsLowercaseRendition(t *testing.T) {
	gen, err := taxid.NewGenerator("A3NFZT")
	require.NoError(t, err)

	id, err := gen.Mint(1_700_000_000_000, 123_456_789_012)
	require.NoError(t, err)

	// Letters transliterate case-insensitively, so a lowercased copy
	// names the same identifier
	assert.True(t, taxid.Verify(strings.ToLower(id)))
	assert.True(t, gen.Verify("a"+id[1:]))

	// Case folding must not loosen tamper detection
	lower := strings.ToLower(id)
	wrong := byte('0' + (lower[21]-'0'+1)%10)
	assert.False(t, taxid.Verify(lower[:21]+string(wrong)))
}

func TestMintVerify_RandomizedRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	for i := 0; i < 10_000; i++ {
		fid := make([]byte, 6)
		for j := range fid {
			fid[j] = alphabet[rng.Intn(len(alphabet))]
		}
		gen, err := taxid.NewGenerator(string(fid))
		require.NoError(t, err)

		ts := rng.Int63n((1 << 20) * int64(86_400_000))
		serial := rng.Int63n(1 << 40)

		id, err := gen.Mint(ts, serial)
		require.NoError(t, err)
		require.Len(t, id, taxid.Length)
		require.True(t, gen.Verify(id), "id=%s fid=%s ts=%d serial=%d", id, fid, ts, serial)

		number, err := taxid.InvoiceNumber(serial)
		require.NoError(t, err)
		require.Equal(t, id[11:21], number)
	}
}
