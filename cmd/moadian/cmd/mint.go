package cmd

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/moadian/internal/serial"
	"github.com/rezonia/moadian/internal/taxid"
)

var (
	mintTimestampMs int64
	mintSerial      int64
)

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a tax identifier",
	Long: `Mint a 22-character tax identifier for the configured fiscal
memory ID.

Without --serial, a fresh serial is allocated from the ledger and
recorded in its history. Without --timestamp-ms, the current time
is used.

Examples:
  # Mint with a fresh serial
  moadian mint --fiscal-id A3NFZT

  # Mint for a fixed timestamp and serial
  moadian mint --fiscal-id A3NFZT --timestamp-ms 1700000000000 --serial 123456789012`,
	RunE: runMint,
}

func init() {
	rootCmd.AddCommand(mintCmd)

	mintCmd.Flags().Int64Var(&mintTimestampMs, "timestamp-ms", 0, "Issuance timestamp in unix milliseconds (default: now)")
	mintCmd.Flags().Int64Var(&mintSerial, "serial", -1, "Serial number (default: allocate from ledger)")
}

func runMint(cmd *cobra.Command, args []string) error {
	gen, err := taxid.NewGenerator(fiscalID)
	if err != nil {
		return err
	}

	ts := mintTimestampMs
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}

	serialNo := mintSerial
	if serialNo < 0 {
		store, err := serial.NewFileStore(storageDir)
		if err != nil {
			return err
		}
		log := newLogger()
		defer log.Sync()

		ledger := serial.NewLedger(gen.FiscalID(), store, serial.WithLogger(log))
		serialNo, err = ledger.Next()
		if err != nil {
			return err
		}
	}

	id, err := gen.Mint(ts, serialNo)
	if err != nil {
		return err
	}
	number, err := taxid.InvoiceNumber(serialNo)
	if err != nil {
		return err
	}

	out := map[string]interface{}{
		"taxid":          id,
		"serial":         serialNo,
		"invoice_number": number,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
