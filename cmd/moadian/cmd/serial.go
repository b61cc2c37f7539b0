package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/moadian/internal/serial"
	"github.com/rezonia/moadian/internal/taxid"
)

var serialCmd = &cobra.Command{
	Use:   "serial",
	Short: "Manage the serial-number ledger",
}

var serialNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Allocate the next unique serial number",
	Long: `Allocate the next unique serial number for the configured fiscal
memory ID and record it in the persisted ledger.

Examples:
  moadian serial next --fiscal-id A3NFZT
  moadian serial next --fiscal-id A3NFZT --storage-dir /var/lib/moadian`,
	RunE: runSerialNext,
}

var serialResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the serial allocation history",
	Long: `Clear all serial allocation history for the configured fiscal
memory ID.

This discards the ledger's collision memory; subsequent allocations
can repeat serials issued before the reset. Meant for test
environments.`,
	RunE: runSerialReset,
}

func init() {
	rootCmd.AddCommand(serialCmd)
	serialCmd.AddCommand(serialNextCmd)
	serialCmd.AddCommand(serialResetCmd)
}

func newLedger() (*serial.Ledger, error) {
	gen, err := taxid.NewGenerator(fiscalID)
	if err != nil {
		return nil, err
	}
	store, err := serial.NewFileStore(storageDir)
	if err != nil {
		return nil, err
	}
	log := newLogger()
	return serial.NewLedger(gen.FiscalID(), store, serial.WithLogger(log)), nil
}

func runSerialNext(cmd *cobra.Command, args []string) error {
	ledger, err := newLedger()
	if err != nil {
		return err
	}

	serialNo, err := ledger.Next()
	if err != nil {
		return err
	}
	number, err := taxid.InvoiceNumber(serialNo)
	if err != nil {
		return err
	}

	out := map[string]interface{}{
		"serial":         serialNo,
		"invoice_number": number,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runSerialReset(cmd *cobra.Command, args []string) error {
	ledger, err := newLedger()
	if err != nil {
		return err
	}

	if err := ledger.Reset(); err != nil {
		return err
	}
	fmt.Printf("Serial history cleared for %s\n", fiscalID)
	return nil
}
