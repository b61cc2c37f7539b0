package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "1.0.0"

	// Global flags
	verbose    bool
	fiscalID   string
	sellerTIN  string
	storageDir string
)

var rootCmd = &cobra.Command{
	Use:   "moadian",
	Short: "Assemble Moadian invoices and mint tax identifiers",
	Long: `Moadian is a CLI for the invoice identity core of the Moadian
e-invoicing system.

It assembles regulator-compliant invoice documents, mints the
checksum-protected 22-character tax identifier, and manages the
serial-number ledger that keeps identifiers unique per fiscal
memory ID.

Examples:
  # Mint a tax identifier with a fresh serial
  moadian mint --fiscal-id A3NFZT

  # Verify a tax identifier
  moadian verify A3NFZT04CDB1CBE991A149

  # Assemble an invoice from a request file
  moadian build --fiscal-id A3NFZT --seller-tin 14011234567 request.json

  # Start the HTTP API
  moadian serve --fiscal-id A3NFZT --seller-tin 14011234567`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&fiscalID, "fiscal-id", "", "6-character fiscal memory ID (env: MOADIAN_FISCAL_ID)")
	rootCmd.PersistentFlags().StringVar(&sellerTIN, "seller-tin", "", "Seller TIN, 11 or 14 digits (env: MOADIAN_SELLER_TIN)")
	rootCmd.PersistentFlags().StringVar(&storageDir, "storage-dir", "", "Directory for serial ledger files (env: MOADIAN_STORAGE_DIR, default: current directory)")

	// Load from environment variables if not set via flags
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if fiscalID == "" {
		fiscalID = os.Getenv("MOADIAN_FISCAL_ID")
	}
	if sellerTIN == "" {
		sellerTIN = os.Getenv("MOADIAN_SELLER_TIN")
	}
	if storageDir == "" {
		storageDir = os.Getenv("MOADIAN_STORAGE_DIR")
	}
	if storageDir == "" {
		storageDir = "."
	}
}

func newLogger() *zap.Logger {
	if verbose {
		log, _ := zap.NewDevelopment()
		return log
	}
	log, _ := zap.NewProduction()
	return log
}
