package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/moadian/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for invoice assembly and identifier
operations.

The API provides endpoints for:
  - POST /api/v1/invoices       - Assemble an invoice document
  - POST /api/v1/taxids         - Mint a tax identifier
  - POST /api/v1/taxids/verify  - Verify a tax identifier
  - POST /api/v1/serials/next   - Allocate a serial number
  - GET  /health                - Health check

Examples:
  # Start server on default port
  moadian serve --fiscal-id A3NFZT --seller-tin 14011234567

  # Start on custom port in debug mode
  moadian serve --fiscal-id A3NFZT --seller-tin 14011234567 --address :9090 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 30*time.Second, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync()

	config := &server.Config{
		Address:      serverAddr,
		FiscalID:     fiscalID,
		SellerTIN:    sellerTIN,
		StorageDir:   storageDir,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug,
		Logger:       log,
	}

	srv, err := server.NewServer(config)
	if err != nil {
		return err
	}

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s (fiscal ID %s)\n", serverAddr, fiscalID)
	return srv.Run()
}
