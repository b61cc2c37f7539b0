package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rezonia/moadian/internal/invoice"
	"github.com/rezonia/moadian/internal/model"
	"github.com/rezonia/moadian/internal/serial"
	"github.com/rezonia/moadian/internal/taxid"
)

// Config holds server configuration
type Config struct {
	Address      string
	FiscalID     string
	SellerTIN    string
	StorageDir   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
	Logger       *zap.Logger
}

// Server exposes invoice assembly, identifier minting/verification, and
// serial allocation over HTTP.
type Server struct {
	config *Config
	router *gin.Engine
	gen    *taxid.Generator
	ledger *serial.Ledger
	log    *zap.Logger

	// The builder accumulates per-invoice state; requests serialize on it.
	buildMu sync.Mutex
	builder *invoice.Builder
}

// NewServer creates a new API server
func NewServer(config *Config) (*Server, error) {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	gen, err := taxid.NewGenerator(config.FiscalID)
	if err != nil {
		return nil, err
	}

	store, err := serial.NewFileStore(config.StorageDir)
	if err != nil {
		return nil, err
	}
	ledger := serial.NewLedger(gen.FiscalID(), store, serial.WithLogger(log))

	builder, err := invoice.NewBuilder(gen, ledger, config.SellerTIN)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:  config,
		router:  router,
		gen:     gen,
		ledger:  ledger,
		log:     log,
		builder: builder,
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/invoices", s.handleBuildInvoice)
		v1.POST("/taxids", s.handleMint)
		v1.POST("/taxids/verify", s.handleVerify)
		v1.POST("/serials/next", s.handleNextSerial)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"fiscal_id": s.gen.FiscalID(),
		"time":      time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleBuildInvoice(c *gin.Context) {
	var req BuildInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	items := make([]*model.LineItem, 0, len(req.Items))
	for _, ir := range req.Items {
		item, err := buildLineItem(ir)
		if err != nil {
			respondDomainError(c, err)
			return
		}
		items = append(items, item)
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	b := s.builder.
		SetBuyer(req.BuyerTIN, buyerTypeOrDefault(req.BuyerType)).
		AddItems(items)

	if req.InvoiceType != 0 || req.Pattern != 0 {
		b.SetType(invoiceTypeOrDefault(req.InvoiceType), patternOrDefault(req.Pattern))
	}
	if req.PaymentMethod != 0 {
		b.SetPaymentMethod(model.PaymentMethod(req.PaymentMethod))
	}
	if req.IssuedAtMs != nil {
		b.SetIssuedAt(time.UnixMilli(*req.IssuedAtMs))
	}
	if req.RefTaxID != "" {
		b.SetCorrection(req.RefTaxID)
	}
	for k, v := range req.ExtraHeader {
		b.SetHeaderField(k, v)
	}

	doc, err := b.Build()
	if err != nil {
		// A failed build must not leak its state into the next request.
		s.builder.Reset()
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, BuildInvoiceResponse{
		TaxID:         doc.Header.TaxID,
		InvoiceNumber: doc.Header.Number,
		Document:      doc,
	})
}

func (s *Server) handleMint(c *gin.Context) {
	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	ts := time.Now().UnixMilli()
	if req.TimestampMs != nil {
		ts = *req.TimestampMs
	}

	var serialNo int64
	if req.Serial != nil {
		serialNo = *req.Serial
	} else {
		var err error
		serialNo, err = s.ledger.Next()
		if err != nil {
			respondDomainError(c, err)
			return
		}
	}

	id, err := s.gen.Mint(ts, serialNo)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	number, err := taxid.InvoiceNumber(serialNo)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, MintResponse{
		TaxID:         id,
		Serial:        serialNo,
		InvoiceNumber: number,
	})
}

func (s *Server) handleVerify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, VerifyResponse{
		TaxID: req.TaxID,
		Valid: s.gen.Verify(req.TaxID),
	})
}

func (s *Server) handleNextSerial(c *gin.Context) {
	serialNo, err := s.ledger.Next()
	if err != nil {
		respondDomainError(c, err)
		return
	}

	number, err := taxid.InvoiceNumber(serialNo)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, SerialResponse{
		Serial:        serialNo,
		InvoiceNumber: number,
	})
}

// Helper functions

func buildLineItem(ir BuildItemRequest) (*model.LineItem, error) {
	var opts []model.LineItemOption
	if ir.Quantity > 0 {
		opts = append(opts, model.WithQuantity(ir.Quantity))
	}
	if ir.Unit != "" {
		opts = append(opts, model.WithUnit(ir.Unit))
	}
	if ir.DiscountPerUnit > 0 {
		opts = append(opts, model.WithDiscount(ir.DiscountPerUnit))
	}
	if ir.VATRate != nil {
		opts = append(opts, model.WithVATRate(*ir.VATRate))
	}
	for k, v := range ir.Extra {
		opts = append(opts, model.WithExtra(k, v))
	}
	return model.NewLineItem(ir.ProductCode, ir.Description, ir.UnitFee, opts...)
}

func buyerTypeOrDefault(v int) model.BuyerType {
	if v == 0 {
		return model.BuyerIndividual
	}
	return model.BuyerType(v)
}

func invoiceTypeOrDefault(v int) model.InvoiceType {
	if v == 0 {
		return model.InvoiceTypeSale
	}
	return model.InvoiceType(v)
}

func patternOrDefault(v int) model.InvoicePattern {
	if v == 0 {
		return model.PatternSale
	}
	return model.InvoicePattern(v)
}

func respondDomainError(c *gin.Context, err error) {
	var formatErr *model.FormatError
	var validationErr *model.ValidationError
	var overflowErr *model.OverflowError
	var ledgerErr *model.LedgerError

	switch {
	case errors.As(err, &formatErr), errors.As(err, &validationErr), errors.As(err, &overflowErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.As(err, &ledgerErr):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "serial allocation unavailable", Details: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
