package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/moadian/internal/invoice"
	"github.com/rezonia/moadian/internal/model"
	"github.com/rezonia/moadian/internal/serial"
	"github.com/rezonia/moadian/internal/taxid"
)

var buildOutput string

// buildRequest is the JSON shape accepted by the build command.
type buildRequest struct {
	BuyerTIN      string                 `json:"buyer_tin"`
	BuyerType     int                    `json:"buyer_type"`
	InvoiceType   int                    `json:"invoice_type"`
	Pattern       int                    `json:"pattern"`
	PaymentMethod int                    `json:"payment_method"`
	IssuedAtMs    *int64                 `json:"issued_at_ms"`
	RefTaxID      string                 `json:"ref_taxid"`
	ExtraHeader   map[string]interface{} `json:"extra_header"`
	Items         []buildRequestItem     `json:"items"`
}

type buildRequestItem struct {
	ProductCode     string                 `json:"product_code"`
	Description     string                 `json:"description"`
	UnitFee         int64                  `json:"unit_fee"`
	Quantity        int64                  `json:"quantity"`
	Unit            string                 `json:"unit"`
	DiscountPerUnit int64                  `json:"discount_per_unit"`
	VATRate         *int64                 `json:"vat_rate"`
	Extra           map[string]interface{} `json:"extra"`
}

var buildCmd = &cobra.Command{
	Use:   "build [request.json]",
	Short: "Assemble an invoice document",
	Long: `Assemble a complete invoice document from a JSON request file,
allocating a serial, minting the tax identifier, and computing all
monetary aggregates.

The request file holds the buyer, settlement, and line item data:

  {
    "buyer_tin": "14011576540",
    "payment_method": 1,
    "items": [
      {"product_code": "2330004219206", "description": "product", "unit_fee": 10000}
    ]
  }

Examples:
  moadian build --fiscal-id A3NFZT --seller-tin 14011234567 request.json
  moadian build --fiscal-id A3NFZT --seller-tin 14011234567 -o invoice.json request.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Write the document to a file instead of stdout")
}

func runBuild(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("cannot read request file: %w", err)
	}

	var req buildRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("cannot parse request file: %w", err)
	}

	gen, err := taxid.NewGenerator(fiscalID)
	if err != nil {
		return err
	}
	store, err := serial.NewFileStore(storageDir)
	if err != nil {
		return err
	}
	log := newLogger()
	ledger := serial.NewLedger(gen.FiscalID(), store, serial.WithLogger(log))

	builder, err := invoice.NewBuilder(gen, ledger, sellerTIN)
	if err != nil {
		return err
	}

	builder.SetBuyer(req.BuyerTIN, buyerType(req.BuyerType))
	if req.InvoiceType != 0 || req.Pattern != 0 {
		builder.SetType(invoiceType(req.InvoiceType), pattern(req.Pattern))
	}
	if req.PaymentMethod != 0 {
		builder.SetPaymentMethod(model.PaymentMethod(req.PaymentMethod))
	}
	if req.IssuedAtMs != nil {
		builder.SetIssuedAt(time.UnixMilli(*req.IssuedAtMs))
	}
	if req.RefTaxID != "" {
		builder.SetCorrection(req.RefTaxID)
	}
	for k, v := range req.ExtraHeader {
		builder.SetHeaderField(k, v)
	}

	for _, ir := range req.Items {
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

		item, err := model.NewLineItem(ir.ProductCode, ir.Description, ir.UnitFee, opts...)
		if err != nil {
			return err
		}
		builder.AddItem(item)
	}

	doc, err := builder.Build()
	if err != nil {
		return err
	}

	out := os.Stdout
	if buildOutput != "" {
		f, err := os.Create(buildOutput)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}

	if buildOutput != "" {
		fmt.Printf("Invoice %s written to %s\n", doc.Header.TaxID, buildOutput)
	}
	return nil
}

func buyerType(v int) model.BuyerType {
	if v == 0 {
		return model.BuyerIndividual
	}
	return model.BuyerType(v)
}

func invoiceType(v int) model.InvoiceType {
	if v == 0 {
		return model.InvoiceTypeSale
	}
	return model.InvoiceType(v)
}

func pattern(v int) model.InvoicePattern {
	if v == 0 {
		return model.PatternSale
	}
	return model.InvoicePattern(v)
}
