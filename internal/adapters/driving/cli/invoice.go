package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

// defaultTaxRate is the general sales tax rate applied when --tax-rate is omitted.
const defaultTaxRate = 18.0

var invoiceReq struct {
	price       float64
	taxRate     float64
	discount    float64
	furtherTax  float64
	itemCode    string
	itemName    string
	pctCode     string
	buyerNTN    string
	paymentMode int
}

var invoiceListStatus string

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Raise and inspect FBR invoices",
}

var invoiceCreateCmd = &cobra.Command{
	Use:   "create <chassis>",
	Short: "Queue an invoice for a captured record",
	Long: `Builds an FBR invoice from the captured record with the given chassis number
and queues it as PENDING. The record is removed once the invoice is queued.
The invoice is submitted by the next sync cycle.`,
	Args: cobra.ExactArgs(1),
	RunE: runInvoiceCreate,
}

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued invoices in submission order",
	RunE:  runInvoiceList,
}

func init() {
	f := invoiceCreateCmd.Flags()
	f.Float64Var(&invoiceReq.price, "price", 0, "sale value excluding tax (required)")
	f.Float64Var(&invoiceReq.taxRate, "tax-rate", defaultTaxRate, "sales tax rate in percent")
	f.Float64Var(&invoiceReq.discount, "discount", 0, "discount amount")
	f.Float64Var(&invoiceReq.furtherTax, "further-tax", 0, "further tax amount")
	f.StringVar(&invoiceReq.itemCode, "item-code", "", "item code (default chassis number)")
	f.StringVar(&invoiceReq.itemName, "item-name", "", "item name (default model and colour)")
	f.StringVar(&invoiceReq.pctCode, "pct-code", "", "PCT code of the item")
	f.StringVar(&invoiceReq.buyerNTN, "buyer-ntn", "", "buyer NTN, if registered")
	f.IntVar(&invoiceReq.paymentMode, "payment-mode", int(domain.PaymentModeCash),
		"payment mode: 1 cash, 2 card, 3 gift voucher, 4 loyalty card, 5 mixed, 6 cheque")
	_ = invoiceCreateCmd.MarkFlagRequired("price")

	invoiceListCmd.Flags().StringVar(&invoiceListStatus, "status", "", "filter by status: pending, synced or failed")

	invoiceCmd.AddCommand(invoiceCreateCmd)
	invoiceCmd.AddCommand(invoiceListCmd)
	rootCmd.AddCommand(invoiceCmd)
}

func runInvoiceCreate(cmd *cobra.Command, args []string) error {
	if invoiceService == nil {
		return errors.New("invoice service not configured")
	}

	inv, err := invoiceService.CreateFromRecord(cmd.Context(), domain.InvoiceRequest{
		ChassisNumber: args[0],
		ItemCode:      invoiceReq.itemCode,
		ItemName:      invoiceReq.itemName,
		PCTCode:       invoiceReq.pctCode,
		SaleValue:     invoiceReq.price,
		TaxRate:       invoiceReq.taxRate,
		Discount:      invoiceReq.discount,
		FurtherTax:    invoiceReq.furtherTax,
		PaymentMode:   domain.PaymentMode(invoiceReq.paymentMode),
		BuyerNTN:      invoiceReq.buyerNTN,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no captured record for chassis %s", args[0])
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	cmd.Printf("Queued invoice %s (id %d)\n", inv.InvoiceNumber, inv.ID)
	cmd.Printf("  USIN:  %s\n", inv.Payload.USIN)
	cmd.Printf("  Total: %.2f (tax %.2f)\n", inv.Payload.TotalBillAmount, inv.Payload.TotalTaxCharged)
	return nil
}

func runInvoiceList(cmd *cobra.Command, _ []string) error {
	if invoiceService == nil {
		return errors.New("invoice service not configured")
	}

	status := domain.InvoiceStatus(strings.ToUpper(invoiceListStatus))
	invoices, err := invoiceService.List(cmd.Context(), status)
	if err != nil {
		return fmt.Errorf("failed to list invoices: %w", err)
	}

	if len(invoices) == 0 {
		cmd.Println("No invoices.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "INVOICE", "CHASSIS", "TOTAL", "STATUS", "TRIES", "FBR NUMBER / MESSAGE")

	for i := range invoices {
		inv := &invoices[i]
		detail := inv.FBRInvoiceNumber
		if detail == "" {
			detail = truncate(inv.ResponseMessage, 48)
		}
		t.Row(
			strconv.FormatInt(inv.ID, 10),
			inv.InvoiceNumber,
			inv.ChassisNumber,
			fmt.Sprintf("%.2f", inv.Payload.TotalBillAmount),
			inv.Status.String(),
			strconv.Itoa(inv.Attempts),
			detail,
		)
	}

	cmd.Println(t.String())
	cmd.Printf("%d invoices\n", len(invoices))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
