package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// InvoiceStatus is the sync status of a queued invoice.
type InvoiceStatus string

// Invoice sync states.
const (
	// InvoiceStatusPending is eligible for the next sync cycle.
	InvoiceStatusPending InvoiceStatus = "PENDING"

	// InvoiceStatusSynced was accepted by FBR.
	InvoiceStatusSynced InvoiceStatus = "SYNCED"

	// InvoiceStatusFailed was rejected permanently and is not retried.
	InvoiceStatusFailed InvoiceStatus = "FAILED"
)

// IsValid returns true if the status is recognised.
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusSynced, InvoiceStatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s InvoiceStatus) String() string {
	return string(s)
}

// PaymentMode is the FBR payment mode code.
type PaymentMode int

// FBR payment modes.
const (
	PaymentModeCash        PaymentMode = 1
	PaymentModeCard        PaymentMode = 2
	PaymentModeGiftVoucher PaymentMode = 3
	PaymentModeLoyaltyCard PaymentMode = 4
	PaymentModeMixed       PaymentMode = 5
	PaymentModeCheque      PaymentMode = 6
)

// IsValid returns true if the mode is within the FBR range.
func (m PaymentMode) IsValid() bool {
	return m >= PaymentModeCash && m <= PaymentModeCheque
}

// FBRDateTimeLayout is the timestamp layout FBR expects.
const FBRDateTimeLayout = "2006-01-02 15:04:05"

// InvoiceItem is one line of an FBR invoice.
type InvoiceItem struct {
	ItemCode    string  `json:"ItemCode"`
	ItemName    string  `json:"ItemName"`
	Quantity    float64 `json:"Quantity"`
	PCTCode     string  `json:"PCTCode"`
	TaxRate     float64 `json:"TaxRate"`
	SaleValue   float64 `json:"SaleValue"`
	TotalAmount float64 `json:"TotalAmount"`
	TaxCharged  float64 `json:"TaxCharged"`
	Discount    float64 `json:"Discount"`
	FurtherTax  float64 `json:"FurtherTax"`
	InvoiceType int     `json:"InvoiceType"`
	RefUSIN     string  `json:"RefUSIN,omitempty"`
}

// InvoicePayload is the body posted to the FBR POS endpoint.
type InvoicePayload struct {
	InvoiceNumber    string        `json:"InvoiceNumber"`
	POSID            int           `json:"POSID"`
	USIN             string        `json:"USIN"`
	DateTime         string        `json:"DateTime"`
	BuyerNTN         string        `json:"BuyerNTN,omitempty"`
	BuyerCNIC        string        `json:"BuyerCNIC,omitempty"`
	BuyerName        string        `json:"BuyerName,omitempty"`
	BuyerPhoneNumber string        `json:"BuyerPhoneNumber,omitempty"`
	TotalBillAmount  float64       `json:"TotalBillAmount"`
	TotalQuantity    float64       `json:"TotalQuantity"`
	TotalSaleValue   float64       `json:"TotalSaleValue"`
	TotalTaxCharged  float64       `json:"TotalTaxCharged"`
	Discount         float64       `json:"Discount"`
	FurtherTax       float64       `json:"FurtherTax"`
	PaymentMode      PaymentMode   `json:"PaymentMode"`
	RefUSIN          string        `json:"RefUSIN,omitempty"`
	InvoiceType      int           `json:"InvoiceType"`
	Items            []InvoiceItem `json:"Items"`
}

// Validate checks the fields FBR requires. All violations are reported.
func (p *InvoicePayload) Validate() error {
	var errs []error
	if p.POSID <= 0 {
		errs = append(errs, errors.New("POSID must be a positive integer"))
	}
	if strings.TrimSpace(p.USIN) == "" {
		errs = append(errs, errors.New("USIN is required"))
	}
	if _, err := time.Parse(FBRDateTimeLayout, p.DateTime); err != nil {
		errs = append(errs, fmt.Errorf("DateTime %q is not %s", p.DateTime, FBRDateTimeLayout))
	}
	if len(p.Items) == 0 {
		errs = append(errs, errors.New("at least one item is required"))
	}
	if p.TotalBillAmount <= 0 {
		errs = append(errs, errors.New("TotalBillAmount must be positive"))
	}
	if !p.PaymentMode.IsValid() {
		errs = append(errs, fmt.Errorf("PaymentMode %d outside %d-%d", p.PaymentMode, PaymentModeCash, PaymentModeCheque))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, errors.Join(errs...))
	}
	return nil
}

// PendingInvoice is a queued invoice and its sync state.
type PendingInvoice struct {
	// ID is the insertion id; the queue drains in ascending ID order.
	ID int64

	// InvoiceNumber is the dealer's invoice number.
	InvoiceNumber string

	// ChassisNumber links the invoice to the vehicle it was raised for.
	ChassisNumber string

	// Payload is the body submitted to FBR.
	Payload InvoicePayload

	// PayloadErr is set when the stored payload could not be decoded.
	PayloadErr error

	// Status is the sync status.
	Status InvoiceStatus

	// ResponseMessage is the last remote response or error message.
	ResponseMessage string

	// FBRInvoiceNumber is the provider-assigned identifier once synced.
	FBRInvoiceNumber string

	// Attempts counts submit attempts across cycles.
	Attempts int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubmitResponse is a successful FBR response.
type SubmitResponse struct {
	// InvoiceNumber is the provider-assigned invoice identifier.
	InvoiceNumber string

	// Code is the provider response code.
	Code string

	// Message is the provider response text.
	Message string
}

// InvoiceRequest holds the inputs for raising an invoice from a captured record.
type InvoiceRequest struct {
	ChassisNumber string
	ItemCode      string
	ItemName      string
	PCTCode       string
	SaleValue     float64
	TaxRate       float64
	Discount      float64
	FurtherTax    float64
	PaymentMode   PaymentMode
	BuyerNTN      string
}
