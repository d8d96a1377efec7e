package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validPayload() InvoicePayload {
	return InvoicePayload{
		InvoiceNumber:   "INV-1",
		POSID:           101,
		USIN:            "usin-1",
		DateTime:        "2026-01-02 10:11:12",
		TotalBillAmount: 180000,
		TotalQuantity:   1,
		TotalSaleValue:  152542.37,
		TotalTaxCharged: 27457.63,
		PaymentMode:     PaymentModeCash,
		InvoiceType:     1,
		Items: []InvoiceItem{{
			ItemCode:    "CG125",
			ItemName:    "CG 125",
			Quantity:    1,
			PCTCode:     "87112010",
			TaxRate:     18,
			SaleValue:   152542.37,
			TotalAmount: 180000,
			TaxCharged:  27457.63,
			InvoiceType: 1,
		}},
	}
}

func TestInvoicePayload_Validate(t *testing.T) {
	p := validPayload()
	assert.NoError(t, p.Validate())
}

func TestInvoicePayload_ValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *InvoicePayload)
		substr string
	}{
		{"pos id", func(p *InvoicePayload) { p.POSID = 0 }, "POSID"},
		{"usin", func(p *InvoicePayload) { p.USIN = " " }, "USIN"},
		{"datetime", func(p *InvoicePayload) { p.DateTime = "yesterday" }, "DateTime"},
		{"items", func(p *InvoicePayload) { p.Items = nil }, "item"},
		{"total", func(p *InvoicePayload) { p.TotalBillAmount = 0 }, "TotalBillAmount"},
		{"payment mode low", func(p *InvoicePayload) { p.PaymentMode = 0 }, "PaymentMode"},
		{"payment mode high", func(p *InvoicePayload) { p.PaymentMode = 7 }, "PaymentMode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.mutate(&p)
			err := p.Validate()
			assert.True(t, errors.Is(err, ErrInvalidPayload))
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}

func TestInvoiceStatus_IsValid(t *testing.T) {
	assert.True(t, InvoiceStatusPending.IsValid())
	assert.True(t, InvoiceStatusSynced.IsValid())
	assert.True(t, InvoiceStatusFailed.IsValid())
	assert.False(t, InvoiceStatus("DONE").IsValid())
}
