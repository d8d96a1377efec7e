package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driving"
	"github.com/custodia-labs/dealer-capture/internal/logger"
)

// Ensure InvoiceService implements the interface.
var _ driving.InvoiceService = (*InvoiceService)(nil)

// invoiceTypeNew is the FBR invoice type for a regular sale.
const invoiceTypeNew = 1

// InvoiceService raises invoices from captured records.
type InvoiceService struct {
	records  driven.CapturedRecordStore
	queue    driven.InvoiceQueue
	settings driving.SettingsService
	now      func() time.Time
	newUSIN  func() string
}

// NewInvoiceService creates a new invoice service.
func NewInvoiceService(
	records driven.CapturedRecordStore,
	queue driven.InvoiceQueue,
	settings driving.SettingsService,
) *InvoiceService {
	return &InvoiceService{
		records:  records,
		queue:    queue,
		settings: settings,
		now:      time.Now,
		newUSIN:  uuid.NewString,
	}
}

// CreateFromRecord builds an FBR payload for a captured record, queues it
// as PENDING and removes the consumed record.
func (s *InvoiceService) CreateFromRecord(
	ctx context.Context,
	req domain.InvoiceRequest,
) (*domain.PendingInvoice, error) {
	key, err := chassisKey(req.ChassisNumber)
	if err != nil {
		return nil, err
	}
	if req.SaleValue <= 0 {
		return nil, fmt.Errorf("%w: sale value must be positive", domain.ErrInvalidInput)
	}
	if req.TaxRate < 0 || req.Discount < 0 || req.FurtherTax < 0 {
		return nil, fmt.Errorf("%w: tax rate, discount and further tax cannot be negative", domain.ErrInvalidInput)
	}
	if req.PaymentMode == 0 {
		req.PaymentMode = domain.PaymentModeCash
	}

	rec, err := s.records.GetByChassis(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", key, err)
	}
	if rec.Deleted {
		return nil, fmt.Errorf("record %s: %w", key, domain.ErrNotFound)
	}

	settings, err := s.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("resolve settings: %w", err)
	}

	now := s.now()
	inv := &domain.PendingInvoice{
		InvoiceNumber: fmt.Sprintf("INV-%s-%s", now.Format("20060102"), key),
		ChassisNumber: key,
		Payload:       buildPayload(rec, req, settings.FBR.POSID, s.newUSIN(), now),
		Status:        domain.InvoiceStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	inv.Payload.InvoiceNumber = inv.InvoiceNumber

	if err := inv.Payload.Validate(); err != nil {
		return nil, err
	}
	if err := s.queue.Enqueue(ctx, inv); err != nil {
		return nil, fmt.Errorf("queue invoice: %w", err)
	}
	if err := s.records.Delete(ctx, key); err != nil {
		logger.Warn("invoices: record %s queued but not removed: %v", key, err)
	}

	logger.Info("invoices: queued %s (id %d) for chassis %s", inv.InvoiceNumber, inv.ID, key)
	return inv, nil
}

// List returns queued invoices with the given status, or all when empty.
func (s *InvoiceService) List(ctx context.Context, status domain.InvoiceStatus) ([]domain.PendingInvoice, error) {
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: invoice status %q", domain.ErrInvalidInput, status)
	}
	invoices, err := s.queue.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// buildPayload maps a record and sale details to the FBR schema.
// Amounts are rounded to two decimals.
func buildPayload(
	rec *domain.CapturedRecord,
	req domain.InvoiceRequest,
	posID int,
	usin string,
	at time.Time,
) domain.InvoicePayload {
	itemName := strings.TrimSpace(req.ItemName)
	if itemName == "" {
		itemName = strings.TrimSpace(strings.Join([]string{rec.Model, rec.Color}, " "))
	}
	itemCode := req.ItemCode
	if itemCode == "" {
		itemCode = rec.ChassisNumber
	}

	tax := round2(req.SaleValue * req.TaxRate / 100)
	total := round2(req.SaleValue + tax + req.FurtherTax - req.Discount)

	item := domain.InvoiceItem{
		ItemCode:    itemCode,
		ItemName:    itemName,
		Quantity:    1,
		PCTCode:     req.PCTCode,
		TaxRate:     req.TaxRate,
		SaleValue:   round2(req.SaleValue),
		TotalAmount: total,
		TaxCharged:  tax,
		Discount:    round2(req.Discount),
		FurtherTax:  round2(req.FurtherTax),
		InvoiceType: invoiceTypeNew,
	}

	return domain.InvoicePayload{
		POSID:            posID,
		USIN:             usin,
		DateTime:         at.Format(domain.FBRDateTimeLayout),
		BuyerNTN:         req.BuyerNTN,
		BuyerCNIC:        strings.ReplaceAll(rec.CNIC, "-", ""),
		BuyerName:        rec.Name,
		BuyerPhoneNumber: rec.Phone,
		TotalBillAmount:  total,
		TotalQuantity:    1,
		TotalSaleValue:   item.SaleValue,
		TotalTaxCharged:  tax,
		Discount:         item.Discount,
		FurtherTax:       item.FurtherTax,
		PaymentMode:      req.PaymentMode,
		InvoiceType:      invoiceTypeNew,
		Items:            []domain.InvoiceItem{item},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
