package domain

import (
	"strings"
	"time"
)

// Canonical field names produced by the field mapper.
const (
	FieldBuyerName     = "buyer_name"
	FieldFatherName    = "father_name"
	FieldBuyerCNIC     = "buyer_cnic"
	FieldPhone         = "phone"
	FieldAddress       = "address"
	FieldCity          = "city"
	FieldChassisNumber = "chassis_number"
	FieldEngineNumber  = "engine_number"
	FieldColor         = "color"
	FieldModel         = "model"

	// National ID segments, reassembled into FieldBuyerCNIC.
	FieldCNICPart1 = "cnic_part1"
	FieldCNICPart2 = "cnic_part2"
	FieldCNICPart3 = "cnic_part3"
)

// MappedRecord is the reconciled output of the field mapper:
// canonical field name -> value.
type MappedRecord map[string]string

// Get returns a trimmed field value.
func (m MappedRecord) Get(field string) string {
	return strings.TrimSpace(m[field])
}

// Validate checks the minimum a record needs to be stored.
func (m MappedRecord) Validate() error {
	if m.Get(FieldChassisNumber) == "" {
		return ErrMissingChassis
	}
	return nil
}

// CapturedRecord is one customer/vehicle record, unique per chassis number.
type CapturedRecord struct {
	ID            int64
	Name          string
	FatherName    string
	CNIC          string
	Phone         string
	Address       string
	ChassisNumber string
	EngineNumber  string
	Color         string
	Model         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Deleted       bool
}

// NormalizeChassis returns the uniqueness key for a chassis number.
func NormalizeChassis(chassis string) string {
	return strings.ToUpper(strings.TrimSpace(chassis))
}

// NewCapturedRecord builds a storable record from a mapped record.
// Free-text fields are upper-cased for storage consistency.
func NewCapturedRecord(m MappedRecord) CapturedRecord {
	upper := func(field string) string {
		return strings.ToUpper(m.Get(field))
	}
	return CapturedRecord{
		Name:          upper(FieldBuyerName),
		FatherName:    upper(FieldFatherName),
		CNIC:          m.Get(FieldBuyerCNIC),
		Phone:         m.Get(FieldPhone),
		Address:       upper(FieldAddress),
		ChassisNumber: NormalizeChassis(m.Get(FieldChassisNumber)),
		EngineNumber:  upper(FieldEngineNumber),
		Color:         upper(FieldColor),
		Model:         upper(FieldModel),
	}
}

// SubmissionResult describes what a successful submission stored.
type SubmissionResult struct {
	// Record is the stored record after upsert.
	Record CapturedRecord

	// Created is true when the chassis was new.
	Created bool

	// Mapped is the reconciled field set the record came from.
	Mapped MappedRecord
}

// CaptureStatus is reported to capture status observers.
type CaptureStatus struct {
	// Active is true while a browser session is open.
	Active bool

	// PageURL is the most recent page an observation came from.
	PageURL string

	// Observations is the number of observations held in the session document.
	Observations int

	// LastSubmission is the chassis number of the last stored submission.
	LastSubmission string

	// LastError is the most recent capture pipeline error, if any.
	LastError string
}
