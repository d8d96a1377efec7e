package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMappedRecord_Validate(t *testing.T) {
	assert.True(t, errors.Is(MappedRecord{}.Validate(), ErrMissingChassis))
	assert.True(t, errors.Is(MappedRecord{FieldChassisNumber: "   "}.Validate(), ErrMissingChassis))
	assert.NoError(t, MappedRecord{FieldChassisNumber: "ch-1"}.Validate())
}

func TestNormalizeChassis(t *testing.T) {
	assert.Equal(t, "AHCP123", NormalizeChassis("  ahcp123 "))
}

func TestNewCapturedRecord_UpperCasesFreeText(t *testing.T) {
	rec := NewCapturedRecord(MappedRecord{
		FieldBuyerName:     "musa khan",
		FieldFatherName:    "ali khan",
		FieldBuyerCNIC:     "42201-1234567-1",
		FieldPhone:         "03001234567",
		FieldAddress:       "house 1, street 2, karachi",
		FieldChassisNumber: " ahcp123 ",
		FieldEngineNumber:  "e125x",
		FieldColor:         "red",
		FieldModel:         "cg-125",
	})

	assert.Equal(t, "MUSA KHAN", rec.Name)
	assert.Equal(t, "ALI KHAN", rec.FatherName)
	assert.Equal(t, "42201-1234567-1", rec.CNIC)
	assert.Equal(t, "HOUSE 1, STREET 2, KARACHI", rec.Address)
	assert.Equal(t, "AHCP123", rec.ChassisNumber)
	assert.Equal(t, "E125X", rec.EngineNumber)
	assert.Equal(t, "RED", rec.Color)
	assert.Equal(t, "CG-125", rec.Model)
	assert.False(t, rec.Deleted)
}
