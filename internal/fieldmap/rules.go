package fieldmap

import (
	"regexp"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

// Rule binds a canonical field to the selectors and diagnostic keys it may
// appear under.
type Rule struct {
	// Field is the canonical field name.
	Field string

	// Selectors are the CSS selectors observed for the field.
	Selectors []string

	// FallbackKeys are diagnostic id/name keys, compared after normalisation.
	FallbackKeys []string
}

// PartGroup reassembles one identifier split over several inputs.
type PartGroup struct {
	// Field receives the reassembled value.
	Field string

	// Parts are the named part fields, in order.
	Parts []string

	// Structural matches id fragments of unknown selectors that belong to the group.
	Structural *regexp.Regexp

	// Delimiter joins the parts.
	Delimiter string
}

// DefaultRules describes the dealer portal's sale form.
var DefaultRules = []Rule{
	{
		Field:        domain.FieldBuyerName,
		Selectors:    []string{"#txt_full_name", "#txtCustomerName", "#customer_name"},
		FallbackKeys: []string{"fullname", "txtfullname", "customername", "buyername", "name"},
	},
	{
		Field:        domain.FieldFatherName,
		Selectors:    []string{"#txt_father_name", "#txtFatherName"},
		FallbackKeys: []string{"fathername", "txtfathername", "fatherhusbandname", "soname"},
	},
	{
		Field:        domain.FieldCNICPart1,
		Selectors:    []string{"#nic1", "#cnic1"},
		FallbackKeys: []string{"nic1", "cnic1"},
	},
	{
		Field:        domain.FieldCNICPart2,
		Selectors:    []string{"#nic2", "#cnic2"},
		FallbackKeys: []string{"nic2", "cnic2"},
	},
	{
		Field:        domain.FieldCNICPart3,
		Selectors:    []string{"#nic3", "#cnic3"},
		FallbackKeys: []string{"nic3", "cnic3"},
	},
	{
		Field:        domain.FieldBuyerCNIC,
		Selectors:    []string{"#txt_cnic", "#txtCNIC"},
		FallbackKeys: []string{"cnic", "cnicno", "nicno", "txtcnic"},
	},
	{
		Field:        domain.FieldPhone,
		Selectors:    []string{"#txt_mobile", "#txtCellNo", "#txt_phone"},
		FallbackKeys: []string{"mobile", "mobileno", "cellno", "phone", "contactno"},
	},
	{
		Field:        domain.FieldAddress,
		Selectors:    []string{"#txt_address", "#txtAddress"},
		FallbackKeys: []string{"address", "txtaddress", "customeraddress"},
	},
	{
		Field:        domain.FieldCity,
		Selectors:    []string{"#ddl_city", "#txtCity"},
		FallbackKeys: []string{"city", "ddlcity", "cityname"},
	},
	{
		Field:        domain.FieldChassisNumber,
		Selectors:    []string{"#txt_chassis_no", "#txtChassisNo", "#chassis_no"},
		FallbackKeys: []string{"chassisno", "txtchassisno", "chassisnumber", "chasisno"},
	},
	{
		Field:        domain.FieldEngineNumber,
		Selectors:    []string{"#txt_engine_no", "#txtEngineNo", "#engine_no"},
		FallbackKeys: []string{"engineno", "txtengineno", "enginenumber"},
	},
	{
		Field:        domain.FieldColor,
		Selectors:    []string{"#ddl_color", "#txtColor"},
		FallbackKeys: []string{"color", "colour", "ddlcolor"},
	},
	{
		Field:        domain.FieldModel,
		Selectors:    []string{"#ddl_model", "#txtModel"},
		FallbackKeys: []string{"model", "modelname", "ddlmodel", "variant"},
	},
}

// DefaultGroups reassembles the national ID as 5-7-1 digits.
var DefaultGroups = []PartGroup{
	{
		Field:      domain.FieldBuyerCNIC,
		Parts:      []string{domain.FieldCNICPart1, domain.FieldCNICPart2, domain.FieldCNICPart3},
		Structural: regexp.MustCompile(`(?i)(^|[_\-])c?nic([_\-]?\w*)?$`),
		Delimiter:  "-",
	},
}
