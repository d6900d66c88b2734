package rules

import (
	"securedeal/internal/validation/models"
	id "securedeal/pkg/domain"
)

// SeedRules is the built-in rule catalog for the Czech used-car purchase
// flow. Production deployments load rules from postgres; the seed serves
// fresh installations and tests.
func SeedRules() []models.Rule {
	return []models.Rule{
		// ---- vehicle vs registration certificate ----
		{
			ID: "VEH-001", Name: "VIN Match", Version: 1, Enabled: true,
			Description:      "VIN must match exactly between operator input and the registration certificate",
			Source:           models.FieldRef{Entity: models.EntityVehicle, Field: "vin", Transforms: []string{"REMOVE_SPACES", "UPPERCASE"}},
			Target:           models.FieldRef{Entity: models.EntityOCRVehicleReg, Field: "vin", Transforms: []string{"REMOVE_SPACES", "UPPERCASE"}},
			Comparison:       models.Comparison{Type: models.CompareExact},
			Severity:         models.SeverityCritical,
			BlockOnFail:      true,
			RequiresDocument: models.DocVehicleRegistration,
		},
		{
			ID: "VEH-002", Name: "Plate Number Match", Version: 1, Enabled: true,
			Description:      "Registration plate must match exactly",
			Source:           models.FieldRef{Entity: models.EntityVehicle, Field: "spz", Transforms: []string{"SPZ_NORMALIZE"}},
			Target:           models.FieldRef{Entity: models.EntityOCRVehicleReg, Field: "plate_number", Transforms: []string{"SPZ_NORMALIZE"}},
			Comparison:       models.Comparison{Type: models.CompareExact},
			Severity:         models.SeverityCritical,
			BlockOnFail:      true,
			RequiresDocument: models.DocVehicleRegistration,
		},
		{
			ID: "VEH-003", Name: "Owner Name Match", Version: 1, Enabled: true,
			Description:      "Registered keeper must match the recorded owner",
			Source:           models.FieldRef{Entity: models.EntityVehicle, Field: "owner_name", Transforms: []string{"NAME_NORMALIZE", "REMOVE_DIACRITICS"}},
			Target:           models.FieldRef{Entity: models.EntityOCRVehicleReg, Field: "keeper_name", Transforms: []string{"NAME_NORMALIZE", "REMOVE_DIACRITICS"}},
			Comparison:       models.Comparison{Type: models.CompareExact},
			Severity:         models.SeverityCritical,
			BlockOnFail:      true,
			RequiresDocument: models.DocVehicleRegistration,
		},
		{
			ID: "VEH-004", Name: "Brand Match", Version: 1, Enabled: true,
			Source:           models.FieldRef{Entity: models.EntityVehicle, Field: "brand", Transforms: []string{"TRIM", "UPPERCASE"}},
			Target:           models.FieldRef{Entity: models.EntityOCRVehicleReg, Field: "make", Transforms: []string{"TRIM", "UPPERCASE"}},
			Comparison:       models.Comparison{Type: models.CompareFuzzy, Threshold: 0.8},
			Severity:         models.SeverityWarning,
			RequiresDocument: models.DocVehicleRegistration,
		},
		{
			ID: "VEH-005", Name: "Model Match", Version: 1, Enabled: true,
			Source:           models.FieldRef{Entity: models.EntityVehicle, Field: "model", Transforms: []string{"TRIM", "UPPERCASE"}},
			Target:           models.FieldRef{Entity: models.EntityOCRVehicleReg, Field: "model", Transforms: []string{"TRIM", "UPPERCASE"}},
			Comparison:       models.Comparison{Type: models.CompareFuzzy, Threshold: 0.7},
			Severity:         models.SeverityWarning,
			RequiresDocument: models.DocVehicleRegistration,
		},
		{
			ID: "VEH-006", Name: "First Registration Date", Version: 1, Enabled: true,
			Source:           models.FieldRef{Entity: models.EntityVehicle, Field: "first_registration", Transforms: []string{"NORMALIZE_DATE"}},
			Target:           models.FieldRef{Entity: models.EntityOCRVehicleReg, Field: "first_registration", Transforms: []string{"NORMALIZE_DATE"}},
			Comparison:       models.Comparison{Type: models.CompareExact},
			Severity:         models.SeverityWarning,
			RequiresDocument: models.DocVehicleRegistration,
		},
		{
			ID: "VEH-007", Name: "Engine Power Match", Version: 1, Enabled: true,
			Description: "Engine power within 5 percent tolerance",
			Source:      models.FieldRef{Entity: models.EntityVehicle, Field: "power_kw", Transforms: []string{"EXTRACT_NUMBER"}},
			Target:      models.FieldRef{Entity: models.EntityOCRVehicleReg, Field: "max_power", Transforms: []string{"EXTRACT_NUMBER"}},
			Comparison: models.Comparison{
				Type: models.CompareNumericTolerance, Tolerance: 5, ToleranceMode: models.TolerancePercentage,
			},
			Severity:         models.SeverityWarning,
			RequiresDocument: models.DocVehicleRegistration,
		},

		// ---- vendor (physical person) vs identity card ----
		{
			ID: "VND-001", Name: "Full Name Match", Version: 1, Enabled: true,
			Source:           models.FieldRef{Entity: models.EntityVendor, Field: "name", Transforms: []string{"NAME_NORMALIZE", "REMOVE_DIACRITICS"}},
			Target:           models.FieldRef{Entity: models.EntityOCRIdentityCard, Field: "full_name", Transforms: []string{"NAME_NORMALIZE", "REMOVE_DIACRITICS"}},
			Comparison:       models.Comparison{Type: models.CompareExact},
			Severity:         models.SeverityCritical,
			BlockOnFail:      true,
			ApplicableTo:     []models.VendorType{models.VendorPhysicalPerson},
			RequiresDocument: models.DocIdentityCard,
		},
		{
			ID: "VND-002", Name: "Personal ID Match", Version: 1, Enabled: true,
			Source:           models.FieldRef{Entity: models.EntityVendor, Field: "personal_id", Transforms: []string{"FORMAT_RC"}},
			Target:           models.FieldRef{Entity: models.EntityOCRIdentityCard, Field: "personal_number", Transforms: []string{"FORMAT_RC"}},
			Comparison:       models.Comparison{Type: models.CompareExact},
			Severity:         models.SeverityCritical,
			BlockOnFail:      true,
			ApplicableTo:     []models.VendorType{models.VendorPhysicalPerson},
			RequiresDocument: models.DocIdentityCard,
		},
		{
			ID: "VND-003", Name: "Street Address Match", Version: 1, Enabled: true,
			Source:           models.FieldRef{Entity: models.EntityVendor, Field: "address_street", Transforms: []string{"ADDRESS_NORMALIZE", "REMOVE_DIACRITICS"}},
			Target:           models.FieldRef{Entity: models.EntityOCRIdentityCard, Field: "permanent_stay", Transforms: []string{"ADDRESS_NORMALIZE", "REMOVE_DIACRITICS"}},
			Comparison:       models.Comparison{Type: models.CompareFuzzy, Threshold: 0.6},
			Severity:         models.SeverityWarning,
			ApplicableTo:     []models.VendorType{models.VendorPhysicalPerson},
			RequiresDocument: models.DocIdentityCard,
		},
		{
			ID: "VND-004", Name: "City In Permanent Stay", Version: 1, Enabled: true,
			Source:           models.FieldRef{Entity: models.EntityOCRIdentityCard, Field: "permanent_stay", Transforms: []string{"ADDRESS_NORMALIZE", "REMOVE_DIACRITICS"}},
			Target:           models.FieldRef{Entity: models.EntityVendor, Field: "address_city", Transforms: []string{"ADDRESS_NORMALIZE", "REMOVE_DIACRITICS"}},
			Comparison:       models.Comparison{Type: models.CompareContains},
			Severity:         models.SeverityWarning,
			ApplicableTo:     []models.VendorType{models.VendorPhysicalPerson},
			RequiresDocument: models.DocIdentityCard,
		},
		{
			ID: "VND-005", Name: "Postal Code Match", Version: 1, Enabled: true,
			Source:           models.FieldRef{Entity: models.EntityVendor, Field: "postal_code", Transforms: []string{"REMOVE_SPACES"}},
			Target:           models.FieldRef{Entity: models.EntityOCRIdentityCard, Field: "postal_code", Transforms: []string{"REMOVE_SPACES"}},
			Comparison:       models.Comparison{Type: models.CompareExact},
			Severity:         models.SeverityWarning,
			ApplicableTo:     []models.VendorType{models.VendorPhysicalPerson},
			RequiresDocument: models.DocIdentityCard,
		},
		{
			ID: "VND-006", Name: "Date of Birth Match", Version: 1, Enabled: true,
			Source:           models.FieldRef{Entity: models.EntityVendor, Field: "date_of_birth", Transforms: []string{"NORMALIZE_DATE"}},
			Target:           models.FieldRef{Entity: models.EntityOCRIdentityCard, Field: "date_of_birth", Transforms: []string{"NORMALIZE_DATE"}},
			Comparison:       models.Comparison{Type: models.CompareExact},
			Severity:         models.SeverityInfo,
			ApplicableTo:     []models.VendorType{models.VendorPhysicalPerson},
			RequiresDocument: models.DocIdentityCard,
		},

		// ---- vendor (company) vs external registries ----
		{
			ID: "ARES-001", Name: "Company Existence", Version: 1, Enabled: true,
			Description:  "Company must exist in the business registry",
			Source:       models.FieldRef{Entity: models.EntityCompanyRegistry, Field: "registration_number"},
			Target:       models.FieldRef{Entity: models.EntityVendor, Field: "company_id"},
			Comparison:   models.Comparison{Type: models.CompareExists},
			Severity:     models.SeverityCritical,
			BlockOnFail:  true,
			ApplicableTo: []models.VendorType{models.VendorCompany},
		},
		{
			ID: "ARES-002", Name: "Company Name Match", Version: 1, Enabled: true,
			Source:       models.FieldRef{Entity: models.EntityVendor, Field: "name", Transforms: []string{"TRIM", "UPPERCASE"}},
			Target:       models.FieldRef{Entity: models.EntityCompanyRegistry, Field: "company_name", Transforms: []string{"TRIM", "UPPERCASE"}},
			Comparison:   models.Comparison{Type: models.CompareFuzzy, Threshold: 0.8},
			Severity:     models.SeverityWarning,
			ApplicableTo: []models.VendorType{models.VendorCompany},
		},
		{
			ID: "ARES-003", Name: "VAT ID Match", Version: 1, Enabled: true,
			Source:       models.FieldRef{Entity: models.EntityVendor, Field: "vat_id", Transforms: []string{"FORMAT_DIC"}},
			Target:       models.FieldRef{Entity: models.EntityCompanyRegistry, Field: "vat_id", Transforms: []string{"FORMAT_DIC"}},
			Comparison:   models.Comparison{Type: models.CompareExact},
			Severity:     models.SeverityCritical,
			BlockOnFail:  true,
			ApplicableTo: []models.VendorType{models.VendorCompany},
		},
		{
			ID: "ARES-004", Name: "Company Age Check", Version: 1, Enabled: true,
			Description: "Company must predate the purchase by at least a year",
			Source:      models.FieldRef{Entity: models.EntityCompanyRegistry, Field: "established_on", Transforms: []string{"NORMALIZE_DATE"}},
			Target:      models.FieldRef{Entity: models.EntityVendor, Field: "purchase_date", Transforms: []string{"NORMALIZE_DATE"}},
			Comparison: models.Comparison{
				Type: models.CompareDateTolerance, Tolerance: 365, Direction: models.DateMinDaysBefore,
			},
			Severity:     models.SeverityWarning,
			ApplicableTo: []models.VendorType{models.VendorCompany},
		},
		{
			ID: "DPH-001", Name: "VAT Payer Status", Version: 1, Enabled: true,
			Description:  "Company must be an active VAT payer",
			Source:       models.FieldRef{Entity: models.EntityVATRegistry, Field: "payer_status", Transforms: []string{"TRIM", "UPPERCASE"}},
			Target:       models.FieldRef{Entity: models.EntityVendor, Field: "vat_id"},
			Comparison:   models.Comparison{Type: models.CompareInList, AllowedValues: []string{"ACTIVE"}},
			Severity:     models.SeverityCritical,
			BlockOnFail:  true,
			ApplicableTo: []models.VendorType{models.VendorCompany},
		},
		{
			ID: "DPH-002", Name: "Unreliable VAT Payer Check", Version: 1, Enabled: true,
			Source:       models.FieldRef{Entity: models.EntityVATRegistry, Field: "unreliable"},
			Target:       models.FieldRef{Entity: models.EntityVendor, Field: "vat_id"},
			Comparison:   models.Comparison{Type: models.CompareInList, AllowedValues: []string{"false"}},
			Severity:     models.SeverityCritical,
			BlockOnFail:  true,
			ApplicableTo: []models.VendorType{models.VendorCompany},
		},
		{
			ID: "DPH-003", Name: "Bank Account Registration", Version: 1, Enabled: true,
			Description:  "Purchase account should be among the published VAT accounts",
			Source:       models.FieldRef{Entity: models.EntityVATRegistry, Field: "registered_accounts", Transforms: []string{"REMOVE_SPACES"}},
			Target:       models.FieldRef{Entity: models.EntityVendor, Field: "bank_account", Transforms: []string{"REMOVE_SPACES"}},
			Comparison:   models.Comparison{Type: models.CompareContains},
			Severity:     models.SeverityWarning,
			ApplicableTo: []models.VendorType{models.VendorCompany},
			Condition:    `"bank_account" in vendor`,
		},
		{
			ID: "BL-001", Name: "Vendor Not Blacklisted", Version: 1, Enabled: true,
			Source:      models.FieldRef{Entity: models.EntityBlacklist, Field: "hit"},
			Target:      models.FieldRef{Entity: models.EntityVendor, Field: "name"},
			Comparison:  models.Comparison{Type: models.CompareNotExists},
			Severity:    models.SeverityCritical,
			BlockOnFail: true,
		},

		// ---- cross-entity ----
		{
			ID: "XV-001", Name: "Vehicle Owner Is Vendor", Version: 1, Enabled: true,
			Description: "Registered keeper must be the selling party",
			Source:      models.FieldRef{Entity: models.EntityOCRVehicleReg, Field: "keeper_name", Transforms: []string{"NAME_NORMALIZE", "REMOVE_DIACRITICS"}},
			Target:      models.FieldRef{Entity: models.EntityVendor, Field: "name", Transforms: []string{"NAME_NORMALIZE", "REMOVE_DIACRITICS"}},
			Comparison:  models.Comparison{Type: models.CompareFuzzy, Threshold: 0.95},
			Severity:    models.SeverityCritical,
			BlockOnFail: true,
			RequiresDocument: models.DocVehicleRegistration,
		},
	}
}

// SeedSchedule returns the execution configuration matching SeedRules:
// document checks first, then operator data, then external registries, the
// cross check last.
func SeedSchedule() models.EngineConfig {
	cfg := models.DefaultEngineConfig()
	cfg.ParallelGroups = [][]id.RuleID{
		{"VEH-001", "VEH-002", "VEH-003", "VEH-004", "VEH-005", "VEH-006", "VEH-007"},
		{"VND-001", "VND-002", "VND-003", "VND-004", "VND-005", "VND-006"},
		{"ARES-001", "ARES-002", "ARES-003", "ARES-004", "DPH-001", "DPH-002", "DPH-003", "BL-001"},
		{"XV-001"},
	}
	for _, group := range cfg.ParallelGroups {
		cfg.ExecutionOrder = append(cfg.ExecutionOrder, group...)
	}
	return cfg
}
