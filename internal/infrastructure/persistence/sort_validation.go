package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// AdmissionSortFields contains allowed sort fields for admissions
var AdmissionSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"patient_id":     true,
	"admission_date": true,
	"discharge_date": true,
	"total_amount":   true,
	"status":         true,
}

// BedSortFields contains allowed sort fields for beds
var BedSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"bed_number":    true,
	"ward":          true,
	"bed_type":      true,
	"price_per_day": true,
	"is_occupied":   true,
}

// BillSortFields contains allowed sort fields for bills
var BillSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"bill_number":  true,
	"patient_id":   true,
	"admission_id": true,
	"total_amount": true,
	"due_date":     true,
	"status":       true,
}
