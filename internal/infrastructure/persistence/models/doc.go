// Package models holds the GORM row types backing the domain aggregates.
//
// Domain entities stay free of ORM tags; these models carry the table
// mappings and optimistic-locking columns, and mappers translate between
// the two representations inside the repositories.
//
//   - base.go: shared ID, timestamp and version columns
//   - admission.go: admission context rows (Admission, Bed)
//   - billing.go: billing context rows (Bill, BillItem, Payment)
package models
