// Package billing provides the financial domain model for hospital stays.
//
// This package implements the billing bounded context, which is responsible for:
//   - Bills with itemized charges attached to an admission
//   - Append-only payments recorded against bills
//   - Computing the charge breakdown of a stay (flat admission charge,
//     prorated bed charge and itemized bill lines)
//   - Aggregating payments into per-bill and admission-level summaries
//
// Key Aggregates:
//   - Bill: Itemized charges plus the payments settling them
//
// Pure Functions:
//   - CalculateCharges: Charge breakdown of an admission at a point in time
//   - AggregatePayments: Payment totals across a set of bills
//   - RemainingBalance: Total minus paid, floored at zero
//
// The billing domain integrates with:
//   - Admission domain: For the stay dates and bed rate driving the charges
package billing
