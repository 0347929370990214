package billing

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hms/backend/internal/domain/admission"
)

// ChargeBreakdown is the decomposed charge picture of one admission at a
// reference instant. All view surfaces derive their figures from it.
type ChargeBreakdown struct {
	AdmissionCharge decimal.Decimal `json:"admission_charge"`
	BedCharge       decimal.Decimal `json:"bed_charge"`
	BillItemsTotal  decimal.Decimal `json:"bill_items_total"`
	Total           decimal.Decimal `json:"total"`
}

// StayDays returns the number of chargeable bed days between start and end.
// Partial days round up and every stay is charged at least one day, so a
// same-day admission and discharge bills exactly one day.
func StayDays(start, end time.Time) int64 {
	if !end.After(start) {
		return 1
	}
	days := int64(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// CalculateCharges computes the charge breakdown for an admission.
//
// It is a pure function of its inputs: no I/O, no hidden state, and the
// same inputs always produce the same breakdown. Missing inputs degrade to
// zero contributions rather than failing. The bed charge prorates against
// the discharge date once fixed, otherwise against the reference instant,
// so it stops growing after discharge.
func CalculateCharges(adm *admission.Admission, bed *admission.Bed, bills []Bill, now time.Time) ChargeBreakdown {
	breakdown := ChargeBreakdown{
		AdmissionCharge: decimal.Zero,
		BedCharge:       decimal.Zero,
		BillItemsTotal:  decimal.Zero,
		Total:           decimal.Zero,
	}

	if adm != nil {
		breakdown.AdmissionCharge = adm.TotalAmount

		if bed != nil {
			days := StayDays(adm.AdmissionDate, adm.StayEnd(now))
			breakdown.BedCharge = bed.PricePerDay.Mul(decimal.NewFromInt(days))
		}
	}

	for _, bill := range bills {
		if bill.Status == BillStatusCancelled {
			continue
		}
		for _, item := range bill.Items {
			// Bed-charge lines are materialized into the ledger at discharge;
			// counting them here would double the dynamically computed bed charge.
			if IsBedChargeLine(bill.BillNumber, item.Description) {
				continue
			}
			breakdown.BillItemsTotal = breakdown.BillItemsTotal.Add(item.TotalPrice)
		}
	}

	breakdown.Total = breakdown.AdmissionCharge.
		Add(breakdown.BedCharge).
		Add(breakdown.BillItemsTotal)

	return breakdown
}

// RemainingBalance returns total minus paid, floored at zero.
// Overpayment never produces a negative balance.
func RemainingBalance(total, paid decimal.Decimal) decimal.Decimal {
	remaining := total.Sub(paid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}
