package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillPaymentSummary is the consolidated payment row of one bill
type BillPaymentSummary struct {
	BillID        uuid.UUID       `json:"bill_id"`
	BillNumber    string          `json:"bill_number"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaymentCount  int             `json:"payment_count"`
	LatestPayment *Payment        `json:"latest_payment,omitempty"`
}

// PaymentSummary aggregates all payments across a set of bills,
// one consolidated row per bill that received at least one payment.
type PaymentSummary struct {
	TotalPaid decimal.Decimal      `json:"total_paid"`
	PerBill   []BillPaymentSummary `json:"per_bill"`
}

// AggregatePayments tallies payments across bills.
//
// Pure summation: idempotent and independent of payment ordering. A cancelled
// bill is dropped together with any payments it carries, so the paid side
// shrinks in step with the charge side and the remaining balance stays
// consistent. LatestPayment is the payment with the greatest payment date
// within each bill.
func AggregatePayments(bills []Bill) PaymentSummary {
	summary := PaymentSummary{
		TotalPaid: decimal.Zero,
		PerBill:   make([]BillPaymentSummary, 0, len(bills)),
	}

	for i := range bills {
		bill := &bills[i]
		if bill.Status == BillStatusCancelled || len(bill.Payments) == 0 {
			continue
		}

		row := BillPaymentSummary{
			BillID:     bill.ID,
			BillNumber: bill.BillNumber,
			PaidAmount: decimal.Zero,
		}

		var latest time.Time
		for j := range bill.Payments {
			p := &bill.Payments[j]
			row.PaidAmount = row.PaidAmount.Add(p.Amount)
			row.PaymentCount++
			if row.LatestPayment == nil || p.PaymentDate.After(latest) {
				latest = p.PaymentDate
				cp := *p
				row.LatestPayment = &cp
			}
		}

		summary.TotalPaid = summary.TotalPaid.Add(row.PaidAmount)
		summary.PerBill = append(summary.PerBill, row)
	}

	return summary
}
