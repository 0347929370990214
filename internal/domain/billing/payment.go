package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCash || m == PaymentMethodBankTransfer
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Payment represents a single payment against a bill.
// Payments are append-only; a wrong payment is corrected by a new record.
type Payment struct {
	ID            uuid.UUID       `json:"id"`
	BillID        uuid.UUID       `json:"bill_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaymentDate   time.Time       `json:"payment_date"`
	TransactionID string          `json:"transaction_id"`

	// Cash details
	ReceivedBy string `json:"received_by,omitempty"`
	ReceiptNo  string `json:"receipt_no,omitempty"`

	// Bank transfer details
	BankName          string `json:"bank_name,omitempty"`
	CardLast4         string `json:"card_last4,omitempty"`
	AuthorizationCode string `json:"authorization_code,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// NewPayment creates a new payment record
func NewPayment(amount valueobject.Money, method PaymentMethod, paymentDate time.Time, transactionID string) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	return &Payment{
		ID:            uuid.New(),
		Amount:        amount.Amount(),
		PaymentMethod: method,
		PaymentDate:   paymentDate,
		TransactionID: transactionID,
	}, nil
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(p.Amount)
}

// CoerceAmount parses a numeric amount that may arrive as a string from
// upstream records. Unparsable or empty values coerce to zero rather than
// failing, matching how historical records are tallied.
func CoerceAmount(raw string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}
