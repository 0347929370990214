package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code.
type Currency string

const (
	INR Currency = "INR"
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// DefaultCurrency is assumed wherever a stored amount carries no currency.
const DefaultCurrency = INR

// Money is an immutable monetary amount. Every operation returns a new value.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney builds a Money, rejecting an empty currency.
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromFloat builds a Money from a float64 amount.
func NewMoneyFromFloat(amount float64, currency Currency) (Money, error) {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// NewMoneyFromString builds a Money from a decimal string.
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// NewMoneyINR builds a Money in the default currency.
func NewMoneyINR(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: INR}
}

// NewMoneyINRFromFloat builds an INR Money from a float64.
func NewMoneyINRFromFloat(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount), currency: INR}
}

// NewMoneyINRFromString builds an INR Money from a decimal string.
func NewMoneyINRFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return Money{amount: d, currency: INR}, nil
}

// Zero returns a zero amount in the given currency.
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// ZeroINR returns a zero amount in the default currency.
func ZeroINR() Money {
	return Zero(INR)
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

// withAmount keeps the currency while swapping the amount.
func (m Money) withAmount(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: m.currency}
}

func (m Money) sameCurrency(other Money, op string) error {
	if m.currency != other.currency {
		return fmt.Errorf("cannot %s money with different currencies: %s and %s", op, m.currency, other.currency)
	}
	return nil
}

// Add sums two amounts of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other, "add"); err != nil {
		return Money{}, err
	}
	return m.withAmount(m.amount.Add(other.amount)), nil
}

// MustAdd is Add for amounts known to share a currency. Panics otherwise.
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Subtract takes the difference of two amounts of the same currency.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency(other, "subtract"); err != nil {
		return Money{}, err
	}
	return m.withAmount(m.amount.Sub(other.amount)), nil
}

// MustSubtract is Subtract for amounts known to share a currency.
func (m Money) MustSubtract(other Money) Money {
	result, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Multiply scales the amount by a decimal factor.
func (m Money) Multiply(factor decimal.Decimal) Money {
	return m.withAmount(m.amount.Mul(factor))
}

// MultiplyByInt scales the amount by an integer factor.
func (m Money) MultiplyByInt(factor int64) Money {
	return m.Multiply(decimal.NewFromInt(factor))
}

// Negate flips the sign.
func (m Money) Negate() Money {
	return m.withAmount(m.amount.Neg())
}

// Abs drops the sign.
func (m Money) Abs() Money {
	return m.withAmount(m.amount.Abs())
}

// Round rounds to the given number of decimal places.
func (m Money) Round(places int32) Money {
	return m.withAmount(m.amount.Round(places))
}

// Equals reports whether amount and currency both match.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// LessThan compares two amounts of the same currency.
func (m Money) LessThan(other Money) (bool, error) {
	if err := m.sameCurrency(other, "compare"); err != nil {
		return false, err
	}
	return m.amount.LessThan(other.amount), nil
}

// GreaterThan compares two amounts of the same currency.
func (m Money) GreaterThan(other Money) (bool, error) {
	if err := m.sameCurrency(other, "compare"); err != nil {
		return false, err
	}
	return m.amount.GreaterThan(other.amount), nil
}

// String renders the amount with two decimal places and the currency code.
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

// StringFixed renders the bare amount with the given decimal places.
func (m Money) StringFixed(places int32) string {
	return m.amount.StringFixed(places)
}

// Float64 converts the amount to a float64, possibly losing precision.
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

type moneyJSON struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

// MarshalJSON renders the amount as a string to keep decimal precision.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:   m.amount.String(),
		Currency: m.currency,
	})
}

// UnmarshalJSON assigns fields directly without going through NewMoney, so
// an empty currency is possible here. Use ParseMoneyFromJSON when strict
// validation is needed.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = amount
	m.currency = v.Currency
	return nil
}

// ParseMoneyFromJSON decodes and fully validates a Money.
func ParseMoneyFromJSON(data []byte) (Money, error) {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return Money{}, fmt.Errorf("failed to parse money JSON: %w", err)
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount: %w", err)
	}
	return NewMoney(amount, v.Currency)
}

// Value stores only the numeric amount.
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan reads the numeric amount back. The currency falls back to
// DefaultCurrency when the receiver carries none.
func (m *Money) Scan(value any) error {
	if value == nil {
		m.amount = decimal.Zero
		m.currency = DefaultCurrency
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}

	amount, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	m.amount = amount
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}

// Allocate splits the amount into n parts that sum exactly to the original,
// distributing any leftover cents to the first parts.
func (m Money) Allocate(parts int) ([]Money, error) {
	if parts <= 0 {
		return nil, errors.New("parts must be positive")
	}
	if parts == 1 {
		return []Money{m}, nil
	}

	n := decimal.NewFromInt(int64(parts))
	base := m.amount.Div(n).Truncate(2)
	remainderCents := m.amount.Sub(base.Mul(n)).Mul(decimal.NewFromInt(100)).IntPart()

	result := make([]Money, parts)
	for i := range parts {
		partAmount := base
		if int64(i) < remainderCents {
			partAmount = partAmount.Add(decimal.NewFromFloat(0.01))
		}
		result[i] = m.withAmount(partAmount)
	}
	return result, nil
}
