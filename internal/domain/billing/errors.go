package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// PendingBalanceError signals that an admission cannot be discharged while
// money is still owed. It carries the remaining amount so callers can
// pre-fill the settlement flow instead of parsing the message.
type PendingBalanceError struct {
	Remaining decimal.Decimal
}

// Error implements the error interface
func (e *PendingBalanceError) Error() string {
	return fmt.Sprintf("pending balance of %s must be settled before discharge", e.Remaining.StringFixed(2))
}

// NewPendingBalanceError creates a PendingBalanceError for the given remaining amount
func NewPendingBalanceError(remaining decimal.Decimal) *PendingBalanceError {
	return &PendingBalanceError{Remaining: remaining}
}

// AsPendingBalance unwraps err into a PendingBalanceError if it is one
func AsPendingBalance(err error) (*PendingBalanceError, bool) {
	var pbe *PendingBalanceError
	if errors.As(err, &pbe) {
		return pbe, true
	}
	return nil, false
}
