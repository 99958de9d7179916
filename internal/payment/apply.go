package payment

import "errors"

var (
	ErrNonPositiveAmount = errors.New("payment amount must be positive")
	ErrOverpayment       = errors.New("payment exceeds pending amount")
)

// Apply adds an amount to a payment and rederives its status. Pure; the
// store persists the result inside the registering transaction.
func Apply(p Payment, amount float64) (Payment, error) {
	if amount <= 0 {
		return Payment{}, ErrNonPositiveAmount
	}
	if amount > p.Pending() {
		return Payment{}, ErrOverpayment
	}
	p.Paid += amount
	switch {
	case p.Paid >= p.Total:
		p.Status = StatusPaid
	case p.Paid > 0:
		p.Status = StatusPartial
	default:
		p.Status = StatusPending
	}
	return p, nil
}
