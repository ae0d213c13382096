package kernel

import (
	"fmt"

	"geoshop/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency all catalog prices are expressed in.
const DefaultCurrency = "CHF"

// ErrMoneyIsNotConstructed indicates that a Money value was not created
// through one of the constructor functions.
var ErrMoneyIsNotConstructed = errs.NewValueIsRequiredError(
	"money must be created via NewMoney or ZeroMoney")

// Money is a currency-tagged decimal amount.
//
// Arithmetic between mixed currencies fails rather than converting; the
// platform prices everything in a single configured currency and treats a
// mismatch as a programming error surfaced to the caller.
type Money struct {
	amount        decimal.Decimal
	currency      string
	isConstructed bool
}

// NewMoney creates a monetary amount in the given currency.
// The currency must be a non-empty ISO 4217 code.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("currency",
			fmt.Errorf("%q is not a three-letter currency code", currency))
	}
	return Money{amount: amount, currency: currency, isConstructed: true}, nil
}

// ZeroMoney returns the zero amount in the given currency.
func ZeroMoney(currency string) Money {
	return Money{amount: decimal.Zero, currency: currency, isConstructed: true}
}

// Validate ensures the Money was created through a constructor function.
func (m Money) Validate() error {
	if !m.isConstructed {
		return ErrMoneyIsNotConstructed
	}
	return nil
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the ISO 4217 currency code.
func (m Money) Currency() string {
	return m.currency
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsEqual compares amount and currency.
func (m Money) IsEqual(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Add returns the sum of the two amounts.
// Fails when the currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if err := m.compatibleWith(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency, isConstructed: true}, nil
}

// Mul returns the amount multiplied by the given factor.
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency, isConstructed: true}
}

// GreaterThan reports whether m is strictly larger than other.
// Fails when the currencies differ.
func (m Money) GreaterThan(other Money) (bool, error) {
	if err := m.compatibleWith(other); err != nil {
		return false, err
	}
	return m.amount.GreaterThan(other.amount), nil
}

// RoundCash rounds the amount to the nearest 0.05, the cash rounding rule
// applied to order totals.
func (m Money) RoundCash() Money {
	twenty := decimal.NewFromInt(20)
	rounded := m.amount.Mul(twenty).Round(0).Div(twenty)
	return Money{amount: rounded, currency: m.currency, isConstructed: true}
}

// String renders the amount with two decimals followed by the currency code.
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

func (m Money) compatibleWith(other Money) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := other.Validate(); err != nil {
		return err
	}
	if m.currency != other.currency {
		return errs.NewValueIsInvalidErrorWithCause("currency",
			fmt.Errorf("mixed currencies: %s and %s", m.currency, other.currency))
	}
	return nil
}
