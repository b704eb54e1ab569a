package percent

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percent represents a percentage on the 0-100 scale, as stored on user
// records (allocation percentages, inflation rate, expected returns).
type Percent struct {
	decimal.Decimal
}

// Fraction represents a rate on the 0-1 scale, as used inside the engine
// (portfolio weights, growth rates, volatilities).
type Fraction struct {
	decimal.Decimal
}

// New creates a Percent from a float64 on the 0-100 scale.
func New(value float64) Percent {
	return Percent{decimal.NewFromFloat(value)}
}

// NewFromDecimal creates a Percent from a decimal on the 0-100 scale.
func NewFromDecimal(d decimal.Decimal) Percent {
	return Percent{d}
}

// Fraction converts a 0-100 percentage to its 0-1 equivalent.
func (p Percent) Fraction() Fraction {
	return Fraction{p.Decimal.Div(hundred)}
}

// NewFraction creates a Fraction from a float64 on the 0-1 scale.
func NewFraction(value float64) Fraction {
	return Fraction{decimal.NewFromFloat(value)}
}

// FromFraction converts a 0-1 rate to its 0-100 percentage equivalent.
func FromFraction(f Fraction) Percent {
	return Percent{f.Decimal.Mul(hundred)}
}

// Percent converts a 0-1 rate to its 0-100 percentage equivalent.
func (f Fraction) Percent() Percent {
	return FromFraction(f)
}

// Float64 returns the fraction as a float64, discarding exactness.
func (f Fraction) Float64() float64 {
	v, _ := f.Decimal.Float64()
	return v
}

// Float64 returns the percentage as a float64, discarding exactness.
func (p Percent) Float64() float64 {
	v, _ := p.Decimal.Float64()
	return v
}

// Zero returns a zero Percent.
func Zero() Percent {
	return Percent{decimal.Zero}
}

// IsZero checks if the percentage is zero.
func (p Percent) IsZero() bool {
	return p.Decimal.IsZero()
}

// String returns the percentage with two decimal places and a % suffix.
func (p Percent) String() string {
	return p.Decimal.StringFixed(2) + "%"
}
