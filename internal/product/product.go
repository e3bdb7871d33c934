// Package product resolves CUSIP identifiers against a static table of
// treasury terms. Lookups of unknown identifiers return an explicit error so
// downstream position and risk math never runs on a zero-valued product.
package product

import (
	"fmt"
	"time"

	"bondflow/internal/model"
)

// ErrUnknown wraps the unknown-CUSIP condition for errors.Is checks.
var ErrUnknown = fmt.Errorf("unknown product")

// Terms describes one instrument in the table.
type Terms struct {
	Coupon   float64
	Maturity time.Time
	PV01     float64
}

// Table maps CUSIPs to instrument terms.
type Table struct {
	entries map[string]Terms
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultTable returns the desk's standard six-treasury universe.
func DefaultTable() *Table {
	return &Table{entries: map[string]Terms{
		"TMUBMUSD02Y": {Coupon: 0.04875, Maturity: date(2025, time.December, 31), PV01: 0.02},
		"TMUBMUSD03Y": {Coupon: 0.04625, Maturity: date(2026, time.December, 31), PV01: 0.03},
		"TMUBMUSD05Y": {Coupon: 0.04375, Maturity: date(2028, time.December, 31), PV01: 0.05},
		"TMUBMUSD07Y": {Coupon: 0.04375, Maturity: date(2030, time.December, 31), PV01: 0.07},
		"TMUBMUSD10Y": {Coupon: 0.04500, Maturity: date(2033, time.December, 31), PV01: 0.10},
		"TMUBMUSD20Y": {Coupon: 0.04750, Maturity: date(2043, time.December, 31), PV01: 0.20},
	}}
}

// Add registers or replaces an instrument.
func (t *Table) Add(cusip string, terms Terms) {
	t.entries[cusip] = terms
}

// Bond resolves a CUSIP to its product value.
func (t *Table) Bond(cusip string) (model.Bond, error) {
	terms, ok := t.entries[cusip]
	if !ok {
		return model.Bond{}, fmt.Errorf("%w: %s", ErrUnknown, cusip)
	}
	return model.Bond{CUSIP: cusip, Coupon: terms.Coupon, Maturity: terms.Maturity}, nil
}

// PV01 returns the static risk coefficient for a CUSIP.
func (t *Table) PV01(cusip string) (float64, error) {
	terms, ok := t.entries[cusip]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknown, cusip)
	}
	return terms.PV01, nil
}

// CUSIPs lists the identifiers in the table in unspecified order.
func (t *Table) CUSIPs() []string {
	out := make([]string, 0, len(t.entries))
	for c := range t.entries {
		out = append(out, c)
	}
	return out
}
