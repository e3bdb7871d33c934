package product

import (
	"errors"
	"testing"
	"time"
)

func TestBondLookup(t *testing.T) {
	table := DefaultTable()

	bond, err := table.Bond("TMUBMUSD10Y")
	if err != nil {
		t.Fatalf("Bond: %v", err)
	}
	if bond.CUSIP != "TMUBMUSD10Y" || bond.Coupon != 0.045 {
		t.Errorf("unexpected bond %+v", bond)
	}

	if _, err := table.Bond("NOSUCH"); !errors.Is(err, ErrUnknown) {
		t.Errorf("expected ErrUnknown, got %v", err)
	}
}

func TestPV01Lookup(t *testing.T) {
	table := DefaultTable()

	pv01, err := table.PV01("TMUBMUSD02Y")
	if err != nil {
		t.Fatalf("PV01: %v", err)
	}
	if pv01 != 0.02 {
		t.Errorf("PV01 = %v, want 0.02", pv01)
	}

	if _, err := table.PV01("NOSUCH"); !errors.Is(err, ErrUnknown) {
		t.Errorf("expected ErrUnknown, got %v", err)
	}
}

func TestAdd(t *testing.T) {
	table := DefaultTable()
	table.Add("TESTBOND30Y", Terms{Coupon: 0.05, Maturity: time.Date(2055, 12, 31, 0, 0, 0, 0, time.UTC), PV01: 0.3})

	if _, err := table.Bond("TESTBOND30Y"); err != nil {
		t.Fatalf("Bond after Add: %v", err)
	}
	if len(table.CUSIPs()) != 7 {
		t.Errorf("CUSIPs = %d entries, want 7", len(table.CUSIPs()))
	}
}
