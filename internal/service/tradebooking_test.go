package service

import (
	"fmt"
	"testing"

	"bondflow/internal/model"
)

func TestTradeLedgerBookRotationAndSideInversion(t *testing.T) {
	ledger := NewTradeLedger(nil)

	var booked []model.Trade
	ledger.AddObserver(OnAddFunc[model.Trade](func(tr model.Trade) { booked = append(booked, tr) }))

	for i := 0; i < 5; i++ {
		side := model.Bid
		if i%2 == 1 {
			side = model.Offer
		}
		ledger.OnAdd(model.ExecutionOrder{
			Product:  bond("TMUBMUSD02Y"),
			Side:     side,
			OrderID:  fmt.Sprintf("EXEC%05d", i),
			Price:    99.5,
			Quantity: 1_000_000,
		})
	}

	wantBooks := []string{"TRSY1", "TRSY2", "TRSY3", "TRSY1", "TRSY2"}
	wantSides := []model.TradeSide{model.Sell, model.Buy, model.Sell, model.Buy, model.Sell}
	for i, tr := range booked {
		if tr.Book != wantBooks[i] {
			t.Errorf("trade %d book = %s, want %s", i, tr.Book, wantBooks[i])
		}
		if tr.Side != wantSides[i] {
			t.Errorf("trade %d side = %s, want %s", i, tr.Side, wantSides[i])
		}
	}
}

func TestTradeLedgerExternalIngest(t *testing.T) {
	ledger := NewTradeLedger(nil)

	trade := model.Trade{
		Product:  bond("TMUBMUSD02Y"),
		TradeID:  "TRADE0001",
		Price:    100.0,
		Book:     "TRSY2",
		Quantity: 3_000_000,
		Side:     model.Buy,
	}
	ledger.Ingest(trade)

	got, ok := ledger.Lookup("TRADE0001")
	if !ok {
		t.Fatal("trade not stored under trade id")
	}
	if got.Book != "TRSY2" || got.Side != model.Buy {
		t.Errorf("external trade modified on ingest: %+v", got)
	}
}
