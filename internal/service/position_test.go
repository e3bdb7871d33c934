package service

import (
	"testing"

	"bondflow/internal/model"
)

func TestPositionAggregation(t *testing.T) {
	book := NewPositionBook()

	trades := []model.Trade{
		{Product: bond("TMUBMUSD02Y"), TradeID: "T1", Book: "TRSY1", Quantity: 1_000_000, Side: model.Buy},
		{Product: bond("TMUBMUSD02Y"), TradeID: "T2", Book: "TRSY1", Quantity: 400_000, Side: model.Sell},
		{Product: bond("TMUBMUSD02Y"), TradeID: "T3", Book: "TRSY2", Quantity: 2_000_000, Side: model.Buy},
	}
	for _, tr := range trades {
		book.AddTrade(tr)
	}

	position, ok := book.Lookup("TMUBMUSD02Y")
	if !ok {
		t.Fatal("no position for product")
	}
	if got := position.Quantity("TRSY1"); got != 600_000 {
		t.Errorf("TRSY1 = %d, want 600000", got)
	}
	if got := position.Quantity("TRSY2"); got != 2_000_000 {
		t.Errorf("TRSY2 = %d, want 2000000", got)
	}
	if position.Aggregate != 2_600_000 {
		t.Errorf("aggregate = %d, want 2600000", position.Aggregate)
	}
}

func TestPositionAggregateAlwaysSumOfBooks(t *testing.T) {
	book := NewPositionBook()

	var seen []model.Position
	book.AddObserver(OnAddFunc[model.Position](func(p model.Position) { seen = append(seen, p) }))

	book.AddTrade(model.Trade{Product: bond("TMUBMUSD02Y"), TradeID: "T1", Book: "TRSY1", Quantity: 5, Side: model.Buy})
	book.AddTrade(model.Trade{Product: bond("TMUBMUSD02Y"), TradeID: "T2", Book: "TRSY3", Quantity: 2, Side: model.Sell})

	for i, p := range seen {
		var sum int64
		for _, q := range p.Books {
			sum += q
		}
		if p.Aggregate != sum {
			t.Errorf("update %d: aggregate %d != book sum %d", i, p.Aggregate, sum)
		}
	}
	if seen[len(seen)-1].Aggregate != 3 {
		t.Errorf("final aggregate = %d, want 3", seen[len(seen)-1].Aggregate)
	}
}

func TestPositionsIndependentAcrossProducts(t *testing.T) {
	book := NewPositionBook()
	book.AddTrade(model.Trade{Product: bond("TMUBMUSD02Y"), TradeID: "T1", Book: "TRSY1", Quantity: 10, Side: model.Buy})
	book.AddTrade(model.Trade{Product: bond("TMUBMUSD10Y"), TradeID: "T2", Book: "TRSY1", Quantity: 20, Side: model.Buy})

	two, _ := book.Lookup("TMUBMUSD02Y")
	ten, _ := book.Lookup("TMUBMUSD10Y")
	if two.Aggregate != 10 || ten.Aggregate != 20 {
		t.Errorf("cross-product leak: %d / %d", two.Aggregate, ten.Aggregate)
	}
}
