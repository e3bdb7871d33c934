package service

import (
	"testing"

	"bondflow/internal/model"
)

func testBook(cusip string, bids, offers []model.Order) model.OrderBook {
	return model.OrderBook{Product: bond(cusip), Bids: bids, Offers: offers}
}

func TestBestBidOffer(t *testing.T) {
	store := NewOrderBookStore()
	store.Ingest(testBook("TMUBMUSD02Y",
		[]model.Order{
			{Price: 99.50, Quantity: 100, Side: model.Bid},
			{Price: 99.75, Quantity: 200, Side: model.Bid},
			{Price: 99.25, Quantity: 300, Side: model.Bid},
		},
		[]model.Order{
			{Price: 100.00, Quantity: 400, Side: model.Offer},
			{Price: 99.80, Quantity: 500, Side: model.Offer},
			{Price: 100.25, Quantity: 600, Side: model.Offer},
		},
	))

	bo, err := store.BestBidOffer("TMUBMUSD02Y")
	if err != nil {
		t.Fatalf("BestBidOffer: %v", err)
	}
	if bo.Bid.Price != 99.75 || bo.Bid.Quantity != 200 {
		t.Errorf("best bid = %+v, want 99.75/200", bo.Bid)
	}
	if bo.Offer.Price != 99.80 || bo.Offer.Quantity != 500 {
		t.Errorf("best offer = %+v, want 99.80/500", bo.Offer)
	}
}

func TestBestBidOfferMissingProduct(t *testing.T) {
	store := NewOrderBookStore()
	if _, err := store.BestBidOffer("TMUBMUSD02Y"); err == nil {
		t.Fatal("expected error for absent product")
	}
}

func TestAggregateDepthCollapsesDuplicatePrices(t *testing.T) {
	store := NewOrderBookStore()
	store.Ingest(testBook("TMUBMUSD02Y",
		[]model.Order{
			{Price: 99.5, Quantity: 1, Side: model.Bid},
			{Price: 99.5, Quantity: 2, Side: model.Bid},
			{Price: 99.0, Quantity: 3, Side: model.Bid},
		},
		[]model.Order{
			{Price: 100.5, Quantity: 4, Side: model.Offer},
			{Price: 100.0, Quantity: 5, Side: model.Offer},
			{Price: 100.5, Quantity: 6, Side: model.Offer},
		},
	))

	agg, err := store.AggregateDepth("TMUBMUSD02Y")
	if err != nil {
		t.Fatalf("AggregateDepth: %v", err)
	}

	wantBids := []model.Order{
		{Price: 99.0, Quantity: 3, Side: model.Bid},
		{Price: 99.5, Quantity: 3, Side: model.Bid},
	}
	if len(agg.Bids) != len(wantBids) {
		t.Fatalf("bids = %+v, want %+v", agg.Bids, wantBids)
	}
	for i := range wantBids {
		if agg.Bids[i] != wantBids[i] {
			t.Errorf("bid[%d] = %+v, want %+v", i, agg.Bids[i], wantBids[i])
		}
	}

	wantOffers := []model.Order{
		{Price: 100.0, Quantity: 5, Side: model.Offer},
		{Price: 100.5, Quantity: 10, Side: model.Offer},
	}
	for i := range wantOffers {
		if agg.Offers[i] != wantOffers[i] {
			t.Errorf("offer[%d] = %+v, want %+v", i, agg.Offers[i], wantOffers[i])
		}
	}
}

func TestIngestReplacesBookWholesale(t *testing.T) {
	store := NewOrderBookStore()
	store.Ingest(testBook("TMUBMUSD02Y",
		[]model.Order{{Price: 99.0, Quantity: 1, Side: model.Bid}},
		[]model.Order{{Price: 101.0, Quantity: 1, Side: model.Offer}},
	))
	store.Ingest(testBook("TMUBMUSD02Y",
		[]model.Order{{Price: 98.0, Quantity: 7, Side: model.Bid}},
		nil,
	))

	book, _ := store.Lookup("TMUBMUSD02Y")
	if len(book.Bids) != 1 || book.Bids[0].Price != 98.0 || len(book.Offers) != 0 {
		t.Errorf("snapshot not replaced wholesale: %+v", book)
	}
}
