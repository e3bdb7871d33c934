package feed

import (
	"strings"
	"testing"

	"bondflow/internal/model"
	"bondflow/internal/product"
	"bondflow/internal/service"
)

func TestPriceFeed(t *testing.T) {
	store := service.NewPricingStore()
	f := NewPriceFeed(store, product.DefaultTable())

	input := strings.Join([]string{
		"TMUBMUSD02Y,99-316,100-001", // bid 99.9921875, offer 100.00390625
		"BADCUSIP,99-000,100-000",
		"TMUBMUSD03Y,not-a-price,100-000",
		"TMUBMUSD03Y,99-00",
	}, "\n")

	if err := f.Run(strings.NewReader(input)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if store.Len() != 1 {
		t.Fatalf("stored prices = %d, want 1 (bad rows skipped)", store.Len())
	}
	p, _ := store.Lookup("TMUBMUSD02Y")
	wantMid := (99.0 + 31.0/32 + 6.0/256 + 100.0 + 1.0/256) / 2
	if p.Mid != wantMid {
		t.Errorf("mid = %v, want %v", p.Mid, wantMid)
	}
	if p.Spread != 3.0/256 {
		t.Errorf("spread = %v, want 3/256", p.Spread)
	}
}

func TestTradeFeed(t *testing.T) {
	ledger := service.NewTradeLedger(nil)
	f := NewTradeFeed(ledger, product.DefaultTable())

	input := strings.Join([]string{
		"TMUBMUSD05Y,TRADE0001,100-000,TRSY2,3000000,SELL",
		"TMUBMUSD05Y,TRADE0002,99-000,TRSY1,notanumber,BUY",
	}, "\n")

	if err := f.Run(strings.NewReader(input)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if ledger.Len() != 1 {
		t.Fatalf("stored trades = %d, want 1", ledger.Len())
	}
	trade, _ := ledger.Lookup("TRADE0001")
	if trade.Book != "TRSY2" || trade.Side != model.Sell || trade.Quantity != 3_000_000 {
		t.Errorf("trade = %+v", trade)
	}
	if trade.Price != 100.0 {
		t.Errorf("price = %v, want 100", trade.Price)
	}
}

func TestMarketDataFeedGroupsSnapshots(t *testing.T) {
	store := service.NewOrderBookStore()
	f := NewMarketDataFeed(store, product.DefaultTable(), 4)

	input := strings.Join([]string{
		"TMUBMUSD10Y,99-310,1000000,BID",
		"TMUBMUSD10Y,99-300,2000000,BID",
		"TMUBMUSD10Y,100-010,1000000,OFFER",
		"TMUBMUSD10Y,100-020,2000000,OFFER",
		// second snapshot replaces the first
		"TMUBMUSD10Y,99-000,5000000,BID",
		"TMUBMUSD10Y,99-010,5000000,BID",
		"TMUBMUSD10Y,101-000,5000000,OFFER",
		"TMUBMUSD10Y,101-010,5000000,OFFER",
	}, "\n")

	if err := f.Run(strings.NewReader(input)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	book, ok := store.Lookup("TMUBMUSD10Y")
	if !ok {
		t.Fatal("no book stored")
	}
	if len(book.Bids) != 2 || len(book.Offers) != 2 {
		t.Fatalf("book depth = %d/%d, want 2/2", len(book.Bids), len(book.Offers))
	}
	if book.Bids[0].Price != 99.0 {
		t.Errorf("snapshot not replaced: first bid %v", book.Bids[0].Price)
	}
}

func TestMarketDataFeedPartialGroupDropped(t *testing.T) {
	store := service.NewOrderBookStore()
	f := NewMarketDataFeed(store, product.DefaultTable(), 4)

	input := strings.Join([]string{
		"TMUBMUSD10Y,99-310,1000000,BID",
		"TMUBMUSD10Y,100-010,1000000,OFFER",
	}, "\n")

	if err := f.Run(strings.NewReader(input)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("partial group must not produce a snapshot, stored %d", store.Len())
	}
}

func TestInquiryFeed(t *testing.T) {
	ledger := service.NewInquiryLedger()
	ledger.SetQuoter(service.SelfQuoter{Ledger: ledger})
	f := NewInquiryFeed(ledger, product.DefaultTable())

	input := strings.Join([]string{
		"INQ000001,TMUBMUSD20Y,BUY,2000000,100-000,RECEIVED",
		"INQ000002,TMUBMUSD20Y,SELL,1000000,99-000,UNKNOWNSTATE",
	}, "\n")

	if err := f.Run(strings.NewReader(input)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if ledger.Len() != 1 {
		t.Fatalf("stored inquiries = %d, want 1", ledger.Len())
	}
	inq, _ := ledger.Lookup("INQ000001")
	if inq.State != model.Done {
		t.Errorf("state = %s, want DONE after self quote", inq.State)
	}
}

func TestRunFileMissing(t *testing.T) {
	f := NewPriceFeed(service.NewPricingStore(), product.DefaultTable())
	if err := f.RunFile("/no/such/file.txt"); err == nil {
		t.Fatal("missing feed file must be an error")
	}
}
