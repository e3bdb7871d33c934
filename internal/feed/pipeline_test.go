package feed

import (
	"fmt"
	"strings"
	"testing"

	"bondflow/internal/ids"
	"bondflow/internal/model"
	"bondflow/internal/product"
	"bondflow/internal/service"
)

// Wires the full desk cascade and drives it from raw feed text, the way the
// binary does.
func TestPipelineEndToEnd(t *testing.T) {
	table := product.DefaultTable()

	n := 0
	idSource := ids.SourceFunc(func() string {
		n++
		return fmt.Sprintf("ORDER%04d", n)
	})

	marketData := service.NewOrderBookStore()
	pricing := service.NewPricingStore()
	executor := service.NewSpreadCrossingExecutor(idSource, 0)
	executions := service.NewExecutionSink()
	trades := service.NewTradeLedger(nil)
	positions := service.NewPositionBook()
	risk := service.NewRiskBook(table)
	streamer := service.NewQuoteStreamer(0)
	quotes := service.NewQuotePublisher()
	inquiries := service.NewInquiryLedger()
	inquiries.SetQuoter(service.SelfQuoter{Ledger: inquiries})

	marketData.AddObserver(executor)
	executor.AddObserver(executions)
	executions.AddObserver(trades)
	trades.AddObserver(positions)
	positions.AddObserver(risk)
	pricing.AddObserver(streamer)
	streamer.AddObserver(quotes)

	// One depth-4 snapshot with a crossable 1/128 spread: best bid 99-316,
	// best offer 100-000.
	marketDataRows := strings.Join([]string{
		"TMUBMUSD02Y,99-316,1000000,BID",
		"TMUBMUSD02Y,99-310,2000000,BID",
		"TMUBMUSD02Y,100-000,1000000,OFFER",
		"TMUBMUSD02Y,100-01+,2000000,OFFER",
	}, "\n")
	if err := NewMarketDataFeed(marketData, table, 4).Run(strings.NewReader(marketDataRows)); err != nil {
		t.Fatalf("market data feed: %v", err)
	}

	// First crossing executes the BID side at the best bid.
	order, ok := executions.Lookup("TMUBMUSD02Y")
	if !ok {
		t.Fatal("no execution emitted")
	}
	if order.Side != model.Bid || order.OrderID != "ORDER0001" {
		t.Errorf("execution = %+v", order)
	}
	wantPrice := 99.0 + 31.0/32 + 6.0/256
	if order.Price != wantPrice {
		t.Errorf("execution price = %v, want %v", order.Price, wantPrice)
	}

	// The execution booked a SELL into TRSY1 and drove position and risk.
	trade, ok := trades.Lookup("ORDER0001")
	if !ok {
		t.Fatal("execution was not booked")
	}
	if trade.Side != model.Sell || trade.Book != "TRSY1" {
		t.Errorf("trade = %+v", trade)
	}
	position, ok := positions.Lookup("TMUBMUSD02Y")
	if !ok {
		t.Fatal("no position recorded")
	}
	if position.Aggregate != -1_000_000 {
		t.Errorf("aggregate = %d, want -1000000", position.Aggregate)
	}
	pv01, ok := risk.Lookup("TMUBMUSD02Y")
	if !ok {
		t.Fatal("no risk entry")
	}
	if pv01.Value != 0.02 || pv01.Quantity != -1_000_000 {
		t.Errorf("pv01 = %+v", pv01)
	}

	// Prices drive the streaming chain.
	if err := NewPriceFeed(pricing, table).Run(strings.NewReader("TMUBMUSD02Y,99-31+,100-00+\n")); err != nil {
		t.Fatalf("price feed: %v", err)
	}
	stream, ok := quotes.Lookup("TMUBMUSD02Y")
	if !ok {
		t.Fatal("no streamed quote")
	}
	if stream.VisibleQuantity != 1_000_000 || stream.HiddenQuantity != 2_000_000 {
		t.Errorf("stream sizes = %d/%d", stream.VisibleQuantity, stream.HiddenQuantity)
	}

	// Inquiries complete their quote loop.
	if err := NewInquiryFeed(inquiries, table).Run(strings.NewReader("INQ000001,TMUBMUSD02Y,BUY,1000000,100-000,RECEIVED\n")); err != nil {
		t.Fatalf("inquiry feed: %v", err)
	}
	inq, _ := inquiries.Lookup("INQ000001")
	if inq.State != model.Done {
		t.Errorf("inquiry state = %s, want DONE", inq.State)
	}
}
