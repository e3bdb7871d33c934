package service

import (
	"testing"

	"bondflow/internal/model"
)

func TestQuoteStreamerPricesAndSizes(t *testing.T) {
	streamer := NewQuoteStreamer(0)

	var quotes []model.PriceStream
	streamer.AddObserver(OnAddFunc[model.PriceStream](func(ps model.PriceStream) {
		quotes = append(quotes, ps)
	}))

	price := model.Price{Product: bond("TMUBMUSD02Y"), Mid: 100.0, Spread: 1.0 / 128}
	for i := 0; i < 4; i++ {
		streamer.OnAdd(price)
	}

	if len(quotes) != 4 {
		t.Fatalf("got %d quotes, want 4", len(quotes))
	}

	wantVisible := []int64{1_000_000, 2_000_000, 1_000_000, 2_000_000}
	for i, q := range quotes {
		if q.VisibleQuantity != wantVisible[i] {
			t.Errorf("quote %d visible = %d, want %d", i, q.VisibleQuantity, wantVisible[i])
		}
		if q.HiddenQuantity != 2*q.VisibleQuantity {
			t.Errorf("quote %d hidden = %d, want 2x visible", i, q.HiddenQuantity)
		}
		if q.BidPrice != 100.0-1.0/256 || q.OfferPrice != 100.0+1.0/256 {
			t.Errorf("quote %d prices = %v/%v, want mid +/- spread/2", i, q.BidPrice, q.OfferPrice)
		}
	}
}
