package service

import "bondflow/internal/model"

// BaseQuoteSize is the visible quantity unit for streamed quotes.
const BaseQuoteSize int64 = 1_000_000

// QuoteStreamer turns price updates into two-sided quotes. Visible size
// alternates between one and two base units on consecutive updates; hidden
// size is always twice the visible size.
type QuoteStreamer struct {
	*Store[model.PriceStream]
	baseSize int64
	sizeFlag bool
}

// NewQuoteStreamer constructs the algo streaming service.
func NewQuoteStreamer(baseSize int64) *QuoteStreamer {
	if baseSize <= 0 {
		baseSize = BaseQuoteSize
	}
	return &QuoteStreamer{
		Store:    NewStore("ALGOSTREAMING", func(ps model.PriceStream) string { return ps.Product.ID() }),
		baseSize: baseSize,
	}
}

// OnAdd implements Observer[model.Price]; the streamer is registered on the
// pricing store.
func (s *QuoteStreamer) OnAdd(price model.Price) {
	visible := s.baseSize
	if s.sizeFlag {
		visible = 2 * s.baseSize
	}
	s.sizeFlag = !s.sizeFlag

	s.Ingest(model.PriceStream{
		Product:         price.Product,
		BidPrice:        price.Mid - price.Spread/2,
		OfferPrice:      price.Mid + price.Spread/2,
		VisibleQuantity: visible,
		HiddenQuantity:  2 * visible,
	})
}

func (s *QuoteStreamer) OnRemove(model.Price) {}
func (s *QuoteStreamer) OnUpdate(model.Price) {}
