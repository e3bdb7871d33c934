package service

import "bondflow/internal/model"

// QuotePublisher records streamed quotes under their product key and
// republishes them to its observers (the streaming history sink and any
// live viewers).
type QuotePublisher struct {
	*Store[model.PriceStream]
}

// NewQuotePublisher constructs the streaming service.
func NewQuotePublisher() *QuotePublisher {
	return &QuotePublisher{
		Store: NewStore("STREAMING", func(ps model.PriceStream) string { return ps.Product.ID() }),
	}
}

// OnAdd implements Observer[model.PriceStream]; the publisher is registered
// on the quote streamer.
func (s *QuotePublisher) OnAdd(stream model.PriceStream) { s.Ingest(stream) }

func (s *QuotePublisher) OnRemove(model.PriceStream) {}
func (s *QuotePublisher) OnUpdate(model.PriceStream) {}
