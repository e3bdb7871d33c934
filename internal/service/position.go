package service

import "bondflow/internal/model"

// PositionBook maintains signed per-book, per-product positions. The
// aggregate is recomputed from the per-book entries on every trade so it can
// never drift from their sum.
type PositionBook struct {
	*Store[model.Position]
}

// NewPositionBook constructs the position service.
func NewPositionBook() *PositionBook {
	return &PositionBook{
		Store: NewStore("POSITION", func(p model.Position) string { return p.Product.ID() }),
	}
}

// AddTrade applies a booked trade to the product's position and fans out the
// updated value.
func (s *PositionBook) AddTrade(trade model.Trade) {
	position, ok := s.Lookup(trade.Product.ID())
	if !ok {
		position = model.Position{Product: trade.Product, Books: make(map[string]int64)}
	}

	quantity := trade.Quantity
	if trade.Side == model.Sell {
		quantity = -quantity
	}
	position.Books[trade.Book] += quantity

	var aggregate int64
	for _, q := range position.Books {
		aggregate += q
	}
	position.Aggregate = aggregate

	s.Ingest(position)
}

// OnAdd implements Observer[model.Trade]; the book is registered on the
// trade ledger.
func (s *PositionBook) OnAdd(trade model.Trade) { s.AddTrade(trade) }

func (s *PositionBook) OnRemove(model.Trade) {}
func (s *PositionBook) OnUpdate(model.Trade) {}
