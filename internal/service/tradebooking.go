package service

import (
	"bondflow/internal/model"
	"bondflow/logger"
)

// DefaultBookCycle is the fixed rotation of trading books for
// execution-derived trades.
var DefaultBookCycle = []string{"TRSY1", "TRSY2", "TRSY3"}

// TradeLedger books trades keyed by trade id. It has two ingestion paths:
// externally fed trades via Ingest, and execution-derived trades synthesized
// in OnAdd. The book-rotation counter starts at zero, so the first
// synthesized trade lands in the first book of the cycle.
type TradeLedger struct {
	*Store[model.Trade]
	books      []string
	tradeCount int64
	log        *logger.Log
}

// NewTradeLedger constructs the trade booking service with the given book
// rotation cycle.
func NewTradeLedger(books []string) *TradeLedger {
	if len(books) == 0 {
		books = DefaultBookCycle
	}
	return &TradeLedger{
		Store: NewStore("TRADEBOOKING", func(t model.Trade) string { return t.TradeID }),
		books: books,
		log:   logger.GetLogger(),
	}
}

// OnAdd implements Observer[model.ExecutionOrder]. Each execution intent
// becomes a trade with the side inverted: lifting our bid sells inventory,
// hitting our offer buys it.
func (s *TradeLedger) OnAdd(order model.ExecutionOrder) {
	s.tradeCount++
	side := model.Sell
	if order.Side == model.Offer {
		side = model.Buy
	}
	book := s.books[int((s.tradeCount-1)%int64(len(s.books)))]

	s.log.WithComponent("trade_booking").WithFields(logger.Fields{
		"trade_id": order.OrderID,
		"product":  order.Product.ID(),
		"book":     book,
		"side":     side.String(),
	}).Debug("booking execution-derived trade")

	s.Ingest(model.Trade{
		Product:  order.Product,
		TradeID:  order.OrderID,
		Price:    order.Price,
		Book:     book,
		Quantity: order.Quantity,
		Side:     side,
	})
}

func (s *TradeLedger) OnRemove(model.ExecutionOrder) {}
func (s *TradeLedger) OnUpdate(model.ExecutionOrder) {}
