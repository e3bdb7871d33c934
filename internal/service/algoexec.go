package service

import (
	"bondflow/internal/ids"
	"bondflow/internal/model"
	"bondflow/logger"
)

// DefaultCrossingThreshold is the widest bid/offer spread the crossing algo
// still treats as executable: a quarter of a 32nd.
const DefaultCrossingThreshold = 1.0 / 128.0

// SpreadCrossingExecutor watches order book updates and emits one execution
// intent whenever the top of book is tight enough to cross. Emitted sides
// strictly alternate starting at BID.
type SpreadCrossingExecutor struct {
	*Store[model.ExecutionOrder]
	ids       ids.Source
	threshold float64
	nextSide  model.PricingSide
	log       *logger.Log
}

// NewSpreadCrossingExecutor constructs the algo execution service. The id
// source must be replaceable for deterministic testing.
func NewSpreadCrossingExecutor(src ids.Source, threshold float64) *SpreadCrossingExecutor {
	if threshold <= 0 {
		threshold = DefaultCrossingThreshold
	}
	return &SpreadCrossingExecutor{
		Store:     NewStore("ALGOEXECUTION", func(eo model.ExecutionOrder) string { return eo.Product.ID() }),
		ids:       src,
		threshold: threshold,
		nextSide:  model.Bid,
		log:       logger.GetLogger(),
	}
}

// OnAdd implements Observer[model.OrderBook]; the executor is registered on
// the order book store.
func (s *SpreadCrossingExecutor) OnAdd(book model.OrderBook) {
	bo := bestBidOffer(book)
	if bo.Spread() > s.threshold {
		return
	}

	order := model.ExecutionOrder{
		Product: book.Product,
		Side:    s.nextSide,
		OrderID: s.ids.NextID(),
	}
	if s.nextSide == model.Bid {
		order.Price = bo.Bid.Price
		order.Quantity = bo.Bid.Quantity
		s.nextSide = model.Offer
	} else {
		order.Price = bo.Offer.Price
		order.Quantity = bo.Offer.Quantity
		s.nextSide = model.Bid
	}

	s.log.WithComponent("algo_execution").WithFields(logger.Fields{
		"product":  order.Product.ID(),
		"order_id": order.OrderID,
		"side":     order.Side.String(),
		"price":    order.Price,
		"quantity": order.Quantity,
	}).Debug("spread crossed, emitting execution")

	s.Ingest(order)
}

func (s *SpreadCrossingExecutor) OnRemove(model.OrderBook) {}
func (s *SpreadCrossingExecutor) OnUpdate(model.OrderBook) {}
