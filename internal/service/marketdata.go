package service

import (
	"fmt"
	"sort"

	"bondflow/internal/model"
	"bondflow/logger"
)

// OrderBookStore owns per-product bid/offer depth. Books are replaced
// wholesale per ingested snapshot.
type OrderBookStore struct {
	*Store[model.OrderBook]
	log *logger.Log
}

// NewOrderBookStore constructs the market data service.
func NewOrderBookStore() *OrderBookStore {
	return &OrderBookStore{
		Store: NewStore("MARKETDATA", func(ob model.OrderBook) string { return ob.Product.ID() }),
		log:   logger.GetLogger(),
	}
}

// BestBidOffer selects the maximum-price bid and the minimum-price offer of
// the product's current book.
func (s *OrderBookStore) BestBidOffer(productID string) (model.BidOffer, error) {
	book, ok := s.Lookup(productID)
	if !ok {
		return model.BidOffer{}, fmt.Errorf("order book store: no book for %s", productID)
	}
	return bestBidOffer(book), nil
}

func bestBidOffer(book model.OrderBook) model.BidOffer {
	var bo model.BidOffer
	for i, o := range book.Bids {
		if i == 0 || o.Price > bo.Bid.Price {
			bo.Bid = o
		}
	}
	for i, o := range book.Offers {
		if i == 0 || o.Price < bo.Offer.Price {
			bo.Offer = o
		}
	}
	return bo
}

// AggregateDepth collapses each side of the product's book into one order per
// price level, summing quantities at duplicate prices. Both sides come back
// ordered ascending by price.
func (s *OrderBookStore) AggregateDepth(productID string) (model.OrderBook, error) {
	book, ok := s.Lookup(productID)
	if !ok {
		return model.OrderBook{}, fmt.Errorf("order book store: no book for %s", productID)
	}
	return model.OrderBook{
		Product: book.Product,
		Bids:    collapseSide(book.Bids, model.Bid),
		Offers:  collapseSide(book.Offers, model.Offer),
	}, nil
}

func collapseSide(orders []model.Order, side model.PricingSide) []model.Order {
	byPrice := make(map[float64]int64, len(orders))
	for _, o := range orders {
		byPrice[o.Price] += o.Quantity
	}
	out := make([]model.Order, 0, len(byPrice))
	for price, quantity := range byPrice {
		out = append(out, model.Order{Price: price, Quantity: quantity, Side: side})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}
