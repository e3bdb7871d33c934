// Package model holds the value types flowing through the desk pipeline.
// Entries are keyed by a stable business identifier (CUSIP, trade id or
// inquiry id) and are replaced wholesale on re-ingestion.
package model

import "time"

// PricingSide is the side of a market data order or execution.
type PricingSide int

const (
	Bid PricingSide = iota
	Offer
)

func (s PricingSide) String() string {
	if s == Bid {
		return "BID"
	}
	return "OFFER"
}

// TradeSide is the side of a booked trade.
type TradeSide int

const (
	Buy TradeSide = iota
	Sell
)

func (s TradeSide) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// InquiryState tracks a customer inquiry through its lifecycle.
type InquiryState int

const (
	Received InquiryState = iota
	Quoted
	Done
	Rejected
	CustomerRejected
)

func (s InquiryState) String() string {
	switch s {
	case Received:
		return "RECEIVED"
	case Quoted:
		return "QUOTED"
	case Done:
		return "DONE"
	case Rejected:
		return "REJECTED"
	default:
		return "CUSTOMER_REJECTED"
	}
}

// Bond is an immutable treasury product identified by CUSIP.
type Bond struct {
	CUSIP    string
	Coupon   float64
	Maturity time.Time
}

// ID returns the stable product identifier.
func (b Bond) ID() string { return b.CUSIP }

// Order is a single market data order.
type Order struct {
	Price    float64
	Quantity int64
	Side     PricingSide
}

// OrderBook is the full depth snapshot for one product. It is replaced
// wholesale on every ingest, never patched.
type OrderBook struct {
	Product Bond
	Bids    []Order
	Offers  []Order
}

// BidOffer pairs the best bid and best offer of a book. Derived, not stored.
type BidOffer struct {
	Bid   Order
	Offer Order
}

// Spread returns the distance between the best offer and best bid.
func (bo BidOffer) Spread() float64 { return bo.Offer.Price - bo.Bid.Price }

// Price carries a product's mid and bid/offer spread.
type Price struct {
	Product Bond
	Mid     float64
	Spread  float64
}

// ExecutionOrder is an execution intent emitted by the crossing algo.
type ExecutionOrder struct {
	Product  Bond
	Side     PricingSide
	OrderID  string
	Price    float64
	Quantity int64
}

// Trade is a booked trade against a particular trading book.
type Trade struct {
	Product  Bond
	TradeID  string
	Price    float64
	Book     string
	Quantity int64
	Side     TradeSide
}

// Position tracks signed per-book quantity for one product. Aggregate always
// equals the sum across books at the instant it is published.
type Position struct {
	Product   Bond
	Books     map[string]int64
	Aggregate int64
}

// Quantity returns the signed quantity held in one book.
func (p Position) Quantity(book string) int64 { return p.Books[book] }

// PV01 is the dollar risk of one basis point for a product's position.
type PV01 struct {
	Product  Bond
	Value    float64
	Quantity int64
}

// BucketedSector names a group of products for bucketed risk queries.
type BucketedSector struct {
	Products []Bond
	Name     string
}

// SectorPV01 is the result of a bucketed risk query. Value carries the
// quantity-weighted pv01 sum and Quantity the summed aggregate position.
type SectorPV01 struct {
	Sector   BucketedSector
	Value    float64
	Quantity int64
}

// PriceStream is a two-sided quote with visible and hidden size.
type PriceStream struct {
	Product         Bond
	BidPrice        float64
	OfferPrice      float64
	VisibleQuantity int64
	HiddenQuantity  int64
}

// Inquiry is a customer inquiry, keyed by inquiry id rather than product.
type Inquiry struct {
	InquiryID string
	Product   Bond
	Side      TradeSide
	Quantity  int64
	Price     float64
	State     InquiryState
}
