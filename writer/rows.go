package writer

import (
	"time"

	"bondflow/internal/model"
)

// Ledger names, one per persisted service.
const (
	PositionLedgerName  = "position"
	RiskLedgerName      = "risk"
	ExecutionLedgerName = "execution"
	StreamingLedgerName = "streaming"
	InquiryLedgerName   = "inquiry"
)

// PositionRow is one book's signed quantity at the moment a position event
// fanned out. A single event produces one row per book.
type PositionRow struct {
	CUSIP     string `parquet:"name=cusip, type=BYTE_ARRAY, convertedtype=UTF8" json:"cusip"`
	Book      string `parquet:"name=book, type=BYTE_ARRAY, convertedtype=UTF8" json:"book"`
	Quantity  int64  `parquet:"name=quantity, type=INT64" json:"quantity"`
	Aggregate int64  `parquet:"name=aggregate, type=INT64" json:"aggregate"`
	Timestamp int64  `parquet:"name=timestamp, type=INT64" json:"timestamp"`
}

// PositionRows flattens a position event into per-book rows.
func PositionRows(p model.Position) []PositionRow {
	now := time.Now().UnixMilli()
	rows := make([]PositionRow, 0, len(p.Books))
	for book, quantity := range p.Books {
		rows = append(rows, PositionRow{
			CUSIP:     p.Product.ID(),
			Book:      book,
			Quantity:  quantity,
			Aggregate: p.Aggregate,
			Timestamp: now,
		})
	}
	return rows
}

type RiskRow struct {
	CUSIP     string  `parquet:"name=cusip, type=BYTE_ARRAY, convertedtype=UTF8" json:"cusip"`
	PV01      float64 `parquet:"name=pv01, type=DOUBLE" json:"pv01"`
	Quantity  int64   `parquet:"name=quantity, type=INT64" json:"quantity"`
	Timestamp int64   `parquet:"name=timestamp, type=INT64" json:"timestamp"`
}

func NewRiskRow(r model.PV01) RiskRow {
	return RiskRow{
		CUSIP:     r.Product.ID(),
		PV01:      r.Value,
		Quantity:  r.Quantity,
		Timestamp: time.Now().UnixMilli(),
	}
}

type ExecutionRow struct {
	OrderID   string  `parquet:"name=order_id, type=BYTE_ARRAY, convertedtype=UTF8" json:"order_id"`
	CUSIP     string  `parquet:"name=cusip, type=BYTE_ARRAY, convertedtype=UTF8" json:"cusip"`
	Side      string  `parquet:"name=side, type=BYTE_ARRAY, convertedtype=UTF8" json:"side"`
	Price     float64 `parquet:"name=price, type=DOUBLE" json:"price"`
	Quantity  int64   `parquet:"name=quantity, type=INT64" json:"quantity"`
	Timestamp int64   `parquet:"name=timestamp, type=INT64" json:"timestamp"`
}

func NewExecutionRow(o model.ExecutionOrder) ExecutionRow {
	return ExecutionRow{
		OrderID:   o.OrderID,
		CUSIP:     o.Product.ID(),
		Side:      o.Side.String(),
		Price:     o.Price,
		Quantity:  o.Quantity,
		Timestamp: time.Now().UnixMilli(),
	}
}

type StreamingRow struct {
	CUSIP           string  `parquet:"name=cusip, type=BYTE_ARRAY, convertedtype=UTF8" json:"cusip"`
	BidPrice        float64 `parquet:"name=bid_price, type=DOUBLE" json:"bid_price"`
	OfferPrice      float64 `parquet:"name=offer_price, type=DOUBLE" json:"offer_price"`
	VisibleQuantity int64   `parquet:"name=visible_quantity, type=INT64" json:"visible_quantity"`
	HiddenQuantity  int64   `parquet:"name=hidden_quantity, type=INT64" json:"hidden_quantity"`
	Timestamp       int64   `parquet:"name=timestamp, type=INT64" json:"timestamp"`
}

func NewStreamingRow(s model.PriceStream) StreamingRow {
	return StreamingRow{
		CUSIP:           s.Product.ID(),
		BidPrice:        s.BidPrice,
		OfferPrice:      s.OfferPrice,
		VisibleQuantity: s.VisibleQuantity,
		HiddenQuantity:  s.HiddenQuantity,
		Timestamp:       time.Now().UnixMilli(),
	}
}

type InquiryRow struct {
	InquiryID string  `parquet:"name=inquiry_id, type=BYTE_ARRAY, convertedtype=UTF8" json:"inquiry_id"`
	CUSIP     string  `parquet:"name=cusip, type=BYTE_ARRAY, convertedtype=UTF8" json:"cusip"`
	Side      string  `parquet:"name=side, type=BYTE_ARRAY, convertedtype=UTF8" json:"side"`
	Quantity  int64   `parquet:"name=quantity, type=INT64" json:"quantity"`
	Price     float64 `parquet:"name=price, type=DOUBLE" json:"price"`
	State     string  `parquet:"name=state, type=BYTE_ARRAY, convertedtype=UTF8" json:"state"`
	Timestamp int64   `parquet:"name=timestamp, type=INT64" json:"timestamp"`
}

func NewInquiryRow(inq model.Inquiry) InquiryRow {
	return InquiryRow{
		InquiryID: inq.InquiryID,
		CUSIP:     inq.Product.ID(),
		Side:      inq.Side.String(),
		Quantity:  inq.Quantity,
		Price:     inq.Price,
		State:     inq.State.String(),
		Timestamp: time.Now().UnixMilli(),
	}
}
