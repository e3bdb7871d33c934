package feed

import (
	"fmt"
	"io"
	"strconv"

	"bondflow/internal/fraction"
	"bondflow/internal/model"
	"bondflow/internal/product"
	"bondflow/internal/service"
	"bondflow/logger"
)

// MarketDataFeed parses "cusip,price,quantity,side" rows and ingests one
// order book snapshot per group of depth rows. Rows within a group share a
// CUSIP; the group boundary is positional, matching the writer.
type MarketDataFeed struct {
	store *service.OrderBookStore
	table *product.Table
	depth int
	log   *logger.Entry
}

func NewMarketDataFeed(store *service.OrderBookStore, table *product.Table, depth int) *MarketDataFeed {
	if depth <= 0 {
		depth = 10
	}
	return &MarketDataFeed{
		store: store,
		table: table,
		depth: depth,
		log:   logger.GetLogger().WithComponent("marketdata_feed"),
	}
}

func (f *MarketDataFeed) RunFile(path string) error {
	file, err := openFeed(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return f.Run(file)
}

func (f *MarketDataFeed) Run(r io.Reader) error {
	var (
		bids, offers []model.Order
		bond         model.Bond
		count        int
		snapshots    int
	)

	rows, skipped, err := scanRows(r, func(elements []string) error {
		b, order, perr := f.parse(elements)
		if perr != nil {
			f.log.WithError(perr).Warn("skipping market data row")
			logger.RecordSkip("marketdata_feed")
			return perr
		}
		bond = b
		if order.Side == model.Bid {
			bids = append(bids, order)
		} else {
			offers = append(offers, order)
		}
		count++
		if count == f.depth {
			f.store.Ingest(model.OrderBook{Product: bond, Bids: bids, Offers: offers})
			logger.RecordFlow("marketdata_feed")
			snapshots++
			bids, offers = nil, nil
			count = 0
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("market data feed: %w", err)
	}
	f.log.WithFields(logger.Fields{
		"rows":      rows,
		"skipped":   skipped,
		"snapshots": snapshots,
	}).Info("market data feed complete")
	return nil
}

func (f *MarketDataFeed) parse(elements []string) (model.Bond, model.Order, error) {
	if err := fieldCount(elements, 4); err != nil {
		return model.Bond{}, model.Order{}, err
	}
	bond, err := f.table.Bond(elements[0])
	if err != nil {
		return model.Bond{}, model.Order{}, err
	}
	price, err := fraction.Decode(elements[1])
	if err != nil {
		return model.Bond{}, model.Order{}, err
	}
	quantity, err := strconv.ParseInt(elements[2], 10, 64)
	if err != nil {
		return model.Bond{}, model.Order{}, fmt.Errorf("quantity %q: %w", elements[2], err)
	}
	side := model.Bid
	if elements[3] == "OFFER" {
		side = model.Offer
	}
	return bond, model.Order{Price: price, Quantity: quantity, Side: side}, nil
}
