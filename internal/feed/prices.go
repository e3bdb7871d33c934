package feed

import (
	"fmt"
	"io"

	"bondflow/internal/fraction"
	"bondflow/internal/model"
	"bondflow/internal/product"
	"bondflow/internal/service"
	"bondflow/logger"
)

// PriceFeed parses "cusip,bid,offer" rows into mid/spread prices.
type PriceFeed struct {
	store *service.PricingStore
	table *product.Table
	log   *logger.Entry
}

func NewPriceFeed(store *service.PricingStore, table *product.Table) *PriceFeed {
	return &PriceFeed{
		store: store,
		table: table,
		log:   logger.GetLogger().WithComponent("price_feed"),
	}
}

// RunFile streams the feed file through Run. A missing file is returned as an
// error for the caller to treat as fatal.
func (f *PriceFeed) RunFile(path string) error {
	file, err := openFeed(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return f.Run(file)
}

func (f *PriceFeed) Run(r io.Reader) error {
	rows, skipped, err := scanRows(r, func(elements []string) error {
		price, perr := f.parse(elements)
		if perr != nil {
			f.log.WithError(perr).Warn("skipping price row")
			logger.RecordSkip("price_feed")
			return perr
		}
		f.store.Ingest(price)
		logger.RecordFlow("price_feed")
		return nil
	})
	if err != nil {
		return fmt.Errorf("price feed: %w", err)
	}
	f.log.WithFields(logger.Fields{"rows": rows, "skipped": skipped}).Info("price feed complete")
	return nil
}

func (f *PriceFeed) parse(elements []string) (model.Price, error) {
	if err := fieldCount(elements, 3); err != nil {
		return model.Price{}, err
	}
	bond, err := f.table.Bond(elements[0])
	if err != nil {
		return model.Price{}, err
	}
	bid, err := fraction.Decode(elements[1])
	if err != nil {
		return model.Price{}, err
	}
	offer, err := fraction.Decode(elements[2])
	if err != nil {
		return model.Price{}, err
	}
	return model.Price{
		Product: bond,
		Mid:     (bid + offer) / 2,
		Spread:  offer - bid,
	}, nil
}
