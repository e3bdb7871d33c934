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

// TradeFeed parses "cusip,tradeId,price,book,quantity,side" rows into booked
// trades.
type TradeFeed struct {
	ledger *service.TradeLedger
	table  *product.Table
	log    *logger.Entry
}

func NewTradeFeed(ledger *service.TradeLedger, table *product.Table) *TradeFeed {
	return &TradeFeed{
		ledger: ledger,
		table:  table,
		log:    logger.GetLogger().WithComponent("trade_feed"),
	}
}

func (f *TradeFeed) RunFile(path string) error {
	file, err := openFeed(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return f.Run(file)
}

func (f *TradeFeed) Run(r io.Reader) error {
	rows, skipped, err := scanRows(r, func(elements []string) error {
		trade, perr := f.parse(elements)
		if perr != nil {
			f.log.WithError(perr).Warn("skipping trade row")
			logger.RecordSkip("trade_feed")
			return perr
		}
		f.ledger.Ingest(trade)
		logger.RecordFlow("trade_feed")
		return nil
	})
	if err != nil {
		return fmt.Errorf("trade feed: %w", err)
	}
	f.log.WithFields(logger.Fields{"rows": rows, "skipped": skipped}).Info("trade feed complete")
	return nil
}

func (f *TradeFeed) parse(elements []string) (model.Trade, error) {
	if err := fieldCount(elements, 6); err != nil {
		return model.Trade{}, err
	}
	bond, err := f.table.Bond(elements[0])
	if err != nil {
		return model.Trade{}, err
	}
	price, err := fraction.Decode(elements[2])
	if err != nil {
		return model.Trade{}, err
	}
	quantity, err := strconv.ParseInt(elements[4], 10, 64)
	if err != nil {
		return model.Trade{}, fmt.Errorf("quantity %q: %w", elements[4], err)
	}
	side := model.Buy
	if elements[5] == "SELL" {
		side = model.Sell
	}
	return model.Trade{
		Product:  bond,
		TradeID:  elements[1],
		Price:    price,
		Book:     elements[3],
		Quantity: quantity,
		Side:     side,
	}, nil
}
