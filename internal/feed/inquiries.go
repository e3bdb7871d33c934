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

var inquiryStates = map[string]model.InquiryState{
	"RECEIVED":          model.Received,
	"QUOTED":            model.Quoted,
	"DONE":              model.Done,
	"REJECTED":          model.Rejected,
	"CUSTOMER_REJECTED": model.CustomerRejected,
}

// InquiryFeed parses "inquiryId,cusip,side,quantity,price,state" rows into
// customer inquiries.
type InquiryFeed struct {
	ledger *service.InquiryLedger
	table  *product.Table
	log    *logger.Entry
}

func NewInquiryFeed(ledger *service.InquiryLedger, table *product.Table) *InquiryFeed {
	return &InquiryFeed{
		ledger: ledger,
		table:  table,
		log:    logger.GetLogger().WithComponent("inquiry_feed"),
	}
}

func (f *InquiryFeed) RunFile(path string) error {
	file, err := openFeed(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return f.Run(file)
}

func (f *InquiryFeed) Run(r io.Reader) error {
	rows, skipped, err := scanRows(r, func(elements []string) error {
		inq, perr := f.parse(elements)
		if perr != nil {
			f.log.WithError(perr).Warn("skipping inquiry row")
			logger.RecordSkip("inquiry_feed")
			return perr
		}
		f.ledger.Ingest(inq)
		logger.RecordFlow("inquiry_feed")
		return nil
	})
	if err != nil {
		return fmt.Errorf("inquiry feed: %w", err)
	}
	f.log.WithFields(logger.Fields{"rows": rows, "skipped": skipped}).Info("inquiry feed complete")
	return nil
}

func (f *InquiryFeed) parse(elements []string) (model.Inquiry, error) {
	if err := fieldCount(elements, 6); err != nil {
		return model.Inquiry{}, err
	}
	bond, err := f.table.Bond(elements[1])
	if err != nil {
		return model.Inquiry{}, err
	}
	side := model.Buy
	if elements[2] == "SELL" {
		side = model.Sell
	}
	quantity, err := strconv.ParseInt(elements[3], 10, 64)
	if err != nil {
		return model.Inquiry{}, fmt.Errorf("quantity %q: %w", elements[3], err)
	}
	price, err := fraction.Decode(elements[4])
	if err != nil {
		return model.Inquiry{}, err
	}
	state, ok := inquiryStates[elements[5]]
	if !ok {
		return model.Inquiry{}, fmt.Errorf("unknown inquiry state %q", elements[5])
	}
	return model.Inquiry{
		InquiryID: elements[0],
		Product:   bond,
		Side:      side,
		Quantity:  quantity,
		Price:     price,
		State:     state,
	}, nil
}
