package writer

import (
	"context"
	"fmt"

	appconfig "bondflow/config"
	"bondflow/internal/model"
	"bondflow/internal/service"
)

// Ledgers bundles the five persisted service histories.
type Ledgers struct {
	Position  *Ledger[PositionRow]
	Risk      *Ledger[RiskRow]
	Execution *Ledger[ExecutionRow]
	Streaming *Ledger[StreamingRow]
	Inquiry   *Ledger[InquiryRow]
}

func NewLedgers(cfg appconfig.LedgersConfig, sinks ...BatchSink) *Ledgers {
	return &Ledgers{
		Position:  NewLedger[PositionRow](PositionLedgerName, cfg, sinks...),
		Risk:      NewLedger[RiskRow](RiskLedgerName, cfg, sinks...),
		Execution: NewLedger[ExecutionRow](ExecutionLedgerName, cfg, sinks...),
		Streaming: NewLedger[StreamingRow](StreamingLedgerName, cfg, sinks...),
		Inquiry:   NewLedger[InquiryRow](InquiryLedgerName, cfg, sinks...),
	}
}

// Attach registers each ledger as an observer on its service so every
// fan-out event is recorded.
func (ls *Ledgers) Attach(
	positions *service.PositionBook,
	risk *service.RiskBook,
	executions *service.ExecutionSink,
	quotes *service.QuotePublisher,
	inquiries *service.InquiryLedger,
) {
	positions.AddObserver(service.OnAddFunc[model.Position](func(p model.Position) {
		for _, row := range PositionRows(p) {
			ls.Position.Record(row)
		}
	}))
	risk.AddObserver(service.OnAddFunc[model.PV01](func(r model.PV01) {
		ls.Risk.Record(NewRiskRow(r))
	}))
	executions.AddObserver(service.OnAddFunc[model.ExecutionOrder](func(o model.ExecutionOrder) {
		ls.Execution.Record(NewExecutionRow(o))
	}))
	quotes.AddObserver(service.OnAddFunc[model.PriceStream](func(s model.PriceStream) {
		ls.Streaming.Record(NewStreamingRow(s))
	}))
	inquiries.AddObserver(service.OnAddFunc[model.Inquiry](func(inq model.Inquiry) {
		ls.Inquiry.Record(NewInquiryRow(inq))
	}))
}

// Start brings up every ledger writer.
func (ls *Ledgers) Start(ctx context.Context) error {
	for _, start := range []func(context.Context) error{
		ls.Position.Start,
		ls.Risk.Start,
		ls.Execution.Start,
		ls.Streaming.Start,
		ls.Inquiry.Start,
	} {
		if err := start(ctx); err != nil {
			return fmt.Errorf("ledgers: %w", err)
		}
	}
	return nil
}

// Stop flushes and stops every ledger writer.
func (ls *Ledgers) Stop() {
	ls.Position.Stop()
	ls.Risk.Stop()
	ls.Execution.Stop()
	ls.Streaming.Stop()
	ls.Inquiry.Stop()
}
