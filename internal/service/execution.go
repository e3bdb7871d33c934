package service

import "bondflow/internal/model"

// ExecutionSink records execution intents under their product key and
// re-emits them unchanged to its own observers (primarily the trade ledger
// and the execution history sink).
type ExecutionSink struct {
	*Store[model.ExecutionOrder]
}

// NewExecutionSink constructs the execution service.
func NewExecutionSink() *ExecutionSink {
	return &ExecutionSink{
		Store: NewStore("EXECUTION", func(eo model.ExecutionOrder) string { return eo.Product.ID() }),
	}
}

// OnAdd implements Observer[model.ExecutionOrder]; the sink is registered on
// the spread crossing executor.
func (s *ExecutionSink) OnAdd(order model.ExecutionOrder) { s.Ingest(order) }

func (s *ExecutionSink) OnRemove(model.ExecutionOrder) {}
func (s *ExecutionSink) OnUpdate(model.ExecutionOrder) {}
