package writer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	appconfig "bondflow/config"
	"bondflow/internal/model"
)

func ledgerConfig(t *testing.T) appconfig.LedgersConfig {
	t.Helper()
	return appconfig.LedgersConfig{
		OutputDir:     t.TempDir(),
		FlushInterval: appconfig.Duration(time.Hour),
		BufferSize:    16,
	}
}

func sampleRisk() model.PV01 {
	return model.PV01{
		Product:  model.Bond{CUSIP: "TMUBMUSD10Y"},
		Value:    0.10,
		Quantity: 3_000_000,
	}
}

type captureSink struct {
	mu      sync.Mutex
	batches []Batch
}

func (c *captureSink) Publish(_ context.Context, batch Batch) {
	c.mu.Lock()
	c.batches = append(c.batches, batch)
	c.mu.Unlock()
}

func TestLedgerFlushesOnStop(t *testing.T) {
	cfg := ledgerConfig(t)
	ledger := NewLedger[RiskRow](RiskLedgerName, cfg)

	if err := ledger.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 5; i++ {
		ledger.Record(NewRiskRow(sampleRisk()))
	}
	ledger.Stop()

	entries, err := os.ReadDir(cfg.OutputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("flushed files = %d, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "risk_") || !strings.HasSuffix(name, ".parquet") {
		t.Errorf("unexpected batch file name %q", name)
	}
	info, err := os.Stat(filepath.Join(cfg.OutputDir, name))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("batch file is empty")
	}
}

func TestLedgerPublishesToSinks(t *testing.T) {
	cfg := ledgerConfig(t)
	sink := &captureSink{}
	ledger := NewLedger[RiskRow](RiskLedgerName, cfg, sink)

	if err := ledger.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ledger.Record(NewRiskRow(sampleRisk()))
	ledger.Record(NewRiskRow(sampleRisk()))
	ledger.Stop()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.batches) != 1 {
		t.Fatalf("published batches = %d, want 1", len(sink.batches))
	}
	batch := sink.batches[0]
	if batch.Ledger != RiskLedgerName || batch.RecordCount != 2 {
		t.Errorf("batch = %s/%d, want risk/2", batch.Ledger, batch.RecordCount)
	}
	if len(batch.Data) == 0 {
		t.Error("batch parquet payload is empty")
	}
	if batch.BatchID == "" {
		t.Error("batch id missing")
	}
}

func TestLedgerDropsWhenStopped(t *testing.T) {
	ledger := NewLedger[RiskRow](RiskLedgerName, ledgerConfig(t))
	// Not started: rows are dropped, never queued.
	ledger.Record(NewRiskRow(sampleRisk()))
}

func TestLedgerDoubleStart(t *testing.T) {
	ledger := NewLedger[RiskRow](RiskLedgerName, ledgerConfig(t))
	ctx := context.Background()
	if err := ledger.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := ledger.Start(ctx); err == nil {
		t.Error("second Start must fail")
	}
	ledger.Stop()
}

func TestPositionRowsPerBook(t *testing.T) {
	rows := PositionRows(model.Position{
		Product:   model.Bond{CUSIP: "TMUBMUSD02Y"},
		Books:     map[string]int64{"TRSY1": 1_000_000, "TRSY2": -2_000_000},
		Aggregate: -1_000_000,
	})
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want one per book", len(rows))
	}
	for _, row := range rows {
		if row.Aggregate != -1_000_000 || row.CUSIP != "TMUBMUSD02Y" {
			t.Errorf("row = %+v", row)
		}
	}
}
