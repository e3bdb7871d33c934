// Package writer persists the desk's historical ledgers. Each ledger buffers
// the rows its service fans out and flushes them as parquet batches, locally
// and optionally to the configured storage sinks.
package writer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	pqwriter "github.com/xitongsys/parquet-go/writer"

	appconfig "bondflow/config"
	"bondflow/logger"
)

// Batch is one flushed set of ledger rows together with its parquet encoding.
type Batch struct {
	Ledger      string    `json:"ledger"`
	BatchID     string    `json:"batch_id"`
	Timestamp   time.Time `json:"timestamp"`
	RecordCount int       `json:"record_count"`
	Rows        any       `json:"rows"`
	Filename    string    `json:"-"`
	Data        []byte    `json:"-"`
}

// BatchSink receives every flushed batch. Sink failures are logged by the
// sink and never stall the ledger.
type BatchSink interface {
	Publish(ctx context.Context, batch Batch)
}

// memoryFileWriter implements ParquetFile interface for in-memory writing
type memoryFileWriter struct {
	buffer *bytes.Buffer
}

func newMemoryFileWriter() *memoryFileWriter {
	return &memoryFileWriter{
		buffer: &bytes.Buffer{},
	}
}

func (mfw *memoryFileWriter) Create(name string) (source.ParquetFile, error) {
	return mfw, nil
}

func (mfw *memoryFileWriter) Open(name string) (source.ParquetFile, error) {
	return mfw, nil
}

func (mfw *memoryFileWriter) Seek(offset int64, whence int) (int64, error) {
	return int64(mfw.buffer.Len()), nil
}

func (mfw *memoryFileWriter) Read(b []byte) (int, error) {
	return mfw.buffer.Read(b)
}

func (mfw *memoryFileWriter) Write(b []byte) (int, error) {
	return mfw.buffer.Write(b)
}

func (mfw *memoryFileWriter) Close() error {
	return nil
}

func (mfw *memoryFileWriter) Bytes() []byte {
	return mfw.buffer.Bytes()
}

// Ledger buffers rows of one persisted service and flushes them on a timer
// and at shutdown.
type Ledger[R any] struct {
	name        string
	cfg         appconfig.LedgersConfig
	in          chan R
	sinks       []BatchSink
	ctx         context.Context
	wg          *sync.WaitGroup
	mu          sync.RWMutex
	running     bool
	log         *logger.Log
	buffer      []R
	bufMu       sync.Mutex
	flushTicker *time.Ticker
}

func NewLedger[R any](name string, cfg appconfig.LedgersConfig, sinks ...BatchSink) *Ledger[R] {
	return &Ledger[R]{
		name:  name,
		cfg:   cfg,
		in:    make(chan R, cfg.BufferSize),
		sinks: sinks,
		wg:    &sync.WaitGroup{},
		log:   logger.GetLogger(),
	}
}

// Name returns the ledger's persistence tag.
func (l *Ledger[R]) Name() string { return l.name }

// Record enqueues one row. A full queue drops the row with a warning rather
// than blocking the service cascade.
func (l *Ledger[R]) Record(row R) {
	l.mu.RLock()
	running := l.running
	l.mu.RUnlock()
	if !running {
		return
	}
	select {
	case l.in <- row:
		logger.RecordFlow(l.name + "_ledger")
	default:
		l.log.WithComponent(l.name + "_ledger").Warn("ledger queue full, dropping row")
		logger.RecordSkip(l.name + "_ledger")
	}
}

func (l *Ledger[R]) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return fmt.Errorf("%s ledger already running", l.name)
	}
	l.running = true
	l.ctx = ctx
	l.mu.Unlock()

	if err := os.MkdirAll(l.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("%s ledger: %w", l.name, err)
	}

	log := l.log.WithComponent(l.name + "_ledger")
	log.Info("starting ledger writer")

	l.flushTicker = time.NewTicker(l.cfg.FlushInterval.Std())

	l.wg.Add(1)
	go l.run()

	return nil
}

func (l *Ledger[R]) Stop() {
	l.mu.Lock()
	l.running = false
	l.mu.Unlock()

	if l.flushTicker != nil {
		l.flushTicker.Stop()
	}

	log := l.log.WithComponent(l.name + "_ledger")
	log.Info("stopping ledger writer")
	close(l.in)
	l.wg.Wait()
	log.Info("ledger writer stopped")
}

func (l *Ledger[R]) run() {
	defer l.wg.Done()

	for {
		select {
		case <-l.ctx.Done():
			l.drain()
			l.flush("shutdown")
			return
		case row, ok := <-l.in:
			if !ok {
				l.flush("shutdown")
				return
			}
			l.bufMu.Lock()
			l.buffer = append(l.buffer, row)
			l.bufMu.Unlock()
		case <-l.flushTicker.C:
			l.flush("interval")
		}
	}
}

func (l *Ledger[R]) drain() {
	for {
		select {
		case row, ok := <-l.in:
			if !ok {
				return
			}
			l.bufMu.Lock()
			l.buffer = append(l.buffer, row)
			l.bufMu.Unlock()
		default:
			return
		}
	}
}

func (l *Ledger[R]) flush(reason string) {
	l.bufMu.Lock()
	rows := l.buffer
	l.buffer = nil
	l.bufMu.Unlock()

	if len(rows) == 0 {
		return
	}

	log := l.log.WithComponent(l.name + "_ledger").WithFields(logger.Fields{
		"rows":   len(rows),
		"reason": reason,
	})

	batch := Batch{
		Ledger:      l.name,
		BatchID:     uuid.New().String(),
		Timestamp:   time.Now().UTC(),
		RecordCount: len(rows),
		Rows:        rows,
	}
	batch.Filename = fmt.Sprintf("%s_%s_%s.parquet",
		l.name, batch.Timestamp.Format("20060102150405"), batch.BatchID[:8])

	data, err := encodeParquet(rows)
	if err != nil {
		log.WithError(err).Error("failed to encode batch")
		return
	}
	batch.Data = data

	path := filepath.Join(l.cfg.OutputDir, batch.Filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.WithError(err).Error("failed to write batch file")
		return
	}

	log.WithFields(logger.Fields{
		"batch_id":  batch.BatchID,
		"file":      path,
		"file_size": len(data),
	}).Info("ledger batch flushed")

	ctx := context.WithoutCancel(l.ctx)
	for _, sink := range l.sinks {
		sink.Publish(ctx, batch)
	}
}

func encodeParquet[R any](rows []R) ([]byte, error) {
	fw := newMemoryFileWriter()
	pw, err := pqwriter.NewParquetWriter(fw, new(R), 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			pw.WriteStop()
			return nil, fmt.Errorf("failed to write parquet record: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("failed to finalize parquet writing: %w", err)
	}
	return fw.Bytes(), nil
}
