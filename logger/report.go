package logger

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

type flowStat struct {
	records int64
	skipped int64
}

var (
	feedErrors   int64
	ledgerErrors int64
	feedWarns    int64
	ledgerWarns  int64
	flows        sync.Map // map[string]*flowStat
)

func recordWarn(component string) {
	if strings.HasSuffix(component, "_feed") {
		atomic.AddInt64(&feedWarns, 1)
	} else if strings.HasSuffix(component, "_ledger") {
		atomic.AddInt64(&ledgerWarns, 1)
	}
}

func recordError(component string) {
	if strings.HasSuffix(component, "_feed") {
		atomic.AddInt64(&feedErrors, 1)
	} else if strings.HasSuffix(component, "_ledger") {
		atomic.AddInt64(&ledgerErrors, 1)
	}
}

// RecordFlow counts one processed record against a named flow (a feed, a
// service cascade or a ledger).
func RecordFlow(name string) {
	v, _ := flows.LoadOrStore(name, &flowStat{})
	atomic.AddInt64(&v.(*flowStat).records, 1)
}

// RecordSkip counts one skipped record against a named flow.
func RecordSkip(name string) {
	v, _ := flows.LoadOrStore(name, &flowStat{})
	atomic.AddInt64(&v.(*flowStat).skipped, 1)
}

// StartReport begins periodic logging of system and flow statistics.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logReport(ctx, log)
			}
		}
	}()
}

func logReport(ctx context.Context, log *Log) {
	cpuPercent, _ := cpu.Percent(0, false)
	memStats, _ := mem.VirtualMemory()

	flowData := map[string]map[string]int64{}
	flows.Range(func(k, v any) bool {
		name := k.(string)
		fs := v.(*flowStat)
		flowData[name] = map[string]int64{
			"records": atomic.LoadInt64(&fs.records),
			"skipped": atomic.LoadInt64(&fs.skipped),
		}
		return true
	})

	cpuPct := 0.0
	if len(cpuPercent) > 0 {
		cpuPct = cpuPercent[0]
	}

	fields := Fields{
		"feed_errors":   atomic.LoadInt64(&feedErrors),
		"feed_warns":    atomic.LoadInt64(&feedWarns),
		"ledger_errors": atomic.LoadInt64(&ledgerErrors),
		"ledger_warns":  atomic.LoadInt64(&ledgerWarns),
		"goroutines":    runtime.NumGoroutine(),
		"cpu_percent":   cpuPct,
		"memory_mb":     int64(memStats.Used) / 1024 / 1024,
		"flows":         flowData,
	}

	log.WithComponent("report").WithFields(fields).Info("runtime report")

	data := []cwtypes.MetricDatum{
		{MetricName: aws.String("Desk-CPUPercent"), Unit: cwtypes.StandardUnitPercent, Value: aws.Float64(cpuPct)},
		{MetricName: aws.String("Desk-MemoryMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(memStats.Used) / 1024 / 1024)},
		{MetricName: aws.String("Desk-FeedErrors"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&feedErrors)))},
		{MetricName: aws.String("Desk-FeedWarns"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&feedWarns)))},
		{MetricName: aws.String("Desk-LedgerErrors"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&ledgerErrors)))},
		{MetricName: aws.String("Desk-LedgerWarns"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&ledgerWarns)))},
	}

	for name, stats := range flowData {
		data = append(data,
			cwtypes.MetricDatum{
				MetricName: aws.String("Desk-FlowRecords"),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Flow"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["records"])),
			},
			cwtypes.MetricDatum{
				MetricName: aws.String("Desk-FlowSkipped"),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Flow"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["skipped"])),
			},
		)
	}

	publishMetrics(ctx, data)
}
