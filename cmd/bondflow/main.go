package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	appconfig "bondflow/config"
	"bondflow/internal/feed"
	"bondflow/internal/feedgen"
	"bondflow/internal/ids"
	"bondflow/internal/model"
	"bondflow/internal/product"
	"bondflow/internal/publisher"
	"bondflow/internal/service"
	"bondflow/logger"
	"bondflow/writer"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	generate := flag.Bool("generate", false, "Generate synthetic feed files before running")
	flag.Parse()

	cfg, err := appconfig.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service": cfg.Desk.Name,
		"version": cfg.Desk.Version,
	}).Info("starting bondflow")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Logging.CloudWatch {
		logger.InitCloudWatch(cfg.Logging.Region, cfg.Logging.Namespace, cfg.Logging.DashboardName)
	}
	if strings.ToLower(cfg.Logging.Level) == "report" {
		logger.StartReport(ctx, log, 30*time.Second)
	}

	table := product.DefaultTable()
	for _, p := range cfg.Products {
		maturity, _ := time.Parse("2006-01-02", p.Maturity)
		table.Add(p.CUSIP, product.Terms{Coupon: p.Coupon, Maturity: maturity, PV01: p.PV01})
	}

	idSource := ids.NewRandom(time.Now().UnixNano())

	if *generate {
		gen := feedgen.New(table, idSource)
		if err := gen.GenerateAll(cfg.Feeds.Dir,
			cfg.Feeds.PriceTicks, cfg.Feeds.TradeCount, cfg.Feeds.BookUpdates, cfg.Feeds.Inquiry); err != nil {
			log.WithError(err).Error("Failed to generate feed files")
			os.Exit(1)
		}
	}

	// Service construction. Each store is built first, then the observer
	// graph is wired so one input record drives the full cascade.
	marketData := service.NewOrderBookStore()
	pricing := service.NewPricingStore()
	executor := service.NewSpreadCrossingExecutor(idSource, cfg.Algo.CrossingThreshold)
	executions := service.NewExecutionSink()
	trades := service.NewTradeLedger(nil)
	positions := service.NewPositionBook()
	risk := service.NewRiskBook(table)
	streamer := service.NewQuoteStreamer(cfg.Algo.BaseQuoteSize)
	quotes := service.NewQuotePublisher()
	inquiries := service.NewInquiryLedger()
	inquiries.SetQuoter(service.SelfQuoter{Ledger: inquiries})

	// Execution chain: order books -> crossing algo -> execution sink ->
	// trade booking -> positions -> risk.
	marketData.AddObserver(executor)
	executor.AddObserver(executions)
	executions.AddObserver(trades)
	trades.AddObserver(positions)
	positions.AddObserver(risk)

	// Streaming chain: prices -> quote streamer -> quote publisher.
	pricing.AddObserver(streamer)
	streamer.AddObserver(quotes)

	var guiPublisher *publisher.GUIPublisher
	if cfg.Publisher.Enabled {
		guiPublisher = publisher.NewGUIPublisher(cfg.Publisher)
		if err := guiPublisher.Start(ctx); err != nil {
			log.WithError(err).Error("Failed to start gui publisher")
			os.Exit(1)
		}
		pricing.AddObserver(guiPublisher)
	}

	var sinks []writer.BatchSink
	if cfg.Storage.S3.Enabled {
		archiver, err := writer.NewS3Archiver(cfg)
		if err != nil {
			log.WithError(err).Error("Failed to create S3 archiver")
			os.Exit(1)
		}
		sinks = append(sinks, archiver)
	}
	var kafkaPublisher *writer.KafkaPublisher
	if cfg.Storage.Kafka.Enabled {
		kafkaPublisher, err = writer.NewKafkaPublisher(cfg)
		if err != nil {
			log.WithError(err).Error("Failed to create kafka publisher")
			os.Exit(1)
		}
		sinks = append(sinks, kafkaPublisher)
	}

	ledgers := writer.NewLedgers(cfg.Ledgers, sinks...)
	ledgers.Attach(positions, risk, executions, quotes, inquiries)
	if err := ledgers.Start(ctx); err != nil {
		log.WithError(err).Error("Failed to start ledger writers")
		os.Exit(1)
	}

	feedPath := func(name string) string { return filepath.Join(cfg.Feeds.Dir, name) }

	// Feeds run sequentially: booked trades seed positions, then market data
	// drives the execution chain, then prices drive streaming, and finally
	// customer inquiries run their quote loop.
	runFeeds := []struct {
		name string
		run  func() error
	}{
		{"trades", func() error {
			return feed.NewTradeFeed(trades, table).RunFile(feedPath(cfg.Feeds.Trades))
		}},
		{"marketdata", func() error {
			return feed.NewMarketDataFeed(marketData, table, cfg.Feeds.BookDepth).RunFile(feedPath(cfg.Feeds.MarketData))
		}},
		{"prices", func() error {
			return feed.NewPriceFeed(pricing, table).RunFile(feedPath(cfg.Feeds.Prices))
		}},
		{"inquiries", func() error {
			return feed.NewInquiryFeed(inquiries, table).RunFile(feedPath(cfg.Feeds.Inquiries))
		}},
	}
	for _, f := range runFeeds {
		if err := f.run(); err != nil {
			log.WithError(err).WithField("feed", f.name).Error("Feed failed")
			os.Exit(1)
		}
	}

	logRiskSummary(log, table, risk)

	log.Info("all feeds processed, starting graceful shutdown")
	cancel()

	ledgers.Stop()
	if kafkaPublisher != nil {
		kafkaPublisher.Close()
	}
	if guiPublisher != nil {
		guiPublisher.Stop()
	}

	log.Info("bondflow stopped")
}

// logRiskSummary reports the front-end bucketed risk at end of run.
func logRiskSummary(log *logger.Log, table *product.Table, risk *service.RiskBook) {
	sector := model.BucketedSector{Name: "FrontEnd"}
	for _, cusip := range []string{"TMUBMUSD02Y", "TMUBMUSD03Y"} {
		bond, err := table.Bond(cusip)
		if err != nil {
			continue
		}
		sector.Products = append(sector.Products, bond)
	}
	summary := risk.BucketedRisk(sector)
	log.WithComponent("risk").WithFields(logger.Fields{
		"sector":   sector.Name,
		"pv01":     summary.Value,
		"quantity": summary.Quantity,
	}).Info("bucketed risk summary")
}
