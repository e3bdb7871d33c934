// Package publisher pushes throttled price updates to the desk's viewers: an
// append-only text file and an optional websocket hub. The throttle keeps the
// viewer surface responsive while the pricing feed runs at full rate.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/time/rate"

	appconfig "bondflow/config"
	"bondflow/internal/fraction"
	"bondflow/internal/model"
	"bondflow/logger"
)

// GUIPublisher observes the pricing store and publishes a rate-limited
// subset of updates.
type GUIPublisher struct {
	cfg     appconfig.PublisherConfig
	limiter *rate.Limiter
	hub     *Hub
	mu      sync.Mutex
	file    *os.File
	tick    int64
	running bool
	log     *logger.Entry
}

type quotePayload struct {
	Tick   int64   `json:"tick"`
	CUSIP  string  `json:"cusip"`
	Mid    string  `json:"mid"`
	Spread float64 `json:"spread"`
}

func NewGUIPublisher(cfg appconfig.PublisherConfig) *GUIPublisher {
	p := &GUIPublisher{
		cfg: cfg,
		log: logger.GetLogger().WithComponent("gui_publisher"),
	}
	if cfg.ThrottleInterval > 0 {
		p.limiter = rate.NewLimiter(rate.Every(cfg.ThrottleInterval.Std()), 1)
	}
	if cfg.ListenAddr != "" {
		p.hub = NewHub(cfg.ListenAddr)
	}
	return p
}

// Start opens the output file and brings up the websocket hub when one is
// configured.
func (p *GUIPublisher) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("gui publisher already running")
	}

	if p.cfg.OutputFile != "" {
		file, err := os.OpenFile(p.cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("gui publisher: %w", err)
		}
		p.file = file
	}

	if p.hub != nil {
		go func() {
			if err := p.hub.Run(ctx); err != nil {
				p.log.WithError(err).Error("quote hub exited")
			}
		}()
	}

	p.running = true
	p.log.WithFields(logger.Fields{
		"output_file": p.cfg.OutputFile,
		"listen_addr": p.cfg.ListenAddr,
		"throttle":    p.cfg.ThrottleInterval.String(),
	}).Info("gui publisher started")
	return nil
}

// Stop closes the output file. The hub shuts down with its context.
func (p *GUIPublisher) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	if p.file != nil {
		p.file.Close()
		p.file = nil
	}
	p.log.Info("gui publisher stopped")
}

// OnAdd implements Observer[model.Price]; the publisher is registered on the
// pricing store. Every update counts a tick; only updates passing the
// throttle are published.
func (p *GUIPublisher) OnAdd(price model.Price) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}

	p.tick++
	if p.limiter != nil && !p.limiter.Allow() {
		return
	}

	if p.file != nil {
		line := fmt.Sprintf("%d,%s,%s,%.8f\n",
			p.tick, price.Product.ID(), fraction.Encode(price.Mid), price.Spread)
		if _, err := p.file.WriteString(line); err != nil {
			p.log.WithError(err).Warn("failed to append gui row")
		}
	}

	if p.hub != nil {
		payload, err := json.Marshal(quotePayload{
			Tick:   p.tick,
			CUSIP:  price.Product.ID(),
			Mid:    fraction.Encode(price.Mid),
			Spread: price.Spread,
		})
		if err != nil {
			p.log.WithError(err).Warn("failed to marshal quote payload")
			return
		}
		p.hub.Broadcast(payload)
	}
}

func (p *GUIPublisher) OnRemove(model.Price) {}
func (p *GUIPublisher) OnUpdate(model.Price) {}
