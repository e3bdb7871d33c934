// Package feedgen writes synthetic input files for the desk pipeline. The
// fixtures walk prices between 99 and 101 in 1/256 steps with alternating
// spreads, matching the shape of a quiet treasury session.
package feedgen

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"bondflow/internal/fraction"
	"bondflow/internal/ids"
	"bondflow/internal/product"
	"bondflow/logger"
)

const (
	lowPrice  = 99.0
	highPrice = 101.0
	tick      = 1.0 / 256.0
)

// Generator produces the four desk input files for a product table.
type Generator struct {
	cusips []string
	ids    ids.Source
	log    *logger.Entry
}

func New(table *product.Table, source ids.Source) *Generator {
	cusips := table.CUSIPs()
	sort.Strings(cusips)
	return &Generator{
		cusips: cusips,
		ids:    source,
		log:    logger.GetLogger().WithComponent("feedgen"),
	}
}

// GenerateAll writes prices, trades, market data and inquiries into dir.
func (g *Generator) GenerateAll(dir string, priceTicks, tradeCount, bookUpdates, inquiryCount int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("feedgen: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"prices.txt", func(w io.Writer) error { return g.WritePrices(w, priceTicks) }},
		{"trades.txt", func(w io.Writer) error { return g.WriteTrades(w, tradeCount) }},
		{"marketdata.txt", func(w io.Writer) error { return g.WriteMarketData(w, bookUpdates) }},
		{"inquiries.txt", func(w io.Writer) error { return g.WriteInquiries(w, inquiryCount) }},
	}
	for _, f := range files {
		if err := g.writeFile(filepath.Join(dir, f.name), f.write); err != nil {
			return err
		}
		g.log.WithField("file", f.name).Info("generated fixture")
	}
	return nil
}

func (g *Generator) writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("feedgen: %w", err)
	}
	defer file.Close()

	buf := bufio.NewWriter(file)
	if err := write(buf); err != nil {
		return err
	}
	return buf.Flush()
}

// WritePrices emits ticks rows per product: "cusip,bid,offer" with the mid
// oscillating between 99 and 101 and the spread alternating 1/128 and 1/64.
func (g *Generator) WritePrices(w io.Writer, ticks int) error {
	for _, cusip := range g.cusips {
		walk := newPriceWalk()
		for i := 0; i < ticks; i++ {
			bid, offer := walk.next()
			if _, err := fmt.Fprintf(w, "%s,%s,%s\n", cusip, fraction.Encode(bid), fraction.Encode(offer)); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteTrades emits count rows cycling through the products:
// "cusip,tradeId,price,book,quantity,side". Sides alternate SELL at 100 and
// BUY at 99; books rotate TRSY3/TRSY1/TRSY2 and quantities cycle 1M..5M.
func (g *Generator) WriteTrades(w io.Writer, count int) error {
	perProduct := count / len(g.cusips)
	if perProduct == 0 {
		perProduct = 1
	}
	books := []string{"TRSY3", "TRSY1", "TRSY2"}
	n := 0
	for _, cusip := range g.cusips {
		for j := 0; j < perProduct; j++ {
			side, price := "SELL", fraction.Encode(100.0)
			if n%2 == 1 {
				side, price = "BUY", fraction.Encode(99.0)
			}
			book := books[n%3]
			quantity := int64((n%5)+1) * 1_000_000
			if _, err := fmt.Fprintf(w, "%s,%s,%s,%s,%d,%s\n",
				cusip, g.ids.NextID(), price, book, quantity, side); err != nil {
				return err
			}
			n++
		}
	}
	return nil
}

// WriteMarketData emits updates order pairs per product, one BID and one
// OFFER row each: "cusip,price,quantity,side". Five consecutive pairs form
// one depth-10 snapshot for the reader.
func (g *Generator) WriteMarketData(w io.Writer, updates int) error {
	n := 0
	for _, cusip := range g.cusips {
		walk := newPriceWalk()
		for j := 0; j < updates; j++ {
			quantity := int64((n%5)+1) * 1_000_000
			bid, offer := walk.next()
			if _, err := fmt.Fprintf(w, "%s,%s,%d,BID\n", cusip, fraction.Encode(bid), quantity); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "%s,%s,%d,OFFER\n", cusip, fraction.Encode(offer), quantity); err != nil {
				return err
			}
			n++
		}
	}
	return nil
}

// WriteInquiries emits count RECEIVED rows cycling through the products:
// "inquiryId,cusip,side,quantity,price,state".
func (g *Generator) WriteInquiries(w io.Writer, count int) error {
	perProduct := count / len(g.cusips)
	if perProduct == 0 {
		perProduct = 1
	}
	n := 0
	for _, cusip := range g.cusips {
		for j := 0; j < perProduct; j++ {
			side, price := "SELL", fraction.Encode(100.0)
			if n%2 == 1 {
				side, price = "BUY", fraction.Encode(99.0)
			}
			quantity := int64((n%5)+1) * 1_000_000
			if _, err := fmt.Fprintf(w, "%s,%s,%s,%d,%s,RECEIVED\n",
				g.ids.NextID(), cusip, side, quantity, price); err != nil {
				return err
			}
			n++
		}
	}
	return nil
}

// priceWalk tracks the oscillating mid and alternating spread of one product.
type priceWalk struct {
	mid    float64
	up     bool
	narrow bool
}

func newPriceWalk() *priceWalk {
	return &priceWalk{mid: lowPrice, up: true, narrow: true}
}

func (p *priceWalk) next() (bid, offer float64) {
	half := tick
	if !p.narrow {
		half = 2 * tick
	}
	p.narrow = !p.narrow
	bid, offer = p.mid-half, p.mid+half

	if p.up {
		p.mid += tick
	} else {
		p.mid -= tick
	}
	if p.mid <= lowPrice || p.mid >= highPrice {
		p.up = !p.up
	}
	return bid, offer
}
