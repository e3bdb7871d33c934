package service

import (
	"bondflow/internal/model"
	"bondflow/internal/product"
	"bondflow/logger"
)

// RiskBook computes PV01 risk per product from position updates. Entries are
// fully recomputed on every update, never accumulated.
type RiskBook struct {
	*Store[model.PV01]
	table *product.Table
	log   *logger.Log
}

// NewRiskBook constructs the risk service over the given product table,
// which supplies the static per-product pv01 coefficients.
func NewRiskBook(table *product.Table) *RiskBook {
	return &RiskBook{
		Store: NewStore("RISK", func(p model.PV01) string { return p.Product.ID() }),
		table: table,
		log:   logger.GetLogger(),
	}
}

// AddPosition replaces the product's PV01 entry with
// coefficient * aggregate position.
func (s *RiskBook) AddPosition(position model.Position) {
	coef, err := s.table.PV01(position.Product.ID())
	if err != nil {
		s.log.WithComponent("risk").WithError(err).Error("dropping position update")
		return
	}
	s.Ingest(model.PV01{
		Product:  position.Product,
		Value:    coef,
		Quantity: position.Aggregate,
	})
}

// BucketedRisk aggregates risk across the sector's member products: the
// returned Value is the sum of pv01*quantity over members and Quantity the
// summed aggregate position. Read-only query; nothing is stored.
func (s *RiskBook) BucketedRisk(sector model.BucketedSector) model.SectorPV01 {
	out := model.SectorPV01{Sector: sector}
	for _, bond := range sector.Products {
		entry, ok := s.Lookup(bond.ID())
		if !ok {
			continue
		}
		out.Value += entry.Value * float64(entry.Quantity)
		out.Quantity += entry.Quantity
	}
	return out
}

// OnAdd implements Observer[model.Position]; the risk book is registered on
// the position book.
func (s *RiskBook) OnAdd(position model.Position) { s.AddPosition(position) }

func (s *RiskBook) OnRemove(model.Position) {}
func (s *RiskBook) OnUpdate(model.Position) {}
