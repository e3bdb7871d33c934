package service

import "bondflow/internal/model"

// PricingStore owns per-product mid and bid/offer spread.
type PricingStore struct {
	*Store[model.Price]
}

// NewPricingStore constructs the pricing service.
func NewPricingStore() *PricingStore {
	return &PricingStore{
		Store: NewStore("PRICING", func(p model.Price) string { return p.Product.ID() }),
	}
}
