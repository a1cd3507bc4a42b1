package catalog

import (
	"context"
	"fmt"

	"github.com/tiendafacil/pos-core/pkg/logger"
)

// Source lists raw catalog collections from the remote POS API.
type Source interface {
	ListProducts(ctx context.Context) ([]Product, error)
	ListServices(ctx context.Context) ([]Service, error)
	ListComposites(ctx context.Context) ([]CompositeProduct, error)
	ListClients(ctx context.Context) ([]Client, error)
	ListProviders(ctx context.Context) ([]Provider, error)
}

// Normalizer loads the catalog collections for a checkout session. A failed or
// rejected fetch degrades that collection to empty instead of propagating, so
// the session keeps functioning in a no-catalog state.
type Normalizer struct {
	source Source
	log    *logger.Logger
}

// NewNormalizer builds a normalizer over the given source.
func NewNormalizer(source Source, log *logger.Logger) (*Normalizer, error) {
	if source == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Normalizer{source: source, log: log}, nil
}

// Load fetches and validates every collection. It never fails; collections
// that could not be loaded come back empty.
func (n *Normalizer) Load(ctx context.Context) *Snapshot {
	products, err := n.source.ListProducts(ctx)
	if err != nil {
		n.log.Error(ctx, "load products", err)
		products = nil
	}
	services, err := n.source.ListServices(ctx)
	if err != nil {
		n.log.Error(ctx, "load services", err)
		services = nil
	}
	composites, err := n.source.ListComposites(ctx)
	if err != nil {
		n.log.Error(ctx, "load composite products", err)
		composites = nil
	}
	clients, err := n.source.ListClients(ctx)
	if err != nil {
		n.log.Error(ctx, "load clients", err)
		clients = nil
	}
	providers, err := n.source.ListProviders(ctx)
	if err != nil {
		n.log.Error(ctx, "load providers", err)
		providers = nil
	}

	return NewSnapshot(
		n.validProducts(ctx, products),
		n.validServices(ctx, services),
		n.validComposites(ctx, composites),
		clients,
		providers,
	)
}

func (n *Normalizer) validProducts(ctx context.Context, in []Product) []Product {
	out := make([]Product, 0, len(in))
	seen := make(map[int64]struct{}, len(in))
	for _, p := range in {
		if _, dup := seen[p.ID]; dup {
			n.log.Warn(n.log.WithField(ctx, "product_id", p.ID), "duplicate product id dropped")
			continue
		}
		if p.Price.IsNegative() || p.Cost.IsNegative() || p.Stock < 0 {
			n.log.Warn(n.log.WithField(ctx, "product_id", p.ID), "product with negative price, cost or stock dropped")
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

func (n *Normalizer) validServices(ctx context.Context, in []Service) []Service {
	out := make([]Service, 0, len(in))
	seen := make(map[int64]struct{}, len(in))
	for _, s := range in {
		if _, dup := seen[s.ID]; dup {
			n.log.Warn(n.log.WithField(ctx, "service_id", s.ID), "duplicate service id dropped")
			continue
		}
		if s.Price.IsNegative() || s.Cost.IsNegative() {
			n.log.Warn(n.log.WithField(ctx, "service_id", s.ID), "service with negative price or cost dropped")
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (n *Normalizer) validComposites(ctx context.Context, in []CompositeProduct) []CompositeProduct {
	out := make([]CompositeProduct, 0, len(in))
	seen := make(map[int64]struct{}, len(in))
	for _, c := range in {
		if _, dup := seen[c.ID]; dup {
			n.log.Warn(n.log.WithField(ctx, "composite_id", c.ID), "duplicate composite product id dropped")
			continue
		}
		if c.SalePrice.IsNegative() || c.EstimatedCost.IsNegative() {
			n.log.Warn(n.log.WithField(ctx, "composite_id", c.ID), "composite product with negative price or cost dropped")
			continue
		}
		if !validComponents(c.Components) {
			n.log.Warn(n.log.WithField(ctx, "composite_id", c.ID), "composite product with invalid component requirements dropped")
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

func validComponents(components []ComponentRequirement) bool {
	for _, req := range components {
		if req.Quantity < 1 {
			return false
		}
	}
	return true
}
