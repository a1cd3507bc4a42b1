package filter

import (
	"strings"

	"github.com/spf13/cast"
	"github.com/tiendafacil/pos-core/internal/catalog"
)

// Apply narrows the candidate entities by every active predicate of spec.
// Entities whose key appears in exclude are dropped first. Each predicate is a
// stable filter: relative input order is preserved, nothing is reordered.
func Apply(spec Spec, entities []catalog.Entity, exclude map[catalog.EntityKey]struct{}) []catalog.Entity {
	candidates := make([]catalog.Entity, 0, len(entities))
	for _, ent := range entities {
		if _, skip := exclude[ent.Key()]; skip {
			continue
		}
		candidates = append(candidates, ent)
	}

	candidates = narrow(candidates, spec.searchPredicate())
	candidates = narrow(candidates, spec.pricePredicate())
	candidates = narrow(candidates, spec.stockPredicate())
	candidates = narrow(candidates, facetPredicate(spec.Colors, colorOf))
	candidates = narrow(candidates, facetPredicate(spec.Categories, categoryOf))
	candidates = narrow(candidates, facetPredicate(spec.Segments, segmentOf))
	candidates = narrow(candidates, facetPredicate(spec.ProductNames, nameOf))

	return candidates
}

type predicate func(catalog.Entity) bool

// narrow keeps the entities matching pred. A nil pred means the filter is
// inactive and the candidates pass through untouched.
func narrow(candidates []catalog.Entity, pred predicate) []catalog.Entity {
	if pred == nil {
		return candidates
	}
	out := candidates[:0]
	for _, ent := range candidates {
		if pred(ent) {
			out = append(out, ent)
		}
	}
	return out
}

func (s Spec) searchPredicate() predicate {
	needle := normalize(s.SearchText)
	if needle == "" {
		return nil
	}
	return func(ent catalog.Entity) bool {
		for _, field := range searchFields(ent) {
			if strings.Contains(normalize(field), needle) {
				return true
			}
		}
		return false
	}
}

func (s Spec) pricePredicate() predicate {
	if s.PriceRange.Unrestricted() {
		return nil
	}
	return func(ent catalog.Entity) bool {
		return s.PriceRange.contains(ent.UnitPrice())
	}
}

func (s Spec) stockPredicate() predicate {
	if s.StockRange.Unrestricted() {
		return nil
	}
	return func(ent catalog.Entity) bool {
		product, ok := ent.(catalog.Product)
		if !ok {
			return false
		}
		return s.StockRange.contains(int64(product.Stock))
	}
}

// facetPredicate builds an OR-within-facet match: the entity passes when its
// field equals any selected value. Entities without the field never match an
// active facet.
func facetPredicate(selected StringSet, field func(catalog.Entity) (string, bool)) predicate {
	if selected.Empty() {
		return nil
	}
	return func(ent catalog.Entity) bool {
		value, ok := field(ent)
		if !ok {
			return false
		}
		return selected.Contains(value)
	}
}

func colorOf(ent catalog.Entity) (string, bool) {
	if product, ok := ent.(catalog.Product); ok {
		return product.Color, true
	}
	return "", false
}

func categoryOf(ent catalog.Entity) (string, bool) {
	if product, ok := ent.(catalog.Product); ok {
		return product.Category, true
	}
	return "", false
}

func segmentOf(ent catalog.Entity) (string, bool) {
	if product, ok := ent.(catalog.Product); ok {
		return product.Segment, true
	}
	return "", false
}

func nameOf(ent catalog.Entity) (string, bool) {
	return ent.DisplayName(), true
}

// searchFields lists the haystacks free-text search matches against, per
// variant. Numeric fields are matched through their string rendering.
func searchFields(ent catalog.Entity) []string {
	switch e := ent.(type) {
	case catalog.Product:
		return []string{
			e.Name,
			e.Description,
			e.Category,
			e.Segment,
			e.Color,
			cast.ToString(e.Price),
			cast.ToString(e.Stock),
			cast.ToString(e.ID),
		}
	case catalog.Service:
		return []string{
			e.Name,
			e.Description,
			cast.ToString(e.Price),
			cast.ToString(e.ID),
		}
	case catalog.CompositeProduct:
		return []string{
			e.Name,
			e.Description,
			cast.ToString(e.SalePrice),
			cast.ToString(e.ID),
		}
	default:
		return []string{ent.DisplayName(), cast.ToString(ent.UnitPrice())}
	}
}
