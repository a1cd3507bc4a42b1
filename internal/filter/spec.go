package filter

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxPrice is the sentinel upper bound of an untouched price range.
var MaxPrice = decimal.NewFromInt(math.MaxInt64)

// MaxStock is the sentinel upper bound of an untouched stock range.
const MaxStock = math.MaxInt64

// PriceRange bounds unit prices inclusively on both ends.
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Unrestricted reports whether the range is the untouched default. An
// untouched range imposes no restriction, so default ranges never hide data.
func (r PriceRange) Unrestricted() bool {
	return r.Min.LessThanOrEqual(decimal.Zero) && r.Max.GreaterThanOrEqual(MaxPrice)
}

func (r PriceRange) contains(value decimal.Decimal) bool {
	return value.GreaterThanOrEqual(r.Min) && value.LessThanOrEqual(r.Max)
}

// StockRange bounds product stock inclusively on both ends.
type StockRange struct {
	Min int64
	Max int64
}

// Unrestricted reports whether the range is the untouched default.
func (r StockRange) Unrestricted() bool {
	return r.Min <= 0 && r.Max >= MaxStock
}

func (r StockRange) contains(value int64) bool {
	return value >= r.Min && value <= r.Max
}

// StringSet is a case-insensitive, trimmed membership set for facet filters.
type StringSet map[string]struct{}

// NewStringSet normalizes and collects the given values.
func NewStringSet(values ...string) StringSet {
	set := make(StringSet, len(values))
	for _, v := range values {
		normalized := normalize(v)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

// Contains reports membership of the normalized value.
func (s StringSet) Contains(value string) bool {
	_, ok := s[normalize(value)]
	return ok
}

// Empty reports whether no value is selected; an empty facet is a no-op.
func (s StringSet) Empty() bool {
	return len(s) == 0
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Spec is the immutable filter specification for one recomputation. The zero
// value is NOT the identity; use DefaultSpec.
type Spec struct {
	SearchText   string
	PriceRange   PriceRange
	StockRange   StockRange
	Colors       StringSet
	Categories   StringSet
	Segments     StringSet
	ProductNames StringSet
}

// DefaultSpec returns the unrestricted specification: empty search, unbounded
// ranges, no facet selections. Applying it is the identity over any catalog.
func DefaultSpec() Spec {
	return Spec{
		PriceRange:   PriceRange{Min: decimal.Zero, Max: MaxPrice},
		StockRange:   StockRange{Min: 0, Max: MaxStock},
		Colors:       NewStringSet(),
		Categories:   NewStringSet(),
		Segments:     NewStringSet(),
		ProductNames: NewStringSet(),
	}
}
