package catalog

import (
	"github.com/shopspring/decimal"
	"github.com/tiendafacil/pos-core/pkg/enums"
)

// EntityKey uniquely identifies a sellable entity across the three catalog
// variants. Identifiers are only unique within a variant, so the type tag is
// part of the key.
type EntityKey struct {
	Type enums.ItemType
	ID   int64
}

// Entity is the common read surface over the catalog variants. Consumers that
// need variant-specific fields type-switch on the concrete types.
type Entity interface {
	Key() EntityKey
	DisplayName() string
	UnitPrice() decimal.Decimal
}

// ComponentRequirement links a service or composite product to a base product
// and how many units of it one sold unit consumes.
type ComponentRequirement struct {
	ProductID int64
	Quantity  int
}

// Product is a stocked base item.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Cost        decimal.Decimal
	Stock       int
	Color       string
	Category    string
	Segment     string
	PhotoRef    string
}

func (p Product) Key() EntityKey {
	return EntityKey{Type: enums.ItemTypeProduct, ID: p.ID}
}

func (p Product) DisplayName() string {
	return p.Name
}

func (p Product) UnitPrice() decimal.Decimal {
	return p.Price
}

// Service is an unstocked offering. Its component requirements describe base
// products consumed when the service is performed; availability is not gated
// on them at cart time.
type Service struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Cost        decimal.Decimal
	Components  []ComponentRequirement
}

func (s Service) Key() EntityKey {
	return EntityKey{Type: enums.ItemTypeService, ID: s.ID}
}

func (s Service) DisplayName() string {
	return s.Name
}

func (s Service) UnitPrice() decimal.Decimal {
	return s.Price
}

// CompositeProduct is a virtual bundle. It has no stock of its own; admission
// to a cart is bounded by the true availability of its component products.
type CompositeProduct struct {
	ID            int64
	Name          string
	Description   string
	SalePrice     decimal.Decimal
	EstimatedCost decimal.Decimal
	Components    []ComponentRequirement
}

func (c CompositeProduct) Key() EntityKey {
	return EntityKey{Type: enums.ItemTypeCompositeProduct, ID: c.ID}
}

func (c CompositeProduct) DisplayName() string {
	return c.Name
}

func (c CompositeProduct) UnitPrice() decimal.Decimal {
	return c.SalePrice
}

// Client is the counterparty of a sale.
type Client struct {
	ID              int64
	Name            string
	Email           string
	Phone           string
	Address         string
	InstagramHandle string
}

// Provider is the counterparty of a purchase.
type Provider struct {
	ID      int64
	Name    string
	Email   string
	Phone   string
	Address string
}
