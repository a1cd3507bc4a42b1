package posapi

import (
	"github.com/shopspring/decimal"
	"github.com/tiendafacil/pos-core/internal/catalog"
)

type componentDTO struct {
	ProductID int64 `json:"producto_id"`
	Quantity  int   `json:"cantidad"`
}

type productDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"nombre"`
	Description string  `json:"descripcion"`
	Price       float64 `json:"precio"`
	Cost        float64 `json:"costo"`
	Stock       int     `json:"stock"`
	Color       string  `json:"color"`
	Category    string  `json:"categoria"`
	Segment     string  `json:"segmento"`
	Photo       string  `json:"foto"`
}

type serviceDTO struct {
	ID          int64          `json:"id"`
	Name        string         `json:"nombre"`
	Description string         `json:"descripcion"`
	Price       float64        `json:"precio"`
	Cost        float64        `json:"costo"`
	Products    []componentDTO `json:"productos"`
}

type compositeDTO struct {
	ID            int64          `json:"id"`
	Name          string         `json:"nombre"`
	Description   string         `json:"descripcion"`
	SalePrice     float64        `json:"precio_venta"`
	EstimatedCost float64        `json:"costo_estimado"`
	Components    []componentDTO `json:"componentes"`
}

type clientDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"nombre"`
	Email     string `json:"email"`
	Phone     string `json:"telefono"`
	Address   string `json:"direccion"`
	Instagram string `json:"instagram"`
}

type providerDTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"nombre"`
	Email   string `json:"email"`
	Phone   string `json:"telefono"`
	Address string `json:"direccion"`
}

func mapComponents(in []componentDTO) []catalog.ComponentRequirement {
	if len(in) == 0 {
		return nil
	}
	out := make([]catalog.ComponentRequirement, 0, len(in))
	for _, c := range in {
		out = append(out, catalog.ComponentRequirement{ProductID: c.ProductID, Quantity: c.Quantity})
	}
	return out
}

func (d productDTO) toDomain() catalog.Product {
	return catalog.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       decimal.NewFromFloat(d.Price),
		Cost:        decimal.NewFromFloat(d.Cost),
		Stock:       d.Stock,
		Color:       d.Color,
		Category:    d.Category,
		Segment:     d.Segment,
		PhotoRef:    d.Photo,
	}
}

func (d serviceDTO) toDomain() catalog.Service {
	return catalog.Service{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       decimal.NewFromFloat(d.Price),
		Cost:        decimal.NewFromFloat(d.Cost),
		Components:  mapComponents(d.Products),
	}
}

func (d compositeDTO) toDomain() catalog.CompositeProduct {
	return catalog.CompositeProduct{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		SalePrice:     decimal.NewFromFloat(d.SalePrice),
		EstimatedCost: decimal.NewFromFloat(d.EstimatedCost),
		Components:    mapComponents(d.Components),
	}
}

func (d clientDTO) toDomain() catalog.Client {
	return catalog.Client{
		ID:              d.ID,
		Name:            d.Name,
		Email:           d.Email,
		Phone:           d.Phone,
		Address:         d.Address,
		InstagramHandle: d.Instagram,
	}
}

func (d providerDTO) toDomain() catalog.Provider {
	return catalog.Provider{
		ID:      d.ID,
		Name:    d.Name,
		Email:   d.Email,
		Phone:   d.Phone,
		Address: d.Address,
	}
}
