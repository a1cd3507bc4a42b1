package catalog

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tiendafacil/pos-core/pkg/logger"
)

type stubSource struct {
	products  []Product
	services  []Service
	composite []CompositeProduct
	clients   []Client
	providers []Provider

	productsErr error
	servicesErr error
}

func (s *stubSource) ListProducts(context.Context) ([]Product, error) {
	return s.products, s.productsErr
}

func (s *stubSource) ListServices(context.Context) ([]Service, error) {
	return s.services, s.servicesErr
}

func (s *stubSource) ListComposites(context.Context) ([]CompositeProduct, error) {
	return s.composite, nil
}

func (s *stubSource) ListClients(context.Context) ([]Client, error) {
	return s.clients, nil
}

func (s *stubSource) ListProviders(context.Context) ([]Provider, error) {
	return s.providers, nil
}

func testLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: buf})
}

func TestLoadDegradesFailedCollectionsToEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	source := &stubSource{
		productsErr: errors.New("connection refused"),
		services:    []Service{{ID: 1, Name: "Engraving", Price: decimal.NewFromInt(10)}},
	}
	normalizer, err := NewNormalizer(source, testLogger(buf))
	if err != nil {
		t.Fatalf("new normalizer: %v", err)
	}

	snap := normalizer.Load(context.Background())
	if len(snap.Products) != 0 {
		t.Fatalf("failed collection must come back empty, got %d", len(snap.Products))
	}
	if len(snap.Services) != 1 {
		t.Fatalf("healthy collections must survive, got %d services", len(snap.Services))
	}
	if !bytes.Contains(buf.Bytes(), []byte("load products")) {
		t.Fatalf("failure must be logged; log=%s", buf.String())
	}
}

func TestLoadDropsDuplicateIdentifiers(t *testing.T) {
	buf := &bytes.Buffer{}
	source := &stubSource{
		products: []Product{
			{ID: 1, Name: "First", Price: decimal.NewFromInt(5), Stock: 1},
			{ID: 1, Name: "Shadow", Price: decimal.NewFromInt(6), Stock: 2},
			{ID: 2, Name: "Second", Price: decimal.NewFromInt(7), Stock: 3},
		},
	}
	normalizer, err := NewNormalizer(source, testLogger(buf))
	if err != nil {
		t.Fatal(err)
	}

	snap := normalizer.Load(context.Background())
	if len(snap.Products) != 2 {
		t.Fatalf("expected duplicate dropped, got %d products", len(snap.Products))
	}
	if got, _ := snap.ProductByID(1); got.Name != "First" {
		t.Fatalf("first occurrence must win, got %q", got.Name)
	}
}

func TestLoadDropsNegativePrices(t *testing.T) {
	buf := &bytes.Buffer{}
	source := &stubSource{
		products: []Product{
			{ID: 1, Name: "OK", Price: decimal.NewFromInt(5)},
			{ID: 2, Name: "Broken", Price: decimal.NewFromInt(-5)},
		},
		composite: []CompositeProduct{
			{ID: 1, Name: "OK Box", SalePrice: decimal.NewFromInt(30), Components: []ComponentRequirement{{ProductID: 1, Quantity: 1}}},
			{ID: 2, Name: "Bad Box", SalePrice: decimal.NewFromInt(30), Components: []ComponentRequirement{{ProductID: 1, Quantity: 0}}},
		},
	}
	normalizer, err := NewNormalizer(source, testLogger(buf))
	if err != nil {
		t.Fatal(err)
	}

	snap := normalizer.Load(context.Background())
	if len(snap.Products) != 1 || snap.Products[0].ID != 1 {
		t.Fatalf("negative price must be dropped: %+v", snap.Products)
	}
	if len(snap.Composites) != 1 || snap.Composites[0].ID != 1 {
		t.Fatalf("invalid component requirement must be dropped: %+v", snap.Composites)
	}
}

func TestSnapshotLookupsAndEntityOrder(t *testing.T) {
	t.Parallel()

	snap := NewSnapshot(
		[]Product{{ID: 1, Name: "P"}},
		[]Service{{ID: 1, Name: "S"}},
		[]CompositeProduct{{ID: 1, Name: "C"}},
		[]Client{{ID: 9, Name: "Ana"}},
		[]Provider{{ID: 8, Name: "Waxco"}},
	)

	if _, ok := snap.ProductByID(1); !ok {
		t.Fatal("product lookup failed")
	}
	if _, ok := snap.CompositeByID(1); !ok {
		t.Fatal("composite lookup failed")
	}
	if c, ok := snap.ClientByID(9); !ok || c.Name != "Ana" {
		t.Fatal("client lookup failed")
	}
	if p, ok := snap.ProviderByID(8); !ok || p.Name != "Waxco" {
		t.Fatal("provider lookup failed")
	}
	if _, ok := snap.ProductByID(99); ok {
		t.Fatal("missing product must not resolve")
	}

	entities := snap.Entities()
	if len(entities) != 3 {
		t.Fatalf("expected 3 sellable entities, got %d", len(entities))
	}
	if entities[0].DisplayName() != "P" || entities[1].DisplayName() != "S" || entities[2].DisplayName() != "C" {
		t.Fatalf("entity order must be products, services, composites")
	}
}
