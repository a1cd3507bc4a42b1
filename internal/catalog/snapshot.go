package catalog

// Snapshot is the read-only catalog view held for the duration of one checkout
// session. Collections keep the order the API returned them in.
type Snapshot struct {
	Products   []Product
	Services   []Service
	Composites []CompositeProduct
	Clients    []Client
	Providers  []Provider

	productIndex   map[int64]int
	compositeIndex map[int64]int
}

// NewSnapshot indexes the given collections for id lookups.
func NewSnapshot(products []Product, services []Service, composites []CompositeProduct, clients []Client, providers []Provider) *Snapshot {
	snap := &Snapshot{
		Products:       products,
		Services:       services,
		Composites:     composites,
		Clients:        clients,
		Providers:      providers,
		productIndex:   make(map[int64]int, len(products)),
		compositeIndex: make(map[int64]int, len(composites)),
	}
	for i, p := range products {
		snap.productIndex[p.ID] = i
	}
	for i, c := range composites {
		snap.compositeIndex[c.ID] = i
	}
	return snap
}

// ProductByID returns the product with the given id, if present.
func (s *Snapshot) ProductByID(id int64) (Product, bool) {
	if s == nil {
		return Product{}, false
	}
	if i, ok := s.productIndex[id]; ok {
		return s.Products[i], true
	}
	return Product{}, false
}

// CompositeByID returns the composite product with the given id, if present.
func (s *Snapshot) CompositeByID(id int64) (CompositeProduct, bool) {
	if s == nil {
		return CompositeProduct{}, false
	}
	if i, ok := s.compositeIndex[id]; ok {
		return s.Composites[i], true
	}
	return CompositeProduct{}, false
}

// ClientByID returns the client with the given id, if present.
func (s *Snapshot) ClientByID(id int64) (Client, bool) {
	if s == nil {
		return Client{}, false
	}
	for _, c := range s.Clients {
		if c.ID == id {
			return c, true
		}
	}
	return Client{}, false
}

// ProviderByID returns the provider with the given id, if present.
func (s *Snapshot) ProviderByID(id int64) (Provider, bool) {
	if s == nil {
		return Provider{}, false
	}
	for _, p := range s.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}

// Entities flattens the sellable collections into the homogeneous view the
// filter engine consumes: products, then services, then composites, in API
// order within each collection.
func (s *Snapshot) Entities() []Entity {
	if s == nil {
		return nil
	}
	out := make([]Entity, 0, len(s.Products)+len(s.Services)+len(s.Composites))
	for _, p := range s.Products {
		out = append(out, p)
	}
	for _, sv := range s.Services {
		out = append(out, sv)
	}
	for _, c := range s.Composites {
		out = append(out, c)
	}
	return out
}
