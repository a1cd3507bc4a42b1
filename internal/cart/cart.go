package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tiendafacil/pos-core/internal/catalog"
	"github.com/tiendafacil/pos-core/pkg/enums"
	pkgerrors "github.com/tiendafacil/pos-core/pkg/errors"
)

// compositeLineCap is the sentinel "stock" of a composite product. Bundles
// have no stock of their own; real gating happens on their components.
const compositeLineCap = 999

// Line is one cart entry, keyed by (item type, item id).
type Line struct {
	ItemType  enums.ItemType
	ItemID    int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int

	// SnapshotStock tracks the units of a product line still available in the
	// visible catalog: original stock minus Quantity. Sales flow only.
	SnapshotStock int
}

// Key returns the line's catalog key.
func (l *Line) Key() catalog.EntityKey {
	return catalog.EntityKey{Type: l.ItemType, ID: l.ItemID}
}

// LineTotal is UnitPrice times Quantity.
func (l *Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the in-session cart state machine. All transitions are synchronous
// and atomic: a rejected transition leaves the cart untouched. State is
// entirely captured by the lines plus the catalog snapshot the cart was
// opened against.
type Cart struct {
	flow     enums.Flow
	snapshot *catalog.Snapshot
	lines    []*Line
}

// New opens an empty cart against the given catalog snapshot.
func New(flow enums.Flow, snapshot *catalog.Snapshot) (*Cart, error) {
	if !flow.IsValid() {
		return nil, fmt.Errorf("invalid flow %q", flow)
	}
	if snapshot == nil {
		return nil, fmt.Errorf("catalog snapshot required")
	}
	return &Cart{flow: flow, snapshot: snapshot}, nil
}

// Flow returns the checkout variant this cart runs in.
func (c *Cart) Flow() enums.Flow {
	return c.flow
}

// Lines returns the cart lines in insertion order. Callers mutate lines only
// through cart transitions.
func (c *Cart) Lines() []*Line {
	out := make([]*Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Line returns the line for the given key, if present.
func (c *Cart) Line(key catalog.EntityKey) (*Line, bool) {
	for _, line := range c.lines {
		if line.Key() == key {
			return line, true
		}
	}
	return nil, false
}

// Add admits one unit of the entity, dispatching on its variant.
func (c *Cart) Add(entity catalog.Entity) error {
	switch e := entity.(type) {
	case catalog.Product:
		return c.AddProduct(e)
	case catalog.Service:
		return c.AddService(e)
	case catalog.CompositeProduct:
		return c.AddComposite(e)
	default:
		return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown catalog entity %T", entity))
	}
}

// AddProduct admits one unit of a stocked product. Sales flow gates on the
// visible stock (original stock minus units already in this cart); purchase
// flow has no ceiling because purchases add stock.
func (c *Cart) AddProduct(p catalog.Product) error {
	line, exists := c.Line(p.Key())

	if c.flow == enums.FlowSale {
		held := 0
		if exists {
			held = line.Quantity
		}
		if p.Stock-held <= 0 {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("product %d has no stock left", p.ID)).
				WithDetails(map[string]any{"product_id": p.ID, "stock": p.Stock, "held": held})
		}
	}

	if exists {
		line.Quantity++
		line.SnapshotStock = p.Stock - line.Quantity
		return nil
	}

	c.lines = append(c.lines, &Line{
		ItemType:      enums.ItemTypeProduct,
		ItemID:        p.ID,
		Name:          p.Name,
		UnitPrice:     c.admissionPrice(p),
		Quantity:      1,
		SnapshotStock: p.Stock - 1,
	})
	return nil
}

// AddService admits one unit of a service. Services carry no stock gating.
func (c *Cart) AddService(s catalog.Service) error {
	if line, exists := c.Line(s.Key()); exists {
		line.Quantity++
		return nil
	}
	c.lines = append(c.lines, &Line{
		ItemType:  enums.ItemTypeService,
		ItemID:    s.ID,
		Name:      s.Name,
		UnitPrice: s.Price,
		Quantity:  1,
	})
	return nil
}

// AddComposite admits one unit of a composite product after checking that
// every component remains affordable given what other composite lines in this
// cart already reserve of the same base products.
func (c *Cart) AddComposite(cp catalog.CompositeProduct) error {
	line, exists := c.Line(cp.Key())
	existingQty := 0
	if exists {
		existingQty = line.Quantity
	}
	if existingQty+1 > compositeLineCap {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("composite product %d reached the line cap", cp.ID))
	}

	if err := c.checkComponents(cp, existingQty); err != nil {
		return err
	}

	if exists {
		line.Quantity++
		return nil
	}
	c.lines = append(c.lines, &Line{
		ItemType:  enums.ItemTypeCompositeProduct,
		ItemID:    cp.ID,
		Name:      cp.Name,
		UnitPrice: cp.SalePrice,
		Quantity:  1,
	})
	return nil
}

// checkComponents verifies cp can grow to existingQty+1 units: for every
// component, the base product's stock minus what OTHER composite lines
// reserve of it must cover the grown reservation. Reservations are recomputed
// from scratch on every check; nothing is incrementally maintained.
func (c *Cart) checkComponents(cp catalog.CompositeProduct, existingQty int) error {
	for _, req := range cp.Components {
		base, ok := c.snapshot.ProductByID(req.ProductID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInsufficientComponentStock,
				fmt.Sprintf("component product %d of composite %d is not in the catalog", req.ProductID, cp.ID)).
				WithDetails(map[string]any{"product_id": req.ProductID, "composite_id": cp.ID})
		}
		reservedByOthers := c.reservedByOtherComposites(cp.ID, req.ProductID)
		needed := req.Quantity * (existingQty + 1)
		if base.Stock-reservedByOthers < needed {
			return pkgerrors.New(pkgerrors.CodeInsufficientComponentStock,
				fmt.Sprintf("not enough %s for composite %s", base.Name, cp.Name)).
				WithDetails(map[string]any{
					"product_id":         base.ID,
					"composite_id":       cp.ID,
					"stock":              base.Stock,
					"reserved_by_others": reservedByOthers,
					"needed":             needed,
				})
		}
	}
	return nil
}

// reservedByOtherComposites sums the units of productID consumed by composite
// lines other than compositeID, scanning all cart lines.
func (c *Cart) reservedByOtherComposites(compositeID, productID int64) int {
	reserved := 0
	for _, line := range c.lines {
		if line.ItemType != enums.ItemTypeCompositeProduct || line.ItemID == compositeID {
			continue
		}
		other, ok := c.snapshot.CompositeByID(line.ItemID)
		if !ok {
			continue
		}
		for _, req := range other.Components {
			if req.ProductID == productID {
				reserved += req.Quantity * line.Quantity
			}
		}
	}
	return reserved
}

// IncreaseQuantity re-applies admission gating for one more unit of the line.
func (c *Cart) IncreaseQuantity(key catalog.EntityKey) error {
	line, exists := c.Line(key)
	if !exists {
		return pkgerrors.New(pkgerrors.CodeValidation, "line not in cart")
	}
	switch line.ItemType {
	case enums.ItemTypeProduct:
		product, ok := c.snapshot.ProductByID(line.ItemID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "product no longer in catalog")
		}
		return c.AddProduct(product)
	case enums.ItemTypeService:
		line.Quantity++
		return nil
	case enums.ItemTypeCompositeProduct:
		composite, ok := c.snapshot.CompositeByID(line.ItemID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "composite product no longer in catalog")
		}
		return c.AddComposite(composite)
	default:
		return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown item type %q", line.ItemType))
	}
}

// DecreaseQuantity gives one unit back. A line at quantity 1 is removed
// entirely; quantities never reach zero while a line is present.
func (c *Cart) DecreaseQuantity(key catalog.EntityKey) error {
	line, exists := c.Line(key)
	if !exists {
		return pkgerrors.New(pkgerrors.CodeValidation, "line not in cart")
	}
	if line.Quantity == 1 {
		return c.Remove(key)
	}
	line.Quantity--
	if line.ItemType == enums.ItemTypeProduct {
		line.SnapshotStock++
	}
	return nil
}

// Remove deletes the line. Visible-catalog restoration is not patched here:
// the visible set is always rederived from the full snapshot and the current
// lines, so removal cannot drift from the add arithmetic.
func (c *Cart) Remove(key catalog.EntityKey) error {
	for i, line := range c.lines {
		if line.Key() == key {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "line not in cart")
}

// SetQuantity overwrites a line's quantity. Purchase flow only: purchases add
// stock, so no upper bound applies. Values below 1 are coerced to 1.
func (c *Cart) SetQuantity(key catalog.EntityKey, quantity int) error {
	if c.flow != enums.FlowPurchase {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity overwrite is a purchase-flow operation")
	}
	line, exists := c.Line(key)
	if !exists {
		return pkgerrors.New(pkgerrors.CodeValidation, "line not in cart")
	}
	if quantity < 1 {
		quantity = 1
	}
	line.Quantity = quantity
	return nil
}

// SetUnitPrice overwrites a line's unit price, letting the operator record
// the actual cost of this purchase. Purchase flow only.
func (c *Cart) SetUnitPrice(key catalog.EntityKey, price decimal.Decimal) error {
	if c.flow != enums.FlowPurchase {
		return pkgerrors.New(pkgerrors.CodeValidation, "price overwrite is a purchase-flow operation")
	}
	line, exists := c.Line(key)
	if !exists {
		return pkgerrors.New(pkgerrors.CodeValidation, "line not in cart")
	}
	line.UnitPrice = price
	return nil
}

// TotalPrice recomputes the cart total from scratch. It is never stored.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// VisibleStock derives a product's displayed stock: snapshot stock minus the
// units held by this cart's product line for it.
func (c *Cart) VisibleStock(productID int64) int {
	product, ok := c.snapshot.ProductByID(productID)
	if !ok {
		return 0
	}
	held := 0
	if line, exists := c.Line(product.Key()); exists {
		held = line.Quantity
	}
	return product.Stock - held
}

// ExcludedKeys returns the keys of every carted entity. The purchase flow
// feeds this to the filter engine so carted items leave the visible set.
func (c *Cart) ExcludedKeys() map[catalog.EntityKey]struct{} {
	out := make(map[catalog.EntityKey]struct{}, len(c.lines))
	for _, line := range c.lines {
		out[line.Key()] = struct{}{}
	}
	return out
}

// CanCheckout is the checkout enablement predicate, re-evaluated on every
// call: a non-empty cart, a selected counterparty, a payment method when
// selling, and a positive total.
func (c *Cart) CanCheckout(counterpartySelected, paymentMethodSelected bool) bool {
	if len(c.lines) == 0 {
		return false
	}
	if !counterpartySelected {
		return false
	}
	if c.flow == enums.FlowSale && !paymentMethodSelected {
		return false
	}
	return c.TotalPrice().IsPositive()
}

// admissionPrice picks the unit price a new product line starts at: the sale
// price when selling, the recorded cost when purchasing (the operator can
// overwrite it afterwards).
func (c *Cart) admissionPrice(p catalog.Product) decimal.Decimal {
	if c.flow == enums.FlowPurchase {
		return p.Cost
	}
	return p.Price
}
