package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tiendafacil/pos-core/internal/catalog"
	"github.com/tiendafacil/pos-core/pkg/enums"
	pkgerrors "github.com/tiendafacil/pos-core/pkg/errors"
)

func price(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func testSnapshot() *catalog.Snapshot {
	products := []catalog.Product{
		{ID: 1, Name: "Candle A", Price: price("20"), Cost: price("8"), Stock: 5, Color: "red", Category: "candles", Segment: "home"},
		{ID: 2, Name: "Wax B", Price: price("4"), Cost: price("1.5"), Stock: 5, Category: "supplies", Segment: "raw"},
		{ID: 3, Name: "Wick C", Price: price("2"), Cost: price("0.5"), Stock: 10, Category: "supplies", Segment: "raw"},
	}
	services := []catalog.Service{
		{ID: 1, Name: "Engraving", Price: price("15"), Cost: price("3")},
	}
	composites := []catalog.CompositeProduct{
		{ID: 1, Name: "Gift Box X", SalePrice: price("30"), EstimatedCost: price("12"), Components: []catalog.ComponentRequirement{
			{ProductID: 2, Quantity: 2},
		}},
		{ID: 2, Name: "Deluxe Box Y", SalePrice: price("50"), EstimatedCost: price("20"), Components: []catalog.ComponentRequirement{
			{ProductID: 2, Quantity: 2},
			{ProductID: 3, Quantity: 1},
		}},
	}
	return catalog.NewSnapshot(products, services, composites, nil, nil)
}

func newSaleCart(t *testing.T) *Cart {
	t.Helper()
	c, err := New(enums.FlowSale, testSnapshot())
	if err != nil {
		t.Fatalf("new cart: %v", err)
	}
	return c
}

func mustProduct(t *testing.T, c *Cart, id int64) catalog.Product {
	t.Helper()
	snap := testSnapshot()
	p, ok := snap.ProductByID(id)
	if !ok {
		t.Fatalf("product %d missing from test snapshot", id)
	}
	return p
}

func TestAddProductScenario(t *testing.T) {
	t.Parallel()

	c := newSaleCart(t)
	p := mustProduct(t, c, 1)

	if err := c.AddProduct(p); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := c.VisibleStock(1); got != 4 {
		t.Fatalf("expected visible stock 4, got %d", got)
	}
	if !c.TotalPrice().Equal(price("20")) {
		t.Fatalf("expected total 20, got %s", c.TotalPrice())
	}

	key := p.Key()
	if err := c.IncreaseQuantity(key); err != nil {
		t.Fatalf("increase: %v", err)
	}
	if err := c.IncreaseQuantity(key); err != nil {
		t.Fatalf("increase: %v", err)
	}
	if got := c.VisibleStock(1); got != 2 {
		t.Fatalf("expected visible stock 2, got %d", got)
	}
	if !c.TotalPrice().Equal(price("60")) {
		t.Fatalf("expected total 60, got %s", c.TotalPrice())
	}

	if err := c.Remove(key); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := c.VisibleStock(1); got != 5 {
		t.Fatalf("expected stock restored to 5, got %d", got)
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty cart")
	}
	if !c.TotalPrice().IsZero() {
		t.Fatalf("expected zero total, got %s", c.TotalPrice())
	}
}

func TestAddProductStockConservation(t *testing.T) {
	t.Parallel()

	c := newSaleCart(t)
	p := mustProduct(t, c, 1)
	key := p.Key()

	steps := []func() error{
		func() error { return c.AddProduct(p) },
		func() error { return c.IncreaseQuantity(key) },
		func() error { return c.IncreaseQuantity(key) },
		func() error { return c.DecreaseQuantity(key) },
		func() error { return c.IncreaseQuantity(key) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		line, ok := c.Line(key)
		if !ok {
			t.Fatalf("step %d: line vanished", i)
		}
		if line.Quantity < 1 {
			t.Fatalf("step %d: quantity dropped below 1", i)
		}
		if line.SnapshotStock+line.Quantity != p.Stock {
			t.Fatalf("step %d: conservation broken: snapshot %d + qty %d != stock %d",
				i, line.SnapshotStock, line.Quantity, p.Stock)
		}
	}
}

func TestAddProductRejectsExhaustedStock(t *testing.T) {
	t.Parallel()

	c := newSaleCart(t)
	p := mustProduct(t, c, 1)
	key := p.Key()

	if err := c.AddProduct(p); err != nil {
		t.Fatalf("add: %v", err)
	}
	for i := 0; i < 4; i++ {
		if err := c.IncreaseQuantity(key); err != nil {
			t.Fatalf("increase %d: %v", i, err)
		}
	}
	if got := c.VisibleStock(1); got != 0 {
		t.Fatalf("expected visible stock 0, got %d", got)
	}

	err := c.IncreaseQuantity(key)
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	line, _ := c.Line(key)
	if line.Quantity != 5 {
		t.Fatalf("rejected transition must not change state, qty=%d", line.Quantity)
	}
}

func TestAddProductNoDuplicateLines(t *testing.T) {
	t.Parallel()

	c := newSaleCart(t)
	p := mustProduct(t, c, 1)

	if err := c.AddProduct(p); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.AddProduct(p); err != nil {
		t.Fatalf("add again: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("repeated add must increment quantity, not duplicate lines; got %d lines", c.Len())
	}
	line, _ := c.Line(p.Key())
	if line.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", line.Quantity)
	}
}

func TestDecreaseQuantityAtOneRemovesLine(t *testing.T) {
	t.Parallel()

	c := newSaleCart(t)
	p := mustProduct(t, c, 1)

	if err := c.AddProduct(p); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.DecreaseQuantity(p.Key()); err != nil {
		t.Fatalf("decrease: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("expected line removed at quantity zero")
	}
	if got := c.VisibleStock(1); got != 5 {
		t.Fatalf("expected stock restored, got %d", got)
	}
}

func TestServiceAdditionUngated(t *testing.T) {
	t.Parallel()

	c := newSaleCart(t)
	svc := testSnapshot().Services[0]

	for i := 0; i < 50; i++ {
		if err := c.AddService(svc); err != nil {
			t.Fatalf("add service %d: %v", i, err)
		}
	}
	line, ok := c.Line(svc.Key())
	if !ok || line.Quantity != 50 {
		t.Fatalf("expected service quantity 50")
	}
	if !c.TotalPrice().Equal(price("750")) {
		t.Fatalf("expected total 750, got %s", c.TotalPrice())
	}
}

func TestCompositeAdmissionScenario(t *testing.T) {
	t.Parallel()

	// Gift Box X consumes 2 units of Wax B (stock 5): two boxes fit, three do not.
	c := newSaleCart(t)
	box, _ := testSnapshot().CompositeByID(1)

	if err := c.AddComposite(box); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := c.AddComposite(box); err != nil {
		t.Fatalf("second add: %v", err)
	}

	err := c.AddComposite(box)
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientComponentStock) {
		t.Fatalf("expected insufficient component stock, got %v", err)
	}
	line, _ := c.Line(box.Key())
	if line.Quantity != 2 {
		t.Fatalf("rejected admission must keep quantity 2, got %d", line.Quantity)
	}
}

func TestCompositeJointReservation(t *testing.T) {
	t.Parallel()

	// Both composites consume Wax B (stock 5, 2 per unit). Individually two
	// units of either fit; jointly one of each leaves room for no more.
	c := newSaleCart(t)
	box, _ := testSnapshot().CompositeByID(1)
	deluxe, _ := testSnapshot().CompositeByID(2)

	if err := c.AddComposite(box); err != nil {
		t.Fatalf("add box: %v", err)
	}
	if err := c.AddComposite(deluxe); err != nil {
		t.Fatalf("add deluxe: %v", err)
	}

	if err := c.AddComposite(box); !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientComponentStock) {
		t.Fatalf("expected joint over-reservation rejection for box, got %v", err)
	}
	if err := c.AddComposite(deluxe); !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientComponentStock) {
		t.Fatalf("expected joint over-reservation rejection for deluxe, got %v", err)
	}
}

func TestCompositeFreedByRemovingOtherLine(t *testing.T) {
	t.Parallel()

	c := newSaleCart(t)
	box, _ := testSnapshot().CompositeByID(1)
	deluxe, _ := testSnapshot().CompositeByID(2)

	if err := c.AddComposite(box); err != nil {
		t.Fatalf("add box: %v", err)
	}
	if err := c.AddComposite(deluxe); err != nil {
		t.Fatalf("add deluxe: %v", err)
	}
	if err := c.Remove(deluxe.Key()); err != nil {
		t.Fatalf("remove deluxe: %v", err)
	}
	if err := c.AddComposite(box); err != nil {
		t.Fatalf("expected reservation freed after removal: %v", err)
	}
}

func TestTotalPriceMatchesManualSum(t *testing.T) {
	t.Parallel()

	c := newSaleCart(t)
	candle := mustProduct(t, c, 1)
	wick := mustProduct(t, c, 3)

	// [{price:20, qty:2}, {price:2, qty:3}] -> 46; then recompute from lines.
	if err := c.AddProduct(candle); err != nil {
		t.Fatal(err)
	}
	if err := c.IncreaseQuantity(candle.Key()); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := c.Add(wick); err != nil {
			t.Fatal(err)
		}
	}

	manual := decimal.Zero
	for _, line := range c.Lines() {
		manual = manual.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	if !c.TotalPrice().Equal(manual) {
		t.Fatalf("recomputed total %s drifted from manual %s", c.TotalPrice(), manual)
	}
	if !c.TotalPrice().Equal(price("46")) {
		t.Fatalf("expected 46, got %s", c.TotalPrice())
	}
}

func TestCanCheckoutPredicate(t *testing.T) {
	t.Parallel()

	sale := newSaleCart(t)
	if sale.CanCheckout(true, true) {
		t.Fatalf("empty cart must not check out")
	}

	p := mustProduct(t, sale, 1)
	if err := sale.AddProduct(p); err != nil {
		t.Fatal(err)
	}
	if sale.CanCheckout(false, true) {
		t.Fatalf("missing counterparty must block checkout")
	}
	if sale.CanCheckout(true, false) {
		t.Fatalf("sales need a payment method")
	}
	if !sale.CanCheckout(true, true) {
		t.Fatalf("expected checkout enabled")
	}

	purchase, err := New(enums.FlowPurchase, testSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	if err := purchase.AddProduct(p); err != nil {
		t.Fatal(err)
	}
	if !purchase.CanCheckout(true, false) {
		t.Fatalf("purchases must not require a payment method")
	}
}

func TestPurchaseFlowQuantityAndPriceOverrides(t *testing.T) {
	t.Parallel()

	c, err := New(enums.FlowPurchase, testSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	p := mustProduct(t, c, 2)
	if err := c.AddProduct(p); err != nil {
		t.Fatal(err)
	}

	line, _ := c.Line(p.Key())
	if !line.UnitPrice.Equal(price("1.5")) {
		t.Fatalf("purchase lines start at recorded cost, got %s", line.UnitPrice)
	}

	if err := c.SetQuantity(p.Key(), 500); err != nil {
		t.Fatalf("purchase quantity has no stock ceiling: %v", err)
	}
	if line.Quantity != 500 {
		t.Fatalf("expected quantity 500, got %d", line.Quantity)
	}

	if err := c.SetQuantity(p.Key(), -3); err != nil {
		t.Fatal(err)
	}
	if line.Quantity != 1 {
		t.Fatalf("quantity must coerce to >= 1, got %d", line.Quantity)
	}

	if err := c.SetUnitPrice(p.Key(), price("1.75")); err != nil {
		t.Fatal(err)
	}
	if !line.UnitPrice.Equal(price("1.75")) {
		t.Fatalf("expected overridden price 1.75, got %s", line.UnitPrice)
	}
}

func TestOverridesRejectedInSaleFlow(t *testing.T) {
	t.Parallel()

	c := newSaleCart(t)
	p := mustProduct(t, c, 1)
	if err := c.AddProduct(p); err != nil {
		t.Fatal(err)
	}

	if err := c.SetQuantity(p.Key(), 3); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := c.SetUnitPrice(p.Key(), price("1")); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExcludedKeysCoversAllLines(t *testing.T) {
	t.Parallel()

	c, err := New(enums.FlowPurchase, testSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	p := mustProduct(t, c, 1)
	svc := testSnapshot().Services[0]
	if err := c.AddProduct(p); err != nil {
		t.Fatal(err)
	}
	if err := c.AddService(svc); err != nil {
		t.Fatal(err)
	}

	excluded := c.ExcludedKeys()
	if len(excluded) != 2 {
		t.Fatalf("expected 2 excluded keys, got %d", len(excluded))
	}
	if _, ok := excluded[p.Key()]; !ok {
		t.Fatalf("product key missing from exclusion set")
	}
	if _, ok := excluded[svc.Key()]; !ok {
		t.Fatalf("service key missing from exclusion set")
	}
}
