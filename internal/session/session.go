package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tiendafacil/pos-core/internal/cart"
	"github.com/tiendafacil/pos-core/internal/catalog"
	"github.com/tiendafacil/pos-core/internal/checkout"
	"github.com/tiendafacil/pos-core/internal/filter"
	"github.com/tiendafacil/pos-core/pkg/enums"
	pkgerrors "github.com/tiendafacil/pos-core/pkg/errors"
	"github.com/tiendafacil/pos-core/pkg/logger"
)

// Recorder submits the built payloads to the remote recording API.
type Recorder interface {
	RecordSale(ctx context.Context, payload *checkout.SalePayload) error
	RecordPurchase(ctx context.Context, payload *checkout.PurchasePayload) error
}

// Session is one checkout modal lifecycle: a fresh cart over a catalog
// snapshot, counterparty and payment selection, derived visibility, and a
// terminal submission. All transitions are synchronous; the only asynchronous
// boundaries are Open/Refresh (catalog fetch) and Submit.
type Session struct {
	id         uuid.UUID
	flow       enums.Flow
	normalizer *catalog.Normalizer
	recorder   Recorder
	log        *logger.Logger

	snapshot *catalog.Snapshot
	cart     *cart.Cart
	spec     filter.Spec

	client   *catalog.Client
	provider *catalog.Provider
	payment  enums.PaymentMethod
}

// New builds an unopened session.
func New(flow enums.Flow, normalizer *catalog.Normalizer, recorder Recorder, log *logger.Logger) (*Session, error) {
	if !flow.IsValid() {
		return nil, fmt.Errorf("invalid flow %q", flow)
	}
	if normalizer == nil {
		return nil, fmt.Errorf("catalog normalizer required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("recorder required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Session{
		id:         uuid.New(),
		flow:       flow,
		normalizer: normalizer,
		recorder:   recorder,
		log:        log,
		spec:       filter.DefaultSpec(),
	}, nil
}

// ID returns the session correlation id.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Open fetches the catalog snapshot and starts an empty cart. Opening again
// discards any in-progress cart.
func (s *Session) Open(ctx context.Context) error {
	ctx = s.logCtx(ctx)
	s.snapshot = s.normalizer.Load(ctx)

	fresh, err := cart.New(s.flow, s.snapshot)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open cart")
	}
	s.cart = fresh
	s.client = nil
	s.provider = nil
	s.payment = ""
	s.spec = filter.DefaultSpec()

	s.log.Info(s.log.WithField(ctx, "products", len(s.snapshot.Products)), "checkout session opened")
	return nil
}

// Cart exposes the session cart for transitions. Nil until Open.
func (s *Session) Cart() *cart.Cart {
	return s.cart
}

// Snapshot exposes the catalog snapshot. Nil until Open.
func (s *Session) Snapshot() *catalog.Snapshot {
	return s.snapshot
}

// SetFilter replaces the active filter specification.
func (s *Session) SetFilter(spec filter.Spec) {
	s.spec = spec
}

// SelectClient picks the sale counterparty from the snapshot.
func (s *Session) SelectClient(id int64) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if s.flow != enums.FlowSale {
		return pkgerrors.New(pkgerrors.CodeValidation, "clients are sale counterparties")
	}
	client, ok := s.snapshot.ClientByID(id)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("client %d not found", id))
	}
	s.client = &client
	return nil
}

// SelectProvider picks the purchase counterparty from the snapshot.
func (s *Session) SelectProvider(id int64) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if s.flow != enums.FlowPurchase {
		return pkgerrors.New(pkgerrors.CodeValidation, "providers are purchase counterparties")
	}
	provider, ok := s.snapshot.ProviderByID(id)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("provider %d not found", id))
	}
	s.provider = &provider
	return nil
}

// SelectPaymentMethod records how the sale will be settled.
func (s *Session) SelectPaymentMethod(method enums.PaymentMethod) error {
	if s.flow != enums.FlowSale {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method applies to sales only")
	}
	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", method))
	}
	s.payment = method
	return nil
}

// VisibleEntities rederives the visible catalog from scratch: the sales flow
// presents products with cart-reserved stock subtracted and fully reserved
// ones hidden; the purchase flow excludes carted entities outright. The
// filter spec then narrows the result.
func (s *Session) VisibleEntities() []catalog.Entity {
	if s.cart == nil {
		return nil
	}

	if s.flow == enums.FlowPurchase {
		return filter.Apply(s.spec, s.snapshot.Entities(), s.cart.ExcludedKeys())
	}

	visible := make([]catalog.Entity, 0, len(s.snapshot.Products)+len(s.snapshot.Services)+len(s.snapshot.Composites))
	for _, p := range s.snapshot.Products {
		remaining := s.cart.VisibleStock(p.ID)
		if remaining <= 0 {
			continue
		}
		adjusted := p
		adjusted.Stock = remaining
		visible = append(visible, adjusted)
	}
	for _, sv := range s.snapshot.Services {
		visible = append(visible, sv)
	}
	for _, cp := range s.snapshot.Composites {
		visible = append(visible, cp)
	}
	return filter.Apply(s.spec, visible, nil)
}

// CanCheckout re-evaluates the enablement predicate.
func (s *Session) CanCheckout() bool {
	if s.cart == nil {
		return false
	}
	counterparty := s.client != nil || s.provider != nil
	return s.cart.CanCheckout(counterparty, s.payment != "")
}

// Submit builds the payload for the session flow and dispatches it. On
// success the session ends: the cart is cleared and the catalog refetched.
// On failure the cart is preserved so the operator can retry manually; there
// is no automatic retry.
func (s *Session) Submit(ctx context.Context, now time.Time) error {
	ctx = s.logCtx(ctx)
	if err := s.ensureOpen(); err != nil {
		return err
	}

	var err error
	switch s.flow {
	case enums.FlowSale:
		var payload *checkout.SalePayload
		payload, err = checkout.BuildSalePayload(s.cart.Lines(), s.client, s.payment, s.cart.TotalPrice(), now)
		if err == nil {
			err = s.recorder.RecordSale(ctx, payload)
		}
	case enums.FlowPurchase:
		var payload *checkout.PurchasePayload
		payload, err = checkout.BuildPurchasePayload(s.cart.Lines(), s.provider, s.cart.TotalPrice(), now)
		if err == nil {
			err = s.recorder.RecordPurchase(ctx, payload)
		}
	default:
		err = pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown flow %q", s.flow))
	}

	if err != nil {
		s.log.Error(ctx, "checkout submission failed", err)
		return err
	}

	s.log.Info(ctx, "checkout recorded")
	return s.Open(ctx)
}

// Cancel discards the cart and selections without submitting.
func (s *Session) Cancel() {
	s.cart = nil
	s.client = nil
	s.provider = nil
	s.payment = ""
	s.spec = filter.DefaultSpec()
}

func (s *Session) ensureOpen() error {
	if s.cart == nil || s.snapshot == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "session is not open")
	}
	return nil
}

func (s *Session) logCtx(ctx context.Context) context.Context {
	ctx = s.log.WithSessionID(ctx, s.id.String())
	return s.log.WithFlow(ctx, s.flow.String())
}
