package checkout

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/tiendafacil/pos-core/internal/cart"
	"github.com/tiendafacil/pos-core/internal/catalog"
	"github.com/tiendafacil/pos-core/pkg/enums"
	pkgerrors "github.com/tiendafacil/pos-core/pkg/errors"
)

var validate = validator.New()

// wireTimeFormat is the timestamp layout the recording API accepts in fecha.
const wireTimeFormat = time.RFC3339

// LineItem projects one cart line onto the wire. Exactly one of the id fields
// is set, selected by the line's item type.
type LineItem struct {
	ProductID   *int64  `json:"producto_id,omitempty"`
	ServiceID   *int64  `json:"servicio_id,omitempty"`
	CompositeID *int64  `json:"producto_compuesto_id,omitempty"`
	Quantity    int     `json:"cantidad" validate:"gte=1"`
	UnitPrice   float64 `json:"precio_unitario" validate:"gte=0"`
}

// SalePayload is the body of POST /venta/.
type SalePayload struct {
	Date          string     `json:"fecha" validate:"required"`
	Total         float64    `json:"total" validate:"gt=0"`
	PaymentMethod string     `json:"metodo_pago" validate:"required"`
	ClientID      int64      `json:"cliente_id" validate:"required"`
	Details       []LineItem `json:"detalles" validate:"required,min=1,dive"`
}

// PurchasePayload is the body of POST /compra/.
type PurchasePayload struct {
	Date       string     `json:"fecha" validate:"required"`
	Total      float64    `json:"total" validate:"gt=0"`
	ProviderID int64      `json:"proveedor_id" validate:"required"`
	Details    []LineItem `json:"detalles" validate:"required,min=1,dive"`
}

// BuildSalePayload converts cart state plus the selected client and payment
// metadata into the sale recording request. It mirrors the checkout
// enablement predicate as a defensive second gate; callers should have
// disabled submission already.
func BuildSalePayload(lines []*cart.Line, client *catalog.Client, method enums.PaymentMethod, total decimal.Decimal, timestamp time.Time) (*SalePayload, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a client must be selected")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no lines")
	}
	if !total.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total must be positive")
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", method))
	}

	details, err := projectLines(lines)
	if err != nil {
		return nil, err
	}

	payload := &SalePayload{
		Date:          timestamp.Format(wireTimeFormat),
		Total:         total.InexactFloat64(),
		PaymentMethod: method.String(),
		ClientID:      client.ID,
		Details:       details,
	}
	if err := validate.Struct(payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "sale payload failed validation")
	}
	return payload, nil
}

// BuildPurchasePayload converts cart state plus the selected provider into
// the purchase recording request.
func BuildPurchasePayload(lines []*cart.Line, provider *catalog.Provider, total decimal.Decimal, timestamp time.Time) (*PurchasePayload, error) {
	if provider == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a provider must be selected")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no lines")
	}
	if !total.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total must be positive")
	}

	details, err := projectLines(lines)
	if err != nil {
		return nil, err
	}

	payload := &PurchasePayload{
		Date:       timestamp.Format(wireTimeFormat),
		Total:      total.InexactFloat64(),
		ProviderID: provider.ID,
		Details:    details,
	}
	if err := validate.Struct(payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "purchase payload failed validation")
	}
	return payload, nil
}

func projectLines(lines []*cart.Line) ([]LineItem, error) {
	details := make([]LineItem, 0, len(lines))
	for _, line := range lines {
		item := LineItem{
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.InexactFloat64(),
		}
		id := line.ItemID
		switch line.ItemType {
		case enums.ItemTypeProduct:
			item.ProductID = &id
		case enums.ItemTypeService:
			item.ServiceID = &id
		case enums.ItemTypeCompositeProduct:
			item.CompositeID = &id
		default:
			return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown item type %q", line.ItemType))
		}
		details = append(details, item)
	}
	return details, nil
}
