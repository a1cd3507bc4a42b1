package posapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tiendafacil/pos-core/internal/catalog"
	"github.com/tiendafacil/pos-core/internal/checkout"
	pkgerrors "github.com/tiendafacil/pos-core/pkg/errors"
)

const (
	statusSuccess = "success"

	tenantHeader = "X-Tenant-ID"

	errorBodyReadLimit int64 = 1024
)

var (
	errBaseURLRequired = errors.New("pos api base url is required")
	errTokenRequired   = errors.New("pos api bearer token is required")
)

// Credentials carries the tenant discriminator and bearer token every request
// must present. The token is issued by the remote API at sign-in.
type Credentials struct {
	Token    string
	TenantID string
}

// Client wraps the tenant POS REST API: catalog reads plus sale and purchase
// recording. It holds no state beyond its configuration.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      Credentials
	tokenInfo  *TokenInfo
	now        func() time.Time
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithClock overrides the time source used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds the POS API client. The bearer token is introspected once;
// if it is not a JWT the client proceeds without local expiry checks.
func NewClient(baseURL string, creds Credentials, opts ...Option) (*Client, error) {
	trimmedURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmedURL == "" {
		return nil, errBaseURLRequired
	}
	if strings.TrimSpace(creds.Token) == "" {
		return nil, errTokenRequired
	}

	client := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    trimmedURL,
		creds:      creds,
		now:        time.Now,
	}
	if info, err := InspectToken(creds.Token); err == nil {
		client.tokenInfo = info
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// ListProducts fetches GET /producto/.
func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var envelope struct {
		Status   string       `json:"status"`
		Message  string       `json:"message"`
		Products []productDTO `json:"productos"`
	}
	if err := c.get(ctx, "/producto/", &envelope); err != nil {
		return nil, err
	}
	if envelope.Status != statusSuccess {
		return nil, pkgerrors.New(pkgerrors.CodeCatalogLoad, serverMessage(envelope.Message, "product list rejected"))
	}
	out := make([]catalog.Product, 0, len(envelope.Products))
	for _, dto := range envelope.Products {
		out = append(out, dto.toDomain())
	}
	return out, nil
}

// ListServices fetches GET /servicio/.
func (c *Client) ListServices(ctx context.Context) ([]catalog.Service, error) {
	var envelope struct {
		Status   string       `json:"status"`
		Message  string       `json:"message"`
		Services []serviceDTO `json:"servicios"`
	}
	if err := c.get(ctx, "/servicio/", &envelope); err != nil {
		return nil, err
	}
	if envelope.Status != statusSuccess {
		return nil, pkgerrors.New(pkgerrors.CodeCatalogLoad, serverMessage(envelope.Message, "service list rejected"))
	}
	out := make([]catalog.Service, 0, len(envelope.Services))
	for _, dto := range envelope.Services {
		out = append(out, dto.toDomain())
	}
	return out, nil
}

// ListComposites fetches GET /productos-compuestos.
func (c *Client) ListComposites(ctx context.Context) ([]catalog.CompositeProduct, error) {
	var envelope struct {
		Status     string         `json:"status"`
		Message    string         `json:"message"`
		Composites []compositeDTO `json:"productos_compuestos"`
	}
	if err := c.get(ctx, "/productos-compuestos", &envelope); err != nil {
		return nil, err
	}
	if envelope.Status != statusSuccess {
		return nil, pkgerrors.New(pkgerrors.CodeCatalogLoad, serverMessage(envelope.Message, "composite product list rejected"))
	}
	out := make([]catalog.CompositeProduct, 0, len(envelope.Composites))
	for _, dto := range envelope.Composites {
		out = append(out, dto.toDomain())
	}
	return out, nil
}

// ListClients fetches GET /cliente/.
func (c *Client) ListClients(ctx context.Context) ([]catalog.Client, error) {
	var envelope struct {
		Status  string      `json:"status"`
		Message string      `json:"message"`
		Clients []clientDTO `json:"clientes"`
	}
	if err := c.get(ctx, "/cliente/", &envelope); err != nil {
		return nil, err
	}
	if envelope.Status != statusSuccess {
		return nil, pkgerrors.New(pkgerrors.CodeCatalogLoad, serverMessage(envelope.Message, "client list rejected"))
	}
	out := make([]catalog.Client, 0, len(envelope.Clients))
	for _, dto := range envelope.Clients {
		out = append(out, dto.toDomain())
	}
	return out, nil
}

// ListProviders fetches GET /proveedor/.
func (c *Client) ListProviders(ctx context.Context) ([]catalog.Provider, error) {
	var envelope struct {
		Status    string        `json:"status"`
		Message   string        `json:"message"`
		Providers []providerDTO `json:"proveedores"`
	}
	if err := c.get(ctx, "/proveedor/", &envelope); err != nil {
		return nil, err
	}
	if envelope.Status != statusSuccess {
		return nil, pkgerrors.New(pkgerrors.CodeCatalogLoad, serverMessage(envelope.Message, "provider list rejected"))
	}
	out := make([]catalog.Provider, 0, len(envelope.Providers))
	for _, dto := range envelope.Providers {
		out = append(out, dto.toDomain())
	}
	return out, nil
}

// RecordSale posts the sale to POST /venta/. The server message, when
// present, is preferred in the returned error so the operator sees it.
func (c *Client) RecordSale(ctx context.Context, payload *checkout.SalePayload) error {
	if payload == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale payload required")
	}
	return c.submit(ctx, "/venta/", payload)
}

// RecordPurchase posts the purchase to POST /compra/.
func (c *Client) RecordPurchase(ctx context.Context, payload *checkout.PurchasePayload) error {
	if payload == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "purchase payload required")
	}
	return c.submit(ctx, "/compra/", payload)
}

func (c *Client) get(ctx context.Context, path string, target any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeCatalogLoad, err, fmt.Sprintf("execute GET %s", path))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "pos api rejected the bearer token")
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeCatalogLoad,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			fmt.Sprintf("GET %s failed", path))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeCatalogLoad, err, fmt.Sprintf("decode GET %s response", path))
	}
	return nil
}

func (c *Client) submit(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeSubmission, err, fmt.Sprintf("marshal POST %s body", path))
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeSubmission, err, fmt.Sprintf("execute POST %s", path))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "pos api rejected the bearer token")
	}

	var envelope struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	_ = json.Unmarshal(raw, &envelope)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return pkgerrors.New(pkgerrors.CodeSubmission,
			serverMessage(envelope.Message, fmt.Sprintf("POST %s failed with status %d", path, resp.StatusCode)))
	}
	if envelope.Status != statusSuccess {
		return pkgerrors.New(pkgerrors.CodeSubmission, serverMessage(envelope.Message, fmt.Sprintf("POST %s rejected", path)))
	}
	return nil
}

// newRequest builds the request with the tenant discriminator and bearer
// token attached. Tokens known to be expired refuse dispatch locally.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if c.tokenInfo.Expired(c.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "bearer token expired")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("build %s %s request", method, path))
	}

	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.creds.Token))
	req.Header.Set(tenantHeader, c.tenantID())
	return req, nil
}

// tenantID prefers the explicitly configured tenant, falling back to the
// token's tenant claim.
func (c *Client) tenantID() string {
	if trimmed := strings.TrimSpace(c.creds.TenantID); trimmed != "" {
		return trimmed
	}
	if c.tokenInfo != nil {
		return c.tokenInfo.TenantID
	}
	return ""
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
}

func serverMessage(message, fallback string) string {
	if trimmed := strings.TrimSpace(message); trimmed != "" {
		return trimmed
	}
	return fallback
}
