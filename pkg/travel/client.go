package travel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/travelia-app/travelia-backend/pkg/config"
	pkgerrors "github.com/travelia-app/travelia-backend/pkg/errors"
	"github.com/travelia-app/travelia-backend/pkg/logger"
)

const (
	apiKeyHeader              = "apiKey"
	errorBodyReadLimit  int64 = 1024
	defaultClientTimeout      = 15 * time.Second
)

var (
	errBaseURLRequired = errors.New("travel api base url is required")
	errAPIKeyRequired  = errors.New("travel api key is required")
)

// Client wraps the upstream travel API. Every request carries the static
// deployment API key; authenticated calls additionally carry the caller's
// bearer token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logger.Logger
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

// NewClient builds the travel API client from configuration.
func NewClient(cfg config.TravelConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logg,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// GetCart returns the caller's current cart lines.
func (c *Client) GetCart(ctx context.Context, token string) ([]CartLine, error) {
	var resp struct {
		Data []CartLine `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/carts", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// UpdateCartQuantity sets the quantity of one cart line. Callers are expected
// to have clamped quantity to >= 1 already.
func (c *Client) UpdateCartQuantity(ctx context.Context, token, cartID string, quantity int) error {
	payload := struct {
		Quantity int `json:"quantity"`
	}{Quantity: quantity}
	return c.do(ctx, http.MethodPost, "/update-cart/"+url.PathEscape(cartID), token, payload, nil)
}

// DeleteCartItem removes one cart line.
func (c *Client) DeleteCartItem(ctx context.Context, token, cartID string) error {
	return c.do(ctx, http.MethodDelete, "/delete-cart/"+url.PathEscape(cartID), token, nil, nil)
}

// ListPaymentMethods returns the available payment methods.
func (c *Client) ListPaymentMethods(ctx context.Context, token string) ([]PaymentMethod, error) {
	var resp struct {
		Data []PaymentMethod `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/payment-methods", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// CreateTransaction turns the given cart lines into a transaction. The server
// empties the consumed cart lines; callers must re-fetch rather than assume.
func (c *Client) CreateTransaction(ctx context.Context, token string, input CreateTransactionInput) error {
	return c.do(ctx, http.MethodPost, "/create-transaction", token, input, nil)
}

// ListMyTransactions returns the caller's own transactions.
func (c *Client) ListMyTransactions(ctx context.Context, token string) ([]Transaction, error) {
	var resp struct {
		Data []Transaction `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/my-transactions", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetTransaction fetches a single transaction by id.
func (c *Client) GetTransaction(ctx context.Context, token, id string) (*Transaction, error) {
	var resp struct {
		Data Transaction `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/transaction/"+url.PathEscape(id), token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// AttachProofPayment records the hosted proof-of-payment URL on a transaction.
func (c *Client) AttachProofPayment(ctx context.Context, token, id, proofURL string) error {
	payload := struct {
		ProofPaymentURL string `json:"proofPaymentUrl"`
	}{ProofPaymentURL: proofURL}
	return c.do(ctx, http.MethodPost, "/update-transaction-proof-payment/"+url.PathEscape(id), token, payload, nil)
}

// UpdateTransactionStatus posts a new status value. Admin only upstream.
func (c *Client) UpdateTransactionStatus(ctx context.Context, token, id, status string) error {
	payload := struct {
		Status string `json:"status"`
	}{Status: status}
	return c.do(ctx, http.MethodPost, "/update-transaction-status/"+url.PathEscape(id), token, payload, nil)
}

// ListAllTransactions returns every transaction. Admin only upstream.
func (c *Client) ListAllTransactions(ctx context.Context, token string) ([]Transaction, error) {
	var resp struct {
		Data []Transaction `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/all-transactions", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ListBanners returns the marketing banners. Public.
func (c *Client) ListBanners(ctx context.Context) ([]Banner, error) {
	var resp struct {
		Data []Banner `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/banners", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ListPromos returns the active promos. Public.
func (c *Client) ListPromos(ctx context.Context) ([]Promo, error) {
	var resp struct {
		Data []Promo `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/promos", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ListCategories returns the activity categories. Public.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var resp struct {
		Data []Category `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/categories", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ListActivities returns the bookable activities. Public.
func (c *Client) ListActivities(ctx context.Context) ([]Activity, error) {
	var resp struct {
		Data []Activity `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/activities", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetLoggedUser resolves the user behind the bearer token.
func (c *Client) GetLoggedUser(ctx context.Context, token string) (*User, error) {
	var resp struct {
		Data User `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/user", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "travel client not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal travel request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build travel request")
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute travel request %s", path))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.mapError(ctx, resp, path)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, fmt.Sprintf("decode travel response %s", path))
	}
	return nil
}

func (c *Client) mapError(ctx context.Context, resp *http.Response, path string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	upErr := &pkgerrors.UpstreamError{
		StatusCode: resp.StatusCode,
		Endpoint:   path,
		Body:       strings.TrimSpace(string(raw)),
	}

	if c.logger != nil {
		ctx = c.logger.WithFields(ctx, map[string]any{
			"endpoint": path,
			"status":   resp.StatusCode,
		})
		c.logger.Error(ctx, "travel request failed", upErr)
	}

	message := upstreamMessage(raw)
	if message == "" {
		message = fmt.Sprintf("travel api %s failed", path)
	}
	return pkgerrors.Wrap(codeForStatus(resp.StatusCode), upErr, message)
}

// upstreamMessage extracts the human message the travel API puts in its
// error envelope, when one is present.
func upstreamMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusUnprocessableEntity:
		return pkgerrors.CodeStateConflict
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeUpstream
	}
}
