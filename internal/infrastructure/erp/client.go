package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxResponseSize caps what we read from the ERP (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Config holds the connection settings for the ERP OData service
type Config struct {
	BaseURL     string        // e.g. "http://localhost:4004/odata/v4/simple-erp"
	CSVFeedURL  string        // e.g. "http://localhost:4004/rest/api/getProducts"
	Username    string        // HTTP basic auth
	Password    string
	Timeout     time.Duration // per-call timeout, default 10s
	BulkTimeout time.Duration // shorter timeout for bulk list reads, default 5s
	MaxAttempts int           // total attempts including the first, default 3
	BackoffBase time.Duration // first retry delay, doubles per attempt, default 500ms
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("erp: base URL is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("erp: invalid base URL: %w", err)
	}
	return nil
}

// applyDefaults fills zero values with the documented defaults
func (c *Config) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.BulkTimeout == 0 {
		c.BulkTimeout = 5 * time.Second
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 3
	}
	if c.BackoffBase == 0 {
		c.BackoffBase = 500 * time.Millisecond
	}
}

// Client issues authenticated calls against the ERP OData endpoints with
// per-call timeouts and retry with exponential backoff. Only failures that
// are safe to repeat are retried: connection errors, timeouts, and HTTP
// 502/503/504. Every other status is terminal for the call.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new ERP client
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		// Timeouts are applied per call via context so bulk reads can use
		// the shorter budget on the same pooled transport.
		httpClient: &http.Client{},
		logger:     logger,
	}, nil
}

// retryable reports whether a response status may be retried
func retryable(status int) bool {
	return status == http.StatusBadGateway ||
		status == http.StatusServiceUnavailable ||
		status == http.StatusGatewayTimeout
}

// classify turns a terminal HTTP status into a typed error
func classify(status int, body []byte) *Error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Kind: KindAuth, Status: status, Message: "authentication with the ERP failed"}
	case status == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Status: status}
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e := &Error{Kind: KindValidation, Status: status}
		var env errorEnvelope
		if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
			e.Message = env.Error.Message
			for _, d := range env.Error.Details {
				if d.Message != "" {
					e.Details = append(e.Details, d.Message)
				}
			}
		} else {
			e.Message = string(body)
		}
		return e
	default:
		return &Error{Kind: KindServer, Status: status, Message: fmt.Sprintf("unexpected ERP status %d", status)}
	}
}

// classifyTransport turns a request-level failure into a typed error
func classifyTransport(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, cause: err}
	}
	return &Error{Kind: KindConnection, cause: err}
}

// do performs one logical call with retry/backoff. The request body is
// re-marshalled per attempt so retries never reuse a drained reader.
func (c *Client) do(ctx context.Context, method, rawURL string, payload any, timeout time.Duration) ([]byte, int, error) {
	var bodyBytes []byte
	if payload != nil {
		var err error
		bodyBytes, err = json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("erp: failed to encode request body: %w", err)
		}
	}

	var lastErr *Error
	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		if attempt > 1 {
			// 0.5s, 1s, 2s
			delay := c.config.BackoffBase << (attempt - 2)
			select {
			case <-ctx.Done():
				return nil, 0, classifyTransport(ctx.Err())
			case <-time.After(delay):
			}
			c.logger.Debug("Retrying ERP call",
				zap.String("method", method),
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
			)
		}

		body, status, err := c.attempt(ctx, method, rawURL, bodyBytes, timeout)
		if err != nil {
			lastErr = err
			if err.Kind == KindConnection || err.Kind == KindTimeout {
				continue
			}
			return nil, status, err
		}
		if retryable(status) {
			lastErr = &Error{Kind: KindServer, Status: status, Message: fmt.Sprintf("ERP unavailable (HTTP %d)", status)}
			continue
		}
		if status >= 400 {
			return body, status, classify(status, body)
		}
		return body, status, nil
	}

	c.logger.Warn("ERP call failed after retries",
		zap.String("method", method),
		zap.String("url", rawURL),
		zap.Int("attempts", c.config.MaxAttempts),
		zap.Error(lastErr),
	)
	return nil, lastErr.Status, lastErr
}

// attempt performs a single HTTP exchange
func (c *Client) attempt(ctx context.Context, method, rawURL string, body []byte, timeout time.Duration) ([]byte, int, *Error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(callCtx, method, rawURL, reader)
	if err != nil {
		return nil, 0, &Error{Kind: KindConnection, cause: err}
	}
	if c.config.Username != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, classifyTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, classifyTransport(err)
	}
	return respBody, resp.StatusCode, nil
}

// endpoint joins a path onto the configured base URL
func (c *Client) endpoint(path string) string {
	return c.config.BaseURL + "/" + path
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// ListProducts fetches the complete catalog snapshot in one call. Uses the
// shorter bulk timeout since the response is a plain list read.
func (c *Client) ListProducts(ctx context.Context) ([]ProductRecord, error) {
	body, _, err := c.do(ctx, http.MethodGet, c.endpoint("Products"), nil, c.config.BulkTimeout)
	if err != nil {
		return nil, err
	}
	var env listEnvelope[ProductRecord]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &Error{Kind: KindServer, Message: "malformed product list response", cause: err}
	}
	return env.Value, nil
}

// GetProduct fetches a single product including its live stock level
func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*ProductRecord, error) {
	body, _, err := c.do(ctx, http.MethodGet, c.endpoint(odataKey("Products", id)), nil, c.config.Timeout)
	if err != nil {
		return nil, err
	}
	var record ProductRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, &Error{Kind: KindServer, Message: "malformed product response", cause: err}
	}
	return &record, nil
}

// ---------------------------------------------------------------------------
// Customers
// ---------------------------------------------------------------------------

// FindCustomerByEmail looks up a customer by its unique email. Returns
// (nil, nil) when the ERP has no match; that is a normal outcome for the
// resolution protocol, not an error.
func (c *Client) FindCustomerByEmail(ctx context.Context, email string) (*CustomerRecord, error) {
	u := c.endpoint("Customers") + "?$filter=" + url.QueryEscape("email eq "+odataQuote(email))
	body, _, err := c.do(ctx, http.MethodGet, u, nil, c.config.Timeout)
	if err != nil {
		return nil, err
	}
	var env listEnvelope[CustomerRecord]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &Error{Kind: KindServer, Message: "malformed customer list response", cause: err}
	}
	if len(env.Value) == 0 {
		return nil, nil
	}
	return &env.Value[0], nil
}

// GetCustomer verifies a customer GUID by direct lookup
func (c *Client) GetCustomer(ctx context.Context, id uuid.UUID) (*CustomerRecord, error) {
	body, _, err := c.do(ctx, http.MethodGet, c.endpoint(odataKey("Customers", id)), nil, c.config.Timeout)
	if err != nil {
		return nil, err
	}
	var record CustomerRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, &Error{Kind: KindServer, Message: "malformed customer response", cause: err}
	}
	return &record, nil
}

// CreateCustomer creates a customer record in the ERP
func (c *Client) CreateCustomer(ctx context.Context, payload CustomerPayload) (*CustomerRecord, error) {
	body, _, err := c.do(ctx, http.MethodPost, c.endpoint("Customers"), payload, c.config.Timeout)
	if err != nil {
		return nil, err
	}
	var record CustomerRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, &Error{Kind: KindServer, Message: "malformed customer create response", cause: err}
	}
	return &record, nil
}

// UpdateCustomer applies a partial update to an existing customer. A 404
// surfaces as KindNotFound so the resolver can clear a zombie link.
func (c *Client) UpdateCustomer(ctx context.Context, id uuid.UUID, payload CustomerPayload) error {
	_, _, err := c.do(ctx, http.MethodPatch, c.endpoint(odataKey("Customers", id)), payload, c.config.Timeout)
	return err
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// CreateOrder submits an order with its items as a single deep insert.
// The ERP creates order and items transactionally on its side.
func (c *Client) CreateOrder(ctx context.Context, payload OrderPayload) (*OrderRecord, error) {
	body, status, err := c.do(ctx, http.MethodPost, c.endpoint("Orders"), payload, c.config.Timeout)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, &Error{Kind: KindServer, Status: status, Message: fmt.Sprintf("order create returned HTTP %d", status)}
	}
	var record OrderRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, &Error{Kind: KindServer, Message: "malformed order create response", cause: err}
	}
	return &record, nil
}

// ListOrders fetches the orders of one customer, items and products expanded
func (c *Client) ListOrders(ctx context.Context, customerID uuid.UUID) ([]OrderRecord, error) {
	u := c.endpoint("Orders") + "?$filter=" + url.QueryEscape("customer_ID eq "+customerID.String()) +
		"&$expand=" + url.QueryEscape("items($expand=product)") +
		"&$orderby=" + url.QueryEscape("createdAt desc")
	body, _, err := c.do(ctx, http.MethodGet, u, nil, c.config.BulkTimeout)
	if err != nil {
		return nil, err
	}
	var env listEnvelope[OrderRecord]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &Error{Kind: KindServer, Message: "malformed order list response", cause: err}
	}
	return env.Value, nil
}

// GetOrder fetches a single order with items and products expanded
func (c *Client) GetOrder(ctx context.Context, id uuid.UUID) (*OrderRecord, error) {
	u := c.endpoint(odataKey("Orders", id)) + "?$expand=" + url.QueryEscape("items($expand=product)")
	body, _, err := c.do(ctx, http.MethodGet, u, nil, c.config.Timeout)
	if err != nil {
		return nil, err
	}
	var record OrderRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, &Error{Kind: KindServer, Message: "malformed order response", cause: err}
	}
	return &record, nil
}

// ---------------------------------------------------------------------------
// CSV feed
// ---------------------------------------------------------------------------

// FetchProductCSV downloads the alternate CSV product feed as raw bytes.
// Parsing and header validation are the importer's concern.
func (c *Client) FetchProductCSV(ctx context.Context) ([]byte, error) {
	if c.config.CSVFeedURL == "" {
		return nil, errors.New("erp: CSV feed URL is not configured")
	}
	body, _, err := c.do(ctx, http.MethodGet, c.config.CSVFeedURL, nil, c.config.BulkTimeout)
	if err != nil {
		return nil, err
	}
	return body, nil
}
