package basket

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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/storefront-cart/internal/resilience"
)

// AddPath is the basket endpoint relative to the storefront base URL.
const AddPath = "/store/basket/add/"

// ErrRejected is returned when the basket service answers without success.
var ErrRejected = errors.New("basket: item rejected")

// Product describes the item sent to the basket service.
type Product struct {
	ID          string `json:"product_id"`
	Name        string `json:"product_name"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Qty         int    `json:"qty"`
	Stock       int    `json:"current_stock"`
}

// Result is the outcome reported by the basket service.
type Result struct {
	Success       bool
	CartItemCount int
	Message       string
}

type response struct {
	Error     string `json:"ERROR"`
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"MESSAGE"`
	NumItems  int    `json:"NUM_OF_ITEMS_IN_CART"`
}

// Config configures the basket client.
type Config struct {
	BaseURL   string
	CSRFToken string
	Timeout   time.Duration
	Breaker   *resilience.Breaker
}

// Client adds items to the server-side basket.
type Client struct {
	endpoint  string
	csrfToken string
	http      resilience.HTTPClient
}

// New builds a client for the storefront at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	endpoint, err := endpointFor(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		endpoint:  endpoint,
		csrfToken: cfg.CSRFToken,
		http: resilience.HTTPClient{
			Client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
			Breaker: cfg.Breaker,
			Timeout: timeout,
		},
	}, nil
}

func endpointFor(base string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("invalid basket url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("basket url must be http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("basket url must include host")
	}
	return strings.TrimRight(parsed.String(), "/") + AddPath, nil
}

// AddItem posts p to the basket. A response the service marks unsuccessful
// yields ErrRejected alongside the decoded result.
func (c *Client) AddItem(ctx context.Context, p Product) (Result, error) {
	ctx, span := otel.Tracer("basket.Client").Start(ctx, "Client.AddItem")
	defer span.End()
	span.SetAttributes(attribute.String("basket.product_id", p.ID))

	body, err := json.Marshal(p)
	if err != nil {
		return Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.csrfToken != "" {
		req.Header.Set("X-CSRFToken", c.csrfToken)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("add to basket: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}
	var decoded response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("decode basket response (status %d): %w", resp.StatusCode, err)
	}
	res := Result{Success: decoded.IsSuccess, CartItemCount: decoded.NumItems, Message: decoded.Message}
	if resp.StatusCode >= http.StatusBadRequest || !decoded.IsSuccess {
		res.Success = false
		if decoded.Error != "" {
			res.Message = decoded.Error
		}
		return res, fmt.Errorf("%w: %s", ErrRejected, res.Message)
	}
	return res, nil
}
