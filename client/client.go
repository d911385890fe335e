package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/CharlesX20/chimestradingstore/models"

	"github.com/vincent-petithory/dataurl"
	"golang.org/x/sync/singleflight"
)

// APIError is a non-2xx answer from the storefront API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to the storefront API with cookie-based sessions.
type Client struct {
	baseURL string
	http    *http.Client
	loc     *time.Location
	now     func() time.Time

	// refreshes makes concurrent 401s share a single refresh call.
	refreshes singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLocation sets the store time zone used to read pickup times.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) { c.loc = loc }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: 60 * time.Second},
		loc:     time.UTC,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.Profile, error) {
	var profile models.Profile
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", models.LoginRequest{Email: email, Password: password}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SubmitOrder preflights form, sends the receipt as a data URL and returns
// the created order reference.
func (c *Client) SubmitOrder(ctx context.Context, form *CheckoutForm) (*models.CheckoutResponse, error) {
	if err := Preflight(form, c.now(), c.loc); err != nil {
		return nil, err
	}

	payload := models.CheckoutRequest{
		BuyerName:      strings.TrimSpace(form.BuyerName),
		BuyerPhone:     strings.TrimSpace(form.BuyerPhone),
		PickupDatetime: form.PickupDatetime,
		Items:          form.Items,
		Total:          models.Amount(form.Total),
		Receipt:        dataurl.New(form.Receipt, receiptContentType(form)).String(),
	}

	var out models.CheckoutResponse
	if err := c.do(ctx, http.MethodPost, "/api/orders", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh asks the server for a new access cookie. Concurrent callers share
// one request.
func (c *Client) Refresh(ctx context.Context) error {
	_, err, _ := c.refreshes.Do("refresh", func() (interface{}, error) {
		return nil, c.send(context.WithoutCancel(ctx), http.MethodPost, "/api/auth/refresh-token", nil, nil)
	})
	return err
}

// do sends the request and, on a 401 from a non-auth endpoint, refreshes the
// session once and retries.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	err := c.send(ctx, method, path, body, out)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized || strings.HasPrefix(path, "/api/auth/") {
		return err
	}
	if refreshErr := c.Refresh(ctx); refreshErr != nil {
		return err
	}
	return c.send(ctx, method, path, body, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var msg struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		text := msg.Message
		if text == "" {
			text = msg.Error
		}
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: text}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
