package woo

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

	"github.com/noah-isme/pizzeria-storefront/internal/obs"
	"github.com/noah-isme/pizzeria-storefront/internal/resilience"
)

const (
	restPath   = "/wp-json/wc/v3"
	pluginPath = "/wp-json/escandalosos/v1"
	pageSize   = "100"
)

// ErrStatus is returned for non-2xx answers that are not retried.
var ErrStatus = errors.New("woo: unexpected status")

// Client talks to the WooCommerce REST API and the merchant configuration plugin.
type Client struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	HTTP           resilience.HTTPClient
}

func (c *Client) restURL(path string, query url.Values) string {
	return c.endpoint(restPath+path, query)
}

func (c *Client) pluginURL(path string) string {
	return c.endpoint(pluginPath+path, nil)
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := strings.TrimRight(c.BaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// getJSON performs a GET and decodes the body into dst. Only REST endpoints are
// authenticated; the plugin endpoints are public.
func (c *Client) getJSON(ctx context.Context, op, rawURL string, auth bool, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	return c.do(ctx, op, req, auth, dst)
}

func (c *Client) postJSON(ctx context.Context, op, rawURL string, body, dst any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("woo: encode %s: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(ctx, op, req, true, dst)
}

func (c *Client) do(ctx context.Context, op string, req *http.Request, auth bool, dst any) (err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		obs.ObserveUpstream(op, result, obs.DurationMillis(time.Since(start)))
	}()
	req.Header.Set("Accept", "application/json")
	if auth && c.ConsumerKey != "" {
		req.SetBasicAuth(c.ConsumerKey, c.ConsumerSecret)
	}
	resp, err := c.HTTP.DoOperation(ctx, group(op), req)
	if err != nil {
		return fmt.Errorf("woo: %s: %w", op, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s: %d %s", ErrStatus, op, resp.StatusCode, upstreamMessage(resp.Body))
	}
	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("woo: decode %s: %w", op, err)
	}
	return nil
}

func upstreamMessage(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(body, 8<<10))
	if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(raw))
}
