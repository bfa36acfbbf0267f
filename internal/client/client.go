// Package client talks to a running credit-risk server over its JSON API.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"credit-risk/internal/common"
	"credit-risk/internal/dashboard"
	"credit-risk/internal/form"
	"credit-risk/internal/risk"

	"github.com/go-resty/resty/v2"
)

// ErrServer means the server answered with an unexpected status.
var ErrServer = errors.New("server error")

type Client struct {
	base string
	rest *resty.Client
}

func New(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = common.DefaultClientTimeout
	}
	r := resty.New()
	r.SetTimeout(timeout)
	r.SetHeader("Accept", "application/json")
	return &Client{base: strings.TrimRight(base, "/"), rest: r}
}

type assessReq struct {
	Features map[string]float64 `json:"features"`
}

// Assess sends one submission. Errors wrap risk.ErrModelUnavailable for a
// server without a model, form.ErrInvalidInput for rejected values and
// ErrServer otherwise.
func (c *Client) Assess(ctx context.Context, features map[string]float64) (*risk.Assessment, error) {
	result := &risk.Assessment{}
	apiErr := &dashboard.ErrorResponse{}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(assessReq{Features: features}).
		SetResult(result).
		SetError(apiErr).
		Post(c.base + "/api/assess")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return result, nil
	case http.StatusServiceUnavailable:
		return nil, fmt.Errorf("%w: %s", risk.ErrModelUnavailable, apiErr.Error)
	case http.StatusUnprocessableEntity:
		if apiErr.Field != nil {
			return nil, apiErr.Field
		}
		return nil, fmt.Errorf("%w: %s", form.ErrInvalidInput, apiErr.Error)
	default:
		return nil, fmt.Errorf("%w: status %d: %s", ErrServer, resp.StatusCode(), errorText(resp, apiErr))
	}
}

// Schema fetches the server's field specs.
func (c *Client) Schema(ctx context.Context) (*dashboard.SchemaResponse, error) {
	result := &dashboard.SchemaResponse{}
	if err := c.get(ctx, "/api/schema", result); err != nil {
		return nil, err
	}
	return result, nil
}

// Health fetches the server's health report.
func (c *Client) Health(ctx context.Context) (*dashboard.HealthResponse, error) {
	result := &dashboard.HealthResponse{}
	if err := c.get(ctx, "/health", result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	apiErr := &dashboard.ErrorResponse{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get(c.base + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrServer, resp.StatusCode(), errorText(resp, apiErr))
	}
	return nil
}

func errorText(resp *resty.Response, apiErr *dashboard.ErrorResponse) string {
	if apiErr.Error != "" {
		return apiErr.Error
	}
	return resp.String()
}
