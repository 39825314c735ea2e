package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meltforce/mapty/internal/app"
	"github.com/meltforce/mapty/internal/models"
)

// HTTPClient implements DataSource by calling the mapty REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the controller lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// statusError is a non-2xx response.
type statusError struct {
	path   string
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("httpclient: %s returned %d: %s", e.path, e.status, e.body)
}

// StatusCode returns the HTTP status of the response.
func (e *statusError) StatusCode() int { return e.status }

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpclient: encode %s: %w", path, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{path: path, status: resp.StatusCode, body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) ListWorkouts(ctx context.Context, kind models.Kind) ([]models.Workout, error) {
	params := url.Values{}
	if kind != "" {
		params.Set("type", string(kind))
	}
	var out []models.Workout
	if err := c.do(ctx, http.MethodGet, "/api/v1/workouts", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetWorkout(ctx context.Context, id string) (*models.Workout, error) {
	var out models.Workout
	err := c.do(ctx, http.MethodGet, "/api/v1/workouts/"+url.PathEscape(id), nil, nil, &out)
	if se, ok := err.(*statusError); ok && se.status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) MapState(ctx context.Context) (*app.Snapshot, error) {
	var out app.Snapshot
	if err := c.do(ctx, http.MethodGet, "/api/v1/state", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// logBody mirrors the server's single-request log payload.
type logBody struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	app.FormValues
}

func (c *HTTPClient) LogWorkout(ctx context.Context, at models.Coordinates, v app.FormValues) (*models.Workout, error) {
	body := logBody{Lat: at.Lat, Lng: at.Lng, FormValues: v}
	var out models.Workout
	if err := c.do(ctx, http.MethodPost, "/api/v1/workouts", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
