package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/OCAP2/panorama/internal/metrics"
	"github.com/OCAP2/panorama/pkg/core"
)

// DefaultBaseURL is the hotspot service the editor talks to.
const DefaultBaseURL = "https://smarttravel-vr.mobifone.vn/vr-api/api/hotspot"

// listLimit is the page size used when listing a scene's hotspots.
const listLimit = 1000

var (
	// ErrMissingToken is returned when a request needs a bearer token and none is set.
	ErrMissingToken = errors.New("authentication token not found")
	// ErrInvalidPolygon is returned for polygons the service would reject.
	ErrInvalidPolygon = errors.New("invalid polygon")
)

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API Error %d: %s", e.Status, e.Body)
}

// Client handles communication with the remote hotspot service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Instruments
	newID      func() string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics counts requests on m.
func WithMetrics(m *metrics.Instruments) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithIDGenerator replaces the placeholder hotspot id source.
func WithIDGenerator(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// New creates a new API client.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.New(slog.DiscardHandler),
		newID:      FakeHotspotID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type listResponse struct {
	Data struct {
		Docs []core.RemotePolygon `json:"docs"`
	} `json:"data"`
}

type createResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// createPayload is the body of POST /create. The anchor ath/atv of a polygon
// hotspot is unused and always sent as 0.
type createPayload struct {
	ID            string             `json:"id"`
	Ath           float64            `json:"ath"`
	Atv           float64            `json:"atv"`
	Type          core.HotspotType   `json:"type"`
	Title         string             `json:"title"`
	SceneID       string             `json:"scene_id"`
	Polygon       bool               `json:"polygon"`
	PolygonConfig core.PolygonConfig `json:"polygon_config"`
}

// List returns the polygon hotspots of a scene. Point hotspots and polygons
// without an outline are skipped.
func (c *Client) List(ctx context.Context, sceneID string) ([]core.RemotePolygon, error) {
	if sceneID == "" {
		return nil, fmt.Errorf("scene_id is required: %w", ErrInvalidPolygon)
	}
	q := url.Values{}
	q.Set("limit", fmt.Sprint(listLimit))
	q.Set("page", "1")
	q.Set("scene_id", sceneID)

	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/gets?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	out := make([]core.RemotePolygon, 0, len(resp.Data.Docs))
	for _, doc := range resp.Data.Docs {
		if !doc.Polygon || len(doc.Config.Points) == 0 {
			continue
		}
		out = append(out, doc)
	}
	c.logger.DebugContext(ctx, "fetched scene polygons", "scene", sceneID, "polygons", len(out), "docs", len(resp.Data.Docs))
	return out, nil
}

// Create posts a new polygon hotspot and returns the id the service assigned.
// Points are sent with 6 decimal places; an empty title becomes "polygon" and
// an empty type "image".
func (c *Client) Create(ctx context.Context, p core.RemotePolygon) (string, error) {
	if err := validatePolygon(p); err != nil {
		return "", err
	}

	payload := createPayload{
		ID:            p.ID,
		Type:          p.Type,
		Title:         p.Title,
		SceneID:       p.SceneID,
		Polygon:       true,
		PolygonConfig: core.PolygonConfig{Points: roundPoints(p.Config.Points)},
	}
	if payload.ID == "" {
		payload.ID = c.newID()
	}
	if payload.Type == "" {
		payload.Type = core.HotspotImage
	}
	if payload.Title == "" {
		payload.Title = "polygon"
	}

	var resp createResponse
	if err := c.do(ctx, http.MethodPost, "/create", payload, &resp); err != nil {
		return "", err
	}
	id := resp.Data.ID
	if id == "" {
		id = payload.ID
	}
	c.logger.InfoContext(ctx, "polygon hotspot created", "id", id, "scene", p.SceneID, "points", len(payload.PolygonConfig.Points))
	return id, nil
}

// Delete removes a hotspot.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("hotspot id is required: %w", ErrInvalidPolygon)
	}
	return c.do(ctx, http.MethodDelete, "/delete", map[string]string{"id": id}, nil)
}

// UpdateTitle renames a hotspot.
func (c *Client) UpdateTitle(ctx context.Context, id, title string) error {
	if id == "" {
		return fmt.Errorf("hotspot id is required: %w", ErrInvalidPolygon)
	}
	if title == "" {
		return fmt.Errorf("title is required: %w", ErrInvalidPolygon)
	}
	return c.do(ctx, http.MethodPut, "/update", map[string]string{"id": id, "title": title}, nil)
}

// UpdateConfig replaces the opaque config object of a hotspot.
func (c *Client) UpdateConfig(ctx context.Context, id string, config map[string]any) error {
	if id == "" {
		return fmt.Errorf("hotspot id is required: %w", ErrInvalidPolygon)
	}
	return c.do(ctx, http.MethodPut, "/update", map[string]any{"id": id, "config": config}, nil)
}

// ChangeType re-creates a polygon with a new type, since the service cannot
// update the type in place. The old hotspot is deleted first, a new one is
// created under a fresh id and the original config object is copied over.
// The new id is returned.
func (c *Client) ChangeType(ctx context.Context, p core.RemotePolygon, newType core.HotspotType) (string, error) {
	if !newType.Known() {
		return "", fmt.Errorf("unknown hotspot type %q: %w", newType, ErrInvalidPolygon)
	}
	if err := validatePolygon(p); err != nil {
		return "", err
	}
	if p.ID == "" {
		return "", fmt.Errorf("hotspot id is required: %w", ErrInvalidPolygon)
	}

	if err := c.Delete(ctx, p.ID); err != nil {
		return "", fmt.Errorf("delete failed: %w", err)
	}

	created := p
	created.ID = ""
	created.Type = newType
	id, err := c.Create(ctx, created)
	if err != nil {
		return "", fmt.Errorf("create failed: %w", err)
	}

	if len(p.Extra) > 0 {
		if err := c.UpdateConfig(ctx, id, p.Extra); err != nil {
			return id, fmt.Errorf("update config failed: %w", err)
		}
	}
	c.logger.InfoContext(ctx, "polygon type changed", "oldId", p.ID, "newId", id, "type", newType)
	return id, nil
}

// TypeChange is one entry of a BulkChangeType request.
type TypeChange struct {
	Polygon core.RemotePolygon
	NewType core.HotspotType
}

// TypeChangeResult reports the outcome of one TypeChange.
type TypeChangeResult struct {
	OldID string
	NewID string
	Err   error
}

// BulkChangeType applies each change in order and keeps going on failure.
func (c *Client) BulkChangeType(ctx context.Context, changes []TypeChange) []TypeChangeResult {
	results := make([]TypeChangeResult, 0, len(changes))
	for _, ch := range changes {
		id, err := c.ChangeType(ctx, ch.Polygon, ch.NewType)
		results = append(results, TypeChangeResult{OldID: ch.Polygon.ID, NewID: id, Err: err})
	}
	return results
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.token == "" {
		return ErrMissingToken
	}
	endpoint := strings.TrimPrefix(strings.SplitN(path, "?", 2)[0], "/")

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RemoteRequest(ctx, endpoint, false)
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.RemoteRequest(ctx, endpoint, false)
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}
	c.metrics.RemoteRequest(ctx, endpoint, true)

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func validatePolygon(p core.RemotePolygon) error {
	if len(p.Config.Points) < 3 {
		return fmt.Errorf("polygon must have at least 3 points: %w", ErrInvalidPolygon)
	}
	if p.SceneID == "" {
		return fmt.Errorf("scene_id is required: %w", ErrInvalidPolygon)
	}
	for _, pt := range p.Config.Points {
		if !pt.Valid() {
			return fmt.Errorf("non-finite point: %w", ErrInvalidPolygon)
		}
	}
	return nil
}

func roundPoints(points []core.SphericalPoint) []core.SphericalPoint {
	out := make([]core.SphericalPoint, len(points))
	for i, p := range points {
		out[i] = core.SphericalPoint{Azimuth: round6(p.Azimuth), VerticalAngle: round6(p.VerticalAngle)}
	}
	return out
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}
