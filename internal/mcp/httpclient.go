package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repvoice/internal/models"
	"github.com/claude/repvoice/internal/recognize"
	"github.com/claude/repvoice/internal/storage"
)

// HTTPClient implements DataSource by calling the RepVoice REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body any) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("httpclient: marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
	}

	return data, nil
}

func (c *HTTPClient) MatchExercise(ctx context.Context, text, category string) (*recognize.MatchResponse, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/exercises/match", nil,
		recognize.MatchRequest{Text: text, Category: category})
	if err != nil {
		return nil, err
	}

	var resp recognize.MatchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode match response: %w", err)
	}
	return &resp, nil
}

func (c *HTTPClient) QuickMatchExercise(ctx context.Context, text, language string, maxResults int) (*recognize.QuickMatchResponse, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/exercises/quick-match", nil,
		recognize.QuickMatchRequest{Text: text, Language: language, MaxResults: maxResults})
	if err != nil {
		return nil, err
	}

	var resp recognize.QuickMatchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode quick-match response: %w", err)
	}
	return &resp, nil
}

func (c *HTTPClient) ParseWorkoutCommand(ctx context.Context, text string) (*recognize.ParseResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/workouts/parse", nil,
		map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	var result recognize.ParseResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("httpclient: decode parse response: %w", err)
	}
	return &result, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context, opts storage.ListOptions) ([]models.ExerciseWithAliases, error) {
	params := url.Values{}
	if opts.Category != "" {
		params.Set("category", opts.Category)
	}
	if opts.Difficulty != "" {
		params.Set("difficulty", opts.Difficulty)
	}
	if opts.Query != "" {
		params.Set("q", opts.Query)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	body, err := c.do(ctx, http.MethodGet, "/api/v1/exercises", params, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Exercises []models.ExerciseWithAliases `json:"exercises"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises response: %w", err)
	}
	return resp.Exercises, nil
}

func (c *HTTPClient) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/exercises/categories", nil, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Categories []models.CategoryCount `json:"categories"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode categories response: %w", err)
	}
	return resp.Categories, nil
}

func (c *HTTPClient) ExerciseHistory(ctx context.Context, userLogin string, limit int) ([]storage.HistoryEntry, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	// History is scoped server-side to the identity behind the API
	// call; userLogin only matters for the local source.
	_ = userLogin

	body, err := c.do(ctx, http.MethodGet, "/api/v1/exercises/history", params, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		History []storage.HistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode history response: %w", err)
	}
	return resp.History, nil
}
