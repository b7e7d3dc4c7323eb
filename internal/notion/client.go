// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notion is a minimal client for the Notion REST API: paginated
// database queries and block children listings.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/notion-publish/internal/httputil"
	"github.com/pdiddy/notion-publish/pkg/types"
)

// pageSize is the largest page the API serves.
const pageSize = 100

// APIError is the error object Notion returns with non-2xx responses.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion: HTTP %d", e.Status)
	}
	return fmt.Sprintf("notion: HTTP %d %s: %s", e.Status, e.Code, e.Message)
}

// Client talks to the Notion API with a bearer token.
type Client struct {
	http    *httputil.Retrier
	token   string
	baseURL string
	version string
	agent   string
	log     *zap.Logger
}

// NewClient builds a client from cfg. The HTTP client is injected so tests
// can point it at an httptest server.
func NewClient(hc *http.Client, cfg types.NotionConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:    &httputil.Retrier{Client: hc, Logger: logger},
		token:   cfg.Token,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		version: cfg.Version,
		agent:   cfg.UserAgent,
		log:     logger,
	}
}

// CheckboxFilter selects pages whose checkbox property equals a value.
type CheckboxFilter struct {
	Property string
	Equals   bool
}

func (f CheckboxFilter) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"property": f.Property,
		"checkbox": map[string]bool{"equals": f.Equals},
	})
}

type queryRequest struct {
	Filter      *CheckboxFilter `json:"filter,omitempty"`
	StartCursor string          `json:"start_cursor,omitempty"`
	PageSize    int             `json:"page_size"`
}

type queryResponse struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

type childrenResponse struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// QueryDatabase returns every page of the database that matches filter, in
// the order the API returns them, following next_cursor until has_more is
// false. A nil filter returns all pages.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, filter *CheckboxFilter) ([]Page, error) {
	endpoint := fmt.Sprintf("%s/v1/databases/%s/query", c.baseURL, url.PathEscape(databaseID))

	var pages []Page
	cursor := ""
	for {
		body, err := json.Marshal(queryRequest{Filter: filter, StartCursor: cursor, PageSize: pageSize})
		if err != nil {
			return nil, fmt.Errorf("encoding query: %w", err)
		}

		var qr queryResponse
		if err := c.do(ctx, http.MethodPost, endpoint, body, &qr); err != nil {
			return nil, fmt.Errorf("querying database %s: %w", databaseID, err)
		}
		pages = append(pages, qr.Results...)

		c.log.Debug("database page fetched",
			zap.String("database_id", databaseID),
			zap.Int("results", len(qr.Results)),
			zap.Bool("has_more", qr.HasMore))

		if !qr.HasMore || qr.NextCursor == nil || *qr.NextCursor == "" {
			return pages, nil
		}
		cursor = *qr.NextCursor
	}
}

// BlockChildren returns every direct child of a block or page.
func (c *Client) BlockChildren(ctx context.Context, blockID string) ([]Block, error) {
	var blocks []Block
	cursor := ""
	for {
		params := url.Values{"page_size": {fmt.Sprintf("%d", pageSize)}}
		if cursor != "" {
			params.Set("start_cursor", cursor)
		}
		endpoint := fmt.Sprintf("%s/v1/blocks/%s/children?%s", c.baseURL, url.PathEscape(blockID), params.Encode())

		var cr childrenResponse
		if err := c.do(ctx, http.MethodGet, endpoint, nil, &cr); err != nil {
			return nil, fmt.Errorf("listing children of %s: %w", blockID, err)
		}
		blocks = append(blocks, cr.Results...)

		if !cr.HasMore || cr.NextCursor == nil || *cr.NextCursor == "" {
			return blocks, nil
		}
		cursor = *cr.NextCursor
	}
}

// do sends one API request and decodes a 200 response into out.
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Accept", "application/json")
	if c.agent != "" {
		req.Header.Set("User-Agent", c.agent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if len(data) > 0 {
			_ = json.Unmarshal(data, apiErr)
			apiErr.Status = resp.StatusCode
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
