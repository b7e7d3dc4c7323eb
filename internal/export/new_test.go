// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/notion-publish/pkg/types"
)

// newNotionServer serves one published page whose body is a heading and an
// image hosted on the same server.
func newNotionServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/databases/db-1/query", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"results": []any{map[string]any{
				"id":           "page-1",
				"created_time": "2024-01-05T00:00:00.000Z",
				"properties": map[string]any{
					"게시물": map[string]any{"type": "title", "title": []any{map[string]any{"plain_text": "Hello World"}}},
					"날짜":  map[string]any{"type": "date", "date": map[string]any{"start": "2024-03-01"}},
					"태그":  map[string]any{"type": "multi_select", "multi_select": []any{map[string]any{"name": "go"}}},
				},
			}},
			"has_more": false,
		})
	})
	mux.HandleFunc("GET /v1/blocks/page-1/children", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []any{
				map[string]any{"id": "b1", "type": "heading_1", "heading_1": map[string]any{
					"rich_text": []any{map[string]any{"type": "text", "plain_text": "Intro"}},
				}},
				map[string]any{"id": "b2", "type": "image", "image": map[string]any{
					"type":    "file",
					"file":    map[string]any{"url": srv.URL + "/files/pic.png"},
					"caption": []any{map[string]any{"type": "text", "plain_text": "pic"}},
				}},
			},
			"has_more": false,
		})
	})
	mux.HandleFunc("GET /files/pic.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image-bytes"))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewRunsAgainstAPI(t *testing.T) {
	srv := newNotionServer(t)
	site := t.TempDir()

	cfg := types.NewDefaultConfig()
	cfg.Notion.Token = "secret"
	cfg.Notion.DatabaseID = "db-1"
	cfg.Notion.BaseURL = srv.URL
	cfg.Export.SiteDir = site
	require.NoError(t, cfg.Validate())

	var out bytes.Buffer
	exp, err := New(cfg, srv.Client(), nil, &out, nil)
	require.NoError(t, err)

	result, err := exp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Exported)
	assert.False(t, result.HasFailures())

	data, err := os.ReadFile(filepath.Join(site, "_posts", "2024-03-01-Hello-World.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: \"Hello World\"\n")
	assert.Contains(t, string(data), "tags: [go]\n")
	assert.Contains(t, string(data), "<br><br>\n## Intro\n\n![0](assets/img/posts/2024-03-01-Hello-World/0.png)_pic_")

	img, err := os.ReadFile(filepath.Join(site, "assets", "img", "posts", "2024-03-01-Hello-World", "0.png"))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(img))
}

func TestNewRejectsBadOffset(t *testing.T) {
	cfg := types.NewDefaultConfig()
	cfg.Export.UTCOffset = "KST"
	_, err := New(cfg, http.DefaultClient, nil, &bytes.Buffer{}, nil)
	require.Error(t, err)
}
