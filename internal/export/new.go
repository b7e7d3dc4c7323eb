// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"io"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pdiddy/notion-publish/internal/background"
	"github.com/pdiddy/notion-publish/internal/emit"
	"github.com/pdiddy/notion-publish/internal/httputil"
	"github.com/pdiddy/notion-publish/internal/images"
	"github.com/pdiddy/notion-publish/internal/notion"
	"github.com/pdiddy/notion-publish/internal/render"
	"github.com/pdiddy/notion-publish/pkg/types"
)

// New wires an Exporter against the Notion API. hc is shared by API calls and
// image downloads; recorder may be nil. cfg must already be validated.
func New(cfg *types.Config, hc *http.Client, recorder emit.Recorder, out io.Writer, logger *zap.Logger) (*Exporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := cfg.Export.Location()
	if err != nil {
		return nil, err
	}

	client := notion.NewClient(hc, cfg.Notion, logger.Named("notion"))
	tasks := background.NewGroup(cfg.Export.MaxParallel, logger.Named("background"))
	fetcher := &images.HTTPFetcher{
		Retrier:   &httputil.Retrier{Client: hc, MaxRetries: 3, Logger: logger.Named("images")},
		UserAgent: cfg.Notion.UserAgent,
	}
	site := cfg.Export.SiteDir

	return &Exporter{
		Source:     client,
		Renderer:   render.NewMarkdown(client, logger.Named("render")),
		Localizer:  images.NewLocalizer(fetcher, tasks, site, filepath.ToSlash(cfg.Export.AssetsDir), logger.Named("images")),
		Emitter:    emit.NewEmitter(filepath.Join(site, cfg.Export.PostsDir), tasks, recorder, logger.Named("emit")),
		Tasks:      tasks,
		DatabaseID: cfg.Notion.DatabaseID,
		Names:      cfg.Export.Properties,
		Location:   loc,
		Out:        out,
		Log:        logger,
	}, nil
}
