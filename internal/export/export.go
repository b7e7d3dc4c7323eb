// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export drives a full run: query the database, then for each page
// extract front matter, render and transform the body, localize images and
// emit the post.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/notion-publish/internal/background"
	"github.com/pdiddy/notion-publish/internal/emit"
	"github.com/pdiddy/notion-publish/internal/images"
	"github.com/pdiddy/notion-publish/internal/notion"
	"github.com/pdiddy/notion-publish/internal/post"
	"github.com/pdiddy/notion-publish/internal/render"
	"github.com/pdiddy/notion-publish/internal/transform"
	"github.com/pdiddy/notion-publish/pkg/types"
)

// Status is the outcome of exporting one page.
type Status string

const (
	StatusExported Status = "exported"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// Source lists the pages to publish.
type Source interface {
	QueryDatabase(ctx context.Context, databaseID string, filter *notion.CheckboxFilter) ([]notion.Page, error)
}

// BatchResult holds the outcome of a run.
type BatchResult struct {
	Exported int
	Skipped  int
	Failed   int
	Images   int

	// Background counts downloads and writes; filled in once Run has waited
	// for them.
	Background background.Stats
}

// Total returns the number of pages processed.
func (r BatchResult) Total() int {
	return r.Exported + r.Skipped + r.Failed
}

// HasFailures reports whether any page or background task failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0 || r.Background.Failed > 0
}

// Exporter holds the collaborators of a run.
type Exporter struct {
	Source     Source
	Renderer   render.Renderer
	Localizer  *images.Localizer
	Emitter    *emit.Emitter
	Tasks      *background.Group
	DatabaseID string
	Names      types.PropertyNames
	Location   *time.Location
	Out        io.Writer
	Log        *zap.Logger
}

// Run exports every published page. A failed query aborts the run; a page
// that cannot be rendered is reported and the run continues. Run returns
// only after every background download and write has finished.
func (e *Exporter) Run(ctx context.Context) (BatchResult, error) {
	var result BatchResult

	pages, err := e.Source.QueryDatabase(ctx, e.DatabaseID, &notion.CheckboxFilter{Property: e.Names.Publish, Equals: true})
	if err != nil {
		// Work already scheduled must not outlive the run.
		e.Tasks.Wait()
		return result, fmt.Errorf("listing published pages: %w", err)
	}
	e.logger().Info("published pages listed", zap.Int("count", len(pages)))

	for _, page := range pages {
		status, n, err := e.ExportPage(ctx, page)
		switch status {
		case StatusExported:
			result.Exported++
			result.Images += n
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
			fmt.Fprintf(e.Out, "failed:   %s (%v)\n", page.ID, err)
		}
	}

	result.Background = e.Tasks.Wait()
	fmt.Fprintf(e.Out, "\nBatch summary: %d exported, %d skipped, %d failed (total: %d); %d background tasks, %d failed\n",
		result.Exported, result.Skipped, result.Failed, result.Total(),
		result.Background.Scheduled, result.Background.Failed)
	return result, nil
}

// ExportPage runs the per-page pipeline and returns the status and the
// number of images scheduled for download. A page whose body renders empty
// is skipped: no file, no downloads.
func (e *Exporter) ExportPage(ctx context.Context, page notion.Page) (Status, int, error) {
	meta := post.Extract(page, e.Names, e.Location)
	header := meta.Header()

	body, err := e.Renderer.Render(ctx, page.ID)
	if err != nil {
		return StatusFailed, 0, fmt.Errorf("rendering: %w", err)
	}
	if body == "" {
		fmt.Fprintf(e.Out, "skipped:  %s (empty body)\n", meta.Title)
		return StatusSkipped, 0, nil
	}

	body = transform.Apply(body)

	fileName := emit.FileName(meta.Date, meta.Title)
	body, refs, err := e.Localizer.Localize(ctx, body, emit.Slug(fileName))
	if err != nil {
		return StatusFailed, 0, err
	}

	dest, err := e.Emitter.Emit(ctx, emit.Post{
		PageID:   page.ID,
		Title:    meta.Title,
		FileName: fileName,
		Content:  header + body,
		Images:   len(refs),
	})
	if err != nil {
		return StatusFailed, 0, err
	}

	fmt.Fprintf(e.Out, "exported: %s (%d images)\n", dest, len(refs))
	return StatusExported, len(refs), nil
}

func (e *Exporter) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}
