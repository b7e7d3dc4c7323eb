// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package emit names post files and writes them to the posts directory.
package emit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/notion-publish/internal/background"
)

// space is the whitespace a title may carry: ASCII whitespace, the Unicode
// space separators (NBSP, U+3000), the line and paragraph separators and the
// BOM. Go's \s matches ASCII only.
const space = `\t\n\v\f\r\p{Zs}\x{2028}\x{2029}\x{FEFF}`

var (
	disallowedRe = regexp.MustCompile(`[^a-zA-Z0-9가-힣` + space + `]`)
	spaceRe      = regexp.MustCompile(`[` + space + `]+`)
)

// Sanitize drops every character other than ASCII letters, digits, Hangul
// syllables and whitespace, then turns each whitespace run into a hyphen.
func Sanitize(title string) string {
	s := disallowedRe.ReplaceAllString(title, "")
	return spaceRe.ReplaceAllString(s, "-")
}

// FileName returns "<date>-<sanitized title>.md".
func FileName(date, title string) string {
	return date + "-" + Sanitize(title) + ".md"
}

// Slug returns the file name without its extension; it names the post's
// image directory.
func Slug(fileName string) string {
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}

// Post is a finished file waiting to be written.
type Post struct {
	PageID   string
	Title    string
	FileName string
	Content  string
	Images   int
}

// Record is what the ledger keeps about a written post.
type Record struct {
	PageID     string
	Title      string
	Path       string
	Images     int
	ExportedAt time.Time
}

// Recorder persists a Record after the post has been written.
type Recorder interface {
	Record(ctx context.Context, r Record) error
}

// Emitter writes posts in the background.
type Emitter struct {
	postsDir string
	tasks    *background.Group
	recorder Recorder
	log      *zap.Logger
	now      func() time.Time
}

// NewEmitter writes into postsDir. recorder may be nil.
func NewEmitter(postsDir string, tasks *background.Group, recorder Recorder, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{
		postsDir: postsDir,
		tasks:    tasks,
		recorder: recorder,
		log:      logger,
		now:      time.Now,
	}
}

// Emit creates the posts directory and schedules the write, replacing any
// file of the same name. It returns the destination path. Write failures are
// logged by the task group; only a failure to create the directory is
// returned.
func (e *Emitter) Emit(ctx context.Context, p Post) (string, error) {
	if err := os.MkdirAll(e.postsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating posts directory %s: %w", e.postsDir, err)
	}
	dest := filepath.Join(e.postsDir, p.FileName)

	e.tasks.Go("write "+dest, func() error {
		if err := os.WriteFile(dest, []byte(p.Content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
		if e.recorder == nil {
			return nil
		}
		rec := Record{
			PageID:     p.PageID,
			Title:      p.Title,
			Path:       dest,
			Images:     p.Images,
			ExportedAt: e.now().UTC(),
		}
		if err := e.recorder.Record(ctx, rec); err != nil {
			// The post itself is on disk; only the ledger row is missing.
			e.log.Warn("recording export failed", zap.String("page_id", p.PageID), zap.Error(err))
		}
		return nil
	})
	return dest, nil
}
