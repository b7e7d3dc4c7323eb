// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package images re-hosts the images referenced by a post: every Markdown
// image is pointed at a numbered local file, which is downloaded in the
// background.
package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/pdiddy/notion-publish/internal/background"
	"github.com/pdiddy/notion-publish/internal/httputil"
)

var imageRe = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)

// Reference is one rewritten image.
type Reference struct {
	Index     int
	Alt       string
	URL       string
	LocalPath string
}

// Fetcher opens a remote resource for reading.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPFetcher fetches over HTTP, retrying on 429.
type HTTPFetcher struct {
	Retrier   *httputil.Retrier
	UserAgent string
}

// Fetch issues a GET and returns the body of a 200 response.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	resp, err := f.Retrier.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL.Redacted())
	}
	return resp.Body, nil
}

// Localizer rewrites image references and schedules their downloads.
type Localizer struct {
	fetcher   Fetcher
	tasks     *background.Group
	root      string
	assetsDir string
	log       *zap.Logger
}

// NewLocalizer stores images under assetsDir, a slash-separated path
// relative to the site root such as "assets/img/posts". Rewritten references
// use that path; files are written below root on disk.
func NewLocalizer(f Fetcher, tasks *background.Group, root, assetsDir string, logger *zap.Logger) *Localizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if root == "" {
		root = "."
	}
	return &Localizer{fetcher: f, tasks: tasks, root: root, assetsDir: assetsDir, log: logger}
}

// Localize rewrites every ![alt](url) in body, left to right, to
// ![i](<assetsDir>/<slug>/<i>.png) followed by _alt_ when alt is non-empty,
// numbering from 0. Each image is downloaded in the background; download
// failures are logged by the task group and never reach the caller. The
// only error returned is failure to create the image directory.
func (l *Localizer) Localize(ctx context.Context, body, slug string) (string, []Reference, error) {
	dir := path.Join(l.assetsDir, slug)

	var refs []Reference
	var mkdirErr error
	out := imageRe.ReplaceAllStringFunc(body, func(match string) string {
		if mkdirErr != nil {
			return match
		}
		if len(refs) == 0 {
			if err := os.MkdirAll(l.diskPath(dir), 0o755); err != nil {
				mkdirErr = fmt.Errorf("creating image directory %s: %w", dir, err)
				return match
			}
		}

		sub := imageRe.FindStringSubmatch(match)
		ref := Reference{
			Index: len(refs),
			Alt:   sub[1],
			URL:   sub[2],
		}
		ref.LocalPath = path.Join(dir, strconv.Itoa(ref.Index)+".png")
		refs = append(refs, ref)

		l.schedule(ctx, ref)

		caption := ""
		if ref.Alt != "" {
			caption = "_" + ref.Alt + "_"
		}
		return fmt.Sprintf("![%d](%s)%s", ref.Index, ref.LocalPath, caption)
	})
	if mkdirErr != nil {
		return "", nil, mkdirErr
	}
	return out, refs, nil
}

func (l *Localizer) schedule(ctx context.Context, ref Reference) {
	dest := l.diskPath(ref.LocalPath)
	l.tasks.Go("download "+ref.LocalPath, func() error {
		if err := l.download(ctx, ref.URL, dest); err != nil {
			return fmt.Errorf("downloading %s: %w", ref.URL, err)
		}
		l.log.Debug("image saved", zap.String("path", dest))
		return nil
	})
}

func (l *Localizer) diskPath(p string) string {
	return filepath.Join(l.root, filepath.FromSlash(p))
}

// download streams url into destPath through a temporary file so a partial
// download never replaces a good copy.
func (l *Localizer) download(ctx context.Context, url, destPath string) error {
	body, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
