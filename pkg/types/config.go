// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds configuration shared by the export stages.
package types

import (
	"fmt"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Defaults applied by NewDefaultConfig.
const (
	DefaultNotionBaseURL = "https://api.notion.com"
	DefaultNotionVersion = "2022-06-28"
	DefaultUserAgent     = "notion-publish/0.1"
	DefaultTimeout       = 60 * time.Second
	DefaultSiteDir       = "."
	DefaultPostsDir      = "_posts"
	DefaultAssetsDir     = "assets/img/posts"
	DefaultLedgerPath    = ".notion-publish/export.db"
	DefaultUTCOffset     = "+0900"
	DefaultMaxParallel   = 8
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// NotionConfig holds the credentials and endpoint for the Notion API.
type NotionConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Token is the integration secret (NOTION_TOKEN).
	Token string `json:"-" yaml:"token,omitempty" mapstructure:"token"`

	// DatabaseID identifies the database holding the posts (DATABASE_ID).
	DatabaseID string `json:"database_id" yaml:"database_id" mapstructure:"database_id"`

	// BaseURL is the API root, overridden in tests.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Version is sent as the Notion-Version header.
	Version string `json:"version" yaml:"version" mapstructure:"version"`
}

// Validate checks that credentials and endpoint are present.
func (c *NotionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Token, validation.Required.Error("is required (set NOTION_TOKEN)")),
		validation.Field(&c.DatabaseID, validation.Required.Error("is required (set DATABASE_ID)")),
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.Version, validation.Required),
	)
}

// PropertyNames maps each post field to the database property that holds it.
type PropertyNames struct {
	Publish     string `json:"publish" yaml:"publish" mapstructure:"publish"`
	Title       string `json:"title" yaml:"title" mapstructure:"title"`
	Date        string `json:"date" yaml:"date" mapstructure:"date"`
	Tags        string `json:"tags" yaml:"tags" mapstructure:"tags"`
	Categories  string `json:"categories" yaml:"categories" mapstructure:"categories"`
	Author      string `json:"author" yaml:"author" mapstructure:"author"`
	Description string `json:"description" yaml:"description" mapstructure:"description"`
	TOC         string `json:"toc" yaml:"toc" mapstructure:"toc"`
	Comments    string `json:"comments" yaml:"comments" mapstructure:"comments"`
	HeaderImage string `json:"header_image" yaml:"header_image" mapstructure:"header_image"`
	Math        string `json:"math" yaml:"math" mapstructure:"math"`
	Mermaid     string `json:"mermaid" yaml:"mermaid" mapstructure:"mermaid"`
	Pin         string `json:"pin" yaml:"pin" mapstructure:"pin"`
}

// DefaultPropertyNames returns the property names of the blog database the
// exporter was written for.
func DefaultPropertyNames() PropertyNames {
	return PropertyNames{
		Publish:     "배포",
		Title:       "게시물",
		Date:        "날짜",
		Tags:        "태그",
		Categories:  "카테고리",
		Author:      "저자",
		Description: "설명",
		TOC:         "TOC",
		Comments:    "댓글",
		HeaderImage: "헤더 이미지",
		Math:        "수학",
		Mermaid:     "머메이드",
		Pin:         "고정",
	}
}

// Validate requires the publish filter property; the remaining fields may be
// blank, in which case the corresponding header line is never emitted.
func (p *PropertyNames) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Publish, validation.Required),
		validation.Field(&p.Title, validation.Required),
	)
}

// ExportConfig holds settings for the export stage.
type ExportConfig struct {
	// SiteDir is the Jekyll site root; PostsDir and AssetsDir are relative to it.
	SiteDir string `json:"site_dir" yaml:"site_dir" mapstructure:"site_dir"`

	// PostsDir receives one Markdown file per page.
	PostsDir string `json:"posts_dir" yaml:"posts_dir" mapstructure:"posts_dir"`

	// AssetsDir is the root for downloaded images, one subdirectory per post.
	AssetsDir string `json:"assets_dir" yaml:"assets_dir" mapstructure:"assets_dir"`

	// LedgerPath is the SQLite export ledger, relative to SiteDir unless
	// absolute. Empty disables the ledger.
	LedgerPath string `json:"ledger_path" yaml:"ledger_path" mapstructure:"ledger_path"`

	// UTCOffset is the offset used for the full date in the header, e.g. "+0900".
	UTCOffset string `json:"utc_offset" yaml:"utc_offset" mapstructure:"utc_offset"`

	// MaxParallel bounds concurrent image downloads and file writes.
	MaxParallel int `json:"max_parallel" yaml:"max_parallel" mapstructure:"max_parallel"`

	Properties PropertyNames `json:"properties" yaml:"properties" mapstructure:"properties"`
}

// Validate checks directories, offset and property names.
func (c *ExportConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.SiteDir, validation.Required),
		validation.Field(&c.PostsDir, validation.Required),
		validation.Field(&c.AssetsDir, validation.Required),
		validation.Field(&c.UTCOffset, validation.Required, validation.By(checkOffset)),
		validation.Field(&c.MaxParallel, validation.Min(1)),
	); err != nil {
		return err
	}
	return c.Properties.Validate()
}

// Location returns the fixed zone described by UTCOffset.
func (c *ExportConfig) Location() (*time.Location, error) {
	t, err := time.Parse("-0700", c.UTCOffset)
	if err != nil {
		return nil, fmt.Errorf("parsing utc_offset %q: %w", c.UTCOffset, err)
	}
	_, offset := t.Zone()
	return time.FixedZone(c.UTCOffset, offset), nil
}

// LedgerFile resolves LedgerPath against SiteDir, the same way the posts and
// assets directories are resolved. It returns "" when the ledger is disabled.
func (c *ExportConfig) LedgerFile() string {
	if c.LedgerPath == "" || filepath.IsAbs(c.LedgerPath) {
		return c.LedgerPath
	}
	return filepath.Join(c.SiteDir, c.LedgerPath)
}

func checkOffset(value interface{}) error {
	s, _ := value.(string)
	if _, err := time.Parse("-0700", s); err != nil {
		return fmt.Errorf("must look like +0900")
	}
	return nil
}

// Config groups all settings for a run.
type Config struct {
	Notion NotionConfig `json:"notion" yaml:"notion" mapstructure:"notion"`
	Export ExportConfig `json:"export" yaml:"export" mapstructure:"export"`
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.Notion.Validate(); err != nil {
		return fmt.Errorf("notion: %w", err)
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// NewDefaultConfig returns a Config that reproduces the exporter's fixed
// layout: _posts/ and assets/img/posts/ under the working directory.
func NewDefaultConfig() *Config {
	return &Config{
		Notion: NotionConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   DefaultTimeout,
				UserAgent: DefaultUserAgent,
			},
			BaseURL: DefaultNotionBaseURL,
			Version: DefaultNotionVersion,
		},
		Export: ExportConfig{
			SiteDir:     DefaultSiteDir,
			PostsDir:    DefaultPostsDir,
			AssetsDir:   DefaultAssetsDir,
			LedgerPath:  DefaultLedgerPath,
			UTCOffset:   DefaultUTCOffset,
			MaxParallel: DefaultMaxParallel,
			Properties:  DefaultPropertyNames(),
		},
	}
}
