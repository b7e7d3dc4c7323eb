// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package post maps a Notion page's properties to Jekyll front matter.
package post

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/notion-publish/internal/notion"
	"github.com/pdiddy/notion-publish/pkg/types"
)

const (
	calendarLayout = "2006-01-02"
	fullLayout     = "2006-01-02 15:04:05 -0700"
)

// HeaderImage is the optional cover image of a post.
type HeaderImage struct {
	Path string
	Alt  string
}

// Meta is the front matter of one post.
//
// The flags are nil when the header line is omitted. TOC and Comments are
// only ever set to false, Math, Mermaid and Pin only ever to true, because
// the theme's defaults make the other value redundant.
type Meta struct {
	PageID      string
	Title       string
	Date        string
	FullDate    string
	Categories  []string
	Tags        []string
	Description string
	Author      string

	TOC      *bool
	Comments *bool
	Math     *bool
	Mermaid  *bool
	Pin      *bool

	Image *HeaderImage
}

// Extract builds Meta from a page. It never fails: every missing or
// mistyped property falls back to its default. Explicit dates are converted
// to loc for the full timestamp.
func Extract(page notion.Page, names types.PropertyNames, loc *time.Location) Meta {
	props := page.Properties

	m := Meta{
		PageID:      page.ID,
		Title:       page.ID,
		Categories:  props.Names(names.Categories),
		Tags:        props.Names(names.Tags),
		Author:      props.FirstText(names.Author),
		Description: props.FirstText(names.Description),
	}

	if title := props.FirstTitle(names.Title); title != "" {
		m.Title = title
	}

	published := page.CreatedTime
	if start, ok := props.DateStart(names.Date); ok {
		if t, err := ParseDate(start); err == nil {
			published = t
		}
	}
	m.Date = published.Format(calendarLayout)
	m.FullDate = published.In(loc).Format(fullLayout)

	if v, ok := props.Checkbox(names.TOC); ok && !v {
		m.TOC = flag(false)
	}
	if v, ok := props.Checkbox(names.Comments); ok && !v {
		m.Comments = flag(false)
	}
	if v, ok := props.Checkbox(names.Math); ok && v {
		m.Math = flag(true)
	}
	if v, ok := props.Checkbox(names.Mermaid); ok && v {
		m.Mermaid = flag(true)
	}
	if v, ok := props.Checkbox(names.Pin); ok && v {
		m.Pin = flag(true)
	}

	if u := props.FirstFileURL(names.HeaderImage); u != "" {
		m.Image = &HeaderImage{Path: u, Alt: m.Title}
	}

	return m
}

// ParseDate parses a Notion date start value. Date-only values are midnight
// UTC; date-times keep the offset they were written with.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(calendarLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// Header renders the front matter block, including the closing delimiter
// and the spacer that precedes the body.
func (m Meta) Header() string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", m.Title)
	fmt.Fprintf(&b, "date: %s\n", m.FullDate)
	fmt.Fprintf(&b, "categories: %s\n", formatList(m.Categories))
	fmt.Fprintf(&b, "tags: %s\n", formatList(m.Tags))
	fmt.Fprintf(&b, "description: %q\n", m.Description)
	if m.Author != "" {
		fmt.Fprintf(&b, "author: %q\n", m.Author)
	}
	writeFlag(&b, "toc", m.TOC)
	writeFlag(&b, "comments", m.Comments)
	if m.Image != nil {
		b.WriteString("image:\n")
		fmt.Fprintf(&b, "  path: %s\n", m.Image.Path)
		fmt.Fprintf(&b, "  alt: %q\n", m.Image.Alt)
	}
	writeFlag(&b, "math", m.Math)
	writeFlag(&b, "mermaid", m.Mermaid)
	writeFlag(&b, "pin", m.Pin)
	b.WriteString("---\n\n<br><br>\n")
	return b.String()
}

// formatList renders [a, b, c], or nothing for an empty list.
func formatList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return "[" + strings.Join(items, ", ") + "]"
}

func writeFlag(b *strings.Builder, key string, v *bool) {
	if v == nil {
		return
	}
	fmt.Fprintf(b, "%s: %t\n", key, *v)
}

func flag(v bool) *bool { return &v }
