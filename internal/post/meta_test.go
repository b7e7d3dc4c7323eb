// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package post

import (
	"strings"
	"testing"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/notion-publish/internal/notion"
	"github.com/pdiddy/notion-publish/pkg/types"
)

var kst = time.FixedZone("+0900", 9*60*60)

func names() types.PropertyNames { return types.DefaultPropertyNames() }

func boolPtr(v bool) *bool { return &v }

func title(s string) notion.Property {
	return notion.Property{Type: notion.KindTitle, Title: []notion.RichText{{PlainText: s}}}
}

func text(s string) notion.Property {
	return notion.Property{Type: notion.KindRichText, RichText: []notion.RichText{{PlainText: s}}}
}

func date(s string) notion.Property {
	return notion.Property{Type: notion.KindDate, Date: &notion.DateValue{Start: s}}
}

func multi(names ...string) notion.Property {
	p := notion.Property{Type: notion.KindMultiSelect}
	for _, n := range names {
		p.MultiSelect = append(p.MultiSelect, notion.SelectOption{Name: n})
	}
	return p
}

func checkbox(v bool) notion.Property {
	return notion.Property{Type: notion.KindCheckbox, Checkbox: boolPtr(v)}
}

func created(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestExtractDefaults(t *testing.T) {
	page := notion.Page{ID: "page-123", CreatedTime: created("2024-02-10T03:04:05Z")}

	m := Extract(page, names(), kst)

	assert.Equal(t, "page-123", m.Title, "title falls back to the page id")
	assert.Equal(t, "2024-02-10", m.Date)
	assert.Equal(t, "2024-02-10 12:04:05 +0900", m.FullDate)
	assert.Empty(t, m.Tags)
	assert.Empty(t, m.Categories)
	assert.Equal(t, "", m.Author)
	assert.Equal(t, "", m.Description)
	assert.Nil(t, m.TOC)
	assert.Nil(t, m.Comments)
	assert.Nil(t, m.Math)
	assert.Nil(t, m.Mermaid)
	assert.Nil(t, m.Pin)
	assert.Nil(t, m.Image)
}

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		created  string
		wantDate string
		wantFull string
	}{
		{"date only", "2024-03-01", "2024-01-01T00:00:00Z", "2024-03-01", "2024-03-01 09:00:00 +0900"},
		{"date time with offset", "2024-03-01T23:30:00.000+09:00", "2024-01-01T00:00:00Z", "2024-03-01", "2024-03-01 23:30:00 +0900"},
		{"date time utc", "2024-03-01T20:00:00.000Z", "2024-01-01T00:00:00Z", "2024-03-01", "2024-03-02 05:00:00 +0900"},
		{"unparseable falls back to created", "next tuesday", "2024-01-05T10:00:00Z", "2024-01-05", "2024-01-05 19:00:00 +0900"},
		{"no date uses created", "", "2023-12-31T16:00:00Z", "2023-12-31", "2024-01-01 01:00:00 +0900"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := notion.Page{ID: "p", CreatedTime: created(tt.created), Properties: notion.Properties{}}
			if tt.start != "" {
				page.Properties["날짜"] = date(tt.start)
			}
			m := Extract(page, names(), kst)
			assert.Equal(t, tt.wantDate, m.Date)
			assert.Equal(t, tt.wantFull, m.FullDate)
		})
	}
}

func TestExtractFlags(t *testing.T) {
	tests := []struct {
		name  string
		props notion.Properties
		check func(t *testing.T, m Meta)
	}{
		{
			name:  "toc and comments only when false",
			props: notion.Properties{"TOC": checkbox(false), "댓글": checkbox(true)},
			check: func(t *testing.T, m Meta) {
				assert.Equal(t, boolPtr(false), m.TOC)
				assert.Nil(t, m.Comments)
			},
		},
		{
			name:  "math mermaid pin only when true",
			props: notion.Properties{"수학": checkbox(true), "머메이드": checkbox(false), "고정": checkbox(true)},
			check: func(t *testing.T, m Meta) {
				assert.Equal(t, boolPtr(true), m.Math)
				assert.Nil(t, m.Mermaid)
				assert.Equal(t, boolPtr(true), m.Pin)
			},
		},
		{
			name:  "mistyped checkbox is absent",
			props: notion.Properties{"TOC": text("false")},
			check: func(t *testing.T, m Meta) {
				assert.Nil(t, m.TOC)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := notion.Page{ID: "p", CreatedTime: created("2024-01-01T00:00:00Z"), Properties: tt.props}
			tt.check(t, Extract(page, names(), kst))
		})
	}
}

func TestExtractHeaderImage(t *testing.T) {
	page := notion.Page{
		ID:          "p",
		CreatedTime: created("2024-01-01T00:00:00Z"),
		Properties: notion.Properties{
			"게시물": title("Cover post"),
			"헤더 이미지": {Type: notion.KindFiles, Files: []notion.File{
				{Type: "file", File: &notion.FileURL{URL: "https://s3/cover.png"}},
				{Type: "external", External: &notion.FileURL{URL: "https://ex/second.png"}},
			}},
		},
	}
	m := Extract(page, names(), kst)
	require.NotNil(t, m.Image)
	assert.Equal(t, "https://s3/cover.png", m.Image.Path)
	assert.Equal(t, "Cover post", m.Image.Alt)

	page.Properties["헤더 이미지"] = notion.Property{Type: notion.KindFiles, Files: []notion.File{{Type: "file"}}}
	assert.Nil(t, Extract(page, names(), kst).Image, "no URL resolved, no image block")
}

func TestHeaderLists(t *testing.T) {
	m := Meta{Title: "T", FullDate: "2024-03-01 09:00:00 +0900", Tags: []string{"go", "infra"}}
	h := m.Header()
	assert.Contains(t, h, "tags: [go, infra]\n")
	assert.Contains(t, h, "categories: \n", "empty list renders nothing after the key")
}

func TestHeaderFieldOrder(t *testing.T) {
	m := Meta{
		Title:       "All fields",
		FullDate:    "2024-03-01 09:00:00 +0900",
		Categories:  []string{"dev"},
		Tags:        []string{"go"},
		Description: "desc",
		Author:      "Kim",
		TOC:         boolPtr(false),
		Comments:    boolPtr(false),
		Image:       &HeaderImage{Path: "https://ex/c.png", Alt: "All fields"},
		Math:        boolPtr(true),
		Mermaid:     boolPtr(true),
		Pin:         boolPtr(true),
	}
	want := `---
title: "All fields"
date: 2024-03-01 09:00:00 +0900
categories: [dev]
tags: [go]
description: "desc"
author: "Kim"
toc: false
comments: false
image:
  path: https://ex/c.png
  alt: "All fields"
math: true
mermaid: true
pin: true
---

<br><br>
`
	assert.Equal(t, want, m.Header())
}

func TestHeaderOmitsOptionalLines(t *testing.T) {
	h := Meta{Title: "T", FullDate: "x"}.Header()
	for _, key := range []string{"author:", "toc:", "comments:", "image:", "math:", "mermaid:", "pin:"} {
		assert.NotContains(t, h, key)
	}
}

type decodedHeader struct {
	Title       string   `yaml:"title"`
	Categories  []string `yaml:"categories"`
	Tags        []string `yaml:"tags"`
	Description string   `yaml:"description"`
	Author      string   `yaml:"author"`
	TOC         *bool    `yaml:"toc"`
	Pin         *bool    `yaml:"pin"`
	Image       struct {
		Path string `yaml:"path"`
		Alt  string `yaml:"alt"`
	} `yaml:"image"`
}

func TestHeaderIsValidFrontMatter(t *testing.T) {
	page := notion.Page{
		ID:          "p",
		CreatedTime: created("2024-01-01T00:00:00Z"),
		Properties: notion.Properties{
			"게시물":    title(`Say "hi" to 한글`),
			"태그":     multi("go", "infra"),
			"설명":     text("a: colon"),
			"저자":     text("Kim"),
			"TOC":    checkbox(false),
			"고정":     checkbox(true),
			"헤더 이미지": {Type: notion.KindFiles, Files: []notion.File{{Type: "external", External: &notion.FileURL{URL: "https://ex/c.png"}}}},
		},
	}
	h := Extract(page, names(), kst).Header()

	var got decodedHeader
	rest, err := frontmatter.Parse(strings.NewReader(h+"body"), &got)
	require.NoError(t, err)

	assert.Equal(t, `Say "hi" to 한글`, got.Title)
	assert.Empty(t, got.Categories)
	assert.Equal(t, []string{"go", "infra"}, got.Tags)
	assert.Equal(t, "a: colon", got.Description)
	assert.Equal(t, "Kim", got.Author)
	require.NotNil(t, got.TOC)
	assert.False(t, *got.TOC)
	require.NotNil(t, got.Pin)
	assert.True(t, *got.Pin)
	assert.Equal(t, "https://ex/c.png", got.Image.Path)
	assert.Equal(t, `Say "hi" to 한글`, got.Image.Alt)
	assert.Contains(t, string(rest), "<br><br>")
	assert.True(t, strings.HasSuffix(string(rest), "body"))
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2024-13-45")
	assert.Error(t, err)

	d, err := ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())
}
