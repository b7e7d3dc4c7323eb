// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strings"

	"github.com/pdiddy/notion-publish/internal/notion"
)

// PlainText concatenates the plain text of every run, ignoring styles.
func PlainText(runs []notion.RichText) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.PlainText)
	}
	return b.String()
}

// RichText renders runs as inline Markdown.
func RichText(runs []notion.RichText) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(run(r))
	}
	return b.String()
}

func run(r notion.RichText) string {
	if r.Type == "equation" && r.Equation != nil {
		return "$" + r.Equation.Expression + "$"
	}

	s := r.PlainText
	core := strings.Trim(s, " ")
	if core == "" {
		return s
	}
	// Markers must hug the text, so surrounding spaces stay outside them.
	lead := s[:strings.Index(s, core)]
	trail := s[len(lead)+len(core):]

	a := r.Annotations
	if a.Code {
		core = "`" + core + "`"
	}
	if a.Bold {
		core = "**" + core + "**"
	}
	if a.Italic {
		core = "_" + core + "_"
	}
	if a.Strikethrough {
		core = "~~" + core + "~~"
	}
	if href := runHref(r); href != "" {
		core = "[" + core + "](" + href + ")"
	}
	return lead + core + trail
}

func runHref(r notion.RichText) string {
	if r.Href != "" {
		return r.Href
	}
	if r.Text != nil && r.Text.Link != nil {
		return r.Text.Link.URL
	}
	return ""
}
