// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns a Notion page's block tree into Markdown.
package render

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/notion-publish/internal/notion"
)

// BlockSource lists the children of a block or page.
type BlockSource interface {
	BlockChildren(ctx context.Context, blockID string) ([]notion.Block, error)
}

// Renderer converts a page into Markdown text. An empty result means the
// page has no content worth publishing.
type Renderer interface {
	Render(ctx context.Context, pageID string) (string, error)
}

// Markdown fetches the block tree from a BlockSource and linearizes it.
type Markdown struct {
	source BlockSource
	log    *zap.Logger
}

// NewMarkdown returns a Renderer backed by src.
func NewMarkdown(src BlockSource, logger *zap.Logger) *Markdown {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Markdown{source: src, log: logger}
}

// Render fetches every block of the page, depth first, and returns the
// Markdown for it.
func (m *Markdown) Render(ctx context.Context, pageID string) (string, error) {
	blocks, err := m.tree(ctx, pageID)
	if err != nil {
		return "", err
	}
	return Blocks(blocks), nil
}

// Sub-pages and databases are separate documents, so their children are
// never pulled into the parent.
var detached = map[string]bool{
	"child_page":     true,
	"child_database": true,
}

func (m *Markdown) tree(ctx context.Context, id string) ([]notion.Block, error) {
	blocks, err := m.source.BlockChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range blocks {
		b := &blocks[i]
		if !b.HasChildren || detached[b.Type] {
			continue
		}
		children, err := m.tree(ctx, b.ID)
		if err != nil {
			return nil, fmt.Errorf("fetching children of %s block %s: %w", b.Type, b.ID, err)
		}
		b.Children = children
	}
	m.log.Debug("blocks fetched", zap.String("parent", id), zap.Int("count", len(blocks)))
	return blocks, nil
}

var listItems = map[string]bool{
	"bulleted_list_item": true,
	"numbered_list_item": true,
	"to_do":              true,
}

// Blocks renders sibling blocks. Consecutive list items are separated by a
// newline, everything else by a blank line.
func Blocks(blocks []notion.Block) string {
	var b strings.Builder
	number := 0
	prevList := false
	for _, blk := range blocks {
		if blk.Type == "numbered_list_item" {
			number++
		} else {
			number = 0
		}

		s := block(blk, number)
		if s == "" {
			continue
		}
		isList := listItems[blk.Type]
		if b.Len() > 0 {
			if isList && prevList {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}
		b.WriteString(s)
		prevList = isList
	}
	return b.String()
}

func block(blk notion.Block, number int) string {
	c := blk.Content
	text := RichText(c.RichText)

	switch blk.Type {
	case "paragraph":
		return withChildren(text, blk.Children)
	case "heading_1":
		return withChildren(heading(1, text), blk.Children)
	case "heading_2":
		return withChildren(heading(2, text), blk.Children)
	case "heading_3":
		return withChildren(heading(3, text), blk.Children)
	case "bulleted_list_item":
		return listItem("- ", text, blk.Children)
	case "numbered_list_item":
		return listItem(fmt.Sprintf("%d. ", number), text, blk.Children)
	case "to_do":
		box := "- [ ] "
		if c.Checked {
			box = "- [x] "
		}
		return listItem(box, text, blk.Children)
	case "quote":
		return quote(withChildren(text, blk.Children))
	case "callout":
		if c.Icon != nil && c.Icon.Emoji != "" {
			text = c.Icon.Emoji + " " + text
		}
		return quote(withChildren(text, blk.Children))
	case "toggle":
		inner := Blocks(blk.Children)
		return "<details>\n<summary>" + text + "</summary>\n\n" + inner + "\n\n</details>"
	case "code":
		lang := c.Language
		if lang == "plain text" {
			lang = ""
		}
		return "```" + lang + "\n" + PlainText(c.RichText) + "\n```"
	case "equation":
		return "$$\n" + c.Expression + "\n$$"
	case "divider":
		return "---"
	case "image":
		u := c.MediaURL()
		if u == "" {
			return ""
		}
		return "![" + PlainText(c.Caption) + "](" + u + ")"
	case "video", "file", "pdf", "audio":
		u := c.MediaURL()
		if u == "" {
			return ""
		}
		return link(firstNonEmpty(PlainText(c.Caption), c.Name, u), u)
	case "bookmark", "embed", "link_preview":
		if c.URL == "" {
			return ""
		}
		return link(firstNonEmpty(PlainText(c.Caption), c.URL), c.URL)
	case "table":
		return table(blk.Children)
	case "column_list", "column", "synced_block":
		return Blocks(blk.Children)
	default:
		return ""
	}
}

func heading(level int, text string) string {
	if text == "" {
		return ""
	}
	return strings.Repeat("#", level) + " " + text
}

func withChildren(text string, children []notion.Block) string {
	inner := Blocks(children)
	switch {
	case inner == "":
		return text
	case text == "":
		return inner
	default:
		return text + "\n\n" + inner
	}
}

func listItem(marker, text string, children []notion.Block) string {
	s := marker + text
	if inner := Blocks(children); inner != "" {
		s += "\n" + indent(inner, "    ")
	}
	return s
}

func quote(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	return strings.Join(lines, "\n")
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func table(rows []notion.Block) string {
	var lines []string
	for i, row := range rows {
		if row.Type != "table_row" {
			continue
		}
		cells := make([]string, len(row.Content.Cells))
		for j, cell := range row.Content.Cells {
			cells[j] = strings.ReplaceAll(RichText(cell), "|", `\|`)
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
		if i == 0 {
			sep := make([]string, len(cells))
			for j := range sep {
				sep[j] = "---"
			}
			lines = append(lines, "| "+strings.Join(sep, " | ")+" |")
		}
	}
	return strings.Join(lines, "\n")
}

func link(text, url string) string {
	return "[" + text + "](" + url + ")"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
