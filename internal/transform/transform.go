// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transform rewrites rendered Markdown for Jekyll: code fences are
// wrapped in Liquid raw tags and headings are demoted one level, leaving the
// raw regions untouched.
package transform

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	rawOpen  = "{% raw %}"
	rawClose = "{% endraw %}"
)

var (
	fenceRe   = regexp.MustCompile("```([\\s\\S]*?)```")
	rawRe     = regexp.MustCompile(`\{% raw %\}[\s\S]*?\{% endraw %\}`)
	headingRe = regexp.MustCompile(`(?m)^#[^\n]+$`)

	// Tokens use NUL delimiters, which never occur in rendered Markdown.
	tokenRe = regexp.MustCompile("\x00raw:(\\d+)\x00")
)

// Apply escapes code fences, then demotes headings outside the escaped regions.
func Apply(body string) string {
	return DemoteHeadings(EscapeCodeBlocks(body))
}

// EscapeCodeBlocks wraps every ```-delimited span in {% raw %} ... {% endraw %}
// so Liquid leaves the code alone. Spans already inside a raw region are not
// wrapped again, which makes the function idempotent.
func EscapeCodeBlocks(body string) string {
	return outsideRaw(body, func(s string) string {
		return fenceRe.ReplaceAllStringFunc(s, func(fence string) string {
			return rawOpen + "\n" + fence + "\n" + rawClose
		})
	})
}

// DemoteHeadings adds one # to every line that starts with #, so the post's
// top-level headings sit below the title the theme renders. Lines inside
// raw regions are never modified.
func DemoteHeadings(body string) string {
	return outsideRaw(body, func(s string) string {
		return headingRe.ReplaceAllStringFunc(s, func(line string) string {
			return "#" + line
		})
	})
}

// outsideRaw applies fn to body with every raw region swapped for an opaque
// token, then restores the regions verbatim in a single pass.
func outsideRaw(body string, fn func(string) string) string {
	var regions []string
	masked := rawRe.ReplaceAllStringFunc(body, func(region string) string {
		regions = append(regions, region)
		return token(len(regions) - 1)
	})

	out := fn(masked)
	if len(regions) == 0 {
		return out
	}

	return tokenRe.ReplaceAllStringFunc(out, func(tok string) string {
		i, err := strconv.Atoi(strings.Trim(tok[len("\x00raw:"):], "\x00"))
		if err != nil || i >= len(regions) {
			return tok
		}
		return regions[i]
	})
}

func token(i int) string {
	return "\x00raw:" + strconv.Itoa(i) + "\x00"
}
