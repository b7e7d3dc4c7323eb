// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

import (
	"encoding/json"
	"time"
)

// Property kinds read by the exporter. Other kinds decode with only Type set.
const (
	KindTitle       = "title"
	KindRichText    = "rich_text"
	KindDate        = "date"
	KindMultiSelect = "multi_select"
	KindCheckbox    = "checkbox"
	KindFiles       = "files"
)

// Page is one database row.
type Page struct {
	ID          string     `json:"id"`
	CreatedTime time.Time  `json:"created_time"`
	URL         string     `json:"url"`
	Properties  Properties `json:"properties"`
}

// Properties is the named property bag of a page.
type Properties map[string]Property

// Property holds one typed property value. Only the field matching Type is
// populated; a Checkbox of nil means the API sent no value.
type Property struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	Date        *DateValue     `json:"date,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	Checkbox    *bool          `json:"checkbox,omitempty"`
	Files       []File         `json:"files,omitempty"`
}

// DateValue is the payload of a date property.
type DateValue struct {
	Start    string  `json:"start"`
	End      *string `json:"end"`
	TimeZone *string `json:"time_zone"`
}

// SelectOption is one chosen option of a select or multi-select property.
type SelectOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// File is an entry of a files property, or the media payload of an image,
// video, file or pdf block. Notion-hosted files carry File, linked files
// carry External.
type File struct {
	Name     string     `json:"name,omitempty"`
	Type     string     `json:"type"`
	File     *FileURL   `json:"file,omitempty"`
	External *FileURL   `json:"external,omitempty"`
	Caption  []RichText `json:"caption,omitempty"`
}

// FileURL holds a file location.
type FileURL struct {
	URL        string `json:"url"`
	ExpiryTime string `json:"expiry_time,omitempty"`
}

// Location returns the Notion-hosted URL, falling back to the external one.
func (f File) Location() string {
	if f.File != nil && f.File.URL != "" {
		return f.File.URL
	}
	if f.External != nil {
		return f.External.URL
	}
	return ""
}

// RichText is one run of formatted text.
type RichText struct {
	Type        string       `json:"type"`
	PlainText   string       `json:"plain_text"`
	Href        string       `json:"href,omitempty"`
	Annotations Annotations  `json:"annotations"`
	Text        *TextContent `json:"text,omitempty"`
	Equation    *Equation    `json:"equation,omitempty"`
}

// TextContent is the payload of a text run.
type TextContent struct {
	Content string `json:"content"`
	Link    *Link  `json:"link"`
}

// Link is a hyperlink target.
type Link struct {
	URL string `json:"url"`
}

// Equation is a KaTeX expression, inline or as a block.
type Equation struct {
	Expression string `json:"expression"`
}

// Annotations are the styles applied to a rich text run.
type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color"`
}

// Block is one node of a page's content tree. The payload Notion nests under
// a key named after the block type is decoded into Content.
type Block struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	HasChildren bool         `json:"has_children"`
	Content     BlockContent `json:"-"`

	// Children is filled by the renderer, not by the API.
	Children []Block `json:"-"`
}

// BlockContent is the union of the payload fields of the block types the
// renderer understands.
type BlockContent struct {
	RichText        []RichText   `json:"rich_text"`
	Checked         bool         `json:"checked"`
	Language        string       `json:"language"`
	Caption         []RichText   `json:"caption"`
	Expression      string       `json:"expression"`
	URL             string       `json:"url"`
	Title           string       `json:"title"`
	Icon            *Icon        `json:"icon"`
	Cells           [][]RichText `json:"cells"`
	TableWidth      int          `json:"table_width"`
	HasColumnHeader bool         `json:"has_column_header"`

	// Media blocks (image, video, file, pdf).
	Name     string   `json:"name"`
	File     *FileURL `json:"file"`
	External *FileURL `json:"external"`
}

// MediaURL returns the location of a media block.
func (c BlockContent) MediaURL() string {
	return File{File: c.File, External: c.External}.Location()
}

// Icon is a callout or page icon.
type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

// UnmarshalJSON decodes the common block fields and the payload stored under
// the key named by the block type.
func (b *Block) UnmarshalJSON(data []byte) error {
	type plain Block
	var head plain
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	*b = Block(head)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	payload, ok := raw[b.Type]
	if !ok || len(payload) == 0 || string(payload) == "null" {
		return nil
	}
	return json.Unmarshal(payload, &b.Content)
}
