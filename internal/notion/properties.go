// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

// The accessors below are total: a missing property, or one of another kind,
// yields the zero value and ok == false instead of an error.

func (p Properties) lookup(name, kind string) (Property, bool) {
	if name == "" {
		return Property{}, false
	}
	prop, ok := p[name]
	if !ok || prop.Type != kind {
		return Property{}, false
	}
	return prop, true
}

// FirstTitle returns the plain text of the first run of a title property.
func (p Properties) FirstTitle(name string) string {
	prop, ok := p.lookup(name, KindTitle)
	if !ok || len(prop.Title) == 0 {
		return ""
	}
	return prop.Title[0].PlainText
}

// FirstText returns the plain text of the first run of a rich_text property.
func (p Properties) FirstText(name string) string {
	prop, ok := p.lookup(name, KindRichText)
	if !ok || len(prop.RichText) == 0 {
		return ""
	}
	return prop.RichText[0].PlainText
}

// DateStart returns the start value of a date property.
func (p Properties) DateStart(name string) (string, bool) {
	prop, ok := p.lookup(name, KindDate)
	if !ok || prop.Date == nil || prop.Date.Start == "" {
		return "", false
	}
	return prop.Date.Start, true
}

// Names returns the non-empty option names of a multi_select property in
// source order. The result is never nil.
func (p Properties) Names(name string) []string {
	names := []string{}
	prop, ok := p.lookup(name, KindMultiSelect)
	if !ok {
		return names
	}
	for _, opt := range prop.MultiSelect {
		if opt.Name != "" {
			names = append(names, opt.Name)
		}
	}
	return names
}

// Checkbox returns the value of a checkbox property and whether one was set.
func (p Properties) Checkbox(name string) (value bool, ok bool) {
	prop, found := p.lookup(name, KindCheckbox)
	if !found || prop.Checkbox == nil {
		return false, false
	}
	return *prop.Checkbox, true
}

// FirstFileURL returns the location of the first entry of a files property.
func (p Properties) FirstFileURL(name string) string {
	prop, ok := p.lookup(name, KindFiles)
	if !ok || len(prop.Files) == 0 {
		return ""
	}
	return prop.Files[0].Location()
}
