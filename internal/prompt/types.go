package prompt

import "unicode/utf16"

// RequestType is the closed set of authoring requests.
type RequestType string

const (
	Inline  RequestType = "inline"
	Fix     RequestType = "fix"
	General RequestType = "general"
	Model   RequestType = "model"
	Grammar RequestType = "grammar"
)

// ParseRequestType validates a wire value.
func ParseRequestType(s string) (RequestType, error) {
	switch rt := RequestType(s); rt {
	case Inline, Fix, General, Model, Grammar:
		return rt, nil
	default:
		return "", &UnsupportedRequestTypeError{RequestType: s}
	}
}

// Language is the target language of the main document.
type Language string

const (
	Concerto Language = "concerto"
	Generic  Language = "generic"
)

// ParseLanguage maps a wire value to a Language. Anything other than the
// modeling language is generic.
func ParseLanguage(s string) Language {
	if Language(s) == Concerto || s == "cto" {
		return Concerto
	}
	return Generic
}

// PromptConfig describes a single request.
type PromptConfig struct {
	RequestType RequestType `json:"request_type"`
	Language    Language    `json:"language,omitempty"`
	Instruction string      `json:"instruction,omitempty"`
}

// Document is an editor buffer or auxiliary file. CursorPosition counts
// UTF-16 code units from the start of Content.
type Document struct {
	FileName       string `json:"file_name,omitempty"`
	Content        string `json:"content"`
	CursorPosition *int   `json:"cursor_position,omitempty"`
}

// Documents is the main document plus named context documents.
type Documents struct {
	Main    Document   `json:"main"`
	Context []Document `json:"context,omitempty"`
}

// Find returns the first context document named fileName.
func (d Documents) Find(fileName string) (Document, bool) {
	for _, doc := range d.Context {
		if doc.FileName == fileName {
			return doc, true
		}
	}
	return Document{}, false
}

// Split divides the main content at the cursor. The cursor counts UTF-16
// code units, as editor offsets do. A missing cursor means the end of the
// content; out-of-range positions are clamped, and a cursor inside a
// surrogate pair splits after that character.
func (d Document) Split() (before, after string) {
	if d.CursorPosition == nil {
		return d.Content, ""
	}
	pos := max(*d.CursorPosition, 0)
	units := 0
	for i, r := range d.Content {
		if units >= pos {
			return d.Content[:i], d.Content[i:]
		}
		units += utf16.RuneLen(r)
	}
	return d.Content, ""
}
