package document

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SiteType values used by the aggregator client in the `type` field.
const (
	// SiteTypeXML is a legacy XML/RSS collection endpoint
	SiteTypeXML = 0

	// SiteTypeCMS is a JSON collection API endpoint
	SiteTypeCMS = 1

	// SiteTypeSpider is a plugin-backed spider entry
	SiteTypeSpider = 3

	// SiteTypeXPath is an xpath-driven scraper entry
	SiteTypeXPath = 4
)

// Document is one channel configuration document as fetched from a source.
// It is immutable after parsing; the aggregator works on copies.
type Document struct {
	Spider    string      `json:"spider,omitempty"`
	Wallpaper string      `json:"wallpaper,omitempty"`
	Sites     []SiteEntry `json:"sites"`
	Parses    []Parser    `json:"parses"`
	Lives     []LiveEntry `json:"lives"`
}

// SiteEntry is one playable source declared by a document.
type SiteEntry struct {
	Key         string          `json:"key"`
	Name        string          `json:"name"`
	Type        int             `json:"type"`
	API         string          `json:"api"`
	Ext         json.RawMessage `json:"ext,omitempty"`
	Jar         string          `json:"jar,omitempty"`
	Searchable  int             `json:"searchable,omitempty"`
	QuickSearch int             `json:"quickSearch,omitempty"`
	Filterable  int             `json:"filterable,omitempty"`
	Changeable  int             `json:"changeable,omitempty"`
}

// Parser is a play-URL resolver entry.
type Parser struct {
	Name string          `json:"name"`
	Type int             `json:"type"`
	URL  string          `json:"url"`
	Ext  json.RawMessage `json:"ext,omitempty"`
}

// LiveEntry is one live channel group entry.
type LiveEntry struct {
	Name string          `json:"name,omitempty"`
	Type int             `json:"type,omitempty"`
	URL  string          `json:"url"`
	UA   string          `json:"ua,omitempty"`
	EPG  string          `json:"epg,omitempty"`
	Logo string          `json:"logo,omitempty"`
	Ext  json.RawMessage `json:"ext,omitempty"`
}

// Parse decodes raw document bytes after validating their shape against the
// document schema.
func Parse(data []byte) (*Document, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	return &doc, nil
}

// ExtString returns the ext field when it is a plain JSON string, and ""
// otherwise. Object-valued ext payloads are passed through untouched.
func (s *SiteEntry) ExtString() string {
	if len(s.Ext) == 0 {
		return ""
	}
	var str string
	if err := json.Unmarshal(s.Ext, &str); err != nil {
		return ""
	}
	return str
}

// SetExtString replaces the ext field with a JSON string value.
func (s *SiteEntry) SetExtString(v string) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.Ext = raw
}

// StripChecksumSuffix removes the `;md5;<hex>` suffix some documents append
// to jar and spider references before the URL can be fetched.
func StripChecksumSuffix(ref string) string {
	if idx := strings.Index(ref, ";md5;"); idx >= 0 {
		return ref[:idx]
	}
	return ref
}
