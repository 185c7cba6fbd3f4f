package queue

import (
	"encoding/json"
	"strings"
)

// Metadata captures the publishing details carried alongside a queue item.
type Metadata struct {
	TitleValue  string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	CategoryID  string   `json:"category_id,omitempty"`
	Privacy     string   `json:"privacy,omitempty"`
}

// MetadataFromJSON builds metadata from stored JSON, falling back to basic inference.
func MetadataFromJSON(data, fallbackTitle string) Metadata {
	meta := Metadata{TitleValue: fallbackTitle}
	_ = json.Unmarshal([]byte(data), &meta)
	if strings.TrimSpace(meta.TitleValue) == "" {
		meta.TitleValue = fallbackTitle
	}
	return meta
}

// NewBasicMetadata constructs a metadata record using the provided title.
func NewBasicMetadata(title string) Metadata {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Daily Sermon"
	}
	return Metadata{TitleValue: title}
}

// Title returns the display title, never empty for valid records.
func (m Metadata) Title() string { return m.TitleValue }

// ToJSON serializes metadata for storage in the queue.
func (m Metadata) ToJSON() string {
	data, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(data)
}
