package scriptgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Section is one narrated passage of a sermon script. ImageQuery describes the
// background imagery the renderer (or the Canva editor) should place behind it.
type Section struct {
	Heading    string `json:"heading,omitempty"`
	Text       string `json:"text"`
	ImageQuery string `json:"image_query,omitempty"`
}

// Script is the structured sermon document produced by the model and consumed
// by every later stage.
type Script struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags,omitempty"`
	Sections    []Section `json:"sections"`
}

// fallbackTitle names plain-text scripts that carry no "Title:" line.
const fallbackTitle = "Daily Sermon"

// scriptFromPlainText recovers a script from a plain-text completion. A
// leading "Title:" line becomes the title and the remainder the single
// section body. Payloads that look like (broken) JSON are not recovered.
func scriptFromPlainText(content string) (*Script, bool) {
	text := strings.TrimSpace(content)
	if text == "" || text[0] == '{' || text[0] == '[' {
		return nil, false
	}
	title := fallbackTitle
	body := text
	if strings.HasPrefix(text, "Title:") {
		line, rest, _ := strings.Cut(text, "\n")
		if heading := strings.TrimSpace(strings.TrimPrefix(line, "Title:")); heading != "" {
			title = heading
		}
		body = strings.TrimSpace(rest)
	}
	if body == "" {
		return nil, false
	}
	return &Script{Title: title, Sections: []Section{{Text: body}}}, true
}

// Validate reports whether the script is complete enough to narrate.
func (s *Script) Validate() error {
	if s == nil {
		return errors.New("script is nil")
	}
	if strings.TrimSpace(s.Title) == "" {
		return errors.New("script title is empty")
	}
	if len(s.Sections) == 0 {
		return errors.New("script has no sections")
	}
	for i, section := range s.Sections {
		if strings.TrimSpace(section.Text) == "" {
			return fmt.Errorf("script section %d has no text", i+1)
		}
	}
	return nil
}

// FullText joins all section texts into the narration input.
func (s *Script) FullText() string {
	parts := make([]string, 0, len(s.Sections))
	for _, section := range s.Sections {
		if text := strings.TrimSpace(section.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// WordCount returns the total words across all sections.
func (s *Script) WordCount() int {
	count := 0
	for _, section := range s.Sections {
		count += len(strings.Fields(section.Text))
	}
	return count
}

// Save writes the script as indented JSON.
func (s *Script) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode script: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write script: %w", err)
	}
	return nil
}

// LoadScript reads and validates a script document from disk.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var script Script
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := script.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return &script, nil
}
