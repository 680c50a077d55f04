package notes

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Document is one meeting-note record as returned by the notes API.
type Document struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	CreatedAt       any             `json:"created_at,omitempty"`
	CreatedAtCamel  any             `json:"createdAt,omitempty"`
	Content         json.RawMessage `json:"content,omitempty"`
	Notes           json.RawMessage `json:"notes,omitempty"`
	LastViewedPanel *Panel          `json:"last_viewed_panel,omitempty"`
	Participants    []Participant   `json:"participants,omitempty"`
	Transcript      []Utterance     `json:"-"`
}

// Panel is the rendered note panel the API attaches to batch responses.
type Panel struct {
	Content         json.RawMessage `json:"content,omitempty"`
	OriginalContent string          `json:"original_content,omitempty"`
}

// Participant is either a {name, email} object or a bare string.
type Participant struct {
	Name  string
	Email string
	Raw   string
}

// UnmarshalJSON accepts both participant shapes.
func (p *Participant) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case map[string]any:
		p.Name = cast.ToString(t["name"])
		p.Email = cast.ToString(t["email"])
	case nil:
	default:
		p.Raw = cast.ToString(t)
	}
	return nil
}

// MarshalJSON writes the participant back in the shape it arrived in.
func (p Participant) MarshalJSON() ([]byte, error) {
	if p.Raw != "" {
		return json.Marshal(p.Raw)
	}
	return json.Marshal(map[string]string{"name": p.Name, "email": p.Email})
}

// DisplayName falls back from name to email to "Unknown".
func (p Participant) DisplayName() string {
	switch {
	case p.Raw != "":
		return p.Raw
	case p.Name != "":
		return p.Name
	case p.Email != "":
		return p.Email
	}
	return "Unknown"
}

// Timestamp returns the raw creation timestamp, whichever key carried it.
// Values that cannot be read as a string count as missing.
func (d *Document) Timestamp() string {
	for _, v := range []any{d.CreatedAt, d.CreatedAtCamel} {
		if ts, err := cast.ToStringE(v); err == nil && ts != "" {
			return ts
		}
	}
	return ""
}

// Date is the YYYY-MM-DD prefix of the creation timestamp, or "".
func (d *Document) Date() string {
	ts := d.Timestamp()
	if len(ts) > 10 {
		return ts[:10]
	}
	return ts
}

// DisplayTitle returns the title or the given fallback when it is blank.
func (d *Document) DisplayTitle(fallback string) string {
	if strings.TrimSpace(d.Title) == "" {
		return fallback
	}
	return d.Title
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Created parses the creation timestamp. Timestamps without a zone are
// read as UTC.
func (d *Document) Created() (time.Time, bool) {
	ts := strings.TrimSpace(d.Timestamp())
	if ts == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Text returns the readable body of the document. The content field wins,
// then the legacy notes field, then the last viewed panel.
func (d *Document) Text() string {
	if text := ExtractText(d.Content); text != "" {
		return text
	}
	if text := ExtractText(d.Notes); text != "" {
		return text
	}
	if d.LastViewedPanel != nil {
		if text := ExtractText(d.LastViewedPanel.Content); text != "" {
			return text
		}
		return HTMLText(d.LastViewedPanel.OriginalContent)
	}
	return ""
}
