package notes

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDecodeDocument(t *testing.T) {
	data := []byte(`{
		"id": "doc-1",
		"title": "Acme sync",
		"createdAt": "2026-02-10T15:30:00.123Z",
		"content": {"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"Body"}]}]},
		"participants": [{"name":"Ada","email":"ada@acme.io"},{"email":"bob@acme.io"},{},"Carol"]
	}`)

	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.Timestamp() != "2026-02-10T15:30:00.123Z" {
		t.Errorf("expected camelCase timestamp fallback, got %q", d.Timestamp())
	}
	if d.Date() != "2026-02-10" {
		t.Errorf("expected date 2026-02-10, got %q", d.Date())
	}
	if d.Text() != "Body\n" {
		t.Errorf("expected extracted body, got %q", d.Text())
	}

	var names []string
	for _, p := range d.Participants {
		names = append(names, p.DisplayName())
	}
	if got := strings.Join(names, ", "); got != "Ada, bob@acme.io, Unknown, Carol" {
		t.Errorf("unexpected participant names: %q", got)
	}
}

func TestCreatedParsing(t *testing.T) {
	tests := []struct {
		ts   string
		want time.Time
		ok   bool
	}{
		{"2026-02-09T10:00:00Z", time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC), true},
		{"2026-02-16T00:00Z", time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC), true},
		{"2026-02-09T12:00:00+02:00", time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC), true},
		{"2026-02-09T10:00:00.5", time.Date(2026, 2, 9, 10, 0, 0, 500000000, time.UTC), true},
		{"2026-02-09", time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"last tuesday", time.Time{}, false},
	}
	for _, tt := range tests {
		d := Document{CreatedAt: tt.ts}
		got, ok := d.Created()
		if ok != tt.ok {
			t.Errorf("%q: expected ok=%v, got %v", tt.ts, tt.ok, ok)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("%q: expected %v, got %v", tt.ts, tt.want, got)
		}
	}
}

func TestNonStringTimestampIsMissing(t *testing.T) {
	var docs []Document
	data := []byte(`[
		{"id":"num","created_at":1770000000},
		{"id":"obj","created_at":{"seconds":1},"createdAt":"2026-02-10T10:00:00Z"},
		{"id":"null","created_at":null}
	]`)
	if err := json.Unmarshal(data, &docs); err != nil {
		t.Fatalf("expected tolerant decoding, got %v", err)
	}

	if _, ok := docs[0].Created(); ok {
		t.Errorf("expected numeric timestamp to be unparsable, got %q", docs[0].Timestamp())
	}
	if docs[1].Timestamp() != "2026-02-10T10:00:00Z" {
		t.Errorf("expected camelCase fallback past an object value, got %q", docs[1].Timestamp())
	}
	if docs[2].Timestamp() != "" || docs[2].Date() != "" {
		t.Errorf("expected null timestamp to be missing, got %q", docs[2].Timestamp())
	}
}

func TestTextFallbacks(t *testing.T) {
	d := Document{Notes: json.RawMessage(`"from notes"`)}
	if d.Text() != "from notes" {
		t.Errorf("expected notes fallback, got %q", d.Text())
	}

	d = Document{Content: json.RawMessage(`""`), LastViewedPanel: &Panel{
		OriginalContent: "<h2>Agenda</h2><p>Pricing  questions</p><ul><li>Fees</li></ul>",
	}}
	want := "\n## Agenda\nPricing questions\n  - Fees\n"
	if got := d.Text(); got != want {
		t.Errorf("expected panel HTML fallback %q, got %q", want, got)
	}

	d = Document{}
	if d.Text() != "" {
		t.Errorf("expected empty text, got %q", d.Text())
	}
}

func TestHTMLText(t *testing.T) {
	html := `<blockquote><p>One</p><p>Two</p></blockquote>
<ul><li><p>Outer</p><ul><li>Inner</li></ul></li></ul>`
	want := "> One\n> Two\n  - Outer\n    - Inner\n"
	if got := HTMLText(html); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if got := HTMLText("<blockquote><ul><li>a</li></ul></blockquote>"); got != "> a\n" {
		t.Errorf("expected quoted list once, got %q", got)
	}

	if got := HTMLText("<blockquote><p>x</p><blockquote><p>y</p></blockquote></blockquote>"); strings.Count(got, "y") != 1 {
		t.Errorf("expected nested quote text once, got %q", got)
	}

	if got := HTMLText("just words"); got != "just words" {
		t.Errorf("expected bare text fallback, got %q", got)
	}
}

func TestParticipantRoundTrip(t *testing.T) {
	in := []Participant{{Name: "Ada", Email: "ada@acme.io"}, {Raw: "Carol"}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out []Participant
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].DisplayName() != "Ada" || out[1].DisplayName() != "Carol" {
		t.Errorf("unexpected participants after round trip: %+v", out)
	}
}
