package notes

import (
	"encoding/json"
	"strings"
	"testing"
)

func textNode(s string) Node { return Node{Type: "text", Text: s} }

func para(s string) Node { return Node{Type: "paragraph", Content: []Node{textNode(s)}} }

func TestExtractPlainString(t *testing.T) {
	for _, s := range []string{"", "hello", "# Title\n- item\n\n  spaced  "} {
		raw, _ := json.Marshal(s)
		if got := ExtractText(raw); got != s {
			t.Errorf("expected %q, got %q", s, got)
		}
	}
}

func TestExtractHeadingAndParagraph(t *testing.T) {
	raw := json.RawMessage(`{"type":"doc","content":[
		{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Intro"}]},
		{"type":"paragraph","content":[{"type":"text","text":"Hello"}]}
	]}`)
	if got := ExtractText(raw); got != "\n## Intro\nHello\n" {
		t.Errorf("unexpected extraction: %q", got)
	}
}

func TestHeadingLevels(t *testing.T) {
	tests := []struct {
		attrs map[string]any
		want  string
	}{
		{map[string]any{"level": float64(1)}, "# "},
		{map[string]any{"level": float64(4)}, "#### "},
		{map[string]any{"level": "3"}, "### "},
		{nil, "# "},
		{map[string]any{"level": "big"}, "# "},
	}
	for _, tt := range tests {
		n := Node{Type: "heading", Attrs: tt.attrs, Content: []Node{textNode("T")}}
		got := strings.TrimPrefix(RenderNode(n, 0), "\n")
		if !strings.HasPrefix(got, tt.want) || strings.HasPrefix(got, tt.want+"#") {
			t.Errorf("attrs %v: expected prefix %q, got %q", tt.attrs, tt.want, got)
		}
	}
}

func TestListItemIndent(t *testing.T) {
	for depth := 0; depth < 4; depth++ {
		got := RenderNode(Node{Type: "listItem", Content: []Node{para("x")}}, depth)
		want := strings.Repeat(" ", 2*depth) + "- x\n"
		if got != want {
			t.Errorf("depth %d: expected %q, got %q", depth, want, got)
		}
	}
}

func TestNestedLists(t *testing.T) {
	doc := Node{Type: "doc", Content: []Node{
		{Type: "bulletList", Content: []Node{
			{Type: "listItem", Content: []Node{
				para("a"),
				{Type: "bullet_list", Content: []Node{
					{Type: "list_item", Content: []Node{para("b")}},
				}},
			}},
			{Type: "listItem", Content: []Node{para("c")}},
		}},
	}}

	want := "  - a\n      - b\n  - c\n"
	if got := RenderNode(doc, 0); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEmptyParagraphDropped(t *testing.T) {
	doc := Node{Type: "doc", Content: []Node{
		para("   "),
		{Type: "paragraph"},
		para("kept"),
	}}
	if got := RenderNode(doc, 0); got != "kept\n" {
		t.Errorf("expected only the non-empty paragraph, got %q", got)
	}
}

func TestUnknownNodeIsTransparent(t *testing.T) {
	raw := json.RawMessage(`{"type":"foo","content":[{"type":"text","text":"x"}]}`)
	if got := ExtractText(raw); got != "x" {
		t.Errorf("expected %q, got %q", "x", got)
	}

	// Unknown wrappers keep the depth of their parent.
	item := Node{Type: "listItem", Content: []Node{para("y")}}
	wrapped := Node{Type: "callout", Content: []Node{item}}
	if got := RenderNode(wrapped, 2); got != "    - y\n" {
		t.Errorf("expected depth to pass through unchanged, got %q", got)
	}
}

func TestBlockquote(t *testing.T) {
	n := Node{Type: "blockquote", Content: []Node{para("first"), para("second")}}
	got := RenderNode(n, 0)
	if got != "> first\n> second\n" {
		t.Errorf("unexpected blockquote rendering: %q", got)
	}
	for _, line := range strings.Split(strings.TrimSuffix(got, "\n"), "\n") {
		if !strings.HasPrefix(line, "> ") {
			t.Errorf("line %q missing quote marker", line)
		}
	}
}

func TestExtractOddShapes(t *testing.T) {
	tests := []struct {
		raw  json.RawMessage
		want string
	}{
		{nil, ""},
		{json.RawMessage(`null`), ""},
		{json.RawMessage(`[1,2]`), "[1,2]"},
		{json.RawMessage(`42`), "42"},
		{json.RawMessage(`{}`), ""},
		{json.RawMessage(`{"type":"doc","content":"not a list"}`), ""},
		{json.RawMessage(`{"type":"doc","content":[7,{"type":"text","text":"z"}]}`), "z"},
	}
	for _, tt := range tests {
		if got := ExtractText(tt.raw); got != tt.want {
			t.Errorf("ExtractText(%s): expected %q, got %q", tt.raw, tt.want, got)
		}
	}
}

func TestNodeWithoutContentKey(t *testing.T) {
	n := ParseNode(map[string]any{"type": "paragraph"})
	if len(n.Content) != 0 {
		t.Errorf("expected no children, got %d", len(n.Content))
	}
	if got := RenderNode(n, 0); got != "" {
		t.Errorf("expected empty rendering, got %q", got)
	}
}
