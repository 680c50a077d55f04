// Package notes models meeting-note documents and flattens their rich-text
// content into plain text suitable for prompting.
package notes

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/spf13/cast"
)

// Node is one node of a rich-text document tree.
type Node struct {
	Type    string
	Text    string
	Attrs   map[string]any
	Content []Node
}

type renderFunc func(n Node, depth int) string

// renderers maps node types to their rendering. Types not listed are
// rendered transparently by RenderNode.
var renderers map[string]renderFunc

func init() {
	renderers = map[string]renderFunc{
		"text":         renderText,
		"heading":      renderHeading,
		"paragraph":    renderParagraph,
		"bulletList":   renderList,
		"bullet_list":  renderList,
		"orderedList":  renderList,
		"ordered_list": renderList,
		"listItem":     renderListItem,
		"list_item":    renderListItem,
		"blockquote":   renderBlockquote,
	}
}

// ExtractText flattens a raw content value. Strings are returned verbatim,
// objects are rendered as a node tree, absent values yield "" and anything
// else is returned as its JSON text.
func ExtractText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return string(trimmed)
	}

	switch c := v.(type) {
	case string:
		return c
	case map[string]any:
		return RenderNode(ParseNode(c), 0)
	default:
		return string(trimmed)
	}
}

// ParseNode converts a decoded JSON value into a Node. Non-object values
// become an empty node.
func ParseNode(v any) Node {
	m, ok := v.(map[string]any)
	if !ok {
		return Node{}
	}

	n := Node{
		Type: cast.ToString(m["type"]),
		Text: cast.ToString(m["text"]),
	}
	if attrs, ok := m["attrs"].(map[string]any); ok {
		n.Attrs = attrs
	}
	if children, ok := m["content"].([]any); ok {
		n.Content = make([]Node, 0, len(children))
		for _, child := range children {
			n.Content = append(n.Content, ParseNode(child))
		}
	}
	return n
}

// RenderNode renders n at the given list nesting depth.
func RenderNode(n Node, depth int) string {
	if render, ok := renderers[n.Type]; ok {
		return render(n, depth)
	}
	return renderChildren(n, depth)
}

// HeadingLevel returns attrs.level, or 1 when missing or not a positive number.
func (n Node) HeadingLevel() int {
	level, err := cast.ToIntE(n.Attrs["level"])
	if err != nil || level < 1 {
		return 1
	}
	return level
}

func renderChildren(n Node, depth int) string {
	var b strings.Builder
	for _, child := range n.Content {
		b.WriteString(RenderNode(child, depth))
	}
	return b.String()
}

func renderText(n Node, _ int) string {
	return n.Text
}

func renderHeading(n Node, depth int) string {
	return "\n" + strings.Repeat("#", n.HeadingLevel()) + " " + renderChildren(n, depth+1) + "\n"
}

func renderParagraph(n Node, depth int) string {
	text := renderChildren(n, depth+1)
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text + "\n"
}

// Items carry their own marker, so a list only adds a nesting level.
func renderList(n Node, depth int) string {
	return renderChildren(n, depth+1)
}

func renderListItem(n Node, depth int) string {
	return strings.Repeat("  ", depth) + "- " + strings.TrimSpace(renderChildren(n, depth+1)) + "\n"
}

func renderBlockquote(n Node, depth int) string {
	text := strings.TrimSpace(renderChildren(n, depth+1))
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("> ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
