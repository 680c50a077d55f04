package notes

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockSelector = "h1,h2,h3,h4,h5,h6,p,li,blockquote"

// HTMLText flattens an HTML note panel using the same markers as the node
// renderer: "#" headings, indented "- " list items and "> " quotes.
func HTMLText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	var b strings.Builder
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// Anything inside a quote is emitted by the quote; blocks inside an
		// item by the item. Nested items keep their own line.
		if s.ParentsFiltered("blockquote").Length() > 0 {
			return
		}
		if s.ParentsFiltered("li").Length() > 0 && goquery.NodeName(s) != "li" {
			return
		}

		switch name := goquery.NodeName(s); name {
		case "li":
			item := s.Clone()
			item.Find("ul,ol").Remove()
			depth := s.ParentsFiltered("ul,ol").Length()
			b.WriteString(strings.Repeat("  ", depth) + "- " + collapse(item.Text()) + "\n")
		case "blockquote":
			lines := []string{collapse(s.Text())}
			if paras := s.Find("p"); paras.Length() > 0 {
				lines = paras.Map(func(_ int, p *goquery.Selection) string { return collapse(p.Text()) })
			}
			for _, line := range lines {
				b.WriteString("> " + line + "\n")
			}
		case "p":
			if text := collapse(s.Text()); text != "" {
				b.WriteString(text + "\n")
			}
		default:
			level := int(name[1] - '0')
			b.WriteString("\n" + strings.Repeat("#", level) + " " + collapse(s.Text()) + "\n")
		}
	})

	if b.Len() == 0 {
		return collapse(doc.Text())
	}
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
