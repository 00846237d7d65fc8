// Package extractor converts raw HTML into the compact tagged-text form fed to
// report synthesis. Text is passed through unescaped. It locates the primary content region by a fixed selector
// priority and emits headings, paragraphs, and lists as minimal markup.
package extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// RegionSelectors are tried in order; the first one that is present and
// formats to non-empty output wins. body is the fallback.
var RegionSelectors = []string{"main", "article", "#content", ".content", ".main"}

const fallbackRegion = "body"

// noiseSelectors never contribute readable text.
const noiseSelectors = "script, style, noscript, template"

// Page is the extractor output before truncation.
type Page struct {
	Title       string
	Description string
	// Blocks are the formatted units in emission order: headings, then
	// paragraphs, then lists, or a single raw-text block.
	Blocks []string
}

// Content joins the blocks without a length cap.
func (p Page) Content() string {
	return strings.Join(p.Blocks, "\n")
}

// Extract parses html and returns its title, description, and content blocks.
// It never fails: unparsable or empty input yields an empty Page.
func Extract(html string) Page {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Page{}
	}

	page := Page{
		Title: collapse(doc.Find("title").First().Text()),
	}
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		page.Description = strings.TrimSpace(desc)
	}

	doc.Find(noiseSelectors).Remove()
	page.Blocks = selectRegion(doc)
	return page
}

func selectRegion(doc *goquery.Document) []string {
	for _, selector := range RegionSelectors {
		region := doc.Find(selector)
		if region.Length() == 0 {
			continue
		}
		if blocks := formatRegion(region); len(blocks) > 0 {
			return blocks
		}
	}
	return formatRegion(doc.Find(fallbackRegion))
}

// formatRegion emits every heading, then every non-empty paragraph, then every
// list. The grouping is fixed and does not follow document order across groups.
func formatRegion(region *goquery.Selection) []string {
	var blocks []string
	for _, heading := range region.Find("h1, h2, h3, h4, h5, h6").EachIter() {
		blocks = append(blocks, wrap(goquery.NodeName(heading), collapse(heading.Text())))
	}
	for _, para := range region.Find("p").EachIter() {
		if text := collapse(para.Text()); text != "" {
			blocks = append(blocks, wrap("p", text))
		}
	}
	for _, list := range region.Find("ul, ol").EachIter() {
		blocks = append(blocks, formatList(list))
	}
	if len(blocks) > 0 {
		return blocks
	}
	if text := collapse(region.Text()); text != "" {
		return []string{text}
	}
	return nil
}

func formatList(list *goquery.Selection) string {
	tag := goquery.NodeName(list)
	var b strings.Builder
	b.WriteString("<" + tag + ">\n")
	for _, item := range list.Find("li").EachIter() {
		b.WriteString("  ")
		b.WriteString(wrap("li", collapse(item.Text())))
		b.WriteString("\n")
	}
	b.WriteString("</" + tag + ">")
	return b.String()
}

func wrap(tag, text string) string {
	return "<" + tag + ">" + text + "</" + tag + ">"
}

// collapse trims s and folds internal whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Join concatenates blocks with newlines, keeping whole blocks while the
// result fits in limit runes. A first block longer than limit is cut at
// limit runes, so the result is never longer than limit.
func Join(blocks []string, limit int) string {
	if limit <= 0 {
		return ""
	}
	var (
		b    strings.Builder
		used int
	)
	for i, block := range blocks {
		size := utf8.RuneCountInString(block)
		if i > 0 {
			size++
		}
		if used+size > limit {
			if i == 0 {
				return truncateRunes(block, limit)
			}
			break
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(block)
		used += size
	}
	return b.String()
}

func truncateRunes(s string, limit int) string {
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
