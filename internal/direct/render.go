package direct

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/site-report/internal/pipeline"
)

const untitledPage = "Untitled Page"

// extractedLayout is the timestamp format printed in the article footer.
const extractedLayout = "Jan 2, 2006 15:04:05 MST"

var articleTemplate = template.Must(template.New("article").Parse(`<article class="prose lg:prose-xl mx-auto">
  <header class="text-center mb-8">
    <h1 class="text-3xl font-bold mb-4">{{.Title}}</h1>
{{- if .Description}}
    <p class="text-xl text-gray-600 mb-4">{{.Description}}</p>
{{- end}}
  </header>
  <section class="content">
{{.Content}}
  </section>
  <footer class="mt-8 pt-4 border-t text-sm text-gray-500">
    <p>Source: <a href="{{.URL}}" target="_blank" rel="noopener noreferrer">{{.URL}}</a></p>
    <p>Extracted: {{.Extracted}}</p>
  </footer>
</article>
`))

// contentTags are the only elements kept from extracted content.
var contentTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p": true, "ul": true, "ol": true, "li": true,
}

type articleView struct {
	Title       string
	Description string
	Content     template.HTML
	URL       string
	Extracted string
}

// RenderArticle renders an extraction as a self-contained article fragment.
func RenderArticle(result pipeline.ExtractionResult) (string, error) {
	view := articleView{
		Title:       result.Title,
		Description: result.Description,
		Content:     sanitizeContent(result.Content),
		URL:         result.URL.String(),
		Extracted:   result.ExtractedAt.Format(extractedLayout),
	}
	if strings.TrimSpace(view.Title) == "" {
		view.Title = untitledPage
	}

	var b strings.Builder
	if err := articleTemplate.Execute(&b, view); err != nil {
		return "", fmt.Errorf("execute article template: %w", err)
	}
	return b.String(), nil
}

// sanitizeContent re-serializes extracted content keeping only contentTags,
// without attributes. All other text, including stray markup, is escaped.
func sanitizeContent(content string) template.HTML {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return template.HTML(template.HTMLEscapeString(content)) //nolint:gosec // fully escaped
	}
	var b strings.Builder
	writeNodes(&b, doc.Find("body").Contents())
	return template.HTML(b.String()) //nolint:gosec // built from escaped text and contentTags
}

func writeNodes(b *strings.Builder, nodes *goquery.Selection) {
	for _, node := range nodes.EachIter() {
		name := goquery.NodeName(node)
		switch {
		case name == "#text":
			b.WriteString(template.HTMLEscapeString(node.Text()))
		case contentTags[name]:
			b.WriteString("<" + name + ">")
			writeNodes(b, node.Contents())
			b.WriteString("</" + name + ">")
		case strings.HasPrefix(name, "#"):
		default:
			// Markup that was page text is shown as text.
			outer, err := goquery.OuterHtml(node)
			if err != nil {
				outer = node.Text()
			}
			b.WriteString(template.HTMLEscapeString(outer))
		}
	}
}
