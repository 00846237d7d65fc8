package synth

import (
	"strings"
	"text/template"

	"github.com/JakeFAU/site-report/internal/pipeline"
)

const systemPrompt = `You are a professional consultant who generates detailed HTML reports.

Always follow the INSTRUCTIONS provided by the user and structure your response as valid HTML with:
- Semantic HTML5 elements (article, section, header, etc.)
- Proper heading hierarchy (h1, h2, h3)
- Lists (ul, ol) for findings and recommendations
- Paragraphs for detailed analysis
- Tables where appropriate for structured data
Do not include <!DOCTYPE>, <html>, <head>, or <body> tags.`

var userPrompt = template.Must(template.New("user").Parse(`Please analyze the following website content and generate a detailed consultant report.

URL: 
{{.URL}}

WEBSITE CONTENT:
{{.Content}}

INSTRUCTIONS:
{{.Instructions}}

Generate a report that includes:
1. Executive Summary
2. Key Findings
3. Detailed Analysis
4. Recommendations
5. Conclusion

Format the response as clean, semantic HTML that can be directly inserted into a webpage.`))

// buildUserPrompt embeds the page and the effective instructions.
func buildUserPrompt(in pipeline.ReportInput) (string, error) {
	var b strings.Builder
	err := userPrompt.Execute(&b, struct {
		URL          string
		Content      string
		Instructions string
	}{
		URL:          in.URL.String(),
		Content:      in.Content,
		Instructions: in.EffectiveInstructions(),
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
