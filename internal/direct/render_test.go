package direct

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/site-report/internal/pipeline"
)

func TestRenderArticle(t *testing.T) {
	t.Parallel()

	html, err := RenderArticle(pipeline.ExtractionResult{
		URL:         "https://example.com/",
		Title:       "Example",
		Description: "A page about examples",
		Content:     "<h1>Hi</h1>\n<p>a &lt; b</p>",
		ExtractedAt: testNow,
	})
	require.NoError(t, err)
	require.Contains(t, html, `<h1 class="text-3xl font-bold mb-4">Example</h1>`)
	require.Contains(t, html, `<p class="text-xl text-gray-600 mb-4">A page about examples</p>`)
	require.Contains(t, html, "<h1>Hi</h1>\n<p>a &lt; b</p>")
	require.Contains(t, html, `<a href="https://example.com/" target="_blank" rel="noopener noreferrer">https://example.com/</a>`)
	require.Contains(t, html, "Extracted: Mar 1, 2024 12:00:00 UTC")
}

func TestRenderArticle_UntitledWithoutDescription(t *testing.T) {
	t.Parallel()

	html, err := RenderArticle(pipeline.ExtractionResult{URL: "https://example.com/", ExtractedAt: testNow})
	require.NoError(t, err)
	require.Contains(t, html, ">Untitled Page</h1>")
	require.NotContains(t, html, "text-gray-600 mb-4")
}

func TestRenderArticle_EscapesMetadata(t *testing.T) {
	t.Parallel()

	html, err := RenderArticle(pipeline.ExtractionResult{
		URL:         "https://example.com/",
		Title:       `<script>alert(1)</script>`,
		Description: `"quoted" & more`,
		ExtractedAt: testNow,
	})
	require.NoError(t, err)
	require.NotContains(t, html, "<script>")
	require.Contains(t, html, "&lt;script&gt;")
	require.Contains(t, html, "&#34;quoted&#34; &amp; more")
}

func TestRenderArticle_EscapesRawContentText(t *testing.T) {
	t.Parallel()

	html, err := RenderArticle(pipeline.ExtractionResult{
		URL:         "https://example.com/",
		Title:       "Example",
		Content:     "<p>a < b & c</p>\n<p>see <script>alert(1)</script></p>\n<ul>\n  <li>x > y</li>\n</ul>",
		ExtractedAt: testNow,
	})
	require.NoError(t, err)
	require.Contains(t, html, "<p>a &lt; b &amp; c</p>")
	require.Contains(t, html, "<p>see &lt;script&gt;alert(1)&lt;/script&gt;</p>")
	require.Contains(t, html, "<ul>\n  <li>x &gt; y</li>\n</ul>")
	require.NotContains(t, html, "<script>")
}

func TestRenderArticle_DropsAttributes(t *testing.T) {
	t.Parallel()

	html, err := RenderArticle(pipeline.ExtractionResult{
		URL:         "https://example.com/",
		Content:     `<p onclick="steal()">hi</p>`,
		ExtractedAt: testNow,
	})
	require.NoError(t, err)
	require.Contains(t, html, "<p>hi</p>")
	require.NotContains(t, html, "onclick")
}
