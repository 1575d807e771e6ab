package render

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	sanitizer = newSanitizer()
)

func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Markdown converts an assistant reply to sanitised HTML. Raw HTML in the
// reply is stripped; conversion failures fall back to escaped text.
func Markdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		// #nosec G203 -- escaped
		return template.HTML(template.HTMLEscapeString(text))
	}
	// #nosec G203 -- sanitised by bluemonday
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}
