package cli

import (
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
)

// renderMarkdown renders a reply for the terminal at the given width.
// Autolinking is disabled so plain URLs stay plain and the terminal can
// detect them itself.
func renderMarkdown(content string, width int) string {
	if width < 20 {
		width = 20
	}

	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width, 0)
	doc := p.Parse([]byte(content))

	return strings.TrimRight(string(gomarkdown.Render(doc, r)), "\n")
}
