// Package export converts notes to markdown and HTML for sharing
// outside the app.
package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"pdfnotes/internal/richtext"
)

// ToMarkdown renders a note as markdown. Bold and italic use markdown
// syntax; underline and color fall back to inline HTML since markdown
// has no spelling for them. Images are embedded as data URIs so the
// export is a single self-contained file.
func ToMarkdown(doc *richtext.Document) string {
	var b strings.Builder

	numbered := 0
	for i, block := range doc.Blocks {
		if i > 0 {
			if block.List == richtext.ListNone || doc.Blocks[i-1].List != block.List {
				b.WriteString("\n")
			}
		}

		switch block.List {
		case richtext.ListBullet:
			numbered = 0
			b.WriteString("- ")
		case richtext.ListNumbered:
			numbered++
			fmt.Fprintf(&b, "%d. ", numbered)
		default:
			numbered = 0
		}

		for _, run := range block.Runs {
			b.WriteString(renderRun(run))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func renderRun(run richtext.Run) string {
	if run.IsImage() {
		uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(run.Image.PNG)
		return fmt.Sprintf(`<img src="%s" width="%d" height="%d" alt="pasted image">`,
			uri, run.Image.W, run.Image.H)
	}

	text := escapeMarkdown(run.Text)
	if text == "" {
		return ""
	}

	s := run.Style
	switch {
	case s.Bold && s.Italic:
		text = "***" + text + "***"
	case s.Bold:
		text = "**" + text + "**"
	case s.Italic:
		text = "*" + text + "*"
	}
	if s.Underline {
		text = "<u>" + text + "</u>"
	}
	if s.Color != "" {
		text = fmt.Sprintf(`<span style="color:%s">%s</span>`, s.Color, text)
	}
	return text
}

// escapeMarkdown neutralizes characters that would otherwise be parsed
// as markdown syntax inside note text.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	`[`, `\[`,
	`]`, `\]`,
	`<`, "&lt;",
	`>`, "&gt;",
	`&`, "&amp;",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// ToHTML renders a note as a complete standalone HTML document.
func ToHTML(doc *richtext.Document, title string) ([]byte, error) {
	md := goldmark.New(
		// The markdown is generated here, not user-supplied, so raw
		// HTML (underline, color spans, data-URI images) is safe to
		// pass through.
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)

	var body bytes.Buffer
	if err := md.Convert([]byte(ToMarkdown(doc)), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; line-height: 1.5; }
img { max-width: 100%%; }
</style>
</head>
<body>
`, html.EscapeString(title))
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")

	return out.Bytes(), nil
}
