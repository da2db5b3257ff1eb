package export

import (
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfnotes/internal/richtext"
)

func TestToMarkdownPlainText(t *testing.T) {
	doc := richtext.New()
	doc.InsertTextAtCursor("first line\nsecond line")

	md := ToMarkdown(doc)
	assert.Equal(t, "first line\n\nsecond line\n", md)
}

func TestToMarkdownStyles(t *testing.T) {
	doc := richtext.New()
	doc.ToggleBold()
	doc.InsertTextAtCursor("strong")
	doc.ToggleBold()
	doc.InsertTextAtCursor(" and ")
	doc.ToggleItalic()
	doc.InsertTextAtCursor("slanted")
	doc.ToggleItalic()
	doc.ToggleUnderline()
	doc.InsertTextAtCursor("low")

	md := ToMarkdown(doc)
	assert.Contains(t, md, "**strong**")
	assert.Contains(t, md, "*slanted*")
	assert.Contains(t, md, "<u>low</u>")
}

func TestToMarkdownEscapesSyntax(t *testing.T) {
	doc := richtext.New()
	doc.InsertTextAtCursor("a*b_c[d]")

	md := ToMarkdown(doc)
	assert.Contains(t, md, `a\*b\_c\[d\]`)
}

func TestToMarkdownLists(t *testing.T) {
	doc := richtext.New()
	doc.ToggleBulletList()
	doc.InsertTextAtCursor("apples\noranges")

	md := ToMarkdown(doc)
	assert.Contains(t, md, "- apples\n- oranges\n")
}

func TestToMarkdownNumberedList(t *testing.T) {
	doc := richtext.New()
	doc.ToggleNumberedList()
	doc.InsertTextAtCursor("one\ntwo\nthree")

	md := ToMarkdown(doc)
	assert.Contains(t, md, "1. one\n2. two\n3. three\n")
}

func TestToMarkdownEmbedsImage(t *testing.T) {
	doc := richtext.New()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	doc.InsertImageAtCursor(img, 120, 60)

	md := ToMarkdown(doc)
	assert.Contains(t, md, `src="data:image/png;base64,`)
	assert.Contains(t, md, `width="120"`)
	assert.Contains(t, md, `height="60"`)
}

func TestToHTML(t *testing.T) {
	doc := richtext.New()
	doc.ToggleBold()
	doc.InsertTextAtCursor("heading thought")
	doc.ToggleBold()
	doc.InsertTextAtCursor("\nplain follow-up")

	out, err := ToHTML(doc, "attention.pdf notes")
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, "<!DOCTYPE html>"))
	assert.Contains(t, s, "<strong>heading thought</strong>")
	assert.Contains(t, s, "plain follow-up")
	assert.Contains(t, s, "attention.pdf notes")
}

func TestToHTMLKeepsImageTag(t *testing.T) {
	doc := richtext.New()
	doc.InsertImageAtCursor(image.NewRGBA(image.Rect(0, 0, 2, 2)), 10, 5)

	out, err := ToHTML(doc, "notes")
	require.NoError(t, err)
	assert.Contains(t, string(out), `<img src="data:image/png;base64,`)
}
