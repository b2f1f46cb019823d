package report

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

const pageHead = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>%s</title>
<style>body{font-family:sans-serif;max-width:60em;margin:2em auto}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.3em .6em;text-align:right}td:first-child,th:first-child{text-align:left}</style>
</head><body>
`

// HTML converts a markdown document into a standalone HTML page.
func HTML(title, markdown string) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, pageHead, html.EscapeString(title))
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	buf.WriteString("</body></html>\n")
	return buf.Bytes(), nil
}
