// Package mdhtml renders Markdown documents to HTML so rendered output can be
// compared instead of source.
package mdhtml

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithXHTML()),
)

// Render converts src to HTML. Raw HTML in the source is omitted.
func Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("mdhtml: render: %w", err)
	}
	return buf.String(), nil
}
