// Package markdown inspects converted Markdown bodies.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// ImageKind tells where an image reference was written.
type ImageKind string

const (
	ImageKindMarkdown ImageKind = "markdown"
	ImageKindHTML     ImageKind = "html"
)

// Image is one image reference in a body.
type Image struct {
	Kind        ImageKind
	Destination string
}

// ExtractImages parses body and returns its image references in document order:
// Markdown images and the src of <img> tags found in raw HTML.
func ExtractImages(body []byte) []Image {
	root := goldmark.New().Parser().Parse(text.NewReader(body))

	images := make([]Image, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Image:
			images = append(images, Image{Kind: ImageKindMarkdown, Destination: string(node.Destination)})
		case *gmast.RawHTML:
			images = append(images, htmlImages(segmentsText(node.Segments, body))...)
		case *gmast.HTMLBlock:
			raw := segmentsText(node.Lines(), body)
			if node.HasClosure() {
				raw = append(raw, node.ClosureLine.Value(body)...)
			}
			images = append(images, htmlImages(raw)...)
		}
		return gmast.WalkContinue, nil
	})
	return images
}

// RelativeImages returns the destinations of images that are neither absolute
// paths nor URLs.
func RelativeImages(body []byte) []string {
	var out []string
	for _, img := range ExtractImages(body) {
		if IsRelative(img.Destination) {
			out = append(out, img.Destination)
		}
	}
	return out
}

// IsRelative reports whether dest is a document-relative reference.
func IsRelative(dest string) bool {
	dest = strings.TrimSpace(dest)
	switch {
	case dest == "":
		return false
	case strings.HasPrefix(dest, "/"), strings.HasPrefix(dest, "#"):
		return false
	case strings.Contains(dest, "://"), strings.HasPrefix(dest, "data:"):
		return false
	case strings.HasPrefix(dest, "{{"):
		return false
	}
	return true
}

func segmentsText(segs *text.Segments, source []byte) []byte {
	var buf bytes.Buffer
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.Bytes()
}

func htmlImages(raw []byte) []Image {
	var out []Image
	z := html.NewTokenizer(bytes.NewReader(raw))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return out
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "img" {
				continue
			}
			for _, attr := range tok.Attr {
				if attr.Key == "src" {
					out = append(out, Image{Kind: ImageKindHTML, Destination: attr.Val})
				}
			}
		}
	}
}
