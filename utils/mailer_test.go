package utils

import (
	"strings"
	"testing"
)

func TestRenderPostPhotosHTML(t *testing.T) {
	html := RenderPostPhotosHTML("juan", "beach <day>", []string{
		"https://cdn.example.com/a.jpg",
		"https://cdn.example.com/b.jpg",
	})

	if !strings.Contains(html, "juan") {
		t.Error("username missing from body")
	}
	if !strings.Contains(html, "beach &lt;day&gt;") {
		t.Error("caption must be HTML-escaped")
	}
	if strings.Contains(html, "beach <day>") {
		t.Error("raw caption leaked into markup")
	}
	if !strings.Contains(html, "https://cdn.example.com/a.jpg") ||
		!strings.Contains(html, "https://cdn.example.com/b.jpg") {
		t.Error("image urls missing from body")
	}
}

func TestRenderPostPhotosHTMLEmptyCaption(t *testing.T) {
	html := RenderPostPhotosHTML("juan", "", []string{"https://cdn.example.com/a.jpg"})
	if html == "" {
		t.Fatal("expected markup even without a caption")
	}
}
