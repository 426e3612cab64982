package rag

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// SupportedExtensions lists the upload types the ingestor accepts.
var SupportedExtensions = []string{".txt", ".md", ".html"}

// ExtractText converts an uploaded file into plain text for chunking.
// HTML is stripped to its text content; .txt and .md pass through.
func ExtractText(filename string, data []byte) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".txt", ".md":
		return string(data), nil
	case ".html":
		return htmlText(data)
	default:
		return "", fmt.Errorf("unsupported file type %s (allowed: %s)", ext, strings.Join(SupportedExtensions, ", "))
	}
}

func htmlText(data []byte) (string, error) {
	root, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				b.WriteString(text)
				b.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return strings.TrimSpace(b.String()), nil
}
