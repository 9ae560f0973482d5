// Package linkverify checks the links of generated pages: in-page anchors,
// relative links to other pages and image sources.
package linkverify

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/framedoc/internal/foundation/errors"
)

// Link represents an extracted link from HTML content.
type Link struct {
	URL        string // The URL or path
	Text       string // Link text/title
	Tag        string // HTML tag (a, img, link)
	Attribute  string // Attribute containing the link (href, src)
	IsInternal bool   // True if link stays on the generated site
}

// Page is the link-relevant content of one HTML document.
type Page struct {
	Links []*Link
	// IDs holds every element id declared in the page.
	IDs map[string]bool
}

// ParseFile extracts links and ids from an HTML file.
func ParseFile(htmlPath string) (*Page, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to open HTML file").WithContext("html_path", htmlPath).Build()
	}
	defer func() {
		_ = file.Close() // Ignore close errors on read-only operation
	}()

	return Parse(file)
}

// Parse extracts links and ids from an HTML reader.
func Parse(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").Build()
	}

	page := &Page{IDs: make(map[string]bool)}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id := getAttr(n, "id"); id != "" {
				page.IDs[id] = true
			}
			if link := elementLink(n); link != nil {
				page.Links = append(page.Links, link)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return page, nil
}

func elementLink(n *html.Node) *Link {
	var attr string
	switch n.Data {
	case "a", "link":
		attr = "href"
	case "img", "script", "source":
		attr = "src"
	default:
		return nil
	}
	target := getAttr(n, attr)
	if target == "" {
		return nil
	}
	text := extractText(n)
	if n.Data == "img" {
		text = getAttr(n, "alt")
	}
	return &Link{URL: target, Text: text, Tag: n.Data, Attribute: attr, IsInternal: isInternalLink(target)}
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// extractText extracts text content from an HTML node and its children.
func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(extractText(c))
	}
	return strings.TrimSpace(text.String())
}

// isInternalLink reports whether a URL points into the generated site.
func isInternalLink(linkURL string) bool {
	if strings.HasPrefix(linkURL, "#") {
		return true
	}
	for _, p := range []string{"mailto:", "tel:", "javascript:", "data:", "//"} {
		if strings.HasPrefix(linkURL, p) {
			return false
		}
	}
	u, err := url.Parse(linkURL)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}
