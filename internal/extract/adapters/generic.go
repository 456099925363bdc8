package adapters

import "golang.org/x/net/html"

// GenericAdapter is the fallback adapter for unknown sites.
// It prefers <article>, then <main>, then <body>.
type GenericAdapter struct {
	BaseAdapter
}

// NewGenericAdapter creates a new generic adapter
func NewGenericAdapter() *GenericAdapter {
	return &GenericAdapter{BaseAdapter: newBaseAdapter()}
}

// Name returns the adapter name
func (a *GenericAdapter) Name() string {
	return "generic"
}

// CanHandle always returns true (fallback adapter)
func (a *GenericAdapter) CanHandle(url string, contentType string) bool {
	return true
}

// ExtractText extracts prose from the most specific content container
func (a *GenericAdapter) ExtractText(doc *html.Node) string {
	for _, tag := range []string{"article", "main", "body"} {
		root := a.FindFirst(doc, func(n *html.Node) bool { return isElement(n, tag) })
		if root != nil {
			return a.text.FromNode(root, a.prune)
		}
	}
	return a.text.FromNode(doc, a.prune)
}

// prune drops elements that are hidden from readers
func (a *GenericAdapter) prune(n *html.Node) bool {
	if a.GetAttribute(n, "aria-hidden") == "true" {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == "hidden" {
			return true
		}
	}
	return false
}
