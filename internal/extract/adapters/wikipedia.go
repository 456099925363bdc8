package adapters

import (
	"strings"

	"golang.org/x/net/html"
)

// WikipediaAdapter extracts article prose from Wikipedia pages, leaving out
// infoboxes, navigation boxes, citation markers and edit links.
type WikipediaAdapter struct {
	BaseAdapter
	prunedClasses []string
	prunedIDs     []string
}

// NewWikipediaAdapter creates a new Wikipedia adapter
func NewWikipediaAdapter() *WikipediaAdapter {
	return &WikipediaAdapter{
		BaseAdapter: newBaseAdapter(),
		prunedClasses: []string{
			"reference", "references", "reflist", "infobox", "navbox",
			"mw-editsection", "hatnote", "thumb", "sidebar", "metadata",
			"mw-references-wrap", "shortdescription", "toc",
		},
		prunedIDs: []string{"toc", "catlinks", "siteSub", "jump-to-nav"},
	}
}

// Name returns the adapter name
func (a *WikipediaAdapter) Name() string {
	return "wikipedia"
}

// CanHandle checks if this is a Wikipedia URL
func (a *WikipediaAdapter) CanHandle(rawURL string, contentType string) bool {
	return strings.Contains(strings.ToLower(rawURL), "wikipedia.org")
}

// ExtractText extracts the article body
func (a *WikipediaAdapter) ExtractText(doc *html.Node) string {
	content := a.FindFirst(doc, func(n *html.Node) bool {
		return isElement(n, "div") &&
			(a.HasClass(n, "mw-parser-output") || a.GetAttribute(n, "id") == "mw-content-text")
	})
	if content == nil {
		content = doc
	}
	return a.text.FromNode(content, a.prune)
}

func (a *WikipediaAdapter) prune(n *html.Node) bool {
	// Tables are data, not prose
	if n.Data == "table" || n.Data == "sup" {
		return true
	}
	for _, class := range a.prunedClasses {
		if a.HasClass(n, class) {
			return true
		}
	}
	id := a.GetAttribute(n, "id")
	for _, pruned := range a.prunedIDs {
		if id == pruned {
			return true
		}
	}
	return false
}
