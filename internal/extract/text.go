package extract

import (
	"mime"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Kind is the format of a text source
type Kind string

const (
	KindText Kind = "text"
	KindHTML Kind = "html"
)

// TextExtractor turns HTML into prose suitable for readability analysis
type TextExtractor struct {
	skip  map[string]bool
	block map[string]bool
	space map[string]bool // inline elements that separate words
}

// NewTextExtractor creates a new text extractor
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{
		skip: setOf(
			"head", "title", "script", "style", "noscript", "iframe", "template", "svg",
			"nav", "footer", "header", "aside", "form", "button",
		),
		block: setOf(
			"p", "div", "section", "article", "main", "blockquote", "pre",
			"li", "ul", "ol", "dl", "dt", "dd", "table", "tr",
			"h1", "h2", "h3", "h4", "h5", "h6", "figcaption", "hr",
		),
		space: setOf("br", "td", "th", "img", "wbr"),
	}
}

// FromHTML extracts visible text from HTML. Block elements become separate
// paragraphs (separated by a blank line) so paragraph counting still works.
func (e *TextExtractor) FromHTML(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}
	return e.FromNode(doc, nil), nil
}

// FromNode extracts text below root. Nodes for which prune returns true are
// skipped along with their children; prune may be nil.
func (e *TextExtractor) FromNode(root *html.Node, prune func(*html.Node) bool) string {
	var paragraphs []string
	var current strings.Builder

	flush := func() {
		text := strings.Join(strings.Fields(current.String()), " ")
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.CommentNode:
			return
		case html.ElementNode:
			if e.skip[n.Data] || (prune != nil && prune(n)) {
				return
			}
		}

		isBlock := n.Type == html.ElementNode && e.block[n.Data]
		if isBlock {
			flush()
		}

		// Text nodes are joined as-is so inline markup never splits a word
		if n.Type == html.TextNode {
			current.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && e.space[n.Data] {
			current.WriteString(" ")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if isBlock {
			flush()
		}
	}

	walk(root)
	flush()

	return Normalize(strings.Join(paragraphs, "\n\n"))
}

// Normalize converts text to Unicode NFC so that composed and decomposed
// forms of the same word produce the same counts.
func Normalize(text string) string {
	return norm.NFC.String(text)
}

// DetectKind decides whether a source is HTML from its name or content type
func DetectKind(name, contentType string) Kind {
	if contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
			switch mediaType {
			case "text/html", "application/xhtml+xml":
				return KindHTML
			default:
				return KindText
			}
		}
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return KindHTML
	}
	return KindText
}

// Title returns the contents of the first <title> element, if any
func Title(htmlContent string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlContent))
	inTitle := false
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			inTitle = string(name) == "title"
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(tokenizer.Text()))
			}
		case html.EndTagToken:
			inTitle = false
		}
	}
}

func setOf(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, item := range items {
		m[item] = true
	}
	return m
}
