package htmldoc

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/wdocx/command"
	"github.com/tsawler/wdocx/model"
)

// Reader provides access to the content of an HTML page.
type Reader struct {
	doc   *html.Node
	title string
}

// Open opens an HTML file for reading.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return OpenReader(f)
}

// OpenReader parses HTML from an io.Reader.
func OpenReader(r io.Reader) (*Reader, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	reader := &Reader{doc: doc}
	if t := findElement(doc, atom.Title); t != nil {
		reader.title = getTextContent(t)
	}
	return reader, nil
}

// Title returns the content of the title element.
func (r *Reader) Title() string {
	return r.title
}

// Document maps the page body onto document nodes. A class attribute becomes
// the node or span style; elements without one get the styles from the set.
func (r *Reader) Document(styles command.StyleSet) *model.Document {
	body := findElement(r.doc, atom.Body)
	if body == nil {
		body = r.doc
	}

	w := &walker{doc: model.NewDocument(), styles: styles.Normalize()}
	w.traverse(body)
	return w.doc
}

type walker struct {
	doc    *model.Document
	styles command.StyleSet
}

func (w *walker) traverse(n *html.Node) {
	if n.Type == html.ElementNode {
		if shouldSkipElement(n.DataAtom) {
			return
		}

		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			style := class(n)
			if style == "" {
				style = "Heading" + n.Data[1:]
			}
			w.doc.Append(model.NewHeading(style, getTextContent(n), attrValue(n, "id")))
			return

		case atom.P:
			w.paragraph(n)
			return

		case atom.Div:
			if !isBlockContainer(n) {
				w.paragraph(n)
				return
			}

		case atom.Ul, atom.Ol:
			w.list(n, 1)
			return

		case atom.Pre:
			style := class(n)
			if style == "" {
				style = w.styles.Code
			}
			w.doc.Append(model.NewCode(style, strings.TrimSuffix(rawText(n), "\n")))
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.traverse(c)
	}
}

// paragraph appends a text node. Like the interpreter, a paragraph that
// starts with a link is a link node.
func (w *walker) paragraph(n *html.Node) {
	style := class(n)
	if style == "" {
		style = w.styles.Body
	}
	spans := w.inline(n)
	if len(spans) == 0 {
		return
	}

	kind := model.KindStyledText
	if spans[0].Link != nil {
		kind = model.KindLink
	}
	node := model.NewNode(kind, style)
	for _, s := range spans {
		node.Append(s)
	}
	w.doc.Append(node)
}

func (w *walker) list(n *html.Node, level int) {
	kind, listKind := model.KindNormalListItem, command.ListUnordered
	if n.DataAtom == atom.Ol {
		kind, listKind = model.KindOrderedListItem, command.ListOrdered
	}

	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}

		if spans := w.inline(li); len(spans) > 0 {
			style := class(li)
			if style == "" {
				style = w.styles.ListStyle(listKind, level)
			}
			item := model.NewListItem(kind, style, level)
			for _, s := range spans {
				item.Append(s)
			}
			w.doc.Append(item)
		}

		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
				w.list(c, level+1)
			}
		}
	}
}

// inline collects the spans of an element's inline content. Runs of
// whitespace collapse to one space and the outer edges are trimmed.
func (w *walker) inline(n *html.Node) []model.Span {
	var spans []model.Span
	var pending strings.Builder

	flush := func() {
		if pending.Len() > 0 {
			spans = append(spans, model.Span{Text: pending.String()})
			pending.Reset()
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				pending.WriteString(collapseSpace(c.Data))
			case html.ElementNode:
				switch c.DataAtom {
				case atom.Ul, atom.Ol, atom.Table, atom.Pre:
					continue
				case atom.Br:
					pending.WriteString(" ")
				case atom.A:
					flush()
					spans = append(spans, w.link(c))
				case atom.Span:
					if style := class(c); style != "" {
						flush()
						spans = append(spans, model.Span{Text: collapseSpace(getTextContent(c)), StyleRef: style})
						continue
					}
					walk(c)
				default:
					if !shouldSkipElement(c.DataAtom) {
						walk(c)
					}
				}
			}
		}
	}
	walk(n)
	flush()

	if len(spans) == 0 {
		return nil
	}
	spans[0].Text = strings.TrimLeft(spans[0].Text, " ")
	last := len(spans) - 1
	spans[last].Text = strings.TrimRight(spans[last].Text, " ")
	if len(spans) == 1 && spans[0].Text == "" && spans[0].Link == nil && spans[0].StyleRef == "" {
		return nil
	}
	return spans
}

func (w *walker) link(a *html.Node) model.Span {
	style := class(a)
	if style == "" {
		style = w.styles.Hyperlink
	}
	target := attrValue(a, "href")
	link := model.ExternalLink(target)
	if anchor, ok := strings.CutPrefix(target, "#"); ok {
		link = model.InternalLink(anchor)
	}
	return model.Span{Text: collapseSpace(getTextContent(a)), StyleRef: style, Link: link}
}

// shouldSkipElement returns true if the element should be skipped during content extraction.
func shouldSkipElement(a atom.Atom) bool {
	switch a {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg, atom.Math, atom.Iframe, atom.Object, atom.Embed, atom.Head:
		return true
	}
	return false
}

// isBlockContainer returns true if the element is a block container with block-level children.
func isBlockContainer(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			switch c.DataAtom {
			case atom.Div, atom.P, atom.Ul, atom.Ol, atom.Table, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Blockquote, atom.Pre, atom.Article, atom.Section:
				return true
			}
		}
	}
	return false
}

// findElement finds the first element with the given tag.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findElement(c, a); result != nil {
			return result
		}
	}
	return nil
}

// getTextContent extracts all text content from a node and its descendants.
func getTextContent(n *html.Node) string {
	return strings.TrimSpace(collapseSpace(rawText(n)))
}

// rawText concatenates descendant text nodes unchanged.
func rawText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && shouldSkipElement(n.DataAtom) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func collapseSpace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				sb.WriteByte(' ')
			}
			space = true
		default:
			sb.WriteRune(r)
			space = false
		}
	}
	return sb.String()
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func class(n *html.Node) string {
	return strings.TrimSpace(attrValue(n, "class"))
}
