// Package htmldoc converts between model documents and HTML.
//
// Render produces a standalone page (or a body fragment) where every node is
// one block element carrying its style identifier as a class. Read goes the
// other way, mapping headings, paragraphs, lists, pre blocks and anchors of an
// HTML page back onto nodes.
package htmldoc

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/wdocx/model"
)

// RenderOptions controls HTML output.
type RenderOptions struct {
	// Title is written to the head of a full page.
	Title string
	// Fragment emits only the body content, without html/head/body.
	Fragment bool
	// Stylesheet, if set, is linked from the head of a full page.
	Stylesheet string
}

// DefaultRenderOptions returns options for a full page titled "Document".
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Title: "Document"}
}

// Render writes doc to w as HTML.
func Render(w io.Writer, doc *model.Document, opts RenderOptions) error {
	root := &html.Node{Type: html.DocumentNode}
	container := root

	if !opts.Fragment {
		root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
		page := element(atom.Html)
		root.AppendChild(page)

		head := element(atom.Head)
		head.AppendChild(element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"}))
		title := element(atom.Title)
		title.AppendChild(text(opts.Title))
		head.AppendChild(title)
		if opts.Stylesheet != "" {
			head.AppendChild(element(atom.Link,
				html.Attribute{Key: "rel", Val: "stylesheet"},
				html.Attribute{Key: "href", Val: opts.Stylesheet}))
		}
		page.AppendChild(head)

		container = element(atom.Body)
		page.AppendChild(container)
	}

	appendNodes(container, doc.Nodes)

	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return fmt.Errorf("rendering HTML: %w", err)
		}
	}
	if !opts.Fragment {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// String renders doc and returns the HTML.
func String(doc *model.Document, opts RenderOptions) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, doc, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// openList is one level of the list nesting stack.
type openList struct {
	el    *html.Node
	kind  model.NodeKind
	level int
	last  *html.Node // most recent li
}

func appendNodes(parent *html.Node, nodes []*model.Node) {
	var stack []*openList

	for _, n := range nodes {
		if !n.Kind.IsList() {
			stack = stack[:0]
			parent.AppendChild(blockFor(n))
			continue
		}

		level := n.Level
		if level < 1 {
			level = 1
		}
		for len(stack) > 0 && stack[len(stack)-1].level > level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.level == level && top.kind != n.Kind {
				stack = stack[:len(stack)-1]
			}
		}

		if len(stack) == 0 || stack[len(stack)-1].level < level {
			list := element(listAtom(n.Kind))
			if len(stack) == 0 {
				parent.AppendChild(list)
			} else {
				top := stack[len(stack)-1]
				if top.last == nil {
					top.last = element(atom.Li)
					top.el.AppendChild(top.last)
				}
				top.last.AppendChild(list)
			}
			stack = append(stack, &openList{el: list, kind: n.Kind, level: level})
		}

		top := stack[len(stack)-1]
		li := element(atom.Li, classAttr(n.Style)...)
		appendSpans(li, n)
		top.el.AppendChild(li)
		top.last = li
	}
}

func listAtom(kind model.NodeKind) atom.Atom {
	if kind == model.KindOrderedListItem {
		return atom.Ol
	}
	return atom.Ul
}

func blockFor(n *model.Node) *html.Node {
	switch n.Kind {
	case model.KindHeading:
		attrs := classAttr(n.Style)
		if n.Anchor != "" {
			attrs = append([]html.Attribute{{Key: "id", Val: n.Anchor}}, attrs...)
		}
		h := element(headingAtom(n.HeadingLevel()), attrs...)
		appendSpans(h, n)
		return h
	case model.KindCode:
		pre := element(atom.Pre, classAttr(n.Style)...)
		code := element(atom.Code)
		code.AppendChild(text(n.Text()))
		pre.AppendChild(code)
		return pre
	default:
		p := element(atom.P, classAttr(n.Style)...)
		appendSpans(p, n)
		return p
	}
}

func headingAtom(level int) atom.Atom {
	return atom.Lookup([]byte("h" + strconv.Itoa(level)))
}

// appendSpans adds the node's spans as inline content. A span whose character
// style differs from the paragraph style keeps it as a class.
func appendSpans(parent *html.Node, n *model.Node) {
	for _, s := range n.Content {
		var attrs []html.Attribute
		if s.StyleRef != "" && s.StyleRef != n.Style {
			attrs = classAttr(s.StyleRef)
		}

		switch {
		case s.Link != nil:
			a := element(atom.A, append([]html.Attribute{{Key: "href", Val: href(s.Link)}}, attrs...)...)
			a.AppendChild(text(s.Text))
			parent.AppendChild(a)
		case len(attrs) > 0:
			span := element(atom.Span, attrs...)
			span.AppendChild(text(s.Text))
			parent.AppendChild(span)
		case s.Text != "":
			parent.AppendChild(text(s.Text))
		}
	}
}

func href(l *model.Link) string {
	if l.Kind == model.LinkInternal {
		return "#" + l.Anchor
	}
	return l.URL
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func classAttr(style string) []html.Attribute {
	if style == "" {
		return nil
	}
	return []html.Attribute{{Key: "class", Val: style}}
}
