package model

import (
	"fmt"
	"sort"
	"strings"
)

// Document represents a complete converted document: nodes in flush order
type Document struct {
	Nodes []*Node `json:"nodes"`

	seen map[*Node]struct{}
}

// NewDocument creates a new empty document
func NewDocument() *Document {
	return &Document{
		Nodes: make([]*Node, 0),
		seen:  make(map[*Node]struct{}),
	}
}

// Append adds a node to the end of the document. A node that is already part
// of the document is not added again; Append reports whether it was added.
func (d *Document) Append(n *Node) bool {
	if n == nil {
		return false
	}
	if d.seen == nil {
		d.seen = make(map[*Node]struct{}, len(d.Nodes))
		for _, existing := range d.Nodes {
			d.seen[existing] = struct{}{}
		}
	}
	if _, ok := d.seen[n]; ok {
		return false
	}
	d.seen[n] = struct{}{}
	d.Nodes = append(d.Nodes, n)
	return true
}

// Len returns the number of nodes
func (d *Document) Len() int {
	return len(d.Nodes)
}

// ExtractText returns the text of every node, one node per line
func (d *Document) ExtractText() string {
	var sb strings.Builder
	for i, n := range d.Nodes {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(n.Text())
	}
	return sb.String()
}

// Headings returns all heading nodes in document order
func (d *Document) Headings() []*Node {
	var headings []*Node
	for _, n := range d.Nodes {
		if n.Kind == KindHeading {
			headings = append(headings, n)
		}
	}
	return headings
}

// Anchors returns the set of anchor ids defined by headings
func (d *Document) Anchors() map[string]bool {
	anchors := make(map[string]bool)
	for _, n := range d.Headings() {
		if n.Anchor != "" {
			anchors[n.Anchor] = true
		}
	}
	return anchors
}

// UnresolvedLinks returns internal link anchors that no heading defines,
// deduplicated, in first-seen order.
func (d *Document) UnresolvedLinks() []string {
	anchors := d.Anchors()
	seen := make(map[string]bool)
	var missing []string
	for _, n := range d.Nodes {
		for _, l := range n.Links() {
			if l.Kind != LinkInternal || anchors[l.Anchor] || seen[l.Anchor] {
				continue
			}
			seen[l.Anchor] = true
			missing = append(missing, l.Anchor)
		}
	}
	return missing
}

// Styles returns the sorted, distinct paragraph and character style
// identifiers referenced by the document.
func (d *Document) Styles() (paragraph, character []string) {
	p := make(map[string]bool)
	c := make(map[string]bool)
	for _, n := range d.Nodes {
		if n.Style != "" {
			p[n.Style] = true
		}
		for _, s := range n.Content {
			if s.StyleRef != "" {
				c[s.StyleRef] = true
			}
		}
	}
	return sortedKeys(p), sortedKeys(c)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TableOfContents returns headings organized as a document outline
func (d *Document) TableOfContents() []TOCEntry {
	var toc []TOCEntry
	for i, n := range d.Nodes {
		if n.Kind != KindHeading {
			continue
		}
		toc = append(toc, TOCEntry{
			Level:  n.HeadingLevel(),
			Text:   n.Text(),
			Anchor: n.Anchor,
			Index:  i,
		})
	}
	return toc
}

// TOCEntry represents an entry in the table of contents
type TOCEntry struct {
	Level  int    // Heading level derived from the style name
	Text   string // Heading text
	Anchor string // Bookmark id, may be empty
	Index  int    // Position of the heading in Document.Nodes
}

// HeadingLevel derives a level from the trailing digits of the node's style
// ("Heading2" -> 2, "1" -> 1). Styles without digits are level 1; levels are
// clamped to 1-6.
func (n *Node) HeadingLevel() int {
	end := len(n.Style)
	start := end
	for start > 0 && n.Style[start-1] >= '0' && n.Style[start-1] <= '9' {
		start--
	}
	level := 0
	for _, c := range n.Style[start:end] {
		level = level*10 + int(c-'0')
		if level > 6 {
			return 6
		}
	}
	if level < 1 {
		return 1
	}
	return level
}

// ToMarkdown renders the document as Markdown. Styles are not representable
// and are dropped; list nesting uses two spaces per level.
func (d *Document) ToMarkdown() string {
	var sb strings.Builder
	prevList := false
	for i, n := range d.Nodes {
		isList := n.Kind.IsList()
		if i > 0 {
			if isList && prevList {
				sb.WriteString("\n")
			} else {
				sb.WriteString("\n\n")
			}
		}
		prevList = isList

		switch n.Kind {
		case KindHeading:
			sb.WriteString(strings.Repeat("#", n.HeadingLevel()))
			sb.WriteString(" ")
			if n.Anchor != "" {
				sb.WriteString(fmt.Sprintf("<a id=\"%s\"></a>", n.Anchor))
			}
			sb.WriteString(spansToMarkdown(n.Content))
		case KindCode:
			sb.WriteString("```\n")
			sb.WriteString(n.Text())
			sb.WriteString("\n```")
		case KindNormalListItem, KindOrderedListItem:
			level := n.Level
			if level < 1 {
				level = 1
			}
			sb.WriteString(strings.Repeat("  ", level-1))
			if n.Kind == KindOrderedListItem {
				sb.WriteString("1. ")
			} else {
				sb.WriteString("- ")
			}
			sb.WriteString(spansToMarkdown(n.Content))
		default:
			sb.WriteString(spansToMarkdown(n.Content))
		}
	}
	if len(d.Nodes) > 0 {
		sb.WriteString("\n")
	}
	return sb.String()
}

func spansToMarkdown(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		if s.Link == nil {
			sb.WriteString(s.Text)
			continue
		}
		target := s.Link.URL
		if s.Link.Kind == LinkInternal {
			target = "#" + s.Link.Anchor
		}
		sb.WriteString("[")
		sb.WriteString(s.Text)
		sb.WriteString("](")
		sb.WriteString(target)
		sb.WriteString(")")
	}
	return sb.String()
}
