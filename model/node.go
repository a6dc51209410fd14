package model

import "strings"

// NodeKind represents the type of a document node
type NodeKind int

const (
	KindDefaultText NodeKind = iota
	KindHeading
	KindStyledText
	KindNormalListItem
	KindOrderedListItem
	KindCode
	KindLink
)

func (k NodeKind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindStyledText:
		return "styledText"
	case KindNormalListItem:
		return "normalListItem"
	case KindOrderedListItem:
		return "orderedListItem"
	case KindCode:
		return "code"
	case KindLink:
		return "link"
	default:
		return "defaultText"
	}
}

// MarshalText encodes the kind by name so JSON output stays readable.
func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsList reports whether the kind is one of the list item kinds.
func (k NodeKind) IsList() bool {
	return k == KindNormalListItem || k == KindOrderedListItem
}

// Node is a block-level unit of the output document.
type Node struct {
	Kind    NodeKind `json:"kind"`
	Style   string   `json:"style"`
	Content []Span   `json:"content"`
	// Anchor is the bookmark id of a heading. Empty means no bookmark.
	Anchor string `json:"anchor,omitempty"`
	// Level is the nesting level of a list item (1-based), 0 otherwise.
	Level int `json:"level,omitempty"`

	// placeholder is true while Content holds only the initial empty span.
	placeholder bool
}

// NewNode creates a node holding a single empty placeholder span. The first
// call to Append replaces the placeholder instead of appending after it.
func NewNode(kind NodeKind, style string) *Node {
	return &Node{
		Kind:        kind,
		Style:       style,
		Content:     []Span{{}},
		placeholder: true,
	}
}

// NewHeading creates a heading node whose only span is the heading text.
func NewHeading(style, text, anchor string) *Node {
	return &Node{
		Kind:    KindHeading,
		Style:   style,
		Content: []Span{{Text: text}},
		Anchor:  anchor,
	}
}

// NewListItem creates a list item node with a placeholder span.
func NewListItem(kind NodeKind, style string, level int) *Node {
	n := NewNode(kind, style)
	n.Level = level
	return n
}

// NewCode creates a code node whose only span is the literal code text.
func NewCode(style, code string) *Node {
	return &Node{
		Kind:    KindCode,
		Style:   style,
		Content: []Span{{Text: code}},
	}
}

// Append adds a span to the node's content. If the node still holds only its
// placeholder span, the placeholder is replaced.
func (n *Node) Append(s Span) {
	if n.placeholder {
		n.Content[0] = s
		n.placeholder = false
		return
	}
	n.Content = append(n.Content, s)
}

// IsUntouched reports whether the node never received content: it still holds
// exactly one empty span without a link or style.
func (n *Node) IsUntouched() bool {
	if len(n.Content) != 1 {
		return false
	}
	s := n.Content[0]
	return s.Text == "" && s.StyleRef == "" && s.Link == nil
}

// Text returns the concatenated text of all spans.
func (n *Node) Text() string {
	var sb strings.Builder
	for _, s := range n.Content {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Links returns the links carried by the node's spans, in order.
func (n *Node) Links() []Link {
	var links []Link
	for _, s := range n.Content {
		if s.Link != nil {
			links = append(links, *s.Link)
		}
	}
	return links
}
