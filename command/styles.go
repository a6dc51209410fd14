package command

import "strconv"

// ListKind represents the type of list a list command opens.
type ListKind int

const (
	ListInvalid   ListKind = iota
	ListUnordered          // Bullet list ("NormalList")
	ListOrdered            // Numbered list ("OderList")
)

func (k ListKind) String() string {
	switch k {
	case ListUnordered:
		return "unordered"
	case ListOrdered:
		return "ordered"
	default:
		return "invalid"
	}
}

// StyleSet holds the style identifiers the interpreter assigns to nodes and
// spans. The identifiers are opaque here; a renderer resolves them against
// its template.
type StyleSet struct {
	Body            string // paragraphs opened by text or links
	Code            string // code blocks
	Hyperlink       string // character style of link spans
	Error           string // sentinel for styles that could not be derived
	UnorderedPrefix string // prefix of unordered list styles, followed by the level
	OrderedPrefix   string // prefix of ordered list styles, followed by the level
}

// DefaultStyles returns the built-in style identifiers.
func DefaultStyles() StyleSet {
	return StyleSet{
		Body:            "body1",
		Code:            "code",
		Hyperlink:       "Hyperlink",
		Error:           "Error",
		UnorderedPrefix: "nList",
		OrderedPrefix:   "numList",
	}
}

// withDefaults fills empty identifiers from DefaultStyles.
func (s StyleSet) withDefaults() StyleSet {
	d := DefaultStyles()
	if s.Body == "" {
		s.Body = d.Body
	}
	if s.Code == "" {
		s.Code = d.Code
	}
	if s.Hyperlink == "" {
		s.Hyperlink = d.Hyperlink
	}
	if s.Error == "" {
		s.Error = d.Error
	}
	if s.UnorderedPrefix == "" {
		s.UnorderedPrefix = d.UnorderedPrefix
	}
	if s.OrderedPrefix == "" {
		s.OrderedPrefix = d.OrderedPrefix
	}
	return s
}

// Normalize returns the style set with every empty identifier replaced by its
// default.
func (s StyleSet) Normalize() StyleSet {
	return s.withDefaults()
}

// ListStyle derives the paragraph style of a list item from its kind and
// nesting level: prefix + level, e.g. "nList2" or "numList3". An invalid kind
// or a level below 1 yields the Error style.
func (s StyleSet) ListStyle(kind ListKind, level int) string {
	s = s.withDefaults()
	if level < 1 {
		return s.Error
	}
	switch kind {
	case ListUnordered:
		return s.UnorderedPrefix + strconv.Itoa(level)
	case ListOrdered:
		return s.OrderedPrefix + strconv.Itoa(level)
	default:
		return s.Error
	}
}

// DeriveListStyle is ListStyle over the default style set.
func DeriveListStyle(kind ListKind, level int) string {
	return DefaultStyles().ListStyle(kind, level)
}
