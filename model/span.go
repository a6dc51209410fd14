package model

// Span is a unit of rich text inside a node.
type Span struct {
	Text string `json:"text"`
	// StyleRef names a character style. Empty means inherit the paragraph style.
	StyleRef string `json:"styleRef,omitempty"`
	Link     *Link  `json:"link,omitempty"`
}

// LinkKind distinguishes internal cross references from external hyperlinks
type LinkKind int

const (
	LinkExternal LinkKind = iota
	LinkInternal
)

func (k LinkKind) String() string {
	if k == LinkInternal {
		return "internal"
	}
	return "external"
}

// MarshalText encodes the kind by name.
func (k LinkKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Link is the target of a hyperlink span. Exactly one of Anchor and URL is
// meaningful, selected by Kind.
type Link struct {
	Kind   LinkKind `json:"kind"`
	Anchor string   `json:"anchor,omitempty"`
	URL    string   `json:"url,omitempty"`
}

// InternalLink creates a link to a heading anchor in the same document.
func InternalLink(anchor string) *Link {
	return &Link{Kind: LinkInternal, Anchor: anchor}
}

// ExternalLink creates a link to a URL.
func ExternalLink(url string) *Link {
	return &Link{Kind: LinkExternal, URL: url}
}

// Target returns the anchor for internal links and the URL for external ones.
func (l Link) Target() string {
	if l.Kind == LinkInternal {
		return l.Anchor
	}
	return l.URL
}
