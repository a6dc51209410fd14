package docx

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/tsawler/wdocx/model"
)

// paragraphWriter renders nodes as WordprocessingML paragraphs. It allocates
// bookmark ids and hyperlink relationships as it goes.
type paragraphWriter struct {
	sb           strings.Builder
	nextBookmark int
	rels         *relAllocator
}

// writeNode renders one node as a single w:p.
func (w *paragraphWriter) writeNode(n *model.Node) {
	w.sb.WriteString("<w:p>")
	if n.Style != "" {
		w.sb.WriteString(`<w:pPr><w:pStyle w:val="`)
		w.sb.WriteString(escape(n.Style))
		w.sb.WriteString(`"/></w:pPr>`)
	}

	bookmarked := n.Kind == model.KindHeading && n.Anchor != ""
	var id string
	if bookmarked {
		id = strconv.Itoa(w.nextBookmark)
		w.nextBookmark++
		w.sb.WriteString(`<w:bookmarkStart w:id="`)
		w.sb.WriteString(id)
		w.sb.WriteString(`" w:name="`)
		w.sb.WriteString(escape(n.Anchor))
		w.sb.WriteString(`"/>`)
	}

	for _, s := range n.Content {
		w.writeSpan(s)
	}

	if bookmarked {
		w.sb.WriteString(`<w:bookmarkEnd w:id="`)
		w.sb.WriteString(id)
		w.sb.WriteString(`"/>`)
	}
	w.sb.WriteString("</w:p>")
}

func (w *paragraphWriter) writeSpan(s model.Span) {
	if s.Link == nil {
		w.writeRun(s)
		return
	}

	if s.Link.Kind == model.LinkInternal {
		w.sb.WriteString(`<w:hyperlink w:anchor="`)
		w.sb.WriteString(escape(s.Link.Anchor))
		w.sb.WriteString(`" w:history="1">`)
	} else {
		w.sb.WriteString(`<w:hyperlink r:id="`)
		w.sb.WriteString(w.rels.hyperlink(s.Link.URL))
		w.sb.WriteString(`" w:history="1">`)
	}
	w.writeRun(s)
	w.sb.WriteString("</w:hyperlink>")
}

func (w *paragraphWriter) writeRun(s model.Span) {
	w.sb.WriteString("<w:r>")
	if s.StyleRef != "" {
		w.sb.WriteString(`<w:rPr><w:rStyle w:val="`)
		w.sb.WriteString(escape(s.StyleRef))
		w.sb.WriteString(`"/></w:rPr>`)
	}
	w.sb.WriteString(`<w:t xml:space="preserve">`)
	w.sb.WriteString(escape(s.Text))
	w.sb.WriteString("</w:t></w:r>")
}

func escape(s string) string {
	var sb strings.Builder
	// EscapeText only fails if the writer does.
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

// relAllocator hands out relationship ids for external hyperlinks, reusing
// an id when the same URL appears twice.
type relAllocator struct {
	next  int
	byURL map[string]string
	added []relationshipXML
}

func newRelAllocator(existing *relationshipsXML) *relAllocator {
	a := &relAllocator{next: 1, byURL: make(map[string]string)}
	for _, r := range existing.Relationships {
		if n, err := strconv.Atoi(strings.TrimPrefix(r.ID, "rId")); err == nil && n >= a.next {
			a.next = n + 1
		}
	}
	return a
}

func (a *relAllocator) hyperlink(url string) string {
	if id, ok := a.byURL[url]; ok {
		return id
	}
	id := "rId" + strconv.Itoa(a.next)
	a.next++
	a.byURL[url] = id
	a.added = append(a.added, relationshipXML{
		ID:         id,
		Type:       relTypeHyperlink,
		Target:     url,
		TargetMode: "External",
	})
	return id
}

// xml renders the added relationships as Relationship elements.
func (a *relAllocator) xml() string {
	var sb strings.Builder
	for _, r := range a.added {
		sb.WriteString(`<Relationship Id="`)
		sb.WriteString(escape(r.ID))
		sb.WriteString(`" Type="`)
		sb.WriteString(escape(r.Type))
		sb.WriteString(`" Target="`)
		sb.WriteString(escape(r.Target))
		sb.WriteString(`" TargetMode="`)
		sb.WriteString(escape(r.TargetMode))
		sb.WriteString(`"/>`)
	}
	return sb.String()
}
