// Package docx renders a model.Document into a DOCX (Office Open XML)
// template.
//
// The template is an ordinary .docx file whose body contains a paragraph with
// the placeholder text {{paragraphReplace}}. Patching replaces that paragraph
// with one w:p per node, styled with the node's style identifier. Every other
// part of the package is copied unchanged, so page setup, headers, footers and
// style definitions all come from the template.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Template is a DOCX package held in memory.
type Template struct {
	entries []entry
}

// entry is one part of the package with its original header.
type entry struct {
	header zip.FileHeader
	data   []byte
}

// OpenTemplate reads a DOCX template from disk.
func OpenTemplate(filename string) (*Template, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	return ReadTemplate(data)
}

// ReadTemplate parses a DOCX template from its bytes.
func ReadTemplate(data []byte) (*Template, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	t := &Template{entries: make([]entry, 0, len(zr.File))}
	for _, f := range zr.File {
		content, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		t.entries = append(t.entries, entry{header: f.FileHeader, data: content})
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// validate checks that required DOCX files exist.
func (t *Template) validate() error {
	required := []string{
		partContentTypes,
		partDocument,
	}

	for _, name := range required {
		if t.find(name) < 0 {
			return fmt.Errorf("missing required file: %s", name)
		}
	}

	return nil
}

func (t *Template) find(name string) int {
	for i, e := range t.entries {
		if e.header.Name == name {
			return i
		}
	}
	return -1
}

// getFileContent returns the content of a part.
func (t *Template) getFileContent(name string) ([]byte, error) {
	if i := t.find(name); i >= 0 {
		return t.entries[i].data, nil
	}
	return nil, fmt.Errorf("file not found: %s", name)
}

// Parts returns the part names in archive order.
func (t *Template) Parts() []string {
	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.header.Name
	}
	return names
}

// HasPlaceholder reports whether the document body contains {{name}}.
func (t *Template) HasPlaceholder(name string) bool {
	data, err := t.getFileContent(partDocument)
	if err != nil {
		return false
	}
	return bytes.Contains(data, []byte(placeholderText(name)))
}

func placeholderText(name string) string {
	return "{{" + name + "}}"
}

// Paragraph is a summary of one w:p read back from a document part.
type Paragraph struct {
	StyleID   string
	Text      string
	Bookmarks []string // bookmark names started inside the paragraph
	Runs      []Run
}

// Run is a text run, with the hyperlink that encloses it if any.
type Run struct {
	Text        string
	StyleID     string
	LinkAnchor  string // w:anchor of an enclosing internal hyperlink
	LinkRelID   string // r:id of an enclosing external hyperlink
	LinkAddress string // target of LinkRelID from the relationships part
}

// Paragraphs reads every paragraph of word/document.xml in order, resolving
// external hyperlink targets through the document relationships.
func (t *Template) Paragraphs() ([]Paragraph, error) {
	data, err := t.getFileContent(partDocument)
	if err != nil {
		return nil, err
	}
	rels, err := t.relationships()
	if err != nil {
		return nil, err
	}
	targets := make(map[string]string, len(rels.Relationships))
	for _, r := range rels.Relationships {
		targets[r.ID] = r.Target
	}

	paras, err := parseParagraphs(data)
	if err != nil {
		return nil, err
	}
	for i := range paras {
		for j := range paras[i].Runs {
			if id := paras[i].Runs[j].LinkRelID; id != "" {
				paras[i].Runs[j].LinkAddress = targets[id]
			}
		}
	}
	return paras, nil
}

// relationships parses the document relationships part. A missing part is an
// empty relationship set.
func (t *Template) relationships() (*relationshipsXML, error) {
	rels := &relationshipsXML{}
	data, err := t.getFileContent(partDocumentRels)
	if err != nil {
		return rels, nil
	}
	if err := xml.Unmarshal(data, rels); err != nil {
		return nil, fmt.Errorf("unmarshaling document relationships: %w", err)
	}
	return rels, nil
}

// parseParagraphs walks the document with a streaming decoder so that runs
// and hyperlinks keep their relative order.
func parseParagraphs(data []byte) ([]Paragraph, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var (
		paras   []Paragraph
		cur     *Paragraph
		run     *Run
		link    hyperlinkXML
		inText  bool
		textBuf strings.Builder
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing document.xml: %w", err)
		}

		switch tok := token.(type) {
		case xml.StartElement:
			switch tok.Name.Local {
			case "p":
				cur = &Paragraph{}
			case "pStyle":
				if cur != nil {
					cur.StyleID = attr(tok, "val")
				}
			case "bookmarkStart":
				if cur != nil {
					cur.Bookmarks = append(cur.Bookmarks, attr(tok, "name"))
				}
			case "hyperlink":
				link = hyperlinkXML{ID: attr(tok, "id"), Anchor: attr(tok, "anchor")}
			case "r":
				run = &Run{LinkAnchor: link.Anchor, LinkRelID: link.ID}
			case "rStyle":
				if run != nil {
					run.StyleID = attr(tok, "val")
				}
			case "t":
				inText = true
				textBuf.Reset()
			case "tab":
				if run != nil {
					run.Text += "\t"
				}
			}
		case xml.CharData:
			if inText {
				textBuf.Write(tok)
			}
		case xml.EndElement:
			switch tok.Name.Local {
			case "t":
				inText = false
				if run != nil {
					run.Text += textBuf.String()
				}
			case "r":
				if cur != nil && run != nil {
					cur.Runs = append(cur.Runs, *run)
					cur.Text += run.Text
				}
				run = nil
			case "hyperlink":
				link = hyperlinkXML{}
			case "p":
				if cur != nil {
					paras = append(paras, *cur)
				}
				cur = nil
			}
		}
	}
	return paras, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
