package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/tsawler/wdocx/model"
)

// DefaultPlaceholder is the placeholder name replaced by the rendered nodes.
const DefaultPlaceholder = "paragraphReplace"

// ErrPlaceholderNotFound is returned when the template body has no paragraph
// containing the placeholder text.
var ErrPlaceholderNotFound = errors.New("placeholder paragraph not found")

// Options configures patching.
type Options struct {
	// Placeholder is the name between {{ and }} that marks the paragraph to
	// replace. Word may split text across runs; the placeholder must be typed
	// in one go (or pasted) so it lands in a single w:t.
	Placeholder string
}

// DefaultOptions returns options using DefaultPlaceholder.
func DefaultOptions() Options {
	return Options{Placeholder: DefaultPlaceholder}
}

var bookmarkIDPattern = regexp.MustCompile(`<w:bookmarkStart[^>]*\sw:id="(\d+)"`)

// Render patches doc into the template and writes the resulting package to
// w. The template itself is not modified.
func (t *Template) Render(w io.Writer, doc *model.Document, opts Options) error {
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}

	data, err := t.getFileContent(partDocument)
	if err != nil {
		return err
	}
	body := string(data)

	start, end, err := findPlaceholderParagraph(body, opts.Placeholder)
	if err != nil {
		return err
	}

	rels, err := t.relationships()
	if err != nil {
		return err
	}
	pw := &paragraphWriter{
		nextBookmark: maxBookmarkID(body) + 1,
		rels:         newRelAllocator(rels),
	}
	for _, n := range doc.Nodes {
		pw.writeNode(n)
	}

	patched := body[:start] + pw.sb.String() + body[end:]
	replaced := map[string][]byte{}

	if len(pw.rels.added) > 0 {
		patched = ensureRelationshipNamespace(patched)
		relsData, err := t.getFileContent(partDocumentRels)
		if err != nil {
			relsData = []byte(emptyRelationship)
			// A new .rels part needs a content type, which templates
			// usually declare through a Default for the extension.
			types, err := t.getFileContent(partContentTypes)
			if err == nil {
				replaced[partContentTypes] = ensureRelsContentType(types)
			}
		}
		replaced[partDocumentRels] = insertRelationships(relsData, pw.rels.xml())
	}
	replaced[partDocument] = []byte(patched)

	return t.write(w, replaced)
}

// Bytes patches doc into the template and returns the package bytes.
func (t *Template) Bytes(doc *model.Document, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Render(&buf, doc, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Patch renders doc into the template bytes and returns the output bytes.
func Patch(doc *model.Document, template []byte, opts Options) ([]byte, error) {
	t, err := ReadTemplate(template)
	if err != nil {
		return nil, err
	}
	return t.Bytes(doc, opts)
}

// PatchFile renders doc into the template at templatePath and writes the
// result to outPath. It returns the number of bytes written.
func PatchFile(doc *model.Document, templatePath, outPath string, opts Options) (int, error) {
	t, err := OpenTemplate(templatePath)
	if err != nil {
		return 0, err
	}
	out, err := t.Bytes(doc, opts)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return 0, fmt.Errorf("writing output: %w", err)
	}
	return len(out), nil
}

// findPlaceholderParagraph returns the byte range of the w:p element that
// contains the placeholder text.
func findPlaceholderParagraph(body, name string) (start, end int, err error) {
	pos := strings.Index(body, placeholderText(name))
	if pos < 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrPlaceholderNotFound, placeholderText(name))
	}

	before := body[:pos]
	start = strings.LastIndex(before, "<w:p>")
	if i := strings.LastIndex(before, "<w:p "); i > start {
		start = i
	}
	rel := strings.Index(body[pos:], "</w:p>")
	if start < 0 || rel < 0 {
		return 0, 0, fmt.Errorf("%w: %s is not inside a paragraph", ErrPlaceholderNotFound, placeholderText(name))
	}
	return start, pos + rel + len("</w:p>"), nil
}

func maxBookmarkID(body string) int {
	highest := 0
	for _, m := range bookmarkIDPattern.FindAllStringSubmatch(body, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}
	return highest
}

// ensureRelationshipNamespace declares the r: prefix on the document root
// when the template does not.
func ensureRelationshipNamespace(body string) string {
	root := strings.Index(body, "<w:document")
	if root < 0 {
		return body
	}
	tagEnd := strings.Index(body[root:], ">")
	if tagEnd < 0 || strings.Contains(body[root:root+tagEnd], "xmlns:r=") {
		return body
	}
	insert := root + len("<w:document")
	return body[:insert] + ` xmlns:r="` + nsR + `"` + body[insert:]
}

var relsDefaultPattern = regexp.MustCompile(`<Default\s[^>]*Extension="rels"`)

// ensureRelsContentType adds a Default content type for the rels extension
// when [Content_Types].xml lacks one.
func ensureRelsContentType(types []byte) []byte {
	if relsDefaultPattern.Match(types) {
		return types
	}
	i := bytes.LastIndex(types, []byte("</Types>"))
	if i < 0 {
		return types
	}
	out := make([]byte, 0, len(types)+len(relsContentTypeDefault))
	out = append(out, types[:i]...)
	out = append(out, relsContentTypeDefault...)
	return append(out, types[i:]...)
}

func insertRelationships(data []byte, rels string) []byte {
	s := string(data)
	i := strings.LastIndex(s, "</Relationships>")
	if i < 0 {
		return data
	}
	return []byte(s[:i] + rels + s[i:])
}

// write emits the package, substituting replaced parts and appending any
// replaced part the template did not have.
func (t *Template) write(w io.Writer, replaced map[string][]byte) error {
	zw := zip.NewWriter(w)

	written := make(map[string]bool, len(replaced))
	for _, e := range t.entries {
		data := e.data
		if r, ok := replaced[e.header.Name]; ok {
			data = r
			written[e.header.Name] = true
		}
		if err := writeEntry(zw, e.header.Name, e.header.Method, e.header, data); err != nil {
			return err
		}
	}
	for name, data := range replaced {
		if written[name] {
			continue
		}
		if err := writeEntry(zw, name, zip.Deflate, zip.FileHeader{}, data); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing ZIP archive: %w", err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, name string, method uint16, orig zip.FileHeader, data []byte) error {
	if method != zip.Store {
		method = zip.Deflate
	}
	hdr := &zip.FileHeader{
		Name:     name,
		Method:   method,
		Modified: orig.Modified,
	}
	fw, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
