package wdocx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/tsawler/wdocx/builder"
	"github.com/tsawler/wdocx/command"
	"github.com/tsawler/wdocx/docx"
	"github.com/tsawler/wdocx/format"
	"github.com/tsawler/wdocx/htmldoc"
	"github.com/tsawler/wdocx/model"
)

// Converter provides a fluent interface for converting a source document.
// Each configuration method returns a new Converter instance, making it
// safe for concurrent use and allowing method chaining.
type Converter struct {
	// Source
	filename string
	data     []byte
	inMemory bool
	format   format.Format // forced input format; Unknown means detect

	// Configuration
	options convertOptions

	// Accumulated error (fail-fast)
	err error

	// Warnings accumulated during configuration
	warnings []Warning
}

// clone creates a shallow copy of the Converter with a copy of options.
// This ensures immutability - each chain method returns a new instance.
func (c *Converter) clone() *Converter {
	return &Converter{
		filename: c.filename,
		data:     c.data,
		inMemory: c.inMemory,
		format:   c.format,
		options:  c.options.clone(),
		err:      c.err,
		warnings: append([]Warning(nil), c.warnings...),
	}
}

// ============================================================================
// Configuration Methods (return new Converter instance)
// ============================================================================

// Strict makes an unterminated block an error instead of a dropped node.
//
// Example:
//
//	doc, _, err := wdocx.Open("notes.wd").Strict().Document()
//	if errors.Is(err, builder.ErrUnterminatedBlock) {
//	    // a section, code or list line was not closed by newLine
//	}
func (c *Converter) Strict() *Converter {
	n := c.clone()
	n.options.strict = true
	return n
}

// Normalize applies Unicode NFC normalization to all text.
func (c *Converter) Normalize() *Converter {
	n := c.clone()
	n.options.normalize = true
	return n
}

// Styles overrides the style identifiers assigned to nodes. Empty fields keep
// their defaults.
func (c *Converter) Styles(s command.StyleSet) *Converter {
	n := c.clone()
	n.options.styles = s.Normalize()
	return n
}

// Logger sets the logger receiving debug records for flushes and drops.
func (c *Converter) Logger(l *slog.Logger) *Converter {
	n := c.clone()
	n.options.logger = l
	return n
}

// BuilderOptions replaces the interpretation settings (strict mode,
// normalization, styles and logger) in one call.
func (c *Converter) BuilderOptions(opts builder.Options) *Converter {
	n := c.clone()
	n.options.strict = opts.Strict
	n.options.normalize = opts.Normalize
	n.options.styles = opts.Styles.Normalize()
	n.options.logger = opts.Logger
	return n
}

// Template sets the DOCX template used by DOCX output.
func (c *Converter) Template(path string) *Converter {
	n := c.clone()
	n.options.template = path
	return n
}

// Placeholder sets the name of the template placeholder, without braces.
func (c *Converter) Placeholder(name string) *Converter {
	n := c.clone()
	if name == "" {
		n.err = fmt.Errorf("placeholder name is empty")
		return n
	}
	n.options.placeholder = name
	return n
}

// Title sets the title of HTML pages.
func (c *Converter) Title(title string) *Converter {
	n := c.clone()
	n.options.title = title
	return n
}

// Stylesheet links a CSS file from HTML pages.
func (c *Converter) Stylesheet(href string) *Converter {
	n := c.clone()
	n.options.stylesheet = href
	return n
}

// Fragment makes HTML output a body fragment instead of a full page.
func (c *Converter) Fragment() *Converter {
	n := c.clone()
	n.options.fragment = true
	return n
}

// As forces the input format instead of detecting it.
func (c *Converter) As(f format.Format) *Converter {
	n := c.clone()
	if !f.CanRead() {
		n.err = fmt.Errorf("cannot read %s input", f)
		return n
	}
	n.format = f
	return n
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Document builds the document model. Warnings report substituted arguments,
// dropped blocks and internal links whose anchor no heading defines.
func (c *Converter) Document() (*model.Document, []Warning, error) {
	if c.err != nil {
		return nil, c.warnings, c.err
	}

	raw, err := c.source()
	if err != nil {
		return nil, c.warnings, err
	}
	if err := checkReadable(raw); err != nil {
		return nil, c.warnings, err
	}
	text, err := decode(raw)
	if err != nil {
		return nil, c.warnings, err
	}

	warnings := append([]Warning(nil), c.warnings...)
	var doc *model.Document

	switch c.inputFormat(text) {
	case format.HTML:
		r, err := htmldoc.OpenReader(strings.NewReader(text))
		if err != nil {
			return nil, warnings, err
		}
		doc = r.Document(c.options.styles)
	default:
		var bw []Warning
		doc, bw, err = builder.Build(text, c.options.builderOptions())
		warnings = append(warnings, bw...)
		if err != nil {
			return nil, warnings, err
		}
	}

	for _, anchor := range doc.UnresolvedLinks() {
		warnings = append(warnings, Warning{
			Tag:     command.TagLink,
			Message: fmt.Sprintf("no heading defines anchor %q", anchor),
		})
	}

	if l := c.options.logger; l != nil {
		l.Debug("document built",
			slog.String("source", c.describe()),
			slog.Int("nodes", doc.Len()),
			slog.Int("warnings", len(warnings)))
	}
	return doc, warnings, nil
}

// Text returns the text of every node, one node per line.
func (c *Converter) Text() (string, []Warning, error) {
	doc, warnings, err := c.Document()
	if err != nil {
		return "", warnings, err
	}
	return doc.ExtractText(), warnings, nil
}

// Markdown renders the document as Markdown.
func (c *Converter) Markdown() (string, []Warning, error) {
	doc, warnings, err := c.Document()
	if err != nil {
		return "", warnings, err
	}
	return doc.ToMarkdown(), warnings, nil
}

// HTML renders the document as HTML.
func (c *Converter) HTML() (string, []Warning, error) {
	doc, warnings, err := c.Document()
	if err != nil {
		return "", warnings, err
	}
	out, err := htmldoc.String(doc, c.options.htmlOptions())
	return out, warnings, err
}

// JSON encodes the document model as indented JSON.
func (c *Converter) JSON() ([]byte, []Warning, error) {
	doc, warnings, err := c.Document()
	if err != nil {
		return nil, warnings, err
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, warnings, fmt.Errorf("encoding JSON: %w", err)
	}
	return append(out, '\n'), warnings, nil
}

// DOCX patches the document into the configured template and returns the
// package bytes.
func (c *Converter) DOCX() ([]byte, []Warning, error) {
	if c.err != nil {
		return nil, c.warnings, c.err
	}
	if c.options.template == "" {
		return nil, c.warnings, fmt.Errorf("no DOCX template specified")
	}
	tmpl, err := docx.OpenTemplate(c.options.template)
	if err != nil {
		return nil, c.warnings, err
	}

	doc, warnings, err := c.Document()
	if err != nil {
		return nil, warnings, err
	}
	out, err := tmpl.Bytes(doc, c.options.docxOptions())
	return out, warnings, err
}

// Write converts the document to the format implied by the extension of
// outPath and writes it there. It returns the number of bytes written.
func (c *Converter) Write(outPath string) (int, []Warning, error) {
	return c.WriteAs(outPath, format.Detect(outPath))
}

// WriteAs converts the document to f and writes it to outPath.
func (c *Converter) WriteAs(outPath string, f format.Format) (int, []Warning, error) {
	var (
		out      []byte
		warnings []Warning
		err      error
	)

	switch f {
	case format.DOCX:
		out, warnings, err = c.DOCX()
	case format.HTML:
		var s string
		s, warnings, err = c.HTML()
		out = []byte(s)
	case format.Markdown:
		var s string
		s, warnings, err = c.Markdown()
		out = []byte(s)
	case format.JSON:
		out, warnings, err = c.JSON()
	default:
		return 0, c.warnings, fmt.Errorf("unsupported output format: %s", f)
	}
	if err != nil {
		return 0, warnings, err
	}

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return 0, warnings, fmt.Errorf("writing output: %w", err)
	}
	return len(out), warnings, nil
}

// source returns the raw source bytes.
func (c *Converter) source() ([]byte, error) {
	if c.inMemory {
		return c.data, nil
	}
	if c.filename == "" {
		return nil, fmt.Errorf("no filename specified")
	}
	data, err := os.ReadFile(c.filename)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	return data, nil
}

// inputFormat picks the reader for the decoded source.
func (c *Converter) inputFormat(text string) format.Format {
	if c.format != format.Unknown {
		return c.format
	}
	if f := format.Detect(c.filename); f.CanRead() {
		return f
	}
	if format.DetectFromMagic([]byte(text)) == format.HTML {
		return format.HTML
	}
	return format.WD
}

// checkReadable rejects ZIP packages before they are decoded as text.
func checkReadable(raw []byte) error {
	if !format.IsArchive(raw) {
		return nil
	}
	f, err := format.DetectFromReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return fmt.Errorf("cannot read damaged ZIP input: %w", ErrUnsupportedInput)
	}
	if f == format.DOCX {
		return fmt.Errorf("cannot read DOCX input: %w", ErrUnsupportedInput)
	}
	return fmt.Errorf("cannot read ZIP archive input: %w", ErrUnsupportedInput)
}

func (c *Converter) describe() string {
	if c.inMemory {
		return "memory"
	}
	return c.filename
}

// decode converts source bytes to UTF-8. A byte order mark selects UTF-16 or
// is dropped; without one the input is taken as UTF-8.
func decode(data []byte) (string, error) {
	r := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decoding source: %w", err)
	}
	return string(out), nil
}
