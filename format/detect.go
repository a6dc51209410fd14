// Package format identifies input and output formats by file name and content.
package format

import (
	"archive/zip"
	"bufio"
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/tsawler/wdocx/command"
)

// Format represents a supported document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// WD indicates tab-delimited markup source.
	WD
	// DOCX indicates a Microsoft Word (.docx) document.
	DOCX
	// HTML indicates an HTML document.
	HTML
	// Markdown indicates a Markdown document.
	Markdown
	// JSON indicates the JSON encoding of a document model.
	JSON
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case WD:
		return "WD"
	case DOCX:
		return "DOCX"
	case HTML:
		return "HTML"
	case Markdown:
		return "Markdown"
	case JSON:
		return "JSON"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case WD:
		return ".wd"
	case DOCX:
		return ".docx"
	case HTML:
		return ".html"
	case Markdown:
		return ".md"
	case JSON:
		return ".json"
	default:
		return ""
	}
}

// CanRead reports whether documents can be built from the format.
func (f Format) CanRead() bool {
	return f == WD || f == HTML
}

// CanWrite reports whether documents can be written in the format.
func (f Format) CanWrite() bool {
	return f == DOCX || f == HTML || f == Markdown || f == JSON
}

// Parse maps a format name such as "docx" or "md" to a Format.
func Parse(name string) Format {
	name = strings.ToLower(strings.TrimPrefix(name, "."))
	switch name {
	case "wd", "markup":
		return WD
	case "docx", "word":
		return DOCX
	case "html", "htm":
		return HTML
	case "md", "markdown":
		return Markdown
	case "json":
		return JSON
	default:
		return Unknown
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := filepath.Ext(filename)
	if ext == "" {
		return Unknown
	}
	return Parse(ext)
}

// DetectFromMagic checks leading bytes to determine format.
// ZIP archives are reported as Unknown; use DetectFromReader to look inside.
func DetectFromMagic(data []byte) Format {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if isZIP(data) {
		return Unknown
	}
	if detectHTMLMagic(data) {
		return HTML
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return JSON
	}
	if detectWDMagic(data) {
		return WD
	}
	return Unknown
}

// IsArchive reports whether data starts with a ZIP local file header, the
// container of DOCX and other office packages.
func IsArchive(data []byte) bool {
	return isZIP(data)
}

func isZIP(data []byte) bool {
	return len(data) >= 4 && data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return false
	}

	// Check for common HTML signatures (case-insensitive for DOCTYPE)
	upper := strings.ToUpper(string(data))
	if strings.HasPrefix(upper, "<!DOCTYPE HTML") {
		return true
	}
	if strings.HasPrefix(upper, "<HTML") {
		return true
	}
	// XML declaration followed by html-like content could be XHTML
	if strings.HasPrefix(upper, "<?XML") && strings.Contains(upper[:min(500, len(upper))], "<HTML") {
		return true
	}

	return false
}

// detectWDMagic reports whether the first non-blank line is a recognized
// markup command.
func detectWDMagic(data []byte) bool {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cmd, _ := command.Parse(line)
		return cmd.Category() != command.CategoryIgnored
	}
	return false
}

// DetectFromReader inspects the content to determine format. ZIP archives are
// opened to tell a Word document from other packages.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	if isZIP(magic) {
		return detectZIPFormat(r, size)
	}
	return DetectFromMagic(magic), nil
}

// detectZIPFormat reports DOCX when the archive has a word/ part.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "word/") {
			return DOCX, nil
		}
	}

	return Unknown, nil
}
