// Package wdocx provides a fluent API for converting tab-delimited markup into
// Word documents, HTML, Markdown and JSON.
//
// Basic usage:
//
//	n, warnings, err := wdocx.Open("notes.wd").
//	    Template("template.docx").
//	    Write("notes.docx")
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", wdocx.FormatWarnings(warnings))
//	}
//
// With options:
//
//	html, _, err := wdocx.FromString(src).
//	    Strict().
//	    Normalize().
//	    HTML()
//
// For lower-level control, the builder, docx and htmldoc packages can be used
// directly.
package wdocx

import (
	"errors"
	"io"

	"github.com/tsawler/wdocx/builder"
)

// ErrUnsupportedInput is returned when the source is a binary package, such
// as a DOCX file, that cannot be read as markup or HTML.
var ErrUnsupportedInput = errors.New("unsupported input format")

// Warning is a non-fatal problem found during conversion.
type Warning = builder.Warning

// FormatWarnings joins warnings into one line each.
func FormatWarnings(warnings []Warning) string {
	return builder.FormatWarnings(warnings)
}

// Open returns a Converter reading its source from a file. The input format
// is taken from the extension, falling back to content detection.
//
// Example:
//
//	md, warnings, err := wdocx.Open("notes.wd").Markdown()
func Open(filename string) *Converter {
	return &Converter{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromString returns a Converter over in-memory source text.
func FromString(src string) *Converter {
	return FromBytes([]byte(src))
}

// FromBytes returns a Converter over in-memory source bytes. UTF-16 input with
// a byte order mark is decoded; a UTF-8 byte order mark is dropped.
func FromBytes(data []byte) *Converter {
	return &Converter{
		data:     data,
		inMemory: true,
		options:  defaultOptions(),
	}
}

// FromReader reads all of r and returns a Converter over its content. A read
// error is reported by the first terminal operation.
func FromReader(r io.Reader) *Converter {
	data, err := io.ReadAll(r)
	c := FromBytes(data)
	if err != nil {
		c.err = err
	}
	return c
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustResult is a helper that wraps a terminal operation such as Markdown()
// and panics if the error is non-nil. It discards warnings.
//
// Example:
//
//	md := wdocx.MustResult(wdocx.FromString(src).Markdown())
func MustResult[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
