package wdocx

import (
	"log/slog"

	"github.com/tsawler/wdocx/builder"
	"github.com/tsawler/wdocx/command"
	"github.com/tsawler/wdocx/docx"
	"github.com/tsawler/wdocx/htmldoc"
)

// convertOptions holds configuration for a conversion.
type convertOptions struct {
	// Interpretation
	strict    bool
	normalize bool
	styles    command.StyleSet

	// Output
	template    string // DOCX template path
	placeholder string
	title       string // HTML page title
	stylesheet  string
	fragment    bool

	logger *slog.Logger
}

// defaultOptions returns the default conversion options.
func defaultOptions() convertOptions {
	return convertOptions{
		styles:      command.DefaultStyles(),
		placeholder: docx.DefaultPlaceholder,
		title:       htmldoc.DefaultRenderOptions().Title,
	}
}

// clone creates a copy of convertOptions. All fields are values or shared
// read-only pointers.
func (o convertOptions) clone() convertOptions {
	return o
}

func (o convertOptions) builderOptions() builder.Options {
	return builder.Options{
		Strict:    o.strict,
		Normalize: o.normalize,
		Styles:    o.styles,
		Logger:    o.logger,
	}
}

func (o convertOptions) docxOptions() docx.Options {
	return docx.Options{Placeholder: o.placeholder}
}

func (o convertOptions) htmlOptions() htmldoc.RenderOptions {
	return htmldoc.RenderOptions{
		Title:      o.title,
		Stylesheet: o.stylesheet,
		Fragment:   o.fragment,
	}
}
