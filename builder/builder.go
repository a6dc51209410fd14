// Package builder drives the command interpreter over wd source and collects
// the flushed nodes into a model.Document.
//
// Basic usage:
//
//	doc, warnings, err := builder.Build(src, builder.DefaultOptions())
//	if err != nil {
//	    // only possible in strict mode
//	}
//	if len(warnings) > 0 {
//	    log.Println(builder.FormatWarnings(warnings))
//	}
package builder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tsawler/wdocx/command"
	"github.com/tsawler/wdocx/model"
)

// ErrUnterminatedBlock is returned in strict mode when a block-opening
// command replaces a block that was never terminated by newLine.
var ErrUnterminatedBlock = errors.New("unterminated block")

// UnterminatedBlockError carries the position of a strict-mode failure.
type UnterminatedBlockError struct {
	Line    int            // 1-indexed line of the block-opening command
	Tag     string         // tag of the block-opening command
	Dropped model.NodeKind // kind of the node that would have been dropped
}

func (e *UnterminatedBlockError) Error() string {
	return fmt.Sprintf("line %d: %s opened while %s block was not terminated by %s",
		e.Line, e.Tag, e.Dropped, command.TagNewLine)
}

func (e *UnterminatedBlockError) Unwrap() error {
	return ErrUnterminatedBlock
}

// Options configures a Builder.
type Options struct {
	// Strict turns a silently dropped unterminated block into an error.
	Strict bool
	// Normalize applies Unicode NFC normalization to all text.
	Normalize bool
	// Styles overrides the style identifiers assigned to nodes.
	Styles command.StyleSet
	// Logger receives debug records for flushes and drops. Nil disables logging.
	Logger *slog.Logger
}

// DefaultOptions returns lenient options with the default style set.
func DefaultOptions() Options {
	return Options{
		Styles: command.DefaultStyles(),
	}
}

// Warning describes a non-fatal problem found while building.
type Warning struct {
	Line    int // 1-indexed; 0 when not tied to a line
	Tag     string
	Message string
}

func (w Warning) String() string {
	switch {
	case w.Line == 0 && w.Tag != "":
		return fmt.Sprintf("%s: %s", w.Tag, w.Message)
	case w.Line == 0:
		return fmt.Sprintf("end of input: %s", w.Message)
	}
	return fmt.Sprintf("line %d (%s): %s", w.Line, w.Tag, w.Message)
}

// FormatWarnings joins warnings into one line each.
func FormatWarnings(warnings []Warning) string {
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "\n")
}

// Builder feeds lines through a Machine in order and collects the document.
// Node N+1 is never constructed before node N's flush decision is made.
type Builder struct {
	opts     Options
	machine  *Machine
	doc      *model.Document
	warnings []Warning
	line     int
	err      error
	done     bool
}

// New creates a Builder.
func New(opts Options) *Builder {
	return &Builder{
		opts:    opts,
		machine: NewMachine(opts.Styles, opts.Normalize),
		doc:     model.NewDocument(),
	}
}

// Feed interprets one line. After an error (strict mode) or Finish, further
// lines are ignored and the same error is returned.
func (b *Builder) Feed(line string) error {
	if b.err != nil || b.done {
		return b.err
	}
	b.line++

	cmd, issues := command.Parse(line)
	for _, is := range issues {
		b.warn(cmd.Tag(), is.Field+" "+is.Message)
	}

	if b.opts.Strict && cmd.Category() == command.CategoryBlock && b.machine.State() == Open {
		b.err = &UnterminatedBlockError{Line: b.line, Tag: cmd.Tag(), Dropped: b.machine.Current().Kind}
		return b.err
	}

	t := b.machine.Step(cmd)
	if t.Dropped != nil {
		b.warn(cmd.Tag(), fmt.Sprintf("unterminated %s block dropped", t.Dropped.Kind))
		b.debug("dropped", t.Dropped)
	}
	if t.Emitted != nil {
		b.doc.Append(t.Emitted)
		b.debug("flushed", t.Emitted)
	}
	return nil
}

// Finish force-flushes any open node and returns the document. Calling it
// again returns the same document.
func (b *Builder) Finish() (*model.Document, []Warning, error) {
	if b.err != nil {
		return nil, b.warnings, b.err
	}
	if !b.done {
		b.done = true
		if n := b.machine.Finish(); n != nil {
			b.doc.Append(n)
			b.debug("flushed at end of input", n)
		}
	}
	return b.doc, b.warnings, nil
}

func (b *Builder) warn(tag, msg string) {
	b.warnings = append(b.warnings, Warning{Line: b.line, Tag: tag, Message: msg})
}

func (b *Builder) debug(msg string, n *model.Node) {
	if b.opts.Logger == nil {
		return
	}
	b.opts.Logger.Debug(msg,
		slog.Int("line", b.line),
		slog.String("kind", n.Kind.String()),
		slog.String("style", n.Style),
		slog.Int("spans", len(n.Content)))
}

// Build interprets all of src. Lines are separated by "\n" or "\r\n".
func Build(src string, opts Options) (*model.Document, []Warning, error) {
	return BuildLines(command.SplitLines(src), opts)
}

// BuildLines interprets pre-split lines.
func BuildLines(lines []string, opts Options) (*model.Document, []Warning, error) {
	b := New(opts)
	for _, line := range lines {
		if err := b.Feed(line); err != nil {
			return nil, b.warnings, err
		}
	}
	return b.Finish()
}

// maxLineSize bounds a single line read by BuildReader.
const maxLineSize = 4 * 1024 * 1024

// BuildReader interprets lines as they are read from r.
func BuildReader(r io.Reader, opts Options) (*model.Document, []Warning, error) {
	b := New(opts)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		if err := b.Feed(strings.TrimSuffix(sc.Text(), "\r")); err != nil {
			return nil, b.warnings, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, b.warnings, fmt.Errorf("reading input: %w", err)
	}
	return b.Finish()
}
