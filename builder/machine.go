package builder

import (
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/wdocx/command"
	"github.com/tsawler/wdocx/model"
)

// State names the accumulator's two states.
type State int

const (
	// Idle: the current node is the empty defaultText placeholder.
	Idle State = iota
	// Open: the current node is a block (or upgraded text) in progress.
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "idle"
}

// Transition reports the observable effect of one Step.
type Transition struct {
	From, To State

	// Emitted is the node flushed by a terminator, nil otherwise.
	Emitted *model.Node
	// Discarded is true when a terminator flushed an untouched idle node,
	// which is dropped instead of emitted.
	Discarded bool
	// Dropped is the unterminated node a block-opening command replaced.
	Dropped *model.Node
}

// Machine is the single-slot accumulator. It holds exactly one current node;
// block commands replace it, content commands append to it and a terminator
// flushes it and resets to a fresh idle node.
type Machine struct {
	styles    command.StyleSet
	normalize bool
	current   *model.Node
}

// NewMachine creates an accumulator in the Idle state.
func NewMachine(styles command.StyleSet, normalize bool) *Machine {
	m := &Machine{
		styles:    styles.Normalize(),
		normalize: normalize,
	}
	m.reset()
	return m
}

func (m *Machine) reset() {
	m.current = model.NewNode(model.KindDefaultText, m.styles.Body)
}

// State returns the current state.
func (m *Machine) State() State {
	if m.current.Kind == model.KindDefaultText {
		return Idle
	}
	return Open
}

// Current returns the node in progress. Callers must not retain it across
// Steps.
func (m *Machine) Current() *model.Node {
	return m.current
}

// Step applies one command.
func (m *Machine) Step(cmd command.Command) Transition {
	t := Transition{From: m.State()}

	switch c := cmd.(type) {
	case command.Section:
		t.Dropped = m.replace(m.heading(c))
	case command.Code:
		t.Dropped = m.replace(model.NewCode(m.styles.Code, m.text(c.Text)))
	case command.List:
		t.Dropped = m.replace(m.listItem(c))
	case command.Text:
		m.appendSpan(model.KindStyledText, model.Span{Text: m.text(c.Text), StyleRef: c.StyleRef})
	case command.Link:
		link := model.ExternalLink(c.Target)
		if c.Internal {
			link = model.InternalLink(c.Target)
		}
		m.appendSpan(model.KindLink, model.Span{Text: m.text(c.Text), StyleRef: m.styles.Hyperlink, Link: link})
	case command.NewLine:
		t.Emitted, t.Discarded = m.flush()
	case command.Unknown:
		// no-op
	}

	t.To = m.State()
	return t
}

// Finish force-flushes an Open node at end of input. It returns nil when the
// machine is Idle.
func (m *Machine) Finish() *model.Node {
	if m.State() == Idle {
		return nil
	}
	n, _ := m.flush()
	return n
}

// replace swaps in a new block node and returns the previous one if it was
// an unterminated block (never the idle placeholder).
func (m *Machine) replace(n *model.Node) *model.Node {
	var dropped *model.Node
	if m.State() == Open {
		dropped = m.current
	}
	m.current = n
	return dropped
}

// appendSpan adds a span, upgrading an idle node to the given kind first.
func (m *Machine) appendSpan(idleKind model.NodeKind, s model.Span) {
	if m.State() == Idle {
		m.current.Kind = idleKind
	}
	m.current.Append(s)
}

// flush hands off the current node and resets. An untouched defaultText node
// is discarded.
func (m *Machine) flush() (emitted *model.Node, discarded bool) {
	n := m.current
	m.reset()
	if n.Kind == model.KindDefaultText && n.IsUntouched() {
		return nil, true
	}
	return n, false
}

func (m *Machine) heading(c command.Section) *model.Node {
	style := c.Style
	if style == "" {
		style = m.styles.Error
	}
	return model.NewHeading(style, m.text(c.Text), c.Anchor)
}

func (m *Machine) listItem(c command.List) *model.Node {
	kind := model.KindNormalListItem
	if c.Kind == command.ListOrdered {
		kind = model.KindOrderedListItem
	}
	return model.NewListItem(kind, m.styles.ListStyle(c.Kind, c.Level), c.Level)
}

func (m *Machine) text(s string) string {
	if m.normalize {
		return norm.NFC.String(s)
	}
	return s
}
