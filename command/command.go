package command

import (
	"fmt"
	"strconv"
	"strings"
)

// Tags recognized by Parse.
const (
	TagSection          = "section"
	TagCode             = "code"
	TagNormalList       = "NormalList"
	TagOrderedList      = "OderList"
	TagOrderedListAlias = "OrderList"
	TagText             = "text"
	TagLink             = "link"
	TagCrossRef         = "crossRef"
	TagNewLine          = "newLine"
)

// Category groups commands by their effect on the current node.
type Category int

const (
	CategoryIgnored Category = iota // unrecognized tag, no effect
	CategoryBlock                   // replaces the current node
	CategoryContent                 // appends to the current node
	CategoryTerminator              // marks the current node ready to flush
)

func (c Category) String() string {
	switch c {
	case CategoryBlock:
		return "block"
	case CategoryContent:
		return "content"
	case CategoryTerminator:
		return "terminator"
	default:
		return "ignored"
	}
}

// Command is one parsed line. The set of implementations is closed: Section,
// Code, List, Text, Link, NewLine and Unknown.
type Command interface {
	// Tag returns the tag the command was parsed from.
	Tag() string
	// Category reports how the command affects the current node.
	Category() Category

	isCommand()
}

// Section opens a heading node.
type Section struct {
	Style  string // paragraph style; empty when the field was missing
	Text   string
	Anchor string // bookmark id; empty means no bookmark
}

// Code opens a code node holding the literal text.
type Code struct {
	Text string
}

// List opens a list item node. Level is 0 when the level field was missing
// or not a positive integer.
type List struct {
	Kind  ListKind
	Level int
	tag   string
}

// Text appends a plain span to the current node.
type Text struct {
	Text     string
	StyleRef string
}

// Link appends a hyperlink span to the current node.
type Link struct {
	Target   string // URL, or anchor id when Internal
	Internal bool
	Text     string
	tag      string
}

// NewLine terminates the current node.
type NewLine struct{}

// Unknown is any line whose tag is not recognized, including blank lines.
type Unknown struct {
	Name string
}

func (Section) Tag() string   { return TagSection }
func (Code) Tag() string      { return TagCode }
func (NewLine) Tag() string   { return TagNewLine }
func (t Text) Tag() string    { return TagText }
func (u Unknown) Tag() string { return u.Name }

func (l List) Tag() string {
	if l.tag != "" {
		return l.tag
	}
	if l.Kind == ListOrdered {
		return TagOrderedList
	}
	return TagNormalList
}

func (l Link) Tag() string {
	if l.tag != "" {
		return l.tag
	}
	return TagLink
}

func (Section) Category() Category { return CategoryBlock }
func (Code) Category() Category    { return CategoryBlock }
func (List) Category() Category    { return CategoryBlock }
func (Text) Category() Category    { return CategoryContent }
func (Link) Category() Category    { return CategoryContent }
func (NewLine) Category() Category { return CategoryTerminator }
func (Unknown) Category() Category { return CategoryIgnored }

func (Section) isCommand() {}
func (Code) isCommand()    {}
func (List) isCommand()    {}
func (Text) isCommand()    {}
func (Link) isCommand()    {}
func (NewLine) isCommand() {}
func (Unknown) isCommand() {}

// Issue describes a default that Parse substituted for a missing or
// malformed argument.
type Issue struct {
	Tag     string
	Field   string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s %s", i.Tag, i.Field, i.Message)
}

// Parse tokenizes a line and builds its command. Parse never fails: missing
// fields are replaced by defaults and each replacement is reported as an
// Issue.
func Parse(line string) (Command, []Issue) {
	return ParseFields(Tokenize(line))
}

// ParseFields builds a command from already tokenized fields.
func ParseFields(fields []string) (Command, []Issue) {
	if len(fields) == 0 {
		return Unknown{}, nil
	}
	tag, args := fields[0], fields[1:]
	p := &argParser{tag: tag, args: args}

	switch tag {
	case TagSection:
		style := p.required(0, "style")
		text := p.required(1, "text")
		anchor := p.optional(2)
		return Section{Style: style, Text: text, Anchor: anchor}, p.issues

	case TagCode:
		return Code{Text: p.required(0, "code")}, p.issues

	case TagNormalList:
		return List{Kind: ListUnordered, Level: p.level(0), tag: tag}, p.issues

	case TagOrderedList, TagOrderedListAlias:
		return List{Kind: ListOrdered, Level: p.level(0), tag: tag}, p.issues

	case TagText:
		return Text{Text: p.required(0, "text"), StyleRef: p.optional(1)}, p.issues

	case TagLink:
		return p.link(), p.issues

	case TagCrossRef:
		anchor := strings.TrimPrefix(p.required(0, "anchor"), "#")
		text := p.required(1, "text")
		return Link{Target: anchor, Internal: true, Text: text, tag: tag}, p.issues

	case TagNewLine:
		return NewLine{}, nil

	default:
		return Unknown{Name: tag}, nil
	}
}

// argParser reads positional arguments and records substitutions.
type argParser struct {
	tag    string
	args   []string
	issues []Issue
}

func (p *argParser) optional(i int) string {
	if i < len(p.args) {
		return p.args[i]
	}
	return ""
}

func (p *argParser) required(i int, field string) string {
	if i < len(p.args) {
		return p.args[i]
	}
	p.issues = append(p.issues, Issue{Tag: p.tag, Field: field, Message: "missing, using empty value"})
	return ""
}

func (p *argParser) level(i int) int {
	if i >= len(p.args) {
		p.required(i, "level")
		return 0
	}
	raw := p.args[i]
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		p.issues = append(p.issues, Issue{
			Tag:     p.tag,
			Field:   "level",
			Message: fmt.Sprintf("%q is not a positive integer", raw),
		})
		return 0
	}
	return n
}

// link handles both the two-field form (target, text) and the
// three-field form (target, mode, text).
func (p *argParser) link() Link {
	target := p.required(0, "target")
	var mode, text string
	if len(p.args) >= 3 {
		mode = p.args[1]
		text = p.args[2]
	} else {
		text = p.required(1, "text")
	}

	internal := false
	switch mode {
	case "internal", "anchor", TagCrossRef:
		internal = true
	}
	if strings.HasPrefix(target, "#") {
		internal = true
		target = target[1:]
	}
	return Link{Target: target, Internal: internal, Text: text, tag: p.tag}
}
