// Package model provides the intermediate representation (IR) produced by
// interpreting a wd command stream.
//
// This package defines the user-facing data structures that renderers consume.
// The builder package produces them; the docx and htmldoc packages turn them
// into files.
//
// # Document Structure
//
// The [Document] type is an ordered sequence of [Node] values. Order is the
// order in which the nodes were flushed and is the order they render in:
//
//	doc := model.NewDocument()
//	doc.Append(model.NewHeading("Heading1", "Introduction", "intro"))
//
// # Nodes
//
// Every node carries a [NodeKind], a style identifier and at least one [Span]:
//
//   - [KindHeading] - a heading, optionally bookmarked by an anchor
//   - [KindStyledText] - a body paragraph
//   - [KindNormalListItem], [KindOrderedListItem] - list items with a computed list style
//   - [KindCode] - a code block
//   - [KindLink] - a paragraph that started with a hyperlink
//   - [KindDefaultText] - the empty placeholder a builder holds while idle
//
// # Links
//
// A [Link] is either internal (an anchor id that should match a heading's
// anchor elsewhere in the same document) or external (a URL). Links carry
// identifiers, never references to other nodes.
package model
