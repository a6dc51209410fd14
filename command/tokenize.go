// Package command tokenizes wd markup lines and parses them into typed
// commands.
//
// A wd document is a sequence of lines. Each line is a tag followed by
// tab-separated arguments:
//
//	section	Heading1	Introduction	intro
//	text	Hello world
//	newLine
//
// [Tokenize] splits a line into fields and [Parse] turns the fields into one
// of the closed set of [Command] variants, substituting explicit defaults for
// missing arguments and reporting each substitution as an [Issue].
package command

import "strings"

// Separator is the field separator. There is no escaping: a tab inside
// intended text always starts a new field.
const Separator = "\t"

// Tokenize splits a line into fields on the tab separator. Fields are not
// trimmed and empty fields between adjacent tabs are kept. A line without
// tabs yields a single field (a tag with no arguments).
func Tokenize(line string) []string {
	return strings.Split(line, Separator)
}

// SplitLines splits source text into lines on "\n" or "\r\n".
func SplitLines(src string) []string {
	lines := strings.Split(src, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
