package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/k0kubun/pp"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/tsawler/wdocx/model"
)

const maxTextWidth = 48

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func newInspectCommand(a *app) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "inspect INPUT",
		Short: "Show the nodes built from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, warnings, err := a.converter(args[0]).Document()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if dump {
				pp.Fprintln(out, doc.Nodes)
			} else {
				writeNodeTable(out, doc)
			}
			for _, w := range warnings {
				fmt.Fprintln(out, warningStyle.Render("warning: "+w.String()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "pretty-print the node structs")
	return cmd
}

// writeNodeTable prints one row per node. Columns are padded by display
// width so wide characters line up.
func writeNodeTable(w io.Writer, doc *model.Document) {
	header := []string{"#", "KIND", "STYLE", "LEVEL", "ANCHOR", "TEXT"}
	rows := make([][]string, 0, doc.Len())
	for i, n := range doc.Nodes {
		level := ""
		if n.Kind.IsList() {
			level = strconv.Itoa(n.Level)
		}
		text := strings.ReplaceAll(n.Text(), "\n", "⏎")
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			n.Kind.String(),
			n.Style,
			level,
			n.Anchor,
			runewidth.Truncate(text, maxTextWidth, "…"),
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	fmt.Fprintln(w, headerStyle.Render(formatRow(header, widths)))
	for _, r := range rows {
		fmt.Fprintln(w, formatRow(r, widths))
	}
	fmt.Fprintf(w, "%d nodes\n", doc.Len())
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		if i == len(cells)-1 {
			parts[i] = c
			continue
		}
		parts[i] = runewidth.FillRight(c, widths[i])
	}
	return strings.Join(parts, "  ")
}
