package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tsawler/wdocx/format"
)

type convertFlags struct {
	template string
	to       string
	fragment bool
	title    string
}

func newConvertCommand(a *app) *cobra.Command {
	f := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert INPUT OUTPUT",
		Short: "Convert a markup or HTML file",
		Long: `Convert INPUT and write OUTPUT. The output format follows the
extension of OUTPUT (.docx, .html, .md, .json) unless --to is given.
DOCX output needs a template containing {{paragraphReplace}}.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.convert(cmd.OutOrStdout(), args[0], args[1], f)
		},
	}

	cmd.Flags().StringVarP(&f.template, "template", "t", "", "DOCX template (overrides config)")
	cmd.Flags().StringVar(&f.to, "to", "", "output format: docx, html, md, json")
	cmd.Flags().BoolVar(&f.fragment, "fragment", false, "write an HTML body fragment")
	cmd.Flags().StringVar(&f.title, "title", "", "HTML page title (overrides config)")
	return cmd
}

func (a *app) convert(out io.Writer, input, output string, f *convertFlags) error {
	target := format.Detect(output)
	if f.to != "" {
		target = format.Parse(f.to)
	}
	if !target.CanWrite() {
		return fmt.Errorf("cannot write %s: unknown output format", output)
	}

	c := a.converter(input)
	if f.template != "" {
		c = c.Template(f.template)
	}
	if f.fragment {
		c = c.Fragment()
	}
	if f.title != "" {
		c = c.Title(f.title)
	}

	start := time.Now()
	n, warnings, err := c.WriteAs(output, target)
	a.logWarnings(input, warnings)
	if err != nil {
		return err
	}

	a.logger.Info("converted",
		slog.String("input", input),
		slog.String("output", output),
		slog.String("format", target.String()),
		slog.Duration("elapsed", time.Since(start)))
	fmt.Fprintf(out, "wrote %s (%s, %s)\n", output, humanize.Bytes(uint64(n)), plural(len(warnings), "warning"))
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}
