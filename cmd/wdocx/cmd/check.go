package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/wdocx/docx"
	"github.com/tsawler/wdocx/format"
)

func newCheckCommand(a *app) *cobra.Command {
	var template string

	cmd := &cobra.Command{
		Use:   "check INPUT",
		Short: "Report markup problems and styles missing from the template",
		Long: `Check builds INPUT and reports substituted arguments, dropped blocks
and internal links to undefined anchors. With a template it also reports a
missing placeholder and styles the template does not define.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if template == "" {
				template = a.cfg.Template
			}
			problems, err := a.check(cmd.OutOrStdout(), args[0], template)
			if err != nil {
				return err
			}
			if problems > 0 {
				return fmt.Errorf("check found %s", plural(problems, "problem"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "", "DOCX template to check styles against")
	return cmd
}

func (a *app) check(out io.Writer, input, template string) (int, error) {
	doc, warnings, err := a.converter(input).Document()
	if err != nil {
		return 0, err
	}

	problems := 0
	for _, w := range warnings {
		fmt.Fprintln(out, w.String())
		problems++
	}

	if template == "" {
		return problems, nil
	}

	if err := checkTemplate(template); err != nil {
		return problems, err
	}
	tmpl, err := docx.OpenTemplate(template)
	if err != nil {
		return problems, err
	}
	placeholder := a.cfg.DocxOptions().Placeholder
	if !tmpl.HasPlaceholder(placeholder) {
		fmt.Fprintf(out, "template: no paragraph contains {{%s}}\n", placeholder)
		problems++
	}

	paragraph, character := doc.Styles()
	for _, c := range []struct {
		typ docx.StyleType
		ids []string
	}{
		{docx.StyleParagraph, paragraph},
		{docx.StyleCharacter, character},
	} {
		missing, err := tmpl.MissingStyles(c.typ, c.ids)
		if err != nil {
			return problems, err
		}
		if len(missing) > 0 {
			fmt.Fprintf(out, "template: %s styles not defined: %s\n", c.typ, strings.Join(missing, ", "))
			problems += len(missing)
		}
	}
	return problems, nil
}

// checkTemplate rejects a template that is not a Word package.
func checkTemplate(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening template: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("opening template: %w", err)
	}
	kind, err := format.DetectFromReader(f, info.Size())
	if err != nil || kind != format.DOCX {
		return fmt.Errorf("template %s is not a Word document", path)
	}
	return nil
}
