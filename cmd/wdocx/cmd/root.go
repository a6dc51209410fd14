// Package cmd implements the wdocx command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tsawler/wdocx"
	"github.com/tsawler/wdocx/internal/config"
)

// app is the state shared by the subcommands of one invocation.
type app struct {
	cfgFile string
	verbose bool
	strict  bool

	cfg    *config.Config
	logger *slog.Logger
	runID  string
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "wdocx",
		Short: "Convert tab-delimited markup into Word documents",
		Long: `wdocx interprets tab-delimited markup, one command per line, and
renders the result into a .docx template, HTML, Markdown or JSON.

Commands:
  section  Heading1  text  anchor   heading with an optional bookmark
  code     text                     code block
  NormalList / OderList  level      list item
  text     text  [style]            append a span
  link     url  text                append a hyperlink span
  crossRef anchor  text             append an internal link span
  newLine                           end the current block`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./wdocx.toml, then ~/.config/wdocx/config.toml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&a.strict, "strict", false, "fail on a block that is not terminated by newLine")

	root.AddCommand(
		newConvertCommand(a),
		newInspectCommand(a),
		newCheckCommand(a),
		newWatchCommand(a),
		newVersionCommand(),
	)
	return root
}

// setup loads the config and creates the logger.
func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Discover(a.cfgFile)
	if err != nil {
		return err
	}
	if a.strict {
		cfg.Strict = true
	}
	a.cfg = cfg

	level := cfg.Level()
	if a.verbose {
		level = slog.LevelDebug
	}
	a.runID = uuid.New().String()
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).
		With(slog.String("run", a.runID))

	if cfg.Path != "" {
		a.logger.Debug("config loaded", slog.String("path", cfg.Path))
	}
	return nil
}

// converter applies the config to a facade over path.
func (a *app) converter(path string) *wdocx.Converter {
	c := wdocx.Open(path).
		BuilderOptions(a.cfg.BuilderOptions(a.logger)).
		Placeholder(a.cfg.DocxOptions().Placeholder).
		Title(a.cfg.HTML.Title)
	if a.cfg.Template != "" {
		c = c.Template(a.cfg.Template)
	}
	if a.cfg.HTML.Stylesheet != "" {
		c = c.Stylesheet(a.cfg.HTML.Stylesheet)
	}
	return c
}

func (a *app) logWarnings(source string, warnings []wdocx.Warning) {
	for _, w := range warnings {
		attrs := []any{slog.String("source", source)}
		if w.Line > 0 {
			attrs = append(attrs, slog.Int("line", w.Line))
		}
		attrs = append(attrs, slog.String("tag", w.Tag))
		a.logger.Warn(w.Message, attrs...)
	}
}

func printError(w io.Writer, msg string, err error) {
	fmt.Fprintf(w, "error: %s: %v\n", msg, err)
}
