// Package config loads CLI settings from a TOML or YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/wdocx/builder"
	"github.com/tsawler/wdocx/command"
	"github.com/tsawler/wdocx/docx"
)

// EnvConfig names the environment variable holding a config file path.
const EnvConfig = "WDOCX_CONFIG"

// Format represents the configuration file format
type Format int

const (
	// FormatTOML represents TOML format (default)
	FormatTOML Format = iota
	// FormatYAML represents YAML format
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "toml"
}

// Config holds the settings of a conversion run.
type Config struct {
	Strict      bool   `toml:"strict" yaml:"strict"`
	Normalize   bool   `toml:"normalize" yaml:"normalize"`
	LogLevel    string `toml:"log_level" yaml:"log_level"`
	Template    string `toml:"template" yaml:"template"`
	Placeholder string `toml:"placeholder" yaml:"placeholder"`
	Styles      Styles `toml:"styles" yaml:"styles"`
	HTML        HTML   `toml:"html" yaml:"html"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `toml:"-" yaml:"-"`
}

// Styles overrides the style identifiers assigned to nodes.
type Styles struct {
	Body            string `toml:"body" yaml:"body"`
	Code            string `toml:"code" yaml:"code"`
	Hyperlink       string `toml:"hyperlink" yaml:"hyperlink"`
	Error           string `toml:"error" yaml:"error"`
	UnorderedPrefix string `toml:"unordered_prefix" yaml:"unordered_prefix"`
	OrderedPrefix   string `toml:"ordered_prefix" yaml:"ordered_prefix"`
}

// HTML holds settings for HTML output.
type HTML struct {
	Title      string `toml:"title" yaml:"title"`
	Stylesheet string `toml:"stylesheet" yaml:"stylesheet"`
}

// Default returns the built-in configuration.
func Default() *Config {
	s := command.DefaultStyles()
	return &Config{
		LogLevel:    "info",
		Placeholder: docx.DefaultPlaceholder,
		Styles: Styles{
			Body:            s.Body,
			Code:            s.Code,
			Hyperlink:       s.Hyperlink,
			Error:           s.Error,
			UnorderedPrefix: s.UnorderedPrefix,
			OrderedPrefix:   s.OrderedPrefix,
		},
		HTML: HTML{Title: "Document"},
	}
}

// Load reads a config file. The format is chosen by extension; values the
// file does not set keep their defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("config file path cannot be empty")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(content, detectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes config content over the defaults and validates it.
func Parse(content []byte, format Format) (*Config, error) {
	cfg := Default()

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decoding YAML: %w", err)
		}
	default:
		md, err := toml.Decode(string(content), cfg)
		if err != nil {
			return nil, fmt.Errorf("decoding TOML: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
	}

	cfg.Template = expandPath(cfg.Template)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// detectFormat detects configuration format from file extension
func detectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// expandPath expands environment variables and a leading ~ in a path.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return p
}

// Validate checks the settings.
func (c *Config) Validate() error {
	var problems []string

	if _, err := ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	if strings.ContainsAny(c.Placeholder, "{}") {
		problems = append(problems, fmt.Sprintf("placeholder %q must not include braces", c.Placeholder))
	}
	for name, v := range map[string]string{
		"styles.body":             c.Styles.Body,
		"styles.code":             c.Styles.Code,
		"styles.hyperlink":        c.Styles.Hyperlink,
		"styles.error":            c.Styles.Error,
		"styles.unordered_prefix": c.Styles.UnorderedPrefix,
		"styles.ordered_prefix":   c.Styles.OrderedPrefix,
	} {
		if strings.ContainsAny(v, " \t\r\n") {
			problems = append(problems, fmt.Sprintf("%s %q must not contain whitespace", name, v))
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ParseLevel maps a level name to a slog level. An empty name is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// StyleSet returns the configured styles with empty fields defaulted.
func (c *Config) StyleSet() command.StyleSet {
	return command.StyleSet{
		Body:            c.Styles.Body,
		Code:            c.Styles.Code,
		Hyperlink:       c.Styles.Hyperlink,
		Error:           c.Styles.Error,
		UnorderedPrefix: c.Styles.UnorderedPrefix,
		OrderedPrefix:   c.Styles.OrderedPrefix,
	}.Normalize()
}

// BuilderOptions maps the config onto builder options.
func (c *Config) BuilderOptions(logger *slog.Logger) builder.Options {
	return builder.Options{
		Strict:    c.Strict,
		Normalize: c.Normalize,
		Styles:    c.StyleSet(),
		Logger:    logger,
	}
}

// DocxOptions maps the config onto docx options.
func (c *Config) DocxOptions() docx.Options {
	if c.Placeholder == "" {
		return docx.DefaultOptions()
	}
	return docx.Options{Placeholder: c.Placeholder}
}
