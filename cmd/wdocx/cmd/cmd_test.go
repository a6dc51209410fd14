package cmd

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tsawler/wdocx"
)

const sample = "section\tHeading1\tIntro\tintro\n" +
	"newLine\n" +
	"text\tSee \n" +
	"crossRef\tintro\tabove\n" +
	"newLine\n" +
	"OderList\t1\n" +
	"text\tfirst\n" +
	"newLine\n"

// isolate keeps config discovery away from the developer's files.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("WDOCX_CONFIG", "")
	chdir(t, dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeTemplate(t *testing.T, dir string, styles string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	add := func(name, content string) {
		w, _ := zw.Create(name)
		w.Write([]byte(content))
	}
	add("[Content_Types].xml", `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`)
	add("word/document.xml", `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>{{paragraphReplace}}</w:t></w:r></w:p></w:body></w:document>`)
	if styles != "" {
		add("word/styles.xml", `<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`+styles+`</w:styles>`)
	}
	zw.Close()
	return writeFile(t, dir, "template.docx", buf.String())
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

// ============================================================================
// convert
// ============================================================================

func TestConvert_Markdown(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "notes.wd", sample)
	output := filepath.Join(dir, "notes.md")

	stdout, _, err := run(t, "convert", input, output)
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if !strings.Contains(stdout, "wrote "+output) || !strings.Contains(stdout, "0 warnings") {
		t.Errorf("stdout = %q", stdout)
	}

	got, _ := os.ReadFile(output)
	want := "# <a id=\"intro\"></a>Intro\n\nSee [above](#intro)\n\n1. first\n"
	if string(got) != want {
		t.Errorf("markdown = %q, want %q", got, want)
	}
}

func TestConvert_DOCX(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "notes.wd", sample)
	tmpl := writeTemplate(t, dir, "")
	output := filepath.Join(dir, "notes.docx")

	if _, _, err := run(t, "convert", "--template", tmpl, input, output); err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if info, err := os.Stat(output); err != nil || info.Size() == 0 {
		t.Errorf("output not written: %v", err)
	}
}

func TestConvert_ToFlag(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "notes.wd", sample)
	output := filepath.Join(dir, "notes.out")

	if _, _, err := run(t, "convert", "--to", "html", "--fragment", input, output); err != nil {
		t.Fatalf("convert error = %v", err)
	}
	got, _ := os.ReadFile(output)
	if !strings.HasPrefix(string(got), `<h1 id="intro"`) {
		t.Errorf("html = %s", got)
	}

	if _, _, err := run(t, "convert", input, filepath.Join(dir, "notes.pdf")); err == nil {
		t.Error("unknown output format should fail")
	}
}

func TestConvert_Strict(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "bad.wd", "code\tx\nsection\tHeading1\tA\nnewLine\n")
	output := filepath.Join(dir, "bad.md")

	_, stderr, err := run(t, "convert", input, output)
	if err != nil {
		t.Fatalf("lenient convert error = %v", err)
	}
	if !strings.Contains(stderr, "level=WARN") || !strings.Contains(stderr, "unterminated code block dropped") {
		t.Errorf("stderr = %q", stderr)
	}
	if !strings.Contains(stderr, "run=") {
		t.Errorf("log records should carry a run id: %q", stderr)
	}

	if _, _, err := run(t, "--strict", "convert", input, output); err == nil {
		t.Error("--strict convert should fail")
	}
}

func TestConvert_Config(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "notes.wd", "OderList\t2\ntext\tx\nnewLine\n")
	cfg := writeFile(t, dir, "custom.toml", "[styles]\nordered_prefix = \"Numbered\"\n")
	output := filepath.Join(dir, "notes.json")

	if _, _, err := run(t, "--config", cfg, "convert", input, output); err != nil {
		t.Fatalf("convert error = %v", err)
	}
	got, _ := os.ReadFile(output)
	if !strings.Contains(string(got), `"style": "Numbered2"`) {
		t.Errorf("json = %s", got)
	}

	bad := writeFile(t, dir, "bad.toml", "nope = 1\n")
	if _, _, err := run(t, "--config", bad, "convert", input, output); err == nil {
		t.Error("invalid config should fail")
	}
}

func TestConvert_Verbose(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "notes.wd", sample)

	_, stderr, err := run(t, "-v", "convert", input, filepath.Join(dir, "notes.md"))
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	for _, want := range []string{"level=DEBUG", "msg=flushed", `msg="document built"`, "msg=converted"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q", want)
		}
	}
}

// ============================================================================
// inspect / check / version
// ============================================================================

func TestInspect(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "notes.wd", sample+"crossRef\tnowhere\tx\n")

	stdout, _, err := run(t, "inspect", input)
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	for _, want := range []string{"KIND", "heading", "Heading1", "intro", "orderedListItem", "numList1", "4 nodes", `warning: link: no heading defines anchor "nowhere"`} {
		if !strings.Contains(stdout, want) {
			t.Errorf("inspect output missing %q:\n%s", want, stdout)
		}
	}

	stdout, _, err = run(t, "inspect", "--dump", input)
	if err != nil {
		t.Fatalf("inspect --dump error = %v", err)
	}
	if !strings.Contains(stdout, "Intro") {
		t.Errorf("dump output = %s", stdout)
	}
}

func TestWriteNodeTable_WideText(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "wide.wd", "section\tHeading1\t"+strings.Repeat("漢", 40)+"\nnewLine\n")

	stdout, _, err := run(t, "inspect", input)
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	if !strings.Contains(stdout, "…") {
		t.Errorf("long text should be truncated:\n%s", stdout)
	}
}

func TestCheck(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "notes.wd", sample)

	stdout, _, err := run(t, "check", input)
	if err != nil {
		t.Fatalf("check error = %v", err)
	}
	if strings.TrimSpace(stdout) != "ok" {
		t.Errorf("stdout = %q", stdout)
	}

	tmpl := writeTemplate(t, dir, `<w:style w:type="paragraph" w:styleId="Heading1"/><w:style w:type="character" w:styleId="Hyperlink"/>`)
	stdout, _, err = run(t, "check", "--template", tmpl, input)
	if err == nil || !strings.Contains(err.Error(), "2 problems") {
		t.Errorf("check error = %v, want 2 problems", err)
	}
	if !strings.Contains(stdout, "paragraph styles not defined: body1, numList1") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestCheck_MissingPlaceholder(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "notes.wd", "text\tx\n")
	cfg := writeFile(t, dir, "wdocx.toml", "placeholder = \"content\"\n")
	tmpl := writeTemplate(t, dir, `<w:style w:type="paragraph" w:styleId="body1"/>`)

	stdout, _, err := run(t, "--config", cfg, "check", "-t", tmpl, input)
	if err == nil {
		t.Fatal("check should fail")
	}
	if !strings.Contains(stdout, "no paragraph contains {{content}}") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestCheck_TemplateNotWordDocument(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "notes.wd", sample)
	notDocx := writeFile(t, dir, "template.docx", "section\tHeading1\tx\n")

	_, _, err := run(t, "check", "--template", notDocx, input)
	if err == nil || !strings.Contains(err.Error(), "is not a Word document") {
		t.Errorf("check error = %v", err)
	}
}

func TestLogWarnings(t *testing.T) {
	var buf bytes.Buffer
	a := &app{logger: slog.New(slog.NewTextHandler(&buf, nil))}
	a.logWarnings("notes.wd", []wdocx.Warning{
		{Tag: "link", Message: "no anchor"},
		{Line: 3, Tag: "text", Message: "text missing"},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d records:\n%s", len(lines), buf.String())
	}
	if strings.Contains(lines[0], "line=") {
		t.Errorf("warning without a line should omit it: %s", lines[0])
	}
	if !strings.Contains(lines[1], "line=3") || !strings.Contains(lines[1], "tag=text") {
		t.Errorf("record = %s", lines[1])
	}
}

func TestVersion(t *testing.T) {
	isolate(t)
	stdout, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(stdout, "wdocx dev") {
		t.Errorf("stdout = %q", stdout)
	}
}

// ============================================================================
// watch
// ============================================================================

func TestWatch_ConvertsOnStart(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "notes.wd", sample)
	output := filepath.Join(dir, "notes.md")

	a := &app{}
	if err := a.setup(io.Discard); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	if err := a.watch(ctx, &out, io.Discard, input, output, &convertFlags{}); err != nil {
		t.Fatalf("watch error = %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("initial conversion did not run: %v", err)
	}
}

func TestWatchLoop_ConvertsFinalContent(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "notes.wd", "")
	a := &app{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	events := make(chan fsnotify.Event, 4)
	errs := make(chan error)
	converted := make(chan string, 8)
	convert := func() {
		data, _ := os.ReadFile(input)
		converted <- string(data)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.watchLoop(ctx, events, errs, input, 50*time.Millisecond, convert)
	}()

	// An editor truncates, then writes the new content.
	events <- fsnotify.Event{Name: input, Op: fsnotify.Write}
	time.Sleep(10 * time.Millisecond)
	writeFile(t, dir, "notes.wd", "text\tsecond\n")
	events <- fsnotify.Event{Name: input, Op: fsnotify.Write}
	events <- fsnotify.Event{Name: filepath.Join(dir, "other.wd"), Op: fsnotify.Write}

	var last string
	timeout := time.After(2 * time.Second)
wait:
	for {
		select {
		case last = <-converted:
			if last == "text\tsecond\n" {
				break wait
			}
		case <-timeout:
			t.Fatalf("final content never converted, last = %q", last)
		}
	}

	select {
	case extra := <-converted:
		t.Errorf("unexpected extra conversion of %q", extra)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watchLoop error = %v", err)
	}
}

func TestAffects(t *testing.T) {
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "dir/notes.wd", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "dir/./notes.wd", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "dir/notes.wd", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "dir/other.wd", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := affects(tt.event, "dir/notes.wd"); got != tt.want {
			t.Errorf("affects(%v) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 warnings"},
		{1, "1 warning"},
		{1200, "1,200 warnings"},
	}
	for _, tt := range tests {
		if got := plural(tt.n, "warning"); got != tt.want {
			t.Errorf("plural(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

// chdir changes the working directory for the duration of the test,
// matching testing.T.Chdir (Go 1.24+) on older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
