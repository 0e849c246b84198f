package pongo_test

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formtags/pkg/assign"
	formerrors "github.com/goliatone/go-formtags/pkg/errors"
	"github.com/goliatone/go-formtags/pkg/render/template/pongo"
	"github.com/goliatone/go-formtags/pkg/tags"
	"github.com/goliatone/go-formtags/pkg/testsupport"
)

//go:embed testdata/templates/*.tpl
var embeddedTemplates embed.FS

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})

	assertGolden(t, "hello.golden", result, written)
}

func TestEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-global", nil, w)
	})

	assertGolden(t, "use-global.golden", result, written)
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter registration to fail")
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"}, w)
	})

	assertGolden(t, "use-filter.golden", result, written)
}

func TestEngine_RenderForm(t *testing.T) {
	engine := newEngine(t)

	form := testsupport.SimpleForm()
	form.Initial = map[string]any{"textfield": "Ada"}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("form.tpl", map[string]any{"form": form}, w)
	})

	assertGolden(t, "form.golden", result, written)
}

func TestEngine_AssignOptions(t *testing.T) {
	const source = `{% form form %}{% field "<=numberfield2" %}a:{{ field.name }};{% endfield %}{% field "numberfield2" %}b:{{ field.name }};{% endfield %}{% endform %}`

	declaration, err := pongo.New()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	got, err := declaration.RenderString(source, map[string]any{"form": testsupport.SimpleForm()})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := testsupport.CompareStripped("a:textfield;a:textfield2;a:numberfield;a:numberfield2;", got); diff != "" {
		t.Fatalf("declaration order mismatch (-want +got):\n%s", diff)
	}

	ranked, err := pongo.New(pongo.WithAssignOptions(assign.WithPrecedence(assign.PrecedenceRank)))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	got, err = ranked.RenderString(source, map[string]any{"form": testsupport.SimpleForm()})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := testsupport.CompareStripped("a:textfield;a:textfield2;a:numberfield;b:numberfield2;", got); diff != "" {
		t.Fatalf("rank order mismatch (-want +got):\n%s", diff)
	}

	strict, err := pongo.New(pongo.WithAssigner(assign.New(assign.WithUnmatchedPolicy(assign.UnmatchedError))))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	_, err = strict.RenderString(`{% form form %}{% field "textfield" %}{% endfield %}{% endform %}`, map[string]any{"form": testsupport.SimpleForm()})
	if !formerrors.HasCode(tags.Cause(err), formerrors.CodeUnmatchedFields) {
		t.Fatalf("expected unmatched fields error, got %v", err)
	}
}

func TestEngine_Reset(t *testing.T) {
	files := fstest.MapFS{
		"page.tpl": &fstest.MapFile{Data: []byte("v1")},
	}
	engine, err := pongo.New(pongo.WithFS(files))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	render := func() string {
		t.Helper()
		out, err := engine.Render("page", nil)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		return out
	}

	if got := render(); got != "v1" {
		t.Fatalf("expected v1, got %q", got)
	}
	files["page.tpl"] = &fstest.MapFile{Data: []byte("v2")}
	if got := render(); got != "v1" {
		t.Fatalf("expected cached v1, got %q", got)
	}
	engine.Reset()
	if got := render(); got != "v2" {
		t.Fatalf("expected v2 after reset, got %q", got)
	}
}

func TestEngine_DefaultFilters(t *testing.T) {
	engine, err := pongo.New(pongo.WithGlobalData(map[string]any{"title": "  Hello World "}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got, err := engine.Render(`[{{ title|trim }}][{{ title|lowerfirst }}][{{ empty|lowerfirst }}]`, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "[Hello World][  hello World ][]"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestEngine_TemplateFunc(t *testing.T) {
	engine, err := pongo.New(pongo.WithTemplateFunc(map[string]any{
		"greet":   func(name string) string { return "hi " + name },
		"ignored": "not a function",
	}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got, err := engine.RenderString(`{{ greet("Ada") }}{{ ignored }}`, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "hi Ada" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_MissingTemplate(t *testing.T) {
	engine := newEngine(t)
	if _, err := engine.RenderTemplate("nope", nil); err == nil {
		t.Fatalf("expected missing template error")
	}

	bare, err := pongo.New()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := bare.RenderTemplate("hello", nil); err == nil {
		t.Fatalf("expected error without a template source")
	}
}

func newEngine(t *testing.T) *pongo.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}

	engine, err := pongo.New(pongo.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func assertGolden(t *testing.T, name, result, written string) {
	t.Helper()

	path := filepath.Join("testdata", name)
	if testsupport.WriteMaybeGolden(t, path, []byte(result)) {
		return
	}
	want := testsupport.MustReadGoldenString(t, path)
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}
