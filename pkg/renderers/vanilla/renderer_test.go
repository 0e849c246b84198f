package vanilla_test

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formtags/pkg/assign"
	"github.com/goliatone/go-formtags/pkg/model"
	"github.com/goliatone/go-formtags/pkg/render"
	"github.com/goliatone/go-formtags/pkg/renderers/vanilla"
	"github.com/goliatone/go-formtags/pkg/testsupport"
)

func TestRenderer_Metadata(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if renderer.Name() != "vanilla" {
		t.Fatalf("unexpected name %q", renderer.Name())
	}
	if renderer.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}
}

func TestRenderer_RendersFieldsInOrder(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := renderer.Render(context.Background(), testsupport.SimpleForm(), render.RenderOptions{
		Values: map[string]any{"textfield": "Ada"},
		Hidden: []render.HiddenField{{Name: "csrf", Value: "tok"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	doc := parse(t, out)

	var names []string
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "input" {
			names = append(names, attr(n, "name"))
		}
	})
	want := []string{"textfield", "textfield2", "numberfield", "numberfield2", "hidden1", "csrf"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("input order mismatch (-want +got):\n%s", diff)
	}

	form := find(doc, func(n *html.Node) bool { return n.Data == "form" })
	if form == nil {
		t.Fatalf("form element missing:\n%s", out)
	}
	if got := attr(form, "method"); got != "post" {
		t.Fatalf("expected default post method, got %q", got)
	}
	if got := attr(form, "class"); got != "formtags-form" {
		t.Fatalf("unexpected form class %q", got)
	}

	first := find(doc, func(n *html.Node) bool { return n.Data == "input" && attr(n, "name") == "textfield" })
	if got := attr(first, "value"); got != "Ada" {
		t.Fatalf("expected bound value, got %q", got)
	}

	button := find(doc, func(n *html.Node) bool { return n.Data == "button" })
	if button == nil || text(button) != "Submit" {
		t.Fatalf("expected submit button, got:\n%s", out)
	}
}

func TestRenderer_ErrorsAndHelp(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	form := model.Form{
		Method: "GET",
		Action: "/search",
		Fields: []model.Field{
			{Name: "q", Label: "Query", Required: true, HelpText: "Use <em>quotes</em> for phrases"},
		},
	}
	out, err := renderer.Render(context.Background(), form, render.RenderOptions{
		Errors: map[string][]string{
			"/q":      {"is too short"},
			"__all__": {"try again"},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	doc := parse(t, out)
	formNode := find(doc, func(n *html.Node) bool { return n.Data == "form" })
	if attr(formNode, "method") != "get" || attr(formNode, "action") != "/search" {
		t.Fatalf("unexpected form attributes in:\n%s", out)
	}

	var messages []string
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "li" {
			messages = append(messages, text(n))
		}
	})
	if diff := cmp.Diff([]string{"try again", "is too short"}, messages); diff != "" {
		t.Fatalf("error messages mismatch (-want +got):\n%s", diff)
	}

	label := find(doc, func(n *html.Node) bool { return n.Data == "label" })
	if label == nil || attr(label, "for") != "fg-q" || text(label) != "Query *" {
		t.Fatalf("unexpected label in:\n%s", out)
	}

	if find(doc, func(n *html.Node) bool { return n.Data == "em" }) == nil {
		t.Fatalf("expected sanitised help markup to survive:\n%s", out)
	}

	input := find(doc, func(n *html.Node) bool { return n.Data == "input" })
	if attr(input, "aria-invalid") != "true" {
		t.Fatalf("expected aria-invalid on field with errors:\n%s", out)
	}
}

func TestRenderer_CustomTemplateAndAssignOptions(t *testing.T) {
	files := fstest.MapFS{
		"templates/form.tpl": &fstest.MapFile{Data: []byte(
			`{% form form %}{% field "<=numberfield2" %}a:{{ field.name }};{% endfield %}{% field "numberfield2" %}b:{{ field.name }};{% endfield %}{% endform %}`,
		)},
		"templates/title.tpl": &fstest.MapFile{Data: []byte(`{{ title }}|{% form form %}{% field %}{{ field.name }},{% endfield %}{% endform %}`)},
	}

	renderer, err := vanilla.New(
		vanilla.WithTemplatesFS(files),
		vanilla.WithAssignOptions(assign.WithPrecedence(assign.PrecedenceRank)),
	)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := renderer.Render(context.Background(), testsupport.SimpleForm(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := testsupport.CompareStripped("a:textfield;a:textfield2;a:numberfield;b:numberfield2;", string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	out, err = renderer.Render(context.Background(), testsupport.SimpleForm(), render.RenderOptions{
		Template: "templates/title",
		Data:     map[string]any{"title": "Profile"},
		Subset:   render.FieldSubset{Groups: []string{"none"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "Profile|" {
		t.Fatalf("unexpected subset output %q", got)
	}
}

func TestRenderer_ClassesAndTranslator(t *testing.T) {
	translator := render.TranslatorFunc(func(locale, key string, _ ...any) (string, error) {
		if locale == "es" && key == "formtags.submit" {
			return "Enviar", nil
		}
		return "", fmt.Errorf("missing %s", key)
	})

	renderer, err := vanilla.New(
		vanilla.WithClasses(map[vanilla.ChromeClass]string{
			vanilla.ClassForm:  "stack fg-reserved",
			vanilla.ClassField: "row",
		}),
		vanilla.WithTranslator(translator),
		vanilla.WithSubmitLabel("Save"),
	)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	form := model.Form{Fields: []model.Field{{Name: "name"}}}

	out, err := renderer.Render(context.Background(), form, render.RenderOptions{Locale: "es"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := parse(t, out)
	if got := attr(find(doc, func(n *html.Node) bool { return n.Data == "form" }), "class"); got != "formtags-form stack" {
		t.Fatalf("unexpected form class %q", got)
	}
	if got := attr(find(doc, func(n *html.Node) bool { return n.Data == "div" && attr(n, "data-widget") != "" }), "class"); got != "formtags-field row" {
		t.Fatalf("unexpected field class %q", got)
	}
	if got := text(find(doc, func(n *html.Node) bool { return n.Data == "button" })); got != "Enviar" {
		t.Fatalf("expected translated submit label, got %q", got)
	}

	out, err = renderer.Render(context.Background(), form, render.RenderOptions{Locale: "en"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := text(find(parse(t, out), func(n *html.Node) bool { return n.Data == "button" })); got != "Save" {
		t.Fatalf("expected fallback submit label, got %q", got)
	}
}

func TestRenderer_CancelledContext(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := renderer.Render(ctx, testsupport.SimpleForm(), render.RenderOptions{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestAssetsFS(t *testing.T) {
	data, err := fs.ReadFile(vanilla.AssetsFS(), vanilla.StylesheetName)
	if err != nil {
		t.Fatalf("read stylesheet: %v", err)
	}
	if !bytes.Contains(data, []byte(".formtags-form")) {
		t.Fatalf("stylesheet missing form rules")
	}
}

func parse(t *testing.T, out []byte) *html.Node {
	t.Helper()
	doc, err := html.Parse(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func find(root *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode && match(n) {
			found = n
		}
	})
	return found
}

func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return strings.TrimSpace(b.String())
}

func TestRenderer_FormFixture(t *testing.T) {
	form := testsupport.MustLoadForm(t, "testdata/contact.yaml")

	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	got := string(out)
	for _, want := range []string{
		`<input type="text" name="first_name" id="fg-first_name" required>`,
		`<option value="support" selected>Support</option>`,
		`<input type="hidden" name="csrf" id="fg-csrf" value="token-1">`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in:\n%s", want, got)
		}
	}
	if strings.Index(got, `name="first_name"`) > strings.Index(got, `name="topic"`) {
		t.Fatalf("expected declaration order:\n%s", got)
	}
}
