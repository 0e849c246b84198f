package tags_test

import (
	"os"
	"testing"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formtags/pkg/assign"
	formerrors "github.com/goliatone/go-formtags/pkg/errors"
	"github.com/goliatone/go-formtags/pkg/model"
	"github.com/goliatone/go-formtags/pkg/tags"
	"github.com/goliatone/go-formtags/pkg/testsupport"
)

func TestMain(m *testing.M) {
	tags.MustRegister()
	os.Exit(m.Run())
}

func execute(t *testing.T, form any, body string, extra pongo2.Context) (string, error) {
	t.Helper()
	tpl, err := pongo2.FromString("{% form form %}" + body + "{% endform %}")
	if err != nil {
		t.Fatalf("parse template: %v", err)
	}
	data := pongo2.Context{"form": form}
	data.Update(extra)
	return tpl.Execute(data)
}

func check(t *testing.T, form any, body, want string, extra pongo2.Context) {
	t.Helper()
	got, err := execute(t, form, body, extra)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if diff := testsupport.CompareStripped(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func expectCode(t *testing.T, form any, body string, extra pongo2.Context, code formerrors.ErrorCode) {
	t.Helper()
	_, err := execute(t, form, body, extra)
	if err == nil {
		t.Fatalf("expected %s error", code)
	}
	if !formerrors.HasCode(tags.Cause(err), code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func with(options ...assign.Option) pongo2.Context {
	return pongo2.Context{tags.AssignerKey: assign.New(options...)}
}

func TestCatchAllOnly(t *testing.T) {
	check(t, testsupport.SimpleForm(),
		`{% field %}{{ field.name }},{% endfield %}`,
		`textfield,textfield2,numberfield,numberfield2,`, nil)
}

func TestFieldWithCatchAll(t *testing.T) {
	check(t, testsupport.SimpleForm(), `
		{% field "textfield" %}EXPLICIT,{% endfield %}
		{% field %}{{ field.name }},{% endfield %}`,
		`EXPLICIT,textfield2,numberfield,numberfield2,`, nil)
}

func TestFieldAfterCatchAll(t *testing.T) {
	check(t, testsupport.SimpleForm(), `
		{% field %}{{ field.name }},{% endfield %}
		{% field "textfield" %}EXPLICIT{% endfield %}`,
		`textfield2,numberfield,numberfield2,EXPLICIT`, nil)
}

func TestFieldsAreJoinedByNewlines(t *testing.T) {
	got, err := execute(t, testsupport.SimpleForm(),
		`{% field "text*" %}{{ field.name }}{% endfield %}|{% field %}{% endfield %}`, nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != "textfield\ntextfield2|\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestMissingField(t *testing.T) {
	check(t, testsupport.SimpleForm(), `
		{% field "does_not_exist?" %}ERROR{% endfield %}
		{% field %}{% endfield %}`, ``, with(assign.WithRequireMatches(true)))

	check(t, testsupport.SimpleForm(), `
		{% field "does_not_exist" %}ERROR{% endfield %}
		{% field %}{% endfield %}`, ``, nil)

	expectCode(t, testsupport.SimpleForm(), `
		{% field "does_not_exist" %}ERROR{% endfield %}
		{% field %}{% endfield %}`,
		with(assign.WithRequireMatches(true)), formerrors.CodeRequiredUnmatched)
}

func TestLeftoverFields(t *testing.T) {
	body := `{% field "textfield" %}f{% endfield %}`

	check(t, testsupport.SimpleForm(), body, `f`, with(assign.WithUnmatchedPolicy(assign.UnmatchedDrop)))
	expectCode(t, testsupport.SimpleForm(), body, with(assign.WithUnmatchedPolicy(assign.UnmatchedError)), formerrors.CodeUnmatchedFields)
}

func TestWildcards(t *testing.T) {
	check(t, testsupport.SimpleForm(), `
		{% field "text*" %}{{ field.name }},{% endfield %}
		{% field %}{% endfield %}`,
		`textfield,textfield2,`, nil)

	check(t, testsupport.SimpleForm(), `
		{% field "*2" %}{{ field.name }},{% endfield %}
		{% field %}{% endfield %}`,
		`textfield2,numberfield2,`, nil)

	expectCode(t, testsupport.SimpleForm(), `
		{% field "nonexistent*" %}{{ field.name }},{% endfield %}
		{% field %}{% endfield %}`,
		with(assign.WithRequireMatches(true)), formerrors.CodeRequiredUnmatched)

	check(t, testsupport.SimpleForm(), `
		{% field "nonexistent*?" %}(shouldn't exist),{% endfield %}
		{% field %}{% endfield %}`,
		``, with(assign.WithRequireMatches(true)))
}

func TestPositional(t *testing.T) {
	cases := map[string]string{
		"<textfield2":   "textfield,",
		"<=textfield2":  "textfield,textfield2,",
		">numberfield":  "numberfield2,",
		">=numberfield": "numberfield,numberfield2,",
	}
	for expr, want := range cases {
		check(t, testsupport.SimpleForm(),
			`{% field "`+expr+`" %}{{ field.name }},{% endfield %}{% field %}{% endfield %}`,
			want, nil)
	}

	expectCode(t, testsupport.SimpleForm(),
		`{% field "<nope" %}{% endfield %}{% field %}{% endfield %}`,
		nil, formerrors.CodeUnknownField)
}

const precedenceTemplate = `
	{% field %}:1.{{ field.name }}{% endfield %}
	{% field "<=numberfield2" %}:2.{{ field.name }}{% endfield %}
	{% field ">textfield" %}:3.{{ field.name }}{% endfield %}
	{% field "numberfield*" %}:4.{{ field.name }}{% endfield %}
	{% field "numberfield2?" %}:5.{{ field.name }}{% endfield %}
	{% field "numberfield2" %}:6.{{ field.name }}{% endfield %}
`

func TestPrecedence_Rank(t *testing.T) {
	check(t, testsupport.SimpleForm(), precedenceTemplate, `
		:2.textfield
		:2.textfield2
		:4.numberfield
		:6.numberfield2
	`, with(assign.WithPrecedence(assign.PrecedenceRank)))
}

func TestPrecedence_Declaration(t *testing.T) {
	check(t, testsupport.SimpleForm(), precedenceTemplate, `
		:2.textfield
		:2.textfield2
		:2.numberfield
		:2.numberfield2
	`, nil)
}

func TestDuplicateCatchAll(t *testing.T) {
	expectCode(t, testsupport.SimpleForm(),
		`{% field %}{% endfield %}{% field "" %}{% endfield %}`,
		nil, formerrors.CodeConfiguration)
}

func TestWidgetNameFilter(t *testing.T) {
	check(t, testsupport.SimpleForm(), `
		{% field %}{% endfield %}
		{% field "textfield" %}{{ field|widget_name }},{% endfield %}
		{% field "textfield2" %}{{ field|widget_name:"test" }},{% endfield %}
		{% field "numberfield" %}{{ field|widget_name:"TextInput NumberInput" }},{% endfield %}
		{% field "numberfield2" %}{% if field|widget_name:"NumberInput" %}number{% else %}other{% endif %}{% endfield %}
	`, `
		TextInput,
		False,
		True,
		number
	`, nil)
}

func TestWidgetFilterEscapes(t *testing.T) {
	form := model.Form{Fields: []model.Field{{Name: "title", Value: `<b>"x"</b>`}}}
	got, err := execute(t, form, `{% field %}{{ field|widget }}{% endfield %}`, nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := `<input type="text" name="title" id="fg-title" value="&lt;b&gt;&#34;x&#34;&lt;/b&gt;">`
	if got != want {
		t.Fatalf("unexpected widget markup\nwant: %s\n got: %s", want, got)
	}
}

func TestChoiceField(t *testing.T) {
	form := testsupport.ChoiceForm()
	form.Initial = map[string]any{"choicefield": "B"}

	check(t, form, `
		{% field "choicefield" %}
		{% field_choices %}
		'{{ choice.value }}'='{{ choice.label }}'({{ choice.selected }}){{ choice.checked }}#{{ choice.id }},
		{% endfield_choices %}
		{% endfield %}
	`, `
		'A'='Choice 1'(False)#fg-choicefield_0,
		'B'='Choice 2'(True)checked=checked#fg-choicefield_1,
		'C'='Choice 3'(False)#fg-choicefield_2,
	`, nil)
}

func TestChoiceFieldEmpty(t *testing.T) {
	check(t, testsupport.SimpleForm(), `
		{% field "textfield" %}{% field_choices as c %}{{ c.value }}{% empty %}no choices!{% endfield_choices %}{% endfield %}
		{% field %}{% endfield %}
	`, `no choices!`, nil)
}

func TestOptgroupsFlat(t *testing.T) {
	check(t, testsupport.GroupedChoiceForm(), `
		{% field "choicefield" %}
		{% field_choices %}
		{{ choice.index }}.'{{ choice.value }}'='{{ choice.label }}'
		{% endfield_choices %}
		{% endfield %}
	`, `
		0.'0'='C0'
		1.'1'='C1'
		2.'2'='C2'
		3.'3'='C3'
		4.'4'='C4'
	`, nil)
}

func TestOptgroups(t *testing.T) {
	check(t, testsupport.GroupedChoiceForm(), `
		{% field "choicefield" %}
		{% field_choice_groups as group %}
		[{{ group.index }}:{{ group.label }}:{% field_choices %}{{ choice.index }}={{ choice.value }};{% endfield_choices %}]
		{% endfield_choice_groups %}
		{% endfield %}
	`, `[0::0=0;][1:GA:1=1;2=2;][2:GB:3=3;4=4;]`, nil)

	check(t, testsupport.SimpleForm(), `
		{% field "textfield" %}{% field_choice_groups %}<{{ optgroup.label }}>{% endfield_choice_groups %}{% endfield %}
		{% field %}{% endfield %}
	`, `<>`, nil)
}

func TestNestedField(t *testing.T) {
	form := model.Form{Fields: []model.Field{
		{Name: "textfield"},
		{Name: "choicefield", Choices: []model.Choice{{Value: "A", Label: "Choice 1"}, {Value: "B", Label: "Choice 2"}}},
	}}

	check(t, form, `
		{% field "choicefield" %}{{ field.name }}
			{% field "textfield" %}:{{ field.name }}:{% endfield %}
		{% field_choices %}{{ choice.value }};{% endfield_choices %}
		{% hidden_fields %}
		{{ field.name }}
		{% endfield %}
		{% field %}{% endfield %}
	`, `
		choicefield
		:textfield:
		A;B;
		choicefield
	`, nil)
}

func TestNestedFieldRendersOnFirstParentField(t *testing.T) {
	check(t, testsupport.SimpleForm(), `
		{% field "text*" %}[{{ field.name }}{% field "numberfield" %}/{{ field.name }}{% endfield %}]{% endfield %}
		{% field %}{% endfield %}
	`, `[textfield/numberfield][textfield2]`, nil)
}

func TestIfField(t *testing.T) {
	check(t, testsupport.SimpleForm(), `
		{% if_field "textfield" %}YES{% else %}NO{% endif_field %}
		{% if_field "nothing?" %}YES{% else %}NO{% endif_field %}
		{% if_field "nothing?" "text*" %}ANY{% endif_field %}
		{% field "textfield" %}{% endfield %}
		{% field "nothing?" %}{% endfield %}
		{% field "text*" %}{% endfield %}
		{% field %}{% endfield %}
	`, `YESNOANY`, nil)
}

func TestHiddenFields(t *testing.T) {
	form := testsupport.SimpleForm()
	form.Initial = map[string]any{"hidden1": 7}

	got, err := execute(t, form, `{% field %}{% endfield %}{% hidden_fields %}`, nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := "\n\n\n" + `<input type="hidden" name="hidden1" id="fg-hidden1" value="7">`
	if got != want {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestFieldAlias(t *testing.T) {
	check(t, testsupport.SimpleForm(), `
		{% field "textfield" as f %}{{ f.name }}{% endfield %}
		{% field as other %}{% endfield %}
	`, `textfield`, nil)
}

func TestDynamicMatchers(t *testing.T) {
	check(t, testsupport.SimpleForm(), `
		{% field target %}{{ field.name }}{% endfield %}
		{% field %}{% endfield %}
	`, `numberfield`, pongo2.Context{"target": "numberfield"})

	check(t, testsupport.SimpleForm(), `
		{% for name in names %}{% field name %}[{{ field.name }}]{% endfield %}{% endfor %}
		{% field %}{% endfield %}
	`, `[numberfield2][textfield]`, pongo2.Context{"names": []string{"numberfield2", "textfield"}})
}

func TestFormFromMap(t *testing.T) {
	form := map[string]any{
		"fields": []any{
			map[string]any{"name": "a"},
			map[string]any{"name": "b", "hidden": true},
		},
	}
	check(t, form, `{% field %}{{ field.name }}{% endfield %}`, `a`, nil)
}

func TestTagErrors(t *testing.T) {
	tpl, err := pongo2.FromString(`{% field %}x{% endfield %}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = tpl.Execute(nil)
	if !formerrors.HasCode(tags.Cause(err), formerrors.CodeTemplate) {
		t.Fatalf("expected template error outside form, got %v", err)
	}

	expectCode(t, 42, `{% field %}{% endfield %}`, nil, formerrors.CodeTemplate)

	for _, source := range []string{
		`{% form form %}{% field "<" %}{% endfield %}{% endform %}`,
		`{% form %}{% endform %}`,
		`{% form form %}{% field as %}{% endfield %}{% endform %}`,
		`{% form form %}{% field_choices x %}{% endfield_choices %}{% endform %}`,
		`{% form form %}{% if_field %}{% endif_field %}{% endform %}`,
		`{% form form %}{% hidden_fields extra %}{% endform %}`,
	} {
		if _, err := pongo2.FromString(source); err == nil {
			t.Errorf("expected parse error for %s", source)
		}
	}
}

func TestBareFieldRendersWidget(t *testing.T) {
	form := model.Form{Fields: []model.Field{
		{Name: "a", Required: true, Value: `<b>"x"</b>`, Errors: []string{"too <short>", "bad"}},
	}}

	bare, err := execute(t, form, `{% field "a" %}{{ field }}{% endfield %}`, nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	filtered, err := execute(t, form, `{% field "a" %}{{ field|widget }}{% endfield %}`, nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if bare != filtered {
		t.Fatalf("bare field differs from widget filter\nwidget: %s\n  bare: %s", filtered, bare)
	}
	want := `<input type="text" name="a" id="fg-a" required aria-invalid="true" value="&lt;b&gt;&#34;x&#34;&lt;/b&gt;">`
	if bare != want {
		t.Fatalf("unexpected markup\nwant: %s\n got: %s", want, bare)
	}

	check(t, form, `
		{% field "a" %}<p>{{ field.errors }}</p>{% for message in field.errors %}[{{ message }}]{% endfor %}{% endfield %}
	`, `<p><ul class="errorlist"><li>too &lt;short&gt;</li><li>bad</li></ul></p>[too &lt;short&gt;][bad]`, nil)

	clean := model.Form{Fields: []model.Field{{Name: "a"}}}
	check(t, clean, `{% field %}<p>{{ field.errors }}</p>{% if field.errors %}ERR{% endif %}{% endfield %}`, `<p></p>`, nil)
}

func TestIfFieldSeesCatchAllNamedMatchers(t *testing.T) {
	form := model.Form{Fields: []model.Field{{Name: "a"}, {Name: "b"}, {Name: "c"}}}
	got, err := execute(t, form,
		`{% field "a" "" %}{{ field.name }}{% endfield %}{% if_field "a" %}yes{% else %}no{% endif_field %}`, nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != "a\nb\ncyes" {
		t.Fatalf("unexpected output %q", got)
	}
}
