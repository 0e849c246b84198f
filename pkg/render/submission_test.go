package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtags/pkg/model"
	"github.com/goliatone/go-formtags/pkg/render"
)

func TestMergeAndSortHiddenFields(t *testing.T) {
	base := map[string]string{
		" existing ": "keep",
		"":           "ignored",
	}

	merged := render.MergeHiddenFields(base,
		render.CSRFToken("_csrf", "token123"),
		render.AuthToken(" auth_token ", "abc123"),
		render.VersionField("version", 4),
		render.Hidden("  ", "skip"),
	)

	wantMerged := map[string]string{
		"existing":   "keep",
		"_csrf":      "token123",
		"auth_token": "abc123",
		"version":    "4",
	}
	if diff := cmp.Diff(wantMerged, merged); diff != "" {
		t.Fatalf("merged hidden fields mismatch (-want +got):\n%s", diff)
	}

	sorted := render.SortedHiddenFields(merged)
	wantSorted := []render.HiddenField{
		{Name: "_csrf", Value: "token123"},
		{Name: "auth_token", Value: "abc123"},
		{Name: "existing", Value: "keep"},
		{Name: "version", Value: "4"},
	}
	if diff := cmp.Diff(wantSorted, sorted); diff != "" {
		t.Fatalf("sorted hidden fields mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyHiddenFields(t *testing.T) {
	form := model.Form{Fields: []model.Field{
		{Name: "title"},
		{Name: "version", Value: "1"},
	}}

	out := render.ApplyHiddenFields(form,
		render.VersionField("version", 2),
		render.CSRFToken("_csrf", "tok"),
	)

	if got := model.Names(out.Fields); !cmp.Equal(got, []string{"title", "version", "_csrf"}) {
		t.Fatalf("unexpected fields %v", got)
	}
	if !out.Fields[1].IsHidden() || out.Fields[1].Value != "2" {
		t.Fatalf("expected version to be hidden with the new value, got %+v", out.Fields[1])
	}
	csrf := out.Fields[2]
	if csrf.WidgetName() != model.WidgetHiddenInput || csrf.Value != "tok" {
		t.Fatalf("unexpected csrf field %+v", csrf)
	}
	if form.Fields[1].Hidden {
		t.Fatalf("expected source form to stay unchanged")
	}
	if got := model.Names(out.VisibleFields()); !cmp.Equal(got, []string{"title"}) {
		t.Fatalf("unexpected visible fields %v", got)
	}
}
