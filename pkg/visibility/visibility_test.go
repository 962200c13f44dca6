package visibility_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/testsupport"
	"github.com/goliatone/go-formstate/pkg/visibility"
)

func TestGetVisibility_DefaultsAndConditions(t *testing.T) {
	t.Parallel()

	spec := testsupport.LoadSpecification(t, "application.yaml")
	eval, _ := testsupport.NewEvaluator()

	data := testsupport.ApplicationData()
	data["dependents"] = []any{
		map[string]any{"name": "Byron", "age": 4},
		map[string]any{"name": ""},
	}

	got := visibility.GetVisibility(eval, data, spec, nil)
	want := map[string]bool{
		"intro":              true,
		"fullName":           true,
		"email":              true,
		"age":                true,
		"employment":         true,
		"employer":           true,
		"income":             true,
		"hasCoApplicant":     true,
		"dependents":         true,
		"dependents[0].name": true,
		"dependents[0].age":  true,
		"dependents[1].name": true,
		"dependents[1].age":  false,
		"startDate":          true,
		"agree":              true,
		"summary":            true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("visibility mismatch (-want +got):\n%s", diff)
	}
}

func TestGetVisibility_HiddenArraySkipsItems(t *testing.T) {
	t.Parallel()

	spec := testsupport.LoadSpecification(t, "application.yaml")
	eval, rec := testsupport.NewEvaluator()

	data := testsupport.ApplicationData()
	data["hasCoApplicant"] = false
	data["dependents"] = []any{map[string]any{}}

	got := visibility.GetVisibility(eval, data, spec, nil)
	if got["dependents"] {
		t.Fatalf("expected dependents hidden")
	}
	for _, key := range []string{"dependents[0].name", "dependents[0].age"} {
		if _, ok := got[key]; ok {
			t.Fatalf("expected %s to be skipped, got %v", key, got)
		}
	}
	if len(rec.Warnings()) != 0 {
		t.Fatalf("expected no warnings, got %#v", rec.Warnings())
	}
}

func TestGetVisibility_UsesSuppliedComputed(t *testing.T) {
	t.Parallel()

	spec := testsupport.MustDecode(t, `{
		"fields": {"secret": {"type": "text", "visibleWhen": "computed.unlocked == true"}},
		"fieldOrder": ["secret"],
		"computed": {"unlocked": "false"}
	}`)
	eval, _ := testsupport.NewEvaluator()

	if visibility.GetVisibility(eval, nil, spec, nil)["secret"] {
		t.Fatalf("expected derived computed to hide the field")
	}
	if !visibility.GetVisibility(eval, nil, spec, map[string]any{"unlocked": true})["secret"] {
		t.Fatalf("expected supplied computed values to be used")
	}
}

func TestIsVisible_ItemPath(t *testing.T) {
	t.Parallel()

	spec := testsupport.LoadSpecification(t, "application.yaml")
	eval, _ := testsupport.NewEvaluator()

	data := testsupport.ApplicationData()
	if !visibility.IsVisible(eval, "dependents[1].age", data, spec, nil) {
		t.Fatalf("expected named dependent age visible")
	}
	if visibility.IsVisible(eval, "missing", data, spec, nil) {
		t.Fatalf("expected unknown path hidden")
	}
}

func TestGetPageVisibility_IndeterminateComputedHidesPage(t *testing.T) {
	t.Parallel()

	spec := testsupport.LoadSpecification(t, "application.yaml")
	eval, _ := testsupport.NewEvaluator()

	got := visibility.GetPageVisibility(eval, map[string]any{}, spec, nil)
	want := map[string]bool{"applicant": true, "finances": true, "review": false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unanswered pages mismatch (-want +got):\n%s", diff)
	}

	got = visibility.GetPageVisibility(eval, testsupport.ApplicationData(), spec, nil)
	if !got["review"] {
		t.Fatalf("expected review page visible once answered, got %v", got)
	}
}

func TestGetOptionsVisibility(t *testing.T) {
	t.Parallel()

	spec := testsupport.LoadSpecification(t, "application.yaml")
	eval, rec := testsupport.NewEvaluator()

	data := testsupport.ApplicationData()
	data["age"] = 19

	got := visibility.GetOptionsVisibility(eval, data, spec, nil)
	want := map[string][]form.Option{
		"employment": {
			{Value: "employed", Label: "Employed"},
			{Value: "unemployed", Label: "Unemployed"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if len(rec.Warnings()) != 0 {
		t.Fatalf("expected no warnings, got %#v", rec.Warnings())
	}
}

func TestGetOptionsVisibility_FailsClosed(t *testing.T) {
	t.Parallel()

	spec := testsupport.MustDecode(t, `{
		"fields": {
			"plans": {
				"type": "array",
				"itemFields": {
					"tier": {
						"type": "radio",
						"options": [
							{"value": "basic"},
							{"value": "pro", "visibleWhen": "item.seats >"},
							{"value": "team", "visibleWhen": "item.seats > 5"}
						]
					}
				}
			}
		},
		"fieldOrder": ["plans"]
	}`)
	eval, rec := testsupport.NewEvaluator()

	data := map[string]any{"plans": []any{
		map[string]any{"seats": 10},
		map[string]any{},
	}}
	got := visibility.GetOptionsVisibility(eval, data, spec, nil)
	want := map[string][]form.Option{
		"plans[0].tier": {{Value: "basic"}, {Value: "team", VisibleWhen: "item.seats > 5"}},
		"plans[1].tier": {{Value: "basic"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if len(rec.Warnings()) == 0 {
		t.Fatalf("expected warnings for the invalid and indeterminate expressions")
	}
}
