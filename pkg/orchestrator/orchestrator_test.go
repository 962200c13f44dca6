package orchestrator_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/internal/logging"
	"github.com/goliatone/go-formstate/pkg/calculate"
	"github.com/goliatone/go-formstate/pkg/expression"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/orchestrator"
	"github.com/goliatone/go-formstate/pkg/testsupport"
)

func newOrchestrator(options ...orchestrator.Option) (*orchestrator.Orchestrator, *expression.Recorder) {
	rec := &expression.Recorder{}
	base := []orchestrator.Option{
		orchestrator.WithSink(rec),
		orchestrator.WithLogger(logging.Discard()),
	}
	return orchestrator.New(append(base, options...)...), rec
}

func TestOrchestrator_PageFollowsComputedChain(t *testing.T) {
	spec := testsupport.LoadSpecification(t, "application.yaml")
	orch, _ := newOrchestrator()

	steps := []struct {
		name string
		data map[string]any
		want bool
	}{
		{name: "unanswered", data: map[string]any{}, want: false},
		{name: "income missing", data: map[string]any{"age": 40}, want: false},
		{name: "answered", data: map[string]any{"age": 40, "income": 50000}, want: true},
		{name: "answered below threshold", data: map[string]any{"age": 40, "income": 100}, want: false},
	}
	for _, step := range steps {
		computed := orch.Calculate(step.data, spec)
		if step.name == "income missing" && computed["eligible"] != nil {
			t.Fatalf("%s: expected indeterminate eligibility, got %#v", step.name, computed["eligible"])
		}
		if got := orch.GetPageVisibility(step.data, spec)["review"]; got != step.want {
			t.Fatalf("%s: review visible = %v, want %v", step.name, got, step.want)
		}
	}
}

func TestOrchestrator_Resolve(t *testing.T) {
	spec := testsupport.LoadSpecification(t, "application.yaml")
	orch, rec := newOrchestrator()

	data := testsupport.ApplicationData()
	snap := orch.Resolve(data, spec)

	if !snap.Validation.Valid {
		t.Fatalf("expected valid snapshot, got %#v", snap.Validation)
	}
	if snap.Computed["monthly"] != 24000.5/12 {
		t.Fatalf("unexpected monthly computed value %#v", snap.Computed["monthly"])
	}
	if diff := cmp.Diff(map[string]bool{"applicant": true, "finances": true, "review": true}, snap.Pages); diff != "" {
		t.Fatalf("pages mismatch (-want +got):\n%s", diff)
	}
	if !snap.Readonly["income"] || !snap.Required["employer"] || !snap.Enabled["income"] {
		t.Fatalf("unexpected state maps: readonly=%v required=%v enabled=%v", snap.Readonly, snap.Required, snap.Enabled)
	}
	if len(snap.Options["employment"]) != 3 {
		t.Fatalf("expected all employment options, got %#v", snap.Options["employment"])
	}
	if len(rec.Warnings()) != 0 {
		t.Fatalf("expected no warnings, got %#v", rec.Warnings())
	}
}

func TestOrchestrator_CurrentValues(t *testing.T) {
	spec := testsupport.LoadSpecification(t, "application.yaml")
	orch, _ := newOrchestrator()

	data := testsupport.ApplicationData()
	data["employment"] = "unemployed"
	data["dependents"] = []any{map[string]any{"name": "", "age": 3}}

	got := orch.CurrentValues(data, spec, orchestrator.ValuesOptions{})
	if _, ok := got["employer"]; ok {
		t.Fatalf("expected hidden employer dropped, got %#v", got)
	}
	want := []any{map[string]any{"name": ""}}
	if diff := cmp.Diff(want, got["dependents"]); diff != "" {
		t.Fatalf("dependents mismatch (-want +got):\n%s", diff)
	}
	if _, ok := data["employer"]; !ok {
		t.Fatalf("expected caller data untouched")
	}

	all := orch.CurrentValues(data, spec, orchestrator.ValuesOptions{IncludeHidden: true, IncludeComputed: true})
	if all["employer"] != "Analytical Engines Ltd" {
		t.Fatalf("expected hidden employer kept, got %#v", all["employer"])
	}
	if _, ok := all["computed"].(map[string]any); !ok {
		t.Fatalf("expected computed values attached, got %#v", all["computed"])
	}
}

func TestOrchestrator_ValidateAllFields(t *testing.T) {
	spec := testsupport.LoadSpecification(t, "application.yaml")
	data := testsupport.ApplicationData()
	data["employment"] = "unemployed"
	data["employer"] = 7

	visibleOnly, _ := newOrchestrator()
	if res := visibleOnly.Validate(data, spec); !res.Valid {
		t.Fatalf("expected hidden employer ignored, got %#v", res)
	}

	everything, _ := newOrchestrator(orchestrator.WithAllFields())
	res := everything.Validate(data, spec)
	if res.Valid || len(res.ErrorsFor("employer")) != 1 {
		t.Fatalf("expected employer type error, got %#v", res)
	}

	single := everything.ValidateSingleField("employer", data, spec)
	if single.Valid {
		t.Fatalf("expected single field validation to fail, got %#v", single)
	}
}

func TestOrchestrator_CalculationOrder(t *testing.T) {
	spec := testsupport.MustDecode(t, `{
		"computed": {"total": "computed.subtotal + 5", "subtotal": "price * 2"}
	}`)
	data := map[string]any{"price": 10}

	dependency, _ := newOrchestrator()
	if got := dependency.Calculate(data, spec)["total"]; got != 25 {
		t.Fatalf("expected dependency order to resolve total, got %#v", got)
	}

	declaration, _ := newOrchestrator(orchestrator.WithCalculationOrder(calculate.OrderDeclaration))
	if got := declaration.Calculate(data, spec)["total"]; got != nil {
		t.Fatalf("expected forward reference to observe absent value, got %#v", got)
	}
}

func TestOrchestrator_CheckRejectsMalformedSpecifications(t *testing.T) {
	spec := testsupport.MustDecode(t, `{
		"fields": {
			"a": {"type": "text", "visibleWhen": "x >"},
			"shown": {"type": "computed", "source": "missing"}
		},
		"fieldOrder": ["a", "ghost"],
		"computed": {"left": "computed.right", "right": "computed.left"}
	}`)
	orch, _ := newOrchestrator()

	err := orch.Check(spec)
	if err == nil {
		t.Fatalf("expected check error")
	}
	for _, want := range []string{
		`"ghost" has no field definition`,
		"fields.a.visibleWhen",
		`undeclared computed field "missing"`,
		"computed fields form a cycle",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}

	if err := orch.Check(testsupport.LoadSpecification(t, "application.yaml")); err != nil {
		t.Fatalf("expected fixture to pass check: %v", err)
	}
}

func TestOrchestrator_LoadAppliesTransformer(t *testing.T) {
	fsys := fstest.MapFS{
		"forms/contact.yaml": {Data: []byte(`
metadata: { id: contact }
fields:
  email: { type: email, label: Email }
  notes:
    type: array
    itemFields:
      body: { type: textarea }
fieldOrder: [email, notes]
`)},
		"presets/partner.json": {Data: []byte(`{
  "metadata": {"title": "Partner contact"},
  "fields": {
    "email": {"label": "Work email", "requiredWhen": "true"},
    "notes[].body": {"visibleWhen": "itemIndex < 3"}
  }
}`)},
	}

	preset, err := orchestrator.NewJSONPresetTransformerFromFS(fsys, "presets/partner.json")
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	orch, _ := newOrchestrator(
		orchestrator.WithLoader(form.NewLoader(form.WithFileSystem(fsys), form.WithoutCheck())),
		orchestrator.WithSpecTransformer(preset),
	)

	spec, err := orch.Load(context.Background(), form.SourceFromFS("forms/contact.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if spec.Metadata.Title != "Partner contact" {
		t.Fatalf("expected metadata patched, got %#v", spec.Metadata)
	}
	if got := spec.Fields["email"].Common().Label; got != "Work email" {
		t.Fatalf("expected label patched, got %q", got)
	}
	if !orch.GetRequired(map[string]any{}, spec)["email"] {
		t.Fatalf("expected patched requiredWhen to apply")
	}
	notes := spec.Fields["notes"].(*form.ArrayField)
	if got := notes.ItemFields["body"].Common().VisibleWhen; got != "itemIndex < 3" {
		t.Fatalf("expected item field patched, got %q", got)
	}
}

func TestJSONPresetTransformer_RejectsStateOnDisplayFields(t *testing.T) {
	spec := testsupport.MustDecode(t, `{"fields": {"intro": {"type": "heading"}}, "fieldOrder": ["intro"]}`)
	preset, err := orchestrator.NewJSONPresetTransformer([]byte(`{"fields": {"intro": {"readonlyWhen": "true"}}}`))
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	if err := preset.Transform(context.Background(), spec); err == nil {
		t.Fatalf("expected display field state patch to fail")
	}
}
