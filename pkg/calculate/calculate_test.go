package calculate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/expression"
	"github.com/goliatone/go-formstate/pkg/expression/exprlang"
	"github.com/goliatone/go-formstate/pkg/form"
)

func newEvaluator() (*expression.Evaluator, *expression.Recorder) {
	rec := &expression.Recorder{}
	return expression.NewEvaluator(exprlang.New(), expression.WithSink(rec)), rec
}

func TestCalculate_ChainsEarlierEntries(t *testing.T) {
	eval, _ := newEvaluator()
	spec := &form.Specification{
		Computed: form.Computed{
			{Name: "subtotal", Expression: "price * qty"},
			{Name: "tax", Expression: "computed.subtotal * ref.rate"},
			{Name: "total", Expression: "computed.subtotal + computed.tax"},
		},
		Reference: map[string]any{"rate": 0.5},
	}

	got := Calculate(eval, map[string]any{"price": 10.0, "qty": 2.0}, spec)

	want := map[string]any{"subtotal": 20.0, "tax": 10.0, "total": 30.0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("computed mismatch (-want +got):\n%s", diff)
	}
}

func TestCalculate_IndeterminateStaysNull(t *testing.T) {
	eval, rec := newEvaluator()
	spec := &form.Specification{
		Computed: form.Computed{
			{Name: "eligible", Expression: "age >= 18"},
			{Name: "label", Expression: `computed.eligible == true ? "adult" : "unknown"`},
		},
	}

	got := Calculate(eval, map[string]any{}, spec)

	if v, ok := got["eligible"]; !ok || v != nil {
		t.Fatalf("expected eligible to be present and nil, got %v (present=%v)", v, ok)
	}
	if got["label"] != "unknown" {
		t.Fatalf("expected label unknown, got %v", got["label"])
	}
	if len(rec.Warnings()) != 0 {
		t.Fatalf("indeterminate computed values must not warn, got %v", rec.Warnings())
	}
}

func TestCalculate_ForwardReferenceOrdering(t *testing.T) {
	spec := &form.Specification{
		Computed: form.Computed{
			{Name: "doubled", Expression: "computed.base * 2"},
			{Name: "base", Expression: "amount + 1"},
		},
	}
	data := map[string]any{"amount": 4.0}

	eval, _ := newEvaluator()
	got := Calculate(eval, data, spec)
	if got["doubled"] != 10.0 {
		t.Fatalf("dependency order: expected doubled 10, got %v", got["doubled"])
	}

	got = Calculate(eval, data, spec, WithOrder(OrderDeclaration))
	if got["doubled"] != nil {
		t.Fatalf("declaration order: forward reference should observe absent value, got %v", got["doubled"])
	}
	if got["base"] != 5.0 {
		t.Fatalf("declaration order: expected base 5, got %v", got["base"])
	}
}

func TestPlan_StableAndCycles(t *testing.T) {
	engine := exprlang.New()
	spec := &form.Specification{
		Computed: form.Computed{
			{Name: "a", Expression: "1"},
			{Name: "c", Expression: "computed.b + 1"},
			{Name: "b", Expression: "computed.a + 1"},
			{Name: "d", Expression: "2"},
		},
	}
	planned, err := Plan(spec, engine)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, planned.Names()); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}

	spec.Computed = form.Computed{
		{Name: "x", Expression: "computed.y + 1"},
		{Name: "y", Expression: "computed.x + 1"},
		{Name: "z", Expression: "3"},
	}
	planned, err = Plan(spec, engine)
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if diff := cmp.Diff([]string{"x", "y"}, cycle.Names); diff != "" {
		t.Fatalf("cycle names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"z", "x", "y"}, planned.Names()); diff != "" {
		t.Fatalf("degraded plan mismatch (-want +got):\n%s", diff)
	}
}

type textOnlyEngine struct{}

func (textOnlyEngine) Evaluate(string, map[string]any) (any, error) { return nil, nil }
func (textOnlyEngine) Check(string) error                           { return nil }

func TestReferences_FallsBackToTextScan(t *testing.T) {
	got := References(textOnlyEngine{}, "computed.total > computed.limit and computed.total > 0")
	if diff := cmp.Diff([]string{"total", "limit"}, got); diff != "" {
		t.Fatalf("references mismatch (-want +got):\n%s", diff)
	}
}
