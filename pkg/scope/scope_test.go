package scope

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewExposesNamespaces(t *testing.T) {
	ctx := New(
		map[string]any{"age": 30.0},
		map[string]any{"total": 12.5},
		map[string]any{"countries": []any{"PT"}},
	)

	want := map[string]any{
		"age":      30.0,
		"computed": map[string]any{"total": 12.5},
		"ref":      map[string]any{"countries": []any{"PT"}},
	}
	if diff := cmp.Diff(want, ctx.Vars()); diff != "" {
		t.Fatalf("namespace mismatch (-want +got):\n%s", diff)
	}
}

func TestOverlaysDoNotMutateBase(t *testing.T) {
	base := New(map[string]any{"name": "Ada"}, nil, nil)
	item := base.ForItem(map[string]any{"sku": "A"}, 2)
	valued := item.WithValue("x")

	if _, ok := base.Lookup(Item); ok {
		t.Fatalf("base context gained item")
	}
	if _, ok := item.Lookup(Value); ok {
		t.Fatalf("item context gained value")
	}
	if got, _ := valued.Lookup(ItemIndex); got != 2 {
		t.Fatalf("expected itemIndex 2 to survive overlay, got %v", got)
	}
	if got, _ := valued.Lookup(Value); got != "x" {
		t.Fatalf("expected value x, got %v", got)
	}
}

func TestReservedNamesWinAndReportCollision(t *testing.T) {
	var collisions []string
	ctx := New(
		map[string]any{"computed": "data", "value": 1, "plain": true},
		map[string]any{"sum": 3},
		nil,
		WithCollisionHandler(func(key string) { collisions = append(collisions, key) }),
	)

	if diff := cmp.Diff([]string{"computed", "value"}, collisions); diff != "" {
		t.Fatalf("collisions mismatch (-want +got):\n%s", diff)
	}
	if got, _ := ctx.Lookup(Computed); cmp.Diff(map[string]any{"sum": 3}, got) != "" {
		t.Fatalf("expected computed namespace to win, got %v", got)
	}
	if _, ok := ctx.Lookup(Value); ok {
		t.Fatalf("value must only be bound by WithValue")
	}
}
