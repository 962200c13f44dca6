package validation_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/testsupport"
	"github.com/goliatone/go-formstate/pkg/validation"
)

func TestValidate_CompleteSubmission(t *testing.T) {
	t.Parallel()

	spec := testsupport.LoadSpecification(t, "application.yaml")
	eval, rec := testsupport.NewEvaluator()

	result := validation.Validate(eval, testsupport.ApplicationData(), spec)
	if !result.Valid || len(result.Errors) != 0 {
		t.Fatalf("expected clean result, got %#v", result)
	}
	if len(rec.Warnings()) != 0 {
		t.Fatalf("expected no evaluation warnings, got %#v", rec.Warnings())
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	t.Parallel()

	spec := testsupport.LoadSpecification(t, "application.yaml")
	eval, _ := testsupport.NewEvaluator()

	data := testsupport.ApplicationData()
	delete(data, "fullName")
	data["employer"] = "   "

	result := validation.Validate(eval, data, spec)
	want := []validation.FieldError{
		{Path: "fullName", Message: "Full name is required", Severity: form.SeverityError},
		{Path: "employer", Message: "Employer is required", Severity: form.SeverityError},
	}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if result.Valid {
		t.Fatalf("expected invalid result")
	}
}

func TestValidate_RequiredBooleanFalseIsPresent(t *testing.T) {
	t.Parallel()

	spec := testsupport.MustDecode(t, `
schema:
  required: [agree]
  properties:
    agree: { type: boolean }
fields:
  agree: { type: checkbox, label: Agree }
fieldOrder: [agree]
`)
	eval, _ := testsupport.NewEvaluator()

	if result := validation.Validate(eval, map[string]any{"agree": false}, spec); !result.Valid {
		t.Fatalf("expected false to satisfy required, got %#v", result)
	}
	result := validation.Validate(eval, map[string]any{"agree": nil}, spec)
	if result.Valid || len(result.ErrorsFor("agree")) != 1 {
		t.Fatalf("expected null to fail required, got %#v", result)
	}
}

func TestValidate_MultipleOfTolerance(t *testing.T) {
	t.Parallel()

	spec := testsupport.MustDecode(t, `
schema:
  properties:
    price: { type: number, multipleOf: 0.01 }
    ratio: { type: number, multipleOf: 0.1 }
fields:
  price: { type: number, label: Price }
  ratio: { type: number, label: Ratio }
fieldOrder: [price, ratio]
`)
	eval, _ := testsupport.NewEvaluator()

	cases := []struct {
		name  string
		data  map[string]any
		valid bool
	}{
		{name: "cents", data: map[string]any{"price": 10.25}, valid: true},
		{name: "sub-cent", data: map[string]any{"price": 10.255}, valid: false},
		{name: "binary error", data: map[string]any{"ratio": 0.3}, valid: true},
		{name: "integer", data: map[string]any{"price": 3}, valid: true},
	}
	for _, tc := range cases {
		result := validation.Validate(eval, tc.data, spec)
		if result.Valid != tc.valid {
			t.Fatalf("%s: expected valid=%v, got %#v", tc.name, tc.valid, result)
		}
		if !tc.valid && !strings.Contains(result.Errors[0].Message, "multiple of 0.01") {
			t.Fatalf("%s: unexpected message %q", tc.name, result.Errors[0].Message)
		}
	}
}

func TestValidate_FieldMinItemsOverridesSchema(t *testing.T) {
	t.Parallel()

	spec := testsupport.LoadSpecification(t, "application.yaml")
	eval, _ := testsupport.NewEvaluator()

	data := testsupport.ApplicationData()
	data["dependents"] = []any{
		map[string]any{"name": "A"},
		map[string]any{"name": "B"},
		map[string]any{"name": "C"},
	}
	data["dependents"].([]any)[0].(map[string]any)["age"] = 1
	if result := validation.Validate(eval, data, spec); !result.Valid {
		t.Fatalf("expected three dependents to satisfy minItems 2, got %#v", result)
	}

	data["dependents"] = []any{map[string]any{"name": "A", "age": 1}}
	result := validation.Validate(eval, data, spec)
	want := []validation.FieldError{
		{Path: "dependents", Message: "Dependents must have at least 2 items", Severity: form.SeverityError},
	}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_StringAndNumberConstraints(t *testing.T) {
	t.Parallel()

	spec := testsupport.LoadSpecification(t, "application.yaml")
	eval, _ := testsupport.NewEvaluator()

	data := testsupport.ApplicationData()
	data["fullName"] = "A"
	data["email"] = "not-an-email"
	data["age"] = 17.5
	data["employment"] = "retired"
	data["startDate"] = "2026-02-30"

	result := validation.Validate(eval, data, spec)
	want := []validation.FieldError{
		{Path: "fullName", Message: "Full name must be at least 2 characters", Severity: form.SeverityError},
		{Path: "email", Message: "Email must be a valid email address", Severity: form.SeverityError},
		{Path: "age", Message: "Age must be a whole number", Severity: form.SeverityError},
		{Path: "employment", Message: "Employment must be one of: employed, self-employed, unemployed", Severity: form.SeverityError},
		{Path: "startDate", Message: "Start date must be a valid date (YYYY-MM-DD)", Severity: form.SeverityError},
	}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_HiddenFieldsSkippedByDefault(t *testing.T) {
	t.Parallel()

	spec := testsupport.LoadSpecification(t, "application.yaml")
	eval, _ := testsupport.NewEvaluator()

	data := testsupport.ApplicationData()
	data["employment"] = "self-employed"
	data["employer"] = 42

	if result := validation.Validate(eval, data, spec); !result.Valid {
		t.Fatalf("expected hidden employer ignored, got %#v", result)
	}

	result := validation.Validate(eval, data, spec, validation.WithAllFields())
	want := []validation.FieldError{
		{Path: "employer", Message: "Employer must be text", Severity: form.SeverityError},
	}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_WarningsDoNotBlock(t *testing.T) {
	t.Parallel()

	spec := testsupport.LoadSpecification(t, "application.yaml")
	eval, _ := testsupport.NewEvaluator()

	data := testsupport.ApplicationData()
	data["age"] = 19
	data["employment"] = "unemployed"
	delete(data, "employer")

	result := validation.Validate(eval, data, spec)
	if !result.Valid {
		t.Fatalf("expected warnings only, got %#v", result)
	}
	want := []validation.FieldError{
		{Path: "age", Message: "Applicants under 21 must be employed", Severity: form.SeverityWarning},
	}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	for _, fe := range result.Errors {
		if fe.Severity != form.SeverityWarning {
			t.Fatalf("valid result carried error severity: %#v", fe)
		}
	}
}

func TestValidate_ItemFields(t *testing.T) {
	t.Parallel()

	spec := testsupport.LoadSpecification(t, "application.yaml")
	eval, _ := testsupport.NewEvaluator()

	data := testsupport.ApplicationData()
	data["dependents"] = []any{
		map[string]any{"name": "Byron", "age": 40},
		map[string]any{"age": -1},
	}

	result := validation.Validate(eval, data, spec)
	want := []validation.FieldError{
		{Path: "dependents[0].age", Message: "Dependents must be under 30", Severity: form.SeverityError},
		{Path: "dependents[1].name", Message: "Name is required", Severity: form.SeverityError},
	}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	data["dependents"] = []any{
		map[string]any{"name": "Byron", "age": -1},
		map[string]any{"name": "Ann"},
	}
	result = validation.Validate(eval, data, spec)
	want = []validation.FieldError{
		{Path: "dependents[0].age", Message: "Age must be at least 0", Severity: form.SeverityError},
	}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("item constraint mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateSingleField(t *testing.T) {
	t.Parallel()

	spec := testsupport.LoadSpecification(t, "application.yaml")
	eval, _ := testsupport.NewEvaluator()

	data := testsupport.ApplicationData()
	data["email"] = "nope"
	delete(data, "fullName")

	result := validation.ValidateSingleField(eval, "email", data, spec)
	want := []validation.FieldError{
		{Path: "email", Message: "Email must be a valid email address", Severity: form.SeverityError},
	}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	data["dependents"] = []any{map[string]any{"name": "Byron"}}
	result = validation.ValidateSingleField(eval, "dependents[0].age", data, spec)
	if result.Valid || len(result.ErrorsFor("dependents[0].age")) != 1 {
		t.Fatalf("expected first dependent age required, got %#v", result)
	}

	if result := validation.ValidateSingleField(eval, "unknown", data, spec); !result.Valid {
		t.Fatalf("expected unknown paths to validate cleanly")
	}
}

func TestValidate_SchemaKeywords(t *testing.T) {
	t.Parallel()

	spec := testsupport.MustDecode(t, `
schema:
  properties:
    account: { type: string, format: uuid }
    site: { type: string, format: uri }
    startsAt: { type: string, format: date-time }
    code: { type: string, maxLength: 3, pattern: "^[A-Z]{3}$" }
    quantity: { type: integer, minimum: 1, maximum: 10 }
    rate: { type: number, exclusiveMinimum: 0, exclusiveMaximum: 1 }
    tags: { type: array, minItems: 2, maxItems: 3 }
    labels: { minItems: 2 }
fields:
  account: { type: text, label: Account }
  site: { type: text, label: Site }
  startsAt: { type: text, label: Starts at }
  code: { type: text, label: Code }
  quantity: { type: integer, label: Quantity }
  rate: { type: number, label: Rate }
  tags: { type: array, label: Tags }
  labels: { type: array, label: Labels }
fieldOrder: [account, site, startsAt, code, quantity, rate, tags, labels]
`)
	eval, _ := testsupport.NewEvaluator()

	errorOf := func(path, message string) []validation.FieldError {
		return []validation.FieldError{{Path: path, Message: message, Severity: form.SeverityError}}
	}
	cases := []struct {
		name string
		data map[string]any
		want []validation.FieldError
	}{
		{name: "uuid invalid", data: map[string]any{"account": "123"}, want: errorOf("account", "Account must be a valid UUID")},
		{name: "uuid valid", data: map[string]any{"account": "9b2f6c1e-8a4d-4e1b-9c3a-2f7d5e6a1b0c"}},
		{name: "uri without scheme", data: map[string]any{"site": "example.com"}, want: errorOf("site", "Site must be a valid URI")},
		{name: "uri valid", data: map[string]any{"site": "https://example.com/docs"}},
		{name: "date-time invalid", data: map[string]any{"startsAt": "2026-02-14 10:00"}, want: errorOf("startsAt", "Starts at must be a valid date and time")},
		{name: "date-time valid", data: map[string]any{"startsAt": "2026-02-14T10:00:00Z"}},
		{name: "pattern", data: map[string]any{"code": "ab"}, want: errorOf("code", "Code has an invalid format")},
		{name: "maxLength and pattern", data: map[string]any{"code": "ABCD"}, want: []validation.FieldError{
			{Path: "code", Message: "Code must be at most 3 characters", Severity: form.SeverityError},
			{Path: "code", Message: "Code has an invalid format", Severity: form.SeverityError},
		}},
		{name: "minimum", data: map[string]any{"quantity": 0}, want: errorOf("quantity", "Quantity must be at least 1")},
		{name: "maximum", data: map[string]any{"quantity": 11}, want: errorOf("quantity", "Quantity must be at most 10")},
		{name: "exclusiveMinimum", data: map[string]any{"rate": 0}, want: errorOf("rate", "Rate must be greater than 0")},
		{name: "exclusiveMaximum", data: map[string]any{"rate": 1.0}, want: errorOf("rate", "Rate must be less than 1")},
		{name: "exclusive bounds inside", data: map[string]any{"rate": 0.5}},
		{name: "minItems on empty list", data: map[string]any{"tags": []any{}}, want: errorOf("tags", "Tags must have at least 2 items")},
		{name: "maxItems", data: map[string]any{"tags": []any{"a", "b", "c", "d"}}, want: errorOf("tags", "Tags must have at most 3 items")},
		{name: "untyped array property counts items", data: map[string]any{"labels": []any{}}, want: errorOf("labels", "Labels must have at least 2 items")},
		{name: "untyped array property requires a list", data: map[string]any{"labels": "x"}, want: errorOf("labels", "Labels must be a list")},
	}
	for _, tc := range cases {
		result := validation.Validate(eval, tc.data, spec)
		if diff := cmp.Diff(tc.want, result.Errors); diff != "" {
			t.Fatalf("%s: errors mismatch (-want +got):\n%s", tc.name, diff)
		}
		if result.Valid != (len(tc.want) == 0) {
			t.Fatalf("%s: unexpected valid=%v", tc.name, result.Valid)
		}
	}
}

func TestValidate_FieldMinItemsOnEmptyList(t *testing.T) {
	t.Parallel()

	spec := testsupport.LoadSpecification(t, "application.yaml")
	eval, _ := testsupport.NewEvaluator()

	data := testsupport.ApplicationData()
	data["dependents"] = []any{}

	result := validation.Validate(eval, data, spec)
	want := []validation.FieldError{
		{Path: "dependents", Message: "Dependents must have at least 2 items", Severity: form.SeverityError},
	}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}
