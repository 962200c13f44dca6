package formstate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formstate "github.com/goliatone/go-formstate"
	"github.com/goliatone/go-formstate/internal/logging"
	"github.com/goliatone/go-formstate/pkg/expression"
	"github.com/goliatone/go-formstate/pkg/orchestrator"
)

func quiet() []orchestrator.Option {
	return []orchestrator.Option{
		orchestrator.WithLogger(logging.Discard()),
		orchestrator.WithSink(expression.NopSink{}),
	}
}

func TestLoadFileAndResolve(t *testing.T) {
	spec, err := formstate.LoadFile(context.Background(), "testdata/signup.json", quiet()...)
	require.NoError(t, err)

	data := map[string]any{"username": "ada_l", "plan": "team", "seats": 3}
	snap := formstate.Resolve(data, spec, quiet()...)

	assert.True(t, snap.Validation.Valid, "%#v", snap.Validation)
	assert.True(t, snap.Visibility["seats"])
	assert.True(t, snap.Required["seats"])
	assert.Equal(t, 24, snap.Computed["price"])
}

func TestValidateFormats(t *testing.T) {
	spec, err := formstate.LoadFile(context.Background(), "testdata/signup.json", quiet()...)
	require.NoError(t, err)

	data := map[string]any{
		"username":  "Ada L",
		"plan":      "team",
		"website":   "example",
		"accountId": "not-a-uuid",
	}
	res := formstate.Validate(data, spec, quiet()...)
	require.False(t, res.Valid)

	assert.Equal(t, []formstate.FieldError{
		{Path: "username", Message: "Username has an invalid format", Severity: "error"},
		{Path: "seats", Message: "Seats is required", Severity: "error"},
		{Path: "website", Message: "Website must be a valid URI", Severity: "error"},
		{Path: "accountId", Message: "Account id must be a valid UUID", Severity: "error"},
	}, res.Errors)

	single := formstate.ValidateSingleField("seats", map[string]any{"plan": "free", "seats": 1}, spec, quiet()...)
	assert.True(t, single.Valid, "hidden seats should not be validated")
}

func TestWrappersAgree(t *testing.T) {
	spec, err := formstate.LoadFile(context.Background(), "testdata/signup.json", quiet()...)
	require.NoError(t, err)

	data := map[string]any{"username": "ada", "plan": "free", "seats": 5}
	assert.False(t, formstate.GetVisibility(data, spec, quiet()...)["seats"])
	assert.False(t, formstate.GetRequired(data, spec, quiet()...)["seats"])
	assert.True(t, formstate.GetEnabled(data, spec, quiet()...)["seats"])
	assert.False(t, formstate.GetReadonly(data, spec, quiet()...)["seats"])
	assert.Empty(t, formstate.GetPageVisibility(data, spec, quiet()...))
	assert.Len(t, formstate.GetOptionsVisibility(data, spec, quiet()...)["plan"], 2)
	assert.Equal(t, 0, formstate.Calculate(data, spec, quiet()...)["price"])

	values := formstate.CurrentValues(data, spec, formstate.ValuesOptions{}, quiet()...)
	assert.NotContains(t, values, "seats")
	assert.Equal(t, 5, data["seats"])
}
