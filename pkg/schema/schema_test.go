package schema

import (
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var moveTo = registry.Model{
	ID:   "MoveTo",
	Kind: domain.KindAction,
	Params: []registry.ParamSpec{
		{Name: "retries", Type: domain.ParamInt},
		{Name: "speed", Type: domain.ParamDouble},
		{Name: "target", Type: domain.ParamText},
		{Name: "mode", Type: domain.ParamCombo},
	},
}

func TestForType(t *testing.T) {
	tests := []struct {
		typ   domain.ParamType
		value string
		ok    bool
	}{
		{domain.ParamInt, "42", true},
		{domain.ParamInt, " -3 ", true},
		{domain.ParamInt, "4.2", false},
		{domain.ParamDouble, "4.2", true},
		{domain.ParamDouble, "1e3", true},
		{domain.ParamDouble, "fast", false},
		{domain.ParamText, "anything", true},
		{domain.ParamCombo, "LEFT", true},
		{domain.ParamUndefined, "x", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ)+"/"+tt.value, func(t *testing.T) {
			err := ForType(tt.typ).Validate(tt.value)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	s := FromModel(moveTo)

	assert.NoError(t, Validate(s, []domain.Param{
		{Name: "retries", Value: "3"},
		{Name: "speed", Value: "{cruise_speed}"},
		{Name: "target", Value: ""},
	}))

	err := Validate(s, []domain.Param{
		{Name: "retries", Value: "many"},
		{Name: "speed", Value: "1.5"},
		{Name: "color", Value: "red"},
	})
	require.Error(t, err)
	errs := ValidationErrors(err)
	require.Len(t, errs, 2)
	assert.Equal(t, "retries", errs[0].(*ValidationError).Key)
	assert.Equal(t, "color", errs[1].(*ValidationError).Key)
	assert.Contains(t, err.Error(), "2 validation errors")
}

func TestIsReference(t *testing.T) {
	assert.True(t, IsReference("{goal}"))
	assert.True(t, IsReference(" {goal} "))
	assert.False(t, IsReference("{"))
	assert.False(t, IsReference("goal"))
}

func TestValidationErrors_NotAggregate(t *testing.T) {
	assert.Nil(t, ValidationErrors(assert.AnError))
}
