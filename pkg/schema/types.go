package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
)

// Type defines the contract for parameter validation.
type Type interface {
	// Name returns the declared type name (e.g., "Int").
	Name() string
	// Validate checks a literal value. References and empty values never
	// reach it.
	Validate(value string) error
}

// TextType accepts any value.
type TextType struct{ name string }

func (t *TextType) Name() string { return t.name }

func (t *TextType) Validate(string) error { return nil }

// IntType accepts base-10 integers.
type IntType struct{}

func (t *IntType) Name() string { return string(domain.ParamInt) }

func (t *IntType) Validate(value string) error {
	if _, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err != nil {
		return fmt.Errorf("expected an integer")
	}
	return nil
}

// DoubleType accepts decimal numbers.
type DoubleType struct{}

func (t *DoubleType) Name() string { return string(domain.ParamDouble) }

func (t *DoubleType) Validate(value string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
		return fmt.Errorf("expected a number")
	}
	return nil
}

// ForType returns the validator of a declared parameter type. Combo and
// undefined types accept any value.
func ForType(t domain.ParamType) Type {
	switch t {
	case domain.ParamInt:
		return &IntType{}
	case domain.ParamDouble:
		return &DoubleType{}
	case "":
		return &TextType{name: string(domain.ParamUndefined)}
	default:
		return &TextType{name: string(t)}
	}
}

// Schema is a map of parameter names to their expected types.
type Schema map[string]Type

// FromModel builds the schema of a model's declared parameters.
func FromModel(m registry.Model) Schema {
	s := make(Schema, len(m.Params))
	for _, p := range m.Params {
		s[p.Name] = ForType(p.Type)
	}
	return s
}

// IsReference reports whether value is a blackboard reference.
func IsReference(value string) bool {
	v := strings.TrimSpace(value)
	return len(v) >= 2 && strings.HasPrefix(v, "{") && strings.HasSuffix(v, "}")
}
