package schema

import "github.com/aretw0/arbor/pkg/domain"

// Validate checks params against the schema in parameter order.
// Undeclared parameters are reported; missing ones are not, since every
// parameter is optional in a document.
func Validate(schema Schema, params []domain.Param) error {
	var errs []error
	for _, p := range params {
		typ, ok := schema[p.Name]
		if !ok {
			errs = append(errs, &ValidationError{Key: p.Name, Reason: "not declared by the model", Value: p.Value})
			continue
		}
		if p.Value == "" || IsReference(p.Value) {
			continue
		}
		if err := typ.Validate(p.Value); err != nil {
			errs = append(errs, &ValidationError{Key: p.Name, Reason: err.Error(), Value: p.Value})
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
