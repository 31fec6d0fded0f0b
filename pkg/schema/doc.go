// Package schema checks parameter values against the types declared by
// node models.
//
// Values are strings as written in the XML document. A value wrapped in
// braces, such as "{goal}", is a blackboard reference resolved at run time
// and is accepted for every type, as is an empty (unset) value.
//
//	s := schema.FromModel(model)
//	if err := schema.Validate(s, node.Params); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        // report e
//	    }
//	}
package schema
