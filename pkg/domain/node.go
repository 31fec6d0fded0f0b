package domain

import (
	"errors"
	"fmt"
	"unicode"
)

// Kind identifies the behavior of a node. The set is closed.
type Kind int

const (
	KindUndefined Kind = iota
	KindRoot
	KindSequence
	KindSequenceStar
	KindFallback
	KindDecorator
	KindAction
	KindSubTree
)

var kindNames = map[Kind]string{
	KindRoot:         "Root",
	KindSequence:     "Sequence",
	KindSequenceStar: "SequenceStar",
	KindFallback:     "Fallback",
	KindDecorator:    "Decorator",
	KindAction:       "Action",
	KindSubTree:      "SubTree",
}

// String returns the XML tag used for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Undefined"
}

// ParseKind resolves an XML tag into a Kind.
// "Subtree" is accepted as an alias of "SubTree".
func ParseKind(tag string) (Kind, bool) {
	if tag == "Subtree" {
		return KindSubTree, true
	}
	for k, name := range kindNames {
		if name == tag {
			return k, true
		}
	}
	return KindUndefined, false
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	if string(text) == "Undefined" {
		*k = KindUndefined
		return nil
	}
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown node kind %q", string(text))
	}
	*k = parsed
	return nil
}

// Category groups kinds by their structural role.
type Category string

const (
	CategoryRoot      Category = "Root"
	CategoryControl   Category = "Control"
	CategoryDecorator Category = "Decorator"
	CategoryAction    Category = "Action"
	CategorySubTree   Category = "SubTree"
)

// Category returns the structural role of the kind.
func (k Kind) Category() Category {
	switch k {
	case KindRoot:
		return CategoryRoot
	case KindSequence, KindSequenceStar, KindFallback:
		return CategoryControl
	case KindDecorator:
		return CategoryDecorator
	case KindAction:
		return CategoryAction
	case KindSubTree:
		return CategorySubTree
	default:
		return ""
	}
}

// MaxChildren returns the maximum number of children a node of this kind
// may have, or -1 when unbounded.
func (k Kind) MaxChildren() int {
	switch k.Category() {
	case CategoryRoot, CategoryDecorator:
		return 1
	case CategoryControl:
		return -1
	default:
		return 0
	}
}

// NeedsModel reports whether nodes of this kind are identified by a
// registered model ID (as opposed to the kind name itself).
func (k Kind) NeedsModel() bool {
	switch k {
	case KindDecorator, KindAction, KindSubTree:
		return true
	}
	return false
}

// ParamType is the declared type of a model parameter.
type ParamType string

const (
	ParamUndefined ParamType = "Undefined"
	ParamText      ParamType = "Text"
	ParamInt       ParamType = "Int"
	ParamDouble    ParamType = "Double"
	ParamCombo     ParamType = "Combo"
)

// ParseParamType maps the XML attribute value to a ParamType.
func ParseParamType(s string) ParamType {
	switch ParamType(s) {
	case ParamText, ParamInt, ParamDouble, ParamCombo:
		return ParamType(s)
	}
	return ParamUndefined
}

// Param is a named string parameter. Order is significant.
type Param struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// CloneParams returns a copy of the parameter list.
func CloneParams(params []Param) []Param {
	if params == nil {
		return nil
	}
	out := make([]Param, len(params))
	copy(out, params)
	return out
}

// ParamsEqual compares two parameter lists by name, value and order.
func ParamsEqual(a, b []Param) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ErrInvalidParam is returned for a parameter name that cannot be written
// as an XML attribute of its node.
var ErrInvalidParam = errors.New("invalid parameter name")

// CheckParamName reports whether name can be stored as a parameter of a
// node of kind k. "name" is always reserved for the instance label and "ID"
// for the model of Action, Decorator and SubTree nodes. The rest must be a
// plain XML name without a namespace prefix.
func CheckParamName(k Kind, name string) error {
	switch {
	case name == "name":
		return fmt.Errorf("%w: %q is reserved for the node label", ErrInvalidParam, name)
	case name == "ID" && k.NeedsModel():
		return fmt.Errorf("%w: %q is reserved for the %s model", ErrInvalidParam, name, k)
	case !isXMLName(name):
		return fmt.Errorf("%w: %q is not an XML attribute name", ErrInvalidParam, name)
	}
	return nil
}

func isXMLName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || r == '.' || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)):
		default:
			return false
		}
	}
	return true
}
