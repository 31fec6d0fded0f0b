// Package btxml reads and writes behavior trees in the BehaviorTree XML
// format:
//
//	<root>
//	    <BehaviorTree>
//	        <Sequence>
//	            <Action ID="OpenDoor" door="front"/>
//	        </Sequence>
//	    </BehaviorTree>
//	    <TreeNodesModel>
//	        <Action ID="OpenDoor">
//	            <Parameter label="door" type="Text"/>
//	        </Action>
//	    </TreeNodesModel>
//	</root>
//
// Registered models may also be used directly as the element name
// (<OpenDoor door="front"/>).
package btxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
)

// Document is the content of a decoded file.
type Document struct {
	// Tree is rooted at a Root node whose single child is the top-level
	// element of <BehaviorTree>.
	Tree *domain.AbstractTree
	// Models are the entries of <TreeNodesModel>, in document order.
	Models []registry.Model
}

type element struct {
	name     string
	attrs    []xml.Attr
	children []*element
	line     int
}

func (e *element) attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func parseErr(line int, format string, args ...any) *domain.ParseError {
	return &domain.ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Decode reads a document. Model lookups for compact element names use reg
// together with the document's own TreeNodesModel; reg is not modified.
//
// Malformed XML and unknown elements yield a *domain.ParseError. A
// BehaviorTree element without exactly one top-level node yields a
// *domain.ShapeError.
func Decode(r io.Reader, reg *registry.Registry) (*Document, error) {
	root, err := parseElements(r)
	if err != nil {
		return nil, err
	}
	if root.name != "root" {
		return nil, parseErr(root.line, "document element must be <root>, found <%s>", root.name)
	}

	var tree *element
	var modelLists []*element
	for _, c := range root.children {
		switch c.name {
		case "BehaviorTree":
			if tree != nil {
				return nil, parseErr(c.line, "more than one <BehaviorTree> element")
			}
			tree = c
		case "TreeNodesModel":
			modelLists = append(modelLists, c)
		default:
			return nil, parseErr(c.line, "unexpected element <%s> in <root>", c.name)
		}
	}

	local := registry.New()
	if reg != nil {
		if err := local.Merge(reg); err != nil {
			return nil, fmt.Errorf("copy registry: %w", err)
		}
	}

	doc := &Document{}
	for _, list := range modelLists {
		for _, c := range list.children {
			m, ok, err := parseModel(c)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if err := local.Register(m); err != nil {
				return nil, &domain.ParseError{Line: c.line, Msg: "invalid model", Err: err}
			}
			doc.Models = append(doc.Models, m)
		}
	}

	if tree == nil {
		return nil, parseErr(root.line, "missing <BehaviorTree> element")
	}
	if n := len(tree.children); n != 1 {
		return nil, &domain.ShapeError{
			Roots:        n,
			RootChildren: -1,
			Reason:       fmt.Sprintf("there must be only 1 root node, <BehaviorTree> has %d top-level nodes", n),
		}
	}

	entry, err := parseNode(tree.children[0], local)
	if err != nil {
		return nil, err
	}
	rootNode := domain.NewTreeNode(domain.KindRoot, "", entry)
	doc.Tree = &domain.AbstractTree{Root: rootNode}
	return doc, nil
}

func parseElements(r io.Reader) (*element, error) {
	dec := xml.NewDecoder(r)
	var stack []*element
	var root *element

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line, _ := dec.InputPos()
			var syntax *xml.SyntaxError
			if errors.As(err, &syntax) {
				line = syntax.Line
			}
			return nil, &domain.ParseError{Line: line, Msg: "malformed XML", Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			line, _ := dec.InputPos()
			el := &element{name: t.Name.Local, line: line}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				el.attrs = append(el.attrs, a)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, parseErr(line, "more than one document element")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 && len(bytes.TrimSpace(t)) > 0 {
				line, _ := dec.InputPos()
				return nil, parseErr(line, "unexpected text in <%s>", stack[len(stack)-1].name)
			}
		}
	}

	if root == nil {
		return nil, parseErr(0, "empty document")
	}
	return root, nil
}

// parseModel reads one TreeNodesModel entry. ok is false for entries that
// describe built-in controls.
func parseModel(el *element) (m registry.Model, ok bool, err error) {
	id, _ := el.attr("ID")
	if id == "" {
		return m, false, parseErr(el.line, "<%s> model without ID", el.name)
	}

	if el.name == "Control" {
		if registry.IsBuiltin(id) {
			return m, false, nil
		}
		return m, false, parseErr(el.line, "custom control model %q is not supported", id)
	}
	kind, known := domain.ParseKind(el.name)
	if !known || !kind.NeedsModel() {
		return m, false, parseErr(el.line, "unexpected model element <%s>", el.name)
	}

	m = registry.Model{ID: id, Kind: kind}
	for _, c := range el.children {
		if c.name != "Parameter" {
			return m, false, parseErr(c.line, "unexpected element <%s> in model %q", c.name, id)
		}
		label, _ := c.attr("label")
		if label == "" {
			return m, false, parseErr(c.line, "parameter of model %q without label", id)
		}
		typ, _ := c.attr("type")
		m.Params = append(m.Params, registry.ParamSpec{Name: label, Type: domain.ParseParamType(typ)})
	}
	return m, true, nil
}

func parseNode(el *element, reg *registry.Registry) (*domain.TreeNode, error) {
	kind, isKindTag := domain.ParseKind(el.name)
	node := &domain.TreeNode{}

	switch {
	case isKindTag && kind == domain.KindRoot:
		return nil, parseErr(el.line, "<Root> cannot appear inside a tree")
	case isKindTag && kind.NeedsModel():
		id, _ := el.attr("ID")
		if id == "" {
			return nil, parseErr(el.line, "<%s> without ID", el.name)
		}
		if m, ok := reg.Lookup(id); ok && m.Kind != kind {
			return nil, parseErr(el.line, "model %q is a %s, not a %s", id, m.Kind, kind)
		}
		node.Model = id
	case isKindTag:
		node.Model = kind.String()
	default:
		m, ok := reg.Lookup(el.name)
		if !ok {
			return nil, parseErr(el.line, "unknown element <%s>", el.name)
		}
		kind = m.Kind
		node.Model = m.ID
		isKindTag = false
	}
	node.Kind = kind

	for _, a := range el.attrs {
		switch {
		case a.Name.Local == "ID" && isKindTag && kind.NeedsModel():
		case a.Name.Local == "name":
			node.Name = a.Value
		default:
			if err := domain.CheckParamName(kind, a.Name.Local); err != nil {
				return nil, parseErr(el.line, "<%s>: %v", el.name, err)
			}
			node.Params = append(node.Params, domain.Param{Name: a.Name.Local, Value: a.Value})
		}
	}

	if kind == domain.KindDecorator && len(el.children) != 1 {
		return nil, parseErr(el.line, "decorator %q must have exactly 1 child, found %d", node.Model, len(el.children))
	}
	if limit := kind.MaxChildren(); limit >= 0 && len(el.children) > limit {
		return nil, parseErr(el.line, "%s %q cannot have children", kind, node.Model)
	}

	for _, c := range el.children {
		child, err := parseNode(c, reg)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}
