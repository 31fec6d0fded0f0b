package btxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
)

const (
	separator = " ================================= "
	indent    = "    "
)

// Encode writes the tree's entry point subtree as <BehaviorTree> and every
// custom model of reg as <TreeNodesModel>. The tree must be a Root with
// exactly one child; otherwise a *domain.ShapeError is returned and nothing
// is written.
func Encode(w io.Writer, tree *domain.AbstractTree, reg *registry.Registry) error {
	entry := tree.EntryPoint()
	if entry == nil {
		return shapeOf(tree)
	}

	var buf bytes.Buffer
	buf.WriteString("<root>\n")
	writeSeparator(&buf)
	err := encodeSection(&buf, func(e *encoder) {
		e.start("BehaviorTree")
		e.node(entry)
		e.end("BehaviorTree")
	})
	if err != nil {
		return err
	}
	writeSeparator(&buf)
	err = encodeSection(&buf, func(e *encoder) {
		e.start("TreeNodesModel")
		if reg != nil {
			for _, m := range reg.Custom() {
				e.model(m)
			}
		}
		e.end("TreeNodesModel")
	})
	if err != nil {
		return err
	}
	writeSeparator(&buf)
	buf.WriteString("</root>\n")

	_, err = w.Write(buf.Bytes())
	return err
}

// Marshal is Encode into a byte slice.
func Marshal(tree *domain.AbstractTree, reg *registry.Registry) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, tree, reg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func shapeOf(tree *domain.AbstractTree) *domain.ShapeError {
	shape := &domain.ShapeError{RootChildren: -1, Reason: "there must be only 1 root node"}
	if tree == nil || tree.Root == nil {
		return shape
	}
	shape.Roots = 1
	shape.RootChildren = len(tree.Root.Children)
	if tree.Root.Kind != domain.KindRoot {
		shape.Reason = fmt.Sprintf("tree starts at a %s, not a Root", tree.Root.Kind)
	}
	return shape
}

// encoder keeps the first error so the writing code reads top to bottom.
type encoder struct {
	enc *xml.Encoder
	err error
}

func (e *encoder) token(t xml.Token) {
	if e.err == nil {
		e.err = e.enc.EncodeToken(t)
	}
}

func (e *encoder) start(name string, attrs ...xml.Attr) {
	e.token(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs})
}

func (e *encoder) end(name string) {
	e.token(xml.EndElement{Name: xml.Name{Local: name}})
}

// encodeSection writes one top-level child of <root>, indented one level
// and followed by a newline.
func encodeSection(buf *bytes.Buffer, write func(e *encoder)) error {
	enc := xml.NewEncoder(buf)
	enc.Indent(indent, indent)
	e := &encoder{enc: enc}
	write(e)
	if e.err == nil {
		e.err = enc.Flush()
	}
	if e.err != nil {
		return fmt.Errorf("encode behavior tree: %w", e.err)
	}
	buf.WriteByte('\n')
	return nil
}

// writeSeparator puts a separator comment on a line of its own.
func writeSeparator(buf *bytes.Buffer) {
	buf.WriteString(indent + "<!--" + separator + "-->\n")
}

func (e *encoder) model(m registry.Model) {
	e.start(m.Kind.String(), xml.Attr{Name: xml.Name{Local: "ID"}, Value: m.ID})
	for _, p := range m.Params {
		e.start("Parameter",
			xml.Attr{Name: xml.Name{Local: "label"}, Value: p.Name},
			xml.Attr{Name: xml.Name{Local: "type"}, Value: string(p.Type)},
		)
		e.end("Parameter")
	}
	e.end(m.Kind.String())
}

func (e *encoder) node(n *domain.TreeNode) {
	if e.err != nil {
		return
	}
	if n.Kind == domain.KindRoot || n.Kind == domain.KindUndefined {
		e.err = fmt.Errorf("node %s: %s cannot be written inside a tree", n.ID, n.Kind)
		return
	}

	tag := n.Kind.String()
	var attrs []xml.Attr
	if n.Kind.NeedsModel() {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "ID"}, Value: n.Model})
	}
	if n.Name != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "name"}, Value: n.Name})
	}
	for _, p := range n.Params {
		if err := domain.CheckParamName(n.Kind, p.Name); err != nil {
			e.err = fmt.Errorf("node %s: %w", n.ID, err)
			return
		}
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: p.Name}, Value: p.Value})
	}

	e.start(tag, attrs...)
	for _, c := range n.Children {
		e.node(c)
	}
	e.end(tag)
}
