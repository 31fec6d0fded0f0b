/*
Package dsl provides a Go DSL for programmatically constructing behavior trees.

It builds the same AbstractTree an XML document decodes into, which is
useful for generated trees, scaffolding and unit tests.

Example usage:

	tree := dsl.New(
		dsl.Sequence(
			dsl.Action("OpenDoor"),
			dsl.Decorator("Retry", dsl.Action("Enter").Param("speed", "2")).
				Param("attempts", "3"),
		).Name("enter-room"),
	)

	ed, _ := arbor.New()
	_ = tree.Register(ed.Registry())
	root, _ := tree.Build()
	_ = ed.LoadTree(root)
*/
package dsl
