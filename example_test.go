package arbor_test

import (
	"fmt"
	"log"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/domain"
)

// ExampleEditor_LoadXML loads a document, edits it and walks the history back.
func ExampleEditor_LoadXML() {
	ed, err := arbor.New()
	if err != nil {
		log.Fatal(err)
	}

	err = ed.LoadXML([]byte(`<root>
		<BehaviorTree>
			<Sequence>
				<Action ID="OpenDoor"/>
				<Action ID="Enter"/>
			</Sequence>
		</BehaviorTree>
		<TreeNodesModel>
			<Action ID="OpenDoor"/>
			<Action ID="Enter"/>
		</TreeNodesModel>
	</root>`))
	if err != nil {
		log.Fatal(err)
	}

	// Rename the sequence: one undoable step.
	err = ed.Edit(func(s *domain.Scene) error {
		seq := s.Children(s.Roots()[0])[0]
		return s.Rename(seq, "enter-room")
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(ed.Tree().EntryPoint().Name)

	if err := ed.Undo(); err != nil {
		log.Fatal(err)
	}
	st := ed.Status()
	fmt.Printf("name=%q valid=%v undo=%d redo=%d\n", ed.Tree().EntryPoint().Name, st.Valid, st.UndoDepth, st.RedoDepth)

	// Output:
	// enter-room
	// name="" valid=true undo=1 redo=1
}

// ExampleEditor_SaveXML shows the refusal for a tree without a single root.
func ExampleEditor_SaveXML() {
	ed, err := arbor.New()
	if err != nil {
		log.Fatal(err)
	}
	_, err = ed.SaveXML()
	fmt.Println(err)

	// Output:
	// malformed behavior tree: there must be only 1 root node, found 0
}
