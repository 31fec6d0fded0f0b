package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/domain"
)

const replHelp = `commands:
  add MODEL [under PARENT] [as ID] [name=LABEL] [PARAM=VALUE ...]
  connect PARENT CHILD | disconnect PARENT CHILD
  rm ID | move ID X Y | param ID NAME VALUE | rename ID LABEL
  undo | redo | arrange | clear | layout [horizontal|vertical]
  mode [editor|monitor|replay]
  status | validate | tree | graph | docs
  load PATH.xml | load NAME | save PATH.xml | save NAME
  tabs | tab new NAME | tab select NAME | tab close NAME
  help | quit`

// Repl is a line-oriented editing session over an Editor.
type Repl struct {
	Editor *arbor.Editor
	In     io.Reader
	Out    io.Writer
	// Prompt prints "> " before each line; set it for terminals.
	Prompt bool
	Logger *slog.Logger
}

// errQuit ends the loop without an error.
var errQuit = errors.New("quit")

// Run reads commands until EOF, "quit" or ctx is done. A failing command
// prints its error and the session continues.
func (r *Repl) Run(ctx context.Context) error {
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	scanner := bufio.NewScanner(NewInterruptibleReader(r.In, ctx.Done()))
	for {
		if r.Prompt {
			fmt.Fprint(r.Out, "> ")
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && !IsInterrupted(err) {
				return err
			}
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		err := r.Exec(ctx, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			r.Logger.Debug("Command failed", "line", line, "err", err)
			fmt.Fprintf(r.Out, "error: %v\n", err)
		}
	}
}

// Exec runs a single command line.
func (r *Repl) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]
	ed := r.Editor

	switch cmd {
	case "help", "?":
		fmt.Fprintln(r.Out, replHelp)
		return nil
	case "quit", "exit":
		return errQuit
	case "add":
		return r.add(args)
	case "connect", "disconnect":
		if err := arity(cmd, args, 2); err != nil {
			return err
		}
		return ed.Edit(func(s *domain.Scene) error {
			if cmd == "connect" {
				return s.Connect(args[0], args[1])
			}
			return s.Disconnect(args[0], args[1])
		})
	case "rm":
		if err := arity(cmd, args, 1); err != nil {
			return err
		}
		return ed.Edit(func(s *domain.Scene) error { return s.RemoveNode(args[0]) })
	case "move":
		if err := arity(cmd, args, 3); err != nil {
			return err
		}
		x, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid x: %w", err)
		}
		y, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid y: %w", err)
		}
		return ed.Edit(func(s *domain.Scene) error {
			return s.Move(args[0], domain.Position{X: x, Y: y})
		})
	case "param":
		if len(args) < 3 {
			return fmt.Errorf("usage: param ID NAME VALUE")
		}
		value := strings.Join(args[2:], " ")
		return ed.Edit(func(s *domain.Scene) error { return s.SetParam(args[0], args[1], value) })
	case "rename":
		if len(args) < 2 {
			return fmt.Errorf("usage: rename ID LABEL")
		}
		label := strings.Join(args[1:], " ")
		return ed.Edit(func(s *domain.Scene) error { return s.Rename(args[0], label) })
	case "undo":
		return r.report(ed.Undo())
	case "redo":
		return r.report(ed.Redo())
	case "arrange":
		return ed.AutoArrange()
	case "clear":
		return ed.Clear()
	case "layout":
		return r.layout(args)
	case "mode":
		if len(args) == 0 {
			fmt.Fprintln(r.Out, ed.Mode())
			return nil
		}
		m, err := domain.ParseMode(args[0])
		if err != nil {
			return err
		}
		ed.SetMode(m)
		return nil
	case "status":
		return r.printStatus()
	case "validate":
		return r.validate()
	case "tree":
		fmt.Fprint(r.Out, tui.Outline(ed.Status().Tab, ed.Tree()))
		return nil
	case "graph":
		ed.View(func(s *domain.Scene) {
			fmt.Fprintln(r.Out, graph.GenerateMermaid(s, nil))
		})
		return nil
	case "docs":
		names, err := ed.Documents(ctx)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(r.Out, n)
		}
		return nil
	case "load":
		if err := arity(cmd, args, 1); err != nil {
			return err
		}
		if isXMLPath(args[0]) {
			return r.report(ed.LoadFile(args[0]))
		}
		return r.report(ed.Load(ctx, args[0]))
	case "save":
		if err := arity(cmd, args, 1); err != nil {
			return err
		}
		if isXMLPath(args[0]) {
			path, err := ed.SaveFile(args[0])
			if err == nil {
				printSystemMessage(r.Out, "Saved %s", path)
			}
			return err
		}
		if err := ed.Save(ctx, args[0]); err != nil {
			return err
		}
		printSystemMessage(r.Out, "Saved %s", args[0])
		return nil
	case "tabs":
		current := ed.Status().Tab
		for _, name := range ed.Tabs() {
			marker := " "
			if name == current {
				marker = "*"
			}
			fmt.Fprintf(r.Out, "%s %s\n", marker, name)
		}
		return nil
	case "tab":
		return r.tab(args)
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

// add parses "MODEL [under PARENT] [as ID] [KEY=VALUE ...]". The name key
// sets the instance label; other keys are model parameters.
func (r *Repl) add(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: add MODEL [under PARENT] [as ID] [PARAM=VALUE ...]")
	}
	spec := arbor.NodeSpec{Model: args[0]}
	if k, ok := domain.ParseKind(args[0]); ok && !k.NeedsModel() {
		spec.Model, spec.Kind = "", k
	}
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		tok := rest[i]
		switch {
		case (tok == "under" || tok == "as") && i+1 < len(rest):
			if tok == "under" {
				spec.Parent = rest[i+1]
			} else {
				spec.ID = rest[i+1]
			}
			i++
		case strings.Contains(tok, "="):
			key, value, _ := strings.Cut(tok, "=")
			if key == "name" {
				spec.Name = value
				continue
			}
			if spec.Params == nil {
				spec.Params = make(map[string]string)
			}
			spec.Params[key] = value
		default:
			return fmt.Errorf("unexpected argument %q", tok)
		}
	}
	id, err := r.Editor.AddNode(spec)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.Out, id)
	return nil
}

func (r *Repl) layout(args []string) error {
	var (
		changed []string
		err     error
	)
	if len(args) == 0 {
		changed, err = r.Editor.ToggleLayout()
	} else {
		l, perr := domain.ParseLayout(args[0])
		if perr != nil {
			return perr
		}
		changed, err = r.Editor.SetLayout(l)
	}
	if err != nil {
		return err
	}
	printSystemMessage(r.Out, "Layout %s (%d tabs arranged)", r.Editor.Status().Layout, len(changed))
	return nil
}

func (r *Repl) tab(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: tab new|select|close NAME")
	}
	switch args[0] {
	case "new":
		return r.Editor.NewTab(args[1])
	case "select":
		return r.Editor.SelectTab(args[1])
	case "close":
		return r.Editor.CloseTab(args[1])
	}
	return fmt.Errorf("unknown tab action %q", args[0])
}

// report prints the status line after a history or document operation.
func (r *Repl) report(err error) error {
	if err != nil {
		return err
	}
	return r.printStatus()
}

func (r *Repl) printStatus() error {
	st := r.Editor.Status()
	text := fmt.Sprintf("%s: %d nodes, undo %d, redo %d, %s, %s",
		st.Tab, st.Nodes, st.UndoDepth, st.RedoDepth, st.Mode, st.Layout)
	if st.Dirty {
		text += ", modified"
	}
	fmt.Fprintln(r.Out, tui.Semaphore(st.Valid, text))
	return nil
}

func (r *Repl) validate() error {
	issues := r.Editor.Diagnose()
	if len(issues) == 0 {
		fmt.Fprintln(r.Out, tui.Semaphore(true, "tree is valid"))
		return nil
	}
	lines := make([]string, len(issues))
	for i, issue := range issues {
		lines[i] = issue.String()
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(r.Out, tui.Semaphore(false, l))
	}
	return nil
}

func arity(cmd string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s expects %d arguments, got %d", cmd, n, len(args))
	}
	return nil
}

func isXMLPath(s string) bool {
	return strings.HasSuffix(strings.ToLower(s), ".xml")
}
