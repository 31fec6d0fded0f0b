package arbor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/arbor/internal/layout"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/validator"
	"github.com/aretw0/arbor/pkg/btxml"
	"github.com/aretw0/arbor/pkg/config"
	"github.com/aretw0/arbor/pkg/convert"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/history"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/snapshot"
	"github.com/aretw0/arbor/pkg/workspace"
)

// DefaultTab is the name of the tab every editor starts with.
const DefaultTab = "Behaviortree"

// ErrNoStore is returned by Load and Save when no DocumentStore is configured.
var ErrNoStore = errors.New("no document store configured")

// Editor is the high-level entry point: a workspace of tabs, the model
// registry, and the load/save orchestration around them.
//
// All methods are safe for concurrent use; they are serialized the way an
// event loop would serialize user actions.
type Editor struct {
	mu sync.Mutex

	ws       *workspace.Workspace
	reg      *registry.Registry
	codec    history.Codec
	arranger ports.Arranger
	store    ports.DocumentStore
	settings *config.Settings
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	mode     domain.Mode
	layout   domain.Layout
}

// Status summarizes the current tab for a status indicator.
type Status struct {
	Tab       string        `json:"tab"`
	Valid     bool          `json:"valid"`
	Mode      domain.Mode   `json:"mode"`
	Layout    domain.Layout `json:"layout"`
	Nodes     int           `json:"nodes"`
	UndoDepth int           `json:"undo_depth"`
	RedoDepth int           `json:"redo_depth"`
	Dirty     bool          `json:"dirty"`
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithRegistry injects the model registry. Defaults to the built-ins plus
// any models listed in the settings.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Editor) {
		e.reg = reg
	}
}

// WithArranger sets the layout collaborator used after loads.
func WithArranger(a ports.Arranger) Option {
	return func(e *Editor) {
		e.arranger = a
	}
}

// WithCodec sets the snapshot codec used by the undo histories.
func WithCodec(c history.Codec) Option {
	return func(e *Editor) {
		e.codec = c
	}
}

// WithMode sets the initial mode (default: editor, or the settings value).
func WithMode(m domain.Mode) Option {
	return func(e *Editor) {
		e.mode = m
	}
}

// WithLayout sets the initial layout (default: horizontal, or the settings value).
func WithLayout(l domain.Layout) Option {
	return func(e *Editor) {
		e.layout = l
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// WithStore sets the backend used by Load and Save.
func WithStore(store ports.DocumentStore) Option {
	return func(e *Editor) {
		e.store = store
	}
}

// WithSettings sets the user settings. File loads and saves record their
// directories there and persist them.
func WithSettings(s *config.Settings) Option {
	return func(e *Editor) {
		e.settings = s
	}
}

// New creates an editor with one empty tab named DefaultTab.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.settings == nil {
		e.settings = config.DefaultSettings()
	}
	if e.reg == nil {
		reg, err := e.settings.Registry()
		if err != nil {
			return nil, err
		}
		e.reg = reg
	}
	if e.arranger == nil {
		e.arranger = layout.NewTidy()
	}
	if e.codec == nil {
		e.codec = snapshot.New()
	}
	if e.mode == "" {
		e.mode = e.settings.Mode
	}
	if e.mode == "" {
		e.mode = domain.ModeEditor
	}
	if e.layout == "" {
		e.layout = e.settings.Layout
	}
	if e.layout == "" {
		e.layout = domain.LayoutHorizontal
	}

	e.ws = workspace.New(
		workspace.WithLogger(e.logger),
		workspace.WithArranger(e.arranger),
		workspace.WithCodec(e.codec),
		workspace.WithHooks(e.hooks),
		workspace.WithMode(e.mode),
		workspace.WithLayout(e.layout),
	)
	if _, err := e.ws.CreateTab(DefaultTab); err != nil {
		return nil, err
	}
	return e, nil
}

// Registry returns the model registry.
func (e *Editor) Registry() *registry.Registry {
	return e.reg
}

// Settings returns the user settings.
func (e *Editor) Settings() *config.Settings {
	return e.settings
}

// NewTab adds an empty tab and selects it.
func (e *Editor) NewTab(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.ws.CreateTab(name); err != nil {
		return err
	}
	return e.ws.Select(name)
}

// SelectTab makes the named tab current.
func (e *Editor) SelectTab(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ws.Select(name)
}

// CloseTab removes a tab. The last tab cannot be closed.
func (e *Editor) CloseTab(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.ws.Tabs()) == 1 {
		if _, err := e.ws.Tab(name); err != nil {
			return err
		}
		return fmt.Errorf("cannot close the last tab")
	}
	return e.ws.CloseTab(name)
}

// Tabs returns the tab names in creation order.
func (e *Editor) Tabs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var names []string
	for _, t := range e.ws.Tabs() {
		names = append(names, t.Name)
	}
	return names
}

// Scene returns the scene of the current tab. Mutating it directly bypasses
// the editor lock and the mode check; prefer Edit.
func (e *Editor) Scene() *domain.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ws.Current().Scene
}

// Edit runs fn against the current tab's scene. Every notified mutation is
// recorded in the undo history. It returns domain.ErrLocked outside editor
// mode.
func (e *Editor) Edit(fn func(scene *domain.Scene) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ws.Locked() {
		return domain.ErrLocked
	}
	return fn(e.ws.Current().Scene)
}

// View runs fn against the current tab's scene in any mode. fn must not
// mutate the scene.
func (e *Editor) View(fn func(scene *domain.Scene)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.ws.Current().Scene)
}

// Tree reads the current tab into an AbstractTree.
func (e *Editor) Tree() *domain.AbstractTree {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ws.Current().Tree()
}

// LoadXML replaces the current tab with the tree in data.
//
// A document that does not parse leaves everything untouched. A document
// that parses but cannot be built rolls the scene back to its state before
// the load; the undo and redo stacks are unchanged in both cases. A
// successful load is one undoable step. Models declared by the document are
// added to the registry once the load succeeds.
func (e *Editor) LoadXML(data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.loadXML(data)
	e.onLoad("", err)
	return err
}

func (e *Editor) loadXML(data []byte) error {
	if e.ws.Locked() {
		return domain.ErrLocked
	}
	doc, err := btxml.Decode(bytes.NewReader(data), e.reg)
	if err != nil {
		e.logger.Warn("Load rejected", "err", err)
		return err
	}

	tab := e.ws.Current()
	reg, err := e.withModels(doc.Models)
	if err != nil {
		return err
	}
	if err := e.replace(tab, doc.Tree, reg); err != nil {
		return err
	}
	if err := e.reg.Merge(reg); err != nil {
		return fmt.Errorf("register models: %w", err)
	}
	e.logger.Info("Tree loaded", "tab", tab.Name, "nodes", doc.Tree.Len(), "undo", tab.History.UndoDepth())
	return nil
}

// LoadTree replaces the current tab with tree as fed by a monitor or replay
// source. It is allowed in every mode and resets the tab history so that the
// loaded tree is the only baseline.
func (e *Editor) LoadTree(tree *domain.AbstractTree) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tab := e.ws.Current()
	if err := e.replace(tab, tree, e.reg); err != nil {
		return err
	}
	if err := tab.History.Reset(); err != nil {
		return err
	}
	e.logger.Debug("Tree fed", "tab", tab.Name, "nodes", tree.Len(), "mode", e.ws.Mode())
	return nil
}

// FeedXML is LoadTree for a serialized document, as received from a monitor
// or replay source. Models declared by the document are registered.
func (e *Editor) FeedXML(data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc, err := btxml.Decode(bytes.NewReader(data), e.reg)
	if err != nil {
		return err
	}
	reg, err := e.withModels(doc.Models)
	if err != nil {
		return err
	}
	tab := e.ws.Current()
	if err := e.replace(tab, doc.Tree, reg); err != nil {
		return err
	}
	if err := tab.History.Reset(); err != nil {
		return err
	}
	return e.reg.Merge(reg)
}

// replace clears the tab and builds tree into it. On failure the scene is
// restored to the current history state.
func (e *Editor) replace(tab *workspace.Tab, tree *domain.AbstractTree, reg *registry.Registry) error {
	point := tab.History.Current()

	release := tab.Scene.BlockSignals()
	tab.Scene.Clear()
	release()

	err := checkModels(tree, reg)
	if err == nil {
		err = convert.BuildSceneFromTree(tree, tab.Scene, e.arranger)
	}
	if err != nil {
		if rbErr := tab.History.Rollback(point); rbErr != nil {
			e.logger.Error("Rollback failed", "tab", tab.Name, "err", rbErr)
			return errors.Join(err, rbErr)
		}
		e.logger.Warn("Load rolled back", "tab", tab.Name, "err", err)
		return err
	}
	return nil
}

func checkModels(tree *domain.AbstractTree, reg *registry.Registry) error {
	var err error
	tree.Walk(func(n *domain.TreeNode, _ int) bool {
		if err != nil || !n.Kind.NeedsModel() {
			return err == nil
		}
		m, ok := reg.Lookup(n.Model)
		switch {
		case !ok:
			err = fmt.Errorf("%w: %s %q", domain.ErrUnknownModel, n.Kind, n.Model)
		case m.Kind != n.Kind:
			err = fmt.Errorf("%w: %q is a %s, not a %s", domain.ErrUnknownModel, n.Model, m.Kind, n.Kind)
		}
		return err == nil
	})
	return err
}

func (e *Editor) withModels(models []registry.Model) (*registry.Registry, error) {
	reg := registry.New()
	if err := reg.Merge(e.reg); err != nil {
		return nil, err
	}
	for _, m := range models {
		if err := reg.Register(m); err != nil {
			return nil, &domain.ParseError{Msg: "invalid model", Err: err}
		}
	}
	return reg, nil
}

// SaveXML exports the current tab. It refuses with a *domain.ShapeError
// unless the scene holds exactly one Root with exactly one child.
func (e *Editor) SaveXML() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	data, err := e.saveXML()
	e.onSave("", err)
	return data, err
}

func (e *Editor) saveXML() ([]byte, error) {
	tab := e.ws.Current()
	if err := validator.Check(tab.Scene); err != nil {
		return nil, err
	}
	data, err := btxml.Marshal(tab.Tree(), e.reg)
	if err != nil {
		return nil, err
	}
	tab.History.MarkSaved()
	return data, nil
}

// LoadFile reads an XML file into the current tab and remembers its
// directory in the settings.
func (e *Editor) LoadFile(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := func() error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := e.loadXML(data); err != nil {
			return err
		}
		e.settings.LastLoadDirectory = absDir(path)
		e.persistSettings()
		return nil
	}()
	e.onLoad(path, err)
	return err
}

// SaveFile writes the current tab to path, adding the .xml extension when
// missing, and remembers the directory in the settings.
func (e *Editor) SaveFile(path string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !strings.EqualFold(filepath.Ext(path), ".xml") {
		path += ".xml"
	}
	err := func() error {
		data, err := e.saveXML()
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		e.settings.LastSaveDirectory = absDir(path)
		e.persistSettings()
		return nil
	}()
	e.onSave(path, err)
	return path, err
}

// Load reads the named document from the configured store.
func (e *Editor) Load(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := func() error {
		if e.store == nil {
			return ErrNoStore
		}
		data, err := e.store.Load(ctx, name)
		if err != nil {
			return err
		}
		return e.loadXML(data)
	}()
	e.onLoadCtx(ctx, name, err)
	return err
}

// Save writes the current tab to the configured store under name.
func (e *Editor) Save(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := func() error {
		if e.store == nil {
			return ErrNoStore
		}
		data, err := e.saveXML()
		if err != nil {
			return err
		}
		return e.store.Save(ctx, name, data)
	}()
	e.onSaveCtx(ctx, name, err)
	return err
}

// Documents lists the names held by the configured store.
func (e *Editor) Documents(ctx context.Context) ([]string, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	return e.store.List(ctx)
}

// Undo reverts the last edit of the current tab.
func (e *Editor) Undo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ws.Current().History.Undo()
}

// Redo re-applies the last undone edit of the current tab.
func (e *Editor) Redo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ws.Current().History.Redo()
}

// AutoArrange re-derives the positions of the current tab.
func (e *Editor) AutoArrange() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ws.Locked() {
		return domain.ErrLocked
	}
	return e.ws.Arrange(e.ws.Current())
}

// SetLayout applies l to every tab and returns the names of the tabs that
// were re-arranged.
func (e *Editor) SetLayout(l domain.Layout) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ws.SetLayout(l)
}

// ToggleLayout switches between horizontal and vertical layouts.
func (e *Editor) ToggleLayout() ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ws.SetLayout(e.ws.Layout().Toggle())
}

// SetMode switches the editor mode. Outside editor mode undo, redo, edits
// and file loads are refused with domain.ErrLocked.
func (e *Editor) SetMode(m domain.Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ws.SetMode(m)
}

// Mode returns the current mode.
func (e *Editor) Mode() domain.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ws.Mode()
}

// Clear empties the current tab. The clear is undoable.
func (e *Editor) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ws.Locked() {
		return domain.ErrLocked
	}
	e.ws.Current().Scene.Clear()
	return nil
}

// Status reports on the current tab.
func (e *Editor) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	tab := e.ws.Current()
	return Status{
		Tab:       tab.Name,
		Valid:     validator.IsValid(tab.Scene),
		Mode:      e.ws.Mode(),
		Layout:    tab.Scene.Layout(),
		Nodes:     tab.Scene.Len(),
		UndoDepth: tab.History.UndoDepth(),
		RedoDepth: tab.History.RedoDepth(),
		Dirty:     tab.History.Dirty(),
	}
}

// Diagnose lists the structural issues of the current tab followed by the
// parameter values that do not match their model's declared types. The
// findings are advisory; only the shape gates saving.
func (e *Editor) Diagnose() []validator.Issue {
	e.mu.Lock()
	defer e.mu.Unlock()
	scene := e.ws.Current().Scene
	return append(validator.Diagnose(scene), validator.DiagnoseParams(scene, e.reg)...)
}

// persistSettings saves the settings. A failure is logged, not returned: the
// document operation itself succeeded.
func (e *Editor) persistSettings() {
	if err := e.settings.Save(); err != nil {
		e.logger.Warn("Failed to persist settings", "err", err)
	}
}

func (e *Editor) onLoad(name string, err error) {
	e.onLoadCtx(context.Background(), name, err)
}

func (e *Editor) onLoadCtx(ctx context.Context, name string, err error) {
	if e.hooks.OnLoad != nil {
		e.hooks.OnLoad(ctx, name, err)
	}
}

func (e *Editor) onSave(name string, err error) {
	e.onSaveCtx(context.Background(), name, err)
}

func (e *Editor) onSaveCtx(ctx context.Context, name string, err error) {
	if e.hooks.OnSave != nil {
		e.hooks.OnSave(ctx, name, err)
	}
}

func absDir(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Dir(path)
	}
	return filepath.Dir(abs)
}
