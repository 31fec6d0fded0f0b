// Package workspace manages the named tabs of an editor session, each one a
// scene with its own undo history, together with the global mode and layout.
package workspace

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/arbor/internal/layout"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/convert"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/history"
	"github.com/aretw0/arbor/pkg/ports"
)

// Tab is one scene with its history.
type Tab struct {
	Name    string
	Scene   *domain.Scene
	History *history.Controller
}

// Tree reads the tab's scene into an AbstractTree.
func (t *Tab) Tree() *domain.AbstractTree {
	return convert.BuildTreeFromScene(t.Scene)
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		w.logger = logger
	}
}

// WithArranger sets the layout collaborator. Defaults to layout.Tidy.
func WithArranger(a ports.Arranger) Option {
	return func(w *Workspace) {
		w.arranger = a
	}
}

// WithCodec sets the snapshot codec used by every tab history.
func WithCodec(c history.Codec) Option {
	return func(w *Workspace) {
		w.codec = c
	}
}

// WithHooks sets lifecycle hooks passed to every tab history.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(w *Workspace) {
		w.hooks = h
	}
}

// WithMode sets the initial mode.
func WithMode(m domain.Mode) Option {
	return func(w *Workspace) {
		w.mode = m
	}
}

// WithLayout sets the layout of new tabs.
func WithLayout(l domain.Layout) Option {
	return func(w *Workspace) {
		w.layout = l
	}
}

// Workspace owns the tabs. It is not safe for concurrent use.
type Workspace struct {
	tabs    map[string]*Tab
	order   []string
	current string

	mode     domain.Mode
	layout   domain.Layout
	arranger ports.Arranger
	codec    history.Codec
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// New creates an empty workspace in editor mode with a horizontal layout.
func New(opts ...Option) *Workspace {
	w := &Workspace{
		tabs:     make(map[string]*Tab),
		mode:     domain.ModeEditor,
		layout:   domain.LayoutHorizontal,
		arranger: layout.NewTidy(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// CreateTab adds a tab with an empty scene. The first tab becomes current.
func (w *Workspace) CreateTab(name string) (*Tab, error) {
	if _, exists := w.tabs[name]; exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateTab, name)
	}

	scene := domain.NewScene(w.layout)
	opts := []history.Option{
		history.WithLogger(w.logger),
		history.WithModeSource(w.Mode),
		history.WithHooks(w.hooks),
		history.WithTab(name),
	}
	if w.codec != nil {
		opts = append(opts, history.WithCodec(w.codec))
	}
	h, err := history.New(scene, opts...)
	if err != nil {
		return nil, fmt.Errorf("create tab %s: %w", name, err)
	}

	tab := &Tab{Name: name, Scene: scene, History: h}
	w.tabs[name] = tab
	w.order = append(w.order, name)
	if w.current == "" {
		w.current = name
	}
	w.logger.Debug("Tab created", "tab", name)
	return tab, nil
}

// Tab returns the named tab.
func (w *Workspace) Tab(name string) (*Tab, error) {
	tab, ok := w.tabs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTabNotFound, name)
	}
	return tab, nil
}

// Current returns the selected tab, or nil when there are none.
func (w *Workspace) Current() *Tab {
	return w.tabs[w.current]
}

// Select makes the named tab current.
func (w *Workspace) Select(name string) error {
	if _, ok := w.tabs[name]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrTabNotFound, name)
	}
	w.current = name
	return nil
}

// Tabs returns the tabs in creation order.
func (w *Workspace) Tabs() []*Tab {
	out := make([]*Tab, 0, len(w.order))
	for _, name := range w.order {
		out = append(out, w.tabs[name])
	}
	return out
}

// CloseTab removes a tab. Closing the current tab selects the first
// remaining one.
func (w *Workspace) CloseTab(name string) error {
	tab, ok := w.tabs[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTabNotFound, name)
	}
	tab.History.Detach()
	delete(w.tabs, name)
	for i, n := range w.order {
		if n == name {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	if w.current == name {
		w.current = ""
		if len(w.order) > 0 {
			w.current = w.order[0]
		}
	}
	return nil
}

// Mode returns the current mode.
func (w *Workspace) Mode() domain.Mode {
	return w.mode
}

// SetMode switches mode. Editing is locked on every tab outside editor mode.
func (w *Workspace) SetMode(m domain.Mode) {
	if w.mode == m {
		return
	}
	w.logger.Info("Mode changed", "from", w.mode, "to", m)
	w.mode = m
}

// Locked reports whether direct editing is disabled.
func (w *Workspace) Locked() bool {
	return !w.mode.Editable()
}

// Layout returns the layout applied to tabs.
func (w *Workspace) Layout() domain.Layout {
	return w.layout
}

// Arranger returns the layout collaborator.
func (w *Workspace) Arranger() ports.Arranger {
	return w.arranger
}

// SetLayout applies l to every tab whose scene uses another layout and
// re-arranges it. Each refreshed tab records one history entry. It returns
// the names of the refreshed tabs.
func (w *Workspace) SetLayout(l domain.Layout) ([]string, error) {
	var refreshed []string
	for _, tab := range w.Tabs() {
		if tab.Scene.Layout() == l {
			continue
		}
		if err := w.relayout(tab, l); err != nil {
			return refreshed, err
		}
		refreshed = append(refreshed, tab.Name)
	}
	w.layout = l
	if len(refreshed) > 0 {
		w.logger.Debug("Layout refreshed", "layout", l, "tabs", refreshed)
	}
	return refreshed, nil
}

// Arrange re-derives the positions of the tab's scene from its tree.
func (w *Workspace) Arrange(tab *Tab) error {
	return w.relayout(tab, tab.Scene.Layout())
}

func (w *Workspace) relayout(tab *Tab, l domain.Layout) error {
	tree := tab.Tree()
	before := tab.History.Current()

	release := tab.Scene.BlockSignals()
	tab.Scene.SetLayout(l)
	err := w.arranger.Arrange(tab.Scene, tree)
	release()

	if err != nil {
		if rbErr := tab.History.Rollback(before); rbErr != nil {
			w.logger.Error("Rollback failed", "tab", tab.Name, "err", rbErr)
		}
		return fmt.Errorf("arrange tab %s: %w", tab.Name, err)
	}
	tab.Scene.Notify()
	return nil
}
