// Package pane is the in-page component runtime. Panes register a factory
// under a name; a page's Runtime scans its document for hosts carrying
// data-pane="<name>", instantiates each one exactly once and tears them
// down with the page. Panes talk to each other through the page's EventBus
// and StateStore, never directly.
package pane

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/ziadkadry99/riskpanes/internal/dom"
)

// Host markers.
const (
	AttrPane        = "data-pane"
	AttrNoAuto      = "data-panes-no-auto"
	dataInitialized = "pane-initialized"
)

var (
	// ErrMissingPaneName is returned by Register for an empty name.
	ErrMissingPaneName = errors.New("panes.register: missing name")
	// ErrNilFactory is returned by Register for a nil factory.
	ErrNilFactory = errors.New("panes.register: factory must be a function")
)

// API is what a pane factory receives besides its host.
type API struct {
	Doc       *dom.Document
	Events    *EventBus
	State     *StateStore
	Lifecycle *Lifecycle
	Name      string
}

// Instance is a live pane.
type Instance interface {
	Destroy()
}

// DestroyFunc adapts a function to Instance.
type DestroyFunc func()

// Destroy implements Instance.
func (f DestroyFunc) Destroy() {
	if f != nil {
		f()
	}
}

// Noop is an Instance with nothing to clean up.
var Noop Instance = DestroyFunc(nil)

// Factory renders a pane into host. A returned error, or a panic, is shown
// inside the host instead of the pane.
type Factory func(ctx context.Context, host *html.Node, api API) (Instance, error)

// Registry maps pane names to factories. It is filled once at startup and
// shared by every page.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds name to f. Registering a name again replaces the factory.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" {
		return ErrMissingPaneName
	}
	if f == nil {
		return ErrNilFactory
	}
	r.mu.Lock()
	r.factories[name] = f
	r.mu.Unlock()
	return nil
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type record struct {
	host *html.Node
	name string
	inst Instance
}

// Runtime owns the panes of one page.
type Runtime struct {
	ID        string
	Doc       *dom.Document
	Events    *EventBus
	State     *StateStore
	Lifecycle *Lifecycle

	registry  *Registry
	instances []record
}

// Options supplies page-scoped collaborators; nil fields are created.
type Options struct {
	Events    *EventBus
	State     *StateStore
	Lifecycle *Lifecycle
}

// NewRuntime creates the runtime for doc.
func NewRuntime(reg *Registry, doc *dom.Document, opts Options) *Runtime {
	if opts.Events == nil {
		opts.Events = NewEventBus()
	}
	if opts.State == nil {
		opts.State = NewStateStore(opts.Events)
	}
	if opts.Lifecycle == nil {
		opts.Lifecycle = NewLifecycle()
	}
	if reg == nil {
		reg = NewRegistry()
	}
	return &Runtime{
		ID:        uuid.New().String(),
		Doc:       doc,
		Events:    opts.Events,
		State:     opts.State,
		Lifecycle: opts.Lifecycle,
		registry:  reg,
	}
}

// API returns the collaborator set handed to panes named name.
func (r *Runtime) API(name string) API {
	return API{Doc: r.Doc, Events: r.Events, State: r.State, Lifecycle: r.Lifecycle, Name: name}
}

// Bootstrap instantiates every uninitialised pane host below root, or below
// the whole document when root is nil. A failing pane is replaced by an
// error box; the remaining hosts are still processed.
func (r *Runtime) Bootstrap(ctx context.Context, root *html.Node) {
	if root == nil {
		root = r.Doc.Root
	}
	for _, host := range dom.QueryAttr(root, AttrPane) {
		name := dom.Data(host, "pane")
		if name == "" {
			continue
		}
		if dom.Data(host, dataInitialized) == "true" {
			continue
		}
		dom.SetData(host, dataInitialized, "true")
		dom.AddClass(host, "pane-host", HostClass(name))

		factory, ok := r.registry.Lookup(name)
		if !ok {
			slog.Debug("no pane registered", "pane", name, "page", r.ID, "registered", r.registry.Names())
			continue
		}

		inst, err := invoke(ctx, factory, host, r.API(name))
		if err != nil {
			slog.Warn("pane failed", "pane", name, "page", r.ID, "error", err)
			RenderError(host, name, err)
			continue
		}
		r.instances = append(r.instances, record{host: host, name: name, inst: inst})
	}
}

// AutoBootstrap bootstraps the whole document once, unless the root element
// opts out with data-panes-no-auto. It reports whether it ran.
func (r *Runtime) AutoBootstrap(ctx context.Context) bool {
	if r.Doc.MarkAutoBootstrapped() {
		return false
	}
	if dom.HasAttr(r.Doc.DocumentElement(), AttrNoAuto) {
		return false
	}
	r.Bootstrap(ctx, nil)
	return true
}

// Instances returns the names of live panes in creation order.
func (r *Runtime) Instances() []string {
	names := make([]string, len(r.instances))
	for i, rec := range r.instances {
		names[i] = rec.name
	}
	return names
}

// Instance returns the first live pane created under name.
func (r *Runtime) Instance(name string) (Instance, bool) {
	for _, rec := range r.instances {
		if rec.name == name {
			return rec.inst, true
		}
	}
	return nil, false
}

// DestroyAll tears down every live pane and re-arms their hosts for a later
// Bootstrap.
func (r *Runtime) DestroyAll() {
	for _, rec := range r.instances {
		if rec.inst != nil {
			runCleanup(rec.inst.Destroy)
		}
		if rec.host != nil {
			dom.SetData(rec.host, dataInitialized, "false")
		}
	}
	r.instances = nil
}

func invoke(ctx context.Context, f Factory, host *html.Node, api API) (inst Instance, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			inst, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()
	inst, err = f(ctx, host, api)
	if inst == nil && err == nil {
		inst = Noop
	}
	return inst, err
}

// RenderError replaces the host content with a visible error box.
func RenderError(host *html.Node, name string, err error) {
	box := dom.El("section", "pane pane--error", "")
	dom.Append(box,
		dom.El("h2", "pane-title", "Pane error: "+name),
		dom.El("pre", "", err.Error()),
	)
	dom.ReplaceChildren(host, box)
}

var nonKebab = regexp.MustCompile(`[^a-z0-9]+`)

// HostClass returns the CSS scoping class for a pane name.
func HostClass(name string) string {
	return "pane-host--" + toSafeKebab(name)
}

func toSafeKebab(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Trim(nonKebab.ReplaceAllString(s, "-"), "-")
}
