package nova

import "reflect"

// World is the ECS aggregate: a handle forest, the registered component
// interfaces, the message queue, registered per-frame update callbacks, and
// the deferred-removal list.
type World struct {
	tree  *HandleTree
	Queue *MessageQueue

	components      []*componentInterface
	componentByType map[reflect.Type]*componentInterface
	componentByName map[string]*componentInterface

	updateHandlers []func(dt float64)
	deadHandles    []Handle
	cleanup        []func()
}

// NewWorld returns an empty World.
func NewWorld() *World {
	return &World{
		tree:            NewHandleTree(),
		Queue:           NewMessageQueue(),
		componentByType: make(map[reflect.Type]*componentInterface),
		componentByName: make(map[string]*componentInterface),
	}
}

// Create allocates a new, parentless, childless entity handle.
func (w *World) Create() Handle {
	return w.tree.Create()
}

// Exists reports whether h refers to a currently-live entity.
func (w *World) Exists(h Handle) bool {
	return w.tree.IsValid(h)
}

// Attach makes child the new first child of parent, then re-establishes the
// relational invariant on child's subtree for every relational component.
// Returns false, with no side effect, if child was already parent's child.
func (w *World) Attach(parent, child Handle) bool {
	if !w.tree.Attach(parent, child) {
		return false
	}
	for _, ci := range w.components {
		if ci.relational {
			w.relationalRecursiveRebuild(ci, child)
		}
	}
	return true
}

// Detach unlinks h from its parent and siblings without touching its
// children or any components.
func (w *World) Detach(h Handle) {
	w.tree.Detach(h)
}

// Parent returns h's parent, or the zero Handle if h is a root.
func (w *World) Parent(h Handle) Handle {
	if h == 0 {
		return 0
	}
	return w.tree.Parent(h)
}

// FirstChild returns h's first child, or the zero Handle if h has none.
func (w *World) FirstChild(h Handle) Handle {
	if h == 0 {
		return 0
	}
	return w.tree.First(h)
}

// NextSibling returns h's next sibling, or the zero Handle if h has none.
func (w *World) NextSibling(h Handle) Handle {
	if h == 0 {
		return 0
	}
	return w.tree.Next(h)
}

// NextHandle returns the pre-order successor of current, bounded by root:
// descend to the first child; otherwise take the next sibling; otherwise
// walk up until a parent has a next sibling or current reaches root.
func (w *World) NextHandle(current, root Handle) Handle {
	if child := w.FirstChild(current); child != 0 {
		return child
	}
	for {
		if current == 0 || current == root {
			return 0
		}
		if next := w.NextSibling(current); next != 0 {
			return next
		}
		current = w.Parent(current)
	}
}

// Children returns the direct children of h, in sibling order (most
// recently attached first), as an eagerly-built slice.
func (w *World) Children(h Handle) []Handle {
	var out []Handle
	for c := w.FirstChild(h); c != 0; c = w.NextSibling(c) {
		out = append(out, c)
	}
	return out
}

// RecursiveCall invokes f on h, then recursively on every descendant, in
// pre-order.
func (w *World) RecursiveCall(h Handle, f func(Handle)) {
	f(h)
	for _, c := range w.Children(h) {
		w.RecursiveCall(c, f)
	}
}

// RecursiveComponentCall invokes f on h's T component if present, then
// recurses into h's children, in pre-order.
func RecursiveComponentCall[T any](w *World, h Handle, f func(*T)) {
	if c := Get[T](w, h); c != nil {
		f(c)
	}
	for _, c := range w.Children(h) {
		RecursiveComponentCall(w, c, f)
	}
}

// RecursiveComponents returns the T component of every descendant of root
// (root itself excluded) that carries one, in pre-order, as an eagerly
// built slice.
func RecursiveComponents[T any](w *World, root Handle) []*T {
	var out []*T
	var walk func(Handle)
	walk = func(h Handle) {
		for _, c := range w.Children(h) {
			if v := Get[T](w, c); v != nil {
				out = append(out, v)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// MarkRemove queues h for removal at the end of the next Update call.
func (w *World) MarkRemove(h Handle) {
	w.deadHandles = append(w.deadHandles, h)
}

// Remove destroys h immediately: depth-first, children before parent. For
// every descendant (innermost first) every registered component is removed
// (running on_destroy and swap-removing the row), then the handle itself is
// freed. Each child's next sibling is captured before recursing into it, so
// removal does not corrupt the sibling walk still in progress.
func (w *World) Remove(h Handle) {
	ch := w.tree.First(h)
	for ch != 0 {
		r := ch
		ch = w.tree.Next(ch)
		w.Remove(r)
	}
	for _, ci := range w.components {
		w.removeComponentForHandle(ci, h)
	}
	w.tree.Free(h)
}

func (w *World) removeComponentForHandle(ci *componentInterface, h Handle) {
	row := ci.index.Get(h)
	if row == -1 {
		return
	}
	w.removeComponentRow(ci, row)
}

// RegisterUpdateHandler appends fn to the list of per-frame update
// callbacks invoked, in registration order, by Update.
func (w *World) RegisterUpdateHandler(fn func(dt float64)) {
	w.updateHandlers = append(w.updateHandlers, fn)
}

// RegisterCleanup appends fn to the LIFO teardown list run by Close, so
// systems can tear down in the reverse of their registration order, before
// component storages are discarded.
func (w *World) RegisterCleanup(fn func()) {
	w.cleanup = append(w.cleanup, fn)
}

// Update advances the message queue's clock by dt (delivering due
// messages), runs every registered update callback in registration order,
// then processes and empties the deferred-removal list.
func (w *World) Update(dt float64) {
	w.Queue.UpdateTime(dt)
	for _, u := range w.updateHandlers {
		u(dt)
	}
	dead := w.deadHandles
	w.deadHandles = nil
	for _, h := range dead {
		w.Remove(h)
	}
}

// Clear empties every component's storage and index, resets the message
// queue, and discards every handle. Registered update callbacks and
// cleanup actions are left intact (Clear resets data, not wiring).
func (w *World) Clear() {
	w.Queue.Reset()
	for _, ci := range w.components {
		ci.storage.clear()
		ci.index.Clear()
	}
	w.tree.Clear()
}

// Close runs every registered cleanup action in reverse (LIFO) order, then
// discards all component interfaces.
func (w *World) Close() {
	for i := len(w.cleanup) - 1; i >= 0; i-- {
		w.cleanup[i]()
	}
	w.cleanup = nil
	w.updateHandlers = nil
	w.components = nil
	w.componentByType = make(map[reflect.Type]*componentInterface)
	w.componentByName = make(map[string]*componentInterface)
}
