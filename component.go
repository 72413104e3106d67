package nova

import "reflect"

// componentInterface is the per-registered-type triple of storage, index
// table, and lifecycle callbacks. It is type-erased (columnStorage, not
// Storage[T]) so the registry can hold every registered component type in
// one slice and one map, keyed by reflect.Type.
type componentInterface struct {
	name       string
	relational bool
	storage    columnStorage
	index      IndexTable
	onCreate   []func(Handle)
	onDestroy  []func(Handle)
}

// RegisterComponent binds component type T to a stable name and an index
// table variant. hashed selects a HashedIndexTable (best for sparse slot
// usage); otherwise a FlatIndexTable is used. Registration is always this
// explicit call — there is no automatic discovery of component types.
//
// T should embed WithOwner when relational is true: a relational
// component's physical row order is a parent-before-child topological
// order of the handle forest, and that order is only meaningful when rows
// can report their own owner without an external sidecar lookup racing the
// rebuild. Non-relational components may use either layout.
func RegisterComponent[T any](w *World, name string, relational bool, hashed bool) {
	storage := NewStorage[T]()
	var index IndexTable
	if hashed {
		index = NewHashedIndexTable(storage)
	} else {
		index = NewFlatIndexTable(storage)
	}
	ci := &componentInterface{name: name, relational: relational, storage: storage, index: index}
	typ := reflect.TypeFor[T]()
	w.components = append(w.components, ci)
	w.componentByType[typ] = ci
	w.componentByName[name] = ci
}

func componentInterfaceFor[T any](w *World) *componentInterface {
	ci := w.componentByType[reflect.TypeFor[T]()]
	if ci == nil {
		panic("nova: component type not registered")
	}
	return ci
}

func storageFor[T any](ci *componentInterface) *Storage[T] {
	return ci.storage.(*Storage[T])
}

// AddComponent appends a new T row owned by h and runs T's on_create
// callbacks. Panics if h already carries a T (ci.index.Insert does not
// itself check this — callers that need idempotence should use
// GetOrCreate or UpdateOrCreate instead).
func AddComponent[T any](w *World, h Handle, value T) *T {
	ci := componentInterfaceFor[T](w)
	s := storageFor[T](ci)
	if ci.index.Exists(h) {
		panic("nova: entity already carries this component")
	}
	row := ci.index.Insert(h)
	if row != s.Size() {
		panic("nova: index table and storage row disagree on insertion point")
	}
	s.Append(h, value)
	for _, cb := range ci.onCreate {
		cb(h)
	}
	return s.Get(row)
}

// Get returns a pointer to h's T component, or nil if h carries none.
func Get[T any](w *World, h Handle) *T {
	ci := componentInterfaceFor[T](w)
	row := ci.index.Get(h)
	if row == -1 {
		return nil
	}
	return storageFor[T](ci).Get(row)
}

// UpdateOrCreate overwrites h's T component if one exists, otherwise adds
// one.
func UpdateOrCreate[T any](w *World, h Handle, value T) *T {
	if existing := Get[T](w, h); existing != nil {
		*existing = value
		return existing
	}
	return AddComponent(w, h, value)
}

// GetOrCreate returns h's T component, default-constructing one if absent.
func GetOrCreate[T any](w *World, h Handle) *T {
	if existing := Get[T](w, h); existing != nil {
		return existing
	}
	var zero T
	return AddComponent(w, h, zero)
}

// RemoveComponent removes h's T component, if any. A no-op if h carries
// none. Destroy callbacks fire before the row is swap-removed.
func RemoveComponent[T any](w *World, h Handle) {
	ci := componentInterfaceFor[T](w)
	w.removeComponentRow(ci, ci.index.Get(h))
}

// RemoveComponentIf removes every T row for which pred returns true.
func RemoveComponentIf[T any](w *World, pred func(*T) bool) {
	ci := componentInterfaceFor[T](w)
	s := storageFor[T](ci)
	i := 0
	for i < s.Size() {
		if pred(s.Get(i)) {
			w.removeComponentRow(ci, i)
		} else {
			i++
		}
	}
}

// ForEachComponent calls f with every live row of T, in storage order.
func ForEachComponent[T any](w *World, f func(Handle, *T)) {
	ci := componentInterfaceFor[T](w)
	s := storageFor[T](ci)
	for i := 0; i < s.Size(); i++ {
		f(s.RowOwner(i), s.Get(i))
	}
}

func (w *World) removeComponentRow(ci *componentInterface, row int) {
	if row < 0 || row >= ci.storage.size() {
		return
	}
	owner := ci.storage.rowOwner(row)
	for _, cb := range ci.onDestroy {
		cb(owner)
	}
	deadRow := ci.index.RemoveSwapByIndex(row)
	if ci.relational {
		w.relationalRebuild(ci, deadRow)
	}
}

// relationalRebuild restores the relational invariant (parent row index ≤
// child row index) after a swap-removal may have moved a parent below a
// still-present child.
func (w *World) relationalRebuild(ci *componentInterface, i int) {
	if i < 0 || i >= ci.storage.size() {
		return
	}
	h := ci.storage.rowOwner(i)
	p := w.tree.Parent(h)
	if p == 0 {
		return
	}
	if i < ci.index.Get(p) {
		ci.index.Swap(h, p)
		w.relationalRebuild(ci, i)
	}
}

// relationalRecursiveRebuild restores the relational invariant on h's
// subtree after attach.
func (w *World) relationalRecursiveRebuild(ci *componentInterface, h Handle) {
	p := w.tree.Parent(h)
	if p == 0 {
		return
	}
	if ci.index.Get(h) < ci.index.Get(p) {
		ci.index.Swap(h, p)
		for _, c := range w.Children(h) {
			w.relationalRecursiveRebuild(ci, c)
		}
	}
}
