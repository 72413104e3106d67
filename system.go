package nova

// This file wires client-defined "systems" (plain values with methods) to
// the World via capability discovery: only capabilities a system actually
// exposes get registered. Go has no method overloading by parameter type, so
// nova splits capability discovery along two axes:
//
//   - Bounded arity (Update/Create/Destroy over 1-2 components): a small
//     generic capability interface per arity, checked with a type
//     assertion in RegisterSystem/RegisterSystem1/RegisterSystem2.
//   - Unbounded message-type × component-set pairs: explicit builder-style
//     registration functions (RegisterComponentMessage,
//     RegisterComponentMessage2) instead of a fixed interface, since no
//     finite interface set can cover every message payload type a caller
//     might define.

// FrameUpdater is a system that runs once per frame with no component
// iteration, registered with RegisterSystem.
type FrameUpdater interface {
	Update(w *World, dt float64)
}

// Creator is notified, via RegisterSystem1, when component C is added to
// an entity.
type Creator[C any] interface {
	Create(h Handle, c *C)
}

// Destroyer is notified, via RegisterSystem1, just before component C is
// removed from an entity.
type Destroyer[C any] interface {
	Destroy(h Handle, c *C)
}

// Updater1 is a system that runs once per frame for every entity carrying
// component C, iterating C's column directly.
type Updater1[C any] interface {
	Update(c *C, dt float64)
}

// WorldUpdater1 is Updater1 with World access.
type WorldUpdater1[C any] interface {
	Update(w *World, c *C, dt float64)
}

// Updater2 is a system that runs once per frame for every entity carrying
// both C1 and C2: it iterates C1's column and, for each row, gathers C2
// from the same owner. Rows whose owner lacks C2 are skipped.
type Updater2[C1, C2 any] interface {
	Update(c1 *C1, c2 *C2, dt float64)
}

// WorldUpdater2 is Updater2 with World access.
type WorldUpdater2[C1, C2 any] interface {
	Update(w *World, c1 *C1, c2 *C2, dt float64)
}

// RegisterSystem wires the capabilities of sys that need no component-type
// anchor. Call once per system; call RegisterSystem1/RegisterSystem2 in
// addition for each component type (or pair) sys also updates, creates, or
// destroys against.
func RegisterSystem(w *World, sys any) {
	if u, ok := sys.(FrameUpdater); ok {
		w.RegisterUpdateHandler(func(dt float64) { u.Update(w, dt) })
	}
}

// RegisterSystem1 wires sys's Creator[C], Destroyer[C], Updater1[C], and
// WorldUpdater1[C] capabilities, if any, against component type C.
func RegisterSystem1[C any](w *World, sys any) {
	ci := componentInterfaceFor[C](w)

	if c, ok := sys.(Creator[C]); ok {
		ci.onCreate = append(ci.onCreate, func(h Handle) {
			c.Create(h, Get[C](w, h))
		})
	}
	if d, ok := sys.(Destroyer[C]); ok {
		ci.onDestroy = append(ci.onDestroy, func(h Handle) {
			d.Destroy(h, Get[C](w, h))
		})
	}
	if u, ok := sys.(Updater1[C]); ok {
		w.RegisterUpdateHandler(func(dt float64) {
			s := storageFor[C](ci)
			for i := 0; i < s.Size(); i++ {
				u.Update(s.Get(i), dt)
			}
		})
	}
	if u, ok := sys.(WorldUpdater1[C]); ok {
		w.RegisterUpdateHandler(func(dt float64) {
			s := storageFor[C](ci)
			for i := 0; i < s.Size(); i++ {
				u.Update(w, s.Get(i), dt)
			}
		})
	}
}

// RegisterSystem2 wires sys's Updater2[C1,C2] and WorldUpdater2[C1,C2]
// capabilities, if any. C1 selects the iterated column; C2 is gathered per
// row from the same owner.
func RegisterSystem2[C1, C2 any](w *World, sys any) {
	ci1 := componentInterfaceFor[C1](w)

	if u, ok := sys.(Updater2[C1, C2]); ok {
		w.RegisterUpdateHandler(func(dt float64) {
			s := storageFor[C1](ci1)
			for i := 0; i < s.Size(); i++ {
				c2 := Get[C2](w, s.RowOwner(i))
				if c2 == nil {
					continue
				}
				u.Update(s.Get(i), c2, dt)
			}
		})
	}
	if u, ok := sys.(WorldUpdater2[C1, C2]); ok {
		w.RegisterUpdateHandler(func(dt float64) {
			s := storageFor[C1](ci1)
			for i := 0; i < s.Size(); i++ {
				c2 := Get[C2](w, s.RowOwner(i))
				if c2 == nil {
					continue
				}
				u.Update(w, s.Get(i), c2, dt)
			}
		})
	}
}

// RegisterComponentMessage wires handler to run whenever a P is delivered
// on w.Queue, gathering the target's C component first. P must implement
// Targeted so the framework knows which entity to gather from. If the
// target lacks C, the message is silently dropped for this handler. If the
// envelope's recursive flag is set, handler also runs for every descendant
// of the target that carries C, in pre-order.
func RegisterComponentMessage[P Targeted, C any](w *World, mt *MessageType[P], handler func(P, *C)) {
	mt.SubscribeRaw(w.Queue, func(payload P, recursive bool) {
		target := payload.Target()
		if c := Get[C](w, target); c != nil {
			handler(payload, c)
		}
		if recursive {
			for _, c := range w.Children(target) {
				RecursiveComponentCall(w, c, func(comp *C) { handler(payload, comp) })
			}
		}
	})
}

// RegisterComponentMessageWorld is RegisterComponentMessage with World
// access in the handler.
func RegisterComponentMessageWorld[P Targeted, C any](w *World, mt *MessageType[P], handler func(*World, P, *C)) {
	RegisterComponentMessage(w, mt, func(p P, c *C) { handler(w, p, c) })
}

// RegisterComponentMessage2 is RegisterComponentMessage gathering two
// component types from the same target; the message is dropped if either
// is absent.
func RegisterComponentMessage2[P Targeted, C1, C2 any](w *World, mt *MessageType[P], handler func(P, *C1, *C2)) {
	mt.SubscribeRaw(w.Queue, func(payload P, recursive bool) {
		gather := func(h Handle) {
			c1 := Get[C1](w, h)
			c2 := Get[C2](w, h)
			if c1 != nil && c2 != nil {
				handler(payload, c1, c2)
			}
		}
		target := payload.Target()
		gather(target)
		if recursive {
			for _, c := range w.Children(target) {
				w.RecursiveCall(c, gather)
			}
		}
	})
}
