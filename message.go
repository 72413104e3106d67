package nova

import "container/heap"

type messageID uint32

// envelope is a queued or immediately dispatched message: an opaque payload
// tagged with its message id, a recursive-delivery flag, a delivery time,
// and a sequence number that breaks ties between same-time envelopes
// deterministically.
type envelope struct {
	id        messageID
	recursive bool
	time      float64
	seq       uint64
	payload   any
	index     int // heap.Interface bookkeeping
}

type envelopeHeap []*envelope

func (h envelopeHeap) Len() int { return len(h) }

func (h envelopeHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}

func (h envelopeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *envelopeHeap) Push(x any) {
	e := x.(*envelope)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *envelopeHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// handlerFunc is a registered message handler. recursive mirrors the
// envelope's flag so component-message handlers (system.go) know whether to
// repeat delivery across the target's subtree.
type handlerFunc func(payload any, recursive bool)

// MessageQueue is a time-ordered, priority-scheduled message bus. Handlers
// register per message id and run synchronously, in registration order,
// whenever a message of that id is dispatched or comes due. Delayed
// messages sit in a binary heap ordered by delivery time; there is no
// locking, since the queue is meant to be driven from a single goroutine.
type MessageQueue struct {
	time     float64
	pending  envelopeHeap
	handlers map[messageID][]handlerFunc
	seq      uint64
}

// NewMessageQueue returns an empty MessageQueue with its clock at zero.
func NewMessageQueue() *MessageQueue {
	return &MessageQueue{handlers: make(map[messageID][]handlerFunc)}
}

// Time returns the queue's current virtual clock.
func (q *MessageQueue) Time() float64 { return q.time }

// Pending reports whether any delayed message remains queued.
func (q *MessageQueue) Pending() bool { return len(q.pending) > 0 }

func (q *MessageQueue) registerHandler(id messageID, h handlerFunc) {
	q.handlers[id] = append(q.handlers[id], h)
}

func (q *MessageQueue) dispatch(e *envelope) {
	for _, h := range q.handlers[e.id] {
		h(e.payload, e.recursive)
	}
}

func (q *MessageQueue) dispatchNow(id messageID, recursive bool, payload any) {
	q.dispatch(&envelope{id: id, recursive: recursive, time: q.time, payload: payload})
}

func (q *MessageQueue) queueEnvelope(id messageID, recursive bool, delay float64, payload any) {
	q.seq++
	heap.Push(&q.pending, &envelope{id: id, recursive: recursive, time: q.time + delay, seq: q.seq, payload: payload})
}

// UpdateTime advances the clock by dt and delivers, in non-decreasing time
// order, every queued message whose time is now at or before the new clock.
// A zero dt is a no-op: no clock advance, no delivery.
func (q *MessageQueue) UpdateTime(dt float64) {
	if dt == 0 {
		return
	}
	q.time += dt
	for len(q.pending) > 0 && q.pending[0].time <= q.time {
		e := heap.Pop(&q.pending).(*envelope)
		q.dispatch(e)
	}
}

// UpdateStep pops and dispatches exactly the earliest queued message,
// snapping the clock to its time. No-op if the queue is empty. Consecutive
// calls return non-decreasing clock values.
func (q *MessageQueue) UpdateStep() float64 {
	if len(q.pending) > 0 {
		e := heap.Pop(&q.pending).(*envelope)
		q.time = e.time
		q.dispatch(e)
	}
	return q.time
}

// Reset empties the queue and zeroes the clock.
func (q *MessageQueue) Reset() {
	q.pending = q.pending[:0]
	q.time = 0
}

// Targeted is implemented by payload types used with
// RegisterComponentMessage/RegisterComponentMessage2, so the framework can
// resolve which entity's components to gather before invoking the handler.
type Targeted interface {
	Target() Handle
}

var nextMessageTypeID messageID

// MessageType is a typed handle onto one message id, created once per
// payload type and shared across every MessageQueue that carries messages
// of that type.
type MessageType[P any] struct {
	id messageID
}

// NewMessageType allocates a fresh message id for payload type P.
func NewMessageType[P any]() *MessageType[P] {
	nextMessageTypeID++
	return &MessageType[P]{id: nextMessageTypeID}
}

// Subscribe registers handler to run, in registration order, whenever a P
// is dispatched or delivered on q.
func (mt *MessageType[P]) Subscribe(q *MessageQueue, handler func(P)) {
	q.registerHandler(mt.id, func(payload any, recursive bool) {
		handler(payload.(P))
	})
}

// SubscribeRaw is Subscribe with access to the envelope's recursive flag.
// Used by RegisterComponentMessage/RegisterComponentMessage2 to decide
// whether to repeat delivery across the target's subtree.
func (mt *MessageType[P]) SubscribeRaw(q *MessageQueue, handler func(payload P, recursive bool)) {
	q.registerHandler(mt.id, func(payload any, recursive bool) {
		handler(payload.(P), recursive)
	})
}

// Dispatch delivers payload to every subscriber of mt on q synchronously.
func (mt *MessageType[P]) Dispatch(q *MessageQueue, payload P) {
	q.dispatchNow(mt.id, false, payload)
}

// DispatchRecursive is Dispatch with the envelope's recursive flag set, so
// component-message handlers repeat across the target's subtree.
func (mt *MessageType[P]) DispatchRecursive(q *MessageQueue, payload P) {
	q.dispatchNow(mt.id, true, payload)
}

// Queue schedules payload for delivery after delay (relative to q's current
// clock).
func (mt *MessageType[P]) Queue(q *MessageQueue, delay float64, payload P) {
	q.queueEnvelope(mt.id, false, delay, payload)
}

// QueueRecursive is Queue with the envelope's recursive flag set.
func (mt *MessageType[P]) QueueRecursive(q *MessageQueue, delay float64, payload P) {
	q.queueEnvelope(mt.id, true, delay, payload)
}
