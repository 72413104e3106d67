package nova

// noFree and usedSlot are the sentinel values index_entry.next_free takes in
// the original: noFree terminates a free list, usedSlot marks a live slot.
const (
	noFree   = -1
	usedSlot = -2
)

type handleEntry struct {
	generation uint32
	nextFree   int // noFree, usedSlot, or the index of the next free slot
}

// HandleManager allocates and frees generational Handles from a growable
// slot table, validating lookups against stale (freed, reused) references.
// Freed slots are recycled FIFO so a slot's generation only advances when
// every other free slot has been reused first, spreading reuse evenly.
type HandleManager struct {
	entries   []handleEntry
	firstFree int
	lastFree  int
}

// NewHandleManager returns an empty HandleManager.
func NewHandleManager() *HandleManager {
	return &HandleManager{firstFree: noFree, lastFree: noFree}
}

// Create allocates a handle from a recycled slot if one exists, otherwise
// grows the slot table by one. Panics if the slot's generation counter would
// wrap to zero (the 65536th allocation of the same slot).
func (m *HandleManager) Create() Handle {
	i := m.getFreeEntry()
	m.entries[i].generation++
	if m.entries[i].generation > maxGeneration {
		panic("nova: handle generation overflow")
	}
	m.entries[i].nextFree = usedSlot
	return NewHandle(uint32(i), m.entries[i].generation)
}

// Free returns h's slot to the free list. The slot's generation is not
// bumped until the slot is reused by a later Create, so h itself remains
// invalid immediately after Free (IsValid checks nextFree == usedSlot).
func (m *HandleManager) Free(h Handle) {
	i := int(h.Slot())
	if m.entries[i].nextFree != usedSlot {
		panic("nova: double free of handle")
	}
	m.entries[i].nextFree = noFree
	if m.lastFree == noFree {
		m.firstFree = i
		m.lastFree = i
		return
	}
	m.entries[m.lastFree].nextFree = i
	m.lastFree = i
}

// IsValid reports whether h refers to a currently-allocated slot with a
// matching generation.
func (m *HandleManager) IsValid(h Handle) bool {
	if !h.IsValid() {
		return false
	}
	i := int(h.Slot())
	if i >= len(m.entries) {
		return false
	}
	e := &m.entries[i]
	return e.nextFree == usedSlot && e.generation == h.Generation()
}

// Clear discards all slots and resets the free list.
func (m *HandleManager) Clear() {
	m.entries = m.entries[:0]
	m.firstFree = noFree
	m.lastFree = noFree
}

// Get reconstructs the current Handle for slot index i, or the zero Handle
// if i is out of range.
func (m *HandleManager) Get(i int) Handle {
	if i >= 0 && i < len(m.entries) {
		return NewHandle(uint32(i), m.entries[i].generation)
	}
	return 0
}

func (m *HandleManager) getFreeEntry() int {
	if m.firstFree != noFree {
		result := m.firstFree
		m.firstFree = m.entries[result].nextFree
		m.entries[result].nextFree = usedSlot
		if m.firstFree == noFree {
			m.lastFree = noFree
		}
		return result
	}
	m.entries = append(m.entries, handleEntry{nextFree: noFree})
	return len(m.entries) - 1
}
