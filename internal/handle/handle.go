package handle

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrInvalid is returned for ids that were never issued, were released, or
// refer to a reused slot.
var ErrInvalid = errors.New("handle: invalid handle")

// ID is an opaque handle.
type ID uint64

// Nil is the zero handle, used to report failure.
const Nil ID = 0

func makeID(slot, gen uint32) ID {
	return ID(uint64(gen)<<32 | uint64(slot))
}

// Slot returns the slot index.
func (id ID) Slot() uint32 { return uint32(id) }

// Generation returns the generation the id was issued in.
func (id ID) Generation() uint32 { return uint32(id >> 32) }

// Stats tracks table usage.
type Stats struct {
	Live     uint64 // Current: ids not yet released
	Blocks   uint64 // Current: distinct objects held
	Issued   uint64 // Historical: ids ever issued
	Released uint64 // Historical: ids ever released
}

type block struct {
	obj  any
	refs int
}

type entry struct {
	gen uint32
	blk *block
}

// Table maps ids to ref-counted blocks.
type Table struct {
	mu      sync.Mutex
	entries []entry
	free    []uint32
	blocks  int

	issued   atomic.Uint64
	released atomic.Uint64
}

// New returns an empty table. Slot 0 is reserved so that Nil never resolves.
func New() *Table {
	return &Table{entries: make([]entry, 1, 64)}
}

func (t *Table) issueLocked(blk *block) ID {
	var slot uint32
	if n := len(t.free); n > 0 {
		slot = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		slot = uint32(len(t.entries))
		t.entries = append(t.entries, entry{})
	}
	e := &t.entries[slot]
	if e.gen == 0 {
		e.gen = 1
	}
	e.blk = blk
	blk.refs++
	t.issued.Add(1)
	return makeID(slot, e.gen)
}

func (t *Table) lookupLocked(id ID) (*entry, bool) {
	slot := id.Slot()
	if id == Nil || slot == 0 || int(slot) >= len(t.entries) {
		return nil, false
	}
	e := &t.entries[slot]
	if e.blk == nil || e.gen != id.Generation() {
		return nil, false
	}
	return e, true
}

// Put stores obj in a new block and returns its first id.
func (t *Table) Put(obj any) ID {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.blocks++
	return t.issueLocked(&block{obj: obj})
}

// Share issues a second, independently releasable id for the block behind
// id.
func (t *Table) Share(id ID) (ID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.lookupLocked(id)
	if !ok {
		return Nil, ErrInvalid
	}
	return t.issueLocked(e.blk), nil
}

// Get returns the object behind id.
func (t *Table) Get(id ID) (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.lookupLocked(id)
	if !ok {
		return nil, ErrInvalid
	}
	return e.blk.obj, nil
}

// Refs returns how many live ids share the block behind id.
func (t *Table) Refs(id ID) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.lookupLocked(id)
	if !ok {
		return 0
	}
	return e.blk.refs
}

// Release invalidates id and returns the object behind it. last reports
// whether id was the final reference, in which case the object has been
// dropped from the table and the caller owns its cleanup.
func (t *Table) Release(id ID) (obj any, last bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.lookupLocked(id)
	if !ok {
		return nil, false, ErrInvalid
	}
	obj = e.blk.obj
	e.blk.refs--
	if e.blk.refs == 0 {
		e.blk.obj = nil
		t.blocks--
		last = true
	}
	e.blk = nil
	e.gen++
	if e.gen == 0 {
		e.gen = 1
	}
	t.free = append(t.free, id.Slot())
	t.released.Add(1)
	return obj, last, nil
}

// Stats returns a snapshot of the usage counters.
func (t *Table) Stats() Stats {
	t.mu.Lock()
	blocks := t.blocks
	t.mu.Unlock()

	issued, released := t.issued.Load(), t.released.Load()
	return Stats{
		Live:     issued - released,
		Blocks:   uint64(blocks),
		Issued:   issued,
		Released: released,
	}
}
