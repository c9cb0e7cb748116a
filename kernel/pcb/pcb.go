// Package pcb manages process control blocks.
//
// All descriptors live in a fixed table owned by a Pool and never move.
// Three intrusive structures are threaded through that table by handle:
// the free list and the priority queues share a PCB's queue link, and the
// process tree uses its sibling link and children head. A PCB can be a tree
// node and a queue member at the same time, but it is on at most one of the
// free list or a queue.
//
// Nothing here locks. The caller runs every multi-step mutation as one
// critical section (interrupts masked on hardware, a single goroutine here).
// Building with -tags debug turns caller contract violations into panics.
package pcb

import (
	"pcbkern/kernel/arch"
	"pcbkern/kernel/list"
)

// MaxProc is the number of slots in a pool.
const MaxProc = 20

// Priority orders queues: a higher value runs first.
type Priority int

// PCB is a process control block.
type PCB struct {
	Priority Priority
	State    arch.State

	queue    list.Link
	sibling  list.Link
	parent   list.Handle
	children list.List
	queued   bool

	// slot identity, assigned by Init and kept across Alloc.
	self list.Handle
}

// Offset returns the zero-based slot index of p in its pool.
func (p *PCB) Offset() int { return int(p.self) - 1 }

// Queued reports whether p is on the free list or in a queue.
func (p *PCB) Queued() bool { return p.queued }

// HasParent reports whether p is attached to a parent.
func (p *PCB) HasParent() bool { return p.parent != list.Nil }

func (p *PCB) reset() {
	*p = PCB{self: p.self}
}

// Pool is a fixed table of PCBs plus the free list over it.
//
// The zero Pool has no capacity; call Init before anything else.
type Pool struct {
	table [MaxProc]PCB
	free  list.List
	size  int
}

// queueLinks selects the queue link of a slot. It serves the free list
// and every Queue.
type queueLinks struct{ pool *Pool }

func (l queueLinks) Link(h list.Handle) *list.Link { return &l.pool.table[h-1].queue }

// siblingLinks selects the sibling link of a slot for children lists.
type siblingLinks struct{ pool *Pool }

func (l siblingLinks) Link(h list.Handle) *list.Link { return &l.pool.table[h-1].sibling }

// Init resets the pool and puts all MaxProc slots on the free list in
// slot order.
func (pl *Pool) Init() { pl.InitN(MaxProc) }

// InitN is Init with a capacity of n slots, clamped to [0, MaxProc].
// Slots past the capacity are never handed out.
func (pl *Pool) InitN(n int) {
	if n < 0 {
		n = 0
	}
	if n > MaxProc {
		n = MaxProc
	}

	pl.free.Reset()
	pl.size = n
	for i := range pl.table {
		pl.table[i] = PCB{self: list.Handle(i + 1)}
	}
	for i := 0; i < n; i++ {
		pl.Free(&pl.table[i])
	}
}

// Cap returns the number of slots the pool hands out.
func (pl *Pool) Cap() int { return pl.size }

// Available returns the number of free slots. O(n).
func (pl *Pool) Available() int { return pl.free.Len(queueLinks{pl}) }

// Free puts p at the tail of the free list.
//
// p must already be out of every queue and out of the tree.
func (pl *Pool) Free(p *PCB) {
	pl.check(p)
	assertf(!p.queued, "free of queued pcb %d", p.Offset())
	assertf(p.parent == list.Nil, "free of pcb %d still attached to a parent", p.Offset())
	assertf(p.children.Empty(), "free of pcb %d with children", p.Offset())

	pl.free.PushBack(queueLinks{pl}, p.self)
	p.queued = true
}

// Alloc takes the PCB at the head of the free list and returns it zeroed.
// It returns false when the pool is exhausted.
func (pl *Pool) Alloc() (*PCB, bool) {
	h := pl.free.PopFront(queueLinks{pl})
	if h == list.Nil {
		return nil, false
	}
	p := pl.at(h)
	p.reset()
	return p, true
}

// Slot returns the PCB at offset, or false when offset is outside the pool.
// The PCB may be free.
func (pl *Pool) Slot(offset int) (*PCB, bool) {
	if offset < 0 || offset >= pl.size {
		return nil, false
	}
	return &pl.table[offset], true
}

func (pl *Pool) at(h list.Handle) *PCB { return &pl.table[h-1] }

// check asserts that p is a slot of pl.
func (pl *Pool) check(p *PCB) {
	if !debug {
		return
	}
	off := p.Offset()
	assertf(off >= 0 && off < MaxProc && &pl.table[off] == p, "pcb %p does not belong to this pool", p)
}
