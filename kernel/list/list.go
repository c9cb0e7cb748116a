// Package list is an intrusive doubly linked list addressed by handles.
//
// Nodes live in a caller-owned arena. Each node embeds one Link per list
// role it can take part in, and a Linker maps a handle to the Link for a
// given role. The zero List is empty and the zero Link is unlinked, so a
// zeroed arena slot never carries list state.
package list

// Handle identifies an arena slot. Handles are 1-based; Nil is no slot.
type Handle uint16

// Nil is the absent handle.
const Nil Handle = 0

// Link is the per-node link storage for one list role.
type Link struct {
	next Handle
	prev Handle
}

// Linked reports whether the link points at a neighbour.
//
// The only member of a one-element list has no neighbours, so use the
// owning List to test membership of a single node.
func (l *Link) Linked() bool { return l.next != Nil || l.prev != Nil }

// Linker maps a handle to the Link used by one list role.
type Linker interface {
	Link(h Handle) *Link
}

// List is a doubly linked list head.
//
// The zero value is an empty list ready to use.
type List struct {
	first Handle
	last  Handle
}

// Reset makes l empty without touching the nodes it held.
func (l *List) Reset() {
	l.first = Nil
	l.last = Nil
}

// Empty reports whether l has no nodes.
func (l *List) Empty() bool { return l.first == Nil }

// Front returns the first node of l or Nil.
func (l *List) Front() Handle { return l.first }

// Back returns the last node of l or Nil.
func (l *List) Back() Handle { return l.last }

// Next returns the node following h or Nil.
func Next(lk Linker, h Handle) Handle { return lk.Link(h).next }

// Prev returns the node preceding h or Nil.
func Prev(lk Linker, h Handle) Handle { return lk.Link(h).prev }

// Len returns the number of nodes in l.
//
// NOTE: This is an O(n) operation.
func (l *List) Len(lk Linker) (n int) {
	for h := l.first; h != Nil; h = lk.Link(h).next {
		n++
	}
	return n
}

// Contains reports whether h is a node of l. O(n).
func (l *List) Contains(lk Linker, h Handle) bool {
	for it := l.first; it != Nil; it = lk.Link(it).next {
		if it == h {
			return true
		}
	}
	return false
}

// PushFront inserts h at the front of l.
func (l *List) PushFront(lk Linker, h Handle) {
	e := lk.Link(h)
	e.next = l.first
	e.prev = Nil
	if l.first != Nil {
		lk.Link(l.first).prev = h
	} else {
		l.last = h
	}
	l.first = h
}

// PushBack inserts h at the back of l.
func (l *List) PushBack(lk Linker, h Handle) {
	e := lk.Link(h)
	e.next = Nil
	e.prev = l.last
	if l.last != Nil {
		lk.Link(l.last).next = h
	} else {
		l.first = h
	}
	l.last = h
}

// InsertBefore inserts h immediately before at. A Nil at appends h.
func (l *List) InsertBefore(lk Linker, at, h Handle) {
	if at == Nil {
		l.PushBack(lk, h)
		return
	}

	a := lk.Link(at)
	e := lk.Link(h)
	b := a.prev

	e.next = at
	e.prev = b
	a.prev = h
	if b != Nil {
		lk.Link(b).next = h
	} else {
		l.first = h
	}
}

// Remove unlinks h from l and clears its link.
//
// h must be a node of l.
func (l *List) Remove(lk Linker, h Handle) {
	e := lk.Link(h)
	prev, next := e.prev, e.next

	if prev != Nil {
		lk.Link(prev).next = next
	} else if l.first == h {
		l.first = next
	}

	if next != Nil {
		lk.Link(next).prev = prev
	} else if l.last == h {
		l.last = prev
	}

	e.next = Nil
	e.prev = Nil
}

// PopFront removes and returns the first node of l, or Nil when empty.
func (l *List) PopFront(lk Linker) Handle {
	h := l.first
	if h != Nil {
		l.Remove(lk, h)
	}
	return h
}
