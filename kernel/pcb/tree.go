package pcb

import "pcbkern/kernel/list"

// NoChildren reports whether p has no children.
func (pl *Pool) NoChildren(p *PCB) bool { return p.children.Empty() }

// AttachChild makes p the youngest child of parent.
func (pl *Pool) AttachChild(parent, p *PCB) {
	pl.check(parent)
	pl.check(p)
	assertf(p.parent == list.Nil, "attach of pcb %d that already has a parent", p.Offset())
	assertf(p != parent, "attach of pcb %d to itself", p.Offset())

	parent.children.PushBack(siblingLinks{pl}, p.self)
	p.parent = parent.self
}

// DetachFirstChild removes and returns the oldest child of p.
func (pl *Pool) DetachFirstChild(p *PCB) (*PCB, bool) {
	h := p.children.PopFront(siblingLinks{pl})
	if h == list.Nil {
		return nil, false
	}
	child := pl.at(h)
	child.parent = list.Nil
	return child, true
}

// DetachSelf removes p from its parent's children. It returns false when
// p has no parent.
func (pl *Pool) DetachSelf(p *PCB) (*PCB, bool) {
	if p.parent == list.Nil {
		return nil, false
	}
	parent := pl.at(p.parent)
	parent.children.Remove(siblingLinks{pl}, p.self)
	p.parent = list.Nil
	return p, true
}

// Parent returns the parent of p.
func (pl *Pool) Parent(p *PCB) (*PCB, bool) {
	if p.parent == list.Nil {
		return nil, false
	}
	return pl.at(p.parent), true
}

// EachChild calls fn for the children of p, oldest first, until fn
// returns false. fn must not attach or detach children of p.
func (pl *Pool) EachChild(p *PCB, fn func(*PCB) bool) {
	lk := siblingLinks{pl}
	for h := p.children.Front(); h != list.Nil; h = list.Next(lk, h) {
		if !fn(pl.at(h)) {
			return
		}
	}
}

// Children returns the number of children of p. O(n).
func (pl *Pool) Children(p *PCB) int { return p.children.Len(siblingLinks{pl}) }
