package pcb

import "pcbkern/kernel/list"

// Queue is a list of PCBs ordered by non-increasing priority. PCBs of
// equal priority keep their insertion order.
//
// A Queue must be created with Pool.NewQueue and must not be copied once
// it holds PCBs.
type Queue struct {
	pool *Pool
	l    list.List
}

// NewQueue returns an empty queue over pl.
func (pl *Pool) NewQueue() Queue { return Queue{pool: pl} }

// Empty reports whether q holds no PCB.
func (q *Queue) Empty() bool { return q.l.Empty() }

// Len returns the number of PCBs in q. O(n).
func (q *Queue) Len() int {
	if q.pool == nil {
		return 0
	}
	return q.l.Len(queueLinks{q.pool})
}

// Insert places p after every PCB of the same or higher priority and
// before the first PCB of strictly lower priority. O(n).
func (q *Queue) Insert(p *PCB) {
	q.pool.check(p)
	assertf(!p.queued, "insert of pcb %d that is already queued", p.Offset())

	lk := queueLinks{q.pool}
	at := q.l.Front()
	for ; at != list.Nil; at = list.Next(lk, at) {
		if q.pool.at(at).Priority < p.Priority {
			break
		}
	}
	q.l.InsertBefore(lk, at, p.self)
	p.queued = true
}

// Head returns the first PCB without removing it.
func (q *Queue) Head() (*PCB, bool) {
	h := q.l.Front()
	if h == list.Nil {
		return nil, false
	}
	return q.pool.at(h), true
}

// Pop removes and returns the first PCB.
func (q *Queue) Pop() (*PCB, bool) {
	p, ok := q.Head()
	if !ok {
		return nil, false
	}
	q.unlink(p)
	return p, true
}

// Remove takes p out of q. It returns false when p is not in q.
func (q *Queue) Remove(p *PCB) (*PCB, bool) {
	if q.pool == nil {
		return nil, false
	}
	lk := queueLinks{q.pool}
	for h := q.l.Front(); h != list.Nil; h = list.Next(lk, h) {
		if h != p.self {
			continue
		}
		found := q.pool.at(h)
		q.unlink(found)
		return found, true
	}
	return nil, false
}

// Each calls fn for every PCB in queue order until fn returns false.
// fn must not modify q.
func (q *Queue) Each(fn func(*PCB) bool) {
	if q.pool == nil {
		return
	}
	lk := queueLinks{q.pool}
	for h := q.l.Front(); h != list.Nil; h = list.Next(lk, h) {
		if !fn(q.pool.at(h)) {
			return
		}
	}
}

func (q *Queue) unlink(p *PCB) {
	q.l.Remove(queueLinks{q.pool}, p.self)
	p.queued = false
}
