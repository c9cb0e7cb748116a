package pcb

import "pcbkern/kernel/list"

func lkNext(lk list.Linker, h list.Handle) list.Handle { return list.Next(lk, h) }

func priorities(q *Queue) []Priority {
	var out []Priority
	q.Each(func(p *PCB) bool {
		out = append(out, p.Priority)
		return true
	})
	return out
}

func order(q *Queue) []*PCB {
	var out []*PCB
	q.Each(func(p *PCB) bool {
		out = append(out, p)
		return true
	})
	return out
}

func allocWith(pl *Pool, prio Priority) *PCB {
	p, ok := pl.Alloc()
	if !ok {
		panic("pool exhausted")
	}
	p.Priority = prio
	return p
}
