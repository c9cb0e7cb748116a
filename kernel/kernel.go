// Package kernel is a cooperative scheduler plus IPC router built on the
// pcb pool.
//
// Every task owns one PCB for its whole life; its TaskID is the PCB's pool
// slot. A task sits in exactly one of the ready queue, the tick queue or
// one endpoint's blocked queue unless it is running, and spawned tasks hang
// off their parent in the process tree so that Kill takes whole subtrees
// down.
//
// A Kernel must be driven from a single goroutine.
package kernel

import (
	"errors"
	"fmt"

	"pcbkern/kernel/arch"
	"pcbkern/kernel/pcb"
)

const maxEndpoints = 32

var (
	ErrPoolExhausted = errors.New("kernel: process pool exhausted")
	ErrNoSuchTask    = errors.New("kernel: no such task")
	ErrNilTask       = errors.New("kernel: nil task")
)

type endpointState struct {
	q       mailbox
	blocked pcb.Queue
}

// Kernel is a minimal cooperative scheduler plus IPC router.
type Kernel struct {
	pool     pcb.Pool
	capacity int
	layout   arch.Layout

	ready    pcb.Queue
	tickWait pcb.Queue

	endpoints     [maxEndpoints]endpointState
	endpointCount Endpoint

	tasks   [pcb.MaxProc]taskState
	current TaskID
	ticks   uint64

	hooks Hooks
}

// New creates a kernel instance.
func New(opts ...Option) *Kernel {
	k := &Kernel{current: NoTask}
	defaultOptions(k)
	for _, opt := range opts {
		opt(k)
	}
	k.pool.InitN(k.capacity)
	k.capacity = k.pool.Cap()
	k.ready = k.pool.NewQueue()
	k.tickWait = k.pool.NewQueue()
	return k
}

// Capacity returns the number of process slots.
func (k *Kernel) Capacity() int { return k.capacity }

// NewEndpoint allocates a new endpoint and returns a capability for it.
func (k *Kernel) NewEndpoint(rights Rights) Capability {
	if k.endpointCount >= maxEndpoints {
		return Capability{}
	}
	ep := k.endpointCount
	k.endpointCount++
	k.endpoints[ep].blocked = k.pool.NewQueue()
	return Capability{ep: ep, rights: rights}
}

// Spawn creates a task with priority prio. When parent is not NoTask the
// new task becomes its youngest child.
func (k *Kernel) Spawn(parent TaskID, prio pcb.Priority, t Task) (TaskID, error) {
	if t == nil {
		return NoTask, ErrNilTask
	}

	var pp *pcb.PCB
	if parent != NoTask {
		var ok bool
		if pp, ok = k.live(parent); !ok {
			return NoTask, fmt.Errorf("spawn under %s: %w", parent, ErrNoSuchTask)
		}
	}

	p, ok := k.pool.Alloc()
	if !ok {
		return NoTask, ErrPoolExhausted
	}
	sp, err := k.layout.StackTop(p.Offset())
	if err != nil {
		k.pool.Free(p)
		return NoTask, fmt.Errorf("spawn: %w", err)
	}

	p.Priority = prio
	p.State = arch.KernelState(0, sp)
	if pp != nil {
		k.pool.AttachChild(pp, p)
	}

	id := TaskID(p.Offset())
	st := &k.tasks[id]
	st.task = t
	st.state = TaskReady
	st.waiting = 0
	k.ready.Insert(p)

	if k.hooks.OnSpawn != nil {
		k.hooks.OnSpawn(k.info(id, p))
	}
	return id, nil
}

// Step runs one step of the highest priority ready task. It returns false
// when no task was ready.
func (k *Kernel) Step() bool {
	p, ok := k.ready.Pop()
	if !ok {
		return false
	}

	id := TaskID(p.Offset())
	st := &k.tasks[id]
	gen := st.gen
	st.state = TaskRunning
	k.current = id

	ctx := &Context{k: k, taskID: id}
	k.run(st.task, ctx)
	k.current = NoTask

	if st.gen != gen {
		// killed while running, possibly through an ancestor.
		return true
	}

	switch {
	case ctx.exited || ctx.panicked:
		k.terminate(p)
	case ctx.blocked && ctx.blockOnTick:
		st.state = TaskSleeping
		k.tickWait.Insert(p)
	case ctx.blocked && ctx.blockOn < k.endpointCount && k.endpoints[ctx.blockOn].q.empty():
		st.state = TaskBlocked
		st.waiting = ctx.blockOn
		k.endpoints[ctx.blockOn].blocked.Insert(p)
	default:
		st.state = TaskReady
		k.ready.Insert(p)
	}
	return true
}

// Tick advances the tick counter and wakes tasks blocked via
// Context.BlockOnTick.
func (k *Kernel) Tick() {
	k.ticks++
	for {
		p, ok := k.tickWait.Pop()
		if !ok {
			return
		}
		k.makeReady(p)
	}
}

// Ticks returns the number of Tick calls so far.
func (k *Kernel) Ticks() uint64 { return k.ticks }

// Kill terminates a task and, recursively, all of its descendants. Children
// are killed oldest first.
func (k *Kernel) Kill(id TaskID) error {
	p, ok := k.live(id)
	if !ok {
		return fmt.Errorf("kill %s: %w", id, ErrNoSuchTask)
	}
	k.terminate(p)
	return nil
}

// SetPriority changes the priority of a task and re-inserts it so its
// queue stays ordered.
func (k *Kernel) SetPriority(id TaskID, prio pcb.Priority) error {
	p, ok := k.live(id)
	if !ok {
		return fmt.Errorf("set priority of %s: %w", id, ErrNoSuchTask)
	}
	q := k.queueOf(id)
	if q == nil {
		p.Priority = prio
		return nil
	}
	q.Remove(p)
	p.Priority = prio
	q.Insert(p)
	return nil
}

// Info returns the process table row of a live task.
func (k *Kernel) Info(id TaskID) (TaskInfo, bool) {
	p, ok := k.live(id)
	if !ok {
		return TaskInfo{}, false
	}
	return k.info(id, p), true
}

// Snapshot copies the live process table into dst, in slot order, and
// returns the number of rows written.
func (k *Kernel) Snapshot(dst []TaskInfo) int {
	n := 0
	for i := 0; i < k.capacity && n < len(dst); i++ {
		id := TaskID(i)
		p, ok := k.live(id)
		if !ok {
			continue
		}
		dst[n] = k.info(id, p)
		n++
	}
	return n
}

// Live returns the number of live tasks.
func (k *Kernel) Live() int { return k.capacity - k.pool.Available() }

// Ready returns the ready tasks in dispatch order.
func (k *Kernel) Ready(dst []TaskID) int {
	n := 0
	k.ready.Each(func(p *pcb.PCB) bool {
		if n >= len(dst) {
			return false
		}
		dst[n] = TaskID(p.Offset())
		n++
		return true
	})
	return n
}

func (k *Kernel) terminate(p *pcb.PCB) {
	parent := k.parentOf(p)
	k.pool.DetachSelf(p)
	k.kill(p, parent)
}

func (k *Kernel) kill(p *pcb.PCB, parent TaskID) {
	id := TaskID(p.Offset())
	for {
		child, ok := k.pool.DetachFirstChild(p)
		if !ok {
			break
		}
		k.kill(child, id)
	}

	if q := k.queueOf(id); q != nil {
		q.Remove(p)
	}

	info := k.info(id, p)
	info.Parent = parent
	info.State = TaskFree

	st := &k.tasks[id]
	gen := st.gen + 1
	*st = taskState{gen: gen}
	k.pool.Free(p)

	if k.hooks.OnExit != nil {
		k.hooks.OnExit(info)
	}
}

func (k *Kernel) queueOf(id TaskID) *pcb.Queue {
	st := &k.tasks[id]
	switch st.state {
	case TaskReady:
		return &k.ready
	case TaskSleeping:
		return &k.tickWait
	case TaskBlocked:
		return &k.endpoints[st.waiting].blocked
	default:
		return nil
	}
}

func (k *Kernel) makeReady(p *pcb.PCB) {
	k.tasks[p.Offset()].state = TaskReady
	k.ready.Insert(p)
}

func (k *Kernel) live(id TaskID) (*pcb.PCB, bool) {
	if int(id) >= k.capacity || k.tasks[id].state == TaskFree {
		return nil, false
	}
	return k.pool.Slot(int(id))
}

func (k *Kernel) parentOf(p *pcb.PCB) TaskID {
	pp, ok := k.pool.Parent(p)
	if !ok {
		return NoTask
	}
	return TaskID(pp.Offset())
}

func (k *Kernel) info(id TaskID, p *pcb.PCB) TaskInfo {
	st := &k.tasks[id]
	return TaskInfo{
		ID:       id,
		Parent:   k.parentOf(p),
		State:    st.state,
		Priority: p.Priority,
		Children: k.pool.Children(p),
		Waiting:  st.waiting,
		Stack:    p.State.SP(),
	}
}

func (k *Kernel) send(from Endpoint, to Endpoint, kind uint16, payload []byte, xfer Capability) SendResult {
	if to >= k.endpointCount {
		return SendErrNoEndpoint
	}
	if len(payload) > MaxMessageBytes {
		return SendErrPayloadTooLarge
	}

	var msg Message
	msg.From = from
	msg.To = to
	msg.Kind = kind
	msg.Len = uint16(len(payload))
	copy(msg.Data[:], payload)
	msg.Cap = xfer

	ep := &k.endpoints[to]
	if !ep.q.push(msg) {
		return SendErrQueueFull
	}

	for {
		p, ok := ep.blocked.Pop()
		if !ok {
			break
		}
		k.makeReady(p)
	}
	return SendOK
}

func (k *Kernel) recv(to Endpoint) (Message, bool) {
	if to >= k.endpointCount {
		return Message{}, false
	}
	return k.endpoints[to].q.pop()
}
