package kernel

import "pcbkern/kernel/pcb"

// Context provides task-local access to kernel operations during one
// Task.Step call.
type Context struct {
	k      *Kernel
	taskID TaskID

	blocked     bool
	blockOnTick bool
	blockOn     Endpoint
	exited      bool
	panicked    bool
}

// TaskID returns the current task ID.
func (c *Context) TaskID() TaskID { return c.taskID }

// Priority returns the priority of the current task.
func (c *Context) Priority() pcb.Priority {
	p, ok := c.k.live(c.taskID)
	if !ok {
		return 0
	}
	return p.Priority
}

// SetPriority changes the priority the task is requeued with after this
// step.
func (c *Context) SetPriority(prio pcb.Priority) {
	_ = c.k.SetPriority(c.taskID, prio)
}

// Parent returns the parent of the current task, or NoTask.
func (c *Context) Parent() TaskID {
	p, ok := c.k.live(c.taskID)
	if !ok {
		return NoTask
	}
	return c.k.parentOf(p)
}

// Children copies the IDs of the current task's children, oldest first,
// into dst and returns how many were written.
func (c *Context) Children(dst []TaskID) int {
	p, ok := c.k.live(c.taskID)
	if !ok {
		return 0
	}
	n := 0
	c.k.pool.EachChild(p, func(child *pcb.PCB) bool {
		if n >= len(dst) {
			return false
		}
		dst[n] = TaskID(child.Offset())
		n++
		return true
	})
	return n
}

// Spawn creates a child of the current task.
func (c *Context) Spawn(prio pcb.Priority, t Task) (TaskID, error) {
	return c.k.Spawn(c.taskID, prio, t)
}

// Kill terminates id and its descendants. Killing the current task is the
// same as Exit.
func (c *Context) Kill(id TaskID) error {
	if id == c.taskID {
		c.Exit()
		return nil
	}
	return c.k.Kill(id)
}

// Exit terminates the current task, with its descendants, once this step
// returns.
func (c *Context) Exit() { c.exited = true }

// Recv reads one message from the capability endpoint. When the mailbox is
// empty the task blocks on the endpoint after this step and Recv returns
// false.
func (c *Context) Recv(epCap Capability) (Message, bool) {
	msg, ok := c.TryRecv(epCap)
	if ok {
		return msg, true
	}
	c.BlockOn(epCap)
	return Message{}, false
}

// TryRecv reads one message from the capability endpoint without blocking.
func (c *Context) TryRecv(epCap Capability) (Message, bool) {
	if !epCap.valid() || !epCap.canRecv() {
		return Message{}, false
	}
	return c.k.recv(epCap.ep)
}

// BlockOn blocks the task after this step until a message arrives on the
// capability endpoint.
func (c *Context) BlockOn(epCap Capability) {
	if !epCap.valid() || !epCap.canRecv() {
		return
	}
	c.blocked = true
	c.blockOnTick = false
	c.blockOn = epCap.ep
}

// BlockOnTick blocks the task after this step until the next Kernel.Tick.
func (c *Context) BlockOnTick() {
	c.blocked = true
	c.blockOnTick = true
}

// Send sends a message to the capability endpoint.
func (c *Context) Send(fromCap, toCap Capability, kind uint16, payload []byte) bool {
	return c.SendCap(fromCap, toCap, kind, payload, Capability{})
}

// SendCap sends a message and transfers an optional capability.
func (c *Context) SendCap(fromCap, toCap Capability, kind uint16, payload []byte, xfer Capability) bool {
	return c.SendCapResult(fromCap, toCap, kind, payload, xfer) == SendOK
}

// SendCapResult sends a message and transfers an optional capability.
func (c *Context) SendCapResult(fromCap, toCap Capability, kind uint16, payload []byte, xfer Capability) SendResult {
	if !fromCap.valid() {
		return SendErrInvalidFromCap
	}
	if !fromCap.canSend() {
		return SendErrFromNoSendRight
	}
	if !toCap.valid() {
		return SendErrInvalidToCap
	}
	if !toCap.canSend() {
		return SendErrToNoSendRight
	}
	return c.k.send(fromCap.ep, toCap.ep, kind, payload, xfer)
}

// SendTo sends a message to the capability endpoint.
//
// The message From field is set to 0 (unknown).
func (c *Context) SendTo(toCap Capability, kind uint16, payload []byte) bool {
	return c.SendToCapResult(toCap, kind, payload, Capability{}) == SendOK
}

// SendToCapResult sends a message and transfers an optional capability.
//
// The message From field is set to 0 (unknown).
func (c *Context) SendToCapResult(toCap Capability, kind uint16, payload []byte, xfer Capability) SendResult {
	if !toCap.valid() {
		return SendErrInvalidToCap
	}
	if !toCap.canSend() {
		return SendErrToNoSendRight
	}
	return c.k.send(0, toCap.ep, kind, payload, xfer)
}

// NewEndpoint allocates a new endpoint and returns a capability for it.
func (c *Context) NewEndpoint(rights Rights) Capability {
	return c.k.NewEndpoint(rights)
}

// NowTick returns the kernel tick counter.
func (c *Context) NowTick() uint64 { return c.k.ticks }

// Snapshot copies the live process table into dst.
func (c *Context) Snapshot(dst []TaskInfo) int { return c.k.Snapshot(dst) }
