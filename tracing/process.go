package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"pcbkern/kernel"
)

// Processes keeps one span open per live process. A child's span is
// started under its parent's span, so a trace mirrors the process tree.
type Processes struct {
	root  context.Context
	boot  *Span
	ctxs  [256]context.Context
	spans [256]*Span
}

// NewProcesses opens the kernel span identified by bootID. Top level
// processes start under it.
func NewProcesses(ctx context.Context, bootID string) *Processes {
	ctx, boot := StartSpan(ctx, "kernel")
	boot.WithAttributes(attribute.String("kernel.boot_id", bootID))
	return &Processes{root: ctx, boot: boot}
}

// Close ends every open process span and then the kernel span.
func (p *Processes) Close() {
	for i, sp := range p.spans {
		if sp != nil {
			sp.span.End()
			p.spans[i] = nil
			p.ctxs[i] = nil
		}
	}
	EndSpan(p.boot, nil)
}

// Spawned opens the span of a new process.
func (p *Processes) Spawned(ti kernel.TaskInfo) {
	parent := p.root
	if ti.Parent != kernel.NoTask && p.ctxs[ti.Parent] != nil {
		parent = p.ctxs[ti.Parent]
	}
	ctx, sp := StartSpan(parent, fmt.Sprintf("process %s", ti.ID))
	sp.WithAttributes(
		attribute.Int("pcb.slot", int(ti.ID)),
		attribute.Int("pcb.priority", int(ti.Priority)),
		attribute.String("pcb.parent", ti.Parent.String()),
		attribute.String("pcb.stack", fmt.Sprintf("%08x", ti.Stack)),
	)
	p.ctxs[ti.ID] = ctx
	p.spans[ti.ID] = sp
}

// Panicked records a task panic on the process span. The span ends when
// the kernel reports the exit.
func (p *Processes) Panicked(pi kernel.PanicInfo) {
	p.spans[pi.TaskID].SetStatus(pi)
}

// Exited closes the span of a process.
func (p *Processes) Exited(ti kernel.TaskInfo) {
	sp := p.spans[ti.ID]
	if sp == nil {
		return
	}
	sp.Event("exit", attribute.Int("pcb.children", ti.Children))
	sp.span.End()
	p.ctxs[ti.ID] = nil
	p.spans[ti.ID] = nil
}

// Open returns the number of process spans not yet ended.
func (p *Processes) Open() int {
	n := 0
	for _, sp := range p.spans {
		if sp != nil {
			n++
		}
	}
	return n
}
