package ps

import (
	"bytes"
	"fmt"
	"io"

	clientcon "pcbkern/client/console"
	"pcbkern/kernel"
	"pcbkern/kernel/pcb"
)

// DefaultInterval is the refresh period in ticks.
const DefaultInterval = 50

// Task periodically redraws the process table on the console.
type Task struct {
	conCap   kernel.Capability
	interval uint64

	next    uint64
	cleared bool
	pending []byte
	out     bytes.Buffer
	rows    [pcb.MaxProc]kernel.TaskInfo
}

func New(conCap kernel.Capability, interval uint64) *Task {
	if interval == 0 {
		interval = DefaultInterval
	}
	return &Task{conCap: conCap, interval: interval}
}

func (t *Task) Step(ctx *kernel.Context) {
	if t.pending == nil {
		if ctx.NowTick() < t.next {
			ctx.BlockOnTick()
			return
		}
		t.next = ctx.NowTick() + t.interval

		n := ctx.Snapshot(t.rows[:])
		t.out.Reset()
		Render(&t.out, ctx.NowTick(), t.rows[:n])
		t.pending = t.out.Bytes()
		t.cleared = false
	}

	if err := t.flush(ctx); err != nil {
		t.pending = nil
	}
	ctx.BlockOnTick()
}

// flush sends as much of the pending table as the console mailbox takes.
func (t *Task) flush(ctx *kernel.Context) error {
	if !t.cleared {
		switch res := clientcon.Clear(ctx, t.conCap); res {
		case kernel.SendOK:
			t.cleared = true
		case kernel.SendErrQueueFull:
			return nil
		default:
			return fmt.Errorf("console clear: %s", res)
		}
	}

	for len(t.pending) > 0 {
		chunk := t.pending
		if len(chunk) > kernel.MaxMessageBytes {
			chunk = chunk[:kernel.MaxMessageBytes]
		}
		switch res := clientcon.Write(ctx, t.conCap, chunk); res {
		case kernel.SendOK:
			t.pending = t.pending[len(chunk):]
		case kernel.SendErrQueueFull:
			return nil
		default:
			return fmt.Errorf("console write: %s", res)
		}
	}
	t.pending = nil
	return nil
}

// Render writes the process table for rows, one line per process.
func Render(w io.Writer, tick uint64, rows []kernel.TaskInfo) {
	fmt.Fprintf(w, "tick %d  procs %d\r\n", tick, len(rows))
	fmt.Fprintf(w, "%3s %4s %4s %5s %4s %8s\r\n", "PID", "PPID", "PRI", "STATE", "KIDS", "SP")
	for _, r := range rows {
		state := r.State.String()
		if r.State == kernel.TaskBlocked {
			state = fmt.Sprintf("ep%d", r.Waiting)
		}
		fmt.Fprintf(w, "%3s %4s %4d %5s %4d %08x\r\n", r.ID, r.Parent, r.Priority, state, r.Children, r.Stack)
	}
}
