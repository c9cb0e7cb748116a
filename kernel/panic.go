package kernel

import "fmt"

// PanicInfo contains details about a recovered task panic.
type PanicInfo struct {
	TaskID TaskID
	Value  any
	Stack  []byte
}

func (p PanicInfo) Error() string {
	return fmt.Sprintf("task %s panicked: %v", p.TaskID, p.Value)
}

// run executes one step of t. A panic is reported through the OnPanic hook
// and marks the task for termination.
func (k *Kernel) run(t Task, ctx *Context) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ctx.panicked = true
		if k.hooks.OnPanic != nil {
			k.hooks.OnPanic(PanicInfo{TaskID: ctx.taskID, Value: r, Stack: captureStack()})
		}
	}()
	t.Step(ctx)
}
