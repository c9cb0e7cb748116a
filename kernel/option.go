package kernel

import (
	"pcbkern/kernel/arch"
	"pcbkern/kernel/pcb"
)

// Hooks observe the process lifecycle. Any of them may be nil.
//
// Hooks run inside kernel operations and must not call back into the
// kernel.
type Hooks struct {
	OnSpawn func(TaskInfo)
	OnExit  func(TaskInfo)
	OnPanic func(PanicInfo)
}

// Option configures a Kernel.
type Option func(k *Kernel)

// WithCapacity limits the process pool to n slots (at most pcb.MaxProc).
func WithCapacity(n int) Option {
	return func(k *Kernel) {
		k.capacity = n
	}
}

// WithHooks installs lifecycle hooks.
func WithHooks(h Hooks) Option {
	return func(k *Kernel) {
		k.hooks = h
	}
}

// WithLayout sets the memory layout process stacks are carved from.
func WithLayout(l arch.Layout) Option {
	return func(k *Kernel) {
		k.layout = l
	}
}

func defaultOptions(k *Kernel) {
	k.capacity = pcb.MaxProc
	k.layout = arch.DefaultLayout()
}
