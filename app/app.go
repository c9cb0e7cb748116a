package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"pcbkern/hal"
	"pcbkern/internal/buildinfo"
	"pcbkern/kernel"
	"pcbkern/kernel/arch"
	"pcbkern/kernel/pcb"
	"pcbkern/services/console"
	"pcbkern/services/logger"
	"pcbkern/tasks/ps"
	"pcbkern/tasks/workload"
	"pcbkern/tracing"
)

// systemTasks is the number of processes spawned before the workload:
// the logger and console services and the ps viewer.
const systemTasks = 3

// Priorities of the system processes. Services outrank every workload
// process so their mailboxes drain first.
const (
	prioLogger     = 100
	prioConsole    = 90
	prioPS         = 80
	prioSupervisor = 70
)

// DefaultStepBudget is the number of kernel steps run per host frame.
const DefaultStepBudget = 64

// System is a booted kernel with its services and workload.
type System struct {
	k      *kernel.Kernel
	h      hal.HAL
	bootID string
	budget int
	procs  *tracing.Processes
}

// New boots the kernel on h. A nil cfg means DefaultConfig; budget is the
// number of kernel steps run per Step call.
func New(h hal.HAL, cfg *Config, budget int) (*System, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if budget <= 0 {
		budget = DefaultStepBudget
	}

	s := &System{h: h, bootID: uuid.NewString(), budget: budget}
	if cfg.Trace.Enabled {
		s.procs = tracing.NewProcesses(context.Background(), s.bootID)
	}

	layout := arch.DefaultLayout()
	s.k = kernel.New(
		kernel.WithCapacity(cfg.MaxProc),
		kernel.WithLayout(layout),
		kernel.WithHooks(s.hooks()),
	)
	s.logf("pcbkern %s boot=%s max_proc=%d kernel_stack=%08x", buildinfo.Short(), s.bootID, s.k.Capacity(), layout.KernelStack())

	logEP := s.k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	conEP := s.k.NewEndpoint(kernel.RightSend | kernel.RightRecv)

	var disp hal.Display
	if h != nil {
		disp = h.Display()
	}
	spawns := []struct {
		name string
		prio pcb.Priority
		task kernel.Task
	}{
		{"logger", prioLogger, logger.New(s.logger(), logEP.Restrict(kernel.RightRecv))},
		{"console", prioConsole, console.New(disp, conEP.Restrict(kernel.RightRecv))},
		{"ps", prioPS, ps.New(conEP.Restrict(kernel.RightSend), cfg.PS.Interval)},
		{"workload", prioSupervisor, workload.NewSupervisor(logEP.Restrict(kernel.RightSend), cfg.Workload.Tree, cfg.Workload.Restart)},
	}
	for _, sp := range spawns {
		if _, err := s.k.Spawn(kernel.NoTask, sp.prio, sp.task); err != nil {
			return nil, fmt.Errorf("spawn %s: %w", sp.name, err)
		}
	}
	return s, nil
}

// Kernel returns the running kernel.
func (s *System) Kernel() *kernel.Kernel { return s.k }

// BootID identifies this boot in logs and traces.
func (s *System) BootID() string { return s.bootID }

// Step turns pending hal ticks into kernel ticks, then runs up to budget
// kernel steps. It is driven once per host frame.
func (s *System) Step() error {
	if s.h != nil {
		if t := s.h.Time(); t != nil {
			s.drainTicks(t.Ticks())
		}
	}
	for i := 0; i < s.budget && s.k.Step(); i++ {
	}
	return nil
}

func (s *System) drainTicks(ch <-chan uint64) {
	if ch == nil {
		return
	}
	for {
		select {
		case <-ch:
			s.k.Tick()
		default:
			return
		}
	}
}

// Close ends the open trace spans.
func (s *System) Close() {
	if s.procs != nil {
		s.procs.Close()
	}
}

func (s *System) logger() hal.Logger {
	if s.h == nil {
		return nil
	}
	return s.h.Logger()
}

func (s *System) logf(format string, args ...any) {
	if l := s.logger(); l != nil {
		l.WriteLineString(fmt.Sprintf(format, args...))
	}
}
