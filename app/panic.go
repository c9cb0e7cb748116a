package app

import (
	"fmt"
	"strings"

	"pcbkern/kernel"
)

func (s *System) hooks() kernel.Hooks {
	return kernel.Hooks{
		OnSpawn: func(ti kernel.TaskInfo) {
			s.logf("spawn pid=%s prio=%d parent=%s sp=%08x", ti.ID, ti.Priority, ti.Parent, ti.Stack)
			if s.procs != nil {
				s.procs.Spawned(ti)
			}
		},
		OnExit: func(ti kernel.TaskInfo) {
			s.logf("exit pid=%s parent=%s", ti.ID, ti.Parent)
			if s.procs != nil {
				s.procs.Exited(ti)
			}
		},
		OnPanic: s.panicked,
	}
}

func (s *System) panicked(info kernel.PanicInfo) {
	if s.procs != nil {
		s.procs.Panicked(info)
	}
	l := s.logger()
	if l == nil {
		return
	}
	l.WriteLineString(fmt.Sprintf("panic pid=%s: %v", info.TaskID, info.Value))
	for _, line := range strings.Split(string(info.Stack), "\n") {
		if line == "" {
			continue
		}
		l.WriteLineString("  " + line)
	}
}
