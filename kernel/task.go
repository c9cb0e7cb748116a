package kernel

import (
	"fmt"

	"pcbkern/kernel/pcb"
)

// TaskID is the pool slot of a task's PCB.
type TaskID uint8

// NoTask is the absent task.
const NoTask TaskID = 0xFF

func (id TaskID) String() string {
	if id == NoTask {
		return "-"
	}
	return fmt.Sprintf("%d", uint8(id))
}

// Task is a cooperative unit of execution.
type Task interface {
	Step(*Context)
}

// TaskState is where a task currently sits.
type TaskState uint8

const (
	TaskFree TaskState = iota
	TaskReady
	TaskRunning
	TaskBlocked
	TaskSleeping
)

func (s TaskState) String() string {
	switch s {
	case TaskFree:
		return "free"
	case TaskReady:
		return "ready"
	case TaskRunning:
		return "run"
	case TaskBlocked:
		return "recv"
	case TaskSleeping:
		return "tick"
	default:
		return "unknown"
	}
}

// TaskInfo is a copy of one row of the process table.
type TaskInfo struct {
	ID       TaskID
	Parent   TaskID
	State    TaskState
	Priority pcb.Priority
	Children int
	Waiting  Endpoint // valid when State is TaskBlocked
	Stack    uint32
}

type taskState struct {
	task    Task
	state   TaskState
	waiting Endpoint
	// gen changes whenever the slot is released.
	gen uint32
}
