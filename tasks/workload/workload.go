// Package workload runs a configurable tree of demo processes on the
// kernel so that the process pool, its priority queues and the process
// tree have something to manage.
package workload

import (
	"errors"
	"fmt"

	clientlog "pcbkern/client/logger"
	"pcbkern/kernel"
	"pcbkern/kernel/pcb"
)

// Node describes one process of the workload tree.
type Node struct {
	Name     string       `yaml:"name"`
	Priority pcb.Priority `yaml:"priority"`
	// Steps is how many ticks the process works before it is done.
	Steps int `yaml:"steps"`
	// Reap kills the remaining children when the process is done instead
	// of waiting for them to exit.
	Reap     bool   `yaml:"reap"`
	Children []Node `yaml:"children,omitempty"`
}

// Count returns the number of processes the subtree rooted at n needs.
func (n Node) Count() int {
	c := 1
	for _, child := range n.Children {
		c += child.Count()
	}
	return c
}

// DefaultTree is a small two level tree with mixed priorities.
func DefaultTree() []Node {
	return []Node{
		{
			Name: "build", Priority: 4, Steps: 6,
			Children: []Node{
				{Name: "cc", Priority: 3, Steps: 4},
				{Name: "cc", Priority: 3, Steps: 5},
				{Name: "ld", Priority: 2, Steps: 8},
			},
		},
		{
			Name: "daemon", Priority: 2, Steps: 10, Reap: true,
			Children: []Node{
				{Name: "worker", Priority: 1, Steps: 100},
				{Name: "worker", Priority: 1, Steps: 100},
			},
		},
	}
}

// Supervisor spawns the configured trees as its children and, when
// Restart is set, spawns them again once they are all gone.
type Supervisor struct {
	logCap  kernel.Capability
	roots   []Node
	restart bool

	started bool
	next    int
	kids    [pcb.MaxProc]kernel.TaskID
	rounds  int
}

func NewSupervisor(logCap kernel.Capability, roots []Node, restart bool) *Supervisor {
	return &Supervisor{logCap: logCap, roots: roots, restart: restart}
}

// Rounds returns how many times the full tree has been started.
func (s *Supervisor) Rounds() int { return s.rounds }

func (s *Supervisor) Step(ctx *kernel.Context) {
	if len(s.roots) == 0 {
		clientlog.Log(ctx, s.logCap, "workload empty")
		ctx.Exit()
		return
	}
	if !s.started {
		if ctx.Children(s.kids[:]) > 0 {
			ctx.BlockOnTick()
			return
		}
		s.started = true
		s.next = 0
		s.rounds++
		clientlog.Logf(ctx, s.logCap, "workload round %d", s.rounds)
	}

	for s.next < len(s.roots) {
		if _, err := ctx.Spawn(s.roots[s.next].Priority, newProc(s.logCap, s.roots[s.next])); err != nil {
			clientlog.Logf(ctx, s.logCap, "spawn %s: %v", s.roots[s.next].Name, err)
			ctx.BlockOnTick()
			return
		}
		s.next++
	}

	if s.restart {
		s.started = false
	}
	ctx.BlockOnTick()
}

type procState uint8

const (
	procStart procState = iota
	procWork
	procWait
)

// proc is one workload process.
type proc struct {
	logCap kernel.Capability
	node   Node

	state   procState
	next    int
	left    int
	scratch [pcb.MaxProc]kernel.TaskID
}

func newProc(logCap kernel.Capability, n Node) *proc {
	return &proc{logCap: logCap, node: n, left: n.Steps}
}

func (p *proc) Step(ctx *kernel.Context) {
	switch p.state {
	case procStart:
		if err := p.spawnChildren(ctx); err != nil {
			if !errors.Is(err, kernel.ErrPoolExhausted) {
				clientlog.Logf(ctx, p.logCap, "%s: %v", p.node.Name, err)
				ctx.Exit()
				return
			}
			// retry the rest after the next tick
			ctx.BlockOnTick()
			return
		}
		clientlog.Logf(ctx, p.logCap, "%s start prio=%d steps=%d", p.node.Name, ctx.Priority(), p.left)
		p.state = procWork
		fallthrough

	case procWork:
		if p.left > 0 {
			p.left--
			ctx.BlockOnTick()
			return
		}
		p.state = procWait
		fallthrough

	case procWait:
		n := ctx.Children(p.scratch[:])
		if n > 0 && !p.node.Reap {
			ctx.BlockOnTick()
			return
		}
		if n > 0 {
			clientlog.Logf(ctx, p.logCap, "%s done, reaping %d", p.node.Name, n)
		} else {
			clientlog.Logf(ctx, p.logCap, "%s done", p.node.Name)
		}
		ctx.Exit()
	}
}

func (p *proc) spawnChildren(ctx *kernel.Context) error {
	for p.next < len(p.node.Children) {
		child := p.node.Children[p.next]
		if _, err := ctx.Spawn(child.Priority, newProc(p.logCap, child)); err != nil {
			return fmt.Errorf("spawn %s: %w", child.Name, err)
		}
		p.next++
	}
	return nil
}
