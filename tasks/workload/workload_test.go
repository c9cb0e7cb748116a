package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcbkern/kernel"
)

// run drains the ready queue, then advances the clock, ticks times.
func run(k *kernel.Kernel, ticks int) {
	for k.Step() {
	}
	for i := 0; i < ticks; i++ {
		k.Tick()
		for k.Step() {
		}
	}
}

type recorder struct {
	spawned []kernel.TaskID
	exited  []kernel.TaskID
}

func (r *recorder) hooks() kernel.Hooks {
	return kernel.Hooks{
		OnSpawn: func(ti kernel.TaskInfo) { r.spawned = append(r.spawned, ti.ID) },
		OnExit:  func(ti kernel.TaskInfo) { r.exited = append(r.exited, ti.ID) },
	}
}

func TestNodeCount(t *testing.T) {
	tree := DefaultTree()
	require.Len(t, tree, 2)
	assert.Equal(t, 4, tree[0].Count())
	assert.Equal(t, 3, tree[1].Count())
}

func TestParentWaitsForChildren(t *testing.T) {
	var rec recorder
	k := kernel.New(kernel.WithHooks(rec.hooks()))

	root := Node{Name: "r", Priority: 3, Steps: 1, Children: []Node{
		{Name: "a", Priority: 2, Steps: 2},
		{Name: "b", Priority: 2},
	}}
	_, err := k.Spawn(kernel.NoTask, 10, NewSupervisor(kernel.Capability{}, []Node{root}, false))
	require.NoError(t, err)

	run(k, 2)
	assert.Equal(t, 2, k.Live(), "parent outlives its working child")

	run(k, 1)
	assert.Equal(t, 1, k.Live())
	require.Len(t, rec.spawned, 4)
	r, a, b := rec.spawned[1], rec.spawned[2], rec.spawned[3]
	assert.Equal(t, []kernel.TaskID{b, a, r}, rec.exited)
}

func TestReapKillsChildren(t *testing.T) {
	var rec recorder
	k := kernel.New(kernel.WithHooks(rec.hooks()))

	root := Node{Name: "d", Priority: 3, Steps: 2, Reap: true, Children: []Node{
		{Name: "w", Priority: 1, Steps: 100},
		{Name: "w", Priority: 1, Steps: 100},
	}}
	_, err := k.Spawn(kernel.NoTask, 10, NewSupervisor(kernel.Capability{}, []Node{root}, false))
	require.NoError(t, err)

	run(k, 1)
	assert.Equal(t, 4, k.Live())

	run(k, 1)
	assert.Equal(t, 1, k.Live())
	require.Len(t, rec.spawned, 4)
	d, w1, w2 := rec.spawned[1], rec.spawned[2], rec.spawned[3]
	assert.Equal(t, []kernel.TaskID{w1, w2, d}, rec.exited, "children go first, oldest first")
}

func TestSupervisorRestarts(t *testing.T) {
	k := kernel.New()
	sup := NewSupervisor(kernel.Capability{}, []Node{{Name: "leaf", Priority: 1}}, true)
	_, err := k.Spawn(kernel.NoTask, 10, sup)
	require.NoError(t, err)

	run(k, 3)
	assert.Equal(t, 4, sup.Rounds())
	assert.Equal(t, 1, k.Live())
}

func TestChildrenRetryOnExhaustedPool(t *testing.T) {
	var rec recorder
	k := kernel.New(kernel.WithCapacity(3), kernel.WithHooks(rec.hooks()))

	root := Node{Name: "r", Priority: 5, Children: []Node{
		{Name: "l", Priority: 1, Steps: 1},
		{Name: "l", Priority: 1, Steps: 1},
		{Name: "l", Priority: 1, Steps: 1},
	}}
	_, err := k.Spawn(kernel.NoTask, 10, NewSupervisor(kernel.Capability{}, []Node{root}, false))
	require.NoError(t, err)

	run(k, 0)
	assert.Equal(t, 3, k.Live(), "pool is full, the rest waits")

	run(k, 10)
	assert.Equal(t, 1, k.Live())
	assert.Len(t, rec.spawned, 5)
	assert.Len(t, rec.exited, 4)
}

func TestEmptySupervisorExits(t *testing.T) {
	k := kernel.New()
	_, err := k.Spawn(kernel.NoTask, 10, NewSupervisor(kernel.Capability{}, nil, true))
	require.NoError(t, err)

	run(k, 0)
	assert.Zero(t, k.Live())
}
