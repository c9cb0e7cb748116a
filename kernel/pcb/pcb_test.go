package pcb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPool(n int) *Pool {
	pl := &Pool{}
	pl.InitN(n)
	return pl
}

func TestInitPutsEverySlotOnFreeList(t *testing.T) {
	pl := &Pool{}
	pl.Init()

	assert.Equal(t, MaxProc, pl.Cap())
	assert.Equal(t, MaxProc, pl.Available())

	seen := map[*PCB]bool{}
	for i := 0; i < MaxProc; i++ {
		p, ok := pl.Alloc()
		require.True(t, ok, "alloc %d", i)
		assert.False(t, seen[p], "slot %d handed out twice", p.Offset())
		assert.Equal(t, i, p.Offset(), "free list is in slot order")
		seen[p] = true
	}

	_, ok := pl.Alloc()
	assert.False(t, ok)
	assert.Len(t, seen, MaxProc)
}

func TestInitNClampsCapacity(t *testing.T) {
	assert.Equal(t, 0, newPool(-3).Cap())
	assert.Equal(t, MaxProc, newPool(MaxProc+5).Cap())

	pl := newPool(0)
	_, ok := pl.Alloc()
	assert.False(t, ok)
}

func TestExhaustionAndReuse(t *testing.T) {
	pl := newPool(2)

	a, ok := pl.Alloc()
	require.True(t, ok)
	b, ok := pl.Alloc()
	require.True(t, ok)
	assert.NotSame(t, a, b)

	_, ok = pl.Alloc()
	assert.False(t, ok, "pool of two is exhausted")

	a.Priority = 9
	pl.Free(a)

	again, ok := pl.Alloc()
	require.True(t, ok)
	assert.Same(t, a, again)
	assert.Zero(t, again.Priority)
}

func TestAllocReturnsCleanPCB(t *testing.T) {
	pl := newPool(3)

	parent, _ := pl.Alloc()
	p, _ := pl.Alloc()
	child, _ := pl.Alloc()
	offset := p.Offset()

	p.Priority = 42
	p.State.SetSP(0xdeadbeef)
	p.State.Status = 0xff
	pl.AttachChild(parent, p)
	pl.AttachChild(p, child)
	q := pl.NewQueue()
	q.Insert(p)

	_, ok := q.Remove(p)
	require.True(t, ok)
	_, ok = pl.DetachFirstChild(p)
	require.True(t, ok)
	_, ok = pl.DetachSelf(p)
	require.True(t, ok)

	pl.Free(p)

	got, ok := pl.Alloc()
	require.True(t, ok)
	require.Same(t, p, got)

	assert.Equal(t, offset, got.Offset())
	assert.Zero(t, got.Priority)
	assert.Zero(t, got.State)
	assert.False(t, got.Queued())
	assert.False(t, got.HasParent())
	assert.True(t, pl.NoChildren(got))
	assert.False(t, got.queue.Linked())
	assert.False(t, got.sibling.Linked())
}

func TestPartitionHoldsAcrossAllocAndFree(t *testing.T) {
	pl := newPool(MaxProc)
	var live []*PCB

	// deterministic mix of allocations and frees.
	for step := 0; step < 200; step++ {
		if step%3 == 2 && len(live) > 0 {
			i := (step * 7) % len(live)
			pl.Free(live[i])
			live = append(live[:i], live[i+1:]...)
		} else if p, ok := pl.Alloc(); ok {
			live = append(live, p)
		} else {
			assert.Len(t, live, MaxProc)
		}

		assert.Equal(t, MaxProc, len(live)+pl.Available(), "step %d", step)

		free := map[int]bool{}
		lk := queueLinks{pl}
		for h := pl.free.Front(); h != 0; h = lkNext(lk, h) {
			off := pl.at(h).Offset()
			assert.False(t, free[off], "slot %d twice on free list", off)
			free[off] = true
		}
		for _, p := range live {
			assert.False(t, free[p.Offset()], "slot %d both free and live", p.Offset())
		}
	}
}

func TestSlot(t *testing.T) {
	pl := newPool(4)

	p, ok := pl.Slot(3)
	require.True(t, ok)
	assert.Equal(t, 3, p.Offset())

	_, ok = pl.Slot(4)
	assert.False(t, ok)
	_, ok = pl.Slot(-1)
	assert.False(t, ok)
}

func TestOffsetIsStableAcrossReuse(t *testing.T) {
	pl := newPool(MaxProc)
	for i := 0; i < MaxProc; i++ {
		p, _ := pl.Alloc()
		slot, ok := pl.Slot(p.Offset())
		require.True(t, ok)
		assert.Same(t, p, slot)
		pl.Free(p)
	}
}
