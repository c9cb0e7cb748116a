package arch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAreasAreOneStateApart(t *testing.T) {
	assert.Equal(t, uint32(0x8C), uint32(AreaSize))
	assert.Equal(t, InterruptOldArea+AreaSize, InterruptNewArea)
	assert.Equal(t, TLBOldArea+AreaSize, TLBNewArea)
	assert.Equal(t, PgmTrapOldArea+AreaSize, PgmTrapNewArea)
	assert.Equal(t, SysBkOldArea+AreaSize, SysBkNewArea)
}

func TestInterDevices(t *testing.T) {
	assert.Equal(t, uint32(0x1000003C), InterDevices(LineDisk))
	assert.Equal(t, uint32(0x1000004C), InterDevices(LineTerminal))
}

func TestDevRegAddr(t *testing.T) {
	assert.Equal(t, uint32(0x10000050), DevRegAddr(LineDisk, 0))
	assert.Equal(t, uint32(0x10000060), DevRegAddr(LineDisk, 1))
	assert.Equal(t, uint32(0x10000250), TermLine)
}

func TestIsDeviceLine(t *testing.T) {
	for line := 0; line < NumLines; line++ {
		assert.Equal(t, line >= 3, IsDeviceLine(line), "line %d", line)
	}
	assert.False(t, IsDeviceLine(NumLines))
}

func TestStackTop(t *testing.T) {
	l := DefaultLayout()

	sp0, err := l.StackTop(0)
	require.NoError(t, err)
	assert.Equal(t, l.RAMTop-FrameSize, sp0)

	sp1, err := l.StackTop(1)
	require.NoError(t, err)
	assert.Equal(t, sp0-FrameSize, sp1)
}

func TestStackTopOverflow(t *testing.T) {
	l := Layout{RAMTop: RAMBase + 4*FrameSize, FrameSize: FrameSize, Floor: RAMBase + FrameSize}

	_, err := l.StackTop(1)
	require.NoError(t, err)

	_, err = l.StackTop(2)
	assert.ErrorIs(t, err, ErrStackOverflow)

	_, err = l.StackTop(-1)
	assert.ErrorIs(t, err, ErrStackOverflow)
}

func TestKernelState(t *testing.T) {
	s := KernelState(0x20001000, 0x2003F000)

	assert.Equal(t, uint32(0x20001000), s.PC)
	assert.Equal(t, s.PC, s.GPR[RegT9])
	assert.Equal(t, uint32(0x2003F000), s.SP())
	assert.True(t, s.InterruptsEnabled())
	assert.Zero(t, s.Status&StatusKUp)
}
