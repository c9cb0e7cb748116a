// Package arch describes the uMPS machine layout the kernel runs on:
// the ROM reserved exception areas, the interrupting devices bitmap,
// device registers, and the per-process stack frames below RAMTop.
package arch

import "errors"

// WordSize is the machine word in bytes.
const WordSize = 4

// Exception state areas. Each old area receives the processor state at
// exception entry; the matching new area holds the handler state.
const (
	InterruptOldArea uint32 = 0x20000000
	InterruptNewArea uint32 = 0x2000008C
	TLBOldArea       uint32 = 0x20000118
	TLBNewArea       uint32 = 0x200001A4
	PgmTrapOldArea   uint32 = 0x20000230
	PgmTrapNewArea   uint32 = 0x200002BC
	SysBkOldArea     uint32 = 0x20000348
	SysBkNewArea     uint32 = 0x200003D4
)

// AreaSize is the size of one saved state area.
const AreaSize = StateWords * WordSize

// Interrupt lines. Lines below DevLineStart are internal to the processor.
const (
	LineIPI      = 0
	LineCPUTimer = 1
	LineTimer    = 2
	LineDisk     = 3
	LineTape     = 4
	LineNetwork  = 5
	LinePrinter  = 6
	LineTerminal = 7

	DevLineStart = LineDisk
	NumLines     = 8
)

// Device register layout.
const (
	InterDevicesBase uint32 = 0x1000003C
	DevRegStart      uint32 = 0x10000050
	DevRegSize       uint32 = 16
	DevPerLine              = 8

	// DevAck is the acknowledge command, the same for every device.
	DevAck = 1
)

// IsDeviceLine reports whether line is served by external devices.
func IsDeviceLine(line int) bool {
	return line >= DevLineStart && line < NumLines
}

// InterDevices returns the address of the pending-device bitmap word for
// an external interrupt line.
func InterDevices(line int) uint32 {
	return InterDevicesBase + uint32(line-DevLineStart)*WordSize
}

// DevRegAddr returns the base address of the register block of device dev
// on interrupt line line.
func DevRegAddr(line, dev int) uint32 {
	return DevRegStart + uint32(line-DevLineStart)*DevPerLine*DevRegSize + uint32(dev)*DevRegSize
}

// TermLine is the register block of terminal 0.
var TermLine = DevRegAddr(LineTerminal, 0)

// Memory layout.
const (
	RAMBase   uint32 = 0x20000000
	FrameSize uint32 = 4096

	// DefaultRAMSize is used when the bus does not report one.
	DefaultRAMSize uint32 = 64 * FrameSize

	// ReservedBytes covers the exception areas and the kernel image.
	ReservedBytes uint32 = 16 * FrameSize
)

// ErrStackOverflow reports a stack frame that would overlap reserved memory.
var ErrStackOverflow = errors.New("arch: stack frame below reserved memory")

// Layout is the RAM geometry stacks are carved from.
type Layout struct {
	RAMTop    uint32
	FrameSize uint32
	Floor     uint32
}

// DefaultLayout returns the layout of a machine with DefaultRAMSize of RAM.
func DefaultLayout() Layout {
	return Layout{
		RAMTop:    RAMBase + DefaultRAMSize,
		FrameSize: FrameSize,
		Floor:     RAMBase + ReservedBytes,
	}
}

// KernelStack is the top of the kernel stack, the first frame below RAMTop.
func (l Layout) KernelStack() uint32 { return l.RAMTop }

// StackTop returns the initial stack pointer of the process in pool slot
// offset. Frame 0 below RAMTop belongs to the kernel.
func (l Layout) StackTop(offset int) (uint32, error) {
	if offset < 0 {
		return 0, ErrStackOverflow
	}
	top := int64(l.RAMTop) - int64(offset+1)*int64(l.FrameSize)
	if top-int64(l.FrameSize) < int64(l.Floor) {
		return 0, ErrStackOverflow
	}
	return uint32(top), nil
}
