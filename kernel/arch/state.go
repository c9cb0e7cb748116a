package arch

// StateWords is the number of words in a saved processor state.
const StateWords = 35

// Indices into State.GPR.
const (
	RegAT = iota
	RegV0
	RegV1
	RegA0
	RegA1
	RegA2
	RegA3
	RegT0
	RegT1
	RegT2
	RegT3
	RegT4
	RegT5
	RegT6
	RegT7
	RegS0
	RegS1
	RegS2
	RegS3
	RegS4
	RegS5
	RegS6
	RegS7
	RegT8
	RegT9
	RegGP
	RegSP
	RegFP
	RegRA

	NumGPR
)

// Status register bits.
const (
	StatusIEc   uint32 = 1 << 0  // interrupts enabled, current
	StatusKUc   uint32 = 1 << 1  // user mode, current
	StatusIEp   uint32 = 1 << 2  // interrupts enabled, previous
	StatusKUp   uint32 = 1 << 3  // user mode, previous
	StatusVMc   uint32 = 1 << 24 // virtual memory on, current
	StatusTE    uint32 = 1 << 27 // processor local timer enabled
	StatusIMAll uint32 = 0xFF00  // all interrupt lines unmasked
)

// State is the processor state saved at exception entry and loaded on
// dispatch.
type State struct {
	EntryHi uint32
	Cause   uint32
	Status  uint32
	PC      uint32
	GPR     [NumGPR]uint32
	HI      uint32
	LO      uint32
}

// SP returns the saved stack pointer.
func (s *State) SP() uint32 { return s.GPR[RegSP] }

// SetSP sets the saved stack pointer.
func (s *State) SetSP(sp uint32) { s.GPR[RegSP] = sp }

// SetPC sets the program counter. uMPS also expects it mirrored in t9.
func (s *State) SetPC(pc uint32) {
	s.PC = pc
	s.GPR[RegT9] = pc
}

// InterruptsEnabled reports whether the state runs with interrupts on.
func (s *State) InterruptsEnabled() bool {
	return s.Status&StatusIEp != 0 && s.Status&StatusIMAll != 0
}

// KernelState returns a kernel-mode state with interrupts enabled and the
// local timer on, entering at pc with stack sp.
func KernelState(pc, sp uint32) State {
	var s State
	s.Status = StatusIEp | StatusIMAll | StatusTE
	s.SetPC(pc)
	s.SetSP(sp)
	return s
}
