package numicro

import "time"

// ScratchArea is a block of target RAM reserved through the debug host for
// staging data or injected code.
type ScratchArea struct {
	Address uint32
	Size    uint32
}

// RoutineReg names a core register and the value it is loaded with before an
// injected routine runs.
type RoutineReg struct {
	Name  string
	Value uint32
}

// Target is the capability interface of the debug/execution host. It hides
// the probe transport (JTAG/SWD, OpenOCD, ...) behind plain memory access,
// scratch memory management and on-core code execution against a halted CPU.
type Target interface {
	// ReadWord reads a 32-bit word from the target memory map.
	ReadWord(addr uint32) (uint32, error)

	// WriteWord writes a 32-bit word to the target memory map.
	WriteWord(addr uint32, value uint32) error

	// WriteBuffer writes a byte buffer to target memory.
	WriteBuffer(addr uint32, data []byte) error

	// Halted reports whether the CPU core is halted. Flash operations are
	// only legal on a halted core.
	Halted() bool

	// AllocScratch reserves size bytes of target working memory. It returns
	// ErrResourceUnavailable (possibly annotated) when the request cannot be
	// satisfied.
	AllocScratch(size uint32) (*ScratchArea, error)

	// FreeScratch releases a previously allocated scratch area.
	FreeScratch(area *ScratchArea)

	// WorkingAreaSize reports the total target working memory the host is
	// willing to hand out, 0 if none.
	WorkingAreaSize() uint32

	// RunRoutine executes injected code at entry on the halted core with the
	// given register inputs, waits up to timeout for the routine to hit its
	// breakpoint and returns the final values of the same registers. CPU
	// state is restored afterwards.
	RunRoutine(entry uint32, timeout time.Duration, regs []RoutineReg) ([]uint32, error)
}
