package numicro

import (
	"encoding/binary"
	"fmt"
	"time"
)

const fakeRAMBase = 0x20000000

// fakeTarget simulates the NuMicro flash controller and enough of the
// execution host (scratch memory, routine execution) to drive the whole
// driver without hardware. Commands triggered through ISPTRG complete
// instantly unless stuckGo is set.
type fakeTarget struct {
	halted   bool
	unlocked bool
	regs     map[uint32]uint32

	partID uint32
	flash  []byte
	config [2]uint32

	ram       []byte
	allocNext uint32
	workSize  uint32
	allocs    int
	frees     int

	// allocFail fails every scratch request; allocFailAbove fails requests
	// larger than the given size (0 = no limit).
	allocFail      bool
	allocFailAbove uint32

	stuckGo  bool
	failNext bool

	// routineFailOn makes the n-th RunRoutine invocation return an error
	// (1-based, 0 = never).
	routineFailOn int

	keyWrites    []uint32
	regWrites    int
	trgWrites    int
	sysBaseReads int
	routineRuns  int
}

func newFakeTarget(partID uint32, flashSize int) *fakeTarget {
	ft := &fakeTarget{
		halted:   true,
		regs:     map[uint32]uint32{},
		partID:   partID,
		flash:    make([]byte, flashSize),
		config:   [2]uint32{0xffffffff, 0xffffffff},
		ram:      make([]byte, 16*1024),
		workSize: 16 * 1024,
	}
	for i := range ft.flash {
		ft.flash[i] = 0xff
	}
	return ft
}

func (ft *fakeTarget) ReadWord(addr uint32) (uint32, error) {
	switch addr {
	case SysWRProt:
		if ft.unlocked {
			return 1, nil
		}
		return 0, nil
	case SysBase:
		ft.sysBaseReads++
		return ft.partID, nil
	default:
		if addr >= SysBase {
			return ft.regs[addr], nil
		}
		return ft.readMem32(addr)
	}
}

func (ft *fakeTarget) WriteWord(addr uint32, value uint32) error {
	ft.regWrites++
	switch addr {
	case SysWRProt:
		ft.keyWrites = append(ft.keyWrites, value)
		n := len(ft.keyWrites)
		if n >= 3 &&
			ft.keyWrites[n-3] == 0x59 && ft.keyWrites[n-2] == 0x16 && ft.keyWrites[n-1] == 0x88 {
			ft.unlocked = true
		}
		if value == 0 {
			ft.unlocked = false
		}
	case FlashISPCon:
		if !ft.unlocked {
			return nil
		}
		old := ft.regs[FlashISPCon]
		next := value &^ ispconISPFF
		// ISPFF is write-1-to-clear and cannot be set from software.
		if old&ispconISPFF != 0 && value&ispconISPFF == 0 {
			next |= ispconISPFF
		}
		ft.regs[FlashISPCon] = next
	case FlashISPTrg:
		ft.trgWrites++
		if !ft.unlocked {
			return nil
		}
		ft.regs[FlashISPTrg] = value
		if value&ispTrgGo != 0 && !ft.stuckGo {
			ft.execCommand()
			ft.regs[FlashISPTrg] = 0
		}
	default:
		if !ft.unlocked && addr >= FlashISPCon && addr <= FlashCheat {
			return nil
		}
		ft.regs[addr] = value
	}
	return nil
}

func (ft *fakeTarget) execCommand() {
	cmd := ft.regs[FlashISPCmd]
	addr := ft.regs[FlashISPAdr]
	data := ft.regs[FlashISPDat]

	if ft.failNext && (cmd == CmdWrite || cmd == CmdErase) {
		ft.failNext = false
		ft.regs[FlashISPCon] |= ispconISPFF
		return
	}

	switch cmd {
	case CmdRead:
		word, _ := ft.readMem32(addr)
		ft.regs[FlashISPDat] = word
	case CmdWrite:
		ft.writeMem32(addr, data)
	case CmdErase:
		for i := uint32(0); i < PageSize; i++ {
			if int(addr+i) < len(ft.flash) {
				ft.flash[addr+i] = 0xff
			}
		}
	case CmdChipErase:
		for i := range ft.flash {
			ft.flash[i] = 0xff
		}
		ft.config = [2]uint32{0xffffffff, 0xffffffff}
	case CmdReadDID, CmdReadCID:
		ft.regs[FlashISPDat] = ft.partID
	}
}

func (ft *fakeTarget) readMem32(addr uint32) (uint32, error) {
	switch {
	case addr == Config0:
		return ft.config[0], nil
	case addr == Config1:
		return ft.config[1], nil
	case int(addr)+4 <= len(ft.flash):
		return binary.LittleEndian.Uint32(ft.flash[addr:]), nil
	case addr >= fakeRAMBase && int(addr-fakeRAMBase)+4 <= len(ft.ram):
		return binary.LittleEndian.Uint32(ft.ram[addr-fakeRAMBase:]), nil
	}
	return 0, fmt.Errorf("read of unmapped address 0x%08x", addr)
}

func (ft *fakeTarget) writeMem32(addr uint32, value uint32) {
	switch {
	case addr == Config0:
		ft.config[0] = value
	case addr == Config1:
		ft.config[1] = value
	case int(addr)+4 <= len(ft.flash):
		binary.LittleEndian.PutUint32(ft.flash[addr:], value)
	}
}

func (ft *fakeTarget) WriteBuffer(addr uint32, data []byte) error {
	if addr < fakeRAMBase || int(addr-fakeRAMBase)+len(data) > len(ft.ram) {
		return fmt.Errorf("buffer write outside RAM at 0x%08x", addr)
	}
	copy(ft.ram[addr-fakeRAMBase:], data)
	return nil
}

func (ft *fakeTarget) Halted() bool { return ft.halted }

func (ft *fakeTarget) AllocScratch(size uint32) (*ScratchArea, error) {
	if ft.allocFail {
		return nil, ErrResourceUnavailable
	}
	if ft.allocFailAbove > 0 && size > ft.allocFailAbove {
		return nil, ErrResourceUnavailable
	}
	if ft.allocNext+size > uint32(len(ft.ram)) {
		return nil, ErrResourceUnavailable
	}
	area := &ScratchArea{Address: fakeRAMBase + ft.allocNext, Size: size}
	ft.allocNext += (size + 3) &^ 3
	ft.allocs++
	return area, nil
}

func (ft *fakeTarget) FreeScratch(area *ScratchArea) { ft.frees++ }

func (ft *fakeTarget) WorkingAreaSize() uint32 { return ft.workSize }

// RunRoutine emulates the downloaded program-longword microcode: it programs
// r2 words from the scratch buffer at r0 to the flash address in r1 through
// the same controller model the host-driven path uses.
func (ft *fakeTarget) RunRoutine(entry uint32, timeout time.Duration, regs []RoutineReg) ([]uint32, error) {
	ft.routineRuns++
	if ft.routineFailOn != 0 && ft.routineRuns == ft.routineFailOn {
		return nil, fmt.Errorf("target trapped in routine at 0x%08x", entry)
	}

	var buf, addr, count uint32
	for _, r := range regs {
		switch r.Name {
		case "r0":
			buf = r.Value
		case "r1":
			addr = r.Value
		case "r2":
			count = r.Value
		}
	}

	for i := uint32(0); i < count; i++ {
		word, err := ft.readMem32(buf + i*4)
		if err != nil {
			return nil, err
		}
		ft.writeMem32(addr+i*4, word)
	}

	failFlag := ft.regs[FlashISPCon] & ispconISPFF
	return []uint32{failFlag, addr + count*4, 0}, nil
}

var _ Target = (*fakeTarget)(nil)
