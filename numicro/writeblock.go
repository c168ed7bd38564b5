package numicro

import (
	"time"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
)

const (
	defaultBufferSize = 1024
	minBufferSize     = 256
	routineTimeout    = 100000 * time.Millisecond
)

// flashWriteRoutine is the program-longword microcode downloaded into target
// RAM by BlockWrite. Calling convention:
//
//	r0 - scratch buffer address / result (ISPCON & ISPFF on exit)
//	r1 - target flash address
//	r2 - word count
//
// It runs the trigger/poll handshake once per word entirely on-core and
// ends on a breakpoint. The 4 trailing literal words are the absolute
// ISPADR/ISPDAT/ISPTRG/ISPCON addresses and must match the target memory
// map exactly.
var flashWriteRoutine = []byte{
	0x04, 0x1C, // mov   r4, r0
	0x00, 0x23, // mov   r3, #0
	0x0D, 0x1A, // sub   r5, r1, r0
	0x67, 0x19, // add   r7, r4, r5
	0x93, 0x42, // cmp   r3, r2
	0x0C, 0xD0, // beq   .done
	0x08, 0x4E, // ldr   r6, =ISPADR
	0x37, 0x60, // str   r7, [r6]
	0x80, 0xCC, // ldmia r4!, {r7}
	0x08, 0x4D, // ldr   r5, =ISPDAT
	0x2F, 0x60, // str   r7, [r5]
	0x08, 0x4D, // ldr   r5, =ISPTRG
	0x01, 0x26, // mov   r6, #1
	0x2E, 0x60, // str   r6, [r5]
	0x2F, 0x68, // ldr   r7, [r5]
	0xFF, 0x07, // lsl   r7, r7, #31
	0xFC, 0xD4, // bmi   .-2 (GO still set)
	0x01, 0x33, // add   r3, r3, #1
	0xEE, 0xE7, // b     .loop
	0x05, 0x4B, // ldr   r3, =ISPCON
	0x18, 0x68, // ldr   r0, [r3]
	0x40, 0x21, // mov   r1, #64
	0x08, 0x40, // and   r0, r1
	0x00, 0xBE, // bkpt  #0
	0x04, 0xC0, 0x00, 0x50, // ISPADR 0x5000C004
	0x08, 0xC0, 0x00, 0x50, // ISPDAT 0x5000C008
	0x10, 0xC0, 0x00, 0x50, // ISPTRG 0x5000C010
	0x00, 0xC0, 0x00, 0x50, // ISPCON 0x5000C000
}

// blockWrite programs wordCount longwords from buffer at bank offset by
// downloading flashWriteRoutine into target RAM and driving it through the
// execution host, many words per invocation. It returns
// ErrResourceUnavailable when no working area can be had; callers fall back
// to single-word programming on that and only that error. Scratch memory is
// released on every exit path.
func (b *FlashBank) blockWrite(buffer []byte, offset, wordCount uint32) error {
	t := b.Target

	if offset&0x1 != 0 {
		log.Warnf("offset 0x%x breaks required 2-byte alignment", offset)
		return errors.Trace(ErrAlignment)
	}

	routine, err := t.AllocScratch(uint32(len(flashWriteRoutine)))
	if err != nil {
		log.Warn("no working area available, can't do block memory writes")
		return errors.Trace(ErrResourceUnavailable)
	}
	defer t.FreeScratch(routine)

	if err := t.WriteBuffer(routine.Address, flashWriteRoutine); err != nil {
		return errors.Trace(err)
	}

	bufferSize := uint32(defaultBufferSize)
	if half := t.WorkingAreaSize() / 2; half > bufferSize {
		bufferSize = half
	}

	var source *ScratchArea
	for {
		source, err = t.AllocScratch(bufferSize)
		if err == nil {
			break
		}
		bufferSize /= 4
		if bufferSize <= minBufferSize {
			log.Warn("no large enough working area available, can't do block memory writes")
			return errors.Trace(ErrResourceUnavailable)
		}
	}
	defer t.FreeScratch(source)

	address := b.Base + offset
	for wordCount > 0 {
		thisrun := wordCount
		if thisrun > bufferSize/4 {
			thisrun = bufferSize / 4
		}

		if err := t.WriteBuffer(source.Address, buffer[:thisrun*4]); err != nil {
			return errors.Trace(err)
		}

		_, err := t.RunRoutine(routine.Address, routineTimeout, []RoutineReg{
			{"r0", source.Address},
			{"r1", address},
			{"r2", thisrun},
		})
		if err != nil {
			log.Error("error executing flash programming routine")
			return errors.Annotatef(ErrOperationFailed, "%v", err)
		}

		buffer = buffer[thisrun*4:]
		address += thisrun * 4
		wordCount -= thisrun
	}

	return nil
}
