package numicro

import (
	"encoding/binary"

	"github.com/golang/glog"
	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
)

// Write programs buffer into the bank at offset. Offset and length must be
// longword aligned. The block-write accelerator is tried first; if the
// target cannot spare working memory the writer degrades to a per-word
// command loop with identical results. Any other accelerator failure is
// propagated as is.
func (b *FlashBank) Write(buffer []byte, offset uint32) error {
	t := b.Target

	if !t.Halted() {
		return errors.Trace(ErrNotHalted)
	}
	if offset%4 != 0 || len(buffer)%4 != 0 {
		return errors.Annotatef(ErrAlignment,
			"offset 0x%x len %d must be longword aligned", offset, len(buffer))
	}

	log.Info("Nuvoton NuMicro: Flash Write ...")

	if err := InitISP(t); err != nil {
		return errors.Trace(err)
	}

	if err := t.WriteWord(FlashISPCmd, CmdWrite); err != nil {
		return errors.Trace(err)
	}

	wordsRemaining := uint32(len(buffer)) / 4

	err := b.blockWrite(buffer, offset, wordsRemaining)
	if errors.Cause(err) == ErrResourceUnavailable {
		log.Warn("couldn't use block writes, falling back to single memory accesses")

		for i := uint32(0); i < uint32(len(buffer)); i += 4 {
			glog.V(2).Infof("write longword @ 0x%08x", offset+i)

			if err := t.WriteWord(FlashISPAdr, b.Base+offset+i); err != nil {
				return errors.Trace(err)
			}
			if err := t.WriteWord(FlashISPDat, binary.LittleEndian.Uint32(buffer[i:])); err != nil {
				return errors.Trace(err)
			}
			if err := t.WriteWord(FlashISPTrg, ispTrgGo); err != nil {
				return errors.Trace(err)
			}

			err := pollRegister(t, FlashISPTrg, func(status uint32) bool {
				return status == 0
			})
			if err != nil {
				return errors.Annotatef(err, "writing longword at 0x%08x", offset+i)
			}
		}
	} else if err != nil {
		return errors.Trace(err)
	}

	failed, err := clearFailFlag(t)
	if err != nil {
		return errors.Trace(err)
	}
	if failed {
		return errors.Annotatef(ErrOperationFailed, "writing %d bytes at 0x%x", len(buffer), offset)
	}
	glog.V(1).Info("write done")

	b.markWritten(offset, uint32(len(buffer)))
	return nil
}

// markWritten flips the erased flag of every sector the written range
// touches.
func (b *FlashBank) markWritten(offset, length uint32) {
	for i := range b.Sectors {
		s := &b.Sectors[i]
		if s.Offset < offset+length && offset < s.Offset+s.Size {
			s.Erased = NotErased
		}
	}
}
