package numicro

import (
	"github.com/golang/glog"
	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
)

// Erase erases the inclusive sector range [first, last]. A failure on any
// sector aborts the remainder of the range; sectors already erased stay
// erased, there is no rollback.
func (b *FlashBank) Erase(first, last uint) error {
	t := b.Target

	if !t.Halted() {
		return errors.Trace(ErrNotHalted)
	}
	if last >= uint(len(b.Sectors)) || first > last {
		return errors.Annotatef(ErrOperationFailed,
			"sector range %d..%d outside bank with %d sectors", first, last, len(b.Sectors))
	}

	log.Infof("Nuvoton NuMicro: Sector Erase ... (%d to %d)", first, last)

	if err := InitISP(t); err != nil {
		return errors.Trace(err)
	}

	if err := t.WriteWord(FlashISPCmd, CmdErase); err != nil {
		return errors.Trace(err)
	}

	for i := first; i <= last; i++ {
		addr := b.Base + b.Sectors[i].Offset
		glog.V(1).Infof("erasing sector %d at address 0x%08x", i, addr)

		if err := t.WriteWord(FlashISPAdr, addr); err != nil {
			return errors.Trace(err)
		}
		if err := t.WriteWord(FlashISPTrg, ispTrgGo); err != nil {
			return errors.Trace(err)
		}

		// The erase path has no status register, the raw trigger value is
		// its own completion flag.
		err := pollRegister(t, FlashISPTrg, func(status uint32) bool {
			return status == 0
		})
		if err != nil {
			return errors.Annotatef(err, "erasing sector %d", i)
		}

		failed, err := clearFailFlag(t)
		if err != nil {
			return errors.Trace(err)
		}
		if failed {
			return errors.Annotatef(ErrOperationFailed, "erasing sector %d at 0x%08x", i, addr)
		}

		b.Sectors[i].Erased = Erased
	}

	glog.V(1).Info("erase done")
	return nil
}
