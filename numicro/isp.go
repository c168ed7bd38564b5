package numicro

import (
	"time"

	"github.com/golang/glog"
	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
)

const (
	pollRetries  = 100
	pollInterval = 1 * time.Millisecond
)

// pollRegister reads reg until done accepts its value, retrying up to
// pollRetries times with pollInterval between reads. Both the command engine
// (GO bit clear) and the erase/write loops (whole register zero) use it,
// they only differ in the predicate.
func pollRegister(t Target, reg uint32, done func(uint32) bool) error {
	var status uint32
	for retries := pollRetries; retries > 0; retries-- {
		var err error
		status, err = t.ReadWord(reg)
		if err != nil {
			return errors.Trace(err)
		}
		glog.V(2).Infof("status: 0x%08x", status)
		if done(status) {
			return nil
		}
		time.Sleep(pollInterval)
	}
	return errors.Annotatef(ErrTimeout, "register 0x%08x last read 0x%08x", reg, status)
}

// RegUnlock removes write protection from the flash controller register
// block by writing the three magic keys to SYS_WRPROT. Unlock is best
// effort: a failed confirmation is logged, not returned, since the sequence
// is re-issued on every session init anyway.
func RegUnlock(t Target) error {
	isProtected, err := t.ReadWord(SysWRProt)
	if err != nil {
		return errors.Trace(err)
	}
	glog.V(2).Infof("protected = 0x%08x", isProtected)

	if isProtected == 0 {
		for _, key := range []uint32{regKey1, regKey2, regKey3} {
			if err := t.WriteWord(SysWRProt, key); err != nil {
				return errors.Trace(err)
			}
		}
	}

	isProtected, err = t.ReadWord(SysWRProt)
	if err != nil {
		return errors.Trace(err)
	}
	if isProtected == 1 {
		glog.V(2).Info("register protection removed")
	} else {
		log.Warn("flash controller registers still protected")
	}
	return nil
}

// InitISP prepares the flash controller for command execution: unlocks the
// register block, gates the ISP/SRAM/TICK clocks on and sets the ISP enable
// and region unlock bits. The sequence is idempotent and must precede every
// command; no "already initialized" state is kept between calls.
func InitISP(t Target) error {
	if !t.Halted() {
		return errors.Trace(ErrNotHalted)
	}

	if err := RegUnlock(t); err != nil {
		return errors.Trace(err)
	}

	regStat, err := t.ReadWord(SysclkAHBClk)
	if err != nil {
		return errors.Trace(err)
	}
	regStat |= ahbclkISPEn | ahbclkSRAMEn | ahbclkTickEn
	if err := t.WriteWord(SysclkAHBClk, regStat); err != nil {
		return errors.Trace(err)
	}

	regStat, err = t.ReadWord(FlashISPCon)
	if err != nil {
		return errors.Trace(err)
	}
	regStat |= ispconISPFF | ispconLDUEn | ispconAPUEn | ispconCFGUEn | ispconISPEn
	if err := t.WriteWord(FlashISPCon, regStat); err != nil {
		return errors.Trace(err)
	}

	// Required by the silicon, semantics unpublished by the vendor.
	if err := t.WriteWord(FlashCheat, 1); err != nil {
		return errors.Trace(err)
	}

	return nil
}

// Command drives one ISP command through the command/data/address/trigger
// register handshake and returns the data register contents after the GO
// bit clears. The same protocol serves reads, single-word writes, ID reads
// and chip erase; only the command code and the result interpretation
// differ.
func Command(t Target, cmd, addr, wdata uint32) (uint32, error) {
	if err := t.WriteWord(FlashISPCmd, cmd); err != nil {
		return 0, errors.Trace(err)
	}
	if err := t.WriteWord(FlashISPDat, wdata); err != nil {
		return 0, errors.Trace(err)
	}
	if err := t.WriteWord(FlashISPAdr, addr); err != nil {
		return 0, errors.Trace(err)
	}
	if err := t.WriteWord(FlashISPTrg, ispTrgGo); err != nil {
		return 0, errors.Trace(err)
	}

	err := pollRegister(t, FlashISPTrg, func(status uint32) bool {
		return status&ispTrgGo == 0
	})
	if err != nil {
		return 0, errors.Annotatef(err, "isp command 0x%02x at 0x%08x", cmd, addr)
	}

	rdata, err := t.ReadWord(FlashISPDat)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return rdata, nil
}

// clearFailFlag inspects ISPCON and, if the fail flag is set, clears it by
// writing it back set (the flag is write-1-to-clear). It reports whether
// the flag was found set.
func clearFailFlag(t Target) (bool, error) {
	status, err := t.ReadWord(FlashISPCon)
	if err != nil {
		return false, errors.Trace(err)
	}
	if status&ispconISPFF == 0 {
		return false, nil
	}
	glog.V(2).Infof("failure: 0x%08x", status)
	if err := t.WriteWord(FlashISPCon, status|ispconISPFF); err != nil {
		return true, errors.Trace(err)
	}
	return true, nil
}

// ReadISP reads one flash word at address through the ISP controller.
func ReadISP(t Target, address uint32) (uint32, error) {
	if err := InitISP(t); err != nil {
		return 0, errors.Trace(err)
	}
	return Command(t, CmdRead, address, 0)
}

// WriteISP programs one flash word at address through the ISP controller.
func WriteISP(t Target, address, value uint32) error {
	if err := InitISP(t); err != nil {
		return errors.Trace(err)
	}
	_, err := Command(t, CmdWrite, address, value)
	return errors.Trace(err)
}

// ChipErase issues the undocumented whole-chip erase command. It wipes all
// flash regions and releases a secure-locked device.
func ChipErase(t Target) error {
	if err := InitISP(t); err != nil {
		return errors.Trace(err)
	}
	_, err := Command(t, CmdChipErase, 0, 0)
	return errors.Trace(err)
}
