package numicro

import (
	"github.com/golang/glog"
	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
)

// EraseState is the tri-state erased flag of a sector.
type EraseState int

const (
	EraseUnknown EraseState = iota
	Erased
	NotErased
)

// Sector is the minimum erasable unit of a bank.
type Sector struct {
	Offset    uint32
	Size      uint32
	Erased    EraseState
	Protected bool
}

// FlashBank is one contiguous flash region attached to a target. Geometry
// is populated lazily on the first probe.
type FlashBank struct {
	Target  Target
	Base    uint32
	Size    uint32
	Sectors []Sector

	part   *Part
	probed bool
}

// NewFlashBank registers a bank at base. Sector layout is resolved on the
// first probe.
func NewFlashBank(t Target, base uint32) *FlashBank {
	return &FlashBank{Target: t, Base: base}
}

// Part returns the catalog entry resolved by the last probe, nil before.
func (b *FlashBank) Part() *Part {
	return b.part
}

// Probe identifies the attached part, resolves the region matching the bank
// base and lays out the sector array.
func (b *FlashBank) Probe() error {
	partID, err := b.Target.ReadWord(SysBase)
	if err != nil {
		return errors.Annotatef(ErrOperationFailed, "failed to read part id: %v", err)
	}
	log.Infof("Device ID: 0x%08x", partID)

	part, err := LookupPart(partID)
	if err != nil {
		return errors.Annotatef(err, "0x%08x", partID)
	}
	log.Infof("Device Name: %s", part.Name)

	region, err := part.RegionByBase(b.Base)
	if err != nil {
		return errors.Annotatef(err, "bank base 0x%08x on %s", b.Base, part.Name)
	}
	log.Infof("bank base = 0x%08x, size = 0x%08x", b.Base, region.Size)

	numPages := region.Size / PageSize
	b.Size = region.Size
	b.Sectors = make([]Sector, numPages)
	for i := range b.Sectors {
		b.Sectors[i] = Sector{
			Offset: uint32(i) * PageSize,
			Size:   PageSize,
			Erased: EraseUnknown,
		}
	}

	b.part = part
	b.probed = true
	glog.V(1).Info("probed")
	return nil
}

// AutoProbe probes the bank unless a previous probe already resolved it.
func (b *FlashBank) AutoProbe() error {
	if b.probed {
		return nil
	}
	return b.Probe()
}

// LockStatus is the boot-source and secure-lock state read from the device
// config words.
type LockStatus struct {
	// BootFromLDROM is the CBS bit: true means the part boots from the
	// loader region instead of APROM.
	BootFromLDROM bool

	// SecureLocked means flash readout returns garbage until a chip erase
	// is performed.
	SecureLocked bool
}

// ProtectCheck reads CONFIG0/CONFIG1 and reports the device lock state. The
// hardware only exposes a whole-device lock bit, so the resulting protected
// flag is painted uniformly across every sector of the bank.
func (b *FlashBank) ProtectCheck() (*LockStatus, error) {
	if !b.Target.Halted() {
		return nil, errors.Trace(ErrNotHalted)
	}

	log.Info("Nuvoton NuMicro: Flash Lock Check...")

	if err := InitISP(b.Target); err != nil {
		return nil, errors.Trace(err)
	}

	config0, err := Command(b.Target, CmdRead, Config0, 0)
	if err != nil {
		return nil, errors.Trace(err)
	}
	config1, err := Command(b.Target, CmdRead, Config1, 0)
	if err != nil {
		return nil, errors.Trace(err)
	}
	glog.V(2).Infof("CONFIG0: 0x%08x, CONFIG1: 0x%08x", config0, config1)

	status := &LockStatus{}
	if config0&config0CBS == 0 {
		status.BootFromLDROM = true
		log.Info("CBS=0: Boot From LDROM")
	} else {
		log.Info("CBS=1: Boot From APROM")
	}

	if config0&config0LockMask == 0 {
		status.SecureLocked = true
		log.Info("Flash is secure locked!")
		log.Info("To unlock flash, execute the chip-erase command!")
	} else {
		log.Info("Flash is not locked!")
	}

	for i := range b.Sectors {
		b.Sectors[i].Protected = status.SecureLocked
	}
	return status, nil
}
