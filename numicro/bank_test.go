package numicro

import (
	"testing"

	"github.com/juju/errors"
)

func TestProbe(t *testing.T) {
	ft := newFakeTarget(0x00005800, 32*1024) // M058LAN: 32K APROM
	bank := NewFlashBank(ft, APROMBase)

	if err := bank.Probe(); err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if bank.Part() == nil || bank.Part().Name != "M058LAN" {
		t.Fatalf("part = %+v, want M058LAN", bank.Part())
	}
	if bank.Size != 32*1024 {
		t.Errorf("bank size = %d, want %d", bank.Size, 32*1024)
	}
	if len(bank.Sectors) != 64 {
		t.Fatalf("sector count = %d, want 64", len(bank.Sectors))
	}
	for i, s := range bank.Sectors {
		if s.Offset != uint32(i)*PageSize || s.Size != PageSize {
			t.Fatalf("sector %d layout = %+v", i, s)
		}
		if s.Erased != EraseUnknown || s.Protected {
			t.Fatalf("sector %d initial state = %+v", i, s)
		}
	}
}

func TestProbeLDROMBank(t *testing.T) {
	ft := newFakeTarget(0x00005800, 32*1024)
	bank := NewFlashBank(ft, LDROMBase)

	if err := bank.Probe(); err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if len(bank.Sectors) != 8 { // 4K LDROM
		t.Errorf("LDROM sector count = %d, want 8", len(bank.Sectors))
	}
}

func TestProbeUnknownPart(t *testing.T) {
	ft := newFakeTarget(0x12345678, 32*1024)
	bank := NewFlashBank(ft, APROMBase)

	err := bank.Probe()
	if errors.Cause(err) != ErrUnknownPart {
		t.Fatalf("Probe = %v, want ErrUnknownPart", err)
	}
	if bank.Part() != nil || len(bank.Sectors) != 0 {
		t.Error("bank populated despite failed probe")
	}
}

func TestProbeUnknownGeometry(t *testing.T) {
	ft := newFakeTarget(0x00005800, 32*1024)
	bank := NewFlashBank(ft, 0x00042000)

	err := bank.Probe()
	if errors.Cause(err) != ErrUnknownGeometry {
		t.Fatalf("Probe = %v, want ErrUnknownGeometry", err)
	}
}

func TestAutoProbeMemoized(t *testing.T) {
	ft := newFakeTarget(0x00005800, 32*1024)
	bank := NewFlashBank(ft, APROMBase)

	for i := 0; i < 3; i++ {
		if err := bank.AutoProbe(); err != nil {
			t.Fatalf("AutoProbe %d: %v", i, err)
		}
	}
	if ft.sysBaseReads != 1 {
		t.Errorf("part id read %d times, want 1", ft.sysBaseReads)
	}
}

func probedBank(t *testing.T, ft *fakeTarget) *FlashBank {
	t.Helper()
	bank := NewFlashBank(ft, APROMBase)
	if err := bank.AutoProbe(); err != nil {
		t.Fatalf("AutoProbe: %v", err)
	}
	return bank
}

func TestProtectCheckLocked(t *testing.T) {
	ft := newFakeTarget(0x00005800, 32*1024)
	ft.config[0] &^= config0LockMask
	bank := probedBank(t, ft)

	status, err := bank.ProtectCheck()
	if err != nil {
		t.Fatalf("ProtectCheck: %v", err)
	}
	if !status.SecureLocked {
		t.Error("lock bit clear, want SecureLocked")
	}
	for i, s := range bank.Sectors {
		if !s.Protected {
			t.Fatalf("sector %d unprotected on a locked device", i)
		}
	}
}

func TestProtectCheckUnlocked(t *testing.T) {
	ft := newFakeTarget(0x00005800, 32*1024)
	bank := probedBank(t, ft)

	// Paint protected first to prove the flags are overwritten uniformly.
	for i := range bank.Sectors {
		bank.Sectors[i].Protected = true
	}

	status, err := bank.ProtectCheck()
	if err != nil {
		t.Fatalf("ProtectCheck: %v", err)
	}
	if status.SecureLocked {
		t.Error("lock bit set, want unlocked")
	}
	for i, s := range bank.Sectors {
		if s.Protected {
			t.Fatalf("sector %d still protected on an unlocked device", i)
		}
	}
}

func TestProtectCheckBootSource(t *testing.T) {
	for _, tc := range []struct {
		name      string
		cbs       bool
		wantLDROM bool
	}{
		{"boot from aprom", true, false},
		{"boot from ldrom", false, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ft := newFakeTarget(0x00005800, 32*1024)
			if !tc.cbs {
				ft.config[0] &^= config0CBS
			}
			bank := probedBank(t, ft)

			status, err := bank.ProtectCheck()
			if err != nil {
				t.Fatalf("ProtectCheck: %v", err)
			}
			if status.BootFromLDROM != tc.wantLDROM {
				t.Errorf("BootFromLDROM = %v, want %v", status.BootFromLDROM, tc.wantLDROM)
			}
		})
	}
}

func TestProtectCheckNotHalted(t *testing.T) {
	ft := newFakeTarget(0x00005800, 32*1024)
	bank := probedBank(t, ft)
	ft.halted = false

	_, err := bank.ProtectCheck()
	if errors.Cause(err) != ErrNotHalted {
		t.Fatalf("ProtectCheck = %v, want ErrNotHalted", err)
	}
}
