package numicro

import (
	"testing"

	"github.com/juju/errors"
)

func TestEraseRange(t *testing.T) {
	ft := newFakeTarget(0x00005800, 32*1024)
	bank := probedBank(t, ft)

	for i := range ft.flash {
		ft.flash[i] = 0x5a
	}

	if err := bank.Erase(2, 5); err != nil {
		t.Fatalf("Erase: %v", err)
	}

	for i := 2 * int(PageSize); i < 6*int(PageSize); i++ {
		if ft.flash[i] != 0xff {
			t.Fatalf("flash[%d] = 0x%02x inside erased range, want 0xff", i, ft.flash[i])
		}
	}
	if ft.flash[0] != 0x5a || ft.flash[6*int(PageSize)] != 0x5a {
		t.Error("erase touched sectors outside the range")
	}

	for i, s := range bank.Sectors {
		want := EraseUnknown
		if i >= 2 && i <= 5 {
			want = Erased
		}
		if s.Erased != want {
			t.Fatalf("sector %d erased state = %v, want %v", i, s.Erased, want)
		}
	}
}

func TestEraseIdempotent(t *testing.T) {
	ft := newFakeTarget(0x00005800, 32*1024)
	bank := probedBank(t, ft)

	if err := bank.Erase(0, 3); err != nil {
		t.Fatalf("first Erase: %v", err)
	}
	if err := bank.Erase(0, 3); err != nil {
		t.Fatalf("second Erase: %v", err)
	}
	for i := 0; i < 4*int(PageSize); i++ {
		if ft.flash[i] != 0xff {
			t.Fatalf("flash[%d] = 0x%02x after repeated erase", i, ft.flash[i])
		}
	}
}

func TestEraseNotHalted(t *testing.T) {
	ft := newFakeTarget(0x00005800, 32*1024)
	bank := probedBank(t, ft)
	ft.halted = false
	writes := ft.regWrites

	err := bank.Erase(0, 1)
	if errors.Cause(err) != ErrNotHalted {
		t.Fatalf("Erase = %v, want ErrNotHalted", err)
	}
	if ft.regWrites != writes {
		t.Error("register writes performed on running core")
	}
}

func TestEraseOutOfRange(t *testing.T) {
	ft := newFakeTarget(0x00005800, 32*1024)
	bank := probedBank(t, ft)

	if err := bank.Erase(0, 1000); errors.Cause(err) != ErrOperationFailed {
		t.Errorf("Erase(0, 1000) = %v, want ErrOperationFailed", err)
	}
	if err := bank.Erase(5, 2); errors.Cause(err) != ErrOperationFailed {
		t.Errorf("Erase(5, 2) = %v, want ErrOperationFailed", err)
	}
}

func TestEraseFailureFlag(t *testing.T) {
	ft := newFakeTarget(0x00005800, 32*1024)
	bank := probedBank(t, ft)
	ft.failNext = true

	err := bank.Erase(0, 3)
	if errors.Cause(err) != ErrOperationFailed {
		t.Fatalf("Erase with controller fault = %v, want ErrOperationFailed", err)
	}
	if ft.regs[FlashISPCon]&ispconISPFF != 0 {
		t.Error("fail flag not cleared after inspection")
	}
	if bank.Sectors[0].Erased == Erased {
		t.Error("failed sector marked erased")
	}
}

func TestEraseTimeout(t *testing.T) {
	ft := newFakeTarget(0x00005800, 32*1024)
	bank := probedBank(t, ft)
	ft.stuckGo = true

	err := bank.Erase(0, 0)
	if errors.Cause(err) != ErrTimeout {
		t.Fatalf("Erase with stuck trigger = %v, want ErrTimeout", err)
	}
}
