// Copyright © 2026 the nuflash authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package cmd

import (
	"testing"

	"github.com/golang/glog"
	log "github.com/sirupsen/logrus"
)

func TestEnableProtocolDebug(t *testing.T) {
	enableProtocolDebug()

	if !bool(glog.V(2)) {
		t.Error("glog verbosity 2 not enabled")
	}
	if log.GetLevel() != log.DebugLevel {
		t.Errorf("logrus level = %v, want %v", log.GetLevel(), log.DebugLevel)
	}
}

func TestParseWord(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want uint32
	}{
		{"0x100000", 0x100000},
		{"256", 256},
		{"0", 0},
	} {
		got, err := parseWord(tc.in)
		if err != nil {
			t.Fatalf("parseWord(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("parseWord(%q) = 0x%x, want 0x%x", tc.in, got, tc.want)
		}
	}

	if _, err := parseWord("0x100000000"); err == nil {
		t.Error("expected error for value beyond 32 bits")
	}
}
