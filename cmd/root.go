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
	"flag"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nuvotools/nuflash/numicro"
	"github.com/nuvotools/nuflash/openocd"
)

var (
	tmpServerAddr = ""
	tmpBankBase   = ""
	tmpVerbose    = false
)

var rootCmd = &cobra.Command{
	Use:   "nuflash",
	Short: "ISP flash tool for Nuvoton NuMicro microcontrollers",
	Long: "nuflash drives the NuMicro in-system-programming flash controller of a\n" +
		"halted target through a debug host (OpenOCD Tcl RPC), supporting sector\n" +
		"erase, flash writes, chip erase and lock state inspection.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if tmpVerbose {
			enableProtocolDebug()
		}
	},
}

// enableProtocolDebug raises the logrus level and the glog verbosity so the
// register-level trace in the driver packages reaches stderr. glog reads its
// verbosity from the standard flag set, which cobra never parses, so the
// flags are set directly.
func enableProtocolDebug() {
	log.SetLevel(log.DebugLevel)
	flag.Set("logtostderr", "true")
	flag.Set("v", "2")
	if !flag.Parsed() {
		flag.CommandLine.Parse(nil)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&tmpServerAddr, "server", "c", "localhost:6666", "address of the OpenOCD Tcl RPC service")
	rootCmd.PersistentFlags().StringVarP(&tmpBankBase, "base", "b", "0x00000000", "base address of the flash bank to operate on")
	rootCmd.PersistentFlags().BoolVarP(&tmpVerbose, "verbose", "v", false, "enable debug output")
}

func parseWord(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	return uint32(v), err
}

// openTarget connects to the configured debug host.
func openTarget() (*openocd.Client, error) {
	return openocd.Dial(tmpServerAddr)
}

// openBank connects to the debug host and probes the flash bank configured
// with the --base flag.
func openBank() (*numicro.FlashBank, *openocd.Client, error) {
	target, err := openTarget()
	if err != nil {
		return nil, nil, err
	}

	base, err := parseWord(tmpBankBase)
	if err != nil {
		target.Close()
		return nil, nil, err
	}

	bank := numicro.NewFlashBank(target, base)
	if err := bank.AutoProbe(); err != nil {
		target.Close()
		return nil, nil, err
	}
	return bank, target, nil
}
