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
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nuvotools/nuflash/numicro"
)

// readIspCmd represents the read-isp command
var readIspCmd = &cobra.Command{
	Use:   "read-isp <address>",
	Short: "Read one flash word through the ISP controller",
	Long:  "",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		address, err := parseWord(args[0])
		if err != nil {
			log.Fatal(err)
		}

		target, err := openTarget()
		if err != nil {
			log.Fatal(err)
		}
		defer target.Close()

		value, err := numicro.ReadISP(target, address)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("0x%08x: 0x%08x\n", address, value)
	},
}

// writeIspCmd represents the write-isp command
var writeIspCmd = &cobra.Command{
	Use:   "write-isp <address> <value>",
	Short: "Write one flash word through the ISP controller",
	Long:  "",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		address, err := parseWord(args[0])
		if err != nil {
			log.Fatal(err)
		}
		value, err := parseWord(args[1])
		if err != nil {
			log.Fatal(err)
		}

		target, err := openTarget()
		if err != nil {
			log.Fatal(err)
		}
		defer target.Close()

		if err := numicro.WriteISP(target, address, value); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("0x%08x: 0x%08x\n", address, value)
	},
}

// chipEraseCmd represents the chip-erase command
var chipEraseCmd = &cobra.Command{
	Use:   "chip-erase",
	Short: "Erase the whole chip through ISP, releasing the secure lock",
	Long:  "",
	Run: func(cmd *cobra.Command, args []string) {
		target, err := openTarget()
		if err != nil {
			log.Fatal(err)
		}
		defer target.Close()

		if err := numicro.ChipErase(target); err != nil {
			fmt.Println("chip-erase failed")
			log.Fatal(err)
		}
		fmt.Println("chip-erase complete")
	},
}

func init() {
	rootCmd.AddCommand(readIspCmd)
	rootCmd.AddCommand(writeIspCmd)
	rootCmd.AddCommand(chipEraseCmd)
}
