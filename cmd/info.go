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

func PrintBankInfo() {
	bank, target, err := openBank()
	if err != nil {
		log.Fatal(err)
	}
	defer target.Close()

	part := bank.Part()
	fmt.Printf("Part:    %s (ID 0x%08x)\n", part.Name, part.ID)
	for _, region := range part.Regions {
		fmt.Printf("Region:  base 0x%08x, size %d bytes\n", region.Base, region.Size)
	}
	fmt.Printf("Bank:    base 0x%08x, %d sectors of %d bytes\n",
		bank.Base, len(bank.Sectors), numicro.PageSize)

	status, err := bank.ProtectCheck()
	if err != nil {
		log.Fatal(err)
	}
	if status.BootFromLDROM {
		fmt.Println("Boot:    LDROM")
	} else {
		fmt.Println("Boot:    APROM")
	}
	if status.SecureLocked {
		fmt.Println("Lock:    flash is secure locked, chip-erase required before readout")
	} else {
		fmt.Println("Lock:    flash is not locked")
	}
}

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Identify the attached part and report flash geometry and lock state",
	Long:  "",
	Run: func(cmd *cobra.Command, args []string) {
		PrintBankInfo()
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
