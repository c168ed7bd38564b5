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
)

var (
	tmpEraseFirst uint
	tmpEraseLast  uint
	tmpEraseAll   bool
)

func EraseSectors() {
	bank, target, err := openBank()
	if err != nil {
		log.Fatal(err)
	}
	defer target.Close()

	if len(bank.Sectors) == 0 {
		log.Fatal("bank has no erasable sectors")
	}

	first, last := tmpEraseFirst, tmpEraseLast
	if tmpEraseAll {
		first, last = 0, uint(len(bank.Sectors))-1
	}

	if err := bank.Erase(first, last); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("erased sectors %d to %d\n", first, last)
}

// eraseCmd represents the erase command
var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase a sector range of the flash bank",
	Long:  "",
	Run: func(cmd *cobra.Command, args []string) {
		EraseSectors()
	},
}

func init() {
	rootCmd.AddCommand(eraseCmd)
	eraseCmd.Flags().UintVarP(&tmpEraseFirst, "first", "f", 0, "first sector to erase")
	eraseCmd.Flags().UintVarP(&tmpEraseLast, "last", "l", 0, "last sector to erase (inclusive)")
	eraseCmd.Flags().BoolVarP(&tmpEraseAll, "all", "a", false, "erase every sector of the bank")
}
