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

var (
	tmpFirmwarePathRaw = ""
	tmpFlashOffset     = ""
	tmpFlashErase      = false
	tmpFlashVerify     = false
)

func FlashFirmwareFromRawFile(path string) error {
	image, err := numicro.LoadImage(path)
	if err != nil {
		return err
	}
	fmt.Printf("Opened firmware blob '%s'\n", path)
	fmt.Println(image.String())

	offset, err := parseWord(tmpFlashOffset)
	if err != nil {
		return err
	}

	bank, target, err := openBank()
	if err != nil {
		return err
	}
	defer target.Close()

	if tmpFlashErase {
		first := uint(offset / numicro.PageSize)
		last := uint((offset + uint32(len(image.Data)) - 1) / numicro.PageSize)
		if err := bank.Erase(first, last); err != nil {
			return err
		}
	}

	if err := bank.Write(image.Data, offset); err != nil {
		return err
	}

	if tmpFlashVerify {
		if err := bank.VerifyImage(image, offset); err != nil {
			return err
		}
		fmt.Println("verify OK")
	}

	fmt.Printf("flashed %d bytes at offset 0x%x\n", len(image.Data), offset)
	return nil
}

// flashCmd represents the flash command
var flashCmd = &cobra.Command{
	Use:   "flash",
	Short: "Write a raw firmware image to the flash bank",
	Long:  "",
	Run: func(cmd *cobra.Command, args []string) {
		if len(tmpFirmwarePathRaw) == 0 {
			fmt.Println("Error: no firmware file given for flashing")
			fmt.Println()
			fmt.Println("Provide a raw binary firmware image with the `-r` flag.")
			cmd.Usage()
			return
		}
		if err := FlashFirmwareFromRawFile(tmpFirmwarePathRaw); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(flashCmd)
	// -r --raw, -o --offset, -e --erase, -V --verify
	flashCmd.Flags().StringVarP(&tmpFirmwarePathRaw, "rawfile", "r", "", "path to firmware file in raw binary format")
	flashCmd.Flags().StringVarP(&tmpFlashOffset, "offset", "o", "0x0", "bank offset to program the image at")
	flashCmd.Flags().BoolVarP(&tmpFlashErase, "erase", "e", false, "erase covered sectors before writing")
	flashCmd.Flags().BoolVarP(&tmpFlashVerify, "verify", "V", false, "read back and verify the image checksum after writing")
}
