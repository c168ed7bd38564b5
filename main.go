package main

import "github.com/nuvotools/nuflash/cmd"

func main() {
	cmd.Execute()
}
