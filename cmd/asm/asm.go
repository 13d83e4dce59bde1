package asm

import (
	"github.com/spf13/cobra"
)

// asmCmd represents the asm command
var AsmCmd = &cobra.Command{
	Use:   "asm",
	Short: "rvasm assembler demos",
}

func init() {
}
