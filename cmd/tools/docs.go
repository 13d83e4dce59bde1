package tools

import (
	"fmt"
	"os"
	"strings"

	"github.com/rvasm/rvasm/pkg/rv64/mc"
	"github.com/rvasm/rvasm/pkg/utils"
	"github.com/spf13/cobra"
)

var module string
var supportedModules = map[string]func() string{
	"rv64.registers": registersDocString,
	"rv64.branches":  branchesDocString,
}

var docsCmd = &cobra.Command{
	Use:   "docs module",
	Short: "Show rvasm documentation",
	Long: `Dumps the documentation of the specified rvasm module.
By default the tool dumps the documentation to stdout, but it can be redirected to a file using the --output flag.

Supported modules:
` + strings.Join(utils.Map(utils.Keys(supportedModules), func(module string) string { return "  " + module }), "\n"),
	Args:      cobra.MatchAll(cobra.OnlyValidArgs, cobra.MaximumNArgs(1), cobra.MinimumNArgs(1)),
	ValidArgs: utils.Keys(supportedModules),
	Run: func(cmd *cobra.Command, args []string) {
		module = args[0]
		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			file, err := os.Create(outputFile)
			if err != nil {
				fmt.Println("Error creating file:", err)
				os.Exit(1)
			}
			defer file.Close()
			fmt.Fprintln(file, supportedModules[module]())
		} else {
			fmt.Println(supportedModules[module]())
		}
	},
}

func registersDocString() string {
	builder := strings.Builder{}
	builder.WriteString("RV64 general-purpose registers (x0-x31, ABI mnemonics):\n")
	for reg := mc.XRegister(0); reg < mc.NumXRegisters; reg++ {
		fmt.Fprintf(&builder, "  x%-2d  %s\n", uint32(reg), reg)
	}
	builder.WriteString("\nRV64 floating-point registers (f0-f31, ABI mnemonics):\n")
	for reg := mc.FRegister(0); reg < mc.NumFRegisters; reg++ {
		fmt.Fprintf(&builder, "  f%-2d  %s\n", uint32(reg), reg)
	}
	builder.WriteString("\nThe assembler reserves t5, t6 and ft11 as scratch registers\n")
	builder.WriteString("for synthesized sequences (long branches, literal loads,\n")
	builder.WriteString("large-offset address adjustment).")
	return builder.String()
}

func branchesDocString() string {
	return `Branches to unbound labels reserve the shortest encoding and are
promoted during finalization when the target turns out to be out of range:

  short        4 bytes   B-format conditional branch, +-4 KiB
  short        4 bytes   J-format jump or call, +-1 MiB
  medium       8 bytes   opposite condition over a J-format jump, +-1 MiB
  long        12 bytes   opposite condition over AUIPC+JALR, +-2 GiB
  long jump    8 bytes   AUIPC+JALR, +-2 GiB
  long call    8 bytes   AUIPC+JALR linking through the destination register

Bare variants keep the 4-byte encoding and fail finalization instead of
being promoted. Literal and label-address loads are AUIPC-based 8-byte
sequences and never change size.`
}

func init() {
	ToolsCmd.AddCommand(docsCmd)
	docsCmd.Flags().StringP("output", "o", "", "Output file. If not specified, the documentation is dumped to stdout.")
}
