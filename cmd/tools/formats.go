package tools

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// One field of an instruction format, highest bit first
type formatField struct {
	name string
	bits int
}

var instructionFormats = []struct {
	name   string
	fields []formatField
}{
	{"R", []formatField{
		{"funct7", 7}, {"rs2", 5}, {"rs1", 5}, {"funct3", 3}, {"rd", 5}, {"opcode", 7},
	}},
	{"I", []formatField{
		{"imm[11:0]", 12}, {"rs1", 5}, {"funct3", 3}, {"rd", 5}, {"opcode", 7},
	}},
	{"S", []formatField{
		{"imm[11:5]", 7}, {"rs2", 5}, {"rs1", 5}, {"funct3", 3}, {"imm[4:0]", 5}, {"opcode", 7},
	}},
	{"B", []formatField{
		{"imm[12|10:5]", 7}, {"rs2", 5}, {"rs1", 5}, {"funct3", 3}, {"imm[4:1|11]", 5}, {"opcode", 7},
	}},
	{"U", []formatField{
		{"imm[31:12]", 20}, {"rd", 5}, {"opcode", 7},
	}},
	{"J", []formatField{
		{"imm[20|10:1|11|19:12]", 20}, {"rd", 5}, {"opcode", 7},
	}},
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "Show the RISC-V instruction format bit layouts",
	Run: func(cmd *cobra.Command, args []string) {
		nameColor := color.New(color.FgCyan, color.Bold)
		bitColor := color.New(color.FgYellow)

		for _, format := range instructionFormats {
			nameColor.Printf("%s-format\n", format.name)

			bit := 32
			ranges := strings.Builder{}
			fields := strings.Builder{}
			for _, field := range format.fields {
				width := cellWidth(field)
				ranges.WriteString(bitColor.Sprintf("%-*s", width, fmt.Sprintf("%d:%d", bit-1, bit-field.bits)))
				fields.WriteString(fmt.Sprintf("%-*s", width, field.name))
				bit -= field.bits
			}
			fmt.Println("  " + ranges.String())
			fmt.Println("  " + fields.String())
			fmt.Println()
		}
	},
}

// Returns the printed cell width of a field, wide enough for both the field
// name and its bit range
func cellWidth(field formatField) int {
	width := len(field.name) + 2
	if width < 7 {
		width = 7
	}
	return width
}

func init() {
	ToolsCmd.AddCommand(formatsCmd)
}
