package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tokay-lang/tokay/internal/vm"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm <program.yaml>",
	Short: "Disassemble a compiled Tokay program",
	Args:  cobra.ExactArgs(1),
	RunE:  disasmProgram,
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}

func disasmProgram(_ *cobra.Command, args []string) error {
	blob, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read program %s: %w", args[0], err)
	}
	prog, err := vm.UnmarshalProgramYAML(blob)
	if err != nil {
		return fmt.Errorf("failed to parse program: %w", err)
	}
	fmt.Print(prog.Disassemble())
	return nil
}
