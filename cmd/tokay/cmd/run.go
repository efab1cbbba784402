package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tokay-lang/tokay/internal/builtin"
	"github.com/tokay-lang/tokay/internal/vm"
)

var inputPath string

var runCmd = &cobra.Command{
	Use:   "run <program.yaml>",
	Short: "Run a compiled Tokay program against an input",
	Long: `Execute a Tokay Program blob (the YAML form of Program.MarshalYAML)
against an input file, or stdin when --input is not given.

Examples:
  tokay run program.yaml --input source.txt
  cat source.txt | tokay run program.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&inputPath, "input", "", "input file to run the program against (default: stdin)")
}

func runProgram(_ *cobra.Command, args []string) error {
	blob, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read program %s: %w", args[0], err)
	}
	prog, err := vm.UnmarshalProgramYAML(blob)
	if err != nil {
		return fmt.Errorf("failed to parse program: %w", err)
	}

	var src []byte
	if inputPath != "" {
		src, err = os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("failed to read input %s: %w", inputPath, err)
		}
	} else {
		src, err = os.ReadFile("/dev/stdin")
		if err != nil {
			src = nil
		}
	}

	level := debugLevel
	if v := os.Getenv("TOKAY_DEBUG"); v != "" && debugLevel == 0 {
		if n, err := strconv.Atoi(v); err == nil {
			level = n
		}
	}
	insp := inspect
	if insp == "" {
		insp = os.Getenv("TOKAY_INSPECT")
	}

	t := vm.NewThread(prog, src, builtin.Std())
	t.DebugLevel = level
	t.Inspect = insp

	result, err := t.Run()
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, result.Repr())
	return nil
}
