package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "tokay",
	Short: "Tokay program runner",
	Long: `tokay runs and inspects compiled Tokay programs.

Tokay's own grammar-to-bytecode compiler (parsing grammar source into a
Program) is out of scope for this build; tokay operates on the portable
YAML Program blob a compiler front-end produces (see internal/vm's
Program.MarshalYAML), and can disassemble one for inspection.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().IntVar(&debugLevel, "debug", 0, "debug verbosity stored on the VM thread (0=off, 1=trace, 2=verbose; no trace output is produced); overrides TOKAY_DEBUG")
	rootCmd.PersistentFlags().StringVar(&inspect, "inspect", "", "comma-separated parselet names stored on the VM thread (not traced); overrides TOKAY_INSPECT")
}

var (
	debugLevel int
	inspect    string
)
