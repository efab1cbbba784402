// Command tokay runs compiled Tokay programs.
package main

import (
	"fmt"
	"os"

	"github.com/tokay-lang/tokay/cmd/tokay/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
