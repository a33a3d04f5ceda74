// Command master runs the distributed compute engine's master-side
// protocol core: it accepts slave connections, publishes commands, and
// collects replies.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "master",
		Short: "Distributed compute engine master",
	}
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
