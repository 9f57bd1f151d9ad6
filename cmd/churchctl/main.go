package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "churchctl",
		Short:   "Operational tooling for the church admin API",
		Version: Version,
	}

	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(permissionsCmd())
	rootCmd.AddCommand(brcodeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
