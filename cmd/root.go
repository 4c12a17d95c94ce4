package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tabletap",
		Short: "Browse restaurants and book tables through the TableTap API",
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newKeysCmd())
	root.AddCommand(newUserCmd())
	root.AddCommand(newLoginCmd())
	root.AddCommand(newRestaurantsCmd())
	root.AddCommand(newTablesCmd())
	root.AddCommand(newReserveCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newServerCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
