package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "companygraph",
		Short: "Resolve Taiwan GCIS companies into their connected company graph",
		Long: `companygraph looks up a company in the GCIS open data registry and follows
juristic person shareholders and shared responsible persons to every
connected company. Configuration is read from the environment.`,
		SilenceUsage: true,
	}
	root.AddCommand(newResolveCmd(), newVersionCmd())
	return root
}
