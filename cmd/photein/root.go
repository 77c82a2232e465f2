package main

import (
	"github.com/spf13/cobra"

	"photein/internal/config"
)

func newRootCommand() *cobra.Command {
	var flags config.Flags

	rootCmd := &cobra.Command{
		Use:   "photein",
		Short: "Import photos and videos into date-named libraries",
		Long: "photein moves photos and videos from a source directory into up to three libraries " +
			"(master, desktop, web), renaming each file after its capture time and optimizing " +
			"copies for the desktop and web libraries.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags, cmd.Flags().Changed)
			if err != nil {
				return err
			}
			return runImport(cmd.Context(), cmd, cfg)
		},
	}

	config.BindFlags(rootCmd.Flags(), &flags)
	rootCmd.AddCommand(newDepsCommand())
	return rootCmd
}
