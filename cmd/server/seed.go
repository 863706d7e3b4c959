package main

import (
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the example products if the store is empty",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, st, cleanup, err := bootstrap()
		if err != nil {
			return err
		}
		defer cleanup()
		return seedIfEmpty(cmd, st)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
