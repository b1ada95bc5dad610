package main

import (
	"meeting-point-service/internal/config"

	"github.com/spf13/cobra"
)

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List the available fairness policies",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		// Map API keys are not needed here, so validation errors are ignored.
		cfg, errs := config.Load(path)
		if cfg == nil {
			return errs[0]
		}

		r, err := cfg.Policies()
		if err != nil {
			return err
		}
		return writePolicies(cmd.OutOrStdout(), r)
	},
}

func init() {
	rootCmd.AddCommand(policiesCmd)
}
