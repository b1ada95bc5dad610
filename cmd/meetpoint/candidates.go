package main

import (
	"context"
	"meeting-point-service/internal/app"

	"github.com/spf13/cobra"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List the assembled candidate places without ranking them",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := findRequestFromFlags(cmd)
		if err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res, err := a.Finder.Candidates(ctx, req)
			if err != nil {
				return err
			}
			return writeCandidatesText(cmd.OutOrStdout(), res)
		})
	},
}

func init() {
	addOriginFlags(candidatesCmd)
	rootCmd.AddCommand(candidatesCmd)
}
