package main

import (
	"context"
	"meeting-point-service/internal/app"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/services"
	"strings"

	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Rank meeting places between two origins",
	Long: `find resolves both origins, searches for places matching --query around the
midpoint and around each origin, measures both travel times to every candidate
and prints the fairest places first.

Origins are addresses, or place ids when prefixed with "place_id:".`,
	Example: `  meetpoint find --from "Union Square, NYC" --to "Prospect Park, Brooklyn" --query coffee
  meetpoint find --from place_id:ChIJ... --to "1 Main St" --query bar --mode driving --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := findRequestFromFlags(cmd)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res, err := a.Finder.Find(ctx, req)
			if err != nil {
				return err
			}
			if asJSON {
				return writeFindJSON(cmd.OutOrStdout(), res)
			}
			return writeFindText(cmd.OutOrStdout(), res)
		})
	},
}

func init() {
	addOriginFlags(findCmd)
	findCmd.Flags().String("mode", "", "travel mode: walking, driving, bicycling or transit")
	findCmd.Flags().Int("limit", 0, "maximum number of places to print (default from config)")
	findCmd.Flags().String("policy", "", "fairness policy (see: meetpoint policies)")
	findCmd.Flags().Bool("expand", false, "search around the best places for more candidates")
	findCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(findCmd)
}

func addOriginFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "first origin (address or place_id:<id>)")
	cmd.Flags().String("to", "", "second origin (address or place_id:<id>)")
	cmd.Flags().String("query", "", "what to meet at, e.g. coffee")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("query")
}

// parseOrigin reads "place_id:<id>" as a place id and anything else as an address.
func parseOrigin(s string) services.OriginInput {
	s = strings.TrimSpace(s)
	if id, ok := strings.CutPrefix(s, "place_id:"); ok {
		return services.OriginInput{PlaceID: strings.TrimSpace(id)}
	}
	return services.OriginInput{Address: s}
}

func findRequestFromFlags(cmd *cobra.Command) (services.FindRequest, error) {
	f := cmd.Flags()
	from, _ := f.GetString("from")
	to, _ := f.GetString("to")
	query, _ := f.GetString("query")

	req := services.FindRequest{
		OriginA: parseOrigin(from),
		OriginB: parseOrigin(to),
		Query:   strings.TrimSpace(query),
	}

	if f.Lookup("mode") == nil {
		return req, nil
	}

	rawMode, _ := f.GetString("mode")
	if strings.TrimSpace(rawMode) != "" {
		mode, err := domain.ParseTravelMode(rawMode)
		if err != nil {
			return req, err
		}
		req.Mode = mode
	}
	req.Limit, _ = f.GetInt("limit")
	req.PolicyName, _ = f.GetString("policy")
	req.Expand, _ = f.GetBool("expand")

	return req, nil
}
