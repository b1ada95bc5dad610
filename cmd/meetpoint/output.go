package main

import (
	"encoding/json"
	"fmt"
	"io"
	"meeting-point-service/internal/api/dto"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/fairness"
	"meeting-point-service/internal/services"
	"text/tabwriter"
)

func writeFindJSON(w io.Writer, res *services.FindResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dto.NewFindResponse(res, ""))
}

func writeFindText(w io.Writer, res *services.FindResult) error {
	r := res.Ranking
	fmt.Fprintf(w, "Midpoint %s, %d candidates, %s, policy %s\n",
		res.Midpoint, res.Candidates, r.Mode, r.Policy)

	if r.Empty() {
		_, err := fmt.Fprintln(w, "No matching places.")
		return err
	}
	if r.UsedFallback {
		fmt.Fprintln(w, "No place is fair to both; showing the quickest overall.")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPLACE\tA\tB\tTOTAL\tSPLIT")
	for i, p := range r.Places {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%.0f/%.0f\n",
			i+1, placeLabel(p.Candidate), p.DurationA, p.DurationB, p.Total,
			p.BalanceRatio*100, (1-p.BalanceRatio)*100)
	}
	return tw.Flush()
}

func writeCandidatesText(w io.Writer, res *services.CandidatesResult) error {
	fmt.Fprintf(w, "Midpoint %s, %d candidates\n", res.Midpoint, len(res.Candidates))
	if len(res.Candidates) == 0 {
		_, err := fmt.Fprintln(w, "No matching places.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLACE\tLOCATION\tPLACE ID")
	for _, c := range res.Candidates {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", placeLabel(c), c.Coordinates, c.PlaceID)
	}
	return tw.Flush()
}

func writePolicies(w io.Writer, r *fairness.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFILTER\tMAX DISPARITY\tTOLERANCE\tSCORING\tFALLBACK")
	for _, p := range r.Policies() {
		name := p.Name
		if name == r.DefaultName() {
			name += " (default)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%gmin\t%g\t%s\t%d\n",
			name, p.Filter, p.MaxDisparityMinutes, p.BalanceTolerance, p.Scoring, p.FallbackLimit)
	}
	return tw.Flush()
}

func placeLabel(c domain.Candidate) string {
	label := c.Name
	if label == "" {
		label = c.PlaceID
	}
	if c.Vicinity != nil && *c.Vicinity != "" {
		label += " (" + *c.Vicinity + ")"
	}
	return label
}
