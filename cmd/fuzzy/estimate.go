package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cognicore/fuzzy/pkg/fuzzy"
)

type estimateJSON struct {
	ID       string             `json:"id"`
	Layer    string             `json:"layer"`
	X        float64            `json:"x"`
	Y        float64            `json:"y"`
	Area     float64            `json:"area"`
	Fallback bool               `json:"fallback"`
	CutOffs  map[string]float64 `json:"cut_offs"`
}

func toJSON(e fuzzy.Estimate) estimateJSON {
	return estimateJSON{
		ID:       e.ID,
		Layer:    e.Layer,
		X:        e.X,
		Y:        e.Y,
		Area:     e.Area,
		Fallback: e.Fallback,
		CutOffs:  e.CutOffs,
	}
}

func (a *app) estimateCmd() *cobra.Command {
	var (
		systemPath string
		dbPath     string
		layerName  string
		inputs     []string
		samplings  int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the centre of mass of one layer, or every layer",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := parseInputs(inputs)
			if err != nil {
				return err
			}

			ctx, cancel := a.context(cmd)
			defer cancel()

			engine, cleanup, err := a.buildEngine(ctx, systemPath, dbPath, samplings, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			var results []fuzzy.Estimate
			if layerName != "" {
				est, err := engine.Estimate(ctx, layerName, in)
				if err != nil {
					return err
				}
				results = append(results, est)
			} else {
				if results, err = engine.EstimateAll(ctx, in); err != nil {
					return err
				}
			}
			return printEstimates(cmd.OutOrStdout(), results, asJSON)
		},
	}

	cmd.Flags().StringVar(&systemPath, "system", "", "System YAML file (required)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database to record estimates in")
	cmd.Flags().StringVar(&layerName, "layer", "", "Layer to estimate (default: all layers)")
	cmd.Flags().StringArrayVar(&inputs, "input", nil, "Input value as name=value (repeatable)")
	cmd.Flags().IntVar(&samplings, "samplings", 0, "Sampling count (default: from system)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output results in JSON format")
	_ = cmd.MarkFlagRequired("system")
	return cmd
}

func printEstimates(w io.Writer, results []fuzzy.Estimate, asJSON bool) error {
	if asJSON {
		out := make([]estimateJSON, len(results))
		for i, r := range results {
			out[i] = toJSON(r)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, r := range results {
		fmt.Fprintf(w, "%s: x=%.4f y=%.4f area=%.4f", r.Layer, r.X, r.Y, r.Area)
		if r.Fallback {
			fmt.Fprint(w, " (no active granule, midpoint)")
		}
		fmt.Fprintln(w)
		for _, label := range fuzzy.SortedLabels(r.CutOffs) {
			fmt.Fprintf(w, "  %-16s %.4f\n", label, r.CutOffs[label])
		}
	}
	return nil
}
