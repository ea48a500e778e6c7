package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/fuzzy/pkg/fuzzy"
	"github.com/cognicore/fuzzy/pkg/fuzzy/store/sqlite"
)

func (a *app) historyCmd() *cobra.Command {
	var (
		dbPath    string
		layerName string
		limit     int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded estimates, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			st, err := sqlite.Open(ctx, dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.ListEstimates(ctx, layerName, limit)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				out := make([]estimateJSON, len(records))
				for i, r := range records {
					out[i] = toJSON(fuzzy.Estimate(r))
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			for _, r := range records {
				fmt.Fprintf(w, "%s  %s  %-10s x=%.4f y=%.4f", r.ID, r.CreatedAt.Format(time.RFC3339), r.Layer, r.X, r.Y)
				if r.Fallback {
					fmt.Fprint(w, " fallback")
				}
				fmt.Fprintln(w)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database (required)")
	cmd.Flags().StringVar(&layerName, "layer", "", "Only list estimates of this layer")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum estimates to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output results in JSON format")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}
