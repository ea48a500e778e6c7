package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/fuzzy/pkg/fuzzy/internalerr"
)

func (a *app) evalCmd() *cobra.Command {
	var (
		systemPath string
		variable   string
		label      string
		x          float64
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate the granules of an input variable at x",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			engine, cleanup, err := a.buildEngine(ctx, systemPath, "", 0, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			in, ok := engine.Model().Input(variable)
			if !ok {
				return fmt.Errorf("%w: input %q", internalerr.ErrNotFound, variable)
			}

			w := cmd.OutOrStdout()
			if label != "" {
				f, ok := in.Function(label)
				if !ok {
					return fmt.Errorf("%w: granule %q of %q", internalerr.ErrNotFound, label, variable)
				}
				fmt.Fprintf(w, "%.4f\n", f.Evaluate(x))
				return nil
			}

			degrees := in.Degrees(x)
			for _, l := range in.Labels {
				fmt.Fprintf(w, "%-16s %.4f\n", l, degrees[l])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&systemPath, "system", "", "System YAML file (required)")
	cmd.Flags().StringVar(&variable, "variable", "", "Input variable (required)")
	cmd.Flags().StringVar(&label, "label", "", "Single granule to evaluate")
	cmd.Flags().Float64Var(&x, "x", 0, "Value to evaluate at")
	_ = cmd.MarkFlagRequired("system")
	_ = cmd.MarkFlagRequired("variable")
	return cmd
}
