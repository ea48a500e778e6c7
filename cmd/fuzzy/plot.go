package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/fuzzy/internal/plot"
	"github.com/cognicore/fuzzy/pkg/fuzzy/internalerr"
)

func (a *app) plotCmd() *cobra.Command {
	var (
		systemPath string
		variable   string
		inputs     []string
		samplings  int
		output     string
	)

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render an input variable or layer as HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := parseInputs(inputs)
			if err != nil {
				return err
			}

			ctx, cancel := a.context(cmd)
			defer cancel()

			engine, cleanup, err := a.buildEngine(ctx, systemPath, "", samplings, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			var fig plot.Figure
			model := engine.Model()
			if samplings <= 0 {
				samplings = model.Samplings
			}
			if v, ok := model.Input(variable); ok {
				fig = plot.VariableFigure(v, samplings)
			} else if l, ok := model.Layer(variable); ok {
				if fig, err = plot.LayerFigure(l, in, samplings); err != nil {
					return err
				}
			} else {
				return fmt.Errorf("%w: variable %q", internalerr.ErrNotFound, variable)
			}

			if err := writePlot(cmd.OutOrStdout(), output, fig); err != nil {
				return err
			}
			a.logger.Info("rendered plot", zap.String("variable", variable), zap.String("output", output))
			return nil
		},
	}

	cmd.Flags().StringVar(&systemPath, "system", "", "System YAML file (required)")
	cmd.Flags().StringVar(&variable, "variable", "", "Input variable or layer to plot (required)")
	cmd.Flags().StringArrayVar(&inputs, "input", nil, "Input value as name=value, for layers (repeatable)")
	cmd.Flags().IntVar(&samplings, "samplings", 0, "Sampling count (default: from system)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: stdout)")
	_ = cmd.MarkFlagRequired("system")
	_ = cmd.MarkFlagRequired("variable")
	return cmd
}

// writePlot renders fig to path, or to stdout when path is empty or "-".
// A failed close of the output file is reported.
func writePlot(stdout io.Writer, path string, fig plot.Figure) (err error) {
	if path == "" || path == "-" {
		return plot.Render(stdout, fig)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return plot.Render(f, fig)
}
