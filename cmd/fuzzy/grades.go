package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cognicore/fuzzy/pkg/fuzzy/grades"
)

func gradesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grades N",
		Short: fmt.Sprintf("Print the default labels for N granules (%d-%d)", grades.Min, grades.Max),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid granularity %q: %w", args[0], err)
			}
			labels, err := grades.Default(n)
			if err != nil {
				return err
			}
			for _, l := range labels {
				fmt.Fprintln(cmd.OutOrStdout(), l)
			}
			return nil
		},
	}
}
