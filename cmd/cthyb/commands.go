package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/cthyb/config"
	"github.com/katalvlaran/cthyb/mc"
	"github.com/katalvlaran/cthyb/solver"
)

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "cthyb",
		Short:         "Continuous-time hybridization-expansion impurity solver",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "run.yaml", "path to the run description")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the run description without sampling",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			s, err := c.Structure()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: beta=%g n_iw=%d n_tau=%d blocks=%d workers=%d\n",
				c.Beta, c.NIw, c.NTau, s.Len(), c.Solve.Workers)

			return nil
		},
	}

	var resultsPath, metricsPath string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Solve the impurity problem and write the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if resultsPath != "" {
				c.Out.Results = resultsPath
			}
			if metricsPath != "" {
				c.Out.Metrics = metricsPath
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return run(ctx, c, newLogger(cmd.ErrOrStderr(), c.Solve.Verbosity))
		},
	}
	runCmd.Flags().StringVarP(&resultsPath, "out", "o", "", "result file (overrides output.results)")
	runCmd.Flags().StringVar(&metricsPath, "metrics", "", "prometheus text file (overrides output.metrics)")

	root.AddCommand(checkCmd, runCmd)

	return root
}

// run solves c and writes the configured outputs.
func run(ctx context.Context, c *config.Config, log *logrus.Logger) error {
	s, err := c.Structure()
	if err != nil {
		return err
	}
	slv, err := solver.New(c.Beta, s, c.NIw, c.NTau)
	if err != nil {
		return err
	}
	g0, err := c.WeissField(s, slv.FreqMesh())
	if err != nil {
		return err
	}
	if err = slv.SetG0(g0); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	res, err := slv.Solve(ctx, c.Hamiltonian(), c.Solve,
		solver.WithLogger(log),
		solver.WithMetrics(mc.NewMetrics(reg)))
	if err != nil {
		return err
	}

	if err = writeResults(c.Out.Results, c, res); err != nil {
		return err
	}
	log.WithField("path", c.Out.Results).Info("results written")
	if c.Out.Metrics != "" {
		if err = prometheus.WriteToTextfile(c.Out.Metrics, reg); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		log.WithField("path", c.Out.Metrics).Info("metrics written")
	}

	return nil
}
