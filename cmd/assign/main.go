package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yuzhenfeng2002/Traffic-Assignment-2024/assign"
	"github.com/yuzhenfeng2002/Traffic-Assignment-2024/network"
	"github.com/yuzhenfeng2002/Traffic-Assignment-2024/tntp"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "assign",
		Short: "Static traffic equilibrium assignment",
		Long: `assign solves the static traffic assignment problem on TNTP networks:
given link records and an OD trip table, it finds the user-equilibrium (or
system-optimal) link flows with one of five algorithms (FW, MSA, CFW, GP, GP-E)
and writes the flows and the convergence trace.`,
		SilenceUsage: true,
	}
	root.AddCommand(newSolveCmd())

	return root
}

func newSolveCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
		sc         = defaultScenario()
	)

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve one scenario and write flow and gap files",
		RunE: func(cmd *cobra.Command, args []string) error {
			// 1. Config file first, explicit flags on top.
			if configPath != "" {
				loaded, err := loadScenario(configPath)
				if err != nil {
					return err
				}
				merged := loaded
				overrideChanged(cmd, &merged, &sc)
				sc = merged
			}
			if sc.Network == "" || sc.Trips == "" {
				return fmt.Errorf("both --network and --trips are required")
			}

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runScenario(ctx, logger, sc)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML scenario file")
	cmd.Flags().StringVar(&sc.Network, "network", sc.Network, "TNTP network file (*_net.tntp)")
	cmd.Flags().StringVar(&sc.Trips, "trips", sc.Trips, "TNTP trips file (*_trips.tntp)")
	cmd.Flags().StringSliceVar(&sc.Algorithms, "algorithm", sc.Algorithms, "algorithms to run (FW, MSA, CFW, GP, GP-E)")
	cmd.Flags().StringVar(&sc.Objective, "objective", sc.Objective, "UE or SO")
	cmd.Flags().StringVar(&sc.CostModel, "cost-model", sc.CostModel, "link cost model (BPR, constant, greenshields)")
	cmd.Flags().Float64Var(&sc.Tolerance, "tolerance", sc.Tolerance, "relative-gap convergence threshold")
	cmd.Flags().IntVar(&sc.MaxIterations, "max-iterations", sc.MaxIterations, "iteration cap")
	cmd.Flags().StringVar(&sc.MaxRunTime, "max-run-time", sc.MaxRunTime, "wall-clock cap, e.g. 60s (0 = unlimited)")
	cmd.Flags().Float64Var(&sc.StepSize, "step-size", sc.StepSize, "fixed step size for GP")
	cmd.Flags().StringVarP(&sc.OutDir, "out", "o", sc.OutDir, "output directory")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	return cmd
}

// overrideChanged copies every flag-backed field the user set explicitly over
// the config-file values, so the precedence is defaults < file < flags.
func overrideChanged(cmd *cobra.Command, dst, flags *scenario) {
	set := map[string]func(){
		"network":        func() { dst.Network = flags.Network },
		"trips":          func() { dst.Trips = flags.Trips },
		"algorithm":      func() { dst.Algorithms = flags.Algorithms },
		"objective":      func() { dst.Objective = flags.Objective },
		"cost-model":     func() { dst.CostModel = flags.CostModel },
		"tolerance":      func() { dst.Tolerance = flags.Tolerance },
		"max-iterations": func() { dst.MaxIterations = flags.MaxIterations },
		"max-run-time":   func() { dst.MaxRunTime = flags.MaxRunTime },
		"step-size":      func() { dst.StepSize = flags.StepSize },
		"out":            func() { dst.OutDir = flags.OutDir },
	}
	for name, apply := range set {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
}

func runScenario(ctx context.Context, logger *slog.Logger, sc scenario) error {
	nw, dem, err := loadInputs(sc)
	if err != nil {
		return err
	}
	logger.Info("scenario loaded",
		slog.Int("nodes", nw.NumNodes()),
		slog.Int("links", nw.NumLinks()),
		slog.Int("od_pairs", dem.Len()),
		slog.Float64("total_demand", dem.Total()))

	if err := os.MkdirAll(sc.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	name := scenarioName(sc.Network)
	for _, algorithm := range sc.Algorithms {
		opts, err := sc.options(algorithm)
		if err != nil {
			return err
		}
		opts.Logger = logger.With(slog.String("algorithm", opts.Algorithm.String()))

		res, err := assign.Solve(ctx, nw, dem, opts)
		if err != nil {
			return fmt.Errorf("solve %s: %w", opts.Algorithm, err)
		}
		if err := writeOutputs(sc.OutDir, name, nw, opts, res); err != nil {
			return err
		}
	}

	return nil
}

func loadInputs(sc scenario) (*network.Network, *network.Demand, error) {
	nf, err := os.Open(sc.Network)
	if err != nil {
		return nil, nil, err
	}
	defer nf.Close()
	links, err := tntp.ReadNetwork(nf)
	if err != nil {
		return nil, nil, err
	}
	nw, err := network.New(links)
	if err != nil {
		return nil, nil, err
	}

	tf, err := os.Open(sc.Trips)
	if err != nil {
		return nil, nil, err
	}
	defer tf.Close()
	trips, err := tntp.ReadTrips(tf)
	if err != nil {
		return nil, nil, err
	}
	dem, err := network.NewDemand(trips)
	if err != nil {
		return nil, nil, err
	}

	return nw, dem, nil
}

// scenarioName strips the directory and the conventional _net.tntp suffix
// from the network path, leaving the collection's base name.
func scenarioName(networkPath string) string {
	base := filepath.Base(networkPath)
	base = strings.TrimSuffix(base, ".tntp")
	base = strings.TrimSuffix(base, "_net")

	return base
}

func writeOutputs(dir, name string, nw *network.Network, opts assign.Options, res *assign.Result) error {
	flowPath := filepath.Join(dir, fmt.Sprintf("%s_%s_%s_flow.tntp", name, opts.Algorithm, opts.Objective))
	ff, err := os.Create(flowPath)
	if err != nil {
		return err
	}
	defer ff.Close()
	if err := tntp.WriteFlows(ff, nw, opts.CostModel, opts.Objective, res.Flows); err != nil {
		return fmt.Errorf("write %s: %w", flowPath, err)
	}

	gapPath := filepath.Join(dir, fmt.Sprintf("%s_%s_%s_gaps.csv", name, opts.Algorithm, opts.Objective))
	gf, err := os.Create(gapPath)
	if err != nil {
		return err
	}
	defer gf.Close()
	if err := tntp.WriteGaps(gf, res.Trace); err != nil {
		return fmt.Errorf("write %s: %w", gapPath, err)
	}

	return nil
}
