package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yuzhenfeng2002/Traffic-Assignment-2024/assign"
	"github.com/yuzhenfeng2002/Traffic-Assignment-2024/network"
)

// scenario is the YAML configuration of one solve run. Flags override any
// field set here.
type scenario struct {
	Network       string   `yaml:"network"`
	Trips         string   `yaml:"trips"`
	Algorithms    []string `yaml:"algorithms"`
	Objective     string   `yaml:"objective"`
	CostModel     string   `yaml:"cost_model"`
	Tolerance     float64  `yaml:"tolerance"`
	MaxIterations int      `yaml:"max_iterations"`
	MaxRunTime    string   `yaml:"max_run_time"` // Go duration string, e.g. "60s"
	StepSize      float64  `yaml:"step_size"`
	OutDir        string   `yaml:"out_dir"`
}

func defaultScenario() scenario {
	opts := assign.DefaultOptions()

	return scenario{
		Algorithms:    []string{assign.FrankWolfe.String()},
		Objective:     assign.UserEquilibrium.String(),
		CostModel:     network.BPR{}.Name(),
		Tolerance:     opts.Tolerance,
		MaxIterations: opts.MaxIterations,
		StepSize:      opts.StepSize,
		OutDir:        ".",
	}
}

// loadScenario merges the YAML file at path over the defaults.
func loadScenario(path string) (scenario, error) {
	sc := defaultScenario()
	data, err := os.ReadFile(path)
	if err != nil {
		return sc, fmt.Errorf("read scenario: %w", err)
	}
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return sc, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	return sc, nil
}

// options translates the scenario into solver options for one algorithm.
func (sc scenario) options(algorithm string) (assign.Options, error) {
	opts := assign.DefaultOptions()

	alg, err := assign.ParseAlgorithm(algorithm)
	if err != nil {
		return opts, err
	}
	opts.Algorithm = alg

	switch strings.ToUpper(strings.TrimSpace(sc.Objective)) {
	case "", "UE":
		opts.Objective = assign.UserEquilibrium
	case "SO":
		opts.Objective = assign.SystemOptimal
	default:
		return opts, fmt.Errorf("unknown objective %q (want UE or SO)", sc.Objective)
	}

	switch strings.ToLower(strings.TrimSpace(sc.CostModel)) {
	case "", "bpr":
		opts.CostModel = network.BPR{}
	case "constant":
		opts.CostModel = network.Constant{}
	case "greenshields":
		opts.CostModel = network.Greenshields{}
	default:
		return opts, fmt.Errorf("unknown cost model %q", sc.CostModel)
	}

	opts.Tolerance = sc.Tolerance
	opts.MaxIterations = sc.MaxIterations
	opts.StepSize = sc.StepSize
	if sc.MaxRunTime != "" {
		d, err := time.ParseDuration(sc.MaxRunTime)
		if err != nil {
			return opts, fmt.Errorf("parse max_run_time: %w", err)
		}
		opts.MaxRunTime = d
	}

	return opts, nil
}
