package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"jobShop/internal/ga"
	"jobShop/internal/localsearch"
	"jobShop/internal/ts"
)

// Run is the YAML run configuration consumed by the CLI. Fields left
// out of the file keep their defaults, so a config file only needs to
// name what it overrides.
type Run struct {
	Seed      int64  `yaml:"seed"`
	Algorithm string `yaml:"algorithm"` // GA | TS

	GA GA `yaml:"ga"`
	TS TS `yaml:"ts"`
}

type GA struct {
	Population  int    `yaml:"population"`
	Generations int    `yaml:"generations"`
	TimeBudget  string `yaml:"time_budget"` // duration, e.g. "30s"; empty = unlimited
	Stagnation  int    `yaml:"stagnation"`

	Elite          int     `yaml:"elite"`
	TournamentSize int     `yaml:"tournament_size"`
	CrossoverRate  float64 `yaml:"crossover_rate"`
	MutationRate   float64 `yaml:"mutation_rate"`
	MutationSwaps  int     `yaml:"mutation_swaps"`

	Workers int `yaml:"workers"`

	LocalSearch      bool   `yaml:"local_search"`
	LocalSearchIters int    `yaml:"local_search_iters"`
	Acceptance       string `yaml:"acceptance"` // hillclimb | anneal
}

type TS struct {
	Iterations       int `yaml:"iterations"`
	IterationsPerOp  int `yaml:"iterations_per_op"`
	TabuTenure       int `yaml:"tabu_tenure"`
	TabuTenureRand   int `yaml:"tabu_tenure_rand"`
	NeighborsPerIter int `yaml:"neighbors_per_iter"`
}

func Default() Run {
	gaCfg := ga.DefaultConfig()
	tsCfg := ts.DefaultConfig()
	return Run{
		Seed:      1,
		Algorithm: "GA",
		GA: GA{
			Population:  gaCfg.Population,
			Generations: gaCfg.Generations,
			Stagnation:  gaCfg.Stagnation,

			Elite:          gaCfg.Elite,
			TournamentSize: gaCfg.TournamentSize,
			CrossoverRate:  gaCfg.CrossoverRate,
			MutationRate:   gaCfg.MutationRate,
			MutationSwaps:  gaCfg.MutationSwaps,

			Workers: gaCfg.Workers,

			LocalSearch:      gaCfg.LocalSearch,
			LocalSearchIters: gaCfg.LocalSearchIters,
			Acceptance:       string(localsearch.AcceptHillClimb),
		},
		TS: TS{
			Iterations:       tsCfg.Iterations,
			IterationsPerOp:  tsCfg.IterationsPerOp,
			TabuTenure:       tsCfg.TabuTenure,
			TabuTenureRand:   tsCfg.TabuTenureRand,
			NeighborsPerIter: tsCfg.NeighborsPerIter,
		},
	}
}

// Parse overlays the YAML document onto the defaults.
func Parse(data []byte) (Run, error) {
	r := Default()
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Run{}, fmt.Errorf("parse run config: %w", err)
	}
	return r, nil
}

func Load(path string) (Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Run{}, err
	}
	return Parse(data)
}

// GAConfig maps the file onto the GA solver configuration.
func (r Run) GAConfig() (ga.Config, error) {
	cfg := ga.Config{
		Population:  r.GA.Population,
		Generations: r.GA.Generations,
		Stagnation:  r.GA.Stagnation,

		Elite:          r.GA.Elite,
		TournamentSize: r.GA.TournamentSize,
		CrossoverRate:  r.GA.CrossoverRate,
		MutationRate:   r.GA.MutationRate,
		MutationSwaps:  r.GA.MutationSwaps,

		Workers: r.GA.Workers,

		LocalSearch:           r.GA.LocalSearch,
		LocalSearchIters:      r.GA.LocalSearchIters,
		LocalSearchAcceptance: localsearch.Acceptance(r.GA.Acceptance),
	}
	if r.GA.TimeBudget != "" {
		d, err := time.ParseDuration(r.GA.TimeBudget)
		if err != nil {
			return ga.Config{}, fmt.Errorf("ga.time_budget: %w", err)
		}
		cfg.TimeBudget = d
	}
	return cfg, cfg.Validate()
}

// TSConfig maps the file onto the tabu search configuration.
func (r Run) TSConfig() (ts.Config, error) {
	cfg := ts.Config{
		Iterations:       r.TS.Iterations,
		IterationsPerOp:  r.TS.IterationsPerOp,
		TabuTenure:       r.TS.TabuTenure,
		TabuTenureRand:   r.TS.TabuTenureRand,
		NeighborsPerIter: r.TS.NeighborsPerIter,
	}
	return cfg, cfg.Validate()
}

func (r Run) Validate() error {
	switch r.Algorithm {
	case "GA", "TS":
	default:
		return fmt.Errorf("unknown algorithm %q (want GA or TS)", r.Algorithm)
	}
	if _, err := r.GAConfig(); err != nil {
		return err
	}
	if _, err := r.TSConfig(); err != nil {
		return err
	}
	return nil
}
