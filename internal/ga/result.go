package ga

import (
	"jobShop/internal/jobshop"
	"jobShop/internal/opt"
)

func ToOptResult(best *jobshop.Schedule, bestMakespan, evals, gens int, meta map[string]any) opt.Result {
	return opt.Result{
		Schedule:    best.Clone(),
		Makespan:    bestMakespan,
		Evaluations: evals,
		Iterations:  gens,
		Meta:        meta,
	}
}
