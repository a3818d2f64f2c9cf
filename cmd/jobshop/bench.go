package main

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"jobShop/internal/bench"
	"jobShop/internal/ga"
	"jobShop/internal/opt"
	"jobShop/internal/ts"
)

// Фабрики

func newGAFactory(cfg ga.Config) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, _ := ga.New(cfg, rand.New(rand.NewSource(seed)))
		return solver
	}
}

func newTSFactory(cfg ts.Config) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, _ := ts.New(cfg, rand.New(rand.NewSource(seed)))
		return solver
	}
}

func newBenchCmd() *cobra.Command {
	var (
		out          string
		pairs        string
		algos        string
		runs         int
		baseSeed     int64
		instanceSeed int64
		perRunTO     time.Duration

		// --- Генетический алгоритм ---
		gaPop     int
		gaGen     int
		gaElite   int
		gaTour    int
		gaCx      float64
		gaMut     float64
		gaSwaps   int
		gaWorkers int
		gaLS      bool
		gaLSIters int

		// --- Табу-поиск ---
		tsIterPerOp  int
		tsIter       int
		tsTenure     int
		tsTenureRand int
		tsNeighbors  int
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Сравнение алгоритмов на случайных экземплярах",
		RunE: func(cmd *cobra.Command, args []string) error {
			cases, err := parsePairs(pairs, instanceSeed)
			if err != nil {
				return err
			}

			gaCfg := ga.Config{
				Population:     gaPop,
				Generations:    gaGen,
				Elite:          gaElite,
				TournamentSize: gaTour,
				CrossoverRate:  gaCx,
				MutationRate:   gaMut,
				MutationSwaps:  gaSwaps,
				Workers:        gaWorkers,

				LocalSearch:      gaLS,
				LocalSearchIters: gaLSIters,
			}
			if err := gaCfg.Validate(); err != nil {
				return fmt.Errorf("конфигурация генетического алгоритма: %w", err)
			}

			tsCfg := ts.Config{
				Iterations:       tsIter,
				IterationsPerOp:  tsIterPerOp,
				TabuTenure:       tsTenure,
				TabuTenureRand:   tsTenureRand,
				NeighborsPerIter: tsNeighbors,
			}
			if err := tsCfg.Validate(); err != nil {
				return fmt.Errorf("конфигурация табу-поиска: %w", err)
			}

			available := map[string]bench.Algorithm{
				"GA": {Name: "GA", Factory: newGAFactory(gaCfg)},
				"TS": {Name: "TS", Factory: newTSFactory(tsCfg)},
			}

			var selected []bench.Algorithm
			for _, a := range splitCSV(algos) {
				al, ok := available[a]
				if !ok {
					return fmt.Errorf("алгоритм не предоставлен в программе %q; доступные: %v", a, keys(available))
				}
				selected = append(selected, al)
			}

			runner := bench.Runner{
				Runs:          runs,
				BaseSeed:      baseSeed,
				PerRunTimeout: perRunTO,
			}

			var records []bench.Record
			for _, c := range cases {
				for _, a := range selected {
					fmt.Printf("Запущен алгоритм %s; %d работ %d машин (общее кол-во запусков=%d)...\n", a.Name, c.Jobs, c.Machines, runner.Runs)

					rec, err := runner.RunCase(cmd.Context(), c, a)
					if err != nil {
						return err
					}
					records = append(records, rec)

					fmt.Printf("  Значение целевой функции: лучшее=%d среднее=%.2f стандартное отклонение=%.2f | Время: среднее=%.2fms среднее отклонение=%.2fms\n",
						rec.MakespanBest, rec.MakespanMean, rec.MakespanStd,
						rec.TimeMeanMs, rec.TimeStdMs,
					)
				}
			}

			if err := bench.WriteCSV(out, records); err != nil {
				return fmt.Errorf("ошибка при записи в CSV: %w", err)
			}
			fmt.Fprintln(os.Stdout, "Saved:", out)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&out, "out", "artifacts/results.csv", "путь к выходному CSV-файлу")
	f.StringVar(&pairs, "pairs", "10x5,20x10,30x10", "конфигурации: количество работ Х количество машин (через запятую)")
	f.StringVar(&algos, "algos", "GA,TS", "список алгоритмов: GA, TS (через запятую)")
	f.IntVar(&runs, "runs", 30, "количество запусков каждого алгоритма (с разными сидами)")
	f.Int64Var(&baseSeed, "seed", 1000, "базовый сид для запусков алгоритмов")
	f.Int64Var(&instanceSeed, "instance_seed", 777, "базовый сид для генерации экземпляров задачи (фиксирован для конфигурации)")
	f.DurationVar(&perRunTO, "per_run_timeout", 0, "таймаут одного запуска; 0 — без ограничения")

	f.IntVar(&gaPop, "ga_pop", 120, "размер популяции")
	f.IntVar(&gaGen, "ga_gen", 300, "количество поколений")
	f.IntVar(&gaElite, "ga_elite", 4, "размер элиты (количество лучших особей)")
	f.IntVar(&gaTour, "ga_tour", 5, "размер турнирной выборки")
	f.Float64Var(&gaCx, "ga_cx", 0.90, "вероятность применения кроссовера")
	f.Float64Var(&gaMut, "ga_mut", 0.20, "вероятность мутации")
	f.IntVar(&gaSwaps, "ga_swaps", 2, "число смежных обменов на одну мутацию")
	f.IntVar(&gaWorkers, "ga_workers", 0, "число потоков оценки (0 — по числу CPU)")
	f.BoolVar(&gaLS, "ga_ls", false, "локальное улучшение элитных особей")
	f.IntVar(&gaLSIters, "ga_ls_iters", 400, "бюджет итераций локального поиска")

	f.IntVar(&tsIterPerOp, "ts_iter_per_op", 40, "количество итераций на одну операцию (используется, если ts_iter == 0)")
	f.IntVar(&tsIter, "ts_iter", 0, "общее количество итераций (0 => ts_iter_per_op × nOps)")
	f.IntVar(&tsTenure, "ts_tenure", 7, "длина табу-списка (в итерациях)")
	f.IntVar(&tsTenureRand, "ts_tenure_rand", 3, "случайное добавление к сроку табу [0..rand]")
	f.IntVar(&tsNeighbors, "ts_neighbors", 60, "количество рассматриваемых соседей на итерацию")

	return cmd
}

// helpers

func parsePairs(s string, baseInstanceSeed int64) ([]bench.Case, error) {
	parts := splitCSV(s)
	cases := make([]bench.Case, 0, len(parts))

	for i, p := range parts {
		jm := strings.Split(p, "x")
		if len(jm) != 2 {
			return nil, fmt.Errorf("пара %q невалидной схемы, пример: 20x10", p)
		}
		jobs, err := atoiStrict(jm[0])
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества работ: %w", p, err)
		}
		machines, err := atoiStrict(jm[1])
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества машин: %w", p, err)
		}
		if jobs <= 0 || machines <= 0 {
			return nil, fmt.Errorf("пара %q: количество работ и машин должно быть > 0", p)
		}

		seed := baseInstanceSeed + int64(i)*10_000 + int64(jobs)*100 + int64(machines)

		cases = append(cases, bench.Case{
			Jobs:         jobs,
			Machines:     machines,
			InstanceSeed: seed,
		})
	}

	return cases, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiStrict(s string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func keys(m map[string]bench.Algorithm) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
