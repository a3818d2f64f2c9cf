package main

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"jobShop/internal/config"
	"jobShop/internal/ga"
	"jobShop/internal/jobshop"
	"jobShop/internal/opt"
	"jobShop/internal/ts"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Faint(true)
	valueStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

func newSolveCmd() *cobra.Command {
	var (
		instancePath string
		configPath   string
		algo         string
		seed         int64
		showTimeline bool
	)

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Поиск расписания для экземпляра задачи",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCfg := config.Default()
			if configPath != "" {
				var err error
				runCfg, err = config.Load(configPath)
				if err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("seed") {
				runCfg.Seed = seed
			}
			if cmd.Flags().Changed("algo") {
				runCfg.Algorithm = algo
			}
			if err := runCfg.Validate(); err != nil {
				return err
			}

			inst, err := jobshop.LoadInstance(instancePath)
			if err != nil {
				return err
			}

			rng := rand.New(rand.NewSource(runCfg.Seed))
			var solver opt.Optimizer
			switch runCfg.Algorithm {
			case "GA":
				cfg, err := runCfg.GAConfig()
				if err != nil {
					return err
				}
				solver, err = ga.New(cfg, rng)
				if err != nil {
					return err
				}
			case "TS":
				cfg, err := runCfg.TSConfig()
				if err != nil {
					return err
				}
				solver, err = ts.New(cfg, rng)
				if err != nil {
					return err
				}
			}

			res, err := solver.Solve(cmd.Context(), inst)
			if err != nil {
				return err
			}

			// Производные времена пересчитываются из перестановок
			eval := jobshop.NewEvaluator(inst)
			timing, ok := eval.Evaluate(res.Schedule)
			if !ok {
				return fmt.Errorf("итоговое расписание невыполнимо")
			}

			printSummary(cmd, runCfg.Algorithm, inst, res)
			if showTimeline {
				printTimeline(cmd, timing)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&instancePath, "instance", "i", "", "путь к файлу экземпляра задачи")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "путь к YAML-файлу конфигурации запуска")
	cmd.Flags().StringVar(&algo, "algo", "GA", "алгоритм: GA | TS")
	cmd.Flags().Int64Var(&seed, "seed", 1, "сид генератора случайных чисел (фиксированный сид — воспроизводимый запуск)")
	cmd.Flags().BoolVar(&showTimeline, "timeline", false, "вывести расписание по машинам")
	_ = cmd.MarkFlagRequired("instance")

	return cmd
}

func printSummary(cmd *cobra.Command, algo string, inst *jobshop.Instance, res opt.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf(
		"%s: %d работ, %d машин, %d операций",
		algo, inst.NumJobs(), inst.NumMachines(), inst.NumOps(),
	)))
	fmt.Fprintf(out, "%s %s\n",
		labelStyle.Render("makespan:"),
		valueStyle.Render(fmt.Sprintf("%d", res.Makespan)),
	)
	fmt.Fprintf(out, "%s %d | %s %d | %s %v\n",
		labelStyle.Render("оценок:"), res.Evaluations,
		labelStyle.Render("итераций:"), res.Iterations,
		labelStyle.Render("время:"), res.Duration,
	)
	if stopped, ok := res.Meta["stopped"].(string); ok && stopped != "" {
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("остановка:"), stopped)
	}
}

func printTimeline(cmd *cobra.Command, timing jobshop.Timing) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render("Расписание:"))
	machine := -1
	for _, e := range timing.Timeline() {
		if e.Machine != machine {
			machine = e.Machine
			fmt.Fprintln(out, labelStyle.Render(fmt.Sprintf("M%d", machine)))
		}
		fmt.Fprintf(out, "  J%d.%d  [%d, %d)\n", e.Job, e.Op, e.Start, e.End)
	}
}
