package ga

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"jobShop/internal/jobshop"
	"jobShop/internal/localsearch"
	"jobShop/internal/opt"
)

// infeasibleCost назначается особям с циклическим дизъюнктивным
// графом: такие особи проигрывают отбор, но не отбрасываются.
const infeasibleCost = int(^uint(0) >> 1)

// candidate — хромосома: расписание с кэшем значения целевой функции.
// Кэш сбрасывается при любом изменении перестановок и пересчитывается
// оценщиком перед следующим чтением.
type candidate struct {
	sched    *jobshop.Schedule
	cost     int
	feasible bool
	valid    bool
}

// Solver — реализация генетического алгоритма для job-shop задачи.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый GA-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
// Используется в фабриках.
func New(cfg Config, rng *rand.Rand) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	return &Solver{Cfg: cfg, Rng: rng}, nil
}

// Solve — основной цикл поиска: оценка поколения (параллельно, с
// барьером), обновление лучшего решения, отбор, кроссовер, мутация и
// необязательное локальное улучшение элиты. Условия остановки
// проверяются только на границе поколения.
func (s *Solver) Solve(ctx context.Context, inst *jobshop.Instance) (opt.Result, error) {
	start := time.Now()

	if inst == nil {
		return opt.Result{}, fmt.Errorf("экземпляр задачи не инициализирован (nil)")
	}
	if err := s.Cfg.Validate(); err != nil {
		return opt.Result{}, err
	}
	if s.Rng == nil {
		return opt.Result{}, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}

	popSize := s.Cfg.Population

	workers := s.Cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > popSize {
		workers = popSize
	}

	// Каждый поток оценки владеет собственным оценщиком; модель
	// задачи неизменяема и разделяется без синхронизации.
	evaluators := make([]*jobshop.Evaluator, workers)
	for i := range evaluators {
		evaluators[i] = jobshop.NewEvaluator(inst)
	}

	newPop := func() []*candidate {
		pop := make([]*candidate, popSize)
		for i := range pop {
			pop[i] = &candidate{sched: jobshop.NewSchedule(inst), cost: infeasibleCost}
		}
		return pop
	}

	// Две популяции: текущая (A) и следующая (B)
	popA := newPop()
	popB := newPop()

	// Инициализация: особь с порядком по работам (всегда выполнима),
	// особь по правилу SPT, остальные — случайные порядки машин.
	popA[1].sched = sptSchedule(inst)
	for i := 2; i < popSize; i++ {
		shuffleMachineOrders(popA[i].sched, s.Rng)
	}

	var refiner *localsearch.Refiner
	if s.Cfg.LocalSearch {
		lsCfg := localsearch.DefaultConfig()
		lsCfg.Iterations = s.Cfg.LocalSearchIters
		if s.Cfg.LocalSearchAcceptance != "" {
			lsCfg.Acceptance = s.Cfg.LocalSearchAcceptance
		}
		var err error
		refiner, err = localsearch.New(lsCfg, s.Rng)
		if err != nil {
			return opt.Result{}, err
		}
	}

	// Машины, на которых возможен смежный обмен
	var eligible []int
	maxMachineOps := 0
	for m := 0; m < inst.NumMachines(); m++ {
		n := len(inst.MachineOps(m))
		if n >= 2 {
			eligible = append(eligible, m)
		}
		if n > maxMachineOps {
			maxMachineOps = n
		}
	}

	// Буферы кроссовера: mark и stamp отмечают уже включённые операции
	c1buf := make([]jobshop.OpID, maxMachineOps)
	c2buf := make([]jobshop.OpID, maxMachineOps)
	mark := make([]int, inst.NumOps())
	stamp := 1

	scratch := &candidate{sched: jobshop.NewSchedule(inst)}

	// Слот лучшего решения: заменяется только при строгом улучшении,
	// поэтому среди равных сохраняется найденное первым.
	best := jobshop.NewSchedule(inst)
	bestCost := infeasibleCost

	idxs := make([]int, popSize)
	costs := make([]int, popSize)

	evals := 0
	sinceImproved := 0
	gen := 0
	stopReason := ""
	var stopErr error

	for {
		// Оценка поколения: параллельно, барьер — errgroup.Wait
		evals += s.evaluatePop(popA, evaluators, workers)

		// Обновление лучшего решения (только строгое улучшение)
		improved := false
		for _, c := range popA {
			if c.feasible && c.cost < bestCost {
				bestCost = c.cost
				copySequences(best, c.sched)
				improved = true
			}
		}
		if improved {
			sinceImproved = 0
		} else {
			sinceImproved++
		}

		// Условия остановки — только на границе поколения
		if err := ctx.Err(); err != nil {
			stopReason = "context"
			stopErr = err
			break
		}
		if gen >= s.Cfg.Generations {
			stopReason = "generations"
			break
		}
		if s.Cfg.TimeBudget > 0 && time.Since(start) >= s.Cfg.TimeBudget {
			stopReason = "time"
			break
		}
		if s.Cfg.Stagnation > 0 && sinceImproved >= s.Cfg.Stagnation {
			stopReason = "stagnation"
			break
		}

		// Отбор: сортировка индексов по значению целевой функции,
		// при равенстве — по позиции (детерминированность запусков)
		for i := range idxs {
			idxs[i] = i
			costs[i] = popA[i].cost
		}
		sort.Slice(idxs, func(i, j int) bool {
			if costs[idxs[i]] != costs[idxs[j]] {
				return costs[idxs[i]] < costs[idxs[j]]
			}
			return idxs[i] < idxs[j]
		})

		write := 0

		// Элитизм (переносим лучших особей без изменений)
		for e := 0; e < s.Cfg.Elite; e++ {
			src := popA[idxs[e]]
			dst := popB[write]
			copySequences(dst.sched, src.sched)
			dst.cost, dst.feasible, dst.valid = src.cost, src.feasible, src.valid
			write++
		}

		// Генерация остальных особей нового поколения
		for write < popSize {
			// Турнирный отбор
			p1 := tournamentSelect(costs, s.Cfg.TournamentSize, s.Rng)
			p2 := tournamentSelect(costs, s.Cfg.TournamentSize, s.Rng)
			for p2 == p1 {
				p2 = tournamentSelect(costs, s.Cfg.TournamentSize, s.Rng)
			}

			child1 := popB[write]
			hasSecond := write+1 < popSize
			child2 := scratch
			if hasSecond {
				child2 = popB[write+1]
			}

			// Кроссовер
			if s.Rng.Float64() < s.Cfg.CrossoverRate {
				s.crossover(child1, child2, popA[p1], popA[p2], c1buf, c2buf, mark, &stamp)
			} else {
				copyCandidate(child1, popA[p1])
				copyCandidate(child2, popA[p2])
			}

			// Мутация
			if s.Rng.Float64() < s.Cfg.MutationRate {
				mutateSwaps(child1.sched, s.Cfg.MutationSwaps, eligible, s.Rng)
				child1.valid = false
			}
			if hasSecond && s.Rng.Float64() < s.Cfg.MutationRate {
				mutateSwaps(child2.sched, s.Cfg.MutationSwaps, eligible, s.Rng)
				child2.valid = false
			}

			write++
			if hasSecond {
				write++
			}
		}

		// Локальное улучшение элитных особей перед следующей оценкой
		if refiner != nil {
			for e := 0; e < s.Cfg.Elite; e++ {
				c := popB[e]
				if !c.valid || !c.feasible {
					continue
				}
				ms, n, err := refiner.Improve(ctx, evaluators[0], c.sched)
				evals += n
				if err != nil {
					// Отмена контекста: зафиксируется на границе поколения
					break
				}
				c.cost = ms
			}
		}

		// Смена поколений
		popA, popB = popB, popA
		gen++
	}

	res := ToOptResult(best, bestCost, evals, gen, map[string]any{
		"population":   s.Cfg.Population,
		"generations":  s.Cfg.Generations,
		"elite":        s.Cfg.Elite,
		"workers":      workers,
		"local_search": s.Cfg.LocalSearch,
		"stopped":      stopReason,
	})
	res.Duration = time.Since(start)
	return res, stopErr
}

// evaluatePop пересчитывает кэш целевой функции у всех особей без
// актуального кэша. Популяция распределяется по потокам с шагом
// workers; каждая особь принадлежит ровно одному потоку, поэтому
// синхронизация не нужна. Wait — барьер поколения.
func (s *Solver) evaluatePop(pop []*candidate, evaluators []*jobshop.Evaluator, workers int) int {
	todo := 0
	for _, c := range pop {
		if !c.valid {
			todo++
		}
	}
	if todo == 0 {
		return 0
	}

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		ev := evaluators[w]
		first := w
		g.Go(func() error {
			for i := first; i < len(pop); i += workers {
				c := pop[i]
				if c.valid {
					continue
				}
				if ms, ok := ev.Makespan(c.sched); ok {
					c.cost, c.feasible = ms, true
				} else {
					c.cost, c.feasible = infeasibleCost, false
				}
				c.valid = true
			}
			return nil
		})
	}
	_ = g.Wait()
	return todo
}

// crossover применяет Order Crossover к порядку каждой машины обоих
// родителей. По построению потомки всегда остаются корректными
// перестановками; нарушение этого инварианта — фатальная ошибка
// программирования, а не исход поиска.
func (s *Solver) crossover(child1, child2, parent1, parent2 *candidate, c1buf, c2buf []jobshop.OpID, mark []int, stamp *int) {
	inst := child1.sched.Instance()
	for m := 0; m < inst.NumMachines(); m++ {
		p1q := parent1.sched.MachineSequence(m)
		n := len(p1q)
		if n == 0 {
			continue
		}
		orderCrossoverOX(
			p1q,
			parent2.sched.MachineSequence(m),
			c1buf[:n],
			c2buf[:n],
			s.Rng,
			mark,
			stamp,
		)
		mustSetSequence(child1.sched, m, c1buf[:n])
		mustSetSequence(child2.sched, m, c2buf[:n])
	}
	child1.valid = false
	child2.valid = false
}

// copyCandidate переносит расписание и кэш оценки из src в dst.
func copyCandidate(dst, src *candidate) {
	copySequences(dst.sched, src.sched)
	dst.cost, dst.feasible, dst.valid = src.cost, src.feasible, src.valid
}
