package ts

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"jobShop/internal/jobshop"
	"jobShop/internal/neighborhood"
	"jobShop/internal/opt"
)

// maxInt используется как бесконечность для стоимостей.
const maxInt = int(^uint(0) >> 1)

// Solver - структура реализации табу-поиска по смежным обменам
// в порядках машин.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый TS-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

// Solve — основной цикл алгоритма
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

	// Оценка целевой функции
	eval := jobshop.NewEvaluator(inst)

	maxIter := s.Cfg.Iterations
	if maxIter <= 0 {
		maxIter = s.Cfg.IterationsPerOp * inst.NumOps()
	}

	// Начальное решение: порядок по работам, всегда выполнимый
	curr := jobshop.NewSchedule(inst)
	currCost, ok := eval.Makespan(curr)
	if !ok {
		return opt.Result{}, fmt.Errorf("начальное расписание невыполнимо")
	}
	evals := 1

	// Глобально лучшее решение
	best := curr.Clone()
	bestCost := currCost

	// Машины, на которых возможен смежный обмен
	var eligible []int
	for m := 0; m < inst.NumMachines(); m++ {
		if len(inst.MachineOps(m)) >= 2 {
			eligible = append(eligible, m)
		}
	}
	if len(eligible) == 0 {
		return opt.Result{
			Schedule:    best,
			Makespan:    bestCost,
			Evaluations: evals,
			Iterations:  0,
			Duration:    time.Since(start),
			Meta:        map[string]any{"stopped": "no_moves"},
		}, nil
	}

	// Табу-список - кольцевой буфер с мапой
	// Ёмкость выбирается с запасом относительно длины табу
	tabu := newTabuList(max(32, (s.Cfg.TabuTenure+s.Cfg.TabuTenureRand)*4))

	neighbors := s.Cfg.NeighborsPerIter

	for iter := 0; iter < maxIter; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			return opt.Result{
				Schedule:    best,
				Makespan:    bestCost,
				Evaluations: evals,
				Iterations:  iter,
				Duration:    time.Since(start),
				Meta: map[string]any{
					"stopped": "context",
				},
			}, err
		}

		// Лучший допустимый ход
		bestMove := neighborhood.Move{Machine: -1}
		bestMoveCost := maxInt
		var bestMoveA, bestMoveB jobshop.OpID

		// Запасной ход (лучший без учёта табу),
		// используется если все допустимые ходы табуированы
		fallbackMove := neighborhood.Move{Machine: -1}
		fallbackCost := maxInt
		var fallbackA, fallbackB jobshop.OpID

		// Итерация по случайно выбранным смежным обменам
		for k := 0; k < neighbors; k++ {
			m := eligible[s.Rng.Intn(len(eligible))]
			q := curr.MachineSequence(m)
			pos := s.Rng.Intn(len(q) - 1)
			a, b := q[pos], q[pos+1]
			mv := neighborhood.Move{Machine: m, Pos: pos}

			// Оценка соседнего решения: применяем ход и откатываем
			mv.Apply(curr)
			cost, feasible := eval.Makespan(curr)
			mv.Apply(curr)
			evals++

			if !feasible {
				// Циклический граф: ход не рассматривается
				continue
			}

			// Обновление запасного хода
			if cost < fallbackCost {
				fallbackCost = cost
				fallbackMove = mv
				fallbackA, fallbackB = a, b
			}

			isTabu := tabu.IsTabu(moveKey(a, b), iter)
			aspiration := cost < bestCost // критерий аспирации

			// Табуированный ход пропускается,
			// если не выполняется критерий аспирации
			if isTabu && !aspiration {
				continue
			}

			if cost < bestMoveCost {
				bestMoveCost = cost
				bestMove = mv
				bestMoveA, bestMoveB = a, b
			}
		}

		// Выбор хода: сначала допустимый лучший
		chosen := bestMove
		chosenCost := bestMoveCost
		chosenA, chosenB := bestMoveA, bestMoveB

		if chosen.Machine < 0 {
			chosen = fallbackMove
			chosenCost = fallbackCost
			chosenA, chosenB = fallbackA, fallbackB
		}

		// Нет допустимых ходов — завершаем поиск
		if chosen.Machine < 0 {
			break
		}

		// Применение выбранного хода
		chosen.Apply(curr)
		currCost = chosenCost

		// Добавление обратного хода в табу-список
		tenure := s.Cfg.TabuTenure
		if s.Cfg.TabuTenureRand > 0 {
			tenure += s.Rng.Intn(s.Cfg.TabuTenureRand + 1)
		}
		tabu.Add(moveKey(chosenB, chosenA), iter+tenure)

		// Обновление глобально лучшего решения
		if currCost < bestCost {
			bestCost = currCost
			best = curr.Clone()
		}
	}

	return opt.Result{
		Schedule:    best,
		Makespan:    bestCost,
		Evaluations: evals,
		Iterations:  maxIter,
		Duration:    time.Since(start),
		Meta: map[string]any{
			"tabu_tenure":        s.Cfg.TabuTenure,
			"tabu_tenure_rand":   s.Cfg.TabuTenureRand,
			"neighbors_per_iter": s.Cfg.NeighborsPerIter,
		},
	}, nil
}

// tabuList — структура табу-списка.
// Реализована как кольцевой буфер фиксированного размера
// с map для быстрой проверки табуированности.
type tabuList struct {
	m   map[uint64]int // ключ → итерация истечения табу
	key []uint64       // кольцевой буфер ключей
	exp []int          // соответствующие сроки истечения
	i   int            // текущая позиция в кольце
}

// newTabuList создаёт табу-список заданной ёмкости.
func newTabuList(capacity int) *tabuList {
	if capacity < 8 {
		capacity = 8
	}
	return &tabuList{
		m:   make(map[uint64]int, capacity*2),
		key: make([]uint64, capacity),
		exp: make([]int, capacity),
		i:   0,
	}
}

// IsTabu проверяет, является ли ход табуированным на текущей итерации.
func (t *tabuList) IsTabu(k uint64, iter int) bool {
	if exp, ok := t.m[k]; ok && exp > iter {
		return true
	}
	return false
}

// Add добавляет новый табу-ход с указанием итерации истечения.
func (t *tabuList) Add(k uint64, expiry int) {
	// Удаление старого элемента из кольцевого буфера
	oldK := t.key[t.i]
	oldExp := t.exp[t.i]
	if oldK != 0 {
		if curExp, ok := t.m[oldK]; ok && curExp == oldExp {
			delete(t.m, oldK)
		}
	}

	t.key[t.i] = k
	t.exp[t.i] = expiry
	t.m[k] = expiry

	t.i++
	if t.i >= len(t.key) {
		t.i = 0
	}
}

// moveKey формирует уникальный ключ смежного обмена пары операций.
func moveKey(a, b jobshop.OpID) uint64 {
	return (uint64(uint32(a)) << 32) | uint64(uint32(b))
}

// max возвращает максимум из двух целых чисел.
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
