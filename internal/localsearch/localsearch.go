package localsearch

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"jobShop/internal/jobshop"
	"jobShop/internal/neighborhood"
)

// Refiner — локальное улучшение расписания в пределах заданного
// бюджета итераций. По умолчанию — локальный подъём (hill climbing);
// имитация отжига включается явно через конфигурацию.
type Refiner struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый Refiner с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
// Используется в фабриках.
func New(cfg Config, rng *rand.Rand) (*Refiner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	return &Refiner{Cfg: cfg, Rng: rng}, nil
}

// Improve улучшает расписание на месте и возвращает итоговый makespan
// и число вычислений целевой функции. Результат никогда не хуже
// исходного расписания: при отжиге лучшее найденное решение
// восстанавливается перед возвратом.
func (r *Refiner) Improve(ctx context.Context, eval *jobshop.Evaluator, s *jobshop.Schedule) (int, int, error) {
	if eval == nil {
		return 0, 0, fmt.Errorf("оценщик не инициализирован (nil)")
	}
	t, ok := eval.Evaluate(s)
	if !ok {
		return 0, 1, fmt.Errorf("расписание невыполнимо: циклический дизъюнктивный граф")
	}

	switch r.Cfg.Acceptance {
	case AcceptAnneal:
		return r.anneal(ctx, eval, s, t.Makespan())
	default:
		return r.hillClimb(ctx, eval, s, t)
	}
}

// hillClimb — подъём с первым улучшением: после каждого принятого
// хода итерация ходов перезапускается от нового расписания.
// Останавливается по бюджету итераций или в локальном оптимуме
// (полный проход без улучшения).
func (r *Refiner) hillClimb(ctx context.Context, eval *jobshop.Evaluator, s *jobshop.Schedule, t jobshop.Timing) (int, int, error) {
	cur := t.Makespan()
	evals := 1
	iters := 0

	for iters < r.Cfg.Iterations {
		if err := ctx.Err(); err != nil {
			return cur, evals, err
		}

		improved := false
		it := r.iterator(s, t)
		for {
			mv, more := it.Next()
			if !more || iters >= r.Cfg.Iterations {
				break
			}
			iters++

			mv.Apply(s)
			ms, feasible := eval.Makespan(s)
			evals++
			if feasible && ms < cur {
				cur = ms
				improved = true
				// Пересчёт критического пути от нового расписания
				t, _ = eval.Evaluate(s)
				evals++
				break
			}
			// Откат: повторный обмен той же пары
			mv.Apply(s)
		}

		if !improved {
			// Локальный оптимум
			break
		}
	}
	return cur, evals, nil
}

// anneal — вероятностное принятие по критерию Метрополиса с
// геометрическим охлаждением. Ходы выбираются случайно среди всех
// смежных пар.
func (r *Refiner) anneal(ctx context.Context, eval *jobshop.Evaluator, s *jobshop.Schedule, cur int) (int, int, error) {
	inst := s.Instance()

	// Машины, на которых есть хотя бы одна смежная пара
	var eligible []int
	for m := 0; m < inst.NumMachines(); m++ {
		if len(inst.MachineOps(m)) >= 2 {
			eligible = append(eligible, m)
		}
	}
	if len(eligible) == 0 {
		return cur, 1, nil
	}

	best := s.Clone()
	bestCost := cur
	evals := 1
	T := r.Cfg.InitialTemp

	for iter := 0; iter < r.Cfg.Iterations && T > r.Cfg.FinalTemp; iter++ {
		if err := ctx.Err(); err != nil {
			restore(s, best)
			return bestCost, evals, err
		}

		m := eligible[r.Rng.Intn(len(eligible))]
		q := s.MachineSequence(m)
		mv := neighborhood.Move{Machine: m, Pos: r.Rng.Intn(len(q) - 1)}

		mv.Apply(s)
		ms, feasible := eval.Makespan(s)
		evals++

		accept := false
		if feasible {
			delta := ms - cur
			if delta <= 0 {
				// Улучшающее решение принимаем всегда
				accept = true
			} else {
				p := math.Exp(-float64(delta) / T)
				if r.Rng.Float64() < p {
					accept = true
				}
			}
		}

		if accept {
			cur = ms
			if cur < bestCost {
				bestCost = cur
				best = s.Clone()
			}
		} else {
			mv.Apply(s)
		}

		// Охлаждение температуры
		T *= r.Cfg.Alpha
	}

	restore(s, best)
	return bestCost, evals, nil
}

func (r *Refiner) iterator(s *jobshop.Schedule, t jobshop.Timing) *neighborhood.Iterator {
	if r.Cfg.Moves == MovesAll {
		return neighborhood.All(s)
	}
	return neighborhood.Critical(s, t)
}

// restore переносит порядок машин из src в dst.
func restore(dst, src *jobshop.Schedule) {
	inst := dst.Instance()
	for m := 0; m < inst.NumMachines(); m++ {
		if err := dst.SetMachineSequence(m, src.MachineSequence(m)); err != nil {
			panic(err)
		}
	}
}
