package ga

import (
	"math/rand"
	"sort"

	"jobShop/internal/jobshop"
)

// identitySchedule строит расписание с порядком операций по работам.
// Такой порядок всегда выполним и гарантирует, что в начальной
// популяции есть хотя бы одна выполнимая особь.
func identitySchedule(inst *jobshop.Instance) *jobshop.Schedule {
	return jobshop.NewSchedule(inst)
}

// sptSchedule строит расписание по приоритетному правилу
// "кратчайшее время обработки первым" (SPT) на каждой машине.
func sptSchedule(inst *jobshop.Instance) *jobshop.Schedule {
	s := jobshop.NewSchedule(inst)
	for m := 0; m < inst.NumMachines(); m++ {
		q := append([]jobshop.OpID(nil), inst.MachineOps(m)...)
		sort.Slice(q, func(i, j int) bool {
			di := inst.Op(q[i]).Duration
			dj := inst.Op(q[j]).Duration
			if di != dj {
				return di < dj
			}
			return q[i] < q[j]
		})
		mustSetSequence(s, m, q)
	}
	return s
}

// shuffleMachineOrders выполняет случайную перестановку порядка
// операций на каждой машине.
func shuffleMachineOrders(s *jobshop.Schedule, rng *rand.Rand) {
	inst := s.Instance()
	for m := 0; m < inst.NumMachines(); m++ {
		q := append([]jobshop.OpID(nil), s.MachineSequence(m)...)
		for i := len(q) - 1; i > 0; i-- {
			j := rng.Intn(i + 1)
			q[i], q[j] = q[j], q[i]
		}
		mustSetSequence(s, m, q)
	}
}

// tournamentSelect реализует турнирный отбор.
// Возвращается индекс особи с наилучшим значением целевой функции.
func tournamentSelect(costs []int, tournamentSize int, rng *rand.Rand) int {
	best := rng.Intn(len(costs))
	bestCost := costs[best]
	for i := 1; i < tournamentSize; i++ {
		cand := rng.Intn(len(costs))
		if costs[cand] < bestCost {
			best = cand
			bestCost = costs[cand]
		}
	}
	return best
}

// orderCrossoverOX реализует оператор Order Crossover для порядка
// операций одной машины. Потомок наследует непрерывный сегмент
// первого родителя, остальные позиции заполняются генами второго
// родителя с пропуском уже размещённых операций, поэтому результат
// всегда остаётся корректной перестановкой.
func orderCrossoverOX(
	p1, p2, c1, c2 []jobshop.OpID,
	rng *rand.Rand,
	mark []int,
	stamp *int,
) {
	n := len(p1)

	// Выбор случайного отрезка [a, b)
	a := rng.Intn(n)
	b := rng.Intn(n)
	if a > b {
		a, b = b, a
	}
	if a == b {
		// Чтобы длина сегмента не была 0
		b = (a + 1) % n
		if a > b {
			a, b = b, a
		}
	}

	// Инициализация потомков
	fill := func(dst []jobshop.OpID) {
		for i := range dst {
			dst[i] = -1
		}
	}
	fill(c1)
	fill(c2)

	// Формирование первого потомка

	*stamp++
	curStamp := *stamp

	// Копирование сегмента из первого родителя
	for i := a; i < b; i++ {
		gene := p1[i]
		c1[i] = gene
		mark[gene] = curStamp
	}

	// Заполнение оставшихся позиций генами второго родителя
	pos := b % n
	for i := 0; i < n; i++ {
		gene := p2[(b+i)%n]
		if mark[gene] == curStamp {
			continue
		}
		for c1[pos] != -1 {
			pos = (pos + 1) % n
		}
		c1[pos] = gene
		mark[gene] = curStamp
	}

	// Формирование второго потомка

	*stamp++
	curStamp = *stamp

	for i := a; i < b; i++ {
		gene := p2[i]
		c2[i] = gene
		mark[gene] = curStamp
	}
	pos = b % n
	for i := 0; i < n; i++ {
		gene := p1[(b+i)%n]
		if mark[gene] == curStamp {
			continue
		}
		for c2[pos] != -1 {
			pos = (pos + 1) % n
		}
		c2[pos] = gene
		mark[gene] = curStamp
	}
}

// mutateSwaps применяет заданное число случайных смежных обменов.
// eligible — машины, на которых есть хотя бы одна смежная пара.
func mutateSwaps(s *jobshop.Schedule, swaps int, eligible []int, rng *rand.Rand) {
	if len(eligible) == 0 {
		return
	}
	for k := 0; k < swaps; k++ {
		m := eligible[rng.Intn(len(eligible))]
		q := s.MachineSequence(m)
		s.SwapAdjacent(m, rng.Intn(len(q)-1))
	}
}

// mustSetSequence устанавливает порядок машины; некорректная
// перестановка здесь — ошибка программирования, а не исход поиска.
func mustSetSequence(s *jobshop.Schedule, m int, q []jobshop.OpID) {
	if err := s.SetMachineSequence(m, q); err != nil {
		panic(err)
	}
}

// copySequences переносит порядок всех машин из src в dst.
func copySequences(dst, src *jobshop.Schedule) {
	inst := dst.Instance()
	for m := 0; m < inst.NumMachines(); m++ {
		mustSetSequence(dst, m, src.MachineSequence(m))
	}
}
