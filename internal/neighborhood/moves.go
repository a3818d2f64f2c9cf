package neighborhood

import "jobShop/internal/jobshop"

// Move — обмен двух соседних операций на одной машине.
// Повторное применение того же хода отменяет его.
type Move struct {
	Machine int
	Pos     int // обмениваются позиции Pos и Pos+1
}

// Apply применяет ход к расписанию.
// Результат всегда остаётся корректной перестановкой.
func (mv Move) Apply(s *jobshop.Schedule) {
	s.SwapAdjacent(mv.Machine, mv.Pos)
}

// Iterator — ленивая конечная последовательность ходов.
// Последовательность ограничена числом смежных пар по всем машинам
// и может быть перезапущена от любого расписания.
type Iterator struct {
	sched   *jobshop.Schedule
	machine int
	pos     int

	fixed  []Move // предвычисленный список для критических ходов
	i      int
	isCrit bool
}

// All перечисляет все смежные пары на всех машинах.
func All(s *jobshop.Schedule) *Iterator {
	return &Iterator{sched: s}
}

// Critical перечисляет только смежные пары, лежащие на критическом
// пути текущей оценки: обмены вне критического пути заведомо не
// сокращают makespan.
func Critical(s *jobshop.Schedule, t jobshop.Timing) *Iterator {
	return &Iterator{isCrit: true, fixed: criticalMoves(s, t)}
}

// Next возвращает следующий ход; второй результат false означает
// конец последовательности.
func (it *Iterator) Next() (Move, bool) {
	if it.isCrit {
		if it.i >= len(it.fixed) {
			return Move{}, false
		}
		mv := it.fixed[it.i]
		it.i++
		return mv, true
	}

	inst := it.sched.Instance()
	for it.machine < inst.NumMachines() {
		q := it.sched.MachineSequence(it.machine)
		if it.pos+1 < len(q) {
			mv := Move{Machine: it.machine, Pos: it.pos}
			it.pos++
			return mv, true
		}
		it.machine++
		it.pos = 0
	}
	return Move{}, false
}

// criticalMoves собирает смежные пары критического пути: такие
// последовательные операции пути, где вторая стоит сразу после первой
// в порядке своей машины.
func criticalMoves(s *jobshop.Schedule, t jobshop.Timing) []Move {
	inst := s.Instance()
	path := t.CriticalPath()

	var moves []Move
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		m := inst.Op(a).Machine
		if inst.Op(b).Machine != m {
			continue
		}
		q := s.MachineSequence(m)
		for pos := 0; pos+1 < len(q); pos++ {
			if q[pos] == a && q[pos+1] == b {
				moves = append(moves, Move{Machine: m, Pos: pos})
				break
			}
		}
	}
	return moves
}
