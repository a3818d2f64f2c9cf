package jobshop

import "sort"

// Evaluator derives operation timings from a schedule's machine
// sequences with a single forward pass over the disjunctive graph
// (job precedence edges + machine order edges). The internal buffers
// are reused between calls, so an Evaluator must not be shared by
// concurrent goroutines; every worker owns its own.
type Evaluator struct {
	inst     *Instance
	start    []int
	end      []int
	machPred []OpID
	machSucc []OpID
	pending  []int8
	queue    []OpID
}

func NewEvaluator(inst *Instance) *Evaluator {
	n := inst.NumOps()
	return &Evaluator{
		inst:     inst,
		start:    make([]int, n),
		end:      make([]int, n),
		machPred: make([]OpID, n),
		machSucc: make([]OpID, n),
		pending:  make([]int8, n),
		queue:    make([]OpID, 0, n),
	}
}

// Makespan computes the objective value of s. The second return value
// is false when the machine sequences make the disjunctive graph
// cyclic; such a schedule has no timing at all.
func (e *Evaluator) Makespan(s *Schedule) (int, bool) {
	return e.pass(s)
}

// Evaluate computes the full timing of s. The returned Timing owns its
// data and stays valid after further Evaluator calls.
func (e *Evaluator) Evaluate(s *Schedule) (Timing, bool) {
	ms, ok := e.pass(s)
	if !ok {
		return Timing{}, false
	}
	n := e.inst.NumOps()
	t := Timing{
		inst:     e.inst,
		makespan: ms,
		start:    make([]int, n),
		end:      make([]int, n),
		machPred: make([]OpID, n),
	}
	copy(t.start, e.start)
	copy(t.end, e.end)
	copy(t.machPred, e.machPred)
	return t, true
}

// pass runs the forward pass. Operations become ready once both their
// job predecessor and their machine predecessor are timed; if the pass
// stalls before timing every operation, the graph is cyclic.
func (e *Evaluator) pass(s *Schedule) (int, bool) {
	inst := e.inst
	n := inst.NumOps()

	for m := 0; m < inst.machines; m++ {
		q := s.seq[m]
		for i, op := range q {
			if i == 0 {
				e.machPred[op] = -1
			} else {
				e.machPred[op] = q[i-1]
			}
			if i == len(q)-1 {
				e.machSucc[op] = -1
			} else {
				e.machSucc[op] = q[i+1]
			}
		}
	}

	e.queue = e.queue[:0]
	for id := 0; id < n; id++ {
		op := OpID(id)
		var deg int8
		if inst.ops[op].Index > 0 {
			deg++
		}
		if e.machPred[op] >= 0 {
			deg++
		}
		e.pending[op] = deg
		if deg == 0 {
			e.queue = append(e.queue, op)
		}
	}

	done := 0
	makespan := 0
	for head := 0; head < len(e.queue); head++ {
		op := e.queue[head]
		at := 0
		if inst.ops[op].Index > 0 {
			at = e.end[op-1]
		}
		if mp := e.machPred[op]; mp >= 0 && e.end[mp] > at {
			at = e.end[mp]
		}
		e.start[op] = at
		e.end[op] = at + inst.ops[op].Duration
		if e.end[op] > makespan {
			makespan = e.end[op]
		}
		done++

		if int(op)+1 < n && inst.ops[op+1].Job == inst.ops[op].Job {
			e.pending[op+1]--
			if e.pending[op+1] == 0 {
				e.queue = append(e.queue, op+1)
			}
		}
		if ms := e.machSucc[op]; ms >= 0 {
			e.pending[ms]--
			if e.pending[ms] == 0 {
				e.queue = append(e.queue, ms)
			}
		}
	}

	if done != n {
		return 0, false
	}
	return makespan, true
}

// Timing holds the derived start and end times of a feasible schedule.
type Timing struct {
	inst     *Instance
	makespan int
	start    []int
	end      []int
	machPred []OpID
}

func (t Timing) Makespan() int     { return t.makespan }
func (t Timing) Start(op OpID) int { return t.start[op] }
func (t Timing) End(op OpID) int   { return t.end[op] }

// TimelineEntry is one scheduled operation, the consumable form of a
// result for reporting.
type TimelineEntry struct {
	Op      OpID
	Job     int
	Machine int
	Start   int
	End     int
}

// Timeline returns every operation with its assigned machine and
// derived times, ordered by machine and start time.
func (t Timing) Timeline() []TimelineEntry {
	out := make([]TimelineEntry, 0, len(t.start))
	for id := range t.start {
		op := OpID(id)
		o := t.inst.ops[op]
		out = append(out, TimelineEntry{
			Op:      op,
			Job:     o.Job,
			Machine: o.Machine,
			Start:   t.start[op],
			End:     t.end[op],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Machine != out[j].Machine {
			return out[i].Machine < out[j].Machine
		}
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Op < out[j].Op
	})
	return out
}

// CriticalPath returns a chain of operations whose delay directly
// delays the makespan, ordered from the first operation to the last.
// Machine predecessors are preferred when both predecessors bind, so
// the walk is deterministic.
func (t Timing) CriticalPath() []OpID {
	if len(t.end) == 0 {
		return nil
	}
	last := OpID(0)
	for id := 1; id < len(t.end); id++ {
		if t.end[id] > t.end[last] {
			last = OpID(id)
		}
	}

	var rev []OpID
	cur := last
	for {
		rev = append(rev, cur)
		s := t.start[cur]
		if mp := t.machPred[cur]; mp >= 0 && t.end[mp] == s {
			cur = mp
			continue
		}
		if t.inst.ops[cur].Index > 0 && t.end[cur-1] == s {
			cur--
			continue
		}
		break
	}

	path := make([]OpID, len(rev))
	for i, op := range rev {
		path[len(rev)-1-i] = op
	}
	return path
}
