package jobshop

import "fmt"

// Schedule is a candidate solution: one permutation of the required
// operations per machine. The permutations are the sole decision
// variable; start and end times are derived by the Evaluator and are
// never stored here.
type Schedule struct {
	inst *Instance
	seq  [][]OpID
}

// NewSchedule builds a schedule with every machine processing its
// operations in job-major order. That ordering is always feasible.
func NewSchedule(inst *Instance) *Schedule {
	backing := make([]OpID, inst.NumOps())
	seq := make([][]OpID, inst.machines)
	at := 0
	for m := 0; m < inst.machines; m++ {
		n := len(inst.machineOps[m])
		seq[m] = backing[at : at+n : at+n]
		copy(seq[m], inst.machineOps[m])
		at += n
	}
	return &Schedule{inst: inst, seq: seq}
}

func (s *Schedule) Instance() *Instance { return s.inst }

// MachineSequence returns the current processing order of machine m.
// Callers must treat the returned slice as read-only.
func (s *Schedule) MachineSequence(m int) []OpID { return s.seq[m] }

// SetMachineSequence replaces the processing order of machine m. The
// given sequence must be exactly a permutation of the operations that
// machine m is required to process.
func (s *Schedule) SetMachineSequence(m int, perm []OpID) error {
	if m < 0 || m >= s.inst.machines {
		return &InvalidPermutationError{Machine: m, Reason: "no such machine"}
	}
	want := s.inst.machineOps[m]
	if len(perm) != len(want) {
		return &InvalidPermutationError{
			Machine: m,
			Reason:  fmt.Sprintf("length must be %d (got %d)", len(want), len(perm)),
		}
	}
	seen := make([]bool, s.inst.NumOps())
	for _, op := range perm {
		if op < 0 || int(op) >= s.inst.NumOps() {
			return &InvalidPermutationError{
				Machine: m,
				Reason:  fmt.Sprintf("operation %d out of range", op),
			}
		}
		if s.inst.ops[op].Machine != m {
			return &InvalidPermutationError{
				Machine: m,
				Reason:  fmt.Sprintf("operation %d belongs to machine %d", op, s.inst.ops[op].Machine),
			}
		}
		if seen[op] {
			return &InvalidPermutationError{
				Machine: m,
				Reason:  fmt.Sprintf("duplicate operation %d", op),
			}
		}
		seen[op] = true
	}
	copy(s.seq[m], perm)
	return nil
}

// SwapAdjacent exchanges the operations at positions pos and pos+1 of
// machine m. The result is always a structurally valid permutation.
func (s *Schedule) SwapAdjacent(m, pos int) {
	q := s.seq[m]
	q[pos], q[pos+1] = q[pos+1], q[pos]
}

// Clone returns an independent copy of the schedule. The problem model
// is shared; the permutations are not.
func (s *Schedule) Clone() *Schedule {
	c := &Schedule{inst: s.inst, seq: make([][]OpID, len(s.seq))}
	backing := make([]OpID, s.inst.NumOps())
	at := 0
	for m, q := range s.seq {
		c.seq[m] = backing[at : at+len(q) : at+len(q)]
		copy(c.seq[m], q)
		at += len(q)
	}
	return c
}
