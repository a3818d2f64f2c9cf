package jobshop

import "math/rand"

// Step is one operation of a job as supplied to NewInstance: the machine
// it requires and its processing duration.
type Step struct {
	Machine  int
	Duration int
}

// OpID is a global operation index. Operations are numbered job-major:
// all operations of job 0 in precedence order, then job 1, and so on.
type OpID int

type Operation struct {
	Job      int
	Index    int // position within the job's sequence
	Machine  int
	Duration int
}

// Instance is the immutable problem model. It is never mutated after
// construction and is safe for concurrent readers.
type Instance struct {
	machines   int
	ops        []Operation
	jobs       [][]OpID // per job, precedence order
	machineOps [][]OpID // per machine, job-major order
}

func NewInstance(jobs [][]Step, machines int) (*Instance, error) {
	if machines <= 0 {
		return nil, &MalformedInstanceError{Job: -1, Op: -1, Reason: "machine count must be > 0"}
	}
	if len(jobs) == 0 {
		return nil, &MalformedInstanceError{Job: -1, Op: -1, Reason: "instance has no jobs"}
	}

	total := 0
	for j, steps := range jobs {
		if len(steps) == 0 {
			return nil, &MalformedInstanceError{Job: j, Op: -1, Reason: "job has no operations"}
		}
		for o, st := range steps {
			if st.Duration < 0 {
				return nil, &MalformedInstanceError{Job: j, Op: o, Reason: "negative duration"}
			}
			if st.Machine < 0 || st.Machine >= machines {
				return nil, &MalformedInstanceError{Job: j, Op: o, Reason: "machine out of range"}
			}
		}
		total += len(steps)
	}

	inst := &Instance{
		machines:   machines,
		ops:        make([]Operation, 0, total),
		jobs:       make([][]OpID, len(jobs)),
		machineOps: make([][]OpID, machines),
	}
	id := OpID(0)
	for j, steps := range jobs {
		inst.jobs[j] = make([]OpID, len(steps))
		for o, st := range steps {
			inst.ops = append(inst.ops, Operation{
				Job:      j,
				Index:    o,
				Machine:  st.Machine,
				Duration: st.Duration,
			})
			inst.jobs[j][o] = id
			inst.machineOps[st.Machine] = append(inst.machineOps[st.Machine], id)
			id++
		}
	}
	return inst, nil
}

func (inst *Instance) NumJobs() int     { return len(inst.jobs) }
func (inst *Instance) NumMachines() int { return inst.machines }
func (inst *Instance) NumOps() int      { return len(inst.ops) }

func (inst *Instance) Op(id OpID) Operation { return inst.ops[id] }

// Job returns the operations of job j in precedence order.
// Callers must treat the returned slice as read-only.
func (inst *Instance) Job(j int) []OpID { return inst.jobs[j] }

// MachineOps returns the operations that machine m must process, in
// job-major order. Callers must treat the returned slice as read-only.
func (inst *Instance) MachineOps(m int) []OpID { return inst.machineOps[m] }

// MachineLoad returns the sum of processing durations on machine m.
func (inst *Instance) MachineLoad(m int) int {
	load := 0
	for _, op := range inst.machineOps[m] {
		load += inst.ops[op].Duration
	}
	return load
}

// RandomInstance builds a classic square job shop instance: every job
// visits every machine exactly once in a random order, with durations
// drawn uniformly from [minTime, maxTime].
func RandomInstance(jobs, machines, minTime, maxTime int, rng *rand.Rand) *Instance {
	if rng == nil {
		panic("random number generator is nil")
	}
	if minTime < 0 || maxTime < 0 || maxTime < minTime {
		panic("invalid time bounds")
	}
	span := maxTime - minTime + 1
	rows := make([][]Step, jobs)
	order := make([]int, machines)
	for j := range rows {
		for m := range order {
			order[m] = m
		}
		for i := machines - 1; i > 0; i-- {
			k := rng.Intn(i + 1)
			order[i], order[k] = order[k], order[i]
		}
		rows[j] = make([]Step, machines)
		for o, m := range order {
			d := minTime
			if span > 1 {
				d += rng.Intn(span)
			}
			rows[j][o] = Step{Machine: m, Duration: d}
		}
	}
	inst, err := NewInstance(rows, machines)
	if err != nil {
		panic(err)
	}
	return inst
}
