package jobshop

import "fmt"

// MalformedInstanceError reports a structural defect in the problem
// definition. Job/Op are -1 when the defect is not tied to an operation.
type MalformedInstanceError struct {
	Job    int
	Op     int
	Reason string
}

func (e *MalformedInstanceError) Error() string {
	switch {
	case e.Job < 0:
		return fmt.Sprintf("malformed instance: %s", e.Reason)
	case e.Op < 0:
		return fmt.Sprintf("malformed instance: job %d: %s", e.Job, e.Reason)
	default:
		return fmt.Sprintf("malformed instance: job %d op %d: %s", e.Job, e.Op, e.Reason)
	}
}

// InvalidPermutationError reports a machine sequence that is not a
// permutation of the operations the machine is required to process.
type InvalidPermutationError struct {
	Machine int
	Reason  string
}

func (e *InvalidPermutationError) Error() string {
	return fmt.Sprintf("invalid permutation for machine %d: %s", e.Machine, e.Reason)
}
