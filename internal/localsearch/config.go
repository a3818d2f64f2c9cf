package localsearch

import "fmt"

// Acceptance — политика принятия хода.
type Acceptance string

const (
	// AcceptHillClimb принимает только строго улучшающие ходы.
	AcceptHillClimb Acceptance = "hillclimb"
	// AcceptAnneal допускает ухудшающие ходы по критерию Метрополиса.
	AcceptAnneal Acceptance = "anneal"
)

// MoveSet — множество рассматриваемых ходов.
type MoveSet string

const (
	MovesCritical MoveSet = "critical"
	MovesAll      MoveSet = "all"
)

type Config struct {
	Iterations int

	Acceptance Acceptance
	Moves      MoveSet

	InitialTemp float64
	FinalTemp   float64
	Alpha       float64
}

func DefaultConfig() Config {
	return Config{
		Iterations: 400,

		Acceptance: AcceptHillClimb,
		Moves:      MovesCritical,

		InitialTemp: 50.0,
		FinalTemp:   0.1,
		Alpha:       0.97,
	}
}

func (c Config) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf(
			"Iterations должно быть > 0 (получено %d)",
			c.Iterations,
		)
	}
	switch c.Acceptance {
	case AcceptHillClimb, AcceptAnneal:
		// ok
	default:
		return fmt.Errorf(
			"неизвестная политика принятия %q",
			c.Acceptance,
		)
	}
	switch c.Moves {
	case MovesCritical, MovesAll:
		// ok
	default:
		return fmt.Errorf(
			"неизвестное множество ходов %q",
			c.Moves,
		)
	}
	if c.Acceptance == AcceptAnneal {
		if c.InitialTemp <= 0 {
			return fmt.Errorf(
				"InitialTemp должно быть > 0 (получено %f)",
				c.InitialTemp,
			)
		}
		if c.FinalTemp <= 0 {
			return fmt.Errorf(
				"FinalTemp должно быть > 0 (получено %f)",
				c.FinalTemp,
			)
		}
		if c.FinalTemp >= c.InitialTemp {
			return fmt.Errorf(
				"FinalTemp должно быть < InitialTemp (получено %f >= %f)",
				c.FinalTemp,
				c.InitialTemp,
			)
		}
		if c.Alpha <= 0 || c.Alpha >= 1 {
			return fmt.Errorf(
				"alpha должно лежать в интервале (0,1) (получено %f)",
				c.Alpha,
			)
		}
	}
	return nil
}
