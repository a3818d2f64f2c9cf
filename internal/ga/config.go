package ga

import (
	"fmt"
	"time"

	"jobShop/internal/localsearch"
)

type Config struct {
	Population  int
	Generations int

	// TimeBudget — ограничение по времени работы; 0 — без ограничения.
	// Проверяется на границе поколения.
	TimeBudget time.Duration

	// Stagnation — число поколений без улучшения лучшего решения,
	// после которого поиск останавливается; 0 — отключено.
	Stagnation int

	Elite          int
	TournamentSize int
	CrossoverRate  float64
	MutationRate   float64

	// MutationSwaps — число случайных смежных обменов на одну мутацию.
	MutationSwaps int

	// Workers — число параллельных потоков оценки; 0 — по числу CPU.
	Workers int

	// LocalSearch включает локальное улучшение элитных особей.
	LocalSearch      bool
	LocalSearchIters int

	// LocalSearchAcceptance — политика принятия локального поиска;
	// пустое значение означает hill climbing.
	LocalSearchAcceptance localsearch.Acceptance
}

func DefaultConfig() Config {
	return Config{
		Population:  120,
		Generations: 300,
		TimeBudget:  0,
		Stagnation:  0,

		Elite:          4,
		TournamentSize: 5,
		CrossoverRate:  0.90,
		MutationRate:   0.20,
		MutationSwaps:  2,

		Workers: 0,

		LocalSearch:      false,
		LocalSearchIters: 400,
	}
}

func (c Config) Validate() error {
	if c.Population <= 1 {
		return fmt.Errorf(
			"размер популяции должен быть > 1 (получено %d)",
			c.Population,
		)
	}
	if c.Generations <= 0 {
		return fmt.Errorf(
			"количество поколений должно быть > 0 (получено %d)",
			c.Generations,
		)
	}
	if c.TimeBudget < 0 {
		return fmt.Errorf(
			"бюджет времени должен быть >= 0 (получено %v)",
			c.TimeBudget,
		)
	}
	if c.Stagnation < 0 {
		return fmt.Errorf(
			"порог стагнации должен быть >= 0 (получено %d)",
			c.Stagnation,
		)
	}
	if c.Elite < 0 || c.Elite >= c.Population {
		return fmt.Errorf(
			"число элитных особей должно быть в диапазоне [0, population) (получено %d)",
			c.Elite,
		)
	}
	if c.TournamentSize <= 0 {
		return fmt.Errorf(
			"размер турнира должен быть > 0 (получено %d)",
			c.TournamentSize,
		)
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		return fmt.Errorf(
			"вероятность кроссовера должна быть в диапазоне [0,1] (получено %f)",
			c.CrossoverRate,
		)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf(
			"вероятность мутации должна быть в диапазоне [0,1] (получено %f)",
			c.MutationRate,
		)
	}
	if c.MutationSwaps <= 0 {
		return fmt.Errorf(
			"число обменов при мутации должно быть > 0 (получено %d)",
			c.MutationSwaps,
		)
	}
	if c.Workers < 0 {
		return fmt.Errorf(
			"число потоков оценки должно быть >= 0 (получено %d)",
			c.Workers,
		)
	}
	if c.LocalSearch && c.LocalSearchIters <= 0 {
		return fmt.Errorf(
			"бюджет локального поиска должен быть > 0 (получено %d)",
			c.LocalSearchIters,
		)
	}
	switch c.LocalSearchAcceptance {
	case "", localsearch.AcceptHillClimb, localsearch.AcceptAnneal:
		// ok
	default:
		return fmt.Errorf(
			"неизвестная политика принятия %q",
			c.LocalSearchAcceptance,
		)
	}
	return nil
}
