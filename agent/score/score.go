// Package score computes the credit score from the interview answers. The
// formula is a pure function; persistence and conversation flow live with the
// interview handler.
package score

import (
	"fmt"
	"math"

	"github.com/bancoagil/atende/agent/contract"
	"github.com/bancoagil/atende/agent/domain"
)

const incomeWeight = 30

// Input holds the five interview answers.
type Input struct {
	Income     float64
	Employment domain.EmploymentType
	Expenses   float64
	Dependents int
	HasDebt    bool
}

// Validate rejects inputs the formula is not defined for. Negative amounts
// never reach Calculate; the interview re-prompts instead.
func (in Input) Validate() error {
	if in.Income < 0 {
		return fmt.Errorf("%w: renda negativa", contract.ErrValidation)
	}
	if in.Expenses < 0 {
		return fmt.Errorf("%w: despesas negativas", contract.ErrValidation)
	}
	if in.Dependents < 0 {
		return fmt.Errorf("%w: dependentes negativos", contract.ErrValidation)
	}
	switch in.Employment {
	case domain.EmploymentFormal, domain.EmploymentSelfEmployed, domain.EmploymentUnemployed:
	default:
		return fmt.Errorf("%w: tipo de emprego %q", contract.ErrValidation, in.Employment)
	}
	return nil
}

// Calculate returns the credit score in [0,1000], rounded to the nearest
// integer.
func Calculate(in Input) (int, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	raw := (in.Income/(in.Expenses+1))*incomeWeight +
		employmentWeight(in.Employment) +
		dependentsWeight(in.Dependents) +
		debtWeight(in.HasDebt)

	clamped := math.Min(1000, math.Max(0, raw))
	return int(math.Round(clamped)), nil
}

func employmentWeight(t domain.EmploymentType) float64 {
	switch t {
	case domain.EmploymentFormal:
		return 300
	case domain.EmploymentSelfEmployed:
		return 200
	default:
		return 0
	}
}

func dependentsWeight(n int) float64 {
	switch {
	case n <= 0:
		return 100
	case n == 1:
		return 80
	case n == 2:
		return 60
	default:
		return 30
	}
}

func debtWeight(hasDebt bool) float64 {
	if hasDebt {
		return -100
	}
	return 100
}
