package service

import (
	"fmt"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"
)

// Violation is one medicine whose safe temperature range the reading left.
type Violation struct {
	Medicine    domain.StoredMedicine
	Temperature float64
}

// Message renders the alert text for the violation.
func (v *Violation) Message() string {
	return fmt.Sprintf("Critical: %s needs %g-%g°C, but current is %g°C",
		v.Medicine.Name, v.Medicine.MinTemperature, v.Medicine.MaxTemperature, v.Temperature)
}

// EvaluateThresholds checks a temperature reading against the safe ranges of
// the medicines stored at a location. Bounds are exclusive: a reading exactly
// at min or max is in range. The first violating medicine (callers pass the
// list in name order) wins and the rest are not inspected.
func EvaluateThresholds(medicines []domain.StoredMedicine, temperature float64) *Violation {
	for _, m := range medicines {
		if temperature > m.MaxTemperature || temperature < m.MinTemperature {
			return &Violation{Medicine: m, Temperature: temperature}
		}
	}
	return nil
}
