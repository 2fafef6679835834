package bundle

import (
	"fmt"
	"regexp"

	"github.com/dmitrijs2005/cmgshare/internal/common"
)

var (
	pinPattern         = regexp.MustCompile(`^[0-9]{4}$`)
	patientCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// Physiologically plausible glucose range in mg/dL.
const (
	MinGlucoseMgDL = 20
	MaxGlucoseMgDL = 600
)

// ValidatePin checks that pin is exactly four digits.
func ValidatePin(pin string) error {
	if !pinPattern.MatchString(pin) {
		return fmt.Errorf("%w: PIN must be exactly 4 digits", common.ErrInvalidInput)
	}
	return nil
}

// ValidatePatientCode allows letters, digits, '-' and '_' up to 64 characters.
func ValidatePatientCode(code string) error {
	if !patientCodePattern.MatchString(code) {
		return fmt.Errorf("%w: patient code may contain only letters, digits, '-' and '_'", common.ErrInvalidInput)
	}
	return nil
}

func ValidateGlucose(v float64) error {
	if v < MinGlucoseMgDL || v > MaxGlucoseMgDL {
		return fmt.Errorf("%w: glucose %.0f mg/dL is outside %d-%d", common.ErrInvalidInput, v, MinGlucoseMgDL, MaxGlucoseMgDL)
	}
	return nil
}
