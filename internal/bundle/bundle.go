// Package bundle builds and reads the clinical payload that travels inside a
// share container. It sits outside the crypto core: the share pipeline only
// ever sees the bytes returned by Seal.
package bundle

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cmgshare/internal/common"
)

const (
	DefaultValidity = 24 * time.Hour
	MinValidity     = time.Hour
	MaxValidity     = 168 * time.Hour
)

type GlucoseReading struct {
	RecordedAt time.Time `json:"recorded_at"`
	ValueMgDL  float64   `json:"value_mg_dl"`
	Context    string    `json:"context,omitempty"`
	Notes      string    `json:"notes,omitempty"`
}

type HbA1cReading struct {
	RecordedAt time.Time `json:"recorded_at"`
	ValuePct   float64   `json:"value_pct"`
	Notes      string    `json:"notes,omitempty"`
}

type Event struct {
	RecordedAt time.Time `json:"recorded_at"`
	Title      string    `json:"title"`
	Notes      string    `json:"notes,omitempty"`
}

// Bundle is the exportable clinical data of one patient.
type Bundle struct {
	PatientName string           `json:"patient_name"`
	Age         int              `json:"age,omitempty"`
	Glucose     []GlucoseReading `json:"glucose"`
	HbA1c       []HbA1cReading   `json:"hba1c"`
	Events      []Event          `json:"events"`
}

// Envelope adds an expiry to a bundle. The expiry is advisory: it is checked
// by Open after the container has been authenticated, so it cannot be
// altered without the key.
type Envelope struct {
	ExpiresAt time.Time `json:"expires_at"`
	Data      Bundle    `json:"data"`
}

// Validate checks every reading against the accepted clinical ranges.
func (b *Bundle) Validate() error {
	for i, g := range b.Glucose {
		if err := ValidateGlucose(g.ValueMgDL); err != nil {
			return fmt.Errorf("glucose[%d]: %w", i, err)
		}
	}
	for i, h := range b.HbA1c {
		if h.ValuePct <= 0 || h.ValuePct > 20 {
			return fmt.Errorf("hba1c[%d]: %w: %.1f%% is out of range", i, common.ErrInvalidInput, h.ValuePct)
		}
	}
	return nil
}

// Seal serializes b with an expiry of now+validFor. validFor must lie between
// MinValidity and MaxValidity.
func Seal(b Bundle, validFor time.Duration, now time.Time) ([]byte, error) {
	if validFor < MinValidity || validFor > MaxValidity {
		return nil, fmt.Errorf("%w: validity must be between %s and %s", common.ErrInvalidInput, MinValidity, MaxValidity)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	env := Envelope{ExpiresAt: now.UTC().Add(validFor), Data: b}
	return json.Marshal(env)
}

// Open parses a payload produced by Seal and rejects it once expired.
func Open(payload []byte, now time.Time) (*Envelope, error) {
	env := &Envelope{}
	if err := json.Unmarshal(payload, env); err != nil {
		return nil, fmt.Errorf("%w: bundle is not valid JSON: %v", common.ErrInvalidInput, err)
	}
	if env.ExpiresAt.IsZero() {
		return nil, fmt.Errorf("%w: bundle has no expiry", common.ErrInvalidInput)
	}
	if now.After(env.ExpiresAt) {
		return env, common.ErrBundleExpired
	}
	return env, nil
}
