package bundle

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/cmgshare/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func sampleBundle() Bundle {
	return Bundle{
		PatientName: "Ana",
		Age:         54,
		Glucose: []GlucoseReading{
			{RecordedAt: now.Add(-2 * time.Hour), ValueMgDL: 132, Context: "fasting"},
			{RecordedAt: now.Add(-time.Hour), ValueMgDL: 180, Context: "post-meal"},
		},
		HbA1c:  []HbA1cReading{{RecordedAt: now.AddDate(0, -3, 0), ValuePct: 6.8}},
		Events: []Event{{RecordedAt: now, Title: "dose change"}},
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	payload, err := Seal(sampleBundle(), DefaultValidity, now)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &raw))
	assert.Contains(t, raw, "expires_at")
	assert.Contains(t, raw, "data")

	env, err := Open(payload, now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, now.Add(DefaultValidity).Equal(env.ExpiresAt))
	assert.Equal(t, "Ana", env.Data.PatientName)
	assert.Len(t, env.Data.Glucose, 2)
	assert.Equal(t, 180.0, env.Data.Glucose[1].ValueMgDL)
}

func TestOpen_Expired(t *testing.T) {
	payload, err := Seal(sampleBundle(), MinValidity, now)
	require.NoError(t, err)

	env, err := Open(payload, now.Add(MinValidity+time.Second))
	assert.ErrorIs(t, err, common.ErrBundleExpired)
	require.NotNil(t, env)
	assert.Equal(t, "Ana", env.Data.PatientName)
}

func TestOpen_Invalid(t *testing.T) {
	_, err := Open([]byte("{\"glucose\":[]}"), now)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = Open([]byte("not json"), now)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestSeal_ValidityBounds(t *testing.T) {
	for _, d := range []time.Duration{0, 30 * time.Minute, MaxValidity + time.Hour} {
		_, err := Seal(sampleBundle(), d, now)
		assert.ErrorIs(t, err, common.ErrInvalidInput, "validity %s", d)
	}
	_, err := Seal(sampleBundle(), MaxValidity, now)
	assert.NoError(t, err)
}

func TestSeal_RejectsImplausibleReadings(t *testing.T) {
	b := sampleBundle()
	b.Glucose[0].ValueMgDL = 900
	_, err := Seal(b, DefaultValidity, now)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	b = sampleBundle()
	b.HbA1c[0].ValuePct = 0
	_, err = Seal(b, DefaultValidity, now)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestValidation(t *testing.T) {
	assert.NoError(t, ValidatePin("4821"))
	for _, p := range []string{"", "482", "48210", "48a1", " 4821"} {
		assert.ErrorIs(t, ValidatePin(p), common.ErrInvalidInput, "pin %q", p)
	}

	assert.NoError(t, ValidatePatientCode("paciente01"))
	assert.NoError(t, ValidatePatientCode("pa-ci_ente"))
	for _, c := range []string{"", "pa ciente", "ñandú", "a/b"} {
		assert.ErrorIs(t, ValidatePatientCode(c), common.ErrInvalidInput, "code %q", c)
	}

	assert.NoError(t, ValidateGlucose(20))
	assert.NoError(t, ValidateGlucose(600))
	assert.ErrorIs(t, ValidateGlucose(19.9), common.ErrInvalidInput)
	assert.ErrorIs(t, ValidateGlucose(601), common.ErrInvalidInput)
}
