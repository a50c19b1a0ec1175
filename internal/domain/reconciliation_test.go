package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialVariances(t *testing.T) {
	summary := ComputedSummary{
		MaterialityThreshold: 100,
		Variances: []AccountVariance{
			{Account: "cash", Variance: 150},
			{Account: "ar", Variance: -250},
			{Account: "ap", Variance: 100},   // equal to threshold, not material
			{Account: "fx", Variance: -99.5}, // below threshold
			{Account: "inv", Variance: 0},
		},
	}

	material := summary.MaterialVariances()
	require.Len(t, material, 2)
	assert.Equal(t, "cash", material[0].Account)
	assert.Equal(t, "ar", material[1].Account, "materiality uses absolute value")
}

func TestMaterialVariancesZeroThreshold(t *testing.T) {
	summary := ComputedSummary{
		Variances: []AccountVariance{
			{Account: "cash", Variance: 0.01},
			{Account: "ar", Variance: 0},
		},
	}

	material := summary.MaterialVariances()
	require.Len(t, material, 1, "any non-zero variance is material at threshold zero")
	assert.Equal(t, "cash", material[0].Account)
}

func TestNewRunContextAssignsRunID(t *testing.T) {
	rc := NewRunContext("month end",
		ReconciliationPayload{Balances: []AccountBalance{{Account: "cash"}}},
		ComputedSummary{})

	parsed, err := uuid.Parse(rc.RunID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.Equal(t, "month end", rc.Intent)
	require.NoError(t, rc.Validate())
}

func TestRunContextValidate(t *testing.T) {
	valid := NewRunContext("x",
		ReconciliationPayload{Balances: []AccountBalance{{Account: "cash"}}},
		ComputedSummary{})

	tests := []struct {
		name    string
		mutate  func(*RunContext)
		wantErr bool
	}{
		{"valid", func(*RunContext) {}, false},
		{"missing run id", func(rc *RunContext) { rc.RunID = "" }, true},
		{"non-uuid run id", func(rc *RunContext) { rc.RunID = "run-123" }, true},
		{"empty balances", func(rc *RunContext) { rc.Payload.Balances = nil }, true},
		{"balance without account", func(rc *RunContext) {
			rc.Payload.Balances = []AccountBalance{{Opening: 1}}
		}, true},
		{"negative threshold", func(rc *RunContext) {
			rc.Summary.MaterialityThreshold = -1
		}, true},
		{"empty intent is allowed", func(rc *RunContext) { rc.Intent = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := valid
			tt.mutate(&rc)
			err := rc.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
