package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFrameQuery_Validate(t *testing.T) {
	d := decimal.RequireFromString

	tests := []struct {
		name    string
		query   FrameQuery
		wantErr bool
	}{
		{"valid range", FrameQuery{DepthMin: d("9000.1"), DepthMax: d("9001")}, false},
		{"single depth", FrameQuery{DepthMin: d("5"), DepthMax: d("5")}, false},
		{"max limit", FrameQuery{DepthMax: d("1"), Limit: MaxFrameLimit}, false},
		{"negative min", FrameQuery{DepthMin: d("-0.01"), DepthMax: d("1")}, true},
		{"negative max", FrameQuery{DepthMin: d("-2"), DepthMax: d("-1")}, true},
		{"reversed", FrameQuery{DepthMin: d("2"), DepthMax: d("1")}, true},
		{"negative limit", FrameQuery{DepthMax: d("1"), Limit: -1}, true},
		{"limit too large", FrameQuery{DepthMax: d("1"), Limit: MaxFrameLimit + 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestStatistics_AsMetadata(t *testing.T) {
	meta := Statistics{Min: 1, Max: 9, Mean: 5, Std: 2.5}.AsMetadata()

	assert.Equal(t, map[string]float64{MetaMin: 1, MetaMax: 9, MetaMean: 5, MetaStd: 2.5}, meta)
}

func TestReadiness_Ready(t *testing.T) {
	assert.True(t, Readiness{Connected: true, TablesExist: true}.Ready())
	assert.False(t, Readiness{Connected: true}.Ready())
	assert.False(t, Readiness{TablesExist: true}.Ready())
}
