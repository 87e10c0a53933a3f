package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLCM(t *testing.T) {
	tests := []struct {
		name   string
		values []int64
		want   uint64
	}{
		{"single", []int64{7}, 7},
		{"coprime", []int64{3, 4, 5}, 60},
		{"shared factors", []int64{4, 6}, 12},
		{"powers of two", []int64{1, 2, 4}, 4},
		{"ones", []int64{1, 1, 1}, 1},
		{"puzzle sized", []int64{3733, 3793, 3917, 3877}, 215025618321221},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LCM(tt.values...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLCM_Degenerate(t *testing.T) {
	tests := []struct {
		name   string
		values []int64
		index  int
	}{
		{"empty", nil, -1},
		{"zero", []int64{3, 0}, 1},
		{"negative", []int64{-2}, 0},
		{"overflow", []int64{math.MaxInt64, math.MaxInt64 - 1, 3}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LCM(tt.values...)
			require.Error(t, err)
			assert.True(t, IsDegenerateInput(err))

			var de *DegenerateInputError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.index, de.Index)
		})
	}
}
