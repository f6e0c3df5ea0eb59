package math

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAbsDiff(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want uint64
	}{
		{"a larger", 10, 3, 7},
		{"b larger", 3, 10, 7},
		{"equal", 5, 5, 0},
		{"zero diff", 0, 0, 0},
		{"max diff", math.MaxUint64, 0, math.MaxUint64},
		{"near values", 100, 99, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, AbsDiff(tt.a, tt.b))
		})
	}
}
