package sat

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWideIntegerRangesStayInBounds(t *testing.T) {
	tests := []struct {
		name      string
		low, high float64
	}{
		{"wider than int64", 0, 1e19},
		{"width of MaxInt63", 0, math.MaxInt64},
		{"symmetric around zero", -9e18, 9e18},
		{"just under float precision", 0, 1<<53 - 1},
	}

	solver := newSolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProblem()
			p.Unit(p.True())
			i := p.NewNumeric("mass", tt.low, tt.high, true)

			for n := 0; n < 20; n++ {
				var m *Model
				require.NotPanics(t, func() {
					var err error
					m, err = solver.Solve(context.Background(), p)
					require.NoError(t, err)
				})
				v := m.Numeric(i)
				assert.GreaterOrEqual(t, v, tt.low)
				assert.LessOrEqual(t, v, tt.high)
				assert.Equal(t, math.Floor(v), v, "integer property drew %v", v)
			}
		})
	}
}
