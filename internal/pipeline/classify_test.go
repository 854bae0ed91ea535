package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		bins   int
		want   []int
	}{
		{name: "one per bin", values: []float64{10, 20, 30, 40}, bins: 4, want: []int{0, 1, 2, 3}},
		{name: "unordered input", values: []float64{40, 10, 30, 20}, bins: 4, want: []int{3, 0, 2, 1}},
		{name: "right closed edges", values: []float64{0, 25, 26, 50, 75, 100}, bins: 4, want: []int{0, 0, 1, 1, 2, 3}},
		{name: "empty", values: []float64{}, bins: 4, want: []int{}},
		{name: "single value", values: []float64{125}, bins: 4, want: []int{1}},
		{name: "all equal", values: []float64{80, 80, 80}, bins: 4, want: []int{1, 1, 1}},
		{name: "non finite", values: []float64{10, math.NaN(), 40, math.Inf(1)}, bins: 4, want: []int{0, Unclassified, 3, Unclassified}},
		{name: "no bins", values: []float64{1, 2}, bins: 0, want: []int{Unclassified, Unclassified}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.values, tt.bins))
		})
	}
}

func TestClassify_Monotonic(t *testing.T) {
	values := []float64{87, 143, 112, 95, 201, 160, 143, 99}
	classes := Classify(values, 4)

	for i := range values {
		assert.GreaterOrEqual(t, classes[i], 0)
		assert.Less(t, classes[i], 4)
		for j := range values {
			if values[i] < values[j] {
				assert.LessOrEqual(t, classes[i], classes[j], "%v should not outrank %v", values[i], values[j])
			}
		}
	}
}
