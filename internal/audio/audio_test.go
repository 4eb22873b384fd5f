package audio

import (
	"math"
	"testing"
)

func TestRMS(t *testing.T) {
	cases := []struct {
		name  string
		frame []int16
		want  float64
	}{
		{"empty", nil, 0},
		{"silence", make([]int16, 8), 0},
		{"constant", []int16{300, -300, 300, -300}, 300},
		{"mixed", []int16{3, 4}, math.Sqrt(12.5)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := RMS(c.frame); math.Abs(got-c.want) > 1e-9 {
				t.Fatalf("RMS = %v want %v", got, c.want)
			}
		})
	}
}
