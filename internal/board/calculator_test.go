package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func press(c *Calculator, keys ...string) {
	for _, k := range keys {
		c.Press(k)
	}
}

func TestCalculator(t *testing.T) {
	tests := []struct {
		name    string
		current string
		keys    []string
		want    float64
	}{
		{name: "keeps current", current: "42", want: 42},
		{name: "addition", current: "0", keys: []string{"2", "+", "3"}, want: 5},
		{name: "chained", current: "0", keys: []string{"2", "+", "3", "×", "4"}, want: 20},
		{name: "ascii operators", current: "0", keys: []string{"9", "/", "3", "*", "2"}, want: 6},
		{name: "subtract from current", current: "100", keys: []string{"-", "2", "5"}, want: 75},
		{name: "decimals", current: "0", keys: []string{"1", ".", "5", "+", ".", "2", "5"}, want: 1.75},
		{name: "clear", current: "12", keys: []string{"+", "3", "C", "7"}, want: 7},
		{name: "pending operator without operand", current: "8", keys: []string{"×"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCalculator(tt.current)
			press(c, tt.keys...)
			assert.InDelta(t, tt.want, c.Result(), 1e-9)
		})
	}
}

func TestCalculatorSingleDot(t *testing.T) {
	c := NewCalculator("")
	press(c, "1", ".", ".", "5")

	assert.Equal(t, "1.5", c.Display())
}
