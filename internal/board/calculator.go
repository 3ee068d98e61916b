package board

import "strconv"

// Calculator is the inline four-function calculator that feeds SetAmount.
type Calculator struct {
	display   string
	previous  string
	operation string
}

func NewCalculator(current string) *Calculator {
	if current == "" {
		current = "0"
	}
	return &Calculator{display: current}
}

func (c *Calculator) Display() string {
	return c.display
}

func (c *Calculator) Press(key string) {
	switch key {
	case "C":
		c.display = "0"
		c.previous = ""
		c.operation = ""
		return
	case "+", "-", "×", "÷", "*", "/":
		if c.previous != "" && c.operation != "" {
			c.calculate()
		}
		c.previous = c.display
		c.operation = normalizeOp(key)
		c.display = "0"
		return
	case ".":
		for _, r := range c.display {
			if r == '.' {
				return
			}
		}
		c.display += "."
		return
	}

	if !isKey(key) {
		return
	}

	if c.display == "0" {
		c.display = key
	} else {
		c.display += key
	}
}

// Result evaluates any pending operation and returns the final value.
func (c *Calculator) Result() float64 {
	current := parseAmount(c.display)
	if c.previous == "" || c.operation == "" {
		return current
	}

	result, ok := apply(parseAmount(c.previous), current, c.operation)
	if !ok {
		return current
	}
	return result
}

func (c *Calculator) calculate() {
	result, ok := apply(parseAmount(c.previous), parseAmount(c.display), c.operation)
	if !ok {
		return
	}

	c.display = strconv.FormatFloat(result, 'f', -1, 64)
	c.previous = ""
	c.operation = ""
}

func apply(prev, current float64, operation string) (float64, bool) {
	switch operation {
	case "+":
		return prev + current, true
	case "-":
		return prev - current, true
	case "×":
		return prev * current, true
	case "÷":
		return prev / current, true
	}
	return 0, false
}

func normalizeOp(key string) string {
	switch key {
	case "*":
		return "×"
	case "/":
		return "÷"
	}
	return key
}
