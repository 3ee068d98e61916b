package conversion

// RateTable is anything holding base-relative rates, such as
// *entities.RateSnapshot.
type RateTable interface {
	Rate(code string) (float64, bool)
}

// Convert moves amount from one currency to another through the shared base.
// A missing rate on either side yields 0.
func Convert(amount float64, from, to string, rates RateTable) float64 {
	if rates == nil {
		return 0
	}

	fromRate, ok := rates.Rate(from)
	if !ok {
		return 0
	}
	toRate, ok := rates.Rate(to)
	if !ok {
		return 0
	}

	inBase := amount / fromRate
	return inBase * toRate
}
