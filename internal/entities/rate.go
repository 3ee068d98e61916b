package entities

import (
	"sort"
	"time"
)

// RateSnapshot is one complete rate table expressed against Base.
// It is never mutated after construction; a refresh replaces it whole.
type RateSnapshot struct {
	ID        string             `json:"id,omitempty"`
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	Timestamp time.Time          `json:"timestamp"`
}

func NewSnapshot(base string, rates map[string]float64, ts time.Time) (*RateSnapshot, error) {
	if len(rates) == 0 {
		return nil, ErrNoData
	}

	copied := make(map[string]float64, len(rates))
	for code, rate := range rates {
		copied[code] = rate
	}

	return &RateSnapshot{
		Base:      base,
		Rates:     copied,
		Timestamp: ts,
	}, nil
}

// Rate reports the base-relative rate for code. Absent and non-positive
// rates are both reported as missing.
func (s *RateSnapshot) Rate(code string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	rate, ok := s.Rates[code]
	if !ok || rate <= 0 {
		return 0, false
	}
	return rate, true
}

func (s *RateSnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rates)
}

func (s *RateSnapshot) Codes() []string {
	if s == nil {
		return nil
	}
	codes := make([]string, 0, len(s.Rates))
	for code := range s.Rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// FiatTable is what the upstream fiat provider returns.
type FiatTable struct {
	Base        string
	Rates       map[string]float64
	UpdatedUnix int64
}

type IngestResult struct {
	Snapshot       *RateSnapshot
	UpstreamUnix   int64
	CryptoFallback bool
}
