package entities

type Currency struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	Flag      string `json:"flag"`
	SortOrder int    `json:"sort_order"`
	IsActive  bool   `json:"is_active"`
}
