package catalog

import "github.com/langowen/converter/internal/entities"

var builtin = []entities.Currency{
	{Code: "USD", Name: "US Dollar", Symbol: "$", Flag: "🇺🇸"},
	{Code: "EUR", Name: "Euro", Symbol: "€", Flag: "🇪🇺"},
	{Code: "GBP", Name: "British Pound", Symbol: "£", Flag: "🇬🇧"},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥", Flag: "🇯🇵"},
	{Code: "CNY", Name: "Chinese Yuan", Symbol: "¥", Flag: "🇨🇳"},
	{Code: "AUD", Name: "Australian Dollar", Symbol: "$", Flag: "🇦🇺"},
	{Code: "CAD", Name: "Canadian Dollar", Symbol: "$", Flag: "🇨🇦"},
	{Code: "CHF", Name: "Swiss Franc", Symbol: "Fr", Flag: "🇨🇭"},
	{Code: "HKD", Name: "Hong Kong Dollar", Symbol: "$", Flag: "🇭🇰"},
	{Code: "SGD", Name: "Singapore Dollar", Symbol: "$", Flag: "🇸🇬"},
	{Code: "SEK", Name: "Swedish Krona", Symbol: "kr", Flag: "🇸🇪"},
	{Code: "NOK", Name: "Norwegian Krone", Symbol: "kr", Flag: "🇳🇴"},
	{Code: "DKK", Name: "Danish Krone", Symbol: "kr", Flag: "🇩🇰"},
	{Code: "NZD", Name: "New Zealand Dollar", Symbol: "$", Flag: "🇳🇿"},
	{Code: "KRW", Name: "South Korean Won", Symbol: "₩", Flag: "🇰🇷"},
	{Code: "INR", Name: "Indian Rupee", Symbol: "₹", Flag: "🇮🇳"},
	{Code: "BRL", Name: "Brazilian Real", Symbol: "R$", Flag: "🇧🇷"},
	{Code: "MXN", Name: "Mexican Peso", Symbol: "$", Flag: "🇲🇽"},
	{Code: "ZAR", Name: "South African Rand", Symbol: "R", Flag: "🇿🇦"},
	{Code: "RUB", Name: "Russian Ruble", Symbol: "₽", Flag: "🇷🇺"},
	{Code: "TRY", Name: "Turkish Lira", Symbol: "₺", Flag: "🇹🇷"},
	{Code: "PLN", Name: "Polish Zloty", Symbol: "zł", Flag: "🇵🇱"},
	{Code: "THB", Name: "Thai Baht", Symbol: "฿", Flag: "🇹🇭"},
	{Code: "IDR", Name: "Indonesian Rupiah", Symbol: "Rp", Flag: "🇮🇩"},
	{Code: "AED", Name: "UAE Dirham", Symbol: "د.إ", Flag: "🇦🇪"},
	{Code: "SAR", Name: "Saudi Riyal", Symbol: "﷼", Flag: "🇸🇦"},
	{Code: "ILS", Name: "Israeli Shekel", Symbol: "₪", Flag: "🇮🇱"},
	{Code: "CZK", Name: "Czech Koruna", Symbol: "Kč", Flag: "🇨🇿"},
	{Code: "HUF", Name: "Hungarian Forint", Symbol: "Ft", Flag: "🇭🇺"},
	{Code: "PHP", Name: "Philippine Peso", Symbol: "₱", Flag: "🇵🇭"},
	{Code: "BTC", Name: "Bitcoin", Symbol: "₿", Flag: "₿"},
}

// Builtin returns the fixed list with sort order taken from position.
func Builtin() []entities.Currency {
	out := make([]entities.Currency, len(builtin))
	for i, c := range builtin {
		c.SortOrder = i
		c.IsActive = false
		out[i] = c
	}
	return out
}

func Lookup(code string) (entities.Currency, bool) {
	for i, c := range builtin {
		if c.Code == code {
			c.SortOrder = i
			return c, true
		}
	}
	return entities.Currency{}, false
}
