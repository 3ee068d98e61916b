package board

import (
	"strconv"
	"strings"

	"github.com/langowen/converter/internal/conversion"
	"github.com/langowen/converter/internal/entities"
	"github.com/pkg/errors"
)

var ErrInvalidKey = errors.New("invalid keypad key")

// Converter converts amount between two currency codes using whatever rates
// are current when it is called.
type Converter func(amount float64, from, to string) float64

// Item is one row. Value is what the user typed or the formatted result;
// Amount is the unrounded number behind it.
type Item struct {
	Currency entities.Currency
	Value    string
	Amount   float64
}

// Board is the set of currencies on screen, one of which is being edited.
// Every mutation recalculates the other rows from the active one.
type Board struct {
	items      []Item
	active     int
	firstInput bool
	convert    Converter
}

func New(convert Converter, currencies []entities.Currency, amount string) *Board {
	if amount == "" {
		amount = "0"
	}

	items := make([]Item, 0, len(currencies))
	for _, c := range currencies {
		items = append(items, Item{Currency: c, Value: "0"})
	}
	if len(items) > 0 {
		items[0].Value = amount
	}

	b := &Board{
		items:      items,
		firstInput: true,
		convert:    convert,
	}
	b.Recalculate()

	return b
}

func (b *Board) Items() []Item {
	out := make([]Item, len(b.items))
	copy(out, b.items)
	return out
}

func (b *Board) Active() int {
	return b.active
}

func (b *Board) ActiveItem() (Item, bool) {
	if len(b.items) == 0 {
		return Item{}, false
	}
	return b.items[b.active], true
}

// Press applies one keypad key: a digit or ".".
func (b *Board) Press(key string) error {
	const op = "board.Press"

	if !isKey(key) {
		return errors.Wrap(ErrInvalidKey, op)
	}
	if len(b.items) == 0 {
		return nil
	}

	cur := &b.items[b.active]

	if b.firstInput {
		if key == "." {
			cur.Value = "0."
		} else {
			cur.Value = key
		}
		b.firstInput = false
	} else {
		if key == "." && strings.Contains(cur.Value, ".") {
			return nil
		}

		if cur.Value == "0" && key != "." {
			cur.Value = key
		} else {
			cur.Value += key
		}
	}

	b.Recalculate()
	return nil
}

func (b *Board) Backspace() {
	if len(b.items) == 0 {
		return
	}

	cur := &b.items[b.active]
	if len(cur.Value) > 0 {
		cur.Value = cur.Value[:len(cur.Value)-1]
		if cur.Value == "" {
			cur.Value = "0"
		}
	}

	b.Recalculate()
}

func (b *Board) Clear() {
	for i := range b.items {
		b.items[i].Value = "0"
		b.items[i].Amount = 0
	}
}

// SetAmount replaces the active value, as a calculator result does.
func (b *Board) SetAmount(amount float64) {
	if len(b.items) == 0 {
		return
	}

	b.items[b.active].Value = strconv.FormatFloat(amount, 'f', -1, 64)
	b.Recalculate()
}

// Add appends a currency unless it is already on the board.
func (b *Board) Add(c entities.Currency) bool {
	for _, item := range b.items {
		if item.Currency.Code == c.Code {
			return false
		}
	}

	item := Item{Currency: c, Value: "0"}
	if active, ok := b.ActiveItem(); ok && b.convert != nil {
		item.Amount = b.convert(parseAmount(active.Value), active.Currency.Code, c.Code)
		item.Value = conversion.FormatValue(item.Amount, c.Code)
	}

	b.items = append(b.items, item)
	return true
}

// Remove drops row i. The last remaining row cannot be removed.
func (b *Board) Remove(i int) bool {
	if len(b.items) <= 1 || i < 0 || i >= len(b.items) {
		return false
	}

	b.items = append(b.items[:i], b.items[i+1:]...)
	if b.active >= i && b.active > 0 {
		b.active--
	}

	return true
}

func (b *Board) Activate(i int) bool {
	if i < 0 || i >= len(b.items) {
		return false
	}

	b.active = i
	b.firstInput = true
	return true
}

// Move takes the row at from out and reinserts it at to, keeping the active
// row pointing at the same currency.
func (b *Board) Move(from, to int) bool {
	n := len(b.items)
	if from == to || from < 0 || from >= n || to < 0 || to >= n {
		return false
	}

	moved := b.items[from]
	b.items = append(b.items[:from], b.items[from+1:]...)
	b.items = append(b.items[:to], append([]Item{moved}, b.items[to:]...)...)

	switch {
	case b.active == from:
		b.active = to
	case b.active > from && b.active <= to:
		b.active--
	case b.active < from && b.active >= to:
		b.active++
	}

	return true
}

// Recalculate rewrites every non-active row from the active amount.
func (b *Board) Recalculate() {
	if len(b.items) == 0 || b.convert == nil {
		return
	}

	active := &b.items[b.active]
	active.Amount = parseAmount(active.Value)

	for i := range b.items {
		if i == b.active {
			continue
		}
		code := b.items[i].Currency.Code
		b.items[i].Amount = b.convert(active.Amount, active.Currency.Code, code)
		b.items[i].Value = conversion.FormatValue(b.items[i].Amount, code)
	}
}

func isKey(key string) bool {
	if key == "." {
		return true
	}
	return len(key) == 1 && key[0] >= '0' && key[0] <= '9'
}

func parseAmount(value string) float64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return v
}
