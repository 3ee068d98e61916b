package app

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/langowen/converter/internal/board"
	"github.com/langowen/converter/internal/conversion"
	"github.com/langowen/converter/internal/rate_provider/provider"
)

var (
	activeColor = color.New(color.FgGreen, color.Bold)
	staleColor  = color.New(color.FgYellow)
	failedColor = color.New(color.FgRed)
)

// Render writes the board, the age of the rates and any notice.
func Render(w io.Writer, b *board.Board, state provider.State, now time.Time) {
	for i, item := range b.Items() {
		if i == b.Active() {
			activeColor.Fprintln(w, row(item, item.Value)+"  <")
			continue
		}
		fmt.Fprintln(w, row(item, displayValue(item)))
	}

	fmt.Fprintf(w, "\nLast updated: %s", board.LastUpdatedLabel(state.UpdatedAt, now))
	if state.Source != "" {
		fmt.Fprintf(w, " (%s)", state.Source)
	}
	fmt.Fprintln(w)

	switch {
	case state.Failed:
		failedColor.Fprintln(w, state.Notice)
	case state.Notice != "":
		staleColor.Fprintln(w, state.Notice)
	}
}

func row(item board.Item, value string) string {
	return fmt.Sprintf("%s %-4s %14s", item.Currency.Flag, item.Currency.Code, value)
}

// displayValue switches converted amounts too small for fixed places to
// scientific notation.
func displayValue(item board.Item) string {
	if conversion.UseScientificNotation(item.Amount) {
		return strconv.FormatFloat(item.Amount, 'e', 4, 64)
	}
	return item.Value
}
