package app

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/langowen/converter/internal/board"
	"github.com/langowen/converter/internal/catalog"
	"github.com/langowen/converter/internal/rate_provider/provider"
)

const (
	keyCtrlC     = 3
	keyCtrlH     = 8
	keyTab       = '\t'
	keyEnter     = '\r'
	keyNewline   = '\n'
	keyEsc       = 27
	keyBackspace = 127

	maxCodeLen   = 5
	maxAddable   = 12
	helpLine     = "0-9 . bksp: edit  =: calc  +/-: add/remove  j/k: select  J/K: move  c: clear  r: refresh  q: quit"
	refreshing   = "Refreshing rates..."
	badCalcValue = "Calculator result must be a non-negative number"
)

type promptMode int

const (
	promptNone promptMode = iota
	promptAdd
	promptRemove
)

// session turns keystrokes into board edits for the interactive converter.
type session struct {
	provider *provider.Provider
	board    *board.Board
	catalog  *catalog.Catalog

	calc    *board.Calculator
	prompt  promptMode
	input   string
	message string

	wg sync.WaitGroup
}

func newSession(p *provider.Provider, b *board.Board, cat *catalog.Catalog) *session {
	return &session{
		provider: p,
		board:    b,
		catalog:  cat,
	}
}

// handle applies one key and reports whether the session goes on.
func (s *session) handle(ctx context.Context, key byte) bool {
	s.message = ""

	switch {
	case key == keyCtrlC:
		return false
	case s.prompt != promptNone:
		s.editPrompt(ctx, key)
		return true
	case s.calc != nil:
		s.editCalc(key)
		return true
	}

	n := len(s.board.Items())
	active := s.board.Active()

	switch key {
	case 'q':
		return false
	case keyBackspace, keyCtrlH:
		s.board.Backspace()
	case 'c':
		s.board.Clear()
	case 'r':
		s.refresh(ctx)
	case '=':
		if item, ok := s.board.ActiveItem(); ok {
			s.calc = board.NewCalculator(item.Value)
		}
	case '+':
		s.prompt, s.input = promptAdd, ""
	case '-':
		s.prompt, s.input = promptRemove, ""
	case 'j', keyTab:
		if n > 0 {
			s.board.Activate((active + 1) % n)
		}
	case 'k':
		if n > 0 {
			s.board.Activate((active - 1 + n) % n)
		}
	case 'J':
		s.board.Move(active, active+1)
	case 'K':
		s.board.Move(active, active-1)
	default:
		// anything that is not a digit or "." is ignored
		_ = s.board.Press(string(key))
	}

	return true
}

func (s *session) editCalc(key byte) {
	switch key {
	case '=', keyEnter, keyNewline:
		result := s.calc.Result()
		s.calc = nil
		if result < 0 || math.IsNaN(result) || math.IsInf(result, 0) {
			s.message = badCalcValue
			return
		}
		s.board.SetAmount(result)
	case keyEsc:
		s.calc = nil
	case 'c':
		s.calc.Press("C")
	default:
		s.calc.Press(string(key))
	}
}

func (s *session) editPrompt(ctx context.Context, key byte) {
	switch {
	case key == keyEsc:
		s.prompt, s.input = promptNone, ""
	case key == keyBackspace || key == keyCtrlH:
		if len(s.input) > 0 {
			s.input = s.input[:len(s.input)-1]
		}
	case key == keyEnter || key == keyNewline:
		mode, code := s.prompt, s.input
		s.prompt, s.input = promptNone, ""
		if code == "" {
			return
		}
		if mode == promptAdd {
			s.add(ctx, code)
		} else {
			s.remove(code)
		}
	case isLetter(key) && len(s.input) < maxCodeLen:
		s.input += strings.ToUpper(string(key))
	}
}

// add puts code on the board. Codes outside the catalog are accepted when
// the current snapshot carries a rate for them.
func (s *session) add(ctx context.Context, code string) {
	c, ok := s.catalog.Find(ctx, code)
	if !ok {
		if _, known := s.provider.Current().Snapshot.Rate(code); !known {
			s.message = fmt.Sprintf("Unknown currency %s", code)
			return
		}
		c.Code, c.Name = code, code
	}

	if !s.board.Add(c) {
		s.message = fmt.Sprintf("%s is already on the board", code)
	}
}

func (s *session) remove(code string) {
	for i, item := range s.board.Items() {
		if item.Currency.Code != code {
			continue
		}
		if !s.board.Remove(i) {
			s.message = "The last currency cannot be removed"
		}
		return
	}

	s.message = fmt.Sprintf("%s is not on the board", code)
}

// refresh runs a manual refresh in the background; the new state arrives
// through the provider subscription.
func (s *session) refresh(ctx context.Context) {
	s.message = refreshing

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.provider.Refresh(ctx)
	}()
}

func (s *session) wait() {
	s.wg.Wait()
}

// addable lists rate codes that are not on the board yet.
func (s *session) addable() []string {
	onBoard := make(map[string]bool)
	for _, item := range s.board.Items() {
		onBoard[item.Currency.Code] = true
	}

	var out []string
	for _, code := range s.provider.Current().Snapshot.Codes() {
		if !onBoard[code] {
			out = append(out, code)
		}
	}
	return out
}

func (s *session) draw(w io.Writer, state provider.State, now time.Time) {
	Render(w, s.board, state, now)
	fmt.Fprintln(w)

	switch {
	case s.calc != nil:
		fmt.Fprintf(w, "Calculator: %s\n", s.calc.Display())
	case s.prompt == promptAdd:
		codes := s.addable()
		hint := strings.Join(codes, " ")
		if len(codes) > maxAddable {
			hint = strings.Join(codes[:maxAddable], " ") + " ..."
		}
		fmt.Fprintf(w, "Add currency [%s]: %s\n", hint, s.input)
	case s.prompt == promptRemove:
		fmt.Fprintf(w, "Remove currency: %s\n", s.input)
	}

	if s.message != "" {
		fmt.Fprintln(w, s.message)
	}
	fmt.Fprintln(w, helpLine)
}

func isLetter(key byte) bool {
	return (key >= 'a' && key <= 'z') || (key >= 'A' && key <= 'Z')
}
