package provider

import (
	"sync"
	"time"

	"github.com/langowen/converter/internal/entities"
)

// State is what readers see. Snapshot is shared and must not be modified.
type State struct {
	Snapshot  *entities.RateSnapshot
	Source    string
	Notice    string
	Stale     bool
	Failed    bool
	UpdatedAt time.Time
	Seq       uint64
}

// Store holds the single current State. Writes carry the sequence number of
// the refresh that produced them; anything not newer than the applied one is
// discarded.
type Store struct {
	mu      sync.RWMutex
	current State
	subs    []chan State
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

func (s *Store) Commit(next State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if next.Seq <= s.current.Seq {
		return false
	}

	s.current = next
	s.notify()

	return true
}

// Fail records a failed cycle. The previous snapshot stays in effect and
// Seq is left alone, so an older refresh that still returns data can land.
func (s *Store) Fail(seq uint64, notice string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.current.Seq {
		return false
	}

	s.current.Notice = notice
	s.current.Failed = true
	s.notify()

	return true
}

// Subscribe returns a channel that always holds the latest applied State.
// Slow readers skip intermediate states.
func (s *Store) Subscribe() <-chan State {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan State, 1)
	s.subs = append(s.subs, ch)

	return ch
}

func (s *Store) notify() {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.current
	}
}
