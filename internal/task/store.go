package task

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrBlankText = errors.New("task text is blank")
	ErrNotFound  = errors.New("task not found")
)

// Record is a single to-do item. CategoryID is a lookup key into the
// category tree, not an ownership edge.
type Record struct {
	ID                int64
	Text              string
	Completed         bool
	Deadline          *time.Time
	CategoryID        string
	TotalFocusMinutes int
}

// Store owns the flat list of records in insertion order.
type Store struct {
	records []Record
	now     func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now as the source of new task ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(records []Record, opts ...Option) *Store {
	s := &Store{
		records: append([]Record(nil), records...),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// All returns a copy of every record in insertion order.
func (s *Store) All() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) Get(id int64) (Record, bool) {
	i := s.index(id)
	if i < 0 {
		return Record{}, false
	}
	return s.records[i], true
}

func (s *Store) index(id int64) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// nextID derives an id from the creation time, bumped past every existing id
// so two tasks created within the same millisecond never collide.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	for _, r := range s.records {
		if r.ID >= id {
			id = r.ID + 1
		}
	}
	return id
}

// Add creates an incomplete task under categoryID.
func (s *Store) Add(text string, deadline *time.Time, categoryID string) (Record, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Record{}, ErrBlankText
	}
	r := Record{
		ID:         s.nextID(),
		Text:       text,
		CategoryID: categoryID,
	}
	if deadline != nil {
		d := *deadline
		r.Deadline = &d
	}
	s.records = append(s.records, r)
	return r, nil
}

// Remove deletes the record with id. It reports whether anything was removed.
func (s *Store) Remove(id int64) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	return true
}

func (s *Store) ToggleCompletion(id int64) (Record, error) {
	i := s.index(id)
	if i < 0 {
		return Record{}, fmt.Errorf("toggle %d: %w", id, ErrNotFound)
	}
	s.records[i].Completed = !s.records[i].Completed
	return s.records[i], nil
}

// AddFocusMinutes credits minutes of focus time to id. Non-positive amounts
// are ignored.
func (s *Store) AddFocusMinutes(id int64, minutes int) (Record, error) {
	i := s.index(id)
	if i < 0 {
		return Record{}, fmt.Errorf("focus minutes %d: %w", id, ErrNotFound)
	}
	if minutes > 0 {
		s.records[i].TotalFocusMinutes += minutes
	}
	return s.records[i], nil
}

// RemoveInCategories deletes every record filed under one of the given
// categories and returns what was removed.
func (s *Store) RemoveInCategories(categories map[string]struct{}) []Record {
	var removed []Record
	kept := s.records[:0]
	for _, r := range s.records {
		if _, ok := categories[r.CategoryID]; ok {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return removed
}

// Reassign moves every record whose category fails live to target and returns
// how many moved.
func (s *Store) Reassign(live func(categoryID string) bool, target string) int {
	moved := 0
	for i := range s.records {
		if !live(s.records[i].CategoryID) {
			s.records[i].CategoryID = target
			moved++
		}
	}
	return moved
}

// Query returns the records filed under any of the given categories, ordered
// incomplete first, then by deadline ascending with undated tasks last. Ties
// keep insertion order.
func (s *Store) Query(categories map[string]struct{}) []Record {
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if _, ok := categories[r.CategoryID]; ok {
			out = append(out, r)
		}
	}
	sortRecords(out)
	return out
}

func sortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return less(records[i], records[j])
	})
}

func less(a, b Record) bool {
	if a.Completed != b.Completed {
		return !a.Completed
	}
	switch {
	case a.Deadline == nil && b.Deadline == nil:
		return false
	case a.Deadline == nil:
		return false
	case b.Deadline == nil:
		return true
	default:
		return a.Deadline.Before(*b.Deadline)
	}
}
