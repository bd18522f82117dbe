package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"sprout/internal/category"
	"sprout/internal/task"
)

const (
	KeyCategories     = "categories"
	KeyTasks          = "todos"
	KeySettings       = "settings"
	KeyPanelCollapsed = "categoryPanelCollapsed"
)

// ErrCorrupt marks persisted data that could not be decoded.
var ErrCorrupt = errors.New("persisted data is corrupt")

// SerializationError reports which key held undecodable data.
type SerializationError struct {
	Key string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Key, e.Err)
}

func (e *SerializationError) Unwrap() []error {
	return []error{ErrCorrupt, e.Err}
}

// State is everything the tracker keeps between runs.
type State struct {
	Tree  *category.Tree
	Tasks []task.Record
}

// Settings are the pomodoro durations chosen in the settings dialog.
type Settings struct {
	FocusMinutes int `json:"focusMinutes"`
	BreakMinutes int `json:"breakMinutes"`
}

type taskRow struct {
	ID                int64   `json:"id"`
	Text              string  `json:"text"`
	Completed         bool    `json:"completed"`
	Deadline          *string `json:"deadline"`
	CategoryID        string  `json:"categoryId"`
	TotalFocusMinutes int     `json:"totalFocusMinutes"`
}

// Repository maps tracker state onto a KV store.
type Repository struct {
	kv KV
}

func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

func (r *Repository) SaveTree(t *category.Tree) error {
	data, err := json.Marshal(t.Export())
	if err != nil {
		return err
	}
	return r.kv.Set(KeyCategories, string(data))
}

func (r *Repository) SaveTasks(records []task.Record) error {
	rows := make([]taskRow, 0, len(records))
	for _, rec := range records {
		row := taskRow{
			ID:                rec.ID,
			Text:              rec.Text,
			Completed:         rec.Completed,
			CategoryID:        rec.CategoryID,
			TotalFocusMinutes: rec.TotalFocusMinutes,
		}
		if rec.Deadline != nil {
			s := rec.Deadline.UTC().Format(time.RFC3339)
			row.Deadline = &s
		}
		rows = append(rows, row)
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return r.kv.Set(KeyTasks, string(data))
}

func (r *Repository) Save(st State) error {
	if err := r.SaveTree(st.Tree); err != nil {
		return fmt.Errorf("save categories: %w", err)
	}
	if err := r.SaveTasks(st.Tasks); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// Load reads the stored state. found is false when nothing has been saved yet.
func (r *Repository) Load() (st State, found bool, err error) {
	raw, ok, err := r.kv.Get(KeyCategories)
	if err != nil {
		return State{}, false, err
	}
	if !ok {
		return State{}, false, nil
	}
	var root category.Node
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return State{}, true, &SerializationError{Key: KeyCategories, Err: err}
	}
	tree, err := category.FromNode(root)
	if err != nil {
		return State{}, true, &SerializationError{Key: KeyCategories, Err: err}
	}

	records, err := r.loadTasks()
	if err != nil {
		return State{}, true, err
	}
	return State{Tree: tree, Tasks: records}, true, nil
}

func (r *Repository) loadTasks() ([]task.Record, error) {
	raw, ok, err := r.kv.Get(KeyTasks)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var rows []taskRow
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, &SerializationError{Key: KeyTasks, Err: err}
	}
	records := make([]task.Record, 0, len(rows))
	seen := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Text) == "" {
			return nil, &SerializationError{Key: KeyTasks, Err: fmt.Errorf("task %d has no text", row.ID)}
		}
		if _, dup := seen[row.ID]; dup {
			return nil, &SerializationError{Key: KeyTasks, Err: fmt.Errorf("duplicate task id %d", row.ID)}
		}
		seen[row.ID] = struct{}{}
		rec := task.Record{
			ID:                row.ID,
			Text:              row.Text,
			Completed:         row.Completed,
			CategoryID:        row.CategoryID,
			TotalFocusMinutes: max(row.TotalFocusMinutes, 0),
		}
		if row.Deadline != nil {
			parsed, err := time.Parse(time.RFC3339, *row.Deadline)
			if err != nil {
				return nil, &SerializationError{Key: KeyTasks, Err: err}
			}
			local := parsed.Local()
			rec.Deadline = &local
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadOrSeed returns the stored state, or the seed dataset when the store is
// empty or holds data that cannot be decoded. Orphaned tasks are re-filed
// under the root and saved. Only I/O failures are returned as errors.
func (r *Repository) LoadOrSeed(seed func() (State, error), logger *log.Logger) (State, error) {
	st, found, err := r.Load()
	var serr *SerializationError
	switch {
	case errors.As(err, &serr):
		logger.Warn("stored data unreadable, starting from seed", "key", serr.Key, "err", serr.Err)
	case err != nil:
		return State{}, err
	case found:
		store := task.NewStore(st.Tasks)
		if moved := store.Reassign(st.Tree.Contains, category.RootID); moved > 0 {
			logger.Info("re-filed orphaned tasks under root", "count", moved)
			st.Tasks = store.All()
			if err := r.SaveTasks(st.Tasks); err != nil {
				logger.Warn("re-filed tasks not saved", "err", err)
			}
		}
		return st, nil
	}

	st, err = seed()
	if err != nil {
		return State{}, fmt.Errorf("seed: %w", err)
	}
	if err := r.Save(st); err != nil {
		return State{}, err
	}
	logger.Info("seeded default dataset", "categories", st.Tree.Len(), "tasks", len(st.Tasks))
	return st, nil
}

// Settings returns the saved pomodoro settings.
func (r *Repository) Settings() (Settings, bool, error) {
	raw, ok, err := r.kv.Get(KeySettings)
	if err != nil || !ok {
		return Settings{}, false, err
	}
	var s Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Settings{}, false, &SerializationError{Key: KeySettings, Err: err}
	}
	return s, true, nil
}

func (r *Repository) SaveSettings(s Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.kv.Set(KeySettings, string(data))
}

func (r *Repository) PanelCollapsed() (bool, error) {
	raw, ok, err := r.kv.Get(KeyPanelCollapsed)
	if err != nil || !ok {
		return false, err
	}
	collapsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &SerializationError{Key: KeyPanelCollapsed, Err: err}
	}
	return collapsed, nil
}

func (r *Repository) SavePanelCollapsed(collapsed bool) error {
	return r.kv.Set(KeyPanelCollapsed, strconv.FormatBool(collapsed))
}

// Clear removes every key the tracker owns.
func (r *Repository) Clear() error {
	for _, key := range []string{KeyCategories, KeyTasks, KeySettings, KeyPanelCollapsed} {
		if err := r.kv.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
