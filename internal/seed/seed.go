// Package seed provides the dataset a fresh install starts with.
package seed

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"sprout/internal/category"
	"sprout/internal/storage"
	"sprout/internal/task"
)

//go:embed seed.yaml
var raw []byte

type dataset struct {
	Categories category.Node `yaml:"categories"`
	Tasks      []seedTask    `yaml:"tasks"`
}

type seedTask struct {
	ID        int64  `yaml:"id"`
	Text      string `yaml:"text"`
	Completed bool   `yaml:"completed"`
	Due       string `yaml:"due"`
	Category  string `yaml:"category"`
}

// State builds the default dataset with deadlines relative to now. The same
// now always yields the same state.
func State(now time.Time) (storage.State, error) {
	return parse(raw, now)
}

func parse(data []byte, now time.Time) (storage.State, error) {
	var ds dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return storage.State{}, fmt.Errorf("parse seed: %w", err)
	}
	tree, err := category.FromNode(ds.Categories)
	if err != nil {
		return storage.State{}, fmt.Errorf("seed categories: %w", err)
	}
	now = now.Truncate(time.Second)
	records := make([]task.Record, 0, len(ds.Tasks))
	for _, st := range ds.Tasks {
		if !tree.Contains(st.Category) {
			return storage.State{}, fmt.Errorf("seed task %d: unknown category %q", st.ID, st.Category)
		}
		r := task.Record{ID: st.ID, Text: st.Text, Completed: st.Completed, CategoryID: st.Category}
		if st.Due != "" {
			offset, err := time.ParseDuration(st.Due)
			if err != nil {
				return storage.State{}, fmt.Errorf("seed task %d due: %w", st.ID, err)
			}
			d := now.Add(offset)
			r.Deadline = &d
		}
		records = append(records, r)
	}
	return storage.State{Tree: tree, Tasks: records}, nil
}

// Func adapts State to the callback storage.Repository.LoadOrSeed expects.
func Func(now func() time.Time) func() (storage.State, error) {
	return func() (storage.State, error) {
		return State(now())
	}
}
