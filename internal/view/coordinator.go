// Package view ties the category tree, the task store and the focus timer
// together behind the current sidebar selection.
//
// Every mutation recomputes the visible task list and writes the changed
// collection through the Persister. A failed write never rolls back the
// in-memory change; the mutation still returns its result together with an
// error matching ErrNotSaved.
package view

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"sprout/internal/category"
	"sprout/internal/task"
)

var ErrNotSaved = errors.New("change not saved")

// Persister stores the tree and task list after they change.
type Persister interface {
	SaveTree(*category.Tree) error
	SaveTasks([]task.Record) error
}

type Coordinator struct {
	tree    *category.Tree
	tasks   *task.Store
	persist Persister
	logger  *log.Logger

	selection string
	visible   []task.Record
}

type Option func(*Coordinator)

func WithPersister(p Persister) Option {
	return func(c *Coordinator) { c.persist = p }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// New selects the root and computes the initial visible list.
func New(tree *category.Tree, tasks *task.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		tree:      tree,
		tasks:     tasks,
		logger:    log.New(io.Discard),
		selection: category.RootID,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.refresh()
	return c
}

// Tree exposes the category tree for rendering. Callers must not mutate it.
func (c *Coordinator) Tree() *category.Tree {
	return c.tree
}

func (c *Coordinator) Selection() string {
	return c.selection
}

// Visible returns the sorted tasks under the current selection.
func (c *Coordinator) Visible() []task.Record {
	return c.visible
}

func (c *Coordinator) Task(id int64) (task.Record, bool) {
	return c.tasks.Get(id)
}

// AllTasks returns every task regardless of selection.
func (c *Coordinator) AllTasks() []task.Record {
	return c.tasks.All()
}

// Count returns how many tasks, and how many of them are open, are filed
// under id or its descendants.
func (c *Coordinator) Count(id string) (total, open int) {
	for _, r := range c.tasks.Query(c.tree.Closure(id)) {
		total++
		if !r.Completed {
			open++
		}
	}
	return total, open
}

// Select makes id the current selection.
func (c *Coordinator) Select(id string) error {
	if !c.tree.Contains(id) {
		return fmt.Errorf("select %q: %w", id, category.ErrNotFound)
	}
	c.selection = id
	c.refresh()
	return nil
}

// AddCategory creates a child of the current selection.
func (c *Coordinator) AddCategory(title string) (string, error) {
	id, err := c.tree.Insert(c.selection, title)
	if err != nil {
		return "", err
	}
	c.refresh()
	return id, c.saveTree()
}

func (c *Coordinator) RenameCategory(id, title string) error {
	if err := c.tree.Rename(id, title); err != nil {
		return err
	}
	return c.saveTree()
}

// DeleteCategory removes id with its subtree and every task filed under it.
// The selection falls back to the root when it was inside the removed
// subtree. It returns the number of tasks removed.
func (c *Coordinator) DeleteCategory(id string) (int, error) {
	removed, err := c.tree.Delete(id)
	if err != nil {
		return 0, err
	}
	dropped := c.tasks.RemoveInCategories(removed)
	if removed.Has(c.selection) {
		c.selection = category.RootID
	}
	c.refresh()
	c.logger.Debug("category deleted", "id", id, "categories", len(removed), "tasks", len(dropped))
	return len(dropped), errors.Join(c.saveTree(), c.saveTasks())
}

// AddTask files a new task under the current selection.
func (c *Coordinator) AddTask(text string, deadline *time.Time) (task.Record, error) {
	r, err := c.tasks.Add(text, deadline, c.selection)
	if err != nil {
		return task.Record{}, err
	}
	c.refresh()
	return r, c.saveTasks()
}

func (c *Coordinator) ToggleTask(id int64) (task.Record, error) {
	r, err := c.tasks.ToggleCompletion(id)
	if err != nil {
		return task.Record{}, err
	}
	c.refresh()
	return r, c.saveTasks()
}

func (c *Coordinator) RemoveTask(id int64) error {
	if !c.tasks.Remove(id) {
		return fmt.Errorf("remove %d: %w", id, task.ErrNotFound)
	}
	c.refresh()
	return c.saveTasks()
}

// RecordFocus credits a finished focus session. Its signature matches
// focus.CompletionHook.
func (c *Coordinator) RecordFocus(taskID int64, minutes int) {
	r, err := c.tasks.AddFocusMinutes(taskID, minutes)
	if err != nil {
		c.logger.Warn("focus credit dropped", "task", taskID, "err", err)
		return
	}
	c.refresh()
	c.logger.Info("focus recorded", "task", taskID, "minutes", minutes, "total", r.TotalFocusMinutes)
	if err := c.saveTasks(); err != nil {
		c.logger.Error("save after focus", "err", err)
	}
}

func (c *Coordinator) refresh() {
	c.visible = c.tasks.Query(c.tree.Closure(c.selection))
}

func (c *Coordinator) saveTree() error {
	if c.persist == nil {
		return nil
	}
	if err := c.persist.SaveTree(c.tree); err != nil {
		c.logger.Error("save categories", "err", err)
		return fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	return nil
}

func (c *Coordinator) saveTasks() error {
	if c.persist == nil {
		return nil
	}
	if err := c.persist.SaveTasks(c.tasks.All()); err != nil {
		c.logger.Error("save tasks", "err", err)
		return fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	return nil
}
