package view

import (
	"errors"
	"testing"
	"time"

	"sprout/internal/category"
	"sprout/internal/focus"
	"sprout/internal/task"
)

type fakePersister struct {
	trees, taskSaves int
	last             []task.Record
	err              error
}

func (f *fakePersister) SaveTree(*category.Tree) error {
	f.trees++
	return f.err
}

func (f *fakePersister) SaveTasks(rs []task.Record) error {
	f.taskSaves++
	f.last = rs
	return f.err
}

// work > proj1, personal
func scenarioTree(t *testing.T) *category.Tree {
	t.Helper()
	tree, err := category.FromNode(category.Node{
		ID: category.RootID, Title: "All",
		Children: []category.Node{
			{ID: "work", Title: "Work", Children: []category.Node{{ID: "proj1", Title: "Project 1"}}},
			{ID: "personal", Title: "Personal"},
		},
	})
	if err != nil {
		t.Fatalf("FromNode: %v", err)
	}
	return tree
}

func scenarioTasks() *task.Store {
	return task.NewStore([]task.Record{
		{ID: 1, Text: "standup", CategoryID: "work"},
		{ID: 2, Text: "ship", CategoryID: "proj1"},
		{ID: 3, Text: "groceries", CategoryID: "personal"},
	})
}

func texts(rs []task.Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Text
	}
	return out
}

func TestSelectFiltersByClosure(t *testing.T) {
	c := New(scenarioTree(t), scenarioTasks())
	if c.Selection() != category.RootID || len(c.Visible()) != 3 {
		t.Fatalf("initial selection %q shows %v", c.Selection(), texts(c.Visible()))
	}

	if err := c.Select("work"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	got := texts(c.Visible())
	if len(got) != 2 || got[0] != "standup" || got[1] != "ship" {
		t.Errorf("work shows %v", got)
	}

	if err := c.Select("ghost"); !errors.Is(err, category.ErrNotFound) {
		t.Errorf("Select(ghost) = %v", err)
	}
	if c.Selection() != "work" {
		t.Error("failed select changed selection")
	}
}

func TestDeleteSelectedSubtreeResetsToRoot(t *testing.T) {
	p := &fakePersister{}
	c := New(scenarioTree(t), scenarioTasks(), WithPersister(p))
	c.Select("proj1")

	n, err := c.DeleteCategory("work")
	if err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if n != 2 {
		t.Errorf("removed %d tasks, want 2", n)
	}
	if c.Selection() != category.RootID {
		t.Errorf("selection = %q, want root", c.Selection())
	}
	if got := texts(c.Visible()); len(got) != 1 || got[0] != "groceries" {
		t.Errorf("visible = %v", got)
	}
	if p.trees != 1 || p.taskSaves != 1 || len(p.last) != 1 {
		t.Errorf("persisted trees=%d tasks=%d last=%v", p.trees, p.taskSaves, p.last)
	}
}

func TestDeleteElsewhereKeepsSelection(t *testing.T) {
	c := New(scenarioTree(t), scenarioTasks())
	c.Select("work")
	if _, err := c.DeleteCategory("personal"); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if c.Selection() != "work" {
		t.Errorf("selection = %q", c.Selection())
	}
	if _, err := c.DeleteCategory(category.RootID); !errors.Is(err, category.ErrRootProtected) {
		t.Errorf("root delete = %v", err)
	}
}

func TestAddCategoryAndTaskUseSelection(t *testing.T) {
	c := New(scenarioTree(t), task.NewStore(nil))
	c.Select("work")

	id, err := c.AddCategory("Project 2")
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if parent, _ := c.Tree().Parent(id); parent != "work" {
		t.Errorf("parent = %q", parent)
	}

	due := time.Now().Add(time.Hour)
	r, err := c.AddTask("plan", &due)
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if r.CategoryID != "work" || len(c.Visible()) != 1 {
		t.Errorf("record %+v, visible %d", r, len(c.Visible()))
	}

	if _, err := c.AddTask("  ", nil); !errors.Is(err, task.ErrBlankText) {
		t.Errorf("blank AddTask = %v", err)
	}
	if _, err := c.AddCategory(""); !errors.Is(err, category.ErrBlankTitle) {
		t.Errorf("blank AddCategory = %v", err)
	}
}

func TestToggleReordersVisible(t *testing.T) {
	c := New(scenarioTree(t), scenarioTasks())
	c.Select("work")
	if _, err := c.ToggleTask(1); err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if got := texts(c.Visible()); got[0] != "ship" || got[1] != "standup" {
		t.Errorf("visible = %v", got)
	}
	if _, err := c.ToggleTask(99); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("toggle missing = %v", err)
	}
	if err := c.RemoveTask(99); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("remove missing = %v", err)
	}
	if err := c.RemoveTask(2); err != nil || len(c.Visible()) != 1 {
		t.Errorf("remove = %v, visible %v", err, texts(c.Visible()))
	}
}

func TestSaveFailureKeepsChange(t *testing.T) {
	p := &fakePersister{err: errors.New("disk full")}
	c := New(scenarioTree(t), scenarioTasks(), WithPersister(p))

	r, err := c.AddTask("still here", nil)
	if !errors.Is(err, ErrNotSaved) {
		t.Fatalf("err = %v, want ErrNotSaved", err)
	}
	if _, ok := c.Task(r.ID); !ok {
		t.Error("task rolled back after failed save")
	}
	if err := c.RenameCategory("work", "Job"); !errors.Is(err, ErrNotSaved) {
		t.Errorf("rename err = %v", err)
	}
	if title, _ := c.Tree().Title("work"); title != "Job" {
		t.Errorf("title = %q", title)
	}
}

func TestFocusCompletionCreditsTask(t *testing.T) {
	p := &fakePersister{}
	c := New(scenarioTree(t), scenarioTasks(), WithPersister(p))
	timer, err := focus.New(focus.Config{FocusSeconds: 120, BreakSeconds: 60},
		focus.WithTask(2, "ship"), focus.WithCompletionHook(c.RecordFocus))
	if err != nil {
		t.Fatalf("focus.New: %v", err)
	}
	timer.Start()
	for i := 0; i < 120; i++ {
		timer.Tick()
	}
	r, _ := c.Task(2)
	if r.TotalFocusMinutes != 2 {
		t.Errorf("minutes = %d, want 2", r.TotalFocusMinutes)
	}
	if p.taskSaves != 1 {
		t.Errorf("task saves = %d", p.taskSaves)
	}

	c.RecordFocus(404, 25)
	if p.taskSaves != 1 {
		t.Error("credit for missing task was saved")
	}
}

func TestCount(t *testing.T) {
	c := New(scenarioTree(t), scenarioTasks())
	c.ToggleTask(2)
	if total, open := c.Count("work"); total != 2 || open != 1 {
		t.Errorf("work = %d/%d", total, open)
	}
	if total, _ := c.Count(category.RootID); total != 3 {
		t.Errorf("root total = %d", total)
	}
}
