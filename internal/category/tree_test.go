package category

import (
	"errors"
	"reflect"
	"testing"
)

func sampleTree(t *testing.T) *Tree {
	t.Helper()
	tree, err := FromNode(Node{
		ID:    RootID,
		Title: "All projects",
		Children: []Node{
			{ID: "work", Title: "Work", Children: []Node{
				{ID: "proj1", Title: "Project 1"},
			}},
			{ID: "personal", Title: "Personal"},
		},
	})
	if err != nil {
		t.Fatalf("FromNode: %v", err)
	}
	return tree
}

func keys(s Set) map[string]bool {
	out := make(map[string]bool, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func TestClosure(t *testing.T) {
	tree := sampleTree(t)

	tests := []struct {
		id   string
		want []string
	}{
		{RootID, []string{RootID, "work", "proj1", "personal"}},
		{"work", []string{"work", "proj1"}},
		{"proj1", []string{"proj1"}},
		{"missing", nil},
	}
	for _, tt := range tests {
		got := keys(tree.Closure(tt.id))
		want := map[string]bool{}
		for _, id := range tt.want {
			want[id] = true
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Closure(%q) = %v, want %v", tt.id, got, want)
		}
	}
}

func TestInsertAppendsLeaf(t *testing.T) {
	tree := sampleTree(t)

	id, err := tree.Insert("work", "  Project 2 ")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got := tree.Children("work"); !reflect.DeepEqual(got, []string{"proj1", id}) {
		t.Errorf("children of work = %v", got)
	}
	if title, _ := tree.Title(id); title != "Project 2" {
		t.Errorf("title = %q, want trimmed", title)
	}
	if len(tree.Children(id)) != 0 {
		t.Error("new node should be a leaf")
	}
	if parent, _ := tree.Parent(id); parent != "work" {
		t.Errorf("parent = %q", parent)
	}
}

func TestInsertRejectsBlankAndUnknownParent(t *testing.T) {
	tree := sampleTree(t)
	before := tree.Len()

	if _, err := tree.Insert("work", "   "); !errors.Is(err, ErrBlankTitle) {
		t.Errorf("blank title err = %v", err)
	}
	if _, err := tree.Insert("nope", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown parent err = %v", err)
	}
	if tree.Len() != before {
		t.Errorf("tree changed on failed insert: %d -> %d", before, tree.Len())
	}
}

func TestInsertIDsAreUnique(t *testing.T) {
	tree := New("All")
	seen := map[string]bool{RootID: true}
	for i := 0; i < 200; i++ {
		id, err := tree.Insert(RootID, "node")
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestInsertRetriesOnCollision(t *testing.T) {
	tree := sampleTree(t)
	ids := []string{"work", "proj1", "fresh"}
	tree.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	id, err := tree.Insert(RootID, "x")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id != "fresh" {
		t.Errorf("id = %q, want fresh", id)
	}
}

func TestRename(t *testing.T) {
	tree := sampleTree(t)

	if err := tree.Rename("work", "Job"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if title, _ := tree.Title("work"); title != "Job" {
		t.Errorf("title = %q", title)
	}
	if got := tree.Children("work"); !reflect.DeepEqual(got, []string{"proj1"}) {
		t.Errorf("children changed: %v", got)
	}

	if err := tree.Rename("work", " "); !errors.Is(err, ErrBlankTitle) {
		t.Errorf("blank rename err = %v", err)
	}
	if err := tree.Rename("ghost", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing rename err = %v", err)
	}
	if err := tree.Rename(RootID, "Everything"); !errors.Is(err, ErrRootProtected) {
		t.Errorf("root rename err = %v", err)
	}
	if title, _ := tree.Title(RootID); title == "Everything" {
		t.Error("root was renamed")
	}
	if title, _ := tree.Title("work"); title != "Job" {
		t.Errorf("failed rename changed title to %q", title)
	}
}

func TestDeleteRemovesSubtree(t *testing.T) {
	tree := sampleTree(t)

	removed, err := tree.Delete("work")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if want := map[string]bool{"work": true, "proj1": true}; !reflect.DeepEqual(keys(removed), want) {
		t.Errorf("removed = %v", keys(removed))
	}
	for _, id := range []string{"work", "proj1"} {
		if tree.Contains(id) {
			t.Errorf("%s still present", id)
		}
	}
	if got := tree.Children(RootID); !reflect.DeepEqual(got, []string{"personal"}) {
		t.Errorf("root children = %v", got)
	}
}

func TestDeleteRootAndMissing(t *testing.T) {
	tree := sampleTree(t)

	if _, err := tree.Delete(RootID); !errors.Is(err, ErrRootProtected) {
		t.Errorf("root delete err = %v", err)
	}
	if _, err := tree.Delete("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing delete err = %v", err)
	}
	if tree.Len() != 4 {
		t.Errorf("len = %d", tree.Len())
	}
}

func TestExportRoundTrip(t *testing.T) {
	tree := sampleTree(t)
	again, err := FromNode(tree.Export())
	if err != nil {
		t.Fatalf("FromNode: %v", err)
	}
	if !reflect.DeepEqual(tree.Export(), again.Export()) {
		t.Errorf("export mismatch:\n%#v\n%#v", tree.Export(), again.Export())
	}
}

func TestFromNodeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		root Node
	}{
		{"wrong root id", Node{ID: "top"}},
		{"duplicate id", Node{ID: RootID, Children: []Node{{ID: "a"}, {ID: "a"}}}},
		{"empty id", Node{ID: RootID, Children: []Node{{ID: " "}}}},
		{"root reused", Node{ID: RootID, Children: []Node{{ID: RootID}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromNode(tt.root); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWalkOrder(t *testing.T) {
	tree := sampleTree(t)
	var got []string
	var depths []int
	tree.Walk(func(id, _ string, depth int) {
		got = append(got, id)
		depths = append(depths, depth)
	})
	if want := []string{RootID, "work", "proj1", "personal"}; !reflect.DeepEqual(got, want) {
		t.Errorf("walk = %v", got)
	}
	if want := []int{0, 1, 2, 1}; !reflect.DeepEqual(depths, want) {
		t.Errorf("depths = %v", depths)
	}
}

func TestFind(t *testing.T) {
	tree := sampleTree(t)
	n, ok := tree.Find("work")
	if !ok {
		t.Fatal("work not found")
	}
	if n.Title != "Work" || len(n.Children) != 1 || n.Children[0].ID != "proj1" {
		t.Errorf("Find(work) = %#v", n)
	}
	if _, ok := tree.Find("ghost"); ok {
		t.Error("ghost found")
	}
}
