// Package category holds the category hierarchy tasks are filed under.
//
// The tree is stored as an arena: every node lives in a map keyed by id and
// refers to its children by id. Mutations only append leaves or cut whole
// subtrees, so the structure can never acquire a cycle.
package category

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RootID is the id of the node that always exists and stands for "everything".
const RootID = "root"

var (
	ErrBlankTitle    = errors.New("category title is blank")
	ErrNotFound      = errors.New("category not found")
	ErrRootProtected = errors.New("root category cannot be renamed or deleted")
)

// Node is the nested form of a category, used for persistence and rendering.
type Node struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Children []Node `json:"children" yaml:"children"`
}

// Set is a set of category ids.
type Set map[string]struct{}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

type entry struct {
	title    string
	parent   string
	children []string
}

type Tree struct {
	nodes map[string]*entry
	newID func() string
}

// New returns a tree holding only the root node.
func New(rootTitle string) *Tree {
	t := &Tree{nodes: make(map[string]*entry), newID: uuid.NewString}
	t.nodes[RootID] = &entry{title: rootTitle}
	return t
}

// FromNode rebuilds a tree from its nested form. The top node must carry
// RootID and ids must be unique and non-empty.
func FromNode(root Node) (*Tree, error) {
	if root.ID != RootID {
		return nil, fmt.Errorf("top node id %q, want %q", root.ID, RootID)
	}
	t := New(root.Title)
	if err := t.attach(RootID, root.Children); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) attach(parent string, children []Node) error {
	for _, c := range children {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("node under %q has an empty id", parent)
		}
		if _, dup := t.nodes[c.ID]; dup {
			return fmt.Errorf("duplicate category id %q", c.ID)
		}
		t.nodes[c.ID] = &entry{title: c.Title, parent: parent}
		p := t.nodes[parent]
		p.children = append(p.children, c.ID)
		if err := t.attach(c.ID, c.Children); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of nodes, root included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Contains reports whether id names a live node.
func (t *Tree) Contains(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// Title returns the title of id.
func (t *Tree) Title(id string) (string, bool) {
	e, ok := t.nodes[id]
	if !ok {
		return "", false
	}
	return e.title, true
}

// Parent returns the parent of id. The root has no parent.
func (t *Tree) Parent(id string) (string, bool) {
	e, ok := t.nodes[id]
	if !ok || id == RootID {
		return "", false
	}
	return e.parent, true
}

// Children returns the child ids of id in insertion order.
func (t *Tree) Children(id string) []string {
	e, ok := t.nodes[id]
	if !ok {
		return nil
	}
	out := make([]string, len(e.children))
	copy(out, e.children)
	return out
}

// Find returns the subtree rooted at id in nested form.
func (t *Tree) Find(id string) (Node, bool) {
	if _, ok := t.nodes[id]; !ok {
		return Node{}, false
	}
	return t.export(id), true
}

// Export returns the whole tree in nested form.
func (t *Tree) Export() Node {
	return t.export(RootID)
}

func (t *Tree) export(id string) Node {
	e := t.nodes[id]
	n := Node{ID: id, Title: e.title, Children: make([]Node, 0, len(e.children))}
	for _, c := range e.children {
		n.Children = append(n.Children, t.export(c))
	}
	return n
}

// Closure returns id and all of its transitive descendants. It is empty when
// id is unknown.
func (t *Tree) Closure(id string) Set {
	out := make(Set)
	if _, ok := t.nodes[id]; !ok {
		return out
	}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out[cur] = struct{}{}
		stack = append(stack, t.nodes[cur].children...)
	}
	return out
}

// Walk visits every node in depth-first pre-order, children in insertion order.
func (t *Tree) Walk(fn func(id, title string, depth int)) {
	var visit func(id string, depth int)
	visit = func(id string, depth int) {
		e := t.nodes[id]
		fn(id, e.title, depth)
		for _, c := range e.children {
			visit(c, depth+1)
		}
	}
	visit(RootID, 0)
}

// Insert appends a new leaf titled title under parentID and returns its id.
func (t *Tree) Insert(parentID, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrBlankTitle
	}
	p, ok := t.nodes[parentID]
	if !ok {
		return "", fmt.Errorf("parent %q: %w", parentID, ErrNotFound)
	}
	id := t.newID()
	for t.Contains(id) {
		id = t.newID()
	}
	t.nodes[id] = &entry{title: title, parent: parentID}
	p.children = append(p.children, id)
	return id, nil
}

// Rename replaces the title of id. Children are untouched. The root keeps
// its title.
func (t *Tree) Rename(id, title string) error {
	if id == RootID {
		return ErrRootProtected
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrBlankTitle
	}
	e, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("rename %q: %w", id, ErrNotFound)
	}
	e.title = title
	return nil
}

// Delete removes id together with its whole subtree and returns the ids that
// were removed.
func (t *Tree) Delete(id string) (Set, error) {
	if id == RootID {
		return nil, ErrRootProtected
	}
	e, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("delete %q: %w", id, ErrNotFound)
	}
	removed := t.Closure(id)
	p := t.nodes[e.parent]
	for i, c := range p.children {
		if c == id {
			p.children = append(p.children[:i:i], p.children[i+1:]...)
			break
		}
	}
	for r := range removed {
		delete(t.nodes, r)
	}
	return removed, nil
}
