// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tree assembles category records into a forest and answers
// structural questions about it: children of a node, the ancestor path of
// a node, and the flattened set of IDs under a node.
//
// Category records declare their children; they do not know their parent.
// Assembly therefore inverts the declared edges into a child → parent
// index first, and only then links nodes. Every traversal in this package
// follows the linked Children, never the raw declared IDs, so a cycle in
// the source data can hide nodes but can never make a traversal loop.
package tree

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"treepress/internal/models"
)

// Node is a category placed in an assembled forest.
type Node struct {
	ID       string          `json:"id"`
	ParentID string          `json:"parent_id,omitempty"`
	Category models.Category `json:"category"`
	Children []*Node         `json:"children"`

	parent *Node
}

// IsRoot reports whether the node has no resolved parent.
func (n *Node) IsRoot() bool {
	return n.ParentID == ""
}

// Forest is the result of one assembly. It is immutable once returned and
// is never shared between queries.
type Forest struct {
	// Roots are the unparented nodes in sibling order.
	Roots []*Node

	nodes map[string]*Node
}

// Len returns the number of distinct category IDs in the forest,
// including any that are unreachable from a root.
func (f *Forest) Len() int {
	return len(f.nodes)
}

// ChildrenOf returns the nodes whose resolved parent is parentID, in
// sibling order. An empty parentID selects the roots. Unknown IDs yield an
// empty slice.
func (f *Forest) ChildrenOf(parentID string) []*Node {
	if parentID == "" {
		return f.Roots
	}
	n, ok := f.nodes[parentID]
	if !ok {
		return []*Node{}
	}
	return n.Children
}

// ConflictError reports data that the strict assembler refuses: child IDs
// declared by more than one parent, and IDs that no root can reach
// because they sit on a cycle.
type ConflictError struct {
	// MultipleParents maps a child ID to every parent that declares it,
	// in processing order.
	MultipleParents map[string][]string
	// Unreachable lists IDs that have a parent but no root above them.
	Unreachable []string
}

func (e *ConflictError) Error() string {
	var parts []string
	if len(e.MultipleParents) > 0 {
		ids := make([]string, 0, len(e.MultipleParents))
		for id := range e.MultipleParents {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			parts = append(parts, fmt.Sprintf("%s claimed by %s", id, strings.Join(e.MultipleParents[id], ", ")))
		}
	}
	if len(e.Unreachable) > 0 {
		parts = append(parts, "unreachable: "+strings.Join(e.Unreachable, ", "))
	}
	return "category tree conflict: " + strings.Join(parts, "; ")
}

// Assembler builds forests from category records.
type Assembler struct {
	// StrictParents rejects records in which a child is declared by more
	// than one parent or sits on a cycle. When false, the last parent to
	// declare a child wins and cyclic nodes are left out of the roots.
	StrictParents bool
}

// Build assembles records into a forest. Duplicate record IDs keep the last
// record. Declared child IDs that match no record are dropped. Build only
// returns an error in strict mode.
func (a Assembler) Build(records []models.Category) (*Forest, error) {
	byID, order := indexRecords(records)
	parents, claims := parentIndex(byID, order)

	nodes := make(map[string]*Node, len(order))
	for _, id := range order {
		nodes[id] = &Node{ID: id, ParentID: parents[id], Category: byID[id]}
	}

	grouped := make(map[string][]*Node, len(parents))
	var roots []*Node
	for _, id := range order {
		n := nodes[id]
		if n.ParentID == "" {
			roots = append(roots, n)
			continue
		}
		grouped[n.ParentID] = append(grouped[n.ParentID], n)
	}

	for _, id := range order {
		n := nodes[id]
		children := grouped[id]
		slices.SortFunc(children, Compare)
		for _, c := range children {
			c.parent = n
		}
		if children == nil {
			children = []*Node{}
		}
		n.Children = children
	}
	slices.SortFunc(roots, Compare)
	if roots == nil {
		roots = []*Node{}
	}

	f := &Forest{Roots: roots, nodes: nodes}

	if a.StrictParents {
		if err := checkConflicts(f, claims); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Assemble builds a forest with last-writer-wins parent resolution and
// returns its roots.
func Assemble(records []models.Category) []*Node {
	f, _ := Assembler{}.Build(records)
	return f.Roots
}

// Children assembles records and returns the nodes whose parent is
// parentID, or the roots when parentID is empty.
func Children(records []models.Category, parentID string) []*Node {
	f, _ := Assembler{}.Build(records)
	return f.ChildrenOf(parentID)
}

// indexRecords maps IDs to records and returns the IDs in first-seen
// order, so later passes iterate deterministically.
func indexRecords(records []models.Category) (map[string]models.Category, []string) {
	byID := make(map[string]models.Category, len(records))
	order := make([]string, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		if _, seen := byID[r.ID]; !seen {
			order = append(order, r.ID)
		}
		byID[r.ID] = r
	}
	return byID, order
}

// parentIndex inverts the declared child lists into child → parent. It
// also returns, per child, every distinct parent that claimed it.
func parentIndex(byID map[string]models.Category, order []string) (map[string]string, map[string][]string) {
	parents := make(map[string]string, len(order))
	claims := make(map[string][]string)
	for _, id := range order {
		for _, child := range byID[id].Children {
			if _, ok := byID[child]; !ok {
				continue
			}
			if !slices.Contains(claims[child], id) {
				claims[child] = append(claims[child], id)
			}
			parents[child] = id
		}
	}
	return parents, claims
}

func checkConflicts(f *Forest, claims map[string][]string) error {
	conflict := &ConflictError{}
	for child, parents := range claims {
		if len(parents) > 1 {
			if conflict.MultipleParents == nil {
				conflict.MultipleParents = make(map[string][]string)
			}
			conflict.MultipleParents[child] = parents
		}
	}

	reachable := make(map[string]bool, len(f.nodes))
	for _, r := range f.Roots {
		for _, id := range Flatten(r) {
			reachable[id] = true
		}
	}
	for id := range f.nodes {
		if !reachable[id] {
			conflict.Unreachable = append(conflict.Unreachable, id)
		}
	}
	sort.Strings(conflict.Unreachable)

	if conflict.MultipleParents == nil && conflict.Unreachable == nil {
		return nil
	}
	return conflict
}
