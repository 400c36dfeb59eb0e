package tree

import "slices"

// PathTo returns the nodes from a root down to the node with the given ID,
// inclusive. The forest is searched depth-first in sibling order and the
// first match wins. A blank or unknown ID yields an empty path.
func PathTo(forest []*Node, id string) []*Node {
	target := find(forest, id)
	if target == nil {
		return []*Node{}
	}

	var path []*Node
	for n := target; n != nil; n = n.parent {
		path = append(path, n)
	}
	slices.Reverse(path)
	return path
}

// Find returns the node with the given ID as reached from the roots, or
// nil. It is the last element of PathTo.
func Find(forest []*Node, id string) *Node {
	return find(forest, id)
}

// TopLevelOf returns the root whose subtree contains id, or nil.
func TopLevelOf(forest []*Node, id string) *Node {
	path := PathTo(forest, id)
	if len(path) == 0 {
		return nil
	}
	return path[0]
}

// find walks the forest in pre-order with an explicit stack, so deep trees
// do not grow the call stack.
func find(forest []*Node, id string) *Node {
	if id == "" {
		return nil
	}

	stack := make([]*Node, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, forest[i])
	}

	seen := make(map[*Node]bool)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil || seen[n] {
			continue
		}
		seen[n] = true

		if n.ID == id {
			return n
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return nil
}
