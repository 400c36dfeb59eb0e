package tree

// Flatten returns root's ID followed by the IDs of all its descendants in
// pre-order, children visited in sibling order. A nil root yields an empty
// slice. Each ID appears once.
func Flatten(root *Node) []string {
	if root == nil {
		return []string{}
	}

	var ids []string
	seen := make(map[*Node]bool)
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil || seen[n] {
			continue
		}
		seen[n] = true

		ids = append(ids, n.ID)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return ids
}
