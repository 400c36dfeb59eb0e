package tree

import "treepress/internal/models"

// Compare is the sibling order: priority ascending (unset is 0), then
// creation time ascending, then ID ascending. Node IDs are unique within a
// forest, so the order is strict and repeated builds agree.
func Compare(a, b *Node) int {
	return models.CompareCategories(&a.Category, &b.Category)
}
