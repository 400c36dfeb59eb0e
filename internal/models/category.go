// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"cmp"
	"time"
)

// Category represents a content category record. The hierarchy is declared
// on the parent: Children lists the IDs of its direct children. A category
// does not know its own parent; that is derived when a tree is assembled.
type Category struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Cover       string    `json:"cover,omitempty"`
	Priority    *int      `json:"priority,omitempty"`
	Children    []string  `json:"children,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PriorityOrZero returns the category priority, treating an unset value as 0.
func (c *Category) PriorityOrZero() int {
	if c.Priority == nil {
		return 0
	}
	return *c.Priority
}

// CompareCategories orders categories by priority, then creation time,
// then ID, all ascending. It is a strict total order for distinct IDs.
func CompareCategories(a, b *Category) int {
	if c := cmp.Compare(a.PriorityOrZero(), b.PriorityOrZero()); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// CompareCategoriesDesc is CompareCategories reversed. Flat category
// listings use it so the highest priority and newest records come first.
func CompareCategoriesDesc(a, b *Category) int {
	return CompareCategories(b, a)
}

// CategoryView is the flat, public representation of a category.
type CategoryView struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Cover       string    `json:"cover,omitempty"`
	Priority    int       `json:"priority"`
	Children    []string  `json:"children"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCategoryView maps a category record to its view.
func NewCategoryView(c *Category) CategoryView {
	children := c.Children
	if children == nil {
		children = []string{}
	}
	return CategoryView{
		ID:          c.ID,
		DisplayName: c.DisplayName,
		Slug:        c.Slug,
		Description: c.Description,
		Cover:       c.Cover,
		Priority:    c.PriorityOrZero(),
		Children:    children,
		CreatedAt:   c.CreatedAt,
	}
}
