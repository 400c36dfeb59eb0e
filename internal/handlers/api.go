// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers exposes the category and post finders as a read-only
// JSON API.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"treepress/internal/finder"
)

// API groups the JSON handlers for categories and posts.
type API struct {
	categories *finder.CategoryFinder
	posts      *finder.PostFinder
	validate   *validator.Validate
}

// NewAPI creates the API handler group.
func NewAPI(categories *finder.CategoryFinder, posts *finder.PostFinder) *API {
	return &API{
		categories: categories,
		posts:      posts,
		validate:   newValidator(),
	}
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

// writeError maps an error to its HTTP status. Upstream failures are
// logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var qerr *queryError
	switch {
	case errors.As(err, &qerr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid query parameters", Fields: qerr.Fields})
	case errors.Is(err, finder.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// ListCategories handles GET /api/categories?page=&size=.
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	q, err := parsePageQuery(a.validate, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := a.categories.List(r.Context(), &q.Page, &q.Size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ListAllCategories handles GET /api/categories/all.
func (a *API) ListAllCategories(w http.ResponseWriter, r *http.Request) {
	all, err := a.categories.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// CategoryTree handles GET /api/categories/tree.
func (a *API) CategoryTree(w http.ResponseWriter, r *http.Request) {
	roots, err := a.categories.ListAsTree(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roots)
}

// GetCategory handles GET /api/categories/{id}.
func (a *API) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := a.categories.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if c == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CategoryChildren handles GET /api/categories/{id}/children.
func (a *API) CategoryChildren(w http.ResponseWriter, r *http.Request) {
	children, err := a.categories.ListChildren(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, children)
}

// CategoryTreeOf handles GET /api/categories/{id}/tree.
func (a *API) CategoryTreeOf(w http.ResponseWriter, r *http.Request) {
	top, err := a.categories.TreeOf(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

// CategoryPath handles GET /api/categories/{id}/path.
func (a *API) CategoryPath(w http.ResponseWriter, r *http.Request) {
	path, err := a.categories.PathTo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, path)
}

// CategoryDescendants handles GET /api/categories/{id}/descendants.
func (a *API) CategoryDescendants(w http.ResponseWriter, r *http.Request) {
	ids, err := a.categories.Descendants(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// CategoryPosts handles GET /api/categories/{id}/posts?page=&size=.
func (a *API) CategoryPosts(w http.ResponseWriter, r *http.Request) {
	q, err := parsePageQuery(a.validate, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := a.posts.ListByCategoryAndDescendants(r.Context(), &q.Page, &q.Size, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ListPosts handles GET /api/posts.
func (a *API) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.posts.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// GetPost handles GET /api/posts/{id}.
func (a *API) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := a.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if post == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// PostContent handles GET /api/posts/{id}/content.
func (a *API) PostContent(w http.ResponseWriter, r *http.Request) {
	content, err := a.posts.Content(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if content == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

// PostAnnotations handles GET /api/posts/{id}/annotations?pattern=.
// An absent pattern matches every key.
func (a *API) PostAnnotations(w http.ResponseWriter, r *http.Request) {
	q := annotationQuery{Pattern: r.URL.Query().Get("pattern")}
	if err := validateStruct(a.validate, q); err != nil {
		writeError(w, r, err)
		return
	}
	annotations, err := a.posts.Annotations(r.Context(), chi.URLParam(r, "id"), q.Pattern)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if annotations == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, annotations)
}
