package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/kakeibo/internal/adapter/http/dto"
	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
)

// CategoryService defines the behavior needed by CategoryHandler.
type CategoryService interface {
	CreateCategory(ctx context.Context, input usecase.CreateCategoryInput) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	UpdateCategory(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// CategoryHandler handles category-related HTTP requests.
type CategoryHandler struct {
	categoryUC CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryUC CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryUC: categoryUC}
}

// List lists categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryUC.ListCategories(r.Context())
	if err != nil {
		respondError(w, err, "failed to list categories")
		return
	}

	writeJSON(w, http.StatusOK, dto.CategoriesFromDomain(categories))
}

// Create creates a new category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err, "invalid request body")
		return
	}

	category, err := h.categoryUC.CreateCategory(r.Context(), req.ToUseCaseInput())
	if err != nil {
		respondError(w, err, "failed to create category")
		return
	}

	writeJSON(w, http.StatusCreated, dto.CategoryFromDomain(category))
}

// Update applies a partial update to a category.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err, "invalid request body")
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		respondError(w, err, "invalid request body")
		return
	}

	category, err := h.categoryUC.UpdateCategory(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondError(w, err, "failed to update category")
		return
	}

	writeJSON(w, http.StatusOK, dto.CategoryFromDomain(category))
}

// Delete removes a category.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.categoryUC.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err, "failed to delete category")
		return
	}

	writeJSON(w, http.StatusOK, dto.StatusResponse{Status: "ok"})
}
