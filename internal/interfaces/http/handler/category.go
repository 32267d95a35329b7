package handler

import (
	catalogapp "github.com/erp/backoffice/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// CategoryHandler handles product category endpoints
type CategoryHandler struct {
	BaseHandler
	categoryService *catalogapp.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *catalogapp.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List godoc
// @ID           listCategories
// @Summary      List categories
// @Tags         products
// @Produce      json
// @Success      200 {object} APIResponse[[]catalog.CategoryResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	resp, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create godoc
// @ID           createCategory
// @Summary      Create a category
// @Description  Category names are unique ignoring case
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateCategoryRequest true "Category"
// @Success      201 {object} APIResponse[catalog.CategoryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req catalogapp.CreateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.categoryService.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
