package handler

import (
	financeapp "github.com/erp/backoffice/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// ExpenseHandler handles expense type, record and suggestion endpoints
type ExpenseHandler struct {
	BaseHandler
	expenseService *financeapp.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *financeapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// ListTypes godoc
// @ID           listExpenseTypes
// @Summary      List expense types
// @Tags         expenses
// @Produce      json
// @Success      200 {object} APIResponse[[]finance.ExpenseTypeResponse]
// @Security     BearerAuth
// @Router       /expenses/types [get]
func (h *ExpenseHandler) ListTypes(c *gin.Context) {
	resp, err := h.expenseService.ListTypes(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreateType godoc
// @ID           createExpenseType
// @Summary      Create an expense type
// @Description  Type names are unique ignoring case; the Salary type is Boss-only to record against
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body finance.CreateExpenseTypeRequest true "Expense type"
// @Success      201 {object} APIResponse[finance.ExpenseTypeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses/types [post]
func (h *ExpenseHandler) CreateType(c *gin.Context) {
	var req financeapp.CreateExpenseTypeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.expenseService.CreateType(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListRecords godoc
// @ID           listExpenseRecords
// @Summary      List expense records
// @Tags         expenses
// @Produce      json
// @Param        type_id query string false "Expense type ID" format(uuid)
// @Param        manager_id query string false "Recorded by" format(uuid)
// @Param        search query string false "Expense name or notes"
// @Param        from query string false "On or after" format(date)
// @Param        to query string false "On or before" format(date)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(date_of_expense)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]finance.ExpenseRecordResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses/records [get]
func (h *ExpenseHandler) ListRecords(c *gin.Context) {
	var filter financeapp.ExpenseRecordFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.expenseService.ListRecords(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Record godoc
// @ID           createExpenseRecord
// @Summary      Record an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body finance.CreateExpenseRecordRequest true "Expense"
// @Success      201 {object} APIResponse[finance.ExpenseRecordResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses/records [post]
func (h *ExpenseHandler) Record(c *gin.Context) {
	var req financeapp.CreateExpenseRecordRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.expenseService.Record(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Suggestions godoc
// @ID           suggestExpenseNames
// @Summary      Expense name suggestions
// @Description  Most used expense names starting with the prefix
// @Tags         expenses
// @Produce      json
// @Param        prefix query string false "Name prefix"
// @Param        limit query int false "Maximum results" default(10)
// @Success      200 {object} APIResponse[[]finance.ExpenseSuggestionResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses/suggestions [get]
func (h *ExpenseHandler) Suggestions(c *gin.Context) {
	limit, ok := h.QueryInt(c, "limit", 0)
	if !ok {
		return
	}
	resp, err := h.expenseService.Suggestions(c.Request.Context(), c.Query("prefix"), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
